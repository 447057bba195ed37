package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"members-portal/internal/api/middleware"
	"members-portal/internal/domain"
	"members-portal/internal/service"
)

// AdminHandler serves the admin panel and the promote/demote actions. The
// router guards every route here with RequireUser + RequireAdmin.
type AdminHandler struct {
	adminService *service.AdminService
	pages        *PageHandler
}

func NewAdminHandler(adminService *service.AdminService, pages *PageHandler) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		pages:        pages,
	}
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		log.Printf("ERROR [handlers.AdminList] %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	data, _ := middleware.GetSession(r.Context())
	page := pageData{
		Title:    "Admin Panel",
		SignedIn: true,
		Users:    users,
	}
	if data != nil {
		page.SessionUserEmail = data.Email
	}
	h.pages.render(w, http.StatusOK, "admin", page)
}

func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, h.adminService.Promote)
}

func (h *AdminHandler) Demote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, h.adminService.Demote)
}

func (h *AdminHandler) setRole(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, email string) error) {
	email := chi.URLParam(r, "email")

	if err := action(r.Context(), email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [handlers.AdminSetRole] %s: %v", email, err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusFound)
}

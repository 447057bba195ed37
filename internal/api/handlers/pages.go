package handlers

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"members-portal/internal/api/middleware"
	"members-portal/internal/domain"
)

// pageData is the single view model shared by every template.
type pageData struct {
	Title            string
	CSSFile          string
	SignedIn         bool
	UserName         string
	Message          string
	RetryURL         string
	Users            []*domain.User
	SessionUserEmail string
}

// PageHandler renders the server-side pages.
type PageHandler struct {
	tmpl *template.Template
}

func NewPageHandler(tmpl *template.Template) *PageHandler {
	return &PageHandler{tmpl: tmpl}
}

// render executes a template into a buffer first so a mid-render failure
// becomes a clean 500 instead of a half-written page.
func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("ERROR [handlers.render] template %s: %v", name, err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index", pageData{
		Title:   "Welcome",
		CSSFile: "index.css",
	})
}

func (h *PageHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signIn", pageData{
		Title: "Sign In",
	})
}

func (h *PageHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signUp", pageData{
		Title: "Sign Up",
	})
}

func (h *PageHandler) Authenticated(w http.ResponseWriter, r *http.Request) {
	data, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/signIn", http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, "authenticated", pageData{
		Title:    "Authenticated",
		CSSFile:  "authenticated.css",
		SignedIn: true,
		UserName: data.FirstName,
	})
}

func (h *PageHandler) MembersOnly(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "membersOnly", pageData{
		Title:    "Members Area",
		SignedIn: true,
	})
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "notFound", pageData{
		Title: "Not Found",
	})
}

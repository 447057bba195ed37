package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"members-portal/internal/api/handlers"
	"members-portal/internal/api/middleware"
	"members-portal/internal/config"
	"members-portal/internal/service"
	"members-portal/internal/web"
)

func NewRouter(services *service.Services, cfg *config.Config) (http.Handler, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	staticFiles, err := web.StaticFS()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	pages := handlers.NewPageHandler(tmpl)
	authHandler := handlers.NewAuthHandler(services.Auth, pages, cfg)
	adminHandler := handlers.NewAdminHandler(services.Admin, pages)

	// Public pages and auth actions
	r.Get("/", pages.Home)
	r.Get("/signIn", pages.SignInForm)
	r.Get("/signup", pages.SignUpForm)
	r.Post("/signup", authHandler.SignUp)
	r.Post("/signIn", authHandler.SignIn)
	r.Get("/logout", authHandler.Logout)

	// Session-gated pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(services.Auth, middleware.FailRedirect))
		r.Get("/authenticated", pages.Authenticated)
		r.Get("/membersOnly", pages.MembersOnly)
	})

	// Session-gated JSON
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(services.Auth, middleware.FailJSON))
		r.Get("/user", authHandler.Me)
	})

	// Admin-gated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(services.Auth, middleware.FailRedirect))
		r.Use(middleware.RequireAdmin(services.Auth))
		r.Get("/admin", adminHandler.List)
		r.Post("/admin/promote/{email}", adminHandler.Promote)
		r.Post("/admin/demote/{email}", adminHandler.Demote)
	})

	// Static assets
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles))))

	r.NotFound(pages.NotFound)

	return r, nil
}

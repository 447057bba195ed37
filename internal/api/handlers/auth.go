package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"members-portal/internal/api/middleware"
	"members-portal/internal/config"
	"members-portal/internal/domain"
	"members-portal/internal/service"
)

// AuthHandler wires the signup, sign-in, logout, and session-info routes to
// the auth service.
type AuthHandler struct {
	authService   *service.AuthService
	pages         *PageHandler
	secureCookies bool
}

func NewAuthHandler(authService *service.AuthService, pages *PageHandler, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		pages:         pages,
		secureCookies: cfg.SecureCookies,
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.authService.SignUp(r.Context(), service.SignUpInput{
		FirstName: r.PostFormValue("firstName"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
	})
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			h.pages.render(w, http.StatusOK, "message", pageData{
				Title:    "Sign Up",
				Message:  vErr.Message,
				RetryURL: "/signup",
			})
		case errors.Is(err, domain.ErrEmailAlreadyRegistered):
			h.pages.render(w, http.StatusOK, "message", pageData{
				Title:    "Sign Up",
				Message:  "Email already registered",
				RetryURL: "/signup",
			})
		default:
			log.Printf("ERROR [handlers.SignUp] %v", err)
			http.Error(w, "Server error", http.StatusInternalServerError)
		}
		return
	}

	http.SetCookie(w, middleware.NewSessionCookie(result.Token, result.ExpiresAt, h.secureCookies))
	http.Redirect(w, r, "/authenticated", http.StatusFound)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.authService.SignIn(r.Context(), service.SignInInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			h.pages.render(w, http.StatusOK, "message", pageData{
				Title:    "Sign In",
				Message:  vErr.Message,
				RetryURL: "/signIn",
			})
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrIncorrectPassword):
			// One message for both, so the response never confirms whether
			// an email is registered.
			h.pages.render(w, http.StatusOK, "message", pageData{
				Title:    "Sign In",
				Message:  "Incorrect email or password",
				RetryURL: "/signIn",
			})
		default:
			log.Printf("ERROR [handlers.SignIn] %v", err)
			http.Error(w, "Server error", http.StatusInternalServerError)
		}
		return
	}

	http.SetCookie(w, middleware.NewSessionCookie(result.Token, result.ExpiresAt, h.secureCookies))
	http.Redirect(w, r, "/authenticated", http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			log.Printf("ERROR [handlers.Logout] %v", err)
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me reports the signed-in user's first name as JSON.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	data, ok := middleware.GetSession(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	user, err := h.authService.GetUserByEmail(r.Context(), data.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
			return
		}
		log.Printf("ERROR [handlers.Me] %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"firstName": user.FirstName})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

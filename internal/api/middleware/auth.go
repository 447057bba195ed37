package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"members-portal/internal/domain"
	"members-portal/internal/service"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session_token"

// FailureMode selects what an unauthenticated request receives.
type FailureMode int

const (
	// FailRedirect sends the browser to the sign-in page.
	FailRedirect FailureMode = iota
	// FailJSON returns 401 with a JSON error body.
	FailJSON
)

// RequireUser gates a route on a valid, non-expired session. On success the
// session state is stashed in the request context for the handler.
func RequireUser(auth *service.AuthService, mode FailureMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				deny(w, r, mode)
				return
			}

			data, err := auth.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
					ClearSessionCookie(w)
					deny(w, r, mode)
					return
				}
				log.Printf("ERROR [middleware.RequireUser] authenticate: %v", err)
				http.Error(w, "Server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route on the session user holding the admin role.
// It must run after RequireUser. A vanished user row is forbidden, not a
// crash.
func RequireAdmin(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, ok := GetSession(r.Context())
			if !ok {
				http.Redirect(w, r, "/signIn", http.StatusFound)
				return
			}

			user, err := auth.GetUserByEmail(r.Context(), data.Email)
			if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
				log.Printf("ERROR [middleware.RequireAdmin] role lookup: %v", err)
				http.Error(w, "Server error", http.StatusInternalServerError)
				return
			}
			if err != nil || !user.IsAdmin() {
				http.Error(w, "Forbidden: Admins only", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSession returns the authenticated session state stashed by RequireUser.
func GetSession(ctx context.Context) (*domain.SessionData, bool) {
	data, ok := ctx.Value(sessionKey).(*domain.SessionData)
	return data, ok
}

// NewSessionCookie builds the session cookie for a freshly issued token.
func NewSessionCookie(token string, expiresAt time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func deny(w http.ResponseWriter, r *http.Request, mode FailureMode) {
	if mode == FailJSON {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized"}`))
		return
	}
	http.Redirect(w, r, "/signIn", http.StatusFound)
}

package testutil

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"members-portal/internal/api/middleware"
	"members-portal/internal/domain"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	firstName string
	email     string
	password  string
	role      domain.Role
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		firstName: "Test",
		email:     fmt.Sprintf("test_%s@example.com", uuid.New().String()[:8]),
		password:  "testpassword123",
		role:      domain.RoleUser,
	}
}

// WithFirstName sets the first name
func (b *UserBuilder) WithFirstName(name string) *UserBuilder {
	b.firstName = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithRole sets the role
func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		FirstName:    b.firstName,
		Email:        strings.ToLower(b.email),
		PasswordHash: string(hashedPassword),
		Role:         b.role,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndSignIn creates the user in the database, signs in through the HTTP
// surface, and returns the user together with its session cookie.
func (b *UserBuilder) BuildAndSignIn(t *testing.T, ts *TestServer) (*domain.User, *http.Cookie) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)
	cookie := SignIn(t, ts, user.Email, password)
	return user, cookie
}

// SignIn posts the sign-in form and returns the session cookie from the
// redirect response.
func SignIn(t *testing.T, ts *TestServer, email, password string) *http.Cookie {
	t.Helper()

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	resp, err := ts.Client().PostForm(ts.URL("/signIn"), form)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("sign in: unexpected status code %d", resp.StatusCode)
	}

	cookie := SessionCookie(resp)
	if cookie == nil {
		t.Fatal("sign in: no session cookie set")
	}
	return cookie
}

// SessionCookie extracts the session cookie from a response, or nil.
func SessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

// CountUsers returns the number of rows in the users table.
func CountUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	return count
}

// CountSessions returns the number of rows in the sessions table.
func CountSessions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&domain.Session{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count sessions: %v", err)
	}
	return count
}

// ExpireSessions rewinds every session's expiry so the next request sees
// them as dead.
func ExpireSessions(t *testing.T, db *gorm.DB) {
	t.Helper()

	err := db.Model(&domain.Session{}).
		Where("1 = 1").
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	if err != nil {
		t.Fatalf("failed to expire sessions: %v", err)
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"members-portal/internal/config"
	"members-portal/internal/domain"
	"members-portal/internal/repository"
)

// AuthService owns the registration, sign-in, and session lifecycle. A
// session row exists iff credential verification succeeded for its user; no
// path here creates one on validation failure, duplicate email, password
// mismatch, or store error.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cfg         *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}
}

type SignUpInput struct {
	FirstName string
	Email     string
	Password  string
}

type SignInInput struct {
	Email    string
	Password string
}

// AuthResult carries the authenticated user and the signed cookie token for
// the session that was just established.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	if err := validateSignUp(input); err != nil {
		return nil, err
	}
	email := NormalizeEmail(input.Email)

	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	existing, err := s.userRepo.GetByEmail(cctx, email)
	cancel()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	cctx, cancel = context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err = s.userRepo.Create(cctx, user)
	cancel()
	if err != nil {
		// The unique index is the authority here: a concurrent signup can
		// pass the pre-check and still lose the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.establishSession(ctx, user)
}

func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	if input.Email == "" {
		return nil, &domain.ValidationError{Field: "email", Message: "email is required"}
	}
	if input.Password == "" {
		return nil, &domain.ValidationError{Field: "password", Message: "password is required"}
	}
	email := NormalizeEmail(input.Email)

	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	user, err := s.userRepo.GetByEmail(cctx, email)
	cancel()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrIncorrectPassword
	}

	return s.establishSession(ctx, user)
}

// Authenticate resolves a cookie token to live session state. Invalid or
// unknown tokens come back as ErrSessionNotFound; an expired row is removed
// and reported as ErrSessionExpired.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.SessionData, error) {
	id, err := s.verifySessionToken(token)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	session, err := s.sessionRepo.GetByID(cctx, id)
	cancel()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.Expired(time.Now()) {
		cctx, cancel := context.WithTimeout(context.Background(), s.cfg.StoreTimeout)
		_ = s.sessionRepo.Delete(cctx, session.ID)
		cancel()
		return nil, domain.ErrSessionExpired
	}

	var data domain.SessionData
	if err := json.Unmarshal(session.Payload, &data); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return &data, nil
}

// Logout destroys the session behind the token. A token that no longer maps
// to a session is not an error; there is nothing left to destroy.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	id, err := s.verifySessionToken(token)
	if err != nil {
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err = s.sessionRepo.Delete(cctx, id)
	cancel()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	user, err := s.userRepo.GetByEmail(cctx, NormalizeEmail(email))
	cancel()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return user, nil
}

func (s *AuthService) establishSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	payload, err := json.Marshal(domain.SessionData{
		Email:     user.Email,
		FirstName: user.FirstName,
	})
	if err != nil {
		return nil, fmt.Errorf("encode session payload: %w", err)
	}

	session := &domain.Session{
		ID:        uuid.New(),
		UserEmail: user.Email,
		Payload:   datatypes.JSON(payload),
		ExpiresAt: time.Now().Add(s.cfg.SessionTTL),
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err = s.sessionRepo.Create(cctx, session)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.signSessionToken(session)
	if err != nil {
		// Don't leave a session behind a cookie that was never issued.
		cctx, cancel := context.WithTimeout(context.Background(), s.cfg.StoreTimeout)
		_ = s.sessionRepo.Delete(cctx, session.ID)
		cancel()
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// signSessionToken wraps the session id in a signed, self-expiring token.
// The server-side row stays authoritative; the signature only stops clients
// from minting or mangling session ids.
func (s *AuthService) signSessionToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": session.ID.String(),
		"exp": session.ExpiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

func (s *AuthService) verifySessionToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.SessionSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, domain.ErrSessionNotFound
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domain.ErrSessionNotFound
	}
	sid, ok := claims["sid"].(string)
	if !ok {
		return uuid.Nil, domain.ErrSessionNotFound
	}
	id, err := uuid.Parse(sid)
	if err != nil {
		return uuid.Nil, domain.ErrSessionNotFound
	}
	return id, nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session is a server-side session record. The ID is the opaque token the
// cookie layer wraps; deleting the row revokes the session regardless of
// what the client still holds.
type Session struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserEmail string         `json:"userEmail" gorm:"not null;index"`
	Payload   datatypes.JSON `json:"payload"`
	ExpiresAt time.Time      `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionData is the authenticated state a live session carries. It is the
// session payload and everything a protected handler may rely on.
type SessionData struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}

package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. UserID is the external key shared with the
// financial records; ID is internal.
type User struct {
	ID           uuid.UUID  `json:"id"`
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name,omitempty"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = errors.New("not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("inactive user")
)

// ErrValidation is returned for malformed registration input.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// UserRepository abstracts persistence concerns from the domain layer.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUserID(ctx context.Context, userID string) (User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

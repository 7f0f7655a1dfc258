package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	// Login accepts either the external user id or the email as identifier.
	Login(ctx context.Context, identifier, password string) (AuthResult, error)
	Me(ctx context.Context, userID string) (User, error)
}

type RegisterInput struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo   UserRepository
	tokens TokenGenerator
	log    *slog.Logger
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, tokens TokenGenerator, log *slog.Logger) AuthUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &authService{repo: repo, tokens: tokens, log: log}
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return ErrValidation("user_id is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return ErrValidation("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return ErrValidation("password must be at least 6 characters")
	}
	return nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.validate(); err != nil {
		return AuthResult{}, err
	}

	// If user exists, fail fast (best-effort check; the unique index decides)
	if _, err := s.repo.GetByUserID(ctx, in.UserID); err == nil {
		return AuthResult{}, ErrUserAlreadyExists
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, ErrUserAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}

	user := User{
		ID:           uuid.New(),
		UserID:       in.UserID,
		Email:        in.Email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: string(passwordHash),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	s.log.Info("user registered", "user_id", user.UserID)
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) lookup(ctx context.Context, identifier string) (User, error) {
	identifier = strings.TrimSpace(identifier)
	user, err := s.repo.GetByUserID(ctx, identifier)
	if errors.Is(err, ErrNotFound) && strings.Contains(identifier, "@") {
		user, err = s.repo.GetByEmail(ctx, strings.ToLower(identifier))
	}
	return user, err
}

func (s *authService) Login(ctx context.Context, identifier, password string) (AuthResult, error) {
	user, err := s.lookup(ctx, identifier)
	if err != nil {
		s.log.Warn("login failed", "identifier", identifier, "reason", "unknown user")
		return AuthResult{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn("login failed", "user_id", user.UserID, "reason", "bad password")
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return AuthResult{}, ErrInactive
	}
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("update last login", "user_id", user.UserID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (User, error) {
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if !user.IsActive {
		return User{}, ErrInactive
	}
	return user, nil
}

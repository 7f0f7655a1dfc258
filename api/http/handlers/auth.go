package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/auth"
	"github.com/artem13815/finadvisor/pkg/financial"
)

type AuthHandler struct {
	useCase  auth.AuthUseCase
	profiles financial.UseCase
}

func NewAuthHandler(useCase auth.AuthUseCase, profiles financial.UseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase, profiles: profiles}
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        auth.User `json:"user"`
}

func newTokenResponse(res auth.AuthResult) tokenResponse {
	return tokenResponse{AccessToken: res.Token, TokenType: "bearer", User: res.User}
}

// Register handles user registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body auth.RegisterInput true "registration payload"
// @Success 201 {object} tokenResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	result, err := h.useCase.Register(c.UserContext(), req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, newTokenResponse(result))
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login accepts either user_id or email.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	identifier := strings.TrimSpace(req.UserID)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "user_id (or email) and password are required")
	}
	return h.login(c, identifier, req.Password)
}

// Token is the OAuth2 password-flow variant of Login.
// @Summary OAuth2 token
// @Tags    auth
// @Accept  x-www-form-urlencoded
// @Produce json
// @Param   username formData string true "user id or email"
// @Param   password formData string true "password"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return presenter.Error(c, http.StatusBadRequest, "username and password are required")
	}
	return h.login(c, username, password)
}

func (h *AuthHandler) login(c *fiber.Ctx, identifier, password string) error {
	result, err := h.useCase.Login(c.UserContext(), identifier, password)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, newTokenResponse(result))
}

// Verify reports that the bearer token is valid.
// @Summary Verify token
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/verify [get]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, fiber.Map{"valid": true, "user_id": currentUser(c)})
}

// Me returns the authenticated account.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.User
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.useCase.Me(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, user)
}

// UserData returns every financial record held for the caller.
// @Summary Raw financial records
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} financial.Profile
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /auth/user-data [get]
func (h *AuthHandler) UserData(c *fiber.Ctx) error {
	profile, err := h.profiles.Profile(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	if profile.Empty() {
		return presenter.Error(c, http.StatusNotFound, "User data not found")
	}
	return presenter.JSON(c, http.StatusOK, profile)
}

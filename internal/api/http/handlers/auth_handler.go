package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-bot/internal/api/dto"
	"github.com/spec-kit/support-bot/internal/auth"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

// AuthHandler issues operator tokens.
type AuthHandler struct {
	tokens       *auth.TokenManager
	operatorName string
	passwordHash string
}

// NewAuthHandler constructs the handler. An empty password hash disables
// operator login entirely.
func NewAuthHandler(tokens *auth.TokenManager, operatorName, passwordHash string) *AuthHandler {
	return &AuthHandler{tokens: tokens, operatorName: operatorName, passwordHash: passwordHash}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if h.passwordHash == "" {
		return apperrors.NewUnauthorized("operator login disabled")
	}

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name != h.operatorName {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(h.passwordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Name)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{Token: token, ExpiresAt: expiresAt}})
}

package middleware

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenContextKey = "user"

// JWTProtected rejects requests without a valid "Bearer <token>"
// Authorization header.
func JWTProtected(tokens *services.TokenService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:    tokens.KeyFunc,
		Claims:     &services.TokenClaims{},
		ContextKey: tokenContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, authFailure(c.Get(fiber.HeaderAuthorization), err))
		},
	})
}

func authFailure(header string, err error) string {
	if strings.TrimSpace(header) == "" {
		return "Authorization header required"
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return "Authorization header must be Bearer token"
	}
	if errors.Is(services.ClassifyTokenError(err), services.ErrTokenExpired) {
		return "Token expired"
	}
	return "Invalid token"
}

// IdentityHandler is a route handler that needs the authenticated caller.
type IdentityHandler func(c *fiber.Ctx, id services.Identity) error

// WithIdentity adapts an IdentityHandler for use behind JWTProtected.
func WithIdentity(h IdentityHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals(tokenContextKey).(*jwt.Token)
		id, err := services.IdentityFromToken(token)
		if err != nil {
			return unauthorized(c, "Invalid token")
		}
		c.Locals("user_id", id.UserID)
		return h(c, id)
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: msg})
}

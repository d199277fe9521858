package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return errorJSON(c, fiber.StatusBadRequest, msg)
		}
		if errors.Is(err, services.ErrUsernameTaken) {
			return errorJSON(c, fiber.StatusConflict, err.Error())
		}
		return internalError(c, "register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return errorJSON(c, fiber.StatusBadRequest, msg)
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, services.ErrInvalidCredentials.Error())
		}
		return internalError(c, "login", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx, id services.Identity) error {
	return c.JSON(dto.MeResponse{ID: id.UserID, Username: id.Username})
}

// parseOptionalBody decodes a JSON body when one was sent. An empty body
// leaves out untouched.
func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

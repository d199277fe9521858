package handlers

import (
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PreferenceHandler struct {
	prefService *services.PreferenceService
}

func NewPreferenceHandler(prefService *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefService: prefService}
}

func (h *PreferenceHandler) Update(c *fiber.Ctx, id services.Identity) error {
	var req dto.UpdatePreferencesRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if _, err := h.prefService.Upsert(c.UserContext(), id.UserID, &req); err != nil {
		if msg, ok := validationMessage(err); ok {
			return errorJSON(c, fiber.StatusBadRequest, msg)
		}
		return internalError(c, "update_preferences", err)
	}

	return c.JSON(dto.MessageResponse{Success: true, Message: "preferences saved"})
}

func (h *PreferenceHandler) Get(c *fiber.Ctx, id services.Identity) error {
	pref, err := h.prefService.Get(c.UserContext(), id.UserID)
	if err != nil {
		return internalError(c, "get_preferences", err)
	}
	if pref != nil {
		pref.UpdatedAt = pref.UpdatedAt.In(clock.Location)
	}

	return c.JSON(dto.PreferencesResponse{
		Success:                    true,
		Preferences:                pref,
		CustomPreferencesMaxLength: services.CustomPreferencesMaxLength,
	})
}

package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const serviceName = "Nutrietary - AI Dietary Planner (backend)"

var endpoints = []string{
	"POST /register",
	"POST /login",
	"GET /me (protected)",
	"PUT /preferences (protected)",
	"GET /preferences (protected)",
	"POST /generate_mealplan (protected)",
	"GET /mealplans (protected)",
	"GET /mealplans/<id> (protected)",
	"DELETE /mealplans/<id> (protected)",
	"GET /health",
}

type HealthHandler struct {
	db           *gorm.DB
	aiConfigured bool
}

func NewHealthHandler(db *gorm.DB, aiConfigured bool) *HealthHandler {
	return &HealthHandler{db: db, aiConfigured: aiConfigured}
}

func (h *HealthHandler) Home(c *fiber.Ctx) error {
	return c.JSON(dto.ServiceInfoResponse{
		Service:                    serviceName,
		Endpoints:                  endpoints,
		CustomPreferencesMaxLength: services.CustomPreferencesMaxLength,
	})
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:       "healthy",
		Timestamp:    clock.Now().Format(time.RFC3339),
		AIConfigured: h.aiConfigured,
		DB:           dbStatus,
	})
}

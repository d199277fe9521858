package routes

import (
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	tokens *services.TokenService,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	prefHandler *handlers.PreferenceHandler,
	planHandler *handlers.MealPlanHandler,
) {
	// Public
	app.Get("/", healthHandler.Home)
	app.Get("/health", healthHandler.Check)
	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)

	// Protected routes (JWT required), applied per route so public routes
	// never see the auth middleware.
	auth := middleware.JWTProtected(tokens)
	with := middleware.WithIdentity

	app.Get("/me", auth, with(authHandler.Me))

	app.Put("/preferences", auth, with(prefHandler.Update))
	app.Get("/preferences", auth, with(prefHandler.Get))

	app.Post("/generate_mealplan", auth, with(planHandler.Generate))
	app.Get("/mealplans", auth, with(planHandler.List))
	app.Get("/mealplans/:id", auth, with(planHandler.Get))
	app.Delete("/mealplans/:id", auth, with(planHandler.Delete))
}

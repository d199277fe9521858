package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MealPlanHandler struct {
	planService *services.MealPlanService
}

func NewMealPlanHandler(planService *services.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{planService: planService}
}

func (h *MealPlanHandler) Generate(c *fiber.Ctx, id services.Identity) error {
	var req dto.GenerateMealPlanRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.planService.Generate(c.UserContext(), id.UserID, req.Days, req.Preferences)
	if err != nil {
		return internalError(c, "generate_mealplan", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.GenerateMealPlanResponse{
		Success:       true,
		PlanID:        res.PlanID,
		AITextSnippet: res.Snippet,
		ParsedJSON:    res.Parsed,
	})
}

func (h *MealPlanHandler) List(c *fiber.Ctx, id services.Identity) error {
	page, perPage := services.NormalizePage(
		queryInt(c, "page", services.DefaultPage),
		queryInt(c, "per_page", services.DefaultPerPage),
	)

	plans, total, err := h.planService.List(c.UserContext(), id.UserID, page, perPage)
	if err != nil {
		return internalError(c, "list_mealplans", err)
	}

	views := make([]dto.MealPlanView, 0, len(plans))
	for i := range plans {
		views = append(views, planView(&plans[i]))
	}

	return c.JSON(dto.MealPlanListResponse{
		Success: true,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Plans:   views,
	})
}

func (h *MealPlanHandler) Get(c *fiber.Ctx, id services.Identity) error {
	planID, ok := pathID(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, services.ErrPlanNotFound.Error())
	}

	plan, err := h.planService.Get(c.UserContext(), id.UserID, planID)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return internalError(c, "get_mealplan", err)
	}

	return c.JSON(dto.MealPlanDetailResponse{Success: true, MealPlanView: planView(plan)})
}

func (h *MealPlanHandler) Delete(c *fiber.Ctx, id services.Identity) error {
	planID, ok := pathID(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, services.ErrPlanNotFound.Error())
	}

	if err := h.planService.Delete(c.UserContext(), id.UserID, planID); err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return internalError(c, "delete_mealplan", err)
	}

	return c.JSON(dto.MessageResponse{Success: true, Message: "meal plan deleted successfully"})
}

func planView(p *models.MealPlan) dto.MealPlanView {
	return dto.MealPlanView{
		ID:          p.ID,
		Title:       p.Title,
		Plan:        services.DecodeStored(&p.PlanJSON),
		GroceryList: services.DecodeStored(p.GroceryJSON),
		CreatedAt:   p.CreatedAt.In(clock.Location),
	}
}

func pathID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryInt reads an integer query parameter, returning fallback when it is
// absent or not a number.
func queryInt(c *fiber.Ctx, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}

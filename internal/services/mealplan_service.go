package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/models"
	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"
)

const (
	// OracleNotConfiguredText stands in for the plan when no model is set up.
	OracleNotConfiguredText = "AI model not configured on server."
	ConversationLabel       = "Generate Meal Plan"
	snippetLength           = 1000

	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

var ErrPlanNotFound = errors.New("plan not found")

// GenerateResult is what a generation returns to the caller. Parsed is nil
// when the model output held no JSON object.
type GenerateResult struct {
	PlanID  uint
	Snippet *string
	Parsed  map[string]any
}

type MealPlanService struct {
	db      *gorm.DB
	prefs   *PreferenceService
	oracle  ai.Oracle
	timeout time.Duration
}

// NewMealPlanService wires generation and plan storage. oracle may be nil, in
// which case every generation stores a placeholder plan.
func NewMealPlanService(db *gorm.DB, prefs *PreferenceService, oracle ai.Oracle, timeout time.Duration) *MealPlanService {
	return &MealPlanService{db: db, prefs: prefs, oracle: oracle, timeout: timeout}
}

// Generate builds a prompt from stored preferences plus any overrides, asks
// the model for a plan and records both the plan and the exchange. Model
// failures are stored as the plan text rather than returned.
func (s *MealPlanService) Generate(ctx context.Context, userID uint, days, overrides any) (*GenerateResult, error) {
	stored, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := preferenceMap(stored)
	if m, ok := overrides.(map[string]any); ok {
		for k, v := range m {
			prefs[k] = v
		}
	}
	if days == nil {
		days = prefs["days"]
	}
	if days == nil {
		days = DefaultDays
	}

	text := s.ask(ctx, userID, BuildMealPlanPrompt(prefs, days))
	parsed := ai.ExtractJSONObject(text)

	plan := models.MealPlan{UserID: userID, PlanJSON: text}
	if len(parsed) > 0 {
		plan.Title = planTitle(parsed["title"])
		body, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("failed to encode plan: %w", err)
		}
		plan.PlanJSON = string(body)
		if grocery := parsed["grocery_list"]; !isEmptyJSON(grocery) {
			g, err := json.Marshal(grocery)
			if err != nil {
				return nil, fmt.Errorf("failed to encode grocery list: %w", err)
			}
			gs := string(g)
			plan.GroceryJSON = &gs
		}
	}

	db := s.db.WithContext(ctx)
	if err := db.Create(&plan).Error; err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}
	conv := models.Conversation{UserID: userID, UserMessage: ConversationLabel, AIResponse: text}
	if err := db.Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	slog.Info("meal plan generated", "user_id", userID, "plan_id", plan.ID, "parsed", parsed != nil)

	result := &GenerateResult{PlanID: plan.ID, Parsed: parsed}
	if text != "" {
		snippet := text
		if r := []rune(text); len(r) > snippetLength {
			snippet = string(r[:snippetLength])
		}
		result.Snippet = &snippet
	}
	return result, nil
}

func (s *MealPlanService) ask(ctx context.Context, userID uint, prompt string) string {
	if s.oracle == nil {
		slog.Warn("AI model not configured, returning placeholder text", "user_id", userID)
		return OracleNotConfiguredText
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.oracle.Generate(ctx, prompt)
	if err != nil {
		slog.Error("AI generation failed", "user_id", userID, "action", "generate_mealplan", "error", err.Error())
		sentry.CaptureException(err)
		return "AI generation failed: " + err.Error()
	}
	return text
}

// List returns one page of the user's plans, newest first.
func (s *MealPlanService) List(ctx context.Context, userID uint, page, perPage int) ([]models.MealPlan, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.MealPlan{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count meal plans: %w", err)
	}

	var plans []models.MealPlan
	err := db.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&plans).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meal plans: %w", err)
	}
	return plans, total, nil
}

// Get returns the plan only if userID owns it; otherwise ErrPlanNotFound.
func (s *MealPlanService) Get(ctx context.Context, userID, planID uint) (*models.MealPlan, error) {
	var plan models.MealPlan
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", planID, userID).Take(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}
	return &plan, nil
}

func (s *MealPlanService) Delete(ctx context.Context, userID, planID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", planID, userID).Delete(&models.MealPlan{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete meal plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// NormalizePage applies the pagination defaults and caps per_page.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// DecodeStored returns stored JSON text as a raw message, or the text itself
// when it is not valid JSON.
func DecodeStored(s *string) any {
	if s == nil {
		return nil
	}
	if json.Valid([]byte(*s)) {
		return json.RawMessage(*s)
	}
	return *s
}

func preferenceMap(p *models.UserPreference) map[string]any {
	m := make(map[string]any)
	if p == nil {
		return m
	}
	if p.DietaryPreferences != nil {
		m["dietary_preferences"] = *p.DietaryPreferences
	}
	if p.Budget != nil {
		m["budget"] = *p.Budget
	}
	if p.Days != nil {
		m["days"] = *p.Days
	}
	if p.MealTypes != nil {
		m["meal_types"] = *p.MealTypes
	}
	if p.CustomPreferences != nil {
		m["custom_preferences"] = *p.CustomPreferences
	}
	return m
}

func planTitle(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func isEmptyJSON(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case float64:
		return t == 0
	}
	return false
}

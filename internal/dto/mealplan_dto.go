package dto

import "time"

// GenerateMealPlanRequest carries optional overrides. Both fields are loosely
// typed: days may arrive as a number or a string, and preferences are only
// merged when they form a JSON object.
type GenerateMealPlanRequest struct {
	Days        any `json:"days"`
	Preferences any `json:"preferences"`
}

type GenerateMealPlanResponse struct {
	Success       bool           `json:"success"`
	PlanID        uint           `json:"plan_id"`
	AITextSnippet *string        `json:"ai_text_snippet"`
	ParsedJSON    map[string]any `json:"parsed_json"`
}

// MealPlanView returns stored payloads decoded when they are valid JSON,
// otherwise as the raw string.
type MealPlanView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Plan        any       `json:"plan"`
	GroceryList any       `json:"grocery_list"`
	CreatedAt   time.Time `json:"created_at"`
}

type MealPlanListResponse struct {
	Success bool           `json:"success"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int64          `json:"total"`
	Plans   []MealPlanView `json:"plans"`
}

type MealPlanDetailResponse struct {
	Success bool `json:"success"`
	MealPlanView
}

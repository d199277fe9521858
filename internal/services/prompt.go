package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	minDays = 1
	maxDays = 7
)

// ResolveDays turns an untrusted day count into a value in [1,7]. Anything
// non-numeric or out of range becomes DefaultDays.
func ResolveDays(v any) int {
	var n int
	switch d := v.(type) {
	case int:
		n = d
	case int64:
		n = int(d)
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return DefaultDays
		}
		n = int(d)
	case json.Number:
		if i, err := d.Int64(); err == nil {
			n = int(i)
		} else if f, err := d.Float64(); err == nil {
			n = int(f)
		} else {
			return DefaultDays
		}
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(d))
		if err != nil {
			return DefaultDays
		}
		n = i
	default:
		return DefaultDays
	}
	if n < minDays || n > maxDays {
		return DefaultDays
	}
	return n
}

// BuildMealPlanPrompt renders the instruction sent to the model. Missing or
// empty preference values fall back to neutral defaults.
func BuildMealPlanPrompt(prefs map[string]any, days any) string {
	dietary := promptValue(prefs["dietary_preferences"], "no specific restrictions")
	budget := promptValue(prefs["budget"], "no budget specified")
	mealTypes := promptValue(prefs["meal_types"], "breakfast,lunch,dinner")

	var custom string
	if c := strings.TrimSpace(promptValue(prefs["custom_preferences"], "")); c != "" {
		custom = "\n- Additional custom requirements: " + c
	}

	return fmt.Sprintf(mealPlanPromptTemplate, ResolveDays(days), dietary, budget, mealTypes, custom)
}

func promptValue(v any, fallback string) string {
	var s string
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		s = t
	case *string:
		if t == nil {
			return fallback
		}
		s = *t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case *float64:
		if t == nil {
			return fallback
		}
		s = strconv.FormatFloat(*t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if str := strings.TrimSpace(fmt.Sprint(p)); str != "" {
				parts = append(parts, str)
			}
		}
		s = strings.Join(parts, ",")
	default:
		s = fmt.Sprint(t)
	}
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

const mealPlanPromptTemplate = `
You are an expert nutritionist and recipe writer. Generate a %d-day meal plan tailored for a Malaysian user.
Constraints and requirements:
- Dietary preferences: %s
- Budget (Malaysian Ringgit): %s
- Meal types per day (comma separated): %s%s

IMPORTANT: Pay special attention to any allergies, medical conditions, or specific requirements mentioned in the custom requirements above.

Return a valid JSON object ONLY (no explanatory text) with the following schema:

{
  "title": "string",
  "days": [
    {
      "day": "Day 1",
      "meals": [
        {
          "type": "breakfast|lunch|dinner|snack",
          "name": "Dish name",
          "servings": "2",
          "approx_prep_time_minutes": 20,
          "recipe": "Step by step instructions as a single string",
          "ingredients": [
            {"name": "ingredient name", "qty": "quantity"}
          ]
        }
      ]
    }
  ],
  "grocery_list": [
    {"item": "name", "qty": "total qty", "notes": "optional"}
  ]
}

Be concise. Ensure JSON is parseable. If some fields are unknown, set them to empty string or sensible default.
Produce the JSON only.
`

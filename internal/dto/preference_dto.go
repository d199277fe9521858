package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/models"
)

// UpdatePreferencesRequest is a partial update. A nil field (absent or JSON
// null) leaves the stored value untouched.
type UpdatePreferencesRequest struct {
	DietaryPreferences *string    `json:"dietary_preferences"`
	Budget             *float64   `json:"budget"`
	Days               *int       `json:"days"`
	MealTypes          *MealTypes `json:"meal_types"`
	CustomPreferences  *string    `json:"custom_preferences"`
}

// MealTypes accepts either "breakfast,dinner" or ["breakfast", "dinner"] and
// normalizes both to the comma-joined form.
type MealTypes string

func (m *MealTypes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MealTypes(s)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		kept := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				kept = append(kept, item)
			}
		}
		*m = MealTypes(strings.Join(kept, ","))
		return nil
	}
	return errors.New("meal_types must be a string or a list of strings")
}

type PreferencesResponse struct {
	Success                    bool                   `json:"success"`
	Preferences                *models.UserPreference `json:"preferences"`
	CustomPreferencesMaxLength int                    `json:"custom_preferences_max_length"`
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	CustomPreferencesMaxLength = 500
	DefaultDays                = 3
)

var ErrCustomPreferencesTooLong = errors.New("custom preferences too long")

type PreferenceService struct {
	db *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// Get returns the stored preferences, or nil when the user has none yet.
func (s *PreferenceService) Get(ctx context.Context, userID uint) (*models.UserPreference, error) {
	var pref models.UserPreference
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return &pref, nil
}

// Upsert writes the supplied fields and keeps the rest. The first write for a
// user inserts the row with days defaulting to 3.
func (s *PreferenceService) Upsert(ctx context.Context, userID uint, req *dto.UpdatePreferencesRequest) (*models.UserPreference, error) {
	now := clock.Now()
	row := models.UserPreference{UserID: userID, UpdatedAt: now}
	updates := map[string]any{"updated_at": now}

	if req.DietaryPreferences != nil {
		row.DietaryPreferences = req.DietaryPreferences
		updates["dietary_preferences"] = *req.DietaryPreferences
	}
	if req.Budget != nil {
		row.Budget = req.Budget
		updates["budget"] = *req.Budget
	}
	if req.Days != nil {
		row.Days = req.Days
		updates["days"] = *req.Days
	} else {
		days := DefaultDays
		row.Days = &days
	}
	if req.MealTypes != nil {
		mealTypes := string(*req.MealTypes)
		row.MealTypes = &mealTypes
		updates["meal_types"] = mealTypes
	}
	if req.CustomPreferences != nil {
		custom := strings.TrimSpace(*req.CustomPreferences)
		if n := utf8.RuneCountInString(custom); n > CustomPreferencesMaxLength {
			return nil, &ValidationError{
				Message: fmt.Sprintf("Custom preferences cannot exceed %d characters. Current length: %d", CustomPreferencesMaxLength, n),
				Err:     ErrCustomPreferencesTooLong,
			}
		}
		row.CustomPreferences = &custom
		updates["custom_preferences"] = custom
	}

	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	return s.Get(ctx, userID)
}

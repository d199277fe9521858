package models

import "time"

// UserPreference is the per-user dietary configuration. Nil fields were
// never supplied.
type UserPreference struct {
	ID                 uint      `gorm:"primaryKey" json:"-"`
	UserID             uint      `gorm:"not null;uniqueIndex" json:"-"`
	DietaryPreferences *string   `gorm:"type:text" json:"dietary_preferences"`
	Budget             *float64  `json:"budget"`
	Days               *int      `gorm:"default:3" json:"days"`
	MealTypes          *string   `gorm:"type:text" json:"meal_types"`
	CustomPreferences  *string   `gorm:"type:text" json:"custom_preferences"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

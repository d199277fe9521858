package models

import "time"

// MealPlan is a generated plan. PlanJSON holds the serialized plan object, or
// the raw model output when it could not be parsed.
type MealPlan struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;index"`
	Title       string    `gorm:"type:text"`
	PlanJSON    string    `gorm:"type:text;not null"`
	GroceryJSON *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index"`
}

func (MealPlan) TableName() string {
	return "meal_plans"
}

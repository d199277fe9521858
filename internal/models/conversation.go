package models

import "time"

// Conversation records each prompt/response exchange with the AI model.
type Conversation struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;index"`
	UserMessage string    `gorm:"type:text"`
	AIResponse  string    `gorm:"type:text"`
	CreatedAt   time.Time
}

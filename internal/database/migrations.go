package database

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migration is one schema step. Versions are applied in ascending order and
// recorded in schema_migrations, so each runs exactly once per database.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// Migrations returns the ordered schema history. Append only.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_core_tables", Up: createCoreTables},
		{Version: 2, Name: "add_custom_preferences", Up: addCustomPreferences},
		{Version: 3, Name: "create_system_logs", Up: createSystemLogs},
	}
}

// Migrate applies every migration not yet recorded.
func Migrate(db *gorm.DB) error {
	return apply(db, Migrations())
}

func apply(db *gorm.DB, migrations []Migration) error {
	if err := db.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var applied []models.SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: clock.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		slog.Info("migration applied", "version", m.Version, "name", m.Name)
	}
	return nil
}

// Version 1 tables as first shipped. These snapshots stay frozen even when
// the live models in internal/models grow new columns.

type userV1 struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userV1) TableName() string { return "users" }

type preferenceV1 struct {
	ID                 uint    `gorm:"primaryKey"`
	UserID             uint    `gorm:"not null;uniqueIndex"`
	User               userV1  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	DietaryPreferences *string `gorm:"type:text"`
	Days               *int    `gorm:"default:3"`
	MealTypes          *string `gorm:"type:text"`
	Budget             *float64
	UpdatedAt          time.Time
}

func (preferenceV1) TableName() string { return "user_preferences" }

type mealPlanV1 struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;index"`
	User        userV1    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"type:text"`
	PlanJSON    string    `gorm:"type:text;not null"`
	GroceryJSON *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index"`
}

func (mealPlanV1) TableName() string { return "meal_plans" }

type conversationV1 struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"not null;index"`
	User        userV1 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	UserMessage string `gorm:"type:text"`
	AIResponse  string `gorm:"type:text"`
	CreatedAt   time.Time
}

func (conversationV1) TableName() string { return "conversations" }

func createCoreTables(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(&userV1{}, &preferenceV1{}, &mealPlanV1{}, &conversationV1{})
}

func addCustomPreferences(tx *gorm.DB) error {
	return tx.Migrator().AddColumn(&preferenceV2{}, "CustomPreferences")
}

func createSystemLogs(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(&systemLogV3{})
}

type preferenceV2 struct {
	preferenceV1
	CustomPreferences *string `gorm:"type:text"`
}

func (preferenceV2) TableName() string { return "user_preferences" }

type systemLogV3 struct {
	ID        uint      `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"not null;index"`
	Level     string    `gorm:"size:10;not null;index"`
	Message   string    `gorm:"type:text"`
	RequestID string    `gorm:"size:64;index"`
	UserID    *string   `gorm:"size:36"`
	Action    string    `gorm:"size:100"`
	Error     string    `gorm:"type:text"`
	LatencyMs int
	Extra     datatypes.JSON
	CreatedAt time.Time
}

func (systemLogV3) TableName() string { return "system_logs" }

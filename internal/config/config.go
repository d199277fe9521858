package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	AppEnv string

	// Database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret string

	// AI provider
	AIProvider   string
	GeminiAPIKey string
	GeminiAPIURL string
	GeminiModel  string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	AITimeout time.Duration

	// Server
	Port        string
	CORSOrigins string

	// Observability
	SentryDSN        string
	LogRetentionDays int
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "nutrietary.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "nutrietary")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("AI_PROVIDER", ProviderGemini)
	v.SetDefault("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_TIMEOUT", "60s")

	v.SetDefault("PORT", "5000")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LOG_RETENTION_DAYS", 30)

	return &Config{
		AppEnv: v.GetString("APP_ENV"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:     v.GetString("DB_PATH"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		JWTSecret: v.GetString("JWT_SECRET"),

		AIProvider:   strings.ToLower(v.GetString("AI_PROVIDER")),
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		GeminiAPIURL: v.GetString("GEMINI_API_URL"),
		GeminiModel:  v.GetString("GEMINI_MODEL"),

		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
		OpenAIModel:   v.GetString("OPENAI_MODEL"),

		AITimeout: parseDuration(v.GetString("AI_TIMEOUT"), 60*time.Second),

		Port:        v.GetString("PORT"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),

		SentryDSN:        v.GetString("SENTRY_DSN"),
		LogRetentionDays: v.GetInt("LOG_RETENTION_DAYS"),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH environment variable is required for sqlite")
		}
	case DriverPostgres:
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required for postgres")
		}
	default:
		return errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=Asia/Kuala_Lumpur"
}

// SQLiteDSN enables foreign keys and waits on a locked database instead of
// failing immediately.
func (c *Config) SQLiteDSN() string {
	return c.DBPath + "?_foreign_keys=on&_busy_timeout=5000"
}

// AIConfigured reports whether the selected provider has a credential.
func (c *Config) AIConfigured() bool {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIAPIKey != ""
	}
	return c.GeminiAPIKey != ""
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Gemini   GeminiConfig
	OTEL     OTELConfig
	App      AppConfig
}

// DatabaseConfig holds the embedded database configuration
type DatabaseConfig struct {
	Path string
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey         string
	TextModel      string
	ImageModel     string
	RateLimitRPM   int
	RateLimitBurst int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// AppConfig holds application-level defaults applied when no setting is stored
type AppConfig struct {
	Language string
	Theme    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("ASSISTANT_DB_PATH", defaultDBPath()),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			TextModel:      getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
			ImageModel:     getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			RateLimitRPM:   getEnvAsInt("GEMINI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("GEMINI_RATE_LIMIT_BURST", 5),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "formulary-assistant"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		App: AppConfig{
			Language: getEnv("ASSISTANT_LANGUAGE", "pt"),
			Theme:    getEnv("ASSISTANT_THEME", "light"),
		},
	}, nil
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "formulary.db"
	}
	return filepath.Join(dir, "formulary-assistant", "formulary.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

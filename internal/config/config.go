package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken    string
	AdminChatID int64
	Chapa       ChapaConfig
	HTTPPort    string
	// PublicBaseURL is the externally reachable base for payment
	// callback and return URLs.
	PublicBaseURL string
}

// ChapaConfig holds payment gateway settings
type ChapaConfig struct {
	SecretKey string
	BaseURL   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken: os.Getenv("BOT_TOKEN"),
		Chapa: ChapaConfig{
			SecretKey: os.Getenv("CHAPA_SECRET_KEY"),
			BaseURL:   getEnv("CHAPA_BASE_URL", "https://api.chapa.co/v1"),
		},
		HTTPPort:      getEnv("PORT", "8080"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}

	adminID := os.Getenv("ADMIN_CHAT_ID")

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if adminID == "" {
		return nil, fmt.Errorf("ADMIN_CHAT_ID is required")
	}
	if cfg.Chapa.SecretKey == "" {
		return nil, fmt.Errorf("CHAPA_SECRET_KEY is required")
	}

	id, err := strconv.ParseInt(adminID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_ID must be a numeric chat ID: %w", err)
	}
	cfg.AdminChatID = id

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

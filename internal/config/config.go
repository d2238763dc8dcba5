package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"

	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey            string
	GeminiModel             string
	GeminiBaseURL           string
	GeminiRequestsPerMinute int
	GroqAPIKey              string
	RecipeProvider          string

	// Storage
	StorageBackend string
	DatabasePath   string
	DocumentsPath  string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	InviteSecret string
	InviteTTL    time.Duration

	LogLevel  string
	LogFormat string
	Port      string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("GEMINI_REQUESTS_PER_MINUTE", 15)
	v.SetDefault("RECIPE_PROVIDER", ProviderGemini)
	v.SetDefault("STORAGE_BACKEND", BackendSQLite)
	v.SetDefault("DATABASE_PATH", "data/smart-pantry.db")
	v.SetDefault("DOCUMENTS_PATH", "data/documents")
	v.SetDefault("INVITE_TTL", "168h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", "8080")

	geminiAPIKey := v.GetString("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	backend := strings.ToLower(v.GetString("STORAGE_BACKEND"))
	if backend != BackendSQLite && backend != BackendFile {
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", backend)
	}

	provider := strings.ToLower(v.GetString("RECIPE_PROVIDER"))
	groqAPIKey := v.GetString("GROQ_API_KEY")
	switch provider {
	case ProviderGemini:
	case ProviderGroq:
		if groqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported RECIPE_PROVIDER %q", provider)
	}

	allowed, err := parseIDList(v.GetString("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	rpm := v.GetInt("GEMINI_REQUESTS_PER_MINUTE")
	if rpm <= 0 {
		return nil, fmt.Errorf("GEMINI_REQUESTS_PER_MINUTE must be positive, got %d", rpm)
	}

	return &Config{
		GeminiAPIKey:            geminiAPIKey,
		GeminiModel:             v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:           strings.TrimRight(v.GetString("GEMINI_BASE_URL"), "/"),
		GeminiRequestsPerMinute: rpm,
		GroqAPIKey:              groqAPIKey,
		RecipeProvider:          provider,
		StorageBackend:          backend,
		DatabasePath:            v.GetString("DATABASE_PATH"),
		DocumentsPath:           v.GetString("DOCUMENTS_PATH"),
		TelegramBotToken:        v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:      v.GetString("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs:  allowed,
		AdminTelegramID:         v.GetInt64("ADMIN_TELEGRAM_ID"),
		InviteSecret:            v.GetString("INVITE_SECRET"),
		InviteTTL:               v.GetDuration("INVITE_TTL"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		LogFormat:               v.GetString("LOG_FORMAT"),
		Port:                    v.GetString("PORT"),
	}, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

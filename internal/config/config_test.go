package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, key := range []string{
			"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_REQUESTS_PER_MINUTE", "GROQ_API_KEY",
			"RECIPE_PROVIDER", "STORAGE_BACKEND", "DATABASE_PATH", "TELEGRAM_ALLOWED_USER_IDS",
			"INVITE_TTL", "PORT",
		} {
			t.Setenv(key, "")
		}
	}

	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gemini_key")

		cfg, err := NewFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "gemini_key", cfg.GeminiAPIKey)
		assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
		assert.Equal(t, 15, cfg.GeminiRequestsPerMinute)
		assert.Equal(t, ProviderGemini, cfg.RecipeProvider)
		assert.Equal(t, BackendSQLite, cfg.StorageBackend)
		assert.Equal(t, "data/smart-pantry.db", cfg.DatabasePath)
		assert.Equal(t, 168*time.Hour, cfg.InviteTTL)
		assert.Equal(t, "8080", cfg.Port)
		assert.Empty(t, cfg.TelegramAllowedUserIDs)
	})

	t.Run("Overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("STORAGE_BACKEND", "FILE")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "42, 7")
		t.Setenv("INVITE_TTL", "2h")

		cfg, err := NewFromEnv()
		require.NoError(t, err)

		assert.Equal(t, BackendFile, cfg.StorageBackend)
		assert.Equal(t, []int64{42, 7}, cfg.TelegramAllowedUserIDs)
		assert.Equal(t, 2*time.Hour, cfg.InviteTTL)
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		clearEnv(t)

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GEMINI_API_KEY environment variable not set", err.Error())
	})

	t.Run("GroqProviderWithoutKey", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("RECIPE_PROVIDER", "groq")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GROQ_API_KEY environment variable not set", err.Error())
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("STORAGE_BACKEND", "redis")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})

	t.Run("BadAllowList", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(t *testing.T, env map[string]string) {
		t.Helper()
		for _, key := range []string{
			"LLM_PROVIDER", "GEMINI_API_KEY", "GROQ_API_KEY", "PORT",
			"TELEGRAM_ALLOWED_USER_IDS", "ADMIN_TELEGRAM_ID", "CORS_ALLOWED_ORIGINS",
		} {
			t.Setenv(key, "")
		}
		for k, v := range env {
			t.Setenv(k, v)
		}
	}

	t.Run("Defaults", func(t *testing.T) {
		setEnv(t, map[string]string{"GEMINI_API_KEY": "gemini_key"})

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "3001", cfg.Port)
		assert.Equal(t, ProviderGemini, cfg.LLMProvider)
		assert.Equal(t, "gemini_key", cfg.GeminiAPIKey)
		assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
		assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
		assert.False(t, cfg.TracingEnabled)
	})

	t.Run("Overrides", func(t *testing.T) {
		setEnv(t, map[string]string{
			"GEMINI_API_KEY":            "gemini_key",
			"PORT":                      "9000",
			"TELEGRAM_ALLOWED_USER_IDS": "12, 34",
			"ADMIN_TELEGRAM_ID":         "12",
			"CORS_ALLOWED_ORIGINS":      "https://a.test, https://b.test",
		})

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, []int64{12, 34}, cfg.TelegramAllowedUserIDs)
		assert.Equal(t, int64(12), cfg.AdminTelegramID)
		assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSAllowedOrigins)
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		setEnv(t, nil)

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GEMINI_API_KEY environment variable not set", err.Error())
	})

	t.Run("MissingGroqAPIKey", func(t *testing.T) {
		setEnv(t, map[string]string{"LLM_PROVIDER": "groq", "GEMINI_API_KEY": "gemini_key"})

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GROQ_API_KEY environment variable not set", err.Error())
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		setEnv(t, map[string]string{"LLM_PROVIDER": "openai", "GEMINI_API_KEY": "gemini_key"})

		_, err := NewFromEnv()
		assert.EqualError(t, err, `unsupported LLM_PROVIDER "openai"`)
	})

	t.Run("LoadWithoutCredentials", func(t *testing.T) {
		setEnv(t, nil)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.GeminiAPIKey)
	})

	t.Run("BadUserIDs", func(t *testing.T) {
		setEnv(t, map[string]string{"GEMINI_API_KEY": "k", "TELEGRAM_ALLOWED_USER_IDS": "abc"})

		_, err := NewFromEnv()
		assert.ErrorContains(t, err, "TELEGRAM_ALLOWED_USER_IDS")
	})
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	assert.EqualError(t, cfg.RequireTelegram(), "TELEGRAM_BOT_TOKEN environment variable not set")

	cfg.TelegramBotToken = "token"
	assert.EqualError(t, cfg.RequireTelegram(), "TELEGRAM_WEBHOOK_URL environment variable not set")

	cfg.TelegramWebhookURL = "https://bot.test/webhook"
	assert.NoError(t, cfg.RequireTelegram())
}

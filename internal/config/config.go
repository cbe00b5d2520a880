package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Supported LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	Port         string
	DatabasePath string
	LogLevel     string
	LogFormat    string

	// LLM Config
	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	// HTTP API Config
	CORSAllowedOrigins []string
	APITokenSecret     string
	PlannerAPIURL      string

	// Tracing Config
	TracingEnabled  bool
	OTLPEndpoint    string
	TraceSampleRate float64

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("DATABASE_PATH", "data/planner.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LLM_PROVIDER", ProviderGemini)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GROQ_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("PLANNER_API_URL", "http://localhost:3001")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("TRACE_SAMPLE_RATE", 1.0)
	return v
}

// Load reads the configuration from environment variables without checking
// that LLM credentials are present. Commands that only talk to the HTTP API
// or the usage database use it directly.
func Load() (*Config, error) {
	v := newViper()

	provider := strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER")))
	if provider != ProviderGemini && provider != ProviderGroq {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	allowed, err := parseIDList(v.GetString("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if raw := strings.TrimSpace(v.GetString("ADMIN_TELEGRAM_ID")); raw != "" {
		adminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return &Config{
		Port:                   v.GetString("PORT"),
		DatabasePath:           v.GetString("DATABASE_PATH"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogFormat:              v.GetString("LOG_FORMAT"),
		LLMProvider:            provider,
		GeminiAPIKey:           v.GetString("GEMINI_API_KEY"),
		GeminiModel:            v.GetString("GEMINI_MODEL"),
		GroqAPIKey:             v.GetString("GROQ_API_KEY"),
		GroqModel:              v.GetString("GROQ_MODEL"),
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		APITokenSecret:         v.GetString("API_TOKEN_SECRET"),
		PlannerAPIURL:          strings.TrimRight(v.GetString("PLANNER_API_URL"), "/"),
		TracingEnabled:         v.GetBool("TRACING_ENABLED"),
		OTLPEndpoint:           v.GetString("OTLP_ENDPOINT"),
		TraceSampleRate:        v.GetFloat64("TRACE_SAMPLE_RATE"),
		TelegramBotToken:       v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     v.GetString("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}, nil
}

// NewFromEnv creates a new Config object from environment variables and
// fails when the selected provider has no API key.
func NewFromEnv() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireLLMCredentials(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireLLMCredentials checks the API key of the selected provider.
func (c *Config) RequireLLMCredentials() error {
	switch c.LLMProvider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	}
	return nil
}

// RequireTelegram checks the settings the Telegram bot cannot run without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, item := range splitList(raw) {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultCatalogURL   = "https://api.edamam.com/api/recipes/v2"
	defaultPredictorURL = "http://127.0.0.1:5000/predict"
	defaultGeminiModel  = "gemini-2.0-flash"

	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	Env          string
	Port         string
	DatabasePath string

	CatalogBaseURL     string
	CatalogCredentials Credentials
	CatalogCacheTTL    time.Duration
	RedisAddr          string

	PredictorURL string

	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqAPIURL   string

	JWTSecret          string
	CORSAllowedOrigins []string

	// Telegram Config (optional)
	TelegramBotToken    string
	TelegramAlertChatID int64

	HistoryRetentionDays int
	MetricsRetentionDays int
	RetentionInterval    time.Duration
}

// Load reads an optional .env file and then builds the Config from the environment.
// Variables already present in the environment win over the file.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)
	return NewFromEnv()
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	provider := strings.ToLower(envOr("LLM_PROVIDER", ProviderGemini))
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	groqAPIKey := os.Getenv("GROQ_API_KEY")
	switch provider {
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if groqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	var creds Credentials
	if path := os.Getenv("CATALOG_CREDENTIALS_FILE"); path != "" {
		loaded, err := LoadCredentialsFile(path)
		if err != nil {
			return nil, err
		}
		creds = loaded
	} else {
		creds = CredentialsFromEnv()
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("no catalog credentials configured")
	}

	var alertChatID int64
	if s := os.Getenv("TELEGRAM_ALERT_CHAT_ID"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALERT_CHAT_ID: %w", err)
		}
		alertChatID = id
	}

	return &Config{
		Env:                  envOr("APP_ENV", "development"),
		Port:                 envOr("PORT", "8080"),
		DatabasePath:         envOr("DATABASE_PATH", "data/nutriplan.db"),
		CatalogBaseURL:       envOr("EDAMAM_API_URL", defaultCatalogURL),
		CatalogCredentials:   creds,
		CatalogCacheTTL:      time.Duration(intFromEnv("CATALOG_CACHE_TTL_MINUTES", 60)) * time.Minute,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		PredictorURL:         envOr("GLYCEMIC_PREDICTOR_URL", defaultPredictorURL),
		LLMProvider:          provider,
		GeminiAPIKey:         geminiAPIKey,
		GeminiModel:          envOr("GEMINI_MODEL", defaultGeminiModel),
		GroqAPIKey:           groqAPIKey,
		GroqAPIURL:           os.Getenv("GROQ_API_URL"),
		JWTSecret:            jwtSecret,
		CORSAllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAlertChatID:  alertChatID,
		HistoryRetentionDays: intFromEnv("HISTORY_RETENTION_DAYS", 14),
		MetricsRetentionDays: intFromEnv("METRICS_RETENTION_DAYS", 30),
		RetentionInterval:    time.Duration(intFromEnv("RETENTION_INTERVAL_MINUTES", 360)) * time.Minute,
	}, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func intFromEnv(name string, def int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

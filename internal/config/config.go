package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Telegram TelegramConfig
	AI       AIConfig
	Auth     AuthConfig
}

// AppConfig controls the operator API server.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values for the ticket store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the session store.
// An empty Addr selects the in-memory session store instead.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	SessionTTLMin int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// TelegramConfig configures the transport adapter.
type TelegramConfig struct {
	Token           string
	OperatorChatID  int64
	UpdateTimeout   int
	UnavailableText string
}

// AIConfig configures the consultation client.
type AIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Referrer     string
	Title        string
	SystemPrompt string
	MaxReplyLen  int
}

// AuthConfig defines operator API authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	OperatorName          string
	OperatorPassword      string
	BcryptCost            int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	operatorChatID, err := strconv.ParseInt(getEnv("TELEGRAM_OPERATOR_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_OPERATOR_CHAT_ID: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:          os.Getenv("REDIS_ADDR"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			SessionTTLMin: getEnvAsInt("SESSION_IDLE_TTL_MINUTES", 0),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Telegram: TelegramConfig{
			Token:           os.Getenv("TELEGRAM_BOT_TOKEN"),
			OperatorChatID:  operatorChatID,
			UpdateTimeout:   getEnvAsInt("TELEGRAM_UPDATE_TIMEOUT_SECONDS", 60),
			UnavailableText: getEnv("TELEGRAM_UNAVAILABLE_TEXT", "The service is temporarily unavailable. Please try again later."),
		},
		AI: AIConfig{
			APIKey:       os.Getenv("AI_API_KEY"),
			BaseURL:      getEnv("AI_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:        getEnv("AI_MODEL", "google/gemini-flash-1.5"),
			Referrer:     getEnv("AI_HTTP_REFERRER", ""),
			Title:        getEnv("AI_TITLE", ""),
			SystemPrompt: getEnv("AI_SYSTEM_PROMPT", ""),
			MaxReplyLen:  getEnvAsInt("AI_MAX_REPLY_LENGTH", 1200),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			OperatorName:          getEnv("AUTH_OPERATOR_NAME", "operator"),
			OperatorPassword:      os.Getenv("AUTH_OPERATOR_PASSWORD"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns the idle session expiry, zero meaning no expiry.
func (r RedisConfig) SessionTTL() time.Duration {
	if r.SessionTTLMin <= 0 {
		return 0
	}
	return time.Duration(r.SessionTTLMin) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

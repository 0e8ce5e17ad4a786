package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL  PostgreSQLConfig
	Server      ServerConfig
	Chat        ChatConfig
	Logging     LoggingConfig
	Ollama      OllamaConfig
	PropertyAPI PropertyAPIConfig
	Redis       RedisConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // Full connection string, takes precedence over the fields below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// ChatConfig holds chat and correction endpoint settings
type ChatConfig struct {
	DefaultLocale      string
	MaxMessageLength   int     // In characters, 0 disables the check
	MaxListings        int     // Listings handed to the LLM per reply
	SearchLimit        int     // Listings requested from the property API
	RateLimitPerMinute float64 // Per client IP, 0 disables limiting
	RateLimitBurst     int
	CorrectionDistance float64 // Max cosine distance for reusing a stored correction
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// OllamaConfig holds Ollama API configuration
type OllamaConfig struct {
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Temperature    float64
	TopP           float64
	NumPredict     int
	KeepAlive      string
	Timeout        int // seconds
	Enabled        bool
}

// PropertyAPIConfig holds the remote property database API configuration
type PropertyAPIConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    int // seconds
	MaxRetries int
	RetryDelay time.Duration
	CacheTTL   time.Duration
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	Prefix   string
	Enabled  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "costa_assist"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			Enabled:            getEnvAsBool("PG_ENABLED", true),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnvAsList("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnvAsList("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Chat: ChatConfig{
			DefaultLocale:      getEnv("CHAT_DEFAULT_LOCALE", "en"),
			MaxMessageLength:   getEnvAsInt("CHAT_MAX_MESSAGE_LENGTH", 1000),
			MaxListings:        getEnvAsInt("CHAT_MAX_LISTINGS", 5),
			SearchLimit:        getEnvAsInt("CHAT_SEARCH_LIMIT", 20),
			RateLimitPerMinute: getEnvAsFloat("CHAT_RATE_LIMIT_PER_MINUTE", 30),
			RateLimitBurst:     getEnvAsInt("CHAT_RATE_LIMIT_BURST", 10),
			CorrectionDistance: getEnvAsFloat("CHAT_CORRECTION_DISTANCE", 0.15),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Ollama: OllamaConfig{
			BaseURL:        strings.TrimRight(getEnv("OLLAMA_BASE_URL", "http://localhost:11434"), "/"),
			ChatModel:      getEnv("OLLAMA_CHAT_MODEL", "llama3.1:8b"),
			EmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			Temperature:    getEnvAsFloat("OLLAMA_TEMPERATURE", 0.3),
			TopP:           getEnvAsFloat("OLLAMA_TOP_P", 0.9),
			NumPredict:     getEnvAsInt("OLLAMA_NUM_PREDICT", 512),
			KeepAlive:      getEnv("OLLAMA_KEEP_ALIVE", "5m"),
			Timeout:        getEnvAsInt("OLLAMA_TIMEOUT", 60),
			Enabled:        getEnvAsBool("OLLAMA_ENABLED", true),
		},
		PropertyAPI: PropertyAPIConfig{
			BaseURL:    strings.TrimRight(getEnv("PROPERTY_API_URL", "http://localhost:3001/api"), "/"),
			APIKey:     getEnv("PROPERTY_API_KEY", ""),
			Timeout:    getEnvAsInt("PROPERTY_API_TIMEOUT", 10),
			MaxRetries: getEnvAsInt("PROPERTY_API_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("PROPERTY_API_RETRY_DELAY", 200*time.Millisecond),
			CacheTTL:   getEnvAsDuration("PROPERTY_API_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
			Prefix:   getEnv("REDIS_PREFIX", "costa:"),
			Enabled:  getEnv("REDIS_ADDR", "") != "",
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.Chat.MaxListings <= 0 {
		return fmt.Errorf("CHAT_MAX_LISTINGS must be positive, got %d", c.Chat.MaxListings)
	}
	if c.Chat.SearchLimit < c.Chat.MaxListings {
		return fmt.Errorf("CHAT_SEARCH_LIMIT (%d) must be at least CHAT_MAX_LISTINGS (%d)", c.Chat.SearchLimit, c.Chat.MaxListings)
	}
	if c.PropertyAPI.BaseURL == "" {
		return fmt.Errorf("PROPERTY_API_URL is required")
	}
	if c.PropertyAPI.MaxRetries < 1 {
		return fmt.Errorf("PROPERTY_API_MAX_RETRIES must be at least 1")
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).Msg("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Float64("default", defaultValue).Msg("Invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Bool("default", defaultValue).Msg("Invalid bool value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Dur("default", defaultValue).Msg("Invalid duration value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsList(key, defaultValue string) []string {
	var items []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

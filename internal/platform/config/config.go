package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the service configuration assembled from the environment.
type Config struct {
	Port         string
	LogLevel     string
	LogFormat    string
	Namespace    string
	SettingsFile string

	// WebhookSecret, when set, overrides the secret in SettingsFile.
	WebhookSecret string

	StoreDriver string
	SQLitePath  string
	DatabaseURL string
	TablePrefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MaxBodyBytes    int64
	RateLimit       int
	RateBurst       int
	ShutdownTimeout time.Duration
}

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files (e.g. ".env"); with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() Config {
	return Config{
		Port:            GetEnv("PORT", "8080"),
		LogLevel:        GetEnv("LOG_LEVEL", "info"),
		LogFormat:       GetEnv("LOG_FORMAT", "json"),
		Namespace:       strings.Trim(GetEnv("WEBHOOK_NAMESPACE", "wp-mux-livestream"), "/"),
		SettingsFile:    GetEnv("SETTINGS_FILE", "settings.yaml"),
		WebhookSecret:   os.Getenv("MUX_WEBHOOK_SECRET"),
		StoreDriver:     strings.ToLower(GetEnv("STORE_DRIVER", "memory")),
		SQLitePath:      GetEnv("SQLITE_PATH", "data/livestreams.db"),
		DatabaseURL:     GetEnv("DATABASE_URL", ""),
		TablePrefix:     GetEnv("TABLE_PREFIX", ""),
		RedisAddr:       GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   GetEnv("REDIS_PASSWORD", ""),
		RedisDB:         GetEnvInt("REDIS_DB", 0),
		MaxBodyBytes:    int64(GetEnvInt("WEBHOOK_MAX_BODY_BYTES", 1<<20)),
		RateLimit:       GetEnvInt("WEBHOOK_RATE_LIMIT", 50),
		RateBurst:       GetEnvInt("WEBHOOK_RATE_BURST", 100),
		ShutdownTimeout: GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvDuration returns the duration value (e.g. "5s") of the environment
// variable named by key, or fallback if unset or unparsable.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

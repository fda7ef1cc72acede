package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string `validate:"required,numeric"`
	Env        string `validate:"oneof=development production test"`
	LogLevel   string `validate:"oneof=debug info warn error"`

	BackendBaseURL string        `validate:"required,url"`
	BackendTimeout time.Duration `validate:"gt=0"`

	SessionSecret string        `validate:"required,min=16"`
	SessionTTL    time.Duration `validate:"gt=0"`

	RedisAddr     string
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	ReviewsTTL    time.Duration `validate:"gt=0"`

	AuditDatabaseURL  string
	AdminPasswordHash string

	ContactRatePerMin int           `validate:"gt=0"`
	CORSOrigins       []string      `validate:"dive,url"`
	AvailabilityWait  time.Duration `validate:"gte=0"`
}

const defaultSessionSecret = "changeme-changeme-changeme"

var ErrDefaultSecret = errors.New("config: SESSION_SECRET must be set in production")

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		BackendBaseURL: strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:8000/api"), "/"),
		BackendTimeout: getDuration("BACKEND_TIMEOUT", 10*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionTTL:    getDuration("SESSION_TTL", 2*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		ReviewsTTL:    getDuration("REVIEWS_TTL", 6*time.Hour),

		AuditDatabaseURL:  getEnv("AUDIT_DATABASE_URL", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		ContactRatePerMin: getInt("CONTACT_RATE_PER_MIN", 5),
		CORSOrigins:       getList("CORS_ORIGINS"),
		AvailabilityWait:  getDuration("AVAILABILITY_WAIT", 1500*time.Millisecond),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.IsProduction() && cfg.SessionSecret == defaultSessionSecret {
		return nil, ErrDefaultSecret
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getDuration accepts Go durations ("90s") or plain seconds ("90").
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

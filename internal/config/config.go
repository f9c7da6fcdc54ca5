package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	DBDSN       string
	HTTPAddr    string
	JWTSecret   string

	Timezone         string
	SlotHorizonWeeks int
	// SlotTopUpCron is a cron spec; empty disables the background top-up.
	SlotTopUpCron string

	RedisAddr          string
	RateLimitPerMinute int
	KafkaBrokers       string
	KafkaNotifyTopic   string
	TelegramToken      string
	NotifyTimeout      time.Duration

	OTelEnabled  bool
	OTelEndpoint string

	// MigrationsDir overrides the embedded migrations when set.
	MigrationsDir string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the config from a lookup function.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Environment:      get("ENV", "development"),
		DBDSN:            get("DB_DSN", ""),
		HTTPAddr:         get("HTTP_ADDR", ":8080"),
		JWTSecret:        get("JWT_SECRET", ""),
		Timezone:         get("APP_TIMEZONE", "UTC"),
		RedisAddr:        get("REDIS_ADDR", ""),
		KafkaBrokers:     get("KAFKA_BROKERS", ""),
		KafkaNotifyTopic: get("KAFKA_NOTIFY_TOPIC", "counseling.notifications"),
		TelegramToken:    get("TELEGRAM_TOKEN", ""),
		OTelEndpoint:     get("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		MigrationsDir:    get("MIGRATIONS_DIR", ""),
	}

	// SLOT_TOPUP_CRON may be set to an empty string on purpose.
	cfg.SlotTopUpCron = "0 3 * * *"
	if v, ok := lookup("SLOT_TOPUP_CRON"); ok {
		cfg.SlotTopUpCron = strings.TrimSpace(v)
	}

	var err error
	if cfg.SlotHorizonWeeks, err = strconv.Atoi(get("SLOT_HORIZON_WEEKS", "4")); err != nil || cfg.SlotHorizonWeeks <= 0 {
		return nil, fmt.Errorf("SLOT_HORIZON_WEEKS must be a positive integer")
	}
	if cfg.RateLimitPerMinute, err = strconv.Atoi(get("RATE_LIMIT_PER_MINUTE", "30")); err != nil || cfg.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a non-negative integer")
	}
	if cfg.NotifyTimeout, err = time.ParseDuration(get("NOTIFY_TIMEOUT", "3s")); err != nil {
		return nil, fmt.Errorf("NOTIFY_TIMEOUT: %w", err)
	}
	if cfg.OTelEnabled, err = strconv.ParseBool(get("OTEL_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("OTEL_ENABLED: %w", err)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

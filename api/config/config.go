package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port           string
	BindAddr       string
	RedisURL       string
	MaxExpire      int    // seconds; hard cap on a watchdog's lifetime
	ExpiredChannel string // keyspace notification topic; must match the redis db index
	WebhookTimeout int    // seconds
	UIDir          string
	AllowedOrigins string // comma-separated extra CORS origins
}

func Load() *Config {
	return &Config{
		Port:           envOr("WATCHDOG_PORT", "8700"),
		BindAddr:       os.Getenv("WATCHDOG_BIND_ADDR"),
		RedisURL:       envOr("WATCHDOG_REDIS_URL", "redis://localhost:6379/0"),
		MaxExpire:      envInt("WATCHDOG_MAX_EXPIRE", 30*24*3600),
		ExpiredChannel: envOr("WATCHDOG_EXPIRED_CHANNEL", "__keyevent@0__:expired"),
		WebhookTimeout: envInt("WATCHDOG_WEBHOOK_TIMEOUT", 10),
		UIDir:          envOr("WATCHDOG_UI_DIR", ""),
		AllowedOrigins: envOr("WATCHDOG_ALLOWED_ORIGINS", ""),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

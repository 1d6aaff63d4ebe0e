package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramToken string
	WebAddr       string
	CatalogPath   string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MaxConcurrent  int
	RequestTimeout time.Duration
	HTTPTimeout    time.Duration
}

// Load reads the bot configuration; the Telegram token is required.
func Load() (Config, error) {
	cfg := load()
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if cfg.TelegramToken == "" {
		return Config{}, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return cfg, nil
}

// LoadWeb reads the web server configuration. Nothing is required.
func LoadWeb() Config {
	return load()
}

func load() Config {
	cfg := Config{
		WebAddr:        strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		CatalogPath:    strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		LogLevel:       strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:          getEnvBool("DEBUG", false),
		PreferIPv4:     getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:  getEnvInt("MAX_CONCURRENT", 4),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

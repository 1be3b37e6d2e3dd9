package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries the service runtime settings, loaded from the environment
// with an optional .env overlay.
type Config struct {
	AppEnv string
	Port   int

	// SQLite DSN handed to the bun driver
	DBDSN string
	// DBReset drops and recreates the users table on start
	DBReset bool

	Debug    bool
	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Port = getInt("PORT", 5000)
	cfg.DBDSN = getEnv("DB_DSN", "file:auth.db")
	cfg.DBReset = getBool("DB_RESET", false)
	cfg.Debug = getBool("DEBUG", false)
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultEnv           = "development"
	defaultDBPath        = "./dealdesk.db"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
	defaultMigrationsDir = "migrations"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env            string
	DBPath         string
	Port           string
	LogLevel       string
	LogFormat      string
	MigrationsDir  string
	AllowedOrigins []string

	warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is not an
// error; production should use real env injection. Variables already set in
// the environment are never overwritten by the file.
func LoadFrom(dotenvPath string) Config {
	_ = godotenv.Load(dotenvPath)

	cfg := Config{
		Env:           os.Getenv("APP_ENV"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
		cfg.warnings = append(cfg.warnings, "APP_ENV is not set, assuming "+defaultEnv)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
		cfg.warnings = append(cfg.warnings, "DB_PATH is not set, using "+defaultDBPath)
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
		if !cfg.IsDev() {
			cfg.LogFormat = "json"
		}
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = defaultMigrationsDir
	}

	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
		if !cfg.IsDev() {
			cfg.warnings = append(cfg.warnings, "ALLOWED_ORIGINS is not set, allowing any origin")
		}
	}

	return cfg
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv || c.Env == "dev"
}

// Warnings lists the defaults Load had to fall back on.
func (c Config) Warnings() []string {
	return c.warnings
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for the official platform endpoints. Both are overridable
// so tests and proxies can point elsewhere.
const (
	DefaultAPIBase  = "https://api.sgroup.qq.com"
	DefaultTokenURL = "https://bots.qq.com/app/getAppAccessToken"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	DatabaseURL string `yaml:"database_url"`
	TablePrefix string `yaml:"table_prefix"`
	DataDir     string `yaml:"data_dir"`
	CORSOrigins string `yaml:"cors_origins"`

	// Platform endpoints
	PlatformAPIBase  string `yaml:"platform_api_base"`
	PlatformTokenURL string `yaml:"platform_token_url"`

	// Admin session
	AdminPassword string `yaml:"admin_password"`
	SessionSecret string `yaml:"session_secret"`
}

// Load builds the configuration from the environment, optionally
// overridden by a YAML file named in CONFIG_FILE.
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		TablePrefix:      getTablePrefix(env),
		DataDir:          getEnv("DATA_DIR", "data"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		PlatformAPIBase:  getEnv("PLATFORM_API_BASE", DefaultAPIBase),
		PlatformTokenURL: getEnv("PLATFORM_TOKEN_URL", DefaultTokenURL),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		SessionSecret:    getEnv("SESSION_SECRET", ""),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	return cfg, nil
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/product-catalog/modules/auth"
	"github.com/example/product-catalog/modules/product"
	"github.com/example/product-catalog/modules/webhook"
	"github.com/joho/godotenv"
)

// Config is the process configuration.
type Config struct {
	HTTPPort int
	Database product.Config
	Auth     auth.Config
	Webhook  webhook.Config
}

// loadConfig reads an optional .env file, then the environment.
// Variables already set in the environment win over the file.
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := configFromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configFromEnv() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 3000),
		Database: product.Config{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", getEnv("DB_PATH", "products.db")),
			Debug:  getEnvBool("DB_DEBUG", false),
		},
		Auth: auth.Config{
			SecretKey: os.Getenv("AUTH_JWT_SECRET"),
			Issuer:    os.Getenv("AUTH_JWT_ISSUER"),
		},
		Webhook: webhook.Config{
			URL:           os.Getenv("WEBHOOK_URL"),
			ApplicationID: os.Getenv("WEBHOOK_APPLICATION_ID"),
			Timeout:       getEnvDuration("WEBHOOK_TIMEOUT", webhook.DefaultTimeout),
		},
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("DB_DSN must not be empty"))
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Webhook.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

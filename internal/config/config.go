// Package config loads the configuration of obligo from environment
// variables. A .env file is loaded first if available.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/obligo/backend/internal/projector"
)

var (
	ErrAPIURLMissing = errors.New("the API_URL environment variable is required")
	ErrBackupHour    = errors.New("BACKUP_HOUR must be between 0 and 23")
)

// Config is the configuration of obligo.
type Config struct {
	APIURL      *url.URL       // External URL of the API, used for links
	DBPath      string         // Path of the SQLite database file
	Location    *time.Location // Time zone that determines the current calendar day
	HorizonDays int            // Days the insufficient funds projection looks ahead
	BackupDir   string         // Directory for backup files
	BackupHour  int            // Hour of the day the scheduled jobs run
	Port        string
}

// Load reads the configuration from the environment.
//
// If envPath is given, that file must exist and is loaded. Otherwise, a
// .env file in the working directory is loaded if it exists. Variables that
// are already set are never overwritten.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	c := &Config{
		DBPath:    getEnvOrDefault("DB_PATH", "data/obligo.db"),
		BackupDir: getEnvOrDefault("BACKUP_DIR", "data/backups"),
		Port:      getEnvOrDefault("PORT", "8080"),
	}

	apiURL, ok := os.LookupEnv("API_URL")
	if !ok || apiURL == "" {
		return nil, ErrAPIURLMissing
	}

	u, err := url.Parse(strings.TrimSuffix(apiURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_URL: %w", err)
	}
	c.APIURL = u

	c.Location, err = time.LoadLocation(getEnvOrDefault("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	c.HorizonDays, err = parseIntEnv("HORIZON_DAYS", projector.DefaultHorizonDays)
	if err != nil {
		return nil, fmt.Errorf("invalid HORIZON_DAYS: %w", err)
	}

	c.BackupHour, err = parseIntEnv("BACKUP_HOUR", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKUP_HOUR: %w", err)
	}

	if c.BackupHour < 0 || c.BackupHour > 23 {
		return nil, ErrBackupHour
	}

	return c, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

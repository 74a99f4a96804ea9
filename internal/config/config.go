package config

import (
	"os"
)

type Config struct {
	APIBase         string
	AdminEmail      string
	AdminPassword   string
	SmartsheetBase  string
	SmartsheetToken string
	DatabaseDSN     string
	ProfilesDir     string
	JournalPath     string
	LogLevel        string
}

func Load() *Config {
	return &Config{
		APIBase:         getEnv("SHEETCTL_API_BASE", "http://localhost:3000/api/v1"),
		AdminEmail:      getEnv("SHEETCTL_ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("SHEETCTL_ADMIN_PASSWORD", ""),
		SmartsheetBase:  getEnv("SHEETCTL_SMARTSHEET_BASE", "https://api.smartsheet.com/2.0"),
		SmartsheetToken: getEnv("SHEETCTL_SMARTSHEET_TOKEN", ""),
		DatabaseDSN:     getEnv("SHEETCTL_DB", ""),
		ProfilesDir:     getEnv("SHEETCTL_PROFILES_DIR", "./profiles"),
		JournalPath:     getEnv("SHEETCTL_JOURNAL", "./sheetctl-runs.sqlite"),
		LogLevel:        getEnv("SHEETCTL_LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

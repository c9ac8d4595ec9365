package config

import (
	"os"
	"path/filepath"
	"strings"

	"fjacquet/stmt-csv/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv loads environment variables from a .env file in the current or
// parent directory. It reports the file it loaded, or "" if none was found.
// Variables already present in the environment win.
func LoadEnv() (string, error) {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return "", nil
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		return "", err
	}
	return envFile, nil
}

// ConfigureLoggingFromConfig builds the application logger from the Config.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	return logging.NewLogrus(logging.Options{
		Level:  config.Log.Level,
		Format: config.Log.Format,
	})
}

// NewLogger returns the configured logger behind the logging.Logger interface.
func NewLogger(config *Config) logging.Logger {
	return logging.FromLogrus(ConfigureLoggingFromConfig(config))
}

// applyLogEnv lets the process-wide LOG_LEVEL and LOG_FORMAT variables set
// the log options unless the STMT_ prefixed keys are present.
func applyLogEnv(config *Config) {
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" && os.Getenv("STMT_LOG_LEVEL") == "" {
		config.Log.Level = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok && v != "" && os.Getenv("STMT_LOG_FORMAT") == "" {
		config.Log.Format = strings.ToLower(v)
	}
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

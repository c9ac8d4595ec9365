// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/text/encoding/charmap"
)

// Config represents the complete application configuration. It is built once
// at startup and handed to the container; nothing reads it globally.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
		IncludeHeaders bool   `mapstructure:"include_headers" yaml:"include_headers"`
	} `mapstructure:"csv" yaml:"csv"`

	Rules struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"rules" yaml:"rules"`

	Categorization struct {
		DefaultCategory string `mapstructure:"default_category" yaml:"default_category"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Input struct {
		Manifest    string `mapstructure:"manifest" yaml:"manifest"`
		Directory   string `mapstructure:"directory" yaml:"directory"`
		Extension   string `mapstructure:"extension" yaml:"extension"`
		Encoding    string `mapstructure:"encoding" yaml:"encoding"`
		ExpenseSign string `mapstructure:"expense_sign" yaml:"expense_sign"`
	} `mapstructure:"input" yaml:"input"`

	Output struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
		Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	} `mapstructure:"output" yaml:"output"`
}

// Encodings maps the accepted input.encoding values to their decoders; nil
// means the input is read as-is.
var Encodings = map[string]*charmap.Charmap{
	"utf-8":        nil,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
}

// InitializeConfig loads the configuration from defaults, an optional
// config.yaml and STMT_* environment variables. When configFile is empty
// the standard locations are searched.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.stmt-csv")
		v.AddConfigPath(".stmt-csv")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("STMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyLogEnv(&config)

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.include_headers", false)

	v.SetDefault("rules.file", "categories.yaml")

	v.SetDefault("categorization.default_category", "Uncategorized")

	v.SetDefault("input.manifest", "statement_list.txt")
	v.SetDefault("input.directory", "")
	v.SetDefault("input.extension", ".csv")
	v.SetDefault("input.encoding", "utf-8")
	v.SetDefault("input.expense_sign", "negative")

	v.SetDefault("output.directory", ".")
	v.SetDefault("output.prefix", "statement")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", config.CSV.Delimiter)
	}

	if strings.TrimSpace(config.Rules.File) == "" {
		return fmt.Errorf("rules.file must not be empty")
	}

	if strings.TrimSpace(config.Categorization.DefaultCategory) == "" {
		return fmt.Errorf("categorization.default_category must not be empty")
	}

	if config.Input.Directory == "" && config.Input.Manifest == "" {
		return fmt.Errorf("either input.directory or input.manifest must be set")
	}

	config.Input.Encoding = strings.ToLower(config.Input.Encoding)
	if _, ok := Encodings[config.Input.Encoding]; !ok {
		return fmt.Errorf("unsupported input.encoding: %s", config.Input.Encoding)
	}

	config.Input.ExpenseSign = strings.ToLower(config.Input.ExpenseSign)
	if config.Input.ExpenseSign != "negative" && config.Input.ExpenseSign != "positive" {
		return fmt.Errorf("input.expense_sign must be 'negative' or 'positive', got: %s", config.Input.ExpenseSign)
	}

	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.CSV.Delimiter)[0]
}

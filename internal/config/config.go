package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Catalog struct {
		// SeedPath points at a YAML catalog replacing the bundled one
		SeedPath         string `yaml:"seed_path" env:"CATALOG_SEED_PATH"`
		StrictValidation bool   `yaml:"strict_validation" env:"CATALOG_STRICT_VALIDATION"`
		WatchChanges     bool   `yaml:"watch_changes" env:"CATALOG_WATCH_CHANGES"`
	} `yaml:"catalog"`

	Enrollment struct {
		LenientLookup bool `yaml:"lenient_lookup" env:"ENROLLMENT_LENIENT_LOOKUP"`
	} `yaml:"enrollment"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment
// variables, in that order of precedence from lowest to highest
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadDotEnv(GetEnv("ENV_FILE", ".env")); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Catalog.SeedPath = ""
	config.Catalog.StrictValidation = false
	config.Catalog.WatchChanges = true

	config.Enrollment.LenientLookup = false
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level %q", config.Logging.Level)
	}

	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", config.Logging.Format)
	}

	if config.Catalog.SeedPath != "" {
		if _, err := os.Stat(config.Catalog.SeedPath); err != nil {
			return fmt.Errorf("catalog seed file: %w", err)
		}
	}

	return nil
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

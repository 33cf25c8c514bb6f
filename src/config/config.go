package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"stock-analytics/src/helpers"
	"stock-analytics/src/models"
	"stock-analytics/src/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, optionally loaded from a .env file next to the process.
const (
	EnvDBType             = "STOCKS_DB_TYPE"
	EnvDBPath             = "STOCKS_DB_PATH"
	EnvDBConnectionString = "STOCKS_DB_CONNECTION_STRING"
	EnvLogLevel           = "STOCKS_LOG_LEVEL"
)

const (
	defaultUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	defaultYahooURL    = "https://query1.finance.yahoo.com"
	defaultSnapshot    = "data/raw_prices.csv"
	defaultSchema      = "public"
	defaultSelectCount = 4
	defaultPort        = 8501
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file, applies .env / environment
// overrides and defaults, then validates it.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Environment overrides (credentials never need to live in the YAML file)
	if err := LoadDotEnv(".env"); err != nil {
		return nil, helpers.NewConfigurationError("failed to load environment", err)
	}
	config.ApplyEnv()
	config.ApplyDefaults()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// LoadDotEnv loads path into the process environment. A missing file is not an error,
// and variables already set in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides storage and logging settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDBType); v != "" {
		c.Storage.DBType = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv(EnvDBConnectionString); v != "" {
		c.Storage.DBConnectionString = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills optional fields left empty.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.Schema == "" {
		c.Storage.Schema = defaultSchema
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 30
	}
	if c.Network.ConcurrentRequests == 0 {
		c.Network.ConcurrentRequests = 1
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = defaultUserAgent
	}
	if c.Ingestion.Source == "" {
		c.Ingestion.Source = "yahoo"
	}
	if c.Ingestion.BaseURL == "" {
		c.Ingestion.BaseURL = defaultYahooURL
	}
	if c.Ingestion.SnapshotPath == "" {
		c.Ingestion.SnapshotPath = defaultSnapshot
	}
	if len(c.Analytics.MovingAverageWindows) == 0 {
		c.Analytics.MovingAverageWindows = []int{20, 50}
	}
	if c.Analytics.DefaultSelectionSize == 0 {
		c.Analytics.DefaultSelectionSize = defaultSelectCount
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation. Failures are *helpers.ConfigurationError.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return helpers.NewConfigurationError("config validation failed", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server settings are only used by the dashboard, but a bad port is still a typo worth reporting
	if c.Port != 0 && (c.Port <= 1024 || c.Port > 65535) {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate Ingestion configuration
	for i, t := range c.Ingestion.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("ticker %d cannot be empty", i)
		}
	}
	if len(c.Ingestion.Tickers) > 0 {
		start, end, err := c.DateRange()
		if err != nil {
			return err
		}
		if !start.Before(end) {
			return fmt.Errorf("start_date %s must be before end_date %s", c.Ingestion.StartDate, c.Ingestion.EndDate)
		}
	}

	// Validate Analytics configuration
	for i, w := range c.Analytics.MovingAverageWindows {
		if w <= 0 {
			return fmt.Errorf("moving average window %d must be positive, got %d", i, w)
		}
	}
	if c.Analytics.DefaultSelectionSize < 0 {
		return fmt.Errorf("default selection size cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// DateRange returns the parsed ingestion range [start, end).
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = utils.ParseDate(c.Ingestion.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("start_date: %w", err)
	}
	end, err = utils.ParseDate(c.Ingestion.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("end_date: %w", err)
	}
	return start, end, nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

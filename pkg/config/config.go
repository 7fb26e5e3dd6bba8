package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete apidrift configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Diff      DiffConfig      `mapstructure:"diff"`
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
	Impact    ImpactConfig    `mapstructure:"impact"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// APIConfig contains backend connection settings
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryAfterDefault time.Duration `mapstructure:"retry_after_default"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	CacheSize         int           `mapstructure:"cache_size"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

// SessionConfig contains token persistence settings
type SessionConfig struct {
	TokenFile string `mapstructure:"token_file"`
}

// DiffConfig contains diff browser settings
type DiffConfig struct {
	PageSize            int           `mapstructure:"page_size"`
	LargeValueThreshold int           `mapstructure:"large_value_threshold"`
	PreviewChars        int           `mapstructure:"preview_chars"`
	SearchDebounce      time.Duration `mapstructure:"search_debounce"`
}

// SnapshotsConfig contains snapshot listing settings
type SnapshotsConfig struct {
	PageSize int      `mapstructure:"page_size"`
	Columns  []string `mapstructure:"columns"`
}

// ImpactConfig contains the display thresholds for risk tiers
type ImpactConfig struct {
	MediumThreshold float64 `mapstructure:"medium_threshold"`
	HighThreshold   float64 `mapstructure:"high_threshold"`
}

// OutputConfig contains output formatting configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Pretty  bool   `mapstructure:"pretty"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			Timeout:           30 * time.Second,
			RetryAfterDefault: 60 * time.Second,
			RequestsPerSecond: 0,
			Burst:             5,
			CacheSize:         256,
			CacheTTL:          10 * time.Minute,
		},
		Session: SessionConfig{
			TokenFile: "~/.apidrift/token",
		},
		Diff: DiffConfig{
			PageSize:            20,
			LargeValueThreshold: 5000,
			PreviewChars:        500,
			SearchDebounce:      300 * time.Millisecond,
		},
		Snapshots: SnapshotsConfig{
			PageSize: 10,
			Columns:  []string{"id", "time", "items", "size"},
		},
		Impact: ImpactConfig{
			MediumThreshold: 40,
			HighThreshold:   70,
		},
		Output: OutputConfig{
			Format:  "table",
			Pretty:  true,
			NoColor: false,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			File:   "",
		},
	}
}

// Load loads configuration from the config file, environment and bound flags
func Load() (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".apidrift"))
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("APIDRIFT")
	viper.AutomaticEnv()

	viper.BindEnv("api.base_url", "APIDRIFT_API_URL", "APIDRIFT_BASE_URL")
	viper.BindEnv("session.token_file", "APIDRIFT_TOKEN_FILE")
	viper.BindEnv("logging.level", "APIDRIFT_LOG_LEVEL", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base_url must be an absolute URL, got %q", c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}

	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api requests_per_second cannot be negative")
	}

	if c.Session.TokenFile == "" {
		return fmt.Errorf("session token_file is required")
	}

	if c.Diff.PageSize <= 0 || c.Snapshots.PageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}

	if c.Diff.PreviewChars <= 0 || c.Diff.LargeValueThreshold < c.Diff.PreviewChars {
		return fmt.Errorf("diff large_value_threshold must be at least preview_chars")
	}

	if c.Impact.MediumThreshold >= c.Impact.HighThreshold {
		return fmt.Errorf("impact medium_threshold must be below high_threshold")
	}

	return nil
}

// ExpandPaths expands home directory paths
func (c *Config) ExpandPaths() error {
	var err error
	c.Session.TokenFile, err = expandPath(c.Session.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to expand token file path: %w", err)
	}

	c.Logging.File, err = expandPath(c.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to expand log file path: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}

package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Database DatabaseConfig `toml:"database"`
	Cookies  CookiesConfig  `toml:"cookies"`
	Batch    BatchConfig    `toml:"batch"`
	Output   OutputConfig   `toml:"output"`
}

// BackendConfig contains settings for the transcription backend.
type BackendConfig struct {
	BaseURL                  string `toml:"base_url"`
	HealthTimeoutSeconds     int    `toml:"health_timeout_seconds"`
	RequestTimeoutSeconds    int    `toml:"request_timeout_seconds"`
	PollIntervalSeconds      int    `toml:"poll_interval_seconds"`
	BatchPollIntervalSeconds int    `toml:"batch_poll_interval_seconds"`
}

// PollInterval returns the single-subject poll cadence.
func (b BackendConfig) PollInterval() time.Duration {
	return time.Duration(b.PollIntervalSeconds) * time.Second
}

// BatchPollInterval returns the batch-surface poll cadence.
func (b BackendConfig) BatchPollInterval() time.Duration {
	return time.Duration(b.BatchPollIntervalSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CookiesConfig controls how session cookies reach the backend for
// members-only content. The curl file is parsed with [ParseCurlFile]; the
// browser name is passed through for yt-dlp's --cookies-from-browser.
type CookiesConfig struct {
	Browser  string `toml:"browser"`
	CurlFile string `toml:"curl_file"`
}

// BatchConfig contains settings for the batch surface.
type BatchConfig struct {
	RateLimit        float64 `toml:"rate_limit"` // title probes per second
	Limit            int     `toml:"limit"`      // max videos per extraction, 0 = all
	LedgerMaxEntries int     `toml:"ledger_max_entries"`
}

// OutputConfig contains transcript output settings.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the geopulse API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Geodata  GeodataConfig  `yaml:"geodata"`
	Agent    AgentConfig    `yaml:"agent"`
	Insights InsightsConfig `yaml:"insights"`
	Search   SearchConfig   `yaml:"search"`
	Retry    RetryConfig    `yaml:"retry"`
	Cache    CacheConfig    `yaml:"cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// GeodataConfig holds the geodata vendor settings. An empty APIKey is not a
// load-time error: the transport raises a credential error at first call.
type GeodataConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// AgentConfig holds the generation collaborator settings.
type AgentConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MapModel    string  `yaml:"map_model"`
	Temperature float32 `yaml:"temperature"`
}

// InsightsConfig holds density-query planning settings.
type InsightsConfig struct {
	MaxListSize  int     `yaml:"max_list_size"`
	MinRadiusM   int     `yaml:"min_radius_m"`
	SafetyMargin float64 `yaml:"safety_margin"`
}

// SearchConfig holds POI search and fallback seed-search settings.
type SearchConfig struct {
	DefaultRadiusM   int    `yaml:"default_radius_m"`
	FallbackCategory string `yaml:"fallback_category"`
	FallbackLimit    int    `yaml:"fallback_limit"`
}

// RetryConfig holds outbound retry settings for rate-limited providers.
type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// CacheConfig holds place-cache connection settings. Empty Addrs disables
// the cache.
type CacheConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	TTLSec    int      `yaml:"ttl_sec"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Agent.Model == "" {
		c.Agent.Model = "gpt-4o-mini"
	}
	if c.Agent.MapModel == "" {
		c.Agent.MapModel = c.Agent.Model
	}
	if c.Insights.MaxListSize <= 0 {
		c.Insights.MaxListSize = 100
	}
	if c.Insights.MinRadiusM <= 0 {
		c.Insights.MinRadiusM = 250
	}
	if c.Insights.SafetyMargin <= 0 || c.Insights.SafetyMargin >= 1 {
		c.Insights.SafetyMargin = 0.9
	}
	if c.Search.DefaultRadiusM <= 0 {
		c.Search.DefaultRadiusM = 5000
	}
	if c.Search.FallbackCategory == "" {
		c.Search.FallbackCategory = "point of interest"
	}
	if c.Search.FallbackLimit <= 0 {
		c.Search.FallbackLimit = 20
	}
	if c.Retry.MaxRetries <= 0 {
		c.Retry.MaxRetries = 3
	}
	if c.Retry.BaseDelayMS <= 0 {
		c.Retry.BaseDelayMS = 500
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "geopulse:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Insights.SafetyMargin >= 1 {
		return fmt.Errorf("insights.safety_margin must be below 1, got %v", c.Insights.SafetyMargin)
	}
	if c.Search.FallbackLimit > c.Insights.MaxListSize {
		return fmt.Errorf(
			"search.fallback_limit (%d) must not exceed insights.max_list_size (%d)",
			c.Search.FallbackLimit, c.Insights.MaxListSize,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

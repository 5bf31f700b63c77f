// Package config loads budget-advisor settings from defaults, an optional
// YAML file, a .env file, the environment and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported completion providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// ValidProviders lists all supported completion providers.
var ValidProviders = []string{ProviderGemini, ProviderAnthropic}

// Config holds all runtime settings.
type Config struct {
	Port string `yaml:"port"`

	// Completion service
	LLMProvider       string        `yaml:"llm_provider"`
	GeminiAPIKey      string        `yaml:"gemini_api_key"`
	AnthropicAPIKey   string        `yaml:"anthropic_api_key"`
	Model             string        `yaml:"model"`
	CompletionTimeout time.Duration `yaml:"completion_timeout"`

	// HTTP boundary
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	StaticDir      string `yaml:"static_dir"`

	// Spreadsheet sources
	GCSBucket       string `yaml:"gcs_bucket"`
	BigQueryProject string `yaml:"bigquery_project"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:              "8080",
		LLMProvider:       ProviderGemini,
		CompletionTimeout: 120 * time.Second,
		MaxUploadBytes:    32 << 20,
		StaticDir:         "static",
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return "claude-sonnet-4-20250514"
	}
	return "gemini-2.5-pro"
}

// LoadFile overlays a YAML file onto cfg. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("LoadFile: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("LoadFile: parse %s: %w", path, err)
	}
	return nil
}

// Getenv is the environment lookup used by ApplyEnv. Tests swap it out.
type Getenv func(key string) string

// ApplyEnv overlays environment variables onto cfg.
func (c *Config) ApplyEnv(getenv Getenv) error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.Port, "PORT")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.Model, "LLM_MODEL")
	setString(&c.StaticDir, "STATIC_DIR")
	setString(&c.GCSBucket, "GCS_BUCKET")
	setString(&c.BigQueryProject, "BIGQUERY_PROJECT", "GOOGLE_CLOUD_PROJECT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if v := getenv("COMPLETION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ApplyEnv: COMPLETION_TIMEOUT: %w", err)
		}
		c.CompletionTimeout = d
	}
	if v := getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ApplyEnv: MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	return nil
}

// RegisterFlags binds the command-line overrides to fs. Flag defaults are
// the values already in cfg, so unset flags leave them unchanged.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "HTTP server port")
	fs.StringVar(&c.LLMProvider, "provider", c.LLMProvider, "completion provider (gemini or anthropic)")
	fs.StringVar(&c.Model, "model", c.Model, "completion model name")
	fs.DurationVar(&c.CompletionTimeout, "completion-timeout", c.CompletionTimeout, "timeout for a single completion call")
	fs.Int64Var(&c.MaxUploadBytes, "max-upload-bytes", c.MaxUploadBytes, "maximum accepted upload size")
	fs.StringVar(&c.StaticDir, "static", c.StaticDir, "directory holding index.html")
	fs.StringVar(&c.GCSBucket, "bucket", c.GCSBucket, "GCS bucket for spreadsheet uploads")
	fs.StringVar(&c.BigQueryProject, "bq-project", c.BigQueryProject, "BigQuery project for query sources")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (console or json)")
}

// Load builds the configuration for a binary: defaults, then the YAML file
// named by -config, then .env, then the environment, then flags.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	path := configPath(args)

	cfg, err := LoadWithoutFlags(path)
	if err != nil {
		return nil, err
	}

	fs.String("config", path, "path to a YAML config file")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("Load: parse flags: %w", err)
	}

	cfg.Finalize()
	return cfg, nil
}

// LoadWithoutFlags applies every layer except command-line flags, for
// binaries that parse their own flags.
func LoadWithoutFlags(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}

	// .env is optional; values already set in the process environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("LoadWithoutFlags: read .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize fills values that depend on other settings.
func (c *Config) Finalize() {
	if c.Model == "" {
		c.Model = DefaultModel(c.LLMProvider)
	}
}

// APIKey returns the key for the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	valid := false
	for _, p := range ValidProviders {
		if c.LLMProvider == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLMProvider, ValidProviders)
	}

	if c.APIKey() == "" {
		switch c.LLMProvider {
		case ProviderAnthropic:
			return errors.New("completion API key not configured (set ANTHROPIC_API_KEY)")
		default:
			return errors.New("completion API key not configured (set GEMINI_API_KEY or GOOGLE_API_KEY)")
		}
	}

	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("completion timeout must be positive, got %s", c.CompletionTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// configPath finds -config/--config in args without parsing the other flags.
func configPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case len(a) > 8 && a[:8] == "-config=":
			return a[8:]
		case len(a) > 9 && a[:9] == "--config=":
			return a[9:]
		}
	}
	return os.Getenv("BUDGET_ADVISOR_CONFIG")
}

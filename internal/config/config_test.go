package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "advisor.yaml")
	yml := "port: \"9090\"\nllm_provider: anthropic\ncompletion_timeout: 45s\nlog_format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, 45*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o600))

	err := Default().LoadFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, c *Config)
	}{
		{
			name: "gemini key",
			env:  map[string]string{"GEMINI_API_KEY": "g-key"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "g-key", c.GeminiAPIKey)
			},
		},
		{
			name: "google key fallback",
			env:  map[string]string{"GOOGLE_API_KEY": "google-key"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "google-key", c.GeminiAPIKey)
			},
		},
		{
			name: "gemini key wins over google key",
			env:  map[string]string{"GEMINI_API_KEY": "g", "GOOGLE_API_KEY": "o"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "g", c.GeminiAPIKey)
			},
		},
		{
			name: "durations and sizes",
			env:  map[string]string{"COMPLETION_TIMEOUT": "5s", "MAX_UPLOAD_BYTES": "1024"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 5*time.Second, c.CompletionTimeout)
				assert.Equal(t, int64(1024), c.MaxUploadBytes)
			},
		},
		{
			name: "provider and logging",
			env:  map[string]string{"LLM_PROVIDER": "anthropic", "LOG_LEVEL": "debug", "GCS_BUCKET": "sheets"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, ProviderAnthropic, c.LLMProvider)
				assert.Equal(t, "debug", c.LogLevel)
				assert.Equal(t, "sheets", c.GCSBucket)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.ApplyEnv(envMap(tt.env)))
			tt.check(t, cfg)
		})
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	assert.Error(t, Default().ApplyEnv(envMap(map[string]string{"COMPLETION_TIMEOUT": "soon"})))
	assert.Error(t, Default().ApplyEnv(envMap(map[string]string{"MAX_UPLOAD_BYTES": "lots"})))
}

func TestRegisterFlags(t *testing.T) {
	cfg := Default()
	cfg.GCSBucket = "from-env"

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-port", "7000", "-provider", "anthropic"}))

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, "from-env", cfg.GCSBucket)
}

func TestFinalize(t *testing.T) {
	cfg := Default()
	cfg.Finalize()
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)

	cfg = Default()
	cfg.LLMProvider = ProviderAnthropic
	cfg.Finalize()
	assert.Equal(t, DefaultModel(ProviderAnthropic), cfg.Model)

	cfg = Default()
	cfg.Model = "custom"
	cfg.Finalize()
	assert.Equal(t, "custom", cfg.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid gemini",
			mutate: func(c *Config) { c.GeminiAPIKey = "k" },
		},
		{
			name: "valid anthropic",
			mutate: func(c *Config) {
				c.LLMProvider = ProviderAnthropic
				c.AnthropicAPIKey = "k"
			},
		},
		{
			name:    "missing gemini key",
			mutate:  func(c *Config) {},
			wantErr: "GEMINI_API_KEY",
		},
		{
			name: "anthropic selected with only gemini key",
			mutate: func(c *Config) {
				c.LLMProvider = ProviderAnthropic
				c.GeminiAPIKey = "k"
			},
			wantErr: "ANTHROPIC_API_KEY",
		},
		{
			name: "unknown provider",
			mutate: func(c *Config) {
				c.LLMProvider = "oracle"
				c.GeminiAPIKey = "k"
			},
			wantErr: "invalid LLM provider",
		},
		{
			name: "zero timeout",
			mutate: func(c *Config) {
				c.GeminiAPIKey = "k"
				c.CompletionTimeout = 0
			},
			wantErr: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("BUDGET_ADVISOR_CONFIG", "")

	assert.Equal(t, "a.yaml", configPath([]string{"-port", "1", "-config", "a.yaml"}))
	assert.Equal(t, "b.yaml", configPath([]string{"--config=b.yaml"}))
	assert.Equal(t, "c.yaml", configPath([]string{"-config=c.yaml"}))
	assert.Equal(t, "", configPath([]string{"-port", "1"}))
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	yml := "port: \"9000\"\nlog_level: warn\ngcs_bucket: from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("BUDGET_ADVISOR_CONFIG", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GEMINI_API_KEY", "env-key")

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-config", path, "-port", "9100"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "flag beats file")
	assert.Equal(t, "debug", cfg.LogLevel, "env beats file")
	assert.Equal(t, "from-file", cfg.GCSBucket, "file beats default")
	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.NoError(t, cfg.Validate())
}

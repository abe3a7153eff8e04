package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtoy/cli/internal/auth"
	"github.com/devtoy/cli/internal/devto"
	"github.com/devtoy/cli/internal/format"
)

// chdir moves into a directory with no devtoy.yaml for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func isolate(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	v := viper.New()

	used, err := Init(v, "")
	require.NoError(t, err)
	assert.Empty(t, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, devto.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, auth.DefaultPath(), cfg.KeyFile)
	assert.Equal(t, format.DefaultCommand, cfg.Formatter)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, devto.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "devtoy", cfg.GitAuthorName)
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DEVTOY_BASE_URL", "http://localhost:3000/api/")
	t.Setenv("DEVTOY_CONCURRENCY", "8")
	t.Setenv("DEVTOY_TIMEOUT", "5s")
	t.Setenv("DEVTOY_FORMATTER", "none")
	t.Setenv("DEVTOY_GIT_AUTHOR_NAME", "Ada")

	v := viper.New()
	_, err := Init(v, "")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", cfg.BaseURL)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "none", cfg.Formatter)
	assert.Equal(t, "Ada", cfg.GitAuthorName)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "devtoy.yaml")
	content := `base_url: https://forem.example.com/api
key_file: /var/tmp/devtoy-key
formatter: mdformat -
concurrency: 2
git:
  author_email: ada@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	used, err := Init(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://forem.example.com/api", cfg.BaseURL)
	assert.Equal(t, "/var/tmp/devtoy-key", cfg.KeyFile)
	assert.Equal(t, "mdformat -", cfg.Formatter)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "ada@example.com", cfg.GitAuthorEmail)
}

func TestLoadConfigFileFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "devtoy.yaml"), []byte("concurrency: 6\n"), 0o644))

	v := viper.New()
	used, err := Init(v, "")
	require.NoError(t, err)
	assert.NotEmpty(t, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Concurrency)
}

func TestInitMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Init(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			BaseURL:     devto.DefaultBaseURL,
			KeyFile:     "/tmp/devtoy/apikey.txt",
			Concurrency: 4,
			Timeout:     time.Second,
			LogLevel:    "warn",
		}
	}

	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "zero timeout disables it", modify: func(c *Config) { c.Timeout = 0 }},
		{name: "relative base url", modify: func(c *Config) { c.BaseURL = "dev.to/api" }, errMsg: "must be an absolute URL"},
		{name: "ftp base url", modify: func(c *Config) { c.BaseURL = "ftp://dev.to/api" }, errMsg: "scheme must be http or https"},
		{name: "empty key file", modify: func(c *Config) { c.KeyFile = "" }, errMsg: "key_file cannot be empty"},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, errMsg: "must be at least 1"},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, errMsg: "cannot be negative"},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }, errMsg: "unsupported log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

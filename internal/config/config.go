// Package config resolves devtoy settings from flags, DEVTOY_* environment
// variables, an optional devtoy.yaml file and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/devtoy/cli/internal/auth"
	"github.com/devtoy/cli/internal/devto"
	"github.com/devtoy/cli/internal/export"
	"github.com/devtoy/cli/internal/format"
)

// Setting keys
const (
	KeyBaseURL        = "base_url"
	KeyKeyFile        = "key_file"
	KeyFormatter      = "formatter"
	KeyConcurrency    = "concurrency"
	KeyTimeout        = "timeout"
	KeyLogLevel       = "log_level"
	KeyGitAuthorName  = "git.author_name"
	KeyGitAuthorEmail = "git.author_email"
)

const (
	envPrefix  = "DEVTOY"
	configName = "devtoy"
)

// Config holds the resolved settings for one invocation
type Config struct {
	BaseURL        string
	KeyFile        string
	Formatter      string
	Concurrency    int
	Timeout        time.Duration
	LogLevel       string
	GitAuthorName  string
	GitAuthorEmail string
}

// SetDefaults registers the built-in defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, devto.DefaultBaseURL)
	v.SetDefault(KeyKeyFile, auth.DefaultPath())
	v.SetDefault(KeyFormatter, format.DefaultCommand)
	v.SetDefault(KeyConcurrency, export.DefaultConcurrency)
	v.SetDefault(KeyTimeout, devto.DefaultTimeout)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyGitAuthorName, "devtoy")
	v.SetDefault(KeyGitAuthorEmail, "devtoy@localhost")
}

// Init wires environment lookup and reads the config file into v.
// With cfgFile empty, devtoy.yaml is searched in the working directory and
// ~/.config/devtoy. It returns the file used, or "" when none was found.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load reads the resolved settings out of v and validates them
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BaseURL:        strings.TrimRight(v.GetString(KeyBaseURL), "/"),
		KeyFile:        v.GetString(KeyKeyFile),
		Formatter:      v.GetString(KeyFormatter),
		Concurrency:    v.GetInt(KeyConcurrency),
		Timeout:        v.GetDuration(KeyTimeout),
		LogLevel:       v.GetString(KeyLogLevel),
		GitAuthorName:  v.GetString(KeyGitAuthorName),
		GitAuthorEmail: v.GetString(KeyGitAuthorEmail),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for values no command can work with
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s %q: must be an absolute URL", KeyBaseURL, c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", KeyBaseURL, c.BaseURL)
	}
	if c.KeyFile == "" {
		return fmt.Errorf("%s cannot be empty", KeyKeyFile)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("invalid %s %d: must be at least 1", KeyConcurrency, c.Concurrency)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid %s %s: cannot be negative", KeyTimeout, c.Timeout)
	}
	if _, err := ValidateLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Package config handles configuration loading for cryptocli.
// Values come from command-line flags, environment variables, an optional
// YAML config file, and built-in defaults, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Defaults.
const (
	DefaultAPIBase        = "https://api.coingecko.com/api/v3"
	DefaultConnectTimeout = 3.0  // seconds
	DefaultReadTimeout    = 10.0 // seconds
	DefaultDBPath         = "data/crypto.db"
	DefaultUserAgent      = "crypto-cli/0.1 (+https://github.com/lyutskangeorgiev/crypto-cli)"
)

// Environment variables that carry the CoinGecko API key, in lookup order.
var APIKeyEnvVars = []string{"COINGECKO_API_KEY", "CRYPTOCLI_API_KEY"}

// Flag names bound to config keys.
var flagKeys = map[string]string{
	"api_base":        "api-base",
	"connect_timeout": "connect-timeout",
	"read_timeout":    "read-timeout",
	"db":              "db",
	"verbose":         "verbose",
	"user_agent":      "user-agent",
	"api_key":         "api-key",
	"logging.level":   "log-level",
}

// Config is the resolved application configuration. It is built once per
// invocation by Load and must not be modified afterwards.
type Config struct {
	APIBase        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	DBPath         string // reserved for local persistence; not read yet
	Verbose        bool
	UserAgent      string
	APIKey         string
	APIKeySource   APIKeySource
	Logging        LoggingConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// settings mirrors the config file layout.
type settings struct {
	APIBase        string        `mapstructure:"api_base"        yaml:"api_base"`
	ConnectTimeout float64       `mapstructure:"connect_timeout" yaml:"connect_timeout"` // seconds
	ReadTimeout    float64       `mapstructure:"read_timeout"    yaml:"read_timeout"`    // seconds
	DB             string        `mapstructure:"db"              yaml:"db"`
	Verbose        bool          `mapstructure:"verbose"         yaml:"verbose"`
	UserAgent      string        `mapstructure:"user_agent"      yaml:"user_agent"`
	APIKey         string        `mapstructure:"api_key"         yaml:"api_key"`
	Logging        LoggingConfig `mapstructure:"logging"         yaml:"logging"`
}

// InvalidValueError reports a configuration value that cannot be used.
// Flag names the command-line flag that sets it.
type InvalidValueError struct {
	Flag   string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for '--%s': %s", e.Flag, e.Reason)
}

// Load resolves the configuration. fs may be nil; when set, its flags named
// in flagKeys are bound, and a "config" flag selects an explicit config file.
//
// Config file search order when no file is given:
//  1. ~/.cryptocli/config.yaml
//  2. /etc/cryptocli/config.yaml
//
// Environment variables use the CRYPTOCLI_ prefix, e.g. CRYPTOCLI_API_BASE.
// The API key is also read from COINGECKO_API_KEY.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	configFile := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(homeDir(), ".cryptocli"))
		v.AddConfigPath("/etc/cryptocli")
	}

	v.SetEnvPrefix("CRYPTOCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(append([]string{"api_key"}, APIKeyEnvVars...)...); err != nil {
		return nil, fmt.Errorf("bind api key env: %w", err)
	}

	if fs != nil {
		for key, name := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg := &Config{
		APIBase:        strings.TrimRight(strings.TrimSpace(s.APIBase), "/"),
		ConnectTimeout: seconds(s.ConnectTimeout),
		ReadTimeout:    seconds(s.ReadTimeout),
		DBPath:         s.DB,
		Verbose:        s.Verbose,
		UserAgent:      s.UserAgent,
		APIKey:         strings.TrimSpace(s.APIKey),
		APIKeySource:   apiKeySource(v, fs),
		Logging:        s.Logging,
	}
	if cfg.APIKey == "" {
		cfg.APIKeySource = KeySourceNone
	}

	if err := cfg.validate(s); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults sets defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base", DefaultAPIBase)
	v.SetDefault("connect_timeout", DefaultConnectTimeout)
	v.SetDefault("read_timeout", DefaultReadTimeout)
	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("verbose", false)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("api_key", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}

func (c *Config) validate(s settings) error {
	if s.ConnectTimeout <= 0 {
		return &InvalidValueError{Flag: "connect-timeout", Reason: fmt.Sprintf("must be > 0, got %v", s.ConnectTimeout)}
	}
	if s.ReadTimeout <= 0 {
		return &InvalidValueError{Flag: "read-timeout", Reason: fmt.Sprintf("must be > 0, got %v", s.ReadTimeout)}
	}

	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &InvalidValueError{Flag: "api-base", Reason: fmt.Sprintf("%q is not an absolute http(s) URL", c.APIBase)}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &InvalidValueError{Flag: "log-level", Reason: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}

// String renders the config for display with the API key masked.
func (c *Config) String() string {
	return fmt.Sprintf("api_base=%s connect_timeout=%s read_timeout=%s db=%s verbose=%t user_agent=%q api_key=%s",
		c.APIBase, c.ConnectTimeout, c.ReadTimeout, c.DBPath, c.Verbose, c.UserAgent, maskKey(c.APIKey))
}

// MarshalLogObject implements zapcore.ObjectMarshaler. The API key is never
// logged; only whether one is set.
func (c *Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("api_base", c.APIBase)
	enc.AddDuration("connect_timeout", c.ConnectTimeout)
	enc.AddDuration("read_timeout", c.ReadTimeout)
	enc.AddString("user_agent", c.UserAgent)
	enc.AddBool("verbose", c.Verbose)
	enc.AddBool("api_key_set", c.APIKey != "")
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

package config

import (
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceFlag   APIKeySource = "flag"
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "CG-...abc"
}

// CheckAPIKey returns the display status of the configured API key.
func CheckAPIKey(cfg *Config) KeyStatus {
	status := KeyStatus{
		Name:   "CoinGecko API Key",
		Source: cfg.APIKeySource,
		IsSet:  cfg.APIKey != "",
	}
	if status.IsSet {
		status.Masked = maskKey(cfg.APIKey)
	} else {
		status.Source = KeySourceNone
	}
	return status
}

// apiKeySource works out which layer supplied api_key.
func apiKeySource(v *viper.Viper, fs *pflag.FlagSet) APIKeySource {
	if fs != nil {
		if f := fs.Lookup("api-key"); f != nil && f.Changed {
			return KeySourceFlag
		}
	}
	for _, name := range APIKeyEnvVars {
		if os.Getenv(name) != "" {
			return KeySourceEnv
		}
	}
	if v.InConfig("api_key") {
		return KeySourceConfig
	}
	return KeySourceNone
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}

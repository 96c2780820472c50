// Package config loads contentadmin settings from defaults, an optional YAML
// file, .env, CONTENTADMIN_* environment variables and command-line flags, in
// increasing priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "CONTENTADMIN"

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	UI        UIConfig        `mapstructure:"ui"`
	Log       LogConfig       `mapstructure:"log"`
	Session   SessionConfig   `mapstructure:"session"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	MockAPI   MockAPIConfig   `mapstructure:"mockapi"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst int           `mapstructure:"rate_burst"`
}

type UIConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type SessionConfig struct {
	Dir string `mapstructure:"dir"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

type MockAPIConfig struct {
	Addr          string        `mapstructure:"addr"`
	DB            string        `mapstructure:"db"`
	AdminEmail    string        `mapstructure:"admin_email"`
	AdminPassword string        `mapstructure:"admin_password"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".contentadmin")

	v.SetDefault("api.base_url", "http://localhost:8085/api/v1/creative")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.rate_limit", 10.0)
	v.SetDefault("api.rate_burst", 5)
	v.SetDefault("ui.page_size", 10)
	v.SetDefault("log.file", filepath.Join(base, "contentadmin.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("session.dir", base)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "contentadmin")
	v.SetDefault("mockapi.addr", ":8085")
	v.SetDefault("mockapi.db", filepath.Join(base, "mockapi.db"))
	v.SetDefault("mockapi.admin_email", "admin@example.com")
	v.SetDefault("mockapi.admin_password", "changeme123")
	v.SetDefault("mockapi.jwt_secret", "contentadmin-dev-secret")
	v.SetDefault("mockapi.token_ttl", 24*time.Hour)
}

// Load reads configuration. configFile may be empty, in which case
// contentadmin.yaml is looked up in . and $HOME/.contentadmin. Flags in
// fs, when non-nil, are bound by name (dots in keys become dashes:
// "api.base_url" is bound to --api-base-url).
func Load(configFile string, fs *pflag.FlagSet) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("contentadmin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".contentadmin"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for _, key := range v.AllKeys() {
			if f := fs.Lookup(FlagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FlagName maps a config key to its command-line flag name.
func FlagName(key string) string {
	return strings.NewReplacer(".", "-", "_", "-").Replace(key)
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.UI.PageSize < 1 {
		return fmt.Errorf("ui.page_size must be at least 1, got %d", c.UI.PageSize)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	return nil
}

// Package config contains the definition of the application configuration
// structure and the logic required to load and validate it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultUpdateInterval is used when the config file omits UpdateIntervalSeconds.
const DefaultUpdateInterval = 21600 * time.Second

// DefaultListenAddress is the address the status/metrics/static HTTP server binds to.
const DefaultListenAddress = ":8080"

// Config represents the daemon's configuration, loaded from data/config.json
// and layered with environment variables for CouchDB credentials.
type Config struct {
	UpdateIntervalSeconds int      `mapstructure:"UpdateIntervalSeconds"`
	IdPs                  []string `mapstructure:"IdPs"`
	CouchDBservers        []string `mapstructure:"CouchDBservers"`
	ListenAddress         string   `mapstructure:"ListenAddress"`
	MetricsEnabled        bool     `mapstructure:"MetricsEnabled"`

	// CouchDBUser and CouchDBPassword are never read from the config file;
	// they come exclusively from the environment (see Load).
	CouchDBUser     string `mapstructure:"-"`
	CouchDBPassword string `mapstructure:"-"`
}

// UpdateInterval returns the configured tick interval, applying the default
// when the config file left it unset (zero).
func (c *Config) UpdateInterval() time.Duration {
	if c.UpdateIntervalSeconds <= 0 {
		return DefaultUpdateInterval
	}
	return time.Duration(c.UpdateIntervalSeconds) * time.Second
}

// HasCredentials reports whether both CouchDB credential env vars were set.
func (c *Config) HasCredentials() bool {
	return c.CouchDBUser != "" && c.CouchDBPassword != ""
}

// Load reads configuration from configPath (JSON) via viper, overlays the
// COUCHDB_USER/COUCHDB_PWD (or COUCHDB_PASSWORD alias) environment
// variables, applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.SetDefault("ListenAddress", DefaultListenAddress)
	v.SetDefault("MetricsEnabled", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config unreadable at %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unreadable at %s: %w", configPath, err)
	}

	cfg.CouchDBUser = firstNonEmptyEnv(v, "COUCHDB_USER")
	cfg.CouchDBPassword = firstNonEmptyEnv(v, "COUCHDB_PWD", "COUCHDB_PASSWORD")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config unreadable at %s: %w", configPath, err)
	}

	return &cfg, nil
}

// firstNonEmptyEnv binds each candidate name into its own viper env lookup
// and returns the first one with a non-empty value. COUCHDB_PWD is the
// canonical variable; COUCHDB_PASSWORD is accepted as a documented alias so
// deployments that only know one name still work.
func firstNonEmptyEnv(v *viper.Viper, names ...string) string {
	for _, name := range names {
		key := "env." + strings.ToLower(name)
		_ = v.BindEnv(key, name)
		if val := v.GetString(key); val != "" {
			return val
		}
	}
	return ""
}

func (c *Config) validate() error {
	if c.UpdateIntervalSeconds < 0 {
		return fmt.Errorf("UpdateIntervalSeconds must be non-negative, got %d", c.UpdateIntervalSeconds)
	}
	for _, u := range c.IdPs {
		if strings.HasSuffix(u, "/") {
			return fmt.Errorf("IdP base URL must not have a trailing slash: %s", u)
		}
	}
	for _, u := range c.CouchDBservers {
		if strings.HasSuffix(u, "/") {
			return fmt.Errorf("CouchDB server base URL must not have a trailing slash: %s", u)
		}
	}
	if c.ListenAddress == "" {
		c.ListenAddress = DefaultListenAddress
	}
	return nil
}

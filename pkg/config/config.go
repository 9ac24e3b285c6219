// Package config loads ghorbit configuration from a TOML file.
//
// Configuration is explicit: the loaded Config value is passed into the
// searcher and clients at construction time. Nothing reads ambient global
// state during a search.
//
// Example config file (~/.config/ghorbit/config.toml):
//
//	[auth]
//	token = "ghp_..."           # or client_id/client_secret app credentials
//
//	[search]
//	max_results = 25
//	timeout = "10s"
//
//	[weights]
//	collaborator = 100.0
//	follows = 50.0
//	contributor = 42.0
//	colleague = 35.0
//	follower = 10.0
//
//	[cache]
//	backend = "file"            # "file", "redis", or "none"
//	ttl = "1h"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// appName is used for XDG config and cache directory names.
const appName = "ghorbit"

// Config holds all ghorbit settings.
type Config struct {
	Auth    Auth     `toml:"auth"`
	Search  Search   `toml:"search"`
	Weights Weights  `toml:"weights"`
	Cache   CacheCfg `toml:"cache"`
	Server  Server   `toml:"server"`
}

// Auth holds GitHub credentials. A personal access token raises the API
// rate limit from 60/hr to 5000/hr. App client credentials (client_id and
// client_secret appended as query parameters) are the legacy alternative.
type Auth struct {
	Token        string `toml:"token"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Search holds knobs for the connections search.
type Search struct {
	// MaxResults caps the rendered list.
	MaxResults int `toml:"max_results"`
	// Timeout applies per request; an expired request counts as a failed
	// category rather than hanging the search.
	Timeout duration `toml:"timeout"`
	// MaxLanguages caps the language histogram in loc summaries.
	MaxLanguages int `toml:"max_languages"`
	// Noisy surfaces rate-limit denials prominently (original behavior:
	// a popup; here: a styled warning / response header).
	Noisy bool `toml:"noisy"`
}

// Weights maps each relationship kind to its relevance weight.
// Missing kinds score 0.
type Weights struct {
	Collaborator float64 `toml:"collaborator"`
	Follows      float64 `toml:"follows"`
	Contributor  float64 `toml:"contributor"`
	Colleague    float64 `toml:"colleague"`
	Follower     float64 `toml:"follower"`
}

// CacheCfg selects and configures the response cache backend.
type CacheCfg struct {
	Backend   string   `toml:"backend"` // "file", "redis", or "none"
	TTL       duration `toml:"ttl"`
	Dir       string   `toml:"dir"` // file backend; empty = XDG default
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
}

// Server holds settings for `ghorbit serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// duration wraps time.Duration with TOML string parsing ("10s", "1h").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Default returns the built-in configuration. The weights encode how
// strongly each relationship kind suggests two accounts know each other:
// shared commit access is near-certain acquaintance, following someone is
// a moderate signal, being followed is a weak one.
func Default() Config {
	return Config{
		Search: Search{
			MaxResults:   25,
			Timeout:      duration{10 * time.Second},
			MaxLanguages: 5,
		},
		Weights: Weights{
			Collaborator: 100,
			Follows:      50,
			Contributor:  42,
			Colleague:    35,
			Follower:     10,
		},
		Cache: CacheCfg{
			Backend:   "file",
			TTL:       duration{time.Hour},
			RedisAddr: "localhost:6379",
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads the config file at path, applying it on top of Default().
// An empty path loads the default location; a missing file there is not an
// error. The GHORBIT_TOKEN environment variable overrides auth.token.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if token := os.Getenv("GHORBIT_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	return cfg, nil
}

// DefaultPath returns the XDG config file location
// (~/.config/ghorbit/config.toml).
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// CacheDir returns the cache directory using the XDG standard
// (~/.cache/ghorbit/), unless the config overrides it.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// RequestTimeout returns the per-request timeout.
func (c Config) RequestTimeout() time.Duration { return c.Search.Timeout.Duration }

// CacheTTL returns the response cache TTL.
func (c Config) CacheTTL() time.Duration { return c.Cache.TTL.Duration }

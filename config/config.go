// Package config loads client settings from defaults, an optional file, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Transport struct {
	ForceFallback    bool   `json:"force_fallback" yaml:"force_fallback" toml:"force_fallback"`
	SkipTLSVerify    bool   `json:"skip_tls_verify" yaml:"skip_tls_verify" toml:"skip_tls_verify"`
	DisablePreflight bool   `json:"disable_preflight" yaml:"disable_preflight" toml:"disable_preflight"`
	TimeoutSec       int    `json:"timeout_sec" yaml:"timeout_sec" toml:"timeout_sec" validate:"gte=0"`
	UserAgent        string `json:"user_agent" yaml:"user_agent" toml:"user_agent"`
}

type RateLimit struct {
	MaxRequestsPerMinute  int `json:"max_requests_per_minute" yaml:"max_requests_per_minute" toml:"max_requests_per_minute" validate:"gte=0"`
	Burst                 int `json:"burst" yaml:"burst" toml:"burst" validate:"gte=0"`
	MinRequestIntervalSec int `json:"min_request_interval_sec" yaml:"min_request_interval_sec" toml:"min_request_interval_sec" validate:"gte=0"`
}

type Cache struct {
	// Kind is one of none, memory, file, badger, sqlite.
	Kind string `json:"kind" yaml:"kind" toml:"kind" validate:"omitempty,oneof=none memory file badger sqlite"`
	// Path is the directory (file, badger) or database file (sqlite).
	// An empty badger path opens an in-memory database.
	Path       string `json:"path" yaml:"path" toml:"path"`
	TTLSeconds int    `json:"ttl_sec" yaml:"ttl_sec" toml:"ttl_sec" validate:"gte=0"`
	MaxItems   int    `json:"max_items" yaml:"max_items" toml:"max_items" validate:"gte=0"`
}

type Config struct {
	APIKey         string    `json:"api_key" yaml:"api_key" toml:"api_key"`
	Format         string    `json:"format" yaml:"format" toml:"format" validate:"oneof=object json csv xml"`
	BaseURL        string    `json:"base_url" yaml:"base_url" toml:"base_url" validate:"required,url"`
	APIVersion     string    `json:"api_version" yaml:"api_version" toml:"api_version" validate:"required"`
	ListAPIVersion string    `json:"list_api_version" yaml:"list_api_version" toml:"list_api_version" validate:"required"`
	Transport      Transport `json:"transport" yaml:"transport" toml:"transport"`
	RateLimit      RateLimit `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
	Cache          Cache     `json:"cache" yaml:"cache" toml:"cache"`
}

func Default() Config {
	return Config{
		Format:         "object",
		BaseURL:        "https://www.quandl.com/api",
		APIVersion:     "v1",
		ListAPIVersion: "v2",
		Transport:      Transport{TimeoutSec: 30},
		RateLimit:      RateLimit{Burst: 1},
		Cache:          Cache{Kind: "none", MaxItems: 1000},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field values and cache settings.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Cache.Kind {
	case "file", "sqlite":
		if c.Cache.Path == "" {
			return fmt.Errorf("invalid config: cache kind %q requires a path", c.Cache.Kind)
		}
	}
	return nil
}

// Load reads config from path (JSON, YAML or TOML by extension). If path is
// empty, config.json in the working directory is used when present. A .env
// file in the working directory is loaded before environment overrides are
// applied; variables already set win over .env.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := LoadDotEnv(".env"); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files into the environment, skipping the
// ones that do not exist.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", "":
		err = json.Unmarshal(b, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	case ".toml":
		err = toml.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("read config: unsupported extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUANDL_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("QUANDL_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := os.Getenv("QUANDL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v, ok := envBool("QUANDL_FORCE_FALLBACK"); ok {
		cfg.Transport.ForceFallback = v
	}
	if v, ok := envBool("QUANDL_SKIP_TLS_VERIFY"); ok {
		cfg.Transport.SkipTLSVerify = v
	}
	if v, ok := envBool("QUANDL_DISABLE_PREFLIGHT"); ok {
		cfg.Transport.DisablePreflight = v
	}
	if x, ok := envInt("QUANDL_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Transport.TimeoutSec = x
	}
	if v := os.Getenv("QUANDL_USER_AGENT"); v != "" {
		cfg.Transport.UserAgent = v
	}
	if x, ok := envInt("QUANDL_MAX_RPM"); ok && x >= 0 {
		cfg.RateLimit.MaxRequestsPerMinute = x
	}
	if x, ok := envInt("QUANDL_BURST"); ok && x > 0 {
		cfg.RateLimit.Burst = x
	}
	if x, ok := envInt("QUANDL_MIN_INTERVAL_SEC"); ok && x >= 0 {
		cfg.RateLimit.MinRequestIntervalSec = x
	}
	if v := os.Getenv("QUANDL_CACHE_KIND"); v != "" {
		cfg.Cache.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("QUANDL_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if x, ok := envInt("QUANDL_CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.Cache.TTLSeconds = x
	}
	if x, ok := envInt("QUANDL_CACHE_MAX_ITEMS"); ok && x > 0 {
		cfg.Cache.MaxItems = x
	}
}

func envInt(key string) (int, bool) {
	x, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return 0, false
	}
	return x, true
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}

// Package config loads process settings from a .env file, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Addr     string `mapstructure:"addr"`

	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	Fetch FetchConfig `mapstructure:"fetch"`
	Rules RulesConfig `mapstructure:"rules"`
	Redis RedisConfig `mapstructure:"redis"`

	GroupsPath string `mapstructure:"groups_path"`

	// SessionsPath, when set and Redis is not, keeps sessions as JSON files.
	SessionsPath string `mapstructure:"sessions_path"`

	// SessionKey is a base64 AES-256 key sealing stored node-list links.
	SessionKey string `mapstructure:"session_key"`
	// OldSessionKeys still open sessions sealed before a key rotation.
	OldSessionKeys []string `mapstructure:"old_session_keys"`
}

type FetchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	GitHubToken string        `mapstructure:"github_token"`
	AllowAnyURL bool          `mapstructure:"allow_any_url"`
}

type RulesConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	CategoriesURL string        `mapstructure:"categories_url"`
	AliasesPath   string        `mapstructure:"aliases_path"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	Prefetch      bool          `mapstructure:"prefetch"`
}

// RedisConfig is unused while Addr is empty.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:      "info",
		Addr:          ":8080",
		SessionTTL:    time.Hour,
		SweepInterval: time.Minute,
		Fetch:         FetchConfig{Timeout: 15 * time.Second},
		Rules:         RulesConfig{CacheTTL: 10 * time.Minute, Prefetch: true},
		GroupsPath:    "groups.json",
	}
}

// Load builds the configuration. A missing .env is fine; a path that is set
// but unreadable is not.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("ADDR", &c.Addr)
	dur("SESSION_TTL", &c.SessionTTL)
	dur("SWEEP_INTERVAL", &c.SweepInterval)
	dur("FETCH_TIMEOUT", &c.Fetch.Timeout)
	str("GITHUB_TOKEN", &c.Fetch.GitHubToken)
	flag("ALLOW_ANY_URL", &c.Fetch.AllowAnyURL)
	str("RULES_BASE_URL", &c.Rules.BaseURL)
	str("CATEGORIES_URL", &c.Rules.CategoriesURL)
	str("ALIASES_PATH", &c.Rules.AliasesPath)
	dur("RULE_CACHE_TTL", &c.Rules.CacheTTL)
	flag("RULE_PREFETCH", &c.Rules.Prefetch)
	str("GROUPS_PATH", &c.GroupsPath)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	num("REDIS_DB", &c.Redis.DB)
	str("SESSIONS_PATH", &c.SessionsPath)
	str("SESSION_KEY", &c.SessionKey)
	if v, ok := lookup("OLD_SESSION_KEYS"); ok {
		c.OldSessionKeys = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	}

	return errors.Join(errs...)
}

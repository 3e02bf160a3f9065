// Package config provides centralized configuration management using Viper.
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
	"gopkg.in/yaml.v3"
)

// Storage backends accepted by the storage key.
const (
	StorageNATS  = "nats"
	StorageFile  = "file"
	StorageRedis = "redis"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RECRUITDASH"

// Config holds all configuration values for recruitdash.
type Config struct {
	ATSURL          string        `mapstructure:"ats_url"`
	ATSTimeout      time.Duration `mapstructure:"ats_timeout"`
	ATSRateLimit    float64       `mapstructure:"ats_rate_limit"`
	ATSBurst        int           `mapstructure:"ats_burst"`
	Storage         string        `mapstructure:"storage"`
	DataDir         string        `mapstructure:"data_dir"`
	Profile         string        `mapstructure:"profile"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	RedisTTL        time.Duration `mapstructure:"redis_ttl"`
	SearchDebounce  time.Duration `mapstructure:"search_debounce"`
	DefaultCountry  string        `mapstructure:"default_country"`
	ApplicationForm string        `mapstructure:"application_form"`
	MCPAddr         string        `mapstructure:"mcp_addr"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`
}

// keys lists every config key; each is bound to RECRUITDASH_<KEY>.
var keys = []string{
	"ats_url", "ats_timeout", "ats_rate_limit", "ats_burst",
	"storage", "data_dir", "profile",
	"redis_addr", "redis_password", "redis_db", "redis_ttl",
	"search_debounce", "default_country", "application_form",
	"mcp_addr", "log_level", "log_file",
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		ATSURL:          "http://localhost:8080/api/v1",
		ATSTimeout:      15 * time.Second,
		ATSRateLimit:    5,
		ATSBurst:        10,
		Storage:         StorageNATS,
		DataDir:         ".recruitdash",
		Profile:         "default",
		RedisAddr:       "localhost:6379",
		RedisTTL:        30 * 24 * time.Hour,
		SearchDebounce:  300 * time.Millisecond,
		DefaultCountry:  "US",
		ApplicationForm: "standard",
		MCPAddr:         "127.0.0.1:7420",
		LogLevel:        "info",
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("recruitdash")

	for key, val := range defaultValues() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key, EnvVar(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if projectPath := ProjectPath(); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.DefaultCountry = strings.ToUpper(strings.TrimSpace(cfg.DefaultCountry))

	return &cfg, nil
}

// EnvVar returns the environment variable bound to a config key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StorageNATS, StorageFile, StorageRedis:
	default:
		errs = append(errs, fmt.Errorf("storage must be one of nats, file, redis (got %q)", c.Storage))
	}
	if u, err := url.Parse(c.ATSURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("ats_url must be an absolute URL (got %q)", c.ATSURL))
	}
	if c.ATSTimeout <= 0 {
		errs = append(errs, errors.New("ats_timeout must be positive"))
	}
	if c.ATSRateLimit < 0 {
		errs = append(errs, errors.New("ats_rate_limit must not be negative"))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, errors.New("search_debounce must not be negative"))
	}
	if c.Storage == StorageRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("redis_addr is required when storage is redis"))
	}
	if n := len(c.DefaultCountry); n != 0 && (n < 2 || n > 3) {
		errs = append(errs, fmt.Errorf("default_country must be a 2 or 3 letter code (got %q)", c.DefaultCountry))
	}
	return errors.Join(errs...)
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns $XDG_CONFIG_HOME/recruitdash/recruitdash.yml, falling
// back to ~/.config.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "recruitdash", "recruitdash.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "recruitdash", "recruitdash.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "recruitdash.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg.fileValues())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileValues renders the config as the YAML document written to disk.
// Durations are written in time.Duration string form so they read back
// through viper's decode hooks. Empty strings are omitted.
func (c *Config) fileValues() *yaml.Node {
	pairs := []struct {
		key string
		val any
	}{
		{"ats_url", c.ATSURL},
		{"ats_timeout", c.ATSTimeout.String()},
		{"ats_rate_limit", c.ATSRateLimit},
		{"ats_burst", c.ATSBurst},
		{"storage", c.Storage},
		{"data_dir", c.DataDir},
		{"profile", c.Profile},
		{"redis_addr", c.RedisAddr},
		{"redis_password", c.RedisPassword},
		{"redis_db", c.RedisDB},
		{"redis_ttl", c.RedisTTL.String()},
		{"search_debounce", c.SearchDebounce.String()},
		{"default_country", c.DefaultCountry},
		{"application_form", c.ApplicationForm},
		{"mcp_addr", c.MCPAddr},
		{"log_level", c.LogLevel},
		{"log_file", c.LogFile},
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range pairs {
		if s, ok := p.val.(string); ok && s == "" {
			continue
		}
		var val yaml.Node
		_ = val.Encode(p.val)
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: p.key}, &val)
	}
	return doc
}

func defaultValues() map[string]any {
	d := Defaults()
	return map[string]any{
		"ats_url":          d.ATSURL,
		"ats_timeout":      d.ATSTimeout,
		"ats_rate_limit":   d.ATSRateLimit,
		"ats_burst":        d.ATSBurst,
		"storage":          d.Storage,
		"data_dir":         d.DataDir,
		"profile":          d.Profile,
		"redis_addr":       d.RedisAddr,
		"redis_password":   d.RedisPassword,
		"redis_db":         d.RedisDB,
		"redis_ttl":        d.RedisTTL,
		"search_debounce":  d.SearchDebounce,
		"default_country":  d.DefaultCountry,
		"application_form": d.ApplicationForm,
		"mcp_addr":         d.MCPAddr,
		"log_level":        d.LogLevel,
		"log_file":         d.LogFile,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

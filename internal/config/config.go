package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Version is reported in the default User-Agent; overridden at build time
var Version = "0.1.0"

// Config holds all application configuration
type Config struct {
	OpenLibrary OpenLibraryConfig `mapstructure:"openlibrary"`
	Network     NetworkConfig     `mapstructure:"network"`
	Search      SearchConfig      `mapstructure:"search"`
	Cache       CacheConfig       `mapstructure:"cache"`
	History     HistoryConfig     `mapstructure:"history"`
	Log         LogConfig         `mapstructure:"log"`
}

// OpenLibraryConfig holds the endpoint settings
type OpenLibraryConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Resource string `mapstructure:"resource"` // path segment before .json
}

// NetworkConfig holds network settings
type NetworkConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryBaseDelay    time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay     time.Duration `mapstructure:"retry_max_delay"`
	RetryMultiplier   float64       `mapstructure:"retry_multiplier"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent"`
}

// SearchConfig holds defaults applied to search flags that are not set
type SearchConfig struct {
	Limit  int      `mapstructure:"limit"`
	Fields []string `mapstructure:"fields"`
	Lang   string   `mapstructure:"lang"`
}

// CacheConfig holds search cache settings
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// HistoryConfig holds search history settings
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

var cfg *Config

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	if dir := os.Getenv("OLSEARCH_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "olsearch")
}

// GetDBPath returns the database file path
func GetDBPath() string {
	return filepath.Join(GetConfigDir(), "olsearch.db")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// DefaultUserAgent identifies the client to Open Library
func DefaultUserAgent() string {
	return "olsearch/" + Version + " (+https://github.com/billmal071/olsearch)"
}

// ErrUnknownKey is returned for keys that have no default
var ErrUnknownKey = errors.New("unknown config key")

// defaults lists every recognized key. The type of each default decides how
// a value given as text is parsed.
func defaults() map[string]any {
	return map[string]any{
		"openlibrary.base_url":        "https://openlibrary.org",
		"openlibrary.resource":        "search",
		"network.timeout":             30 * time.Second,
		"network.retry_attempts":      1,
		"network.retry_base_delay":    time.Second,
		"network.retry_max_delay":     30 * time.Second,
		"network.retry_multiplier":    2.0,
		"network.requests_per_second": 0.0,
		"network.user_agent":          DefaultUserAgent(),
		"search.limit":                10,
		"search.fields":               []string{},
		"search.lang":                 "",
		"cache.enabled":               true,
		"cache.ttl":                   time.Hour,
		"history.enabled":             true,
		"log.level":                   "info",
	}
}

func setDefaults() {
	for key, value := range defaults() {
		viper.SetDefault(key, value)
	}
}

// Keys returns every recognized key, sorted
func Keys() []string {
	keys := make([]string, 0, len(defaults()))
	for key := range defaults() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the default value of key
func Default(key string) (any, bool) {
	v, ok := defaults()[key]
	return v, ok
}

// ParseValue converts raw into the type of key's default
func ParseValue(key, raw string) (any, error) {
	def, ok := Default(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	var (
		v   any
		err error
	)
	switch def.(type) {
	case int:
		v, err = strconv.Atoi(raw)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	case bool:
		v, err = strconv.ParseBool(raw)
	case time.Duration:
		v, err = time.ParseDuration(raw)
	case []string:
		list := []string{}
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
		v = list
	default:
		v = raw
	}
	if err != nil {
		return nil, fmt.Errorf("invalid value %q for %s: %w", raw, key, err)
	}
	return v, nil
}

// Init initializes the configuration
func Init(cfgFile string) error {
	// A .env in the working directory feeds the OLSEARCH_ overrides below
	_ = godotenv.Load()

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetConfigDir())
	}

	viper.SetEnvPrefix("OLSEARCH")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// A missing default config is fine; an explicit one must be readable
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return err
		}
	}

	cfg = nil
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
		_ = viper.Unmarshal(cfg)
	}
	return cfg
}

// Set parses value for key, applies it and persists the config file
func Set(key, value string) error {
	v, err := ParseValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, v)

	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	cfg = nil

	return viper.WriteConfigAs(GetConfigPath())
}

// GetValue retrieves a configuration value
func GetValue(key string) interface{} {
	return viper.Get(key)
}

// Reset clears all settings, including defaults
func Reset() {
	viper.Reset()
	cfg = nil
}

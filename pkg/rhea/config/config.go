// Package config loads runtime settings from a YAML file, RHEA_*
// environment variables and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cognicore/rhea/internal/logging"
	"github.com/cognicore/rhea/internal/scrape"
	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/lang"
)

// envPrefix maps nested keys to variables: store.path -> RHEA_STORE_PATH.
const envPrefix = "RHEA"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the complete runtime configuration.
type Config struct {
	Language string         `mapstructure:"language"`
	Log      logging.Config `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Data     DataConfig     `mapstructure:"data"`
}

// StoreConfig selects the health data store.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"` // sqlite file, or :memory:
}

// HTTPConfig controls the serve command.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	MaxSessions     int           `mapstructure:"max_sessions"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ScrapeConfig controls live advisory retrieval at startup.
type ScrapeConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Delay     time.Duration `mapstructure:"delay"`
	Retries   int           `mapstructure:"retries"`
	WHOURLs   []string      `mapstructure:"who_urls"`
	MOHFWURLs []string      `mapstructure:"mohfw_urls"`
}

// DataConfig points at optional data files. Empty paths use the embedded
// defaults.
type DataConfig struct {
	Lexicon    string `mapstructure:"lexicon"`
	Locale     string `mapstructure:"locale"`
	Advisories string `mapstructure:"advisories"` // JSONL
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every key, which also makes each one reachable
// through its environment variable.
func setDefaults(v *viper.Viper) {
	sc := scrape.DefaultConfig()

	v.SetDefault("language", string(lang.Primary))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stderr"})

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.path", "rhea.db")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.max_sessions", 10000)
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("scrape.enabled", true)
	v.SetDefault("scrape.user_agent", sc.UserAgent)
	v.SetDefault("scrape.timeout", sc.Timeout)
	v.SetDefault("scrape.delay", sc.Delay)
	v.SetDefault("scrape.retries", sc.Retries)
	v.SetDefault("scrape.who_urls", scrape.WHOURLs)
	v.SetDefault("scrape.mohfw_urls", scrape.MOHFWURLs)

	v.SetDefault("data.lexicon", "")
	v.SetDefault("data.locale", "")
	v.SetDefault("data.advisories", "")
}

// Load reads the YAML file at path, applies RHEA_* overrides and defaults
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	cfg := &Config{}
	// defaults always decode
	_ = newViperDefaultsOnly().Unmarshal(cfg)
	return cfg
}

func newViperDefaultsOnly() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := lang.Parse(c.Language); err != nil {
		return fmt.Errorf("%w: language: %v", internalerr.ErrInvalidConfig, err)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("%w: store.path is required for the sqlite driver", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", internalerr.ErrInvalidConfig, c.Store.Driver)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr is empty", internalerr.ErrInvalidConfig)
	}
	if c.HTTP.MaxSessions <= 0 {
		return fmt.Errorf("%w: http.max_sessions must be positive", internalerr.ErrInvalidConfig)
	}
	if c.Scrape.Retries < 0 {
		return fmt.Errorf("%w: scrape.retries must not be negative", internalerr.ErrInvalidConfig)
	}
	if c.Scrape.Enabled && c.Scrape.Timeout <= 0 {
		return fmt.Errorf("%w: scrape.timeout must be positive", internalerr.ErrInvalidConfig)
	}
	return nil
}

// DefaultLanguage returns the parsed language setting.
func (c *Config) DefaultLanguage() lang.Language {
	l, err := lang.Parse(c.Language)
	if err != nil {
		return lang.Primary
	}
	return l
}

// ScrapeClient converts the scrape section to client settings.
func (c *Config) ScrapeClient() scrape.Config {
	return scrape.Config{
		UserAgent: c.Scrape.UserAgent,
		Timeout:   c.Scrape.Timeout,
		Delay:     c.Scrape.Delay,
		Retries:   c.Scrape.Retries,
	}
}

// Loader returns a loader for the configured data files.
func (c *Config) Loader() *Loader {
	return &Loader{LexiconPath: c.Data.Lexicon, LocalePath: c.Data.Locale}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	EnvPrefix = "F1BRIDGE"

	cacheFileName = "http_cache.sqlite"
	logFileName   = "bridge.log"
)

// Config holds every tunable of the data-access layer. It is resolved once at
// startup and passed down explicitly.
type Config struct {
	CacheDir      string        `envconfig:"CACHE_DIR" default:"~/.cache/f1databridge" validate:"required"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"12h" validate:"gte=0"`
	CacheDisabled bool          `envconfig:"CACHE_DISABLED" default:"false"`

	ErgastURL  string  `envconfig:"ERGAST_URL" default:"https://api.jolpi.ca/ergast/f1" validate:"required,url"`
	OpenF1URL  string  `envconfig:"OPENF1_URL" default:"https://api.openf1.org/v1" validate:"required,url"`
	ErgastRate float64 `envconfig:"ERGAST_RATE" default:"4" validate:"gt=0"`
	OpenF1Rate float64 `envconfig:"OPENF1_RATE" default:"3" validate:"gt=0"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"60s" validate:"gte=0"`
	UserAgent   string        `envconfig:"USER_AGENT" default:"f1databridge/1.0" validate:"required"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	LogFile  string `envconfig:"LOG_FILE"`
}

// Load reads the configuration from F1BRIDGE_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load config from env")
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, errors.Wrap(err, "failed to resolve paths")
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return &cfg, nil
}

// CachePath is the sqlite file backing the HTTP response cache.
func (c *Config) CachePath() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

// LogPath is where structured logs are written.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.CacheDir, logFileName)
}

func (c *Config) resolvePaths() error {
	dir, err := expandHome(c.CacheDir)
	if err != nil {
		return err
	}
	c.CacheDir = dir

	if c.LogFile != "" {
		file, err := expandHome(c.LogFile)
		if err != nil {
			return err
		}
		c.LogFile = file
	}
	c.ErgastURL = strings.TrimRight(c.ErgastURL, "/")
	c.OpenF1URL = strings.TrimRight(c.OpenF1URL, "/")
	return nil
}

func (c *Config) validate() error {
	return validator.New().Struct(c)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrapf(err, "cannot expand %q", path)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

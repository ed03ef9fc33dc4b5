package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
	yamlv3 "gopkg.in/yaml.v3"
)

// FileName is the config file kept at the root of a data directory.
const FileName = "spendwise.yaml"

// EnvPrefix marks environment variables that override file settings.
// SPENDWISE_STORAGE_SQLITE_PATH maps to storage.sqlite_path.
const EnvPrefix = "SPENDWISE_"

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config represents the top-level spendwise.yaml configuration.
type Config struct {
	User    UserConfig    `koanf:"user" yaml:"user"`
	Storage StorageConfig `koanf:"storage" yaml:"storage"`
	Report  ReportConfig  `koanf:"report" yaml:"report"`
	Git     GitConfig     `koanf:"git" yaml:"git"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
}

// UserConfig identifies whose records the data directory holds.
type UserConfig struct {
	ID string `koanf:"id" yaml:"id"`
}

// StorageConfig selects where categories and transactions live.
type StorageConfig struct {
	Backend    string `koanf:"backend" yaml:"backend"`
	SQLitePath string `koanf:"sqlite_path" yaml:"sqlite_path"` // relative to the data directory
}

// ReportConfig holds report defaults used when flags are omitted.
type ReportConfig struct {
	DefaultWindow string `koanf:"default_window" yaml:"default_window"`
	Format        string `koanf:"format" yaml:"format"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `koanf:"auto_commit" yaml:"auto_commit"`
	AuthorName  string `koanf:"author_name" yaml:"author_name"`
	AuthorEmail string `koanf:"author_email" yaml:"author_email"`
}

// LogConfig sets the logrus level (debug, info, warn, error).
type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(userID string) *Config {
	return &Config{
		User: UserConfig{ID: userID},
		Storage: StorageConfig{
			Backend:    BackendCSV,
			SQLitePath: "spendwise.db",
		},
		Report: ReportConfig{
			DefaultWindow: "1 Month",
			Format:        "table",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Spendwise",
			AuthorEmail: "spendwise@localhost",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load resolves configuration from defaults, the YAML file at path (if any)
// and SPENDWISE_* environment variables, in that order.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(*Default(""), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		log.Debugf("loaded configuration from %s", path)
	} else if os.IsNotExist(err) {
		log.Debugf("config file not found at %s, using defaults and environment", path)
	} else {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// The first underscore separates section from key.
			k = strings.Replace(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", ".", 1)
			return k, v
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, BackendCSV, BackendSQLite)
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

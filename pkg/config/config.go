package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendSupabase = "supabase"
	BackendDuckDB   = "duckdb"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Source SourceConfig
	DuckDB DuckDBConfig
	Export ExportConfig
	Server ServerConfig
	Log    LogConfig
}

type SourceConfig struct {
	Backend string
	URL     string
	Key     string
	Timeout time.Duration
}

type DuckDBConfig struct {
	Path string
}

type ExportConfig struct {
	Dir string
	// MaxWidth downscales wider pages; 0 keeps the original size.
	MaxWidth int
	// Rate is the delay between two image requests.
	Rate time.Duration
}

type ServerConfig struct {
	Addr string
}

type LogConfig struct {
	Level       string
	File        string
	Development bool
}

// Load reads .mangareader.yaml from $MANGAREADER_CONFIG_PATH, the working
// directory or $HOME, or from file when it is set. Every key can be
// overridden with a MANGAREADER_ environment variable, e.g.
// MANGAREADER_SOURCE_URL. A missing config file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".mangareader")

	v.SetDefault("source.backend", BackendSupabase)
	v.SetDefault("source.url", "")
	v.SetDefault("source.key", "")
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("duckdb.path", filepath.Join(dataDir, "mirror.db"))
	v.SetDefault("export.dir", filepath.Join(home, "Downloads"))
	v.SetDefault("export.max_width", 0)
	v.SetDefault("export.rate", 500*time.Millisecond) // 2 req/sec
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dataDir, "mangareader.log"))
	v.SetDefault("log.development", false)

	v.SetEnvPrefix("MANGAREADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".mangareader") // .yaml is implicit
		if override := os.Getenv("MANGAREADER_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
		v.AddConfigPath("./")
		if home != "" {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Source: SourceConfig{
			Backend: strings.ToLower(v.GetString("source.backend")),
			URL:     strings.TrimRight(v.GetString("source.url"), "/"),
			Key:     v.GetString("source.key"),
			Timeout: v.GetDuration("source.timeout"),
		},
		DuckDB: DuckDBConfig{Path: expandHome(v.GetString("duckdb.path"), home)},
		Export: ExportConfig{
			Dir:      expandHome(v.GetString("export.dir"), home),
			MaxWidth: v.GetInt("export.max_width"),
			Rate:     v.GetDuration("export.rate"),
		},
		Server: ServerConfig{Addr: v.GetString("server.addr")},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			File:        expandHome(v.GetString("log.file"), home),
			Development: v.GetBool("log.development"),
		},
	}
	return cfg, nil
}

// Validate checks the settings needed to reach the catalog source.
func (c *Config) Validate() error {
	switch c.Source.Backend {
	case BackendSupabase:
		if c.Source.URL == "" {
			return fmt.Errorf("%w: source.url is required for the %s backend", ErrInvalid, BackendSupabase)
		}
	case BackendDuckDB:
		if c.DuckDB.Path == "" {
			return fmt.Errorf("%w: duckdb.path is required for the %s backend", ErrInvalid, BackendDuckDB)
		}
	default:
		return fmt.Errorf("%w: unknown source.backend %q", ErrInvalid, c.Source.Backend)
	}
	if c.Export.MaxWidth < 0 {
		return fmt.Errorf("%w: export.max_width must not be negative", ErrInvalid)
	}
	if c.Export.Rate < 0 {
		return fmt.Errorf("%w: export.rate must not be negative", ErrInvalid)
	}
	return nil
}

func expandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

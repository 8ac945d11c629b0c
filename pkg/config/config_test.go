package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ".mangareader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MANGAREADER_CONFIG_PATH", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendSupabase, cfg.Source.Backend)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Export.Rate)
	assert.Equal(t, 0, cfg.Export.MaxWidth)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mirror.db", filepath.Base(cfg.DuckDB.Path))
}

func TestLoadFromConfigPath(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
source:
  url: https://example.supabase.co/
  key: anon-key
  timeout: 5s
export:
  max_width: 1072
  rate: 250ms
log:
  level: debug
`)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MANGAREADER_CONFIG_PATH", dir)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://example.supabase.co", cfg.Source.URL)
	assert.Equal(t, "anon-key", cfg.Source.Key)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 1072, cfg.Export.MaxWidth)
	assert.Equal(t, 250*time.Millisecond, cfg.Export.Rate)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadExplicitFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
source:
  backend: duckdb
duckdb:
  path: /tmp/from-file.db
`)
	t.Setenv("MANGAREADER_DUCKDB_PATH", "/tmp/from-env.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendDuckDB, cfg.Source.Backend)
	assert.Equal(t, "/tmp/from-env.db", cfg.DuckDB.Path)
}

func TestLoadBrokenFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "source: [unterminated")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"supabase ok", Config{Source: SourceConfig{Backend: BackendSupabase, URL: "https://x"}}, false},
		{"supabase without url", Config{Source: SourceConfig{Backend: BackendSupabase}}, true},
		{"duckdb ok", Config{Source: SourceConfig{Backend: BackendDuckDB}, DuckDB: DuckDBConfig{Path: "m.db"}}, false},
		{"duckdb without path", Config{Source: SourceConfig{Backend: BackendDuckDB}}, true},
		{"unknown backend", Config{Source: SourceConfig{Backend: "mysql"}}, true},
		{"negative width", Config{Source: SourceConfig{Backend: BackendSupabase, URL: "https://x"}, Export: ExportConfig{MaxWidth: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/me", "x.db"), expandHome("~/x.db", "/home/me"))
	assert.Equal(t, "/home/me", expandHome("~", "/home/me"))
	assert.Equal(t, "/abs/x.db", expandHome("/abs/x.db", "/home/me"))
	assert.Equal(t, "~/x.db", expandHome("~/x.db", ""))
}

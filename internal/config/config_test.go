package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "songbook.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "recordings", cfg.Recording.Dir)
	require.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SONGBOOK_DB_PATH", "/tmp/notes.db")
	t.Setenv("SONGBOOK_LOG_LEVEL", "debug")
	t.Setenv("SONGBOOK_SERVER_PORT", "9090")
	t.Setenv("SONGBOOK_TRANSPORT_MODE", "http")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/notes.db", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "http", cfg.Transport.Mode)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("SONGBOOK_SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "db:\n  path: from-file.db\nrecording:\n  dir: takes\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("SONGBOOK_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-file.db", cfg.DB.Path)
	require.Equal(t, "takes", cfg.Recording.Dir)
	// Untouched fields keep defaults.
	require.Equal(t, "info", cfg.Log.Level)
}

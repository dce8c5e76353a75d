package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the search path away from any real config files.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /var/lib/coursesync/data.db
  driver: sqlite
log:
  level: debug
  format: json
engine:
  strict_transactions: true
audit:
  concurrency: 8
`), 0o644))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/coursesync/data.db", cfg.Database.Path)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Engine.StrictTransactions)
	assert.Equal(t, 8, cfg.Audit.Concurrency)
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("coursesync.yaml", []byte("audit:\n  concurrency: 2\n"), 0o644))

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Audit.Concurrency)
	assert.Equal(t, "coursesync.db", cfg.Database.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("coursesync.yaml", []byte("database:\n  path: from-file.db\n"), 0o644))
	t.Setenv("COURSESYNC_DATABASE_PATH", "from-env.db")
	t.Setenv("COURSESYNC_ENGINE_STRICT_TRANSACTIONS", "true")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.True(t, cfg.Engine.StrictTransactions)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Path: "", Driver: "postgres"},
		Log:      LogConfig{Level: "loud", Format: "xml"},
		Audit:    AuditConfig{Concurrency: 0},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"database.path", "database.driver", "log.level", "log.format", "audit.concurrency"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestConfigDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "coursesync"), ConfigDir())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	founderrors "git.home.luguber.info/inful/contractforge/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contractforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
storage:
  directory: /var/lib/contractforge/docs
server:
  docs_addr: ":9090"
  admin_addr: ":9091"
downloads:
  ttl: 2h
  sweep_interval: 5m
templates:
  directory: /etc/contractforge/templates
history:
  enabled: true
  path: /var/lib/contractforge/history.db
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/contractforge/docs", cfg.Storage.Directory)
	assert.Equal(t, ":9090", cfg.Server.DocsAddr)
	assert.Equal(t, ":9091", cfg.Server.AdminAddr)
	assert.Equal(t, 2*time.Hour, cfg.Downloads.TTL.D())
	assert.Equal(t, 5*time.Minute, cfg.Downloads.SweepInterval.D())
	assert.Equal(t, "/etc/contractforge/templates", cfg.Templates.Directory)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  directory: ./docs
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.DocsAddr)
	assert.Equal(t, ":8081", cfg.Server.AdminAddr)
	assert.Equal(t, time.Hour, cfg.Downloads.TTL.D())
	assert.Equal(t, 10*time.Minute, cfg.Downloads.SweepInterval.D())
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("CF_TEST_DOCS_DIR", "/srv/expanded")
	path := writeConfig(t, `
storage:
  directory: ${CF_TEST_DOCS_DIR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/expanded", cfg.Storage.Directory)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, founderrors.HasCategory(err, founderrors.CategoryConfig))
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.DocsAddr, cfg.Server.DocsAddr)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "storage: [not: a: mapping")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, founderrors.HasCategory(err, founderrors.CategoryConfig))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty storage dir", func(c *Config) { c.Storage.Directory = "" }},
		{"empty docs addr", func(c *Config) { c.Server.DocsAddr = "" }},
		{"same addrs", func(c *Config) { c.Server.AdminAddr = c.Server.DocsAddr }},
		{"zero ttl", func(c *Config) { c.Downloads.TTL = 0 }},
		{"zero sweep interval", func(c *Config) { c.Downloads.SweepInterval = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, founderrors.HasCategory(err, founderrors.CategoryConfig))
		})
	}
}

func TestDurationForms(t *testing.T) {
	path := writeConfig(t, `
downloads:
  ttl: 90
  sweep_interval: 1h30m
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Downloads.TTL.D())
	assert.Equal(t, 90*time.Minute, cfg.Downloads.SweepInterval.D())
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contractforge.yaml")

	require.NoError(t, Init(path, false))
	assert.FileExists(t, path)

	// Refuses to overwrite without force.
	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, founderrors.HasCategory(err, founderrors.CategoryConfig))

	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}

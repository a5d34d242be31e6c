package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, ttl string) string {
	t.Helper()
	path := filepath.Join(dir, "contractforge.yaml")
	body := `storage:
  directory: ` + dir + `
server:
  docs_addr: 127.0.0.1:0
  admin_addr: 127.0.0.1:0
downloads:
  ttl: ` + ttl + `
history:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestConfigWatcherResolvesAbsolutePath(t *testing.T) {
	d, err := New(testConfig(t))
	require.NoError(t, err)

	cw, err := NewConfigWatcher("contractforge.yaml", d)
	require.NoError(t, err)
	defer cw.watcher.Close()

	assert.True(t, filepath.IsAbs(cw.configPath))
	assert.Equal(t, 2*time.Second, cw.debounceTime)
}

func TestPerformReloadAppliesChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "1h")

	cfg := testConfig(t)
	cfg.Storage.Directory = dir
	d, err := New(cfg)
	require.NoError(t, err)

	cw, err := NewConfigWatcher(path, d)
	require.NoError(t, err)
	defer cw.watcher.Close()

	writeConfigFile(t, dir, "30m")
	require.NoError(t, cw.performReload(context.Background()))

	assert.Equal(t, 30*time.Minute, d.GetConfig().Downloads.TTL.D())
}

func TestPerformReloadRejectsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "1h")

	cfg := testConfig(t)
	cfg.Storage.Directory = dir
	d, err := New(cfg)
	require.NoError(t, err)

	cw, err := NewConfigWatcher(path, d)
	require.NoError(t, err)
	defer cw.watcher.Close()

	require.NoError(t, os.WriteFile(path, []byte("downloads: [not a map"), 0o600))
	require.Error(t, cw.performReload(context.Background()))

	// The running config is untouched.
	assert.Equal(t, time.Hour, d.GetConfig().Downloads.TTL.D())
}

func TestTriggerReloadNeverBlocks(t *testing.T) {
	d, err := New(testConfig(t))
	require.NoError(t, err)

	cw, err := NewConfigWatcher("contractforge.yaml", d)
	require.NoError(t, err)
	defer cw.watcher.Close()

	cw.triggerReload()
	cw.triggerReload()
	cw.triggerReload()
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderLoadsTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bus.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_priority = 7\npatterns_cache_size = 256\n"), 0o600))

	loader := NewLoader[BusConfig](path, "")
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DefaultPriority)
	assert.Equal(t, 256, cfg.PatternsCacheSize)
}

func TestLoaderLoadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaultPriority: 3\npatternsCacheSize: 128\n"), 0o600))

	loader := NewLoader[BusConfig](path, "")
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DefaultPriority)
	assert.Equal(t, 128, cfg.PatternsCacheSize)
}

func TestLoaderAppliesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bus.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_priority = 1\npatterns_cache_size = 64\n"), 0o600))

	t.Setenv("COREBUS_BUS_DEFAULT_PRIORITY", "42")

	loader := NewLoader[BusConfig](path, "COREBUS_BUS")
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.DefaultPriority)
	assert.Equal(t, 64, cfg.PatternsCacheSize)
}

func TestLoaderRejectsUnsupportedExtension(t *testing.T) {
	loader := NewLoader[BusConfig]("bus.ini", "")
	_, err := loader.Load()
	require.Error(t, err)
}

func TestLoaderWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bus.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_priority = 1\npatterns_cache_size = 64\n"), 0o600))

	loader := NewLoader[BusConfig](path, "")
	changes := make(chan BusConfig, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, loader.Watch(ctx, func(cfg BusConfig) { changes <- cfg }))

	require.NoError(t, os.WriteFile(path, []byte("default_priority = 9\npatterns_cache_size = 64\n"), 0o600))

	select {
	case cfg := <-changes:
		assert.Equal(t, 9, cfg.DefaultPriority)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload notification")
	}
}

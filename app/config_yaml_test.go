package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwcore/core"
)

func TestDefaultYAMLMatchesDefaultConfig(t *testing.T) {
	cfg, err := LoadConfig(DefaultYAML())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig([]byte(`
led: PD6
button: A0
blink:
  circuit: timer2
  elapse: 250
watchdog:
  timeout: 2048ms
  system_reset: false
`))
	require.NoError(t, err)

	assert.Equal(t, "PD6", cfg.LED)
	assert.Equal(t, "A0", cfg.Button)
	assert.Equal(t, "timer2", cfg.Blink.Circuit)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.Blink.Elapse)
	assert.Equal(t, Duration(300*time.Millisecond), cfg.Debounce.Elapse, "default kept")
	assert.Equal(t, Duration(2048*time.Millisecond), cfg.Watchdog.Timeout)
	assert.False(t, cfg.Watchdog.SystemReset)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig([]byte("blink: {elapse: soon}"))
	assert.Error(t, err)

	_, err = LoadConfig([]byte("blink: {elapse: [1, 2]}"))
	assert.Error(t, err)

	_, err = LoadConfig([]byte("led: 42"))
	assert.True(t, errors.Is(err, core.ErrInvalidID), "%v", err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blinker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("led: \"10\"\n"), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "10", cfg.LED)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := DefaultConfig().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "elapse: 300ms")

	cfg, err := LoadConfig(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Configuration is package global state, so these tests run sequentially.

func TestInitializeDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	require.NoError(t, Initialize("", nil))

	cfg := Get()
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 1500, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "0007-E000", cfg.Server.Firmware)
	assert.Empty(t, cfg.KBPK.Hex)
	assert.Equal(t, filepath.Join(home, appDir, "keys.db"), cfg.Keystore.Path)
	assert.Equal(t, "human", cfg.Log.Format)

	assert.FileExists(t, filepath.Join(home, appDir, "config.yaml"))
}

func TestInitializeEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("GOTR31_SERVER_PORT", "1600")
	t.Setenv("GOTR31_WRAP_MASKED_KEY_LENGTH", "32")

	require.NoError(t, Initialize("", nil))
	assert.Equal(t, 1600, Get().Server.Port)
	assert.Equal(t, 32, Get().Wrap.MaskedKeyLength)
}

func TestInitializeExplicitFileAndFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "tr31.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 1700\nlog:\n  level: debug\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 1500, "")
	flags.String("kbpk", "", "")
	require.NoError(t, flags.Parse([]string{"--kbpk", "00112233445566778899AABBCCDDEEFF"}))

	require.NoError(t, Initialize(path, flags))
	cfg := Get()
	assert.Equal(t, 1700, cfg.Server.Port, "unset flag does not override file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "00112233445566778899AABBCCDDEEFF", cfg.KBPK.Hex)
	assert.NotNil(t, GetViper())
}

func TestInitializeBadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o600))

	require.Error(t, Initialize(path, nil))
}

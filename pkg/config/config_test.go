package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	flag "github.com/spf13/pflag"
)

func Test_Default_isUsable(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.DeviceID)
	assert.Greater(t, cfg.StatusBroadcastIntervalMs, 0)
}

func Test_LoadFile_overridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("deviceId: kitchen-panel\nserial:\n  portName: /dev/ttyACM3\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "kitchen-panel", cfg.DeviceID)
	assert.Equal(t, "/dev/ttyACM3", cfg.Serial.PortName)
	// untouched fields keep their defaults
	assert.Equal(t, Default().Serial.BaudRate, cfg.Serial.BaudRate)
}

func Test_LoadFile_missingFileErrors(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func Test_BindFlags_appliesOverride(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	BindFlags(fs, &cfg)

	require.NoError(t, fs.Parse([]string{"--device-id=garage-panel", "--serial-baud=9600"}))

	assert.Equal(t, "garage-panel", cfg.DeviceID)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
}

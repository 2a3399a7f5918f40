package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/connectivity-led/internal/probe"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "8.8.8.8", cfg.Probe.Target)
	assert.Equal(t, probe.MethodExec, cfg.Probe.Method)
	assert.Equal(t, 3*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.Equal(t, 3, cfg.FailureThreshold)
	assert.Equal(t, BackendGPIO, cfg.Indicator.Backend)
	assert.Equal(t, 17, cfg.Indicator.GPIO.Pin)
	assert.Equal(t, "/var/log/connectivity_monitor.log", cfg.Log.File)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Empty(t, cfg.HTTP)

	require.NoError(t, Validate(&cfg))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
probe:
  method: dns
  target: 1.1.1.1
  timeout: 2s
  dns_name: example.org
interval: 30s
failure_threshold: 5
heartbeat: 0s
indicator:
  backend: sysfs
  sysfs:
    path: /sys/class/leds/led0
log:
  verbose: true
mqtt:
  broker: tcp://192.168.1.200:1883
http: ":8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, probe.MethodDNS, cfg.Probe.Method)
	assert.Equal(t, "1.1.1.1", cfg.Probe.Target)
	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, "example.org", cfg.Probe.DNSName)
	assert.Equal(t, 53, cfg.Probe.Port, "unset keys keep their default")
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, 5, cfg.FailureThreshold)
	assert.Equal(t, time.Duration(0), cfg.Heartbeat)
	assert.Equal(t, BackendSysfs, cfg.Indicator.Backend)
	assert.Equal(t, "/sys/class/leds/led0", cfg.Indicator.Sysfs.Path)
	assert.Equal(t, "none", cfg.Indicator.Sysfs.ManualTrigger)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, "tcp://192.168.1.200:1883", cfg.MQTT.Broker)
	assert.Equal(t, ":8080", cfg.HTTP)

	require.NoError(t, Validate(&cfg))
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "interval: [not a duration"))
	assert.Error(t, err)
}

func TestLoadUnreadable(t *testing.T) {
	_, err := Load(t.TempDir()) // a directory
	assert.Error(t, err)
}

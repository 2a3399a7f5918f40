// Package config loads the daemon configuration from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/connectivity-led/internal/indicator"
	"github.com/sweeney/connectivity-led/internal/probe"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "/etc/connectivity-led.yaml"

// Backend names for Indicator.Backend.
const (
	BackendGPIO  = "gpio"
	BackendSysfs = "sysfs"
)

// Config represents the daemon configuration. It is fixed at startup.
type Config struct {
	Probe            ProbeConfig     `yaml:"probe"`
	Interval         time.Duration   `yaml:"interval"`
	FailureThreshold int             `yaml:"failure_threshold"`
	Heartbeat        time.Duration   `yaml:"heartbeat"`
	Indicator        IndicatorConfig `yaml:"indicator"`
	Log              LogConfig       `yaml:"log"`
	MQTT             MQTTConfig      `yaml:"mqtt"`
	HTTP             string          `yaml:"http"`
}

// ProbeConfig selects and configures the reachability test.
type ProbeConfig struct {
	Method     probe.Method  `yaml:"method"`
	Target     string        `yaml:"target"`
	Timeout    time.Duration `yaml:"timeout"`
	Port       int           `yaml:"port"`
	DNSName    string        `yaml:"dns_name"`
	Privileged bool          `yaml:"privileged"`
}

// IndicatorConfig selects the LED backend.
type IndicatorConfig struct {
	Backend string      `yaml:"backend"`
	GPIO    GPIOConfig  `yaml:"gpio"`
	Sysfs   SysfsConfig `yaml:"sysfs"`
}

// GPIOConfig addresses an LED on a GPIO line.
type GPIOConfig struct {
	Chip      string `yaml:"chip"`
	Pin       int    `yaml:"pin"`
	ActiveLow bool   `yaml:"active_low"`
}

// SysfsConfig addresses an LED class device.
type SysfsConfig struct {
	Path           string `yaml:"path"`
	ManualTrigger  string `yaml:"manual_trigger"`
	DefaultTrigger string `yaml:"default_trigger"`
}

// LogConfig controls the log sinks.
type LogConfig struct {
	File    string `yaml:"file"`
	Verbose bool   `yaml:"verbose"`
}

// MQTTConfig enables the optional event publisher. An empty broker disables it.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
}

// DefaultConfig mirrors the classic Pi setup: ping 8.8.8.8 every 10s,
// 3 failures for DOWN, LED on GPIO 17.
func DefaultConfig() Config {
	return Config{
		Probe: ProbeConfig{
			Method:  probe.MethodExec,
			Target:  probe.DefaultTarget,
			Timeout: probe.DefaultTimeout,
			Port:    probe.DefaultPort,
			DNSName: probe.DefaultDNSName,
		},
		Interval:         10 * time.Second,
		FailureThreshold: 3,
		Heartbeat:        15 * time.Minute,
		Indicator: IndicatorConfig{
			Backend: BackendGPIO,
			GPIO: GPIOConfig{
				Chip: indicator.DefaultChip,
				Pin:  indicator.DefaultPin,
			},
			Sysfs: SysfsConfig{
				Path:           indicator.DefaultSysfsPath,
				ManualTrigger:  indicator.DefaultManualTrigger,
				DefaultTrigger: indicator.DefaultRestoreTrigger,
			},
		},
		Log: LogConfig{
			File: "/var/log/connectivity_monitor.log",
		},
	}
}

// Load reads configuration from a YAML file over the defaults.
// A missing file falls back to defaults. Load does not validate.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Package config is the ambient configuration surface: a YAML file with
// flag overrides, in the shape the teacher's cmd/ package would use if it
// grew past a handful of ad hoc flags.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Serial configures the C6 transport adapter, per spec.md §6's serial{}
// block.
type Serial struct {
	PortName            string `yaml:"portName"`
	BaudRate            int    `yaml:"baudRate"`
	DataBits            int    `yaml:"dataBits"`
	Parity              string `yaml:"parity"`   // none|odd|even|mark|space
	StopBits            string `yaml:"stopBits"` // 1|1.5|2
	ReadTimeoutMs       int    `yaml:"readTimeoutMs"`
	WriteTimeoutMs      int    `yaml:"writeTimeoutMs"`
	EnableAutoReconnect bool   `yaml:"enableAutoReconnect"`
	ReconnectDelayMs    int    `yaml:"reconnectDelayMs"`
}

// Audio holds session filtering and default-device selection settings, per
// spec.md §6's audio{} block. The values are loaded and can be overridden by
// flag, but cmd/audio-mixer-bridge does not pass them on: the orchestrator
// always lists sessions with a zero-value (unrestricted) audio.Filter.
type Audio struct {
	IncludeAllDevices     bool     `yaml:"includeAllDevices"`
	IncludeCaptureDevices bool     `yaml:"includeCaptureDevices"`
	DataFlow              string   `yaml:"dataFlow"`   // render|capture|both
	DeviceRole            string   `yaml:"deviceRole"` // console|multimedia|communications
	ProcessNameFilters    []string `yaml:"processNameFilters"`
	UseRegexFiltering     bool     `yaml:"useRegexFiltering"`
	EnableDetailedLogging bool     `yaml:"enableDetailedLogging"`
}

// Logging configures the C12 event sink.
type Logging struct {
	Level      string `yaml:"level"`
	ReportTime bool   `yaml:"reportTime"`
}

// Config is the full set of knobs the bridge accepts, loaded from YAML and
// then overridden by any flags the caller passed. Field names and nesting
// follow spec.md §6's configuration surface exactly, plus MetricsAddr as
// a SPEC_FULL.md supplement for the Prometheus endpoint.
type Config struct {
	DeviceID                      string `yaml:"deviceId"`
	StatusBroadcastIntervalMs     int    `yaml:"statusBroadcastIntervalMs"`
	AudioSessionRefreshIntervalMs int    `yaml:"audioSessionRefreshIntervalMs"`
	EnableSerial                  bool   `yaml:"enableSerial"`
	EnableBinaryProtocol          bool   `yaml:"enableBinaryProtocol"`
	MetricsAddr                   string `yaml:"metricsAddr"`

	Serial  Serial  `yaml:"serial"`
	Audio   Audio   `yaml:"audio"`
	Logging Logging `yaml:"logging"`
}

// Default returns the configuration used when no file is present and no
// flags override it.
func Default() Config {
	return Config{
		DeviceID:                      "audio-mixer-bridge",
		StatusBroadcastIntervalMs:     2000,
		AudioSessionRefreshIntervalMs: 1000,
		EnableSerial:                  true,
		EnableBinaryProtocol:          true,
		MetricsAddr:                   ":9274",
		Serial: Serial{
			PortName:            "/dev/ttyUSB0",
			BaudRate:            115200,
			DataBits:            8,
			Parity:              "none",
			StopBits:            "1",
			ReadTimeoutMs:       1000,
			WriteTimeoutMs:      1000,
			EnableAutoReconnect: true,
			ReconnectDelayMs:    2000,
		},
		Audio: Audio{
			DataFlow:   "render",
			DeviceRole: "console",
		},
		Logging: Logging{
			Level:      "info",
			ReportTime: true,
		},
	}
}

// StatusBroadcastInterval is StatusBroadcastIntervalMs as a time.Duration.
func (c Config) StatusBroadcastInterval() time.Duration {
	return time.Duration(c.StatusBroadcastIntervalMs) * time.Millisecond
}

// AudioSessionRefreshInterval is AudioSessionRefreshIntervalMs as a
// time.Duration.
func (c Config) AudioSessionRefreshInterval() time.Duration {
	return time.Duration(c.AudioSessionRefreshIntervalMs) * time.Millisecond
}

// ReadTimeout is Serial.ReadTimeoutMs as a time.Duration.
func (s Serial) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMs) * time.Millisecond
}

// WriteTimeout is Serial.WriteTimeoutMs as a time.Duration.
func (s Serial) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMs) * time.Millisecond
}

// ReconnectDelay is Serial.ReconnectDelayMs as a time.Duration.
func (s Serial) ReconnectDelay() time.Duration {
	return time.Duration(s.ReconnectDelayMs) * time.Millisecond
}

// LoadFile reads and parses a YAML config file on top of Default().
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: reading %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parsing %s", path)
	}
	return cfg, nil
}

// BindFlags registers flag overrides for every field a deployment commonly
// needs to tweak without editing the YAML file.
func BindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "device identifier reported in status broadcasts")
	fs.IntVar(&cfg.StatusBroadcastIntervalMs, "status-interval-ms", cfg.StatusBroadcastIntervalMs, "periodic status broadcast interval, in milliseconds")
	fs.IntVar(&cfg.AudioSessionRefreshIntervalMs, "audio-refresh-ms", cfg.AudioSessionRefreshIntervalMs, "audio session poll interval, in milliseconds")
	fs.BoolVar(&cfg.EnableSerial, "enable-serial", cfg.EnableSerial, "open the serial transport")
	fs.BoolVar(&cfg.EnableBinaryProtocol, "enable-binary-protocol", cfg.EnableBinaryProtocol, "framing selector; the serial transport implements only the framed binary codec and does not read this value")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "listen address for the Prometheus /metrics endpoint")

	fs.StringVar(&cfg.Serial.PortName, "serial-port-name", cfg.Serial.PortName, "serial port device path")
	fs.IntVar(&cfg.Serial.BaudRate, "serial-baud", cfg.Serial.BaudRate, "serial baud rate")
	fs.IntVar(&cfg.Serial.DataBits, "serial-data-bits", cfg.Serial.DataBits, "serial data bits")
	fs.StringVar(&cfg.Serial.Parity, "serial-parity", cfg.Serial.Parity, "serial parity (none, odd, even, mark, space)")
	fs.StringVar(&cfg.Serial.StopBits, "serial-stop-bits", cfg.Serial.StopBits, "serial stop bits (1, 1.5, 2)")
	fs.IntVar(&cfg.Serial.ReadTimeoutMs, "serial-read-timeout-ms", cfg.Serial.ReadTimeoutMs, "serial read timeout, in milliseconds")
	fs.IntVar(&cfg.Serial.WriteTimeoutMs, "serial-write-timeout-ms", cfg.Serial.WriteTimeoutMs, "serial write timeout, in milliseconds")
	fs.BoolVar(&cfg.Serial.EnableAutoReconnect, "serial-enable-auto-reconnect", cfg.Serial.EnableAutoReconnect, "reopen the serial port on I/O error instead of terminating the reader")
	fs.IntVar(&cfg.Serial.ReconnectDelayMs, "serial-reconnect-delay-ms", cfg.Serial.ReconnectDelayMs, "delay before each reconnect attempt, in milliseconds")

	fs.BoolVar(&cfg.Audio.IncludeAllDevices, "audio-include-all-devices", cfg.Audio.IncludeAllDevices, "bypass session filters and report every session")
	fs.BoolVar(&cfg.Audio.IncludeCaptureDevices, "audio-include-capture-devices", cfg.Audio.IncludeCaptureDevices, "include capture-side sessions/devices")
	fs.StringVar(&cfg.Audio.DataFlow, "audio-data-flow", cfg.Audio.DataFlow, "default-device data flow (render, capture, both)")
	fs.StringVar(&cfg.Audio.DeviceRole, "audio-device-role", cfg.Audio.DeviceRole, "default-device role (console, multimedia, communications)")
	fs.StringSliceVar(&cfg.Audio.ProcessNameFilters, "audio-process-name-filters", cfg.Audio.ProcessNameFilters, "process name substrings or regexes to include")
	fs.BoolVar(&cfg.Audio.UseRegexFiltering, "audio-use-regex-filtering", cfg.Audio.UseRegexFiltering, "treat audio-process-name-filters entries as regexes instead of substrings")
	fs.BoolVar(&cfg.Audio.EnableDetailedLogging, "audio-enable-detailed-logging", cfg.Audio.EnableDetailedLogging, "log every audio backend call at debug level")

	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "minimum log level (debug, info, warn, error)")
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/laptimer/internal/serialmux"
)

// DefaultConfigPath is the path to the canonical timer defaults file.
const DefaultConfigPath = "config/timer.defaults.json"

const (
	defaultSerialPort   = "/dev/ttyACM0"
	defaultTickInterval = 50 * time.Millisecond
	defaultLogBuffer    = 256
)

// TimerConfig represents the host-side configuration of the lap timer. Race
// rules (lap count, speed limit, wheel circumference) are fixed constants in
// the race package and are deliberately absent here.
type TimerConfig struct {
	SerialPort *string                `json:"serial_port,omitempty"`
	Serial     *serialmux.PortOptions `json:"serial,omitempty"`

	// Control loop pause between ticks
	TickInterval *string `json:"tick_interval,omitempty"` // duration string like "50ms"

	// Lines the async logger may queue before dropping
	LogBuffer *int `json:"log_buffer,omitempty"`

	// Replace the serial device with a simulated gate controller
	DevMode *bool `json:"dev_mode,omitempty"`
}

// Helper functions to create pointers
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyTimerConfig returns a TimerConfig with all fields set to nil.
func EmptyTimerConfig() *TimerConfig {
	return &TimerConfig{}
}

// DefaultTimerConfig returns a TimerConfig with every field populated with
// its default value.
func DefaultTimerConfig() *TimerConfig {
	return &TimerConfig{
		SerialPort:   ptrString(defaultSerialPort),
		Serial:       &serialmux.PortOptions{BaudRate: serialmux.DefaultBaudRate, DataBits: 8, StopBits: 1, Parity: "N"},
		TickInterval: ptrString(defaultTickInterval.String()),
		LogBuffer:    ptrInt(defaultLogBuffer),
		DevMode:      ptrBool(false),
	}
}

// LoadTimerConfig loads a TimerConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file fall back to defaults through the Get*
// methods, so partial configs are safe.
func LoadTimerConfig(path string) (*TimerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTimerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TimerConfig) Validate() error {
	if c.SerialPort != nil && *c.SerialPort == "" {
		return fmt.Errorf("serial_port must not be empty")
	}

	if c.Serial != nil {
		if _, err := c.Serial.Normalize(); err != nil {
			return fmt.Errorf("invalid serial options: %w", err)
		}
	}

	if c.TickInterval != nil && *c.TickInterval != "" {
		d, err := time.ParseDuration(*c.TickInterval)
		if err != nil {
			return fmt.Errorf("invalid tick_interval '%s': %w", *c.TickInterval, err)
		}
		if d <= 0 || d > time.Second {
			return fmt.Errorf("tick_interval must be in (0, 1s], got %s", d)
		}
	}

	if c.LogBuffer != nil && *c.LogBuffer < 0 {
		return fmt.Errorf("log_buffer must be non-negative, got %d", *c.LogBuffer)
	}

	return nil
}

// GetSerialPort returns the serial device path or the default.
func (c *TimerConfig) GetSerialPort() string {
	if c.SerialPort == nil || *c.SerialPort == "" {
		return defaultSerialPort
	}
	return *c.SerialPort
}

// GetSerialOptions returns the normalised serial options.
func (c *TimerConfig) GetSerialOptions() serialmux.PortOptions {
	var opts serialmux.PortOptions
	if c.Serial != nil {
		opts = *c.Serial
	}
	normalised, err := opts.Normalize()
	if err != nil {
		normalised, _ = serialmux.PortOptions{}.Normalize()
	}
	return normalised
}

// GetTickInterval parses and returns the TickInterval as a time.Duration.
func (c *TimerConfig) GetTickInterval() time.Duration {
	if c.TickInterval == nil || *c.TickInterval == "" {
		return defaultTickInterval
	}
	d, err := time.ParseDuration(*c.TickInterval)
	if err != nil || d <= 0 {
		return defaultTickInterval // default on parse error
	}
	return d
}

// GetLogBuffer returns the log_buffer value or the default.
func (c *TimerConfig) GetLogBuffer() int {
	if c.LogBuffer == nil {
		return defaultLogBuffer
	}
	return *c.LogBuffer
}

// GetDevMode returns the dev_mode value or the default.
func (c *TimerConfig) GetDevMode() bool {
	if c.DevMode == nil {
		return false
	}
	return *c.DevMode
}

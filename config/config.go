package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the acquisition engine configuration. Everything here
// is fixed at construction; nothing is runtime mutable.
type Config struct {
	// TickRate is the synchronous timing base in Hz.
	TickRate uint32 `json:"tick_rate"`

	// BusRate is the target bus clock rate in Hz. Must not exceed half
	// the tick rate.
	BusRate uint32 `json:"bus_rate"`

	// Mode is the bus clock polarity/phase mode (0-3).
	Mode uint8 `json:"mode"`

	// Width is the transfer width in bits.
	Width uint8 `json:"width"`

	// WaitTicks is the inter-measurement delay in ticks.
	WaitTicks uint32 `json:"wait_ticks"`

	// WatchdogTicks enables the stall watchdog when nonzero.
	WatchdogTicks uint32 `json:"watchdog_ticks"`

	// Serial configures the optional host-link serial output.
	Serial SerialConfig `json:"serial"`
}

// SerialConfig selects the host-link serial port.
type SerialConfig struct {
	Device string `json:"device"`
	Baud   int    `json:"baud"`
}

// LoadConfig parses a JSON configuration and returns a Config with
// defaults applied.
func LoadConfig(jsonData []byte) (*Config, error) {
	var cfg Config

	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadConfig(data)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in missing configuration values with the board's
// defaults.
func applyDefaults(cfg *Config) {
	if cfg.TickRate == 0 {
		cfg.TickRate = 100000000 // 100MHz system clock
	}
	if cfg.BusRate == 0 {
		cfg.BusRate = 1000000 // 1MHz bus clock
	}
	if cfg.Width == 0 {
		cfg.Width = 8
	}
	if cfg.WaitTicks == 0 {
		cfg.WaitTicks = 1000000
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}
}

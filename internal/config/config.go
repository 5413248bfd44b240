// Package config loads the command-line tool's settings from an optional
// TOML file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/moffa90/go-eeprom/transport"
)

const (
	EnvPort     = "EEPROM_PORT"
	EnvLogLevel = "EEPROM_LOG_LEVEL"
)

// DefaultSettleDelay is the wait after a bulk write phase before readback.
const DefaultSettleDelay = 2 * time.Second

// Config holds everything needed to open a session and run the tool.
type Config struct {
	Port         string
	BaudRate     int
	Timeout      time.Duration
	ConnectDelay time.Duration
	SettleDelay  time.Duration
	LogLevel     string
	MetricsAddr  string
}

type fileConfig struct {
	Port         string `toml:"port"`
	BaudRate     int    `toml:"baud_rate"`
	Timeout      string `toml:"timeout"`
	ConnectDelay string `toml:"connect_delay"`
	SettleDelay  string `toml:"settle_delay"`
	LogLevel     string `toml:"log_level"`
	MetricsAddr  string `toml:"metrics_addr"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:         transport.DefaultPort,
		BaudRate:     transport.DefaultBaudRate,
		Timeout:      transport.DefaultTimeout,
		ConnectDelay: transport.DefaultSettleDelay,
		SettleDelay:  DefaultSettleDelay,
		LogLevel:     "info",
	}
}

// Load returns the defaults, overlaid with the file at path when path is
// not empty, then with environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}

	if meta.IsDefined("baud_rate") {
		cfg.BaudRate = raw.BaudRate
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"timeout", raw.Timeout, &cfg.Timeout},
		{"connect_delay", raw.ConnectDelay, &cfg.ConnectDelay},
		{"settle_delay", raw.SettleDelay, &cfg.SettleDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
}

// Validate rejects settings no session could run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("invalid config: port is empty")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid config: baud_rate must be positive, got %d", c.BaudRate)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid config: timeout must be positive, got %s", c.Timeout)
	}
	if c.ConnectDelay < 0 {
		return fmt.Errorf("invalid config: connect_delay must not be negative, got %s", c.ConnectDelay)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("invalid config: settle_delay must not be negative, got %s", c.SettleDelay)
	}
	return nil
}

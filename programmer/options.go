package programmer

import (
	"time"

	"github.com/moffa90/go-eeprom/transport"
)

// Config holds the programmer configuration.
type Config struct {
	// ProgressCallback is called during bulk operations to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Metrics receives per-chunk measurements (optional)
	Metrics Metrics

	// ReadTimeout bounds the wait for each reply line
	ReadTimeout time.Duration

	// BaudRate is the serial line speed, used by Open
	BaudRate int

	// ConnectDelay is waited after opening the port, used by Open
	ConnectDelay time.Duration

	// SettleDelay is waited after the write phase of a bulk operation,
	// before verification starts
	SettleDelay time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReadTimeout:  transport.DefaultTimeout,
		BaudRate:     transport.DefaultBaudRate,
		ConnectDelay: transport.DefaultSettleDelay,
		SettleDelay:  2 * time.Second,
	}
}

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithProgressCallback sets a callback function to track bulk operation progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the programmer operations.
//
// Example:
//
//	prog := programmer.New(device, programmer.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets a sink for per-chunk measurements.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithTimeout sets the per-reply read timeout.
// Non-positive values are ignored.
//
// Example:
//
//	prog := programmer.New(device, programmer.WithTimeout(10*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

// WithBaudRate sets the serial line speed used by Open.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// WithConnectDelay sets the wait after opening the port in Open.
func WithConnectDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.ConnectDelay = delay
		}
	}
}

// WithSettleDelay sets the wait between the write and verify phases of
// Fill and ProgramBuffer. Zero disables the wait.
//
// Example:
//
//	prog := programmer.New(device, programmer.WithSettleDelay(500*time.Millisecond))
func WithSettleDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.SettleDelay = delay
		}
	}
}

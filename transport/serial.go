package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Serial link defaults for the programmer firmware.
const (
	DefaultPort        = "/dev/ttyUSB0"
	DefaultBaudRate    = 115200
	DefaultTimeout     = 4 * time.Second
	DefaultSettleDelay = 2 * time.Second
)

// Config holds the serial link parameters.
type Config struct {
	// Port is the device path or name, e.g. /dev/ttyUSB0 or COM3
	Port string

	// BaudRate is the line speed
	BaudRate int

	// Timeout bounds every ReceiveLine call
	Timeout time.Duration

	// SettleDelay is waited after opening the port. Most boards reset the
	// microcontroller when the port opens, and the firmware ignores input
	// until it has booted.
	SettleDelay time.Duration
}

// DefaultConfig returns the default link configuration.
func DefaultConfig() Config {
	return Config{
		Port:        DefaultPort,
		BaudRate:    DefaultBaudRate,
		Timeout:     DefaultTimeout,
		SettleDelay: DefaultSettleDelay,
	}
}

// Serial is an open serial connection to the programmer firmware.
// It owns the port until Close is called.
type Serial struct {
	*LineConn

	port     serial.Port
	name     string
	mu       sync.Mutex
	closed   bool
	closeErr error
}

// Open opens and configures the serial port, then waits SettleDelay before
// returning so the firmware is ready for the first command.
//
// Example:
//
//	link, err := transport.Open(transport.Config{Port: "/dev/ttyUSB0", BaudRate: 115200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer link.Close()
func Open(cfg Config) (*Serial, error) {
	if cfg.Port == "" {
		return nil, &PortOpenError{Port: cfg.Port, Err: errors.New("serial port path is required")}
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, &PortOpenError{Port: cfg.Port, Err: err}
	}

	if err := port.SetReadTimeout(cfg.Timeout); err != nil {
		_ = port.Close()
		return nil, &PortOpenError{Port: cfg.Port, Err: fmt.Errorf("set read timeout: %w", err)}
	}

	if cfg.SettleDelay > 0 {
		time.Sleep(cfg.SettleDelay)
	}

	// Drop anything the firmware printed while booting.
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, &PortOpenError{Port: cfg.Port, Err: fmt.Errorf("reset input buffer: %w", err)}
	}

	return &Serial{
		LineConn: NewLineConn(port, cfg.Timeout),
		port:     port,
		name:     cfg.Port,
	}, nil
}

// PortName returns the serial port name.
func (s *Serial) PortName() string {
	return s.name
}

// Send writes p to the port.
func (s *Serial) Send(p []byte) error {
	if s.isClosed() {
		return ErrClosed
	}
	return s.LineConn.Send(p)
}

// ReceiveLine reads one reply line from the port.
func (s *Serial) ReceiveLine() ([]byte, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return s.LineConn.ReceiveLine()
}

// Close releases the port. Calling Close more than once is harmless and
// returns the result of the first call.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.closeErr
	}
	s.closed = true
	if err := s.port.Close(); err != nil {
		s.closeErr = fmt.Errorf("close serial port %s: %w", s.name, err)
	}
	return s.closeErr
}

func (s *Serial) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

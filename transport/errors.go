package transport

import (
	"errors"
	"fmt"
	"time"
)

// ErrReceiveTimeout is matched by every TimeoutError via errors.Is.
var ErrReceiveTimeout = errors.New("receive timeout")

// ErrClosed is returned by operations on a closed channel.
var ErrClosed = errors.New("transport closed")

// TimeoutError indicates that no complete reply line arrived in time.
// Any partial data received before the deadline is dropped, never returned.
type TimeoutError struct {
	// Timeout is the configured receive timeout
	Timeout time.Duration

	// Discarded is the number of bytes of the incomplete line that were dropped
	Discarded int
}

func (e *TimeoutError) Error() string {
	if e.Discarded > 0 {
		return fmt.Sprintf("receive timeout after %s (%d bytes of incomplete line discarded)",
			e.Timeout, e.Discarded)
	}
	return fmt.Sprintf("receive timeout after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrReceiveTimeout
}

// PortOpenError indicates that the serial port could not be opened or configured.
type PortOpenError struct {
	Port string
	Err  error
}

func (e *PortOpenError) Error() string {
	return fmt.Sprintf("failed to open serial port %s: %v", e.Port, e.Err)
}

func (e *PortOpenError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if err is or wraps a receive timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrReceiveTimeout)
}

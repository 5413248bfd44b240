package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

// readBufferSize covers the longest reply: 256 values of "0xff, " plus CRLF.
const readBufferSize = 2048

// readTimeoutSetter is implemented by ports whose Read gives up after a
// configurable time, such as go.bug.st/serial.Port.
type readTimeoutSetter interface {
	SetReadTimeout(t time.Duration) error
}

// LineConn speaks the line-oriented request/response contract over any
// io.ReadWriter.
//
// A Read that returns (0, nil) is treated as an elapsed read timeout, which
// is how go.bug.st/serial reports SetReadTimeout expiry. When rw has a
// SetReadTimeout method, each Read is limited to the time left before the
// receive deadline so a reply never takes longer than the timeout.
//
// LineConn is not safe for concurrent use.
type LineConn struct {
	rw      io.ReadWriter
	timeout time.Duration
	pending []byte
	buf     []byte
}

// NewLineConn wraps rw. A zero timeout disables the overall deadline and
// relies only on the underlying reader's own timeout behaviour.
func NewLineConn(rw io.ReadWriter, timeout time.Duration) *LineConn {
	if rw == nil {
		panic("transport: nil io.ReadWriter")
	}
	return &LineConn{
		rw:      rw,
		timeout: timeout,
		buf:     make([]byte, readBufferSize),
	}
}

// Timeout returns the per-receive timeout.
func (c *LineConn) Timeout() time.Duration {
	return c.timeout
}

// Send writes p in full before returning.
func (c *LineConn) Send(p []byte) error {
	for len(p) > 0 {
		n, err := c.rw.Write(p)
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("send: %w", io.ErrShortWrite)
		}
		p = p[n:]
	}
	return nil
}

// ReceiveLine blocks until a '\n' terminated line is available and returns
// it including the terminator. If the timeout elapses first, the incomplete
// line is discarded and a *TimeoutError is returned.
func (c *LineConn) ReceiveLine() ([]byte, error) {
	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}

	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := make([]byte, i+1)
			copy(line, c.pending[:i+1])
			c.pending = append(c.pending[:0], c.pending[i+1:]...)
			return line, nil
		}

		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return nil, c.timedOut()
			}
			if setter, ok := c.rw.(readTimeoutSetter); ok {
				if err := setter.SetReadTimeout(remaining); err != nil {
					c.pending = c.pending[:0]
					return nil, fmt.Errorf("receive: set read timeout: %w", err)
				}
			}
		}

		n, err := c.rw.Read(c.buf)
		if n > 0 {
			c.pending = append(c.pending, c.buf[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) && n > 0 {
				continue
			}
			c.pending = c.pending[:0]
			return nil, fmt.Errorf("receive: %w", err)
		}
		if n == 0 {
			return nil, c.timedOut()
		}
	}
}

func (c *LineConn) timedOut() error {
	err := &TimeoutError{Timeout: c.timeout, Discarded: len(c.pending)}
	c.pending = c.pending[:0]
	return err
}

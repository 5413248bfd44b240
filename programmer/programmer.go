package programmer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/moffa90/go-eeprom/protocol"
	"github.com/moffa90/go-eeprom/transport"
)

// Link is the line-oriented channel the programmer talks through.
// *transport.Serial and *transport.LineConn implement it.
type Link interface {
	Send(p []byte) error
	ReceiveLine() ([]byte, error)
}

// Programmer reads and writes an EEPROM through the programmer firmware.
// Every request waits for its reply before the next one is sent.
//
// Programmer is safe for concurrent use after initialization; concurrent
// calls are serialized one request/response exchange at a time. Bulk
// operations from different goroutines would interleave their chunks, so
// callers should keep one bulk operation in flight per Programmer.
type Programmer struct {
	link   Link
	config Config

	mu        sync.Mutex
	closer    io.Closer
	closeOnce sync.Once
	closeErr  error
}

// New creates a new Programmer over the given device.
// device is wrapped in a transport.LineConn using the configured read
// timeout. The caller keeps ownership of device; Close does not close it.
//
// Example:
//
//	dev := simulator.New()
//	prog := programmer.New(dev,
//	    programmer.WithProgressCallback(progressFunc),
//	    programmer.WithTimeout(4*time.Second),
//	)
func New(device io.ReadWriter, opts ...Option) *Programmer {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := buildConfig(opts)
	return &Programmer{
		link:   transport.NewLineConn(device, cfg.ReadTimeout),
		config: cfg,
	}
}

// NewWithLink creates a Programmer over an already framed link such as
// *transport.Serial or *transport.LineConn. The read timeout option has no
// effect here; the link enforces its own. Close does not close link.
func NewWithLink(link Link, opts ...Option) *Programmer {
	if link == nil {
		panic("link cannot be nil")
	}

	return &Programmer{
		link:   link,
		config: buildConfig(opts),
	}
}

func buildConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ReadChunk reads size bytes starting at addr in a single request.
// size must be in [0, protocol.MaxChunkSize] and the range must fit in the
// address space; otherwise nothing is sent. A zero size returns an empty
// slice without any I/O.
func (p *Programmer) ReadChunk(ctx context.Context, addr, size int) ([]byte, error) {
	if err := protocol.ValidateRange(addr, size); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cancelled: %w", err)
	}

	cmd, err := protocol.BuildReadCmd(addr, size)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := p.readExchange(cmd, size)
	p.observeChunk(OpRead, size, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("read 0x%04x (%d bytes): %w", addr, size, err)
	}

	return data, nil
}

// WriteChunk writes data starting at addr in a single request.
// len(data) must equal size. The write is not read back; Fill and
// ProgramBuffer verify at the bulk level.
func (p *Programmer) WriteChunk(ctx context.Context, addr, size int, data []byte) error {
	if err := protocol.ValidateAddress(addr); err != nil {
		return err
	}
	if err := protocol.ValidateChunkSize(size); err != nil {
		return err
	}
	if len(data) != size {
		return &SizeMismatchError{Size: size, DataLen: len(data)}
	}
	if err := protocol.ValidateRange(addr, size); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	cmd, err := protocol.BuildWriteCmd(addr, data)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.writeExchange(cmd)
	p.observeChunk(OpWrite, size, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("write 0x%04x (%d bytes): %w", addr, size, err)
	}

	return nil
}

// ReadAddress reads the single byte at addr.
func (p *Programmer) ReadAddress(ctx context.Context, addr int) (byte, error) {
	data, err := p.ReadChunk(ctx, addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// WriteAddress writes a single byte at addr.
func (p *Programmer) WriteAddress(ctx context.Context, addr int, value byte) error {
	return p.WriteChunk(ctx, addr, 1, []byte{value})
}

// readExchange sends a read request and decodes the reply.
func (p *Programmer) readExchange(cmd []byte, size int) ([]byte, error) {
	line, err := p.exchange(cmd)
	if err != nil {
		return nil, err
	}
	return protocol.ParseReadResponse(line, size)
}

// writeExchange sends a write request and checks the acknowledgement.
func (p *Programmer) writeExchange(cmd []byte) error {
	line, err := p.exchange(cmd)
	if err != nil {
		return err
	}
	return protocol.ParseWriteResponse(line)
}

// exchange performs one request/response round trip. The lock guarantees a
// reply is always matched to the request that caused it.
func (p *Programmer) exchange(cmd []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.link.Send(cmd); err != nil {
		return nil, fmt.Errorf("send command: %w", err)
	}

	line, err := p.link.ReceiveLine()
	if err != nil {
		return nil, fmt.Errorf("receive reply: %w", err)
	}

	return line, nil
}

// reportProgress calls the progress callback if configured.
func (p *Programmer) reportProgress(progress Progress) {
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(progress)
	}
}

func (p *Programmer) observeChunk(op string, size int, elapsed time.Duration, err error) {
	if p.config.Metrics != nil {
		p.config.Metrics.ObserveChunk(op, size, elapsed, err)
	}
}

func (p *Programmer) observeVerificationFailure(op string) {
	if p.config.Metrics != nil {
		p.config.Metrics.ObserveVerificationFailure(op)
	}
}

// logDebug logs a debug message if a logger is configured.
func (p *Programmer) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (p *Programmer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (p *Programmer) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}

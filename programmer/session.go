package programmer

import (
	"github.com/moffa90/go-eeprom/transport"
)

// Open connects to the programmer firmware on the named serial port and
// returns a Programmer that owns the port. Open returns only after the
// connect delay has elapsed, so the first command is safe to send.
// The port is released by Close.
//
// Example:
//
//	prog, err := programmer.Open("/dev/ttyUSB0", programmer.WithBaudRate(115200))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer prog.Close()
func Open(port string, opts ...Option) (*Programmer, error) {
	cfg := buildConfig(opts)

	link, err := transport.Open(transport.Config{
		Port:        port,
		BaudRate:    cfg.BaudRate,
		Timeout:     cfg.ReadTimeout,
		SettleDelay: cfg.ConnectDelay,
	})
	if err != nil {
		return nil, err
	}

	p := NewWithLink(link, opts...)
	p.closer = link

	p.logInfo("connected", "port", link.PortName(), "baud", cfg.BaudRate, "timeout", link.Timeout())

	return p, nil
}

// Close releases the serial port if this Programmer owns it. It is safe to
// call more than once.
func (p *Programmer) Close() error {
	p.closeOnce.Do(func() {
		if p.closer != nil {
			p.closeErr = p.closer.Close()
		}
	})
	return p.closeErr
}

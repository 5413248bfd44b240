package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/moffa90/go-eeprom/programmer"
	"github.com/moffa90/go-eeprom/protocol"
	"github.com/moffa90/go-eeprom/romimage"
	"github.com/moffa90/go-eeprom/transport"
)

// usageError marks bad command-line input.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// app runs operations against one session.
type app struct {
	prog *programmer.Programmer
	out  io.Writer
	bars *progressReporter
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	switch cmd, rest := args[0], args[1:]; cmd {
	case "dump":
		fs := flag.NewFlagSet("dump", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		outPath := fs.String("o", "", "save the dump to this file")
		if err := fs.Parse(rest); err != nil {
			return usagef("dump: %v", err)
		}
		return a.dump(ctx, *outPath)

	case "read":
		if len(rest) != 1 {
			return usagef("usage: read <addr>")
		}
		addr, err := protocol.ParseAddress(rest[0])
		if err != nil {
			return usagef("read: %v", err)
		}
		return a.readAddress(ctx, addr)

	case "write":
		if len(rest) != 2 {
			return usagef("usage: write <addr> <value>")
		}
		addr, err := protocol.ParseAddress(rest[0])
		if err != nil {
			return usagef("write: %v", err)
		}
		value, err := protocol.ParseByte(rest[1])
		if err != nil {
			return usagef("write: %v", err)
		}
		return a.writeAddress(ctx, addr, value)

	case "program":
		fs := flag.NewFlagSet("program", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		formatName := fs.String("format", "", "image format: raw or ihex (default: by extension)")
		if err := fs.Parse(rest); err != nil {
			return usagef("program: %v", err)
		}
		if fs.NArg() != 1 {
			return usagef("usage: program [-format raw|ihex] <file>")
		}
		path := fs.Arg(0)
		format := romimage.FormatFromPath(path)
		if *formatName != "" {
			f, err := romimage.ParseFormat(*formatName)
			if err != nil {
				return usagef("program: %v", err)
			}
			format = f
		}
		return a.program(ctx, path, format)

	case "fill":
		if len(rest) != 1 {
			return usagef("usage: fill <value>")
		}
		value, err := protocol.ParseByte(rest[0])
		if err != nil {
			return usagef("fill: %v", err)
		}
		return a.fill(ctx, value)

	default:
		return usagef("unknown command %q", cmd)
	}
}

// dump prints the whole chip and saves it to path when path is set.
func (a *app) dump(ctx context.Context, path string) error {
	snapshot, err := a.printDump(ctx)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	return a.save(path, snapshot)
}

func (a *app) printDump(ctx context.Context) ([]byte, error) {
	defer a.bars.Abort()

	snapshot, err := a.prog.Dump(ctx)
	if err != nil {
		return nil, err
	}
	if err := romimage.WriteHexDump(a.out, 0, snapshot); err != nil {
		return nil, fmt.Errorf("print dump: %w", err)
	}
	return snapshot, nil
}

func (a *app) save(path string, snapshot []byte) error {
	if err := romimage.Save(path, snapshot); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(snapshot), path)
	return nil
}

func (a *app) readAddress(ctx context.Context, addr int) error {
	value, err := a.prog.ReadAddress(ctx, addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Address: 0x%x, Data: 0x%x\n", addr, value)
	return nil
}

func (a *app) writeAddress(ctx context.Context, addr int, value byte) error {
	if err := a.prog.WriteAddress(ctx, addr, value); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote 0x%x to 0x%x\n", value, addr)
	return nil
}

func (a *app) program(ctx context.Context, path string, format romimage.Format) error {
	defer a.bars.Abort()

	image, err := romimage.LoadFormat(path, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Image size: %d (0x%04X) bytes\n", len(image), len(image))

	if err := a.prog.ProgramBuffer(ctx, image); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SUCCESS")
	return nil
}

func (a *app) fill(ctx context.Context, value byte) error {
	defer a.bars.Abort()

	if err := a.prog.Fill(ctx, value); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SUCCESS")
	return nil
}

func cmdPorts(out io.Writer) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(out, p.String())
	}
	return nil
}

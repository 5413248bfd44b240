package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/moffa90/go-eeprom/protocol"
	"github.com/moffa90/go-eeprom/romimage"
)

const menuText = `Modes of operation:
  (1) Memory dump
  (2) Read from address
  (3) Write to address
  (4) Program from file
  (5) Fill memory with byte

`

// runMenu drives the interactive session: chip insertion, one or more
// operations, chip removal. A failed operation ends the session after the
// removal prompt.
func runMenu(ctx context.Context, a *app, t *terminal) error {
	t.clear()
	if _, err := t.prompt("Please insert chip and press ENTER..."); err != nil {
		return menuInput(err)
	}

	var opErr error
	for {
		mode, err := selectMode(t)
		if err != nil {
			return menuInput(err)
		}

		t.clear()
		if opErr = runMode(ctx, a, t, mode); opErr != nil {
			if errors.Is(opErr, io.EOF) {
				return nil
			}
			t.errorLine(opErr)
			break
		}

		choice, err := t.prompt("\nDo you want to perform another operation (y/n)? ")
		if err != nil {
			return menuInput(err)
		}
		if !strings.EqualFold(choice, "y") {
			break
		}
	}

	if _, err := t.prompt("\nPlease remove chip and press ENTER ..."); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return opErr
}

// selectMode asks until a valid operation code is entered. Empty input
// selects the dump.
func selectMode(t *terminal) (int, error) {
	for {
		t.clear()
		fmt.Fprint(t.out, menuText)
		answer, err := t.prompt("Select the operation code (default: 1): ")
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return 1, nil
		}
		mode, err := strconv.Atoi(answer)
		if err == nil && mode >= 1 && mode <= 5 {
			return mode, nil
		}
	}
}

func runMode(ctx context.Context, a *app, t *terminal, mode int) error {
	switch mode {
	case 1:
		fmt.Fprintln(t.out, "Memory dump")
		return menuDump(ctx, a, t)

	case 2:
		fmt.Fprintln(t.out, "Reading from single address")
		addr, err := promptAddress(t)
		if err != nil {
			return err
		}
		fmt.Fprintln(t.out)
		return a.readAddress(ctx, addr)

	case 3:
		fmt.Fprintln(t.out, "Writing to single address")
		addr, err := promptAddress(t)
		if err != nil {
			return err
		}
		value, err := promptByte(t, "  Select byte value to write (hex value): ")
		if err != nil {
			return err
		}
		return a.writeAddress(ctx, addr, value)

	case 4:
		fmt.Fprintln(t.out, "Writing file to memory")
		path, err := t.prompt("  Select path to source file: ")
		if err != nil {
			return err
		}
		return a.program(ctx, path, romimage.FormatFromPath(path))

	case 5:
		fmt.Fprintln(t.out, "Filling memory with single byte value")
		value, err := promptByte(t, "  Select byte value to write (hex value): ")
		if err != nil {
			return err
		}
		return a.fill(ctx, value)
	}
	return fmt.Errorf("unknown mode %d", mode)
}

func menuDump(ctx context.Context, a *app, t *terminal) error {
	snapshot, err := a.printDump(ctx)
	if err != nil {
		return err
	}
	path, err := t.prompt("\nSelect a name for the output binary file (default: not save): ")
	if err != nil || path == "" {
		return menuInput(err)
	}
	return a.save(path, snapshot)
}

func promptAddress(t *terminal) (int, error) {
	raw, err := t.prompt("  Select address (hex value): ")
	if err != nil {
		return 0, err
	}
	return protocol.ParseAddress(raw)
}

func promptByte(t *terminal, msg string) (byte, error) {
	raw, err := t.prompt(msg)
	if err != nil {
		return 0, err
	}
	return protocol.ParseByte(raw)
}

// menuInput turns end of input into a clean exit.
func menuInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

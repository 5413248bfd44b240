package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminal handles prompts. Screen clearing and color only happen when both
// ends are a real terminal.
type terminal struct {
	in          *bufio.Scanner
	out         io.Writer
	interactive bool
}

func newTerminal(stdin io.Reader, stdout io.Writer) *terminal {
	return &terminal{
		in:          bufio.NewScanner(stdin),
		out:         stdout,
		interactive: isTerminal(stdin) && isTerminal(stdout),
	}
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// prompt prints msg and returns the next input line, trimmed.
func (t *terminal) prompt(msg string) (string, error) {
	fmt.Fprint(t.out, msg)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

func (t *terminal) clear() {
	if t.interactive {
		fmt.Fprint(t.out, "\x1b[H\x1b[2J")
	}
}

func (t *terminal) errorLine(err error) {
	label := "ERROR"
	if t.interactive {
		label = "\x1b[31mERROR\x1b[0m"
	}
	fmt.Fprintf(t.out, "\n%s: %v\n\n", label, err)
}

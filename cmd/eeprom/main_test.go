package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("EEPROM_PORT", "")
	t.Setenv("EEPROM_LOG_LEVEL", "")
	t.Setenv("EEPROM_LOG_NOCOLOR", "true")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunCommands(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "read erased byte",
			args:     []string{"-simulate", "read", "0x7fff"},
			wantCode: exitOK,
			wantOut:  "Address: 0x7fff, Data: 0xff",
		},
		{
			name:     "write byte",
			args:     []string{"-simulate", "write", "10", "ab"},
			wantCode: exitOK,
			wantOut:  "Wrote 0xab to 0x10",
		},
		{
			name:     "fill",
			args:     []string{"-simulate", "-settle=0", "fill", "0x5a"},
			wantCode: exitOK,
			wantOut:  "SUCCESS",
		},
		{
			name:     "dump",
			args:     []string{"-simulate", "dump"},
			wantCode: exitOK,
			wantOut:  "0x7ff0 | 0xff",
		},
		{
			name:     "address out of range",
			args:     []string{"-simulate", "read", "0x8000"},
			wantCode: exitUsage,
		},
		{
			name:     "byte out of range",
			args:     []string{"-simulate", "fill", "0x100"},
			wantCode: exitUsage,
		},
		{
			name:     "missing argument",
			args:     []string{"-simulate", "write", "0x10"},
			wantCode: exitUsage,
		},
		{
			name:     "unknown command",
			args:     []string{"-simulate", "erase"},
			wantCode: exitUsage,
		},
		{
			name:     "unknown flag",
			args:     []string{"-turbo"},
			wantCode: exitUsage,
		},
		{
			name:     "help",
			args:     []string{"-h"},
			wantCode: exitOK,
		},
		{
			name:     "missing image",
			args:     []string{"-simulate", "program", "/nonexistent/rom.bin"},
			wantCode: exitError,
		},
		{
			name:     "port that cannot be opened",
			args:     []string{"-port", "/dev/eeprom-test-missing", "read", "0"},
			wantCode: exitError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, "", tt.args...)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, out, errOut)
			}
			if tt.wantOut != "" && !strings.Contains(out, tt.wantOut) {
				t.Errorf("stdout missing %q:\n%s", tt.wantOut, out)
			}
		})
	}
}

func TestRunDumpSavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.bin")

	code, out, errOut := runCLI(t, "", "-simulate", "dump", "-o", path)
	if code != exitOK {
		t.Fatalf("exit code = %d\nstderr: %s", code, errOut)
	}
	if !strings.Contains(out, "Saved 32768 bytes") {
		t.Errorf("stdout missing save notice:\n%.200s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	if !bytes.Equal(data, bytes.Repeat([]byte{0xFF}, 0x8000)) {
		t.Error("saved dump is not an erased chip")
	}
}

func TestRunProgramImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rom.hex")
	if err := os.WriteFile(path, []byte(":0400000001020304F2\n:00000001FF\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, "", "-simulate", "-settle=0", "program", path)
	if code != exitOK {
		t.Fatalf("exit code = %d\nstderr: %s", code, errOut)
	}
	if !strings.Contains(out, "Image size: 4 (0x0004) bytes") || !strings.Contains(out, "SUCCESS") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunProgramImageFormat(t *testing.T) {
	dir := t.TempDir()
	rawColon := filepath.Join(dir, "rom.bin")
	if err := os.WriteFile(rawColon, []byte{':', 0x00, 0xA9, 0x42, 0x8D, 0x00, 0x60}, 0o644); err != nil {
		t.Fatal(err)
	}
	hexText := filepath.Join(dir, "rom.txt")
	if err := os.WriteFile(hexText, []byte(":0400000001020304F2\n:00000001FF\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "raw image starting with a colon",
			args:     []string{"program", rawColon},
			wantCode: exitOK,
			wantOut:  "Image size: 7 (0x0007) bytes",
		},
		{
			name:     "explicit ihex format",
			args:     []string{"program", "-format", "ihex", hexText},
			wantCode: exitOK,
			wantOut:  "Image size: 4 (0x0004) bytes",
		},
		{
			name:     "explicit raw format",
			args:     []string{"program", "-format=raw", hexText},
			wantCode: exitOK,
			wantOut:  "Image size: 32 (0x0020) bytes",
		},
		{
			name:     "unknown format",
			args:     []string{"program", "-format", "srec", hexText},
			wantCode: exitUsage,
		},
		{
			name:     "missing file argument",
			args:     []string{"program", "-format", "raw"},
			wantCode: exitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-simulate", "-settle=0"}, tt.args...)
			code, out, errOut := runCLI(t, "", args...)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, errOut)
			}
			if tt.wantOut != "" && !strings.Contains(out, tt.wantOut) {
				t.Errorf("output missing %q:\n%s", tt.wantOut, out)
			}
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.toml")
	if err := os.WriteFile(path, []byte("settle_delay = \"0s\"\nlog_level = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, errOut := runCLI(t, "", "-config", path, "-simulate", "fill", "0")
	if code != exitOK {
		t.Fatalf("exit code = %d\nstderr: %s", code, errOut)
	}
	if !strings.Contains(errOut, "settling") && !strings.Contains(errOut, "fill") {
		t.Errorf("expected debug logs on stderr, got:\n%s", errOut)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("baud_rate = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runCLI(t, "", "-config", bad, "-simulate", "read", "0"); code != exitError {
		t.Errorf("invalid config exit code = %d, want %d", code, exitError)
	}
}

func TestRunMenu(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode int
		wantOut  []string
	}{
		{
			name: "write then read back",
			input: "\n" + // insert chip
				"3\n0x10\n0x42\ny\n" +
				"2\n10\nn\n" +
				"\n", // remove chip
			wantCode: exitOK,
			wantOut:  []string{"Writing to single address", "Address: 0x10, Data: 0x42", "Please remove chip"},
		},
		{
			name:     "default mode dumps",
			input:    "\n\n\nn\n\n",
			wantCode: exitOK,
			wantOut:  []string{"Memory dump", "0x7ff0 | "},
		},
		{
			name:     "invalid mode is asked again",
			input:    "\n9\nx\n5\nff\nn\n\n",
			wantCode: exitOK,
			wantOut:  []string{"Filling memory with single byte value", "SUCCESS"},
		},
		{
			name:     "bad address ends the session",
			input:    "\n2\nzz\n\n",
			wantCode: exitError,
			wantOut:  []string{"ERROR:", "Please remove chip"},
		},
		{
			name:     "end of input",
			input:    "",
			wantCode: exitOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.input, "-simulate", "-settle=0")
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, out, errOut)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("stdout missing %q", want)
				}
			}
		})
	}
}

func TestRunMenuSavesDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.bin")

	code, _, errOut := runCLI(t, "\n1\n"+path+"\nn\n\n", "-simulate")
	if code != exitOK {
		t.Fatalf("exit code = %d\nstderr: %s", code, errOut)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat dump: %v", err)
	}
	if info.Size() != 0x8000 {
		t.Errorf("dump size = %d, want %d", info.Size(), 0x8000)
	}
}

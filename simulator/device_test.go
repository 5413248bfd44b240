package simulator

import (
	"bytes"
	"testing"
)

func exchange(t *testing.T, d *Device, cmd string) string {
	t.Helper()
	if _, err := d.Write([]byte(cmd)); err != nil {
		t.Fatalf("Write(%q) error = %v", cmd, err)
	}
	buf := make([]byte, 4096)
	n, err := d.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return string(buf[:n])
}

func TestDeviceStartsErased(t *testing.T) {
	d := New()
	mem := d.Memory()
	if len(mem) != 0x8000 {
		t.Fatalf("memory size = %d, want %d", len(mem), 0x8000)
	}
	if !bytes.Equal(mem, bytes.Repeat([]byte{ErasedValue}, 0x8000)) {
		t.Error("new device should be fully erased")
	}
}

func TestDeviceWriteThenRead(t *testing.T) {
	d := New()

	if got := exchange(t, d, "W, 0x7ffe, 0x2, 0x0, 0xab"); got != "OE\r\n" {
		t.Fatalf("write reply = %q, want %q", got, "OE\r\n")
	}
	if got := exchange(t, d, "R, 0x7ffd, 0x3"); got != "0xff, 0x0, 0xab\r\n" {
		t.Errorf("read reply = %q, want %q", got, "0xff, 0x0, 0xab\r\n")
	}
}

func TestDeviceRejectsBadCommands(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
	}{
		{name: "unknown opcode", cmd: "X, 0x0, 0x1"},
		{name: "too few fields", cmd: "R, 0x0"},
		{name: "past end", cmd: "R, 0x7fff, 0x2"},
		{name: "payload count mismatch", cmd: "W, 0x0, 0x2, 0x1"},
		{name: "payload not a byte", cmd: "W, 0x0, 0x1, 0x100"},
		{name: "garbage address", cmd: "R, zz, 0x1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			if got := exchange(t, d, tt.cmd); got != "ER\r\n" {
				t.Errorf("reply = %q, want %q", got, "ER\r\n")
			}
		})
	}
}

func TestDeviceFaultInjection(t *testing.T) {
	d := New()
	d.SetWriteReply("OE2")
	if got := exchange(t, d, "W, 0x0, 0x1, 0x55"); got != "OE2\r\n" {
		t.Errorf("write reply = %q, want %q", got, "OE2\r\n")
	}
	if d.Memory()[0] != 0x55 {
		t.Error("write should still be stored with an overridden reply")
	}

	d.CorruptRead(0, 0x0F)
	if got := exchange(t, d, "R, 0x0, 0x1"); got != "0x5a\r\n" {
		t.Errorf("corrupted read = %q, want %q", got, "0x5a\r\n")
	}

	d.SetSilent(true)
	if _, err := d.Write([]byte("R, 0x0, 0x1")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	n, err := d.Read(make([]byte, 16))
	if n != 0 || err != nil {
		t.Errorf("silent Read() = (%d, %v), want (0, nil)", n, err)
	}

	if got := len(d.Commands()); got != 3 {
		t.Errorf("logged commands = %d, want 3", got)
	}
}

package programmer

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/moffa90/go-eeprom/protocol"
)

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name      string
		base      int
		size      int
		length    int
		wantAddrs []int
		wantLens  []int
	}{
		{
			name:      "exact multiple",
			base:      0,
			size:      256,
			length:    512,
			wantAddrs: []int{0x000, 0x100},
			wantLens:  []int{256, 256},
		},
		{
			name:      "with remainder",
			base:      0,
			size:      256,
			length:    300,
			wantAddrs: []int{0x000, 0x100},
			wantLens:  []int{256, 44},
		},
		{
			name:      "shorter than one chunk",
			base:      0x10,
			size:      16,
			length:    5,
			wantAddrs: []int{0x10},
			wantLens:  []int{5},
		},
		{
			name:   "empty buffer",
			size:   16,
			length: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.length)
			for i := range buf {
				buf[i] = byte(i)
			}

			chunks := SplitChunks(tt.base, buf, tt.size)
			if len(chunks) != len(tt.wantAddrs) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.wantAddrs))
			}

			var joined []byte
			for i, c := range chunks {
				if c.Address != tt.wantAddrs[i] {
					t.Errorf("chunk %d address = 0x%x, want 0x%x", i, c.Address, tt.wantAddrs[i])
				}
				if len(c.Data) != tt.wantLens[i] {
					t.Errorf("chunk %d length = %d, want %d", i, len(c.Data), tt.wantLens[i])
				}
				joined = append(joined, c.Data...)
			}
			if !bytes.Equal(joined, buf) {
				t.Error("chunks do not reassemble into the buffer")
			}
		})
	}
}

func TestSplitChunksCopiesBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	chunks := SplitChunks(0, buf, 2)
	buf[0] = 0xEE

	if chunks[0].Data[0] != 1 {
		t.Error("chunk data aliases the caller's buffer")
	}

	// Appending to one chunk must not overwrite the next.
	_ = append(chunks[0].Data, 0xAA)
	if chunks[1].Data[0] != 3 {
		t.Error("chunks share capacity")
	}
}

func TestFillThenDump(t *testing.T) {
	prog, dev := newSimulated(t)
	ctx := context.Background()

	if err := prog.Fill(ctx, 0xAA); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}

	// 128 writes followed by 128 readbacks.
	if got := len(dev.Commands()); got != 256 {
		t.Errorf("Fill sent %d commands, want 256", got)
	}

	snapshot, err := prog.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if len(snapshot) != protocol.AddressSpace {
		t.Fatalf("Dump() length = %d, want %d", len(snapshot), protocol.AddressSpace)
	}
	for addr, v := range snapshot {
		if v != 0xAA {
			t.Fatalf("snapshot[0x%04x] = 0x%02x, want 0xaa", addr, v)
		}
	}
}

func TestDumpChunking(t *testing.T) {
	prog, dev := newSimulated(t)

	if _, err := prog.Dump(context.Background()); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	cmds := dev.Commands()
	if len(cmds) != protocol.AddressSpace/protocol.DumpChunkSize {
		t.Fatalf("Dump sent %d commands, want %d", len(cmds), protocol.AddressSpace/protocol.DumpChunkSize)
	}
	if cmds[0] != "R, 0x0, 0x10" || cmds[1] != "R, 0x10, 0x10" {
		t.Errorf("first commands = %q, %q", cmds[0], cmds[1])
	}
	if last := cmds[len(cmds)-1]; last != "R, 0x7ff0, 0x10" {
		t.Errorf("last command = %q", last)
	}
}

func TestProgramBuffer(t *testing.T) {
	prog, dev := newSimulated(t)
	ctx := context.Background()

	buf := make([]byte, 300)
	for i := range buf {
		buf[i] = byte(i * 7)
	}

	if err := prog.ProgramBuffer(ctx, buf); err != nil {
		t.Fatalf("ProgramBuffer() error = %v", err)
	}

	var writes []string
	for _, cmd := range dev.Commands() {
		if strings.HasPrefix(cmd, protocol.CmdWrite) {
			writes = append(writes, cmd)
		}
	}
	if len(writes) != 2 {
		t.Fatalf("got %d writes, want 2", len(writes))
	}
	if !strings.HasPrefix(writes[0], "W, 0x0, 0x100, ") {
		t.Errorf("first write = %.20q", writes[0])
	}
	if !strings.HasPrefix(writes[1], "W, 0x100, 0x2c, ") {
		t.Errorf("second write = %.20q", writes[1])
	}

	snapshot, err := prog.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !bytes.Equal(snapshot[:len(buf)], buf) {
		t.Error("dump prefix differs from programmed buffer")
	}
	for addr := len(buf); addr < len(snapshot); addr++ {
		if snapshot[addr] != 0xFF {
			t.Fatalf("snapshot[0x%04x] = 0x%02x, want untouched 0xff", addr, snapshot[addr])
		}
	}
}

func TestProgramBufferEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		wantErr  bool
		wantCmds int
	}{
		{name: "empty buffer", length: 0, wantCmds: 0},
		{name: "full device", length: protocol.AddressSpace, wantCmds: 256},
		{name: "one byte too many", length: protocol.AddressSpace + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, dev := newSimulated(t)

			err := prog.ProgramBuffer(context.Background(), make([]byte, tt.length))
			if tt.wantErr {
				if !protocol.IsAddressError(err) {
					t.Fatalf("error = %v, want AddressError", err)
				}
				if len(dev.Commands()) != 0 {
					t.Error("commands sent for a rejected buffer")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(dev.Commands()); got != tt.wantCmds {
				t.Errorf("commands = %d, want %d", got, tt.wantCmds)
			}
		})
	}
}

func TestBulkWriteStopsOnRejectedWrite(t *testing.T) {
	logger := &MockLogger{}
	prog, dev := newSimulated(t, WithLogger(logger))
	dev.SetWriteReply("OE2")

	err := prog.Fill(context.Background(), 0x00)
	if !protocol.IsUnexpectedWriteResponse(err) {
		t.Fatalf("error = %v, want UnexpectedWriteResponseError", err)
	}
	if got := len(dev.Commands()); got != 1 {
		t.Errorf("commands = %d, want exactly 1", got)
	}
	if len(logger.errorMsgs) == 0 {
		t.Error("expected the failure to be logged")
	}
}

func TestBulkVerificationMismatch(t *testing.T) {
	tests := []struct {
		name string
		run  func(p *Programmer) error
		addr int
		op   string
	}{
		{
			name: "fill",
			run:  func(p *Programmer) error { return p.Fill(context.Background(), 0x5A) },
			addr: 0x1234,
			op:   OpFill,
		},
		{
			name: "program",
			run: func(p *Programmer) error {
				return p.ProgramBuffer(context.Background(), bytes.Repeat([]byte{0x11}, 0x400))
			},
			addr: 0x0305,
			op:   OpProgram,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := NewMockMetrics()
			prog, dev := newSimulated(t, WithMetrics(metrics))
			dev.CorruptRead(tt.addr, 0x01)

			err := tt.run(prog)
			if !IsVerificationMismatch(err) {
				t.Fatalf("error = %v, want VerificationMismatchError", err)
			}

			var vm *VerificationMismatchError
			errors.As(err, &vm)
			if want := tt.addr &^ 0xFF; vm.Address != want {
				t.Errorf("mismatch chunk = 0x%04x, want 0x%04x", vm.Address, want)
			}
			if vm.Address+vm.Offset() != tt.addr {
				t.Errorf("first difference at 0x%04x, want 0x%04x", vm.Address+vm.Offset(), tt.addr)
			}
			if metrics.verifyFailed[tt.op] != 1 {
				t.Errorf("verification failures = %v, want 1 for %s", metrics.verifyFailed, tt.op)
			}
		})
	}
}

func TestBulkProgressPhases(t *testing.T) {
	var phases []string
	var last Progress
	prog, _ := newSimulated(t, WithProgressCallback(func(p Progress) {
		if len(phases) == 0 || phases[len(phases)-1] != p.Phase {
			phases = append(phases, p.Phase)
		}
		if p.Percentage < last.Percentage {
			t.Errorf("percentage went backwards: %.1f after %.1f", p.Percentage, last.Percentage)
		}
		last = p
	}))

	if err := prog.ProgramBuffer(context.Background(), make([]byte, 1024)); err != nil {
		t.Fatalf("ProgramBuffer() error = %v", err)
	}

	want := []string{PhaseWriting, PhaseSettling, PhaseVerifying, PhaseComplete}
	if strings.Join(phases, ",") != strings.Join(want, ",") {
		t.Errorf("phases = %v, want %v", phases, want)
	}
	if last.Percentage != 100 || last.Operation != OpProgram {
		t.Errorf("final progress = %+v", last)
	}
}

func TestBulkCancellationBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prog, dev := newSimulated(t, WithProgressCallback(func(p Progress) {
		if p.Phase == PhaseWriting && p.CurrentChunk == 3 {
			cancel()
		}
	}))

	err := prog.Fill(ctx, 0x42)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if got := len(dev.Commands()); got != 3 {
		t.Errorf("commands = %d, want 3", got)
	}
}

func TestReadRange(t *testing.T) {
	prog, dev := newSimulated(t)
	dev.Load(0x0FF0, bytes.Repeat([]byte{0x77}, 0x220))

	data, err := prog.ReadRange(context.Background(), 0x0FF0, 0x220)
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	if !bytes.Equal(data, bytes.Repeat([]byte{0x77}, 0x220)) {
		t.Error("ReadRange() returned wrong data")
	}
	if got := len(dev.Commands()); got != 3 {
		t.Errorf("commands = %d, want 3", got)
	}

}

func TestReadRangeRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		addr int
		size int
	}{
		{name: "past end", addr: 0x7F00, size: 0x200},
		{name: "negative size", addr: 0, size: -1},
		{name: "negative address", addr: -1, size: 1},
		{name: "size overflowing int", addr: 0x100, size: math.MaxInt - 0x10},
		{name: "max int size", addr: 0x7FFF, size: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, dev := newSimulated(t)

			_, err := prog.ReadRange(context.Background(), tt.addr, tt.size)
			if !protocol.IsAddressError(err) {
				t.Fatalf("error = %v, want AddressError", err)
			}
			if cmds := dev.Commands(); len(cmds) != 0 {
				t.Errorf("commands sent = %d, want none", len(cmds))
			}
		})
	}
}

func TestDumpPropagatesTimeout(t *testing.T) {
	prog, dev := newSimulated(t)
	dev.SetSilent(true)

	_, err := prog.Dump(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := len(dev.Commands()); got != 1 {
		t.Errorf("commands = %d, want 1", got)
	}
}

// Package simulator provides an in-memory stand-in for the EEPROM programmer
// firmware and its 28C256 chip.
//
// Device implements io.ReadWriter: each Write carries one command, and the
// reply line becomes readable through Read. When no reply is pending, Read
// returns (0, nil), which transport.LineConn treats as a read timeout.
//
// Fault injection hooks let tests exercise error paths:
//
//	dev := simulator.New()
//	dev.SetWriteReply("OE2")     // reject every write
//	dev.CorruptRead(0x0105, 0xFF) // flip bits when 0x0105 is read back
//	dev.SetSilent(true)          // never answer
package simulator

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/moffa90/go-eeprom/protocol"
)

// ErasedValue is the content of a blank cell.
const ErasedValue = 0xFF

// replyTerminator matches the firmware, which ends replies with println.
const replyTerminator = "\r\n"

// errorReply is sent for commands the firmware cannot parse.
const errorReply = "ER"

// Device simulates the firmware and chip.
type Device struct {
	mu sync.Mutex

	mem     [protocol.AddressSpace]byte
	out     bytes.Buffer
	latency time.Duration

	writeReply string
	silent     bool
	corrupt    map[int]byte

	commands []string
}

// New returns a device whose memory is fully erased.
func New() *Device {
	d := &Device{corrupt: make(map[int]byte)}
	for i := range d.mem {
		d.mem[i] = ErasedValue
	}
	return d
}

// SetLatency delays every command by latency, for demos of progress output.
func (d *Device) SetLatency(latency time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latency = latency
}

// SetWriteReply replaces the "OE" acknowledgement for writes. The write is
// still stored. An empty string restores normal behaviour.
func (d *Device) SetWriteReply(reply string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeReply = reply
}

// SetSilent makes the device swallow commands without replying.
func (d *Device) SetSilent(silent bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.silent = silent
}

// CorruptRead XORs mask into the value returned whenever addr is read.
// Memory itself is left untouched.
func (d *Device) CorruptRead(addr int, mask byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.corrupt[addr] = mask
}

// Load copies data into memory starting at addr, bypassing the protocol.
func (d *Device) Load(addr int, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.mem[addr:], data)
}

// Memory returns a copy of the whole chip.
func (d *Device) Memory() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.mem))
	copy(out, d.mem[:])
	return out
}

// Commands returns every command received, in order.
func (d *Device) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.commands...)
}

// ResetCommands clears the command log.
func (d *Device) ResetCommands() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = nil
}

// Read returns pending reply bytes, or (0, nil) when nothing is pending.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.out.Len() == 0 {
		return 0, nil
	}
	return d.out.Read(p)
}

// Write accepts one command and queues its reply.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.latency > 0 {
		time.Sleep(d.latency)
	}

	cmd := string(p)
	d.commands = append(d.commands, cmd)

	if d.silent {
		return len(p), nil
	}

	reply := d.handle(cmd)
	d.out.WriteString(reply)
	d.out.WriteString(replyTerminator)

	return len(p), nil
}

func (d *Device) handle(cmd string) string {
	fields := strings.Split(cmd, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 {
		return errorReply
	}

	addr, err := parseField(fields[1])
	if err != nil {
		return errorReply
	}
	size, err := parseField(fields[2])
	if err != nil {
		return errorReply
	}
	if addr < 0 || size < 0 || addr+size > protocol.AddressSpace {
		return errorReply
	}

	switch fields[0] {
	case protocol.CmdRead:
		if len(fields) != 3 {
			return errorReply
		}
		return d.handleRead(addr, size)
	case protocol.CmdWrite:
		if len(fields) != 3+size {
			return errorReply
		}
		return d.handleWrite(addr, fields[3:])
	default:
		return errorReply
	}
}

func (d *Device) handleRead(addr, size int) string {
	values := make([]string, size)
	for i := 0; i < size; i++ {
		v := d.mem[addr+i] ^ d.corrupt[addr+i]
		values[i] = protocol.HexPrefix + strconv.FormatUint(uint64(v), 16)
	}
	return strings.Join(values, protocol.FieldSeparator)
}

func (d *Device) handleWrite(addr int, values []string) string {
	data := make([]byte, len(values))
	for i, s := range values {
		v, err := parseField(s)
		if err != nil || v > protocol.MaxByteValue {
			return errorReply
		}
		data[i] = byte(v)
	}
	copy(d.mem[addr:], data)

	if d.writeReply != "" {
		return d.writeReply
	}
	return protocol.WriteAck
}

func parseField(s string) (int, error) {
	digits := strings.TrimPrefix(s, protocol.HexPrefix)
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid field %q", s)
	}
	return int(v), nil
}

package protocol

import (
	"strconv"
	"strings"
)

// BuildReadCmd constructs a read request for size bytes starting at addr.
//
// Command format:
//
//	R, 0x<addr>, 0x<size>
//
// Numbers are lowercase hexadecimal. The range must already lie inside the
// address space; an out-of-range request is refused rather than encoded.
func BuildReadCmd(addr, size int) ([]byte, error) {
	if err := ValidateRange(addr, size); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.Grow(len(CmdRead) + 2*len(FieldSeparator) + 12)

	b.WriteString(CmdRead)
	b.WriteString(FieldSeparator)
	writeHex(&b, addr)
	b.WriteString(FieldSeparator)
	writeHex(&b, size)

	return []byte(b.String()), nil
}

// BuildWriteCmd constructs a write request storing data starting at addr.
// The declared size is len(data).
//
// Command format:
//
//	W, 0x<addr>, 0x<size>, 0x<b0>, 0x<b1>, ..., 0x<b(size-1)>
func BuildWriteCmd(addr int, data []byte) ([]byte, error) {
	if err := ValidateRange(addr, len(data)); err != nil {
		return nil, err
	}

	var b strings.Builder
	// Worst case per byte: separator + "0x" + two digits
	b.Grow(len(CmdWrite) + 2*len(FieldSeparator) + 12 + len(data)*(len(FieldSeparator)+4))

	b.WriteString(CmdWrite)
	b.WriteString(FieldSeparator)
	writeHex(&b, addr)
	b.WriteString(FieldSeparator)
	writeHex(&b, len(data))
	for _, v := range data {
		b.WriteString(FieldSeparator)
		writeHex(&b, int(v))
	}

	return []byte(b.String()), nil
}

// writeHex renders v the way the firmware expects: 0x prefix, lowercase,
// no zero padding.
func writeHex(b *strings.Builder, v int) {
	b.WriteString(HexPrefix)
	b.WriteString(strconv.FormatInt(int64(v), 16))
}

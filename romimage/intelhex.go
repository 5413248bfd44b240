package romimage

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/moffa90/go-eeprom/protocol"
)

// Intel HEX record types.
const (
	RecordData                   = 0x00
	RecordEOF                    = 0x01
	RecordExtendedSegmentAddress = 0x02
	RecordStartSegmentAddress    = 0x03
	RecordExtendedLinearAddress  = 0x04
	RecordStartLinearAddress     = 0x05
)

// recordOverhead is byte count + address (2) + type + checksum.
const recordOverhead = 5

// parseIntelHex decodes an Intel HEX stream into a flat image that ends at
// the highest address written.
//
// Record format (after the leading ':'):
//
//	[ByteCount(1)][Address(2, big-endian)][Type(1)][Data(N)][Checksum(1)]
//
// Example: ":0300300002337A1E"
//
//	ByteCount: 0x03
//	Address: 0x0030
//	Type: 0x00 (data)
//	Data: [0x02, 0x33, 0x7A]
//	Checksum: 0x1E
func parseIntelHex(r io.Reader) ([]byte, error) {
	image := make([]byte, protocol.AddressSpace)
	for i := range image {
		image[i] = ErasedValue
	}
	end := 0

	scanner := bufio.NewScanner(r)
	lineNum := 0
	sawEOF := false
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		switch rec.kind {
		case RecordData:
			last := int(rec.address) + len(rec.data)
			if last > protocol.AddressSpace {
				return nil, fmt.Errorf("line %d: %w", lineNum, &SizeError{Size: last})
			}
			copy(image[rec.address:], rec.data)
			if last > end {
				end = last
			}
		case RecordEOF:
			sawEOF = true
		case RecordStartSegmentAddress, RecordStartLinearAddress:
			// Entry points mean nothing to an EEPROM.
		default:
			return nil, fmt.Errorf("line %d: unsupported record type 0x%02X", lineNum, rec.kind)
		}

		if sawEOF {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if !sawEOF {
		return nil, fmt.Errorf("missing end-of-file record")
	}

	return image[:end:end], nil
}

type record struct {
	kind    byte
	address uint16
	data    []byte
}

// parseRecord decodes and checksums one ':'-prefixed line.
func parseRecord(line string) (*record, error) {
	if line[0] != ':' {
		return nil, fmt.Errorf("record must start with ':'")
	}

	raw, err := hex.DecodeString(line[1:])
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	if len(raw) < recordOverhead {
		return nil, fmt.Errorf("record too short: got %d bytes, minimum is %d", len(raw), recordOverhead)
	}

	count := int(raw[0])
	if len(raw) != count+recordOverhead {
		return nil, fmt.Errorf("data length mismatch: got %d bytes, expected %d", len(raw), count+recordOverhead)
	}

	checksum := raw[len(raw)-1]
	if calculated := recordChecksum(raw[:len(raw)-1]); checksum != calculated {
		return nil, fmt.Errorf("checksum mismatch: got 0x%02X, expected 0x%02X", checksum, calculated)
	}

	rec := &record{
		kind:    raw[3],
		address: uint16(raw[1])<<8 | uint16(raw[2]),
		data:    make([]byte, count),
	}
	copy(rec.data, raw[4:4+count])

	return rec, nil
}

// recordChecksum is the two's complement of the byte sum.
func recordChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}

package romimage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/moffa90/go-eeprom/protocol"
)

// ErasedValue fills the gaps of a sparse Intel HEX image.
const ErasedValue = 0xFF

// Format selects how image bytes are interpreted.
type Format int

const (
	// FormatRaw means byte i of the input lands at address i.
	FormatRaw Format = iota

	// FormatIntelHex means the input is Intel HEX text.
	FormatIntelHex
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatIntelHex:
		return "ihex"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a format name ("raw", "bin", "ihex", "hex") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "raw", "bin":
		return FormatRaw, nil
	case "ihex", "hex", "ihx":
		return FormatIntelHex, nil
	default:
		return 0, fmt.Errorf("unknown image format %q (use raw or ihex)", name)
	}
}

// FormatFromPath picks the format from the file extension: .hex and .ihx
// are Intel HEX, anything else is raw.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihx":
		return FormatIntelHex
	default:
		return FormatRaw
	}
}

// SizeError indicates an image that does not fit the device.
type SizeError struct {
	Size int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("image too large: %d bytes (device holds %d)", e.Size, protocol.AddressSpace)
}

// Load reads an image from the given file path, choosing the format from
// its extension (see FormatFromPath).
//
// Example:
//
//	img, err := romimage.Load("rom.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = prog.ProgramBuffer(ctx, img)
func Load(path string) ([]byte, error) {
	return LoadFormat(path, FormatFromPath(path))
}

// LoadFormat reads an image from the given file path in an explicit format.
func LoadFormat(path string, format Format) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f, format)
}

// ParseReader reads an image in the given format from any io.Reader.
func ParseReader(r io.Reader, format Format) ([]byte, error) {
	switch format {
	case FormatRaw:
		return parseRaw(r)
	case FormatIntelHex:
		return parseIntelHex(io.LimitReader(r, maxIntelHexInput))
	default:
		return nil, fmt.Errorf("unknown image format %v", format)
	}
}

// maxIntelHexInput bounds how much text is read. Intel HEX needs roughly
// three characters per data byte plus record overhead.
const maxIntelHexInput = 4*protocol.AddressSpace + 64*1024

// parseRaw reads at most one byte past the address space so an oversized
// image is reported without reading all of it.
func parseRaw(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, protocol.AddressSpace+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(raw) > protocol.AddressSpace {
		size := len(raw)
		if n, err := io.Copy(io.Discard, r); err == nil {
			size += int(n)
		}
		return nil, &SizeError{Size: size}
	}
	return raw, nil
}

// Save writes data to path as a raw binary image.
func Save(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

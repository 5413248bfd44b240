package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateAddress checks that a lies in [0, MaxAddress].
func ValidateAddress(a int) error {
	if a < 0 || a > MaxAddress {
		return &AddressError{Address: a}
	}
	return nil
}

// ValidateByte checks that b fits in a single memory cell.
func ValidateByte(b int) error {
	if b < 0 || b > MaxByteValue {
		return &ByteError{Value: b}
	}
	return nil
}

// ValidateChunkSize checks that n lies in [0, MaxChunkSize].
// Zero is accepted; callers treat it as a no-op.
func ValidateChunkSize(n int) error {
	if n < 0 || n > MaxChunkSize {
		return &ChunkSizeError{Size: n}
	}
	return nil
}

// ValidateRange checks a single-request transfer of n bytes starting at a.
// The whole range [a, a+n) must lie inside the address space.
func ValidateRange(a, n int) error {
	if err := ValidateAddress(a); err != nil {
		return err
	}
	if err := ValidateChunkSize(n); err != nil {
		return err
	}
	if a+n > AddressSpace {
		return &AddressError{Address: a, Size: n}
	}
	return nil
}

// ParseAddress converts a hexadecimal string such as "0x7ff0" or "7ff0"
// into a validated address.
func ParseAddress(s string) (int, error) {
	v, err := parseHex(s)
	if err != nil {
		return 0, fmt.Errorf("parse address: %w", err)
	}
	if err := ValidateAddress(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseByte converts a hexadecimal string such as "0xaa" or "AA" into a
// validated byte value.
func ParseByte(s string) (byte, error) {
	v, err := parseHex(s)
	if err != nil {
		return 0, fmt.Errorf("parse byte: %w", err)
	}
	if err := ValidateByte(v); err != nil {
		return 0, err
	}
	return byte(v), nil
}

// parseHex parses a signed hexadecimal integer with an optional 0x prefix.
func parseHex(s string) (int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex value %q", s)
	}
	if neg {
		v = -v
	}
	return int(v), nil
}

package programmer

import (
	"errors"
	"fmt"
)

// SizeMismatchError indicates that the data passed to WriteChunk does not
// match the declared chunk size.
type SizeMismatchError struct {
	Size    int
	DataLen int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: data has %d bytes, chunk size is %d", e.DataLen, e.Size)
}

// VerificationMismatchError indicates that a chunk read back after a bulk
// write differs from what was written.
type VerificationMismatchError struct {
	// Address is the start address of the offending chunk
	Address int

	// Expected is the data that was written
	Expected []byte

	// Actual is the data read back
	Actual []byte
}

// Offset returns the index of the first differing byte within the chunk,
// or -1 if the buffers are equal.
func (e *VerificationMismatchError) Offset() int {
	n := len(e.Expected)
	if len(e.Actual) < n {
		n = len(e.Actual)
	}
	for i := 0; i < n; i++ {
		if e.Expected[i] != e.Actual[i] {
			return i
		}
	}
	if len(e.Expected) != len(e.Actual) {
		return n
	}
	return -1
}

func (e *VerificationMismatchError) Error() string {
	off := e.Offset()
	if off < 0 || off >= len(e.Expected) || off >= len(e.Actual) {
		return fmt.Sprintf("verification failed for chunk at 0x%04x", e.Address)
	}
	return fmt.Sprintf("verification failed for chunk at 0x%04x: address 0x%04x expected 0x%02x, got 0x%02x",
		e.Address, e.Address+off, e.Expected[off], e.Actual[off])
}

// IsVerificationMismatch returns true if err is or wraps a VerificationMismatchError.
func IsVerificationMismatch(err error) bool {
	var target *VerificationMismatchError
	return errors.As(err, &target)
}

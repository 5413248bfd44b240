package protocol

import (
	"errors"
	"fmt"
)

// AddressError indicates a request touching memory outside [0, MaxAddress].
// Size is zero when a single address was checked.
type AddressError struct {
	Address int
	Size    int
}

func (e *AddressError) Error() string {
	if e.Size > 0 {
		return fmt.Sprintf("address out of range: 0x%04x+0x%x exceeds 0x%04x",
			e.Address, e.Size, MaxAddress)
	}
	return fmt.Sprintf("address out of range: 0x%x (valid range is 0x0000-0x%04x)",
		e.Address, MaxAddress)
}

// ByteError indicates a data value that does not fit in one memory cell.
type ByteError struct {
	Value int
}

func (e *ByteError) Error() string {
	return fmt.Sprintf("byte out of range: 0x%x (valid range is 0x00-0x%02x)", e.Value, MaxByteValue)
}

// ChunkSizeError indicates a transfer size outside [0, MaxChunkSize].
type ChunkSizeError struct {
	Size int
}

func (e *ChunkSizeError) Error() string {
	return fmt.Sprintf("chunk size out of range: %d (valid range is 0-%d)", e.Size, MaxChunkSize)
}

// MalformedResponseError indicates a read reply that could not be decoded.
type MalformedResponseError struct {
	// Line is the raw reply without its terminator
	Line string

	// Reason describes what was wrong with it
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response %q: %s", e.Line, e.Reason)
}

// UnexpectedWriteResponseError indicates a write reply other than WriteAck.
type UnexpectedWriteResponseError struct {
	Response string
}

func (e *UnexpectedWriteResponseError) Error() string {
	return fmt.Sprintf("unexpected write response: got %q, expected %q", e.Response, WriteAck)
}

// IsAddressError returns true if err is or wraps an AddressError.
func IsAddressError(err error) bool {
	var target *AddressError
	return errors.As(err, &target)
}

// IsMalformedResponse returns true if err is or wraps a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}

// IsUnexpectedWriteResponse returns true if err is or wraps an UnexpectedWriteResponseError.
func IsUnexpectedWriteResponse(err error) bool {
	var target *UnexpectedWriteResponseError
	return errors.As(err, &target)
}

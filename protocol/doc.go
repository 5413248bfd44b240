// Package protocol implements the text command protocol spoken by the
// EEPROM programmer firmware.
//
// This package provides validators for addresses, data values and transfer
// sizes, builders for command lines and parsers for reply lines. It performs
// no I/O.
//
// # Protocol Overview
//
// Commands and replies are ASCII. Numbers are hexadecimal with a 0x prefix
// and fields are separated by ", ":
//
//	Read:   R, 0x<addr>, 0x<size>
//	Reply:  0x<b0>, 0x<b1>, ..., 0x<b(size-1)>\r\n
//
//	Write:  W, 0x<addr>, 0x<size>, 0x<b0>, ..., 0x<b(size-1)>
//	Reply:  OE\r\n
//
// A single request moves at most MaxChunkSize bytes and must stay inside the
// AddressSpace of the device.
//
// # Command Builders
//
//	cmd, err := protocol.BuildReadCmd(0x0100, 16)
//	cmd, err := protocol.BuildWriteCmd(0x0100, []byte{0xde, 0xad})
//
// # Response Parsers
//
//	data, err := protocol.ParseReadResponse(line, 16)
//	err := protocol.ParseWriteResponse(line)
//
// # Error Handling
//
// Every failure is a typed error:
//   - AddressError: address or range outside the device
//   - ByteError: value does not fit in a byte
//   - ChunkSizeError: transfer size outside [0, MaxChunkSize]
//   - MalformedResponseError: read reply could not be decoded
//   - UnexpectedWriteResponseError: write reply was not "OE"
package protocol

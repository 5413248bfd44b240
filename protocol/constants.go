package protocol

// Memory geometry of the 28C256 as exposed by the programmer firmware.
const (
	// AddressSpace is the number of addressable bytes (32 KiB)
	AddressSpace = 0x8000

	// MaxAddress is the highest valid address (inclusive)
	MaxAddress = AddressSpace - 1

	// MaxByteValue is the largest value a single memory cell can hold
	MaxByteValue = 0xFF
)

// Transfer limits imposed by the wire protocol framing.
const (
	// MaxChunkSize is the largest number of bytes moved by one request.
	// The firmware parses a whole command from a single serial burst, so this
	// is a protocol ceiling, not a property of the device.
	MaxChunkSize = 256

	// DumpChunkSize is the read size used when dumping the whole device.
	// It matches one row of the rendered hex dump.
	DumpChunkSize = 16
)

// Command opcodes.
const (
	// CmdRead requests a block of bytes: "R, <addr>, <size>"
	CmdRead = "R"

	// CmdWrite programs a block of bytes: "W, <addr>, <size>, <b0>, ..."
	CmdWrite = "W"
)

// Wire text conventions.
const (
	// FieldSeparator separates the fields of commands and read replies
	FieldSeparator = ", "

	// HexPrefix precedes every number on the wire
	HexPrefix = "0x"

	// WriteAck is the reply the firmware sends once a write block is stored
	WriteAck = "OE"

	// LineTerminator ends every reply line
	LineTerminator = '\n'
)

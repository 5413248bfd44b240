// Package romimage loads and saves EEPROM images and renders memory dumps.
//
// # Image Formats
//
// Two formats are accepted. Load picks one from the file extension and
// LoadFormat or ParseReader take it explicitly; the content is never used to
// guess, so a raw image may start with any byte.
//
//   - Raw binary (FormatRaw, the default): byte i lands at address i.
//   - Intel HEX (FormatIntelHex, .hex or .ihx): data records (type 00) are
//     placed at their address, gaps are filled with 0xFF (the erased value),
//     and parsing stops at the end-of-file record (type 01). Extended address
//     records are rejected since they cannot address anything inside 32 KiB.
//
// Images larger than the 32 KiB address space are rejected.
//
// # Hex Dumps
//
// WriteHexDump prints 16 bytes per row:
//
//	0x0 | 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff 0xff
//	0x10 | 0x0 0x1 0x2 ...
package romimage

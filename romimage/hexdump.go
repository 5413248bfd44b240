package romimage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/moffa90/go-eeprom/protocol"
)

// WriteHexDump writes data as rows of protocol.DumpChunkSize bytes, the
// first row labelled base. Values are unpadded lowercase hex, matching what
// the firmware sends.
func WriteHexDump(w io.Writer, base int, data []byte) error {
	bw := bufio.NewWriter(w)

	for off := 0; off < len(data); off += protocol.DumpChunkSize {
		end := off + protocol.DumpChunkSize
		if end > len(data) {
			end = len(data)
		}

		if _, err := fmt.Fprintf(bw, "0x%x |", base+off); err != nil {
			return err
		}
		for _, b := range data[off:end] {
			_ = bw.WriteByte(' ')
			_, _ = bw.WriteString(protocol.HexPrefix)
			_, _ = bw.WriteString(strconv.FormatUint(uint64(b), 16))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}

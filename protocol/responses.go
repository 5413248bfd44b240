package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseReadResponse decodes the reply to a read request of size bytes.
//
// Reply format (one line, CRLF or LF terminated):
//
//	0x1, 0x2, 0xff
//
// Tokens are split on commas and trimmed; the 0x prefix is optional. Every
// token must be a hexadecimal value in [0x00, 0xff] and the token count must
// equal size. Order is preserved.
func ParseReadResponse(line []byte, size int) ([]byte, error) {
	text := trimTerminator(line)

	if size == 0 {
		if text != "" {
			return nil, &MalformedResponseError{Line: text, Reason: "expected an empty reply"}
		}
		return []byte{}, nil
	}

	if text == "" {
		return nil, &MalformedResponseError{Line: text, Reason: "empty reply"}
	}

	tokens := strings.Split(text, ",")
	if len(tokens) != size {
		return nil, &MalformedResponseError{
			Line:   text,
			Reason: fmt.Sprintf("got %d values, expected %d", len(tokens), size),
		}
	}

	data := make([]byte, size)
	for i, tok := range tokens {
		v, err := parseByteToken(tok)
		if err != nil {
			return nil, &MalformedResponseError{
				Line:   text,
				Reason: fmt.Sprintf("value %d: %v", i, err),
			}
		}
		data[i] = v
	}

	return data, nil
}

// ParseWriteResponse checks the reply to a write request.
// Anything other than the exact WriteAck token is an error.
func ParseWriteResponse(line []byte) error {
	text := trimTerminator(line)
	if text != WriteAck {
		return &UnexpectedWriteResponseError{Response: text}
	}
	return nil
}

// parseByteToken parses one value of a read reply.
func parseByteToken(tok string) (byte, error) {
	tok = strings.TrimSpace(tok)
	digits := strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
	if digits == "" {
		return 0, fmt.Errorf("empty token %q", tok)
	}
	v, err := strconv.ParseUint(digits, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", tok)
	}
	return byte(v), nil
}

// trimTerminator drops the trailing CR/LF of a reply line.
func trimTerminator(line []byte) string {
	return strings.TrimRight(string(line), "\r\n")
}

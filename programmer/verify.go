package programmer

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// verifyChunks reads back every chunk exactly as it was written and
// compares byte for byte. It stops at the first chunk that differs.
func (p *Programmer) verifyChunks(ctx context.Context, op string, chunks []Chunk, startTime time.Time) error {
	total := 0
	for _, c := range chunks {
		total += len(c.Data)
	}

	verified := 0
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		got, err := p.ReadChunk(ctx, c.Address, len(c.Data))
		if err != nil {
			return fmt.Errorf("read back chunk %d at 0x%04x: %w", i, c.Address, err)
		}

		if !bytes.Equal(got, c.Data) {
			p.observeVerificationFailure(op)

			expected := make([]byte, len(c.Data))
			copy(expected, c.Data)
			mismatch := &VerificationMismatchError{
				Address:  c.Address,
				Expected: expected,
				Actual:   got,
			}
			p.logError("verification failed", "op", op, "chunk", i, "error", mismatch)
			return mismatch
		}

		verified += len(c.Data)
		p.reportProgress(Progress{
			Operation:    op,
			Phase:        PhaseVerifying,
			CurrentChunk: i + 1,
			TotalChunks:  len(chunks),
			Address:      c.Address,
			Bytes:        verified,
			TotalBytes:   total,
			Percentage:   50 + float64(i+1)/float64(len(chunks))*50,
			ElapsedTime:  time.Since(startTime),
		})
	}

	return nil
}

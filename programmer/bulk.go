package programmer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-eeprom/protocol"
)

// Chunk is a contiguous address range and the bytes that belong there.
type Chunk struct {
	Address int
	Data    []byte
}

// SplitChunks cuts buf into consecutive chunks of at most size bytes, the
// first one starting at base. The last chunk holds the remainder and is
// omitted when buf divides evenly. The chunks share one copy of buf, never
// buf itself.
func SplitChunks(base int, buf []byte, size int) []Chunk {
	if size <= 0 || len(buf) == 0 {
		return nil
	}

	data := make([]byte, len(buf))
	copy(data, buf)

	chunks := make([]Chunk, 0, (len(data)+size-1)/size)
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, Chunk{Address: base + off, Data: data[off:end:end]})
	}
	return chunks
}

// Fill writes value to every address of the device in maximum-size chunks,
// in ascending order, then reads every chunk back and compares.
//
// Example:
//
//	if err := prog.Fill(ctx, 0xFF); err != nil {
//	    var vm *programmer.VerificationMismatchError
//	    if errors.As(err, &vm) {
//	        log.Printf("bad chunk at 0x%04x", vm.Address)
//	    }
//	}
func (p *Programmer) Fill(ctx context.Context, value byte) error {
	pattern := bytes.Repeat([]byte{value}, protocol.MaxChunkSize)

	chunks := make([]Chunk, protocol.AddressSpace/protocol.MaxChunkSize)
	for i := range chunks {
		chunks[i] = Chunk{Address: i * protocol.MaxChunkSize, Data: pattern}
	}

	p.logDebug("fill", "value", fmt.Sprintf("0x%02x", value), "chunks", len(chunks))

	if err := p.writeAndVerify(ctx, OpFill, chunks); err != nil {
		return fmt.Errorf("fill 0x%02x: %w", value, err)
	}
	return nil
}

// ProgramBuffer writes buf to the device starting at address 0, in
// maximum-size chunks followed by a shorter remainder chunk, then reads every
// chunk back and compares. buf must fit in the address space; an empty buf
// is a no-op.
//
// Example:
//
//	img, err := romimage.Load("rom.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = prog.ProgramBuffer(ctx, img)
func (p *Programmer) ProgramBuffer(ctx context.Context, buf []byte) error {
	if len(buf) > protocol.AddressSpace {
		return &protocol.AddressError{Address: 0, Size: len(buf)}
	}

	chunks := SplitChunks(0, buf, protocol.MaxChunkSize)
	if len(chunks) == 0 {
		return nil
	}

	p.logDebug("program", "bytes", len(buf), "chunks", len(chunks))

	if err := p.writeAndVerify(ctx, OpProgram, chunks); err != nil {
		return fmt.Errorf("program %d bytes: %w", len(buf), err)
	}
	return nil
}

// Dump reads the whole device in DumpChunkSize chunks and returns a
// snapshot indexed by address. Nothing is verified.
func (p *Programmer) Dump(ctx context.Context) ([]byte, error) {
	data, err := p.readRange(ctx, OpDump, 0, protocol.AddressSpace, protocol.DumpChunkSize)
	if err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}
	return data, nil
}

// ReadRange reads size bytes starting at addr, split into maximum-size
// chunks. The range must fit in the address space.
func (p *Programmer) ReadRange(ctx context.Context, addr, size int) ([]byte, error) {
	data, err := p.readRange(ctx, OpRead, addr, size, protocol.MaxChunkSize)
	if err != nil {
		return nil, fmt.Errorf("read range: %w", err)
	}
	return data, nil
}

// writeAndVerify writes every chunk, waits for the chip to settle, then
// verifies every chunk. The first failure aborts the whole operation.
func (p *Programmer) writeAndVerify(ctx context.Context, op string, chunks []Chunk) error {
	startTime := time.Now()
	total := 0
	for _, c := range chunks {
		total += len(c.Data)
	}

	// Writing covers 0-50%, verification 50-100%.
	p.reportProgress(Progress{
		Operation:   op,
		Phase:       PhaseWriting,
		TotalChunks: len(chunks),
		TotalBytes:  total,
	})

	written := 0
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		if err := p.WriteChunk(ctx, c.Address, len(c.Data), c.Data); err != nil {
			p.logError("write failed", "op", op, "address", fmt.Sprintf("0x%04x", c.Address), "error", err)
			return fmt.Errorf("write chunk %d at 0x%04x: %w", i, c.Address, err)
		}

		written += len(c.Data)
		p.reportProgress(Progress{
			Operation:    op,
			Phase:        PhaseWriting,
			CurrentChunk: i + 1,
			TotalChunks:  len(chunks),
			Address:      c.Address,
			Bytes:        written,
			TotalBytes:   total,
			Percentage:   float64(i+1) / float64(len(chunks)) * 50,
			ElapsedTime:  time.Since(startTime),
		})
	}

	p.reportProgress(Progress{
		Operation:   op,
		Phase:       PhaseSettling,
		TotalChunks: len(chunks),
		Bytes:       written,
		TotalBytes:  total,
		Percentage:  50,
		ElapsedTime: time.Since(startTime),
	})
	if err := p.settle(ctx); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	if err := p.verifyChunks(ctx, op, chunks, startTime); err != nil {
		return err
	}

	p.reportProgress(Progress{
		Operation:    op,
		Phase:        PhaseComplete,
		CurrentChunk: len(chunks),
		TotalChunks:  len(chunks),
		Bytes:        total,
		TotalBytes:   total,
		Percentage:   100,
		ElapsedTime:  time.Since(startTime),
	})

	p.logInfo(op+" complete",
		"chunks", len(chunks),
		"bytes", total,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// readRange reads [addr, addr+size) in chunks of chunkSize bytes.
func (p *Programmer) readRange(ctx context.Context, op string, addr, size, chunkSize int) ([]byte, error) {
	if err := protocol.ValidateAddress(addr); err != nil {
		return nil, err
	}
	if size < 0 || size > protocol.AddressSpace-addr {
		return nil, &protocol.AddressError{Address: addr, Size: size}
	}

	startTime := time.Now()
	totalChunks := (size + chunkSize - 1) / chunkSize
	out := make([]byte, 0, size)

	p.reportProgress(Progress{
		Operation:   op,
		Phase:       PhaseReading,
		TotalChunks: totalChunks,
		TotalBytes:  size,
	})

	for i := 0; i < totalChunks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled: %w", err)
		}

		start := addr + i*chunkSize
		n := chunkSize
		if rest := addr + size - start; rest < n {
			n = rest
		}

		data, err := p.ReadChunk(ctx, start, n)
		if err != nil {
			return nil, fmt.Errorf("read chunk %d at 0x%04x: %w", i, start, err)
		}
		out = append(out, data...)

		p.reportProgress(Progress{
			Operation:    op,
			Phase:        PhaseReading,
			CurrentChunk: i + 1,
			TotalChunks:  totalChunks,
			Address:      start,
			Bytes:        len(out),
			TotalBytes:   size,
			Percentage:   float64(i+1) / float64(totalChunks) * 100,
			ElapsedTime:  time.Since(startTime),
		})
	}

	p.reportProgress(Progress{
		Operation:    op,
		Phase:        PhaseComplete,
		CurrentChunk: totalChunks,
		TotalChunks:  totalChunks,
		Bytes:        len(out),
		TotalBytes:   size,
		Percentage:   100,
		ElapsedTime:  time.Since(startTime),
	})

	return out, nil
}

// settle waits SettleDelay so the chip finishes its last internal write cycle.
func (p *Programmer) settle(ctx context.Context) error {
	if p.config.SettleDelay <= 0 {
		return nil
	}

	p.logDebug("settling", "delay", p.config.SettleDelay.String())

	timer := time.NewTimer(p.config.SettleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

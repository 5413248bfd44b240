// Package programmer provides a high-level API for reading and programming
// 28C256-class EEPROMs through the programmer firmware.
//
// # Overview
//
// This package turns logical operations into sequences of protocol requests:
//   - Single transfers: ReadChunk, WriteChunk, ReadAddress, WriteAddress
//   - Filling the whole device with one value (Fill)
//   - Writing an image from address 0 (ProgramBuffer)
//   - Dumping the whole device (Dump) or part of it (ReadRange)
//
// Fill and ProgramBuffer always verify: once every chunk is written they wait
// for the chip to settle, read every chunk back and fail with a
// *VerificationMismatchError on the first difference.
//
// # Basic Usage
//
//	prog, err := programmer.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer prog.Close()
//
//	snapshot, err := prog.Dump(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Any io.ReadWriter speaking the protocol can stand in for the serial port,
// such as the in-memory simulator:
//
//	prog := programmer.New(simulator.New(), programmer.WithSettleDelay(0))
//
// # Progress Tracking
//
//	prog := programmer.New(device,
//	    programmer.WithProgressCallback(func(p programmer.Progress) {
//	        fmt.Printf("[%s] %.1f%% - chunk %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentChunk, p.TotalChunks)
//	    }),
//	)
//
// # Cancellation
//
// The context is checked between chunks. A request already on the wire
// always runs to its reply or to the read timeout, since the protocol has no
// way to abort it.
//
// # Error Handling
//
// Failures are typed and returned, never retried:
//   - protocol.AddressError, protocol.ByteError, protocol.ChunkSizeError:
//     rejected before anything is sent
//   - SizeMismatchError: data length differs from the declared chunk size
//   - transport.TimeoutError: no reply in time (errors.Is transport.ErrReceiveTimeout)
//   - protocol.MalformedResponseError: read reply could not be decoded
//   - protocol.UnexpectedWriteResponseError: write reply was not "OE"
//   - VerificationMismatchError: readback after a bulk write differed
package programmer

package programmer

import "time"

// Operation phases reported through Progress.
const (
	PhaseWriting   = "writing"
	PhaseSettling  = "settling"
	PhaseVerifying = "verifying"
	PhaseReading   = "reading"
	PhaseComplete  = "complete"
)

// Operation names used in progress reports, logs and metrics.
const (
	OpRead    = "read"
	OpWrite   = "write"
	OpFill    = "fill"
	OpProgram = "program"
	OpDump    = "dump"
)

// Progress contains information about a running bulk operation.
// Passed to ProgressCallback between chunks.
type Progress struct {
	// Operation is the bulk operation: "fill", "program", "dump" or "read"
	Operation string

	// Phase describes the current stage:
	//   "writing"   - writing chunks
	//   "settling"  - waiting for the chip to finish its last write cycle
	//   "verifying" - reading chunks back and comparing
	//   "reading"   - reading chunks (dump)
	//   "complete"  - operation finished successfully
	Phase string

	// CurrentChunk is the number of chunks finished in this phase
	CurrentChunk int

	// TotalChunks is the number of chunks in this phase
	TotalChunks int

	// Address is the start address of the last finished chunk
	Address int

	// Bytes is the number of bytes moved in this phase so far
	Bytes int

	// TotalBytes is the number of bytes this phase will move
	TotalBytes int

	// Percentage is the completion percentage of the whole operation (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called between chunks to report progress.
// Implementations should return quickly; the serial link idles while it runs.
//
// Example:
//
//	prog := programmer.New(device,
//	    programmer.WithProgressCallback(func(p programmer.Progress) {
//	        fmt.Printf("[%s] %.1f%% - chunk %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentChunk, p.TotalChunks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the programmer.
// This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Metrics receives per-chunk measurements. Optional.
type Metrics interface {
	// ObserveChunk records one request/response exchange. err is nil on success.
	ObserveChunk(op string, size int, elapsed time.Duration, err error)

	// ObserveVerificationFailure records a readback mismatch in a bulk operation.
	ObserveVerificationFailure(op string)
}

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/ssargent/rollcall/pkg/roster"
	"go.uber.org/zap"
)

// Backend persists a whole roster. Implementations are used from a single
// goroutine.
type Backend interface {
	// Load returns the persisted roster, or an empty one when nothing has
	// been saved yet.
	Load() ([]roster.Student, error)
	// Save replaces the persisted roster with students.
	Save(students []roster.Student) error
	// Recover discards damaged records, keeping everything before them.
	Recover() (*RecoveryResult, error)
	// Path identifies where the roster lives.
	Path() string
	Close() error
}

// RecoveryResult describes what a recovery pass kept and discarded
type RecoveryResult struct {
	RecordsKept    int           // Records that survived
	RecordsDropped int           // Damaged records removed (per-record backends)
	LinesDropped   int           // Lines removed from a flat file
	BackupPath     string        // Copy of the damaged data, if one was made
	SizeBefore     int64         // Bytes before recovery
	SizeAfter      int64         // Bytes after recovery
	RecoveryTime   time.Duration // Time spent recovering
}

// FileBackendConfig holds configuration for the flat-file backend
type FileBackendConfig struct {
	Path      string            // Path to the roster file
	Validator *roster.Validator // Validator applied to every loaded record
	Logger    *zap.Logger       // Defaults to a no-op logger
}

// AtomicWriterConfig holds configuration for an atomic file rewrite
type AtomicWriterConfig struct {
	FilePath   string // File to replace on Commit
	BufferSize int    // Write buffer size
}

// Errors
var (
	ErrIO            = errors.New("storage i/o failure")
	ErrBackendClosed = errors.New("backend is closed")
)

// IOError reports a failed filesystem or database operation. It matches
// ErrIO as well as the underlying cause.
type IOError struct {
	Op   string // load, save, recover, ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

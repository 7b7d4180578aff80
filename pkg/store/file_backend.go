package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/rollcall/pkg/codec"
	"github.com/ssargent/rollcall/pkg/roster"
	"go.uber.org/zap"
)

// FileBackend keeps the roster in a single six-line-per-record text file
type FileBackend struct {
	config FileBackendConfig
	codec  *codec.TextCodec
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewFileBackend creates a backend for config.Path. The file itself is not
// touched until the first Load or Save.
func NewFileBackend(config FileBackendConfig) (*FileBackend, error) {
	if config.Path == "" {
		return nil, errors.New("data file path is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileBackend{
		config: config,
		codec:  codec.NewTextCodec(config.Validator),
		logger: logger,
		isOpen: true,
	}, nil
}

// Load reads the roster file. A missing file is created empty. A damaged
// file yields the records before the damage together with an error matching
// codec.ErrCorruptData.
func (b *FileBackend) Load() ([]roster.Student, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !b.isOpen {
		return nil, &IOError{Op: "load", Path: b.config.Path, Err: ErrBackendClosed}
	}

	file, err := os.Open(b.config.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, &IOError{Op: "load", Path: b.config.Path, Err: err}
		}
		if err := b.createEmpty(); err != nil {
			return nil, &IOError{Op: "create", Path: b.config.Path, Err: err}
		}
		b.logger.Info("created empty roster file", zap.String("path", b.config.Path))
		return []roster.Student{}, nil
	}
	defer file.Close()

	students, err := b.codec.Decode(file)
	if err != nil {
		if errors.Is(err, codec.ErrCorruptData) {
			return students, fmt.Errorf("failed to load %s: %w", b.config.Path, err)
		}
		return nil, &IOError{Op: "load", Path: b.config.Path, Err: err}
	}

	b.logger.Debug("loaded roster",
		zap.String("path", b.config.Path),
		zap.Int("records", len(students)))
	return students, nil
}

// Save rewrites the roster file atomically
func (b *FileBackend) Save(students []roster.Student) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !b.isOpen {
		return &IOError{Op: "save", Path: b.config.Path, Err: ErrBackendClosed}
	}
	return b.saveInternal(students)
}

// saveInternal rewrites the file without acquiring the mutex
func (b *FileBackend) saveInternal(students []roster.Student) error {
	w, err := NewAtomicWriter(AtomicWriterConfig{FilePath: b.config.Path})
	if err != nil {
		return &IOError{Op: "save", Path: b.config.Path, Err: err}
	}

	if err := b.codec.Encode(w, students); err != nil {
		_ = w.Abort()
		if roster.IsValidation(err) {
			return err
		}
		return &IOError{Op: "save", Path: b.config.Path, Err: err}
	}
	if err := w.Commit(); err != nil {
		return &IOError{Op: "save", Path: b.config.Path, Err: err}
	}

	b.logger.Debug("saved roster",
		zap.String("path", b.config.Path),
		zap.Int("records", len(students)))
	return nil
}

// Recover copies a damaged file to <path>.corrupt-<ksuid> and rewrites the
// file with the records that precede the damage. An intact file is left
// alone.
func (b *FileBackend) Recover() (*RecoveryResult, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	startTime := time.Now()

	if !b.isOpen {
		return nil, &IOError{Op: "recover", Path: b.config.Path, Err: ErrBackendClosed}
	}

	data, err := os.ReadFile(b.config.Path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, nothing to recover
			return &RecoveryResult{RecoveryTime: time.Since(startTime)}, nil
		}
		return nil, &IOError{Op: "recover", Path: b.config.Path, Err: err}
	}

	sizeBefore := int64(len(data))
	students, decodeErr := b.codec.Decode(bytes.NewReader(data))
	if decodeErr == nil {
		return &RecoveryResult{
			RecordsKept:  len(students),
			SizeBefore:   sizeBefore,
			SizeAfter:    sizeBefore,
			RecoveryTime: time.Since(startTime),
		}, nil
	}

	var corrupt *codec.CorruptDataError
	if !errors.As(decodeErr, &corrupt) {
		return nil, &IOError{Op: "recover", Path: b.config.Path, Err: decodeErr}
	}

	backupPath := fmt.Sprintf("%s.corrupt-%s", b.config.Path, ksuid.New().String())
	if err := copyToFile(backupPath, data); err != nil {
		return nil, &IOError{Op: "back up", Path: backupPath, Err: err}
	}

	if err := b.saveInternal(students); err != nil {
		return nil, err
	}

	sizeAfter := sizeBefore
	if info, err := os.Stat(b.config.Path); err == nil {
		sizeAfter = info.Size()
	}

	result := &RecoveryResult{
		RecordsKept:  len(students),
		LinesDropped: countLines(data) - (corrupt.Line - 1),
		BackupPath:   backupPath,
		SizeBefore:   sizeBefore,
		SizeAfter:    sizeAfter,
		RecoveryTime: time.Since(startTime),
	}

	b.logger.Warn("recovered damaged roster file",
		zap.String("path", b.config.Path),
		zap.String("backup", backupPath),
		zap.Int("records_kept", result.RecordsKept),
		zap.Int("lines_dropped", result.LinesDropped),
		zap.String("reason", corrupt.Reason))

	return result, nil
}

// Path returns the roster file path
func (b *FileBackend) Path() string {
	return b.config.Path
}

// Close releases the backend. Later calls fail with ErrBackendClosed.
func (b *FileBackend) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.isOpen = false
	return nil
}

func (b *FileBackend) createEmpty() error {
	if err := os.MkdirAll(filepath.Dir(b.config.Path), 0750); err != nil {
		return err
	}
	file, err := os.OpenFile(b.config.Path, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	return file.Close()
}

func copyToFile(path string, data []byte) error {
	w, err := NewAtomicWriter(AtomicWriterConfig{FilePath: path})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Commit()
}

// countLines counts lines the way bufio.Scanner splits them.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
)

// AtomicWriter stages a full rewrite of a file in a sibling temp file and
// swaps it in on Commit. Until then the target is untouched.
type AtomicWriter struct {
	file     *os.File
	writer   *bufio.Writer
	config   AtomicWriterConfig
	tempPath string
	done     bool
}

// NewAtomicWriter creates the temp file next to config.FilePath
func NewAtomicWriter(config AtomicWriterConfig) (*AtomicWriter, error) {
	if config.BufferSize <= 0 {
		config.BufferSize = 64 * 1024
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	// Same directory as the target so the rename stays on one filesystem
	tempPath := fmt.Sprintf("%s.tmp-%s", config.FilePath, ksuid.New().String())
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return &AtomicWriter{
		file:     file,
		writer:   bufio.NewWriterSize(file, config.BufferSize),
		config:   config,
		tempPath: tempPath,
	}, nil
}

// Write buffers p into the temp file
func (w *AtomicWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, os.ErrClosed
	}
	return w.writer.Write(p)
}

// Commit flushes, fsyncs and closes the temp file, then renames it over the
// target. On failure the temp file is removed.
func (w *AtomicWriter) Commit() error {
	if w.done {
		return os.ErrClosed
	}
	w.done = true

	if err := w.writer.Flush(); err != nil {
		return w.discard(err)
	}
	if err := w.file.Sync(); err != nil {
		return w.discard(err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tempPath)
		return err
	}
	if err := os.Rename(w.tempPath, w.config.FilePath); err != nil {
		_ = os.Remove(w.tempPath)
		return err
	}
	return nil
}

// Abort drops the staged data. It is a no-op after Commit.
func (w *AtomicWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	return w.discard(nil)
}

func (w *AtomicWriter) discard(cause error) error {
	closeErr := w.file.Close()
	removeErr := os.Remove(w.tempPath)
	if cause != nil {
		return cause
	}
	return errors.Join(closeErr, removeErr)
}

// TempPath returns the staging file path
func (w *AtomicWriter) TempPath() string {
	return w.tempPath
}

// Path returns the target file path
func (w *AtomicWriter) Path() string {
	return w.config.FilePath
}

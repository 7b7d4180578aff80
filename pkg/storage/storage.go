// Package storage provides a per-record roster backend on top of pebble.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/rollcall/pkg/codec"
	"github.com/ssargent/rollcall/pkg/roster"
	"github.com/ssargent/rollcall/pkg/store"
	"go.uber.org/zap"
)

var (
	keyPrefix = []byte("student/")
	// keyLimit is the exclusive upper bound of the student keyspace
	keyLimit = []byte("student0")
)

// Config holds configuration for the pebble backend
type Config struct {
	Dir       string
	Validator *roster.Validator
	Logger    *zap.Logger
}

// PebbleBackend stores one key per student. Keys are ksuids drawn from a
// single sequence per save, so key order is roster order.
type PebbleBackend struct {
	db     *pebble.DB
	dir    string
	codec  *codec.TextCodec
	logger *zap.Logger
}

var _ store.Backend = (*PebbleBackend)(nil)

// NewPebbleBackend opens (or creates) the database in config.Dir
func NewPebbleBackend(config Config) (*PebbleBackend, error) {
	if config.Dir == "" {
		return nil, errors.New("pebble directory is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(config.Dir, 0750); err != nil {
		return nil, &store.IOError{Op: "create", Path: config.Dir, Err: err}
	}
	db, err := pebble.Open(config.Dir, &pebble.Options{
		Logger: logger.Named("pebble").Sugar(),
	})
	if err != nil {
		return nil, &store.IOError{Op: "open", Path: config.Dir, Err: err}
	}

	return &PebbleBackend{
		db:     db,
		dir:    config.Dir,
		codec:  codec.NewTextCodec(config.Validator),
		logger: logger,
	}, nil
}

// Load returns students in key order. A value that fails to decode stops the
// load with the students before it and an error matching codec.ErrCorruptData.
func (p *PebbleBackend) Load() ([]roster.Student, error) {
	iter, err := p.newIter()
	if err != nil {
		return nil, &store.IOError{Op: "load", Path: p.dir, Err: err}
	}
	defer iter.Close()

	students := []roster.Student{}
	for iter.First(); iter.Valid(); iter.Next() {
		s, err := p.codec.DecodeRecord(iter.Value())
		if err != nil {
			return students, fmt.Errorf("failed to load key %s: %w", iter.Key(), err)
		}
		students = append(students, s)
	}
	if err := iter.Error(); err != nil {
		return nil, &store.IOError{Op: "load", Path: p.dir, Err: err}
	}

	p.logger.Debug("loaded roster", zap.String("path", p.dir), zap.Int("records", len(students)))
	return students, nil
}

// Save replaces every student key in one synced batch
func (p *PebbleBackend) Save(students []roster.Student) error {
	values := make([][]byte, len(students))
	for i, s := range students {
		data, err := p.codec.EncodeRecord(s)
		if err != nil {
			return err
		}
		values[i] = data
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange(keyPrefix, keyLimit, nil); err != nil {
		return &store.IOError{Op: "save", Path: p.dir, Err: err}
	}

	seq := ksuid.Sequence{Seed: ksuid.New()}
	for _, value := range values {
		id, err := seq.Next()
		if err != nil {
			return &store.IOError{Op: "save", Path: p.dir, Err: err}
		}
		if err := batch.Set(studentKey(id), value, nil); err != nil {
			return &store.IOError{Op: "save", Path: p.dir, Err: err}
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return &store.IOError{Op: "save", Path: p.dir, Err: err}
	}

	p.logger.Debug("saved roster", zap.String("path", p.dir), zap.Int("records", len(students)))
	return nil
}

// Recover deletes every key whose value does not decode
func (p *PebbleBackend) Recover() (*store.RecoveryResult, error) {
	startTime := time.Now()

	iter, err := p.newIter()
	if err != nil {
		return nil, &store.IOError{Op: "recover", Path: p.dir, Err: err}
	}

	var damaged [][]byte
	kept := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if _, err := p.codec.DecodeRecord(iter.Value()); err != nil {
			damaged = append(damaged, bytes.Clone(iter.Key()))
			continue
		}
		kept++
	}
	iterErr := iter.Error()
	if err := iter.Close(); err != nil && iterErr == nil {
		iterErr = err
	}
	if iterErr != nil {
		return nil, &store.IOError{Op: "recover", Path: p.dir, Err: iterErr}
	}

	if len(damaged) > 0 {
		batch := p.db.NewBatch()
		defer batch.Close()
		for _, key := range damaged {
			if err := batch.Delete(key, nil); err != nil {
				return nil, &store.IOError{Op: "recover", Path: p.dir, Err: err}
			}
		}
		if err := batch.Commit(pebble.Sync); err != nil {
			return nil, &store.IOError{Op: "recover", Path: p.dir, Err: err}
		}

		p.logger.Warn("removed damaged roster records",
			zap.String("path", p.dir),
			zap.Int("records_kept", kept),
			zap.Int("records_dropped", len(damaged)))
	}

	return &store.RecoveryResult{
		RecordsKept:    kept,
		RecordsDropped: len(damaged),
		RecoveryTime:   time.Since(startTime),
	}, nil
}

// Path returns the database directory
func (p *PebbleBackend) Path() string {
	return p.dir
}

// Close closes the database
func (p *PebbleBackend) Close() error {
	return p.db.Close()
}

func (p *PebbleBackend) newIter() (*pebble.Iterator, error) {
	return p.db.NewIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: keyLimit,
	})
}

func studentKey(id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(keyPrefix)+27)
	key = append(key, keyPrefix...)
	return append(key, id.String()...)
}

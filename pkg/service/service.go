// Package service ties the in-memory roster to a storage backend. Every
// mutation is applied in memory, persisted, and rolled back if persisting
// fails.
package service

import (
	"errors"
	"fmt"

	"github.com/ssargent/rollcall/pkg/codec"
	"github.com/ssargent/rollcall/pkg/roster"
	"github.com/ssargent/rollcall/pkg/store"
	"go.uber.org/zap"
)

// ErrServiceClosed is returned by operations on a service that is not open
var ErrServiceClosed = errors.New("roster service is not open")

// Config holds configuration for the roster service
type Config struct {
	Validator *roster.Validator // Defaults to decimal IDs
	Recover   bool              // Repair a damaged store on Open instead of failing
	Logger    *zap.Logger       // Defaults to a no-op logger
}

// RosterService owns one roster and the backend it is persisted to. It is
// not safe for concurrent use.
type RosterService struct {
	roster  *roster.Roster
	backend store.Backend
	config  Config
	logger  *zap.Logger
	isOpen  bool
	closed  bool
}

// NewRosterService creates a service over backend. Call Open before use.
func NewRosterService(backend store.Backend, config Config) (*RosterService, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	if config.Validator == nil {
		config.Validator = roster.NewValidator(roster.DecimalIDs)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RosterService{
		roster:  roster.NewRoster(config.Validator),
		backend: backend,
		config:  config,
		logger:  logger,
	}, nil
}

// Open loads the persisted roster. A damaged store fails the open unless
// recovery is enabled, in which case it is repaired and reloaded. The
// recovery result is nil when no repair ran.
func (s *RosterService) Open() (*store.RecoveryResult, error) {
	if s.closed {
		return nil, ErrServiceClosed
	}
	if s.isOpen {
		return nil, nil
	}

	students, err := s.backend.Load()
	var recovery *store.RecoveryResult
	if err != nil && errors.Is(err, codec.ErrCorruptData) {
		if !s.config.Recover {
			s.logger.Error("roster store is damaged",
				zap.String("path", s.backend.Path()),
				zap.Int("readable_records", len(students)),
				zap.Error(err))
			return nil, fmt.Errorf("failed to open roster (rerun with --recover to keep the %d readable records): %w",
				len(students), err)
		}

		recovery, err = s.backend.Recover()
		if err != nil {
			return nil, fmt.Errorf("failed to recover roster: %w", err)
		}
		s.logger.Warn("recovered damaged roster",
			zap.String("path", s.backend.Path()),
			zap.String("backup", recovery.BackupPath),
			zap.Int("records_kept", recovery.RecordsKept))

		students, err = s.backend.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}

	s.roster.Restore(students)
	s.isOpen = true

	s.logger.Info("roster opened",
		zap.String("path", s.backend.Path()),
		zap.Int("records", s.roster.Len()))
	return recovery, nil
}

// Add validates and appends a student, then persists the roster.
func (s *RosterService) Add(student roster.Student) error {
	err := s.mutate("add", func() error {
		return s.roster.Add(student)
	})
	if err != nil {
		s.logger.Debug("add rejected", zap.String("id", student.ID), zap.Error(err))
		return err
	}
	s.logger.Info("student added", zap.String("id", student.ID), zap.Int("index", s.roster.Len()-1))
	return nil
}

// AddAll appends students with a single persist. Either all of them are
// added or none is.
func (s *RosterService) AddAll(students []roster.Student) error {
	err := s.mutate("add", func() error {
		for i, student := range students {
			if err := s.roster.Add(student); err != nil {
				return fmt.Errorf("student %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("students added", zap.Int("count", len(students)))
	return nil
}

// Remove deletes the student at index i and persists the roster.
func (s *RosterService) Remove(i int) error {
	var removed roster.Student
	err := s.mutate("remove", func() error {
		var err error
		if removed, err = s.roster.Get(i); err != nil {
			return err
		}
		return s.roster.Remove(i)
	})
	if err != nil {
		return err
	}
	s.logger.Info("student removed", zap.String("id", removed.ID), zap.Int("index", i))
	return nil
}

// RemoveBy deletes the first student whose field equals value and returns it.
func (s *RosterService) RemoveBy(f roster.Field, value string) (roster.Student, error) {
	i, student, err := s.Find(f, value)
	if err != nil {
		return roster.Student{}, err
	}
	if err := s.Remove(i); err != nil {
		return roster.Student{}, err
	}
	return student, nil
}

// Update sets one field of the student at index i and persists the roster.
func (s *RosterService) Update(i int, f roster.Field, value string) error {
	err := s.mutate("update", func() error {
		return s.roster.Update(i, f, value)
	})
	if err != nil {
		return err
	}
	s.logger.Info("student updated", zap.Int("index", i), zap.String("field", f.String()))
	return nil
}

// FieldValue assigns value to one field
type FieldValue struct {
	Field roster.Field
	Value string
}

// UpdateAll applies every change to the student at index i with a single
// persist. Either all of them are applied or none is.
func (s *RosterService) UpdateAll(i int, changes []FieldValue) error {
	err := s.mutate("update", func() error {
		for _, change := range changes {
			if err := s.roster.Update(i, change.Field, change.Value); err != nil {
				return fmt.Errorf("%s: %w", change.Field, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("student updated", zap.Int("index", i), zap.Int("fields", len(changes)))
	return nil
}

// Find returns the index and a copy of the first student whose field exactly
// matches value.
func (s *RosterService) Find(f roster.Field, value string) (int, roster.Student, error) {
	if !s.isOpen {
		return -1, roster.Student{}, ErrServiceClosed
	}
	i, err := s.roster.Find(f, value)
	if err != nil {
		return -1, roster.Student{}, err
	}
	student, err := s.roster.Get(i)
	return i, student, err
}

// Get returns the student at index i
func (s *RosterService) Get(i int) (roster.Student, error) {
	if !s.isOpen {
		return roster.Student{}, ErrServiceClosed
	}
	return s.roster.Get(i)
}

// List returns a copy of the roster
func (s *RosterService) List() []roster.Student {
	return s.roster.List()
}

// Len returns the number of students
func (s *RosterService) Len() int {
	return s.roster.Len()
}

// Validator returns the validator guarding the roster
func (s *RosterService) Validator() *roster.Validator {
	return s.roster.Validator()
}

// Path identifies where the roster is persisted
func (s *RosterService) Path() string {
	return s.backend.Path()
}

// Save persists the roster as it is
func (s *RosterService) Save() error {
	if !s.isOpen {
		return ErrServiceClosed
	}
	if err := s.backend.Save(s.roster.List()); err != nil {
		s.logger.Error("failed to save roster", zap.String("path", s.backend.Path()), zap.Error(err))
		return asIOError("save", s.backend.Path(), err)
	}
	s.logger.Info("roster saved", zap.String("path", s.backend.Path()), zap.Int("records", s.roster.Len()))
	return nil
}

// Close releases the backend. The roster is not saved.
func (s *RosterService) Close() error {
	if s.closed {
		return nil
	}
	s.isOpen = false
	s.closed = true

	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("failed to close backend: %w", err)
	}
	return nil
}

// mutate runs fn against the roster and persists the result. If fn fails the
// roster is restored and nothing is saved. If the save fails the roster is
// restored and an *store.IOError is returned.
func (s *RosterService) mutate(op string, fn func() error) error {
	if !s.isOpen {
		return ErrServiceClosed
	}

	snapshot := s.roster.Snapshot()
	if err := fn(); err != nil {
		s.roster.Restore(snapshot)
		return err
	}

	if err := s.backend.Save(s.roster.List()); err != nil {
		s.roster.Restore(snapshot)
		s.logger.Error("failed to persist roster, change rolled back",
			zap.String("op", op),
			zap.String("path", s.backend.Path()),
			zap.Error(err))
		return asIOError(op, s.backend.Path(), err)
	}
	return nil
}

func asIOError(op, path string, err error) error {
	var ioErr *store.IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &store.IOError{Op: op, Path: path, Err: err}
}

package service

import (
	"fmt"

	"github.com/ssargent/rollcall/pkg/roster"
	"github.com/ssargent/rollcall/pkg/storage"
	"github.com/ssargent/rollcall/pkg/store"
	"go.uber.org/zap"
)

// Backend kinds
const (
	BackendText   = "text"
	BackendPebble = "pebble"
)

// Options selects and configures the backend behind a roster service
type Options struct {
	Backend   string // text or pebble
	DataFile  string // used by the text backend
	PebbleDir string // used by the pebble backend
	IDCharset roster.IDCharset
	Recover   bool
	Logger    *zap.Logger
}

// Factory creates roster services
type Factory interface {
	// CreateRosterService builds an unopened service for the given options
	CreateRosterService(options Options) (*RosterService, error)
}

// DefaultFactory is the default implementation of Factory
type DefaultFactory struct{}

// NewFactory creates a new roster service factory
func NewFactory() Factory {
	return &DefaultFactory{}
}

// CreateRosterService creates the configured backend and wraps it in a service
func (f *DefaultFactory) CreateRosterService(options Options) (*RosterService, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validator := roster.NewValidator(options.IDCharset)

	backend, err := NewBackend(options.Backend, options.DataFile, options.PebbleDir, validator, logger)
	if err != nil {
		return nil, err
	}

	svc, err := NewRosterService(backend, Config{
		Validator: validator,
		Recover:   options.Recover,
		Logger:    logger,
	})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return svc, nil
}

// NewBackend creates the backend named by kind. An empty kind means text.
func NewBackend(kind, dataFile, pebbleDir string, validator *roster.Validator, logger *zap.Logger) (store.Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch kind {
	case "", BackendText:
		return store.NewFileBackend(store.FileBackendConfig{
			Path:      dataFile,
			Validator: validator,
			Logger:    logger.Named("store"),
		})
	case BackendPebble:
		return storage.NewPebbleBackend(storage.Config{
			Dir:       pebbleDir,
			Validator: validator,
			Logger:    logger.Named("storage"),
		})
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", kind, BackendText, BackendPebble)
	}
}

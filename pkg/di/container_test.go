package di

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ssargent/rollcall/pkg/config"
	"github.com/ssargent/rollcall/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFactory struct{}

func (stubFactory) CreateRosterService(service.Options) (*service.RosterService, error) {
	return nil, assert.AnError
}

func TestContainer_Defaults(t *testing.T) {
	c := NewContainer()
	assert.NotNil(t, c.GetServiceFactory())
	assert.NotNil(t, c.GetLoggerFactory())
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()

	c.SetServiceFactory(stubFactory{})
	_, err := c.GetServiceFactory().CreateRosterService(service.Options{})
	assert.ErrorIs(t, err, assert.AnError)

	nop := zap.NewNop()
	c.SetLoggerFactory(func(config.Logging) (*zap.Logger, error) { return nop, nil })
	logger, err := c.GetLoggerFactory()(config.Logging{})
	require.NoError(t, err)
	assert.Same(t, nop, logger)
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollcall.log")

	logger, err := NewLogger(config.Logging{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("student added", zap.String("id", "1234567890"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"student added"`)
	assert.Contains(t, string(data), `"id":"1234567890"`)
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollcall.log")

	logger, err := NewLogger(config.Logging{Level: "warn", File: path})
	require.NoError(t, err)

	logger.Info("ignored")
	logger.Warn("kept")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ignored")
	assert.Contains(t, string(data), "kept")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.Logging{Level: "loud"})
	assert.Error(t, err)
}

// Package di provides dependency injection container
package di

import (
	"fmt"

	"github.com/ssargent/rollcall/pkg/config"
	"github.com/ssargent/rollcall/pkg/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerFactory builds the application logger from configuration
type LoggerFactory func(cfg config.Logging) (*zap.Logger, error)

// Container holds all the dependencies for the application
type Container struct {
	serviceFactory service.Factory
	loggerFactory  LoggerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serviceFactory: service.NewFactory(),
		loggerFactory:  NewLogger,
	}
}

// GetServiceFactory returns the roster service factory
func (c *Container) GetServiceFactory() service.Factory {
	return c.serviceFactory
}

// SetServiceFactory allows overriding the roster service factory (for testing)
func (c *Container) SetServiceFactory(factory service.Factory) {
	c.serviceFactory = factory
}

// GetLoggerFactory returns the logger factory
func (c *Container) GetLoggerFactory() LoggerFactory {
	return c.loggerFactory
}

// SetLoggerFactory allows overriding the logger factory (for testing)
func (c *Container) SetLoggerFactory(factory LoggerFactory) {
	c.loggerFactory = factory
}

// NewLogger builds a JSON production logger writing to cfg.File at cfg.Level
func NewLogger(cfg config.Logging) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging level: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapConfig.OutputPaths = []string{cfg.File}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

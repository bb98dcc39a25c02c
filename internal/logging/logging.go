// Package logging builds the process-wide zap logger from configuration.
package logging

import (
	"fmt"

	"fedash/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger for cfg. Development mode uses the console encoder.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("fedash"), nil
}

package logging

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/mikey/lead-qualifier/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a configured level name onto a zap level, defaulting to info
func ParseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewAtomicLevel creates the adjustable log level from configuration
func NewAtomicLevel(cfg *config.Config) zap.AtomicLevel {
	return zap.NewAtomicLevelAt(ParseLevel(cfg.GetString("logging.level")))
}

// InitLogger initializes a logger based on configuration
func InitLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var logConfig zap.Config
	if cfg.GetString("logging.format") == "json" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logConfig.Level = level

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// InitConsoleLogger initializes a console-friendly logger
func InitConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	var logConfig zap.Config
	if jsonFormat {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// ApplyLevel re-reads logging.level and updates the atomic level
func ApplyLevel(cfg *config.Config, level zap.AtomicLevel, logger *zap.Logger) {
	next := ParseLevel(cfg.GetString("logging.level"))
	if next == level.Level() {
		return
	}
	level.SetLevel(next)
	logger.Info("Log level changed", zap.String("level", next.String()))
}

// WatchLevel applies logging.level whenever the config file changes
func WatchLevel(cfg *config.Config, level zap.AtomicLevel, logger *zap.Logger) {
	v := cfg.GetViper()
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Debug("Config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		ApplyLevel(cfg, level, logger)
	})
	v.WatchConfig()
}

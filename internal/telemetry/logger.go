// Package telemetry provides flowmod's structured logging, grounded in the
// zap usage throughout the retrieval pack's nearest-domain example
// (y3owk1n-govim's internal/eventtap, internal/hotkeys, internal/scroll).
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction. Field names mirror the
// y3owk1n-govim LoggingConfig TOML table this is grounded on.
type Config struct {
	Level              string
	LogFile            string
	DisableFileLogging bool
	MaxFileSizeMB      int
	MaxBackups         int
	MaxAgeDays         int
	Structured         bool
}

// DefaultConfig matches flowmod's factory defaults: info level, console
// output only, no file sink configured.
func DefaultConfig() Config {
	return Config{
		Level:              "info",
		DisableFileLogging: true,
		MaxFileSizeMB:      10,
		MaxBackups:         5,
		MaxAgeDays:         30,
	}
}

// New builds a *zap.Logger from cfg. Console output uses a human-readable
// encoder unless cfg.Structured is set, in which case both sinks emit
// JSON — matching the teacher pack's "StructuredLogging" toggle.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	if cfg.Structured {
		consoleEncoder = zapcore.NewJSONEncoder(encoderCfg)
	}
	cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), level))

	if !cfg.DisableFileLogging && cfg.LogFile != "" {
		fileCore, err := newFileCore(cfg, encoderCfg, level)
		if err != nil {
			// A logging subsystem failure must never be fatal to the
			// pipeline: fall back to console-only.
			fmt.Fprintf(os.Stderr, "flowmod: file logging disabled: %v\n", err)
		} else {
			cores = append(cores, fileCore)
		}
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// newFileCore builds a rotating-file core backed by lumberjack, grounded in
// the teacher pack's y3owk1n-govim internal/logger.Init file-sink setup.
func newFileCore(cfg Config, encoderCfg zapcore.EncoderConfig, level zapcore.Level) (zapcore.Core, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxFileSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	fileEncoderCfg := encoderCfg
	fileEncoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	var encoder zapcore.Encoder
	if cfg.Structured {
		encoder = zapcore.NewJSONEncoder(fileEncoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(fileEncoderCfg)
	}

	return zapcore.NewCore(encoder, zapcore.AddSync(sink), level), nil
}

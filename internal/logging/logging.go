// Package logging bootstraps the process-wide structured logger.
//
// The teacher (dmitrymodder-minewire) logs with the standard library's log
// package; this core instead follows MiyuruAmarasiri-Qsafe's
// internal/platform/logging pattern of building a zap.Logger from a small
// Config struct, since a multi-session TCP server needs per-connection
// fields (role, remote addr, username) that log.Printf can't carry.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls where and how verbosely the logger writes.
type Config struct {
	// ServiceName tags every entry (e.g. "login", "channel-3").
	ServiceName string
	// ConsoleLevel is the minimum level written to stderr.
	ConsoleLevel zapcore.Level
	// FilePath, if non-empty, receives Info+ entries, matching the
	// original Rust bootstrap's CombinedLogger (trace to terminal, info
	// to rusty_maple.log).
	FilePath string
}

// New builds a *zap.Logger with a console core and, optionally, a file
// core, combined with zapcore.NewTee the way the original's
// CombinedLogger combined a TermLogger and a WriteLogger.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), cfg.ConsoleLevel),
	}

	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file %q: %w", cfg.FilePath, err)
		}
		fileEncoder := zapcore.NewJSONEncoder(encoderCfg)
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(f), zapcore.InfoLevel))
	}

	core := zapcore.NewTee(cores...)
	logger := zap.New(core, zap.AddCaller(), zap.Fields(zap.String("svc", cfg.ServiceName)))
	return logger, nil
}

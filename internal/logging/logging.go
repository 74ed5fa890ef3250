// Package logging builds the diagnostic logger shared by the exporter.
//
// Every entry is appended to a history file. Entries are echoed to the
// console only in verbose mode, which keeps the terminal clean while the
// file keeps the full record of every export session.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is the history log written next to the working directory.
const DefaultFile = "export_history.log"

// Options controls where diagnostics go.
type Options struct {
	File    string
	Verbose bool
	// Console receives verbose output; defaults to stdout.
	Console io.Writer
}

// New returns a logger and a cleanup func that flushes and closes the
// history file.
func New(opts Options) (*zap.Logger, func(), error) {
	path := opts.File
	if path == "" {
		path = DefaultFile
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(), zapcore.AddSync(f), zapcore.DebugLevel),
	}

	if opts.Verbose {
		console := opts.Console
		if console == nil {
			console = os.Stdout
		}
		cores = append(cores, zapcore.NewCore(newEncoder(), zapcore.AddSync(console), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	cleanup := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, cleanup, nil
}

func newEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(cfg)
}

// Package logging builds the service's slog logger from configuration.
// Every record carries the service name so mixed output can be attributed.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New creates the service logger writing to the configured output stream.
func New(cfg *Config) *slog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Output == OutputStderr {
		w = os.Stderr
	}
	return NewWriter(cfg, w)
}

// NewWriter creates the service logger writing to w.
func NewWriter(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level.Slog(),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger
}

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) validate() error {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return nil
	}
	return fmt.Errorf("invalid log level %q: use debug, info, warn or error", l)
}

// Slog maps the level onto slog. Anything unrecognized logs at info.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func (f Format) validate() error {
	if f == FormatText || f == FormatJSON {
		return nil
	}
	return fmt.Errorf("invalid log format %q: use text or json", f)
}

// Output names the stream log records are written to.
type Output string

const (
	OutputStdout Output = "stdout"
	OutputStderr Output = "stderr"
)

func (o Output) validate() error {
	if o == OutputStdout || o == OutputStderr {
		return nil
	}
	return fmt.Errorf("invalid log output %q: use stdout or stderr", o)
}

// Package logging builds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much the service logs.
type Options struct {
	Level string
	Dev   bool
	// File, when set, receives a JSON copy of every line and is rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a logger writing JSON to stdout (console format in
// development) and optionally to a rotating file. The returned closer
// releases the file and is a no-op without one.
func New(opts Options) (zerolog.Logger, io.Closer) {
	var stdout io.Writer = os.Stdout
	if opts.Dev {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	writers := []io.Writer{stdout}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
			Compress:   true,
		}
		writers = append(writers, lj)
		closer = lj
	}

	var w io.Writer = stdout
	if len(writers) > 1 {
		w = io.MultiWriter(writers...)
	}

	logger := zerolog.New(w).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("service", "historia-server").
		Logger()
	return logger, closer
}

// ParseLevel maps LOG_LEVEL onto a zerolog level; unknown values mean info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

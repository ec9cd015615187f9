// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFBar - FFmpeg 命令行进度条

package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger provides a simple logging interface
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// New creates a file-backed logger. stderr belongs to the progress
// display, so an empty path returns a silent logger.
func New(path, level string) Logger {
	if path == "" {
		return NewNop()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return NewNop()
	}

	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	return &zeroLogger{
		log: zerolog.New(f).Level(lvl).With().Timestamp().Logger(),
	}
}

type zeroLogger struct {
	log zerolog.Logger
}

func (l *zeroLogger) Info(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *zeroLogger) Error(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l *zeroLogger) Debug(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

type nopLogger struct{}

// NewNop returns a logger that discards everything
func NewNop() Logger {
	return &nopLogger{}
}

func (l *nopLogger) Info(format string, args ...interface{})  {}
func (l *nopLogger) Error(format string, args ...interface{}) {}
func (l *nopLogger) Debug(format string, args ...interface{}) {}

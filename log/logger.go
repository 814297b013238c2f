// Copyright 2023 The go-ethereum Authors
// Copyright 2024 The go-manledger Authors
// This file is part of the go-manledger library.
//
// The go-manledger library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-manledger library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-manledger library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a key/value logger on top of log/slog with the trace and
// crit levels added, a root logger and handlers for terminals, logfmt and
// JSON output.
package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

const errorKey = "LOG_ERROR"

const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

// levelNames is indexed by verbosity: 0 is crit, 5 is trace.
var levelNames = [...]struct {
	level   slog.Level
	name    string
	aligned string
}{
	{LevelCrit, "crit", "CRIT "},
	{LevelError, "error", "ERROR"},
	{LevelWarn, "warn", "WARN "},
	{LevelInfo, "info", "INFO "},
	{LevelDebug, "debug", "DEBUG"},
	{LevelTrace, "trace", "TRACE"},
}

// FromLegacyLevel converts a verbosity number (0 silent ... 5 trace) to a
// slog level. Values above 5 mean trace.
func FromLegacyLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return LevelCrit
	case verbosity >= len(levelNames):
		return LevelTrace
	}
	return levelNames[verbosity].level
}

// ParseLevel parses a level name as written by LevelString or a verbosity
// number.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range levelNames {
		if l.name == s {
			return l.level, nil
		}
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return FromLegacyLevel(int(s[0] - '0')), nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// LevelAlignedString returns the 5-character name of a level.
func LevelAlignedString(l slog.Level) string {
	for _, n := range levelNames {
		if n.level == l {
			return n.aligned
		}
	}
	return "unknown level"
}

// LevelString returns the lowercase name of a level.
func LevelString(l slog.Level) string {
	for _, n := range levelNames {
		if n.level == l {
			return n.name
		}
	}
	return "unknown"
}

// A Logger writes key/value pairs to a Handler.
type Logger interface {
	// With returns a Logger carrying the given attributes on every record.
	With(ctx ...interface{}) Logger

	// New is an alias for With.
	New(ctx ...interface{}) Logger

	// Log logs a message at the given level with context key/value pairs.
	Log(level slog.Level, msg string, ctx ...interface{})

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})

	// Crit logs a message at the crit level and exits the process.
	Crit(msg string, ctx ...interface{})

	// Write logs a message at the given level. Package level helpers call
	// it directly so that every path has the same call depth.
	Write(level slog.Level, msg string, attrs ...any)

	// Enabled reports whether records at level would be emitted.
	Enabled(ctx context.Context, level slog.Level) bool

	// Handler returns the underlying handler.
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a logger writing to h.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) Handler() slog.Handler {
	return l.inner.Handler()
}

// Write emits a record. runtime.Callers skips Write and the helper that
// called it, recording the PC of client code.
func (l *logger) Write(level slog.Level, msg string, attrs ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])

	if len(attrs)%2 != 0 {
		attrs = append(attrs, nil, errorKey, "Normalized odd number of arguments by adding nil")
	}
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(attrs...)
	l.inner.Handler().Handle(context.Background(), r)
}

func (l *logger) Log(level slog.Level, msg string, attrs ...any) {
	l.Write(level, msg, attrs...)
}

func (l *logger) With(ctx ...interface{}) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) New(ctx ...interface{}) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner.Enabled(ctx, level)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.Write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.Write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.Write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.Write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.Write(LevelError, msg, ctx...) }

func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

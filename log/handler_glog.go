// Copyright 2017 The go-ethereum Authors
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

package log

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// errVmoduleSyntax is returned when a user vmodule pattern is invalid.
var errVmoduleSyntax = errors.New("expect comma-separated list of filename=N")

// GlogHandler filters records the way glog does: a global verbosity that
// callsites matching a vmodule pattern may raise.
//
// The verbosity of "usbwallet=5,device/*=4" lets the USB driver trace its
// exchanges and the device packages debug while the rest stays at the
// global level.
type GlogHandler struct {
	origin slog.Handler

	level    atomic.Int32 // Global level
	override atomic.Bool  // Whether any pattern is set

	lock      sync.RWMutex
	patterns  []pattern
	siteCache map[uintptr]slog.Level // Level per callsite, computed once
}

// pattern raises the level of the source files it matches.
type pattern struct {
	re    *regexp.Regexp
	level slog.Level
}

// NewGlogHandler wraps h. The global level starts at info.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	g := &GlogHandler{origin: h, siteCache: make(map[uintptr]slog.Level)}
	g.level.Store(int32(LevelInfo))
	return g
}

// Verbosity sets the global level.
func (h *GlogHandler) Verbosity(level slog.Level) {
	h.level.Store(int32(level))
}

// Vmodule sets the per-file verbosity rules. The ruleset is a comma
// separated list of pattern=N, N being a verbosity from 0 to 5:
//
//	"app.go=5"      the files named app.go in any package
//	"usbwallet=4"   the files of packages whose import path ends in usbwallet
//	"device/*=4"    the files of device and every package below it
func (h *GlogHandler) Vmodule(ruleset string) error {
	var filter []pattern
	for _, rule := range strings.Split(ruleset, ",") {
		if strings.TrimSpace(rule) == "" {
			continue
		}
		name, verbosity, ok := strings.Cut(rule, "=")
		name, verbosity = strings.TrimSpace(name), strings.TrimSpace(verbosity)
		if !ok || name == "" || verbosity == "" {
			return errVmoduleSyntax
		}
		v, err := strconv.Atoi(verbosity)
		if err != nil {
			return errVmoduleSyntax
		}
		level := FromLegacyLevel(v)
		if level == LevelCrit {
			continue // Crit is always emitted.
		}
		filter = append(filter, pattern{re: compileVmodule(name), level: level})
	}
	h.lock.Lock()
	defer h.lock.Unlock()

	h.patterns = filter
	h.siteCache = make(map[uintptr]slog.Level)
	h.override.Store(len(filter) != 0)
	return nil
}

// compileVmodule turns a vmodule name into a regexp over source paths.
func compileVmodule(name string) *regexp.Regexp {
	var expr strings.Builder
	expr.WriteString(".*")
	for _, comp := range strings.Split(name, "/") {
		switch comp {
		case "":
		case "*":
			expr.WriteString("(/.*)?")
		default:
			expr.WriteString("/" + regexp.QuoteMeta(comp))
		}
	}
	if !strings.HasSuffix(name, ".go") {
		expr.WriteString(`/[^/]+\.go`)
	}
	expr.WriteString("$")
	return regexp.MustCompile(expr.String())
}

func (h *GlogHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return h.override.Load() || slog.Level(h.level.Load()) <= lvl
}

func (h *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.lock.RLock()
	res := &GlogHandler{
		origin:    h.origin.WithAttrs(attrs),
		patterns:  slices.Clone(h.patterns),
		siteCache: maps.Clone(h.siteCache),
	}
	h.lock.RUnlock()

	res.level.Store(h.level.Load())
	res.override.Store(h.override.Load())
	return res
}

func (h *GlogHandler) WithGroup(name string) slog.Handler {
	return h
}

// Handle emits r if the global level or the level of its callsite allows.
func (h *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if slog.Level(h.level.Load()) <= r.Level {
		return h.origin.Handle(ctx, r)
	}
	if h.siteLevel(r.PC) <= r.Level {
		return h.origin.Handle(ctx, r)
	}
	return nil
}

// siteLevel returns the level of the callsite at pc, the last matching
// pattern winning. Callsites matching nothing only pass crit.
func (h *GlogHandler) siteLevel(pc uintptr) slog.Level {
	h.lock.RLock()
	lvl, ok := h.siteCache[pc]
	h.lock.RUnlock()
	if ok {
		return lvl
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()

	h.lock.Lock()
	defer h.lock.Unlock()

	lvl = LevelCrit
	for _, rule := range h.patterns {
		if rule.re.MatchString("+" + frame.File) {
			lvl = rule.level
		}
	}
	h.siteCache[pc] = lvl
	return lvl
}

// Copyright 2016 The go-ethereum Authors
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

// Package debug configures logging from the command line.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/MatrixAINetwork/go-manledger/internal/flags"
	"github.com/MatrixAINetwork/go-manledger/log"
)

var (
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value:    2,
		Category: flags.LoggingCategory,
	}
	VmoduleFlag = &cli.StringFlag{
		Name:     "log.vmodule",
		Usage:    "Per-module verbosity: comma-separated list of <pattern>=<level> (e.g. usbwallet=5,device/*=4)",
		Category: flags.LoggingCategory,
	}
	FormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format to use (json|logfmt|terminal)",
		Category: flags.LoggingCategory,
	}
	FileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file as well",
		Category: flags.LoggingCategory,
	}
	RotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables log file rotation",
		Category: flags.LoggingCategory,
	}
	maxSizeFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    10,
		Category: flags.LoggingCategory,
	}
	maxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    5,
		Category: flags.LoggingCategory,
	}
	compressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress the rotated log files",
		Category: flags.LoggingCategory,
	}
)

// Flags holds all command-line flags of the logging setup.
var Flags = []cli.Flag{
	VerbosityFlag,
	VmoduleFlag,
	FormatFlag,
	FileFlag,
	RotateFlag,
	maxSizeFlag,
	maxBackupsFlag,
	compressFlag,
}

// Config is the logging setup, filled from flags or a config file.
type Config struct {
	Verbosity  int
	Vmodule    string `toml:",omitempty"`
	Format     string `toml:",omitempty"`
	File       string `toml:",omitempty"`
	Rotate     bool   `toml:",omitempty"`
	MaxSize    int    `toml:",omitempty"`
	MaxBackups int    `toml:",omitempty"`
	Compress   bool   `toml:",omitempty"`
}

// DefaultConfig logs warnings and errors to the terminal.
var DefaultConfig = Config{Verbosity: 2, MaxSize: 10, MaxBackups: 5}

var logOutputFile io.WriteCloser

// ApplyFlags overrides cfg with the logging flags set on the command line.
func ApplyFlags(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(VerbosityFlag.Name)
	}
	if ctx.IsSet(VmoduleFlag.Name) {
		cfg.Vmodule = ctx.String(VmoduleFlag.Name)
	}
	if ctx.IsSet(FormatFlag.Name) {
		cfg.Format = ctx.String(FormatFlag.Name)
	}
	if ctx.IsSet(FileFlag.Name) {
		cfg.File = ctx.String(FileFlag.Name)
	}
	if ctx.IsSet(RotateFlag.Name) {
		cfg.Rotate = ctx.Bool(RotateFlag.Name)
	}
	if ctx.IsSet(maxSizeFlag.Name) {
		cfg.MaxSize = ctx.Int(maxSizeFlag.Name)
	}
	if ctx.IsSet(maxBackupsFlag.Name) {
		cfg.MaxBackups = ctx.Int(maxBackupsFlag.Name)
	}
	if ctx.IsSet(compressFlag.Name) {
		cfg.Compress = ctx.Bool(compressFlag.Name)
	}
}

// Setup installs the root logger described by cfg. Terminal output goes to
// stderr, coloured when stderr is a terminal.
func Setup(cfg Config) error {
	var (
		output   io.Writer = os.Stderr
		useColor bool
	)
	if cfg.Format == "" || cfg.Format == log.FormatTerminal {
		useColor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			output = colorable.NewColorableStderr()
		}
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return fmt.Errorf("failed to initialize file logger: %v", err)
		}
		if cfg.Rotate {
			logOutputFile = &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				Compress:   cfg.Compress,
			}
		} else {
			f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
			if err != nil {
				return err
			}
			logOutputFile = f
		}
		// Escape codes would garble the file.
		useColor = false
		output = io.MultiWriter(os.Stderr, logOutputFile)
	}
	handler, err := log.NewHandler(cfg.Format, output, log.LevelTrace, useColor)
	if err != nil {
		return err
	}
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(log.FromLegacyLevel(cfg.Verbosity))
	if err := glogger.Vmodule(cfg.Vmodule); err != nil {
		return fmt.Errorf("invalid --%s: %v", VmoduleFlag.Name, err)
	}
	log.SetDefault(log.NewLogger(glogger))

	if cfg.File != "" {
		log.Debug("Logging configured", "file", cfg.File, "rotate", cfg.Rotate, "format", cfg.Format)
	}
	return nil
}

// Exit closes the log file, if any.
func Exit() {
	if logOutputFile != nil {
		logOutputFile.Close()
		logOutputFile = nil
	}
}

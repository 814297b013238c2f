// Copyright 2015 The go-ethereum Authors
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

// Package flags holds the custom flag types and help categories of the
// command line tools.
package flags

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/MatrixAINetwork/go-manledger/accounts"
)

// DirectoryString is a flag.Value expanding its input to a clean path with
// the home directory and environment variables substituted.
type DirectoryString string

func (s *DirectoryString) String() string {
	return string(*s)
}

func (s *DirectoryString) Set(value string) error {
	*s = DirectoryString(expandPath(value))
	return nil
}

var (
	_ cli.Flag              = (*DirectoryFlag)(nil)
	_ cli.RequiredFlag      = (*DirectoryFlag)(nil)
	_ cli.VisibleFlag       = (*DirectoryFlag)(nil)
	_ cli.DocGenerationFlag = (*DirectoryFlag)(nil)
	_ cli.CategorizableFlag = (*DirectoryFlag)(nil)
)

// DirectoryFlag is a path flag, e.g. ~/.manledger -> /home/username/.manledger
type DirectoryFlag struct {
	Name string

	Category    string
	DefaultText string
	Usage       string

	Required   bool
	Hidden     bool
	HasBeenSet bool

	Value DirectoryString

	Aliases []string
	EnvVars []string
}

func (f *DirectoryFlag) Names() []string { return append([]string{f.Name}, f.Aliases...) }
func (f *DirectoryFlag) IsSet() bool     { return f.HasBeenSet }
func (f *DirectoryFlag) String() string  { return cli.FlagStringer(f) }

// Apply reads the flag from the environment, if set there, and registers it
// with the flag set.
func (f *DirectoryFlag) Apply(set *flag.FlagSet) error {
	if value, ok := lookupEnv(f.EnvVars); ok {
		f.Value.Set(value)
		f.HasBeenSet = true
	}
	eachName(f, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
	return nil
}

func (f *DirectoryFlag) IsRequired() bool     { return f.Required }
func (f *DirectoryFlag) IsVisible() bool      { return !f.Hidden }
func (f *DirectoryFlag) GetCategory() string  { return f.Category }
func (f *DirectoryFlag) TakesValue() bool     { return true }
func (f *DirectoryFlag) GetUsage() string     { return f.Usage }
func (f *DirectoryFlag) GetValue() string     { return f.Value.String() }
func (f *DirectoryFlag) GetEnvVars() []string { return f.EnvVars }
func (f *DirectoryFlag) GetDefaultText() string {
	if f.DefaultText != "" {
		return f.DefaultText
	}
	return f.GetValue()
}

var (
	_ cli.Flag              = (*PathFlag)(nil)
	_ cli.RequiredFlag      = (*PathFlag)(nil)
	_ cli.VisibleFlag       = (*PathFlag)(nil)
	_ cli.DocGenerationFlag = (*PathFlag)(nil)
	_ cli.CategorizableFlag = (*PathFlag)(nil)
)

// PathFlag is a BIP-32 derivation path flag. Relative paths extend the
// default root path, so "3" is m/44'/318'/0'/0/3.
type PathFlag struct {
	Name string

	Category    string
	DefaultText string
	Usage       string

	Required   bool
	Hidden     bool
	HasBeenSet bool

	Value accounts.DerivationPath

	Aliases []string
	EnvVars []string
}

func (f *PathFlag) Names() []string { return append([]string{f.Name}, f.Aliases...) }
func (f *PathFlag) IsSet() bool     { return f.HasBeenSet }
func (f *PathFlag) String() string  { return cli.FlagStringer(f) }

// Apply registers a fresh value per flag set, so Value stays the default
// across runs of the same app.
func (f *PathFlag) Apply(set *flag.FlagSet) error {
	def := f.Value
	if def == nil {
		def = accounts.DefaultBaseDerivationPath
	}
	val := append(pathValue{}, def...)
	if value, ok := lookupEnv(f.EnvVars); ok {
		if err := val.Set(value); err != nil {
			return fmt.Errorf("could not parse %q from environment for flag %s: %v", value, f.Name, err)
		}
		f.HasBeenSet = true
	}
	eachName(f, func(name string) {
		set.Var(&val, name, f.Usage)
	})
	return nil
}

func (f *PathFlag) IsRequired() bool     { return f.Required }
func (f *PathFlag) IsVisible() bool      { return !f.Hidden }
func (f *PathFlag) GetCategory() string  { return f.Category }
func (f *PathFlag) TakesValue() bool     { return true }
func (f *PathFlag) GetUsage() string     { return f.Usage }
func (f *PathFlag) GetValue() string     { return f.GetDefaultText() }
func (f *PathFlag) GetEnvVars() []string { return f.EnvVars }
func (f *PathFlag) GetDefaultText() string {
	if f.DefaultText != "" {
		return f.DefaultText
	}
	if f.Value != nil {
		return f.Value.String()
	}
	return accounts.DefaultBaseDerivationPath.String()
}

// pathValue turns an accounts.DerivationPath into a flag.Value.
type pathValue accounts.DerivationPath

func (p *pathValue) String() string {
	if p == nil {
		return ""
	}
	return accounts.DerivationPath(*p).String()
}

func (p *pathValue) Set(s string) error {
	path, err := accounts.ParseDerivationPath(s)
	if err != nil {
		return err
	}
	*p = pathValue(path)
	return nil
}

// Path returns the value of a PathFlag.
func Path(ctx *cli.Context, name string) accounts.DerivationPath {
	val := ctx.Generic(name)
	if val == nil {
		return nil
	}
	return accounts.DerivationPath(*val.(*pathValue))
}

// expandPath replaces a leading ~ with the home directory, expands
// environment variables and cleans the result. ~otheruser is not expanded.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := HomeDir(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

// HomeDir returns the home directory of the current user.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func lookupEnv(vars []string) (string, bool) {
	for _, envVar := range vars {
		if value, found := syscall.Getenv(strings.TrimSpace(envVar)); found {
			return value, true
		}
	}
	return "", false
}

func eachName(f cli.Flag, fn func(string)) {
	for _, name := range f.Names() {
		fn(strings.TrimSpace(name))
	}
}

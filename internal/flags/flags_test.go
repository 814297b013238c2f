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

package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/MatrixAINetwork/go-manledger/accounts"
)

func TestPathExpansion(t *testing.T) {
	home := HomeDir()
	tests := map[string]string{
		"/home/someuser/tmp": "/home/someuser/tmp",
		"~/tmp":              home + "/tmp",
		"~thisOtherUser/b/":  "~thisOtherUser/b",
		"$DDDXXX/a/b":        "/tmp/a/b",
		"/a/b/":              "/a/b",
	}
	t.Setenv("DDDXXX", "/tmp")
	for test, expected := range tests {
		assert.Equal(t, expected, expandPath(test), test)
	}
}

func runApp(t *testing.T, args []string, fl ...cli.Flag) *cli.Context {
	t.Helper()
	var got *cli.Context
	app := &cli.App{
		Flags:  fl,
		Action: func(ctx *cli.Context) error { got = ctx; return nil },
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return got
}

func TestPathFlag(t *testing.T) {
	flag := &PathFlag{Name: "path"}
	ctx := runApp(t, nil, flag)
	assert.Equal(t, accounts.DefaultBaseDerivationPath, Path(ctx, "path"))

	flag = &PathFlag{Name: "path"}
	ctx = runApp(t, []string{"--path", "3"}, flag)
	assert.Equal(t, "m/44'/318'/0'/0/3", Path(ctx, "path").String())
	assert.True(t, ctx.IsSet("path"))

	flag = &PathFlag{Name: "path"}
	ctx = runApp(t, []string{"--path", "0/3"}, flag)
	assert.Equal(t, "m/44'/318'/0'/0/0/3", Path(ctx, "path").String())

	flag = &PathFlag{Name: "path"}
	app := &cli.App{Flags: []cli.Flag{flag}, Action: func(*cli.Context) error { return nil }}
	assert.Error(t, app.Run([]string{"test", "--path", "/0"}))
}

func TestDirectoryFlagEnv(t *testing.T) {
	t.Setenv("MANLEDGER_TEST_DIR", "~/ledger")
	flag := &DirectoryFlag{Name: "datadir", EnvVars: []string{"MANLEDGER_TEST_DIR"}}
	ctx := runApp(t, nil, flag)
	assert.Equal(t, HomeDir()+"/ledger", ctx.String("datadir"))
	assert.True(t, flag.IsSet())
}

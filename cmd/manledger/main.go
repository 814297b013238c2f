// Copyright 2014 The go-ethereum Authors
// Copyright 2024 The go-manledger Authors
// This file is part of go-manledger.
//
// go-manledger is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-manledger is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-manledger. If not, see <http://www.gnu.org/licenses/>.

// manledger is a command-line tool for MAN transactions and Ledger devices.
package main

import (
	"os"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/MatrixAINetwork/go-manledger/cmd/utils"
	"github.com/MatrixAINetwork/go-manledger/internal/debug"
	"github.com/MatrixAINetwork/go-manledger/internal/flags"
)

const configKey = "config"

func newApp() *cli.App {
	app := flags.NewApp("the MAN Ledger command line interface")
	app.Flags = slices.Concat([]cli.Flag{utils.ConfigFileFlag, utils.DataDirFlag}, debug.Flags)
	app.Commands = []*cli.Command{
		// See txcmd.go:
		decodeCommand,
		validateCommand,
		encodeCommand,
		// See walletcmd.go:
		addressCommand,
		signCommand,
		// See config.go:
		dumpConfigCommand,
		// See misccmd.go:
		versionCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := loadBaseConfig(ctx)
		if err != nil {
			return err
		}
		if err := debug.Setup(cfg.Log); err != nil {
			return err
		}
		ctx.App.Metadata = map[string]interface{}{configKey: &cfg}
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
	return app
}

// config returns the configuration of the running command. Flags of the
// command itself are applied on top of the app level result.
func config(ctx *cli.Context) (*manledgerConfig, error) {
	cfg, ok := ctx.App.Metadata[configKey].(*manledgerConfig)
	if !ok {
		return nil, errNoConfig
	}
	applyDeviceFlags(ctx, &cfg.Device)
	applyWalletFlags(ctx, &cfg.Wallet)
	return cfg, nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}

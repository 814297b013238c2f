// Copyright 2017 The go-ethereum Authors
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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/cmd/utils"
	"github.com/MatrixAINetwork/go-manledger/device"
	"github.com/MatrixAINetwork/go-manledger/internal/debug"
	"github.com/MatrixAINetwork/go-manledger/internal/flags"
	"github.com/MatrixAINetwork/go-manledger/log"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       utils.DeviceFlags,
	Description: "Export configuration values in TOML format (to stdout by default).",
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// deviceConfig selects the signer.
type deviceConfig struct {
	Kind     string // usb, emulator or hd
	Target   string
	TestMode bool   `toml:",omitempty"`
	User     string `toml:",omitempty"` // scripted emulator user
	URL      string `toml:",omitempty"`
	DataDir  string
}

// walletConfig holds the key material of the software signers.
type walletConfig struct {
	Mnemonic   string `toml:",omitempty"`
	Passphrase string `toml:",omitempty"`
	HDPath     accounts.DerivationPath
	LedgerLive bool `toml:",omitempty"`
}

type manledgerConfig struct {
	Device deviceConfig
	Wallet walletConfig
	Log    debug.Config
}

func defaultConfig() manledgerConfig {
	return manledgerConfig{
		Device: deviceConfig{
			Kind:    utils.DeviceFlag.Value,
			Target:  device.DefaultConfig.Target,
			User:    utils.EmulatorUserFlag.Value,
			DataDir: utils.DefaultDataDir(),
		},
		Wallet: walletConfig{
			HDPath: append(accounts.DerivationPath{}, accounts.DefaultBaseDerivationPath...),
		},
		Log: debug.DefaultConfig,
	}
}

func loadConfig(file string, cfg *manledgerConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// loadBaseConfig loads the manledgerConfig based on the given command line
// parameters and config file.
func loadBaseConfig(ctx *cli.Context) (manledgerConfig, error) {
	// Load defaults
	cfg := defaultConfig()

	// Load config file.
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}

	// Apply flags.
	applyDeviceFlags(ctx, &cfg.Device)
	applyWalletFlags(ctx, &cfg.Wallet)
	debug.ApplyFlags(ctx, &cfg.Log)
	return cfg, nil
}

func applyDeviceFlags(ctx *cli.Context, cfg *deviceConfig) {
	if ctx.IsSet(utils.DeviceFlag.Name) {
		cfg.Kind = ctx.String(utils.DeviceFlag.Name)
	}
	if ctx.IsSet(utils.TargetFlag.Name) {
		cfg.Target = ctx.String(utils.TargetFlag.Name)
	}
	if ctx.IsSet(utils.TestModeFlag.Name) {
		cfg.TestMode = ctx.Bool(utils.TestModeFlag.Name)
	}
	if ctx.IsSet(utils.EmulatorUserFlag.Name) {
		cfg.User = ctx.String(utils.EmulatorUserFlag.Name)
	}
	if ctx.IsSet(utils.WalletURLFlag.Name) {
		cfg.URL = ctx.String(utils.WalletURLFlag.Name)
	}
	if ctx.IsSet(utils.DataDirFlag.Name) {
		cfg.DataDir = ctx.String(utils.DataDirFlag.Name)
	}
}

func applyWalletFlags(ctx *cli.Context, cfg *walletConfig) {
	if ctx.IsSet(utils.MnemonicFlag.Name) {
		cfg.Mnemonic = ctx.String(utils.MnemonicFlag.Name)
	}
	if ctx.IsSet(utils.PassphraseFlag.Name) {
		cfg.Passphrase = ctx.String(utils.PassphraseFlag.Name)
	}
	if ctx.IsSet(utils.HDPathFlag.Name) {
		cfg.HDPath = flags.Path(ctx, utils.HDPathFlag.Name)
	}
	if ctx.IsSet(utils.LedgerLiveFlag.Name) {
		cfg.LedgerLive = ctx.Bool(utils.LedgerLiveFlag.Name)
	}
}

// dumpConfig is the dumpconfig command. Secrets are left out.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	cfg.Wallet.Mnemonic, cfg.Wallet.Passphrase = "", ""

	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
		log.Info("Writing configuration", "file", f.Name())
	}
	_, err = dump.Write(out)
	return err
}

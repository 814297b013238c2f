// Copyright 2015 The go-ethereum Authors
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

// Package utils contains internal helper functions for go-manledger commands.
package utils

import (
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/MatrixAINetwork/go-manledger/internal/flags"
)

// DefaultDataDir is the default directory of the lock file.
func DefaultDataDir() string {
	if home := flags.HomeDir(); home != "" {
		return filepath.Join(home, ".manledger")
	}
	return ""
}

var (
	// General settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
	DataDirFlag = &flags.DirectoryFlag{
		Name:     "datadir",
		Usage:    "Directory holding the device lock",
		Value:    flags.DirectoryString(DefaultDataDir()),
		EnvVars:  []string{"MANLEDGER_DATADIR"},
		Category: flags.MiscCategory,
	}

	// Device selection
	DeviceFlag = &cli.StringFlag{
		Name:     "device",
		Usage:    "Signer to use (usb|emulator|hd)",
		Value:    "usb",
		Category: flags.DeviceCategory,
	}
	TargetFlag = &cli.StringFlag{
		Name:     "device.target",
		Usage:    "Device model of the emulator and of review checks (nanos|nanox)",
		Value:    "nanos",
		Category: flags.DeviceCategory,
	}
	TestModeFlag = &cli.BoolFlag{
		Name:     "device.testmode",
		Usage:    "Run the emulator in test mode",
		Category: flags.DeviceCategory,
	}
	EmulatorUserFlag = &cli.StringFlag{
		Name:     "device.user",
		Usage:    "Scripted emulator user (approve|reject)",
		Value:    "approve",
		Hidden:   true,
		Category: flags.DeviceCategory,
	}
	WalletURLFlag = &cli.StringFlag{
		Name:     "device.url",
		Usage:    "URL of the wallet to use when several are attached",
		Category: flags.DeviceCategory,
	}

	// Key material of the software signers
	MnemonicFlag = &cli.StringFlag{
		Name:     "wallet.mnemonic",
		Usage:    "BIP-39 mnemonic of the hd and emulator signers",
		EnvVars:  []string{"MANLEDGER_MNEMONIC"},
		Category: flags.WalletCategory,
	}
	PassphraseFlag = &cli.StringFlag{
		Name:     "wallet.passphrase",
		Usage:    "BIP-39 passphrase of the hd and emulator signers",
		EnvVars:  []string{"MANLEDGER_PASSPHRASE"},
		Category: flags.WalletCategory,
	}
	HDPathFlag = &flags.PathFlag{
		Name:     "hd.path",
		Usage:    "BIP-32 derivation path, relative paths extend m/44'/318'/0'/0",
		Category: flags.WalletCategory,
	}
	LedgerLiveFlag = &cli.BoolFlag{
		Name:     "hd.ledgerlive",
		Usage:    "Iterate accounts the way Ledger Live does (m/44'/318'/N'/0/0)",
		Category: flags.WalletCategory,
	}

	// Command options
	CountFlag = &cli.IntFlag{
		Name:     "count",
		Usage:    "Number of consecutive accounts to derive",
		Value:    1,
		Category: flags.WalletCategory,
	}
	ConfirmFlag = &cli.BoolFlag{
		Name:     "confirm",
		Usage:    "Show the address on the device and wait for the user",
		Category: flags.WalletCategory,
	}
	UnitsFlag = &cli.BoolFlag{
		Name:     "units",
		Usage:    "Show amounts in MAN instead of the smallest unit",
		Category: flags.TxCategory,
	}
)

// DeviceFlags are the flags selecting and configuring the signer.
var DeviceFlags = []cli.Flag{
	DeviceFlag,
	TargetFlag,
	TestModeFlag,
	EmulatorUserFlag,
	WalletURLFlag,
	MnemonicFlag,
	PassphraseFlag,
	HDPathFlag,
}

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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"
	"github.com/urfave/cli/v2"

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/accounts/hdwallet"
	"github.com/MatrixAINetwork/go-manledger/accounts/usbwallet"
	"github.com/MatrixAINetwork/go-manledger/cmd/utils"
	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
	"github.com/MatrixAINetwork/go-manledger/core/types"
	"github.com/MatrixAINetwork/go-manledger/crypto"
	"github.com/MatrixAINetwork/go-manledger/device"
	"github.com/MatrixAINetwork/go-manledger/device/emulator"
	"github.com/MatrixAINetwork/go-manledger/log"
)

var (
	errNoConfig    = errors.New("configuration not loaded")
	errNoMnemonic  = errors.New("signer needs a mnemonic, see --" + utils.MnemonicFlag.Name)
	errNoWallet    = errors.New("no wallet found")
	errDatadirUsed = errors.New("datadir already used by another process")

	addressCommand = &cli.Command{
		Action: showAddresses,
		Name:   "address",
		Usage:  "Derive MAN addresses",
		Flags: slices.Concat(utils.DeviceFlags, []cli.Flag{
			utils.CountFlag,
			utils.ConfirmFlag,
			utils.LedgerLiveFlag,
		}),
		Description: `
The address command derives --count accounts starting at --hd.path. With
--confirm, a device shows each address and waits for the user to accept it.`,
	}
	signCommand = &cli.Command{
		Action:    signTx,
		Name:      "sign",
		Usage:     "Sign an encoded transaction",
		ArgsUsage: "<hex | file | ->",
		Flags:     utils.DeviceFlags,
		Description: `
The sign command checks that the transaction can be reviewed, sends it to the
signer and prints the V || R || S signature together with the recovered
signer address.`,
	}
)

// walletList is a fixed set of wallets.
type walletList []accounts.Wallet

func (l walletList) Wallets() []accounts.Wallet { return l }

// newSeedWallet creates the software wallet of the hd and emulator signers.
func newSeedWallet(cfg *walletConfig) (*hdwallet.Wallet, error) {
	if cfg.Mnemonic == "" {
		return nil, errNoMnemonic
	}
	return hdwallet.NewFromMnemonic(cfg.Mnemonic, cfg.Passphrase)
}

func newEmulatorUser(name string) (emulator.User, error) {
	switch name {
	case "", "approve":
		return emulator.Approver, nil
	case "reject":
		return emulator.Rejecter, nil
	default:
		return nil, fmt.Errorf("unknown emulator user %q", name)
	}
}

// makeBackend creates the wallet backend selected by the device config.
func makeBackend(cfg *manledgerConfig) (accounts.Backend, error) {
	switch cfg.Device.Kind {
	case "hd":
		w, err := newSeedWallet(&cfg.Wallet)
		if err != nil {
			return nil, err
		}
		return walletList{w}, nil

	case "emulator":
		seed, err := newSeedWallet(&cfg.Wallet)
		if err != nil {
			return nil, err
		}
		user, err := newEmulatorUser(cfg.Device.User)
		if err != nil {
			return nil, err
		}
		emu, err := emulator.New(device.Config{Target: cfg.Device.Target, TestMode: cfg.Device.TestMode}, seed, user)
		if err != nil {
			return nil, err
		}
		url := accounts.URL{Scheme: "emulator", Path: cfg.Device.Target}
		return walletList{usbwallet.NewWallet(url, func() (io.ReadWriteCloser, error) { return emu, nil })}, nil

	case "usb":
		return usbwallet.NewLedgerHub()

	default:
		return nil, fmt.Errorf("unknown device %q", cfg.Device.Kind)
	}
}

// lockDataDir takes the process lock of the datadir. Two processes talking
// to the same device would interleave their commands.
func lockDataDir(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(dir, "LOCK"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", errDatadirUsed, dir)
	}
	return lock, nil
}

// openWallet opens the configured wallet. The returned function closes it
// and releases the datadir.
func openWallet(cfg *manledgerConfig) (accounts.Wallet, func(), error) {
	lock, err := lockDataDir(cfg.Device.DataDir)
	if err != nil {
		return nil, nil, err
	}
	backend, err := makeBackend(cfg)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	manager := accounts.NewManager(backend)
	release := func() {
		manager.Close()
		lock.Unlock()
	}
	var wallet accounts.Wallet
	if cfg.Device.URL != "" {
		wallet, err = manager.Wallet(cfg.Device.URL)
	} else if wallets := manager.Wallets(); len(wallets) == 0 {
		err = errNoWallet
	} else {
		wallet = wallets[0]
		if len(wallets) > 1 {
			log.Warn("Several wallets found, using the first", "url", wallet.URL(), "count", len(wallets))
		}
	}
	if err == nil {
		err = wallet.Open()
	}
	if err != nil {
		release()
		return nil, nil, err
	}
	status, _ := wallet.Status()
	log.Info("Opened wallet", "url", wallet.URL(), "status", status)
	return wallet, release, nil
}

// rangeDeriver is implemented by wallets that derive many accounts at once.
type rangeDeriver interface {
	DeriveRange(ctx context.Context, next func() accounts.DerivationPath, n int) ([]accounts.Account, error)
}

func showAddresses(ctx *cli.Context) error {
	cfg, err := config(ctx)
	if err != nil {
		return err
	}
	count := ctx.Int(utils.CountFlag.Name)
	if count < 1 {
		return fmt.Errorf("invalid --%s %d", utils.CountFlag.Name, count)
	}
	confirm := ctx.Bool(utils.ConfirmFlag.Name)

	wallet, release, err := openWallet(cfg)
	if err != nil {
		return err
	}
	defer release()

	next := accounts.DefaultIterator(cfg.Wallet.HDPath)
	if cfg.Wallet.LedgerLive {
		next = accounts.LedgerLiveIterator(cfg.Wallet.HDPath)
	}
	var derived []accounts.Account
	if d, ok := wallet.(rangeDeriver); ok && !confirm {
		if derived, err = d.DeriveRange(ctx.Context, next, count); err != nil {
			return err
		}
	} else {
		for i := 0; i < count; i++ {
			account, err := wallet.Derive(next(), confirm)
			if err != nil {
				return err
			}
			derived = append(derived, account)
		}
	}
	for _, account := range derived {
		fmt.Fprintf(ctx.App.Writer, "%-24s %s %s\n", account.Path, account.ManAddress(), account.Address.Hex())
	}
	return nil
}

func signTx(ctx *cli.Context) error {
	cfg, err := config(ctx)
	if err != nil {
		return err
	}
	raw, err := readTx(ctx)
	if err != nil {
		return err
	}
	// Refuse what the device would refuse before bothering the user.
	tx, err := types.Parse(raw)
	if err != nil {
		return txError(err)
	}
	key, val, err := reviewBuffers(ctx)
	if err != nil {
		return err
	}
	if err := tx.Validate(key, val); err != nil {
		return txError(err)
	}

	wallet, release, err := openWallet(cfg)
	if err != nil {
		return err
	}
	defer release()

	account, err := wallet.Derive(cfg.Wallet.HDPath, false)
	if err != nil {
		return err
	}
	log.Info("Signing transaction", "type", tx.TxType(), "recipients", tx.RecipientCount(), "account", account.ManAddress())
	sig, err := wallet.SignTx(account, raw)
	if err != nil {
		return err
	}
	signer, err := types.Sender(tx, sig)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Signature: %s\n", hexutil.Encode(sig))
	fmt.Fprintf(ctx.App.Writer, "Signer:    %s\n", crypto.ManAddress(signer))
	return nil
}

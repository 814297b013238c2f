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

// Package usbwallet implements support for the MAN app on Ledger hardware
// wallets.
package usbwallet

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/core/types"
	"github.com/MatrixAINetwork/go-manledger/crypto"
	"github.com/MatrixAINetwork/go-manledger/log"
)

var errSignerMismatch = errors.New("ledger: signature does not recover to the account")

// Opener establishes the connection to a device.
type Opener func() (io.ReadWriteCloser, error)

// Wallet is a MAN app instance reachable over HID, a physical Ledger found
// by a Hub or an emulated device.
type Wallet struct {
	hub  *Hub         // USB hub the wallet was found by, nil if standalone
	url  accounts.URL // Textual URL uniquely identifying this wallet
	open Opener       // Connects to the device

	device  io.ReadWriteCloser // Open device connection, nil when closed
	driver  *Driver            // Protocol driver over device
	version AppVersion         // App version reported when opened
	failure error              // Any failure that would make the device unusable

	stateLock sync.RWMutex // Protects read and write access to the wallet struct fields
	log       log.Logger   // Contextual logger to tag the base with its id
}

// NewWallet creates a wallet for a device reached through open.
func NewWallet(url accounts.URL, open Opener) *Wallet {
	return &Wallet{url: url, open: open, log: log.New("url", url)}
}

// URL implements accounts.Wallet, returning the URL of the device.
func (w *Wallet) URL() accounts.URL {
	return w.url // Immutable, no need for a lock
}

// Status implements accounts.Wallet, returning a textual status of the
// connection and app.
func (w *Wallet) Status() (string, error) {
	w.stateLock.RLock() // No device communication, state lock is enough
	defer w.stateLock.RUnlock()

	if w.failure != nil {
		return fmt.Sprintf("Failed: %v", w.failure), w.failure
	}
	if w.device == nil {
		return "Closed", nil
	}
	if w.version.Locked {
		return fmt.Sprintf("MAN app %v, locked", w.version), nil
	}
	return fmt.Sprintf("MAN app %v online", w.version), nil
}

// Open implements accounts.Wallet, attempting to open a connection to the
// device and checking that the MAN app answers.
func (w *Wallet) Open() error {
	w.stateLock.Lock() // State lock is enough since there's no connection yet at this point
	defer w.stateLock.Unlock()

	// If the device was already opened once, refuse to try again
	if w.device != nil {
		return accounts.ErrWalletAlreadyOpen
	}
	device, err := w.open()
	if err != nil {
		return err
	}
	driver := NewDriver(device, w.log)
	version, err := driver.Version()
	if err != nil {
		device.Close()
		return err
	}
	w.device, w.driver, w.version, w.failure = device, driver, version, nil
	w.log.Debug("Ledger MAN app opened", "version", version, "locked", version.Locked)
	return nil
}

// Close implements accounts.Wallet, closing the connection to the device.
func (w *Wallet) Close() error {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()

	// Allow duplicate closes
	if w.device == nil {
		return nil
	}
	err := w.device.Close()
	w.device, w.driver = nil, nil
	return err
}

// connection returns the driver of an open wallet.
func (w *Wallet) connection() (*Driver, error) {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()

	if w.device == nil {
		return nil, accounts.ErrWalletClosed
	}
	return w.driver, nil
}

// fail records a transport failure, marking the wallet unusable.
func (w *Wallet) fail(err error) {
	var derr *accounts.DeviceError
	if err == nil || errors.As(err, &derr) || errors.Is(err, accounts.ErrTxRejected) || errors.Is(err, ErrAddressRejected) {
		return
	}
	w.stateLock.Lock()
	w.failure = err
	w.stateLock.Unlock()
}

// Derive implements accounts.Wallet, retrieving the account at path from the
// device. With confirm set the user must accept the address on screen.
func (w *Wallet) Derive(path accounts.DerivationPath, confirm bool) (accounts.Account, error) {
	driver, err := w.connection()
	if err != nil {
		return accounts.Account{}, err
	}
	if confirm {
		w.hub.pendingComms(true)
		defer w.hub.pendingComms(false)
	}
	pub, addr, err := driver.Address(path, confirm)
	if err != nil {
		w.fail(err)
		return accounts.Account{}, err
	}
	key, err := crypto.UnmarshalPubkey(pub)
	if err != nil {
		return accounts.Account{}, err
	}
	account := accounts.Account{
		Address: crypto.PubkeyToAddress(key),
		Path:    append(accounts.DerivationPath{}, path...),
		URL:     w.url,
	}
	w.log.Debug("Derived account", "path", path, "address", addr)
	return account, nil
}

// SignTx implements accounts.Wallet, sending the transaction to the device
// and waiting for the user to confirm or deny it. The signature is checked
// to recover to the account before it is returned.
func (w *Wallet) SignTx(account accounts.Account, rawTx []byte) ([]byte, error) {
	driver, err := w.connection()
	if err != nil {
		return nil, err
	}
	tx, err := types.Parse(rawTx)
	if err != nil {
		return nil, err
	}
	// A confirmation is pending on the device, keep enumeration away from it.
	w.hub.pendingComms(true)
	defer w.hub.pendingComms(false)

	sig, err := driver.SignTx(account.Path, rawTx)
	if err != nil {
		w.fail(err)
		return nil, err
	}
	sender, err := types.Sender(tx, sig)
	if err != nil {
		return nil, err
	}
	if sender != account.Address {
		return nil, errSignerMismatch
	}
	return sig, nil
}

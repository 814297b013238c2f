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

// Package accounts implements MAN account management over hardware and
// software signers.
package accounts

import (
	"github.com/MatrixAINetwork/go-manledger/common"
	"github.com/MatrixAINetwork/go-manledger/crypto"
)

// Account represents a MAN account located at a specific location defined
// by the optional URL field.
type Account struct {
	Address common.Address `toml:"address"` // Account address derived from the key
	Path    DerivationPath `toml:"path"`    // Derivation path of the key within its wallet
	URL     URL            `toml:"url"`     // Optional resource locator within a backend
}

// ManAddress returns the MAN text form of the account address.
func (a Account) ManAddress() string {
	return crypto.ManAddress(a.Address)
}

// Wallet represents a software or hardware wallet that might contain one or more
// accounts (derived from the same seed).
type Wallet interface {
	// URL retrieves the canonical path under which this wallet is reachable. It is
	// used by upper layers to define a sorting order over all wallets from multiple
	// backends.
	URL() URL

	// Status returns a textual status to aid the user in the current state of the
	// wallet. It also returns an error indicating any failure the wallet might have
	// encountered.
	Status() (string, error)

	// Open initializes access to a wallet instance. For hardware wallets this
	// establishes the connection, for software wallets it prepares the seed.
	//
	// Please note, if you open a wallet, you must close it to release any allocated
	// resources (especially important when working with hardware wallets).
	Open() error

	// Close releases any resources held by an open wallet instance.
	Close() error

	// Derive derives the account at the given path. With confirm set, a
	// hardware wallet shows the address and waits for the user to accept it.
	Derive(path DerivationPath, confirm bool) (Account, error)

	// SignTx requests the wallet to sign the encoded transaction rawTx with
	// the key of account. The returned signature is 65 bytes, V || R || S.
	//
	// Hardware wallets return ErrTxRejected if the user declines.
	SignTx(account Account, rawTx []byte) ([]byte, error)
}

// Backend is a "wallet provider" that may contain a batch of accounts they can
// sign transactions with and upon request, do so.
type Backend interface {
	// Wallets retrieves the list of wallets the backend is currently aware of.
	//
	// The returned wallets are not opened by default. The resulting wallet list
	// will be sorted alphabetically based on its internal URL assigned by the
	// backend.
	Wallets() []Wallet
}

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

package accounts

import (
	"reflect"
	"sort"
	"sync"
)

// Manager is an overarching account manager that can communicate with various
// backends for signing transactions.
//
// Wallets come and go with the devices plugged in, the manager re-reads the
// backends on every lookup.
type Manager struct {
	backends map[reflect.Type][]Backend // Index of backends currently registered
	order    []Backend                  // Backends in registration order
	lock     sync.RWMutex
}

// NewManager creates a generic account manager to sign transaction via various
// supported backends.
func NewManager(backends ...Backend) *Manager {
	am := &Manager{backends: make(map[reflect.Type][]Backend)}
	for _, backend := range backends {
		am.AddBackend(backend)
	}
	return am
}

// AddBackend starts the tracking of an additional backend.
func (am *Manager) AddBackend(backend Backend) {
	am.lock.Lock()
	defer am.lock.Unlock()

	kind := reflect.TypeOf(backend)
	am.backends[kind] = append(am.backends[kind], backend)
	am.order = append(am.order, backend)
}

// Backends retrieves the backend(s) with the given type from the account manager.
func (am *Manager) Backends(kind reflect.Type) []Backend {
	am.lock.RLock()
	defer am.lock.RUnlock()

	return am.backends[kind]
}

// Wallets returns all wallets of all registered backends, sorted by URL.
func (am *Manager) Wallets() []Wallet {
	am.lock.RLock()
	defer am.lock.RUnlock()

	var wallets []Wallet
	for _, backend := range am.order {
		wallets = append(wallets, backend.Wallets()...)
	}
	sort.Stable(WalletsByURL(wallets))
	return wallets
}

// Wallet retrieves the wallet associated with a particular URL.
func (am *Manager) Wallet(url string) (Wallet, error) {
	parsed, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	for _, wallet := range am.Wallets() {
		if wallet.URL() == parsed {
			return wallet, nil
		}
	}
	return nil, ErrUnknownWallet
}

// Close closes every wallet known to the manager.
func (am *Manager) Close() error {
	var first error
	for _, w := range am.Wallets() {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

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

// Package hdwallet implements a software wallet deriving MAN keys from a
// BIP-39 mnemonic along BIP-32 paths. It signs the same way the device does
// and serves as the key store of the device emulator.
package hdwallet

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
	"github.com/MatrixAINetwork/go-manledger/common/textbuf"
	"github.com/MatrixAINetwork/go-manledger/core/types"
	"github.com/MatrixAINetwork/go-manledger/crypto"
	"github.com/MatrixAINetwork/go-manledger/log"
)

// Scheme is the URL scheme of software HD wallets.
const Scheme = "hd"

// Review buffer sizes used when validating transactions before software
// signing. They match the largest device target.
const (
	reviewKeyLen   = 64
	reviewValueLen = 256
)

var (
	ErrInvalidMnemonic = errors.New("hdwallet: invalid mnemonic")
	ErrEmptyPath       = errors.New("hdwallet: empty derivation path")
)

// Wallet is a BIP-32 hierarchical deterministic wallet.
type Wallet struct {
	url    accounts.URL
	master *hdkeychain.ExtendedKey // nil once closed
	lock   sync.RWMutex
	log    log.Logger
}

// NewMnemonic generates a fresh mnemonic of the given entropy size in bits.
func NewMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// NewFromMnemonic creates a wallet from a BIP-39 mnemonic and optional
// passphrase. Both are NFKD normalised first.
func NewFromMnemonic(mnemonic, passphrase string) (*Wallet, error) {
	mnemonic, passphrase = norm.NFKD.String(mnemonic), norm.NFKD.String(passphrase)
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	defer clear(seed)
	return NewFromSeed(seed)
}

// NewFromSeed creates a wallet from a raw BIP-32 seed.
func NewFromSeed(seed []byte) (*Wallet, error) {
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	pub, err := master.ECPubKey()
	if err != nil {
		return nil, err
	}
	id := crypto.Keccak256(pub.SerializeCompressed())[:4]
	url := accounts.URL{Scheme: Scheme, Path: hexutil.Encode(id)[2:]}
	return &Wallet{
		url:    url,
		master: master,
		log:    log.New("url", url),
	}, nil
}

// derivePrivateKey walks path from the master key. Intermediate keys are
// wiped, the caller owns and must zero the returned key.
func (w *Wallet) derivePrivateKey(path accounts.DerivationPath) (*btcec.PrivateKey, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.master == nil {
		return nil, accounts.ErrWalletClosed
	}
	key := w.master
	for i, index := range path {
		child, err := key.Derive(index)
		if key != w.master {
			key.Zero()
		}
		if err != nil {
			return nil, fmt.Errorf("derive %s at depth %d: %w", path, i, err)
		}
		key = child
	}
	defer key.Zero()
	return key.ECPrivKey()
}

// PublicKey returns the uncompressed public key at path.
func (w *Wallet) PublicKey(path accounts.DerivationPath) ([]byte, error) {
	priv, err := w.derivePrivateKey(path)
	if err != nil {
		return nil, err
	}
	defer priv.Zero()
	return priv.PubKey().SerializeUncompressed(), nil
}

// Sign signs a 32 byte digest with the key at path. The signature is 65
// bytes, V || R || S with V = 27 + recovery id.
func (w *Wallet) Sign(path accounts.DerivationPath, digest [32]byte) ([]byte, error) {
	return crypto.SignWith(digest[:], func() (*btcec.PrivateKey, error) {
		return w.derivePrivateKey(path)
	})
}

// URL implements accounts.Wallet.
func (w *Wallet) URL() accounts.URL {
	return w.url
}

// Status implements accounts.Wallet.
func (w *Wallet) Status() (string, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.master == nil {
		return "Closed", nil
	}
	return "Online", nil
}

// Open implements accounts.Wallet. The seed is loaded on construction, so
// this only checks that the wallet was not closed.
func (w *Wallet) Open() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.master == nil {
		return accounts.ErrWalletClosed
	}
	return nil
}

// Close wipes the master key. The wallet cannot be used afterwards.
func (w *Wallet) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.master != nil {
		w.master.Zero()
		w.master = nil
	}
	return nil
}

// Derive implements accounts.Wallet. There is no screen to confirm on, the
// confirm flag is ignored.
func (w *Wallet) Derive(path accounts.DerivationPath, confirm bool) (accounts.Account, error) {
	pub, err := w.PublicKey(path)
	if err != nil {
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
	w.log.Debug("Derived account", "path", path, "address", account.ManAddress())
	return account, nil
}

// DeriveRange derives n accounts along the paths produced by next. The
// derivations run concurrently, results keep the iterator order.
func (w *Wallet) DeriveRange(ctx context.Context, next func() accounts.DerivationPath, n int) ([]accounts.Account, error) {
	derived := make([]accounts.Account, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		// Iterators reuse their backing array.
		i, path := i, append(accounts.DerivationPath{}, next()...)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			account, err := w.Derive(path, false)
			if err != nil {
				return err
			}
			derived[i] = account
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return derived, nil
}

// SignTx implements accounts.Wallet. The transaction goes through the same
// parsing and review rendering a device applies before it is signed.
func (w *Wallet) SignTx(account accounts.Account, rawTx []byte) ([]byte, error) {
	tx, err := types.Parse(rawTx)
	if err != nil {
		return nil, err
	}
	validate := func(tx *types.Transaction) error {
		return tx.Validate(textbuf.New(reviewKeyLen), textbuf.New(reviewValueLen))
	}
	sig, err := types.SignTx(tx, validate, func() (*btcec.PrivateKey, error) {
		return w.derivePrivateKey(account.Path)
	})
	if err != nil {
		return nil, err
	}
	w.log.Info("Signed transaction", "path", account.Path, "type", tx.TxType(), "hash", types.SigHash(tx))
	return sig, nil
}

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

package types

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/MatrixAINetwork/go-manledger/common"
	"github.com/MatrixAINetwork/go-manledger/crypto"
)

var ErrInvalidSig = errors.New("invalid transaction v, r, s values")

// SigHash returns the digest signed for a transaction: the Keccak-256 hash
// of its encoding exactly as it was received.
func SigHash(tx *Transaction) common.Hash {
	return crypto.Keccak256Hash(tx.data)
}

// SignTx validates tx and signs its hash with the key returned by derive.
// The key is wiped before SignTx returns. Transactions that do not pass
// Validate are never signed.
func SignTx(tx *Transaction, validate func(*Transaction) error, derive func() (*secp256k1.PrivateKey, error)) ([]byte, error) {
	if tx == nil || tx.data == nil {
		return nil, ErrUnexpectedRoot
	}
	if err := validate(tx); err != nil {
		return nil, err
	}
	h := SigHash(tx)
	return crypto.SignWith(h[:], derive)
}

// Sender recovers the address that produced sig over tx.
func Sender(tx *Transaction, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSig
	}
	h := SigHash(tx)
	pub, err := crypto.SigToPub(h[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(pub), nil
}

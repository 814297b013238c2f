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

package crypto

import (
	"errors"
	"hash"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"

	"github.com/MatrixAINetwork/go-manledger/common"
	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
)

// SignatureLength indicates the byte length required to carry a signature with recovery id.
const SignatureLength = 1 + 64 // 1 byte recovery id + 64 bytes ECDSA signature

// RecoveryIDOffset points to the byte offset within the signature that contains the recovery id.
// The id is stored as 27 + recid, followed by R and S.
const RecoveryIDOffset = 0

// DigestLength sets the signature digest exact length
const DigestLength = 32

// PubkeyLength is the length of an uncompressed public key.
const PubkeyLength = 65

var (
	errInvalidPubkey  = errors.New("invalid secp256k1 public key")
	errInvalidPrivkey = errors.New("invalid private key")
)

// KeccakState wraps sha3.state. In addition to the usual hash methods, it also supports
// Read to get a variable amount of data from the hash state. Read is faster than Sum
// because it doesn't copy the internal state, but also modifies the internal state.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState creates a new KeccakState
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// HashData hashes the provided data using the KeccakState and returns a 32 byte hash
func HashData(kh KeccakState, data []byte) (h common.Hash) {
	kh.Reset()
	kh.Write(data)
	kh.Read(h[:])
	return h
}

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, 32)
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	d.Read(b)
	return b
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	d.Read(h[:])
	return h
}

// ToPrivateKey creates a private key with the given D value. Zero and
// out of range scalars are rejected.
func ToPrivateKey(d []byte) (*secp256k1.PrivateKey, error) {
	if len(d) != 32 {
		return nil, errInvalidPrivkey
	}
	var k secp256k1.ModNScalar
	if overflow := k.SetByteSlice(d); overflow || k.IsZero() {
		k.Zero()
		return nil, errInvalidPrivkey
	}
	return secp256k1.NewPrivateKey(&k), nil
}

// HexToPrivateKey parses a secp256k1 private key.
func HexToPrivateKey(hexkey string) (*secp256k1.PrivateKey, error) {
	b, err := hexutil.DecodeLoose(hexkey)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(b)
	return ToPrivateKey(b)
}

// GenerateKey creates a random private key.
func GenerateKey() (*secp256k1.PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// UnmarshalPubkey converts bytes to a secp256k1 public key. Both the
// compressed and the uncompressed forms are accepted.
func UnmarshalPubkey(pub []byte) (*secp256k1.PublicKey, error) {
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, errInvalidPubkey
	}
	return key, nil
}

// PubkeyToAddress derives the 20 byte account address of a public key: the
// last 20 bytes of the Keccak-256 hash of its uncompressed coordinates.
func PubkeyToAddress(p *secp256k1.PublicKey) common.Address {
	pubBytes := p.SerializeUncompressed()
	return common.BytesToAddress(Keccak256(pubBytes[1:])[12:])
}

func zeroBytes(bytes []byte) {
	clear(bytes)
}

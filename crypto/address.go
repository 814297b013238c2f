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
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/MatrixAINetwork/go-manledger/common"
)

// ManPrefix starts every textual MAN address.
const ManPrefix = "MAN."

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	ErrManAddressPrefix   = errors.New("man address: missing MAN. prefix")
	ErrManAddressEncoding = errors.New("man address: invalid base58 body")
	ErrManAddressChecksum = errors.New("man address: checksum mismatch")
)

// ManAddress renders addr in MAN text form: the prefix, the base58 encoding
// of the address and one base58 check character derived from the CRC-8 of
// everything before it.
func ManAddress(addr common.Address) string {
	s := ManPrefix + base58.Encode(addr[:])
	return s + string(base58Alphabet[CRC8([]byte(s))%58])
}

// PubkeyToManAddress returns the MAN text address of a public key.
func PubkeyToManAddress(pub []byte) (string, error) {
	key, err := UnmarshalPubkey(pub)
	if err != nil {
		return "", err
	}
	return ManAddress(PubkeyToAddress(key)), nil
}

// ParseManAddress validates a MAN text address and returns the account
// address it encodes.
func ParseManAddress(s string) (common.Address, error) {
	if !strings.HasPrefix(s, ManPrefix) || len(s) < len(ManPrefix)+2 {
		return common.Address{}, ErrManAddressPrefix
	}
	body, check := s[:len(s)-1], s[len(s)-1]
	if base58Alphabet[CRC8([]byte(body))%58] != check {
		return common.Address{}, ErrManAddressChecksum
	}
	raw := base58.Decode(body[len(ManPrefix):])
	if len(raw) != common.AddressLength {
		return common.Address{}, ErrManAddressEncoding
	}
	return common.BytesToAddress(raw), nil
}

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
	"bytes"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatrixAINetwork/go-manledger/common"
	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
)

var (
	testPrivHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testPubHex  = "044e3b81af9c2234cad09d679ce6035ed1392347ce64ce405f5dcd36228a25de6e47fd35c4215d1edf53e6f83de344615ce719bdb0fd878f6ed76f06dd277956de"
	testAddrHex = "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23"
	testManAddr = "MAN.cva5Dj9gybNxnfdQPPMKHQMAnkA5"
)

func TestKeccak256Hash(t *testing.T) {
	msg := []byte("abc")
	exp := hexutil.MustDecode("0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45")
	checkhash(t, "Sha3-256-array", func(in []byte) []byte { h := Keccak256Hash(in); return h[:] }, msg, exp)

	empty := hexutil.MustDecode("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	checkhash(t, "Sha3-256-empty", func(in []byte) []byte { return Keccak256(in) }, nil, empty)
}

func TestKeccak256Hasher(t *testing.T) {
	msg := []byte("abc")
	exp := hexutil.MustDecode("0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45")
	hasher := NewKeccakState()
	checkhash(t, "Sha3-256-array", func(in []byte) []byte { h := HashData(hasher, in); return h[:] }, msg, exp)
}

func checkhash(t *testing.T, name string, f func([]byte) []byte, msg, exp []byte) {
	sum := f(msg)
	if !bytes.Equal(exp, sum) {
		t.Fatalf("hash %s mismatch: want: %x have: %x", name, exp, sum)
	}
}

func TestPubkeyToAddress(t *testing.T) {
	tests := []struct {
		priv string
		addr string
		man  string
	}{
		{"0000000000000000000000000000000000000000000000000000000000000001", "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", "MAN.2m7abdAX7eUfrrxhSRRtMPz54bFLp"},
		{"0000000000000000000000000000000000000000000000000000000000000002", "0x2b5ad5c4795c026514f8317c7a215e218dccd6cf", "MAN.c2sjebaSCcFe2hNAYaiDFbgYicNk"},
		{testPrivHex, testAddrHex, testManAddr},
	}
	for _, tt := range tests {
		key, err := HexToPrivateKey(tt.priv)
		require.NoError(t, err)
		addr := PubkeyToAddress(key.PubKey())
		assert.Equal(t, tt.addr, addr.Hex())
		assert.Equal(t, tt.man, ManAddress(addr))
	}
}

func TestUnmarshalPubkey(t *testing.T) {
	key, err := UnmarshalPubkey(hexutil.MustDecode("0x" + testPubHex))
	require.NoError(t, err)
	assert.Equal(t, testAddrHex, PubkeyToAddress(key).Hex())

	man, err := PubkeyToManAddress(CompressPubkey(key))
	require.NoError(t, err)
	assert.Equal(t, testManAddr, man)

	_, err = UnmarshalPubkey(nil)
	assert.Equal(t, errInvalidPubkey, err)
	_, err = UnmarshalPubkey(hexutil.MustDecode("0x05" + testPubHex[2:]))
	assert.Equal(t, errInvalidPubkey, err)
}

func TestInvalidPrivateKey(t *testing.T) {
	for _, in := range []string{
		"",
		"0000000000000000000000000000000000000000000000000000000000000000",
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", // N
		"00112233",
	} {
		_, err := HexToPrivateKey(in)
		assert.Error(t, err, "key %q", in)
	}
}

func TestSignAndRecover(t *testing.T) {
	key, _ := HexToPrivateKey(testPrivHex)
	msg := Keccak256([]byte("foo"))

	sig, err := Sign(msg, key)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)
	assert.Contains(t, []byte{27, 28}, sig[RecoveryIDOffset])

	recovered, err := Ecrecover(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, "0x"+testPubHex, hexutil.Encode(recovered))

	pub, err := SigToPub(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, testAddrHex, PubkeyToAddress(pub).Hex())

	assert.True(t, VerifySignature(recovered, msg, sig[1:]))
	assert.True(t, VerifySignature(CompressPubkey(pub), msg, sig[1:]))
	assert.False(t, VerifySignature(recovered, Keccak256([]byte("bar")), sig[1:]))

	// Signing is deterministic.
	again, err := Sign(msg, key)
	require.NoError(t, err)
	assert.Equal(t, sig, again)
}

func TestSignErrors(t *testing.T) {
	key, _ := HexToPrivateKey(testPrivHex)
	_, err := Sign(make([]byte, 31), key)
	assert.Error(t, err)
	_, err = Sign(make([]byte, 32), nil)
	assert.Equal(t, errInvalidPrivkey, err)

	_, err = SigToPub(make([]byte, 32), make([]byte, 64))
	assert.ErrorIs(t, err, errInvalidSignature)
	bad := make([]byte, SignatureLength)
	bad[0] = 31
	_, err = SigToPub(make([]byte, 32), bad)
	assert.ErrorIs(t, err, errInvalidSignature)
}

func TestSignWithZeroesKey(t *testing.T) {
	var derived *secp256k1.PrivateKey
	derive := func() (*secp256k1.PrivateKey, error) {
		var err error
		derived, err = HexToPrivateKey(testPrivHex)
		return derived, err
	}
	sig, err := SignWith(Keccak256([]byte("foo")), derive)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)
	assert.True(t, derived.Key.IsZero(), "key not wiped after signing")

	// The key is also wiped when signing fails.
	_, err = SignWith([]byte("short"), derive)
	assert.Error(t, err)
	assert.True(t, derived.Key.IsZero(), "key not wiped after failure")

	fail := errors.New("no key")
	_, err = SignWith(Keccak256(nil), func() (*secp256k1.PrivateKey, error) { return nil, fail })
	assert.Equal(t, fail, err)
}

func TestCRC8(t *testing.T) {
	assert.Equal(t, byte(0xF4), CRC8([]byte("123456789")))
	assert.Equal(t, byte(0), CRC8(nil))
}

func TestParseManAddress(t *testing.T) {
	addr, err := ParseManAddress(testManAddr)
	require.NoError(t, err)
	assert.Equal(t, testAddrHex, addr.Hex())

	zero, err := ParseManAddress("MAN.11111111111111111111Y")
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, zero)
	assert.Equal(t, "MAN.11111111111111111111Y", ManAddress(common.Address{}))

	tests := []struct {
		in  string
		err error
	}{
		{"", ErrManAddressPrefix},
		{"MAN.", ErrManAddressPrefix},
		{"man.cva5Dj9gybNxnfdQPPMKHQMAnkA5", ErrManAddressPrefix},
		{"MAN.cva5Dj9gybNxnfdQPPMKHQMAnkA6", ErrManAddressChecksum},
		{"MAN.cva5Dj9gybNxnfdQPPMKHQMAnkB5", ErrManAddressChecksum},
		{"MAN.0va5Dj9gybNxnfdQPPMKHQMAnkAy", ErrManAddressEncoding},
		{"MAN.1111111111111111111A", ErrManAddressEncoding},
	}
	for _, tt := range tests {
		_, err := ParseManAddress(tt.in)
		assert.ErrorIs(t, err, tt.err, "input %q", tt.in)
	}
}

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
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests that HD derivation paths can be correctly parsed into our internal binary
// representation.
func TestHDPathParsing(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input  string
		output DerivationPath
	}{
		// Plain absolute derivation paths
		{"m/44'/318'/0'/0", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0}},
		{"m/44'/318'/0'/128", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 128}},
		{"m/44'/318'/0'/0'", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0x80000000 + 0}},
		{"m/44'/318'/0'/128'", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0x80000000 + 128}},
		{"m/2147483692/2147483966/2147483648/0", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0}},
		{"m/2147483692/2147483966/2147483648/2147483648", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0x80000000 + 0}},

		// Plain relative derivation paths
		{"0", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0, 0}},
		{"128", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0, 128}},
		{"0'", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0, 0x80000000 + 0}},
		{"128'", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0, 0x80000000 + 128}},
		{"2147483776", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0, 0x80000000 + 128}},

		// Hexadecimal absolute derivation paths
		{"m/0x2C'/0x13E'/0x00'/0x00", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0}},
		{"m/0x8000002C/0x8000013E/0x80000000/0x00", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0}},

		// Weird inputs just to ensure they work
		{"	m  /   44			'\n/\n   318	\n\n\t'   /\n0 ' /\t\t	0", DerivationPath{0x80000000 + 44, 0x80000000 + 318, 0x80000000 + 0, 0}},

		// Invalid derivation paths
		{"", nil},                         // Empty relative derivation path
		{"m", nil},                        // Empty absolute derivation path
		{"m/", nil},                       // Missing last derivation component
		{"/44'/318'/0'/0", nil},           // Absolute path without m prefix, might be user error
		{"m/2147483648'", nil},            // Overflows 32 bit integer
		{"m/-1'", nil},                    // Cannot contain negative number
		{"m/0/1/2/3/4/5/6/7/8/9/10", nil}, // Deeper than a device accepts
	}
	for i, tt := range tests {
		if path, err := ParseDerivationPath(tt.input); !reflect.DeepEqual(path, tt.output) {
			t.Errorf("test %d: parse mismatch: have %v (%v), want %v", i, path, err, tt.output)
		} else if path == nil && err == nil {
			t.Errorf("test %d: nil path and error: %v", i, err)
		}
	}
}

func TestHDPathString(t *testing.T) {
	assert.Equal(t, "m/44'/318'/0'/0/0", DefaultBaseDerivationPath.String())
	assert.Equal(t, "m/44'/318'/0'/0", DefaultRootDerivationPath.String())

	var path DerivationPath
	require.NoError(t, path.UnmarshalText([]byte("m/44'/318'/1'/0/7")))
	text, err := path.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "m/44'/318'/1'/0/7", string(text))
	assert.Error(t, path.UnmarshalText([]byte("/0")))
}

func TestHDPathBytes(t *testing.T) {
	enc := DefaultBaseDerivationPath.Bytes()
	assert.Equal(t, []byte{
		5,
		0x80, 0, 0, 44,
		0x80, 0, 0x01, 0x3e,
		0x80, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}, enc)

	path, n, err := DecodeDerivationPath(append(enc, 0xff))
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.Equal(t, DefaultBaseDerivationPath, path)

	for _, bad := range [][]byte{
		nil,
		{0},
		{11},
		{2, 0, 0, 0, 1, 0, 0, 0},
	} {
		_, _, err := DecodeDerivationPath(bad)
		assert.Error(t, err, "input %x", bad)
	}
}

func testDerive(t *testing.T, next func() DerivationPath, expected []string) {
	t.Helper()
	for i, want := range expected {
		if have := next(); fmt.Sprintf("%v", have) != want {
			t.Errorf("step %d, have %v, want %v", i, have, want)
		}
	}
}

func TestHdPathIteration(t *testing.T) {
	t.Parallel()
	testDerive(t, DefaultIterator(DefaultBaseDerivationPath),
		[]string{
			"m/44'/318'/0'/0/0", "m/44'/318'/0'/0/1",
			"m/44'/318'/0'/0/2", "m/44'/318'/0'/0/3",
		})

	testDerive(t, DefaultIterator(DefaultRootDerivationPath),
		[]string{
			"m/44'/318'/0'/0", "m/44'/318'/0'/1",
			"m/44'/318'/0'/2", "m/44'/318'/0'/3",
		})

	testDerive(t, LedgerLiveIterator(DefaultBaseDerivationPath),
		[]string{
			"m/44'/318'/0'/0/0", "m/44'/318'/1'/0/0",
			"m/44'/318'/2'/0/0", "m/44'/318'/3'/0/0",
		})
}

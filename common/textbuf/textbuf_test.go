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

package textbuf

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexInPlace(t *testing.T) {
	b := New(5)
	require.NoError(t, b.Set([]byte{0xAB, 0x01}))
	require.NoError(t, b.HexInPlace())
	assert.Equal(t, "AB01", b.String())

	// 2*len+1 > capacity must fail before anything is rewritten.
	b = New(4)
	require.NoError(t, b.Set([]byte{0xAB, 0x01}))
	assert.ErrorIs(t, b.HexInPlace(), ErrBufferTooSmall)
	assert.Equal(t, []byte{0xAB, 0x01}, b.Bytes())
	assert.Equal(t, []byte{0xAB, 0x01, 0x00, 0x00}, b.buf)

	// empty content stays empty
	b = New(1)
	require.NoError(t, b.HexInPlace())
	assert.Equal(t, "", b.String())
}

func TestHexInPlaceMatchesEncoder(t *testing.T) {
	for n := 0; n <= 63; n++ {
		src := make([]byte, n)
		for i := range src {
			src[i] = byte(i*37 + n)
		}
		b := New(2*n + 1)
		require.NoError(t, b.Set(src))
		require.NoError(t, b.HexInPlace(), "length %d", n)
		assert.Equal(t, strings.ToUpper(hex.EncodeToString(src)), b.String())
	}
}

func TestWriteAllOrNothing(t *testing.T) {
	b := New(6)
	_, err := b.WriteString("abc")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Avail())

	_, err = b.WriteString("xyz")
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Equal(t, "abc", b.String())

	_, err = b.Write([]byte("de"))
	require.NoError(t, err)
	assert.Equal(t, "abcde", b.String())
	assert.Equal(t, 0, b.Avail())

	assert.ErrorIs(t, b.SetString("123456"), ErrBufferTooSmall)
	assert.Equal(t, "abcde", b.String())
	require.NoError(t, b.SetString("12345"))

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 6, b.Cap())
}

func TestFormatting(t *testing.T) {
	b := New(21)
	require.NoError(t, b.WriteUint(18446744073709551615))
	assert.Equal(t, "18446744073709551615", b.String())
	assert.ErrorIs(t, b.WriteUint(1), ErrBufferTooSmall)

	b = New(8)
	require.NoError(t, b.Printf("[%d] To", 3))
	assert.Equal(t, "[3] To", b.String())
	assert.ErrorIs(t, b.Printf("%s", "overflow"), ErrBufferTooSmall)
	assert.Equal(t, "[3] To", b.String())
}

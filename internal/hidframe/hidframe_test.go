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

package hidframe

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for size := 0; size <= 600; size++ {
		msg := make([]byte, size)
		for i := range msg {
			msg[i] = byte(i*7 + size)
		}
		var buf bytes.Buffer
		require.NoError(t, WriteMessage(&buf, msg))

		// 57 payload bytes in the first packet, 59 in every following one.
		want := 1
		if size > 57 {
			want += (size - 57 + 58) / 59
		}
		require.Equal(t, want*PacketSize, buf.Len(), "size %d", size)

		got, err := ReadMessage(&buf)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, msg, got, "size %d", size)
		assert.Zero(t, buf.Len())
	}
}

func TestPacketLayout(t *testing.T) {
	packets, err := Packets(bytes.Repeat([]byte{0xaa}, 60))
	require.NoError(t, err)
	require.Len(t, packets, 2)

	assert.Equal(t, []byte{0x01, 0x01, 0x05, 0x00, 0x00, 0x00, 0x3c, 0xaa}, packets[0][:8])
	assert.Equal(t, []byte{0x01, 0x01, 0x05, 0x00, 0x01, 0xaa, 0xaa, 0xaa, 0x00}, packets[1][:9])
	assert.Equal(t, make([]byte, PacketSize-8), packets[1][8:])
}

func TestAssemblerErrors(t *testing.T) {
	packets, err := Packets(make([]byte, 200))
	require.NoError(t, err)

	var a Assembler
	_, _, err = a.Feed(packets[0][:32])
	assert.Equal(t, ErrPacketSize, err)

	bad := append([]byte{}, packets[0]...)
	bad[2] = 0x06
	_, _, err = a.Feed(bad)
	assert.Equal(t, ErrInvalidHeader, err)

	_, _, err = a.Feed(packets[1])
	assert.Equal(t, ErrSequence, err)

	_, done, err := a.Feed(packets[0])
	require.NoError(t, err)
	require.False(t, done)
	_, _, err = a.Feed(packets[2])
	assert.Equal(t, ErrSequence, err)

	// The assembler starts over after an error.
	for i, p := range packets {
		msg, done, err := a.Feed(p)
		require.NoError(t, err)
		assert.Equal(t, i == len(packets)-1, done)
		if done {
			assert.Len(t, msg, 200)
		}
	}
}

func TestLimits(t *testing.T) {
	_, err := Packets(make([]byte, MaxMessageSize+1))
	assert.Equal(t, ErrTooLarge, err)

	packets, _ := Packets([]byte{1, 2, 3})
	_, err = ReadMessage(bytes.NewReader(packets[0][:40]))
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

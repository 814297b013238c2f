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

package rlp

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// AppendString appends the RLP encoding of the byte string s to b.
// A single byte below 0x80 is encoded as itself.
func AppendString(b []byte, s []byte) []byte {
	if len(s) == 1 && s[0] < 0x80 {
		return append(b, s[0])
	}
	b = appendHead(b, 0x80, 0xB7, uint64(len(s)))
	return append(b, s...)
}

// AppendListHeader appends the header of a list whose content is size bytes.
func AppendListHeader(b []byte, size int) []byte {
	return appendHead(b, 0xC0, 0xF7, uint64(size))
}

// AppendUint64 appends the RLP encoding of i to b, and returns the resulting slice.
func AppendUint64(b []byte, i uint64) []byte {
	if i == 0 {
		return append(b, 0x80)
	} else if i < 128 {
		return append(b, byte(i))
	}
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], i)
	n := intsize(i)
	b = append(b, 0x80+byte(n))
	return append(b, enc[8-n:]...)
}

// AppendUint256 appends the RLP encoding of z to b.
func AppendUint256(b []byte, z *uint256.Int) []byte {
	if z.IsUint64() {
		return AppendUint64(b, z.Uint64())
	}
	enc := z.Bytes32()
	n := (z.BitLen() + 7) / 8
	b = append(b, 0x80+byte(n))
	return append(b, enc[32-n:]...)
}

// headsize returns the size of a list or string header
// for a value of the given size.
func headsize(size uint64) int {
	if size < 56 {
		return 1
	}
	return 1 + intsize(size)
}

func appendHead(b []byte, smalltag, largetag byte, size uint64) []byte {
	if size < 56 {
		return append(b, smalltag+byte(size))
	}
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], size)
	n := intsize(size)
	b = append(b, largetag+byte(n))
	return append(b, enc[8-n:]...)
}

// intsize computes the minimum number of bytes required to store i.
func intsize(i uint64) (size int) {
	for size = 1; ; size++ {
		if i >>= 8; i == 0 {
			return size
		}
	}
}

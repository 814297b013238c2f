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

// iterator walks the items of an encoded byte range one header at a time.
type iterator struct {
	data []byte // input truncated at the end of the range 截断到范围末尾的输入
	pos  int    // offset of the next header
	cur  Field
	err  error
}

func newIterator(data []byte, start int) *iterator {
	return &iterator{data: data, pos: start}
}

// next forwards the iterator one step, returns true if an item was decoded.
// Iteration stops at the end of the range or at the first decoding error.
func (it *iterator) next() bool {
	if it.err != nil || it.pos >= len(it.data) {
		return false
	}
	h, err := DecodeHeader(it.data, it.pos)
	if err != nil {
		it.err = err
		return false
	}
	it.cur = fieldFromHeader(h, it.pos)
	it.pos += h.Size()
	return true
}

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

import "github.com/holiman/uint256"

// EncodeBuffer builds nested RLP values without knowing list sizes up front.
// List headers are recorded while writing and inserted by Bytes.
//
//	var w EncodeBuffer
//	l := w.List()
//	w.WriteUint64(1)
//	w.WriteBytes([]byte("abc"))
//	w.ListEnd(l)
//	enc := w.Bytes()
type EncodeBuffer struct {
	str    []byte     // string data, contains everything except list headers
	lheads []listhead // all list headers
	lhsize int        // sum of sizes of all encoded list headers
}

type listhead struct {
	offset int // index of this header in string data 头部在字符串数据中的索引
	size   int // total size of encoded data (including list headers)
}

// Reset truncates the buffer for reuse.
func (w *EncodeBuffer) Reset() {
	w.str = w.str[:0]
	w.lheads = w.lheads[:0]
	w.lhsize = 0
}

func (w *EncodeBuffer) size() int {
	return len(w.str) + w.lhsize
}

// WriteBytes encodes b as an RLP string.
func (w *EncodeBuffer) WriteBytes(b []byte) {
	w.str = AppendString(w.str, b)
}

// WriteString encodes s as an RLP string.
func (w *EncodeBuffer) WriteString(s string) {
	w.str = AppendString(w.str, []byte(s))
}

// WriteUint64 encodes an unsigned integer.
func (w *EncodeBuffer) WriteUint64(i uint64) {
	w.str = AppendUint64(w.str, i)
}

// WriteUint256 encodes a 256-bit unsigned integer.
func (w *EncodeBuffer) WriteUint256(z *uint256.Int) {
	w.str = AppendUint256(w.str, z)
}

// WriteRaw appends already encoded bytes verbatim.
func (w *EncodeBuffer) WriteRaw(enc []byte) {
	w.str = append(w.str, enc...)
}

// List starts a list. It returns an internal index. Call ListEnd with
// this index after encoding the content to finish the list.
func (w *EncodeBuffer) List() int {
	w.lheads = append(w.lheads, listhead{offset: len(w.str), size: w.lhsize})
	return len(w.lheads) - 1
}

// ListEnd finishes the given list.
func (w *EncodeBuffer) ListEnd(index int) {
	lh := &w.lheads[index]
	lh.size = w.size() - lh.offset - lh.size
	w.lhsize += headsize(uint64(lh.size))
}

// Bytes returns the complete encoding, list headers included.
func (w *EncodeBuffer) Bytes() []byte {
	out := make([]byte, 0, w.size())
	strpos := 0
	for _, head := range w.lheads {
		// write string data before header
		out = append(out, w.str[strpos:head.offset]...)
		strpos = head.offset
		out = AppendListHeader(out, head.size)
	}
	// copy string data after the last list header
	return append(out, w.str[strpos:]...)
}

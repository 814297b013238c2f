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

import "io"

// maxSizeBytes is the widest length-of-length accepted by the decoder.
// Field offsets are 16 bit wide, anything longer cannot be addressed.
const maxSizeBytes = 2

// Header is a decoded RLP item header.
type Header struct {
	Kind       Kind
	HeaderLen  int // tag byte plus any size bytes 标签字节加长度字节
	ContentLen int // payload length, zero for Byte 负载长度
}

// Size returns the number of bytes the whole item occupies.
func (h Header) Size() int {
	return h.HeaderLen + h.ContentLen
}

// DecodeHeader decodes the item header at b[offset].
//
// It never reads past len(b): size bytes that are not present yield
// io.ErrUnexpectedEOF, and an item whose payload would end past len(b)
// yields ErrValueTooLarge. Nested contexts restrict the decoder by passing
// a slice that ends where the enclosing list ends.
func DecodeHeader(b []byte, offset int) (Header, error) {
	if offset < 0 || offset >= len(b) {
		return Header{}, io.ErrUnexpectedEOF
	}
	var (
		h   Header
		err error
		tag = b[offset]
	)
	switch {
	case tag < 0x80:
		// single byte, the tag is the value 单字节，标签本身即为值
		h = Header{Kind: Byte, HeaderLen: 1}
	case tag < 0xB8:
		h = Header{Kind: String, HeaderLen: 1, ContentLen: int(tag - 0x80)}
	case tag < 0xC0:
		h.Kind = String
		h.HeaderLen, h.ContentLen, err = readLongSize(b[offset+1:], tag-0xB7)
	case tag < 0xF8:
		h = Header{Kind: List, HeaderLen: 1, ContentLen: int(tag - 0xC0)}
	default:
		h.Kind = List
		h.HeaderLen, h.ContentLen, err = readLongSize(b[offset+1:], tag-0xF7)
	}
	if err != nil {
		return Header{}, err
	}
	// Reject values larger than the input slice.
	if h.Size() > len(b)-offset {
		return Header{}, ErrValueTooLarge
	}
	return h, nil
}

func readLongSize(b []byte, slen byte) (headerLen, size int, err error) {
	if slen > maxSizeBytes {
		return 0, 0, ErrUnsupportedSize
	}
	s, err := readSize(b, slen)
	if err != nil {
		return 0, 0, err
	}
	return 1 + int(slen), int(s), nil
}

func readSize(b []byte, slen byte) (uint64, error) {
	if int(slen) > len(b) {
		return 0, io.ErrUnexpectedEOF
	}
	var s uint64
	for _, c := range b[:slen] {
		s = s<<8 | uint64(c)
	}
	// Reject sizes < 56 (shouldn't have separate size) and sizes with
	// leading zero bytes.
	if s < 56 || b[0] == 0 {
		return 0, ErrCanonSize
	}
	return s, nil
}

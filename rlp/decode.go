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
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/holiman/uint256"
)

// MaxInputSize is the largest buffer descriptors can address.
const MaxInputSize = math.MaxUint16

var (
	ErrExpectedByte    = errors.New("rlp: expected Byte")
	ErrExpectedString  = errors.New("rlp: expected String")
	ErrExpectedList    = errors.New("rlp: expected List")
	ErrCanonSize       = errors.New("rlp: non-canonical size information")            // 大小信息没有以规范格式编码
	ErrValueTooLarge   = errors.New("rlp: value size exceeds available input length") // 值的尺寸超过可用输入长度
	ErrUnsupportedSize = errors.New("rlp: unsupported length-of-length encoding")
	ErrTooManyFields   = errors.New("rlp: too many fields")
	ErrInputTooLarge   = errors.New("rlp: input exceeds addressable size")
	ErrUint256Large    = errors.New("rlp: value too large for uint256")

	errBadPageSize = errors.New("rlp: page size must be positive")
)

// Kind represents the kind of value contained in an RLP stream.
// Kind 表示 RLP 流中包含的值的类型。
type Kind int8

const (
	Byte   Kind = iota // single byte below 0x80, encoded as itself
	String             // byte sequence with a length prefix
	List               // sequence of nested items
)

func (k Kind) String() string {
	switch k {
	case Byte:
		return "Byte"
	case String:
		return "String"
	case List:
		return "List"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Field describes one encoded item by its position in the input buffer.
//
// FieldOffset is the offset of the header, ValueOffset the distance from the
// header to the payload and ValueLen the payload length. A Byte field has a
// zero ValueOffset and ValueLen: the header byte is the value.
type Field struct {
	Kind        Kind
	FieldOffset uint16
	ValueOffset uint16
	ValueLen    uint16
}

func fieldFromHeader(h Header, offset int) Field {
	f := Field{Kind: h.Kind, FieldOffset: uint16(offset)}
	if h.Kind != Byte {
		f.ValueOffset = uint16(h.HeaderLen)
		f.ValueLen = uint16(h.ContentLen)
	}
	return f
}

func (f Field) start() int { return int(f.FieldOffset) + int(f.ValueOffset) }
func (f Field) end() int   { return f.start() + int(f.ValueLen) }

// Size returns the number of encoded bytes the item occupies.
func (f Field) Size() int {
	if f.Kind == Byte {
		return 1
	}
	return int(f.ValueOffset) + int(f.ValueLen)
}

// ParseFields decodes the items of b[start:end] into dst and returns how many
// were found. Items are never interpreted, nested lists stay opaque.
//
// ParseFields fails with ErrTooManyFields when input remains after dst was
// filled. Callers check the returned count against the arity they expect.
func ParseFields(b []byte, start, end int, dst []Field) (int, error) {
	if start < 0 || start > end || end > len(b) {
		return 0, io.ErrUnexpectedEOF
	}
	if end > MaxInputSize {
		return 0, ErrInputTooLarge
	}
	var (
		it = newIterator(b[:end], start)
		n  int
	)
	for {
		if n == len(dst) {
			if it.pos < len(it.data) {
				return n, ErrTooManyFields
			}
			return n, nil
		}
		if !it.next() {
			return n, it.err
		}
		dst[n] = it.cur
		n++
	}
}

// ParseList decodes the items of list field f into dst.
func ParseList(b []byte, f Field, dst []Field) (int, error) {
	if f.Kind != List {
		return 0, ErrExpectedList
	}
	return ParseFields(b, f.start(), f.end(), dst)
}

// ReadByte returns the value of a Byte field.
func ReadByte(b []byte, f Field) (byte, error) {
	if f.Kind != Byte {
		return 0, ErrExpectedByte
	}
	if int(f.FieldOffset) >= len(b) {
		return 0, io.ErrUnexpectedEOF
	}
	return b[f.FieldOffset], nil
}

// ReadBytes returns the payload of a String field as a sub-slice of b.
func ReadBytes(b []byte, f Field) ([]byte, error) {
	if f.Kind != String {
		return nil, ErrExpectedString
	}
	if f.end() > len(b) {
		return nil, ErrValueTooLarge
	}
	return b[f.start():f.end()], nil
}

// ReadStringPage splits the payload of a String field into pages of pageSize
// bytes and returns the requested one along with the page count. An empty
// payload has no pages. A page past the last one is returned empty.
func ReadStringPage(b []byte, f Field, pageSize, page int) ([]byte, int, error) {
	if pageSize <= 0 {
		return nil, 0, errBadPageSize
	}
	val, err := ReadBytes(b, f)
	if err != nil {
		return nil, 0, err
	}
	pages := (len(val) + pageSize - 1) / pageSize
	if page < 0 || page >= pages {
		return nil, pages, nil
	}
	from := page * pageSize
	to := min(from+pageSize, len(val))
	return val[from:to], pages, nil
}

// ReadUint256 decodes a big endian unsigned integer of at most 32 bytes into z.
// Both Byte and String fields are accepted.
func ReadUint256(b []byte, f Field, z *uint256.Int) error {
	switch f.Kind {
	case Byte:
		v, err := ReadByte(b, f)
		if err != nil {
			return err
		}
		z.SetUint64(uint64(v))
		return nil
	case String:
		val, err := ReadBytes(b, f)
		if err != nil {
			return err
		}
		if len(val) > 32 {
			return ErrUint256Large
		}
		z.SetBytes(val)
		return nil
	default:
		return ErrExpectedString
	}
}

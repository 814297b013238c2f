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

// Package textbuf implements the fixed capacity text buffers used for the
// key and value lines of the review screens.
//
// A Buffer mirrors a zero terminated display string: its capacity includes
// the terminator slot, so a buffer of capacity n holds at most n-1 bytes.
// Every operation checks the size of its complete output against the
// capacity before touching the content. On failure the content is left as it
// was and ErrBufferTooSmall is returned, text is never truncated.
package textbuf

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrBufferTooSmall is returned when an operation's output does not fit.
var ErrBufferTooSmall = errors.New("output buffer too small")

const hextable = "0123456789ABCDEF"

// Buffer is a fixed capacity text buffer. The zero value is unusable, create
// buffers with New.
type Buffer struct {
	buf []byte // backing array, len(buf) is the capacity
	n   int    // bytes in use
}

// New creates a buffer of the given capacity, terminator slot included.
func New(capacity int) *Buffer {
	if capacity < 1 {
		panic("textbuf: capacity must be at least 1")
	}
	return &Buffer{buf: make([]byte, capacity)}
}

// Cap returns the capacity, terminator slot included.
func (b *Buffer) Cap() int { return len(b.buf) }

// Len returns the number of bytes in use.
func (b *Buffer) Len() int { return b.n }

// Avail returns how many more bytes fit.
func (b *Buffer) Avail() int { return len(b.buf) - 1 - b.n }

// MaxLen returns the largest content length the buffer can hold.
func (b *Buffer) MaxLen() int { return len(b.buf) - 1 }

// Bytes returns the content. The slice aliases the buffer and is only valid
// until the next modification.
func (b *Buffer) Bytes() []byte { return b.buf[:b.n] }

// String returns a copy of the content.
func (b *Buffer) String() string { return string(b.buf[:b.n]) }

// Reset empties the buffer.
func (b *Buffer) Reset() { b.n = 0 }

// Write appends p. Either all of p is written or none of it.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) > b.Avail() {
		return 0, ErrBufferTooSmall
	}
	b.n += copy(b.buf[b.n:], p)
	return len(p), nil
}

// WriteString appends s. Either all of s is written or none of it.
func (b *Buffer) WriteString(s string) (int, error) {
	if len(s) > b.Avail() {
		return 0, ErrBufferTooSmall
	}
	b.n += copy(b.buf[b.n:], s)
	return len(s), nil
}

// Set replaces the content with p.
func (b *Buffer) Set(p []byte) error {
	if len(p) > b.MaxLen() {
		return ErrBufferTooSmall
	}
	b.n = copy(b.buf, p)
	return nil
}

// SetString replaces the content with s.
func (b *Buffer) SetString(s string) error {
	if len(s) > b.MaxLen() {
		return ErrBufferTooSmall
	}
	b.n = copy(b.buf, s)
	return nil
}

// WriteUint appends the decimal form of v.
func (b *Buffer) WriteUint(v uint64) error {
	var tmp [20]byte
	_, err := b.Write(strconv.AppendUint(tmp[:0], v, 10))
	return err
}

// Printf appends formatted text. The text is formatted into scratch space
// first and only copied when it fits.
func (b *Buffer) Printf(format string, args ...any) error {
	var tmp [64]byte
	_, err := b.Write(fmt.Appendf(tmp[:0], format, args...))
	return err
}

// HexInPlace replaces the content with its uppercase hex encoding, without
// separators. The content doubles in size, the check against the capacity
// (2*len+1 including the terminator) is made before any byte is rewritten.
//
// 原地转换：从右向左扩展，先检查容量再写入。
func (b *Buffer) HexInPlace() error {
	n := b.n
	if 2*n+1 > len(b.buf) {
		return ErrBufferTooSmall
	}
	// Walk right to left so every source byte is read before its slot is
	// overwritten.
	for i := n - 1; i >= 0; i-- {
		v := b.buf[i]
		b.buf[2*i] = hextable[v>>4]
		b.buf[2*i+1] = hextable[v&0x0f]
	}
	b.n = 2 * n
	return nil
}

// Copyright 2023 The go-ethereum Authors
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

package log

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

const (
	timeFormat        = "2006-01-02T15:04:05-0700"
	termTimeFormat    = "01-02|15:04:05.000"
	termMsgJust       = 40 // Width the message is padded to when attributes follow
	termCtxMaxPadding = 40 // Values longer than this do not widen the column
	termMaxBytes      = 64 // Byte slices longer than this are shortened
)

var spaces = []byte("                                        ")

// levelColors are the ANSI colours of the level tags.
var levelColors = map[slog.Level]string{
	LevelCrit:  "\x1b[35m",
	LevelError: "\x1b[31m",
	LevelWarn:  "\x1b[33m",
	LevelInfo:  "\x1b[32m",
	LevelDebug: "\x1b[36m",
	LevelTrace: "\x1b[34m",
}

const colorReset = "\x1b[0m"

// TerminalStringer is implemented by values with a shorter rendering for
// terminals than their String method.
type TerminalStringer interface {
	TerminalString() string
}

// format appends the terminal rendering of r to buf.
func (h *TerminalHandler) format(buf []byte, r slog.Record) []byte {
	var color string
	if h.useColor {
		color = levelColors[r.Level]
	}
	if color != "" {
		buf = append(buf, color...)
		buf = append(buf, LevelAlignedString(r.Level)...)
		buf = append(buf, colorReset...)
	} else {
		buf = append(buf, LevelAlignedString(r.Level)...)
	}
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, termTimeFormat)
	buf = append(buf, "] "...)

	msg := escapeMessage(r.Message)
	buf = append(buf, msg...)

	nattrs := len(h.attrs) + r.NumAttrs()
	if nattrs > 0 && len(msg) < termMsgJust {
		buf = append(buf, spaces[:termMsgJust-len(msg)]...)
	}
	n := 0
	write := func(attr slog.Attr) bool {
		n++
		buf = h.appendAttr(buf, attr, color, n == nattrs)
		return true
	}
	for _, attr := range h.attrs {
		write(attr)
	}
	r.Attrs(write)
	return append(buf, '\n')
}

func (h *TerminalHandler) appendAttr(buf []byte, attr slog.Attr, color string, last bool) []byte {
	buf = append(buf, ' ')
	if color != "" {
		buf = append(buf, color...)
		buf = appendEscapeString(buf, attr.Key)
		buf = append(buf, colorReset...)
	} else {
		buf = appendEscapeString(buf, attr.Key)
	}
	buf = append(buf, '=')

	start := len(buf)
	buf = FormatSlogValue(attr.Value, buf)
	width := utf8.RuneCount(buf[start:])

	pad := h.padding[attr.Key]
	if pad < width && width <= termCtxMaxPadding {
		pad = width
		h.padding[attr.Key] = pad
	}
	if !last && pad > width {
		buf = append(buf, spaces[:pad-width]...)
	}
	return buf
}

// FormatSlogValue appends the terminal rendering of v to dst. Integers get
// thousand separators and byte slices are hex encoded.
func FormatSlogValue(v slog.Value, dst []byte) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendEscapeString(dst, v.String())
	case slog.KindInt64:
		return appendInt64(dst, v.Int64())
	case slog.KindUint64:
		return appendUint64(dst, v.Uint64(), false)
	case slog.KindFloat64:
		return strconv.AppendFloat(dst, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(dst, v.Bool())
	case slog.KindDuration:
		return appendEscapeString(dst, v.Duration().String())
	case slog.KindTime:
		return v.Time().AppendFormat(dst, timeFormat)
	}
	value := v.Any()
	if isNil(value) {
		return append(dst, "<nil>"...)
	}
	switch v := value.(type) {
	case *uint256.Int:
		return appendU256(dst, v)
	case []byte:
		return appendHex(dst, v)
	case error:
		return appendEscapeString(dst, v.Error())
	case TerminalStringer:
		return appendEscapeString(dst, v.TerminalString())
	case fmt.Stringer:
		return appendEscapeString(dst, v.String())
	}
	return appendEscapeString(dst, fmt.Sprintf("%+v", value))
}

// appendHex hex encodes b, eliding the middle of long slices.
func appendHex(dst []byte, b []byte) []byte {
	dst = append(dst, "0x"...)
	if len(b) <= termMaxBytes {
		return hex.AppendEncode(dst, b)
	}
	dst = hex.AppendEncode(dst, b[:termMaxBytes/2])
	dst = append(dst, ".."...)
	dst = hex.AppendEncode(dst, b[len(b)-termMaxBytes/2:])
	return fmt.Appendf(dst, "(%d)", len(b))
}

func appendInt64(dst []byte, n int64) []byte {
	if n < 0 {
		return appendUint64(dst, uint64(-n), true)
	}
	return appendUint64(dst, uint64(n), false)
}

// appendUint64 formats n with thousand separators from 100000 upwards.
func appendUint64(dst []byte, n uint64, neg bool) []byte {
	if neg {
		dst = append(dst, '-')
	}
	if n < 100000 {
		return strconv.AppendUint(dst, n, 10)
	}
	return appendGrouped(dst, strconv.FormatUint(n, 10))
}

// FormatLogfmtUint64 formats n with thousand separators.
func FormatLogfmtUint64(n uint64) string {
	return string(appendUint64(nil, n, false))
}

func appendU256(dst []byte, n *uint256.Int) []byte {
	if n.IsUint64() {
		return appendUint64(dst, n.Uint64(), false)
	}
	return appendGrouped(dst, n.Dec())
}

// appendGrouped appends the decimal digits with a comma every three places.
func appendGrouped(dst []byte, digits string) []byte {
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	dst = append(dst, digits[:lead]...)
	for i := lead; i < len(digits); i += 3 {
		dst = append(dst, ',')
		dst = append(dst, digits[i:i+3]...)
	}
	return dst
}

// appendEscapeString appends s, quoted if it contains spaces or '=' and
// escaped if it contains control or non-ASCII characters.
func appendEscapeString(dst []byte, s string) []byte {
	quote := false
	for _, r := range s {
		if r == ' ' || r == '=' {
			quote = true
			continue
		}
		if r <= '"' || r > '~' {
			return strconv.AppendQuote(dst, s)
		}
	}
	if quote {
		dst = append(dst, '"')
		dst = append(dst, s...)
		return append(dst, '"')
	}
	return append(dst, s...)
}

// escapeMessage quotes the message when it holds characters that would
// garble a terminal. Line breaks and tabs are left alone.
func escapeMessage(s string) string {
	for _, r := range s {
		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		if r < ' ' || r > '~' || r == '=' {
			return strconv.Quote(s)
		}
	}
	return s
}

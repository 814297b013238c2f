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

package types

import (
	"errors"
	"fmt"
	"io"

	"github.com/MatrixAINetwork/go-manledger/common/textbuf"
	"github.com/MatrixAINetwork/go-manledger/rlp"
)

var (
	// ErrUnexpectedRoot is returned if the input is not a single RLP list.
	ErrUnexpectedRoot = errors.New("unexpected root")

	// ErrUnexpectedFieldCount is returned if a list of the transaction does
	// not hold exactly the number of fields of its schema.
	ErrUnexpectedFieldCount = errors.New("unexpected field count")

	// ErrUnexpectedFieldType is returned if a field has the wrong RLP kind.
	ErrUnexpectedFieldType = errors.New("unexpected field type")

	// ErrUnexpectedField is returned when formatting a field the schema
	// does not know.
	ErrUnexpectedField = errors.New("unexpected field")

	// ErrInvalidTxType is returned for transaction types that cannot be
	// reviewed and signed on the device.
	ErrInvalidTxType = errors.New("invalid tx type")

	// ErrInvalidTime is returned if the commit time does not fit 64 bits or
	// lies outside the range the device can show.
	ErrInvalidTime = errors.New("invalid time")

	ErrDisplayIdxOutOfRange  = errors.New("display index out of range")
	ErrDisplayPageOutOfRange = errors.New("display page out of range")
)

// fieldError attaches the field name to err. RLP kind mismatches are also
// reported as ErrUnexpectedFieldType.
func fieldError(name string, err error) error {
	if errors.Is(err, rlp.ErrExpectedByte) || errors.Is(err, rlp.ErrExpectedString) || errors.Is(err, rlp.ErrExpectedList) {
		return fmt.Errorf("%w: %s: %w", ErrUnexpectedFieldType, name, err)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// descriptions lists the stable texts reported for transaction errors. The
// first match wins, so wrapping errors are listed before what they wrap.
var descriptions = []struct {
	err  error
	text string
}{
	{ErrUnexpectedRoot, "Unexpected root"},
	{ErrUnexpectedFieldCount, "Unexpected field count"},
	{ErrUnexpectedFieldType, "Unexpected field type"},
	{ErrUnexpectedField, "Unexpected field"},
	{ErrInvalidTxType, "Invalid tx type"},
	{ErrInvalidTime, "Invalid time"},
	{ErrDisplayIdxOutOfRange, "Display index out of range"},
	{ErrDisplayPageOutOfRange, "Display page out of range"},
	{rlp.ErrTooManyFields, "Too many fields"},
	{rlp.ErrInputTooLarge, "Input too large"},
	{rlp.ErrUint256Large, "Value too large"},
	{rlp.ErrCanonSize, "Non canonical size"},
	{rlp.ErrUnsupportedSize, "Unsupported size"},
	{rlp.ErrValueTooLarge, "Value exceeds input"},
	{io.ErrUnexpectedEOF, "Unexpected end of input"},
	{textbuf.ErrBufferTooSmall, "Buffer too small"},
}

// Describe returns a short description of err suitable for a device screen
// or an error reply. Errors outside the transaction taxonomy are reported as
// "Unknown error".
func Describe(err error) string {
	if err == nil {
		return "No error"
	}
	for _, d := range descriptions {
		if errors.Is(err, d.err) {
			return d.text
		}
	}
	return "Unknown error"
}

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

	"github.com/holiman/uint256"

	"github.com/MatrixAINetwork/go-manledger/common/civil"
	"github.com/MatrixAINetwork/go-manledger/common/textbuf"
	"github.com/MatrixAINetwork/go-manledger/rlp"
)

// DisplayCount is the number of fixed items shown for every transaction.
// Each extra recipient adds RecipientFieldCount items after them.
const DisplayCount = 12

var (
	displayFields = [DisplayCount]FieldID{
		FieldNonce,
		FieldGasPrice,
		FieldGasLimit,
		FieldTo,
		FieldValue,
		FieldData,
		FieldV,
		FieldEnterType,
		FieldIsEntrustTx,
		FieldCommitTime,
		FieldExtraTxType,
		FieldExtraLockHeight,
	}
	displayKeys = [DisplayCount]string{
		"Nonce",
		"Gas Price",
		"Gas Limit",
		"To",
		"Value",
		"Data",
		"ChainID",
		"EnterType",
		"IsEntrustTx",
		"CommitTime",
		"TxType",
		"Lock Height",
	}
	recipientKeys = [RecipientFieldCount]string{"[%d] To", "[%d] Amount", "[%d] Payload"}
)

// NumItems returns the number of review items of the transaction.
func (tx *Transaction) NumItems() int {
	return DisplayCount + RecipientFieldCount*tx.nrecip
}

// GetItem renders page page of review item idx into key and val and returns
// the number of pages of the item. Items without content have zero pages,
// their first page is still valid and renders empty.
//
// 显示索引先覆盖 12 个固定字段，再依次覆盖每个接收方的 3 个子字段。
func (tx *Transaction) GetItem(idx, page int, key, val *textbuf.Buffer) (int, error) {
	key.Reset()
	val.Reset()
	if idx < 0 || idx >= tx.NumItems() {
		return 0, ErrDisplayIdxOutOfRange
	}
	if page < 0 {
		return 0, ErrDisplayPageOutOfRange
	}
	var (
		pages int
		err   error
	)
	if idx < DisplayCount {
		if err = key.SetString(displayKeys[idx]); err != nil {
			return 0, err
		}
		pages, err = tx.FormatField(displayFields[idx], val, page)
	} else {
		i := idx - DisplayCount
		pages, err = tx.formatRecipient(i/RecipientFieldCount, i%RecipientFieldCount, key, val, page)
	}
	if err != nil {
		val.Reset()
		return 0, err
	}
	if page >= max(pages, 1) {
		val.Reset()
		return pages, ErrDisplayPageOutOfRange
	}
	return pages, nil
}

// Validate renders every item at page zero with the given buffers and
// returns the first error. A transaction that fails validation must not be
// signed, as the user could not review all of it.
func (tx *Transaction) Validate(key, val *textbuf.Buffer) error {
	for i := 0; i < tx.NumItems(); i++ {
		if _, err := tx.GetItem(i, 0, key, val); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// FormatField renders page page of field id into out and returns the page
// count of the field.
func (tx *Transaction) FormatField(id FieldID, out *textbuf.Buffer, page int) (int, error) {
	out.Reset()
	switch id {
	case FieldNonce, FieldGasPrice, FieldGasLimit, FieldValue, FieldEnterType, FieldIsEntrustTx:
		return formatUint256(tx.data, tx.fields[id], id.String(), out)

	case FieldTo:
		return formatText(tx.data, tx.fields[id], id.String(), out, page)

	case FieldData:
		f := tx.fields[FieldData]
		switch tx.txType.dataFormat() {
		case dataHexIfPresent, dataHex:
			return formatHex(tx.data, f, "data", out, page)
		case dataText:
			return formatText(tx.data, f, "data", out, page)
		default:
			return 0, fmt.Errorf("%w: %v has no data rendering", ErrInvalidTxType, tx.txType)
		}

	case FieldV:
		v, err := rlp.ReadByte(tx.data, tx.fields[FieldV])
		if err != nil {
			return 0, fieldError("chain id", err)
		}
		return 1, out.WriteUint(uint64(v))

	case FieldR, FieldS:
		// Signature fields are placeholders before signing.
		return 0, nil

	case FieldCommitTime:
		var t uint256.Int
		if err := rlp.ReadUint256(tx.data, tx.fields[FieldCommitTime], &t); err != nil {
			return 0, fieldError("commit time", err)
		}
		if !t.IsUint64() {
			return 0, ErrInvalidTime
		}
		if err := civil.FormatUnix(out, t.Uint64()); err != nil {
			if errors.Is(err, civil.ErrOutOfRange) {
				return 0, fmt.Errorf("%w: %w", ErrInvalidTime, err)
			}
			return 0, err
		}
		return 1, nil

	case FieldExtraTxType:
		name, ok := tx.txType.Name()
		if !ok {
			return 0, ErrInvalidTxType
		}
		return 1, out.SetString(name)

	case FieldExtraLockHeight:
		return formatUint256(tx.data, tx.extra[extraLockHeight], "lock height", out)
	}
	return 0, fmt.Errorf("%w: %d", ErrUnexpectedField, id)
}

func (tx *Transaction) formatRecipient(i, sub int, key, val *textbuf.Buffer, page int) (int, error) {
	if err := key.Printf(recipientKeys[sub], i); err != nil {
		return 0, err
	}
	group, err := tx.recipientGroup(i)
	if err != nil {
		return 0, err
	}
	switch sub {
	case 0:
		return formatText(tx.data, group[0], "recipient to", val, page)
	case 1:
		return formatUint256(tx.data, group[1], "recipient amount", val)
	default:
		return formatHex(tx.data, group[2], "recipient payload", val, page)
	}
}

// formatUint256 renders an integer field in decimal. Integers always fit on
// a single page; a value too long for the buffer is an error.
func formatUint256(b []byte, f rlp.Field, name string, out *textbuf.Buffer) (int, error) {
	var z uint256.Int
	if err := rlp.ReadUint256(b, f, &z); err != nil {
		return 0, fieldError(name, err)
	}
	if err := out.SetString(z.Dec()); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return 1, nil
}

// formatText renders a string field verbatim, one buffer length per page.
func formatText(b []byte, f rlp.Field, name string, out *textbuf.Buffer, page int) (int, error) {
	chunk, pages, err := rlp.ReadStringPage(b, f, out.MaxLen(), page)
	if err != nil {
		return 0, fieldError(name, err)
	}
	return pages, out.Set(chunk)
}

// formatHex renders a string field as uppercase hex. Each page carries as
// many bytes as fit the buffer once doubled.
func formatHex(b []byte, f rlp.Field, name string, out *textbuf.Buffer, page int) (int, error) {
	size := out.MaxLen() / 2
	if size == 0 {
		return 0, fmt.Errorf("%s: %w", name, textbuf.ErrBufferTooSmall)
	}
	chunk, pages, err := rlp.ReadStringPage(b, f, size, page)
	if err != nil {
		return 0, fieldError(name, err)
	}
	if err := out.Set(chunk); err != nil {
		return 0, err
	}
	return pages, out.HexInPlace()
}

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

	"github.com/MatrixAINetwork/go-manledger/rlp"
)

// SchemaVersion identifies the transaction layout understood by this package:
// 13 root fields, the extra list nested twice and a variable recipient list.
const SchemaVersion = 3

const (
	RootFieldCount      = 13
	ExtraFieldCount     = 3
	RecipientFieldCount = 3

	// MaxRecipients bounds the number of extra recipients of one transaction.
	MaxRecipients = 10
)

// FieldID identifies a renderable field of a transaction. The values below
// FieldExtra are positions in the root list.
type FieldID uint8

const (
	FieldNonce FieldID = iota
	FieldGasPrice
	FieldGasLimit
	FieldTo
	FieldValue
	FieldData
	FieldV // chain id before signing 签名前为链 ID
	FieldR
	FieldS
	FieldEnterType
	FieldIsEntrustTx
	FieldCommitTime
	FieldExtra // nested list, not shown
	FieldExtraTxType
	FieldExtraLockHeight
)

// Positions in the extra list.
const (
	extraTxType = iota
	extraLockHeight
	extraRecipients
)

// Transaction is the decoded form of a MAN transaction awaiting review.
//
// It does not copy the encoding: all fields are descriptors into the buffer
// given to Decode, which must stay unmodified while the transaction is in
// use. Recipient groups are only parsed when they are rendered.
type Transaction struct {
	data       []byte
	root       rlp.Field
	fields     [RootFieldCount]rlp.Field
	extra      [ExtraFieldCount]rlp.Field
	recipients [MaxRecipients]rlp.Field
	nrecip     int
	txType     TxType
}

// Parse decodes a transaction from b.
func Parse(b []byte) (*Transaction, error) {
	tx := new(Transaction)
	if err := tx.Decode(b); err != nil {
		return nil, err
	}
	return tx, nil
}

// Decode replaces the content of tx with the transaction encoded in b.
// On failure tx is left empty.
func (tx *Transaction) Decode(b []byte) error {
	*tx = Transaction{}
	if err := tx.decode(b); err != nil {
		*tx = Transaction{}
		return err
	}
	return nil
}

func (tx *Transaction) decode(b []byte) error {
	// The transaction is exactly one list.
	var root [1]rlp.Field
	n, err := rlp.ParseFields(b, 0, len(b), root[:])
	if err != nil {
		if errors.Is(err, rlp.ErrTooManyFields) {
			return fmt.Errorf("%w: trailing data after transaction: %w", ErrUnexpectedRoot, err)
		}
		return err
	}
	if n != 1 || root[0].Kind != rlp.List {
		return ErrUnexpectedRoot
	}
	tx.root = root[0]

	if err := parseExact(b, tx.root, tx.fields[:], "root"); err != nil {
		return err
	}
	// The extra field wraps the extra list in one more list.
	// extra 字段多包了一层列表。
	var holder [1]rlp.Field
	if err := parseExact(b, tx.fields[FieldExtra], holder[:], "extra"); err != nil {
		return err
	}
	if err := parseExact(b, holder[0], tx.extra[:], "extra list"); err != nil {
		return err
	}

	var code uint256.Int
	if err := rlp.ReadUint256(b, tx.extra[extraTxType], &code); err != nil {
		return fieldError("tx type", err)
	}
	// Only the low byte of the code selects the type.
	tx.txType = TxType(code.Uint64())
	if !tx.txType.Displayable() {
		return fmt.Errorf("%w: %s", ErrInvalidTxType, code.Dec())
	}

	n, err = rlp.ParseList(b, tx.extra[extraRecipients], tx.recipients[:])
	switch {
	case errors.Is(err, rlp.ErrTooManyFields):
		return fmt.Errorf("%w: more than %d recipients: %w", ErrUnexpectedFieldCount, MaxRecipients, err)
	case err != nil:
		return fieldError("recipients", err)
	}
	tx.nrecip = n
	tx.data = b
	return nil
}

// parseExact parses list field f into dst and requires it to hold exactly
// len(dst) fields.
func parseExact(b []byte, f rlp.Field, dst []rlp.Field, what string) error {
	n, err := rlp.ParseList(b, f, dst)
	switch {
	case errors.Is(err, rlp.ErrTooManyFields):
		return fmt.Errorf("%w: %s has more than %d fields: %w", ErrUnexpectedFieldCount, what, len(dst), err)
	case err != nil:
		return fieldError(what, err)
	case n != len(dst):
		return fmt.Errorf("%w: %s has %d fields, want %d", ErrUnexpectedFieldCount, what, n, len(dst))
	}
	return nil
}

// TxType returns the transaction type.
func (tx *Transaction) TxType() TxType { return tx.txType }

// RecipientCount returns the number of extra recipients.
func (tx *Transaction) RecipientCount() int { return tx.nrecip }

// Raw returns the encoding the transaction was decoded from.
func (tx *Transaction) Raw() []byte { return tx.data }

// Uint256 decodes an integer valued root field.
func (tx *Transaction) Uint256(id FieldID) (*uint256.Int, error) {
	f, err := tx.rootField(id)
	if err != nil {
		return nil, err
	}
	z := new(uint256.Int)
	if err := rlp.ReadUint256(tx.data, f, z); err != nil {
		return nil, fieldError(fieldNames[id], err)
	}
	return z, nil
}

// Bytes returns the payload of a string valued root field. The slice aliases
// the transaction encoding.
func (tx *Transaction) Bytes(id FieldID) ([]byte, error) {
	f, err := tx.rootField(id)
	if err != nil {
		return nil, err
	}
	b, err := rlp.ReadBytes(tx.data, f)
	if err != nil {
		return nil, fieldError(fieldNames[id], err)
	}
	return b, nil
}

func (tx *Transaction) rootField(id FieldID) (rlp.Field, error) {
	if id >= FieldExtra {
		return rlp.Field{}, fmt.Errorf("%w: %d", ErrUnexpectedField, id)
	}
	return tx.fields[id], nil
}

// Recipient is one decoded entry of the extra recipient list.
type Recipient struct {
	To      []byte
	Amount  *uint256.Int
	Payload []byte
}

// Recipient decodes the i'th extra recipient.
func (tx *Transaction) Recipient(i int) (*Recipient, error) {
	group, err := tx.recipientGroup(i)
	if err != nil {
		return nil, err
	}
	r := &Recipient{Amount: new(uint256.Int)}
	if r.To, err = rlp.ReadBytes(tx.data, group[0]); err != nil {
		return nil, fieldError("recipient to", err)
	}
	if err = rlp.ReadUint256(tx.data, group[1], r.Amount); err != nil {
		return nil, fieldError("recipient amount", err)
	}
	if r.Payload, err = rlp.ReadBytes(tx.data, group[2]); err != nil {
		return nil, fieldError("recipient payload", err)
	}
	return r, nil
}

func (tx *Transaction) recipientGroup(i int) ([RecipientFieldCount]rlp.Field, error) {
	var group [RecipientFieldCount]rlp.Field
	if i < 0 || i >= tx.nrecip {
		return group, ErrDisplayIdxOutOfRange
	}
	err := parseExact(tx.data, tx.recipients[i], group[:], "recipient")
	return group, err
}

var fieldNames = [...]string{
	FieldNonce:           "nonce",
	FieldGasPrice:        "gas price",
	FieldGasLimit:        "gas limit",
	FieldTo:              "to",
	FieldValue:           "value",
	FieldData:            "data",
	FieldV:               "chain id",
	FieldR:               "r",
	FieldS:               "s",
	FieldEnterType:       "enter type",
	FieldIsEntrustTx:     "is entrust",
	FieldCommitTime:      "commit time",
	FieldExtra:           "extra",
	FieldExtraTxType:     "tx type",
	FieldExtraLockHeight: "lock height",
}

func (id FieldID) String() string {
	if int(id) < len(fieldNames) {
		return fieldNames[id]
	}
	return fmt.Sprintf("field(%d)", uint8(id))
}

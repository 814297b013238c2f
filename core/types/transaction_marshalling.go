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

	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
	"github.com/MatrixAINetwork/go-manledger/rlp"
)

var (
	errBothData      = errors.New("data and data_text are mutually exclusive")
	errChainIDRange  = errors.New("chain id must be in range 1..127")
	errTooManyRecips = fmt.Errorf("more than %d recipients", MaxRecipients)
)

// TxData is the unsigned content of a transaction as written by hand or
// loaded from a TOML file. Integers accept decimal or 0x-prefixed hex text.
type TxData struct {
	Nonce       uint256.Int     `toml:"nonce"`
	GasPrice    uint256.Int     `toml:"gas_price"`
	Gas         uint256.Int     `toml:"gas"`
	To          string          `toml:"to"`
	Value       uint256.Int     `toml:"value"`
	Data        hexutil.Bytes   `toml:"data,omitempty"`
	DataText    string          `toml:"data_text,omitempty"`
	ChainID     uint64          `toml:"chain_id"`
	EnterType   uint256.Int     `toml:"enter_type"`
	IsEntrustTx uint256.Int     `toml:"is_entrust_tx"`
	CommitTime  uint256.Int     `toml:"commit_time"`
	TxType      TxType          `toml:"tx_type"`
	LockHeight  uint256.Int     `toml:"lock_height"`
	Recipients  []RecipientData `toml:"recipients,omitempty"`
}

// RecipientData is one extra recipient of a TxData.
type RecipientData struct {
	To      string        `toml:"to"`
	Amount  uint256.Int   `toml:"amount"`
	Payload hexutil.Bytes `toml:"payload,omitempty"`
}

// payload returns the data field content, taken from either Data or DataText.
func (d *TxData) payload() ([]byte, error) {
	if len(d.Data) > 0 && d.DataText != "" {
		return nil, errBothData
	}
	if d.DataText != "" {
		return []byte(d.DataText), nil
	}
	return d.Data, nil
}

// Encode returns the canonical RLP encoding of the unsigned transaction. The
// signature fields carry the chain id and two empty strings.
func (d *TxData) Encode() ([]byte, error) {
	data, err := d.payload()
	if err != nil {
		return nil, err
	}
	if d.ChainID == 0 || d.ChainID >= 0x80 {
		return nil, errChainIDRange
	}
	if len(d.Recipients) > MaxRecipients {
		return nil, errTooManyRecips
	}
	w := new(rlp.EncodeBuffer)
	root := w.List()
	w.WriteUint256(&d.Nonce)
	w.WriteUint256(&d.GasPrice)
	w.WriteUint256(&d.Gas)
	w.WriteString(d.To)
	w.WriteUint256(&d.Value)
	w.WriteBytes(data)
	w.WriteUint64(d.ChainID)
	w.WriteBytes(nil)
	w.WriteBytes(nil)
	w.WriteUint256(&d.EnterType)
	w.WriteUint256(&d.IsEntrustTx)
	w.WriteUint256(&d.CommitTime)

	holder := w.List()
	extra := w.List()
	w.WriteUint64(uint64(d.TxType))
	w.WriteUint256(&d.LockHeight)
	recips := w.List()
	for i := range d.Recipients {
		r := &d.Recipients[i]
		l := w.List()
		w.WriteString(r.To)
		w.WriteUint256(&r.Amount)
		w.WriteBytes(r.Payload)
		w.ListEnd(l)
	}
	w.ListEnd(recips)
	w.ListEnd(extra)
	w.ListEnd(holder)
	w.ListEnd(root)

	enc := w.Bytes()
	if len(enc) > rlp.MaxInputSize {
		return nil, rlp.ErrInputTooLarge
	}
	return enc, nil
}

// TxDataOf recovers the description of a decoded transaction. Text payloads
// are returned in DataText, binary ones in Data.
func TxDataOf(tx *Transaction) (*TxData, error) {
	d := new(TxData)
	ints := []struct {
		id  FieldID
		dst *uint256.Int
	}{
		{FieldNonce, &d.Nonce},
		{FieldGasPrice, &d.GasPrice},
		{FieldGasLimit, &d.Gas},
		{FieldValue, &d.Value},
		{FieldEnterType, &d.EnterType},
		{FieldIsEntrustTx, &d.IsEntrustTx},
		{FieldCommitTime, &d.CommitTime},
	}
	for _, f := range ints {
		z, err := tx.Uint256(f.id)
		if err != nil {
			return nil, err
		}
		f.dst.Set(z)
	}
	to, err := tx.Bytes(FieldTo)
	if err != nil {
		return nil, err
	}
	d.To = string(to)

	data, err := tx.Bytes(FieldData)
	if err != nil {
		return nil, err
	}
	if tx.txType.dataFormat() == dataText {
		d.DataText = string(data)
	} else if len(data) > 0 {
		d.Data = append(hexutil.Bytes{}, data...)
	}
	v, err := rlp.ReadByte(tx.data, tx.fields[FieldV])
	if err != nil {
		return nil, fieldError("chain id", err)
	}
	d.ChainID = uint64(v)
	d.TxType = tx.txType
	if err := rlp.ReadUint256(tx.data, tx.extra[extraLockHeight], &d.LockHeight); err != nil {
		return nil, fieldError("lock height", err)
	}
	for i := 0; i < tx.nrecip; i++ {
		r, err := tx.Recipient(i)
		if err != nil {
			return nil, err
		}
		rd := RecipientData{To: string(r.To), Amount: *r.Amount}
		if len(r.Payload) > 0 {
			rd.Payload = append(hexutil.Bytes{}, r.Payload...)
		}
		d.Recipients = append(d.Recipients, rd)
	}
	return d, nil
}

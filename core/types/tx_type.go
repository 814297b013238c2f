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

import "fmt"

// TxType is the MAN transaction type carried in the first extra field.
// It selects the semantics of the transaction and how its data is shown.
// The field is a 256-bit integer on the wire, and only its low byte is
// kept, so 0x105 decodes as AuthorizeTxType.
type TxType uint8

// Transaction types defined by the MAN protocol.
const (
	NormalTxType         TxType = 0
	BroadcastTxType      TxType = 1
	MinerRewardTxType    TxType = 2
	ScheduledTxType      TxType = 3
	RevertTxType         TxType = 4
	AuthorizeTxType      TxType = 5
	CancelAuthTxType     TxType = 6
	CreateCurrencyTxType TxType = 9
	VerifierRewardTxType TxType = 10
	InterestRewardTxType TxType = 11
	TxFeeRewardTxType    TxType = 12
	LotteryRewardTxType  TxType = 13
	SetBlacklistTxType   TxType = 14
	SuperBlockTxType     TxType = 122
)

// dataFormat selects how the data field of a transaction is rendered.
type dataFormat uint8

const (
	dataUndisplayable dataFormat = iota
	dataHexIfPresent             // optional payload, hex dump when non-empty
	dataText                     // JSON payload shown verbatim
	dataHex                      // binary payload, hex dump
)

// txTypeInfo describes the types a user can review on the device. Other
// types are produced by the chain itself and are never signed by users.
var txTypeInfo = map[TxType]struct {
	name string
	data dataFormat
}{
	NormalTxType:         {"Normal", dataHexIfPresent},
	ScheduledTxType:      {"Scheduled", dataHexIfPresent},
	RevertTxType:         {"Revert", dataHex},
	AuthorizeTxType:      {"Authorize", dataText},
	CancelAuthTxType:     {"Cancel Auth", dataText},
	CreateCurrencyTxType: {"Create curr", dataText},
}

// Displayable reports whether transactions of this type can be reviewed.
func (t TxType) Displayable() bool {
	_, ok := txTypeInfo[t]
	return ok
}

// Name returns the display name of the type, or false for types that
// cannot be reviewed.
func (t TxType) Name() (string, bool) {
	info, ok := txTypeInfo[t]
	return info.name, ok
}

func (t TxType) String() string {
	if name, ok := t.Name(); ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

func (t TxType) dataFormat() dataFormat {
	return txTypeInfo[t].data
}

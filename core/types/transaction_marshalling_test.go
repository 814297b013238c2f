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
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/naoina/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
	"github.com/MatrixAINetwork/go-manledger/rlp"
)

const goldenTOML = `
nonce = 1
gas_price = "18000000000"
gas = 21000
to = "MAN.2m7abdAX7eUfrrxhSRRtMPz54bFLp"
value = "0xde0b6b3a7640000"
chain_id = 1
enter_type = 0
is_entrust_tx = 0
commit_time = 1577836800
tx_type = 0
lock_height = 0

[[recipients]]
to = "MAN.c2sjebaSCcFe2hNAYaiDFbgYicNk"
amount = "500000000000000000"

[[recipients]]
to = "MAN.cva5Dj9gybNxnfdQPPMKHQMAnkA5"
amount = 7
payload = "0xdead"
`

func goldenTxData() *TxData {
	d := &TxData{
		To:      "MAN.2m7abdAX7eUfrrxhSRRtMPz54bFLp",
		ChainID: 1,
		TxType:  NormalTxType,
		Recipients: []RecipientData{
			{To: "MAN.c2sjebaSCcFe2hNAYaiDFbgYicNk", Amount: *uint256.NewInt(500000000000000000)},
			{To: "MAN.cva5Dj9gybNxnfdQPPMKHQMAnkA5", Amount: *uint256.NewInt(7), Payload: hexutil.Bytes{0xde, 0xad}},
		},
	}
	d.Nonce.SetUint64(1)
	d.GasPrice.SetUint64(18000000000)
	d.Gas.SetUint64(21000)
	d.Value.SetUint64(1000000000000000000)
	d.CommitTime.SetUint64(1577836800)
	return d
}

func TestEncodeGolden(t *testing.T) {
	enc, err := goldenTxData().Encode()
	require.NoError(t, err)
	assert.Equal(t, goldenTx, hexutil.Encode(enc))
}

func TestDecodeTOML(t *testing.T) {
	var d TxData
	require.NoError(t, toml.NewDecoder(strings.NewReader(goldenTOML)).Decode(&d))
	assert.Equal(t, goldenTxData(), &d)

	enc, err := d.Encode()
	require.NoError(t, err)
	assert.Equal(t, goldenTx, hexutil.Encode(enc))
}

func TestTxDataRoundTrip(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(goldenTx))
	require.NoError(t, err)
	d, err := TxDataOf(tx)
	require.NoError(t, err)
	assert.Equal(t, goldenTxData(), d)

	auth := goldenTxData()
	auth.TxType = AuthorizeTxType
	auth.DataText = `{"EntrustList":[]}`
	auth.Recipients = nil
	enc, err := auth.Encode()
	require.NoError(t, err)
	tx, err = Parse(enc)
	require.NoError(t, err)
	d, err = TxDataOf(tx)
	require.NoError(t, err)
	assert.Equal(t, auth, d)
}

func TestEncodeErrors(t *testing.T) {
	d := goldenTxData()
	d.Data = hexutil.Bytes{1}
	d.DataText = "x"
	_, err := d.Encode()
	assert.Equal(t, errBothData, err)

	for _, id := range []uint64{0, 0x80, 1000} {
		d = goldenTxData()
		d.ChainID = id
		_, err = d.Encode()
		assert.Equal(t, errChainIDRange, err, "chain id %d", id)
	}

	d = goldenTxData()
	d.Recipients = make([]RecipientData, MaxRecipients+1)
	_, err = d.Encode()
	assert.Equal(t, errTooManyRecips, err)

	d = goldenTxData()
	d.Data = make(hexutil.Bytes, rlp.MaxInputSize)
	_, err = d.Encode()
	assert.Equal(t, rlp.ErrInputTooLarge, err)
}

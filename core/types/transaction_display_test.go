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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
	"github.com/MatrixAINetwork/go-manledger/common/textbuf"
	"github.com/MatrixAINetwork/go-manledger/rlp"
)

type item struct {
	key   string
	val   string
	pages int
}

func getItem(t *testing.T, tx *Transaction, idx, page, valCap int) (item, error) {
	t.Helper()
	key, val := textbuf.New(32), textbuf.New(valCap)
	pages, err := tx.GetItem(idx, page, key, val)
	return item{key.String(), val.String(), pages}, err
}

// displayIndex returns the review position of a root field.
func displayIndex(t *testing.T, f FieldID) int {
	t.Helper()
	for i, d := range displayFields {
		if d == f {
			return i
		}
	}
	t.Fatalf("field %v is not displayed", f)
	return -1
}

func TestDisplayIndex(t *testing.T) {
	assert.Equal(t, 4, displayIndex(t, FieldValue))
	assert.Equal(t, 6, displayIndex(t, FieldV))
	assert.Equal(t, 9, displayIndex(t, FieldCommitTime))
	assert.Equal(t, 11, displayIndex(t, FieldExtraLockHeight))
}

func TestGetItemGolden(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(goldenTx))
	require.NoError(t, err)
	require.Equal(t, 18, tx.NumItems())

	want := []item{
		{"Nonce", "1", 1},
		{"Gas Price", "18000000000", 1},
		{"Gas Limit", "21000", 1},
		{"To", "MAN.2m7abdAX7eUfrrxhSRRtMPz54bFLp", 1},
		{"Value", "1000000000000000000", 1},
		{"Data", "", 0},
		{"ChainID", "1", 1},
		{"EnterType", "0", 1},
		{"IsEntrustTx", "0", 1},
		{"CommitTime", "01Jan2020 00:00:00", 1},
		{"TxType", "Normal", 1},
		{"Lock Height", "0", 1},
		{"[0] To", "MAN.c2sjebaSCcFe2hNAYaiDFbgYicNk", 1},
		{"[0] Amount", "500000000000000000", 1},
		{"[0] Payload", "", 0},
		{"[1] To", "MAN.cva5Dj9gybNxnfdQPPMKHQMAnkA5", 1},
		{"[1] Amount", "7", 1},
		{"[1] Payload", "DEAD", 1},
	}
	for idx, w := range want {
		have, err := getItem(t, tx, idx, 0, 64)
		require.NoError(t, err, "item %d", idx)
		assert.Equal(t, w, have, "item %d", idx)
	}
}

func TestGetItemIndexOutOfRange(t *testing.T) {
	recipient := []any{"MAN.c2sjebaSCcFe2hNAYaiDFbgYicNk", 1, []byte{}}
	for _, n := range []int{0, 1, MaxRecipients} {
		list := make([]any, n)
		for i := range list {
			list[i] = recipient
		}
		tx, err := Parse(encodeItems(testRoot(testExtra(0, list...))))
		require.NoError(t, err)

		for _, idx := range []int{-1, tx.NumItems(), tx.NumItems() + 1, 1000} {
			have, err := getItem(t, tx, idx, 0, 64)
			assert.ErrorIs(t, err, ErrDisplayIdxOutOfRange, "%d recipients, item %d", n, idx)
			assert.Equal(t, item{}, have)
		}
		_, err = getItem(t, tx, tx.NumItems()-1, 0, 64)
		assert.NoError(t, err)
	}
}

func TestGetItemPageOutOfRange(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(goldenTx))
	require.NoError(t, err)

	have, err := getItem(t, tx, 0, 1, 64)
	assert.ErrorIs(t, err, ErrDisplayPageOutOfRange)
	assert.Equal(t, 1, have.pages)
	assert.Empty(t, have.val)

	// Items without content still have a valid first page.
	_, err = getItem(t, tx, 5, 0, 64)
	assert.NoError(t, err)
	_, err = getItem(t, tx, 5, 1, 64)
	assert.ErrorIs(t, err, ErrDisplayPageOutOfRange)

	_, err = getItem(t, tx, 0, -1, 64)
	assert.ErrorIs(t, err, ErrDisplayPageOutOfRange)
}

func TestDataRendering(t *testing.T) {
	json := `{"EntrustList":[{"EntrustAddres":"MAN.c2sjebaSCcFe2hNAYaiDFbgYicNk"}]}`
	tests := []struct {
		typ  TxType
		data []byte
		want string
	}{
		{NormalTxType, nil, ""},
		{NormalTxType, []byte{0x01, 0xab}, "01AB"},
		{ScheduledTxType, []byte{0xff}, "FF"},
		{RevertTxType, []byte("hash"), "68617368"},
		{AuthorizeTxType, []byte(json), json},
		{CancelAuthTxType, []byte(`{"x":1}`), `{"x":1}`},
		{CreateCurrencyTxType, []byte("CUR"), "CUR"},
	}
	for _, tt := range tests {
		root := testRoot(testExtra(int(tt.typ)))
		root[FieldData] = tt.data
		if tt.data == nil {
			root[FieldData] = []byte{}
		}
		tx, err := Parse(encodeItems(root))
		require.NoError(t, err)

		have, err := getItem(t, tx, displayIndex(t, FieldData), 0, 256)
		require.NoError(t, err, "type %v", tt.typ)
		assert.Equal(t, "Data", have.key)
		assert.Equal(t, tt.want, have.val, "type %v", tt.typ)

		name, _ := tt.typ.Name()
		have, err = getItem(t, tx, 10, 0, 64)
		require.NoError(t, err)
		assert.Equal(t, name, have.val)
	}
}

func TestDataPaging(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxy" // 25 bytes
	root := testRoot(testExtra(int(AuthorizeTxType)))
	root[FieldData] = []byte(text)
	tx, err := Parse(encodeItems(root))
	require.NoError(t, err)

	// 10 characters fit a buffer of capacity 11.
	var got []string
	for page := 0; ; page++ {
		have, err := getItem(t, tx, displayIndex(t, FieldData), page, 11)
		if page == have.pages && page > 0 {
			assert.ErrorIs(t, err, ErrDisplayPageOutOfRange)
			break
		}
		require.NoError(t, err)
		assert.Equal(t, 3, have.pages)
		got = append(got, have.val)
	}
	assert.Equal(t, []string{"abcdefghij", "klmnopqrst", "uvwxy"}, got)

	// Hex pages carry (cap-1)/2 bytes.
	root = testRoot(testExtra(int(RevertTxType)))
	root[FieldData] = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tx, err = Parse(encodeItems(root))
	require.NoError(t, err)
	got = got[:0]
	for page := 0; page < 3; page++ {
		have, err := getItem(t, tx, displayIndex(t, FieldData), page, 11)
		require.NoError(t, err)
		assert.Equal(t, 3, have.pages)
		got = append(got, have.val)
	}
	assert.Equal(t, []string{"0001020304", "0506070809", "0A"}, got)
}

func TestTextPagingTo(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(goldenTx))
	require.NoError(t, err)
	to := "MAN.2m7abdAX7eUfrrxhSRRtMPz54bFLp"

	var b strings.Builder
	first, err := getItem(t, tx, displayIndex(t, FieldTo), 0, 8)
	require.NoError(t, err)
	for page := 0; page < first.pages; page++ {
		have, err := getItem(t, tx, displayIndex(t, FieldTo), page, 8)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(have.val), 7)
		b.WriteString(have.val)
	}
	assert.Equal(t, (len(to)+6)/7, first.pages)
	assert.Equal(t, to, b.String())
}

func TestCommitTime(t *testing.T) {
	tests := []struct {
		time any
		want string
		err  error
	}{
		{1577836800, "01Jan2020 00:00:00", nil},
		{0, "01Jan1970 00:00:00", nil},
		{6311433599, "31Dec2169 23:59:59", nil},
		{6311433600, "", ErrInvalidTime},
		{uint64(1) << 63, "", ErrInvalidTime},
		{new(uint256.Int).Lsh(uint256.NewInt(1), 64), "", ErrInvalidTime},  // limb 1 set
		{new(uint256.Int).Lsh(uint256.NewInt(1), 128), "", ErrInvalidTime}, // limb 2 set
		{new(uint256.Int).Lsh(uint256.NewInt(1), 255), "", ErrInvalidTime}, // limb 3 set
	}
	for _, tt := range tests {
		root := testRoot(testExtra(0))
		root[FieldCommitTime] = tt.time
		tx, err := Parse(encodeItems(root))
		require.NoError(t, err)

		have, err := getItem(t, tx, displayIndex(t, FieldCommitTime), 0, 64)
		if tt.err != nil {
			assert.Equal(t, "CommitTime", have.key)
			assert.ErrorIs(t, err, tt.err, "time %v", tt.time)
			assert.Empty(t, have.val)
			assert.ErrorIs(t, tx.Validate(textbuf.New(32), textbuf.New(64)), tt.err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, have.val)
	}
}

func TestIntegerRendering(t *testing.T) {
	maxU256 := new(uint256.Int).SetAllOne()
	root := testRoot(testExtra(0))
	root[FieldValue] = maxU256
	tx, err := Parse(encodeItems(root))
	require.NoError(t, err)

	have, err := getItem(t, tx, displayIndex(t, FieldValue), 0, 100)
	require.NoError(t, err)
	assert.Equal(t, maxU256.Dec(), have.val)
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457584007913129639935", have.val)

	// Integers never span pages, a value wider than the buffer is an error.
	_, err = getItem(t, tx, displayIndex(t, FieldValue), 0, 32)
	assert.ErrorIs(t, err, textbuf.ErrBufferTooSmall)

	// More than 32 bytes do not fit 256 bits.
	root[FieldValue] = make([]byte, 33)
	tx, err = Parse(encodeItems(root))
	require.NoError(t, err)
	_, err = getItem(t, tx, displayIndex(t, FieldValue), 0, 100)
	assert.ErrorIs(t, err, rlp.ErrUint256Large)
}

func TestChainIDMustBeByte(t *testing.T) {
	root := testRoot(testExtra(0))
	root[FieldV] = 0 // encodes as an empty string
	tx, err := Parse(encodeItems(root))
	require.NoError(t, err)
	_, err = getItem(t, tx, displayIndex(t, FieldV), 0, 64)
	assert.ErrorIs(t, err, ErrUnexpectedFieldType)
}

func TestMalformedRecipient(t *testing.T) {
	// Recipient groups are checked when rendered, not when parsed.
	tx, err := Parse(encodeItems(testRoot(testExtra(0, []any{"MAN.x", 1}))))
	require.NoError(t, err)
	assert.Equal(t, 15, tx.NumItems())

	have, err := getItem(t, tx, 12, 0, 64)
	assert.ErrorIs(t, err, ErrUnexpectedFieldCount)
	assert.Empty(t, have.val)

	err = tx.Validate(textbuf.New(32), textbuf.New(64))
	assert.ErrorIs(t, err, ErrUnexpectedFieldCount)
	assert.Contains(t, err.Error(), "item 12")

	tx, err = Parse(encodeItems(testRoot(testExtra(0, "MAN.x"))))
	require.NoError(t, err)
	_, err = getItem(t, tx, 13, 0, 64)
	assert.ErrorIs(t, err, ErrUnexpectedFieldType)
}

func TestValidate(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(goldenTx))
	require.NoError(t, err)
	assert.NoError(t, tx.Validate(textbuf.New(32), textbuf.New(64)))

	// A value buffer too small for the gas price blocks validation.
	err = tx.Validate(textbuf.New(32), textbuf.New(8))
	assert.ErrorIs(t, err, textbuf.ErrBufferTooSmall)
	assert.Contains(t, err.Error(), "item 1:")
}

func TestHexTooSmall(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(goldenTx))
	require.NoError(t, err)
	// A buffer of capacity 2 cannot hold a single hex byte.
	_, err = getItem(t, tx, 17, 0, 2)
	assert.ErrorIs(t, err, textbuf.ErrBufferTooSmall)
}

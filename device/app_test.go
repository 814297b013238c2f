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

package device

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/accounts/hdwallet"
	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
	"github.com/MatrixAINetwork/go-manledger/core/types"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testAddress  = "MAN.2aM634aBrNKRaqK64gSNjFNvfGchM"
	testTx       = "0xf89a01850430e23400825208a14d414e2e326d3761626441583765556672727868535252744d507a353462464c70880de0b6b3a7640000800180808080845e0be100f858f8568080f852eba04d414e2e6332736a656261534363466532684e41596169444662675969634e6b8806f05b59d3b2000080e5a04d414e2e63766135446a396779624e786e66645150504d4b48514d416e6b41350782dead"
)

// recorder is a Display remembering the last screen.
type recorder struct {
	title, key, value string
	frames            int
}

func (r *recorder) Render(title, key, value string) {
	r.title, r.key, r.value = title, key, value
	r.frames++
}

type testApp struct {
	*App
	t       *testing.T
	screen  *recorder
	wallet  *hdwallet.Wallet
	account accounts.Account
}

func newTestApp(t *testing.T, config Config) *testApp {
	t.Helper()
	w, err := hdwallet.NewFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	account, err := w.Derive(accounts.DefaultBaseDerivationPath, false)
	require.NoError(t, err)

	screen := new(recorder)
	app, err := NewApp(config, w, screen)
	require.NoError(t, err)
	return &testApp{App: app, t: t, screen: screen, wallet: w, account: account}
}

func apdu(t *testing.T, ins Opcode, p1 byte, data []byte) []byte {
	t.Helper()
	b, err := Command{Class: CLA, Ins: ins, P1: p1, Data: data}.Bytes()
	require.NoError(t, err)
	return b
}

// exchange sends a command that must be answered immediately.
func (a *testApp) exchange(ins Opcode, p1 byte, data []byte) Reply {
	a.t.Helper()
	out, deferred := a.Handle(apdu(a.t, ins, p1, data))
	require.False(a.t, deferred, "reply deferred")
	reply, err := ParseReply(out)
	require.NoError(a.t, err)
	return reply
}

// sendTx streams a transaction in maximal chunks and returns whether the
// final reply was deferred along with any immediate reply.
func (a *testApp) sendTx(raw []byte) (Reply, bool) {
	a.t.Helper()
	require.Equal(a.t, SwOK, a.exchange(OpSign, P1SignInit, accounts.DefaultBaseDerivationPath.Bytes()).Status)
	for len(raw) > MaxChunkSize {
		require.Equal(a.t, SwOK, a.exchange(OpSign, P1SignAdd, raw[:MaxChunkSize]).Status)
		raw = raw[MaxChunkSize:]
	}
	out, deferred := a.Handle(apdu(a.t, OpSign, P1SignLast, raw))
	if deferred {
		return Reply{}, true
	}
	reply, err := ParseReply(out)
	require.NoError(a.t, err)
	return reply, false
}

// press delivers a button press that must not decide the review.
func (a *testApp) press(b Button) {
	a.t.Helper()
	_, decided := a.Press(b)
	require.False(a.t, decided)
}

// decide presses both buttons and returns the deferred reply.
func (a *testApp) decide() Reply {
	a.t.Helper()
	out, decided := a.Press(ButtonBoth)
	require.True(a.t, decided)
	reply, err := ParseReply(out)
	require.NoError(a.t, err)
	return reply
}

// rightUntil presses right until the screen shows key.
func (a *testApp) rightUntil(key string) {
	a.t.Helper()
	for i := 0; i < 100 && a.screen.key != key; i++ {
		a.press(ButtonRight)
	}
	require.Equal(a.t, key, a.screen.key)
}

func TestGetVersion(t *testing.T) {
	app := newTestApp(t, DefaultConfig)
	reply := app.exchange(OpGetVersion, 0, nil)
	assert.Equal(t, SwOK, reply.Status)
	assert.Equal(t, []byte{0, 0, 9, 3, 0}, reply.Data)

	app = newTestApp(t, Config{Target: "nanox", TestMode: true, Locked: true})
	assert.Equal(t, []byte{1, 0, 9, 3, 1}, app.exchange(OpGetVersion, 0, nil).Data)
	assert.Equal(t, "TEST!", app.screen.key)
	assert.Equal(t, NanoX, app.Target())
}

func TestUnknownTarget(t *testing.T) {
	_, err := NewApp(Config{Target: "blue"}, nil, new(recorder))
	assert.Error(t, err)
}

func TestMalformedCommands(t *testing.T) {
	app := newTestApp(t, DefaultConfig)

	check := func(raw []byte, want StatusWord) {
		t.Helper()
		out, deferred := app.Handle(raw)
		require.False(t, deferred)
		reply, err := ParseReply(out)
		require.NoError(t, err)
		assert.Equal(t, want, reply.Status, "%x", raw)
	}
	check([]byte{CLA, 0x00}, SwWrongLength)
	check([]byte{CLA, 0x00, 0, 0, 3, 1}, SwWrongLength)
	check([]byte{0xe0, 0x00, 0, 0, 0}, SwClaNotSupported)
	check([]byte{CLA, 0x06, 0, 0, 0}, SwInsNotSupported)
	check(apdu(t, OpSign, 3, nil), SwWrongP1P2)
	check(apdu(t, OpGetAddress, 2, accounts.DefaultBaseDerivationPath.Bytes()), SwWrongP1P2)
	check(apdu(t, OpGetAddress, 0, []byte{0}), SwDataInvalid)
	check(apdu(t, OpGetAddress, 0, append(accounts.DefaultBaseDerivationPath.Bytes(), 0)), SwDataInvalid)
	check(apdu(t, OpSign, P1SignInit, []byte{11}), SwDataInvalid)
}

func TestGetAddress(t *testing.T) {
	app := newTestApp(t, DefaultConfig)
	pub, err := app.wallet.PublicKey(accounts.DefaultBaseDerivationPath)
	require.NoError(t, err)

	reply := app.exchange(OpGetAddress, P1AddressSilent, accounts.DefaultBaseDerivationPath.Bytes())
	require.Equal(t, SwOK, reply.Status)
	assert.Equal(t, pub, reply.Data[:65])
	assert.Equal(t, testAddress, string(reply.Data[65:]))
}

func TestGetAddressConfirm(t *testing.T) {
	app := newTestApp(t, DefaultConfig)
	path := accounts.DefaultBaseDerivationPath.Bytes()

	_, deferred := app.Handle(apdu(t, OpGetAddress, P1AddressConfirm, path))
	require.True(t, deferred)
	assert.Equal(t, "Address 1/1", app.screen.title)
	assert.Equal(t, "Address", app.screen.key)
	assert.Equal(t, testAddress, app.screen.value)

	// Other key operations wait for the decision.
	assert.Equal(t, SwCommandNotAllowed, app.exchange(OpGetAddress, P1AddressSilent, path).Status)

	app.press(ButtonBoth) // ignored on review items
	app.press(ButtonRight)
	assert.Equal(t, "Approve", app.screen.key)
	reply := app.decide()
	assert.Equal(t, SwOK, reply.Status)
	assert.Equal(t, testAddress, string(reply.Data[65:]))
	assert.Equal(t, "Network", app.screen.key)

	_, deferred = app.Handle(apdu(t, OpGetAddress, P1AddressConfirm, path))
	require.True(t, deferred)
	app.rightUntil("Reject")
	reply = app.decide()
	assert.Equal(t, SwCommandNotAllowed, reply.Status)
	assert.Empty(t, reply.Data)
}

func TestSign(t *testing.T) {
	app := newTestApp(t, DefaultConfig)
	raw := hexutil.MustDecode(testTx)

	_, deferred := app.sendTx(raw)
	require.True(t, deferred)
	assert.True(t, app.Reviewing())
	assert.Equal(t, "Review 1/18", app.screen.title)
	assert.Equal(t, "Nonce", app.screen.key)
	assert.Equal(t, "1", app.screen.value)

	app.rightUntil("CommitTime")
	assert.Equal(t, "01Jan2020 00:00:00", app.screen.value)
	app.rightUntil("[1] Payload")
	assert.Equal(t, "DEAD", app.screen.value)
	app.rightUntil("Approve")

	reply := app.decide()
	require.Equal(t, SwOK, reply.Status)
	assert.False(t, app.Reviewing())

	tx, err := types.Parse(raw)
	require.NoError(t, err)
	from, err := types.Sender(tx, reply.Data)
	require.NoError(t, err)
	assert.Equal(t, app.account.Address, from)

	// The session is over, chunks need a new init.
	assert.Equal(t, SwCommandNotAllowed, app.exchange(OpSign, P1SignAdd, raw[:10]).Status)
}

func TestSignReject(t *testing.T) {
	app := newTestApp(t, DefaultConfig)

	_, deferred := app.sendTx(hexutil.MustDecode(testTx))
	require.True(t, deferred)
	app.press(ButtonLeft)
	assert.Equal(t, "Reject", app.screen.key)
	app.press(ButtonLeft)
	assert.Equal(t, "Approve", app.screen.key)
	app.press(ButtonRight)
	app.press(ButtonRight)
	assert.Equal(t, "Nonce", app.screen.key, "right wraps from reject to the first item")
	app.press(ButtonLeft)

	reply := app.decide()
	assert.Equal(t, SwCommandNotAllowed, reply.Status)
	assert.Equal(t, SwCommandNotAllowed, app.exchange(OpSign, P1SignLast, nil).Status)
}

func TestSignRestart(t *testing.T) {
	app := newTestApp(t, DefaultConfig)

	_, deferred := app.sendTx(hexutil.MustDecode(testTx))
	require.True(t, deferred)
	_, deferred = app.sendTx(hexutil.MustDecode(testTx))
	require.True(t, deferred, "init during review starts over")
	app.rightUntil("Approve")
	assert.Equal(t, SwOK, app.decide().Status)
}

func encodeTx(t *testing.T, d *types.TxData) []byte {
	t.Helper()
	if d.To == "" {
		d.To = testAddress
	}
	if d.ChainID == 0 {
		d.ChainID = 1
	}
	raw, err := d.Encode()
	require.NoError(t, err)
	return raw
}

func TestSignInvalid(t *testing.T) {
	tests := []struct {
		name string
		tx   []byte
		want string
	}{
		{"broadcast", encodeTx(t, &types.TxData{TxType: types.BroadcastTxType}), "Invalid tx type"},
		{"commit time", encodeTx(t, &types.TxData{CommitTime: *new(uint256.Int).SetUint64(1 << 40)}), "Invalid time"},
		{"truncated", hexutil.MustDecode(testTx)[:100], "Value exceeds input"},
		{"not a list", []byte{0x83, 'a', 'b', 'c'}, "Unexpected root"},
	}
	app := newTestApp(t, DefaultConfig)
	for _, tt := range tests {
		reply, deferred := app.sendTx(tt.tx)
		require.False(t, deferred, tt.name)
		assert.Equal(t, SwDataInvalid, reply.Status, tt.name)
		assert.Equal(t, tt.want, string(reply.Data), tt.name)
		assert.False(t, app.Reviewing())
	}
}

func TestSignBufferLimits(t *testing.T) {
	app := newTestApp(t, DefaultConfig)

	require.Equal(t, SwOK, app.exchange(OpSign, P1SignInit, accounts.DefaultBaseDerivationPath.Bytes()).Status)
	assert.Equal(t, SwEmptyBuffer, app.exchange(OpSign, P1SignLast, nil).Status)

	require.Equal(t, SwOK, app.exchange(OpSign, P1SignInit, accounts.DefaultBaseDerivationPath.Bytes()).Status)
	chunk := make([]byte, MaxChunkSize)
	for i := 0; i < MaxTxSize/MaxChunkSize; i++ {
		require.Equal(t, SwOK, app.exchange(OpSign, P1SignAdd, chunk).Status)
	}
	assert.Equal(t, SwOutputTooSmall, app.exchange(OpSign, P1SignAdd, chunk).Status)
	assert.Equal(t, SwCommandNotAllowed, app.exchange(OpSign, P1SignAdd, chunk[:1]).Status, "overflow ends the session")
}

func TestLocked(t *testing.T) {
	app := newTestApp(t, Config{Target: "nanos", Locked: true})
	path := accounts.DefaultBaseDerivationPath.Bytes()
	assert.Equal(t, SwCommandNotAllowed, app.exchange(OpGetAddress, P1AddressSilent, path).Status)
	assert.Equal(t, SwCommandNotAllowed, app.exchange(OpSign, P1SignInit, path).Status)
}

func TestReviewPaging(t *testing.T) {
	app := newTestApp(t, DefaultConfig)
	raw := encodeTx(t, &types.TxData{TxType: types.AuthorizeTxType, DataText: strings.Repeat("x", 300)})

	_, deferred := app.sendTx(raw)
	require.True(t, deferred)
	assert.Equal(t, "Review 1/12", app.screen.title)

	app.rightUntil("Data [1/3]")
	assert.Len(t, app.screen.value, NanoS.ValueLen-1)
	app.press(ButtonRight)
	assert.Equal(t, "Data [2/3]", app.screen.key)
	app.press(ButtonRight)
	assert.Equal(t, "Data [3/3]", app.screen.key)
	assert.Len(t, app.screen.value, 300-2*(NanoS.ValueLen-1))
	app.press(ButtonRight)
	assert.Equal(t, "ChainID", app.screen.key)
	app.press(ButtonLeft)
	assert.Equal(t, "Data [3/3]", app.screen.key, "moving back lands on the last page")
	app.press(ButtonLeft)
	assert.Equal(t, "Data [2/3]", app.screen.key)

	// The larger screen needs fewer pages.
	app = newTestApp(t, Config{Target: "nanox"})
	_, deferred = app.sendTx(raw)
	require.True(t, deferred)
	app.rightUntil("Data [1/2]")
}

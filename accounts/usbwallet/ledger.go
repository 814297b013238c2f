// Copyright 2017 The go-ethereum Authors
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

// This file contains the implementation for interacting with the MAN app on
// Ledger hardware wallets. The wire protocol is the one served by package
// device: APDUs of class 0x55 framed into 64 byte HID packets.

package usbwallet

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/common/hexutil"
	"github.com/MatrixAINetwork/go-manledger/common/mclock"
	"github.com/MatrixAINetwork/go-manledger/crypto"
	"github.com/MatrixAINetwork/go-manledger/device"
	"github.com/MatrixAINetwork/go-manledger/internal/hidframe"
	"github.com/MatrixAINetwork/go-manledger/log"
)

var (
	errLedgerInvalidVersionReply = errors.New("ledger: invalid version reply")
	errLedgerInvalidAddressReply = errors.New("ledger: invalid address reply")
	errLedgerInvalidSignature    = errors.New("ledger: invalid signature reply")
	errLedgerAddressMismatch     = errors.New("ledger: address does not match public key")
)

// ErrAddressRejected is returned when the user declines to confirm an
// address on the device.
var ErrAddressRejected = errors.New("address rejected by user")

// AppVersion is the reply of the version command.
type AppVersion struct {
	TestMode            bool
	Major, Minor, Patch uint8
	Locked              bool
}

func (v AppVersion) String() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.TestMode {
		s += " (test mode)"
	}
	return s
}

// Driver speaks the MAN app protocol over a HID connection. Exchanges are
// serialised; a Driver may be shared between goroutines.
type Driver struct {
	device io.ReadWriter // USB device connection to communicate through
	lock   sync.Mutex    // Guards the exchange on device
	clock  mclock.Clock  // Source of exchange timings
	log    log.Logger    // Contextual logger to tag the ledger with its id
}

// NewDriver creates a driver talking to device.
func NewDriver(device io.ReadWriter, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.Root()
	}
	return &Driver{device: device, clock: mclock.System{}, log: logger}
}

// Version retrieves the version and mode of the MAN app.
//
// The version retrieval protocol is defined as follows:
//
//	CLA | INS | P1 | P2 | Lc
//	----+-----+----+----+---
//	 55 |  00 | 00 | 00 | 00
//
// With the reply being
//
//	Description                       | Length
//	----------------------------------+--------
//	Test mode flag                    | 1 byte
//	Major, minor and patch versions   | 3 bytes
//	Device locked flag                | 1 byte
func (d *Driver) Version() (AppVersion, error) {
	reply, err := d.exchange(device.OpGetVersion, 0, nil)
	if err != nil {
		return AppVersion{}, err
	}
	if len(reply) != 5 {
		return AppVersion{}, errLedgerInvalidVersionReply
	}
	return AppVersion{
		TestMode: reply[0] != 0,
		Major:    reply[1],
		Minor:    reply[2],
		Patch:    reply[3],
		Locked:   reply[4] != 0,
	}, nil
}

// Address retrieves the public key and MAN address of path. With confirm
// set the device shows the address and the call blocks until the user
// accepts or rejects it.
//
// The derivation protocol is defined as follows:
//
//	CLA | INS | P1 | P2 | Lc  | Data
//	----+-----+----+----+-----+------------------------------------------
//	 55 |  04 | 00 |    | var | Path length (1 byte), path (4 bytes each)
//	    |     | 01 |    |     |
//
// With the reply being the 65 byte uncompressed public key followed by the
// MAN address text.
func (d *Driver) Address(path accounts.DerivationPath, confirm bool) ([]byte, string, error) {
	p1 := device.P1AddressSilent
	if confirm {
		p1 = device.P1AddressConfirm
	}
	reply, err := d.exchange(device.OpGetAddress, p1, path.Bytes())
	if err != nil {
		if confirm && isStatus(err, device.SwCommandNotAllowed) {
			return nil, "", ErrAddressRejected
		}
		return nil, "", err
	}
	if len(reply) <= crypto.PubkeyLength {
		return nil, "", errLedgerInvalidAddressReply
	}
	pub, addr := reply[:crypto.PubkeyLength], string(reply[crypto.PubkeyLength:])

	want, err := crypto.PubkeyToManAddress(pub)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errLedgerInvalidAddressReply, err)
	}
	if want != addr {
		return nil, "", errLedgerAddressMismatch
	}
	return pub, addr, nil
}

// SignTx sends an encoded transaction for review and returns the signature
// once the user approves it. A declined transaction yields
// accounts.ErrTxRejected, one the device refuses to show an
// *accounts.DeviceError carrying the reason.
//
// The signing protocol is defined as follows:
//
//	CLA | INS | P1 | P2 | Lc  | Data
//	----+-----+----+----+-----+-------------------------------------------
//	 55 |  02 | 00 |    | var | Path length (1 byte), path (4 bytes each)
//	 55 |  02 | 01 |    | var | Transaction chunk, up to 255 bytes
//	 55 |  02 | 02 |    | var | Final transaction chunk
//
// With the reply to the final chunk being the 65 byte V || R || S signature.
func (d *Driver) SignTx(path accounts.DerivationPath, rawTx []byte) ([]byte, error) {
	if _, err := d.exchange(device.OpSign, device.P1SignInit, path.Bytes()); err != nil {
		return nil, err
	}
	for len(rawTx) > device.MaxChunkSize {
		if _, err := d.exchange(device.OpSign, device.P1SignAdd, rawTx[:device.MaxChunkSize]); err != nil {
			return nil, err
		}
		rawTx = rawTx[device.MaxChunkSize:]
	}
	sig, err := d.exchange(device.OpSign, device.P1SignLast, rawTx)
	if err != nil {
		if isStatus(err, device.SwCommandNotAllowed) {
			return nil, accounts.ErrTxRejected
		}
		return nil, err
	}
	if len(sig) != crypto.SignatureLength {
		return nil, errLedgerInvalidSignature
	}
	return sig, nil
}

// exchange performs a data exchange with the Ledger wallet, sending it a
// message and retrieving the response. Replies with a status other than
// success are returned as *accounts.DeviceError.
func (d *Driver) exchange(op device.Opcode, p1 byte, data []byte) ([]byte, error) {
	apdu, err := device.Command{Class: device.CLA, Ins: op, P1: p1, Data: data}.Bytes()
	if err != nil {
		return nil, err
	}
	d.lock.Lock()
	defer d.lock.Unlock()

	start := d.clock.Now()
	d.log.Trace("Data exchange with the Ledger", "op", op, "p1", p1, "apdu", hexutil.Bytes(apdu))
	if err := hidframe.WriteMessage(d.device, apdu); err != nil {
		return nil, err
	}
	raw, err := hidframe.ReadMessage(d.device)
	if err != nil {
		return nil, err
	}
	reply, err := device.ParseReply(raw)
	if err != nil {
		return nil, err
	}
	d.log.Debug("Ledger replied", "op", op, "status", reply.Status, "len", len(reply.Data), "elapsed", d.clock.Now().Sub(start))

	if reply.Status != device.SwOK {
		msg := string(reply.Data)
		if msg == "" {
			msg = reply.Status.String()
		}
		return nil, &accounts.DeviceError{Code: uint16(reply.Status), Message: msg}
	}
	return reply.Data, nil
}

func isStatus(err error, sw device.StatusWord) bool {
	var derr *accounts.DeviceError
	return errors.As(err, &derr) && derr.Code == uint16(sw)
}

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

package accounts

import (
	"errors"
	"fmt"
)

// ErrUnknownWallet is returned for any requested operation for which no backend
// provides the specified wallet.
var ErrUnknownWallet = errors.New("unknown wallet")

// ErrNotSupported is returned when an operation is requested from an account
// backend that it does not support.
var ErrNotSupported = errors.New("not supported")

// ErrWalletAlreadyOpen is returned if a wallet is attempted to be opened the
// second time.
var ErrWalletAlreadyOpen = errors.New("wallet already open")

// ErrWalletClosed is returned if a wallet is offline.
var ErrWalletClosed = errors.New("wallet closed")

// ErrTxRejected is returned when the user declines a transaction on the
// device.
var ErrTxRejected = errors.New("transaction rejected by user")

// DeviceError is returned for status words a device answers with other than
// success and user rejection.
type DeviceError struct {
	Code    uint16 // Status word
	Message string // Optional description sent along with the status
}

// Error implements the standard error interface.
func (err *DeviceError) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("device error 0x%04x: %s", err.Code, err.Message)
	}
	return fmt.Sprintf("device error 0x%04x", err.Code)
}

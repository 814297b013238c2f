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

// Package device implements the MAN application running on a Ledger device:
// the APDU command dispatcher, the signing session and the review screens.
//
// An App is single threaded. It processes one command or one button press at
// a time; replies to commands that need user approval are deferred until the
// press that decides them.
package device

import (
	"errors"

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/core/types"
	"github.com/MatrixAINetwork/go-manledger/crypto"
	"github.com/MatrixAINetwork/go-manledger/log"
	"github.com/MatrixAINetwork/go-manledger/version"
)

// Config holds the settings of the application.
type Config struct {
	Target   string // Device model, see Targets
	TestMode bool   // Reported by GET_VERSION and shown on the idle screen
	Locked   bool   // Refuse key operations
}

// DefaultConfig contains the default settings.
var DefaultConfig = Config{
	Target: NanoS.Name,
}

// App is the MAN device application.
type App struct {
	target  Target
	config  Config
	signer  Signer
	session *Session
	view    *view
	pending *Reply // Reply of a decided review, not yet collected
	log     log.Logger
}

// NewApp creates the application for the configured target and shows the
// idle screen.
func NewApp(config Config, signer Signer, display Display) (*App, error) {
	target, err := TargetByName(config.Target)
	if err != nil {
		return nil, err
	}
	app := &App{
		target:  target,
		config:  config,
		signer:  signer,
		session: NewSession(target.MaxTxSize),
		view:    newView(display, target),
		log:     log.New("target", target.Name),
	}
	app.view.idleTitle, app.view.idleKey = "Matrix AI", "Network"
	if config.TestMode {
		app.view.idleKey = "TEST!"
	}
	app.view.idleValue = "Ready"
	app.view.idle()
	return app, nil
}

// Target returns the device model the application runs on.
func (a *App) Target() Target { return a.target }

// Reviewing reports whether the user is reviewing a transaction or address.
func (a *App) Reviewing() bool { return a.view.active() }

// Handle processes one APDU command. If the command needs user approval the
// reply is deferred and the second return value is true; it is then returned
// by the Press call that decides the review.
func (a *App) Handle(apdu []byte) ([]byte, bool) {
	cmd, err := ParseCommand(apdu)
	if err != nil {
		a.log.Debug("Malformed command", "err", err)
		return status(SwWrongLength).Bytes(), false
	}
	if cmd.Class != CLA {
		return status(SwClaNotSupported).Bytes(), false
	}
	a.log.Trace("Handling command", "ins", cmd.Ins, "p1", cmd.P1, "p2", cmd.P2, "len", len(cmd.Data))

	var (
		reply    Reply
		deferred bool
	)
	switch cmd.Ins {
	case OpGetVersion:
		reply = a.handleVersion()
	case OpGetAddress:
		reply, deferred = a.handleAddress(cmd)
	case OpSign:
		reply, deferred = a.handleSign(cmd)
	default:
		reply = status(SwInsNotSupported)
	}
	if deferred {
		return nil, true
	}
	if reply.Status != SwOK {
		a.log.Debug("Command failed", "ins", cmd.Ins, "status", reply.Status)
	}
	return reply.Bytes(), false
}

// Press delivers a button event. When the press decides a review, the
// deferred reply is returned with true.
func (a *App) Press(b Button) ([]byte, bool) {
	a.view.press(b)
	if a.pending == nil {
		return nil, false
	}
	reply := a.pending
	a.pending = nil
	return reply.Bytes(), true
}

func (a *App) handleVersion() Reply {
	return Reply{
		Data: []byte{
			boolByte(a.config.TestMode),
			version.Major, version.Minor, version.Patch,
			boolByte(a.config.Locked),
		},
		Status: SwOK,
	}
}

func (a *App) handleAddress(cmd Command) (Reply, bool) {
	if a.config.Locked || a.view.active() {
		return status(SwCommandNotAllowed), false
	}
	if cmd.P1 != P1AddressSilent && cmd.P1 != P1AddressConfirm {
		return status(SwWrongP1P2), false
	}
	path, err := decodePath(cmd.Data)
	if err != nil {
		return status(SwDataInvalid), false
	}
	pub, err := a.signer.PublicKey(path)
	if err != nil {
		a.log.Error("Public key derivation failed", "path", path, "err", err)
		return status(SwExecutionError), false
	}
	addr, err := crypto.PubkeyToManAddress(pub)
	if err != nil {
		a.log.Error("Invalid public key", "path", path, "err", err)
		return status(SwExecutionError), false
	}
	reply := Reply{Data: append(pub, addr...), Status: SwOK}
	if cmd.P1 == P1AddressSilent {
		return reply, false
	}
	a.view.start(addressKey, addressReview(addr), func(approved bool) {
		if approved {
			a.pending = &reply
		} else {
			a.pending = &Reply{Status: SwCommandNotAllowed}
		}
	})
	return Reply{}, true
}

func (a *App) handleSign(cmd Command) (Reply, bool) {
	if a.config.Locked {
		return status(SwCommandNotAllowed), false
	}
	switch cmd.P1 {
	case P1SignInit:
		path, err := decodePath(cmd.Data)
		if err != nil {
			return status(SwDataInvalid), false
		}
		if a.view.active() {
			a.view.idle()
		}
		a.session.Init(path)
		return status(SwOK), false

	case P1SignAdd, P1SignLast:
		if err := a.session.Append(cmd.Data); err != nil {
			if errors.Is(err, errTxTooLarge) {
				return status(SwOutputTooSmall), false
			}
			return status(SwCommandNotAllowed), false
		}
		if cmd.P1 == P1SignAdd {
			return status(SwOK), false
		}
		return a.startReview()

	default:
		return status(SwWrongP1P2), false
	}
}

// startReview parses the complete transaction and shows it to the user.
func (a *App) startReview() (Reply, bool) {
	if len(a.session.Bytes()) == 0 {
		a.session.Reset()
		return status(SwEmptyBuffer), false
	}
	tx, err := a.session.Finish(a.view.key, a.view.val)
	if err != nil {
		a.log.Warn("Refusing invalid transaction", "err", err)
		a.session.Reset()
		return Reply{Data: []byte(types.Describe(err)), Status: SwDataInvalid}, false
	}
	path := a.session.Path()
	a.view.start("Review", tx, func(approved bool) {
		defer a.session.Reset()
		if !approved {
			a.log.Info("Transaction rejected by user")
			a.pending = &Reply{Status: SwCommandNotAllowed}
			return
		}
		sig, err := a.signer.Sign(path, types.SigHash(tx))
		if err != nil {
			a.log.Error("Signing failed", "path", path, "err", err)
			a.pending = &Reply{Status: SwExecutionError}
			return
		}
		a.log.Info("Transaction signed", "path", path, "type", tx.TxType())
		a.pending = &Reply{Data: sig, Status: SwOK}
	})
	return Reply{}, true
}

// decodePath decodes a derivation path that must span all of data.
func decodePath(data []byte) (accounts.DerivationPath, error) {
	path, n, err := accounts.DecodeDerivationPath(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, accounts.ErrPathEncoding
	}
	return path, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

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

// Package emulator runs the MAN device application behind the HID transport,
// with a scripted user in front of its screen. Host drivers talk to it as
// they would to a USB device.
package emulator

import (
	"bytes"
	"errors"
	"io"

	"github.com/MatrixAINetwork/go-manledger/device"
	"github.com/MatrixAINetwork/go-manledger/internal/hidframe"
	"github.com/MatrixAINetwork/go-manledger/log"
)

// maxPresses bounds the button presses of one review.
const maxPresses = 10000

var errUndecided = errors.New("emulator: user did not decide the review")

// Screen is the content of the device display.
type Screen struct {
	Title, Key, Value string
}

// User reacts to the screen during a review.
type User interface {
	Next(s Screen) device.Button
}

// UserFunc adapts a function to the User interface.
type UserFunc func(s Screen) device.Button

func (f UserFunc) Next(s Screen) device.Button { return f(s) }

var (
	// Approver pages through everything and approves.
	Approver User = UserFunc(func(s Screen) device.Button {
		if s.Key == "Approve" {
			return device.ButtonBoth
		}
		return device.ButtonRight
	})

	// Rejecter goes straight to the reject screen and rejects.
	Rejecter User = UserFunc(func(s Screen) device.Button {
		if s.Key == "Reject" {
			return device.ButtonBoth
		}
		return device.ButtonLeft
	})
)

// Script replays a fixed button sequence, then keeps pressing both buttons.
func Script(buttons ...device.Button) User {
	return UserFunc(func(Screen) device.Button {
		if len(buttons) == 0 {
			return device.ButtonBoth
		}
		b := buttons[0]
		buttons = buttons[1:]
		return b
	})
}

// Emulator is a device reachable over HID packets. Write accepts the 64 byte
// packets of a command; once a command is complete it is processed and its
// reply packets are queued for Read.
//
// An Emulator is not safe for concurrent use.
type Emulator struct {
	app     *device.App
	user    User
	asm     hidframe.Assembler
	out     bytes.Buffer
	screen  Screen
	history []Screen
	log     log.Logger
}

// New creates an emulator running the application with the given settings.
func New(config device.Config, signer device.Signer, user User) (*Emulator, error) {
	e := &Emulator{user: user, log: log.New("device", "emulator")}
	app, err := device.NewApp(config, signer, e)
	if err != nil {
		return nil, err
	}
	e.app = app
	return e, nil
}

// Render implements device.Display.
func (e *Emulator) Render(title, key, value string) {
	e.screen = Screen{title, key, value}
	e.history = append(e.history, e.screen)
	e.log.Trace("Screen", "title", title, "key", key, "value", value)
}

// Screen returns what the display currently shows.
func (e *Emulator) Screen() Screen { return e.screen }

// History returns every screen shown so far.
func (e *Emulator) History() []Screen { return e.history }

var _ io.ReadWriteCloser = (*Emulator)(nil)

// SetUser replaces the scripted user.
func (e *Emulator) SetUser(user User) { e.user = user }

// Write implements io.Writer. Every call must carry exactly one packet.
func (e *Emulator) Write(packet []byte) (int, error) {
	msg, done, err := e.asm.Feed(packet)
	if err != nil {
		return 0, err
	}
	if !done {
		return len(packet), nil
	}
	reply, deferred := e.app.Handle(msg)
	if deferred {
		if reply, err = e.review(); err != nil {
			return 0, err
		}
	}
	if err := hidframe.WriteMessage(&e.out, reply); err != nil {
		return 0, err
	}
	return len(packet), nil
}

// review lets the user press buttons until the pending command is decided.
func (e *Emulator) review() ([]byte, error) {
	for i := 0; i < maxPresses; i++ {
		b := e.user.Next(e.screen)
		if reply, decided := e.app.Press(b); decided {
			e.log.Debug("Review decided", "presses", i+1)
			return reply, nil
		}
	}
	return nil, errUndecided
}

// Read implements io.Reader, returning queued reply packets. It fails with
// io.EOF when no reply is pending.
func (e *Emulator) Read(p []byte) (int, error) {
	return e.out.Read(p)
}

// Close drops pending replies.
func (e *Emulator) Close() error {
	e.out.Reset()
	e.asm.Reset()
	return nil
}

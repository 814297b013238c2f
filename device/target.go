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
	"fmt"
	"strings"

	"github.com/MatrixAINetwork/go-manledger/accounts"
)

// MaxTxSize is the default capacity of the transaction buffer.
const MaxTxSize = 2048

// Target describes the screen geometry and memory limits of a device model.
// Line lengths include the terminator slot of the display strings.
type Target struct {
	Name      string
	KeyLen    int // Characters of the key line
	ValueLen  int // Characters of the value line
	MaxTxSize int // Capacity of the transaction buffer
}

var (
	NanoS = Target{Name: "nanos", KeyLen: 32, ValueLen: 128, MaxTxSize: MaxTxSize}
	NanoX = Target{Name: "nanox", KeyLen: 64, ValueLen: 256, MaxTxSize: MaxTxSize}
)

// Targets lists the supported device models.
var Targets = []Target{NanoS, NanoX}

// TargetByName looks up a device model by name, ignoring case.
func TargetByName(name string) (Target, error) {
	for _, t := range Targets {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unknown device target %q", name)
}

// Signer holds the key material of the device.
type Signer interface {
	// PublicKey returns the 65 byte uncompressed public key at path.
	PublicKey(path accounts.DerivationPath) ([]byte, error)

	// Sign signs digest with the key at path and returns the 65 byte
	// V || R || S signature.
	Sign(path accounts.DerivationPath, digest [32]byte) ([]byte, error)
}

// Display is the screen of the device. Render replaces the whole screen.
type Display interface {
	Render(title, key, value string)
}

// Button is a physical button event.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonBoth
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonBoth:
		return "both"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

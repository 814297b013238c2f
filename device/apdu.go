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
	"encoding/binary"
	"errors"
	"fmt"
)

// CLA is the instruction class of the MAN application.
const CLA = 0x55

// Opcode is an instruction code of the application.
type Opcode byte

const (
	OpGetVersion Opcode = 0x00 // Returns the application version and mode
	OpSign       Opcode = 0x02 // Signs a transaction after user review
	OpGetAddress Opcode = 0x04 // Returns the public key and MAN address of a path
)

func (op Opcode) String() string {
	switch op {
	case OpGetVersion:
		return "GET_VERSION"
	case OpSign:
		return "SIGN_SECP256K1"
	case OpGetAddress:
		return "GET_ADDR_SECP256K1"
	default:
		return fmt.Sprintf("INS(0x%02x)", byte(op))
	}
}

// Param1 values of OpSign, selecting the chunk role.
const (
	P1SignInit byte = 0x00 // First chunk: derivation path
	P1SignAdd  byte = 0x01 // Transaction chunk
	P1SignLast byte = 0x02 // Final transaction chunk, starts the review
)

// Param1 values of OpGetAddress.
const (
	P1AddressSilent  byte = 0x00 // Return the address immediately
	P1AddressConfirm byte = 0x01 // Show the address and wait for approval
)

// StatusWord is the two byte status trailing every reply.
type StatusWord uint16

const (
	SwOK                StatusWord = 0x9000
	SwExecutionError    StatusWord = 0x6400
	SwWrongLength       StatusWord = 0x6700
	SwEmptyBuffer       StatusWord = 0x6982
	SwOutputTooSmall    StatusWord = 0x6983
	SwDataInvalid       StatusWord = 0x6984
	SwCommandNotAllowed StatusWord = 0x6986
	SwWrongP1P2         StatusWord = 0x6B00
	SwInsNotSupported   StatusWord = 0x6D00
	SwClaNotSupported   StatusWord = 0x6E00
)

var statusText = map[StatusWord]string{
	SwOK:                "ok",
	SwExecutionError:    "execution error",
	SwWrongLength:       "wrong length",
	SwEmptyBuffer:       "empty buffer",
	SwOutputTooSmall:    "output buffer too small",
	SwDataInvalid:       "data invalid",
	SwCommandNotAllowed: "command not allowed",
	SwWrongP1P2:         "wrong P1/P2",
	SwInsNotSupported:   "instruction not supported",
	SwClaNotSupported:   "class not supported",
}

func (sw StatusWord) String() string {
	if text, ok := statusText[sw]; ok {
		return fmt.Sprintf("0x%04x (%s)", uint16(sw), text)
	}
	return fmt.Sprintf("0x%04x", uint16(sw))
}

// headerSize is the size of CLA INS P1 P2 Lc.
const headerSize = 5

// MaxChunkSize is the largest data payload of one command.
const MaxChunkSize = 255

var (
	errShortCommand   = errors.New("apdu: command shorter than header")
	errLengthMismatch = errors.New("apdu: Lc does not match data length")
	errShortReply     = errors.New("apdu: reply shorter than status word")
	errChunkSize      = errors.New("apdu: data exceeds 255 bytes")
)

// Command is a decoded APDU command.
type Command struct {
	Class  byte
	Ins    Opcode
	P1, P2 byte
	Data   []byte
}

// ParseCommand decodes a command. Data aliases b.
func ParseCommand(b []byte) (Command, error) {
	if len(b) < headerSize {
		return Command{}, errShortCommand
	}
	if int(b[4]) != len(b)-headerSize {
		return Command{}, errLengthMismatch
	}
	return Command{Class: b[0], Ins: Opcode(b[1]), P1: b[2], P2: b[3], Data: b[headerSize:]}, nil
}

// Bytes encodes the command.
func (c Command) Bytes() ([]byte, error) {
	if len(c.Data) > MaxChunkSize {
		return nil, errChunkSize
	}
	out := make([]byte, 0, headerSize+len(c.Data))
	out = append(out, c.Class, byte(c.Ins), c.P1, c.P2, byte(len(c.Data)))
	return append(out, c.Data...), nil
}

// Reply is a response payload with its status word.
type Reply struct {
	Data   []byte
	Status StatusWord
}

// ParseReply splits the status word off a response.
func ParseReply(b []byte) (Reply, error) {
	if len(b) < 2 {
		return Reply{}, errShortReply
	}
	n := len(b) - 2
	return Reply{Data: b[:n], Status: StatusWord(binary.BigEndian.Uint16(b[n:]))}, nil
}

// Bytes encodes the response.
func (r Reply) Bytes() []byte {
	out := make([]byte, 0, len(r.Data)+2)
	out = append(out, r.Data...)
	return binary.BigEndian.AppendUint16(out, uint16(r.Status))
}

func status(sw StatusWord) Reply {
	return Reply{Status: sw}
}

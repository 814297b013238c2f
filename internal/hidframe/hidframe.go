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

// Package hidframe implements the Ledger HID transport framing.
//
// A message is split into 64 byte packets, each starting with a 5 byte
// header:
//
//	Description                           | Length
//	--------------------------------------+----------
//	Channel ID (big endian)               | 2 bytes
//	Command tag                           | 1 byte
//	Packet sequence index (big endian)    | 2 bytes
//
// The first packet additionally carries the message length as a big endian
// uint16 right after the header. Unused bytes of the last packet are zero.
package hidframe

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const (
	PacketSize = 64     // Size of a HID report
	Channel    = 0x0101 // Channel ID used by the Ledger transport
	TagAPDU    = 0x05   // Command tag of APDU payloads

	headerSize = 5
	lengthSize = 2

	// MaxMessageSize is the largest message the length prefix can describe.
	MaxMessageSize = math.MaxUint16
)

var (
	ErrInvalidHeader = errors.New("hidframe: invalid packet header")
	ErrSequence      = errors.New("hidframe: packet out of sequence")
	ErrTooLarge      = errors.New("hidframe: message too large")
	ErrPacketSize    = errors.New("hidframe: packet is not 64 bytes")
)

// Packets splits msg into HID packets.
func Packets(msg []byte) ([][]byte, error) {
	if len(msg) > MaxMessageSize {
		return nil, ErrTooLarge
	}
	payload := make([]byte, lengthSize, lengthSize+len(msg))
	binary.BigEndian.PutUint16(payload, uint16(len(msg)))
	payload = append(payload, msg...)

	space := PacketSize - headerSize
	packets := make([][]byte, 0, (len(payload)+space-1)/space)
	for seq := 0; len(payload) > 0; seq++ {
		packet := make([]byte, PacketSize)
		binary.BigEndian.PutUint16(packet, Channel)
		packet[2] = TagAPDU
		binary.BigEndian.PutUint16(packet[3:], uint16(seq))

		n := copy(packet[headerSize:], payload)
		payload = payload[n:]
		packets = append(packets, packet)
	}
	return packets, nil
}

// WriteMessage frames msg and writes it one packet per Write call.
func WriteMessage(w io.Writer, msg []byte) error {
	packets, err := Packets(msg)
	if err != nil {
		return err
	}
	for _, packet := range packets {
		if _, err := w.Write(packet); err != nil {
			return err
		}
	}
	return nil
}

// ReadMessage reads packets from r until a full message is assembled.
func ReadMessage(r io.Reader) ([]byte, error) {
	var (
		asm    Assembler
		packet = make([]byte, PacketSize)
	)
	for {
		if _, err := io.ReadFull(r, packet); err != nil {
			return nil, err
		}
		msg, done, err := asm.Feed(packet)
		if err != nil {
			return nil, err
		}
		if done {
			return msg, nil
		}
	}
}

// Assembler rebuilds messages from packets fed one at a time. The zero value
// is ready for use and is reset after every complete message or error.
type Assembler struct {
	msg    []byte
	seq    uint16
	active bool
}

// Feed consumes one packet. It returns the message once its last packet was
// fed.
func (a *Assembler) Feed(packet []byte) ([]byte, bool, error) {
	if len(packet) != PacketSize {
		a.Reset()
		return nil, false, ErrPacketSize
	}
	if binary.BigEndian.Uint16(packet) != Channel || packet[2] != TagAPDU {
		a.Reset()
		return nil, false, ErrInvalidHeader
	}
	seq := binary.BigEndian.Uint16(packet[3:])
	payload := packet[headerSize:]

	if !a.active {
		if seq != 0 {
			return nil, false, ErrSequence
		}
		size := int(binary.BigEndian.Uint16(payload))
		a.msg = make([]byte, 0, size)
		a.active = true
		payload = payload[lengthSize:]
	} else if seq != a.seq+1 {
		a.Reset()
		return nil, false, ErrSequence
	}
	a.seq = seq

	left := cap(a.msg) - len(a.msg)
	if left > len(payload) {
		a.msg = append(a.msg, payload...)
		return nil, false, nil
	}
	msg := append(a.msg, payload[:left]...)
	a.Reset()
	return msg, true, nil
}

// Reset drops a partially assembled message.
func (a *Assembler) Reset() {
	*a = Assembler{}
}

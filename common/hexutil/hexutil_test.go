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

package hexutil

import (
	"bytes"
	"testing"
)

type unmarshalTest struct {
	input   string
	want    []byte
	wantErr error // if set, decoding must fail
}

var decodeBytesTests = []unmarshalTest{
	// invalid
	{input: ``, wantErr: ErrEmptyString},
	{input: `0`, wantErr: ErrMissingPrefix},
	{input: `0x0`, wantErr: ErrOddLength},
	{input: `0x023`, wantErr: ErrOddLength},
	{input: `0xxx`, wantErr: ErrSyntax},
	{input: `0x01zz01`, wantErr: ErrSyntax},
	// valid
	{input: `0x`, want: []byte{}},
	{input: `0X`, want: []byte{}},
	{input: `0x02`, want: []byte{0x02}},
	{input: `0X02`, want: []byte{0x02}},
	{input: `0xffffffffff`, want: []byte{0xff, 0xff, 0xff, 0xff, 0xff}},
}

func checkError(t *testing.T, input string, got, want error) bool {
	if got == nil {
		if want != nil {
			t.Errorf("input %s: got no error, want %q", input, want)
			return false
		}
		return true
	}
	if want == nil {
		t.Errorf("input %s: unexpected error %q", input, got)
	} else if got.Error() != want.Error() {
		t.Errorf("input %s: got error %q, want %q", input, got, want)
	}
	return false
}

func TestDecode(t *testing.T) {
	for _, test := range decodeBytesTests {
		dec, err := Decode(test.input)
		if !checkError(t, test.input, err, test.wantErr) {
			continue
		}
		if !bytes.Equal(test.want, dec) {
			t.Errorf("input %s: value mismatch: got %x, want %x", test.input, dec, test.want)
			continue
		}
	}
}

func TestEncode(t *testing.T) {
	for _, test := range []struct {
		input []byte
		want  string
	}{
		{[]byte{}, "0x"},
		{[]byte{0}, "0x00"},
		{[]byte{0, 0, 1, 2}, "0x00000102"},
	} {
		if enc := Encode(test.input); enc != test.want {
			t.Errorf("input %x: wrong encoding %s", test.input, enc)
		}
	}
}

func TestDecodeLoose(t *testing.T) {
	for _, input := range []string{"ab01", "0xab01", "AB 01", " 0xAB\n01 "} {
		dec, err := DecodeLoose(input)
		if err != nil {
			t.Errorf("input %q: unexpected error %v", input, err)
			continue
		}
		if !bytes.Equal(dec, []byte{0xab, 0x01}) {
			t.Errorf("input %q: got %x", input, dec)
		}
	}
	var b Bytes
	if err := b.UnmarshalText([]byte("0xc0")); err != nil || b.String() != "0xc0" {
		t.Errorf("Bytes round trip failed: %v %s", err, b)
	}
}

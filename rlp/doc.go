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

/*
Package rlp implements the subset of the RLP serialization format needed to
review MAN transactions on a signing device.

RLP (Recursive Length Prefix) encodes arbitrarily nested arrays of binary data.
Every value is preceded by a type tag that defines the kind and size of the bytes
that follow:

	0x00..0x7F  a single byte, the tag is the value
	0x80..0xB7  a string of 0..55 bytes
	0xB8..0xBF  a string whose length follows in 1..8 big endian bytes
	0xC0..0xF7  a list whose content is 0..55 bytes long
	0xF8..0xFF  a list whose content length follows in 1..8 big endian bytes

Decoding never copies and never allocates. DecodeHeader decodes a single tag,
ParseFields walks a byte range and fills a caller owned array of Field
descriptors, and the Read functions interpret one descriptor against the
buffer it was decoded from. Descriptors only hold offsets, nested lists are
parsed on demand with ParseList.

RLP 解码只记录偏移量，不复制数据，嵌套列表按需解析。

The package also carries a small encoder (EncodeBuffer, AppendString,
AppendUint64, AppendUint256) which is used to build transactions for tests
and tooling.
*/
package rlp

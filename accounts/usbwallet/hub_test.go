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

package usbwallet

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/karalabe/hid"
	"github.com/stretchr/testify/assert"
)

func TestFilterDevices(t *testing.T) {
	hub := &Hub{
		scheme:     LedgerScheme,
		vendorID:   LedgerVendorID,
		productIDs: mapset.NewThreadUnsafeSet[uint16](0x0001, 0x4015),
		usageID:    0xffa0,
		endpointID: 0,
	}
	infos := []hid.DeviceInfo{
		{Path: "a", ProductID: 0x0001, UsagePage: 0xffa0, Interface: -1},
		{Path: "b", ProductID: 0x4015, UsagePage: 0, Interface: 0},
		{Path: "c", ProductID: 0x4015, UsagePage: 0xf1d0, Interface: 1}, // U2F interface
		{Path: "d", ProductID: 0x9999, UsagePage: 0xffa0, Interface: 0},
	}
	var paths []string
	for _, info := range hub.filterDevices(infos) {
		paths = append(paths, info.Path)
	}
	assert.Equal(t, []string{"a", "b"}, paths)
}

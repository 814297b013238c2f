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

package usbwallet

import (
	"errors"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/karalabe/hid"

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/log"
)

// LedgerScheme is the protocol scheme prefixing account and wallet URLs.
const LedgerScheme = "ledger"

// LedgerVendorID is the USB vendor identifier of Ledger devices.
const LedgerVendorID = 0x2c97

// refreshThrottling is the minimum time between wallet refreshes to avoid USB
// trashing.
const refreshThrottling = 500 * time.Millisecond

// Hub is a accounts.Backend that can find and handle Ledger devices.
type Hub struct {
	scheme     string   // Protocol scheme prefixing account and wallet URLs.
	vendorID   uint16   // USB vendor identifier used for device discovery
	productIDs mapset.Set[uint16] // USB product identifiers used for device discovery
	usageID    uint16   // USB usage page identifier used for macOS device discovery
	endpointID int      // USB endpoint identifier used for non-macOS device discovery

	refreshed time.Time         // Time instance when the list of wallets was last refreshed
	wallets   []accounts.Wallet // List of USB wallet devices currently tracking

	stateLock sync.RWMutex // Protects the internals of the hub from racey access

	commsPend int           // Number of operations blocking enumeration
	commsLock sync.Mutex    // Lock protecting the pending counter and enumeration
	enumFails atomic.Uint32 // Number of times enumeration has failed
}

// NewLedgerHub creates a new hardware wallet manager for Ledger devices.
func NewLedgerHub() (*Hub, error) {
	if !hid.Supported() {
		return nil, errors.New("unsupported platform")
	}
	hub := &Hub{
		scheme:   LedgerScheme,
		vendorID: LedgerVendorID,
		productIDs: mapset.NewThreadUnsafeSet[uint16](
			// Device definitions taken from
			// https://github.com/LedgerHQ/ledger-live/blob/38012bc8899e0f07149ea9cfe7e64b2c146bc92b/libs/ledgerjs/packages/devices/src/index.ts

			// Original product IDs
			0x0001, /* Ledger Nano S */
			0x0004, /* Ledger Nano X */
			0x0005, /* Ledger Nano S Plus */

			0x1015, /* HID + U2F + WebUSB Ledger Nano S */
			0x4015, /* HID + U2F + WebUSB Ledger Nano X */
			0x5015, /* HID + U2F + WebUSB Ledger Nano S Plus */

			0x1011, /* HID + WebUSB Ledger Nano S */
			0x4011, /* HID + WebUSB Ledger Nano X */
			0x5011, /* HID + WebUSB Ledger Nano S Plus */
		),
		usageID:    0xffa0,
		endpointID: 0,
	}
	hub.refreshWallets()
	return hub, nil
}

// Wallets implements accounts.Backend, returning all the currently tracked USB
// devices that appear to be hardware wallets.
func (hub *Hub) Wallets() []accounts.Wallet {
	// Make sure the list of wallets is up to date
	hub.refreshWallets()

	hub.stateLock.RLock()
	defer hub.stateLock.RUnlock()

	cpy := make([]accounts.Wallet, len(hub.wallets))
	copy(cpy, hub.wallets)
	return cpy
}

// pendingComms tracks device operations that wait for user confirmation.
// hidapi on Linux opens the device during enumeration to retrieve some infos,
// breaking the Ledger protocol if that is waiting for user confirmation, so
// enumeration is skipped while any is pending.
func (hub *Hub) pendingComms(start bool) {
	if hub == nil || runtime.GOOS != "linux" {
		return
	}
	hub.commsLock.Lock()
	defer hub.commsLock.Unlock()

	if start {
		hub.commsPend++
	} else {
		hub.commsPend--
	}
}

// filterDevices keeps the enumerated HID interfaces that belong to a known
// Ledger product. Windows and macOS match on the usage page, Linux on the
// interface number.
func (hub *Hub) filterDevices(infos []hid.DeviceInfo) []hid.DeviceInfo {
	var devices []hid.DeviceInfo
	for _, info := range infos {
		if !hub.productIDs.Contains(info.ProductID) {
			continue
		}
		if info.UsagePage == hub.usageID || info.Interface == hub.endpointID {
			devices = append(devices, info)
		}
	}
	return devices
}

// refreshWallets scans the USB devices attached to the machine and updates the
// list of wallets based on the found devices.
func (hub *Hub) refreshWallets() {
	// Don't scan the USB like crazy it the user fetches wallets in a loop
	hub.stateLock.RLock()
	elapsed := time.Since(hub.refreshed)
	hub.stateLock.RUnlock()

	if elapsed < refreshThrottling {
		return
	}
	// If USB enumeration is continually failing, don't keep trying indefinitely
	if hub.enumFails.Load() > 2 {
		return
	}
	if runtime.GOOS == "linux" {
		hub.commsLock.Lock()
		if hub.commsPend > 0 { // A confirmation is pending, don't refresh
			hub.commsLock.Unlock()
			return
		}
	}
	infos, err := hid.Enumerate(hub.vendorID, 0)
	if runtime.GOOS == "linux" {
		hub.commsLock.Unlock()
	}
	if err != nil {
		failcount := hub.enumFails.Add(1)
		log.Error("Failed to enumerate USB devices", "hub", hub.scheme,
			"vendor", hub.vendorID, "failcount", failcount, "err", err)
		return
	}
	hub.enumFails.Store(0)

	devices := hub.filterDevices(infos)

	// Transform the current list of wallets into the new one, keeping the
	// wallets of devices still present
	hub.stateLock.Lock()
	defer hub.stateLock.Unlock()

	known := make(map[accounts.URL]accounts.Wallet, len(hub.wallets))
	for _, w := range hub.wallets {
		known[w.URL()] = w
	}
	wallets := make([]accounts.Wallet, 0, len(devices))
	for _, device := range devices {
		url := accounts.URL{Scheme: hub.scheme, Path: device.Path}
		if w, ok := known[url]; ok {
			if _, failure := w.Status(); failure == nil {
				wallets = append(wallets, w)
				delete(known, url)
				continue
			}
		}
		w := NewWallet(url, func() (io.ReadWriteCloser, error) { return device.Open() })
		w.hub = hub
		wallets = append(wallets, w)
		log.Debug("Ledger device arrived", "url", url, "product", device.Product)
	}
	for url, w := range known {
		w.Close()
		log.Debug("Ledger device dropped", "url", url)
	}
	hub.refreshed = time.Now()
	hub.wallets = wallets
}

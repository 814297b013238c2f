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

// Package civil converts Unix timestamps into the fixed width date strings
// shown on the device, e.g. "01Jan2020 00:00:00".
//
// The conversion uses a table of cumulative day counts per year instead of a
// calendar library, so the result only depends on this package and the
// supported range is explicit.
package civil

import (
	"errors"
	"sort"

	"github.com/MatrixAINetwork/go-manledger/common/textbuf"
)

const (
	// EpochYear is the first supported year.
	EpochYear = 1970
	// SupportedYears is the number of years covered by the lookup table.
	SupportedYears = 200

	secondsPerDay = 24 * 60 * 60

	// Length of a formatted timestamp, DDMonYYYY HH:MM:SS.
	FormattedLen = 18
)

// ErrOutOfRange is returned for instants past the end of the supported range.
var ErrOutOfRange = errors.New("civil: time out of supported range")

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var monthDays = [12]uint16{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// yearStart[i] is the number of days between the epoch and January 1st of
// year EpochYear+i. The last entry bounds the supported range.
// 每年1月1日距纪元的累计天数。
var yearStart = func() (t [SupportedYears + 1]uint32) {
	for i := 1; i <= SupportedYears; i++ {
		days := uint32(365)
		if IsLeap(EpochYear + i - 1) {
			days = 366
		}
		t[i] = t[i-1] + days
	}
	return t
}()

// IsLeap reports whether year is a leap year in the proleptic Gregorian
// calendar.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Date is a broken down UTC instant.
type Date struct {
	Year   int
	Month  int // 1..12
	Day    int // 1..31
	Hour   int
	Minute int
	Second int
}

// FromUnix breaks a Unix timestamp in seconds into its civil UTC date.
func FromUnix(seconds uint64) (Date, error) {
	days := seconds / secondsPerDay
	if days >= uint64(yearStart[SupportedYears]) {
		return Date{}, ErrOutOfRange
	}
	// Last year whose first day is not after the instant.
	y := sort.Search(SupportedYears+1, func(i int) bool {
		return uint64(yearStart[i]) > days
	}) - 1

	var (
		d   = Date{Year: EpochYear + y}
		doy = uint32(days) - yearStart[y]
	)
	for m := 0; m < 12; m++ {
		n := uint32(monthDays[m])
		if m == 1 && IsLeap(d.Year) {
			n++
		}
		if doy < n {
			d.Month = m + 1
			d.Day = int(doy) + 1
			break
		}
		doy -= n
	}
	rem := seconds % secondsPerDay
	d.Hour = int(rem / 3600)
	d.Minute = int(rem % 3600 / 60)
	d.Second = int(rem % 60)
	return d, nil
}

// FormatUnix appends the DDMonYYYY HH:MM:SS form of a Unix timestamp to out.
func FormatUnix(out *textbuf.Buffer, seconds uint64) error {
	d, err := FromUnix(seconds)
	if err != nil {
		return err
	}
	if out.Avail() < FormattedLen {
		return textbuf.ErrBufferTooSmall
	}
	return out.Printf("%02d%s%04d %02d:%02d:%02d",
		d.Day, monthNames[d.Month-1], d.Year, d.Hour, d.Minute, d.Second)
}

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
	"errors"
	"fmt"
	"math"

	"github.com/MatrixAINetwork/go-manledger/common/textbuf"
	"github.com/MatrixAINetwork/go-manledger/core/types"
)

// Reviewable is content the user pages through before approving it.
type Reviewable interface {
	NumItems() int
	GetItem(idx, page int, key, val *textbuf.Buffer) (int, error)
}

// Screen texts.
const (
	approveKey = "Approve"
	rejectKey  = "Reject"
	errPrefix  = "ERR: "
)

// view is the review state machine. The screens of a review are the items of
// the content followed by an approve and a reject screen:
//
//	item 0 ... item n-1 | approve (n) | reject (n+1)
//
// Right moves to the next page, then to the next screen, wrapping from reject
// back to the first item. Left moves back, and from the first page of the
// first item lands on reject. Both decides on the approve and reject screens
// and is ignored elsewhere.
type view struct {
	display  Display
	key, val *textbuf.Buffer

	idleTitle, idleKey, idleValue string

	content Reviewable
	title   string
	item    int
	page    int
	pages   int
	decide  func(approved bool)
}

func newView(display Display, target Target) *view {
	return &view{
		display: display,
		key:     textbuf.New(target.KeyLen),
		val:     textbuf.New(target.ValueLen),
	}
}

// active reports whether a review is in progress.
func (v *view) active() bool {
	return v.content != nil
}

// idle ends any review and shows the idle screen.
func (v *view) idle() {
	v.content, v.decide = nil, nil
	v.display.Render(v.idleTitle, v.idleKey, v.idleValue)
}

// start begins the review of content. decide is called once, when the user
// approves or rejects.
func (v *view) start(title string, content Reviewable, decide func(approved bool)) {
	v.content, v.title, v.decide = content, title, decide
	v.item, v.page, v.pages = 0, 0, 0
	v.render()
}

func (v *view) press(b Button) {
	if !v.active() {
		return
	}
	n := v.content.NumItems()
	switch b {
	case ButtonRight:
		switch {
		case v.item < n && v.page+1 < v.pages:
			v.page++
		case v.item < n+1:
			v.item, v.page = v.item+1, 0
		default:
			v.item, v.page = 0, 0
		}
	case ButtonLeft:
		switch {
		case v.item < n && v.page > 0:
			v.page--
		case v.item == 0:
			v.item, v.page = n+1, 0
		default:
			// Land on the last page, render clamps it.
			v.item, v.page = v.item-1, math.MaxInt
		}
	case ButtonBoth:
		if v.item < n {
			return
		}
		decide := v.decide
		v.idle()
		decide(v.item == n)
		return
	default:
		return
	}
	v.render()
}

func (v *view) render() {
	n := v.content.NumItems()
	switch {
	case v.item == n:
		v.display.Render(v.title, approveKey, "")
		return
	case v.item > n:
		v.display.Render(v.title, rejectKey, "")
		return
	}
	title := fmt.Sprintf("%s %d/%d", v.title, v.item+1, n)

	pages, err := v.content.GetItem(v.item, v.page, v.key, v.val)
	if errors.Is(err, types.ErrDisplayPageOutOfRange) && v.page > 0 {
		v.page = 0
		if pages, err = v.content.GetItem(v.item, 0, v.key, v.val); err == nil && pages > 1 {
			v.page = pages - 1
			pages, err = v.content.GetItem(v.item, v.page, v.key, v.val)
		}
	}
	if err != nil {
		v.page, v.pages = 0, 0
		v.display.Render(title, v.key.String(), errPrefix+types.Describe(err))
		return
	}
	v.pages = pages

	key := v.key.String()
	if pages > 1 {
		key = fmt.Sprintf("%s [%d/%d]", key, v.page+1, pages)
	}
	v.display.Render(title, key, v.val.String())
}

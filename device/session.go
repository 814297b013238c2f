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

	"github.com/MatrixAINetwork/go-manledger/accounts"
	"github.com/MatrixAINetwork/go-manledger/common/textbuf"
	"github.com/MatrixAINetwork/go-manledger/core/types"
)

var (
	errTxTooLarge   = errors.New("transaction exceeds buffer")
	errNoSession    = errors.New("no signing session")
	errSessionState = errors.New("signing session already under review")
)

// SessionState is the phase of a signing session.
type SessionState int

const (
	SessionIdle       SessionState = iota // No path received
	SessionCollecting                     // Receiving transaction chunks
	SessionReviewing                      // Transaction shown to the user
)

// Session is the state of one signing request: the derivation path, the
// transaction buffer and the model parsed from it. The buffer has a fixed
// capacity and is wiped on reset.
type Session struct {
	state SessionState
	path  accounts.DerivationPath
	buf   []byte
	n     int
	tx    types.Transaction
}

// NewSession creates a session with a transaction buffer of the given
// capacity.
func NewSession(capacity int) *Session {
	return &Session{buf: make([]byte, capacity)}
}

// State returns the phase of the session.
func (s *Session) State() SessionState { return s.state }

// Path returns the derivation path of the signing key.
func (s *Session) Path() accounts.DerivationPath { return s.path }

// Bytes returns the transaction received so far. It aliases the buffer.
func (s *Session) Bytes() []byte { return s.buf[:s.n] }

// Reset wipes the buffer and returns to idle.
func (s *Session) Reset() {
	clear(s.buf[:s.n])
	s.n = 0
	s.path = nil
	s.tx = types.Transaction{}
	s.state = SessionIdle
}

// Init starts collecting a transaction to be signed with the key at path.
func (s *Session) Init(path accounts.DerivationPath) {
	s.Reset()
	s.path = path
	s.state = SessionCollecting
}

// Append adds a chunk of the transaction. On overflow the session is reset.
func (s *Session) Append(chunk []byte) error {
	switch s.state {
	case SessionIdle:
		return errNoSession
	case SessionReviewing:
		return errSessionState
	}
	if len(chunk) > len(s.buf)-s.n {
		s.Reset()
		return errTxTooLarge
	}
	s.n += copy(s.buf[s.n:], chunk)
	return nil
}

// Finish parses the collected transaction and checks that every item renders
// with the given screen buffers. On success the session moves to review.
func (s *Session) Finish(key, val *textbuf.Buffer) (*types.Transaction, error) {
	if s.state != SessionCollecting {
		return nil, errNoSession
	}
	if err := s.tx.Decode(s.Bytes()); err != nil {
		return nil, err
	}
	if err := s.tx.Validate(key, val); err != nil {
		return nil, err
	}
	s.state = SessionReviewing
	return &s.tx, nil
}

// addressReview shows a MAN address as a single review item.
type addressReview string

const addressKey = "Address"

func (a addressReview) NumItems() int { return 1 }

func (a addressReview) GetItem(idx, page int, key, val *textbuf.Buffer) (int, error) {
	key.Reset()
	val.Reset()
	if idx != 0 {
		return 0, types.ErrDisplayIdxOutOfRange
	}
	if err := key.SetString(addressKey); err != nil {
		return 0, err
	}
	size := val.MaxLen()
	if size == 0 {
		return 0, textbuf.ErrBufferTooSmall
	}
	pages := (len(a) + size - 1) / size
	if page < 0 || page >= max(pages, 1) {
		return pages, types.ErrDisplayPageOutOfRange
	}
	end := min(len(a), (page+1)*size)
	return pages, val.SetString(string(a[page*size : end]))
}

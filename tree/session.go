/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package tree implements a branching history of visited states. A
// session records every state handed to it, keyed by the move that
// produced it, and keeps every alternative line of play instead of
// discarding it the way a linear undo/redo would. Sequences of moves
// that converge on the same state are detected and linked, shorter
// routes to a known state can adopt the longer route's subtree, and
// solution endpoints propagate towards the root so a caller can always
// see the best known solution below any position.
//
// Sessions are not safe for concurrent use. State buffers are opaque to
// the engine: only the comparing prefix is hashed and compared, byte
// for byte.
package tree

import (
	"errors"

	"github.com/histree/histree/hashing"
	"github.com/histree/histree/index"
)

// Grafting selects what AddPosition does when a new position provides a
// shorter route to a previously discovered state.
type Grafting int

const (
	// NoGraft links the better pointers and does nothing else.
	NoGraft Grafting = iota
	// Graft transplants the old position's subtree to the new one.
	// This is the default.
	Graft
	// CopyPath leaves the old subtree alone but copies its best
	// solution path to the new position.
	CopyPath
	// GraftAndCopy grafts, then copies the best solution back to the
	// old site so it is not left useless.
	GraftAndCopy
)

// CheckMode selects how AddPosition looks for other positions holding
// the same state.
type CheckMode int

const (
	// NoCheck bypasses equivalence detection entirely.
	NoCheck CheckMode = iota
	// Check detects equivalent positions at insertion time.
	Check
	// CheckLater defers detection until the next ResolveBetters call.
	CheckLater
)

// MaxStateSize is the largest state buffer a session accepts.
const MaxStateSize = 65535

// positionOverhead is the bookkeeping charge per arena element used for
// the stride limit check, mirroring the header-plus-state element model.
const positionOverhead = 96

var (
	// ErrBadStateSize is returned when the initial state is empty or
	// larger than MaxStateSize.
	ErrBadStateSize = errors.New("tree: state size out of range")
	// ErrBadCompareSize is returned when cmpsize is negative or larger
	// than the state size.
	ErrBadCompareSize = errors.New("tree: compare size out of range")
	// ErrBadStride is returned when header plus state exceeds the
	// arena element limit.
	ErrBadStride = errors.New("tree: state too large for arena stride")
)

// Session owns a history tree: its positions, branches, equivalence
// index and configuration. All operations on a session must come from a
// single goroutine.
type Session struct {
	rootpos   *Position
	positions *positionArena
	branches  *branchArena
	filter    *index.Presence
	hasher    hashing.Hasher16
	statesize int
	cmpsize   int
	grafting  Grafting
	changed   bool
}

// Option configures a session at creation time.
type Option func(*Session)

// WithGrafting sets the initial grafting behaviour.
func WithGrafting(g Grafting) Option {
	return func(s *Session) { s.grafting = g }
}

// WithoutIndex disables the presence bit-index; every equivalence
// lookup then scans the whole arena.
func WithoutIndex() Option {
	return func(s *Session) { s.filter = nil }
}

// WithHasher replaces the state hasher. Handy for tests that need to
// force hash collisions.
func WithHasher(h hashing.Hasher16) Option {
	return func(s *Session) { s.hasher = h }
}

// NewSession creates a session whose root position holds the given
// initial state. Every later state handed to AddPosition must be
// exactly len(initial) bytes. cmpsize is how many leading bytes take
// part in equality checks and hashing; zero means the whole state.
func NewSession(initial []byte, cmpsize int, opts ...Option) (*Session, error) {
	statesize := len(initial)
	if statesize < 1 || statesize > MaxStateSize {
		return nil, ErrBadStateSize
	}
	if cmpsize < 0 || cmpsize > statesize {
		return nil, ErrBadCompareSize
	}
	if cmpsize == 0 {
		cmpsize = statesize
	}
	stride := (positionOverhead + statesize + 7) &^ 7
	if stride > MaxStateSize {
		return nil, ErrBadStride
	}

	s := &Session{
		positions: newPositionArena(statesize),
		branches:  newBranchArena(),
		filter:    index.New(index.DefaultBits),
		hasher:    hashing.NewMeiyanHasher(),
		statesize: statesize,
		cmpsize:   cmpsize,
		grafting:  Graft,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rootpos = s.AddPosition(nil, 0, initial, 0, NoCheck)
	s.changed = false
	return s, nil
}

// Close releases the session's storage. The session and every position
// it ever returned become invalid.
func (s *Session) Close() {
	s.rootpos = nil
	s.positions = nil
	s.branches = nil
	s.filter = nil
}

// SetGrafting changes the grafting behaviour and returns the previous
// value.
func (s *Session) SetGrafting(g Grafting) Grafting {
	old := s.grafting
	s.grafting = g
	return old
}

// Root returns the position holding the initial state.
func (s *Session) Root() *Position {
	return s.rootpos
}

// Size returns the number of live positions in the session.
func (s *Session) Size() int {
	return s.positions.live
}

// StateSize returns the byte length of every state in the session.
func (s *Session) StateSize() int {
	return s.statesize
}

// CompareSize returns how many leading state bytes take part in
// equality checks and hashing.
func (s *Session) CompareSize() int {
	return s.cmpsize
}

// UpdateExtraState overwrites the non-comparing tail of a position's
// saved state, bytes cmpsize through statesize, with the corresponding
// bytes of state. It is a silent no-op when the whole state is compared.
func (s *Session) UpdateExtraState(pos *Position, state []byte) {
	if s.cmpsize == s.statesize {
		return
	}
	copy(pos.state[s.cmpsize:], state[s.cmpsize:s.statesize])
}

// Changed reports whether positions have been added to or removed from
// the session since creation or the last ClearChanged call.
func (s *Session) Changed() bool {
	return s.changed
}

// ClearChanged resets the change flag and returns its prior value.
func (s *Session) ClearChanged() bool {
	old := s.changed
	s.changed = false
	return old
}

// betterSolution reports whether solution (end1, size1) beats
// (end2, size2). A missing solution (size zero) always loses; a larger
// endpoint value always wins; equal endpoint values fall back to the
// shorter length.
func betterSolution(end1, size1, end2, size2 int) bool {
	if size1 == 0 {
		return false
	}
	if size2 == 0 {
		return true
	}
	if end1 != end2 {
		return end1 > end2
	}
	return size1 < size2
}

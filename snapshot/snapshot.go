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

// Package snapshot encodes a history session as a self-contained byte
// document and rebuilds one from it. Only the root state, the move
// labels, the endpoint values and a has-better flag per position are
// stored; every other state is regenerated at restore time by replaying
// the moves through a caller-supplied transition function, and better
// links are recomputed with a single deferred-resolution pass.
package snapshot

import (
	"fmt"

	"github.com/vmihailenco/msgpack"

	"github.com/histree/histree/tree"
)

// Node is one encoded position: the move that produced it and the
// subtree below it. Children appear in branch-list order, most recently
// used first, and are reinserted in reverse so the order survives a
// round trip.
type Node struct {
	Move     int     `msgpack:"m"`
	Endpoint int     `msgpack:"e,omitempty"`
	Better   bool    `msgpack:"b,omitempty"`
	Next     []*Node `msgpack:"n,omitempty"`
}

// Document is the top-level encoded session.
type Document struct {
	State       []byte  `msgpack:"s"`
	CompareSize int     `msgpack:"c"`
	Next        []*Node `msgpack:"n,omitempty"`
}

// Apply is the state transition function used at restore time: given a
// saved state and a move label it returns the resulting state. The
// returned buffer must be len(state) bytes and may be freshly
// allocated; it is copied by the session.
type Apply func(state []byte, move int) ([]byte, error)

// Take encodes the session's whole tree.
func Take(s *tree.Session) ([]byte, error) {
	root := s.Root()
	doc := &Document{
		State:       append([]byte{}, root.State()...),
		CompareSize: s.CompareSize(),
		Next:        takeChildren(root),
	}
	return msgpack.Marshal(doc)
}

func takeChildren(pos *tree.Position) []*Node {
	var nodes []*Node
	for b := pos.FirstBranch(); b != nil; b = b.Sibling() {
		child := b.Target()
		nodes = append(nodes, &Node{
			Move:     b.Move(),
			Endpoint: child.Endpoint(),
			Better:   child.Better() != nil || child.HasDeferredBetter(),
			Next:     takeChildren(child),
		})
	}
	return nodes
}

// Restore rebuilds a session from an encoded document. Positions whose
// better link was recorded as present are inserted with CheckLater and
// resolved in one pass at the end, so no per-insert equivalence scans
// happen during the replay. The restored session reports no pending
// changes.
func Restore(data []byte, apply Apply, opts ...tree.Option) (*tree.Session, error) {
	var doc Document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	s, err := tree.NewSession(doc.State, doc.CompareSize, opts...)
	if err != nil {
		return nil, err
	}
	if err := restoreChildren(s, s.Root(), doc.State, doc.Next, apply); err != nil {
		return nil, err
	}
	s.ResolveBetters()
	s.ClearChanged()
	return s, nil
}

func restoreChildren(s *tree.Session, parent *tree.Position, state []byte, nodes []*Node, apply Apply) error {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		next, err := apply(state, n.Move)
		if err != nil {
			return fmt.Errorf("replaying move %d at depth %d: %v", n.Move, parent.MoveCount(), err)
		}
		if len(next) != len(state) {
			return fmt.Errorf("replaying move %d at depth %d: got %d state bytes, want %d",
				n.Move, parent.MoveCount(), len(next), len(state))
		}
		mode := tree.NoCheck
		if n.Better {
			mode = tree.CheckLater
		}
		pos := s.AddPosition(parent, n.Move, next, n.Endpoint, mode)
		if err := restoreChildren(s, pos, next, n.Next, apply); err != nil {
			return err
		}
	}
	return nil
}

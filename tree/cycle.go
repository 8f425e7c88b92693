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

package tree

import "bytes"

// SuppressCycle checks whether state revisits a state already seen on
// the path of moves leading to from. When an ancestor matches, that
// ancestor is returned with true: the caller should make it the current
// position instead of adding a new one. If the matching ancestor is at
// most pruneLimit moves back, the intervening positions are deleted as
// well, from from upwards, stopping at the first one that still has
// another outgoing branch. With
// no match, from itself is returned with false and the session is
// unchanged.
func (s *Session) SuppressCycle(from *Position, state []byte, pruneLimit int) (*Position, bool) {
	n := 0
	for p := from; p != nil; p = p.prev {
		if bytes.Equal(p.state[:s.cmpsize], state[:s.cmpsize]) {
			if n <= pruneLimit {
				s.pruneChain(from, p)
			}
			return p, true
		}
		n++
	}
	return from, false
}

// pruneChain deletes the positions on the path from leaf up to, but not
// including, branchpoint. Deletion proceeds leaf upwards and stops at
// the first position that has an outgoing branch left, so lines that
// grew side branches survive. It reports whether the whole chain was
// deleted.
func (s *Session) pruneChain(leaf, branchpoint *Position) bool {
	pos := leaf
	dropped := false
	for pos != nil && pos != branchpoint {
		if pos.next != nil {
			break
		}
		cur := pos
		pos = pos.prev
		s.removeBranch(pos, cur)

		better := cur.better
		s.positions.scan(func(q *Position) bool {
			if q.better == cur {
				q.better = better
			}
			return true
		})

		s.positions.release(cur)
		dropped = true
		s.changed = true
	}
	if dropped {
		s.recalcSolution(pos)
		s.rebuildIndex()
	}
	return pos == branchpoint
}

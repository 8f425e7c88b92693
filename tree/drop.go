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

// DropPosition deletes a leaf position. The deleted position's parent
// is returned. A position with outgoing branches, or the root, cannot
// be deleted: it is returned unchanged and the session is not modified.
//
// Better links elsewhere in the session that pointed at the deleted
// position are redirected to its own better, or cleared.
func (s *Session) DropPosition(pos *Position) *Position {
	if pos.prev == nil || pos.next != nil {
		return pos
	}
	prev := pos.prev
	if !s.removeBranch(prev, pos) {
		return pos
	}

	better := pos.better
	s.positions.scan(func(p *Position) bool {
		if p.better == pos {
			p.better = better
		}
		return true
	})

	s.positions.release(pos)
	s.recalcSolution(prev)
	s.rebuildIndex()
	s.changed = true
	return prev
}

// removeBranch unlinks and releases the branch from a parent to one of
// its children. It reports whether such a branch existed.
func (s *Session) removeBranch(from, to *Position) bool {
	next := from.next
	if next == nil {
		return false
	}
	if next.p == to {
		from.next = next.cdr
	} else {
		for {
			b := next
			next = next.cdr
			if next == nil {
				return false
			}
			if next.p == to {
				b.cdr = next.cdr
				break
			}
		}
	}
	s.branches.release(next)
	from.nextcount--
	return true
}

// rebuildIndex resets the presence filter and re-adds the hash of every
// live position. Deletions leave stale bits behind, so any operation
// that removed a position calls this before returning.
func (s *Session) rebuildIndex() {
	if s.filter == nil {
		return
	}
	s.filter.Reset()
	s.positions.scan(func(p *Position) bool {
		s.filter.Add(p.hashvalue)
		return true
	})
}

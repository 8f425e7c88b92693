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

// lookupEquiv returns the end of the better chain of some live position
// whose comparing prefix equals the given state's, or nil when no such
// position exists. The presence filter rules most misses out without a
// scan; positions with an unresolved better link are skipped.
func (s *Session) lookupEquiv(state []byte) *Position {
	digest := s.hasher.Do(state[:s.cmpsize])
	if s.filter != nil && !s.filter.Has(digest) {
		return nil
	}
	var found *Position
	s.positions.scan(func(p *Position) bool {
		if p.setbetter || p.hashvalue != digest {
			return true
		}
		if !bytes.Equal(p.state[:s.cmpsize], state[:s.cmpsize]) {
			return true
		}
		found = p
		return false
	})
	if found == nil {
		return nil
	}
	for found.better != nil {
		found = found.better
	}
	return found
}

// ResolveBetters visits every position whose equivalence check was
// deferred with CheckLater and initialises its better field with the
// same move count comparison AddPosition applies online, but without
// grafting. It returns the number of better links set.
//
// A serialiser can therefore omit better values entirely, record only
// which positions had one, reinsert those with CheckLater and call
// ResolveBetters once at the end.
func (s *Session) ResolveBetters() int {
	count := 0
	s.positions.scan(func(pos *Position) bool {
		if !pos.setbetter {
			return true
		}
		other := s.lookupEquiv(pos.state)
		switch {
		case other == nil:
			pos.better = nil
		case other.movecount > pos.movecount:
			pos.better = nil
			if other.better == nil {
				other.better = pos
				other.setbetter = false
				count++
			}
		default:
			pos.better = other
			count++
		}
		pos.setbetter = false
		return true
	})
	return count
}

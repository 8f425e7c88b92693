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

// AddPosition returns the position reached from prev by making the
// given move. If prev already has a branch for the move, its target is
// returned unchanged and the session is not modified. Otherwise a new
// position is created holding a copy of state.
//
// endpoint marks a terminal state: zero for ordinary positions, any
// other value for a solution. Larger values mark preferred solution
// kinds. Endpoint positions are never matched against earlier states.
//
// check selects equivalence detection: Check compares the new state
// against every state in the session and links or grafts when a match
// is found, CheckLater defers that work to ResolveBetters, NoCheck
// skips it.
//
// A nil prev creates a parentless position at move count zero; the
// session does this once itself for the root.
func (s *Session) AddPosition(prev *Position, move int, state []byte, endpoint int, check CheckMode) *Position {
	if prev != nil {
		if pos := prev.Next(move); pos != nil {
			return pos
		}
	}

	var equiv *Position
	if check == Check && endpoint == 0 {
		equiv = s.lookupEquiv(state)
	}

	pos := s.positions.take()
	copy(pos.state, state[:s.statesize])
	pos.endpoint = endpoint
	pos.hashvalue = s.hasher.Do(state[:s.cmpsize])
	if s.filter != nil {
		s.filter.Add(pos.hashvalue)
	}
	if prev != nil {
		b := s.branches.take(pos, move, prev.next)
		prev.next = b
		prev.nextcount++
	}

	pos.setbetter = check == CheckLater
	pos.prev = prev
	if prev != nil {
		pos.movecount = prev.movecount + 1
	}

	if endpoint != 0 {
		size := pos.movecount
		pos.solutionend = endpoint
		pos.solutionsize = size
		for p := prev; p != nil; p = p.prev {
			if !betterSolution(endpoint, size, p.solutionend, p.solutionsize) {
				break
			}
			p.solutionend = endpoint
			p.solutionsize = size
		}
	}

	if equiv != nil {
		if pos.movecount >= equiv.movecount {
			pos.better = equiv
		} else {
			equiv.better = pos
			switch s.grafting {
			case CopyPath:
				s.DuplicatePath(pos, equiv)
			case Graft, GraftAndCopy:
				s.graft(pos, equiv)
				s.recalcSolution(equiv)
				if s.grafting == GraftAndCopy {
					s.DuplicatePath(equiv, pos)
				}
			}
		}
	}

	s.changed = true
	return pos
}

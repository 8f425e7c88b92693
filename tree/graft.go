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

// graft moves the entire subtree rooted at src to dest, leaving src a
// leaf. dest and src hold the same state, dest in fewer moves; every
// transplanted position's move count shifts by the difference. No
// positions are allocated or freed.
func (s *Session) graft(dest, src *Position) {
	dest.next = src.next
	dest.nextcount = src.nextcount
	src.next = nil
	src.nextcount = 0
	for b := dest.next; b != nil; b = b.cdr {
		b.p.prev = dest
	}
	delta := dest.movecount - src.movecount
	dest.movecount = src.movecount
	dest.solutionsize = src.solutionsize
	dest.solutionend = src.solutionend
	s.adjustMoveCount(dest, delta)
	if dest.solutionsize != 0 {
		end, size := dest.solutionend, dest.solutionsize
		for p := dest.prev; p != nil; p = p.prev {
			if betterSolution(end, size, p.solutionend, p.solutionsize) {
				p.solutionend = end
				p.solutionsize = size
			}
		}
	}
}

// adjustMoveCount shifts the move count of the subtree rooted at pos by
// delta. Non-zero solution sizes shift with it, since they are counted
// from the root. A better link whose target is now deeper than the
// position itself gets inverted.
func (s *Session) adjustMoveCount(pos *Position, delta int) {
	pos.movecount += delta
	if pos.solutionsize != 0 {
		pos.solutionsize += delta
	}
	if pos.better != nil && pos.better.movecount > pos.movecount {
		pos.better.better = pos
		pos.better = nil
	}
	for b := pos.next; b != nil; b = b.cdr {
		s.adjustMoveCount(b.p, delta)
	}
}

// recalcSolution refreshes the solution fields of every position from
// pos up to the root. Each position's record is recomputed from its own
// endpoint and its children's records: the largest endpoint value wins,
// ties go to the shortest solution. Positions with no endpoint below
// them reset to zero.
func (s *Session) recalcSolution(pos *Position) {
	for p := pos; p != nil; p = p.prev {
		end, size := 0, 0
		if p.endpoint != 0 {
			end, size = p.endpoint, p.movecount
		}
		for b := p.next; b != nil; b = b.cdr {
			if betterSolution(b.p.solutionend, b.p.solutionsize, end, size) {
				end, size = b.p.solutionend, b.p.solutionsize
			}
		}
		p.solutionend = end
		p.solutionsize = size
	}
}

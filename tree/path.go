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

// DuplicatePath copies the sequence of moves leading to the best
// solution below src into dest's subtree, move by move. dest is assumed
// to hold a state equivalent to src's; the session's contents are
// undefined otherwise. Nothing is done, and false returned, when src
// has no solution below it.
//
// While copying, once dest's move count has caught up with src's and
// dest has no better of its own, dest's better is pointed at src (or at
// src's own better when it has one).
func (s *Session) DuplicatePath(dest *Position, src *Position) bool {
	if src.solutionsize == 0 {
		return false
	}
	for src != nil && src.solutionsize != 0 {
		var b *Branch
		for b = src.next; b != nil; b = b.cdr {
			if b.p.solutionsize == src.solutionsize && b.p.solutionend == src.solutionend {
				break
			}
		}
		if b == nil {
			break
		}
		next := s.AddPosition(dest, b.move, b.p.state, b.p.endpoint, NoCheck)
		if next == nil {
			return false
		}
		if dest.better == nil && dest.movecount >= src.movecount {
			if src.better != nil {
				dest.better = src.better
			} else {
				dest.better = src
			}
		}
		src = b.p
		dest = next
	}
	return true
}

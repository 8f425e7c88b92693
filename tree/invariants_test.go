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

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// checkInvariants verifies the structural invariants of a session's
// whole tree. Tests call it after every interesting mutation.
func checkInvariants(t *testing.T, s *Session) {
	t.Helper()

	root := s.Root()
	require.NotNil(t, root, "The session must have a root")
	require.Nil(t, root.prev, "The root must have no parent")
	require.Equal(t, 0, root.movecount, "The root must be at move count zero")

	count := 0
	var walk func(p *Position)
	walk = func(p *Position) {
		count++

		branches := 0
		moves := make(map[int]bool)
		for b := p.next; b != nil; b = b.cdr {
			require.Falsef(t, moves[b.move], "Move %d appears twice in a branch list", b.move)
			moves[b.move] = true
			branches++
			require.Equal(t, p, b.p.prev, "A child's prev must be its parent")
			require.Equal(t, p.movecount+1, b.p.movecount, "A child must be one move deeper than its parent")
			walk(b.p)
		}
		require.Equal(t, p.nextcount, branches, "nextcount must match the branch list length")

		if p.better != nil {
			require.True(t, p.better.inuse, "A better link must point at a live position")
			require.True(t, bytes.Equal(p.state[:s.cmpsize], p.better.state[:s.cmpsize]),
				"A better link must point at an equal state")
			require.True(t, p.better.movecount <= p.movecount,
				"A better link must not point at a deeper position")
		}

		end, size := bestSolutionBrute(p)
		require.Equal(t, end, p.solutionend, "solutionend must match the best endpoint below")
		require.Equal(t, size, p.solutionsize, "solutionsize must match the best endpoint below")

		if s.filter != nil {
			require.True(t, s.filter.Has(p.hashvalue), "Every live hash must be present in the index")
		}
	}
	walk(root)

	require.Equal(t, s.Size(), count, "Every live position must be reachable from the root")
}

// bestSolutionBrute recomputes a position's solution record the slow
// way, from its whole subtree.
func bestSolutionBrute(p *Position) (end, size int) {
	if p.endpoint != 0 {
		end, size = p.endpoint, p.movecount
	}
	for b := p.next; b != nil; b = b.cdr {
		if e, n := bestSolutionBrute(b.p); betterSolution(e, n, end, size) {
			end, size = e, n
		}
	}
	return end, size
}

// testState returns a 33-byte state whose comparing prefix is derived
// from id and whose final, non-comparing byte is extra.
func testState(id byte, extra byte) []byte {
	buf := make([]byte, 33)
	buf[0] = id
	buf[16] = id ^ 0x5A
	buf[32] = extra
	return buf
}

// openTestSession creates the session every scenario test uses:
// statesize 33, cmpsize 32.
func openTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(testState(0, 0), 32, opts...)
	require.NoError(t, err)
	return s
}

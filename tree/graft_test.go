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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGraftTree sets up the canonical grafting scenario: a line of
// three positions below the root whose deepest member has two children,
// one of them a solution endpoint.
//
//	root -c-> c1 -c-> c2 -c-> c3 -a-> c4
//	                            \c-> c5 (endpoint 1)
//
// It returns the deepest line position c3 and its shared state.
func buildGraftTree(t *testing.T, s *Session) (*Position, []byte) {
	t.Helper()
	root := s.Root()
	shared := testState(3, 0)
	c1 := s.AddPosition(root, 'c', testState(1, 0), 0, Check)
	c2 := s.AddPosition(c1, 'c', testState(2, 0), 0, Check)
	c3 := s.AddPosition(c2, 'c', shared, 0, Check)
	s.AddPosition(c3, 'a', testState(4, 0), 0, Check)
	s.AddPosition(c3, 'c', testState(5, 0), 1, Check)

	require.Equal(t, 1, s.Root().SolutionEnd())
	require.Equal(t, 4, s.Root().SolutionSize())
	return c3, shared
}

func TestGraftTransplantsSubtree(t *testing.T) {
	s := openTestSession(t)
	defer s.Close()
	root := s.Root()

	c3, shared := buildGraftTree(t, s)
	d := s.AddPosition(root, 'd', shared, 0, Check)

	assert.Equal(t, 0, c3.NextCount(), "The old position must become a leaf")
	assert.Nil(t, c3.FirstBranch())
	assert.Equal(t, d, c3.Better())
	assert.Equal(t, 2, d.NextCount(), "Both children must now live under the new position")
	for b := d.FirstBranch(); b != nil; b = b.Sibling() {
		assert.Equal(t, d, b.Target().Prev())
		assert.Equal(t, 2, b.Target().MoveCount(), "Transplanted children must shift with the new depth")
	}
	assert.Equal(t, 1, root.SolutionEnd())
	assert.Equal(t, 2, root.SolutionSize(), "The solution must now be reachable in two moves")
	assert.Equal(t, 7, s.Size(), "Grafting must not allocate or free positions")
	checkInvariants(t, s)
}

func TestNoGraftOnlyLinks(t *testing.T) {
	s := openTestSession(t, WithGrafting(NoGraft))
	defer s.Close()
	root := s.Root()

	c3, shared := buildGraftTree(t, s)
	d := s.AddPosition(root, 'd', shared, 0, Check)

	assert.Equal(t, d, c3.Better())
	assert.Equal(t, 2, c3.NextCount(), "The old subtree must stay put")
	assert.Equal(t, 0, d.NextCount())
	assert.Equal(t, 4, root.SolutionSize(), "The solution must keep its old length")
	checkInvariants(t, s)
}

func TestCopyPathReproducesSolution(t *testing.T) {
	s := openTestSession(t, WithGrafting(CopyPath))
	defer s.Close()
	root := s.Root()

	c3, shared := buildGraftTree(t, s)
	d := s.AddPosition(root, 'd', shared, 0, Check)

	assert.Equal(t, d, c3.Better())
	assert.Equal(t, 2, c3.NextCount(), "The old subtree must stay put")
	require.Equal(t, 1, d.NextCount(), "Only the solution path must be copied")
	copied := d.FirstBranch().Target()
	assert.Equal(t, int('c'), d.FirstBranch().Move())
	assert.Equal(t, 1, copied.Endpoint())
	assert.Equal(t, 2, copied.MoveCount())
	assert.Equal(t, 2, root.SolutionSize())
	assert.Equal(t, 1, root.SolutionEnd())
	checkInvariants(t, s)
}

func TestCopyPathWithoutSolutionCopiesNothing(t *testing.T) {
	s := openTestSession(t, WithGrafting(CopyPath))
	defer s.Close()
	root := s.Root()

	shared := testState(7, 0)
	a := s.AddPosition(root, 'a', testState(1, 0), 0, Check)
	aa := s.AddPosition(a, 'a', shared, 0, Check)
	s.AddPosition(aa, 'b', testState(2, 0), 0, Check)

	d := s.AddPosition(root, 'd', shared, 0, Check)
	assert.Equal(t, d, aa.Better())
	assert.Equal(t, 0, d.NextCount(), "With no solution below, copypath must behave like nograft")
	assert.Equal(t, 1, aa.NextCount())
	checkInvariants(t, s)
}

func TestGraftAndCopyRestoresOldSite(t *testing.T) {
	s := openTestSession(t, WithGrafting(GraftAndCopy))
	defer s.Close()
	root := s.Root()

	c3, shared := buildGraftTree(t, s)
	d := s.AddPosition(root, 'd', shared, 0, Check)

	assert.Equal(t, 2, d.NextCount(), "The subtree must be grafted to the new position")
	require.Equal(t, 1, c3.NextCount(), "The solution must be copied back to the old site")
	back := c3.FirstBranch().Target()
	assert.Equal(t, 1, back.Endpoint())
	assert.Equal(t, 4, back.MoveCount())
	assert.Equal(t, 4, c3.SolutionSize())
	assert.Equal(t, 2, root.SolutionSize(), "The root must keep the shorter solution")
	checkInvariants(t, s)
}

func TestGraftInvertsOutdatedBetterLinks(t *testing.T) {
	s := openTestSession(t)
	defer s.Close()
	root := s.Root()

	sharedA := testState(10, 0)
	sharedB := testState(11, 0)

	// First route to sharedB, three moves deep.
	c := s.AddPosition(root, 4, testState(1, 0), 0, Check)
	d := s.AddPosition(c, 5, testState(2, 0), 0, Check)
	e := s.AddPosition(d, 6, sharedB, 0, Check)

	// Second route: x -> a(sharedA) -> b(sharedB). b is as deep as e,
	// so b gets the better link.
	x := s.AddPosition(root, 1, testState(3, 0), 0, Check)
	a := s.AddPosition(x, 2, sharedA, 0, Check)
	b := s.AddPosition(a, 3, sharedB, 0, Check)
	require.Equal(t, e, b.Better())

	// A one-move route to sharedA grafts a's subtree, lifting b above
	// e. The stale link must flip around.
	n := s.AddPosition(root, 7, sharedA, 0, Check)
	require.Equal(t, n, a.Better())

	assert.Equal(t, 2, b.MoveCount())
	assert.Nil(t, b.Better(), "The lifted position must drop its outdated better")
	assert.Equal(t, b, e.Better(), "The old target must point back at the lifted position")
	checkInvariants(t, s)
}

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

// buildChain grows a line of positions below the root and returns its
// leaf.
func buildChain(s *Session, length int) *Position {
	cur := s.Root()
	for i := 0; i < length; i++ {
		cur = s.AddPosition(cur, 1, testState(byte(i+1), 0), 0, NoCheck)
	}
	return cur
}

func TestSuppressCyclePrunesLine(t *testing.T) {
	s := openTestSession(t)
	defer s.Close()

	leaf := buildChain(s, 3)
	require.Equal(t, 4, s.Size())

	pos, found := s.SuppressCycle(leaf, testState(0, 0), 3)
	assert.True(t, found)
	assert.Equal(t, s.Root(), pos, "The current position must land on the matching ancestor")
	assert.Equal(t, 1, s.Size(), "All three intermediate positions must be freed")
	assert.Equal(t, 0, s.Root().NextCount())
	checkInvariants(t, s)
}

func TestSuppressCycleBeyondPruneLimit(t *testing.T) {
	s := openTestSession(t)
	defer s.Close()

	leaf := buildChain(s, 3)

	pos, found := s.SuppressCycle(leaf, testState(0, 0), 2)
	assert.True(t, found, "The cycle must still be reported")
	assert.Equal(t, s.Root(), pos)
	assert.Equal(t, 4, s.Size(), "Beyond the prune limit nothing must be deleted")
	checkInvariants(t, s)
}

func TestSuppressCycleNoMatch(t *testing.T) {
	s := openTestSession(t)
	defer s.Close()

	leaf := buildChain(s, 3)
	s.ClearChanged()

	pos, found := s.SuppressCycle(leaf, testState(99, 0), 10)
	assert.False(t, found)
	assert.Equal(t, leaf, pos, "Without a match the current position must stay put")
	assert.Equal(t, 4, s.Size())
	assert.False(t, s.Changed(), "A miss must not modify the session")
	checkInvariants(t, s)
}

func TestSuppressCycleMatchesNearestAncestor(t *testing.T) {
	s := openTestSession(t)
	defer s.Close()

	// Two ancestors share the offered state; the nearer one wins.
	root := s.Root()
	a := s.AddPosition(root, 1, testState(5, 0), 0, NoCheck)
	b := s.AddPosition(a, 2, testState(6, 0), 0, NoCheck)
	c := s.AddPosition(b, 3, testState(5, 0), 0, NoCheck)
	leaf := s.AddPosition(c, 4, testState(7, 0), 0, NoCheck)

	pos, found := s.SuppressCycle(leaf, testState(5, 0), 0)
	assert.True(t, found)
	assert.Equal(t, c, pos)
	assert.Equal(t, 5, s.Size())
	checkInvariants(t, s)
}

func TestSuppressCyclePruneStopsAtSideBranch(t *testing.T) {
	s := openTestSession(t)
	defer s.Close()
	root := s.Root()

	a := s.AddPosition(root, 1, testState(1, 0), 0, NoCheck)
	b := s.AddPosition(a, 2, testState(2, 0), 0, NoCheck)
	s.AddPosition(b, 9, testState(9, 0), 0, NoCheck) // side branch below b
	c := s.AddPosition(b, 3, testState(3, 0), 0, NoCheck)
	require.Equal(t, 5, s.Size())

	pos, found := s.SuppressCycle(c, testState(0, 0), 10)
	assert.True(t, found)
	assert.Equal(t, s.Root(), pos)
	assert.Equal(t, 4, s.Size(), "Only the unbranched tail must be deleted")
	assert.NotNil(t, b.Next(9), "The side branch must survive")
	assert.Nil(t, b.Next(3))
	checkInvariants(t, s)
}

func TestSuppressCyclePruneRewritesBetters(t *testing.T) {
	s := openTestSession(t)
	defer s.Close()
	root := s.Root()

	shared := testState(7, 0)
	a := s.AddPosition(root, 1, shared, 0, Check)
	b := s.AddPosition(a, 2, testState(2, 0), 0, Check)

	// A deeper route to a's state: its better points into the chain
	// that is about to be pruned.
	x := s.AddPosition(root, 8, testState(3, 0), 0, Check)
	deep := s.AddPosition(x, 9, shared, 0, Check)
	require.Equal(t, a, deep.Better())

	// Close the cycle from b back to the root and prune a and b.
	pos, found := s.SuppressCycle(b, testState(0, 0), 5)
	require.True(t, found)
	require.Equal(t, root, pos)
	require.Equal(t, 3, s.Size())

	assert.Nil(t, deep.Better(), "A better reference into the pruned chain must be rewritten")
	checkInvariants(t, s)
}

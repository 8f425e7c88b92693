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

// Positions and branches are vended from chunked arenas rather than
// allocated one by one. Each chunk is a fixed-size slice that is never
// grown, so element pointers stay stable for the life of the session.
// Released elements are threaded onto a free list through an explicit
// freelink field and are skipped by scans via the inuse marker. The
// position chunk carries a parallel byte buffer holding every element's
// state inline; each position's state slice aliases into it.

const chunkSize = 1024

type positionChunk struct {
	elems  []Position
	states []byte
}

type positionArena struct {
	chunks    []*positionChunk
	free      *Position
	statesize int
	live      int
}

func newPositionArena(statesize int) *positionArena {
	a := &positionArena{statesize: statesize}
	a.grow()
	return a
}

func (a *positionArena) grow() {
	c := &positionChunk{
		elems:  make([]Position, chunkSize),
		states: make([]byte, chunkSize*a.statesize),
	}
	for i := range c.elems {
		c.elems[i].state = c.states[i*a.statesize : (i+1)*a.statesize : (i+1)*a.statesize]
		if i+1 < chunkSize {
			c.elems[i].freelink = &c.elems[i+1]
		}
	}
	c.elems[chunkSize-1].freelink = a.free
	a.free = &c.elems[0]
	a.chunks = append(a.chunks, c)
}

func (a *positionArena) take() *Position {
	if a.free == nil {
		a.grow()
	}
	pos := a.free
	a.free = pos.freelink
	pos.freelink = nil
	pos.inuse = true
	a.live++
	return pos
}

func (a *positionArena) release(pos *Position) {
	state := pos.state
	*pos = Position{state: state}
	pos.freelink = a.free
	a.free = pos
	a.live--
}

// scan visits every live position. It stops early when fn returns false.
func (a *positionArena) scan(fn func(*Position) bool) {
	for _, c := range a.chunks {
		for i := range c.elems {
			p := &c.elems[i]
			if !p.inuse {
				continue
			}
			if !fn(p) {
				return
			}
		}
	}
}

type branchArena struct {
	chunks [][]Branch
	free   *Branch
}

func newBranchArena() *branchArena {
	a := new(branchArena)
	a.grow()
	return a
}

func (a *branchArena) grow() {
	c := make([]Branch, chunkSize)
	for i := range c {
		if i+1 < chunkSize {
			c[i].freelink = &c[i+1]
		}
	}
	c[chunkSize-1].freelink = a.free
	a.free = &c[0]
	a.chunks = append(a.chunks, c)
}

func (a *branchArena) take(to *Position, move int, cdr *Branch) *Branch {
	if a.free == nil {
		a.grow()
	}
	b := a.free
	a.free = b.freelink
	b.freelink = nil
	b.p = to
	b.move = move
	b.cdr = cdr
	return b
}

func (a *branchArena) release(b *Branch) {
	*b = Branch{}
	b.freelink = a.free
	a.free = b
}

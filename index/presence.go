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

// Package index implements a presence bit-index over 16-bit digests.
// It answers "could this digest be present?" queries: a negative answer
// is definitive, a positive answer must be confirmed by the caller.
package index

// DefaultBits is the default table size. A prime keeps the modulo
// spread even for digests that share low bits.
const DefaultBits = 8191

// Presence is a single bit-vector membership filter. Bits are set when
// digests are added and are only cleared wholesale by Reset, so a
// deletion elsewhere leaves stale bits until the owner rebuilds the
// filter from its live set.
type Presence struct {
	words []uint64
	nbits uint32
}

// New returns a filter with the given number of bits. Sizes below one
// fall back to DefaultBits.
func New(nbits int) *Presence {
	if nbits < 1 {
		nbits = DefaultBits
	}
	return &Presence{
		words: make([]uint64, (nbits+63)/64),
		nbits: uint32(nbits),
	}
}

// Add sets the bit for the given digest.
func (x *Presence) Add(digest uint16) {
	i := uint32(digest) % x.nbits
	x.words[i>>6] |= 1 << (i & 63)
}

// Has reports whether the bit for the given digest is set. False means
// the digest was never added since the last Reset; true may be spurious.
func (x *Presence) Has(digest uint16) bool {
	i := uint32(digest) % x.nbits
	return x.words[i>>6]&(1<<(i&63)) != 0
}

// Reset clears every bit.
func (x *Presence) Reset() {
	for i := range x.words {
		x.words[i] = 0
	}
}

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

// Package rand provides random byte buffers for tests.
package rand

import "math/rand"

// Bytes returns a buffer of n random bytes.
func Bytes(n int) []byte {
	buf := make([]byte, n)
	rand.Read(buf)
	return buf
}

// BytesRand returns a buffer of n random bytes drawn from r, so tests
// can be made deterministic by seeding.
func BytesRand(n int, r *rand.Rand) []byte {
	buf := make([]byte, n)
	r.Read(buf)
	return buf
}

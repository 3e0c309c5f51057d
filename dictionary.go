// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package blz

import (
	"github.com/ulikunitz/blz/dict"
)

// dictSearcher gates and performs probes into the static dictionary.
// Dictionary probes are expensive, so they are only issued while past
// matches have paid for themselves: the number of successful matches must
// stay at or above 1/128 of the number of lookups.
type dictSearcher struct {
	d       *dict.Dictionary
	lookups uint64
	matches uint64
}

func (s *dictSearcher) reset() {
	s.lookups = 0
	s.matches = 0
}

// allowed reports whether a probe may be issued at all.
func (s *dictSearcher) allowed() bool {
	return s.d != nil && s.matches >= s.lookups>>7
}

// find probes the hash slots for the 4-byte prefix p and updates res if a
// dictionary match scores better. A shallow search probes only the first of
// the two slots. maxBackward is added to the synthesized word identifier to
// keep dictionary distances outside the window range.
func (s *dictSearcher) find(p []byte, maxLen, maxBackward int, shallow bool,
	res *Search) bool {

	probes := 2
	if shallow {
		probes = 1
	}
	key := hash32(_getLE32(p), 14) << 1
	found := false
	for j := 0; j < probes; j++ {
		s.lookups++
		v := s.d.HashTable[key|uint32(j)]
		if v == 0 {
			continue
		}
		n := int(v & 31)
		index := int(v >> 5)
		if n > maxLen || n > s.d.MaxLen() {
			// Corrupt or oversized entries are ignored.
			continue
		}
		word := s.d.Word(n, index)
		k := matchLen(p, word, n)
		if k+dict.CutoffTransformsCount <= n || k == 0 {
			continue
		}
		transform := int(dict.CutoffTransforms[n-k])
		wordID := transform<<s.d.SizeBitsByLength[n] + index
		backward := maxBackward + wordID + 1
		sc := score(k, backward)
		if sc > res.Score {
			s.matches++
			res.Len = k
			res.LenCode = n
			res.Distance = backward
			res.Score = sc
			found = true
		}
	}
	return found
}

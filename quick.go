// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package blz

import (
	"github.com/ulikunitz/blz/dict"
)

// quickHash is a forgetful hash table over the data seen by the compressor.
// It is a fixed-size map keyed on five bytes; starting from the hashed slot,
// sweep adjacent slots store positions for the key, so a stored position
// survives a few follow-up stores. At most one match is produced per query.
// Qualities 1 to 4 use this structure.
type quickHash struct {
	buckets  []uint32
	hashBits uint
	sweep    uint32
	dict     dictSearcher
}

func newQuickHash(hashBits, sweep int, d *dict.Dictionary) *quickHash {
	h := &quickHash{
		buckets:  make([]uint32, 1<<hashBits+sweep),
		hashBits: uint(hashBits),
		sweep:    uint32(sweep),
		dict:     dictSearcher{d: d},
	}
	return h
}

func (h *quickHash) reset() {
	// It is not strictly necessary to clear the buckets, but not clearing
	// makes the results of the compression stochastic: random leftovers
	// would produce accidentally good backward references here and there.
	// Position 0 remains a valid entry afterwards; queries reject it
	// through the backward == 0 check.
	clear(h.buckets)
	h.dict.reset()
}

// store hashes the five bytes at p and records the position i in one of the
// sweep slots. p points at the masked position inside the ring buffer.
func (h *quickHash) store(p []byte, i uint32) {
	key := hash5(getLE64(p), h.hashBits)
	off := (i >> 3) % h.sweep
	h.buckets[key+off] = i
}

func (h *quickHash) findLongestMatch(data []byte, mask uint32,
	distCache []int, cur uint32, maxLen, maxBackward int,
	res *Search) bool {

	curMasked := int(cur & mask)
	p := data[curMasked:]
	bestLen := res.Len
	cc := -1
	if curMasked+bestLen < len(data) {
		cc = int(data[curMasked+bestLen])
	}
	bestScore := res.Score
	matchFound := false

	// The most recent distance is the only cached distance worth probing
	// at these qualities.
	backward := distCache[0]
	if prev := cur - uint32(backward); prev < cur {
		prevMasked := int(prev & mask)
		if prevMasked+bestLen < len(data) &&
			cc == int(data[prevMasked+bestLen]) {
			n := matchLen(data[prevMasked:], p, maxLen)
			if n >= 4 {
				bestScore = scoreShortCode(n, 0)
				bestLen = n
				res.Len = n
				res.LenCode = n
				res.Distance = backward
				res.Score = bestScore
				if h.sweep == 1 {
					return true
				}
				matchFound = true
				cc = -1
				if curMasked+bestLen < len(data) {
					cc = int(data[curMasked+bestLen])
				}
			}
		}
	}

	key := hash5(getLE64(p), h.hashBits)
	for off := uint32(0); off < h.sweep; off++ {
		prev := h.buckets[key+off]
		backward := cur - prev
		prevMasked := int(prev & mask)
		if backward == 0 || uint64(backward) > uint64(maxBackward) {
			continue
		}
		if prevMasked+bestLen >= len(data) ||
			cc != int(data[prevMasked+bestLen]) {
			continue
		}
		n := matchLen(data[prevMasked:], p, maxLen)
		if n < 4 {
			continue
		}
		sc := score(n, int(backward))
		if sc <= bestScore {
			continue
		}
		bestScore = sc
		bestLen = n
		res.Len = n
		res.LenCode = n
		res.Distance = int(backward)
		res.Score = sc
		cc = -1
		if curMasked+bestLen < len(data) {
			cc = int(data[curMasked+bestLen])
		}
		matchFound = true
	}

	if !matchFound && len(p) >= 4 && h.dict.allowed() {
		if h.dict.find(p, maxLen, maxBackward, true, res) {
			return true
		}
	}
	return matchFound
}

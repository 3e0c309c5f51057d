// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package blz

import (
	"github.com/ulikunitz/blz/dict"
)

// blockHash maps a four-byte hash to a ring of the most recent positions
// stored for that key. Each bucket holds the last 1<<blockBits positions;
// older ones are forgotten. Qualities 5 to 9 use this structure with growing
// bucket and block sizes.
type blockHash struct {
	// Wraps at 16 bits after 65536 stores into one bucket. The scan
	// below still terminates because only the low blockBits select a
	// slot, but the newest-first order is then only preserved modulo
	// 65536.
	num []uint16

	buckets []uint32

	hashBits      uint
	blockBits     uint
	blockMask     uint32
	lastDistances int

	dict dictSearcher
}

func newBlockHash(hashBits, blockBits, lastDistances int,
	d *dict.Dictionary) *blockHash {

	return &blockHash{
		num:           make([]uint16, 1<<hashBits),
		buckets:       make([]uint32, 1<<(hashBits+blockBits)),
		hashBits:      uint(hashBits),
		blockBits:     uint(blockBits),
		blockMask:     1<<blockBits - 1,
		lastDistances: lastDistances,
		dict:          dictSearcher{d: d},
	}
}

func (h *blockHash) reset() {
	// The buckets keep their contents; they are unreachable while the
	// counters are zero.
	clear(h.num)
	h.dict.reset()
}

// store hashes the four bytes at p and appends position i to the bucket
// ring.
func (h *blockHash) store(p []byte, i uint32) {
	key := hash32(uint32(getLE64(p)), h.hashBits)
	minor := uint32(h.num[key]) & h.blockMask
	h.buckets[key<<h.blockBits+minor] = i
	h.num[key]++
}

// tailLimit returns the highest index of data that both the mask and the
// slice length allow to be read.
func tailLimit(data []byte, mask uint32) int {
	n := len(data) - 1
	if m := int(mask); m < n {
		n = m
	}
	return n
}

func (h *blockHash) findLongestMatch(data []byte, mask uint32,
	distCache []int, cur uint32, maxLen, maxBackward int,
	res *Search) bool {

	curMasked := int(cur & mask)
	p := data[curMasked:]
	limit := tailLimit(data, mask)
	bestScore := res.Score
	bestLen := res.Len
	matchFound := false

	// Try the cached distances first.
	for j := 0; j < h.lastDistances; j++ {
		backward := distCache[distShortCodeIndex[j]] +
			distShortCodeOffset[j]
		prev := cur - uint32(backward)
		if prev >= cur {
			continue
		}
		if backward > maxBackward {
			continue
		}
		prevMasked := int(prev & mask)
		if curMasked+bestLen > limit || prevMasked+bestLen > limit ||
			data[curMasked+bestLen] != data[prevMasked+bestLen] {
			continue
		}
		n := matchLen(data[prevMasked:], p, maxLen)
		// The two most preferred short codes are cheap enough to
		// encode that two-byte matches pay off.
		if n >= 3 || (n == 2 && j < 2) {
			sc := scoreShortCode(n, j)
			if bestScore < sc {
				bestScore = sc
				bestLen = n
				res.Len = n
				res.LenCode = n
				res.Distance = backward
				res.Score = sc
				matchFound = true
			}
		}
	}

	key := hash32(uint32(getLE64(p)), h.hashBits)
	bucket := h.buckets[key<<h.blockBits:]
	down := 0
	if n := int(h.num[key]) - 1<<h.blockBits; n > 0 {
		down = n
	}
	for i := int(h.num[key]) - 1; i >= down; i-- {
		prev := bucket[uint32(i)&h.blockMask]
		backward := cur - prev
		if uint64(backward) > uint64(maxBackward) {
			// Older entries can only be further away.
			break
		}
		prevMasked := int(prev & mask)
		if curMasked+bestLen > limit || prevMasked+bestLen > limit ||
			data[curMasked+bestLen] != data[prevMasked+bestLen] {
			continue
		}
		n := matchLen(data[prevMasked:], p, maxLen)
		if n < 4 {
			continue
		}
		sc := score(n, int(backward))
		if bestScore < sc {
			bestScore = sc
			bestLen = n
			res.Len = n
			res.LenCode = n
			res.Distance = int(backward)
			res.Score = sc
			matchFound = true
		}
	}

	if !matchFound && len(p) >= 4 && h.dict.allowed() {
		matchFound = h.dict.find(p, maxLen, maxBackward, false, res)
	}
	return matchFound
}

// appendMatches appends all matches at the current position to m, lengths
// strictly increasing: a linear back-scan of at most 63 preceding positions
// (position 0 excluded) picks up
// two-byte matches, the bucket scan finds the longer ones and the dictionary
// contributes one match per remaining length. A match longer than
// maxZopfliLen discards everything found before it.
func (h *blockHash) appendMatches(m []Match, data []byte, mask uint32,
	cur uint32, maxLen, maxBackward int) []Match {

	orig := len(m)
	curMasked := int(cur & mask)
	p := data[curMasked:]
	limit := tailLimit(data, mask)
	bestLen := 1

	stop := int(cur) - 64
	if stop < 0 {
		stop = 0
	}
	for i := int(cur) - 1; i > stop && bestLen <= 2; i-- {
		prev := uint32(i)
		backward := cur - prev
		if uint64(backward) > uint64(maxBackward) {
			break
		}
		prevMasked := int(prev & mask)
		if curMasked+1 > limit || prevMasked+1 > limit ||
			data[curMasked] != data[prevMasked] ||
			data[curMasked+1] != data[prevMasked+1] {
			continue
		}
		n := matchLen(data[prevMasked:], p, maxLen)
		if n > bestLen {
			bestLen = n
			if n > maxZopfliLen {
				m = m[:orig]
			}
			m = append(m, match(backward, n))
		}
	}

	key := hash32(uint32(getLE64(p)), h.hashBits)
	bucket := h.buckets[key<<h.blockBits:]
	down := 0
	if n := int(h.num[key]) - 1<<h.blockBits; n > 0 {
		down = n
	}
	for i := int(h.num[key]) - 1; i >= down; i-- {
		prev := bucket[uint32(i)&h.blockMask]
		backward := cur - prev
		if uint64(backward) > uint64(maxBackward) {
			break
		}
		prevMasked := int(prev & mask)
		if curMasked+bestLen > limit || prevMasked+bestLen > limit ||
			data[curMasked+bestLen] != data[prevMasked+bestLen] {
			continue
		}
		n := matchLen(data[prevMasked:], p, maxLen)
		if n > bestLen {
			bestLen = n
			if n > maxZopfliLen {
				m = m[:orig]
			}
			m = append(m, match(backward, n))
		}
	}

	if h.dict.d != nil && len(p) >= 4 {
		var dm [dict.MaxMatchLen + 1]uint32
		for i := range dm {
			dm[i] = dict.InvalidMatch
		}
		minLen := max(4, bestLen+1)
		if h.dict.d.MatchAll(p, minLen, maxLen, dm[:]) {
			maxl := min(h.dict.d.MaxLen(), dict.MaxMatchLen, maxLen)
			for l := minLen; l <= maxl; l++ {
				id := dm[l]
				if id < dict.InvalidMatch {
					m = append(m, Match{
						Distance: uint32(maxBackward) +
							id>>5 + 1,
						Len:     uint16(l),
						LenCode: uint16(id & 31),
					})
				}
			}
		}
	}
	return m
}

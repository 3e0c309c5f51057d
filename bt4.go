// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package blz

import (
	"github.com/ulikunitz/blz/dict"
)

// bt4 is the binary-tree matchfinder of the highest quality tier. Each
// four-byte hash bucket holds the root of a binary tree of window positions,
// sorted so that every left child starts a lexicographically smaller
// sequence than its parent and every right child a greater one. Auxiliary
// two- and three-byte hash subtables contribute the short matches the tree
// cannot represent.
//
// Processing a position searches the tree for matches and re-roots it at the
// new position in a single traversal.
type bt4 struct {
	windowMask uint32

	hash2 []uint32
	hash3 []uint32
	hash4 []uint32

	// child[2*(p&windowMask)] and child[2*(p&windowMask)+1] are the left
	// and right child positions of tree node p.
	child []uint32

	h2Bits uint
	h3Bits uint
	h4Bits uint

	depth   int
	niceLen int

	// invalidPos marks an empty hash slot or tree link. Subtracting it
	// from any real position yields a difference above the window size,
	// so the regular window check rejects it.
	invalidPos uint32

	dict dictSearcher
}

func newBT4(h2Bits, h3Bits, h4Bits, windowBits, depth, niceLen int,
	d *dict.Dictionary) *bt4 {

	mask := uint32(1)<<windowBits - 1
	t := &bt4{
		windowMask: mask,
		hash2:      make([]uint32, 1<<h2Bits),
		hash3:      make([]uint32, 1<<h3Bits),
		hash4:      make([]uint32, 1<<h4Bits),
		child:      make([]uint32, 2*(int(mask)+1)),
		h2Bits:     uint(h2Bits),
		h3Bits:     uint(h3Bits),
		h4Bits:     uint(h4Bits),
		depth:      depth,
		niceLen:    niceLen,
		invalidPos: -mask,
		dict:       dictSearcher{d: d},
	}
	t.reset()
	return t
}

func (t *bt4) reset() {
	for i := range t.hash2 {
		t.hash2[i] = t.invalidPos
	}
	for i := range t.hash3 {
		t.hash3[i] = t.invalidPos
	}
	for i := range t.hash4 {
		t.hash4[i] = t.invalidPos
	}
	// The child table needs no clearing: links are only reachable through
	// the hash tables and every descent stops at the window check.
	t.dict.reset()
}

// byteAt reads p[i] and returns -1 if the index is out of range.
func byteAt(p []byte, i int) int {
	if i < len(p) {
		return int(p[i])
	}
	return -1
}

// advanceOneByte processes the position cur: it updates the two hash
// subtables, searches the four-byte tree and re-roots it at cur. With record
// set, found matches are appended to m in strictly increasing length; a
// match of niceLen or longer discards the shorter ones and stops the search.
// It returns the extended slice and the longest match length seen by the
// tree search, or 3 if the tree search found no longer match.
//
// Positions closer than niceLen to the end of the usable data are not
// inserted; the tree requires the full lookahead to keep its ordering
// invariant intact.
func (t *bt4) advanceOneByte(m []Match, data []byte, mask uint32,
	cur uint32, maxLen int, record bool) ([]Match, int) {

	orig := len(m)
	bestLen := 3
	if maxLen < t.niceLen {
		return m, bestLen
	}
	niceLen := min(t.niceLen, maxLen)

	curMasked := int(cur & mask)
	strptr := data[curMasked:]
	seq4 := uint32(getLE64(strptr))
	seq3 := u32ToU24(seq4)
	seq2 := u32ToU16(seq4)

	// Length 2, hash bucket only.
	h2 := hash32(seq2, t.h2Bits)
	prev := t.hash2[h2]
	t.hash2[h2] = cur
	if record && cur-prev <= t.windowMask-15 &&
		seq2 == u32ToU16(uint32(getLE64(data[prev&mask:]))) {
		m = append(m, match(cur-prev, 2))
	}

	// Length 3, hash bucket only.
	h3 := hash32(seq3, t.h3Bits)
	prev = t.hash3[h3]
	t.hash3[h3] = cur
	if record && cur-prev <= t.windowMask-15 &&
		seq3 == u32ToU24(uint32(getLE64(data[prev&mask:]))) {
		m = append(m, match(cur-prev, 3))
	}

	// Length 4 and longer: the hash bucket holds the tree root.
	h4 := hash32(seq4, t.h4Bits)
	prev = t.hash4[h4]
	t.hash4[h4] = cur

	pendingLt := 2 * int(cur&t.windowMask)
	pendingGt := pendingLt + 1

	if cur-prev > t.windowMask-15 {
		t.child[pendingLt] = t.invalidPos
		t.child[pendingGt] = t.invalidPos
		return m, bestLen
	}

	bestLtLen, bestGtLen := 0, 0
	length := 0
	depth := t.depth

	// Rearrange the tree so that its new root is the current sequence,
	// recording matches on the way down.
	for {
		prevMasked := int(prev & mask)
		matchptr := data[prevMasked:]
		pair := 2 * int(prev&t.windowMask)

		c, s := byteAt(matchptr, length), byteAt(strptr, length)
		if c == s && c >= 0 {
			length++
			length += matchLen(strptr[length:], matchptr[length:],
				maxLen-length)
			if !record {
				if length >= niceLen {
					t.child[pendingLt] = t.child[pair]
					t.child[pendingGt] = t.child[pair+1]
					return m, bestLen
				}
			} else if length > bestLen {
				bestLen = length
				if bestLen >= niceLen {
					m = m[:orig]
					m = append(m, match(cur-prev, bestLen))
					t.child[pendingLt] = t.child[pair]
					t.child[pendingGt] = t.child[pair+1]
					return m, bestLen
				}
				m = append(m, match(cur-prev, bestLen))
			}
			c, s = byteAt(matchptr, length), byteAt(strptr, length)
		}

		if c < s {
			// The right subtree of the visited node joins the
			// less-than side of the new root.
			t.child[pendingLt] = prev
			pendingLt = pair + 1
			prev = t.child[pendingLt]
			bestLtLen = length
			if bestGtLen < length {
				length = bestGtLen
			}
		} else {
			t.child[pendingGt] = prev
			pendingGt = pair
			prev = t.child[pendingGt]
			bestGtLen = length
			if bestLtLen < length {
				length = bestLtLen
			}
		}

		depth--
		if cur-prev > t.windowMask-15 || depth == 0 {
			t.child[pendingLt] = t.invalidPos
			t.child[pendingGt] = t.invalidPos
			return m, bestLen
		}
	}
}

// appendMatches appends the matches at position cur to m, sorted by strictly
// increasing length, followed by one dictionary match per length above the
// longest window match. Dictionary distances are shifted past the largest
// possible window distance so they stay distinguishable.
func (t *bt4) appendMatches(m []Match, data []byte, mask uint32,
	cur uint32, maxLen, maxBackward int) []Match {

	m, bestLen := t.advanceOneByte(m, data, mask, cur, maxLen, true)

	curMasked := int(cur & mask)
	p := data[curMasked:]
	if t.dict.d == nil || len(p) < 4 {
		return m
	}
	var dm [dict.MaxMatchLen + 1]uint32
	for i := range dm {
		dm[i] = dict.InvalidMatch
	}
	minLen := bestLen + 1
	if !t.dict.d.MatchAll(p, minLen, maxLen, dm[:]) {
		return m
	}
	gap := min(cur, t.windowMask-15)
	maxl := min(t.dict.d.MaxLen(), dict.MaxMatchLen, maxLen)
	for l := minLen; l <= maxl; l++ {
		id := dm[l]
		if id < dict.InvalidMatch {
			m = append(m, Match{
				Distance: gap + id>>5 + 1,
				Len:      uint16(l),
				LenCode:  uint16(id & 31),
			})
		}
	}
	return m
}

// skipByte advances the matchfinder without recording matches. The tree is
// still re-rooted at the position.
func (t *bt4) skipByte(data []byte, mask uint32, cur uint32, maxLen int) {
	t.advanceOneByte(nil, data, mask, cur, maxLen, false)
}

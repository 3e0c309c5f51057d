// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package blz finds backward references for Brotli-style LZ77 compression.
//
// The package provides the match-finder core of an encoder: given the bytes
// seen so far in a ring buffer, it proposes backward references (distance,
// length) for the current position. A [Matcher] owns one of ten hash
// structures selected by the quality parameter: single-slot and sweeping
// forgetful hash tables for the quick qualities 1 to 4, hash tables with a
// ring of recent positions per bucket for qualities 5 to 9 and a binary-tree
// matchfinder for quality 10. A shared scoring model chooses among the
// candidates, the four most recently emitted distances are probed through
// the short-code tables, and a static dictionary supplied by the caller can
// back up the search when the window has nothing to offer.
//
// The ring buffer and the dictionary tables are borrowed read-only; the
// matcher allocates all of its own state at construction time and is not
// safe for concurrent use.
package blz

// Match describes a backward reference. Distance is the number of bytes to
// go back, Len the number of bytes to copy. LenCode equals Len unless the
// match results from a dictionary cutoff transform, in which case LenCode
// holds the length of the untransformed dictionary word.
type Match struct {
	Distance uint32
	Len      uint16
	LenCode  uint16
}

// match creates a plain window match.
func match(distance uint32, n int) Match {
	return Match{Distance: distance, Len: uint16(n), LenCode: uint16(n)}
}

// Search accumulates the best backward reference found so far. The Find
// methods only report candidates that score strictly better than the values
// provided in the structure.
type Search struct {
	Len      int
	LenCode  int
	Distance int
	Score    float64
}

// maxZopfliLen is the maximum length for which the match enumeration keeps
// distinct distances. A longer match rewinds the output to just itself.
const maxZopfliLen = 325

// The distance short-code tables. Index j in [0,16) describes a candidate
// distance distCache[distShortCodeIndex[j]] + distShortCodeOffset[j]; the
// first four codes reuse a cached distance directly, the remaining ones
// probe small offsets around the last and second-to-last distance.
var distShortCodeIndex = [16]int{
	0, 1, 2, 3, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1,
}

var distShortCodeOffset = [16]int{
	0, 0, 0, 0, -1, 1, -2, 2, -3, 3, -1, 1, -2, 2, -3, 3,
}

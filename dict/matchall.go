// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package dict

// CutoffTransformsCount limits how many bytes a cutoff transform may remove
// from the end of a dictionary word.
const CutoffTransformsCount = 10

// CutoffTransforms maps the number of removed bytes to the transform
// identifier of the reference transform table.
var CutoffTransforms = [CutoffTransformsCount]uint8{
	0, 12, 27, 23, 42, 63, 56, 48, 59, 64,
}

// prefixLen returns the length of the common prefix of p and q.
func prefixLen(p, q []byte) int {
	if len(q) < len(p) {
		p, q = q, p
	}
	for i, c := range p {
		if q[i] != c {
			return i
		}
	}
	return len(p)
}

// MatchAll fills out[l] for every length l in [minLen, maxLen] with the
// smallest packed match (wordID << 5) | wordLen reachable through the hash
// table for the prefix p, where wordID already includes the cutoff transform.
// Lengths without a match keep their value; callers initialize out with
// InvalidMatch. It reports whether any entry was written.
//
// out must have at least maxLen+1 entries and p at least four bytes.
func (d *Dictionary) MatchAll(p []byte, minLen, maxLen int, out []uint32) bool {
	found := false
	key := hash14(p) << 1
	for j := 0; j < 2; j++ {
		v := d.HashTable[key|uint32(j)]
		if v == 0 {
			continue
		}
		n := int(v & 31)
		index := int(v >> 5)
		if n > d.MaxLen() {
			continue
		}
		word := d.Word(n, index)
		k := prefixLen(p, word)
		if k > maxLen {
			k = maxLen
		}
		low := n - CutoffTransformsCount + 1
		if low < minLen {
			low = minLen
		}
		for l := low; l <= k; l++ {
			id := int(CutoffTransforms[n-l])<<
				d.SizeBitsByLength[n] + index
			packed := uint32(id)<<5 | uint32(n)
			if packed < out[l] {
				out[l] = packed
				found = true
			}
		}
	}
	return found
}

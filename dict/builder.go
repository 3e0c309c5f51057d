// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package dict

import (
	"fmt"
	"math/bits"
)

// hashMul32 must stay in sync with the hash multiplier of the match finders;
// the dictionary hash table is probed with the same function.
const hashMul32 = 0x1e35a7bd

func hash14(p []byte) uint32 {
	_ = p[3]
	x := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 |
		uint32(p[3])<<24
	return (x * hashMul32) >> (32 - 14)
}

// Builder constructs a Dictionary from a list of words. The reference
// encoders ship a generated dictionary; the builder serves tests and callers
// that bring their own word lists.
type Builder struct {
	words map[int][][]byte
}

// Add appends a word to the builder. The word length must be in
// [MinWordLen, MaxWordLen].
func (b *Builder) Add(word []byte) error {
	n := len(word)
	if !(MinWordLen <= n && n <= MaxWordLen) {
		return fmt.Errorf("dict: word length %d out of range [%d,%d]",
			n, MinWordLen, MaxWordLen)
	}
	if b.words == nil {
		b.words = make(map[int][][]byte)
	}
	w := make([]byte, n)
	copy(w, word)
	b.words[n] = append(b.words[n], w)
	return nil
}

// Dictionary builds the tables. Words of each length keep the order in which
// they were added; the word index doubles as the distance encoded in the
// hash table. Hash collisions fill at most the two slots the match finders
// probe; further colliding words get no hash entry and are not found by
// MatchAll or the match finders.
func (b *Builder) Dictionary() (*Dictionary, error) {
	maxLen := 0
	for n := range b.words {
		if n > maxLen {
			maxLen = n
		}
	}
	if maxLen == 0 {
		return nil, fmt.Errorf("dict: no words added")
	}

	d := &Dictionary{
		HashTable:        make([]uint16, 1<<HashBits),
		OffsetsByLength:  make([]uint32, maxLen+1),
		SizeBitsByLength: make([]uint8, maxLen+1),
	}
	offset := uint32(0)
	for n := 0; n <= maxLen; n++ {
		d.OffsetsByLength[n] = offset
		ws := b.words[n]
		if len(ws) == 0 {
			continue
		}
		d.SizeBitsByLength[n] = uint8(bits.Len(uint(len(ws) - 1)))
		for i, w := range ws {
			d.Words = append(d.Words, w...)
			if i >= 1<<11 {
				// The 16-bit hash entry stores the index in
				// 11 bits.
				return nil, fmt.Errorf(
					"dict: too many words of length %d", n)
			}
			key := hash14(w) << 1
			entry := uint16(i<<5 | n)
			if d.HashTable[key] == 0 {
				d.HashTable[key] = entry
			} else if d.HashTable[key|1] == 0 {
				d.HashTable[key|1] = entry
			}
		}
		offset += uint32(n * len(ws))
	}
	if err := d.Verify(); err != nil {
		return nil, err
	}
	return d, nil
}

// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package blz

import (
	"fmt"
	"reflect"

	"github.com/ulikunitz/blz/dict"
)

// MatcherConfig provides the parameters for a [Matcher]. Quality selects one
// of the ten hash structures; the parameters of each tier are fixed so that
// equal tiers of other Brotli implementations search the same candidates.
type MatcherConfig struct {
	// Quality in range [1,10]; larger is slower and finds more.
	Quality int
	// WindowBits is the log2 of the ring buffer size the matcher serves.
	WindowBits int
	// Dictionary enables static dictionary probes if non-nil.
	Dictionary *dict.Dictionary
	// SearchDepth limits the tree descent of quality 10.
	SearchDepth int
	// NiceLen stops the quality-10 search when reached.
	NiceLen int
}

// ApplyDefaults sets values that are zero to their default values.
func (cfg *MatcherConfig) ApplyDefaults() {
	if cfg.Quality == 0 {
		cfg.Quality = 9
	}
	if cfg.WindowBits == 0 {
		cfg.WindowBits = 22
	}
	if cfg.SearchDepth == 0 {
		cfg.SearchDepth = 32
	}
	if cfg.NiceLen == 0 {
		cfg.NiceLen = 48
	}
}

// Verify checks the config for correctness.
func (cfg *MatcherConfig) Verify() error {
	if !(1 <= cfg.Quality && cfg.Quality <= 10) {
		return fmt.Errorf("blz: Quality=%d; must be in range [1,10]",
			cfg.Quality)
	}
	if !(10 <= cfg.WindowBits && cfg.WindowBits <= 24) {
		return fmt.Errorf(
			"blz: WindowBits=%d; must be in range [10,24]",
			cfg.WindowBits)
	}
	if cfg.SearchDepth < 1 {
		return fmt.Errorf("blz: SearchDepth=%d; must be >= 1",
			cfg.SearchDepth)
	}
	if cfg.NiceLen < 4 {
		return fmt.Errorf("blz: NiceLen=%d; must be >= 4", cfg.NiceLen)
	}
	if cfg.Dictionary != nil {
		if err := cfg.Dictionary.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// NewMatcher creates a matcher for the configuration.
func (cfg MatcherConfig) NewMatcher() (*Matcher, error) {
	return NewMatcher(cfg)
}

// The fixed parameters per quality tier.
var presets = [...]struct {
	hashBits int
	sweep    int
	useDict  bool

	blockBits     int
	lastDistances int
}{
	1:  {hashBits: 16, sweep: 1, useDict: true},
	2:  {hashBits: 16, sweep: 2},
	3:  {hashBits: 16, sweep: 4},
	4:  {hashBits: 17, sweep: 4, useDict: true},
	5:  {hashBits: 14, blockBits: 4, lastDistances: 4},
	6:  {hashBits: 14, blockBits: 5, lastDistances: 4},
	7:  {hashBits: 15, blockBits: 6, lastDistances: 10},
	8:  {hashBits: 15, blockBits: 7, lastDistances: 10},
	9:  {hashBits: 15, blockBits: 8, lastDistances: 16},
	10: {},
}

// The quality-10 hash subtable sizes.
const (
	bt4Hash2Bits = 10
	bt4Hash3Bits = 15
	bt4Hash4Bits = 17
)

// hashTypeLength is the number of bytes a store reads: the quick hashers
// hash five bytes out of an eight-byte load, everything else reads four
// bytes.
func hashTypeLength(quality int) int {
	if quality <= 4 {
		return 8
	}
	return 4
}

// Matcher finds backward references in a ring buffer. It owns one of the
// hash structures selected by the configured quality and routes all
// operations to it. A matcher serves a single compression job; it is not
// safe for concurrent use.
type Matcher struct {
	cfg MatcherConfig

	quick *quickHash
	block *blockHash
	tree  *bt4
}

// NewMatcher creates a matcher. It returns an error if the configuration is
// invalid.
func NewMatcher(cfg MatcherConfig) (*Matcher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	m := &Matcher{cfg: cfg}
	p := presets[cfg.Quality]
	switch {
	case cfg.Quality <= 4:
		d := cfg.Dictionary
		if !p.useDict {
			d = nil
		}
		m.quick = newQuickHash(p.hashBits, p.sweep, d)
	case cfg.Quality <= 9:
		m.block = newBlockHash(p.hashBits, p.blockBits,
			p.lastDistances, cfg.Dictionary)
	default:
		m.tree = newBT4(bt4Hash2Bits, bt4Hash3Bits, bt4Hash4Bits,
			cfg.WindowBits, cfg.SearchDepth, cfg.NiceLen,
			cfg.Dictionary)
	}
	return m, nil
}

// Quality returns the configured quality tier.
func (m *Matcher) Quality() int { return m.cfg.Quality }

// NiceLen returns the configured nice match length of quality 10.
func (m *Matcher) NiceLen() int { return m.cfg.NiceLen }

// MemSize returns the memory consumed by the matcher.
func (m *Matcher) MemSize() uintptr {
	n := reflect.TypeOf(*m).Size()
	switch {
	case m.quick != nil:
		n += reflect.TypeOf(*m.quick).Size()
		n += uintptr(cap(m.quick.buckets)) * 4
	case m.block != nil:
		n += reflect.TypeOf(*m.block).Size()
		n += uintptr(cap(m.block.buckets))*4 +
			uintptr(cap(m.block.num))*2
	case m.tree != nil:
		n += reflect.TypeOf(*m.tree).Size()
		n += uintptr(cap(m.tree.hash2)+cap(m.tree.hash3)+
			cap(m.tree.hash4)+cap(m.tree.child)) * 4
	}
	return n
}

// Reset prepares the matcher for a new input stream. It is idempotent.
func (m *Matcher) Reset() {
	switch {
	case m.quick != nil:
		m.quick.reset()
	case m.block != nil:
		m.block.reset()
	case m.tree != nil:
		m.tree.reset()
	}
}

// Store inserts the prefix starting at the absolute position i into the hash
// structure. Positions must be stored in non-decreasing order. For quality
// 10 the position is inserted through the tree skip operation.
func (m *Matcher) Store(data []byte, mask uint32, i uint32) {
	switch {
	case m.quick != nil:
		m.quick.store(data[i&mask:], i)
	case m.block != nil:
		m.block.store(data[i&mask:], i)
	case m.tree != nil:
		m.tree.skipByte(data, mask, i, len(data)-int(i&mask))
	}
}

// StoreRange stores all positions in [start, end).
func (m *Matcher) StoreRange(data []byte, mask uint32, start, end uint32) {
	for i := start; i < end; i++ {
		m.Store(data, mask, i)
	}
}

// PrependCustomDictionary warms the hash structure with the prefix bytes, as
// if they preceded the input stream. Positions are relative to the start of
// the prefix. Quality 10 does not support warming.
func (m *Matcher) PrependCustomDictionary(prefix []byte) {
	if m.tree != nil {
		// TODO: warm the tree with skipByte; requires the prefix to
		// be addressable through the ring buffer.
		return
	}
	n := len(prefix)
	for i := 0; i+hashTypeLength(m.cfg.Quality)-1 < n; i++ {
		switch {
		case m.quick != nil:
			m.quick.store(prefix[i:], uint32(i))
		case m.block != nil:
			m.block.store(prefix[i:], uint32(i))
		}
	}
}

// FindLongestMatch searches the best backward reference for position i. The
// res structure carries the best candidate known to the caller in; the
// method returns true and updates res if it finds a strictly better one.
// distCache must hold the four most recently emitted distances. Quality 10
// does not serve this call; its callers enumerate with [Matcher.FindAllMatches].
func (m *Matcher) FindLongestMatch(data []byte, mask uint32, distCache []int,
	i uint32, maxLen, maxBackward int, res *Search) bool {

	switch {
	case m.quick != nil:
		return m.quick.findLongestMatch(data, mask, distCache, i,
			maxLen, maxBackward, res)
	case m.block != nil:
		return m.block.findLongestMatch(data, mask, distCache, i,
			maxLen, maxBackward, res)
	}
	return false
}

// FindAllMatches appends all matches at position i to matches and returns
// the extended slice. Match lengths are strictly increasing. For qualities 5
// to 9 a match exceeding the zopfli length limit, and for quality 10 a match
// reaching the nice length, is reported alone; quality 10 applies no zopfli
// length limit. Qualities 1 to 4 do not enumerate matches.
func (m *Matcher) FindAllMatches(data []byte, mask uint32, i uint32,
	maxLen, maxBackward int, matches []Match) []Match {

	switch {
	case m.block != nil:
		return m.block.appendMatches(matches, data, mask, i,
			maxLen, maxBackward)
	case m.tree != nil:
		return m.tree.appendMatches(matches, data, mask, i,
			maxLen, maxBackward)
	}
	return matches
}

// SkipByte advances the matcher past position i without searching for
// matches. For quality 10 this keeps the tree intact; the other qualities
// store the position.
func (m *Matcher) SkipByte(data []byte, mask uint32, i uint32, maxLen int) {
	if m.tree != nil {
		m.tree.skipByte(data, mask, i, maxLen)
		return
	}
	m.Store(data, mask, i)
}

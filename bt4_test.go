package blz

import (
	"bytes"
	"testing"

	"golang.org/x/exp/slices"
)

// TestBT4NiceLengthShortcut reproduces the nice-length cutoff: a repeat of
// exactly nice length rewinds the output to the single longest match.
func TestBT4NiceLengthShortcut(t *testing.T) {
	data := make([]byte, 80)
	for i := 0; i < 64; i++ {
		data[i] = byte(3*i + 1)
	}
	copy(data[64:], data[:8])
	mask := uint32(1023)

	bt := newBT4(10, 15, 17, 10, 32, 8, nil)
	for i := uint32(0); i < 64; i++ {
		bt.skipByte(data, mask, i, len(data)-int(i))
	}

	m := bt.appendMatches(nil, data, mask, 64, 8, 64)
	if len(m) != 1 {
		t.Fatalf("appendMatches returned %d matches; want 1", len(m))
	}
	if m[0].Distance != 64 || m[0].Len != 8 {
		t.Errorf("got match %+v; want distance 64, length 8", m[0])
	}
}

// TestBT4ZopfliSingleLongMatch checks that a long self-repeat reports only
// the longest match.
func TestBT4ZopfliSingleLongMatch(t *testing.T) {
	data := make([]byte, 512)
	for i := range data {
		data[i] = byte(i % 100)
	}
	mask := uint32(4095)

	bt := newBT4(10, 15, 17, 12, 64, 48, nil)
	for i := uint32(0); i < 100; i++ {
		bt.skipByte(data, mask, i, len(data)-int(i))
	}

	m := bt.appendMatches(nil, data, mask, 100, 400, 100)
	if len(m) != 1 {
		t.Fatalf("appendMatches returned %d matches; want 1", len(m))
	}
	if m[0].Distance != 100 || m[0].Len != 400 {
		t.Errorf("got match %+v; want distance 100, length 400", m[0])
	}
}

// TestBT4ShortMatches verifies the length-2 and length-3 subtable matches.
func TestBT4ShortMatches(t *testing.T) {
	// 2-byte and 3-byte repeats of the start, then unique bytes; the
	// 4-byte tree has nothing to offer at the query position.
	data := []byte{
		'a', 'b', 'c', 1, 2, 3, 4, 5,
		'a', 'b', 'x', 6, 7, 8, 9, 10,
		'a', 'b', 'c', 11, 12, 13, 14, 15,
		16, 17, 18, 19, 20, 21, 22, 23,
		24, 25, 26, 27, 28, 29, 30, 31,
		32, 33, 34, 35, 36, 37, 38, 39,
		40, 41, 42, 43, 44, 45, 46, 47,
	}
	mask := uint32(1023)

	bt := newBT4(10, 15, 17, 10, 32, 8, nil)
	for i := uint32(0); i < 16; i++ {
		bt.skipByte(data, mask, i, len(data)-int(i))
	}

	m := bt.appendMatches(nil, data, mask, 16, 8, 16)
	if len(m) != 2 {
		t.Fatalf("appendMatches returned %d matches; want 2: %+v",
			len(m), m)
	}
	if m[0].Len != 2 || m[0].Distance != 8 {
		t.Errorf("first match %+v; want length 2, distance 8", m[0])
	}
	if m[1].Len != 3 || m[1].Distance != 16 {
		t.Errorf("second match %+v; want length 3, distance 16", m[1])
	}
}

// collectInOrder walks the tree below pos in-order, skipping sentinel and
// out-of-window links.
func collectInOrder(t *bt4, cur, pos uint32, out []uint32) []uint32 {
	if cur-pos > t.windowMask-15 {
		return out
	}
	pair := 2 * int(pos&t.windowMask)
	out = collectInOrder(t, cur, t.child[pair], out)
	out = append(out, pos)
	return collectInOrder(t, cur, t.child[pair+1], out)
}

// TestBT4TreeShape inserts pseudo-random data over a small alphabet and
// checks the binary search tree invariants: the bucket roots are the last
// inserted positions, an in-order traversal yields the starting sequences in
// sorted order and no position is lost or duplicated.
func TestBT4TreeShape(t *testing.T) {
	const (
		n         = 1024
		lookahead = 96
	)
	data := make([]byte, n)
	x := uint32(0x2545f491)
	for i := range data {
		x = x*2654435761 + 12345
		data[i] = 'a' + byte(x>>24)&3
	}
	mask := uint32(1<<16 - 1)

	bt := newBT4(10, 15, 17, 16, n, 64, nil)
	end := uint32(n - lookahead)
	for i := uint32(0); i < end; i++ {
		bt.skipByte(data, mask, i, lookahead)

		h4 := hash32(uint32(getLE64(data[i:])), bt.h4Bits)
		if bt.hash4[h4] != i {
			t.Fatalf("hash4 root is %d after inserting %d",
				bt.hash4[h4], i)
		}
	}

	cur := end - 1
	seen := make(map[uint32]bool)
	for _, root := range bt.hash4 {
		ps := collectInOrder(bt, cur, root, nil)
		sorted := slices.IsSortedFunc(ps, func(a, b uint32) int {
			return bytes.Compare(data[a:a+lookahead],
				data[b:b+lookahead])
		})
		if !sorted {
			t.Fatalf("in-order positions not sorted: %v", ps)
		}
		for _, p := range ps {
			if seen[p] {
				t.Fatalf("position %d appears twice", p)
			}
			seen[p] = true
		}
	}
	if len(seen) != int(end) {
		t.Errorf("trees hold %d positions; want %d", len(seen), end)
	}
}

// TestBT4SkipKeepsTreeUsable interleaves skips and queries; a skipped
// position must still be found as a match afterwards.
func TestBT4SkipKeepsTreeUsable(t *testing.T) {
	data := make([]byte, 96)
	for i := 0; i < 48; i++ {
		data[i] = byte(5*i + 3)
	}
	copy(data[48:], data[:48])
	mask := uint32(1023)

	bt := newBT4(10, 15, 17, 10, 32, 16, nil)
	for i := uint32(0); i < 48; i++ {
		bt.skipByte(data, mask, i, len(data)-int(i))
	}

	m := bt.appendMatches(nil, data, mask, 48, 16, 48)
	if len(m) != 1 {
		t.Fatalf("appendMatches returned %d matches; want 1: %+v",
			len(m), m)
	}
	if m[0].Distance != 48 || m[0].Len != 16 {
		t.Errorf("got match %+v; want distance 48, length 16", m[0])
	}
}

// TestBT4TailPositionsNotInserted checks the documented limitation that
// positions with less lookahead than the nice length are skipped entirely.
func TestBT4TailPositionsNotInserted(t *testing.T) {
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i)
	}
	mask := uint32(1023)

	bt := newBT4(10, 15, 17, 10, 32, 48, nil)
	bt.skipByte(data, mask, 0, len(data))

	h4 := hash32(uint32(getLE64(data)), bt.h4Bits)
	if bt.hash4[h4] == 0 {
		t.Error("position inserted although lookahead below nice length")
	}
}

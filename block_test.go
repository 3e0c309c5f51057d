package blz

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestBlockLastDistanceHit checks that a repetition at the cached distance
// is found through short code 0 without any bucket entry.
func TestBlockLastDistanceHit(t *testing.T) {
	data := []byte("abcdefghxyzabcdefgh####")
	mask := uint32(31)

	h := newBlockHash(14, 4, 4, nil)
	distCache := []int{11, 4, 15, 16}
	var s Search
	if !h.findLongestMatch(data, mask, distCache, 11, 8, 16, &s) {
		t.Fatal("findLongestMatch returned false")
	}
	if s.Len != 8 {
		t.Errorf("match length %d; want 8", s.Len)
	}
	if s.Distance != 11 {
		t.Errorf("match distance %d; want 11", s.Distance)
	}
	want := scoreShortCode(8, 0)
	if math.Abs(s.Score-want) > 1e-9 {
		t.Errorf("match score %g; want %g", s.Score, want)
	}
}

// TestBlockShortCodeOffsets verifies that the probe tries distances derived
// from the cache with the documented offsets: distance 12 is reachable from
// a cached 11 through short code 5.
func TestBlockShortCodeOffsets(t *testing.T) {
	data := []byte("abcdefghwxyzabcdefgh####")
	mask := uint32(31)

	h := newBlockHash(14, 4, 10, nil)
	distCache := []int{11, 4, 15, 16}
	var s Search
	if !h.findLongestMatch(data, mask, distCache, 12, 8, 16, &s) {
		t.Fatal("findLongestMatch returned false")
	}
	if s.Distance != 12 {
		t.Errorf("match distance %d; want 12", s.Distance)
	}
	if s.Len != 8 {
		t.Errorf("match length %d; want 8", s.Len)
	}
	want := scoreShortCode(8, 5)
	if math.Abs(s.Score-want) > 1e-9 {
		t.Errorf("match score %g; want %g", s.Score, want)
	}
}

// TestBlockBucketScan stores a few positions and expects the nearest match
// to win at equal length.
func TestBlockBucketScan(t *testing.T) {
	data := make([]byte, 128)
	for i := range data {
		data[i] = byte(128 + i)
	}
	pattern := []byte("ABCDEFGH")
	for _, pos := range []int{10, 40, 70} {
		copy(data[pos:], pattern)
	}
	mask := uint32(127)

	h := newBlockHash(14, 4, 4, nil)
	for _, pos := range []int{10, 40} {
		h.store(data[pos:], uint32(pos))
	}

	distCache := []int{4, 11, 15, 16}
	var s Search
	if !h.findLongestMatch(data, mask, distCache, 70, 8, 70, &s) {
		t.Fatal("findLongestMatch returned false")
	}
	if s.Len != 8 {
		t.Errorf("match length %d; want 8", s.Len)
	}
	if s.Distance != 30 {
		t.Errorf("match distance %d; want 30", s.Distance)
	}
}

// TestBlockAppendMatchesOrder checks that enumerated match lengths increase
// strictly, with the back-scan supplying the shortest match.
func TestBlockAppendMatchesOrder(t *testing.T) {
	data := make([]byte, 128)
	for i := range data {
		data[i] = byte(128 + i)
	}
	copy(data[10:], "abcdef")
	copy(data[30:], "abcde")
	copy(data[50:], "abcd")
	copy(data[70:], "abcdef")
	mask := uint32(127)

	h := newBlockHash(14, 4, 4, nil)
	for _, pos := range []int{10, 30, 50} {
		h.store(data[pos:], uint32(pos))
	}

	m := h.appendMatches(nil, data, mask, 70, 6, 70)
	want := []Match{
		{Distance: 20, Len: 4, LenCode: 4},
		{Distance: 40, Len: 5, LenCode: 5},
		{Distance: 60, Len: 6, LenCode: 6},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("appendMatches mismatch (-want +got):\n%s", diff)
	}
}

// TestBlockZopfliRewind checks that a match longer than maxZopfliLen
// discards all shorter matches.
func TestBlockZopfliRewind(t *testing.T) {
	data := make([]byte, 512)
	for i := range data {
		data[i] = byte(i % 100)
	}
	mask := uint32(511)

	h := newBlockHash(14, 4, 4, nil)
	for i := uint32(0); i < 100; i++ {
		h.store(data[i:], i)
	}

	m := h.appendMatches(nil, data, mask, 100, 400, 100)
	if len(m) != 1 {
		t.Fatalf("appendMatches returned %d matches; want 1", len(m))
	}
	if m[0].Distance != 100 || m[0].Len != 400 {
		t.Errorf("got match %+v; want distance 100, length 400", m[0])
	}
}

// TestBlockNumWrap exercises a bucket whose 16-bit counter has wrapped; the
// scan must stay within the block and still find the newest entries.
func TestBlockNumWrap(t *testing.T) {
	data := make([]byte, 64)
	copy(data, "ABCDEFGH")
	copy(data[32:], "ABCDEFGH")
	mask := uint32(63)

	h := newBlockHash(14, 4, 4, nil)
	key := hash32(uint32(getLE64(data)), 14)
	// Simulate 65535 previous stores of the same key.
	h.num[key] = 65535
	h.store(data, 0)
	if h.num[key] != 0 {
		t.Fatalf("num[key] = %d; want 0 after wrap", h.num[key])
	}
	h.store(data, 0)

	distCache := []int{4, 11, 15, 16}
	var s Search
	if !h.findLongestMatch(data, mask, distCache, 32, 8, 32, &s) {
		t.Fatal("findLongestMatch found no match after counter wrap")
	}
	if s.Distance != 32 || s.Len != 8 {
		t.Errorf("got %+v; want distance 32, length 8", s)
	}
}

// TestBlockFindLongestMatchScoreMonotone verifies that a reported match
// scores strictly better than the threshold passed in.
func TestBlockFindLongestMatchScoreMonotone(t *testing.T) {
	data := []byte("abcdefghxyzabcdefgh####")
	mask := uint32(31)

	h := newBlockHash(14, 4, 4, nil)
	distCache := []int{11, 4, 15, 16}
	s := Search{Score: scoreShortCode(8, 0)}
	if h.findLongestMatch(data, mask, distCache, 11, 8, 16, &s) {
		t.Error("match accepted without improving the score")
	}
}

// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command mftune measures the match coverage of the blz quality tiers over
// the Silesia corpus. It drives the match finders through a greedy parse and
// reports how many input bytes each tier covers with backward references and
// how fast it does so. The numbers guide the choice of quality presets; the
// tool does not change any tuning constants.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"math/bits"
	"time"

	"github.com/kr/pretty"
	"github.com/ulikunitz/blz"
	"github.com/ulikunitz/zdata"
	"golang.org/x/exp/slices"
)

type file struct {
	Name string
	Data []byte
}

func loadFiles(corpus fs.FS) (files []file, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, file{Name: path, Data: data})
			return nil
		})
	return files, err
}

type result struct {
	Quality      int
	TotalBytes   int64
	MatchedBytes int64
	Matches      int64
	Duration     time.Duration
}

func (r result) coverage() float64 {
	return float64(r.MatchedBytes) / float64(r.TotalBytes)
}

func (r result) mbPerSec() float64 {
	return float64(r.TotalBytes) / (1e6 * r.Duration.Seconds())
}

// initialDistances is the distance cache a Brotli encoder starts with.
var initialDistances = [4]int{4, 11, 15, 16}

// greedyParse walks the data once, querying the matcher at every position
// and skipping over accepted matches.
func greedyParse(m *blz.Matcher, data []byte, r *result) {
	mask := uint32(1)<<bits.Len(uint(len(data)-1)) - 1
	dc := initialDistances
	distCache := dc[:]
	quality := m.Quality()

	var matches []blz.Match
	i := uint32(0)
	n := uint32(len(data))
	for i+8 < n {
		maxLen := int(n - i)
		maxBackward := int(i)
		var length, distance int
		if quality == 10 {
			matches = m.FindAllMatches(data, mask, i, maxLen,
				maxBackward, matches[:0])
			if len(matches) > 0 {
				last := matches[len(matches)-1]
				length = int(last.Len)
				distance = int(last.Distance)
			}
		} else {
			s := blz.Search{}
			if m.FindLongestMatch(data, mask, distCache, i,
				maxLen, maxBackward, &s) {
				length = s.Len
				distance = s.Distance
			}
		}
		if length < 4 || distance > maxBackward {
			m.Store(data, mask, i)
			i++
			continue
		}
		r.MatchedBytes += int64(length)
		r.Matches++
		if distance != distCache[0] {
			copy(distCache[1:], distCache)
			distCache[0] = distance
		}
		stop := i + uint32(length)
		for i++; i < stop && i+8 < n; i++ {
			if quality == 10 {
				m.SkipByte(data, mask, i, int(n-i))
			} else {
				m.Store(data, mask, i)
			}
		}
		i = stop
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("mftune: ")

	minQuality := flag.Int("from", 1, "lowest quality tier to measure")
	maxQuality := flag.Int("to", 10, "highest quality tier to measure")
	windowBits := flag.Int("win", 22, "window bits")
	limit := flag.Int("limit", 1<<22, "maximum bytes used per file")
	flag.Parse()

	files, err := loadFiles(zdata.Silesia)
	if err != nil {
		log.Fatalf("loadFiles(zdata.Silesia) error %s", err)
	}

	var results []result
	for q := *minQuality; q <= *maxQuality; q++ {
		cfg := blz.MatcherConfig{
			Quality:    q,
			WindowBits: *windowBits,
		}
		m, err := blz.NewMatcher(cfg)
		if err != nil {
			log.Fatalf("NewMatcher error %s", err)
		}
		r := result{Quality: q}
		start := time.Now()
		for _, f := range files {
			data := f.Data
			if len(data) > *limit {
				data = data[:*limit]
			}
			m.Reset()
			r.TotalBytes += int64(len(data))
			greedyParse(m, data, &r)
		}
		r.Duration = time.Since(start)
		results = append(results, r)
		pretty.Println(cfg)
		fmt.Printf("quality %2d\t%.3f coverage\t%.2f MB/s\n",
			q, r.coverage(), r.mbPerSec())
	}

	slices.SortFunc(results, func(a, b result) int {
		switch {
		case a.coverage() > b.coverage():
			return -1
		case a.coverage() < b.coverage():
			return 1
		default:
			return 0
		}
	})

	fmt.Printf("\n### by coverage ###\n")
	for _, r := range results {
		fmt.Printf("quality %2d\t%.3f coverage\t%d matches\t%.2f MB/s\n",
			r.Quality, r.coverage(), r.Matches, r.mbPerSec())
	}
}

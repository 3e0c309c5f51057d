// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package blz

import "math/bits"

// The score model prefers the longest backward reference but allows
// exceptions: a reference that is further away will usually cost more bits,
// approximated by log2 of the distance. If the distance can be expressed as
// one of the sixteen short codes, the table below estimates the bit cost
// instead.

// shortCodeCost estimates the bits needed to encode distance short code j.
var shortCodeCost = [16]float64{
	-0.6, 0.95, 1.17, 1.27,
	0.93, 0.93, 0.96, 0.96, 0.99, 0.99,
	1.05, 1.05, 1.15, 1.15, 1.25, 1.25,
}

// score rates a match of length n at the given backward distance. Higher is
// better. The distance must be positive.
func score(n int, distance int) float64 {
	return 5.4*float64(n) - 1.20*float64(log2Floor(distance))
}

// scoreShortCode rates a match of length n whose distance is representable
// as the short code j.
func scoreShortCode(n int, j int) float64 {
	return 5.4*float64(n) - shortCodeCost[j]
}

// log2Floor returns the largest k with 2^k <= x and 0 for x == 0.
func log2Floor(x int) int {
	if x <= 0 {
		return 0
	}
	return bits.Len(uint(x)) - 1
}

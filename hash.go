// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package blz

// hashMul32 is the multiplier shared by all hash functions in this package
// and by the static dictionary hash. The multiplier must be odd, has no long
// streaks of ones or zeros and has been tuned against compression
// benchmarks. Other Brotli implementations use the same value, which keeps
// the compressed output of equal quality tiers in sync.
const hashMul32 = 0x1e35a7bd

// hash32 hashes the four low-address bytes in x into hashBits bits. The
// higher bits of the product contain more mixture from the multiplication,
// so the result is taken from there.
func hash32(x uint32, hashBits uint) uint32 {
	return (x * hashMul32) >> (32 - hashBits)
}

// hash5 hashes the five low-address bytes of the 8-byte little-endian load
// x. Hashing five bytes works much better for the quick qualities, where the
// next hash value is likely to replace the stored position.
func hash5(x uint64, hashBits uint) uint32 {
	return uint32(((x << 24) * hashMul32) >> (64 - hashBits))
}

// Package fingerprint provides deterministic text normalization and hashing
// shared by all deduplication strategies.
//
// Normalization is intentionally a single documented scheme rather than a
// per-strategy knob: lowercase the text and collapse whitespace runs to
// single spaces. Two records are exact duplicates iff their normalized
// texts hash to the same 64-bit digest.
//
// All hashing here is seed-stable FNV-1a; results are reproducible across
// runs and platforms, independent of Go's map hash randomization.
package fingerprint

import (
	"encoding/binary"
	"strings"
)

// FNV-1a 64-bit constants.
const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

// Normalize lowercases text and collapses whitespace runs to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Tokens splits text into normalized word tokens.
func Tokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Shingles returns the set of word n-grams of the normalized text.
// Texts with fewer than n tokens yield an empty set.
func Shingles(text string, n int) map[string]struct{} {
	shingles := make(map[string]struct{})
	if n <= 0 {
		return shingles
	}

	tokens := Tokens(text)
	for i := 0; i+n <= len(tokens); i++ {
		shingles[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}

	return shingles
}

// Sum64 computes the FNV-1a 64-bit digest of s.
func Sum64(s string) uint64 {
	h := fnvOffset
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}

// Sum64Pair computes two independent digests of s for double hashing.
// The second digest uses a perturbed seed and reversed iteration and is
// forced odd so that probe sequences h1 + i*h2 cover distinct positions.
func Sum64Pair(s string) (h1, h2 uint64) {
	h1 = fnvOffset
	for i := 0; i < len(s); i++ {
		h1 ^= uint64(s[i])
		h1 *= fnvPrime
	}

	h2 = fnvOffset ^ 0x5555555555555555
	for i := len(s) - 1; i >= 0; i-- {
		h2 ^= uint64(s[i])
		h2 *= fnvPrime
	}
	h2 |= 1

	return h1, h2
}

// Sum64Words computes the FNV-1a 64-bit digest of a uint64 slice in its
// little-endian byte representation. Used to digest MinHash signatures and
// signature slices.
func Sum64Words(words []uint64) uint64 {
	var buf [8]byte
	h := fnvOffset
	for _, w := range words {
		binary.LittleEndian.PutUint64(buf[:], w)
		for _, b := range buf {
			h ^= uint64(b)
			h *= fnvPrime
		}
	}
	return h
}

// Mix64 is the splitmix64 finalizer. It decorrelates related inputs and is
// used to derive a second probe base from a fingerprint.
func Mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

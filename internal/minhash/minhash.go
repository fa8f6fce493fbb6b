// Package minhash implements MinHash signatures and banded
// locality-sensitive hashing for near-duplicate detection.
//
// A signature is the vector of minima of a seeded universal hash family
// over a record's shingle set; the fraction of matching positions between
// two signatures estimates the Jaccard similarity of the underlying sets.
// Banding splits a signature into bands of consecutive rows; records whose
// signatures agree exactly on any band become candidate pairs, with
// collision probability 1 - (1 - J^rows)^bands.
package minhash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/dedupgo/internal/fingerprint"
)

// DefaultSeed is the hash family seed used when none is configured.
// Identical seeds yield identical signatures across runs and machines.
const DefaultSeed int64 = 1

// mersennePrime is the modulus of the universal hash family
// h(x) = (a*x + b) mod p. With p = 2^31-1 the product a*x stays within
// uint64 range without overflow.
const mersennePrime uint64 = 1<<31 - 1

var (
	// ErrInvalidNumHashes indicates a non-positive signature length.
	ErrInvalidNumHashes = errors.New("minhash: number of hashes must be positive")

	// ErrIndivisibleBands indicates a band count that does not evenly
	// divide the signature length.
	ErrIndivisibleBands = errors.New("minhash: bands must evenly divide the number of hashes")
)

type hashFunc struct {
	a, b uint64
}

// Hasher computes MinHash signatures with a fixed family of seeded
// universal hash functions. All records in a run must use the same Hasher
// so signatures stay comparable.
type Hasher struct {
	funcs []hashFunc
}

// NewHasher creates a Hasher with numHashes independent hash functions
// drawn from a seeded generator.
func NewHasher(numHashes int, seed int64) (*Hasher, error) {
	if numHashes <= 0 {
		return nil, ErrInvalidNumHashes
	}

	rng := rand.New(rand.NewSource(seed))
	funcs := make([]hashFunc, numHashes)
	for i := range funcs {
		funcs[i] = hashFunc{
			a: uint64(rng.Int63n(int64(mersennePrime-1))) + 1,
			b: uint64(rng.Int63n(int64(mersennePrime))),
		}
	}

	return &Hasher{funcs: funcs}, nil
}

// NumHashes returns the signature length.
func (h *Hasher) NumHashes() int {
	return len(h.funcs)
}

// Signature computes the MinHash signature of a shingle set: for each hash
// function, the minimum hash value over all shingles. An empty set leaves
// every position at the sentinel value math.MaxUint64.
func (h *Hasher) Signature(shingles map[string]struct{}) []uint64 {
	sig := make([]uint64, len(h.funcs))
	for i := range sig {
		sig[i] = math.MaxUint64
	}

	for shingle := range shingles {
		x := fingerprint.Sum64(shingle) % mersennePrime
		for i, f := range h.funcs {
			if v := (f.a*x + f.b) % mersennePrime; v < sig[i] {
				sig[i] = v
			}
		}
	}

	return sig
}

// IsSentinel reports whether sig is the empty-shingle sentinel signature.
// A single position suffices: any shingle pulls every position below the
// hash modulus.
func IsSentinel(sig []uint64) bool {
	return len(sig) > 0 && sig[0] == math.MaxUint64
}

// Similarity estimates the Jaccard similarity of the sets behind two
// signatures as the fraction of matching positions.
func Similarity(a, b []uint64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}

	return float64(matches) / float64(len(a))
}

// BandPlan is a split of a signature into Bands contiguous groups of Rows
// values each, with Bands*Rows equal to the signature length.
type BandPlan struct {
	Bands int
	Rows  int
}

// NewBandPlan validates an explicit band count against the signature length.
func NewBandPlan(numHashes, bands int) (BandPlan, error) {
	if numHashes <= 0 {
		return BandPlan{}, ErrInvalidNumHashes
	}
	if bands <= 0 || numHashes%bands != 0 {
		return BandPlan{}, fmt.Errorf("%w: %d hashes into %d bands", ErrIndivisibleBands, numHashes, bands)
	}
	return BandPlan{Bands: bands, Rows: numHashes / bands}, nil
}

// PlanBands picks the divisor split of numHashes whose step threshold is
// closest to the requested similarity threshold, so that the collision
// probability curve rises sharply near it.
func PlanBands(numHashes int, threshold float64) (BandPlan, error) {
	if numHashes <= 0 {
		return BandPlan{}, ErrInvalidNumHashes
	}

	best := BandPlan{}
	bestDiff := math.Inf(1)
	for bands := 1; bands <= numHashes; bands++ {
		if numHashes%bands != 0 {
			continue
		}
		plan := BandPlan{Bands: bands, Rows: numHashes / bands}
		if diff := math.Abs(plan.Threshold() - threshold); diff < bestDiff {
			best, bestDiff = plan, diff
		}
	}

	return best, nil
}

// Threshold returns the similarity (1/bands)^(1/rows) at which the
// collision probability curve has its steep rise.
func (p BandPlan) Threshold() float64 {
	return math.Pow(1/float64(p.Bands), 1/float64(p.Rows))
}

// CollisionProbability returns the probability 1 - (1 - J^rows)^bands that
// two records with true Jaccard similarity j share at least one band.
func (p BandPlan) CollisionProbability(j float64) float64 {
	return 1 - math.Pow(1-math.Pow(j, float64(p.Rows)), float64(p.Bands))
}

// BucketTable maps (band, band-signature) keys to the ordinals of
// previously kept records. It grows monotonically during a run and is
// never pruned.
type BucketTable struct {
	plan    BandPlan
	buckets []map[string]*roaring.Bitmap
}

// NewBucketTable creates an empty table for the given band plan.
func NewBucketTable(plan BandPlan) *BucketTable {
	buckets := make([]map[string]*roaring.Bitmap, plan.Bands)
	for i := range buckets {
		buckets[i] = make(map[string]*roaring.Bitmap)
	}
	return &BucketTable{plan: plan, buckets: buckets}
}

// key is the exact byte content of one band slice of the signature.
func (t *BucketTable) key(sig []uint64, band int) string {
	start := band * t.plan.Rows
	buf := make([]byte, 8*t.plan.Rows)
	for i, w := range sig[start : start+t.plan.Rows] {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return string(buf)
}

// Candidates returns the ordinals of records sharing at least one band
// bucket with sig, in ascending insertion order.
func (t *BucketTable) Candidates(sig []uint64) []uint32 {
	var acc *roaring.Bitmap
	for band := range t.buckets {
		bm, ok := t.buckets[band][t.key(sig, band)]
		if !ok {
			continue
		}
		if acc == nil {
			acc = bm.Clone()
		} else {
			acc.Or(bm)
		}
	}

	if acc == nil {
		return nil
	}
	return acc.ToArray()
}

// Insert adds a kept record's ordinal under every band bucket of sig.
func (t *BucketTable) Insert(sig []uint64, ordinal uint32) {
	for band := range t.buckets {
		k := t.key(sig, band)
		bm, ok := t.buckets[band][k]
		if !ok {
			bm = roaring.New()
			t.buckets[band][k] = bm
		}
		bm.Add(ordinal)
	}
}

// Buckets returns the total number of occupied buckets across all bands.
func (t *BucketTable) Buckets() int {
	n := 0
	for _, b := range t.buckets {
		n += len(b)
	}
	return n
}

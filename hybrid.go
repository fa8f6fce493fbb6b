package dedupgo

import (
	"github.com/hupe1980/dedupgo/internal/bloom"
	"github.com/hupe1980/dedupgo/internal/fingerprint"
	"github.com/hupe1980/dedupgo/internal/minhash"
)

// MinHashBloomOptions configures the hybrid strategy.
type MinHashBloomOptions struct {
	// NumHashes is the MinHash signature length.
	NumHashes int

	// ShingleSize is the word n-gram width.
	ShingleSize int

	// Seed parameterizes the hash family.
	Seed int64
}

// MinHashBloomDeduplicator collapses records whose shingle sets produce
// the same MinHash signature, with Bloom-filter membership instead of an
// exact signature set. Memory stays constant like the Bloom strategy while
// the signature digest tolerates shingle-order and duplicate-shingle noise
// that would defeat exact hashing.
//
// Unlike MinHashLSHDeduplicator there is no banding and no similarity
// threshold: only identical signatures collide, so this catches a narrower
// near-duplicate class. Texts too short to shingle fall back to the exact
// fingerprint of the normalized text.
type MinHashBloomDeduplicator struct {
	hasher    *minhash.Hasher
	filter    *bloom.Filter
	opts      MinHashBloomOptions
	malformed int64
}

var _ Deduplicator = (*MinHashBloomDeduplicator)(nil)

// NewMinHashBloom creates the hybrid deduplicator. Filter sizing follows
// the same validation as NewBloomFilter.
func NewMinHashBloom(expectedItems int, targetFPRate float64, optFns ...func(*MinHashBloomOptions)) (*MinHashBloomDeduplicator, error) {
	opts := MinHashBloomOptions{
		NumHashes:   128,
		ShingleSize: 3,
		Seed:        minhash.DefaultSeed,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	filter, err := bloom.New(expectedItems, targetFPRate)
	if err != nil {
		return nil, &ErrInvalidBloomParams{
			ExpectedItems: expectedItems,
			Rate:          targetFPRate,
			cause:         err,
		}
	}

	hasher, err := minhash.NewHasher(opts.NumHashes, opts.Seed)
	if err != nil {
		return nil, err
	}

	return &MinHashBloomDeduplicator{
		hasher: hasher,
		filter: filter,
		opts:   opts,
	}, nil
}

// Run implements Deduplicator.
func (d *MinHashBloomDeduplicator) Run(chunk []Record) ([]Record, error) {
	kept := make([]Record, 0, len(chunk))

	for _, rec := range chunk {
		if rec.Text == "" {
			d.malformed++
			continue
		}

		var fp uint64
		sig := d.hasher.Signature(fingerprint.Shingles(rec.Text, d.opts.ShingleSize))
		if minhash.IsSentinel(sig) {
			fp = fingerprint.Sum64(fingerprint.Normalize(rec.Text))
		} else {
			fp = fingerprint.Sum64Words(sig)
		}

		if d.filter.TestAndAdd(fp) {
			continue
		}

		kept = append(kept, rec)
	}

	return kept, nil
}

// Inserted returns the number of fingerprints inserted so far.
func (d *MinHashBloomDeduplicator) Inserted() uint64 {
	return d.filter.Count()
}

// Malformed implements MalformedCounter.
func (d *MinHashBloomDeduplicator) Malformed() int64 {
	return d.malformed
}

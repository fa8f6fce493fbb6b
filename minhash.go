package dedupgo

import (
	"github.com/hupe1980/dedupgo/internal/fingerprint"
	"github.com/hupe1980/dedupgo/internal/minhash"
)

// MinHashLSHOptions configures the MinHash/LSH strategy.
type MinHashLSHOptions struct {
	// ShingleSize is the word n-gram width used as the similarity feature.
	ShingleSize int

	// Bands is an explicit band count. Zero derives the band split from
	// the similarity threshold so the collision probability curve rises
	// sharply near it. An explicit value must evenly divide NumHashes.
	Bands int

	// Seed parameterizes the hash family. Runs with the same seed produce
	// identical signatures.
	Seed int64

	// ProgressInterval is the number of processed records between progress
	// events to the collector. Zero disables progress reporting. Progress
	// has no effect on dedup decisions.
	ProgressInterval int

	// Collector receives progress events. Defaults to no-op.
	Collector MetricsCollector
}

// MinHashLSHDeduplicator removes records that are near-duplicates of an
// earlier record. Each record's text is shingled into word n-grams and
// summarized as a MinHash signature; banded locality-sensitive hashing
// buckets candidate pairs, which are then verified by estimating Jaccard
// similarity over the full signature. The first-seen record of a
// near-duplicate cluster is always the one retained.
//
// Both false negatives (missed near-duplicates) and false positives
// (unrelated records flagged similar) are possible, bounded by the number
// of hashes and the band split.
type MinHashLSHDeduplicator struct {
	hasher    *minhash.Hasher
	table     *minhash.BucketTable
	sigs      [][]uint64 // full signatures of bucketed records, by ordinal
	threshold float64
	opts      MinHashLSHOptions
	processed int64
	malformed int64
}

var _ Deduplicator = (*MinHashLSHDeduplicator)(nil)

// NewMinHashLSH creates a MinHash/LSH deduplicator with a signature of
// numHashes values and the given similarity threshold in (0, 1).
func NewMinHashLSH(numHashes int, threshold float64, optFns ...func(*MinHashLSHOptions)) (*MinHashLSHDeduplicator, error) {
	opts := MinHashLSHOptions{
		ShingleSize:      3,
		Seed:             minhash.DefaultSeed,
		ProgressInterval: 1000,
		Collector:        NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Collector == nil {
		opts.Collector = NoopMetricsCollector{}
	}

	if threshold <= 0 || threshold >= 1 {
		return nil, &ErrInvalidThreshold{Threshold: threshold}
	}

	var (
		plan minhash.BandPlan
		err  error
	)
	if opts.Bands > 0 {
		plan, err = minhash.NewBandPlan(numHashes, opts.Bands)
	} else {
		plan, err = minhash.PlanBands(numHashes, threshold)
	}
	if err != nil {
		return nil, &ErrInvalidBandPlan{NumHashes: numHashes, Bands: opts.Bands, cause: err}
	}

	hasher, err := minhash.NewHasher(numHashes, opts.Seed)
	if err != nil {
		return nil, &ErrInvalidBandPlan{NumHashes: numHashes, Bands: opts.Bands, cause: err}
	}

	return &MinHashLSHDeduplicator{
		hasher:    hasher,
		table:     minhash.NewBucketTable(plan),
		threshold: threshold,
		opts:      opts,
	}, nil
}

// Run implements Deduplicator.
func (d *MinHashLSHDeduplicator) Run(chunk []Record) ([]Record, error) {
	kept := make([]Record, 0, len(chunk))

	for _, rec := range chunk {
		if rec.Text == "" {
			d.malformed++
			continue
		}

		d.processed++
		if d.opts.ProgressInterval > 0 && d.processed%int64(d.opts.ProgressInterval) == 0 {
			d.opts.Collector.RecordProgress(d.processed)
		}

		sig := d.hasher.Signature(fingerprint.Shingles(rec.Text, d.opts.ShingleSize))
		if minhash.IsSentinel(sig) {
			// Too short to shingle: always kept, never matched.
			kept = append(kept, rec)
			continue
		}

		if d.isNearDuplicate(sig) {
			continue
		}

		ordinal := uint32(len(d.sigs))
		d.sigs = append(d.sigs, sig)
		d.table.Insert(sig, ordinal)
		kept = append(kept, rec)
	}

	return kept, nil
}

// isNearDuplicate verifies bucket candidates against the full signature.
// Candidates arrive in first-seen order, so the earliest matching record
// anchors the cluster.
func (d *MinHashLSHDeduplicator) isNearDuplicate(sig []uint64) bool {
	for _, ordinal := range d.table.Candidates(sig) {
		if minhash.Similarity(sig, d.sigs[ordinal]) >= d.threshold {
			return true
		}
	}
	return false
}

// Indexed returns the number of records inserted into the bucket table.
func (d *MinHashLSHDeduplicator) Indexed() int {
	return len(d.sigs)
}

// Malformed implements MalformedCounter.
func (d *MinHashLSHDeduplicator) Malformed() int64 {
	return d.malformed
}

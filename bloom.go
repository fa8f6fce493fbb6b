package dedupgo

import (
	"io"

	"github.com/hupe1980/dedupgo/internal/bloom"
	"github.com/hupe1980/dedupgo/internal/fingerprint"
)

// BloomFilterDeduplicator tests fingerprint membership against a
// fixed-size Bloom filter instead of an exact seen set. Memory stays at
// roughly m bits regardless of corpus size; the price is false positives:
// a unique record may be incorrectly dropped. There are no false
// negatives, so a true duplicate is always caught.
//
// The empirical false-positive rate converges to the configured target as
// insertions approach the expected item count and exceeds it when more
// items are inserted than planned for.
type BloomFilterDeduplicator struct {
	filter    *bloom.Filter
	malformed int64
}

var _ Deduplicator = (*BloomFilterDeduplicator)(nil)

// NewBloomFilter creates a Bloom deduplicator sized for expectedItems at
// the target false-positive rate. It fails before any record is processed
// when expectedItems is not positive or the rate is outside (0, 1).
func NewBloomFilter(expectedItems int, targetFPRate float64) (*BloomFilterDeduplicator, error) {
	filter, err := bloom.New(expectedItems, targetFPRate)
	if err != nil {
		return nil, &ErrInvalidBloomParams{
			ExpectedItems: expectedItems,
			Rate:          targetFPRate,
			cause:         err,
		}
	}

	return &BloomFilterDeduplicator{filter: filter}, nil
}

// Run implements Deduplicator.
func (d *BloomFilterDeduplicator) Run(chunk []Record) ([]Record, error) {
	kept := make([]Record, 0, len(chunk))

	for _, rec := range chunk {
		if rec.Text == "" {
			d.malformed++
			continue
		}

		fp := fingerprint.Sum64(fingerprint.Normalize(rec.Text))
		if d.filter.TestAndAdd(fp) {
			continue // probably seen before
		}

		kept = append(kept, rec)
	}

	return kept, nil
}

// EstimatedFalsePositiveRate returns the filter's current estimated
// false-positive rate based on its fill.
func (d *BloomFilterDeduplicator) EstimatedFalsePositiveRate() float64 {
	return d.filter.EstimatedFalsePositiveRate()
}

// Inserted returns the number of fingerprints inserted so far.
func (d *BloomFilterDeduplicator) Inserted() uint64 {
	return d.filter.Count()
}

// WriteState serializes the filter state for offline inspection.
func (d *BloomFilterDeduplicator) WriteState(w io.Writer) (int64, error) {
	return d.filter.WriteTo(w)
}

// Malformed implements MalformedCounter.
func (d *BloomFilterDeduplicator) Malformed() int64 {
	return d.malformed
}

package dedupgo

import "github.com/hupe1980/dedupgo/internal/fingerprint"

// ExactHashDeduplicator keeps a single record per exact fingerprint of the
// normalized text, across the whole run. The first occurrence in global
// stream order always wins and the relative order of kept records is
// preserved. Exact: no false positives or false negatives.
//
// Memory grows with the number of unique records seen; acceptable for
// moderate corpora and deliberately not addressed by this strategy. Use
// BloomFilterDeduplicator when a fixed memory bound matters more than
// exactness.
type ExactHashDeduplicator struct {
	seen      map[uint64]struct{}
	malformed int64
}

var _ Deduplicator = (*ExactHashDeduplicator)(nil)

// NewExactHash creates an exact-hash deduplicator with an empty seen set.
func NewExactHash() *ExactHashDeduplicator {
	return &ExactHashDeduplicator{
		seen: make(map[uint64]struct{}),
	}
}

// Run implements Deduplicator.
func (d *ExactHashDeduplicator) Run(chunk []Record) ([]Record, error) {
	kept := make([]Record, 0, len(chunk))

	for _, rec := range chunk {
		if rec.Text == "" {
			d.malformed++
			continue
		}

		fp := fingerprint.Sum64(fingerprint.Normalize(rec.Text))
		if _, ok := d.seen[fp]; ok {
			continue
		}

		d.seen[fp] = struct{}{}
		kept = append(kept, rec)
	}

	return kept, nil
}

// Unique returns the number of distinct fingerprints seen so far.
func (d *ExactHashDeduplicator) Unique() int {
	return len(d.seen)
}

// Malformed implements MalformedCounter.
func (d *ExactHashDeduplicator) Malformed() int64 {
	return d.malformed
}

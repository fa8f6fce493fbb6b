package dedupgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHashLSHValidation(t *testing.T) {
	t.Run("ThresholdOutOfRange", func(t *testing.T) {
		for _, threshold := range []float64{0, 1, -0.2, 1.7} {
			_, err := NewMinHashLSH(128, threshold)

			var invalid *ErrInvalidThreshold
			assert.ErrorAs(t, err, &invalid)
		}
	})

	t.Run("IndivisibleBands", func(t *testing.T) {
		_, err := NewMinHashLSH(128, 0.5, func(o *MinHashLSHOptions) {
			o.Bands = 24
		})

		var invalid *ErrInvalidBandPlan
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 128, invalid.NumHashes)
		assert.Equal(t, 24, invalid.Bands)
	})

	t.Run("ExplicitBandsValid", func(t *testing.T) {
		_, err := NewMinHashLSH(128, 0.5, func(o *MinHashLSHOptions) {
			o.Bands = 32
		})
		assert.NoError(t, err)
	})
}

func TestMinHashLSHScenario(t *testing.T) {
	d, err := NewMinHashLSH(256, 0.5, func(o *MinHashLSHOptions) {
		o.ShingleSize = 2
	})
	require.NoError(t, err)

	kept, err := d.Run(recordsFromTexts(
		"the quick brown fox jumps",
		"the quick brown fox leaps",
		"completely different content here",
	))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"the quick brown fox jumps",
		"completely different content here",
	}, textsOf(kept))
}

func TestMinHashLSHExactDuplicates(t *testing.T) {
	d, err := NewMinHashLSH(128, 0.8, func(o *MinHashLSHOptions) {
		o.ShingleSize = 2
	})
	require.NoError(t, err)

	kept, err := d.Run(recordsFromTexts(
		"the cat sat on the mat today",
		"the cat sat on the mat today",
	))
	require.NoError(t, err)
	assert.Len(t, kept, 1, "identical texts have identical signatures")
}

func TestMinHashLSHFirstSeenWins(t *testing.T) {
	d, err := NewMinHashLSH(256, 0.5, func(o *MinHashLSHOptions) {
		o.ShingleSize = 2
	})
	require.NoError(t, err)

	// Near-duplicate arrives in a later chunk; the earlier record anchors
	// the cluster and stays.
	kept1, err := d.Run(recordsFromTexts("the quick brown fox jumps over fences"))
	require.NoError(t, err)
	require.Len(t, kept1, 1)

	kept2, err := d.Run(recordsFromTexts("the quick brown fox jumps over hedges"))
	require.NoError(t, err)
	assert.Empty(t, kept2)
	assert.Equal(t, 1, d.Indexed())
}

func TestMinHashLSHShortTextsAlwaysKept(t *testing.T) {
	d, err := NewMinHashLSH(128, 0.5, func(o *MinHashLSHOptions) {
		o.ShingleSize = 3
	})
	require.NoError(t, err)

	// Two tokens cannot form a 3-gram: sentinel signatures, always kept,
	// never matched against each other.
	kept, err := d.Run(recordsFromTexts("hello world", "hello world"))
	require.NoError(t, err)
	assert.Len(t, kept, 2)
	assert.Zero(t, d.Indexed())
}

func TestMinHashLSHSimilarityMonotonicity(t *testing.T) {
	const (
		base    = "alpha beta gamma delta epsilon zeta eta theta iota kappa"
		nearDup = "alpha beta gamma delta epsilon zeta eta theta iota omega" // bigram J = 8/10
		farDup  = "alpha beta gamma xx epsilon zeta eta yy iota kappa"       // bigram J = 5/13
	)

	detections := func(variant string) int {
		count := 0
		for seed := int64(1); seed <= 30; seed++ {
			d, err := NewMinHashLSH(128, 0.35, func(o *MinHashLSHOptions) {
				o.ShingleSize = 2
				o.Seed = seed
			})
			require.NoError(t, err)

			kept, err := d.Run(recordsFromTexts(base, variant))
			require.NoError(t, err)
			if len(kept) == 1 {
				count++
			}
		}
		return count
	}

	high := detections(nearDup)
	low := detections(farDup)

	assert.GreaterOrEqual(t, high, low,
		"higher-similarity pairs must be detected at least as often")
	assert.Greater(t, high, 25, "J=0.8 pairs should almost always be caught at threshold 0.35")
}

func TestMinHashLSHMalformedSkipped(t *testing.T) {
	d, err := NewMinHashLSH(128, 0.5)
	require.NoError(t, err)

	kept, err := d.Run(recordsFromTexts("", "some long enough text for shingles here"))
	require.NoError(t, err)
	assert.Len(t, kept, 1)
	assert.Equal(t, int64(1), d.Malformed())
}

func TestMinHashLSHProgressReporting(t *testing.T) {
	collector := &BasicMetricsCollector{}

	d, err := NewMinHashLSH(64, 0.5, func(o *MinHashLSHOptions) {
		o.ProgressInterval = 2
		o.Collector = collector
	})
	require.NoError(t, err)

	texts := make([]string, 6)
	for i := range texts {
		texts[i] = "record with distinct trailing token " + string(rune('a'+i))
	}

	_, err = d.Run(recordsFromTexts(texts...))
	require.NoError(t, err)

	assert.Equal(t, int64(3), collector.ProgressEvents.Load())
}

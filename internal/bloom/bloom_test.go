package bloom

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/hupe1980/dedupgo/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	t.Run("StandardFormulas", func(t *testing.T) {
		numBits, k, err := Size(1000, 0.01)
		require.NoError(t, err)

		// m = -1000*ln(0.01)/ln(2)^2 ~ 9586 bits, k ~ 7
		assert.InDelta(t, 9586, float64(numBits), 64)
		assert.Equal(t, uint32(7), k)
	})

	t.Run("InvalidCapacity", func(t *testing.T) {
		_, _, err := Size(0, 0.01)
		assert.ErrorIs(t, err, ErrInvalidCapacity)

		_, _, err = Size(-5, 0.01)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("InvalidRate", func(t *testing.T) {
		for _, rate := range []float64{0, 1, -0.1, 1.5} {
			_, _, err := Size(100, rate)
			assert.ErrorIs(t, err, ErrInvalidRate)
		}
	})
}

func TestFilterBasics(t *testing.T) {
	f, err := New(1000, 0.01)
	require.NoError(t, err)

	fp := fingerprint.Sum64("hello")
	assert.False(t, f.Contains(fp))

	f.Add(fp)
	assert.True(t, f.Contains(fp))
	assert.Equal(t, uint64(1), f.Count())
}

func TestTestAndAdd(t *testing.T) {
	f, err := New(1000, 0.01)
	require.NoError(t, err)

	fp := fingerprint.Sum64("cat sat")
	assert.False(t, f.TestAndAdd(fp))
	assert.True(t, f.TestAndAdd(fp))
	assert.Equal(t, uint64(1), f.Count())
}

func TestNoFalseNegatives(t *testing.T) {
	f, err := New(5000, 0.01)
	require.NoError(t, err)

	for i := 0; i < 5000; i++ {
		f.Add(fingerprint.Sum64(fmt.Sprintf("record-%d", i)))
	}
	for i := 0; i < 5000; i++ {
		assert.True(t, f.Contains(fingerprint.Sum64(fmt.Sprintf("record-%d", i))))
	}
}

func TestFalsePositiveRate(t *testing.T) {
	const (
		n      = 10000
		target = 0.01
	)

	f, err := New(n, target)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		f.Add(fingerprint.Sum64(fmt.Sprintf("inserted-%d", i)))
	}

	falsePositives := 0
	for i := 0; i < n; i++ {
		if f.Contains(fingerprint.Sum64(fmt.Sprintf("probed-%d", i))) {
			falsePositives++
		}
	}

	rate := float64(falsePositives) / float64(n)
	assert.Less(t, rate, 2*target, "empirical rate should not wildly exceed target")
	assert.Greater(t, rate, target/10, "rate should be in the target's neighborhood")

	est := f.EstimatedFalsePositiveRate()
	assert.InDelta(t, target, est, target)
}

func TestFillRatio(t *testing.T) {
	f, err := New(1000, 0.01)
	require.NoError(t, err)

	assert.Zero(t, f.FillRatio())

	for i := 0; i < 1000; i++ {
		f.Add(fingerprint.Sum64(fmt.Sprintf("fill-%d", i)))
	}

	// At capacity the optimal filter is about half full.
	ratio := f.FillRatio()
	assert.InDelta(t, 0.5, ratio, 0.1)
}

func TestSerializationRoundTrip(t *testing.T) {
	f, err := New(500, 0.02)
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		f.Add(fingerprint.Sum64(fmt.Sprintf("item-%d", i)))
	}

	var buf bytes.Buffer
	written, err := f.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), written)

	loaded, err := ReadFrom(&buf)
	require.NoError(t, err)

	assert.Equal(t, f.NumBits(), loaded.NumBits())
	assert.Equal(t, f.NumHashes(), loaded.NumHashes())
	assert.Equal(t, f.Count(), loaded.Count())

	for i := 0; i < 300; i++ {
		assert.True(t, loaded.Contains(fingerprint.Sum64(fmt.Sprintf("item-%d", i))))
	}
}

func TestReadFromCorrupted(t *testing.T) {
	t.Run("Truncated", func(t *testing.T) {
		_, err := ReadFrom(bytes.NewReader([]byte{1, 2, 3}))
		assert.Error(t, err)
	})

	t.Run("BadHeader", func(t *testing.T) {
		header := make([]byte, 20) // numBits=0
		_, err := ReadFrom(bytes.NewReader(header))
		assert.ErrorIs(t, err, ErrCorruptedFilter)
	})
}

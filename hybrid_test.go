package dedupgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHashBloomValidation(t *testing.T) {
	_, err := NewMinHashBloom(-1, 0.01)

	var invalid *ErrInvalidBloomParams
	assert.ErrorAs(t, err, &invalid)
}

func TestMinHashBloomExactDuplicates(t *testing.T) {
	d, err := NewMinHashBloom(1000, 0.001)
	require.NoError(t, err)

	kept, err := d.Run(recordsFromTexts(
		"the cat sat on the mat this morning",
		"the cat sat on the mat this morning",
		"an entirely unrelated sentence about weather patterns",
	))
	require.NoError(t, err)

	assert.Len(t, kept, 2)
	assert.Equal(t, uint64(2), d.Inserted())
}

func TestMinHashBloomCrossChunkState(t *testing.T) {
	d, err := NewMinHashBloom(1000, 0.001)
	require.NoError(t, err)

	kept1, err := d.Run(recordsFromTexts("one two three four five six"))
	require.NoError(t, err)
	assert.Len(t, kept1, 1)

	kept2, err := d.Run(recordsFromTexts("one two three four five six"))
	require.NoError(t, err)
	assert.Empty(t, kept2)
}

func TestMinHashBloomShortTextFallback(t *testing.T) {
	d, err := NewMinHashBloom(1000, 0.001, func(o *MinHashBloomOptions) {
		o.ShingleSize = 5
	})
	require.NoError(t, err)

	// Too short to shingle: deduplicated by exact fingerprint instead of
	// collapsing all short texts into one sentinel signature.
	kept, err := d.Run(recordsFromTexts("hi there", "hi there", "bye now"))
	require.NoError(t, err)

	assert.Equal(t, []string{"hi there", "bye now"}, textsOf(kept))
}

func TestMinHashBloomMalformedSkipped(t *testing.T) {
	d, err := NewMinHashBloom(100, 0.01)
	require.NoError(t, err)

	kept, err := d.Run(recordsFromTexts("", "valid text content for the filter"))
	require.NoError(t, err)
	assert.Len(t, kept, 1)
	assert.Equal(t, int64(1), d.Malformed())
}

package dedupgo

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkStub replays a fixed chunk sequence, then io.EOF.
type chunkStub struct {
	chunks [][]Record
	next   int
	err    error // returned instead of the chunk at errAt
	errAt  int
}

func (s *chunkStub) Next(_ context.Context) ([]Record, error) {
	if s.err != nil && s.next == s.errAt {
		return nil, s.err
	}
	if s.next >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.next]
	s.next++
	return chunk, nil
}

// sinkStub records every WriteChunk call.
type sinkStub struct {
	indexes []int64
	chunks  [][]Record
	err     error
}

func (s *sinkStub) WriteChunk(_ context.Context, index int64, records []Record) error {
	if s.err != nil {
		return s.err
	}
	s.indexes = append(s.indexes, index)
	s.chunks = append(s.chunks, records)
	return nil
}

func TestPipelineRun(t *testing.T) {
	t.Run("StatsAccumulateAcrossChunks", func(t *testing.T) {
		producer := &chunkStub{chunks: [][]Record{
			recordsFromTexts("cat sat", "dog ran"),
			recordsFromTexts("cat sat", "bird flew", ""),
		}}

		p := New(NewExactHash(), producer)

		kept, err := p.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"cat sat", "dog ran", "bird flew"}, textsOf(kept))

		stats := p.Stats()
		assert.Equal(t, int64(5), stats.ExamplesSeen)
		assert.Equal(t, int64(1), stats.DuplicatesRemoved)
		assert.Equal(t, int64(2), stats.ChunksProcessed)
		assert.Equal(t, int64(1), stats.MalformedRecords)
	})

	t.Run("MaxChunksBound", func(t *testing.T) {
		producer := &chunkStub{chunks: [][]Record{
			recordsFromTexts("a"),
			recordsFromTexts("b"),
			recordsFromTexts("c"),
		}}

		p := New(NewExactHash(), producer, WithMaxChunks(2))

		kept, err := p.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, textsOf(kept))
		assert.Equal(t, int64(2), p.Stats().ChunksProcessed)
	})

	t.Run("StreamErrorPropagatesUnchanged", func(t *testing.T) {
		streamErr := errors.New("connection reset")
		producer := &chunkStub{
			chunks: [][]Record{recordsFromTexts("a")},
			err:    streamErr,
			errAt:  1,
		}

		p := New(NewExactHash(), producer)

		_, err := p.Run(context.Background())
		assert.ErrorIs(t, err, streamErr)
		assert.Equal(t, int64(1), p.Stats().ChunksProcessed, "first chunk completed before the failure")
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		producer := &chunkStub{chunks: [][]Record{recordsFromTexts("a")}}
		p := New(NewExactHash(), producer)

		_, err := p.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("NilStrategy", func(t *testing.T) {
		_, err := New(nil, &chunkStub{}).Run(context.Background())
		assert.ErrorIs(t, err, ErrNilStrategy)
	})

	t.Run("NilProducer", func(t *testing.T) {
		_, err := New(NewExactHash(), nil).Run(context.Background())
		assert.ErrorIs(t, err, ErrNilProducer)
	})

	t.Run("SinkReceivesChunksInOrder", func(t *testing.T) {
		producer := &chunkStub{chunks: [][]Record{
			recordsFromTexts("a", "b"),
			recordsFromTexts("a", "c"),
		}}
		sink := &sinkStub{}

		p := New(NewExactHash(), producer, WithOutputSink(sink))

		_, err := p.Run(context.Background())
		require.NoError(t, err)

		require.Equal(t, []int64{1, 2}, sink.indexes)
		assert.Equal(t, []string{"a", "b"}, textsOf(sink.chunks[0]))
		assert.Equal(t, []string{"c"}, textsOf(sink.chunks[1]))
	})

	t.Run("SinkErrorIsFatal", func(t *testing.T) {
		sinkErr := errors.New("bucket gone")
		producer := &chunkStub{chunks: [][]Record{recordsFromTexts("a")}}

		p := New(NewExactHash(), producer, WithOutputSink(&sinkStub{err: sinkErr}))

		_, err := p.Run(context.Background())
		assert.ErrorIs(t, err, sinkErr)
	})

	t.Run("EmptyChunksSkipped", func(t *testing.T) {
		producer := &chunkStub{chunks: [][]Record{
			{},
			recordsFromTexts("a"),
		}}

		p := New(NewExactHash(), producer)

		kept, err := p.Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, kept, 1)
		assert.Equal(t, int64(1), p.Stats().ChunksProcessed)
	})

	t.Run("MetricsCollectorObservesChunks", func(t *testing.T) {
		collector := &BasicMetricsCollector{}
		producer := &chunkStub{chunks: [][]Record{
			recordsFromTexts("a", "b", "a"),
		}}

		p := New(NewExactHash(), producer, WithMetricsCollector(collector))

		_, err := p.Run(context.Background())
		require.NoError(t, err)

		stats := collector.GetStats()
		assert.Equal(t, int64(1), stats.ChunkCount)
		assert.Equal(t, int64(3), stats.ExamplesSeen)
		assert.Equal(t, int64(2), stats.RecordsKept)
		assert.Equal(t, int64(1), stats.DuplicatesRemoved)
		assert.Equal(t, int64(1), stats.RunCount)
		assert.Equal(t, int64(0), stats.RunErrors)
	})

	t.Run("RateLimitedRunCompletes", func(t *testing.T) {
		producer := &chunkStub{chunks: [][]Record{
			recordsFromTexts("a", "b", "c", "d"),
		}}

		p := New(NewExactHash(), producer, WithRateLimit(10000, 2))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		kept, err := p.Run(ctx)
		require.NoError(t, err)
		assert.Len(t, kept, 4)
	})
}

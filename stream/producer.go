package stream

import (
	"context"
	"io"

	"github.com/hupe1980/dedupgo"
)

// SliceProducer serves an in-memory record slice in chunks of at most
// chunkSize records. Useful for tests and small datasets.
type SliceProducer struct {
	records   []dedupgo.Record
	chunkSize int
	offset    int
}

var _ dedupgo.ChunkProducer = (*SliceProducer)(nil)

// NewSliceProducer creates a producer over records. chunkSize values below
// one default to one.
func NewSliceProducer(records []dedupgo.Record, chunkSize int) *SliceProducer {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &SliceProducer{
		records:   records,
		chunkSize: chunkSize,
	}
}

// Next implements dedupgo.ChunkProducer.
func (p *SliceProducer) Next(ctx context.Context) ([]dedupgo.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.offset >= len(p.records) {
		return nil, io.EOF
	}

	end := p.offset + p.chunkSize
	if end > len(p.records) {
		end = len(p.records)
	}

	chunk := p.records[p.offset:end]
	p.offset = end
	return chunk, nil
}

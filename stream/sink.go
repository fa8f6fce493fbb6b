package stream

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hupe1980/dedupgo"
	"github.com/hupe1980/dedupgo/blobstore"
)

// SliceSink collects surviving records in memory. Useful for tests and
// for callers that want the deduplicated corpus as a single slice.
type SliceSink struct {
	records []dedupgo.Record
}

var _ dedupgo.OutputSink = (*SliceSink)(nil)

// NewSliceSink creates an empty in-memory sink.
func NewSliceSink() *SliceSink {
	return &SliceSink{}
}

// WriteChunk implements dedupgo.OutputSink.
func (s *SliceSink) WriteChunk(_ context.Context, _ int64, records []dedupgo.Record) error {
	s.records = append(s.records, records...)
	return nil
}

// Records returns all records written so far, in arrival order.
func (s *SliceSink) Records() []dedupgo.Record {
	return s.records
}

// BlobSink writes each surviving chunk as a JSONL blob named
// <prefix>chunk_%05d.jsonl, with an extra extension when compression is
// enabled. Chunk indexes are the 1-based positions assigned by the
// pipeline, so output names are stable across re-runs.
type BlobSink struct {
	store       blobstore.Store
	prefix      string
	compression Compression
}

var _ dedupgo.OutputSink = (*BlobSink)(nil)

// NewBlobSink creates a sink writing to store under prefix.
func NewBlobSink(store blobstore.Store, prefix string, compression Compression) *BlobSink {
	return &BlobSink{
		store:       store,
		prefix:      prefix,
		compression: compression,
	}
}

// WriteChunk implements dedupgo.OutputSink.
func (s *BlobSink) WriteChunk(ctx context.Context, index int64, records []dedupgo.Record) error {
	var buf bytes.Buffer

	wc, err := wrapWriter(&buf, s.compression)
	if err != nil {
		return err
	}

	if err := encodeJSONL(wc, records); err != nil {
		wc.Close()
		return err
	}

	if err := wc.Close(); err != nil {
		return err
	}

	return s.store.Put(ctx, s.chunkName(index), buf.Bytes())
}

func (s *BlobSink) chunkName(index int64) string {
	return fmt.Sprintf("%schunk_%05d.jsonl%s", s.prefix, index, s.compression.Ext())
}

package dedupgo

import "context"

// Deduplicator removes duplicate records from successive chunks of a
// record stream. Implementations carry persistent state across calls: a
// record kept from an earlier chunk suppresses its duplicates in all later
// chunks. Run must be called with chunks strictly in stream order, by a
// single goroutine; the state has no internal synchronization.
type Deduplicator interface {
	// Run filters one chunk and returns the records to keep, preserving
	// the relative input order. Records with empty text are skipped and
	// counted as malformed; they never abort the chunk.
	Run(chunk []Record) ([]Record, error)
}

// MalformedCounter is implemented by strategies that count records skipped
// for missing text. The pipeline reads it to attribute per-chunk skips.
type MalformedCounter interface {
	// Malformed returns the total number of records skipped so far.
	Malformed() int64
}

// ChunkProducer yields an ordered stream of record chunks, each bounded by
// the producer's chunk size. Next returns io.EOF after the final chunk.
// Any other error is fatal to the run and is propagated unchanged; the
// pipeline never retries a read.
type ChunkProducer interface {
	Next(ctx context.Context) ([]Record, error)
}

// OutputSink receives the kept records of each chunk, in chunk order, for
// persistence or publication. index is 1-based.
type OutputSink interface {
	WriteChunk(ctx context.Context, index int64, records []Record) error
}

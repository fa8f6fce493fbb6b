// Package dedupgo removes duplicate and near-duplicate text records from
// large streamed datasets.
//
// A run wires a deduplication strategy to an ordered chunk producer and
// drives it chunk by chunk, carrying persistent dedup state across the
// whole stream:
//
//	strategy := dedupgo.NewExactHash()
//	producer := stream.NewSliceProducer(records, 1000)
//
//	pipeline := dedupgo.New(strategy, producer,
//	    dedupgo.WithMaxChunks(100),
//	    dedupgo.WithLogLevel(slog.LevelInfo),
//	)
//	kept, err := pipeline.Run(ctx)
//
// # Strategies
//
// Three interchangeable strategies (plus a hybrid) implement Deduplicator:
//
//   - ExactHashDeduplicator: one record per exact fingerprint. No errors,
//     unbounded memory.
//   - BloomFilterDeduplicator: probabilistic membership in m bits. Fixed
//     memory, accepts false-positive drops at a configured rate.
//   - MinHashLSHDeduplicator: near-duplicate clustering via MinHash
//     signatures and banded locality-sensitive hashing.
//   - MinHashBloomDeduplicator: MinHash signatures digested into a Bloom
//     filter; constant-memory near-duplicate collapse.
//
// All strategies normalize text the same way (lowercase, whitespace
// collapse) and skip records with empty text, counting them as malformed.
//
// # Streaming
//
// Chunks are processed strictly one at a time, in source order, by a
// single goroutine. Dedup state is mutated in place by exactly one owner
// and has no internal synchronization; reordered or concurrent chunk
// processing would silently corrupt dedup decisions. State lives for one
// run and is never persisted across process restarts.
//
// The stream package provides chunk producers (in-memory slices, JSONL
// with transparent zstd/lz4 decompression, read-ahead prefetching) and
// publication sinks backed by the blobstore package (local directory,
// memory, S3, MinIO).
package dedupgo

package dedupgo

import (
	"sync/atomic"
	"time"
)

// DedupStats are the monotonically increasing counters of one run, owned
// and mutated only by the pipeline. Consumers receive snapshots.
type DedupStats struct {
	ExamplesSeen      int64
	DuplicatesRemoved int64
	ChunksProcessed   int64
	MalformedRecords  int64
}

// MetricsCollector defines an interface for observing a deduplication run.
// It is purely observational and never influences dedup decisions.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordChunk is called after each processed chunk. seen is the chunk
	// size, kept the number of records that survived, malformed the number
	// skipped for missing text, duration the strategy call time.
	RecordChunk(seen, kept, malformed int, duration time.Duration)

	// RecordProgress is called periodically by strategies that report
	// progress (count of records processed so far this run).
	RecordProgress(processed int64)

	// RecordRun is called once when a run finishes. stats is the final
	// counter snapshot, err is nil on success.
	RecordRun(stats DedupStats, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordChunk(int, int, int, time.Duration)   {}
func (NoopMetricsCollector) RecordProgress(int64)                       {}
func (NoopMetricsCollector) RecordRun(DedupStats, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ChunkCount        atomic.Int64
	ExamplesSeen      atomic.Int64
	RecordsKept       atomic.Int64
	DuplicatesRemoved atomic.Int64
	MalformedRecords  atomic.Int64
	ChunkTotalNanos   atomic.Int64
	ProgressEvents    atomic.Int64
	RunCount          atomic.Int64
	RunErrors         atomic.Int64
}

// RecordChunk implements MetricsCollector.
func (b *BasicMetricsCollector) RecordChunk(seen, kept, malformed int, duration time.Duration) {
	b.ChunkCount.Add(1)
	b.ExamplesSeen.Add(int64(seen))
	b.RecordsKept.Add(int64(kept))
	b.DuplicatesRemoved.Add(int64(seen - kept - malformed))
	b.MalformedRecords.Add(int64(malformed))
	b.ChunkTotalNanos.Add(duration.Nanoseconds())
}

// RecordProgress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProgress(int64) {
	b.ProgressEvents.Add(1)
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ DedupStats, _ time.Duration, err error) {
	b.RunCount.Add(1)
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ChunkCount:        b.ChunkCount.Load(),
		ExamplesSeen:      b.ExamplesSeen.Load(),
		RecordsKept:       b.RecordsKept.Load(),
		DuplicatesRemoved: b.DuplicatesRemoved.Load(),
		MalformedRecords:  b.MalformedRecords.Load(),
		ChunkAvgNanos:     b.getAvgChunkNanos(),
		ProgressEvents:    b.ProgressEvents.Load(),
		RunCount:          b.RunCount.Load(),
		RunErrors:         b.RunErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgChunkNanos() int64 {
	count := b.ChunkCount.Load()
	if count == 0 {
		return 0
	}
	return b.ChunkTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ChunkCount        int64
	ExamplesSeen      int64
	RecordsKept       int64
	DuplicatesRemoved int64
	MalformedRecords  int64
	ChunkAvgNanos     int64
	ProgressEvents    int64
	RunCount          int64
	RunErrors         int64
}

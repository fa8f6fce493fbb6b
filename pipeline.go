package dedupgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Pipeline drives one deduplication strategy over an ordered chunk stream.
// It pulls chunks from the producer strictly in order, invokes the strategy
// once per chunk while the strategy carries its persistent state forward,
// accumulates run statistics, and forwards kept records to the optional
// output sink.
//
// Chunks are processed one at a time with no overlap: every strategy's
// correctness depends on strictly sequential processing, because the
// persistent state (seen-set, bit array, bucket table) is chunk-order
// dependent. Cancellation is honored between chunks only; a chunk call
// always runs to completion.
type Pipeline struct {
	strategy Deduplicator
	producer ChunkProducer
	opts     options
	stats    DedupStats
}

// New creates a Pipeline for one run. A Pipeline instance is single-use:
// its statistics and the strategy's state accumulate over exactly one Run.
func New(strategy Deduplicator, producer ChunkProducer, optFns ...Option) *Pipeline {
	return &Pipeline{
		strategy: strategy,
		producer: producer,
		opts:     applyOptions(optFns),
	}
}

// Run processes chunks until the stream ends, the chunk limit is reached,
// or ctx is canceled. It returns the concatenation of all kept records in
// chunk order. Producer errors are fatal and propagate unchanged.
func (p *Pipeline) Run(ctx context.Context) ([]Record, error) {
	if p.strategy == nil {
		return nil, ErrNilStrategy
	}
	if p.producer == nil {
		return nil, ErrNilProducer
	}

	start := time.Now()
	kept, err := p.run(ctx)
	p.opts.collector.RecordRun(p.stats, time.Since(start), err)
	p.opts.logger.LogRun(ctx, p.stats, err)

	return kept, err
}

func (p *Pipeline) run(ctx context.Context) ([]Record, error) {
	var kept []Record

	for {
		if p.opts.maxChunks > 0 && p.stats.ChunksProcessed >= p.opts.maxChunks {
			return kept, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, err := p.producer.Next(ctx)
		if errors.Is(err, io.EOF) {
			return kept, nil
		}
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			continue
		}

		if err := p.waitRecords(ctx, len(chunk)); err != nil {
			return nil, err
		}

		malformedBefore := p.malformed()

		chunkStart := time.Now()
		keptChunk, err := p.strategy.Run(chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", p.stats.ChunksProcessed+1, err)
		}
		chunkDuration := time.Since(chunkStart)

		malformed := int(p.malformed() - malformedBefore)

		p.stats.ChunksProcessed++
		p.stats.ExamplesSeen += int64(len(chunk))
		p.stats.MalformedRecords += int64(malformed)
		p.stats.DuplicatesRemoved += int64(len(chunk) - len(keptChunk) - malformed)

		p.opts.collector.RecordChunk(len(chunk), len(keptChunk), malformed, chunkDuration)
		p.opts.logger.LogChunk(ctx, p.stats.ChunksProcessed, len(chunk), len(keptChunk), malformed)

		if p.opts.sink != nil {
			if err := p.opts.sink.WriteChunk(ctx, p.stats.ChunksProcessed, keptChunk); err != nil {
				return nil, fmt.Errorf("sink chunk %d: %w", p.stats.ChunksProcessed, err)
			}
		}

		kept = append(kept, keptChunk...)
	}
}

// Stats returns a snapshot of the run counters.
func (p *Pipeline) Stats() DedupStats {
	return p.stats
}

func (p *Pipeline) malformed() int64 {
	if mc, ok := p.strategy.(MalformedCounter); ok {
		return mc.Malformed()
	}
	return 0
}

// waitRecords throttles n records through the configured limiter, in
// burst-sized slices so large chunks never exceed the limiter burst.
func (p *Pipeline) waitRecords(ctx context.Context, n int) error {
	if p.opts.limiter == nil {
		return nil
	}

	burst := p.opts.limiter.Burst()
	for n > 0 {
		step := n
		if step > burst {
			step = burst
		}
		if err := p.opts.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}

	return nil
}

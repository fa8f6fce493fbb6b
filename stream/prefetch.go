package stream

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dedupgo"
)

type prefetchResult struct {
	chunk []dedupgo.Record
	err   error
}

// Prefetcher wraps a ChunkProducer and reads ahead in a background
// goroutine so IO and decompression overlap with deduplication work.
// Chunks are delivered strictly in source order; deduplication itself
// stays sequential.
type Prefetcher struct {
	results chan prefetchResult
	cancel  context.CancelFunc
	group   *errgroup.Group
	done    bool
}

var _ dedupgo.ChunkProducer = (*Prefetcher)(nil)

// NewPrefetcher starts reading ahead from src, buffering up to depth
// chunks.
func NewPrefetcher(ctx context.Context, src dedupgo.ChunkProducer, depth int) *Prefetcher {
	if depth < 1 {
		depth = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)

	p := &Prefetcher{
		results: make(chan prefetchResult, depth),
		cancel:  cancel,
		group:   group,
	}

	group.Go(func() error {
		defer close(p.results)

		for {
			chunk, err := src.Next(ctx)

			select {
			case p.results <- prefetchResult{chunk: chunk, err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}

			if err != nil {
				return nil
			}
		}
	})

	return p
}

// Next implements dedupgo.ChunkProducer. It returns buffered chunks in
// order and forwards the source's terminal error unchanged.
func (p *Prefetcher) Next(ctx context.Context) ([]dedupgo.Record, error) {
	if p.done {
		return nil, io.EOF
	}

	select {
	case res, ok := <-p.results:
		if !ok {
			p.done = true
			return nil, io.EOF
		}
		if res.err != nil {
			p.done = true
			return nil, res.err
		}
		return res.chunk, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the background reader and waits for it to exit.
func (p *Prefetcher) Close() error {
	p.cancel()
	_ = p.group.Wait()
	return nil
}

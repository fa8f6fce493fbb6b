package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dedupgo"
	"github.com/hupe1980/dedupgo/blobstore"
	miniostore "github.com/hupe1980/dedupgo/blobstore/minio"
	s3store "github.com/hupe1980/dedupgo/blobstore/s3"
	"github.com/hupe1980/dedupgo/stream"
)

var runConfigFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Deduplicate a JSONL record stream",
	Long: `Run reads line-delimited JSON records ({"id": ..., "text": ..., "metadata": ...})
from --input (or stdin), removes duplicates with the configured method, and
writes surviving records as chunked JSONL to --output (a local directory,
an s3://bucket/prefix URL, or minio://endpoint/bucket/prefix). Every
setting can also come from the matching
environment variable (METHOD, CHUNK_SIZE, MINHASH_THRESHOLD, ...) or a
--config YAML file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd.Flags(), runConfigFile)
		if err != nil {
			return err
		}
		return runDedup(cmd.Context(), cfg)
	},
}

func init() {
	flags := runCmd.Flags()

	flags.String("method", "exact", "deduplication method: "+strings.Join(methodNames(), ", "))
	flags.String("input", "", "input JSONL path (.jsonl, .jsonl.zst, .jsonl.lz4); empty reads stdin")
	flags.String("output", "", "output location: local directory, s3://bucket/prefix, or minio://endpoint/bucket/prefix; empty discards")
	flags.Int("chunk-size", 1000, "records per chunk")
	flags.Int64("max-chunks", 0, "stop after this many chunks (0 = unlimited)")
	flags.String("compression", "", "output compression: zstd, lz4, or empty for none")
	flags.Int("prefetch", 1, "chunks to read ahead while deduplicating")

	flags.Int("bloom-capacity", 1_000_000, "expected unique records for bloom sizing")
	flags.Float64("bloom-error-rate", 0.001, "target bloom false-positive rate in (0, 1)")

	flags.Int("minhash-num-hashes", 128, "minhash signature length")
	flags.Float64("minhash-threshold", 0.8, "jaccard similarity threshold in (0, 1)")
	flags.Int("minhash-bands", 0, "explicit LSH band count (0 derives from threshold)")
	flags.Int64("minhash-seed", 1, "seed for the minhash hash family")
	flags.Int("minhash-debug-interval", 1000, "records between progress events (0 disables)")
	flags.Int("shingle-size", 3, "word n-gram width for shingling")

	flags.String("report", "", "write a YAML run report to this path")
	flags.String("bloom-state-out", "", "dump the bloom filter bit array to this path after the run")
	flags.Bool("verbose", false, "enable debug logging")
	flags.Bool("no-progress", false, "disable the progress bar")

	flags.StringVar(&runConfigFile, "config", "", "YAML config file")

	rootCmd.AddCommand(runCmd)
}

func runDedup(ctx context.Context, cfg runConfig) error {
	logger := newRunLogger(cfg)

	collector := newRunCollector(cfg)
	defer collector.Finish()

	strategy, err := newStrategy(cfg, collector)
	if err != nil {
		return err
	}

	producer, err := newProducer(ctx, cfg)
	if err != nil {
		return err
	}
	defer producer.Close()

	sink, err := newSink(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []dedupgo.Option{
		dedupgo.WithLogger(logger),
		dedupgo.WithMetricsCollector(collector),
		dedupgo.WithMaxChunks(cfg.MaxChunks),
	}
	if sink != nil {
		opts = append(opts, dedupgo.WithOutputSink(sink))
	}

	pipeline := dedupgo.New(strategy, producer, opts...)

	_, runErr := pipeline.Run(ctx)
	collector.Finish()

	stats := pipeline.Stats()
	printSummary(cfg, stats, runErr)

	if cfg.Report != "" {
		if err := writeReport(cfg, stats, collector, runErr); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if cfg.BloomStateOut != "" {
		if err := dumpBloomState(strategy, cfg.BloomStateOut); err != nil {
			return fmt.Errorf("dump bloom state: %w", err)
		}
	}

	return runErr
}

// newProducer builds the chunk source: a JSONL file (decompressed by
// extension), or stdin when no input is configured. A prefetch depth
// above zero wraps the source so the next chunk is read while the
// current one deduplicates.
func newProducer(ctx context.Context, cfg runConfig) (producerCloser, error) {
	var (
		producer *stream.JSONLProducer
		err      error
	)

	if cfg.Input == "" {
		producer = stream.NewJSONLProducer(os.Stdin, cfg.ChunkSize)
	} else {
		producer, err = stream.OpenJSONL(cfg.Input, cfg.ChunkSize)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Prefetch > 0 {
		return &prefetchingProducer{
			Prefetcher: stream.NewPrefetcher(ctx, producer, cfg.Prefetch),
			source:     producer,
		}, nil
	}

	return producer, nil
}

type producerCloser interface {
	dedupgo.ChunkProducer
	Close() error
}

type prefetchingProducer struct {
	*stream.Prefetcher
	source *stream.JSONLProducer
}

func (p *prefetchingProducer) Close() error {
	_ = p.Prefetcher.Close()
	return p.source.Close()
}

// newSink builds the output sink: nil (discard), a blob sink for
// s3://bucket/prefix or minio://endpoint/bucket/prefix URLs, or a
// local-directory blob sink for everything else.
func newSink(ctx context.Context, cfg runConfig) (dedupgo.OutputSink, error) {
	if cfg.Output == "" {
		return nil, nil
	}

	store, err := newOutputStore(ctx, cfg.Output)
	if err != nil {
		return nil, err
	}

	return stream.NewBlobSink(store, "", stream.Compression(cfg.Compression)), nil
}

func newOutputStore(ctx context.Context, output string) (blobstore.Store, error) {
	if bucket, prefix, ok := splitBlobURL(output, "s3://"); ok {
		return s3store.New(ctx, bucket, prefix)
	}

	if endpoint, rest, ok := splitBlobURL(output, "minio://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("minio output needs endpoint and bucket: %q", output)
		}
		return miniostore.New(endpoint, bucket, prefix, true)
	}

	return blobstore.NewLocalStore(output)
}

// splitBlobURL splits "<scheme>first/rest" into its first segment and
// remainder.
func splitBlobURL(raw, scheme string) (first, rest string, ok bool) {
	trimmed, found := strings.CutPrefix(raw, scheme)
	if !found || trimmed == "" {
		return "", "", false
	}

	first, rest, _ = strings.Cut(trimmed, "/")
	return first, rest, first != ""
}

// dumpBloomState writes the strategy's filter framing for offline
// inspection, for the methods that carry one.
func dumpBloomState(strategy dedupgo.Deduplicator, path string) error {
	bf, ok := strategy.(*dedupgo.BloomFilterDeduplicator)
	if !ok {
		return fmt.Errorf("method does not expose bloom state")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := bf.WriteState(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func newRunLogger(cfg runConfig) *dedupgo.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return dedupgo.NewTextLogger(level)
}

func printSummary(cfg runConfig, stats dedupgo.DedupStats, runErr error) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Println()
	fmt.Println(bold("Deduplication summary"))
	fmt.Printf("  Method:             %s\n", cfg.Method)
	fmt.Printf("  Chunks processed:   %d\n", stats.ChunksProcessed)
	fmt.Printf("  Records seen:       %d\n", stats.ExamplesSeen)
	fmt.Printf("  Duplicates removed: %s\n", green(stats.DuplicatesRemoved))
	fmt.Printf("  Malformed skipped:  %d\n", stats.MalformedRecords)

	if runErr != nil {
		fmt.Printf("  Status:             %s\n", red(runErr.Error()))
	} else {
		fmt.Printf("  Status:             %s\n", green("ok"))
	}
}

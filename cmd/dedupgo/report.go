package main

import (
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/dedupgo"
)

// runCollector renders a live progress bar and records per-chunk rows for
// the optional YAML report.
type runCollector struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	chunks   []chunkRow
	duration time.Duration
	finished bool
}

var _ dedupgo.MetricsCollector = (*runCollector)(nil)

type chunkRow struct {
	Chunk      int           `yaml:"chunk"`
	Seen       int           `yaml:"seen"`
	Kept       int           `yaml:"kept"`
	Removed    int           `yaml:"removed"`
	Malformed  int           `yaml:"malformed"`
	DurationMS time.Duration `yaml:"duration_ms"`
}

func newRunCollector(cfg runConfig) *runCollector {
	c := &runCollector{}

	if !cfg.NoProgress {
		c.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("deduplicating"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("records"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSpinnerType(14),
		)
	}

	return c
}

// RecordChunk implements dedupgo.MetricsCollector.
func (c *runCollector) RecordChunk(seen, kept, malformed int, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.chunks = append(c.chunks, chunkRow{
		Chunk:      len(c.chunks) + 1,
		Seen:       seen,
		Kept:       kept,
		Removed:    seen - kept - malformed,
		Malformed:  malformed,
		DurationMS: d / time.Millisecond,
	})

	if c.bar != nil {
		_ = c.bar.Add(seen)
	}
}

// RecordProgress implements dedupgo.MetricsCollector. Chunk-level
// progress already drives the bar, so per-record events are ignored.
func (c *runCollector) RecordProgress(_ int64) {}

// RecordRun implements dedupgo.MetricsCollector.
func (c *runCollector) RecordRun(_ dedupgo.DedupStats, d time.Duration, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.duration = d
}

// Finish closes the progress bar. Safe to call more than once.
func (c *runCollector) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finished {
		return
	}
	c.finished = true

	if c.bar != nil {
		_ = c.bar.Finish()
	}
}

type runReport struct {
	Method     string        `yaml:"method"`
	Input      string        `yaml:"input,omitempty"`
	Output     string        `yaml:"output,omitempty"`
	Stats      reportStats   `yaml:"stats"`
	DurationMS time.Duration `yaml:"duration_ms"`
	Error      string        `yaml:"error,omitempty"`
	Chunks     []chunkRow    `yaml:"chunks"`
}

type reportStats struct {
	ExamplesSeen      int64 `yaml:"examples_seen"`
	DuplicatesRemoved int64 `yaml:"duplicates_removed"`
	ChunksProcessed   int64 `yaml:"chunks_processed"`
	MalformedRecords  int64 `yaml:"malformed_records"`
}

// writeReport emits the run summary plus per-chunk rows as YAML.
func writeReport(cfg runConfig, stats dedupgo.DedupStats, collector *runCollector, runErr error) error {
	collector.mu.Lock()
	chunks := make([]chunkRow, len(collector.chunks))
	copy(chunks, collector.chunks)
	duration := collector.duration
	collector.mu.Unlock()

	report := runReport{
		Method: cfg.Method,
		Input:  cfg.Input,
		Output: cfg.Output,
		Stats: reportStats{
			ExamplesSeen:      stats.ExamplesSeen,
			DuplicatesRemoved: stats.DuplicatesRemoved,
			ChunksProcessed:   stats.ChunksProcessed,
			MalformedRecords:  stats.MalformedRecords,
		},
		DurationMS: duration / time.Millisecond,
		Chunks:     chunks,
	}
	if runErr != nil {
		report.Error = runErr.Error()
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return err
	}

	return os.WriteFile(cfg.Report, data, 0o644)
}

// Command dedupgo removes exact and near-duplicate text records from a
// JSONL stream and writes the surviving records as chunked JSONL output.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dedupgo",
	Short: "Streaming text deduplication",
	Long: `dedupgo streams line-delimited JSON records through a deduplication
strategy (exact hashing, a Bloom filter, MinHash/LSH near-duplicate
detection, or a MinHash+Bloom hybrid) and writes the kept records back
as chunked JSONL, optionally zstd- or lz4-compressed.`,
	SilenceUsage: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"sort"

	"github.com/hupe1980/dedupgo"
)

// strategyBuilders maps method names to strategy constructors. Unknown
// names fail before any record is read.
var strategyBuilders = map[string]func(cfg runConfig, collector dedupgo.MetricsCollector) (dedupgo.Deduplicator, error){
	"exact": func(_ runConfig, _ dedupgo.MetricsCollector) (dedupgo.Deduplicator, error) {
		return dedupgo.NewExactHash(), nil
	},
	"bloom": func(cfg runConfig, _ dedupgo.MetricsCollector) (dedupgo.Deduplicator, error) {
		return dedupgo.NewBloomFilter(cfg.BloomCapacity, cfg.BloomErrorRate)
	},
	"minhash": func(cfg runConfig, collector dedupgo.MetricsCollector) (dedupgo.Deduplicator, error) {
		return dedupgo.NewMinHashLSH(cfg.MinHashNumHashes, cfg.MinHashThreshold, func(o *dedupgo.MinHashLSHOptions) {
			o.ShingleSize = cfg.ShingleSize
			o.Bands = cfg.MinHashBands
			o.Seed = cfg.MinHashSeed
			o.ProgressInterval = cfg.MinHashDebugInterval
			o.Collector = collector
		})
	},
	"minhash-bloom": func(cfg runConfig, _ dedupgo.MetricsCollector) (dedupgo.Deduplicator, error) {
		return dedupgo.NewMinHashBloom(cfg.BloomCapacity, cfg.BloomErrorRate, func(o *dedupgo.MinHashBloomOptions) {
			o.NumHashes = cfg.MinHashNumHashes
			o.ShingleSize = cfg.ShingleSize
			o.Seed = cfg.MinHashSeed
		})
	},
}

// newStrategy resolves a method name to a configured strategy.
func newStrategy(cfg runConfig, collector dedupgo.MetricsCollector) (dedupgo.Deduplicator, error) {
	build, ok := strategyBuilders[cfg.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", dedupgo.ErrUnknownMethod, cfg.Method, methodNames())
	}
	return build(cfg, collector)
}

func methodNames() []string {
	names := make([]string, 0, len(strategyBuilders))
	for name := range strategyBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

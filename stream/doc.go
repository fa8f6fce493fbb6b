// Package stream provides chunk producers and output sinks for
// deduplication runs.
//
// Producers implement dedupgo.ChunkProducer: SliceProducer serves
// in-memory records, JSONLProducer reads line-delimited JSON records from
// any reader or blob with transparent zstd/lz4 decompression, and
// Prefetcher overlaps producer I/O with strategy execution. Prefetching
// happens at the stream boundary only; chunks are still delivered and
// processed strictly in order.
//
// Sinks implement dedupgo.OutputSink: SliceSink collects records in
// memory, BlobSink publishes each chunk as a JSONL object to a
// blobstore.Store.
package stream

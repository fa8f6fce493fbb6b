package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/dedupgo"
	"github.com/hupe1980/dedupgo/blobstore"
)

// maxLineBytes bounds a single JSONL line. Records beyond this are a
// stream error, not something to silently truncate.
const maxLineBytes = 16 << 20

// JSONLProducer reads line-delimited JSON records and serves them in
// chunks of at most chunkSize records. Lines that are not valid JSON are
// a stream error and abort the run; records that parse but carry no text
// flow through to the strategies, which count them as malformed.
type JSONLProducer struct {
	scanner   *bufio.Scanner
	closers   []io.Closer
	chunkSize int
	line      int64
	done      bool
}

var _ dedupgo.ChunkProducer = (*JSONLProducer)(nil)

// NewJSONLProducer creates a producer reading plain JSONL from r.
func NewJSONLProducer(r io.Reader, chunkSize int) *JSONLProducer {
	if chunkSize < 1 {
		chunkSize = 1
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	return &JSONLProducer{
		scanner:   scanner,
		chunkSize: chunkSize,
	}
}

// OpenJSONL creates a producer reading from a local file, transparently
// decompressing by extension (.zst, .lz4).
func OpenJSONL(path string, chunkSize int) (*JSONLProducer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rc, err := wrapReader(f, CompressionForName(path))
	if err != nil {
		f.Close()
		return nil, err
	}

	p := NewJSONLProducer(rc, chunkSize)
	p.closers = append(p.closers, rc, f)
	return p, nil
}

// OpenBlobJSONL creates a producer reading a blob from a store,
// transparently decompressing by extension.
func OpenBlobJSONL(ctx context.Context, store blobstore.Store, name string, chunkSize int) (*JSONLProducer, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	rc, err := wrapReader(blob, CompressionForName(name))
	if err != nil {
		blob.Close()
		return nil, err
	}

	p := NewJSONLProducer(rc, chunkSize)
	p.closers = append(p.closers, rc, blob)
	return p, nil
}

// Next implements dedupgo.ChunkProducer.
func (p *JSONLProducer) Next(ctx context.Context) ([]dedupgo.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.done {
		return nil, io.EOF
	}

	chunk := make([]dedupgo.Record, 0, p.chunkSize)
	for len(chunk) < p.chunkSize {
		if !p.scanner.Scan() {
			p.done = true
			if err := p.scanner.Err(); err != nil {
				return nil, err
			}
			break
		}
		p.line++

		data := p.scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var rec dedupgo.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			p.done = true
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}

		chunk = append(chunk, rec)
	}

	if len(chunk) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

// Close releases the underlying reader(s).
func (p *JSONLProducer) Close() error {
	var firstErr error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}

// encodeJSONL writes records as line-delimited JSON to w.
func encodeJSONL(w io.Writer, records []dedupgo.Record) error {
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

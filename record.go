package dedupgo

// Record is a single dataset item: text plus an opaque identifier and
// free-form metadata. Records are pure data and are treated as immutable
// once produced; ownership passes from the producer to the strategy
// processing the current chunk and then to the output sink.
type Record struct {
	ID       string         `json:"id,omitempty"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

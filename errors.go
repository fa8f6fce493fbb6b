package dedupgo

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMethod is returned when a deduplication method name does
	// not resolve to a registered strategy.
	ErrUnknownMethod = errors.New("unknown deduplication method")

	// ErrNilStrategy is returned when a pipeline is run without a strategy.
	ErrNilStrategy = errors.New("strategy must not be nil")

	// ErrNilProducer is returned when a pipeline is run without a producer.
	ErrNilProducer = errors.New("producer must not be nil")
)

// ErrInvalidBloomParams indicates Bloom filter sizing parameters that fail
// validation: a non-positive expected item count or a target false-positive
// rate outside (0, 1).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidBloomParams struct {
	ExpectedItems int
	Rate          float64
	cause         error
}

func (e *ErrInvalidBloomParams) Error() string {
	return fmt.Sprintf("invalid bloom parameters: expected items %d, false-positive rate %g", e.ExpectedItems, e.Rate)
}

func (e *ErrInvalidBloomParams) Unwrap() error { return e.cause }

// ErrInvalidThreshold indicates a similarity threshold outside (0, 1).
type ErrInvalidThreshold struct {
	Threshold float64
}

func (e *ErrInvalidThreshold) Error() string {
	return fmt.Sprintf("invalid similarity threshold: %g (must be in (0, 1))", e.Threshold)
}

// ErrInvalidBandPlan indicates a MinHash signature length that cannot be
// split into the configured band count.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidBandPlan struct {
	NumHashes int
	Bands     int
	cause     error
}

func (e *ErrInvalidBandPlan) Error() string {
	return fmt.Sprintf("invalid band plan: %d hashes into %d bands", e.NumHashes, e.Bands)
}

func (e *ErrInvalidBandPlan) Unwrap() error { return e.cause }

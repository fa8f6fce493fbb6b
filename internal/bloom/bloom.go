// Package bloom implements the fixed-size probabilistic membership filter
// behind the Bloom deduplication strategy.
//
// A Bloom filter can say definitively that a fingerprint has NOT been seen,
// but may report a false positive when saying it HAS. For deduplication the
// trade-off inverts the usual framing: a false positive means a unique
// record is wrongly dropped. The filter is sized from a target
// false-positive rate and an expected item count; the true rate converges
// to the target as insertions approach the expected count and exceeds it
// beyond that.
package bloom

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/bits"

	"github.com/hupe1980/dedupgo/internal/fingerprint"
)

var (
	// ErrInvalidCapacity indicates a non-positive expected item count.
	ErrInvalidCapacity = errors.New("bloom: expected item count must be positive")

	// ErrInvalidRate indicates a false-positive rate outside (0, 1).
	ErrInvalidRate = errors.New("bloom: false-positive rate must be in (0, 1)")

	// ErrCorruptedFilter indicates serialized filter data is invalid.
	ErrCorruptedFilter = errors.New("bloom: corrupted filter data")
)

// maxHashes caps the probe count to keep insertion cost bounded.
const maxHashes = 16

// Size computes the optimal bit-array size and probe count for the given
// parameters using the standard sizing formulas:
//
//	m = -n*ln(p) / ln(2)^2
//	k = (m/n) * ln(2)
//
// numBits is rounded up to a multiple of 64 for word alignment.
func Size(expectedItems int, fpRate float64) (numBits uint64, k uint32, err error) {
	if expectedItems <= 0 {
		return 0, 0, ErrInvalidCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		return 0, 0, ErrInvalidRate
	}

	ln2Sq := math.Ln2 * math.Ln2
	m := float64(-expectedItems) * math.Log(fpRate) / ln2Sq
	kFloat := (m / float64(expectedItems)) * math.Ln2

	numBits = ((uint64(m) + 63) / 64) * 64
	if numBits < 64 {
		numBits = 64
	}

	k = uint32(math.Ceil(kFloat))
	if k < 1 {
		k = 1
	}
	if k > maxHashes {
		k = maxHashes
	}

	return numBits, k, nil
}

// Filter is a fixed-size Bloom filter over 64-bit fingerprints.
// Bits only ever transition 0 to 1; the filter is never reset during a run.
// Not safe for concurrent use: each run has exactly one logical owner.
type Filter struct {
	bits    []uint64
	numBits uint64
	k       uint32
	count   uint64
}

// New creates a Filter sized for expectedItems at the target
// false-positive rate. It fails on invalid sizing parameters.
func New(expectedItems int, fpRate float64) (*Filter, error) {
	numBits, k, err := Size(expectedItems, fpRate)
	if err != nil {
		return nil, err
	}

	return &Filter{
		bits:    make([]uint64, numBits/64),
		numBits: numBits,
		k:       k,
	}, nil
}

// probes derives the k probe bases from a fingerprint via double hashing:
// position(i) = (h1 + i*h2) mod numBits. The second base is a mixed copy of
// the fingerprint, forced odd so successive probes hit distinct positions.
func (f *Filter) probes(fp uint64) (h1, h2 uint64) {
	return fp, fingerprint.Mix64(fp) | 1
}

// Add inserts a fingerprint. After Add(fp), Contains(fp) always returns true.
func (f *Filter) Add(fp uint64) {
	h1, h2 := f.probes(fp)
	for i := uint32(0); i < f.k; i++ {
		bit := (h1 + uint64(i)*h2) % f.numBits
		f.bits[bit/64] |= 1 << (bit % 64)
	}
	f.count++
}

// Contains reports whether fp might have been added. False means
// definitely not present; true means present or a false positive.
func (f *Filter) Contains(fp uint64) bool {
	h1, h2 := f.probes(fp)
	for i := uint32(0); i < f.k; i++ {
		bit := (h1 + uint64(i)*h2) % f.numBits
		if f.bits[bit/64]&(1<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}

// TestAndAdd reports whether fp was possibly present and then inserts it.
// This is the single-pass primitive the dedup strategy uses per record.
func (f *Filter) TestAndAdd(fp uint64) bool {
	h1, h2 := f.probes(fp)
	present := true
	for i := uint32(0); i < f.k; i++ {
		bit := (h1 + uint64(i)*h2) % f.numBits
		word, mask := bit/64, uint64(1)<<(bit%64)
		if f.bits[word]&mask == 0 {
			present = false
			f.bits[word] |= mask
		}
	}
	if !present {
		f.count++
	}
	return present
}

// Count returns the number of fingerprints inserted.
func (f *Filter) Count() uint64 {
	return f.count
}

// NumBits returns the size of the bit array.
func (f *Filter) NumBits() uint64 {
	return f.numBits
}

// NumHashes returns the probe count k.
func (f *Filter) NumHashes() uint32 {
	return f.k
}

// SizeBytes returns the memory size of the bit array in bytes.
func (f *Filter) SizeBytes() int {
	return len(f.bits) * 8
}

// FillRatio returns the fraction of bits set.
func (f *Filter) FillRatio() float64 {
	var set int
	for _, word := range f.bits {
		set += bits.OnesCount64(word)
	}
	return float64(set) / float64(f.numBits)
}

// EstimatedFalsePositiveRate returns the estimated false-positive rate
// based on the current insertion count: (1 - e^(-k*n/m))^k.
func (f *Filter) EstimatedFalsePositiveRate() float64 {
	if f.count == 0 {
		return 0
	}
	kn := float64(f.k) * float64(f.count)
	m := float64(f.numBits)
	return math.Pow(1-math.Exp(-kn/m), float64(f.k))
}

// WriteTo serializes the filter: a 20-byte header (numBits, k, count)
// followed by the bit words, all little-endian.
func (f *Filter) WriteTo(w io.Writer) (int64, error) {
	var written int64

	header := make([]byte, 20)
	binary.LittleEndian.PutUint64(header[0:8], f.numBits)
	binary.LittleEndian.PutUint32(header[8:12], f.k)
	binary.LittleEndian.PutUint64(header[12:20], f.count)

	n, err := w.Write(header)
	written += int64(n)
	if err != nil {
		return written, err
	}

	buf := make([]byte, 8)
	for _, word := range f.bits {
		binary.LittleEndian.PutUint64(buf, word)
		n, err := w.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// ReadFrom deserializes a filter written by WriteTo.
func ReadFrom(r io.Reader) (*Filter, error) {
	header := make([]byte, 20)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	numBits := binary.LittleEndian.Uint64(header[0:8])
	k := binary.LittleEndian.Uint32(header[8:12])
	count := binary.LittleEndian.Uint64(header[12:20])

	if numBits < 64 || numBits%64 != 0 {
		return nil, ErrCorruptedFilter
	}
	if k < 1 || k > maxHashes {
		return nil, ErrCorruptedFilter
	}

	bits := make([]uint64, numBits/64)
	buf := make([]byte, 8)
	for i := range bits {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		bits[i] = binary.LittleEndian.Uint64(buf)
	}

	return &Filter{
		bits:    bits,
		numBits: numBits,
		k:       k,
		count:   count,
	}, nil
}

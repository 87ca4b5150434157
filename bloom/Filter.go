/*
File Name:  Filter.go
Copyright:  2024 Hearthmesh Contributors

Rotating (double-buffered) Bloom filter over 16-byte packet fingerprints
(§4.2). Grounded on the teacher's single-mutex-guarded shared state pattern
(Filter.go / peer-list concurrency style) generalized to a self-contained
type instead of package-level globals.
*/

package bloom

import (
	"math"
	"sync"
)

// DefaultMaxBytes and DefaultTargetFPR are the configuration defaults (§4.2, §6).
const (
	DefaultMaxBytes   = 256
	DefaultTargetFPR  = 0.01
	fnv1Offset  uint64 = 0xcbf29ce484222325
	fnv1Prime   uint64 = 0x100000001b3
	fnv2Offset  uint64 = 0x84222325cbf29ce4
	fnv2Prime   uint64 = 0x00000001b3100000
)

// Snapshot is the value-typed, wire-safe export of the active filter (§4.2).
type Snapshot struct {
	MBytes uint16
	K      uint8
	Bits   []byte
}

// Filter is a rotating Bloom filter. All operations are total (no error
// return) and guarded by a single mutex (§4.2 "Failure model"/"Concurrency").
type Filter struct {
	mu sync.Mutex

	maxBytes int
	fpr      float64
	mBits    int
	capacity int // n
	k        int

	active  *bitset
	standby *bitset // nil unless in double-write mode
	count   int     // insertions since the last rotation
}

// New creates a rotating Bloom filter with the given size budget and target
// false-positive rate.
func New(maxBytes int, fpr float64) *Filter {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if fpr <= 0 || fpr >= 1 {
		fpr = DefaultTargetFPR
	}

	mBits := maxBytes * 8
	capacity := int(math.Floor(-float64(mBits) * math.Ln2 * math.Ln2 / math.Log(fpr)))
	if capacity < 1 {
		capacity = 1
	}
	k := int(math.Ceil((float64(mBits) / float64(capacity)) * math.Ln2))
	if k < 1 {
		k = 1
	}

	return &Filter{
		maxBytes: maxBytes,
		fpr:      fpr,
		mBits:    mBits,
		capacity: capacity,
		k:        k,
		active:   newBitset(mBits),
	}
}

// Add inserts a fingerprint, rotating active/standby filters as needed (§4.2
// "Rotation").
func (f *Filter) Add(id [16]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	h1, h2 := doubleHash(id)
	f.active.set(f.bitIndexes(h1, h2))
	if f.standby != nil {
		f.standby.set(f.bitIndexes(h1, h2))
	}

	f.count++

	if f.standby == nil && f.count >= f.capacity/2 {
		f.standby = newBitset(f.mBits)
	}

	if f.count >= f.capacity {
		f.active = f.standby
		f.standby = newBitset(f.mBits)
		f.count = 0
	}
}

// MightContain reports approximate membership (§4.2 "mightContain").
func (f *Filter) MightContain(id [16]byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	h1, h2 := doubleHash(id)
	idx := f.bitIndexes(h1, h2)

	if !f.active.testAll(idx) {
		return false
	}
	if f.standby != nil {
		return f.standby.testAll(idx)
	}
	return true
}

// Snapshot returns a value-typed copy of the active filter's parameters and
// bits, safe to ship over the wire (§4.2 "Snapshot").
func (f *Filter) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Snapshot{
		MBytes: uint16(f.maxBytes),
		K:      uint8(f.k),
		Bits:   f.active.clone(),
	}
}

// Capacity and K expose the derived parameters, mostly useful for tests.
func (f *Filter) Capacity() int { return f.capacity }
func (f *Filter) K() int        { return f.k }

func (f *Filter) bitIndexes(h1, h2 uint64) []int {
	idx := make([]int, f.k)
	for i := 0; i < f.k; i++ {
		combined := (h1 + uint64(i)*h2) & 0x7fffffffffffffff
		idx[i] = int(combined % uint64(f.mBits))
	}
	return idx
}

// doubleHash computes h1, h2 via two FNV-1a-like 64-bit folds with distinct
// initial/multiplier constants (§4.2 "Hashing").
func doubleHash(id [16]byte) (h1, h2 uint64) {
	h1 = fnv1Offset
	for _, b := range id {
		h1 ^= uint64(b)
		h1 *= fnv1Prime
	}

	h2 = fnv2Offset
	for _, b := range id {
		h2 ^= uint64(b)
		h2 *= fnv2Prime
	}
	if h2 == 0 {
		h2 = 1 // avoid degenerate double-hashing when h2 folds to zero
	}

	return h1, h2
}

// MembershipFromSnapshot reconstructs the membership predicate described by
// a received snapshot, using the same hash derivation as Filter (§4.3
// "Serving REQUEST_SYNC" step 1).
func MembershipFromSnapshot(s Snapshot) func(id [16]byte) bool {
	mBits := int(s.MBytes) * 8
	k := int(s.K)
	bits := s.Bits

	return func(id [16]byte) bool {
		h1, h2 := doubleHash(id)
		for i := 0; i < k; i++ {
			combined := (h1 + uint64(i)*h2) & 0x7fffffffffffffff
			bitIdx := int(combined % uint64(mBits))
			if !testBit(bits, bitIdx) {
				return false
			}
		}
		return true
	}
}

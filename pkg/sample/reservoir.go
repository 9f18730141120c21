// Package sample bounds the working set of a run with reservoir sampling:
// a uniform fixed-size subset of a stream of unknown length, chosen in one
// pass without regard to record content.
package sample

import (
	"math/rand"
	"time"
)

// Reservoir accumulates at most bound records from a stream. When the
// stream is longer than the bound, every record has the same probability
// of ending up in the final sample.
type Reservoir struct {
	bound   int
	seen    int
	records []string
	rng     *rand.Rand
}

// NewReservoir returns a reservoir holding at most bound records.
// A bound of zero or less yields an always-empty sample.
func NewReservoir(bound int) *Reservoir {
	return NewReservoirWithSeed(bound, time.Now().UnixNano())
}

// NewReservoirWithSeed is NewReservoir with a fixed RNG seed, for
// reproducible runs and tests.
func NewReservoirWithSeed(bound int, seed int64) *Reservoir {
	capacity := bound
	if capacity < 0 {
		capacity = 0
	}
	return &Reservoir{
		bound:   bound,
		records: make([]string, 0, min(capacity, 4096)),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Add offers one record to the reservoir.
func (r *Reservoir) Add(record string) {
	r.seen++
	if r.bound <= 0 {
		return
	}
	if len(r.records) < r.bound {
		r.records = append(r.records, record)
		return
	}
	// Algorithm R: replace a random slot with probability bound/seen.
	if j := r.rng.Intn(r.seen); j < r.bound {
		r.records[j] = record
	}
}

// Records returns the sampled subset. Its length is min(bound, seen).
// Ordering is not meaningful.
func (r *Reservoir) Records() []string {
	return r.records
}

// Seen reports how many records were offered to the reservoir.
func (r *Reservoir) Seen() int {
	return r.seen
}

// Package aggregate counts events per (location, subject) composite key.
//
// Two strategies produce the same mapping by different routes. PerKeyCounter
// counts inside each partition and merges small per-key maps — the volume
// moved between workers is bounded by distinct keys. GroupedAggregator
// shuffles every subject value to the worker owning its location before any
// counting happens, so one hot location concentrates all of its subjects in
// one worker's memory. The second strategy exists to make that cost
// measurable, not to be used.
package aggregate

import (
	"context"

	"github.com/mdekker/subject-tally/pkg/extract"
)

// Result maps each valid composite key to the number of sampled records
// that produced it.
type Result map[extract.Key]int

// Strategy is one way of folding sampled records into a Result.
type Strategy interface {
	// Name identifies the strategy in logs and run history.
	Name() string
	// Aggregate counts valid keys over the sampled records.
	Aggregate(ctx context.Context, records []string) (Result, error)
}

// Total returns the sum of all per-key counts, i.e. the number of valid
// records that were counted.
func (r Result) Total() int {
	total := 0
	for _, n := range r {
		total += n
	}
	return total
}

// mergeInto folds a partial result into dst by per-key addition. Addition
// is commutative and associative, so partials can arrive in any order.
func mergeInto(dst, partial Result) {
	for k, n := range partial {
		dst[k] += n
	}
}

// partition slices records into at most n contiguous chunks of near-equal
// size, skipping empty chunks.
func partition(records []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	if n > len(records) {
		n = len(records)
	}
	chunks := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		lo := i * len(records) / n
		hi := (i + 1) * len(records) / n
		if lo < hi {
			chunks = append(chunks, records[lo:hi])
		}
	}
	return chunks
}

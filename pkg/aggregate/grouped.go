package aggregate

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/mdekker/subject-tally/pkg/extract"
	"golang.org/x/sync/errgroup"
)

// GroupedAggregator counts by grouping first: every record's subject value
// is shuffled to the worker owning its location, buffered there in full,
// and only then iterated to produce counts. It yields the same key→count
// mapping as PerKeyCounter but pays for a complete data exchange up front,
// and a single high-volume location pins all of its subjects in one
// worker's arena at once.
type GroupedAggregator struct {
	// Workers is the shuffle partition count. Zero or less means GOMAXPROCS.
	Workers int
	// ArenaCap bounds the buffered subjects per location. Zero or less
	// means DefaultArenaCap.
	ArenaCap int

	highWater atomic.Int64
}

func (g *GroupedAggregator) Name() string { return "grouped" }

// HighWater reports the largest per-location subject buffer observed by the
// most recent Aggregate call. Not meaningful while a call is in flight.
func (g *GroupedAggregator) HighWater() int {
	return int(g.highWater.Load())
}

// Aggregate shuffles (location, subject) pairs by location hash, groups each
// partition's pairs into per-location arenas, then counts subjects within
// each group. Validation happens at counting time, after the shuffle has
// already moved the data — the strategy pays the exchange cost even for
// records that end up excluded.
func (g *GroupedAggregator) Aggregate(ctx context.Context, records []string) (Result, error) {
	workers := g.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.highWater.Store(0)

	// Shuffle: all pairs sharing a location land in the same partition.
	partitions := make([][]extract.Fields, workers)
	for _, record := range records {
		fields := extract.ExtractFields(record)
		p := int(xxhash.Sum64String(fields.Location) % uint64(workers))
		partitions[p] = append(partitions[p], fields)
	}

	partials := make(chan Result, workers)
	eg, ctx := errgroup.WithContext(ctx)
	for _, pairs := range partitions {
		if len(pairs) == 0 {
			continue
		}
		pairs := pairs
		eg.Go(func() error {
			local, err := g.countPartition(pairs)
			if err != nil {
				return err
			}
			select {
			case partials <- local:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	close(partials)

	merged := make(Result)
	for partial := range partials {
		// Partitions own disjoint locations, so this only unions keys.
		mergeInto(merged, partial)
	}
	return merged, nil
}

func (g *GroupedAggregator) countPartition(pairs []extract.Fields) (Result, error) {
	// Materialize every group completely before counting anything.
	groups := make(map[string]*arena)
	for _, f := range pairs {
		a := groups[f.Location]
		if a == nil {
			a = newArena(g.ArenaCap)
			groups[f.Location] = a
		}
		if err := a.append(f.Subject); err != nil {
			return nil, fmt.Errorf("location %q: %w", f.Location, err)
		}
	}

	counts := make(Result)
	for location, a := range groups {
		g.observeHighWater(a.len())
		for _, subject := range a.values {
			key, ok := extract.BuildKey(extract.Fields{Location: location, Subject: subject})
			if !ok {
				continue
			}
			// Missing keys start at zero; the increment must never read
			// an absent counter as the first occurrence's value.
			counts[key]++
		}
	}
	return counts, nil
}

func (g *GroupedAggregator) observeHighWater(n int) {
	for {
		cur := g.highWater.Load()
		if int64(n) <= cur || g.highWater.CompareAndSwap(cur, int64(n)) {
			return
		}
	}
}

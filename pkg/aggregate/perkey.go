package aggregate

import (
	"context"
	"runtime"

	"github.com/mdekker/subject-tally/pkg/extract"
	"golang.org/x/sync/errgroup"
)

// PerKeyCounter counts composite keys with a local combine per partition.
// Each worker owns a private count map for its slice of the input; the
// partial maps are passed to a single merge step and summed. No worker ever
// holds more than the distinct keys of its own partition.
type PerKeyCounter struct {
	// Workers is the partition count. Zero or less means GOMAXPROCS.
	Workers int
}

func (c *PerKeyCounter) Name() string { return "perkey" }

// Aggregate derives a composite key per record, drops invalid ones, and
// increments a per-key counter. Partials are merged by addition after all
// workers finish; the merge never mutates a map another goroutine can see.
func (c *PerKeyCounter) Aggregate(ctx context.Context, records []string) (Result, error) {
	workers := c.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	chunks := partition(records, workers)
	partials := make(chan Result, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			local := make(Result)
			for _, record := range chunk {
				key, ok := extract.KeyFromRecord(record)
				if !ok {
					continue
				}
				local[key]++
			}
			select {
			case partials <- local:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(partials)

	merged := make(Result)
	for partial := range partials {
		mergeInto(merged, partial)
	}
	return merged, nil
}

// Package pipeline wires source → sampler → aggregation → formatter → sink
// and times the aggregation stage.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mdekker/subject-tally/pkg/aggregate"
	"github.com/mdekker/subject-tally/pkg/format"
	"github.com/mdekker/subject-tally/pkg/sample"
)

// RecordSource produces the raw record stream. Failure to open is fatal.
type RecordSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink persists the formatted report. Failure is fatal; no partial report
// survives.
type Sink interface {
	Write(lines []string) error
}

// Stats describes one completed aggregation stage. Duration covers the
// aggregation only, not source reading or report writing.
type Stats struct {
	Strategy     string
	RecordsRead  int
	Sampled      int
	ValidRecords int
	DistinctKeys int
	Duration     time.Duration
}

// maxRecordSize caps one record line; event export rows are wide but
// nowhere near this.
const maxRecordSize = 1 << 20

// Collect reads every record from the source through a reservoir and
// returns the bounded sample plus the total records seen.
func Collect(ctx context.Context, src RecordSource, bound int, seed int64) ([]string, int, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer rc.Close()

	reservoir := sample.NewReservoirWithSeed(bound, seed)
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 64*1024), maxRecordSize)
	for scanner.Scan() {
		reservoir.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read source: %w", err)
	}
	return reservoir.Records(), reservoir.Seen(), nil
}

// Execute runs one strategy over an already-collected sample, writes the
// formatted report, and reports aggregation wall-clock time.
func Execute(ctx context.Context, sampled []string, strategy aggregate.Strategy, lines format.Lines, snk Sink) (*Stats, error) {
	start := time.Now()
	result, err := strategy.Aggregate(ctx, sampled)
	if err != nil {
		return nil, fmt.Errorf("%s aggregation failed: %w", strategy.Name(), err)
	}
	duration := time.Since(start)

	if err := snk.Write(lines(result)); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return &Stats{
		Strategy:     strategy.Name(),
		Sampled:      len(sampled),
		ValidRecords: result.Total(),
		DistinctKeys: len(result),
		Duration:     duration,
	}, nil
}

// Run is Collect followed by Execute with a time-based sampling seed.
func Run(ctx context.Context, src RecordSource, snk Sink, strategy aggregate.Strategy, lines format.Lines, bound int) (*Stats, error) {
	sampled, read, err := Collect(ctx, src, bound, time.Now().UnixNano())
	if err != nil {
		return nil, err
	}
	stats, err := Execute(ctx, sampled, strategy, lines, snk)
	if err != nil {
		return nil, err
	}
	stats.RecordsRead = read
	return stats, nil
}

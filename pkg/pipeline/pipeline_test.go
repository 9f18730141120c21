package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mdekker/subject-tally/pkg/aggregate"
	"github.com/mdekker/subject-tally/pkg/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stringSource serves fixed records, or fails to open.
type stringSource struct {
	records []string
	openErr error
}

func (s *stringSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return io.NopCloser(strings.NewReader(strings.Join(s.records, "\n"))), nil
}

// memorySink captures written lines, or fails.
type memorySink struct {
	lines    []string
	writeErr error
}

func (s *memorySink) Write(lines []string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.lines = lines
	return nil
}

// record builds a full-width export row carrying the given codes.
func record(location, subject string) string {
	fields := make([]string, 58)
	for i := range fields {
		fields[i] = "x"
	}
	fields[6] = subject
	fields[21] = location
	return strings.Join(fields, "\t")
}

func TestRunEndToEnd(t *testing.T) {
	src := &stringSource{records: []string{
		record("US", "SUBJ1"),
		record("US", "SUBJ1"),
		record("US", "SUBJ1"),
		"a\tb\tc\td\te", // malformed
	}}
	snk := &memorySink{}

	stats, err := Run(context.Background(), src, snk,
		&aggregate.PerKeyCounter{Workers: 2}, format.PerKeyLines, 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"US SUBJ1 3"}, snk.lines)
	assert.Equal(t, "perkey", stats.Strategy)
	assert.Equal(t, 4, stats.RecordsRead)
	assert.Equal(t, 4, stats.Sampled)
	assert.Equal(t, 3, stats.ValidRecords)
	assert.Equal(t, 1, stats.DistinctKeys)
	assert.GreaterOrEqual(t, stats.Duration.Nanoseconds(), int64(0))
}

func TestRunSourceFailureIsFatal(t *testing.T) {
	src := &stringSource{openErr: errors.New("no such file")}
	snk := &memorySink{}

	_, err := Run(context.Background(), src, snk,
		&aggregate.PerKeyCounter{}, format.PerKeyLines, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open source")
	assert.Nil(t, snk.lines)
}

func TestRunSinkFailureDiscardsReport(t *testing.T) {
	src := &stringSource{records: []string{record("US", "SUBJ1")}}
	snk := &memorySink{writeErr: errors.New("disk full")}

	_, err := Run(context.Background(), src, snk,
		&aggregate.PerKeyCounter{}, format.PerKeyLines, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write report")
}

func TestCollectBoundsSample(t *testing.T) {
	records := make([]string, 500)
	for i := range records {
		records[i] = record("US", "SUBJ1")
	}
	src := &stringSource{records: records}

	sampled, read, err := Collect(context.Background(), src, 50, 1)
	require.NoError(t, err)
	assert.Equal(t, 500, read)
	assert.Len(t, sampled, 50)
}

func TestExecuteGroupedLayout(t *testing.T) {
	records := []string{
		record("US", "A"),
		record("US", "B"),
		record("US", "B"),
	}
	snk := &memorySink{}

	stats, err := Execute(context.Background(), records,
		&aggregate.GroupedAggregator{Workers: 2}, format.GroupedLines, snk)
	require.NoError(t, err)

	assert.Equal(t, "grouped", stats.Strategy)
	assert.Equal(t, []string{"US A 1 B 2"}, snk.lines)
}

func TestBothStrategiesSameSampleSameCounts(t *testing.T) {
	var records []string
	for i := 0; i < 200; i++ {
		records = append(records, record("US", "A"), record("FR", "B"))
	}
	src := &stringSource{records: records}

	sampled, _, err := Collect(context.Background(), src, 100, 7)
	require.NoError(t, err)

	perkeySink := &memorySink{}
	groupedSink := &memorySink{}
	perkeyStats, err := Execute(context.Background(), sampled,
		&aggregate.PerKeyCounter{Workers: 3}, format.PerKeyLines, perkeySink)
	require.NoError(t, err)
	groupedStats, err := Execute(context.Background(), sampled,
		&aggregate.GroupedAggregator{Workers: 3}, format.GroupedLines, groupedSink)
	require.NoError(t, err)

	assert.Equal(t, perkeyStats.ValidRecords, groupedStats.ValidRecords)
	assert.Equal(t, perkeyStats.DistinctKeys, groupedStats.DistinctKeys)
}

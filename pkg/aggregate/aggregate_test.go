package aggregate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mdekker/subject-tally/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func strategies(workers int) []Strategy {
	return []Strategy{
		&PerKeyCounter{Workers: workers},
		&GroupedAggregator{Workers: workers},
	}
}

func TestAggregateCountsValidRecords(t *testing.T) {
	records := []string{
		record("US", "SUBJ1"),
		record("US", "SUBJ1"),
		record("US", "SUBJ1"),
		"a\tb\tc\td\te", // malformed: too few fields
	}

	for _, s := range strategies(2) {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Aggregate(context.Background(), records)
			require.NoError(t, err)

			assert.Equal(t, Result{
				extract.Key{Location: "US", Subject: "SUBJ1"}: 3,
			}, result)
			assert.Equal(t, 3, result.Total())
		})
	}
}

func TestAggregateExcludesInvalidKeys(t *testing.T) {
	records := []string{
		record("USA", "SUBJ1"), // truncates to "U", fails length check
		record("-A", "SUBJ1"),  // dash prefix
		record("US", ""),       // empty subject collapses adjacent tabs, shifting fields
		"short\trecord",
	}

	for _, s := range strategies(3) {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Aggregate(context.Background(), records)
			require.NoError(t, err)
			assert.Empty(t, result)
		})
	}
}

func TestAggregateFirstOccurrenceCounted(t *testing.T) {
	// A key seen exactly once must count 1. Guards against the
	// read-missing-counter-then-increment mistake in grouped counting,
	// which silently dropped the first occurrence of every subject.
	records := []string{
		record("US", "ONCE"),
		record("US", "TWICE"),
		record("US", "TWICE"),
		record("FR", "ONCE"),
	}

	for _, s := range strategies(2) {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Aggregate(context.Background(), records)
			require.NoError(t, err)

			assert.Equal(t, 1, result[extract.Key{Location: "US", Subject: "ONCE"}])
			assert.Equal(t, 2, result[extract.Key{Location: "US", Subject: "TWICE"}])
			assert.Equal(t, 1, result[extract.Key{Location: "FR", Subject: "ONCE"}])
		})
	}
}

func TestStrategiesAgree(t *testing.T) {
	locations := []string{"US", "FR", "DE", "CN", "BR", "USA", "-A", "NA"}
	subjects := []string{"TRADE", "ENV", "HEALTH", "WAR_AND_PEACE"}

	var records []string
	for i := 0; i < 500; i++ {
		loc := locations[i%len(locations)]
		subj := subjects[(i*7)%len(subjects)]
		records = append(records, record(loc, subj))
	}
	records = append(records, "malformed", "a\tb\tc")

	perkey, err := (&PerKeyCounter{Workers: 4}).Aggregate(context.Background(), records)
	require.NoError(t, err)
	grouped, err := (&GroupedAggregator{Workers: 4}).Aggregate(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, perkey, grouped)
	assert.NotEmpty(t, perkey)
}

func TestTotalEqualsValidRecordCount(t *testing.T) {
	var records []string
	validCount := 0
	for i := 0; i < 300; i++ {
		switch i % 3 {
		case 0:
			records = append(records, record("US", fmt.Sprintf("S%d", i%10)))
			validCount++
		case 1:
			records = append(records, record("USA", "S")) // invalid after truncation
		default:
			records = append(records, "too\tshort")
		}
	}

	for _, s := range strategies(0) { // zero workers: GOMAXPROCS default
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Aggregate(context.Background(), records)
			require.NoError(t, err)
			assert.Equal(t, validCount, result.Total())
		})
	}
}

func TestPerKeyCounterSingleWorker(t *testing.T) {
	records := []string{record("US", "A"), record("FR", "B"), record("US", "A")}
	result, err := (&PerKeyCounter{Workers: 1}).Aggregate(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, result[extract.Key{Location: "US", Subject: "A"}])
	assert.Equal(t, 1, result[extract.Key{Location: "FR", Subject: "B"}])
}

func TestGroupedAggregatorArenaOverflow(t *testing.T) {
	g := &GroupedAggregator{Workers: 1, ArenaCap: 2}
	records := []string{
		record("US", "A"),
		record("US", "B"),
		record("US", "C"), // third subject for one location exceeds the cap
	}

	_, err := g.Aggregate(context.Background(), records)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArenaFull)
	assert.Contains(t, err.Error(), `"US"`)
}

func TestGroupedAggregatorHighWater(t *testing.T) {
	g := &GroupedAggregator{Workers: 2}
	records := []string{
		record("US", "A"), record("US", "B"), record("US", "C"),
		record("FR", "A"),
	}

	_, err := g.Aggregate(context.Background(), records)
	require.NoError(t, err)
	// The hot location pinned three subjects in one arena at once.
	assert.Equal(t, 3, g.HighWater())
}

func TestAggregateEmptyInput(t *testing.T) {
	for _, s := range strategies(2) {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Aggregate(context.Background(), nil)
			require.NoError(t, err)
			assert.Empty(t, result)
		})
	}
}

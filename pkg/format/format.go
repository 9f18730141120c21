// Package format renders aggregation results as report lines.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mdekker/subject-tally/pkg/aggregate"
	"github.com/mdekker/subject-tally/pkg/extract"
)

// Lines renders one aggregation result. The per-key layout is one line per
// composite key; the grouped layout is one line per location.
type Lines func(aggregate.Result) []string

// PerKeyLines renders "<location> <subject> <count>", one line per key.
// Keys are emitted in sorted order so repeated runs over the same sample
// diff cleanly.
func PerKeyLines(result aggregate.Result) []string {
	lines := make([]string, 0, len(result))
	for key, n := range result {
		lines = append(lines, fmt.Sprintf("%s %s %d", key.Location, key.Subject, n))
	}
	sort.Strings(lines)
	return lines
}

// GroupedLines renders one line per location listing every subject with its
// own count: "<location> <subj1> <n1> <subj2> <n2> ...". Subjects within a
// line are sorted; the pairing of subject to count is what matters.
func GroupedLines(result aggregate.Result) []string {
	byLocation := make(map[string]aggregate.Result)
	for key, n := range result {
		counts := byLocation[key.Location]
		if counts == nil {
			counts = make(aggregate.Result)
			byLocation[key.Location] = counts
		}
		counts[key] = n
	}

	lines := make([]string, 0, len(byLocation))
	for location, counts := range byLocation {
		subjects := make([]string, 0, len(counts))
		for key := range counts {
			subjects = append(subjects, key.Subject)
		}
		sort.Strings(subjects)

		var b strings.Builder
		b.WriteString(location)
		for _, subject := range subjects {
			n := counts[extract.Key{Location: location, Subject: subject}]
			fmt.Fprintf(&b, " %s %d", subject, n)
		}
		lines = append(lines, b.String())
	}
	sort.Strings(lines)
	return lines
}

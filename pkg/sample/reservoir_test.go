package sample

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func feed(r *Reservoir, n int) {
	for i := 0; i < n; i++ {
		r.Add(fmt.Sprintf("record-%d", i))
	}
}

func TestReservoirSizeIsMinBoundInput(t *testing.T) {
	tests := []struct {
		name  string
		bound int
		input int
		want  int
	}{
		{"input below bound", 100, 7, 7},
		{"input equals bound", 100, 100, 100},
		{"input above bound", 100, 5000, 100},
		{"zero bound", 0, 50, 0},
		{"empty input", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReservoirWithSeed(tt.bound, 1)
			feed(r, tt.input)
			assert.Len(t, r.Records(), tt.want)
			assert.Equal(t, tt.input, r.Seen())
		})
	}
}

func TestReservoirSmallInputPassesThroughUnchanged(t *testing.T) {
	r := NewReservoirWithSeed(100, 42)
	feed(r, 10)

	want := make([]string, 10)
	for i := range want {
		want[i] = fmt.Sprintf("record-%d", i)
	}
	assert.Equal(t, want, r.Records())
}

func TestReservoirMembersComeFromInput(t *testing.T) {
	r := NewReservoirWithSeed(50, 7)
	feed(r, 2000)

	for _, rec := range r.Records() {
		assert.Regexp(t, `^record-\d+$`, rec)
	}
}

func TestReservoirDoesNotBiasTowardEitherHalf(t *testing.T) {
	// 500 of 1000: each half should contribute roughly 250. The window is
	// wide enough that a correct sampler essentially never trips it.
	r := NewReservoirWithSeed(500, 99)
	feed(r, 1000)

	firstHalf := 0
	for _, rec := range r.Records() {
		var i int
		fmt.Sscanf(rec, "record-%d", &i)
		if i < 500 {
			firstHalf++
		}
	}
	assert.Greater(t, firstHalf, 180)
	assert.Less(t, firstHalf, 320)
}

package aggregate

import (
	"errors"
	"fmt"
)

// ErrArenaFull reports that one location accumulated more subject values
// than the grouped strategy is allowed to buffer.
var ErrArenaFull = errors.New("subject arena full")

// DefaultArenaCap bounds the per-location subject buffer when the caller
// does not choose a capacity.
const DefaultArenaCap = 1 << 20

// arena is a bounded buffer for the subject values of a single location.
// The grouped strategy must materialize the whole group before it can count
// anything; the explicit cap turns that hidden memory liability into an
// observable failure instead of an OOM.
type arena struct {
	cap    int
	values []string
}

func newArena(cap int) *arena {
	if cap < 1 {
		cap = DefaultArenaCap
	}
	return &arena{cap: cap}
}

// append adds one subject value, failing once the buffer is full.
func (a *arena) append(v string) error {
	if len(a.values) >= a.cap {
		return fmt.Errorf("%w: cap %d reached", ErrArenaFull, a.cap)
	}
	a.values = append(a.values, v)
	return nil
}

func (a *arena) len() int { return len(a.values) }

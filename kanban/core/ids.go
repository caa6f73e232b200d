// ABOUTME: Card id generation and the clock abstraction used for entity timestamps.
// ABOUTME: ULIDGenerator uses crypto/rand entropy; SequenceGenerator yields card_<n> for stable counters.
package core

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Clock returns the current time. Entities truncate it to millisecond resolution.
type Clock func() time.Time

// SystemClock is the wall-clock Clock.
func SystemClock() time.Time {
	return time.Now()
}

func stamp(c Clock) time.Time {
	if c == nil {
		c = SystemClock
	}
	return c().UTC().Truncate(time.Millisecond)
}

// IDGenerator produces locally unique card ids.
type IDGenerator interface {
	NewID() string
}

// NewULID generates a new ULID using crypto/rand entropy.
func NewULID() ulid.ULID {
	return ulid.MustNew(ulid.Now(), rand.Reader)
}

// ULIDGenerator emits ids of the form card_<ULID>.
type ULIDGenerator struct{}

func (ULIDGenerator) NewID() string {
	return "card_" + NewULID().String()
}

// SequenceGenerator emits card_1, card_2, ... and can be restored from a saved counter.
type SequenceGenerator struct {
	last int
}

// NewSequenceGenerator starts a sequence after last.
func NewSequenceGenerator(last int) *SequenceGenerator {
	return &SequenceGenerator{last: last}
}

func (g *SequenceGenerator) NewID() string {
	g.last++
	return fmt.Sprintf("card_%d", g.last)
}

// Last returns the most recently issued sequence number.
func (g *SequenceGenerator) Last() int {
	return g.last
}

// Reset moves the counter so the next id is card_<last+1>.
func (g *SequenceGenerator) Reset(last int) {
	g.last = last
}

// Package clock defines the ledger height, the logical clock used for activity
// windows, expiry and timestamp checks.
package clock

import "sync/atomic"

// Clock is the interface of a source of ledger height. The height never
// decreases.
type Clock interface {
	GetHeight() uint64
}

// Manual is a clock that only moves when it is told to.
//
// - implements clock.Clock
type Manual struct {
	height uint64
}

// NewManual returns a clock starting at the given height.
func NewManual(height uint64) *Manual {
	return &Manual{height: height}
}

// GetHeight implements clock.Clock.
func (c *Manual) GetHeight() uint64 {
	return atomic.LoadUint64(&c.height)
}

// Advance moves the clock forward by n blocks and returns the new height.
func (c *Manual) Advance(n uint64) uint64 {
	return atomic.AddUint64(&c.height, n)
}

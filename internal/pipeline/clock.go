package pipeline

import "sync/atomic"

// Clock is a monotonic logical clock for trace event ordering.
//
// Every trace event is stamped with a strictly increasing seq number, so
// event order is explicit and never depends on wall-clock time. Parallel
// branches are stamped after the group joins, in declaration order, which
// keeps traces deterministic regardless of completion order.
//
// Thread-safety: safe for concurrent use (atomic operations), though the
// runner stamps events from a single goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

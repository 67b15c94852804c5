package couchdb

import "sync/atomic"

// RestartCounter staggers node restarts within a single tick. It must be
// created fresh for every tick (the distilled spec's process-lifetime
// counter is a known defect — see DESIGN.md — this repo scopes it per tick
// so restart spacing does not widen indefinitely across ticks).
type RestartCounter struct {
	n atomic.Int64
}

// NewRestartCounter returns a counter starting at zero.
func NewRestartCounter() *RestartCounter {
	return &RestartCounter{}
}

// Next atomically increments and returns the counter, so the caller can
// compute this restart's position (1-indexed) within the tick.
func (c *RestartCounter) Next() int64 {
	return c.n.Add(1)
}

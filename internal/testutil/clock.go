package testutil

import "sync"

// FakeTimer is a manually advanced clock reporting seconds.
//
// Its Now method has the shape of a benchmark timer (func() float64), so
// tests pass clock.Now wherever a timer is expected and advance time from
// inside the code under measurement. Readings are exact and repeatable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeTimer struct {
	mu    sync.Mutex
	now   float64
	reads int
}

// NewFakeTimer creates a timer reading 0.
func NewFakeTimer() *FakeTimer {
	return &FakeTimer{}
}

// Now returns the current reading and counts the read.
func (c *FakeTimer) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	return c.now
}

// Advance moves the clock forward by sec seconds.
// Negative values are ignored so readings never decrease.
func (c *FakeTimer) Advance(sec float64) {
	if sec <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += sec
}

// Reads returns how many times Now has been called.
func (c *FakeTimer) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Reset sets the reading and the read count back to 0.
func (c *FakeTimer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
	c.reads = 0
}

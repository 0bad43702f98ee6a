package core

import "time"

// Clock measures frame-to-frame time for the main loop.
type Clock struct {
	last    time.Time
	delta   time.Duration
	running bool
}

func NewClock() *Clock {
	return &Clock{}
}

// Start resets the clock and begins measuring. Tick on a non-started
// clock reports a zero delta.
func (c *Clock) Start() {
	c.last = time.Now()
	c.delta = 0
	c.running = true
}

// Tick records the time since the previous Tick (or Start) and returns it.
func (c *Clock) Tick() time.Duration {
	if !c.running {
		return 0
	}
	now := time.Now()
	c.delta = now.Sub(c.last)
	c.last = now
	return c.delta
}

// DeltaSeconds returns the last measured frame time in seconds.
func (c *Clock) DeltaSeconds() float64 {
	return c.delta.Seconds()
}

func (c *Clock) Stop() {
	c.running = false
}

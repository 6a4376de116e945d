package core

import "time"

type Clock struct {
	startTime time.Time
	lastTick  time.Time
	elapsed   time.Duration
	running   bool
}

func NewClock() *Clock {
	return &Clock{}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = time.Since(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.lastTick = c.startTime
	c.elapsed = 0
	c.running = true
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns the seconds since Start, as of the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}

// Tick returns the seconds since the previous Tick (or Start) and advances
// the frame marker.
func (c *Clock) Tick() float64 {
	if !c.running {
		return 0
	}
	now := time.Now()
	dt := now.Sub(c.lastTick).Seconds()
	c.lastTick = now
	c.Update()
	return dt
}

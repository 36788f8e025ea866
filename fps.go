package prism

import "fmt"

// fpsCounter measures frames per second from frame time. The reported
// value is refreshed every interval seconds and is 0 until the first
// interval has elapsed.
type fpsCounter struct {
	interval float32
	started  bool
	since    float32
	frames   int
	value    float32
}

func newFpsCounter(interval float32) *fpsCounter {
	if interval <= 0 {
		interval = DefaultFpsInterval
	}
	return &fpsCounter{interval: interval}
}

// tick records one frame at time now and returns the current rate.
func (c *fpsCounter) tick(now float32) float32 {
	if !c.started {
		c.started = true
		c.since = now
	}
	c.frames++
	if elapsed := now - c.since; elapsed >= c.interval {
		c.value = float32(c.frames) / elapsed
		c.frames = 0
		c.since = now
	}
	return c.value
}

// label is the text an fps node draws.
func (c *fpsCounter) label() string {
	return fmt.Sprintf("FPS: %.1f", c.value)
}

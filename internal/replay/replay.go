// Package replay paces snapshot delivery to wall-clock time using each
// event's embedded ITCH nanosecond timestamp (component G). The engine
// itself is never paced; pacing applies only on the broadcaster delivery
// path (spec.md §4.7).
package replay

import "time"

// Clock anchors wall time to event time on first use and sleeps the
// caller's goroutine to keep subsequent deliveries in step.
type Clock struct {
	catchupThreshold time.Duration
	sleep            func(time.Duration)
	now              func() time.Time

	anchored    bool
	wallAnchor  time.Time
	eventAnchor uint64 // ns
}

// DefaultCatchupThreshold matches spec.md §4.7's default of 1s.
const DefaultCatchupThreshold = time.Second

// New returns a Clock with the given catch-up threshold (0 uses the
// default).
func New(catchupThreshold time.Duration) *Clock {
	if catchupThreshold <= 0 {
		catchupThreshold = DefaultCatchupThreshold
	}
	return &Clock{catchupThreshold: catchupThreshold, sleep: time.Sleep, now: time.Now}
}

// WaitUntil blocks the calling goroutine until wall time reaches the
// scheduled deadline for event timestamp eventNs. The first call anchors
// the clock and returns immediately.
func (c *Clock) WaitUntil(eventNs uint64) {
	now := c.now()
	if !c.anchored {
		c.wallAnchor = now
		c.eventAnchor = eventNs
		c.anchored = true
		return
	}

	deadline := c.wallAnchor.Add(time.Duration(eventNs - c.eventAnchor))
	lag := now.Sub(deadline)
	if lag > c.catchupThreshold {
		// Re-anchor to avoid unbounded lag rather than sleeping negative
		// duration forever.
		c.wallAnchor = now
		c.eventAnchor = eventNs
		return
	}
	if d := deadline.Sub(now); d > 0 {
		c.sleep(d)
	}
}

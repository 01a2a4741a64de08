package media

import "time"

const defaultFrameRate = 30.0

// maxDecodeWait caps the anchor-based sleep so corrupt timestamps can't
// stall the decode loop indefinitely.
const maxDecodeWait = 100 * time.Millisecond

// clock reconciles the three independent time sources of playback: the
// stream's native frame rate, the user-requested display rate, and the
// wall clock.
//
// It operates in one of two modes:
//
//   - native-speed (target >= native): after each decoded frame the
//     caller is slept until anchor+pts, which keeps the video at its
//     authored speed;
//   - display-limited (target < native): decode runs unthrottled and
//     pacing is delegated entirely to shouldDisplay, so the two waits
//     can't compound into slow-motion playback.
type clock struct {
	nativeRate float64
	targetRate float64

	anchor      time.Time
	lastPts     float64
	lastDisplay time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func newClock(nativeRate float64) *clock {
	if nativeRate <= 0 {
		nativeRate = defaultFrameRate
	}
	return &clock{
		nativeRate: nativeRate,
		targetRate: nativeRate,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// setTargetRate sets the display rate; rate <= 0 means no limiting,
// i.e. the native frame rate.
func (c *clock) setTargetRate(rate float64) {
	if rate <= 0 {
		rate = c.nativeRate
	}
	c.targetRate = rate
}

func (c *clock) displayLimited() bool { return c.targetRate < c.nativeRate }

// frameDecoded paces the decode loop in native-speed mode. In
// display-limited mode it only records the timestamp: waiting here as
// well would double-pace playback.
func (c *clock) frameDecoded(pts float64) {
	c.lastPts = pts
	if c.displayLimited() {
		return
	}
	now := c.now()
	if c.anchor.IsZero() {
		c.anchor = now
	}
	expected := c.anchor.Add(time.Duration(pts * float64(time.Second)))
	if wait := expected.Sub(now); wait > 0 {
		if wait > maxDecodeWait {
			wait = maxDecodeWait
		}
		c.sleep(wait)
	}
}

// decodeDelay returns how long the caller should idle before asking for
// the next frame. In native-speed mode frameDecoded already paced, so
// the delay is zero; in display-limited mode frameDecoded deliberately
// never sleeps, and without this delay decode would race through the
// stream at CPU speed. One native frame interval keeps pts in step with
// the wall clock so the display gate skips frames instead of the video
// fast-forwarding.
func (c *clock) decodeDelay() time.Duration {
	if !c.displayLimited() {
		return 0
	}
	return time.Duration(float64(time.Second) / c.nativeRate)
}

// restart re-anchors the clock after a loop back to the start of the
// stream. Without this, the wait after the first frame of the next pass
// would be computed against a stale anchor and grow without bound.
func (c *clock) restart() {
	c.anchor = c.now()
	c.lastPts = 0
}

// shouldDisplay reports whether enough wall-clock time has passed since
// the last true return to show a new frame at the target display rate.
// It is the single authority for display pacing and is independent of
// the decode clock.
func (c *clock) shouldDisplay() bool {
	now := c.now()
	interval := time.Duration(float64(time.Second) / c.targetRate)
	if now.Sub(c.lastDisplay) >= interval {
		c.lastDisplay = now
		return true
	}
	return false
}

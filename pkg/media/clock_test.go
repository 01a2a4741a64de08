package media

import (
	"testing"
	"time"
)

type fakeTime struct {
	t     time.Time
	slept []time.Duration
}

func newFakeTime() *fakeTime { return &fakeTime{t: time.Unix(1000, 0)} }

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) sleep(d time.Duration) {
	f.slept = append(f.slept, d)
	f.t = f.t.Add(d)
}

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func testClock(native float64) (*clock, *fakeTime) {
	ft := newFakeTime()
	c := newClock(native)
	c.now = ft.now
	c.sleep = ft.sleep
	return c, ft
}

func TestClockModeSelection(t *testing.T) {
	tests := []struct {
		native, target float64
		limited        bool
	}{
		{30, 30, false}, // equal rates: native-speed mode
		{30, 60, false},
		{30, 15, true},
		{30, 0, false}, // <=0 means native
		{30, -1, false},
	}
	for _, test := range tests {
		c, _ := testClock(test.native)
		c.setTargetRate(test.target)
		if c.displayLimited() != test.limited {
			t.Errorf("native=%v target=%v: expected limited=%v", test.native, test.target, test.limited)
		}
	}
}

func TestClockNativeSpeedWaits(t *testing.T) {
	c, ft := testClock(10) // 100ms per frame

	c.frameDecoded(0) // anchors, no wait
	if len(ft.slept) != 0 {
		t.Fatalf("first frame should not wait, slept %v", ft.slept)
	}

	// Decode is instant in this test, so the second frame is 100ms early.
	c.frameDecoded(0.1)
	if len(ft.slept) != 1 || ft.slept[0] != 100*time.Millisecond {
		t.Fatalf("expected a single 100ms wait, got %v", ft.slept)
	}
}

func TestClockWaitCapped(t *testing.T) {
	c, ft := testClock(10)
	c.frameDecoded(0)
	c.frameDecoded(3600) // corrupt timestamp one hour ahead
	if len(ft.slept) != 1 || ft.slept[0] != maxDecodeWait {
		t.Fatalf("expected the wait to be capped at %v, got %v", maxDecodeWait, ft.slept)
	}
}

func TestClockDisplayLimitedNeverWaits(t *testing.T) {
	c, ft := testClock(30)
	c.setTargetRate(10)
	for i := 0; i < 10; i++ {
		c.frameDecoded(float64(i) / 30)
	}
	if len(ft.slept) != 0 {
		t.Errorf("display-limited mode must not pace decode, slept %v", ft.slept)
	}
}

func TestClockDecodeDelay(t *testing.T) {
	tests := []struct {
		native, target float64
		delay          time.Duration
	}{
		{30, 30, 0},               // native speed: frameDecoded paces
		{30, 60, 0},               // gate can't open faster than decode
		{30, 15, time.Second / 30}, // limited: the loop must idle
		{60, 30, time.Second / 60},
		{30, 0, 0}, // <=0 means native
	}
	for _, test := range tests {
		c, _ := testClock(test.native)
		c.setTargetRate(test.target)
		if got := c.decodeDelay(); got != test.delay {
			t.Errorf("native=%v target=%v: delay %v, want %v", test.native, test.target, got, test.delay)
		}
	}
}

func TestClockRestartAvoidsStaleAnchor(t *testing.T) {
	c, ft := testClock(10)
	c.frameDecoded(0)
	c.frameDecoded(0.1)

	// Loop back: without a restart the next pts=0 frame would be "late"
	// forever and pts=0.1 would wait against the old anchor.
	c.restart()
	ft.slept = nil
	c.frameDecoded(0)
	c.frameDecoded(0.1)
	if len(ft.slept) != 1 || ft.slept[0] != 100*time.Millisecond {
		t.Errorf("expected a fresh 100ms wait after restart, got %v", ft.slept)
	}
}

func TestShouldDisplayHalfRate(t *testing.T) {
	// Decode at 60fps, display at 30fps: the gate should open for about
	// half of the ticks.
	c, ft := testClock(60)
	c.setTargetRate(30)

	shown := 0
	for i := 0; i < 120; i++ {
		if c.shouldDisplay() {
			shown++
		}
		ft.advance(time.Second / 60)
	}
	if shown < 55 || shown > 65 {
		t.Errorf("expected ~60 displays out of 120 ticks, got %v", shown)
	}
}

func TestShouldDisplayFirstCall(t *testing.T) {
	c, _ := testClock(30)
	if !c.shouldDisplay() {
		t.Error("the first tick should display immediately")
	}
	if c.shouldDisplay() {
		t.Error("the gate should close right after a display")
	}
}

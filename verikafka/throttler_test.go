package verikafka

import (
	"testing"
	"time"
)

func TestShouldThrottleDisabled(t *testing.T) {
	start := time.Now()
	for _, rate := range []int64{0, -1, -100} {
		throttler := NewThroughputThrottler(rate, start)
		for i := int64(0); i < 5; i++ {
			if throttler.ShouldThrottle(i, start.Add(time.Duration(i)*time.Millisecond)) {
				t.Errorf("rate %d: ShouldThrottle(%d) = true, want false", rate, i)
			}
		}
	}
}

func TestShouldThrottleAheadOfSchedule(t *testing.T) {
	start := time.Unix(1000, 0)

	tests := []struct {
		name         string
		rate         int64
		messageIndex int64
		sinceStart   time.Duration
		want         bool
	}{
		{
			name:         "first message sent instantly is ahead of schedule",
			rate:         100,
			messageIndex: 0,
			sinceStart:   0,
			want:         true,
		},
		{
			name:         "first message sent after its interval is on schedule",
			rate:         100,
			messageIndex: 0,
			sinceStart:   10 * time.Millisecond,
			want:         false,
		},
		{
			name:         "fifth message ahead of its 50ms budget",
			rate:         100,
			messageIndex: 4,
			sinceStart:   20 * time.Millisecond,
			want:         true,
		},
		{
			name:         "fifth message behind schedule",
			rate:         100,
			messageIndex: 4,
			sinceStart:   100 * time.Millisecond,
			want:         false,
		},
		{
			name:         "exactly on the expected boundary is not ahead",
			rate:         200,
			messageIndex: 9,
			sinceStart:   50 * time.Millisecond,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			throttler := NewThroughputThrottler(tt.rate, start)
			got := throttler.ShouldThrottle(tt.messageIndex, start.Add(tt.sinceStart))
			if got != tt.want {
				t.Errorf("ShouldThrottle(%d, start+%s) = %v, want %v", tt.messageIndex, tt.sinceStart, got, tt.want)
			}
		})
	}
}

func TestThrottleSleepsOffTheDifference(t *testing.T) {
	// Put the start in the near future so the pacing deadline is comfortably
	// ahead of the wall clock, then capture the requested sleep instead of
	// actually sleeping.
	start := time.Now().Add(time.Second)
	throttler := NewThroughputThrottler(10, start)

	var slept time.Duration
	throttler.sleep = func(d time.Duration) { slept = d }

	if !throttler.ShouldThrottle(0, start) {
		t.Fatal("expected first instantaneous send to throttle")
	}
	throttler.Throttle()

	// Deadline is start+100ms, about 1.1s from now.
	if slept < time.Second || slept > 1100*time.Millisecond {
		t.Errorf("slept %s, want roughly 1.1s", slept)
	}
}

func TestThrottleNoopWhenDeadlinePassed(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	throttler := NewThroughputThrottler(1000, start)

	throttler.sleep = func(d time.Duration) {
		t.Errorf("unexpected sleep of %s", d)
	}
	// Deadline computed from a long-gone start is already behind us.
	throttler.deadline = start.Add(time.Millisecond)
	throttler.Throttle()
}

func TestPacingConvergence(t *testing.T) {
	// Five instantaneous sends at 500 msgs/sec should stretch the loop to
	// roughly 5 * 1000/500 = 10ms of wall time.
	start := time.Now()
	throttler := NewThroughputThrottler(500, start)

	for i := int64(0); i < 5; i++ {
		if throttler.ShouldThrottle(i, time.Now()) {
			throttler.Throttle()
		}
	}

	elapsed := time.Since(start)
	if elapsed < 8*time.Millisecond {
		t.Errorf("loop finished in %s, want at least ~10ms of pacing", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("loop took %s, pacing overshot the target rate badly", elapsed)
	}
}

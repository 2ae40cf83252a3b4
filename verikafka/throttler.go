package verikafka

import (
	"time"
)

// ThroughputThrottler paces a send loop toward a target message rate.
// It needs no timers or scheduler: after each send the loop asks whether it is
// running ahead of the pace implied by the target rate, and sleeps off the
// difference if so.
//
// A ThroughputThrottler is used by a single goroutine; it is not safe for
// concurrent use and does not need to be.
type ThroughputThrottler struct {
	targetRate int64     // messages per second; <= 0 disables throttling
	start      time.Time // when the send loop started
	deadline   time.Time // pacing deadline computed by the last ShouldThrottle

	// sleep is replaceable so tests can observe requested durations without
	// actually sleeping.
	sleep func(time.Duration)
}

// NewThroughputThrottler creates a throttler for the given target rate in
// messages per second, measuring elapsed time from start. If targetRate is
// zero or negative the throttler is disabled and ShouldThrottle always
// returns false.
func NewThroughputThrottler(targetRate int64, start time.Time) *ThroughputThrottler {
	return &ThroughputThrottler{
		targetRate: targetRate,
		start:      start,
		sleep:      time.Sleep,
	}
}

// ShouldThrottle reports whether the loop is ahead of schedule after sending
// message messageIndex (zero-based) at sendStart. The expected elapsed time
// for messageIndex+1 messages at the target rate is (messageIndex+1)*1000/rate
// milliseconds from start; if less wall time than that has passed, the loop
// should pause and Throttle must be called next.
//
// Note the index-0 case expects one full message interval, so even the very
// first send can throttle when dispatch is instantaneous. Harnesses depend on
// this exact pacing curve.
func (t *ThroughputThrottler) ShouldThrottle(messageIndex int64, sendStart time.Time) bool {
	if t.targetRate <= 0 {
		return false
	}

	expected := time.Duration((messageIndex+1)*1000/t.targetRate) * time.Millisecond
	elapsed := sendStart.Sub(t.start)
	if elapsed >= expected {
		return false
	}

	t.deadline = t.start.Add(expected)
	return true
}

// Throttle blocks the calling goroutine until the deadline computed by the
// last ShouldThrottle call that returned true. It never blocks other
// goroutines and never sleeps a negative duration.
func (t *ThroughputThrottler) Throttle() {
	d := time.Until(t.deadline)
	if d <= 0 {
		return
	}
	t.sleep(d)
}

package node

import (
	"testing"
	"time"
)

func TestJitterStaysWithinTwentyPercent(t *testing.T) {
	base := 100 * time.Millisecond
	lo := base - base/5
	hi := base + base/5

	for i := 0; i < 200; i++ {
		got := jitter(base)
		if got < lo || got > hi {
			t.Fatalf("jitter(%v) = %v, want within [%v, %v]", base, got, lo, hi)
		}
	}
}

func TestJitterHandlesTinyDurations(t *testing.T) {
	// span = int64(base)/5 rounds to 0 below 5ns; jitter must not panic
	// calling rand.Int63n with a non-positive argument.
	base := 2 * time.Nanosecond
	if got := jitter(base); got != base {
		t.Fatalf("jitter(%v) = %v, want unchanged for a span too small to jitter", base, got)
	}
}

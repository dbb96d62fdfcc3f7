package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterExhaustsTokens(t *testing.T) {
	rl := NewRateLimiter(3, 1, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("user-a") {
			t.Fatalf("request %d denied with tokens remaining", i)
		}
	}
	if rl.Allow("user-a") {
		t.Error("request allowed after bucket drained")
	}

	// Other keys have their own bucket
	if !rl.Allow("user-b") {
		t.Error("independent key denied")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(1, 1, 10*time.Millisecond)

	if !rl.Allow("k") {
		t.Fatal("first request denied")
	}
	if rl.Allow("k") {
		t.Fatal("second request allowed before refill")
	}

	time.Sleep(25 * time.Millisecond)
	if !rl.Allow("k") {
		t.Error("request denied after refill period")
	}
}

package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewInMemoryRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("1.2.3.4") {
		t.Error("request over the limit should be denied")
	}
	// Other clients are tracked independently.
	if !limiter.Allow("5.6.7.8") {
		t.Error("different key should not share the budget")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := NewInMemoryRateLimiter(1, 20*time.Millisecond)

	if !limiter.Allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("second request inside the window should be denied")
	}
	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow("1.2.3.4") {
		t.Error("request after the window should be allowed again")
	}
}

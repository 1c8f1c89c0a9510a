package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckMutation_Cooldown(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MutateCooldown:     2 * time.Second,
		MutateMaxPerHour:   120,
		MutateMaxIPPerHour: 300,
		Clock:              clock,
	})
	defer limiter.Close()

	manager := "alice"
	ip := "192.168.1.1"

	// First request should be allowed
	result := limiter.CheckMutation(manager, ip)
	if !result.Allowed {
		t.Errorf("First request should be allowed, got blocked: %s", result.Reason)
	}
	limiter.RecordMutation(manager, ip)

	// Second request within cooldown should be blocked
	clock.Advance(1 * time.Second)
	result = limiter.CheckMutation(manager, ip)
	if result.Allowed {
		t.Error("Second request within cooldown should be blocked")
	}
	if result.Reason != "cooldown" {
		t.Errorf("Expected reason 'cooldown', got '%s'", result.Reason)
	}
	if result.RetryAfter != 1*time.Second {
		t.Errorf("Expected RetryAfter 1s, got %v", result.RetryAfter)
	}

	// After cooldown expires, should be allowed
	clock.Advance(2 * time.Second)
	result = limiter.CheckMutation(manager, ip)
	if !result.Allowed {
		t.Errorf("Request after cooldown should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckMutation_HourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MutateCooldown:     1 * time.Millisecond,
		MutateMaxPerHour:   3,
		MutateMaxIPPerHour: 300,
		Clock:              clock,
	})
	defer limiter.Close()

	manager := "bob"
	ip := "192.168.1.2"

	// First 3 requests should be allowed
	for i := 0; i < 3; i++ {
		clock.Advance(1 * time.Second)
		result := limiter.CheckMutation(manager, ip)
		if !result.Allowed {
			t.Errorf("Request %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordMutation(manager, ip)
	}

	// 4th request should be blocked (hourly limit)
	clock.Advance(1 * time.Second)
	result := limiter.CheckMutation(manager, ip)
	if result.Allowed {
		t.Error("4th request should be blocked (hourly limit)")
	}
	if result.Reason != "hourly_limit" {
		t.Errorf("Expected reason 'hourly_limit', got '%s'", result.Reason)
	}

	// After the window rolls over, should be allowed again
	clock.Advance(time.Hour)
	result = limiter.CheckMutation(manager, ip)
	if !result.Allowed {
		t.Errorf("Request after window rollover should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckMutation_IPHourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MutateCooldown:     1 * time.Millisecond,
		MutateMaxPerHour:   100,
		MutateMaxIPPerHour: 3,
		Clock:              clock,
	})
	defer limiter.Close()

	ip := "10.0.0.5"

	// Different managers from the same IP share the IP budget
	for i, manager := range []string{"alice", "bob", "carol"} {
		clock.Advance(1 * time.Second)
		result := limiter.CheckMutation(manager, ip)
		if !result.Allowed {
			t.Errorf("Request %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordMutation(manager, ip)
	}

	clock.Advance(1 * time.Second)
	result := limiter.CheckMutation("dave", ip)
	if result.Allowed {
		t.Error("4th request from the same IP should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}

	// A different IP is unaffected
	result = limiter.CheckMutation("dave", "10.0.0.6")
	if !result.Allowed {
		t.Errorf("Different IP should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckMutation_CaseInsensitiveManager(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MutateCooldown:     time.Minute,
		MutateMaxPerHour:   100,
		MutateMaxIPPerHour: 100,
		Clock:              clock,
	})
	defer limiter.Close()

	limiter.RecordMutation("Alice", "10.0.0.1")

	result := limiter.CheckMutation("aLiCe", "10.0.0.1")
	if result.Allowed {
		t.Error("Case-varied manager name should share the cooldown bucket")
	}
}

func TestCleanup(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MutateCooldown:     time.Second,
		MutateMaxPerHour:   10,
		MutateMaxIPPerHour: 10,
		Clock:              clock,
	})
	defer limiter.Close()

	limiter.RecordMutation("alice", "10.0.0.1")
	clock.Advance(2 * time.Hour)
	limiter.cleanup()

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	if len(limiter.byManager) != 0 || len(limiter.byIP) != 0 {
		t.Errorf("stale entries not cleaned: managers=%d ips=%d",
			len(limiter.byManager), len(limiter.byIP))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		trustProxy bool
		want       string
	}{
		{"direct connection", "203.0.113.7:54321", "", "", false, "203.0.113.7"},
		{"untrusted proxy ignores XFF", "203.0.113.7:54321", "9.9.9.9", "", false, "203.0.113.7"},
		{"trusted proxy uses rightmost public", "10.0.0.1:80", "9.9.9.9, 8.8.8.8", "", true, "8.8.8.8"},
		{"trusted proxy skips private", "10.0.0.1:80", "9.9.9.9, 192.168.1.1", "", true, "9.9.9.9"},
		{"all private falls back to last", "10.0.0.1:80", "192.168.1.1, 10.0.0.2", "", true, "10.0.0.2"},
		{"x-real-ip", "10.0.0.1:80", "", "9.9.9.9", true, "9.9.9.9"},
		{"no port", "203.0.113.7", "", "", false, "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := GetClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

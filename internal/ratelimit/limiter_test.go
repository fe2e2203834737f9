package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock lets tests advance time manually.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(t *testing.T, cfg *Config, clock *fakeClock) *Limiter {
	t.Helper()
	cfg.Clock = clock
	l := New(cfg)
	t.Cleanup(l.Close)
	return l
}

func TestCheckBookingAllowedWhenIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, DefaultConfig(), clock)

	res := l.CheckBooking(1, "203.0.113.7")
	if !res.Allowed {
		t.Fatalf("expected first attempt allowed, got reason %q", res.Reason)
	}
}

func TestCooldownBlocksImmediateRetry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, &Config{
		BookingCooldown:   10 * time.Second,
		BookingMaxPerHour: 20,
		MaxIPPerHour:      60,
	}, clock)

	l.RecordBooking(1, "203.0.113.7")

	clock.advance(3 * time.Second)
	res := l.CheckBooking(1, "203.0.113.7")
	if res.Allowed {
		t.Fatal("expected retry within cooldown to be blocked")
	}
	if res.Reason != "cooldown" {
		t.Errorf("reason = %q, want cooldown", res.Reason)
	}
	if res.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", res.RetryAfter)
	}

	clock.advance(7 * time.Second)
	if res := l.CheckBooking(1, "203.0.113.7"); !res.Allowed {
		t.Fatalf("expected attempt after cooldown to pass, got reason %q", res.Reason)
	}
}

func TestCooldownIsPerTeam(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, DefaultConfig(), clock)

	l.RecordBooking(1, "203.0.113.7")

	clock.advance(time.Second)
	if res := l.CheckBooking(2, "198.51.100.4"); !res.Allowed {
		t.Fatalf("expected other team to be unaffected, got reason %q", res.Reason)
	}
}

func TestHourlyTeamCap(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, &Config{
		BookingCooldown:   time.Second,
		BookingMaxPerHour: 3,
		MaxIPPerHour:      60,
	}, clock)

	for i := 0; i < 3; i++ {
		if res := l.CheckBooking(1, "203.0.113.7"); !res.Allowed {
			t.Fatalf("attempt %d blocked unexpectedly: %q", i, res.Reason)
		}
		l.RecordBooking(1, "203.0.113.7")
		clock.advance(2 * time.Second)
	}

	res := l.CheckBooking(1, "203.0.113.7")
	if res.Allowed {
		t.Fatal("expected fourth booking within the hour to be blocked")
	}
	if res.Reason != "hourly_limit" {
		t.Errorf("reason = %q, want hourly_limit", res.Reason)
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Hour {
		t.Errorf("RetryAfter = %v, want within (0, 1h]", res.RetryAfter)
	}

	// Window resets an hour after the first recorded booking.
	clock.advance(time.Hour)
	if res := l.CheckBooking(1, "203.0.113.7"); !res.Allowed {
		t.Fatalf("expected fresh window after an hour, got reason %q", res.Reason)
	}
}

func TestHourlyIPCap(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, &Config{
		BookingCooldown:   time.Second,
		BookingMaxPerHour: 100,
		MaxIPPerHour:      2,
	}, clock)

	// Distinct teams behind one shared address.
	l.RecordBooking(1, "203.0.113.7")
	clock.advance(2 * time.Second)
	l.RecordBooking(2, "203.0.113.7")
	clock.advance(2 * time.Second)

	res := l.CheckBooking(3, "203.0.113.7")
	if res.Allowed {
		t.Fatal("expected third attempt from the shared IP to be blocked")
	}
	if res.Reason != "ip_hourly_limit" {
		t.Errorf("reason = %q, want ip_hourly_limit", res.Reason)
	}

	if res := l.CheckBooking(3, "198.51.100.4"); !res.Allowed {
		t.Fatalf("expected a different IP to be unaffected, got reason %q", res.Reason)
	}
}

func TestRecordBookingRollsWindowAfterHour(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, &Config{
		BookingCooldown:   time.Second,
		BookingMaxPerHour: 2,
		MaxIPPerHour:      60,
	}, clock)

	l.RecordBooking(1, "203.0.113.7")
	clock.advance(2 * time.Second)
	l.RecordBooking(1, "203.0.113.7")

	clock.advance(61 * time.Minute)
	l.RecordBooking(1, "203.0.113.7")
	clock.advance(2 * time.Second)

	// Only one booking counted in the new window.
	if res := l.CheckBooking(1, "203.0.113.7"); !res.Allowed {
		t.Fatalf("expected new window to count from scratch, got reason %q", res.Reason)
	}
}

func TestCleanupDropsStaleEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := newTestLimiter(t, DefaultConfig(), clock)

	l.RecordBooking(1, "203.0.113.7")
	clock.advance(2 * time.Hour)
	l.cleanup()

	l.mu.RLock()
	teams, clients := len(l.byTeam), len(l.byClient)
	l.mu.RUnlock()
	if teams != 0 || clients != 0 {
		t.Errorf("expected stale entries evicted, have %d team / %d client entries", teams, clients)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		trustProxy bool
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded-for ignored without trust",
			remoteAddr: "10.0.0.5:54321",
			xff:        "203.0.113.7",
			want:       "10.0.0.5",
		},
		{
			name:       "forwarded-for rightmost public with trust",
			remoteAddr: "10.0.0.5:54321",
			xff:        "198.51.100.4, 203.0.113.7, 192.168.1.1",
			trustProxy: true,
			want:       "203.0.113.7",
		},
		{
			name:       "real-ip fallback with trust",
			remoteAddr: "10.0.0.5:54321",
			xRealIP:    "203.0.113.7",
			trustProxy: true,
			want:       "203.0.113.7",
		},
		{
			name:       "bare address without port",
			remoteAddr: "203.0.113.7",
			want:       "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/v1/reservations", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if got := GetClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

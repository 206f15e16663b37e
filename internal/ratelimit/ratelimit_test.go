// File: internal/ratelimit/ratelimit_test.go
package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		WindowSize:    50 * time.Millisecond,
		MaxAttempts:   3,
		BanDuration:   100 * time.Millisecond,
		CleanupPeriod: time.Hour,
	}
}

func TestLimiter_AllowWithinBudget(t *testing.T) {
	l := New(testConfig())
	defer l.Close()

	for i := 0; i < 3; i++ {
		allowed, status := l.Allow("1.2.3.4")
		if !allowed {
			t.Fatalf("attempt %d: expected allowed", i+1)
		}
		if want := 3 - (i + 1); status.Remaining != want {
			t.Errorf("attempt %d: Remaining = %d, want %d", i+1, status.Remaining, want)
		}
	}
}

func TestLimiter_BansOnExcess(t *testing.T) {
	l := New(testConfig())
	defer l.Close()

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4")
	}

	allowed, status := l.Allow("1.2.3.4")
	if allowed {
		t.Fatal("fourth attempt should be denied")
	}
	if !status.Banned {
		t.Error("fourth attempt should report a ban")
	}
	if status.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", status.RetryAfter)
	}

	// Still banned even though the window itself would have reset.
	allowed, status = l.Allow("1.2.3.4")
	if allowed || !status.Banned {
		t.Error("identifier should stay banned on repeat attempts")
	}
}

func TestLimiter_BanExpires(t *testing.T) {
	cfg := testConfig()
	cfg.BanDuration = 20 * time.Millisecond
	l := New(cfg)
	defer l.Close()

	for i := 0; i < 4; i++ {
		l.Allow("1.2.3.4")
	}
	time.Sleep(60 * time.Millisecond)

	allowed, status := l.Allow("1.2.3.4")
	if !allowed {
		t.Fatalf("expected fresh window after ban expiry, got %+v", status)
	}
}

func TestLimiter_WindowResets(t *testing.T) {
	l := New(testConfig())
	defer l.Close()

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4")
	}
	time.Sleep(60 * time.Millisecond)

	allowed, status := l.Allow("1.2.3.4")
	if !allowed {
		t.Fatal("expected allow after window elapsed")
	}
	if status.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2 after window reset", status.Remaining)
	}
}

func TestLimiter_ResetClearsBucket(t *testing.T) {
	l := New(testConfig())
	defer l.Close()

	for i := 0; i < 4; i++ {
		l.Allow("1.2.3.4")
	}
	l.Reset("1.2.3.4")

	allowed, status := l.Allow("1.2.3.4")
	if !allowed {
		t.Fatal("expected allow after reset")
	}
	if status.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", status.Remaining)
	}
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	l := New(testConfig())
	defer l.Close()

	for i := 0; i < 4; i++ {
		l.Allow("1.2.3.4")
	}
	allowed, _ := l.Allow("5.6.7.8")
	if !allowed {
		t.Error("a ban on one identifier must not affect another")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.1:54321",
			want:       "192.0.2.1",
		},
		{
			name:       "x-forwarded-for first hop",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for single value",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

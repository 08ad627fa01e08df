package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, 10, time.Second)
	ip := "127.0.0.1"

	for i := range 5 {
		assert.True(t, rl.Allow(ip), "connection %d", i)
	}
	assert.False(t, rl.Allow(ip), "sixth connection in a second")
	assert.True(t, rl.IsBanned(ip))
	assert.False(t, rl.IsBanned("10.9.9.9"))
}

func TestRateLimiter_BanExpires(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, 50, 200*time.Millisecond)
	ip := "192.168.1.1"

	assert.True(t, rl.Allow(ip))
	assert.True(t, rl.Allow(ip))
	assert.False(t, rl.Allow(ip))

	time.Sleep(1100 * time.Millisecond)

	assert.False(t, rl.IsBanned(ip))
	assert.True(t, rl.Allow(ip))
}

func TestRateLimiter_MinuteLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(100, 5, time.Second)
	ip := "10.0.0.1"

	for range 5 {
		assert.True(t, rl.Allow(ip))
	}
	assert.False(t, rl.Allow(ip))
}

func TestRateLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(100, 200, time.Second)
	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			if rl.Allow("172.16.0.1") {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(50), allowed.Load())
}

func TestRateLimiter_Prune(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, 10, time.Second)
	rl.Allow("1.1.1.1")

	assert.Zero(t, rl.Prune(time.Now()))
	assert.Equal(t, 1, rl.Prune(time.Now().Add(11*time.Minute)))
}

func TestIPFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ip      string
		setup   func(*IPFilter)
		allowed bool
	}{
		{name: "default allow", ip: "192.168.1.1", allowed: true},
		{
			name:    "blacklisted",
			ip:      "192.168.1.2",
			setup:   func(f *IPFilter) { f.AddToBlacklist("192.168.1.2") },
			allowed: false,
		},
		{
			name: "removed from blacklist",
			ip:   "192.168.1.3",
			setup: func(f *IPFilter) {
				f.AddToBlacklist("192.168.1.3")
				f.RemoveFromBlacklist("192.168.1.3")
			},
			allowed: true,
		},
		{
			name:    "not in whitelist",
			ip:      "192.168.1.4",
			setup:   func(f *IPFilter) { f.AddToWhitelist("10.0.0.1") },
			allowed: false,
		},
		{
			name:    "in whitelist",
			ip:      "10.0.0.1",
			setup:   func(f *IPFilter) { f.AddToWhitelist("10.0.0.1") },
			allowed: true,
		},
		{
			name: "blacklist beats whitelist",
			ip:   "10.0.0.2",
			setup: func(f *IPFilter) {
				f.AddToWhitelist("10.0.0.2")
				f.AddToBlacklist("10.0.0.2")
			},
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := NewIPFilter()
			if tt.setup != nil {
				tt.setup(f)
			}
			assert.Equal(t, tt.allowed, f.IsAllowed(tt.ip))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "direct", remoteAddr: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "no port", remoteAddr: "192.168.1.9", want: "192.168.1.9"},
		{
			name:       "forwarded chain",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2, 10.0.0.3"},
			want:       "203.0.113.1",
		},
		{
			name:       "real ip",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "203.0.113.2"},
			want:       "203.0.113.2",
		},
		{
			name:       "forwarded wins over real ip",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.3",
				"X-Real-IP":       "203.0.113.4",
			},
			want: "203.0.113.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(5)
	clientID := "client1"

	for i := range 5 {
		allowed, warning := ml.AllowMessage(clientID)
		assert.True(t, allowed)
		// warned once past half the limit
		assert.Equal(t, i >= 2, warning, "message %d", i)
	}

	allowed, warning := ml.AllowMessage(clientID)
	assert.False(t, allowed)
	assert.True(t, warning)
	assert.Equal(t, 1, ml.GetWarningCount(clientID))
}

func TestMessageRateLimiter_RemoveClient(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(2)
	clientID := "temp-client"
	for range 4 {
		ml.AllowMessage(clientID)
	}
	assert.Equal(t, 2, ml.GetWarningCount(clientID))

	ml.RemoveClient(clientID)

	assert.Zero(t, ml.GetWarningCount(clientID))
	allowed, warning := ml.AllowMessage(clientID)
	assert.True(t, allowed)
	assert.False(t, warning)
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	all := NewOriginChecker([]string{"*"})
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")
	assert.True(t, all.Check(req))

	oc := NewOriginChecker([]string{"https://example.com", "https://App.example.com"})
	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://example.com", true},
		{"https://app.example.com", true},
		{"https://evil.com", false},
		{"http://example.com", false},
		{"", true},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.allowed, oc.Check(req), "origin %q", tt.origin)
	}
}

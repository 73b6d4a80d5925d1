package handler

import (
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	loginRate  = 0.2 // one attempt every five seconds once the burst is spent
	loginBurst = 5
	staleAfter = 10 * time.Minute
)

// LoginThrottle limits credential submissions per client so a stuck form or
// script cannot hammer the blog server. Safe for concurrent use.
type LoginThrottle struct {
	mu      sync.Mutex
	clients map[string]*allowance
	rate    float64 // attempts regained per second
	burst   float64
	now     func() time.Time
	swept   time.Time
}

type allowance struct {
	tokens float64
	seen   time.Time
}

// NewLoginThrottle allows burst attempts per client, regaining rate attempts
// per second.
func NewLoginThrottle(rate, burst float64) *LoginThrottle {
	return &LoginThrottle{
		clients: make(map[string]*allowance),
		rate:    rate,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes one attempt for key and reports whether it was available.
func (t *LoginThrottle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.swept) > staleAfter {
		t.sweepLocked(now)
	}
	a, ok := t.clients[key]
	if !ok {
		a = &allowance{tokens: t.burst, seen: now}
		t.clients[key] = a
	}
	a.tokens = min(a.tokens+now.Sub(a.seen).Seconds()*t.rate, t.burst)
	a.seen = now

	if a.tokens < 1 {
		return false
	}
	a.tokens--
	return true
}

// Sweep forgets clients idle for longer than staleAfter. Allow sweeps on its
// own at most once per staleAfter.
func (t *LoginThrottle) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked(t.now())
}

func (t *LoginThrottle) sweepLocked(now time.Time) {
	t.swept = now
	cutoff := now.Add(-staleAfter)
	for key, a := range t.clients {
		if a.seen.Before(cutoff) {
			delete(t.clients, key)
		}
	}
}

func (t *LoginThrottle) clientCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

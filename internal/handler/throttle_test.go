package handler

import (
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newThrottle(rate, burst float64) (*LoginThrottle, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	th := NewLoginThrottle(rate, burst)
	th.now = clock.now
	return th, clock
}

func TestLoginThrottleAllowsBurst(t *testing.T) {
	th, _ := newThrottle(1, 3)
	for i := range 3 {
		if !th.Allow("k") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if th.Allow("k") {
		t.Fatal("4th attempt should be denied")
	}
}

func TestLoginThrottleRefills(t *testing.T) {
	th, clock := newThrottle(1, 1)
	if !th.Allow("k") {
		t.Fatal("first attempt should be allowed")
	}
	if th.Allow("k") {
		t.Fatal("second attempt should be denied")
	}
	clock.advance(time.Second)
	if !th.Allow("k") {
		t.Fatal("attempt after refill should be allowed")
	}
}

func TestLoginThrottleKeysAreIndependent(t *testing.T) {
	th, _ := newThrottle(0, 1)
	th.Allow("a")
	if th.Allow("a") {
		t.Fatal("a should be exhausted")
	}
	if !th.Allow("b") {
		t.Fatal("b has its own allowance")
	}
}

func TestLoginThrottleSweep(t *testing.T) {
	th, clock := newThrottle(1, 1)
	th.Allow("old")
	clock.advance(staleAfter + time.Second)
	th.Allow("new")
	th.Sweep()
	if n := th.clientCount(); n != 1 {
		t.Fatalf("expected 1 client after sweep, got %d", n)
	}
}

func TestLoginThrottleSweepsWhileAllowing(t *testing.T) {
	th, clock := newThrottle(1, 1)
	th.Allow("old")
	clock.advance(staleAfter + time.Second)
	th.Allow("new")
	if n := th.clientCount(); n != 1 {
		t.Fatalf("expected stale client dropped by Allow, got %d clients", n)
	}
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	if got := clientKey(r); got != "10.0.0.7" {
		t.Fatalf("expected host only, got %q", got)
	}
	r.RemoteAddr = "pipe"
	if got := clientKey(r); got != "pipe" {
		t.Fatalf("expected raw addr fallback, got %q", got)
	}
}

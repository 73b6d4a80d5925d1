package observe_test

import (
	"testing"

	"github.com/msomdec/blog-desk/internal/observe"
)

func TestSubjectPublishInOrder(t *testing.T) {
	var s observe.Subject[int]
	var got []string

	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })
	s.Publish(1)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
}

func TestSubjectCancel(t *testing.T) {
	var s observe.Subject[string]
	calls := 0
	cancel := s.Subscribe(func(string) { calls++ })

	s.Publish("x")
	cancel()
	cancel()
	s.Publish("y")

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if s.Len() != 0 {
		t.Fatalf("expected no subscribers, got %d", s.Len())
	}
}

func TestSubjectUnsubscribeDuringPublish(t *testing.T) {
	var s observe.Subject[int]
	var cancel func()
	calls := 0
	cancel = s.Subscribe(func(int) {
		calls++
		cancel()
	})

	s.Publish(1)
	s.Publish(2)

	if calls != 1 {
		t.Fatalf("expected subscriber to run once, got %d", calls)
	}
}

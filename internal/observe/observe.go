// Package observe provides a minimal typed publish/subscribe primitive used to
// propagate state changes from the session, list and notification layers to
// whatever renders them.
package observe

import (
	"slices"
	"sync"
)

// Subject fans a value out to every current subscriber. The zero value is
// ready to use and safe for concurrent use.
type Subject[T any] struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(T)
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (s *Subject[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[int]func(T))
	}
	id := s.next
	s.next++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Publish delivers v to all subscribers in registration order.
// Subscribers run on the caller's goroutine, outside the subject's lock, so
// they may subscribe or unsubscribe from within the callback.
func (s *Subject[T]) Publish(v T) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(T), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

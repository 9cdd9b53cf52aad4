// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relayview

import (
	"context"
	"errors"
	"sync"

	"github.com/ef-ds/deque"
	"github.com/google/uuid"
)

var ErrSubscriptionClosed = errors.New("subscription closed")

// Subscription is an ordered stream of views. Views are queued without
// bound so a slow reader never blocks the tracker.
type Subscription struct {
	id      uuid.UUID
	tracker *Tracker

	mu     sync.Mutex
	queue  deque.Deque
	notify chan struct{}
	closed bool
}

func newSubscription(tracker *Tracker) *Subscription {
	return &Subscription{
		id:      uuid.New(),
		tracker: tracker,
		notify:  make(chan struct{}, 1),
	}
}

// ID returns the subscription identifier.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

func (s *Subscription) push(view *View) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue.PushBack(view)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until the next view is available, ctx is done or the
// subscription is closed.
func (s *Subscription) Next(ctx context.Context) (*View, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, ErrSubscriptionClosed
		}
		element, ok := s.queue.PopFront()
		s.mu.Unlock()

		if ok {
			return element.(*View), nil
		}

		select {
		case <-s.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued views.
func (s *Subscription) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Close detaches the subscription from its tracker and drops queued views.
func (s *Subscription) Close() {
	s.tracker.unsubscribe(s.id)

	s.mu.Lock()
	s.closed = true
	s.queue = deque.Deque{}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

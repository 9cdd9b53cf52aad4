// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package overseer

import (
	"context"
	"sync"

	"github.com/ef-ds/deque"
)

// mailbox queues messages for one subsystem without bound, so a busy
// subsystem never blocks the others, and delivers them in order.
type mailbox struct {
	mu     sync.Mutex
	queue  deque.Deque
	notify chan struct{}
	out    chan any
}

func newMailbox() *mailbox {
	return &mailbox{
		notify: make(chan struct{}, 1),
		out:    make(chan any),
	}
}

func (m *mailbox) push(msg any) {
	m.mu.Lock()
	m.queue.PushBack(msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) pop() (msg any, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.PopFront()
}

// forward delivers queued messages to out until ctx is done.
func (m *mailbox) forward(ctx context.Context) {
	for {
		msg, ok := m.pop()
		if !ok {
			select {
			case <-m.notify:
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case m.out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

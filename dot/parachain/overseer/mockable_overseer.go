// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package overseer

import (
	"context"
	"sync"
	"testing"
)

// MockableOverseer runs a single subsystem under test, lets the test feed it
// signals and messages, and checks what the subsystem sends back.
type MockableOverseer struct {
	t      *testing.T
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	SubsystemsToOverseer chan any
	overseerToSubsystem  chan any
	subSystem            Subsystem
	runErr               chan error

	// expected actions for overseer messages we receive from the subsystem.
	// need to return false if the message is unexpected
	mu      sync.Mutex
	actions []func(msg any) bool
	done    chan struct{}
}

func NewMockableOverseer(t *testing.T) *MockableOverseer {
	ctx, cancel := context.WithCancel(context.Background())

	return &MockableOverseer{
		t:                    t,
		ctx:                  ctx,
		cancel:               cancel,
		SubsystemsToOverseer: make(chan any),
		runErr:               make(chan error, 1),
		done:                 make(chan struct{}),
	}
}

func (m *MockableOverseer) RegisterSubsystem(subsystem Subsystem) <-chan any {
	m.overseerToSubsystem = make(chan any)
	m.subSystem = subsystem
	return m.overseerToSubsystem
}

func (m *MockableOverseer) Start() error {
	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.runErr <- m.subSystem.Run(m.ctx, m.overseerToSubsystem, m.SubsystemsToOverseer)
	}()
	go func() {
		defer m.wg.Done()
		m.processMessages()
	}()
	return nil
}

// Stop cancels the subsystem and returns the error its Run returned.
func (m *MockableOverseer) Stop() error {
	m.cancel()
	m.wg.Wait()
	return <-m.runErr
}

// ReceiveMessage method is to receive overseer messages in a subsystem which we are testing
func (m *MockableOverseer) ReceiveMessage(msg any) {
	select {
	case m.overseerToSubsystem <- msg:
	case <-m.ctx.Done():
	}
}

// ExpectActions method is to set expected actions for overseer messages we receive from the subsystem.
// actions are expected in the order they are set.
// all the functions in the arguments should return false if the message is unexpected.
func (m *MockableOverseer) ExpectActions(fns ...func(msg any) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, fns...)
}

// Done is closed once every expected action ran.
func (m *MockableOverseer) Done() <-chan struct{} {
	return m.done
}

func (m *MockableOverseer) processMessages() {
	actionIndex := 0
	for {
		select {
		case msg := <-m.SubsystemsToOverseer:
			if msg == nil {
				continue
			}

			m.mu.Lock()
			actions := m.actions
			m.mu.Unlock()

			if actionIndex >= len(actions) {
				continue
			}

			if !actions[actionIndex](msg) {
				m.t.Errorf("unexpected message: %T", msg)
			}
			actionIndex++
			if actionIndex == len(actions) {
				close(m.done)
			}
		case <-m.ctx.Done():
			return
		}
	}
}

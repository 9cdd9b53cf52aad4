// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package overseer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ChainSafe/collator/dot/parachain/relayview"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
)

var (
	logger = log.NewFromGlobal(log.AddContext("pkg", "parachain-overseer"))

	ErrUnknownOverseerMessage = errors.New("unknown overseer message type")
	ErrSubsystemFailed        = errors.New("subsystem failed")
)

const stopTimeout = 5 * time.Second

// Overseer runs the parachain subsystems and feeds each of them, in order,
// the signals derived from relay view updates and the messages of the
// other subsystems.
type Overseer struct {
	ctx                  context.Context
	cancel               context.CancelFunc
	views                ViewSubscriber
	errChan              chan error // channel for overseer to send errors to service that started it
	SubsystemsToOverseer chan any
	subsystems           []Subsystem
	mailboxes            map[Subsystem]*mailbox
	wg                   sync.WaitGroup
}

// NewOverseer returns an overseer deriving signals from views.
func NewOverseer(views ViewSubscriber) *Overseer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Overseer{
		ctx:                  ctx,
		cancel:               cancel,
		views:                views,
		errChan:              make(chan error, 1),
		SubsystemsToOverseer: make(chan any),
		mailboxes:            make(map[Subsystem]*mailbox),
	}
}

// RegisterSubsystem registers a subsystem with the overseer and returns
// the channel the subsystem receives overseer messages on.
func (o *Overseer) RegisterSubsystem(subsystem Subsystem) <-chan any {
	box := newMailbox()
	o.subsystems = append(o.subsystems, subsystem)
	o.mailboxes[subsystem] = box
	return box.out
}

// Errors returns the channel errors requiring the node to stop are sent on.
func (o *Overseer) Errors() <-chan error {
	return o.errChan
}

// Start starts the registered subsystems and the signal fan out.
func (o *Overseer) Start() error {
	sub := o.views.Subscribe()

	for _, subsystem := range o.subsystems {
		box := o.mailboxes[subsystem]

		o.wg.Add(2)
		go func() {
			defer o.wg.Done()
			box.forward(o.ctx)
		}()

		go func(sub Subsystem) {
			defer o.wg.Done()
			err := sub.Run(o.ctx, box.out, o.SubsystemsToOverseer)
			if err != nil {
				logger.Errorf("running subsystem %s failed: %s", sub.Name(), err)
				o.reportError(fmt.Errorf("%w: %s: %w", ErrSubsystemFailed, sub.Name(), err))
			}
			logger.Infof("subsystem %s stopped", sub.Name())
		}(subsystem)
	}

	o.wg.Add(2)
	go func() {
		defer o.wg.Done()
		defer sub.Close()
		o.handleViews(sub)
	}()
	go func() {
		defer o.wg.Done()
		o.processMessages()
	}()

	return nil
}

// handleViews turns each relay view into signals for all subsystems.
func (o *Overseer) handleViews(sub *relayview.Subscription) {
	var previous *relayview.View
	for {
		view, err := sub.Next(o.ctx)
		if err != nil {
			if o.ctx.Err() == nil {
				logger.Errorf("relay view subscription ended: %s", err)
			}
			return
		}

		if previous != nil && view.Version <= previous.Version {
			logger.Warnf("dropping out of order relay view v%d after v%d", view.Version, previous.Version)
			continue
		}

		for _, signal := range signalsFor(previous, view) {
			o.broadcast(signal)
		}
		previous = view
	}
}

func signalsFor(previous, view *relayview.View) (signals []any) {
	if previous == nil || view.Changes&(relayview.BestChanged|relayview.InclusionChanged) != 0 {
		update := ActiveLeavesUpdateSignal{
			Activated: &ActivatedLeaf{Hash: view.Best.Hash, Number: view.Best.Number},
			View:      view,
		}
		if previous != nil && previous.Best.Hash != view.Best.Hash {
			update.Deactivated = []common.Hash{previous.Best.Hash}
		}
		signals = append(signals, update)
	}

	if previous == nil || view.Changes&relayview.FinalizedChanged != 0 {
		signals = append(signals, BlockFinalizedSignal{
			Hash:        view.Finalized.Hash,
			BlockNumber: view.Finalized.Number,
			View:        view,
		})
	}
	return signals
}

func (o *Overseer) broadcast(msg any) {
	for _, subsystem := range o.subsystems {
		o.mailboxes[subsystem].push(msg)
	}
}

func (o *Overseer) processMessages() {
	for {
		select {
		case msg := <-o.SubsystemsToOverseer:
			switch msg := msg.(type) {
			case CandidateSubmitted:
				o.broadcast(msg)
			case StorageFault:
				logger.Criticalf("local storage fault: %s", msg)
				o.reportError(msg)
			default:
				logger.Errorf("%s: %T", ErrUnknownOverseerMessage, msg)
			}
		case <-o.ctx.Done():
			logger.Info("overseer stopping")
			return
		}
	}
}

func (o *Overseer) reportError(err error) {
	select {
	case o.errChan <- err:
	default:
		logger.Debugf("dropping overseer error: %s", err)
	}
}

// Stop stops the subsystems and waits for them to return.
func (o *Overseer) Stop() error {
	o.cancel()

	// wait for subsystems to stop
	if waitTimeout(&o.wg, stopTimeout) {
		return fmt.Errorf("subsystems did not stop within %s", stopTimeout)
	}
	return nil
}

func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) (timeouted bool) {
	c := make(chan struct{})
	go func() {
		defer close(c)
		wg.Wait()
	}()
	timeoutTimer := time.NewTimer(timeout)
	select {
	case <-c:
		if !timeoutTimer.Stop() {
			<-timeoutTimer.C
		}
		return false // completed normally
	case <-timeoutTimer.C:
		return true // timed out
	}
}

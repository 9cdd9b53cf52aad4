// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collation

import (
	"context"
	"errors"
	"time"

	"github.com/ChainSafe/collator/dot/parachain/overseer"
	"github.com/ChainSafe/collator/dot/parachain/relayview"
)

// Name is the name of the collation subsystem.
const Name = "collation"

// Subsystem runs the pipeline on every relay view update and, when tick is
// set, on a timer.
type Subsystem struct {
	pipeline *Pipeline
	views    ViewSource
	tick     time.Duration
}

var _ overseer.Subsystem = (*Subsystem)(nil)

// NewSubsystem returns the collation subsystem driving pipeline.
func NewSubsystem(pipeline *Pipeline, views ViewSource, tick time.Duration) *Subsystem {
	return &Subsystem{
		pipeline: pipeline,
		views:    views,
		tick:     tick,
	}
}

// Name implements overseer.Subsystem.
func (*Subsystem) Name() string {
	return Name
}

// Run implements overseer.Subsystem.
func (s *Subsystem) Run(ctx context.Context, overseerToSubSystem <-chan any,
	subSystemToOverseer chan<- any) error {
	var tick <-chan time.Time
	if s.tick > 0 {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case msg := <-overseerToSubSystem:
			switch msg := msg.(type) {
			case overseer.ActiveLeavesUpdateSignal:
				if s.isCurrent(msg.View) {
					s.trigger(ctx, subSystemToOverseer)
				}
			case overseer.BlockFinalizedSignal, overseer.CandidateSubmitted:
			default:
				logger.Errorf("%s: %T", overseer.ErrUnknownOverseerMessage, msg)
			}
		case <-tick:
			s.trigger(ctx, subSystemToOverseer)
		case <-ctx.Done():
			s.pipeline.Stop()
			return nil
		}
	}
}

// isCurrent skips signals for views that were already replaced.
func (s *Subsystem) isCurrent(view *relayview.View) bool {
	current, err := s.views.Current()
	if err != nil || view == nil {
		return false
	}
	return current.Version == view.Version
}

func (s *Subsystem) trigger(ctx context.Context, subSystemToOverseer chan<- any) {
	candidate, err := s.pipeline.Trigger(ctx)
	var msg any
	switch {
	case errors.Is(err, ErrStorageFault):
		msg = overseer.StorageFault{ConsecutiveFailures: s.pipeline.ProofFaults(), Err: err}
	case err != nil, candidate == nil:
		return
	default:
		msg = overseer.CandidateSubmitted{
			BlockHash:   candidate.Hash(),
			BlockNumber: candidate.Block.Header.Number,
			RelayParent: candidate.RelayParent.Hash,
		}
	}

	select {
	case subSystemToOverseer <- msg:
	case <-ctx.Done():
	}
}

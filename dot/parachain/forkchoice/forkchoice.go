// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package forkchoice

import (
	"context"
	"fmt"

	"github.com/ChainSafe/collator/dot/parachain/overseer"
	"github.com/ChainSafe/collator/dot/parachain/relayview"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "fork-choice"))

// Name is the name of the fork choice subsystem.
const Name = "fork-choice"

// BlockState is the local parachain block store.
type BlockState interface {
	HasHeader(hash common.Hash) (bool, error)
	MarkSeen(hash common.Hash) error
	SetIncluded(hash common.Hash) error
	SetFinalisedHash(hash, relayBlock common.Hash) error
	GetHighestFinalisedHash() common.Hash
	BestBlockHash(lastIncluded common.Hash) (common.Hash, error)
	BestBlockHeader(lastIncluded common.Hash) (*types.Header, error)
}

// ViewSource returns the current relay view.
type ViewSource interface {
	Current() (*relayview.View, error)
}

// ForkChoice keeps the local block tree in line with what the relay chain
// includes and finalizes. The canonical head is always a descendant of
// the block the relay chain last included.
type ForkChoice struct {
	blockState BlockState
	views      ViewSource
}

var _ overseer.Subsystem = (*ForkChoice)(nil)

// NewForkChoice returns the fork choice subsystem over blockState.
func NewForkChoice(blockState BlockState, views ViewSource) *ForkChoice {
	return &ForkChoice{
		blockState: blockState,
		views:      views,
	}
}

// Name implements overseer.Subsystem.
func (*ForkChoice) Name() string {
	return Name
}

// Run implements overseer.Subsystem.
func (f *ForkChoice) Run(ctx context.Context, overseerToSubSystem <-chan any, _ chan<- any) error {
	for {
		select {
		case msg := <-overseerToSubSystem:
			f.processMessage(msg)
		case <-ctx.Done():
			return nil
		}
	}
}

func (f *ForkChoice) processMessage(msg any) {
	switch msg := msg.(type) {
	case overseer.ActiveLeavesUpdateSignal:
		if msg.View != nil {
			f.markIncluded(msg.View.LastIncluded.Hash)
		}
	case overseer.BlockFinalizedSignal:
		if msg.View != nil {
			f.finalize(msg.View)
		}
	case overseer.CandidateSubmitted:
		if err := f.blockState.MarkSeen(msg.BlockHash); err != nil {
			logger.Warnf("marking block %s as seen: %s", msg.BlockHash, err)
		}
	default:
		logger.Errorf("%s: %T", overseer.ErrUnknownOverseerMessage, msg)
	}
}

func (f *ForkChoice) markIncluded(hash common.Hash) bool {
	if hash.IsEmpty() {
		return false
	}

	known, err := f.blockState.HasHeader(hash)
	if err != nil {
		logger.Errorf("checking for included block %s: %s", hash, err)
		return false
	}
	if !known {
		logger.Debugf("included block %s not imported yet", hash)
		return false
	}

	if err = f.blockState.SetIncluded(hash); err != nil {
		logger.Warnf("marking block %s as included: %s", hash, err)
		return false
	}
	return true
}

// finalize finalizes the parachain block included as of the finalized
// relay block and prunes the forks not descending from it.
func (f *ForkChoice) finalize(view *relayview.View) {
	hash := view.FinalizedIncluded.Hash
	if hash == f.blockState.GetHighestFinalisedHash() {
		return
	}
	if !f.markIncluded(hash) {
		return
	}

	if err := f.blockState.SetFinalisedHash(hash, view.Finalized.Hash); err != nil {
		logger.Warnf("finalising block %s as of relay block %s: %s", hash, view.Finalized, err)
	}
}

// BestBlockHash returns the canonical parachain head for the current relay view.
func (f *ForkChoice) BestBlockHash() (common.Hash, error) {
	view, err := f.views.Current()
	if err != nil {
		return common.Hash{}, err
	}

	best, err := f.blockState.BestBlockHash(view.LastIncluded.Hash)
	if err != nil {
		return common.Hash{}, fmt.Errorf("selecting best block above %s: %w", view.LastIncluded, err)
	}
	return best, nil
}

// BestBlockHeader returns the header of the canonical parachain head.
func (f *ForkChoice) BestBlockHeader() (*types.Header, error) {
	view, err := f.views.Current()
	if err != nil {
		return nil, err
	}
	return f.blockState.BestBlockHeader(view.LastIncluded.Hash)
}

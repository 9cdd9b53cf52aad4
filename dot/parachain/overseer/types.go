// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package overseer

import (
	"context"
	"fmt"

	"github.com/ChainSafe/collator/dot/parachain/relayview"
	"github.com/ChainSafe/collator/lib/common"
)

// ActivatedLeaf is a relay chain block which we care to work on.
type ActivatedLeaf struct {
	Hash   common.Hash
	Number uint32
}

// ActiveLeavesUpdateSignal is sent when the relay chain best block or the
// parachain head it includes changes.
//
// note: activated field indicates deltas, not complete sets.
type ActiveLeavesUpdateSignal struct {
	Activated *ActivatedLeaf
	// Relay chain block hashes no longer of interest.
	Deactivated []common.Hash
	// View is the relay view the signal was derived from.
	View *relayview.View
}

// BlockFinalizedSignal signal is used to inform subsystems of a finalized relay chain block.
type BlockFinalizedSignal struct {
	Hash        common.Hash
	BlockNumber uint32
	View        *relayview.View
}

// CandidateSubmitted is sent by the collation subsystem once a validator
// accepted the candidate of a parachain block.
type CandidateSubmitted struct {
	BlockHash   common.Hash
	BlockNumber uint32
	RelayParent common.Hash
}

// StorageFault is sent when proofs repeatedly cannot be built from local
// state, which points at pruned or corrupted storage.
type StorageFault struct {
	ConsecutiveFailures int
	Err                 error
}

func (f StorageFault) Error() string {
	return fmt.Sprintf("%d consecutive proof construction failures: %s", f.ConsecutiveFailures, f.Err)
}

func (f StorageFault) Unwrap() error {
	return f.Err
}

// Subsystem is an interface for subsystems to be registered with the overseer.
type Subsystem interface {
	// Run runs the subsystem until ctx is done. Signals and messages from
	// the overseer arrive on overseerToSubSystem in order.
	Run(ctx context.Context, overseerToSubSystem <-chan any, subSystemToOverseer chan<- any) error
	Name() string
}

// ViewSubscriber provides ordered relay view subscriptions.
type ViewSubscriber interface {
	Subscribe() *relayview.Subscription
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relaychain

import (
	"context"
	"errors"
	"fmt"

	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/runtime"
)

var (
	ErrParaHeadNotFound = errors.New("parachain head not found")
	ErrSubscriptionDone = errors.New("subscription ended")
)

// Header is the part of a relay chain header the collator needs.
type Header struct {
	Hash       common.Hash
	ParentHash common.Hash
	Number     uint32
	StateRoot  common.Hash
}

// String returns the block number and hash.
func (h Header) String() string {
	return fmt.Sprintf("#%d (%s)", h.Number, h.Hash.Short())
}

// HeadSubscription is a stream of relay chain headers.
type HeadSubscription interface {
	Headers() <-chan Header
	// Err delivers the error ending the subscription.
	Err() <-chan error
	Unsubscribe()
}

// Client is the relay chain as seen by the collator.
type Client interface {
	BestHeader(ctx context.Context) (Header, error)
	FinalizedHeader(ctx context.Context) (Header, error)
	SubscribeNewHeads(ctx context.Context) (HeadSubscription, error)
	SubscribeFinalizedHeads(ctx context.Context) (HeadSubscription, error)
	// ParaHead returns the head data of the parachain included as of the
	// relay block at.
	ParaHead(ctx context.Context, paraID parachaintypes.ParaID, at common.Hash) (parachaintypes.HeadData, error)
	// DownwardMessages returns the messages queued for the parachain as of
	// the relay block at.
	DownwardMessages(ctx context.Context, paraID parachaintypes.ParaID, at common.Hash) (
		[]runtime.InboundDownwardMessage, error)
	Close()
}

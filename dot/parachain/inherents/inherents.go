// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package inherents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	"github.com/ChainSafe/collator/dot/parachain/relayview"
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/pkg/scale"
	"go.uber.org/atomic"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "inherents"))

var (
	ErrInherentUnavailable = errors.New("inherent data unavailable")
	ErrBundleConsumed      = errors.New("inherent bundle already consumed")
)

// DefaultMaxDownwardMessages is the default number of downward messages
// embedded in a single block.
const DefaultMaxDownwardMessages = 32

// MessageSource returns the downward messages queued for a parachain.
type MessageSource interface {
	DownwardMessages(ctx context.Context, paraID parachaintypes.ParaID, at common.Hash) (
		[]runtime.InboundDownwardMessage, error)
}

// Bundle holds the relay chain facts for exactly one block construction.
type Bundle struct {
	RelayParent relaychain.Header
	// ViewVersion is the version of the relay view the bundle was built from.
	ViewVersion uint64

	data     runtime.InherentData
	consumed atomic.Bool
}

// Consume returns the inherent data. Only the first call succeeds.
func (b *Bundle) Consume() (runtime.InherentData, error) {
	if b.consumed.Swap(true) {
		return runtime.InherentData{}, fmt.Errorf("%w: relay parent %s", ErrBundleConsumed, b.RelayParent)
	}
	return b.data, nil
}

// Consumed returns whether the bundle was consumed.
func (b *Bundle) Consumed() bool {
	return b.consumed.Load()
}

// Digest returns the hash of the encoded inherent data.
func (b *Bundle) Digest() common.Hash {
	return common.Blake2bHash(scale.MustMarshal(b.data))
}

// DownwardMessages returns the number of downward messages in the bundle.
func (b *Bundle) DownwardMessages() int {
	return len(b.data.DownwardMessages)
}

// Provider builds inherent bundles from relay views.
type Provider struct {
	paraID      parachaintypes.ParaID
	messages    MessageSource
	maxMessages int
	now         func() time.Time
}

// NewProvider returns a provider reading downward messages of paraID from messages.
func NewProvider(paraID parachaintypes.ParaID, messages MessageSource, maxMessages int) *Provider {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxDownwardMessages
	}
	return &Provider{
		paraID:      paraID,
		messages:    messages,
		maxMessages: maxMessages,
		now:         time.Now,
	}
}

// Build returns a fresh bundle for a block built on top of the head last
// included as of the best relay block of view.
func (p *Provider) Build(ctx context.Context, view *relayview.View) (*Bundle, error) {
	if view == nil {
		return nil, fmt.Errorf("%w: no relay view", ErrInherentUnavailable)
	}

	if view.LastIncluded.Hash.IsEmpty() {
		return nil, fmt.Errorf("%w: no parachain head included as of relay block %s",
			ErrInherentUnavailable, view.Best)
	}

	messages, err := p.messages.DownwardMessages(ctx, p.paraID, view.Best.Hash)
	if err != nil {
		return nil, fmt.Errorf("%w: downward messages at relay block %s: %w",
			ErrInherentUnavailable, view.Best, err)
	}

	var selected []runtime.InboundDownwardMessage
	for _, message := range messages {
		if message.SentAt > view.Best.Number {
			continue
		}
		if len(selected) == p.maxMessages {
			break
		}
		selected = append(selected, message)
	}
	if len(selected) < len(messages) {
		logger.Debugf("embedding %d of %d downward messages queued at relay block %s",
			len(selected), len(messages), view.Best)
	}

	return &Bundle{
		RelayParent: view.Best,
		ViewVersion: view.Version,
		data: runtime.InherentData{
			RelayParentNumber:      view.Best.Number,
			RelayParentHash:        view.Best.Hash,
			RelayParentStorageRoot: view.Best.StateRoot,
			LastIncludedHead:       view.LastIncluded.Hash,
			DownwardMessages:       selected,
			Timestamp:              uint64(p.now().UnixMilli()),
		},
	}, nil
}

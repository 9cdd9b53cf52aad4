// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relayview

import (
	"errors"
	"sync"

	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "relayview"))

// SetLogLevel sets the level of the relay view logger.
func SetLogLevel(level log.Level) {
	logger.PatchLevel(level)
}

var ErrRelayUnavailable = errors.New("relay chain unavailable")

// Tracker holds the current relay view. It is the only writer of views;
// readers load the current snapshot without locking.
type Tracker struct {
	paraID parachaintypes.ParaID

	view      atomic.Pointer[View]
	available atomic.Bool

	// mu serialises writers and subscription changes so every subscriber
	// receives views in version order.
	mu            sync.Mutex
	version       uint64
	subscriptions map[uuid.UUID]*Subscription
	// headers holds the relay blocks seen above the finalized block, by hash.
	headers map[common.Hash]relaychain.Header

	metrics *metrics
}

// NewTracker returns a tracker for paraID with no view yet.
func NewTracker(paraID parachaintypes.ParaID) *Tracker {
	return &Tracker{
		paraID:        paraID,
		subscriptions: make(map[uuid.UUID]*Subscription),
		headers:       make(map[common.Hash]relaychain.Header),
		metrics:       newMetrics(),
	}
}

// ParaID returns the parachain the tracker follows.
func (t *Tracker) ParaID() parachaintypes.ParaID {
	return t.paraID
}

// Current returns the latest view. It fails with ErrRelayUnavailable
// before the first view and while the relay chain is disconnected.
func (t *Tracker) Current() (*View, error) {
	if !t.available.Load() {
		return nil, ErrRelayUnavailable
	}
	view := t.view.Load()
	if view == nil {
		return nil, ErrRelayUnavailable
	}
	return view, nil
}

// Available returns whether the relay chain is currently reachable.
func (t *Tracker) Available() bool {
	return t.available.Load()
}

// Subscribe returns a subscription starting at the current view, if any.
func (t *Tracker) Subscribe() *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub := newSubscription(t)
	t.subscriptions[sub.id] = sub

	if view := t.view.Load(); view != nil && t.available.Load() {
		sub.push(view)
	}
	return sub
}

func (t *Tracker) unsubscribe(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subscriptions, id)
}

// Reset replaces the view after a (re)connection to the relay chain. The
// finalized block never moves backwards, even across reconnections.
func (t *Tracker) Reset(best, finalized relaychain.Header, bestIncluded, finalizedIncluded IncludedHead) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := View{
		Best:              best,
		Finalized:         finalized,
		LastIncluded:      bestIncluded,
		FinalizedIncluded: finalizedIncluded,
	}

	current := t.view.Load()
	if current != nil && finalized.Number < current.Finalized.Number {
		logger.Warnf("relay chain reports finalized block %s below known finalized block %s, keeping the latter",
			finalized, current.Finalized)
		next.Finalized = current.Finalized
		next.FinalizedIncluded = current.FinalizedIncluded
	}

	if next.Best.Number <= next.Finalized.Number && next.Best.Hash != next.Finalized.Hash {
		next.Best = next.Finalized
		next.LastIncluded = next.FinalizedIncluded
	}

	t.headers = map[common.Hash]relaychain.Header{
		next.Best.Hash:      next.Best,
		next.Finalized.Hash: next.Finalized,
	}

	if current == nil {
		next.Changes = BestChanged | FinalizedChanged | InclusionChanged
	} else {
		next.Changes = diff(current, &next)
	}

	t.available.Store(true)
	t.metrics.available.Set(1)
	t.publish(next)
}

// UpdateBest handles a new relay chain best block and the parachain head
// included as of that block. It returns whether a view was published.
func (t *Tracker) UpdateBest(best relaychain.Header, included IncludedHead) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.view.Load()
	if current == nil || !t.available.Load() {
		return false
	}

	finalized := current.Finalized
	if best.Number < finalized.Number || (best.Number == finalized.Number && best.Hash != finalized.Hash) {
		logger.Debugf("ignoring best block %s not above finalized block %s", best, finalized)
		return false
	}

	t.headers[best.Hash] = best

	next := *current
	next.Best = best
	next.LastIncluded = included
	next.Changes = diff(current, &next)
	if next.Changes == 0 {
		return false
	}

	t.publish(next)
	return true
}

// UpdateFinalized handles a new relay chain finalized block and the
// parachain head included as of that block. Finalized blocks at or below
// the current finalized height are ignored. When the best block is not
// known to descend from the new finalized block, the finalized block
// becomes the best block until the next best notification. It returns
// whether a view was published.
func (t *Tracker) UpdateFinalized(finalized relaychain.Header, included IncludedHead) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.view.Load()
	if current == nil || !t.available.Load() {
		return false
	}

	if finalized.Number <= current.Finalized.Number {
		if finalized.Hash != current.Finalized.Hash {
			logger.Debugf("ignoring finalized block %s not above finalized block %s",
				finalized, current.Finalized)
		}
		return false
	}

	t.headers[finalized.Hash] = finalized

	next := *current
	next.Finalized = finalized
	next.FinalizedIncluded = included
	if !t.descends(current.Best, finalized) {
		logger.Debugf("best block %s does not descend from finalized block %s, moving best",
			current.Best, finalized)
		next.Best = finalized
		next.LastIncluded = included
	}
	next.Changes = diff(current, &next)

	for hash, header := range t.headers {
		if header.Number < finalized.Number {
			delete(t.headers, hash)
		}
	}

	t.publish(next)
	return true
}

// SetUnavailable marks the relay chain as disconnected. No view is
// published until the next Reset.
func (t *Tracker) SetUnavailable(reason error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.available.Swap(false) {
		logger.Warnf("relay chain unavailable: %s", reason)
	}
	t.metrics.available.Set(0)
}

// descends reports whether header is ancestor or one of its descendants
// known to the tracker. It must be called with the mutex held.
func (t *Tracker) descends(header, ancestor relaychain.Header) bool {
	for header.Number > ancestor.Number {
		parent, ok := t.headers[header.ParentHash]
		if !ok {
			return false
		}
		header = parent
	}
	return header.Hash == ancestor.Hash
}

// publish must be called with the mutex held.
func (t *Tracker) publish(next View) {
	t.version++
	next.Version = t.version

	view := &next
	t.view.Store(view)
	t.metrics.observe(view)

	logger.Debugf("relay view %s", view)

	for _, sub := range t.subscriptions {
		sub.push(view)
	}
}

func diff(previous, next *View) (changes Change) {
	if previous.Best.Hash != next.Best.Hash {
		changes |= BestChanged
	}
	if previous.Finalized.Hash != next.Finalized.Hash {
		changes |= FinalizedChanged
	}
	if previous.LastIncluded.Hash != next.LastIncluded.Hash ||
		previous.FinalizedIncluded.Hash != next.FinalizedIncluded.Hash {
		changes |= InclusionChanged
	}
	return changes
}

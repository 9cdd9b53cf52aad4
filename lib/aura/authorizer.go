// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package aura

import (
	"fmt"
	"time"

	"github.com/ChainSafe/collator/dot/parachain/relayview"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Authorized bool
	Slot       Slot
	// Deadline is the time by which the block must be authored.
	Deadline time.Time
	// AuthorityIndex is the index of the slot owner in the authority set.
	AuthorityIndex int
}

// Authorizer decides whether identity may author on top of the view at
// time now. Implementations are deterministic and free of side effects.
type Authorizer interface {
	Authorize(view *relayview.View, identity AuthorityID, now time.Time) (Decision, error)
}

// RoundRobinSlot authorizes the authorities in turn, one per slot.
type RoundRobinSlot struct {
	slotDuration time.Duration
	authorities  AuthoritySource
}

var _ Authorizer = (*RoundRobinSlot)(nil)

// NewRoundRobinSlot returns a round robin authorizer reading the authority
// set from authorities.
func NewRoundRobinSlot(slotDuration time.Duration, authorities AuthoritySource) (*RoundRobinSlot, error) {
	if slotDuration <= 0 {
		return nil, fmt.Errorf("%w: %s", errInvalidSlotDuration, slotDuration)
	}
	return &RoundRobinSlot{
		slotDuration: slotDuration,
		authorities:  authorities,
	}, nil
}

// Authorize implements Authorizer. The authority set is read at the parachain
// head last included in the relay chain, the parent of the next block.
func (r *RoundRobinSlot) Authorize(view *relayview.View, identity AuthorityID, now time.Time) (
	Decision, error) {
	authorities, err := r.authorities.Authorities(&view.LastIncluded.Header)
	if err != nil {
		return Decision{}, fmt.Errorf("getting authorities: %w", err)
	}
	if len(authorities) == 0 {
		return Decision{}, ErrNoAuthorities
	}

	slot := SlotAt(now, r.slotDuration)
	index := int(uint64(slot) % uint64(len(authorities)))

	return Decision{
		Authorized:     authorities[index] == identity,
		Slot:           slot,
		Deadline:       slot.End(r.slotDuration),
		AuthorityIndex: index,
	}, nil
}

// AlwaysAuthorized authorizes every slot. It suits parachains with a single collator.
type AlwaysAuthorized struct {
	slotDuration time.Duration
}

var _ Authorizer = (*AlwaysAuthorized)(nil)

// NewAlwaysAuthorized returns a pass-through authorizer using slotDuration
// to compute deadlines.
func NewAlwaysAuthorized(slotDuration time.Duration) (*AlwaysAuthorized, error) {
	if slotDuration <= 0 {
		return nil, fmt.Errorf("%w: %s", errInvalidSlotDuration, slotDuration)
	}
	return &AlwaysAuthorized{slotDuration: slotDuration}, nil
}

// Authorize implements Authorizer.
func (a *AlwaysAuthorized) Authorize(_ *relayview.View, _ AuthorityID, now time.Time) (Decision, error) {
	slot := SlotAt(now, a.slotDuration)
	return Decision{
		Authorized: true,
		Slot:       slot,
		Deadline:   slot.End(a.slotDuration),
	}, nil
}

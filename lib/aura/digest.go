// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package aura

import (
	"fmt"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/pkg/scale"
)

// NewSlotDigest returns the pre-runtime digest announcing slot.
func NewSlotDigest(slot Slot) types.DigestItem {
	return types.NewPreRuntimeDigest(types.AuraEngineID, scale.MustMarshal(uint64(slot)))
}

// SlotFromDigest returns the slot announced by the single aura pre-runtime digest.
func SlotFromDigest(digest types.Digest) (Slot, error) {
	items := digest.PreRuntimes(types.AuraEngineID)
	switch len(items) {
	case 0:
		return 0, ErrMissingSlot
	case 1:
	default:
		return 0, fmt.Errorf("%w: %d found", ErrMultipleSlots, len(items))
	}

	var slot uint64
	err := scale.Unmarshal(items[0].Data, &slot)
	if err != nil {
		return 0, fmt.Errorf("decoding slot: %w", err)
	}
	return Slot(slot), nil
}

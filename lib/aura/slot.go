// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package aura

import (
	"fmt"
	"time"
)

// Slot is the index of a fixed duration time window since the unix epoch.
type Slot uint64

// SlotAt returns the slot containing t.
func SlotAt(t time.Time, slotDuration time.Duration) Slot {
	return Slot(uint64(t.UnixNano()) / uint64(slotDuration.Nanoseconds()))
}

// Start returns the time the slot starts.
func (s Slot) Start(slotDuration time.Duration) time.Time {
	return time.Unix(0, int64(uint64(s)*uint64(slotDuration.Nanoseconds())))
}

// End returns the time the slot ends, which is the start of the next one.
func (s Slot) End(slotDuration time.Duration) time.Time {
	return (s + 1).Start(slotDuration)
}

func (s Slot) String() string {
	return fmt.Sprintf("slot %d", uint64(s))
}

// TimeUntilNextSlot returns how long until the slot after the one containing now starts.
func TimeUntilNextSlot(now time.Time, slotDuration time.Duration) time.Duration {
	return SlotAt(now, slotDuration).End(slotDuration).Sub(now)
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package aura

import "errors"

var (
	// ErrNotAuthorized is returned when the node may not author in the current slot
	ErrNotAuthorized = errors.New("not authorized to author in this slot")

	// ErrNoAuthorities is returned when the authority set is empty
	ErrNoAuthorities = errors.New("authority set is empty")

	// ErrMissingSeal is returned when a header carries no aura seal
	ErrMissingSeal = errors.New("header is not sealed")

	// ErrMultipleSeals is returned when a header carries more than one aura seal
	ErrMultipleSeals = errors.New("header has more than one seal")

	// ErrInvalidSeal is returned when the seal is not signed by the slot author
	ErrInvalidSeal = errors.New("invalid seal")

	// ErrMissingSlot is returned when a header has no aura pre-runtime digest
	ErrMissingSlot = errors.New("header has no slot pre-runtime digest")

	// ErrMultipleSlots is returned when a header has more than one aura pre-runtime digest
	ErrMultipleSlots = errors.New("header has more than one slot pre-runtime digest")

	errInvalidSlotDuration = errors.New("slot duration must be positive")
	errSealNotLast         = errors.New("seal is not the last digest item")
)

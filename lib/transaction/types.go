// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transaction

import (
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
)

// Validity describes how a transaction is ordered in the pool.
type Validity struct {
	Priority uint64
}

// NewValidity returns Validity
func NewValidity(priority uint64) *Validity {
	return &Validity{Priority: priority}
}

// ValidTransaction struct
type ValidTransaction struct {
	Extrinsic types.Extrinsic
	Validity  *Validity

	hash common.Hash
	// seq orders transactions of equal priority by arrival.
	seq uint64
}

// NewValidTransaction returns ValidTransaction
func NewValidTransaction(extrinsic types.Extrinsic, validity *Validity) *ValidTransaction {
	return &ValidTransaction{
		Extrinsic: extrinsic,
		Validity:  validity,
		hash:      extrinsic.Hash(),
	}
}

// Hash returns the hash of the extrinsic.
func (tx *ValidTransaction) Hash() common.Hash {
	return tx.hash
}

// Status represents possible transaction statuses.
type Status int64

const (
	// Unknown status is the status of a transaction the pool never saw.
	Unknown Status = iota
	// Ready status occurs when transaction is part of the ready queue.
	Ready
	// Finalized status occurs when transaction has been included in a finalised block.
	Finalized
	// Dropped status occurs when transaction has been dropped from the pool because
	// of the limit.
	Dropped
	// Invalid status occurs when transaction is not valid.
	Invalid
)

// String returns string representation of current status.
func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Ready:
		return "ready"
	case Finalized:
		return "finalized"
	case Dropped:
		return "dropped"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

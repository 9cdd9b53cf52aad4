// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package parachaintypes

import (
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
)

// ParaID is the identifier of a parachain on its relay chain.
type ParaID uint32

// HeadData is parachain head data included in the relay chain. For this
// collator it is the SCALE encoded parachain header.
type HeadData []byte

// Hash returns the hash of the head data.
func (hd HeadData) Hash() common.Hash {
	return common.Blake2bHash(hd)
}

// ValidationCode is parachain validation code.
type ValidationCode []byte

// ValidationCodeHash is the blake2b hash of the validation code.
type ValidationCodeHash common.Hash

// String returns the hex encoded hash.
func (vch ValidationCodeHash) String() string {
	return common.Hash(vch).String()
}

// Hash returns the hash of the validation code.
func (vc ValidationCode) Hash() ValidationCodeHash {
	return ValidationCodeHash(common.Blake2bHash(vc))
}

// UpwardMessage is a message from a parachain to its relay chain.
type UpwardMessage []byte

// OutboundHrmpMessage is an HRMP message seen from the perspective of a sender.
type OutboundHrmpMessage struct {
	Recipient uint32
	Data      []byte
}

// PersistedValidationData provides information about how to create the inputs
// for validation of a candidate. It is derived from the relay parent state.
type PersistedValidationData struct {
	ParentHead             HeadData
	RelayParentNumber      uint32
	RelayParentStorageRoot common.Hash
	MaxPovSize             uint32
}

// Hash returns the hash of the SCALE encoded validation data.
func (pvd PersistedValidationData) Hash() common.Hash {
	return common.Blake2bHash(scale.MustMarshal(pvd))
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collation

import (
	"fmt"

	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/trie/proof"
)

// Candidate is a sealed parachain block together with everything a relay
// chain validator needs to check it. A candidate is never modified once
// built; a candidate whose relay parent went stale is rebuilt.
type Candidate struct {
	Block   types.Block
	Witness *proof.Witness
	PoV     parachaintypes.PoV
	// InherentDigest is the hash of the inherent data embedded in the block.
	InherentDigest common.Hash
	RelayParent    relaychain.Header
	Slot           aura.Slot

	Receipt        parachaintypes.CandidateReceipt
	Commitments    parachaintypes.CandidateCommitments
	ValidationData parachaintypes.PersistedValidationData
}

// Hash returns the hash of the candidate block.
func (c *Candidate) Hash() common.Hash {
	return c.Block.Header.Hash()
}

// Collation returns what is submitted to the relay chain validators.
func (c *Candidate) Collation() parachaintypes.Collation {
	return parachaintypes.Collation{
		Receipt:        c.Receipt,
		Commitments:    c.Commitments,
		ValidationData: c.ValidationData,
		PoV:            c.PoV,
	}
}

func (c *Candidate) String() string {
	return fmt.Sprintf("candidate #%d (%s) slot %s relay parent %s pov %d bytes",
		c.Block.Header.Number, c.Hash().Short(), c.Slot, c.RelayParent, len(c.PoV.BlockData))
}

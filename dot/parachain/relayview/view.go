// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relayview

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
)

// Change flags what an update changed.
type Change uint8

const (
	BestChanged Change = 1 << iota
	FinalizedChanged
	InclusionChanged
)

func (c Change) String() string {
	var names []string
	if c&BestChanged != 0 {
		names = append(names, "best")
	}
	if c&FinalizedChanged != 0 {
		names = append(names, "finalized")
	}
	if c&InclusionChanged != 0 {
		names = append(names, "inclusion")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// IncludedHead is a parachain head as included in the relay chain.
type IncludedHead struct {
	Hash   common.Hash
	Header types.Header
}

// NewIncludedHead decodes the head data stored on the relay chain.
func NewIncludedHead(data parachaintypes.HeadData) (head IncludedHead, err error) {
	err = scale.Unmarshal(data, &head.Header)
	if err != nil {
		return head, fmt.Errorf("decoding parachain head: %w", err)
	}
	head.Hash = head.Header.Hash()
	return head, nil
}

// Number returns the parachain block number of the head.
func (h IncludedHead) Number() uint32 {
	return h.Header.Number
}

func (h IncludedHead) String() string {
	return fmt.Sprintf("#%d (%s)", h.Header.Number, h.Hash.Short())
}

// View is an immutable snapshot of the relay chain as seen by the collator.
// A published view is never modified.
type View struct {
	Best      relaychain.Header
	Finalized relaychain.Header
	// LastIncluded is the parachain head included as of Best.
	LastIncluded IncludedHead
	// FinalizedIncluded is the parachain head included as of Finalized.
	FinalizedIncluded IncludedHead
	// Version increases by one with every published view.
	Version uint64
	// Changes is what changed compared to the previous view.
	Changes Change
}

func (v *View) String() string {
	return fmt.Sprintf("v%d best=%s finalized=%s included=%s finalized-included=%s changes=%s",
		v.Version, v.Best, v.Finalized, v.LastIncluded, v.FinalizedIncluded, v.Changes)
}

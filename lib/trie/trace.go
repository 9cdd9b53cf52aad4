// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import "github.com/ChainSafe/collator/lib/common"

// Trace is the storage footprint of an execution over a trie.
type Trace struct {
	// PreStateRoot is the root the execution started from.
	PreStateRoot common.Hash
	// Accessed holds the hashes of the pre-state nodes the execution
	// loaded, sorted bytewise.
	Accessed []common.Hash
	Reads    int
	Writes   int
}

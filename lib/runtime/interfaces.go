// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package runtime

import (
	"context"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/trie"
)

// Engine is the parachain state transition function. Execution is
// deterministic and only touches the trie it is given.
type Engine interface {
	// Execute builds a block on top of inputs.Parent whose state is
	// rooted at preStateRoot.
	Execute(ctx context.Context, preStateRoot common.Hash, inputs Inputs) (*Result, error)
	// ExecuteBlock re-executes block from preStateRoot reading state
	// nodes from db and checks the roots declared in its header.
	ExecuteBlock(ctx context.Context, preStateRoot common.Hash, block *types.Block, db trie.Database) (*Result, error)
}

// Inputs are the inputs of a block construction.
type Inputs struct {
	Parent     types.Header
	Inherent   InherentData
	Extrinsics []types.Extrinsic
	// Digest holds the pre-runtime digest items of the new header.
	Digest types.Digest
}

// Result is the outcome of an execution.
type Result struct {
	// Block is the executed block. Built blocks are not sealed yet.
	Block types.Block
	Trace trie.Trace

	state *trie.Trie
}

// PostStateRoot returns the state root after execution.
func (r *Result) PostStateRoot() common.Hash {
	return r.Block.Header.StateRoot
}

// Commit writes the nodes created by the execution to putter.
func (r *Result) Commit(putter trie.Putter) error {
	_, err := r.state.Commit(putter)
	return err
}

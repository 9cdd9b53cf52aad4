// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package core

import (
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
)

// BlockState interface for block state methods
type BlockState interface {
	AddBlock(block *types.Block) error
	GetHeader(hash common.Hash) (*types.Header, error)
	HasHeader(hash common.Hash) (bool, error)
}

// StorageState is the trie node store blocks are executed against.
type StorageState interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
}

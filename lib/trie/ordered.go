// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
)

// OrderedRoot returns the root of the trie mapping the compact encoded
// index of each value to the value.
func OrderedRoot(values [][]byte) (common.Hash, error) {
	t := NewEmptyTrie(nil)
	for i, value := range values {
		err := t.Put(scale.EncodeCompact(uint64(i)), value)
		if err != nil {
			return common.Hash{}, err
		}
	}
	return t.RootHash(), nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"fmt"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/disiqueira/gotree"
)

// String returns the trie stringified through pre-order traversal
func (t *Trie) String() string {
	if t.root.IsEmpty() {
		return "empty"
	}

	tree := gotree.New("Trie")
	t.string(tree, t.root, -1)
	return fmt.Sprintf("\n%s", tree.Print())
}

func (t *Trie) string(tree gotree.Tree, hash common.Hash, index int) {
	n, err := t.load(hash)
	if err != nil {
		tree.Add(fmt.Sprintf("idx=%d %s", index, err))
		return
	}

	sub := tree.Add(fmt.Sprintf("idx=%d %s hash=%s", index, n, hash.Short()))
	for i, child := range n.children {
		if !child.IsEmpty() {
			t.string(sub, child, i)
		}
	}
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package blocktree

import (
	"sync"
)

// leafMap provides quick lookup for existing leaves
type leafMap struct {
	smap *sync.Map // map[Hash]*node
}

func newLeafMap(n *node) *leafMap {
	smap := &sync.Map{}
	for _, child := range n.getLeaves(nil) {
		smap.Store(child.hash, child)
	}

	return &leafMap{
		smap: smap,
	}
}

func (ls *leafMap) store(key Hash, value *node) {
	ls.smap.Store(key, value)
}

// replace deletes the old node from the map and inserts the new one
func (ls *leafMap) replace(oldNode, newNode *node) {
	ls.smap.Delete(oldNode.hash)
	ls.store(newNode.hash, newNode)
}

// deepestLeaf searches the stored leaves to the find the one with the greatest number.
// If there are two leaves with the same number, choose the one with the earliest arrival time.
func (ls *leafMap) deepestLeaf() *node {
	var dLeaf *node
	ls.smap.Range(func(_, n interface{}) bool {
		node := n.(*node)
		if dLeaf == nil || node.number > dLeaf.number ||
			(node.number == dLeaf.number && node.preferredOver(dLeaf)) {
			dLeaf = node
		}
		return true
	})

	return dLeaf
}

func (ls *leafMap) nodes() []*node {
	nodes := []*node{}

	ls.smap.Range(func(_, n interface{}) bool {
		nodes = append(nodes, n.(*node))
		return true
	})

	return nodes
}

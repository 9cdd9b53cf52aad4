// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package blocktree

import (
	"bytes"
	"fmt"
	"time"

	"github.com/disiqueira/gotree"
)

// node is an element in the BlockTree
type node struct {
	hash        Hash      // Block hash
	parent      *node     // Parent Node
	children    []*node   // Nodes of children blocks
	number      uint32    // block number
	arrivalTime time.Time // Arrival time of the block
	seen        bool      // submitted upward and accepted
	included    bool      // named by the relay chain as an included head
}

// addChild appends Node to n's list of children
func (n *node) addChild(node *node) {
	n.children = append(n.children, node)
}

// string returns stringified hash and number of node
func (n *node) string() string {
	var marks string
	switch {
	case n.included:
		marks = " included"
	case n.seen:
		marks = " seen"
	}
	return fmt.Sprintf("{hash: %s, number: %d, arrivalTime: %s%s}",
		n.hash.String(), n.number, n.arrivalTime.Format(time.RFC3339Nano), marks)
}

// createTree adds all the nodes children to the existing printable tree.
// Note: this is strictly for BlockTree.String()
func (n *node) createTree(tree gotree.Tree) {
	for _, child := range n.children {
		sub := tree.Add(child.string())
		child.createTree(sub)
	}
}

// relayKnown reports whether the relay chain has been shown this block.
func (n *node) relayKnown() bool {
	return n.seen || n.included
}

// preferredOver orders two candidates of the same number:
// earliest arrival first, then the lower hash.
func (n *node) preferredOver(other *node) bool {
	if !n.arrivalTime.Equal(other.arrivalTime) {
		return n.arrivalTime.Before(other.arrivalTime)
	}
	return bytes.Compare(n.hash[:], other.hash[:]) < 0
}

// deepestRelayKnown walks the children reachable through relay-known blocks
// and returns the deepest one. n itself is returned when no child qualifies.
func (n *node) deepestRelayKnown() *node {
	best := n
	for _, child := range n.children {
		if !child.relayKnown() {
			continue
		}
		candidate := child.deepestRelayKnown()
		if candidate.number > best.number ||
			(candidate.number == best.number && candidate.preferredOver(best)) {
			best = candidate
		}
	}
	return best
}

// subChain searches for a chain with head n and descendant going from child -> parent
func (n *node) subChain(descendant *node) ([]*node, error) {
	var path []*node
	for curr := descendant; curr != nil; curr = curr.parent {
		path = append([]*node{curr}, path...)
		if curr == n {
			return path, nil
		}
	}

	return nil, ErrDescendantNotFound
}

// isDescendantOf walks the parent links of n looking for parent.
func (n *node) isDescendantOf(parent *node) bool {
	if parent == nil || n == nil || n.number < parent.number {
		return false
	}

	for curr := n; curr != nil; curr = curr.parent {
		if curr == parent {
			return true
		}
		if curr.number <= parent.number {
			return false
		}
	}
	return false
}

// getLeaves returns all nodes that are leaf nodes with the current node as its ancestor
func (n *node) getLeaves(leaves []*node) []*node {
	if n == nil {
		return leaves
	}

	if len(n.children) == 0 {
		leaves = append(leaves, n)
	}

	for _, child := range n.children {
		leaves = child.getLeaves(leaves)
	}

	return leaves
}

// getAllDescendants returns an array of the node's hash and all its descendants's hashes
func (n *node) getAllDescendants(desc []Hash) []Hash {
	if n == nil {
		return desc
	}

	desc = append(desc, n.hash)
	for _, child := range n.children {
		desc = child.getAllDescendants(desc)
	}

	return desc
}

// prune removes every node below n that does not descend from finalized
// and returns their hashes.
func (n *node) prune(finalized *node, pruned []Hash) []Hash {
	if finalized == nil {
		return pruned
	}

	// if this is a descendant of the finalized block, keep it
	// all descendants of this block will also be descendants of the finalized block,
	// so don't need to check any of those
	if n.isDescendantOf(finalized) {
		return pruned
	}

	// if it's not an ancestor the finalized block, prune it
	if !finalized.isDescendantOf(n) {
		pruned = append(pruned, n.hash)
	}

	// if this is an ancestor of the finalized block, keep checking its children
	for _, child := range n.children {
		pruned = child.prune(finalized, pruned)
	}

	return pruned
}

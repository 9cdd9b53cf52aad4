// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package blocktree

import (
	"fmt"
	"sync"
	"time"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"

	"github.com/disiqueira/gotree"
)

// Hash common.Hash
type Hash = common.Hash

// BlockTree holds the locally known parachain blocks above the last finalized
// included block. Blocks carry two marks set from relay chain events: seen,
// once a candidate for the block was accepted upward, and included, once the
// relay chain names the block as the para head.
type BlockTree struct {
	root   *node
	nodes  map[Hash]*node
	leaves *leafMap
	sync.RWMutex
}

// NewBlockTreeFromRoot initializes a blocktree with a root block. The root block is always the most recently
// finalized included block (ie the genesis block if the node is just starting.)
func NewBlockTreeFromRoot(root *types.Header) *BlockTree {
	head := &node{
		hash:     root.Hash(),
		number:   root.Number,
		included: true,
	}

	return &BlockTree{
		root:   head,
		nodes:  map[Hash]*node{head.hash: head},
		leaves: newLeafMap(head),
	}
}

// Root returns the hash of the root block
func (bt *BlockTree) Root() Hash {
	bt.RLock()
	defer bt.RUnlock()
	return bt.root.hash
}

// AddBlock inserts the block as child of its parent node
func (bt *BlockTree) AddBlock(header *types.Header, arrivalTime time.Time) error {
	bt.Lock()
	defer bt.Unlock()

	parent := bt.nodes[header.ParentHash]
	if parent == nil {
		return ErrParentNotFound
	}

	hash := header.Hash()
	if bt.nodes[hash] != nil {
		return ErrBlockExists
	}

	if header.Number != parent.number+1 {
		return fmt.Errorf("%w: parent %d, block %d", errUnexpectedNumber, parent.number, header.Number)
	}

	n := &node{
		hash:        hash,
		parent:      parent,
		number:      header.Number,
		arrivalTime: arrivalTime,
	}
	parent.addChild(n)
	bt.nodes[hash] = n
	bt.leaves.replace(parent, n)

	return nil
}

// Has reports whether the block is in the tree
func (bt *BlockTree) Has(hash Hash) bool {
	bt.RLock()
	defer bt.RUnlock()
	return bt.nodes[hash] != nil
}

// MarkSeen records that a candidate for the block was accepted by the relay chain side.
func (bt *BlockTree) MarkSeen(hash Hash) error {
	bt.Lock()
	defer bt.Unlock()

	n := bt.nodes[hash]
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, hash)
	}
	n.seen = true
	return nil
}

// SetIncluded marks the block and all of its ancestors as included.
func (bt *BlockTree) SetIncluded(hash Hash) error {
	bt.Lock()
	defer bt.Unlock()

	n := bt.nodes[hash]
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, hash)
	}
	for curr := n; curr != nil && !curr.included; curr = curr.parent {
		curr.included = true
	}
	return nil
}

// IsIncluded reports whether the block carries the included mark
func (bt *BlockTree) IsIncluded(hash Hash) bool {
	bt.RLock()
	defer bt.RUnlock()
	n := bt.nodes[hash]
	return n != nil && n.included
}

// BestBlockHash returns the canonical head given the last block the relay chain included:
// the deepest descendant of lastIncluded reachable only through seen or included blocks.
// Ties go to the earliest arrival. A block never shown to the relay chain is never returned.
func (bt *BlockTree) BestBlockHash(lastIncluded Hash) (Hash, error) {
	bt.RLock()
	defer bt.RUnlock()

	n := bt.nodes[lastIncluded]
	if n == nil {
		return Hash{}, fmt.Errorf("%w: %s", ErrNodeNotFound, lastIncluded)
	}
	return n.deepestRelayKnown().hash, nil
}

// Pruned returns the hashes Prune would remove for finalized without
// changing the tree.
func (bt *BlockTree) Pruned(finalized Hash) []Hash {
	bt.RLock()
	defer bt.RUnlock()

	n := bt.nodes[finalized]
	if n == nil || n == bt.root {
		return nil
	}
	return bt.root.prune(n, nil)
}

// Prune sets the given hash as the new blocktree root, removing all nodes that are not the new root node or its descendant
// It returns an array of hashes that have been pruned
func (bt *BlockTree) Prune(finalized Hash) (pruned []Hash) {
	bt.Lock()
	defer bt.Unlock()

	if finalized == bt.root.hash {
		return pruned
	}

	n := bt.nodes[finalized]
	if n == nil {
		return pruned
	}

	pruned = bt.root.prune(n, nil)
	for _, hash := range pruned {
		delete(bt.nodes, hash)
	}
	// the ancestors of the new root leave the tree as well
	for curr := n.parent; curr != nil; curr = curr.parent {
		delete(bt.nodes, curr.hash)
	}

	n.parent = nil
	n.included = true
	bt.root = n
	bt.leaves = newLeafMap(n)
	return pruned
}

// String utilizes github.com/disiqueira/gotree to create a printable tree
func (bt *BlockTree) String() string {
	bt.RLock()
	defer bt.RUnlock()

	// Construct tree
	tree := gotree.New(bt.root.string())

	for _, child := range bt.root.children {
		sub := tree.Add(child.string())
		child.createTree(sub)
	}

	// Format leaves
	var leaves string
	bt.leaves.smap.Range(func(hash, _ interface{}) bool {
		leaves = leaves + fmt.Sprintf("%s\n", hash.(Hash))
		return true
	})

	metadata := fmt.Sprintf("Leaves:\n %s", leaves)

	return fmt.Sprintf("%s\n%s\n", metadata, tree.Print())
}

// SubBlockchain returns the path from the node with Hash start to the node with Hash end
func (bt *BlockTree) SubBlockchain(start, end Hash) ([]Hash, error) {
	bt.RLock()
	defer bt.RUnlock()

	sn := bt.nodes[start]
	if sn == nil {
		return nil, ErrStartNodeNotFound
	}
	en := bt.nodes[end]
	if en == nil {
		return nil, ErrEndNodeNotFound
	}

	sc, err := sn.subChain(en)
	if err != nil {
		return nil, err
	}
	bc := make([]Hash, len(sc))
	for i, node := range sc {
		bc[i] = node.hash
	}
	return bc, nil
}

// DeepestBlockHash returns the hash of the deepest block in the blocktree regardless of marks.
// If there is multiple deepest blocks, it returns the one with the earliest arrival time.
func (bt *BlockTree) DeepestBlockHash() Hash {
	bt.RLock()
	defer bt.RUnlock()

	deepest := bt.leaves.deepestLeaf()
	if deepest == nil {
		return Hash{}
	}

	return deepest.hash
}

// IsDescendantOf returns true if the child is a descendant of parent, false otherwise.
// it returns an error if either the child or parent are not in the blocktree.
func (bt *BlockTree) IsDescendantOf(parent, child Hash) (bool, error) {
	bt.RLock()
	defer bt.RUnlock()

	pn := bt.nodes[parent]
	if pn == nil {
		return false, ErrStartNodeNotFound
	}
	cn := bt.nodes[child]
	if cn == nil {
		return false, ErrEndNodeNotFound
	}
	return cn.isDescendantOf(pn), nil
}

// Leaves returns the leaves of the blocktree as an array
func (bt *BlockTree) Leaves() []Hash {
	bt.RLock()
	defer bt.RUnlock()

	nodes := bt.leaves.nodes()
	la := make([]Hash, len(nodes))
	for i, n := range nodes {
		la[i] = n.hash
	}

	return la
}

// GetAllBlocks returns all the blocks in the tree
func (bt *BlockTree) GetAllBlocks() []Hash {
	bt.RLock()
	defer bt.RUnlock()

	return bt.root.getAllDescendants(nil)
}

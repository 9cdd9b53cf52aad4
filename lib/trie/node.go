// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
)

type nodeKind uint8

const (
	leafKind nodeKind = iota + 1
	branchKind
)

var ErrNodeKindUnknown = errors.New("node kind is unknown")

// node is a decoded trie node. Leaves hold the original key and its
// value, branches hold up to 16 child hashes. Both carry the partial
// key nibbles between their parent and themselves.
type node struct {
	kind     nodeKind
	partial  []byte
	key      []byte
	value    []byte
	children [16]common.Hash
}

func (n *node) childrenCount() (count int) {
	for _, child := range n.children {
		if !child.IsEmpty() {
			count++
		}
	}
	return count
}

func (n *node) String() string {
	switch n.kind {
	case leafKind:
		return fmt.Sprintf("leaf partial=%x key=0x%x value=0x%x", n.partial, n.key, n.value)
	case branchKind:
		return fmt.Sprintf("branch partial=%x children=%d", n.partial, n.childrenCount())
	default:
		return "unknown"
	}
}

type childRef struct {
	Index uint8
	Hash  common.Hash
}

type encodedNode struct {
	Kind     uint8
	Partial  []byte
	Key      []byte
	Value    []byte
	Children []childRef
}

func (n *node) encode() []byte {
	encoded := encodedNode{
		Kind:    uint8(n.kind),
		Partial: n.partial,
		Key:     n.key,
		Value:   n.value,
	}
	for i, child := range n.children {
		if child.IsEmpty() {
			continue
		}
		encoded.Children = append(encoded.Children, childRef{Index: uint8(i), Hash: child})
	}
	return scale.MustMarshal(encoded)
}

func decodeNode(data []byte) (*node, error) {
	var encoded encodedNode
	err := scale.Unmarshal(data, &encoded)
	if err != nil {
		return nil, err
	}

	n := &node{
		kind:    nodeKind(encoded.Kind),
		partial: encoded.Partial,
		key:     encoded.Key,
		value:   encoded.Value,
	}

	switch n.kind {
	case leafKind:
	case branchKind:
		for _, child := range encoded.Children {
			if child.Index >= 16 {
				return nil, fmt.Errorf("child index %d out of range", child.Index)
			}
			n.children[child.Index] = child.Hash
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrNodeKindUnknown, encoded.Kind)
	}

	return n, nil
}

func keyToNibbles(key []byte) []byte {
	hashed := common.Blake2bHash(key)
	nibbles := make([]byte, 2*len(hashed))
	for i, b := range hashed {
		nibbles[2*i] = b >> 4
		nibbles[2*i+1] = b & 0x0f
	}
	return nibbles
}

func commonPrefixLength(a, b []byte) (length int) {
	for length < len(a) && length < len(b) && a[length] == b[length] {
		length++
	}
	return length
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/lib/common"
)

// EmptyRoot is the root hash of a trie without any entry.
var EmptyRoot = common.Blake2bHash([]byte{0})

var (
	ErrMissingNode = errors.New("node not found in database")
	ErrCorruptNode = errors.New("node encoding does not match its hash")
)

// Trie is a 16-ary Merkle radix trie over blake2b hashed keys.
// Nodes are referenced by the hash of their encoding. Nodes created by
// writes stay in memory until Commit, every other node is loaded from
// the database.
type Trie struct {
	root     common.Hash
	db       Database
	dirty    map[common.Hash][]byte
	recorder *Recorder
}

// NewEmptyTrie creates a trie with no entry reading nodes from db.
func NewEmptyTrie(db Database) *Trie {
	return NewTrie(EmptyRoot, db)
}

// NewTrie creates a trie rooted at root, reading nodes from db.
func NewTrie(root common.Hash, db Database) *Trie {
	t := &Trie{
		db:    db,
		dirty: make(map[common.Hash][]byte),
	}
	if root != EmptyRoot {
		t.root = root
	}
	return t
}

// WithRecorder makes the trie report every node loaded from its
// database to the recorder.
func (t *Trie) WithRecorder(recorder *Recorder) *Trie {
	t.recorder = recorder
	return t
}

// RootHash returns the hash of the root node, or EmptyRoot.
func (t *Trie) RootHash() common.Hash {
	if t.root.IsEmpty() {
		return EmptyRoot
	}
	return t.root
}

func (t *Trie) load(hash common.Hash) (*node, error) {
	encoding, ok := t.dirty[hash]
	if !ok {
		if t.db == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingNode, hash)
		}

		var err error
		encoding, err = t.db.Get(hash[:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingNode, hash, err)
		}

		if common.Blake2bHash(encoding) != hash {
			return nil, fmt.Errorf("%w: %s", ErrCorruptNode, hash)
		}

		if t.recorder != nil {
			t.recorder.Record(hash)
		}
	}

	n, err := decodeNode(encoding)
	if err != nil {
		return nil, fmt.Errorf("decoding node %s: %w", hash, err)
	}
	return n, nil
}

func (t *Trie) store(n *node) common.Hash {
	encoding := n.encode()
	hash := common.Blake2bHash(encoding)
	t.dirty[hash] = encoding
	return hash
}

// Get returns the value stored at key, or nil if there is none.
func (t *Trie) Get(key []byte) (value []byte, err error) {
	return t.get(t.root, keyToNibbles(key))
}

func (t *Trie) get(hash common.Hash, nibbles []byte) (value []byte, err error) {
	for !hash.IsEmpty() {
		n, err := t.load(hash)
		if err != nil {
			return nil, err
		}

		switch n.kind {
		case leafKind:
			if bytes.Equal(n.partial, nibbles) {
				return n.value, nil
			}
			return nil, nil
		case branchKind:
			if !bytes.HasPrefix(nibbles, n.partial) || len(nibbles) == len(n.partial) {
				return nil, nil
			}
			index := nibbles[len(n.partial)]
			nibbles = nibbles[len(n.partial)+1:]
			hash = n.children[index]
		}
	}
	return nil, nil
}

// Put sets the value at key.
func (t *Trie) Put(key, value []byte) (err error) {
	root, err := t.insert(t.root, keyToNibbles(key), key, value)
	if err != nil {
		return fmt.Errorf("inserting 0x%x: %w", key, err)
	}
	t.root = root
	return nil
}

func (t *Trie) insert(hash common.Hash, nibbles, key, value []byte) (common.Hash, error) {
	if hash.IsEmpty() {
		return t.store(&node{kind: leafKind, partial: nibbles, key: key, value: value}), nil
	}

	n, err := t.load(hash)
	if err != nil {
		return common.Hash{}, err
	}

	if n.kind == leafKind && bytes.Equal(n.partial, nibbles) {
		if bytes.Equal(n.value, value) {
			return hash, nil
		}
		return t.store(&node{kind: leafKind, partial: nibbles, key: key, value: value}), nil
	}

	prefixLength := commonPrefixLength(n.partial, nibbles)
	if n.kind == branchKind && prefixLength == len(n.partial) {
		index := nibbles[prefixLength]
		child, err := t.insert(n.children[index], nibbles[prefixLength+1:], key, value)
		if err != nil {
			return common.Hash{}, err
		}
		n.children[index] = child
		return t.store(n), nil
	}

	// the new key diverges inside the partial key of n
	branch := &node{kind: branchKind, partial: nibbles[:prefixLength]}
	existingIndex := n.partial[prefixLength]
	n.partial = n.partial[prefixLength+1:]
	branch.children[existingIndex] = t.store(n)
	branch.children[nibbles[prefixLength]] = t.store(&node{
		kind:    leafKind,
		partial: nibbles[prefixLength+1:],
		key:     key,
		value:   value,
	})
	return t.store(branch), nil
}

// Delete removes the value at key if any.
func (t *Trie) Delete(key []byte) (err error) {
	root, _, err := t.delete(t.root, keyToNibbles(key))
	if err != nil {
		return fmt.Errorf("deleting 0x%x: %w", key, err)
	}
	t.root = root
	return nil
}

func (t *Trie) delete(hash common.Hash, nibbles []byte) (newHash common.Hash, deleted bool, err error) {
	if hash.IsEmpty() {
		return hash, false, nil
	}

	n, err := t.load(hash)
	if err != nil {
		return common.Hash{}, false, err
	}

	if n.kind == leafKind {
		if bytes.Equal(n.partial, nibbles) {
			return common.Hash{}, true, nil
		}
		return hash, false, nil
	}

	if !bytes.HasPrefix(nibbles, n.partial) || len(nibbles) == len(n.partial) {
		return hash, false, nil
	}

	index := nibbles[len(n.partial)]
	child, deleted, err := t.delete(n.children[index], nibbles[len(n.partial)+1:])
	if err != nil || !deleted {
		return hash, false, err
	}
	n.children[index] = child

	switch n.childrenCount() {
	case 0:
		return common.Hash{}, true, nil
	case 1:
		return t.collapse(n)
	default:
		return t.store(n), true, nil
	}
}

// collapse merges a branch left with a single child into that child.
func (t *Trie) collapse(branch *node) (common.Hash, bool, error) {
	for index, childHash := range branch.children {
		if childHash.IsEmpty() {
			continue
		}

		child, err := t.load(childHash)
		if err != nil {
			return common.Hash{}, false, err
		}

		partial := make([]byte, 0, len(branch.partial)+1+len(child.partial))
		partial = append(partial, branch.partial...)
		partial = append(partial, byte(index))
		child.partial = append(partial, child.partial...)
		return t.store(child), true, nil
	}
	return common.Hash{}, true, nil
}

// Entries returns all the key value pairs of the trie.
func (t *Trie) Entries() (entries map[string][]byte, err error) {
	entries = make(map[string][]byte)
	err = t.walk(t.root, func(_ common.Hash, n *node) bool {
		if n.kind == leafKind {
			entries[string(n.key)] = n.value
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (t *Trie) walk(hash common.Hash, visit func(hash common.Hash, n *node) (descend bool)) error {
	if hash.IsEmpty() {
		return nil
	}

	n, err := t.load(hash)
	if err != nil {
		return err
	}

	if !visit(hash, n) {
		return nil
	}

	for _, child := range n.children {
		if err = t.walk(child, visit); err != nil {
			return err
		}
	}
	return nil
}

// Commit writes the in-memory nodes reachable from the root to the
// putter, drops the unreachable ones and returns the root hash.
func (t *Trie) Commit(putter Putter) (root common.Hash, err error) {
	err = t.commit(t.root, putter)
	if err != nil {
		return common.Hash{}, fmt.Errorf("committing trie: %w", err)
	}

	t.dirty = make(map[common.Hash][]byte)
	return t.RootHash(), nil
}

func (t *Trie) commit(hash common.Hash, putter Putter) error {
	encoding, ok := t.dirty[hash]
	if !ok {
		return nil
	}

	err := putter.Put(hash[:], encoding)
	if err != nil {
		return err
	}

	n, err := decodeNode(encoding)
	if err != nil {
		return err
	}

	for _, child := range n.children {
		if err = t.commit(child, putter); err != nil {
			return err
		}
	}
	return nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"fmt"

	"github.com/ChainSafe/chaindb"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/trie"
)

var storagePrefix = "storage"

// StorageState is the persistent trie node store, keyed by node hash.
// It serves as both the read backend of state tries and the target
// of their commits.
type StorageState struct {
	db         chaindb.Database
	blockState *BlockState
}

var (
	_ trie.Database = (*StorageState)(nil)
	_ trie.Putter   = (*StorageState)(nil)
)

// NewStorageState creates a new StorageState backed by the given database.
func NewStorageState(db chaindb.Database, blockState *BlockState) *StorageState {
	return &StorageState{
		db:         chaindb.NewTable(db, storagePrefix),
		blockState: blockState,
	}
}

// Get returns the encoded trie node with the given hash.
func (s *StorageState) Get(key []byte) ([]byte, error) {
	return s.db.Get(key)
}

// Put stores an encoded trie node under its hash.
func (s *StorageState) Put(key, value []byte) error {
	return s.db.Put(key, value)
}

// StoreTrie writes the nodes the trie created to the database.
func (s *StorageState) StoreTrie(t *trie.Trie) (root common.Hash, err error) {
	root, err = t.Commit(s)
	if err != nil {
		return root, fmt.Errorf("committing trie: %w", err)
	}
	logger.Tracef("stored trie with root %s", root)
	return root, nil
}

// TrieState returns the state trie with the given root. A nil root
// selects the state of the highest finalised block.
func (s *StorageState) TrieState(root *common.Hash) (*trie.Trie, error) {
	if root == nil {
		header, err := s.blockState.GetHighestFinalisedHeader()
		if err != nil {
			return nil, fmt.Errorf("getting finalised header: %w", err)
		}
		root = &header.StateRoot
	}

	if *root != trie.EmptyRoot {
		has, err := s.db.Has(root.ToBytes())
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, fmt.Errorf("%w: state root %s", trie.ErrMissingNode, *root)
		}
	}
	return trie.NewTrie(*root, s), nil
}

// GetStorage gets the value at key in the state with the given root.
func (s *StorageState) GetStorage(root *common.Hash, key []byte) ([]byte, error) {
	t, err := s.TrieState(root)
	if err != nil {
		return nil, err
	}
	return t.Get(key)
}

// GetStorageByBlockHash returns the value at key in the state of the given block.
func (s *StorageState) GetStorageByBlockHash(hash common.Hash, key []byte) ([]byte, error) {
	header, err := s.blockState.GetHeader(hash)
	if err != nil {
		return nil, err
	}
	return s.GetStorage(&header.StateRoot, key)
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"sync"

	"github.com/ChainSafe/chaindb"
)

// Database is the node database a trie reads encoded nodes from,
// keyed by node hash.
type Database interface {
	Get(key []byte) (value []byte, err error)
}

// Putter writes encoded nodes keyed by node hash.
type Putter interface {
	Put(key, value []byte) error
}

// MemoryDB is an in-memory node database.
type MemoryDB struct {
	mutex sync.RWMutex
	nodes map[string][]byte
}

// NewMemoryDB returns an empty in-memory node database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		nodes: make(map[string][]byte),
	}
}

// Get returns the value at key, or chaindb.ErrKeyNotFound.
func (db *MemoryDB) Get(key []byte) (value []byte, err error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	value, ok := db.nodes[string(key)]
	if !ok {
		return nil, chaindb.ErrKeyNotFound
	}
	return value, nil
}

// Put sets the value at key.
func (db *MemoryDB) Put(key, value []byte) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.nodes[string(key)] = append([]byte(nil), value...)
	return nil
}

// Delete removes the value at key.
func (db *MemoryDB) Delete(key []byte) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	delete(db.nodes, string(key))
}

// Len returns the number of values stored.
func (db *MemoryDB) Len() int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return len(db.nodes)
}

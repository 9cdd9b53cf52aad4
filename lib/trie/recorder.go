// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"sync"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/tidwall/btree"
)

// Recorder records the hashes of the nodes a trie loads from its
// database, in hash order.
type Recorder struct {
	mutex    sync.Mutex
	accessed *btree.Map[string, struct{}]
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		accessed: btree.NewMap[string, struct{}](0),
	}
}

// Record marks the node with the given hash as accessed.
func (r *Recorder) Record(hash common.Hash) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.accessed.Set(string(hash[:]), struct{}{})
}

// Len returns the number of distinct nodes recorded.
func (r *Recorder) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.accessed.Len()
}

// Accessed returns the recorded node hashes sorted bytewise.
func (r *Recorder) Accessed() []common.Hash {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.accessedUnlocked()
}

func (r *Recorder) accessedUnlocked() []common.Hash {
	hashes := make([]common.Hash, 0, r.accessed.Len())
	r.accessed.Scan(func(key string, _ struct{}) bool {
		hashes = append(hashes, common.NewHash([]byte(key)))
		return true
	})
	return hashes
}

// Drain returns the recorded node hashes and resets the recorder.
func (r *Recorder) Drain() []common.Hash {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	hashes := r.accessedUnlocked()
	r.accessed = btree.NewMap[string, struct{}](0)
	return hashes
}

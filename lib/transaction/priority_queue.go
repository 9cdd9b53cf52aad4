// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transaction

import (
	"sync"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/tidwall/btree"
)

// PriorityQueue orders transactions by decreasing priority, then by arrival.
// It holds each extrinsic at most once.
type PriorityQueue struct {
	mu      sync.RWMutex
	ordered *btree.BTreeG[*ValidTransaction]
	byHash  map[common.Hash]*ValidTransaction
	nextSeq uint64
}

func less(a, b *ValidTransaction) bool {
	if a.Validity.Priority != b.Validity.Priority {
		return a.Validity.Priority > b.Validity.Priority
	}
	return a.seq < b.seq
}

// NewPriorityQueue creates new instance of PriorityQueue
func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{
		ordered: btree.NewBTreeG(less),
		byHash:  make(map[common.Hash]*ValidTransaction),
	}
}

// Push inserts a valid transaction. It returns false if the extrinsic is
// already queued.
func (pq *PriorityQueue) Push(vt *ValidTransaction) (pushed bool) {
	if vt.hash.IsEmpty() {
		vt.hash = vt.Extrinsic.Hash()
	}
	if vt.Validity == nil {
		vt.Validity = new(Validity)
	}

	pq.mu.Lock()
	defer pq.mu.Unlock()

	if _, ok := pq.byHash[vt.hash]; ok {
		return false
	}

	vt.seq = pq.nextSeq
	pq.nextSeq++
	pq.ordered.Set(vt)
	pq.byHash[vt.hash] = vt
	return true
}

// Pop removes the transaction with highest priority value from the queue and returns it.
// If there are multiple transaction with same priority value then it return them in FIFO order.
func (pq *PriorityQueue) Pop() *ValidTransaction {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	vt, ok := pq.ordered.PopMin()
	if !ok {
		return nil
	}
	delete(pq.byHash, vt.hash)
	return vt
}

// Peek returns the next item without removing it from the queue
func (pq *PriorityQueue) Peek() *ValidTransaction {
	pq.mu.RLock()
	defer pq.mu.RUnlock()

	vt, ok := pq.ordered.Min()
	if !ok {
		return nil
	}
	return vt
}

// Has returns whether the extrinsic with hash is queued.
func (pq *PriorityQueue) Has(hash common.Hash) bool {
	pq.mu.RLock()
	defer pq.mu.RUnlock()
	_, ok := pq.byHash[hash]
	return ok
}

// RemoveExtrinsic removes the extrinsic with hash from the queue.
func (pq *PriorityQueue) RemoveExtrinsic(hash common.Hash) (removed bool) {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	vt, ok := pq.byHash[hash]
	if !ok {
		return false
	}
	pq.ordered.Delete(vt)
	delete(pq.byHash, hash)
	return true
}

// Pending returns up to limit transactions in queue order, all of them
// when limit is not positive.
func (pq *PriorityQueue) Pending(limit int) []*ValidTransaction {
	pq.mu.RLock()
	defer pq.mu.RUnlock()

	txs := make([]*ValidTransaction, 0, pq.ordered.Len())
	pq.ordered.Scan(func(vt *ValidTransaction) bool {
		txs = append(txs, vt)
		return limit <= 0 || len(txs) < limit
	})
	return txs
}

// Len return the current length of the queue
func (pq *PriorityQueue) Len() int {
	pq.mu.RLock()
	defer pq.mu.RUnlock()
	return pq.ordered.Len()
}

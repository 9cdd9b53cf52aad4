// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/runtime"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "transaction"))

var (
	ErrAlreadyKnown       = errors.New("transaction already in the pool")
	ErrPoolFull           = errors.New("transaction pool is full")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// DefaultMaxTransactions is the default pool capacity.
const DefaultMaxTransactions = 8192

// Validator validates an extrinsic before it enters the pool.
type Validator interface {
	Validate(ext types.Extrinsic) (*Validity, error)
}

// CallValidator accepts the call extrinsics of the native runtime.
type CallValidator struct{}

// Validate implements Validator.
func (CallValidator) Validate(ext types.Extrinsic) (*Validity, error) {
	_, err := runtime.DecodeCall(ext)
	if err != nil {
		return nil, err
	}
	return NewValidity(0), nil
}

// BlockState is the block state the pool maintains itself against.
type BlockState interface {
	GetFinalisedNotifierChannel() chan *types.FinalisationInfo
	FreeFinalisedNotifierChannel(ch chan *types.FinalisationInfo)
	GetBlockBody(hash common.Hash) (types.Body, error)
}

// Pool represents the transaction pool. Block authoring only reads it;
// included transactions are removed by the pool once their block is finalised.
type Pool struct {
	queue     *PriorityQueue
	validator Validator
	capacity  int

	mu     sync.RWMutex
	status map[common.Hash]Status
}

// NewPool returns a new empty Pool
func NewPool(validator Validator, capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultMaxTransactions
	}
	return &Pool{
		queue:     NewPriorityQueue(),
		validator: validator,
		capacity:  capacity,
		status:    make(map[common.Hash]Status),
	}
}

// Submit validates ext and adds it to the pool.
func (p *Pool) Submit(ext types.Extrinsic) (common.Hash, error) {
	hash := ext.Hash()

	validity, err := p.validator.Validate(ext)
	if err != nil {
		p.setStatus(hash, Invalid)
		return hash, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	if p.queue.Len() >= p.capacity {
		p.setStatus(hash, Dropped)
		return hash, fmt.Errorf("%w: %d transactions", ErrPoolFull, p.capacity)
	}

	if !p.queue.Push(NewValidTransaction(ext, validity)) {
		return hash, fmt.Errorf("%w: %s", ErrAlreadyKnown, hash)
	}
	p.setStatus(hash, Ready)

	logger.Tracef("transaction %s entered the pool", hash)
	return hash, nil
}

// Pending returns up to limit extrinsics in inclusion order.
func (p *Pool) Pending(limit int) []types.Extrinsic {
	txs := p.queue.Pending(limit)
	exts := make([]types.Extrinsic, len(txs))
	for i, tx := range txs {
		exts[i] = tx.Extrinsic
	}
	return exts
}

// Len returns the number of transactions in the pool.
func (p *Pool) Len() int {
	return p.queue.Len()
}

// Status returns the status of the transaction with hash.
func (p *Pool) Status(hash common.Hash) Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status[hash]
}

func (p *Pool) setStatus(hash common.Hash, status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status[hash] = status
}

// RemoveFinalised removes the extrinsics of a finalised block body.
func (p *Pool) RemoveFinalised(body types.Body) (removed int) {
	for _, ext := range body {
		hash := ext.Hash()
		if p.queue.RemoveExtrinsic(hash) {
			removed++
		}
		if p.Status(hash) != Unknown {
			p.setStatus(hash, Finalized)
		}
	}
	return removed
}

// Run removes the extrinsics of finalised blocks until ctx is done.
func (p *Pool) Run(ctx context.Context, blockState BlockState) {
	finalised := blockState.GetFinalisedNotifierChannel()
	defer blockState.FreeFinalisedNotifierChannel(finalised)

	for {
		select {
		case <-ctx.Done():
			return
		case info, ok := <-finalised:
			if !ok {
				return
			}

			hash := info.Header.Hash()
			body, err := blockState.GetBlockBody(hash)
			if err != nil {
				logger.Warnf("getting body of finalised block %s: %s", hash, err)
				continue
			}

			removed := p.RemoveFinalised(body)
			if removed > 0 {
				logger.Debugf("removed %d transactions finalised in block #%d (%s)",
					removed, info.Header.Number, hash)
			}
		}
	}
}

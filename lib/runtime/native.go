// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/trie"
	"github.com/ChainSafe/collator/pkg/scale"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "runtime"))

var (
	ErrTransitionFailed       = errors.New("state transition failed")
	ErrMissingInherent        = errors.New("block has no inherent extrinsic")
	ErrRelayParentRegressed   = errors.New("relay parent number went backwards")
	ErrStateRootMismatch      = errors.New("state root mismatch")
	ErrExtrinsicsRootMismatch = errors.New("extrinsics root mismatch")
)

// NativeEngine is the reference state transition of the parachain.
// Block bodies start with the inherent extrinsic, followed by calls
// setting or removing storage values.
type NativeEngine struct {
	db trie.Database
}

var _ Engine = (*NativeEngine)(nil)

// NewNativeEngine returns an engine building blocks on the state stored in db.
func NewNativeEngine(db trie.Database) *NativeEngine {
	return &NativeEngine{db: db}
}

// Execute implements Engine.
func (e *NativeEngine) Execute(ctx context.Context, preStateRoot common.Hash, inputs Inputs) (*Result, error) {
	inherent, err := NewInherentExtrinsic(inputs.Inherent)
	if err != nil {
		return nil, fmt.Errorf("encoding inherent: %w", err)
	}

	body := make(types.Body, 0, 1+len(inputs.Extrinsics))
	body = append(body, inherent)
	body = append(body, inputs.Extrinsics...)

	state, trace, err := apply(ctx, preStateRoot, body, e.db)
	if err != nil {
		return nil, err
	}

	extrinsicsRoot, err := trie.OrderedRoot(body.AsBytes())
	if err != nil {
		return nil, fmt.Errorf("computing extrinsics root: %w", err)
	}

	header := types.NewHeader(inputs.Parent.Hash(), state.RootHash(), extrinsicsRoot,
		inputs.Parent.Number+1, inputs.Digest)

	logger.Debugf("executed block %d on parent %s with %d extrinsics: state root %s",
		header.Number, header.ParentHash, len(body), header.StateRoot)

	return &Result{
		Block: types.NewBlock(*header, body),
		Trace: trace,
		state: state,
	}, nil
}

// ExecuteBlock implements Engine.
func (*NativeEngine) ExecuteBlock(ctx context.Context, preStateRoot common.Hash,
	block *types.Block, db trie.Database) (*Result, error) {
	state, trace, err := apply(ctx, preStateRoot, block.Body, db)
	if err != nil {
		return nil, err
	}

	if state.RootHash() != block.Header.StateRoot {
		return nil, fmt.Errorf("%w: %w: computed %s, header declares %s",
			ErrTransitionFailed, ErrStateRootMismatch, state.RootHash(), block.Header.StateRoot)
	}

	extrinsicsRoot, err := trie.OrderedRoot(block.Body.AsBytes())
	if err != nil {
		return nil, fmt.Errorf("computing extrinsics root: %w", err)
	}

	if extrinsicsRoot != block.Header.ExtrinsicsRoot {
		return nil, fmt.Errorf("%w: %w: computed %s, header declares %s",
			ErrTransitionFailed, ErrExtrinsicsRootMismatch, extrinsicsRoot, block.Header.ExtrinsicsRoot)
	}

	return &Result{
		Block: *block,
		Trace: trace,
		state: state,
	}, nil
}

func apply(ctx context.Context, preStateRoot common.Hash, body types.Body,
	db trie.Database) (state *trie.Trie, trace trie.Trace, err error) {
	recorder := trie.NewRecorder()
	state = trie.NewTrie(preStateRoot, db).WithRecorder(recorder)
	trace.PreStateRoot = preStateRoot

	if len(body) == 0 {
		return nil, trace, fmt.Errorf("%w: %w", ErrTransitionFailed, ErrMissingInherent)
	}

	inherent, err := DecodeInherent(body[0])
	if err != nil {
		return nil, trace, fmt.Errorf("%w: %w", ErrTransitionFailed, err)
	}

	// the authority set is part of every witness so seals can be checked
	// against the proof alone
	if _, err = state.Get(AuthoritiesKey); err != nil {
		return nil, trace, fmt.Errorf("reading authorities: %w", err)
	}
	trace.Reads++

	err = applyInherent(state, inherent, &trace)
	if err != nil {
		return nil, trace, err
	}

	for i, ext := range body[1:] {
		if err = ctx.Err(); err != nil {
			return nil, trace, err
		}

		call, err := DecodeCall(ext)
		if err != nil {
			return nil, trace, fmt.Errorf("%w: extrinsic %d: %w", ErrTransitionFailed, i+1, err)
		}

		switch call.Op {
		case SetOp:
			err = state.Put(call.Key, call.Value)
		case RemoveOp:
			err = state.Delete(call.Key)
		}
		if err != nil {
			return nil, trace, fmt.Errorf("applying extrinsic %d: %w", i+1, err)
		}
		trace.Writes++
	}

	trace.Accessed = recorder.Drain()
	return state, trace, nil
}

type storageWrite struct {
	key   []byte
	value []byte
}

func applyInherent(state *trie.Trie, inherent InherentData, trace *trie.Trace) error {
	previous, err := state.Get(RelayParentNumberKey)
	if err != nil {
		return fmt.Errorf("reading relay parent number: %w", err)
	}
	trace.Reads++

	if previous != nil {
		var previousNumber uint32
		if err = scale.Unmarshal(previous, &previousNumber); err != nil {
			return fmt.Errorf("%w: decoding relay parent number: %w", ErrTransitionFailed, err)
		}
		if inherent.RelayParentNumber < previousNumber {
			return fmt.Errorf("%w: %w: %d is before %d", ErrTransitionFailed,
				ErrRelayParentRegressed, inherent.RelayParentNumber, previousNumber)
		}
	}

	var processed uint64
	encodedProcessed, err := state.Get(ProcessedMessagesKey)
	if err != nil {
		return fmt.Errorf("reading processed messages: %w", err)
	}
	trace.Reads++
	if encodedProcessed != nil {
		if err = scale.Unmarshal(encodedProcessed, &processed); err != nil {
			return fmt.Errorf("%w: decoding processed messages: %w", ErrTransitionFailed, err)
		}
	}

	writes := []storageWrite{
		{key: RelayParentNumberKey, value: scale.MustMarshal(inherent.RelayParentNumber)},
		{key: RelayParentHashKey, value: inherent.RelayParentHash.ToBytes()},
		{key: LastIncludedHeadKey, value: inherent.LastIncludedHead.ToBytes()},
		{key: TimestampKey, value: scale.MustMarshal(inherent.Timestamp)},
	}

	for _, message := range inherent.DownwardMessages {
		key := append(append([]byte{}, DownwardMessagePrefix...), scale.MustMarshal(processed)...)
		writes = append(writes, storageWrite{key: key, value: scale.MustMarshal(message)})
		processed++
	}
	writes = append(writes, storageWrite{key: ProcessedMessagesKey, value: scale.MustMarshal(processed)})

	for _, write := range writes {
		if err = state.Put(write.key, write.value); err != nil {
			return fmt.Errorf("applying inherent: %w", err)
		}
		trace.Writes++
	}
	return nil
}

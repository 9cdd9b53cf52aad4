// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package candidatevalidation

import (
	"context"
	"errors"
	"fmt"

	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/lib/trie/proof"
	"github.com/ChainSafe/collator/pkg/scale"
	lru "github.com/hashicorp/golang-lru"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "parachain-candidate-validation"))

var ErrInvalidCandidate = errors.New("invalid candidate")

const (
	// povBombLimitFactor bounds the decompressed PoV size as a multiple of
	// the maximum PoV size.
	povBombLimitFactor = 4
	processedCacheSize = 128
)

// Host re-executes candidates against their witness alone, the way relay
// chain validators do.
type Host struct {
	engine     runtime.Engine
	checkSeals bool
	processed  *lru.Cache
}

// NewHost returns a validation host executing blocks with engine. With
// checkSeals set, blocks must carry a valid aura seal.
func NewHost(engine runtime.Engine, checkSeals bool) (*Host, error) {
	processed, err := lru.New(processedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating processed candidates cache: %w", err)
	}

	return &Host{
		engine:     engine,
		checkSeals: checkSeals,
		processed:  processed,
	}, nil
}

// Validate validates the candidate of task. An invalid candidate is not an
// error; errors are returned when validation itself could not run.
func (h *Host) Validate(ctx context.Context, task *ValidationTask) (*ValidationResult, error) {
	receipt := task.CandidateReceipt
	descriptor := receipt.Descriptor
	pvd := task.PersistedValidationData

	if uint64(len(task.PoV.BlockData)) > uint64(pvd.MaxPovSize) {
		return invalid(ParamsTooLarge), nil
	}

	if task.PoV.Hash() != descriptor.PovHash {
		return invalid(PoVHashMismatch), nil
	}

	if task.ValidationCode.Hash() != descriptor.ValidationCodeHash {
		return invalid(CodeHashMismatch), nil
	}

	if pvd.Hash() != descriptor.PersistedValidationDataHash {
		return invalid(BadParent), nil
	}

	if err := descriptor.CheckCollatorSignature(); err != nil {
		logger.Debugf("checking collator signature: %s", err)
		return invalid(BadSignature), nil
	}

	candidateHash := receipt.Hash()
	if processed, ok := h.processed.Get(candidateHash); ok {
		logger.Debugf("candidate %s already processed", candidateHash)
		return processed.(*ValidationResult), nil
	}

	result, err := h.execute(ctx, task)
	if err != nil {
		return nil, err
	}

	if result.IsValid() {
		h.processed.Add(candidateHash, result)
	}
	return result, nil
}

func (h *Host) execute(ctx context.Context, task *ValidationTask) (*ValidationResult, error) {
	descriptor := task.CandidateReceipt.Descriptor
	pvd := task.PersistedValidationData

	blockData, err := task.PoV.DecodeBlockData(uint64(pvd.MaxPovSize) * povBombLimitFactor)
	if err != nil {
		logger.Debugf("decoding PoV %s: %s", descriptor.PovHash, err)
		return invalid(PoVDecompressionFailure), nil
	}

	var parent types.Header
	if err = scale.Unmarshal(pvd.ParentHead, &parent); err != nil {
		logger.Debugf("decoding parent head: %s", err)
		return invalid(BadParent), nil
	}

	block := blockData.Block()
	if block.Header.ParentHash != parent.Hash() || block.Header.Number != parent.Number+1 {
		return invalid(BadParent), nil
	}

	witness := proof.Witness{
		PreStateRoot: parent.StateRoot,
		Nodes:        blockData.StorageProof.EncodedNodes,
	}
	db, err := witness.Database()
	if err != nil {
		logger.Debugf("loading witness: %s", err)
		return invalid(ExecutionError), nil
	}

	if h.checkSeals {
		authorities, err := aura.NewStateAuthorities(db).Authorities(&parent)
		if err != nil {
			logger.Debugf("reading authorities from witness: %s", err)
			return invalid(BadSeal), nil
		}

		if _, _, err = aura.VerifySeal(&block.Header, authorities); err != nil {
			logger.Debugf("verifying seal: %s", err)
			return invalid(BadSeal), nil
		}
	}

	_, err = h.engine.ExecuteBlock(ctx, parent.StateRoot, block, db)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debugf("executing block %s: %s", block.Header.Hash(), err)
		return invalid(ExecutionError), nil
	}

	inherent, err := runtime.DecodeInherent(block.Body[0])
	if err != nil {
		return invalid(ExecutionError), nil
	}

	if inherent.RelayParentHash != descriptor.RelayParent ||
		inherent.RelayParentNumber != pvd.RelayParentNumber ||
		inherent.RelayParentStorageRoot != pvd.RelayParentStorageRoot {
		return invalid(InvalidOutputs), nil
	}

	if inherent.LastIncludedHead != parent.Hash() {
		return invalid(BadParent), nil
	}

	commitments := parachaintypes.NewCommitments(&block.Header, inherent)
	if commitments.HeadData.Hash() != descriptor.ParaHead {
		return invalid(ParaHeadHashMismatch), nil
	}

	if commitments.Hash() != task.CandidateReceipt.CommitmentsHash {
		return invalid(CommitmentsHashMismatch), nil
	}

	return &ValidationResult{
		ValidResult: &ValidValidationResult{
			CandidateCommitments:    commitments,
			PersistedValidationData: pvd,
		},
	}, nil
}

// VerifyCollation validates collation against code and returns an error
// wrapping ErrInvalidCandidate and the reason when it is invalid.
func (h *Host) VerifyCollation(ctx context.Context, collation parachaintypes.Collation,
	code parachaintypes.ValidationCode) error {
	result, err := h.Validate(ctx, NewValidationTask(collation, code))
	if err != nil {
		return fmt.Errorf("validating candidate %s: %w", collation.Receipt.Hash(), err)
	}

	if !result.IsValid() {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, result.Err())
	}
	return nil
}

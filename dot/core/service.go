// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/blocktree"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/lib/services"
)

var (
	_      services.Service = &Service{}
	logger                  = log.NewFromGlobal(log.AddContext("pkg", "core"))
)

// Service commits blocks to the local state. Produced blocks are stored
// as executed; blocks from elsewhere have their seal checked and are
// re-executed on the parent state first.
type Service struct {
	blockState   BlockState
	storageState StorageState
	engine       runtime.Engine
	authorities  aura.AuthoritySource
}

// Config holds the configuration for the core Service.
type Config struct {
	LogLvl       log.Level
	BlockState   BlockState
	StorageState StorageState
	Engine       runtime.Engine
	// Authorities, when set, makes imported blocks require a valid aura seal.
	Authorities aura.AuthoritySource
}

// NewService returns a new core service.
func NewService(cfg *Config) (*Service, error) {
	if cfg.BlockState == nil {
		return nil, ErrNilBlockState
	}

	if cfg.StorageState == nil {
		return nil, ErrNilStorageState
	}

	if cfg.Engine == nil {
		return nil, ErrNilEngine
	}

	logger.Patch(log.SetLevel(cfg.LogLvl))

	return &Service{
		blockState:   cfg.BlockState,
		storageState: cfg.StorageState,
		engine:       cfg.Engine,
		authorities:  cfg.Authorities,
	}, nil
}

// Start starts the core service
func (*Service) Start() error {
	return nil
}

// Stop stops the core service
func (*Service) Stop() error {
	return nil
}

// HandleBlockProduced stores a block built locally along with the state
// nodes its execution created.
func (s *Service) HandleBlockProduced(block *types.Block, result *runtime.Result) error {
	if block == nil || result == nil {
		return ErrNilBlockHandlerParameter
	}

	return s.storeBlock(block, result)
}

// HandleBlockImport verifies and stores a block that was not built locally.
// Blocks already known are ignored.
func (s *Service) HandleBlockImport(ctx context.Context, block *types.Block) error {
	if block == nil {
		return ErrNilBlockHandlerParameter
	}

	hash := block.Header.Hash()
	has, err := s.blockState.HasHeader(hash)
	if err != nil {
		return fmt.Errorf("checking for block %s: %w", hash, err)
	}
	if has {
		logger.Debugf("block %s already imported", hash)
		return nil
	}

	parent, err := s.blockState.GetHeader(block.Header.ParentHash)
	if err != nil {
		return fmt.Errorf("%w: %s", blocktree.ErrParentNotFound, err)
	}

	if s.authorities != nil {
		authorities, err := s.authorities.Authorities(parent)
		if err != nil {
			return fmt.Errorf("getting authorities at parent %s: %w", block.Header.ParentHash, err)
		}

		author, _, err := aura.VerifySeal(&block.Header, authorities)
		if err != nil {
			return fmt.Errorf("verifying seal of block %s: %w", hash, err)
		}
		logger.Tracef("block %s sealed by %s", hash, author)
	}

	result, err := s.engine.ExecuteBlock(ctx, parent.StateRoot, block, s.storageState)
	if err != nil {
		return fmt.Errorf("executing block %s: %w", hash, err)
	}

	return s.storeBlock(block, result)
}

func (s *Service) storeBlock(block *types.Block, result *runtime.Result) error {
	// store updates state trie nodes in database
	if err := result.Commit(s.storageState); err != nil {
		logger.Warnf("failed to store state trie for block %s: %s", block.Header.Hash(), err)
		return err
	}

	// store block in database
	err := s.blockState.AddBlock(block)
	if errors.Is(err, blocktree.ErrBlockExists) {
		return nil
	} else if err != nil {
		return err
	}

	logger.Debugf("imported block %d (%s) and stored state trie with root %s",
		block.Header.Number, block.Header.Hash(), result.PostStateRoot())
	return nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"fmt"
	"path/filepath"

	"github.com/ChainSafe/chaindb"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/genesis"
	"github.com/ChainSafe/collator/lib/trie"
	"github.com/ChainSafe/collator/lib/utils"
)

var logger = log.NewFromGlobal(
	log.AddContext("pkg", "state"),
)

// Service is the struct that holds storage, block and genesis state
type Service struct {
	dbPath  string
	logLvl  log.Level
	db      chaindb.Database
	isMemDB bool // set to true if using an in-memory database; only used for testing.
	Base    *BaseState
	Storage *StorageState
	Block   *BlockState
}

// Config is the default configuration used by state service.
type Config struct {
	Path     string
	LogLevel log.Level
}

// NewService create a new instance of Service
func NewService(config Config) *Service {
	logger.Patch(log.SetLevel(config.LogLevel))

	return &Service{
		dbPath: config.Path,
		logLvl: config.LogLevel,
	}
}

// UseMemDB tells the service to use an in-memory key-value store instead of a persistent database.
// This should be called after NewService, and before Initialise.
// This should only be used for testing.
func (s *Service) UseMemDB() {
	s.isMemDB = true
}

// DB returns the Service's database
func (s *Service) DB() chaindb.Database {
	return s.db
}

// Initialise initialises the genesis state of the DB using the given genesis data and trie.
// A persistent database is closed afterwards and reopened by Start.
func (s *Service) Initialise(gen *genesis.Genesis, header *types.Header, t *trie.Trie) error {
	basepath, err := filepath.Abs(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to read basepath: %w", err)
	}

	if err = utils.ClearDatabase(basepath); err != nil {
		return fmt.Errorf("while cleaning database: %w", err)
	}

	db, err := utils.SetupDatabase(basepath, s.isMemDB)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	s.db = db

	if header.StateRoot != t.RootHash() {
		return fmt.Errorf("genesis header state root %s does not match trie root %s", header.StateRoot, t.RootHash())
	}

	blockState, err := NewBlockStateFromGenesis(db, header)
	if err != nil {
		return fmt.Errorf("failed to create block state from genesis: %w", err)
	}

	storageState := NewStorageState(db, blockState)
	if _, err = storageState.StoreTrie(t); err != nil {
		return fmt.Errorf("failed to write genesis trie to database: %w", err)
	}

	base := NewBaseState(db)
	if err = base.StoreGenesisData(gen); err != nil {
		return fmt.Errorf("failed to write genesis data to database: %w", err)
	}

	logger.Infof("initialised state with genesis hash %s and state root %s", blockState.genesisHash, header.StateRoot)

	if s.isMemDB {
		s.Base = base
		s.Storage = storageState
		s.Block = blockState
		return nil
	}

	if err = db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

// Start initialises the Storage database and the Block database. Starting
// an open service is a no-op.
func (s *Service) Start() error {
	if s.db != nil && s.Block != nil {
		return nil
	}

	basepath, err := filepath.Abs(s.dbPath)
	if err != nil {
		return err
	}

	db, err := utils.SetupDatabase(basepath, s.isMemDB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	s.Base = NewBaseState(db)

	s.Block, err = NewBlockState(db)
	if err != nil {
		return fmt.Errorf("failed to create block state: %w", err)
	}

	s.Storage = NewStorageState(db, s.Block)

	finalised, err := s.Block.GetHighestFinalisedHeader()
	if err != nil {
		return fmt.Errorf("failed to get finalised header: %w", err)
	}

	if _, err = s.Storage.TrieState(&finalised.StateRoot); err != nil {
		return fmt.Errorf("failed to load finalised state: %w", err)
	}

	logger.Infof("created state service with finalised head %d (%s) and genesis hash %s",
		finalised.Number, finalised.Hash(), s.Block.GenesisHash())
	return nil
}

// Stop closes the database.
func (s *Service) Stop() error {
	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	s.db = nil
	return nil
}

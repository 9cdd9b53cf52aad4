// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"encoding/json"
	"fmt"

	"github.com/ChainSafe/chaindb"
	"github.com/ChainSafe/collator/lib/genesis"
)

var genesisDataKey = []byte("genesisdata")

// BaseState is a wrapper for the chaindb.Database, without any prefixes
type BaseState struct {
	db chaindb.Database
}

// NewBaseState returns a new BaseState
func NewBaseState(db chaindb.Database) *BaseState {
	return &BaseState{
		db: db,
	}
}

// StoreGenesisData stores the chain spec the database was initialised with.
func (s *BaseState) StoreGenesisData(gen *genesis.Genesis) error {
	enc, err := json.Marshal(gen)
	if err != nil {
		return fmt.Errorf("cannot encode genesis data: %w", err)
	}

	return s.db.Put(genesisDataKey, enc)
}

// LoadGenesisData retrieves the chain spec the database was initialised with.
func (s *BaseState) LoadGenesisData() (*genesis.Genesis, error) {
	enc, err := s.db.Get(genesisDataKey)
	if err != nil {
		return nil, err
	}

	data := &genesis.Genesis{}
	if err = json.Unmarshal(enc, data); err != nil {
		return nil, err
	}

	return data, nil
}

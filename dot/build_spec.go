// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package dot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ChainSafe/collator/dot/state"
	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/genesis"
	"github.com/ChainSafe/collator/lib/keystore"
	"github.com/ChainSafe/collator/lib/utils"
)

// BuildSpec object for working with building genesis JSON files
type BuildSpec struct {
	genesis *genesis.Genesis
}

// ToJSON outputs genesis JSON in the form it was built from.
func (b *BuildSpec) ToJSON() ([]byte, error) {
	return json.MarshalIndent(b.genesis, "", "    ")
}

// ToJSONRaw outputs genesis JSON in raw form
func (b *BuildSpec) ToJSONRaw() ([]byte, error) {
	raw := *b.genesis
	if err := raw.ToRaw(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(&raw, "", "    ")
}

// WriteGenesisSpecFile writes the build-spec in the output filepath
func WriteGenesisSpecFile(data []byte, fp string) error {
	if utils.PathExists(fp) {
		return fmt.Errorf("file %s already exists, rename to avoid overwriting", fp)
	}
	return os.WriteFile(fp, data, 0o600)
}

// BuildFromGenesis builds a BuildSpec based on the chain spec file at path
func BuildFromGenesis(path string) (*BuildSpec, error) {
	gen, err := genesis.NewGenesisFromJSON(path)
	if err != nil {
		return nil, err
	}
	return &BuildSpec{genesis: gen}, nil
}

// BuildFromDev builds the chain spec of a development parachain authored by
// the named development keys (alice, bob, ...).
func BuildFromDev(paraID uint32, relayChain string, authorityNames []string) (*BuildSpec, error) {
	kr, err := keystore.NewSr25519Keyring()
	if err != nil {
		return nil, err
	}

	authorities := make([]aura.AuthorityID, len(authorityNames))
	for i, name := range authorityNames {
		kp, err := kr.Keypair(name)
		if err != nil {
			return nil, fmt.Errorf("development key %s: %w", name, err)
		}
		authorities[i] = aura.NewAuthorityID(kp.Public())
	}

	gen := genesis.DevGenesis(paraID, relayChain, authorities)
	if err = gen.Validate(); err != nil {
		return nil, err
	}
	return &BuildSpec{genesis: gen}, nil
}

// BuildFromDB builds a BuildSpec from the genesis data stored in the
// database of an initialised node.
func BuildFromDB(basepath string) (*BuildSpec, error) {
	db, err := utils.SetupDatabase(basepath, false)
	if err != nil {
		return nil, fmt.Errorf("cannot setup database: %w", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Errorf("failed to close database: %s", err)
		}
	}()

	gen, err := state.NewBaseState(db).LoadGenesisData()
	if err != nil {
		return nil, fmt.Errorf("cannot load genesis data: %w", err)
	}
	return &BuildSpec{genesis: gen}, nil
}

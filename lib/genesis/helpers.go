// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/trie"
)

// NewGenesisFromJSON parses a JSON chain spec, converts it to raw
// format and validates it.
func NewGenesisFromJSON(file string) (*Genesis, error) {
	fp, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(fp))
	if err != nil {
		return nil, err
	}

	g := new(Genesis)
	if err = json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("decoding chain spec %s: %w", file, err)
	}

	if err = g.Validate(); err != nil {
		return nil, err
	}

	if err = g.ToRaw(); err != nil {
		return nil, err
	}
	return g, nil
}

// WriteJSON writes the chain spec to file.
func (g *Genesis) WriteJSON(file string) error {
	data, err := json.MarshalIndent(g, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o600)
}

// NewTrieFromGenesis creates a new trie from the raw genesis data
func NewTrieFromGenesis(g *Genesis) (*trie.Trie, error) {
	if !g.IsRaw() {
		return nil, fmt.Errorf("genesis %s is not in raw format", g.ID)
	}

	top := g.Genesis.Raw["top"]
	keys := make([]string, 0, len(top))
	for key := range top {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	t := trie.NewEmptyTrie(nil)
	for _, key := range keys {
		k, err := common.HexToBytes(key)
		if err != nil {
			return nil, fmt.Errorf("decoding key %s: %w", key, err)
		}
		v, err := common.HexToBytes(top[key])
		if err != nil {
			return nil, fmt.Errorf("decoding value of key %s: %w", key, err)
		}
		if err = t.Put(k, v); err != nil {
			return nil, fmt.Errorf("failed to create trie from genesis: %w", err)
		}
	}

	return t, nil
}

// NewGenesisBlockFromTrie creates a genesis block from the provided trie
func NewGenesisBlockFromTrie(t *trie.Trie) (*types.Header, error) {
	extrinsicsRoot, err := trie.OrderedRoot(nil)
	if err != nil {
		return nil, fmt.Errorf("computing empty extrinsics root: %w", err)
	}

	return types.NewHeader(common.Hash{}, t.RootHash(), extrinsicsRoot, 0, types.Digest{}), nil
}

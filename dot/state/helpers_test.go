// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"testing"
	"time"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/genesis"
	"github.com/ChainSafe/collator/lib/trie"

	"github.com/stretchr/testify/require"
)

var testArrival = time.Unix(1_700_000_000, 0)

func newTestGenesis(t *testing.T) (*genesis.Genesis, *trie.Trie, *types.Header) {
	t.Helper()

	gen := genesis.DevGenesis(2000, "rococo-local", nil)
	require.NoError(t, gen.ToRaw())

	genTrie, err := genesis.NewTrieFromGenesis(gen)
	require.NoError(t, err)
	require.NoError(t, genTrie.Put([]byte("balance"), []byte{1, 2, 3}))

	header, err := genesis.NewGenesisBlockFromTrie(genTrie)
	require.NoError(t, err)
	return gen, genTrie, header
}

func newTestService(t *testing.T) (*Service, *types.Header) {
	t.Helper()

	gen, genTrie, header := newTestGenesis(t)
	s := NewService(Config{Path: t.TempDir(), LogLevel: log.Info})
	s.UseMemDB()
	require.NoError(t, s.Initialise(gen, header, genTrie))
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		require.NoError(t, s.Stop())
	})
	return s, header
}

// newTestBlock builds a block on parent, fork distinguishes siblings.
func newTestBlock(parent *types.Header, fork byte) *types.Block {
	header := types.NewHeader(parent.Hash(), parent.StateRoot, common.Hash{fork}, parent.Number+1, types.Digest{})
	return &types.Block{
		Header: *header,
		Body:   types.Body{types.Extrinsic{fork, 1}},
	}
}

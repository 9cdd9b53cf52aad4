// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"testing"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/trie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommittedTrie(t *testing.T, n int) (*trie.MemoryDB, common.Hash) {
	t.Helper()

	db := trie.NewMemoryDB()
	tr := trie.NewEmptyTrie(db)
	for i := 0; i < n; i++ {
		require.NoError(t, tr.Put([]byte{byte(i)}, []byte{byte(i), byte(i)}))
	}
	root, err := tr.Commit(db)
	require.NoError(t, err)
	return db, root
}

func Test_Builder_Build(t *testing.T) {
	t.Parallel()

	db, root := newCommittedTrie(t, 64)

	recorder := trie.NewRecorder()
	executed := trie.NewTrie(root, db).WithRecorder(recorder)
	_, err := executed.Get([]byte{7})
	require.NoError(t, err)
	require.NoError(t, executed.Put([]byte{9}, []byte("changed")))
	require.NoError(t, executed.Delete([]byte{11}))
	postRoot := executed.RootHash()

	trace := trie.Trace{PreStateRoot: root, Accessed: recorder.Drain()}
	witness, err := NewBuilder(db).Build(root, trace)
	require.NoError(t, err)
	assert.Len(t, witness.Nodes, len(trace.Accessed))
	assert.Less(t, len(witness.Nodes), db.Len())

	// replaying the same operations against the witness alone
	// reaches the same post-state root
	witnessDB, err := witness.Database()
	require.NoError(t, err)
	replay := trie.NewTrie(root, witnessDB)
	value, err := replay.Get([]byte{7})
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 7}, value)
	require.NoError(t, replay.Put([]byte{9}, []byte("changed")))
	require.NoError(t, replay.Delete([]byte{11}))
	assert.Equal(t, postRoot, replay.RootHash())

	// anything outside of the witness is unavailable
	_, err = replay.Get([]byte{40})
	assert.ErrorIs(t, err, trie.ErrMissingNode)
}

func Test_Builder_Build_errors(t *testing.T) {
	t.Parallel()

	db, root := newCommittedTrie(t, 4)

	testCases := map[string]struct {
		preStateRoot common.Hash
		trace        trie.Trace
		errMessage   string
	}{
		"root mismatch": {
			preStateRoot: root,
			trace:        trie.Trace{PreStateRoot: common.Hash{1}},
			errMessage:   "cannot construct proof: trace starts at",
		},
		"pruned node": {
			preStateRoot: root,
			trace: trie.Trace{
				PreStateRoot: root,
				Accessed:     []common.Hash{root, {2}},
			},
			errMessage: "cannot construct proof: node 0x0200",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			witness, err := NewBuilder(db).Build(testCase.preStateRoot, testCase.trace)
			assert.Nil(t, witness)
			assert.ErrorIs(t, err, ErrProofConstruction)
			assert.ErrorContains(t, err, testCase.errMessage)
		})
	}
}

func Test_Builder_Build_corruptedBackend(t *testing.T) {
	t.Parallel()

	db, root := newCommittedTrie(t, 4)
	require.NoError(t, db.Put(root[:], []byte("garbage")))

	_, err := NewBuilder(db).Build(root, trie.Trace{PreStateRoot: root, Accessed: []common.Hash{root}})
	assert.ErrorIs(t, err, ErrProofConstruction)
	assert.ErrorContains(t, err, "is corrupted")
}

func Test_Witness_Database(t *testing.T) {
	t.Parallel()

	node := []byte("node")
	testCases := map[string]struct {
		witness    Witness
		errWrapped error
	}{
		"empty": {
			witness: Witness{PreStateRoot: trie.EmptyRoot},
		},
		"valid": {
			witness: Witness{PreStateRoot: common.Blake2bHash(node), Nodes: [][]byte{node}},
		},
		"duplicate": {
			witness:    Witness{PreStateRoot: common.Blake2bHash(node), Nodes: [][]byte{node, node}},
			errWrapped: ErrDuplicateNode,
		},
		"missing root": {
			witness:    Witness{PreStateRoot: common.Hash{9}, Nodes: [][]byte{node}},
			errWrapped: ErrRootNotInWitness,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			db, err := testCase.witness.Database()
			assert.ErrorIs(t, err, testCase.errWrapped)
			if testCase.errWrapped == nil {
				assert.Equal(t, len(testCase.witness.Nodes), db.Len())
			}
		})
	}
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"fmt"
	"testing"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_Trie_PutGetDelete(t *testing.T) {
	t.Parallel()

	trie := NewEmptyTrie(nil)
	assert.Equal(t, EmptyRoot, trie.RootHash())

	entries := map[string]string{
		"noot":      "washere",
		"nooty":     "wasnthere",
		":code":     "runtime",
		"abc":       "123",
		"\x00\x01":  "binary",
		"longerkey": "value",
	}
	for key, value := range entries {
		require.NoError(t, trie.Put([]byte(key), []byte(value)))
	}

	for key, value := range entries {
		got, err := trie.Get([]byte(key))
		require.NoError(t, err)
		assert.Equal(t, []byte(value), got, key)
	}

	missing, err := trie.Get([]byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := trie.Entries()
	require.NoError(t, err)
	assert.Len(t, all, len(entries))

	for key := range entries {
		require.NoError(t, trie.Delete([]byte(key)))
	}
	assert.Equal(t, EmptyRoot, trie.RootHash())
}

func Test_Trie_DeleteRestoresCanonicalRoot(t *testing.T) {
	t.Parallel()

	base := NewEmptyTrie(nil)
	for i := 0; i < 20; i++ {
		require.NoError(t, base.Put([]byte(fmt.Sprintf("key%d", i)), []byte{byte(i)}))
	}
	expected := base.RootHash()

	require.NoError(t, base.Put([]byte("extra"), []byte("value")))
	assert.NotEqual(t, expected, base.RootHash())

	require.NoError(t, base.Delete([]byte("extra")))
	assert.Equal(t, expected, base.RootHash())

	require.NoError(t, base.Delete([]byte("never inserted")))
	assert.Equal(t, expected, base.RootHash())
}

func Test_Trie_PutSameValue(t *testing.T) {
	t.Parallel()

	trie := NewEmptyTrie(nil)
	require.NoError(t, trie.Put([]byte("a"), []byte("1")))
	root := trie.RootHash()
	require.NoError(t, trie.Put([]byte("a"), []byte("1")))
	assert.Equal(t, root, trie.RootHash())
	require.NoError(t, trie.Put([]byte("a"), []byte("2")))
	assert.NotEqual(t, root, trie.RootHash())
}

func Test_Trie_CommitAndLoad(t *testing.T) {
	t.Parallel()

	db := NewMemoryDB()
	trie := NewEmptyTrie(db)
	for i := 0; i < 50; i++ {
		require.NoError(t, trie.Put([]byte{byte(i)}, []byte{byte(i), 1}))
	}
	// overwritten nodes must not be committed
	require.NoError(t, trie.Put([]byte{0}, []byte("final")))

	root, err := trie.Commit(db)
	require.NoError(t, err)
	assert.Equal(t, trie.RootHash(), root)

	reachable := 0
	reloaded := NewTrie(root, db)
	err = reloaded.walk(reloaded.root, func(common.Hash, *node) bool {
		reachable++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, reachable, db.Len())

	value, err := reloaded.Get([]byte{0})
	require.NoError(t, err)
	assert.Equal(t, []byte("final"), value)
}

func Test_Trie_Recorder(t *testing.T) {
	t.Parallel()

	db := NewMemoryDB()
	trie := NewEmptyTrie(db)
	for i := 0; i < 32; i++ {
		require.NoError(t, trie.Put([]byte{byte(i)}, []byte{byte(i)}))
	}
	root, err := trie.Commit(db)
	require.NoError(t, err)

	recorder := NewRecorder()
	recorded := NewTrie(root, db).WithRecorder(recorder)

	_, err = recorded.Get([]byte{3})
	require.NoError(t, err)
	accessed := recorder.Accessed()
	require.NotEmpty(t, accessed)
	assert.Equal(t, root, findHash(accessed, root))

	// nodes created by writes are in memory and never recorded
	count := recorder.Len()
	require.NoError(t, recorded.Put([]byte{3}, []byte("new")))
	_, err = recorded.Get([]byte{3})
	require.NoError(t, err)
	assert.Equal(t, count, recorder.Len())

	drained := recorder.Drain()
	assert.Len(t, drained, count)
	assert.Zero(t, recorder.Len())
	for i := 1; i < len(drained); i++ {
		assert.Negative(t, compareHashes(drained[i-1], drained[i]))
	}
}

func findHash(hashes []common.Hash, target common.Hash) common.Hash {
	for _, hash := range hashes {
		if hash == target {
			return hash
		}
	}
	return common.Hash{}
}

func compareHashes(a, b common.Hash) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func Test_Trie_load_errors(t *testing.T) {
	t.Parallel()

	db := NewMemoryDB()
	trie := NewEmptyTrie(db)
	require.NoError(t, trie.Put([]byte("a"), []byte("1")))
	require.NoError(t, trie.Put([]byte("b"), []byte("2")))
	root, err := trie.Commit(db)
	require.NoError(t, err)

	_, err = NewTrie(common.Hash{1}, db).Get([]byte("a"))
	assert.ErrorIs(t, err, ErrMissingNode)

	require.NoError(t, db.Put(root[:], []byte("tampered")))
	_, err = NewTrie(root, db).Get([]byte("a"))
	assert.ErrorIs(t, err, ErrCorruptNode)
}

func Test_OrderedRoot(t *testing.T) {
	t.Parallel()

	root, err := OrderedRoot(nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyRoot, root)

	first, err := OrderedRoot([][]byte{{1}, {2}})
	require.NoError(t, err)
	swapped, err := OrderedRoot([][]byte{{2}, {1}})
	require.NoError(t, err)
	assert.NotEqual(t, first, swapped)
}

func Test_Trie_String(t *testing.T) {
	t.Parallel()

	trie := NewEmptyTrie(nil)
	assert.Equal(t, "empty", trie.String())

	require.NoError(t, trie.Put([]byte("a"), []byte("1")))
	require.NoError(t, trie.Put([]byte("b"), []byte("2")))
	s := trie.String()
	assert.Contains(t, s, "Trie")
	assert.Contains(t, s, "branch")
	assert.Contains(t, s, "leaf")
}

func Test_Trie_RootIndependentOfOrder(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(rapid.SliceOfN(rapid.Byte(), 1, 8), 1, 30,
			func(key []byte) string { return string(key) }).Draw(t, "keys")
		permutation := rapid.Permutation(keys).Draw(t, "permutation")

		first := NewEmptyTrie(nil)
		for _, key := range keys {
			if err := first.Put(key, append([]byte("v"), key...)); err != nil {
				t.Fatal(err)
			}
		}

		second := NewEmptyTrie(nil)
		for _, key := range permutation {
			if err := second.Put(key, append([]byte("v"), key...)); err != nil {
				t.Fatal(err)
			}
		}

		if first.RootHash() != second.RootHash() {
			t.Fatalf("roots differ: %s != %s", first.RootHash(), second.RootHash())
		}
	})
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/trie"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "proof"))

var (
	// ErrProofConstruction is returned when the state backend cannot
	// provide a node the execution accessed.
	ErrProofConstruction = errors.New("cannot construct proof")
	ErrRootNotInWitness  = errors.New("pre-state root is not in the witness")
	ErrDuplicateNode     = errors.New("duplicate node in witness")
)

// Witness is the set of encoded trie nodes needed to re-execute a
// state transition from PreStateRoot, ordered by node hash.
type Witness struct {
	PreStateRoot common.Hash
	Nodes        [][]byte
}

// Size returns the total size of the encoded nodes.
func (w *Witness) Size() (size int) {
	for _, node := range w.Nodes {
		size += len(node)
	}
	return size
}

// Database returns an in-memory node database holding the witness nodes.
// It fails if a node appears twice or if the pre-state root is missing
// from a non empty witness.
func (w *Witness) Database() (*trie.MemoryDB, error) {
	db := trie.NewMemoryDB()
	rootFound := false
	for _, node := range w.Nodes {
		hash := common.Blake2bHash(node)
		if _, err := db.Get(hash[:]); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, hash)
		}
		if err := db.Put(hash[:], node); err != nil {
			return nil, err
		}
		rootFound = rootFound || hash == w.PreStateRoot
	}

	if len(w.Nodes) > 0 && !rootFound {
		return nil, fmt.Errorf("%w: %s", ErrRootNotInWitness, w.PreStateRoot)
	}
	return db, nil
}

// Builder builds witnesses from a state backend.
type Builder struct {
	backend trie.Database
}

// NewBuilder returns a builder reading node encodings from backend.
func NewBuilder(backend trie.Database) *Builder {
	return &Builder{backend: backend}
}

// Build returns the witness holding exactly the nodes listed in the trace.
func (b *Builder) Build(preStateRoot common.Hash, trace trie.Trace) (*Witness, error) {
	if trace.PreStateRoot != preStateRoot {
		return nil, fmt.Errorf("%w: trace starts at %s and not at %s",
			ErrProofConstruction, trace.PreStateRoot, preStateRoot)
	}

	witness := &Witness{
		PreStateRoot: preStateRoot,
		Nodes:        make([][]byte, 0, len(trace.Accessed)),
	}

	for _, hash := range trace.Accessed {
		encoding, err := b.backend.Get(hash[:])
		if err != nil {
			return nil, fmt.Errorf("%w: node %s: %w", ErrProofConstruction, hash, err)
		}

		if common.Blake2bHash(encoding) != hash {
			return nil, fmt.Errorf("%w: node %s is corrupted", ErrProofConstruction, hash)
		}

		witness.Nodes = append(witness.Nodes, encoding)
	}

	logger.Tracef("built witness for pre-state root %s with %d nodes (%d bytes)",
		preStateRoot, len(witness.Nodes), witness.Size())
	return witness, nil
}

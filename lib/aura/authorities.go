// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package aura

import (
	"fmt"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/crypto/sr25519"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/lib/trie"
	"github.com/ChainSafe/collator/pkg/scale"
)

// AuthorityID is the sr25519 public key of an aura authority.
type AuthorityID [sr25519.PublicKeyLength]byte

// NewAuthorityID returns the authority id of the public key.
func NewAuthorityID(pub crypto.PublicKey) (id AuthorityID) {
	copy(id[:], pub.Encode())
	return id
}

func (a AuthorityID) String() string {
	return crypto.EncodeSS58(a[:], crypto.DefaultSS58Prefix)
}

// EncodeAuthorities SCALE encodes the authority set as stored on chain.
func EncodeAuthorities(authorities []AuthorityID) []byte {
	return scale.MustMarshal(authorities)
}

// DecodeAuthorities decodes an authority set as stored on chain.
func DecodeAuthorities(data []byte) (authorities []AuthorityID, err error) {
	err = scale.Unmarshal(data, &authorities)
	if err != nil {
		return nil, fmt.Errorf("decoding authorities: %w", err)
	}
	return authorities, nil
}

// AuthoritySource returns the authority set in effect on top of a parachain block.
type AuthoritySource interface {
	Authorities(parent *types.Header) ([]AuthorityID, error)
}

// StateAuthorities reads the authority set from the parachain state.
type StateAuthorities struct {
	db trie.Database
}

var _ AuthoritySource = (*StateAuthorities)(nil)

// NewStateAuthorities returns an authority source reading state nodes from db.
func NewStateAuthorities(db trie.Database) *StateAuthorities {
	return &StateAuthorities{db: db}
}

// Authorities implements AuthoritySource.
func (s *StateAuthorities) Authorities(parent *types.Header) ([]AuthorityID, error) {
	value, err := trie.NewTrie(parent.StateRoot, s.db).Get(runtime.AuthoritiesKey)
	if err != nil {
		return nil, fmt.Errorf("reading authorities at block %d: %w", parent.Number, err)
	}
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: at block %d", ErrNoAuthorities, parent.Number)
	}
	return DecodeAuthorities(value)
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package aura

import (
	"fmt"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/crypto/sr25519"
)

// Seal signs the hash of the unsealed header with kp and appends the seal
// digest to the header.
func Seal(header *types.Header, kp crypto.Keypair) error {
	if len(header.Digest.Seals(types.AuraEngineID)) > 0 {
		return ErrMultipleSeals
	}

	hash := header.Hash()
	signature, err := kp.Sign(hash[:])
	if err != nil {
		return fmt.Errorf("signing header %s: %w", hash, err)
	}

	header.Digest = append(header.Digest, types.NewSealDigest(types.AuraEngineID, signature))
	return nil
}

// VerifySeal checks the header is sealed exactly once by the authority
// owning the slot of its pre-runtime digest. It returns the author and
// a copy of the header without its seal.
func VerifySeal(header *types.Header, authorities []AuthorityID) (
	author AuthorityID, unsealed *types.Header, err error) {
	seals := header.Digest.Seals(types.AuraEngineID)
	switch len(seals) {
	case 0:
		return author, nil, ErrMissingSeal
	case 1:
	default:
		return author, nil, fmt.Errorf("%w: %d found", ErrMultipleSeals, len(seals))
	}

	last := header.Digest[len(header.Digest)-1]
	if last.Type != types.SealDigestType || last.ConsensusEngine != types.AuraEngineID {
		return author, nil, fmt.Errorf("%w: %s", ErrInvalidSeal, errSealNotLast)
	}

	// remove seal before verifying
	unsealed = header.DeepCopy()
	unsealed.Digest = unsealed.Digest[:len(unsealed.Digest)-1]

	slot, err := SlotFromDigest(unsealed.Digest)
	if err != nil {
		return author, nil, err
	}

	if len(authorities) == 0 {
		return author, nil, ErrNoAuthorities
	}
	author = authorities[uint64(slot)%uint64(len(authorities))]

	pub, err := sr25519.NewPublicKey(author[:])
	if err != nil {
		return author, nil, fmt.Errorf("creating public key of %s: %w", author, err)
	}

	hash := unsealed.Hash()
	ok, err := pub.Verify(hash[:], last.Data)
	if err != nil {
		return author, nil, fmt.Errorf("%w: %w", ErrInvalidSeal, err)
	}
	if !ok {
		return author, nil, fmt.Errorf("%w: not signed by %s, author of %s", ErrInvalidSeal, author, slot)
	}
	return author, unsealed, nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package parachaintypes

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/crypto/sr25519"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/pkg/scale"
)

var ErrInvalidCollatorSignature = errors.New("invalid collator signature")

// CollatorID is the sr25519 public key of a collator.
type CollatorID [sr25519.PublicKeyLength]byte

// String returns the SS58 address of the collator.
func (c CollatorID) String() string {
	return crypto.EncodeSS58(c[:], crypto.DefaultSS58Prefix)
}

// CollatorSignature is a signature on a candidate's block data signed by a collator.
type CollatorSignature [sr25519.SignatureLength]byte

// CandidateDescriptor is a unique descriptor of the candidate receipt.
type CandidateDescriptor struct {
	// The ID of the para this is a candidate for.
	ParaID ParaID
	// RelayParent is the hash of the relay-chain block this is executed in the context of.
	RelayParent common.Hash
	// Collator is the collator's sr25519 public key.
	Collator CollatorID
	// PersistedValidationDataHash is the blake2-256 hash of the persisted validation data.
	PersistedValidationDataHash common.Hash
	// PovHash is the hash of the PoV.
	PovHash common.Hash
	// Signature on blake2-256 of components of this receipt:
	// The parachain index, the relay parent, the validation data hash, and the PoVHash.
	Signature CollatorSignature
	// ParaHead is the hash of the para header that is being generated by this candidate.
	ParaHead common.Hash
	// ValidationCodeHash is the blake2-256 hash of the validation code bytes.
	ValidationCodeHash ValidationCodeHash
}

type signaturePayload struct {
	RelayParent                 common.Hash
	ParaID                      ParaID
	PersistedValidationDataHash common.Hash
	PovHash                     common.Hash
	ValidationCodeHash          ValidationCodeHash
}

// SignaturePayload returns the bytes the collator signs.
func (cd CandidateDescriptor) SignaturePayload() []byte {
	return scale.MustMarshal(signaturePayload{
		RelayParent:                 cd.RelayParent,
		ParaID:                      cd.ParaID,
		PersistedValidationDataHash: cd.PersistedValidationDataHash,
		PovHash:                     cd.PovHash,
		ValidationCodeHash:          cd.ValidationCodeHash,
	})
}

// Sign fills the collator and signature fields using kp.
func (cd *CandidateDescriptor) Sign(kp crypto.Keypair) error {
	copy(cd.Collator[:], kp.Public().Encode())

	sig, err := kp.Sign(cd.SignaturePayload())
	if err != nil {
		return fmt.Errorf("signing candidate descriptor: %w", err)
	}
	copy(cd.Signature[:], sig)
	return nil
}

// CheckCollatorSignature verifies the descriptor signature against its collator.
func (cd CandidateDescriptor) CheckCollatorSignature() error {
	pub, err := sr25519.NewPublicKey(cd.Collator[:])
	if err != nil {
		return fmt.Errorf("creating collator public key: %w", err)
	}

	ok, err := pub.Verify(cd.SignaturePayload(), cd.Signature[:])
	if err != nil {
		return fmt.Errorf("verifying collator signature: %w", err)
	}
	if !ok {
		return ErrInvalidCollatorSignature
	}
	return nil
}

// CandidateCommitments are the commitments made by a parachain candidate.
type CandidateCommitments struct {
	// Messages destined to be interpreted by the relay chain itself.
	UpwardMessages []UpwardMessage
	// Horizontal messages sent by the parachain.
	HorizontalMessages []OutboundHrmpMessage
	// The head-data produced as a result of execution.
	HeadData HeadData
	// The number of messages processed from the DMQ.
	ProcessedDownwardMessages uint32
	// The mark which specifies the block number up to which all inbound HRMP messages are processed.
	HrmpWatermark uint32
}

// Hash returns the hash of the SCALE encoded commitments.
func (cc CandidateCommitments) Hash() common.Hash {
	return common.Blake2bHash(scale.MustMarshal(cc))
}

// CandidateReceipt is a receipt for a candidate that does not carry the
// commitments themselves.
type CandidateReceipt struct {
	Descriptor      CandidateDescriptor
	CommitmentsHash common.Hash
}

// Hash returns the hash of the candidate receipt.
func (cr CandidateReceipt) Hash() common.Hash {
	return common.Blake2bHash(scale.MustMarshal(cr))
}

// NewCommitments returns the commitments of the block with header built
// from inherent.
func NewCommitments(header *types.Header, inherent runtime.InherentData) CandidateCommitments {
	return CandidateCommitments{
		HeadData:                  scale.MustMarshal(*header),
		ProcessedDownwardMessages: uint32(len(inherent.DownwardMessages)),
		HrmpWatermark:             inherent.RelayParentNumber,
	}
}

// Collation is what a collator hands to the relay chain validators for a
// parachain block.
type Collation struct {
	Receipt        CandidateReceipt
	Commitments    CandidateCommitments
	ValidationData PersistedValidationData
	PoV            PoV
}

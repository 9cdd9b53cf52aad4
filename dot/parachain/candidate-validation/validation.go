// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package candidatevalidation

import (
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
)

// ValidationTask is a collation to validate against the validation data
// and code the relay chain expects.
type ValidationTask struct {
	PersistedValidationData parachaintypes.PersistedValidationData
	ValidationCode          parachaintypes.ValidationCode
	CandidateReceipt        parachaintypes.CandidateReceipt
	PoV                     parachaintypes.PoV
}

// NewValidationTask returns the task validating collation with code.
func NewValidationTask(collation parachaintypes.Collation, code parachaintypes.ValidationCode) *ValidationTask {
	return &ValidationTask{
		PersistedValidationData: collation.ValidationData,
		ValidationCode:          code,
		CandidateReceipt:        collation.Receipt,
		PoV:                     collation.PoV,
	}
}

// ValidationResult represents the result of a candidate validation.
// Validation results can be either a ValidValidationResult or InvalidValidationResult.
//
// If the result is invalid,
// store the reason for invalidity in the InvalidResult field of ValidationResult.
//
// If the result is valid,
// set the values of the ValidResult field of ValidValidationResult.
type ValidationResult struct {
	ValidResult   *ValidValidationResult
	InvalidResult *ReasonForInvalidity
}

// IsValid returns whether the candidate is valid.
func (vr ValidationResult) IsValid() bool {
	return vr.ValidResult != nil
}

// Err returns the reason for invalidity as an error, or nil.
func (vr ValidationResult) Err() error {
	if vr.InvalidResult == nil {
		return nil
	}
	return *vr.InvalidResult
}

type ValidValidationResult struct {
	CandidateCommitments    parachaintypes.CandidateCommitments
	PersistedValidationData parachaintypes.PersistedValidationData
}

type ReasonForInvalidity byte

const (
	// ExecutionError Failed to re-execute the block against its witness.
	ExecutionError ReasonForInvalidity = iota
	// InvalidOutputs Validation outputs check doesn't pass.
	InvalidOutputs
	// ParamsTooLarge Validation input is over the limit.
	ParamsTooLarge
	// PoVDecompressionFailure PoV does not decompress correctly.
	PoVDecompressionFailure
	// BadParent Invalid relay chain parent or parachain parent head.
	BadParent
	// PoVHashMismatch POV hash does not match.
	PoVHashMismatch
	// BadSignature Bad collator signature.
	BadSignature
	// ParaHeadHashMismatch Para head hash does not match.
	ParaHeadHashMismatch
	// CodeHashMismatch Validation code hash does not match.
	CodeHashMismatch
	// CommitmentsHashMismatch Validation has generated different candidate commitments.
	CommitmentsHashMismatch
	// BadSeal Block is not sealed by the author of its slot.
	BadSeal
)

func (ci ReasonForInvalidity) Error() string {
	switch ci {
	case ExecutionError:
		return "failed to execute block against its witness"
	case InvalidOutputs:
		return "validation outputs check doesn't pass"
	case ParamsTooLarge:
		return "validation input is over the limit"
	case PoVDecompressionFailure:
		return "PoV does not decompress correctly"
	case BadParent:
		return "invalid parent"
	case PoVHashMismatch:
		return "PoV hash does not match"
	case BadSignature:
		return "bad collator signature"
	case ParaHeadHashMismatch:
		return "para head hash does not match"
	case CodeHashMismatch:
		return "validation code hash does not match"
	case CommitmentsHashMismatch:
		return "validation has generated different candidate commitments"
	case BadSeal:
		return "bad block seal"
	default:
		return "unknown invalidity reason"
	}
}

func invalid(reason ReasonForInvalidity) *ValidationResult {
	return &ValidationResult{InvalidResult: &reason}
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collation

import (
	"errors"
	"fmt"

	collatorprotocol "github.com/ChainSafe/collator/dot/parachain/collator-protocol"
	"github.com/ChainSafe/collator/dot/parachain/inherents"
	"github.com/ChainSafe/collator/dot/parachain/relayview"
	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/lib/trie/proof"
)

var (
	ErrRelayUnavailable    = relayview.ErrRelayUnavailable
	ErrInherentUnavailable = inherents.ErrInherentUnavailable
	ErrTransitionFailed    = runtime.ErrTransitionFailed
	ErrProofConstruction   = proof.ErrProofConstruction
	ErrNotAuthorized       = aura.ErrNotAuthorized
	ErrSubmissionRejected  = collatorprotocol.ErrSubmissionRejected

	// ErrStaleRelayParent is returned when the relay view advanced during a
	// cycle. The cycle is abandoned and its candidate never submitted.
	ErrStaleRelayParent = errors.New("relay parent is stale")
	ErrDeadlineMissed   = errors.New("authoring deadline missed")
	ErrPoVTooLarge      = errors.New("proof of validity exceeds maximum size")
	// ErrStorageFault is returned once proofs failed to build too many times
	// in a row against local state.
	ErrStorageFault = errors.New("local storage fault")
)

// Stage is a state of the authoring cycle.
type Stage int32

const (
	Idle Stage = iota
	AwaitingAuthorization
	BuildingInherents
	ExecutingTransition
	BuildingProof
	Ready
	Submitted
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingAuthorization:
		return "awaiting-authorization"
	case BuildingInherents:
		return "building-inherents"
	case ExecutingTransition:
		return "executing-transition"
	case BuildingProof:
		return "building-proof"
	case Ready:
		return "ready"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("stage(%d)", int32(s))
	}
}

// CycleError is the error of an aborted authoring cycle.
type CycleError struct {
	// Stage is the stage the cycle was aborted in.
	Stage       Stage
	RelayParent common.Hash
	Err         error
}

func (e *CycleError) Error() string {
	if e.RelayParent.IsEmpty() {
		return fmt.Sprintf("authoring cycle aborted while %s: %s", e.Stage, e.Err)
	}
	return fmt.Sprintf("authoring cycle on relay parent %s aborted while %s: %s",
		e.RelayParent.Short(), e.Stage, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// outcome returns the metric label of a cycle result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "submitted"
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, ErrRelayUnavailable):
		return "relay_unavailable"
	case errors.Is(err, ErrStaleRelayParent):
		return "stale"
	case errors.Is(err, ErrDeadlineMissed):
		return "deadline_missed"
	case errors.Is(err, ErrInherentUnavailable):
		return "inherent_unavailable"
	case errors.Is(err, ErrTransitionFailed):
		return "transition_failed"
	case errors.Is(err, ErrProofConstruction):
		return "proof_construction"
	case errors.Is(err, ErrPoVTooLarge):
		return "pov_too_large"
	case errors.Is(err, ErrSubmissionRejected):
		return "rejected"
	default:
		return "failed"
	}
}

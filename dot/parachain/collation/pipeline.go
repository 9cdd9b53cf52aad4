// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ChainSafe/collator/dot/parachain/inherents"
	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	"github.com/ChainSafe/collator/dot/parachain/relayview"
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/lib/trie"
	"github.com/ChainSafe/collator/lib/trie/proof"
	"github.com/ChainSafe/collator/pkg/scale"
	"github.com/gammazero/workerpool"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/atomic"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "collation"))

// SetLogLevel sets the level of the collation logger.
func SetLogLevel(level log.Level) {
	logger.PatchLevel(level)
}

const (
	// DefaultProofFaultThreshold is the number of consecutive proof
	// construction failures reported as a storage fault.
	DefaultProofFaultThreshold = 3
	// DefaultMaxExtrinsics is the maximum number of pool transactions per block.
	DefaultMaxExtrinsics = 256

	submittedCacheSize = 64
	workers            = 2
)

var (
	errNilViews      = errors.New("nil relay view source")
	errNilAuthorizer = errors.New("nil authorizer")
	errNilInherents  = errors.New("nil inherent provider")
	errNilEngine     = errors.New("nil state transition engine")
	errNilProofs     = errors.New("nil proof builder")
	errNilSubmitter  = errors.New("nil submitter")
	errNilImporter   = errors.New("nil block importer")
	errNilKeypair    = errors.New("nil keypair")
	errNilVerifier   = errors.New("nil verifier with PoV verification enabled")
)

// ViewSource returns the current relay view.
type ViewSource interface {
	Current() (*relayview.View, error)
}

// InherentProvider builds the relay chain facts of one block.
type InherentProvider interface {
	Build(ctx context.Context, view *relayview.View) (*inherents.Bundle, error)
}

// TransactionSource supplies ordered, deduplicated transactions. It is
// never modified by the pipeline.
type TransactionSource interface {
	Pending(limit int) []types.Extrinsic
}

// ProofBuilder captures the state nodes an execution touched.
type ProofBuilder interface {
	Build(preStateRoot common.Hash, trace trie.Trace) (*proof.Witness, error)
}

// Submitter hands collations to the relay chain validators.
type Submitter interface {
	Submit(ctx context.Context, collation parachaintypes.Collation) error
}

// BlockImporter stores locally built blocks.
type BlockImporter interface {
	HandleBlockProduced(block *types.Block, result *runtime.Result) error
}

// CollationVerifier replays a collation against its witness alone.
type CollationVerifier interface {
	VerifyCollation(ctx context.Context, collation parachaintypes.Collation,
		code parachaintypes.ValidationCode) error
}

// Config holds the collaborators and parameters of a Pipeline.
type Config struct {
	ParaID       parachaintypes.ParaID
	Views        ViewSource
	Authorizer   aura.Authorizer
	Inherents    InherentProvider
	Transactions TransactionSource
	Engine       runtime.Engine
	Proofs       ProofBuilder
	Submitter    Submitter
	Importer     BlockImporter
	Keypair      crypto.Keypair

	ValidationCode parachaintypes.ValidationCode
	MaxPoVSize     uint32
	CompressPoV    bool
	// Verifier, when VerifyPoV is set, replays every PoV before submission.
	Verifier  CollationVerifier
	VerifyPoV bool

	MaxExtrinsics       int
	ProofFaultThreshold int
	// OnStorageFault is called once proof construction failed
	// ProofFaultThreshold times in a row.
	OnStorageFault func(consecutive int, err error)
	Clock          func() time.Time
}

// Pipeline runs authoring cycles. At most one cycle is in flight at a time.
type Pipeline struct {
	paraID       parachaintypes.ParaID
	views        ViewSource
	authorizer   aura.Authorizer
	inherents    InherentProvider
	transactions TransactionSource
	engine       runtime.Engine
	proofs       ProofBuilder
	submitter    Submitter
	importer     BlockImporter
	keypair      crypto.Keypair
	identity     aura.AuthorityID

	validationCode      parachaintypes.ValidationCode
	maxPoVSize          uint32
	compressPoV         bool
	verifier            CollationVerifier
	maxExtrinsics       int
	proofFaultThreshold int
	onStorageFault      func(consecutive int, err error)
	clock               func() time.Time

	// cycle is held for the whole of an authoring cycle.
	cycle sync.Mutex
	// submitted memoizes the relay parents a candidate was accepted for.
	submitted *lru.Cache
	workers   *workerpool.WorkerPool

	// the following are only accessed with cycle held
	lastClaimedSlot aura.Slot
	claimedAny      bool
	proofFaults     int

	stage   atomic.Int32
	onStage func(Stage)
	metrics *metrics
}

// NewPipeline returns a pipeline using the collaborators of cfg.
func NewPipeline(cfg Config) (*Pipeline, error) {
	switch {
	case cfg.Views == nil:
		return nil, errNilViews
	case cfg.Authorizer == nil:
		return nil, errNilAuthorizer
	case cfg.Inherents == nil:
		return nil, errNilInherents
	case cfg.Engine == nil:
		return nil, errNilEngine
	case cfg.Proofs == nil:
		return nil, errNilProofs
	case cfg.Submitter == nil:
		return nil, errNilSubmitter
	case cfg.Importer == nil:
		return nil, errNilImporter
	case cfg.Keypair == nil:
		return nil, errNilKeypair
	case cfg.VerifyPoV && cfg.Verifier == nil:
		return nil, errNilVerifier
	}

	if cfg.MaxExtrinsics <= 0 {
		cfg.MaxExtrinsics = DefaultMaxExtrinsics
	}
	if cfg.ProofFaultThreshold <= 0 {
		cfg.ProofFaultThreshold = DefaultProofFaultThreshold
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if !cfg.VerifyPoV {
		cfg.Verifier = nil
	}

	submitted, err := lru.New(submittedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating submitted relay parents cache: %w", err)
	}

	return &Pipeline{
		paraID:              cfg.ParaID,
		views:               cfg.Views,
		authorizer:          cfg.Authorizer,
		inherents:           cfg.Inherents,
		transactions:        cfg.Transactions,
		engine:              cfg.Engine,
		proofs:              cfg.Proofs,
		submitter:           cfg.Submitter,
		importer:            cfg.Importer,
		keypair:             cfg.Keypair,
		identity:            aura.NewAuthorityID(cfg.Keypair.Public()),
		validationCode:      cfg.ValidationCode,
		maxPoVSize:          cfg.MaxPoVSize,
		compressPoV:         cfg.CompressPoV,
		verifier:            cfg.Verifier,
		maxExtrinsics:       cfg.MaxExtrinsics,
		proofFaultThreshold: cfg.ProofFaultThreshold,
		onStorageFault:      cfg.OnStorageFault,
		clock:               cfg.Clock,
		submitted:           submitted,
		workers:             workerpool.New(workers),
		metrics:             newMetrics(),
	}, nil
}

// Stage returns the stage of the current or last cycle.
func (p *Pipeline) Stage() Stage {
	return Stage(p.stage.Load())
}

func (p *Pipeline) setStage(stage Stage) {
	p.stage.Store(int32(stage))
	p.metrics.stage.Set(float64(stage))
	if p.onStage != nil {
		p.onStage(stage)
	}
}

// Stop waits for offloaded work to finish.
func (p *Pipeline) Stop() {
	p.workers.StopWait()
}

// Trigger runs one authoring cycle against the current relay view and
// returns the submitted candidate. It returns nil and no error when another
// cycle is in flight or a candidate was already submitted for the current
// relay parent. Errors are of type *CycleError and never affect later
// cycles.
func (p *Pipeline) Trigger(ctx context.Context) (*Candidate, error) {
	if !p.cycle.TryLock() {
		logger.Debug("authoring cycle in flight, trigger suppressed")
		p.metrics.cycles.WithLabelValues("suppressed").Inc()
		return nil, nil
	}
	defer p.cycle.Unlock()

	start := p.clock()
	candidate, err := p.run(ctx)
	if err != nil {
		p.setStage(Idle)
		p.metrics.cycles.WithLabelValues(outcome(err)).Inc()
		logCycleError(err)
		return nil, err
	}
	if candidate == nil {
		return nil, nil
	}

	p.metrics.cycles.WithLabelValues(outcome(nil)).Inc()
	p.metrics.buildDuration.Observe(p.clock().Sub(start).Seconds())
	p.metrics.povSize.Observe(float64(len(candidate.PoV.BlockData)))
	logger.Infof("submitted %s", candidate)
	return candidate, nil
}

func logCycleError(err error) {
	switch {
	case errors.Is(err, ErrStorageFault):
		logger.Critical(err.Error())
	case errors.Is(err, ErrProofConstruction):
		logger.Error(err.Error())
	case errors.Is(err, ErrNotAuthorized),
		errors.Is(err, ErrRelayUnavailable),
		errors.Is(err, ErrStaleRelayParent):
		logger.Debug(err.Error())
	default:
		logger.Warn(err.Error())
	}
}

func (p *Pipeline) run(ctx context.Context) (*Candidate, error) {
	view, err := p.views.Current()
	if err != nil {
		return nil, &CycleError{Stage: Idle, Err: err}
	}
	relayParent := view.Best

	if p.submitted.Contains(relayParent.Hash) {
		logger.Tracef("candidate already submitted for relay parent %s", relayParent)
		return nil, nil
	}

	abort := func(stage Stage, err error) error {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrDeadlineMissed, err)
		}
		return &CycleError{Stage: stage, RelayParent: relayParent.Hash, Err: err}
	}

	p.setStage(AwaitingAuthorization)
	now := p.clock()
	decision, err := p.authorizer.Authorize(view, p.identity, now)
	if err != nil {
		return nil, abort(AwaitingAuthorization, fmt.Errorf("authorizing: %w", err))
	}
	if !decision.Authorized {
		return nil, abort(AwaitingAuthorization, fmt.Errorf("%w: slot %s belongs to authority %d",
			ErrNotAuthorized, decision.Slot, decision.AuthorityIndex))
	}
	if p.claimedAny && decision.Slot <= p.lastClaimedSlot {
		return nil, abort(AwaitingAuthorization, fmt.Errorf("%w: slot %s already claimed, last claimed slot %s",
			ErrNotAuthorized, decision.Slot, p.lastClaimedSlot))
	}
	if !decision.Deadline.After(now) {
		return nil, abort(AwaitingAuthorization, fmt.Errorf("%w: slot %s ended at %s",
			ErrDeadlineMissed, decision.Slot, decision.Deadline))
	}

	ctx, cancel := context.WithTimeout(ctx, decision.Deadline.Sub(now))
	defer cancel()

	p.setStage(BuildingInherents)
	bundle, err := p.inherents.Build(ctx, view)
	if err != nil {
		return nil, abort(BuildingInherents, err)
	}
	if err = p.checkFresh(relayParent); err != nil {
		return nil, abort(BuildingInherents, err)
	}
	inherent, err := bundle.Consume()
	if err != nil {
		return nil, abort(BuildingInherents, err)
	}

	p.setStage(ExecutingTransition)
	parent := view.LastIncluded.Header
	var extrinsics []types.Extrinsic
	if p.transactions != nil {
		extrinsics = p.transactions.Pending(p.maxExtrinsics)
	}
	inputs := runtime.Inputs{
		Parent:     parent,
		Inherent:   inherent,
		Extrinsics: extrinsics,
		Digest:     types.Digest{aura.NewSlotDigest(decision.Slot)},
	}
	result, err := offload(ctx, p.workers, func() (*runtime.Result, error) {
		return p.engine.Execute(ctx, parent.StateRoot, inputs)
	})
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, ErrTransitionFailed) {
			err = fmt.Errorf("%w: %w", ErrTransitionFailed, err)
		}
		return nil, abort(ExecutingTransition, err)
	}
	if err = p.checkFresh(relayParent); err != nil {
		return nil, abort(ExecutingTransition, err)
	}

	p.setStage(BuildingProof)
	witness, err := offload(ctx, p.workers, func() (*proof.Witness, error) {
		return p.proofs.Build(parent.StateRoot, result.Trace)
	})
	if err != nil {
		return nil, abort(BuildingProof, p.proofFault(err))
	}
	if err = p.checkFresh(relayParent); err != nil {
		return nil, abort(BuildingProof, err)
	}

	candidate, err := p.assemble(view, result, witness, inherent, bundle.Digest(), decision.Slot)
	if err != nil {
		return nil, abort(BuildingProof, err)
	}

	p.setStage(Ready)
	if p.verifier != nil {
		err = p.verifier.VerifyCollation(ctx, candidate.Collation(), p.validationCode)
		if err != nil {
			if ctx.Err() == nil {
				err = p.proofFault(fmt.Errorf("%w: self check: %w", ErrProofConstruction, err))
			}
			return nil, abort(Ready, err)
		}
	}
	p.proofFaults = 0
	p.metrics.proofFaults.Set(0)

	if err = p.checkFresh(relayParent); err != nil {
		return nil, abort(Ready, err)
	}

	err = p.importer.HandleBlockProduced(&candidate.Block, result)
	if err != nil {
		return nil, abort(Ready, fmt.Errorf("storing block: %w", err))
	}

	err = p.submitter.Submit(ctx, candidate.Collation())
	if err != nil {
		return nil, abort(Ready, fmt.Errorf("submitting %s: %w", candidate, err))
	}

	p.submitted.Add(relayParent.Hash, candidate.Hash())
	p.setStage(Submitted)
	return candidate, nil
}

// assemble seals the block and builds the candidate. Sealing claims the slot.
func (p *Pipeline) assemble(view *relayview.View, result *runtime.Result, witness *proof.Witness,
	inherent runtime.InherentData, inherentDigest common.Hash, slot aura.Slot) (*Candidate, error) {
	block := types.NewBlock(result.Block.Header, result.Block.Body)
	block.Header.Digest = append(types.Digest{}, result.Block.Header.Digest...)

	err := aura.Seal(&block.Header, p.keypair)
	if err != nil {
		return nil, fmt.Errorf("sealing block: %w", err)
	}
	p.lastClaimedSlot = slot
	p.claimedAny = true

	pov, err := parachaintypes.NewPoV(parachaintypes.ParachainBlockData{
		Header:       block.Header,
		Extrinsics:   block.Body,
		StorageProof: parachaintypes.CompactProof{EncodedNodes: witness.Nodes},
	}, p.compressPoV)
	if err != nil {
		return nil, fmt.Errorf("building PoV: %w", err)
	}
	if p.maxPoVSize > 0 && len(pov.BlockData) > int(p.maxPoVSize) {
		return nil, fmt.Errorf("%w: %d bytes, maximum %d", ErrPoVTooLarge, len(pov.BlockData), p.maxPoVSize)
	}

	relayParent := view.Best
	validationData := parachaintypes.PersistedValidationData{
		ParentHead:             scale.MustMarshal(view.LastIncluded.Header),
		RelayParentNumber:      relayParent.Number,
		RelayParentStorageRoot: relayParent.StateRoot,
		MaxPovSize:             p.maxPoVSize,
	}
	commitments := parachaintypes.NewCommitments(&block.Header, inherent)

	descriptor := parachaintypes.CandidateDescriptor{
		ParaID:                      p.paraID,
		RelayParent:                 relayParent.Hash,
		PersistedValidationDataHash: validationData.Hash(),
		PovHash:                     pov.Hash(),
		ParaHead:                    commitments.HeadData.Hash(),
		ValidationCodeHash:          p.validationCode.Hash(),
	}
	if err = descriptor.Sign(p.keypair); err != nil {
		return nil, err
	}

	return &Candidate{
		Block:          block,
		Witness:        witness,
		PoV:            pov,
		InherentDigest: inherentDigest,
		RelayParent:    relayParent,
		Slot:           slot,
		Receipt: parachaintypes.CandidateReceipt{
			Descriptor:      descriptor,
			CommitmentsHash: commitments.Hash(),
		},
		Commitments:    commitments,
		ValidationData: validationData,
	}, nil
}

// checkFresh fails when the relay view moved past relayParent.
func (p *Pipeline) checkFresh(relayParent relaychain.Header) error {
	view, err := p.views.Current()
	if err != nil {
		return err
	}
	if view.Best.Hash != relayParent.Hash {
		return fmt.Errorf("%w: best relay block is now %s", ErrStaleRelayParent, view.Best)
	}
	return nil
}

// proofFault counts consecutive proof construction failures and escalates
// them once they reach the threshold.
func (p *Pipeline) proofFault(err error) error {
	if !errors.Is(err, ErrProofConstruction) {
		return err
	}

	p.proofFaults++
	p.metrics.proofFaults.Set(float64(p.proofFaults))
	if p.proofFaults < p.proofFaultThreshold {
		return err
	}

	if p.proofFaults == p.proofFaultThreshold && p.onStorageFault != nil {
		p.onStorageFault(p.proofFaults, err)
	}
	return fmt.Errorf("%w: %d consecutive proof failures: %w", ErrStorageFault, p.proofFaults, err)
}

// ProofFaults returns the number of consecutive proof construction failures.
func (p *Pipeline) ProofFaults() int {
	p.cycle.Lock()
	defer p.cycle.Unlock()
	return p.proofFaults
}

// offload runs fn on the worker pool. When ctx is done first, fn keeps
// running and its result is discarded.
func offload[T any](ctx context.Context, pool *workerpool.WorkerPool, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	pool.Submit(func() {
		value, err := fn()
		done <- result{value: value, err: err}
	})

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

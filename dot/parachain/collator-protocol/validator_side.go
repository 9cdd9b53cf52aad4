// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collatorprotocol

import (
	"bufio"
	"context"
	"fmt"
	"time"

	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
)

const (
	receiveTimeout = 30 * time.Second

	// povBombLimitFactor bounds the decompressed PoV size relative to the
	// maximum PoV size of the validation data.
	povBombLimitFactor = 4
)

// CollationHandler decides whether a received collation is accepted. A
// non nil error rejects it.
type CollationHandler interface {
	HandleCollation(ctx context.Context, from peer.ID, collation parachaintypes.Collation) error
}

// CollationVerifier checks a collation against the validation code.
type CollationVerifier interface {
	VerifyCollation(ctx context.Context, collation parachaintypes.Collation, code parachaintypes.ValidationCode) error
}

// BlockImporter imports a parachain block built by another collator.
type BlockImporter interface {
	HandleBlockImport(ctx context.Context, block *types.Block) error
}

// ValidatingHandler accepts the collations passing validation. With an
// importer, the block of every accepted collation is imported locally so
// the node can build on top of it once the relay chain includes it.
type ValidatingHandler struct {
	verifier CollationVerifier
	code     parachaintypes.ValidationCode
	importer BlockImporter
}

// NewValidatingHandler returns a handler validating collations with code.
// importer may be nil.
func NewValidatingHandler(verifier CollationVerifier, code parachaintypes.ValidationCode,
	importer BlockImporter) *ValidatingHandler {
	return &ValidatingHandler{verifier: verifier, code: code, importer: importer}
}

// HandleCollation implements CollationHandler. A valid collation whose
// block cannot be imported is still accepted.
func (h *ValidatingHandler) HandleCollation(ctx context.Context, from peer.ID,
	collation parachaintypes.Collation) error {
	err := h.verifier.VerifyCollation(ctx, collation, h.code)
	if err != nil {
		logger.Debugf("collation %s from %s is invalid: %s", collation.Receipt.Hash(), from, err)
		return err
	}

	if h.importer == nil {
		return nil
	}

	if err = h.importBlock(ctx, collation); err != nil {
		logger.Warnf("importing block of collation %s from %s: %s", collation.Receipt.Hash(), from, err)
	}
	return nil
}

func (h *ValidatingHandler) importBlock(ctx context.Context, collation parachaintypes.Collation) error {
	bombLimit := uint64(collation.ValidationData.MaxPovSize) * povBombLimitFactor
	blockData, err := collation.PoV.DecodeBlockData(bombLimit)
	if err != nil {
		return fmt.Errorf("decoding PoV: %w", err)
	}

	block := blockData.Block()
	if err = h.importer.HandleBlockImport(ctx, block); err != nil {
		return err
	}
	logger.Debugf("imported block #%d (%s) of collation %s", block.Header.Number,
		block.Header.Hash(), collation.Receipt.Hash())
	return nil
}

// Receiver is the validator side of the submission protocol.
type Receiver struct {
	ctx        context.Context
	cancel     context.CancelFunc
	host       host.Host
	protocolID protocol.ID
	paraID     parachaintypes.ParaID
	handler    CollationHandler
}

// NewReceiver returns a receiver answering submissions for paraID with handler.
func NewReceiver(h host.Host, protocolID protocol.ID, paraID parachaintypes.ParaID,
	handler CollationHandler) *Receiver {
	ctx, cancel := context.WithCancel(context.Background())
	return &Receiver{
		ctx:        ctx,
		cancel:     cancel,
		host:       h,
		protocolID: protocolID,
		paraID:     paraID,
		handler:    handler,
	}
}

// Start registers the protocol stream handler.
func (r *Receiver) Start() error {
	r.host.SetStreamHandler(r.protocolID, r.handleStream)
	logger.Infof("accepting collations of parachain %d on %s", r.paraID, r.protocolID)
	return nil
}

// Stop removes the protocol stream handler.
func (r *Receiver) Stop() error {
	r.host.RemoveStreamHandler(r.protocolID)
	r.cancel()
	return nil
}

func (r *Receiver) handleStream(stream network.Stream) {
	defer stream.Close() //nolint:errcheck

	from := stream.Conn().RemotePeer()
	_ = stream.SetDeadline(time.Now().Add(receiveTimeout))

	var msg SubmitCollation
	err := readMessage(bufio.NewReader(stream), &msg, MaxCollationMessageSize)
	if err != nil {
		logger.Debugf("reading collation from %s: %s", from, err)
		_ = stream.Reset()
		return
	}

	resp := r.handle(from, msg)
	if err = writeMessage(stream, resp, maxResponseSize); err != nil {
		logger.Debugf("answering collation from %s: %s", from, err)
		_ = stream.Reset()
	}
}

func (r *Receiver) handle(from peer.ID, msg SubmitCollation) SubmissionResponse {
	descriptor := msg.Collation.Receipt.Descriptor
	if msg.ParaID != r.paraID || descriptor.ParaID != r.paraID {
		err := fmt.Errorf("%w: %d", ErrUnexpectedPara, descriptor.ParaID)
		return SubmissionResponse{Reason: err.Error()}
	}

	ctx, cancel := context.WithTimeout(r.ctx, receiveTimeout)
	defer cancel()

	if err := r.handler.HandleCollation(ctx, from, msg.Collation); err != nil {
		return SubmissionResponse{Reason: err.Error()}
	}

	logger.Infof("accepted collation %s of parachain %d from %s at relay parent %s",
		msg.Collation.Receipt.Hash(), r.paraID, from, descriptor.RelayParent)
	return SubmissionResponse{Accepted: true}
}

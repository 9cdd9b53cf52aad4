// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collatorprotocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/hashicorp/go-multierror"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "collator-protocol"))

// SetLogLevel sets the level of the collator protocol logger.
func SetLogLevel(level log.Level) {
	logger.PatchLevel(level)
}

var (
	ErrSubmissionRejected = errors.New("submission rejected")
	ErrNoValidators       = errors.New("no validator reachable")
	ErrUnexpectedPara     = errors.New("collation is for another parachain")
)

const submissionTimeout = 10 * time.Second

// ProtocolID returns the submission protocol id on relayChain.
func ProtocolID(relayChain string) protocol.ID {
	return protocol.ID("/" + relayChain + "/collation-submit/1")
}

// Submitter hands collations to relay chain validators over libp2p.
type Submitter struct {
	host       host.Host
	protocolID protocol.ID
	paraID     parachaintypes.ParaID
	validators []peer.AddrInfo
	timeout    time.Duration
}

// NewSubmitter returns a submitter sending collations of paraID to the
// validators, given as multiaddrs ending with their peer id.
func NewSubmitter(h host.Host, protocolID protocol.ID, paraID parachaintypes.ParaID,
	validators []string) (*Submitter, error) {
	infos, err := stringsToAddrInfos(validators)
	if err != nil {
		return nil, err
	}

	return &Submitter{
		host:       h,
		protocolID: protocolID,
		paraID:     paraID,
		validators: infos,
		timeout:    submissionTimeout,
	}, nil
}

// Submit sends collation to the first reachable validator and returns its
// answer. A rejection wraps ErrSubmissionRejected; it is never retried.
func (s *Submitter) Submit(ctx context.Context, collation parachaintypes.Collation) error {
	if len(s.validators) == 0 {
		return ErrNoValidators
	}

	msg := SubmitCollation{
		ParaID:    s.paraID,
		Collation: collation,
	}

	var errs *multierror.Error
	for _, validator := range s.validators {
		resp, err := s.submitTo(ctx, validator, msg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = multierror.Append(errs, fmt.Errorf("validator %s: %w", validator.ID, err))
			continue
		}

		if !resp.Accepted {
			return fmt.Errorf("%w by %s: %s", ErrSubmissionRejected, validator.ID, resp.Reason)
		}

		logger.Debugf("collation %s accepted by %s",
			collation.Receipt.Hash(), validator.ID)
		return nil
	}

	return fmt.Errorf("%w: %w", ErrNoValidators, errs.ErrorOrNil())
}

func (s *Submitter) submitTo(ctx context.Context, validator peer.AddrInfo, msg SubmitCollation) (
	*SubmissionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.host.Connect(ctx, validator); err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}

	stream, err := s.host.NewStream(ctx, validator.ID, s.protocolID)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close() //nolint:errcheck

	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(deadline)
	}

	if err = writeMessage(stream, msg, MaxCollationMessageSize); err != nil {
		_ = stream.Reset()
		return nil, fmt.Errorf("writing collation: %w", err)
	}
	if err = stream.CloseWrite(); err != nil {
		return nil, fmt.Errorf("closing write side: %w", err)
	}

	var resp SubmissionResponse
	if err = readMessage(bufio.NewReader(stream), &resp, maxResponseSize); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &resp, nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relaychain

import (
	"context"
	"fmt"
	"sync"

	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/pkg/scale"
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	ctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "relaychain"))

// RPCClient is a Client talking to a relay chain node over its JSON-RPC
// websocket endpoint.
type RPCClient struct {
	api *gsrpc.SubstrateAPI
}

var _ Client = (*RPCClient)(nil)

// NewRPCClient connects to the relay chain node at url.
func NewRPCClient(url string) (*RPCClient, error) {
	api, err := gsrpc.NewSubstrateAPI(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to relay chain at %s: %w", url, err)
	}
	logger.Infof("connected to relay chain node at %s", url)
	return &RPCClient{api: api}, nil
}

// BestHeader implements Client.
func (c *RPCClient) BestHeader(ctx context.Context) (Header, error) {
	if err := ctx.Err(); err != nil {
		return Header{}, err
	}

	header, err := c.api.RPC.Chain.GetHeaderLatest()
	if err != nil {
		return Header{}, fmt.Errorf("getting best header: %w", err)
	}
	return headerFromRPC(header)
}

// FinalizedHeader implements Client.
func (c *RPCClient) FinalizedHeader(ctx context.Context) (Header, error) {
	if err := ctx.Err(); err != nil {
		return Header{}, err
	}

	hash, err := c.api.RPC.Chain.GetFinalizedHead()
	if err != nil {
		return Header{}, fmt.Errorf("getting finalized head: %w", err)
	}

	header, err := c.api.RPC.Chain.GetHeader(hash)
	if err != nil {
		return Header{}, fmt.Errorf("getting finalized header %s: %w", common.Hash(hash), err)
	}
	return headerFromRPC(header)
}

// SubscribeNewHeads implements Client.
func (c *RPCClient) SubscribeNewHeads(ctx context.Context) (HeadSubscription, error) {
	sub, err := c.api.RPC.Chain.SubscribeNewHeads()
	if err != nil {
		return nil, fmt.Errorf("subscribing to new heads: %w", err)
	}
	return newHeadSubscription(ctx, sub), nil
}

// SubscribeFinalizedHeads implements Client.
func (c *RPCClient) SubscribeFinalizedHeads(ctx context.Context) (HeadSubscription, error) {
	sub, err := c.api.RPC.Chain.SubscribeFinalizedHeads()
	if err != nil {
		return nil, fmt.Errorf("subscribing to finalized heads: %w", err)
	}
	return newHeadSubscription(ctx, sub), nil
}

// ParaHead implements Client.
func (c *RPCClient) ParaHead(ctx context.Context, paraID parachaintypes.ParaID, at common.Hash) (
	parachaintypes.HeadData, error) {
	raw, err := c.storage(ctx, ParaHeadKey(paraID), at)
	if err != nil {
		return nil, fmt.Errorf("getting head of parachain %d: %w", paraID, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: parachain %d at relay block %s", ErrParaHeadNotFound, paraID, at)
	}

	var head parachaintypes.HeadData
	err = scale.Unmarshal(raw, &head)
	if err != nil {
		return nil, fmt.Errorf("decoding head of parachain %d: %w", paraID, err)
	}
	return head, nil
}

// DownwardMessages implements Client.
func (c *RPCClient) DownwardMessages(ctx context.Context, paraID parachaintypes.ParaID, at common.Hash) (
	[]runtime.InboundDownwardMessage, error) {
	raw, err := c.storage(ctx, DownwardMessageQueueKey(paraID), at)
	if err != nil {
		return nil, fmt.Errorf("getting downward messages of parachain %d: %w", paraID, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var messages []runtime.InboundDownwardMessage
	err = scale.Unmarshal(raw, &messages)
	if err != nil {
		return nil, fmt.Errorf("decoding downward messages of parachain %d: %w", paraID, err)
	}
	return messages, nil
}

func (c *RPCClient) storage(ctx context.Context, key []byte, at common.Hash) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := c.api.RPC.State.GetStorageRaw(ctypes.NewStorageKey(key), ctypes.Hash(at))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return []byte(*raw), nil
}

// Close implements Client.
func (c *RPCClient) Close() {
	closer, ok := c.api.Client.(interface{ Close() })
	if ok {
		closer.Close()
	}
}

func headerFromRPC(header *ctypes.Header) (Header, error) {
	encoded, err := codec.Encode(*header)
	if err != nil {
		return Header{}, fmt.Errorf("encoding relay header: %w", err)
	}

	return Header{
		Hash:       common.Blake2bHash(encoded),
		ParentHash: common.Hash(header.ParentHash),
		Number:     uint32(header.Number),
		StateRoot:  common.Hash(header.StateRoot),
	}, nil
}

// rpcHeadSubscription is satisfied by both gsrpc head subscriptions.
type rpcHeadSubscription interface {
	Chan() <-chan ctypes.Header
	Err() <-chan error
	Unsubscribe()
}

type headSubscription struct {
	headers chan Header
	errs    chan error

	sub       rpcHeadSubscription
	done      chan struct{}
	closeOnce sync.Once
}

func newHeadSubscription(ctx context.Context, sub rpcHeadSubscription) *headSubscription {
	s := &headSubscription{
		headers: make(chan Header),
		errs:    make(chan error, 1),
		sub:     sub,
		done:    make(chan struct{}),
	}
	go s.forward(ctx)
	return s
}

func (s *headSubscription) forward(ctx context.Context) {
	defer s.sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case err, ok := <-s.sub.Err():
			if !ok || err == nil {
				err = ErrSubscriptionDone
			}
			s.errs <- err
			return
		case rpcHeader, ok := <-s.sub.Chan():
			if !ok {
				s.errs <- ErrSubscriptionDone
				return
			}

			header, err := headerFromRPC(&rpcHeader)
			if err != nil {
				s.errs <- err
				return
			}

			select {
			case s.headers <- header:
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}
}

func (s *headSubscription) Headers() <-chan Header {
	return s.headers
}

func (s *headSubscription) Err() <-chan error {
	return s.errs
}

func (s *headSubscription) Unsubscribe() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

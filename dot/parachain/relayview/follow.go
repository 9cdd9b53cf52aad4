// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relayview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/sethvargo/go-retry"
)

const (
	retryBase      = 500 * time.Millisecond
	retryMax       = 30 * time.Second
	retryJitterPct = 10
)

// Run follows the relay chain through client until ctx is done. Every
// failure marks the relay chain unavailable and the tracker reconnects
// with an exponential backoff, reset after each successful connection.
func (t *Tracker) Run(ctx context.Context, client relaychain.Client) error {
	for {
		backoff := retry.NewExponential(retryBase)
		backoff = retry.WithCappedDuration(retryMax, backoff)
		backoff = retry.WithJitterPercent(retryJitterPct, backoff)

		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			connected, err := t.follow(ctx, client)
			if ctx.Err() != nil {
				return ctx.Err()
			}

			t.SetUnavailable(err)
			if connected {
				// restart with a fresh backoff
				return err
			}
			logger.Debugf("connecting to relay chain: %s", err)
			return retry.RetryableError(err)
		})

		if ctx.Err() != nil {
			t.SetUnavailable(ctx.Err())
			return nil
		}
		logger.Warnf("relay chain connection lost: %s", err)
	}
}

// follow initialises the view and applies relay chain notifications until
// one of the subscriptions fails. connected is true once the view was reset.
func (t *Tracker) follow(ctx context.Context, client relaychain.Client) (connected bool, err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	newHeads, err := client.SubscribeNewHeads(ctx)
	if err != nil {
		return false, err
	}
	defer newHeads.Unsubscribe()

	finalizedHeads, err := client.SubscribeFinalizedHeads(ctx)
	if err != nil {
		return false, err
	}
	defer finalizedHeads.Unsubscribe()

	best, err := client.BestHeader(ctx)
	if err != nil {
		return false, err
	}
	finalized, err := client.FinalizedHeader(ctx)
	if err != nil {
		return false, err
	}

	bestIncluded, err := t.includedAt(ctx, client, best.Hash)
	if err != nil {
		return false, err
	}
	finalizedIncluded, err := t.includedAt(ctx, client, finalized.Hash)
	if err != nil {
		return false, err
	}

	t.Reset(best, finalized, bestIncluded, finalizedIncluded)
	logger.Infof("following relay chain from best block %s and finalized block %s", best, finalized)

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case err := <-newHeads.Err():
			return true, fmt.Errorf("new heads subscription: %w", err)
		case err := <-finalizedHeads.Err():
			return true, fmt.Errorf("finalized heads subscription: %w", err)
		case header := <-newHeads.Headers():
			included, err := t.includedAt(ctx, client, header.Hash)
			if err != nil {
				return true, err
			}
			t.UpdateBest(header, included)
		case header := <-finalizedHeads.Headers():
			included, err := t.includedAt(ctx, client, header.Hash)
			if err != nil {
				return true, err
			}
			if !t.UpdateFinalized(header, included) {
				continue
			}
			if err := t.refreshBest(ctx, client, header); err != nil {
				return true, err
			}
		}
	}
}

// refreshBest asks the relay chain for its best block when finalization
// moved the view's best block back to the finalized block.
func (t *Tracker) refreshBest(ctx context.Context, client relaychain.Client, finalized relaychain.Header) error {
	view, err := t.Current()
	if err != nil || view.Best.Hash != finalized.Hash {
		return nil //nolint:nilerr
	}

	best, err := client.BestHeader(ctx)
	if err != nil {
		return fmt.Errorf("getting best header: %w", err)
	}
	if best.Hash == finalized.Hash {
		return nil
	}
	included, err := t.includedAt(ctx, client, best.Hash)
	if err != nil {
		return err
	}
	t.UpdateBest(best, included)
	return nil
}

// includedAt returns the parachain head included as of the relay block.
// A relay block without a head for the parachain gives an empty head, which
// the view carries and the inherent provider rejects.
func (t *Tracker) includedAt(ctx context.Context, client relaychain.Client, relayHash common.Hash) (
	IncludedHead, error) {
	data, err := client.ParaHead(ctx, t.paraID, relayHash)
	switch {
	case errors.Is(err, relaychain.ErrParaHeadNotFound):
		logger.Debugf("no head included for parachain %d at relay block %s", t.paraID, relayHash)
		return IncludedHead{}, nil
	case err != nil:
		return IncludedHead{}, fmt.Errorf("getting included head at %s: %w", relayHash, err)
	case len(data) == 0:
		logger.Debugf("empty head data for parachain %d at relay block %s", t.paraID, relayHash)
		return IncludedHead{}, nil
	}
	return NewIncludedHead(data)
}

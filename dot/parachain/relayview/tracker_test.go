// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relayview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newResetTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker := NewTracker(2000)
	tracker.Reset(relayHeader(10, 0), relayHeader(8, 0), includedHead(t, 5), includedHead(t, 4))
	return tracker
}

func TestTracker_Current(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(2000)
	_, err := tracker.Current()
	require.ErrorIs(t, err, ErrRelayUnavailable)

	tracker.Reset(relayHeader(10, 0), relayHeader(8, 0), includedHead(t, 5), includedHead(t, 4))
	view, err := tracker.Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), view.Version)
	assert.Equal(t, relayHeader(10, 0), view.Best)
	assert.Equal(t, relayHeader(8, 0), view.Finalized)
	assert.Equal(t, uint32(5), view.LastIncluded.Number())
	assert.Equal(t, BestChanged|FinalizedChanged|InclusionChanged, view.Changes)

	tracker.SetUnavailable(errors.New("connection reset"))
	_, err = tracker.Current()
	require.ErrorIs(t, err, ErrRelayUnavailable)
	assert.False(t, tracker.UpdateBest(relayHeader(11, 0), includedHead(t, 5)))

	tracker.Reset(relayHeader(11, 0), relayHeader(9, 0), includedHead(t, 6), includedHead(t, 5))
	view, err = tracker.Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), view.Version)
	assert.Equal(t, relayHeader(11, 0), view.Best)
}

func TestTracker_UpdateBest(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		best            uint32
		fork            byte
		included        uint32
		published       bool
		expectedBest    uint32
		expectedChanges Change
	}{
		"new_best": {
			best:            11,
			included:        5,
			published:       true,
			expectedBest:    11,
			expectedChanges: BestChanged,
		},
		"new_best_with_inclusion": {
			best:            11,
			included:        6,
			published:       true,
			expectedBest:    11,
			expectedChanges: BestChanged | InclusionChanged,
		},
		"reorg_to_lower_best": {
			best:            9,
			fork:            1,
			included:        5,
			published:       true,
			expectedBest:    9,
			expectedChanges: BestChanged,
		},
		"same_best": {
			best:         10,
			included:     5,
			expectedBest: 10,
		},
		"below_finalized": {
			best:         7,
			fork:         1,
			included:     4,
			expectedBest: 10,
		},
		"fork_at_finalized_height": {
			best:         8,
			fork:         1,
			included:     4,
			expectedBest: 10,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tracker := newResetTracker(t)

			published := tracker.UpdateBest(relayHeader(testCase.best, testCase.fork),
				includedHead(t, testCase.included))
			assert.Equal(t, testCase.published, published)

			view, err := tracker.Current()
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedBest, view.Best.Number)
			if testCase.published {
				assert.Equal(t, uint64(2), view.Version)
				assert.Equal(t, testCase.expectedChanges, view.Changes)
			} else {
				assert.Equal(t, uint64(1), view.Version)
			}
		})
	}
}

func TestTracker_UpdateFinalized(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		finalized         uint32
		fork              byte
		included          uint32
		published         bool
		expectedFinalized uint32
		expectedBest      uint32
		expectedBestFork  byte
		expectedIncluded  uint32
		expectedChanges   Change
	}{
		"finalized_advances": {
			finalized:         9,
			included:          4,
			published:         true,
			expectedFinalized: 9,
			expectedBest:      10,
			expectedIncluded:  5,
			expectedChanges:   FinalizedChanged,
		},
		"finalized_advances_with_inclusion": {
			finalized:         9,
			included:          5,
			published:         true,
			expectedFinalized: 9,
			expectedBest:      10,
			expectedIncluded:  5,
			expectedChanges:   FinalizedChanged | InclusionChanged,
		},
		"finalized_above_best_moves_best": {
			finalized:         12,
			fork:              1,
			included:          7,
			published:         true,
			expectedFinalized: 12,
			expectedBest:      12,
			expectedBestFork:  1,
			expectedIncluded:  7,
			expectedChanges:   BestChanged | FinalizedChanged | InclusionChanged,
		},
		"finalized_other_fork_below_best_moves_best": {
			finalized:         9,
			fork:              1,
			included:          4,
			published:         true,
			expectedFinalized: 9,
			expectedBest:      9,
			expectedBestFork:  1,
			expectedIncluded:  4,
			expectedChanges:   BestChanged | FinalizedChanged | InclusionChanged,
		},
		"finalized_backwards": {
			finalized:         7,
			included:          3,
			expectedFinalized: 8,
			expectedBest:      10,
			expectedIncluded:  5,
		},
		"finalized_same_height_other_fork": {
			finalized:         8,
			fork:              1,
			included:          4,
			expectedFinalized: 8,
			expectedBest:      10,
			expectedIncluded:  5,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tracker := newResetTracker(t)

			published := tracker.UpdateFinalized(relayHeader(testCase.finalized, testCase.fork),
				includedHead(t, testCase.included))
			assert.Equal(t, testCase.published, published)

			view, err := tracker.Current()
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedFinalized, view.Finalized.Number)
			assert.Equal(t, relayHeader(testCase.expectedBest, testCase.expectedBestFork), view.Best)
			assert.Equal(t, testCase.expectedIncluded, view.LastIncluded.Number())
			if testCase.published {
				assert.Equal(t, testCase.expectedChanges, view.Changes)
			}
		})
	}
}

func TestTracker_UpdateFinalized_bestChain(t *testing.T) {
	t.Parallel()

	tracker := newResetTracker(t)
	require.True(t, tracker.UpdateBest(relayHeader(11, 0), includedHead(t, 6)))
	require.True(t, tracker.UpdateBest(relayHeader(12, 0), includedHead(t, 6)))

	// 12 descends from 9 through 11 and 10
	require.True(t, tracker.UpdateFinalized(relayHeader(9, 0), includedHead(t, 4)))
	view, err := tracker.Current()
	require.NoError(t, err)
	assert.Equal(t, relayHeader(12, 0), view.Best)
	assert.Equal(t, FinalizedChanged, view.Changes)

	// a best block on another fork with an unknown parent
	require.True(t, tracker.UpdateBest(relayHeader(13, 1), includedHead(t, 7)))
	require.True(t, tracker.UpdateFinalized(relayHeader(11, 0), includedHead(t, 6)))
	view, err = tracker.Current()
	require.NoError(t, err)
	assert.Equal(t, relayHeader(11, 0), view.Best)
	assert.Equal(t, uint32(6), view.LastIncluded.Number())
}

func TestTracker_Reset_keepsFinalized(t *testing.T) {
	t.Parallel()

	tracker := newResetTracker(t)

	tracker.SetUnavailable(errors.New("connection reset"))
	tracker.Reset(relayHeader(7, 1), relayHeader(6, 1), includedHead(t, 3), includedHead(t, 3))

	view, err := tracker.Current()
	require.NoError(t, err)
	assert.Equal(t, relayHeader(8, 0), view.Finalized)
	assert.Equal(t, relayHeader(8, 0), view.Best)
	assert.Equal(t, uint32(4), view.LastIncluded.Number())
}

func TestSubscription(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(2000)
	sub := tracker.Subscribe()
	assert.Equal(t, 0, sub.Len())

	tracker.Reset(relayHeader(10, 0), relayHeader(8, 0), includedHead(t, 5), includedHead(t, 4))
	tracker.UpdateBest(relayHeader(11, 0), includedHead(t, 5))
	tracker.UpdateFinalized(relayHeader(9, 0), includedHead(t, 4))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for version := uint64(1); version <= 3; version++ {
		view, err := sub.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, version, view.Version)
	}

	late := tracker.Subscribe()
	view, err := late.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), view.Version)
	assert.Equal(t, relayHeader(11, 0), view.Best)

	sub.Close()
	_, err = sub.Next(ctx)
	require.ErrorIs(t, err, ErrSubscriptionClosed)

	tracker.UpdateBest(relayHeader(12, 0), includedHead(t, 6))
	assert.Equal(t, 0, sub.Len())
	assert.Equal(t, 1, late.Len())

	shortCtx, shortCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer shortCancel()
	_, err = late.Next(shortCtx)
	require.NoError(t, err)
	_, err = late.Next(shortCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTracker_invariants(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		tracker := NewTracker(2000)
		tracker.Reset(relayHeader(10, 0), relayHeader(8, 0), mustIncluded(t, 5), mustIncluded(t, 4))
		sub := tracker.Subscribe()
		defer sub.Close()

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			number := rapid.Uint32Range(1, 40).Draw(t, "number")
			fork := rapid.ByteRange(0, 2).Draw(t, "fork")
			included := mustIncluded(t, rapid.Uint32Range(1, 20).Draw(t, "included"))

			switch rapid.IntRange(0, 2).Draw(t, "kind") {
			case 0:
				tracker.UpdateBest(relayHeader(number, fork), included)
			case 1:
				tracker.UpdateFinalized(relayHeader(number, fork), included)
			default:
				tracker.SetUnavailable(errors.New("disconnected"))
				tracker.Reset(relayHeader(number, fork), relayHeader(number/2, fork), included, included)
			}
		}

		var previous *View
		for sub.Len() > 0 {
			view, err := sub.Next(context.Background())
			if err != nil {
				t.Fatalf("next view: %s", err)
			}
			if view.Best.Number < view.Finalized.Number {
				t.Fatalf("best %s below finalized %s", view.Best, view.Finalized)
			}
			if previous != nil {
				if view.Version <= previous.Version {
					t.Fatalf("version %d after %d", view.Version, previous.Version)
				}
				if view.Finalized.Number < previous.Finalized.Number {
					t.Fatalf("finalized moved back from %s to %s", previous.Finalized, view.Finalized)
				}
			}
			previous = view
		}
	})
}

func mustIncluded(t *rapid.T, number uint32) IncludedHead {
	head, err := NewIncludedHead(headData(number))
	if err != nil {
		t.Fatalf("decoding head: %s", err)
	}
	return head
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ChainSafe/collator/dot/parachain/inherents"
	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	"github.com/ChainSafe/collator/dot/parachain/relayview"
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/keystore"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/lib/trie"
	"github.com/ChainSafe/collator/lib/trie/proof"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

const testParaID parachaintypes.ParaID = 2000

type noMessages struct{}

func (noMessages) DownwardMessages(context.Context, parachaintypes.ParaID, common.Hash) (
	[]runtime.InboundDownwardMessage, error) {
	return nil, nil
}

type stubTransactions struct {
	mu         sync.Mutex
	extrinsics []types.Extrinsic
}

func (s *stubTransactions) set(extrinsics ...types.Extrinsic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extrinsics = extrinsics
}

func (s *stubTransactions) Pending(limit int) []types.Extrinsic {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.extrinsics) > limit {
		return s.extrinsics[:limit]
	}
	return s.extrinsics
}

func relayBlock(number uint32) relaychain.Header {
	return relaychain.Header{
		Hash:      common.Hash{0xee, byte(number)},
		Number:    number,
		StateRoot: common.Hash{0x5e, byte(number)},
	}
}

func callExtrinsic(t *testing.T, key, value string) types.Extrinsic {
	t.Helper()
	ext, err := runtime.NewCallExtrinsic(runtime.Call{Op: runtime.SetOp, Key: []byte(key), Value: []byte(value)})
	require.NoError(t, err)
	return ext
}

// fixture is a parachain at genesis P0 whose head is included as of relay
// block R11, with Alice as the single authority.
type fixture struct {
	db           *trie.MemoryDB
	genesis      types.Header
	kr           *keystore.Sr25519Keyring
	tracker      *relayview.Tracker
	engine       runtime.Engine
	transactions *stubTransactions
	now          time.Time

	authorizer *MockAuthorizer
	submitter  *MockSubmitter
	importer   *MockBlockImporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	kr, err := keystore.NewSr25519Keyring()
	require.NoError(t, err)

	db := trie.NewMemoryDB()
	state := trie.NewEmptyTrie(db)
	authorities := []aura.AuthorityID{aura.NewAuthorityID(kr.Alice().Public())}
	require.NoError(t, state.Put(runtime.AuthoritiesKey, aura.EncodeAuthorities(authorities)))
	for i := 0; i < 16; i++ {
		require.NoError(t, state.Put([]byte{'k', byte(i)}, []byte{byte(i)}))
	}
	root, err := state.Commit(db)
	require.NoError(t, err)
	genesis := types.Header{StateRoot: root}

	tracker := relayview.NewTracker(testParaID)
	included := relayview.IncludedHead{Hash: genesis.Hash(), Header: genesis}
	tracker.Reset(relayBlock(11), relayBlock(10), included, included)

	ctrl := gomock.NewController(t)
	f := &fixture{
		db:           db,
		genesis:      genesis,
		kr:           kr,
		tracker:      tracker,
		engine:       runtime.NewNativeEngine(db),
		transactions: &stubTransactions{},
		now:          time.UnixMilli(60_000),
		authorizer:   NewMockAuthorizer(ctrl),
		submitter:    NewMockSubmitter(ctrl),
		importer:     NewMockBlockImporter(ctrl),
	}
	f.transactions.set(callExtrinsic(t, "k1", "one"))
	return f
}

func (f *fixture) config() Config {
	return Config{
		ParaID:         testParaID,
		Views:          f.tracker,
		Authorizer:     f.authorizer,
		Inherents:      inherents.NewProvider(testParaID, noMessages{}, 0),
		Transactions:   f.transactions,
		Engine:         f.engine,
		Proofs:         proof.NewBuilder(f.db),
		Submitter:      f.submitter,
		Importer:       f.importer,
		Keypair:        f.kr.Alice(),
		ValidationCode: runtime.NativeValidationCode,
		MaxPoVSize:     1 << 20,
		Clock:          func() time.Time { return f.now },
	}
}

func (f *fixture) pipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	t.Cleanup(p.Stop)
	return p
}

func (f *fixture) identity() aura.AuthorityID {
	return aura.NewAuthorityID(f.kr.Alice().Public())
}

func (f *fixture) authorized(slot aura.Slot) aura.Decision {
	return aura.Decision{Authorized: true, Slot: slot, Deadline: f.now.Add(time.Minute)}
}

// advance moves the relay chain best block to number, keeping the
// included parachain head.
func (f *fixture) advance(t *testing.T, number uint32) {
	t.Helper()
	included := relayview.IncludedHead{Hash: f.genesis.Hash(), Header: f.genesis}
	require.True(t, f.tracker.UpdateBest(relayBlock(number), included))
}

func (f *fixture) currentView(t *testing.T) *relayview.View {
	t.Helper()
	view, err := f.tracker.Current()
	require.NoError(t, err)
	return view
}

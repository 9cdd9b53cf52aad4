// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relayview

import (
	"testing"

	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
	"github.com/stretchr/testify/require"
)

func relayHeader(number uint32, fork byte) relaychain.Header {
	return relaychain.Header{
		Hash:       common.Hash{byte(number), fork, 0xaa},
		ParentHash: common.Hash{byte(number - 1), fork, 0xaa},
		Number:     number,
		StateRoot:  common.Hash{byte(number), fork, 0xbb},
	}
}

func headData(number uint32) parachaintypes.HeadData {
	header := types.NewHeader(common.Hash{byte(number - 1)}, common.Hash{byte(number), 1},
		common.Hash{byte(number), 2}, number, nil)
	return scale.MustMarshal(*header)
}

func includedHead(t *testing.T, number uint32) IncludedHead {
	t.Helper()
	head, err := NewIncludedHead(headData(number))
	require.NoError(t, err)
	return head
}

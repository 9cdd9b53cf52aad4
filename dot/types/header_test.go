// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"testing"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Header_Encoding(t *testing.T) {
	t.Parallel()

	header := NewHeader(common.Hash{1}, common.Hash{2}, common.Hash{3}, 65, Digest{
		NewPreRuntimeDigest(AuraEngineID, []byte{7}),
		NewSealDigest(AuraEngineID, []byte{8, 9}),
	})

	encoded, err := scale.Marshal(*header)
	require.NoError(t, err)

	expected := append([]byte{}, common.Hash{1}.ToBytes()...)
	expected = append(expected, 0x05, 0x01) // compact 65
	expected = append(expected, common.Hash{2}.ToBytes()...)
	expected = append(expected, common.Hash{3}.ToBytes()...)
	expected = append(expected, 0x08)
	expected = append(expected, 6, 'a', 'u', 'r', 'a', 0x04, 7)
	expected = append(expected, 5, 'a', 'u', 'r', 'a', 0x08, 8, 9)
	assert.Equal(t, expected, encoded)

	var decoded Header
	err = scale.Unmarshal(encoded, &decoded)
	require.NoError(t, err)
	assert.Equal(t, *header, decoded)
	assert.Equal(t, header.Hash(), decoded.Hash())
}

func Test_DigestItem_Decode_invalidType(t *testing.T) {
	t.Parallel()

	var item DigestItem
	err := scale.Unmarshal([]byte{9, 0}, &item)
	assert.ErrorIs(t, err, ErrInvalidDigestItemType)
}

func Test_Header_DeepCopy(t *testing.T) {
	t.Parallel()

	header := NewHeader(common.Hash{1}, common.Hash{}, common.Hash{}, 1, Digest{
		NewSealDigest(AuraEngineID, []byte{1}),
	})
	cp := header.DeepCopy()
	cp.Digest[0].Data[0] = 2
	cp.Number = 5

	assert.Equal(t, []byte{1}, header.Digest[0].Data)
	assert.Equal(t, uint32(1), header.Number)
}

func Test_Digest_filters(t *testing.T) {
	t.Parallel()

	other := ConsensusEngineID{'B', 'A', 'B', 'E'}
	digest := Digest{
		NewPreRuntimeDigest(AuraEngineID, []byte{1}),
		NewSealDigest(other, []byte{2}),
		NewSealDigest(AuraEngineID, []byte{3}),
	}

	assert.Equal(t, []DigestItem{NewSealDigest(AuraEngineID, []byte{3})}, digest.Seals(AuraEngineID))
	assert.Len(t, digest.PreRuntimes(AuraEngineID), 1)
	assert.Empty(t, digest.PreRuntimes(other))
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package parachaintypes

import (
	"bytes"
	"testing"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDescriptor() CandidateDescriptor {
	return CandidateDescriptor{
		ParaID:                      2000,
		RelayParent:                 common.Hash{5, 5, 5},
		PersistedValidationDataHash: common.Hash{1},
		PovHash:                     common.Hash{2},
		ParaHead:                    common.Hash{3},
		ValidationCodeHash:          ValidationCodeHash{4},
	}
}

func TestCandidateDescriptor_CheckCollatorSignature(t *testing.T) {
	t.Parallel()

	kr, err := keystore.NewSr25519Keyring()
	require.NoError(t, err)

	testCases := map[string]struct {
		mutate   func(cd *CandidateDescriptor)
		errorIs  error
		errorMsg string
	}{
		"valid": {
			mutate: func(*CandidateDescriptor) {},
		},
		"relay_parent_changed": {
			mutate:  func(cd *CandidateDescriptor) { cd.RelayParent = common.Hash{6} },
			errorIs: ErrInvalidCollatorSignature,
		},
		"para_id_changed": {
			mutate:  func(cd *CandidateDescriptor) { cd.ParaID = 2001 },
			errorIs: ErrInvalidCollatorSignature,
		},
		"other_collator": {
			mutate: func(cd *CandidateDescriptor) {
				copy(cd.Collator[:], kr.Bob().Public().Encode())
			},
			errorIs: ErrInvalidCollatorSignature,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			descriptor := newTestDescriptor()
			err := descriptor.Sign(kr.Alice())
			require.NoError(t, err)
			assert.Equal(t, kr.Alice().Public().Encode(), descriptor.Collator[:])

			testCase.mutate(&descriptor)

			err = descriptor.CheckCollatorSignature()
			assert.ErrorIs(t, err, testCase.errorIs)
		})
	}
}

func TestCandidateReceipt_Hash(t *testing.T) {
	t.Parallel()

	receipt := CandidateReceipt{
		Descriptor:      newTestDescriptor(),
		CommitmentsHash: CandidateCommitments{HeadData: HeadData{1, 2}}.Hash(),
	}
	other := receipt
	other.CommitmentsHash = CandidateCommitments{HeadData: HeadData{1, 3}}.Hash()

	assert.Equal(t, receipt.Hash(), receipt.Hash())
	assert.NotEqual(t, receipt.Hash(), other.Hash())
}

func TestPersistedValidationData_Hash(t *testing.T) {
	t.Parallel()

	pvd := PersistedValidationData{
		ParentHead:        HeadData{1},
		RelayParentNumber: 10,
		MaxPovSize:        1024,
	}
	moved := pvd
	moved.RelayParentNumber = 11

	assert.NotEqual(t, pvd.Hash(), moved.Hash())
}

func newTestBlockData() ParachainBlockData {
	header := types.NewHeader(common.Hash{1}, common.Hash{2}, common.Hash{3}, 7, nil)
	return ParachainBlockData{
		Header:     *header,
		Extrinsics: []types.Extrinsic{{1, 2, 3}, bytes.Repeat([]byte{9}, 4096)},
		StorageProof: CompactProof{
			EncodedNodes: [][]byte{{4, 5}, {6}},
		},
	}
}

func TestPoV_DecodeBlockData(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		compress  bool
		bombLimit uint64
		errorIs   error
	}{
		"raw": {
			bombLimit: 1 << 20,
		},
		"compressed": {
			compress:  true,
			bombLimit: 1 << 20,
		},
		"compressed_above_bomb_limit": {
			compress:  true,
			bombLimit: 1024,
			errorIs:   ErrBlobTooLarge,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			data := newTestBlockData()
			pov, err := NewPoV(data, testCase.compress)
			require.NoError(t, err)

			if testCase.compress {
				assert.True(t, bytes.HasPrefix(pov.BlockData, zstdPrefix))
			}

			decoded, err := pov.DecodeBlockData(testCase.bombLimit)
			require.ErrorIs(t, err, testCase.errorIs)
			if testCase.errorIs != nil {
				return
			}
			assert.Equal(t, data.Header.Hash(), decoded.Header.Hash())
			assert.Equal(t, data.Extrinsics, decoded.Extrinsics)
			assert.Equal(t, data.StorageProof, decoded.StorageProof)
		})
	}
}

func TestMaybeCompressedBlobDecompress(t *testing.T) {
	t.Parallel()

	_, err := MaybeCompressedBlobDecompress([]byte{1, 2}, 1024)
	assert.ErrorIs(t, err, ErrBlobTooShort)

	plain := []byte("not compressed at all")
	out, err := MaybeCompressedBlobDecompress(plain, 1024)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

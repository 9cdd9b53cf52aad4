// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HexToHash(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		s          string
		hash       Hash
		errWrapped error
	}{
		"no prefix": {
			s:          "aa",
			errWrapped: ErrNoPrefix,
		},
		"wrong length": {
			s:          "0x0102",
			errWrapped: ErrHashLength,
		},
		"valid": {
			s:    "0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20",
			hash: Hash{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			hash, err := HexToHash(testCase.s)
			assert.ErrorIs(t, err, testCase.errWrapped)
			assert.Equal(t, testCase.hash, hash)
		})
	}
}

func Test_Hash_Text(t *testing.T) {
	t.Parallel()

	hash := Hash{0xaa, 31: 0xbb}
	text, err := hash.MarshalText()
	require.NoError(t, err)

	var decoded Hash
	err = decoded.UnmarshalText(text)
	require.NoError(t, err)
	assert.Equal(t, hash, decoded)
	assert.Equal(t, "0xaaaaaaaa...000000bb", Hash{0xaa, 0xaa, 0xaa, 0xaa, 31: 0xbb}.Short())
}

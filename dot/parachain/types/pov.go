// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package parachaintypes

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrBlobTooShort = errors.New("blob is too short")
	ErrBlobTooLarge = errors.New("decompressed blob exceeds the bomb limit")
)

// PoV is the proof of validity of a parachain block.
type PoV struct {
	BlockData []byte
}

// Hash returns the hash of the PoV.
func (pov PoV) Hash() common.Hash {
	return common.Blake2bHash(scale.MustMarshal(pov))
}

// ParachainBlockData is the parachain block that is created by a collator.
//
// This is sent as PoV (proof of validity block) to the relay-chain validators,
// which re-execute it against the storage proof alone.
type ParachainBlockData struct {
	// Header is the header of the parachain block.
	Header types.Header
	// Extrinsics are extrinsics of the parachain block.
	Extrinsics []types.Extrinsic
	// StorageProof has the data that is required to emulate the storage accesses executed by all extrinsics.
	StorageProof CompactProof
}

// CompactProof holds the encoded trie nodes of a storage proof.
type CompactProof struct {
	EncodedNodes [][]byte
}

// Block returns the block carried by the block data.
func (pbd ParachainBlockData) Block() *types.Block {
	block := types.NewBlock(pbd.Header, types.Body(pbd.Extrinsics))
	return &block
}

// An arbitrary prefix, that indicates a blob beginning with should be decompressed with
// Zstd compression.
//
// This differs from the WASM magic bytes, so real WASM blobs will not have this prefix.
var zstdPrefix = []byte{82, 188, 83, 118, 70, 219, 142, 5}

// NewPoV encodes the block data into a PoV, zstd compressing it when compress is set.
func NewPoV(data ParachainBlockData, compress bool) (PoV, error) {
	encoded, err := scale.Marshal(data)
	if err != nil {
		return PoV{}, fmt.Errorf("encoding parachain block data: %w", err)
	}

	if !compress {
		return PoV{BlockData: encoded}, nil
	}

	compressed, err := MaybeCompressedBlobCompress(encoded)
	if err != nil {
		return PoV{}, err
	}
	return PoV{BlockData: compressed}, nil
}

// DecodeBlockData decompresses the PoV if needed and decodes its block data.
func (pov PoV) DecodeBlockData(bombLimit uint64) (data ParachainBlockData, err error) {
	raw, err := MaybeCompressedBlobDecompress(pov.BlockData, bombLimit)
	if err != nil {
		return data, err
	}

	err = scale.Unmarshal(raw, &data)
	if err != nil {
		return data, fmt.Errorf("decoding parachain block data: %w", err)
	}
	return data, nil
}

// MaybeCompressedBlobCompress zstd compresses blob and prefixes it with the
// compression magic.
func MaybeCompressedBlobCompress(blob []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer encoder.Close()

	out := make([]byte, len(zstdPrefix), len(zstdPrefix)+len(blob))
	copy(out, zstdPrefix)
	return encoder.EncodeAll(blob, out), nil
}

// MaybeCompressedBlobDecompress returns blob decompressed if it starts with
// the compression magic and as is otherwise. Decompressed output larger
// than bombLimit is rejected.
func MaybeCompressedBlobDecompress(blob []byte, bombLimit uint64) ([]byte, error) {
	if len(blob) < len(zstdPrefix) {
		return nil, ErrBlobTooShort
	}
	if !bytes.Equal(blob[0:len(zstdPrefix)], zstdPrefix) {
		return blob, nil
	}

	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(bombLimit))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	decoded, err := decoder.DecodeAll(blob[len(zstdPrefix):], nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, fmt.Errorf("%w: %d bytes", ErrBlobTooLarge, bombLimit)
		}
		return nil, fmt.Errorf("decompressing blob: %w", err)
	}
	if uint64(len(decoded)) > bombLimit {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlobTooLarge, bombLimit)
	}
	return decoded, nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"fmt"
	"math/big"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
	gsrpcscale "github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// Header is a parachain block header
type Header struct {
	ParentHash     common.Hash `json:"parentHash"`
	Number         uint32      `json:"number"`
	StateRoot      common.Hash `json:"stateRoot"`
	ExtrinsicsRoot common.Hash `json:"extrinsicsRoot"`
	Digest         Digest      `json:"digest"`
}

// NewHeader creates a new block header and sets its hash field
func NewHeader(parentHash, stateRoot, extrinsicsRoot common.Hash, number uint32, digest Digest) *Header {
	return &Header{
		ParentHash:     parentHash,
		Number:         number,
		StateRoot:      stateRoot,
		ExtrinsicsRoot: extrinsicsRoot,
		Digest:         digest,
	}
}

// Encode SCALE encodes the header, with the number compact encoded.
func (bh Header) Encode(encoder gsrpcscale.Encoder) error {
	err := encoder.Encode(bh.ParentHash)
	if err != nil {
		return err
	}

	err = encoder.EncodeUintCompact(*big.NewInt(int64(bh.Number)))
	if err != nil {
		return err
	}

	for _, field := range []interface{}{bh.StateRoot, bh.ExtrinsicsRoot, bh.Digest} {
		if err = encoder.Encode(field); err != nil {
			return err
		}
	}
	return nil
}

// Decode SCALE decodes the header.
func (bh *Header) Decode(decoder gsrpcscale.Decoder) error {
	err := decoder.Decode(&bh.ParentHash)
	if err != nil {
		return err
	}

	number, err := decoder.DecodeUintCompact()
	if err != nil {
		return err
	}
	if !number.IsUint64() || number.Uint64() > uint64(^uint32(0)) {
		return fmt.Errorf("block number %s overflows uint32", number)
	}
	bh.Number = uint32(number.Uint64())

	for _, field := range []interface{}{&bh.StateRoot, &bh.ExtrinsicsRoot, &bh.Digest} {
		if err = decoder.Decode(field); err != nil {
			return err
		}
	}
	return nil
}

// Hash returns the hash of the block header
func (bh *Header) Hash() common.Hash {
	return common.Blake2bHash(scale.MustMarshal(*bh))
}

// DeepCopy returns a deep copy of the header to prevent side effects down the road
func (bh *Header) DeepCopy() *Header {
	cp := *bh
	if bh.Digest != nil {
		cp.Digest = make(Digest, len(bh.Digest))
		for i, item := range bh.Digest {
			item.Data = append([]byte(nil), item.Data...)
			cp.Digest[i] = item
		}
	}
	return &cp
}

// String returns the formatted header as a string
func (bh *Header) String() string {
	return fmt.Sprintf("ParentHash=%s Number=%d StateRoot=%s ExtrinsicsRoot=%s Digest=%v Hash=%s",
		bh.ParentHash, bh.Number, bh.StateRoot, bh.ExtrinsicsRoot, bh.Digest, bh.Hash())
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"github.com/ChainSafe/collator/lib/common"
)

// Extrinsic is a generic transaction whose format is verified in the runtime
type Extrinsic []byte

// Hash returns the blake2b hash of the extrinsic
func (e Extrinsic) Hash() common.Hash {
	return common.Blake2bHash(e)
}

func (e Extrinsic) String() string {
	return common.BytesToHex(e)
}

// Body is the list of extrinsics of a block
type Body []Extrinsic

// AsBytes returns the extrinsics as raw byte slices.
func (b Body) AsBytes() [][]byte {
	out := make([][]byte, len(b))
	for i, ext := range b {
		out[i] = ext
	}
	return out
}

// Block defines a parachain block
type Block struct {
	Header Header
	Body   Body
}

// NewBlock returns a new Block
func NewBlock(header Header, body Body) Block {
	return Block{
		Header: header,
		Body:   body,
	}
}

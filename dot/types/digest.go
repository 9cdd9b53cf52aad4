// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/lib/common"
	gsrpcscale "github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// ConsensusEngineID is a 4-character identifier of a consensus engine
type ConsensusEngineID [4]byte

// AuraEngineID is the hard-coded aura ID
var AuraEngineID = ConsensusEngineID{'a', 'u', 'r', 'a'}

// String returns the engine id as text.
func (h ConsensusEngineID) String() string {
	return string(h[:])
}

// DigestItemType is the first byte of an encoded digest item.
type DigestItemType uint8

const (
	OtherDigestType      DigestItemType = 0
	ConsensusDigestType  DigestItemType = 4
	SealDigestType       DigestItemType = 5
	PreRuntimeDigestType DigestItemType = 6
)

var ErrInvalidDigestItemType = errors.New("invalid digest item type")

// DigestItem is a single header digest entry. Other items only carry Data.
type DigestItem struct {
	Type            DigestItemType
	ConsensusEngine ConsensusEngineID
	Data            []byte
}

// NewPreRuntimeDigest returns a pre-runtime digest item
func NewPreRuntimeDigest(engine ConsensusEngineID, data []byte) DigestItem {
	return DigestItem{Type: PreRuntimeDigestType, ConsensusEngine: engine, Data: data}
}

// NewSealDigest returns a seal digest item
func NewSealDigest(engine ConsensusEngineID, data []byte) DigestItem {
	return DigestItem{Type: SealDigestType, ConsensusEngine: engine, Data: data}
}

// NewConsensusDigest returns a consensus digest item
func NewConsensusDigest(engine ConsensusEngineID, data []byte) DigestItem {
	return DigestItem{Type: ConsensusDigestType, ConsensusEngine: engine, Data: data}
}

func (d DigestItem) String() string {
	switch d.Type {
	case PreRuntimeDigestType:
		return fmt.Sprintf("PreRuntimeDigest ConsensusEngineID=%s Data=%s", d.ConsensusEngine, common.BytesToHex(d.Data))
	case ConsensusDigestType:
		return fmt.Sprintf("ConsensusDigest ConsensusEngineID=%s Data=%s", d.ConsensusEngine, common.BytesToHex(d.Data))
	case SealDigestType:
		return fmt.Sprintf("SealDigest ConsensusEngineID=%s Data=%s", d.ConsensusEngine, common.BytesToHex(d.Data))
	default:
		return fmt.Sprintf("OtherDigest Data=%s", common.BytesToHex(d.Data))
	}
}

func (d DigestItem) hasEngine() bool {
	switch d.Type {
	case PreRuntimeDigestType, ConsensusDigestType, SealDigestType:
		return true
	default:
		return false
	}
}

// Encode SCALE encodes the digest item.
func (d DigestItem) Encode(encoder gsrpcscale.Encoder) error {
	err := encoder.PushByte(byte(d.Type))
	if err != nil {
		return err
	}

	if d.hasEngine() {
		err = encoder.Write(d.ConsensusEngine[:])
		if err != nil {
			return err
		}
	}

	return encoder.Encode(d.Data)
}

// Decode SCALE decodes the digest item.
func (d *DigestItem) Decode(decoder gsrpcscale.Decoder) error {
	b, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}

	d.Type = DigestItemType(b)
	switch d.Type {
	case OtherDigestType:
	case PreRuntimeDigestType, ConsensusDigestType, SealDigestType:
		err = decoder.Read(d.ConsensusEngine[:])
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDigestItemType, b)
	}

	return decoder.Decode(&d.Data)
}

// Digest is the collection of digest items of a header
type Digest []DigestItem

// Seals returns the seal items carrying the given engine id.
func (d Digest) Seals(engine ConsensusEngineID) (seals []DigestItem) {
	return d.filter(SealDigestType, engine)
}

// PreRuntimes returns the pre-runtime items carrying the given engine id.
func (d Digest) PreRuntimes(engine ConsensusEngineID) (items []DigestItem) {
	return d.filter(PreRuntimeDigestType, engine)
}

func (d Digest) filter(typ DigestItemType, engine ConsensusEngineID) (items []DigestItem) {
	for _, item := range d {
		if item.Type == typ && item.ConsensusEngine == engine {
			items = append(items, item)
		}
	}
	return items
}

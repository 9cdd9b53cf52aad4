// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package runtime

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
)

// ExtrinsicKind is the first byte of an encoded extrinsic.
type ExtrinsicKind uint8

const (
	InherentExtrinsic ExtrinsicKind = iota
	CallExtrinsic
)

// CallOp is the storage operation of a call.
type CallOp uint8

const (
	SetOp CallOp = iota
	RemoveOp
)

// NativeValidationCode identifies the native state transition as the
// validation code of the parachain.
var NativeValidationCode = []byte("collator:native-kv:1")

// ReservedPrefix prefixes the keys only inherents may write.
var ReservedPrefix = []byte(":")

// Well known storage keys.
var (
	RelayParentNumberKey  = []byte(":relay_parent_number")
	RelayParentHashKey    = []byte(":relay_parent_hash")
	LastIncludedHeadKey   = []byte(":last_included_head")
	TimestampKey          = []byte(":timestamp")
	ProcessedMessagesKey  = []byte(":processed_downward_messages")
	DownwardMessagePrefix = []byte(":downward:")
	AuthoritiesKey        = common.StorageValueKey("Aura", "Authorities")
	ParaIDKey             = common.StorageValueKey("ParachainInfo", "ParachainId")
)

var (
	ErrInvalidExtrinsic = errors.New("invalid extrinsic")
	ErrReservedKey      = errors.New("key is reserved")
)

// InboundDownwardMessage is a message sent from the relay chain.
type InboundDownwardMessage struct {
	SentAt uint32
	Msg    []byte
}

// InherentData holds the relay chain facts embedded in every block.
type InherentData struct {
	RelayParentNumber      uint32
	RelayParentHash        common.Hash
	RelayParentStorageRoot common.Hash
	LastIncludedHead       common.Hash
	DownwardMessages       []InboundDownwardMessage
	Timestamp              uint64
}

// Call sets or removes a storage value. The nonce lets identical
// operations be submitted more than once.
type Call struct {
	Op    CallOp
	Key   []byte
	Value []byte
	Nonce uint64
}

// Validate checks the call can be applied.
func (c Call) Validate() error {
	switch c.Op {
	case SetOp, RemoveOp:
	default:
		return fmt.Errorf("%w: unknown operation %d", ErrInvalidExtrinsic, c.Op)
	}

	if len(c.Key) == 0 {
		return fmt.Errorf("%w: empty key", ErrInvalidExtrinsic)
	}

	if bytes.HasPrefix(c.Key, ReservedPrefix) {
		return fmt.Errorf("%w: %s", ErrReservedKey, common.BytesToHex(c.Key))
	}
	return nil
}

// NewInherentExtrinsic encodes the inherent data as an extrinsic.
func NewInherentExtrinsic(data InherentData) (types.Extrinsic, error) {
	encoded, err := scale.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(InherentExtrinsic)}, encoded...), nil
}

// NewCallExtrinsic encodes the call as an extrinsic.
func NewCallExtrinsic(call Call) (types.Extrinsic, error) {
	encoded, err := scale.Marshal(call)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(CallExtrinsic)}, encoded...), nil
}

// DecodeCall decodes a call extrinsic and validates it.
func DecodeCall(ext types.Extrinsic) (call Call, err error) {
	if len(ext) == 0 || ExtrinsicKind(ext[0]) != CallExtrinsic {
		return call, fmt.Errorf("%w: not a call", ErrInvalidExtrinsic)
	}

	err = scale.Unmarshal(ext[1:], &call)
	if err != nil {
		return call, fmt.Errorf("%w: %w", ErrInvalidExtrinsic, err)
	}
	return call, call.Validate()
}

// DecodeInherent decodes the inherent extrinsic leading every block body.
func DecodeInherent(ext types.Extrinsic) (data InherentData, err error) {
	if len(ext) == 0 || ExtrinsicKind(ext[0]) != InherentExtrinsic {
		return data, fmt.Errorf("%w: first extrinsic is not the inherent", ErrInvalidExtrinsic)
	}

	err = scale.Unmarshal(ext[1:], &data)
	if err != nil {
		return data, fmt.Errorf("%w: decoding inherent: %w", ErrInvalidExtrinsic, err)
	}
	return data, nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package scale wraps the SCALE codec used for every value the collator
// hashes, stores or sends over the wire.
package scale

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	gsrpcscale "github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

var (
	ErrTrailingBytes  = errors.New("trailing bytes after decoding")
	ErrNilDestination = errors.New("destination is nil")
)

// Marshal SCALE encodes v.
func Marshal(v interface{}) (b []byte, err error) {
	buffer := bytes.NewBuffer(nil)
	err = gsrpcscale.NewEncoder(buffer).Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}
	return buffer.Bytes(), nil
}

// MustMarshal SCALE encodes v and panics on error. It is meant for
// values whose types are known to be encodable.
func MustMarshal(v interface{}) []byte {
	b, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Unmarshal decodes data into dst which must be a non nil pointer.
// All the data must be consumed.
func Unmarshal(data []byte, dst interface{}) (err error) {
	if dst == nil {
		return ErrNilDestination
	}

	reader := bytes.NewReader(data)
	err = gsrpcscale.NewDecoder(reader).Decode(dst)
	if err != nil {
		return fmt.Errorf("decoding %T: %w", dst, err)
	}

	if reader.Len() != 0 {
		return fmt.Errorf("%w: %d bytes left decoding %T", ErrTrailingBytes, reader.Len(), dst)
	}
	return nil
}

// EncodeCompact encodes n as a SCALE compact integer.
func EncodeCompact(n uint64) []byte {
	buffer := bytes.NewBuffer(nil)
	// writing to a bytes.Buffer cannot fail
	_ = gsrpcscale.NewEncoder(buffer).EncodeUintCompact(*new(big.Int).SetUint64(n))
	return buffer.Bytes()
}

// DecodeCompact decodes a SCALE compact integer from the start of data
// and returns it with the number of bytes it took.
func DecodeCompact(data []byte) (n uint64, size int, err error) {
	reader := bytes.NewReader(data)
	value, err := gsrpcscale.NewDecoder(reader).DecodeUintCompact()
	if err != nil {
		return 0, 0, fmt.Errorf("decoding compact integer: %w", err)
	}
	if !value.IsUint64() {
		return 0, 0, fmt.Errorf("compact integer %s overflows uint64", value)
	}
	return value.Uint64(), len(data) - reader.Len(), nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// HashLength is the expected length of the common.Hash type
const HashLength = 32

// EmptyHash is an empty [32]byte{}
var EmptyHash = Hash{}

var (
	ErrNoPrefix   = errors.New("could not byteify non 0x prefixed string")
	ErrHashLength = errors.New("hex string has wrong hash length")
)

// Hash used to store a blake2b hash
type Hash [32]byte

// NewHash casts a byte array to a Hash
// if the input is longer than 32 bytes, it takes the first 32 bytes
func NewHash(in []byte) (res Hash) {
	copy(res[:], in)
	return res
}

// ToBytes turns a hash to a byte array
func (h Hash) ToBytes() []byte {
	b := [32]byte(h)
	return b[:]
}

// IsEmpty returns true if the hash is empty, false otherwise.
func (h Hash) IsEmpty() bool {
	return h == EmptyHash
}

// String returns the hex string for the hash
func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

// Short returns the first 4 bytes and the last 4 bytes of the hex string for the hash
func (h Hash) Short() string {
	const nBytes = 4
	return fmt.Sprintf("0x%x...%x", h[:nBytes], h[len(h)-nBytes:])
}

// MarshalText encodes the hash as a 0x prefixed hex string.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes a 0x prefixed hex string into the hash.
func (h *Hash) UnmarshalText(text []byte) (err error) {
	*h, err = HexToHash(string(text))
	return err
}

// HexToHash turns a 0x prefixed hex string into type Hash
func HexToHash(in string) (Hash, error) {
	b, err := HexToBytes(in)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("%w: %d bytes", ErrHashLength, len(b))
	}
	return NewHash(b), nil
}

// MustHexToHash turns a 0x prefixed hex string into type Hash
// it panics if it cannot convert the string
func MustHexToHash(in string) Hash {
	h, err := HexToHash(in)
	if err != nil {
		panic(err)
	}
	return h
}

// HexToBytes turns a 0x prefixed hex string into a byte slice
func HexToBytes(in string) ([]byte, error) {
	if !strings.HasPrefix(in, "0x") {
		return nil, ErrNoPrefix
	}

	in = in[2:]
	if len(in)%2 == 1 {
		in = "0" + in
	}
	return hex.DecodeString(in)
}

// MustHexToBytes turns a 0x prefixed hex string into a byte slice
// it panics if it cannot convert the string
func MustHexToBytes(in string) []byte {
	out, err := HexToBytes(in)
	if err != nil {
		panic(err)
	}
	return out
}

// BytesToHex turns a byte slice into a 0x prefixed hex string
func BytesToHex(in []byte) string {
	return "0x" + hex.EncodeToString(in)
}

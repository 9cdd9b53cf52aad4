// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package crypto

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/btcsuite/btcutil/base58"
)

// KeyType str
type KeyType = string

// Sr25519Type is the only key type the collator signs with.
const Sr25519Type KeyType = "sr25519"

// DefaultSS58Prefix is the generic substrate address prefix.
const DefaultSS58Prefix = 42

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidChecksum = errors.New("invalid address checksum")
)

// Keypair interface
type Keypair interface {
	Type() KeyType
	Sign(msg []byte) ([]byte, error)
	Public() PublicKey
	Private() PrivateKey
}

// PublicKey interface
type PublicKey interface {
	Verify(msg, sig []byte) (bool, error)
	Encode() []byte
	Decode([]byte) error
	Address() string
	Hex() string
}

// PrivateKey interface
type PrivateKey interface {
	Sign(msg []byte) ([]byte, error)
	Public() (PublicKey, error)
	Encode() []byte
	Decode([]byte) error
	Hex() string
}

var ss58Prefix = []byte("SS58PRE")

// PublicKeyToAddress returns an ss58 address given a public key, using
// the generic substrate network prefix.
func PublicKeyToAddress(pub PublicKey) string {
	return EncodeSS58(pub.Encode(), DefaultSS58Prefix)
}

// EncodeSS58 encodes the public key bytes as an ss58 address
// with the given single byte network prefix.
func EncodeSS58(pub []byte, prefix uint8) string {
	payload := append([]byte{prefix}, pub...)
	checksum := ss58Checksum(payload)
	return base58.Encode(append(payload, checksum[:2]...))
}

// DecodeSS58 decodes an ss58 address into its network prefix
// and public key bytes.
func DecodeSS58(address string) (prefix uint8, pub []byte, err error) {
	decoded := base58.Decode(address)
	const checksumLength = 2
	if len(decoded) < 1+checksumLength+1 {
		return 0, nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	payload := decoded[:len(decoded)-checksumLength]
	checksum := ss58Checksum(payload)
	if !bytes.Equal(checksum[:checksumLength], decoded[len(decoded)-checksumLength:]) {
		return 0, nil, fmt.Errorf("%w: %s", ErrInvalidChecksum, address)
	}

	return payload[0], payload[1:], nil
}

func ss58Checksum(payload []byte) [64]byte {
	return common.Blake2b512(append(append([]byte{}, ss58Prefix...), payload...))
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
)

// Blake2b128 returns the 128bit blake2b hash of the input data
func Blake2b128(in []byte) []byte {
	hasher, err := blake2b.New(16, nil)
	if err != nil {
		// only returned for invalid sizes
		panic(err)
	}
	_, _ = hasher.Write(in)
	return hasher.Sum(nil)
}

// Blake2bHash returns the 256bit blake2b hash of the input data
func Blake2bHash(in []byte) Hash {
	return blake2b.Sum256(in)
}

// Blake2b512 returns the 512bit blake2b hash of the input data
func Blake2b512(in []byte) [64]byte {
	return blake2b.Sum512(in)
}

// Twox64 returns the xx64 hash of the input data
func Twox64(in []byte) []byte {
	hash := make([]byte, 8)
	binary.LittleEndian.PutUint64(hash, xxhash.Checksum64S(in, 0))
	return hash
}

// Twox128Hash computes xxHash64 twice with seeds 0 and 1 applied on given byte array
func Twox128Hash(msg []byte) []byte {
	hash := make([]byte, 16)
	binary.LittleEndian.PutUint64(hash[:8], xxhash.Checksum64S(msg, 0))
	binary.LittleEndian.PutUint64(hash[8:], xxhash.Checksum64S(msg, 1))
	return hash
}

// Twox64Concat returns the twox64 hash of the input followed by the input itself.
func Twox64Concat(in []byte) []byte {
	return append(Twox64(in), in...)
}

// StorageValueKey returns the storage key of a plain storage value
// declared as module.item in a runtime.
func StorageValueKey(module, item string) []byte {
	key := Twox128Hash([]byte(module))
	return append(key, Twox128Hash([]byte(item))...)
}

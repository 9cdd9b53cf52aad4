// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keystore

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/crypto/sr25519"
)

// DevKeyNames are the names of the development keys, in keyring order.
var DevKeyNames = []string{
	"alice", "bob", "charlie", "dave", "eve", "ferdie", "george", "heather", "ian",
}

var sr25519PrivateKeys = []string{
	"0xe5be9a5092b81bca64be81d212e7f2f9eba183bb7a90954f7b76361f6edb5c0a",
	"0x398f0c28f98885e046333d4a41c19cee4c37368a9832c6502f6cfd182e2aef89",
	"0xbc1ede780f784bb6991a585e4f6e61522c14e1cae6ad0895fb57b9a205a8f938",
	"0x868020ae0687dda7d57565093a69090211449845a7e11453612800b663307246",
	"0x786ad0e2df456fe43dd1f91ebca22e235bc162e0bb8d53c633e8c85b2af68b7a",
	"0x42438b7883391c05512a938e36c2df0131e088b3756d6aa7a755fbff19d2f842",
	"0xcdb035129162df39b70e604ab75162084e176f48897cdafb7d72c4a542a86dda",
	"0x51079fc9e1817f8d4f245d66b325a94d9cafdb8691acbfe85415dce3ae7a62b9",
	"0x7c04eea9d31ce0d9ee256d7c561dc29f20d1119a125e95713c967dcd8d14f22d",
}

// Sr25519Keyring represents a test keyring
type Sr25519Keyring struct {
	Keys []*sr25519.Keypair
}

// NewSr25519Keyring returns an initialised sr25519 Keyring
func NewSr25519Keyring() (*Sr25519Keyring, error) {
	kr := &Sr25519Keyring{
		Keys: make([]*sr25519.Keypair, len(sr25519PrivateKeys)),
	}

	for i, privateKey := range sr25519PrivateKeys {
		seed, err := common.HexToBytes(privateKey)
		if err != nil {
			return nil, err
		}

		kr.Keys[i], err = sr25519.NewKeypairFromSeed(seed)
		if err != nil {
			return nil, err
		}
	}

	return kr, nil
}

// Keypair returns the development keypair with the given name.
func (kr *Sr25519Keyring) Keypair(name string) (*sr25519.Keypair, error) {
	for i, devName := range DevKeyNames {
		if devName == strings.ToLower(name) {
			return kr.Keys[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
}

// Alice returns Alice's key
func (kr *Sr25519Keyring) Alice() *sr25519.Keypair {
	return kr.Keys[0]
}

// Bob returns Bob's key
func (kr *Sr25519Keyring) Bob() *sr25519.Keypair {
	return kr.Keys[1]
}

// Charlie returns Charlie's key
func (kr *Sr25519Keyring) Charlie() *sr25519.Keypair {
	return kr.Keys[2]
}

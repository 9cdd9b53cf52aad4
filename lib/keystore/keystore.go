// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keystore

import (
	"bytes"
	"errors"
	"sort"
	"sync"

	"github.com/ChainSafe/collator/lib/crypto"
)

var (
	ErrKeyTypeNotSupported = errors.New("given key type is not supported by this keystore")
	ErrKeyNotFound         = errors.New("key not found in keystore")
)

// Name represents a defined keystore name
type Name string

// AuraName is the name of the keystore holding collator authority keys.
const AuraName Name = "aura"

// Keystore provides key management functionality
type Keystore interface {
	Name() Name
	Type() crypto.KeyType
	Insert(kp crypto.Keypair) error
	GetKeypair(pub []byte) crypto.Keypair
	PublicKeys() [][]byte
	Keypairs() []crypto.Keypair
	Size() int
}

// BasicKeystore holds keys of a certain type
type BasicKeystore struct {
	name Name
	typ  crypto.KeyType
	keys map[string]crypto.Keypair // map of public key encodings to keypairs
	lock sync.RWMutex
}

var _ Keystore = (*BasicKeystore)(nil)

// NewBasicKeystore creates a new BasicKeystore with the given key type
func NewBasicKeystore(name Name, typ crypto.KeyType) *BasicKeystore {
	return &BasicKeystore{
		name: name,
		typ:  typ,
		keys: make(map[string]crypto.Keypair),
	}
}

// Name returns the keystore's name
func (ks *BasicKeystore) Name() Name {
	return ks.name
}

// Type returns the keystore's key type
func (ks *BasicKeystore) Type() crypto.KeyType {
	return ks.typ
}

// Size returns the number of keys in the keystore
func (ks *BasicKeystore) Size() int {
	ks.lock.RLock()
	defer ks.lock.RUnlock()
	return len(ks.keys)
}

// Insert adds a keypair to the keystore
func (ks *BasicKeystore) Insert(kp crypto.Keypair) error {
	if kp.Type() != ks.typ {
		return ErrKeyTypeNotSupported
	}

	ks.lock.Lock()
	defer ks.lock.Unlock()
	ks.keys[string(kp.Public().Encode())] = kp
	return nil
}

// GetKeypair returns a keypair corresponding to the given public key encoding, or nil if it doesn't exist
func (ks *BasicKeystore) GetKeypair(pub []byte) crypto.Keypair {
	ks.lock.RLock()
	defer ks.lock.RUnlock()
	return ks.keys[string(pub)]
}

// PublicKeys returns the public key encodings of all the keys in the
// keystore, sorted bytewise.
func (ks *BasicKeystore) PublicKeys() [][]byte {
	ks.lock.RLock()
	defer ks.lock.RUnlock()

	keys := make([][]byte, 0, len(ks.keys))
	for pub := range ks.keys {
		keys = append(keys, []byte(pub))
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i], keys[j]) < 0
	})
	return keys
}

// Keypairs returns all the keypairs in the keystore, ordered by public key.
func (ks *BasicKeystore) Keypairs() []crypto.Keypair {
	pubs := ks.PublicKeys()

	ks.lock.RLock()
	defer ks.lock.RUnlock()
	kps := make([]crypto.Keypair, 0, len(pubs))
	for _, pub := range pubs {
		if kp, ok := ks.keys[string(pub)]; ok {
			kps = append(kps, kp)
		}
	}
	return kps
}

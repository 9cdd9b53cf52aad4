// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/crypto/sr25519"
	"golang.org/x/crypto/blake2b"
)

var ErrCiphertextTooShort = errors.New("ciphertext is too short")

// EncryptedKeystore holds an encrypted private key and its public key,
// as written to a keystore file.
type EncryptedKeystore struct {
	Type       string `json:"type"`
	PublicKey  string `json:"publicKey"`
	Ciphertext []byte `json:"ciphertext"`
}

// gcmFromPassphrase creates a symmetric AES key given a password
func gcmFromPassphrase(password []byte) (cipher.AEAD, error) {
	hash := blake2b.Sum256(password)

	block, err := aes.NewCipher(hash[:])
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

// Encrypt uses AES to encrypt `msg` with the symmetric key deterministically created from `password`
func Encrypt(msg, password []byte) ([]byte, error) {
	gcm, err := gcmFromPassphrase(password)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("reading nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, msg, nil), nil
}

// Decrypt uses AES to decrypt ciphertext with the symmetric key deterministically created from `password`
func Decrypt(data, password []byte) ([]byte, error) {
	gcm, err := gcmFromPassphrase(password)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// EncryptAndWriteToFile encrypts the `crypto.PrivateKey` using the password and saves it to the specified file
func EncryptAndWriteToFile(path string, pk crypto.PrivateKey, password []byte) error {
	ciphertext, err := Encrypt(pk.Encode(), password)
	if err != nil {
		return err
	}

	pub, err := pk.Public()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(EncryptedKeystore{
		Type:       crypto.Sr25519Type,
		PublicKey:  pub.Hex(),
		Ciphertext: ciphertext,
	}, "", "\t")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Clean(path), data, 0600)
}

// ReadFromFileAndDecrypt reads ciphertext from a file and decrypts it using the password into a `crypto.PrivateKey`
func ReadFromFileAndDecrypt(path string, password []byte) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var keydata EncryptedKeystore
	if err = json.Unmarshal(data, &keydata); err != nil {
		return nil, fmt.Errorf("decoding keystore file %s: %w", path, err)
	}

	if keydata.Type != crypto.Sr25519Type {
		return nil, fmt.Errorf("%w: %s", ErrKeyTypeNotSupported, keydata.Type)
	}

	seed, err := Decrypt(keydata.Ciphertext, password)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", path, err)
	}

	priv := new(sr25519.PrivateKey)
	if err = priv.Decode(seed); err != nil {
		return nil, err
	}
	return priv, nil
}

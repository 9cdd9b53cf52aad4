// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/crypto/sr25519"
	bip39 "github.com/cosmos/go-bip39"
)

const keyFileExtension = ".key"

// KeystoreDir returns the directory holding the key files under basepath.
func KeystoreDir(basepath string) string {
	return filepath.Join(basepath, "keystore")
}

// GenerateKeypair creates a new sr25519 keypair from a fresh bip39 mnemonic,
// encrypts it with the password and writes it to the keystore
// directory. It returns the key file path and the mnemonic.
func GenerateKeypair(basepath string, password []byte) (path, mnemonic string, err error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", "", fmt.Errorf("generating entropy: %w", err)
	}

	mnemonic, err = bip39.NewMnemonic(entropy)
	if err != nil {
		return "", "", fmt.Errorf("generating mnemonic: %w", err)
	}

	kp, err := sr25519.NewKeypairFromMnenomic(mnemonic, "")
	if err != nil {
		return "", "", err
	}

	path, err = storeKeypair(basepath, kp, password)
	if err != nil {
		return "", "", err
	}
	return path, mnemonic, nil
}

// ImportRawPrivateKey imports a 0x prefixed hex sr25519 seed into the keystore.
func ImportRawPrivateKey(basepath, privateKey string, password []byte) (path string, err error) {
	seed, err := common.HexToBytes(privateKey)
	if err != nil {
		return "", err
	}

	kp, err := sr25519.NewKeypairFromSeed(seed)
	if err != nil {
		return "", err
	}

	return storeKeypair(basepath, kp, password)
}

func storeKeypair(basepath string, kp crypto.Keypair, password []byte) (path string, err error) {
	dir := KeystoreDir(basepath)
	if err = os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	path = filepath.Join(dir, kp.Public().Address()+keyFileExtension)
	if err = EncryptAndWriteToFile(path, kp.Private(), password); err != nil {
		return "", fmt.Errorf("writing key file: %w", err)
	}
	return path, nil
}

// ListKeys returns the addresses of the key files found in the keystore directory.
func ListKeys(basepath string) ([]string, error) {
	entries, err := os.ReadDir(KeystoreDir(basepath))
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, keyFileExtension) {
			continue
		}
		addresses = append(addresses, strings.TrimSuffix(name, keyFileExtension))
	}
	return addresses, nil
}

// UnlockKeys decrypts the key files with the given addresses using the
// password and inserts them into the keystore.
func UnlockKeys(ks Keystore, basepath string, addresses []string, password []byte) error {
	for _, address := range addresses {
		path := filepath.Join(KeystoreDir(basepath), address+keyFileExtension)
		priv, err := ReadFromFileAndDecrypt(path, password)
		if err != nil {
			return fmt.Errorf("unlocking %s: %w", address, err)
		}

		kp, err := sr25519.NewKeypairFromSeed(priv.Encode())
		if err != nil {
			return err
		}

		if err = ks.Insert(kp); err != nil {
			return err
		}
	}
	return nil
}

// LoadKeystore inserts the development key with the given name
// (alice, bob, ...) into the keystore.
func LoadKeystore(name string, ks Keystore) error {
	kr, err := NewSr25519Keyring()
	if err != nil {
		return err
	}

	kp, err := kr.Keypair(name)
	if err != nil {
		return err
	}
	return ks.Insert(kp)
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package dot

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ChainSafe/collator/dot/parachain/collation"
	collatorprotocol "github.com/ChainSafe/collator/dot/parachain/collator-protocol"
	"github.com/ChainSafe/collator/dot/parachain/relayview"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/keystore"
	"github.com/cosmos/go-bip39"
)

// setupLogger sets the global level, then the level of each package logger
// the configuration names.
func setupLogger(cfg *Config) {
	log.PatchLevel(cfg.Global.LogLvl)
	logger.PatchLevel(cfg.Global.LogLvl)
	relayview.SetLogLevel(cfg.Log.RelayLvl)
	collation.SetLogLevel(cfg.Log.CollationLvl)
	collatorprotocol.SetLogLevel(cfg.Log.NetworkLvl)
}

// LoadKeystore returns the aura keystore holding the collator key. A
// development key named by cfg.Account.Key is inserted first, followed by
// the key files listed in cfg.Account.Unlock decrypted with password.
func LoadKeystore(cfg *Config, password []byte) (*keystore.BasicKeystore, error) {
	ks := keystore.NewBasicKeystore(keystore.AuraName, crypto.Sr25519Type)

	if cfg.Account.Key != "" {
		if err := keystore.LoadKeystore(cfg.Account.Key, ks); err != nil {
			return nil, fmt.Errorf("loading development key %s: %w", cfg.Account.Key, err)
		}
	}

	addresses := parseUnlock(cfg.Account.Unlock)
	if len(addresses) > 0 {
		err := keystore.UnlockKeys(ks, cfg.Global.BasePath, addresses, password)
		if err != nil {
			return nil, fmt.Errorf("failed to unlock keys: %w", err)
		}
	}

	if ks.Size() == 0 {
		return nil, ErrNoKeysProvided
	}
	return ks, nil
}

// parseUnlock splits the comma separated account unlock list.
func parseUnlock(unlock string) (addresses []string) {
	for _, address := range strings.Split(unlock, ",") {
		address = strings.TrimSpace(address)
		if address != "" {
			addresses = append(addresses, address)
		}
	}
	return addresses
}

// RandomNodeName generates a new random name if there is no name configured for the node
func RandomNodeName() string {
	entropy, _ := bip39.NewEntropy(128)
	randomNamesString, _ := bip39.NewMnemonic(entropy)
	randomNames := strings.Split(randomNamesString, " ")
	number := binary.BigEndian.Uint16(entropy)
	return randomNames[0] + "-" + randomNames[1] + "-" + fmt.Sprint(number)
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package dot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ChainSafe/collator/internal/log"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a development configuration rooted in a temporary
// directory.
func newTestConfig(t *testing.T) *Config {
	t.Helper()

	cfg := DevConfig()
	cfg.Global.BasePath = t.TempDir()
	cfg.Global.LogLvl = log.Warn
	cfg.Log = LogConfig{
		CoreLvl:      log.Warn,
		StateLvl:     log.Warn,
		RelayLvl:     log.Warn,
		CollationLvl: log.Warn,
		NetworkLvl:   log.Warn,
	}
	cfg.Init.Genesis = newTestGenesisFile(t, cfg.Parachain.ParaID)
	return cfg
}

// newTestGenesisFile writes a development chain spec authored by alice.
func newTestGenesisFile(t *testing.T, paraID uint32) (path string) {
	t.Helper()

	bs, err := BuildFromDev(paraID, "rococo_local_testnet", []string{"alice"})
	require.NoError(t, err)
	data, err := bs.ToJSON()
	require.NoError(t, err)

	path = filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ChainSafe/collator/chain/dev"
	"github.com/ChainSafe/collator/dot"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allLevels(level log.Level) dot.LogConfig {
	return dot.LogConfig{
		CoreLvl:      level,
		StateLvl:     level,
		RelayLvl:     level,
		CollationLvl: level,
		NetworkLvl:   level,
	}
}

func Test_createDotConfig_flags(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		values map[string]string
		modify func(cfg *dot.Config)
	}{
		"defaults": {
			modify: func(*dot.Config) {},
		},
		"log levels": {
			values: map[string]string{"log": "warn", "log-relay": "dbug"},
			modify: func(cfg *dot.Config) {
				cfg.Global.LogLvl = log.Warn
				cfg.Log = allLevels(log.Warn)
				cfg.Log.RelayLvl = log.Debug
			},
		},
		"global settings": {
			values: map[string]string{
				"name":            "ferdie-node",
				"genesis":         "/tmp/genesis.json",
				"publish-metrics": "true",
				"metrics-address": "127.0.0.1:0",
			},
			modify: func(cfg *dot.Config) {
				cfg.Global.Name = "ferdie-node"
				cfg.Global.PublishMetrics = true
				cfg.Global.MetricsAddress = "127.0.0.1:0"
				cfg.Init.Genesis = "/tmp/genesis.json"
			},
		},
		"parachain": {
			values: map[string]string{
				"para-id":               "2001",
				"relay-chain":           "westend",
				"relay-rpc":             "ws://10.0.0.1:9944",
				"consensus":             "pass-through",
				"slot-duration":         "6000",
				"max-pov-size":          "1024",
				"no-compress-pov":       "true",
				"no-verify-pov":         "true",
				"collation-tick":        "250",
				"proof-fault-threshold": "0",
			},
			modify: func(cfg *dot.Config) {
				cfg.Parachain = dot.ParachainConfig{
					ParaID:              2001,
					RelayChain:          "westend",
					RelayRPC:            "ws://10.0.0.1:9944",
					Consensus:           dot.PassThroughConsensus,
					SlotDuration:        6 * time.Second,
					MaxPoVSize:          1024,
					CollationTick:       250 * time.Millisecond,
					ProofFaultThreshold: 0,
				}
			},
		},
		"network": {
			values: map[string]string{
				"port":       "30444",
				"validators": "/ip4/10.0.0.1/tcp/30333, /ip4/10.0.0.2/tcp/30333",
				"protocol":   "/custom/collation/1",
				"receive":    "true",
			},
			modify: func(cfg *dot.Config) {
				cfg.Network = dot.NetworkConfig{
					ListenAddress: "/ip4/0.0.0.0/tcp/30444",
					Validators:    []string{"/ip4/10.0.0.1/tcp/30333", "/ip4/10.0.0.2/tcp/30333"},
					ProtocolID:    "/custom/collation/1",
					Receive:       true,
				}
			},
		},
		"listen address overrides port": {
			values: map[string]string{
				"port":           "30444",
				"listen-address": "/ip4/127.0.0.1/tcp/0",
			},
			modify: func(cfg *dot.Config) {
				cfg.Network.ListenAddress = "/ip4/127.0.0.1/tcp/0"
			},
		},
		"pprof": {
			values: map[string]string{
				"pprofserver":    "true",
				"pprofaddress":   "127.0.0.1:0",
				"pprofblockrate": "1",
				"pprofmutexrate": "0",
			},
			modify: func(cfg *dot.Config) {
				cfg.Pprof = dot.PprofConfig{
					Enabled:          true,
					ListeningAddress: "127.0.0.1:0",
					BlockProfileRate: 1,
				}
			},
		},
		"unlock replaces development key": {
			values: map[string]string{"unlock": "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"},
			modify: func(cfg *dot.Config) {
				cfg.Account = dot.AccountConfig{Unlock: "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"}
			},
		},
		"unlock with development key": {
			values: map[string]string{
				"key":    "bob",
				"unlock": "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
			},
			modify: func(cfg *dot.Config) {
				cfg.Account = dot.AccountConfig{
					Key:    "bob",
					Unlock: "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
				}
			},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			basepath := t.TempDir()
			values := map[string]string{"basepath": basepath}
			for flagName, value := range testCase.values {
				values[flagName] = value
			}
			ctx, _ := newTestContext(t, values)

			expected := dot.DevConfig()
			expected.Global.BasePath = basepath
			testCase.modify(expected)

			cfg, err := createDotConfig(ctx)
			require.NoError(t, err)
			assert.Equal(t, expected, cfg)
		})
	}
}

func Test_createDotConfig_tomlFile(t *testing.T) {
	t.Parallel()

	basepath := t.TempDir()
	const address = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	content := fmt.Sprintf(`[global]
basepath = %q
log = "warn"

[log]
relay = "debug"

[account]
unlock = %q

[parachain]
para-id = 2001
relay-chain = "westend"
consensus = "pass-through"
slot-duration = 6000
compress-pov = false
verify-pov = true
collation-tick = 500

[network]
port = 30444
validators = ["/ip4/10.0.0.1/tcp/30333"]
receive = true
`, basepath, address)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	// flags take precedence over the file
	ctx, _ := newTestContext(t, map[string]string{
		"config":  configPath,
		"para-id": "2002",
	})

	cfg, err := createDotConfig(ctx)
	require.NoError(t, err)

	// a file without a name gets a random one
	assert.NotEqual(t, dev.DefaultName, cfg.Global.Name)
	assert.NotEmpty(t, cfg.Global.Name)

	expected := dot.DevConfig()
	expected.Global.Name = cfg.Global.Name
	expected.Global.BasePath = basepath
	expected.Global.LogLvl = log.Warn
	expected.Log = allLevels(log.Warn)
	expected.Log.RelayLvl = log.Debug
	expected.Account = dot.AccountConfig{Unlock: address}
	expected.Parachain.ParaID = 2002
	expected.Parachain.RelayChain = "westend"
	expected.Parachain.Consensus = dot.PassThroughConsensus
	expected.Parachain.SlotDuration = 6 * time.Second
	expected.Parachain.CompressPoV = false
	expected.Parachain.VerifyPoV = true
	expected.Parachain.CollationTick = 500 * time.Millisecond
	expected.Network.ListenAddress = "/ip4/0.0.0.0/tcp/30444"
	expected.Network.Validators = []string{"/ip4/10.0.0.1/tcp/30333"}
	expected.Network.Receive = true

	assert.Equal(t, expected, cfg)
	assert.NoError(t, cfg.Validate())
}

func Test_createDotConfig_errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown log level", func(t *testing.T) {
		t.Parallel()

		ctx, _ := newTestContext(t, map[string]string{
			"basepath":      t.TempDir(),
			"log-collation": "loud",
		})
		_, err := createDotConfig(ctx)
		assert.ErrorIs(t, err, log.ErrLevelNotRecognised)
	})

	t.Run("missing configuration file", func(t *testing.T) {
		t.Parallel()

		ctx, _ := newTestContext(t, map[string]string{
			"config": filepath.Join(t.TempDir(), "absent.toml"),
		})
		_, err := createDotConfig(ctx)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func Test_splitList(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		s      string
		values []string
	}{
		"empty": {},
		"single": {
			s:      "alice",
			values: []string{"alice"},
		},
		"spaces and empty entries": {
			s:      " alice ,, bob,",
			values: []string{"alice", "bob"},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.values, splitList(testCase.s))
		})
	}
}

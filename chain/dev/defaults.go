// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package dev

import (
	"time"

	"github.com/ChainSafe/collator/internal/log"
)

var (
	// GlobalConfig

	// DefaultName is the default node name
	DefaultName = "Collator"
	// DefaultID is the default node ID
	DefaultID = "dev"
	// DefaultBasePath is the default basepath for the dev collator
	DefaultBasePath = "~/.collator/dev"
	// DefaultLvl is the default log level
	DefaultLvl = log.Info
	// DefaultMetricsAddress is the default metrics server listening address
	DefaultMetricsAddress = "localhost:9876"

	// InitConfig

	// DefaultGenesis is the default genesis configuration path
	DefaultGenesis = "./chain/dev/genesis-spec.json"

	// AccountConfig

	// DefaultKey is the default development key the collator signs with
	DefaultKey = "alice"
	// DefaultUnlock is the default account to unlock
	DefaultUnlock = ""

	// ParachainConfig

	// DefaultParaID is the para id of the development parachain
	DefaultParaID uint32 = 2000
	// DefaultRelayChain is the relay chain the development parachain is registered on
	DefaultRelayChain = "rococo_local_testnet"
	// DefaultRelayRPC is the websocket endpoint of the relay chain node
	DefaultRelayRPC = "ws://127.0.0.1:9944"
	// DefaultConsensus is the slot authorizer of the development parachain
	DefaultConsensus = "aura"
	// DefaultSlotDuration is the parachain slot duration
	DefaultSlotDuration = 12 * time.Second
	// DefaultMaxPoVSize is the relay chain PoV size limit
	DefaultMaxPoVSize uint32 = 5 << 20
	// DefaultCompressPoV compresses PoVs before submission
	DefaultCompressPoV = true
	// DefaultVerifyPoV replays every PoV before submission
	DefaultVerifyPoV = true
	// DefaultCollationTick is the interval of the fallback collation trigger
	DefaultCollationTick = time.Second
	// DefaultProofFaultThreshold is the number of consecutive proof failures
	// reported as a storage fault
	DefaultProofFaultThreshold = 3

	// NetworkConfig

	// DefaultListenAddress is the default libp2p listening address
	DefaultListenAddress = "/ip4/0.0.0.0/tcp/30333"
	// DefaultValidators are the relay chain validators collations are sent to
	DefaultValidators = []string(nil)

	// PprofConfig

	// DefaultPprofListeningAddress default pprof HTTP server listening address.
	DefaultPprofListeningAddress = "localhost:6060"
	// DefaultPprofBlockRate default block profile rate.
	// Set to 0 to disable profiling.
	DefaultPprofBlockRate = 0
	// DefaultPprofMutexRate default mutex profile rate.
	// Set to 0 to disable profiling.
	DefaultPprofMutexRate = 0
)

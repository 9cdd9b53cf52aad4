// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"github.com/urfave/cli"
)

const levelUsage = "Supports levels crit (silent), eror, warn, info, dbug and trce (trace)"

// Global node configuration flags
var (
	// LogFlag cli service settings
	LogFlag = cli.StringFlag{
		Name:  "log",
		Usage: "Global log level. " + levelUsage,
	}
	LogCoreLevelFlag = cli.StringFlag{
		Name:  "log-core",
		Usage: "Core package log level. " + levelUsage,
	}
	LogStateLevelFlag = cli.StringFlag{
		Name:  "log-state",
		Usage: "State package log level. " + levelUsage,
	}
	LogRelayLevelFlag = cli.StringFlag{
		Name:  "log-relay",
		Usage: "Relay chain view log level. " + levelUsage,
	}
	LogCollationLevelFlag = cli.StringFlag{
		Name:  "log-collation",
		Usage: "Collation pipeline log level. " + levelUsage,
	}
	LogNetworkLevelFlag = cli.StringFlag{
		Name:  "log-network",
		Usage: "Collator protocol log level. " + levelUsage,
	}
	// NameFlag node implementation name
	NameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "Node implementation name",
	}
	// ConfigFlag TOML configuration file
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	// BasePathFlag data directory for node
	BasePathFlag = cli.StringFlag{
		Name:  "basepath",
		Usage: "Data directory for the node",
	}
	// PublishMetricsFlag publishes node metrics to prometheus.
	PublishMetricsFlag = cli.BoolFlag{
		Name:  "publish-metrics",
		Usage: "Publish node metrics and the health endpoint",
	}
	// MetricsAddressFlag set the address used by prometheus to collect metrics
	MetricsAddressFlag = cli.StringFlag{
		Name:  "metrics-address",
		Usage: "Set the metric server listening address",
	}
)

// Initialization-only flags
var (
	// GenesisFlag is the path to a genesis JSON file
	GenesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "Path to genesis JSON file",
	}
	// ForceFlag disables all confirm prompts ("Y" to all)
	ForceFlag = cli.BoolFlag{
		Name:  "force",
		Usage: "Disable all confirm prompts (the same as answering \"Y\" to all)",
	}
)

// Account flags
var (
	// KeyFlag specifies a test keyring account to use
	KeyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "Specify a test keyring account to use: eg --key=alice",
	}
	// UnlockFlag keystore
	UnlockFlag = cli.StringFlag{
		Name:  "unlock",
		Usage: "Unlock key files by address. eg. --unlock=5GrwvaEF...,5FHneW46... Can be used with --password=[password] to avoid prompt",
	}
	// PasswordFlag is used to unlock or encrypt key files
	PasswordFlag = cli.StringFlag{
		Name:  "password",
		Usage: "Password used to encrypt or unlock the keystore",
	}
	// GenerateFlag generates a new sr25519 keypair
	GenerateFlag = cli.BoolFlag{
		Name:  "generate",
		Usage: "Generate a new sr25519 keypair and print its mnemonic",
	}
	// ImportRawFlag imports a raw sr25519 seed
	ImportRawFlag = cli.StringFlag{
		Name:  "import-raw",
		Usage: "Import a 0x prefixed hex sr25519 seed into the keystore",
	}
	// ListFlag lists the key files of the keystore
	ListFlag = cli.BoolFlag{
		Name:  "list",
		Usage: "List the addresses of the keystore",
	}
)

// Parachain flags
var (
	// ParaIDFlag identifies the parachain on the relay chain
	ParaIDFlag = cli.UintFlag{
		Name:  "para-id",
		Usage: "Parachain id registered on the relay chain",
	}
	// RelayChainFlag names the relay chain the parachain is registered on
	RelayChainFlag = cli.StringFlag{
		Name:  "relay-chain",
		Usage: "Relay chain id, eg. rococo_local_testnet",
	}
	// RelayRPCFlag is the websocket endpoint of a relay chain node
	RelayRPCFlag = cli.StringFlag{
		Name:  "relay-rpc",
		Usage: "Websocket RPC endpoint of a relay chain node",
	}
	// ConsensusFlag selects the slot authorizer
	ConsensusFlag = cli.StringFlag{
		Name:  "consensus",
		Usage: "Slot authorizer, one of aura or pass-through",
	}
	// SlotDurationFlag sets the slot duration in milliseconds
	SlotDurationFlag = cli.Uint64Flag{
		Name:  "slot-duration",
		Usage: "Slot duration in milliseconds",
	}
	// MaxPoVSizeFlag bounds the proof of validity size in bytes
	MaxPoVSizeFlag = cli.UintFlag{
		Name:  "max-pov-size",
		Usage: "Maximum proof of validity size in bytes",
	}
	// NoCompressPoVFlag disables proof of validity compression
	NoCompressPoVFlag = cli.BoolFlag{
		Name:  "no-compress-pov",
		Usage: "Submit uncompressed proofs of validity",
	}
	// NoVerifyPoVFlag disables the local validation of collations
	NoVerifyPoVFlag = cli.BoolFlag{
		Name:  "no-verify-pov",
		Usage: "Skip validating collations locally before submission",
	}
	// CollationTickFlag sets the collation tick in milliseconds
	CollationTickFlag = cli.Uint64Flag{
		Name:  "collation-tick",
		Usage: "Interval in milliseconds at which the collator checks its slot",
	}
	// ProofFaultThresholdFlag sets the consecutive proof faults tolerated
	ProofFaultThresholdFlag = cli.IntFlag{
		Name:  "proof-fault-threshold",
		Usage: "Consecutive proof faults tolerated before the storage is reported faulty",
		Value: -1,
	}
)

// Network flags
var (
	// PortFlag Set network listening port
	PortFlag = cli.UintFlag{
		Name:  "port",
		Usage: "Set network listening port",
	}
	// ListenAddressFlag sets the libp2p listen multiaddress
	ListenAddressFlag = cli.StringFlag{
		Name:  "listen-address",
		Usage: "Set the libp2p listening multiaddress, overrides --port",
	}
	// ValidatorsFlag lists the validator multiaddresses collations are sent to
	ValidatorsFlag = cli.StringFlag{
		Name:  "validators",
		Usage: "Comma separated validator multiaddresses collations are submitted to",
	}
	// ProtocolFlag overrides the collation protocol id
	ProtocolFlag = cli.StringFlag{
		Name:  "protocol",
		Usage: "Override the collation protocol id",
	}
	// ReceiveFlag answers collation submissions from other collators
	ReceiveFlag = cli.BoolFlag{
		Name:  "receive",
		Usage: "Validate and answer collation submissions (local networks only)",
	}
)

// Pprof flags
var (
	// PprofServerFlag enables the pprof HTTP server
	PprofServerFlag = cli.BoolFlag{
		Name:  "pprofserver",
		Usage: "enable or disable the pprof HTTP server",
	}
	// PprofAddressFlag sets the pprof HTTP server listening address
	PprofAddressFlag = cli.StringFlag{
		Name:  "pprofaddress",
		Usage: "pprof HTTP server listening address, if it is enabled",
	}
	// PprofBlockRateFlag sets the block profiling rate
	PprofBlockRateFlag = cli.IntFlag{
		Name:  "pprofblockrate",
		Value: -1,
		Usage: "pprof block rate. See https://pkg.go.dev/runtime#SetBlockProfileRate",
	}
	// PprofMutexRateFlag sets the mutex profiling rate
	PprofMutexRateFlag = cli.IntFlag{
		Name:  "pprofmutexrate",
		Value: -1,
		Usage: "profiling mutex rate. See https://pkg.go.dev/runtime#SetMutexProfileFraction",
	}
)

// Build spec flags
var (
	// RawFlag prints the genesis in raw form
	RawFlag = cli.BoolFlag{
		Name:  "raw",
		Usage: "Output as raw genesis JSON",
	}
	// OutputSpecFlag writes the chain spec to a file
	OutputSpecFlag = cli.StringFlag{
		Name:  "output",
		Usage: "Path of the file the chain spec is written to",
	}
	// AuthoritiesFlag builds a development chain spec authored by the given keys
	AuthoritiesFlag = cli.StringFlag{
		Name:  "authorities",
		Usage: "Comma separated development keys authoring the chain, eg. alice,bob",
	}
)

// flag sets that are shared by multiple commands
var (
	// GlobalFlags are flags that are valid for use with the root command and all subcommands
	GlobalFlags = []cli.Flag{
		LogFlag,
		LogCoreLevelFlag,
		LogStateLevelFlag,
		LogRelayLevelFlag,
		LogCollationLevelFlag,
		LogNetworkLevelFlag,
		NameFlag,
		ConfigFlag,
		BasePathFlag,
		PublishMetricsFlag,
		MetricsAddressFlag,
		GenesisFlag,
	}

	// AccountFlags are flags selecting the collator key
	AccountFlags = []cli.Flag{
		KeyFlag,
		UnlockFlag,
		PasswordFlag,
	}

	// ParachainFlags are flags used to configure collation
	ParachainFlags = []cli.Flag{
		ParaIDFlag,
		RelayChainFlag,
		RelayRPCFlag,
		ConsensusFlag,
		SlotDurationFlag,
		MaxPoVSizeFlag,
		NoCompressPoVFlag,
		NoVerifyPoVFlag,
		CollationTickFlag,
		ProofFaultThresholdFlag,
	}

	// NetworkFlags are flags used to configure the collator protocol
	NetworkFlags = []cli.Flag{
		PortFlag,
		ListenAddressFlag,
		ValidatorsFlag,
		ProtocolFlag,
		ReceiveFlag,
	}

	// PprofFlags are the flags of the pprof HTTP server
	PprofFlags = []cli.Flag{
		PprofServerFlag,
		PprofAddressFlag,
		PprofBlockRateFlag,
		PprofMutexRateFlag,
	}
)

// Command flags
var (
	// RootFlags are the flags of the root command running the collator
	RootFlags = append(append(append(append(GlobalFlags, AccountFlags...), ParachainFlags...),
		NetworkFlags...), PprofFlags...)

	// InitFlags are flags used with the init subcommand
	InitFlags = []cli.Flag{
		ForceFlag,
	}

	// AccountCommandFlags are flags used with the account subcommand
	AccountCommandFlags = []cli.Flag{
		GenerateFlag,
		ImportRawFlag,
		ListFlag,
	}

	// BuildSpecFlags are flags used with the build-spec subcommand
	BuildSpecFlags = []cli.Flag{
		RawFlag,
		OutputSpecFlag,
		AuthoritiesFlag,
	}
)

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package toml

// Config is a collection of configurations throughout the system
type Config struct {
	Global    GlobalConfig    `toml:"global,omitempty"`
	Log       LogConfig       `toml:"log,omitempty"`
	Init      InitConfig      `toml:"init,omitempty"`
	Account   AccountConfig   `toml:"account,omitempty"`
	Parachain ParachainConfig `toml:"parachain,omitempty"`
	Network   NetworkConfig   `toml:"network,omitempty"`
	Pprof     PprofConfig     `toml:"pprof,omitempty"`
}

// GlobalConfig is to marshal/unmarshal toml global config vars
type GlobalConfig struct {
	Name           string `toml:"name,omitempty"`
	ID             string `toml:"id,omitempty"`
	BasePath       string `toml:"basepath,omitempty"`
	LogLvl         string `toml:"log,omitempty"`
	MetricsAddress string `toml:"metrics-address,omitempty"`
	PublishMetrics bool   `toml:"metrics,omitempty"`
}

// LogConfig represents the log levels for individual packages
type LogConfig struct {
	CoreLvl      string `toml:"core,omitempty"`
	StateLvl     string `toml:"state,omitempty"`
	RelayLvl     string `toml:"relay,omitempty"`
	CollationLvl string `toml:"collation,omitempty"`
	NetworkLvl   string `toml:"network,omitempty"`
}

// InitConfig is the configuration for the node initialization
type InitConfig struct {
	Genesis string `toml:"genesis,omitempty"`
}

// AccountConfig is to marshal/unmarshal account config vars
type AccountConfig struct {
	Key    string `toml:"key,omitempty"`
	Unlock string `toml:"unlock,omitempty"`
}

// ParachainConfig is to marshal/unmarshal toml parachain config vars
type ParachainConfig struct {
	ParaID              uint32 `toml:"para-id,omitempty"`
	RelayChain          string `toml:"relay-chain,omitempty"`
	RelayRPC            string `toml:"relay-rpc,omitempty"`
	Consensus           string `toml:"consensus,omitempty"`
	SlotDuration        uint64 `toml:"slot-duration,omitempty"`
	MaxPoVSize          uint32 `toml:"max-pov-size,omitempty"`
	CompressPoV         bool   `toml:"compress-pov,omitempty"`
	VerifyPoV           bool   `toml:"verify-pov,omitempty"`
	CollationTick       uint64 `toml:"collation-tick,omitempty"`
	ProofFaultThreshold int    `toml:"proof-fault-threshold,omitempty"`
}

// NetworkConfig is to marshal/unmarshal toml network config vars
type NetworkConfig struct {
	Port          uint16   `toml:"port,omitempty"`
	ListenAddress string   `toml:"listen-address,omitempty"`
	Validators    []string `toml:"validators,omitempty"`
	ProtocolID    string   `toml:"protocol,omitempty"`
	Receive       bool     `toml:"receive,omitempty"`
}

// PprofConfig contains the configuration for Pprof.
type PprofConfig struct {
	Enabled          bool   `toml:"enabled,omitempty"`
	ListeningAddress string `toml:"listening-address,omitempty"`
	BlockRate        int    `toml:"block-rate,omitempty"`
	MutexRate        int    `toml:"mutex-rate,omitempty"`
}

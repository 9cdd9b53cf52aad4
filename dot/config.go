// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package dot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ChainSafe/collator/chain/dev"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/go-playground/validator/v10"
)

// Consensus names the slot authorizer a collator runs with.
const (
	AuraConsensus        = "aura"
	PassThroughConsensus = "pass-through"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is a collection of configurations throughout the system
type Config struct {
	Global    GlobalConfig
	Log       LogConfig
	Init      InitConfig
	Account   AccountConfig
	Parachain ParachainConfig
	Network   NetworkConfig
	Pprof     PprofConfig
}

// GlobalConfig is used for every node command
type GlobalConfig struct {
	Name           string `validate:"required"`
	ID             string `validate:"required"`
	BasePath       string `validate:"required"`
	LogLvl         log.Level
	PublishMetrics bool
	MetricsAddress string `validate:"required_if=PublishMetrics true"`
}

// LogConfig represents the log levels for individual packages
type LogConfig struct {
	CoreLvl      log.Level
	StateLvl     log.Level
	RelayLvl     log.Level
	CollationLvl log.Level
	NetworkLvl   log.Level
}

// InitConfig is the configuration for the node initialization
type InitConfig struct {
	Genesis string
}

// AccountConfig selects the collator key. Key is a development key name
// (alice, bob, ...); Unlock is a comma separated list of key file
// addresses decrypted from the keystore directory.
type AccountConfig struct {
	Key    string
	Unlock string
}

// ParachainConfig holds the collation parameters.
type ParachainConfig struct {
	ParaID              uint32        `validate:"required"`
	RelayChain          string        `validate:"required"`
	RelayRPC            string        `validate:"required"`
	Consensus           string        `validate:"oneof=aura pass-through"`
	SlotDuration        time.Duration `validate:"gt=0"`
	MaxPoVSize          uint32        `validate:"gt=0"`
	CompressPoV         bool
	VerifyPoV           bool
	CollationTick       time.Duration `validate:"gt=0"`
	ProofFaultThreshold int           `validate:"gte=0"`
}

// NetworkConfig is the libp2p configuration of the upward submission channel.
type NetworkConfig struct {
	ListenAddress string   `validate:"required"`
	Validators    []string `validate:"dive,required"`
	ProtocolID    string
	// Receive also answers submissions, turning the node into a validator
	// side endpoint for local networks.
	Receive bool
}

// PprofConfig is the configuration for the pprof HTTP server.
type PprofConfig struct {
	Enabled          bool
	ListeningAddress string `validate:"required_if=Enabled true"`
	BlockProfileRate int    `validate:"gte=0"`
	MutexProfileRate int    `validate:"gte=0"`
}

// Validate checks the struct tags of the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return nil
}

// String will return the json representation for a Config
func (c *Config) String() string {
	out, _ := json.MarshalIndent(c, "", "\t")
	return string(out)
}

// DevConfig returns the configuration of a development collator
func DevConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			Name:           dev.DefaultName,
			ID:             dev.DefaultID,
			BasePath:       dev.DefaultBasePath,
			LogLvl:         dev.DefaultLvl,
			MetricsAddress: dev.DefaultMetricsAddress,
		},
		Log: LogConfig{
			CoreLvl:      dev.DefaultLvl,
			StateLvl:     dev.DefaultLvl,
			RelayLvl:     dev.DefaultLvl,
			CollationLvl: dev.DefaultLvl,
			NetworkLvl:   dev.DefaultLvl,
		},
		Init: InitConfig{
			Genesis: dev.DefaultGenesis,
		},
		Account: AccountConfig{
			Key:    dev.DefaultKey,
			Unlock: dev.DefaultUnlock,
		},
		Parachain: ParachainConfig{
			ParaID:              dev.DefaultParaID,
			RelayChain:          dev.DefaultRelayChain,
			RelayRPC:            dev.DefaultRelayRPC,
			Consensus:           dev.DefaultConsensus,
			SlotDuration:        dev.DefaultSlotDuration,
			MaxPoVSize:          dev.DefaultMaxPoVSize,
			CompressPoV:         dev.DefaultCompressPoV,
			VerifyPoV:           dev.DefaultVerifyPoV,
			CollationTick:       dev.DefaultCollationTick,
			ProofFaultThreshold: dev.DefaultProofFaultThreshold,
		},
		Network: NetworkConfig{
			ListenAddress: dev.DefaultListenAddress,
			Validators:    dev.DefaultValidators,
		},
		Pprof: PprofConfig{
			ListeningAddress: dev.DefaultPprofListeningAddress,
			BlockProfileRate: dev.DefaultPprofBlockRate,
			MutexProfileRate: dev.DefaultPprofMutexRate,
		},
	}
}

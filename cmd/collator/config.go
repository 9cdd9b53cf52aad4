// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ChainSafe/collator/dot"
	ctoml "github.com/ChainSafe/collator/dot/config/toml"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/utils"
	"github.com/naoina/toml"
	"github.com/urfave/cli"
)

// loadConfigFromFile decodes the toml configuration at fp into cfg.
func loadConfigFromFile(cfg *ctoml.Config, fp string) error {
	data, err := os.ReadFile(filepath.Clean(fp))
	if err != nil {
		return fmt.Errorf("reading configuration file: %w", err)
	}

	if err = toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decoding configuration file %s: %w", fp, err)
	}
	return nil
}

// createDotConfig creates a new dot configuration from the development
// defaults, overwritten by the --config file, overwritten by the flag values.
func createDotConfig(ctx *cli.Context) (*dot.Config, error) {
	cfg := dot.DevConfig()
	tomlCfg := new(ctoml.Config)

	if cfgPath := ctx.String(ConfigFlag.Name); cfgPath != "" {
		logger.Info("loading toml configuration from " + cfgPath + "...")
		if err := loadConfigFromFile(tomlCfg, cfgPath); err != nil {
			return nil, err
		}
		if tomlCfg.Global.Name == "" {
			tomlCfg.Global.Name = dot.RandomNodeName()
		}
	}

	if err := setLogConfig(ctx, tomlCfg, &cfg.Global, &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to set log configuration: %w", err)
	}
	logger.Debugf("loaded package log configuration: %+v", cfg.Log)

	setDotGlobalConfig(ctx, tomlCfg.Global, &cfg.Global)
	setDotInitConfig(ctx, tomlCfg.Init, &cfg.Init)
	setDotAccountConfig(ctx, tomlCfg.Account, &cfg.Account)
	setDotParachainConfig(ctx, tomlCfg.Parachain, &cfg.Parachain)
	setDotNetworkConfig(ctx, tomlCfg.Network, &cfg.Network)
	setDotPprofConfig(ctx, tomlCfg.Pprof, &cfg.Pprof)

	return cfg, nil
}

// parseLevel parses a level from, in order of precedence, the flag value,
// the toml value or the fallback level.
func parseLevel(flagValue, tomlValue string, fallback log.Level) (log.Level, error) {
	switch {
	case flagValue != "":
		return log.ParseLevel(flagValue)
	case tomlValue != "":
		return log.ParseLevel(tomlValue)
	default:
		return fallback, nil
	}
}

// setLogConfig sets the global log level and the package levels. A package
// level left unset follows the global level.
func setLogConfig(ctx *cli.Context, tomlCfg *ctoml.Config, globalCfg *dot.GlobalConfig,
	logCfg *dot.LogConfig) (err error) {
	globalCfg.LogLvl, err = parseLevel(ctx.String(LogFlag.Name), tomlCfg.Global.LogLvl, globalCfg.LogLvl)
	if err != nil {
		return fmt.Errorf("global level: %w", err)
	}

	levels := []struct {
		name      string
		flagValue string
		tomlValue string
		dst       *log.Level
	}{
		{"core", ctx.String(LogCoreLevelFlag.Name), tomlCfg.Log.CoreLvl, &logCfg.CoreLvl},
		{"state", ctx.String(LogStateLevelFlag.Name), tomlCfg.Log.StateLvl, &logCfg.StateLvl},
		{"relay", ctx.String(LogRelayLevelFlag.Name), tomlCfg.Log.RelayLvl, &logCfg.RelayLvl},
		{"collation", ctx.String(LogCollationLevelFlag.Name), tomlCfg.Log.CollationLvl, &logCfg.CollationLvl},
		{"network", ctx.String(LogNetworkLevelFlag.Name), tomlCfg.Log.NetworkLvl, &logCfg.NetworkLvl},
	}

	for _, level := range levels {
		*level.dst, err = parseLevel(level.flagValue, level.tomlValue, globalCfg.LogLvl)
		if err != nil {
			return fmt.Errorf("%s level: %w", level.name, err)
		}
	}
	return nil
}

// setDotGlobalConfig sets dot.GlobalConfig using flag values from the cli context
func setDotGlobalConfig(ctx *cli.Context, tomlCfg ctoml.GlobalConfig, cfg *dot.GlobalConfig) {
	if tomlCfg.Name != "" {
		cfg.Name = tomlCfg.Name
	}
	if tomlCfg.ID != "" {
		cfg.ID = tomlCfg.ID
	}
	if tomlCfg.BasePath != "" {
		cfg.BasePath = tomlCfg.BasePath
	}
	if tomlCfg.MetricsAddress != "" {
		cfg.MetricsAddress = tomlCfg.MetricsAddress
	}
	cfg.PublishMetrics = cfg.PublishMetrics || tomlCfg.PublishMetrics

	if name := ctx.String(NameFlag.Name); name != "" {
		cfg.Name = name
	}
	if basepath := ctx.String(BasePathFlag.Name); basepath != "" {
		cfg.BasePath = basepath
	}
	if address := ctx.String(MetricsAddressFlag.Name); address != "" {
		cfg.MetricsAddress = address
	}
	if ctx.Bool(PublishMetricsFlag.Name) {
		cfg.PublishMetrics = true
	}

	cfg.BasePath = utils.ExpandDir(cfg.BasePath)
}

// setDotInitConfig sets dot.InitConfig using flag values from the cli context
func setDotInitConfig(ctx *cli.Context, tomlCfg ctoml.InitConfig, cfg *dot.InitConfig) {
	if tomlCfg.Genesis != "" {
		cfg.Genesis = tomlCfg.Genesis
	}
	if genesis := ctx.String(GenesisFlag.Name); genesis != "" {
		cfg.Genesis = genesis
	}
}

// setDotAccountConfig sets dot.AccountConfig using flag values from the cli
// context. An account section or an --unlock flag replaces the development key
// unless a key is named alongside it.
func setDotAccountConfig(ctx *cli.Context, tomlCfg ctoml.AccountConfig, cfg *dot.AccountConfig) {
	if tomlCfg.Key != "" || tomlCfg.Unlock != "" {
		cfg.Key = tomlCfg.Key
		cfg.Unlock = tomlCfg.Unlock
	}

	key := ctx.String(KeyFlag.Name)
	if unlock := ctx.String(UnlockFlag.Name); unlock != "" {
		cfg.Unlock = unlock
		cfg.Key = key
	}
	if key != "" {
		cfg.Key = key
	}
}

func millis(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// setDotParachainConfig sets dot.ParachainConfig using flag values from the cli context
func setDotParachainConfig(ctx *cli.Context, tomlCfg ctoml.ParachainConfig, cfg *dot.ParachainConfig) {
	if tomlCfg.ParaID != 0 {
		cfg.ParaID = tomlCfg.ParaID
	}
	if tomlCfg.RelayChain != "" {
		cfg.RelayChain = tomlCfg.RelayChain
	}
	if tomlCfg.RelayRPC != "" {
		cfg.RelayRPC = tomlCfg.RelayRPC
	}
	if tomlCfg.Consensus != "" {
		cfg.Consensus = tomlCfg.Consensus
	}
	if tomlCfg.SlotDuration != 0 {
		cfg.SlotDuration = millis(tomlCfg.SlotDuration)
	}
	if tomlCfg.MaxPoVSize != 0 {
		cfg.MaxPoVSize = tomlCfg.MaxPoVSize
	}
	if tomlCfg.CollationTick != 0 {
		cfg.CollationTick = millis(tomlCfg.CollationTick)
	}
	if tomlCfg.ProofFaultThreshold != 0 {
		cfg.ProofFaultThreshold = tomlCfg.ProofFaultThreshold
	}
	// booleans enabled by default are only turned off by a full section
	if tomlCfg.ParaID != 0 {
		cfg.CompressPoV = tomlCfg.CompressPoV
		cfg.VerifyPoV = tomlCfg.VerifyPoV
	}

	if paraID := ctx.Uint(ParaIDFlag.Name); paraID != 0 {
		cfg.ParaID = uint32(paraID)
	}
	if relayChain := ctx.String(RelayChainFlag.Name); relayChain != "" {
		cfg.RelayChain = relayChain
	}
	if relayRPC := ctx.String(RelayRPCFlag.Name); relayRPC != "" {
		cfg.RelayRPC = relayRPC
	}
	if consensus := ctx.String(ConsensusFlag.Name); consensus != "" {
		cfg.Consensus = consensus
	}
	if slotDuration := ctx.Uint64(SlotDurationFlag.Name); slotDuration != 0 {
		cfg.SlotDuration = millis(slotDuration)
	}
	if maxPoVSize := ctx.Uint(MaxPoVSizeFlag.Name); maxPoVSize != 0 {
		cfg.MaxPoVSize = uint32(maxPoVSize)
	}
	if tick := ctx.Uint64(CollationTickFlag.Name); tick != 0 {
		cfg.CollationTick = millis(tick)
	}
	if threshold := ctx.Int(ProofFaultThresholdFlag.Name); threshold >= 0 {
		cfg.ProofFaultThreshold = threshold
	}
	if ctx.Bool(NoCompressPoVFlag.Name) {
		cfg.CompressPoV = false
	}
	if ctx.Bool(NoVerifyPoVFlag.Name) {
		cfg.VerifyPoV = false
	}
}

// setDotNetworkConfig sets dot.NetworkConfig using flag values from the cli context
func setDotNetworkConfig(ctx *cli.Context, tomlCfg ctoml.NetworkConfig, cfg *dot.NetworkConfig) {
	if tomlCfg.Port != 0 {
		cfg.ListenAddress = listenAddress(uint(tomlCfg.Port))
	}
	if tomlCfg.ListenAddress != "" {
		cfg.ListenAddress = tomlCfg.ListenAddress
	}
	if len(tomlCfg.Validators) > 0 {
		cfg.Validators = tomlCfg.Validators
	}
	if tomlCfg.ProtocolID != "" {
		cfg.ProtocolID = tomlCfg.ProtocolID
	}
	cfg.Receive = cfg.Receive || tomlCfg.Receive

	if port := ctx.Uint(PortFlag.Name); port != 0 {
		cfg.ListenAddress = listenAddress(port)
	}
	if address := ctx.String(ListenAddressFlag.Name); address != "" {
		cfg.ListenAddress = address
	}
	if validators := splitList(ctx.String(ValidatorsFlag.Name)); len(validators) > 0 {
		cfg.Validators = validators
	}
	if protocol := ctx.String(ProtocolFlag.Name); protocol != "" {
		cfg.ProtocolID = protocol
	}
	if ctx.Bool(ReceiveFlag.Name) {
		cfg.Receive = true
	}
}

// setDotPprofConfig sets dot.PprofConfig using flag values from the cli context
func setDotPprofConfig(ctx *cli.Context, tomlCfg ctoml.PprofConfig, cfg *dot.PprofConfig) {
	cfg.Enabled = cfg.Enabled || tomlCfg.Enabled
	if tomlCfg.ListeningAddress != "" {
		cfg.ListeningAddress = tomlCfg.ListeningAddress
	}
	if tomlCfg.BlockRate != 0 {
		cfg.BlockProfileRate = tomlCfg.BlockRate
	}
	if tomlCfg.MutexRate != 0 {
		cfg.MutexProfileRate = tomlCfg.MutexRate
	}

	if ctx.Bool(PprofServerFlag.Name) {
		cfg.Enabled = true
	}
	if address := ctx.String(PprofAddressFlag.Name); address != "" {
		cfg.ListeningAddress = address
	}
	if rate := ctx.Int(PprofBlockRateFlag.Name); rate >= 0 {
		cfg.BlockProfileRate = rate
	}
	if rate := ctx.Int(PprofMutexRateFlag.Name); rate >= 0 {
		cfg.MutexProfileRate = rate
	}
}

func listenAddress(port uint) string {
	return fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", port)
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(s string) (values []string) {
	for _, value := range strings.Split(s, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}

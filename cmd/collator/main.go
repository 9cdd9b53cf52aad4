// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ChainSafe/collator/dot"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/urfave/cli"
)

const (
	accountCommandName            = "account"
	initCommandName               = "init"
	buildSpecCommandName          = "build-spec"
	exportGenesisStateCommandName = "export-genesis-state"
)

var (
	logger = log.NewFromGlobal(log.AddContext("pkg", "cmd"))

	app = cli.NewApp()

	// initCommand defines the "init" subcommand (ie, `collator init`)
	initCommand = cli.Command{
		Action:    initAction,
		Name:      initCommandName,
		Usage:     "Initialise node databases and load genesis data to state",
		ArgsUsage: "",
		Flags:     InitFlags,
		Category:  "INIT",
		Description: "The init command initialises the node databases and loads the genesis data from the genesis file to state.\n" +
			"\tUsage: collator --genesis genesis.json init",
	}
	// accountCommand defines the "account" subcommand (ie, `collator account`)
	accountCommand = cli.Command{
		Action:   accountAction,
		Name:     accountCommandName,
		Usage:    "Manage the collator keystore",
		Flags:    AccountCommandFlags,
		Category: "KEYSTORE",
		Description: "The account command is used to manage the collator keystore.\n" +
			"\tTo generate a new sr25519 account: collator account --generate\n" +
			"\tTo import a raw sr25519 seed: collator account --import-raw=0x...\n" +
			"\tTo list keys: collator account --list",
	}
	// buildSpecCommand creates a raw genesis file from a human readable genesis file.
	buildSpecCommand = cli.Command{
		Action:    buildSpecAction,
		Name:      buildSpecCommandName,
		Usage:     "Generates genesis JSON data, and can convert to raw genesis data",
		ArgsUsage: "",
		Flags:     BuildSpecFlags,
		Category:  "BUILD-SPEC",
		Description: "The build-spec command outputs the chain spec of the node.\n" +
			"\tUsage: collator --genesis genesis.json build-spec --raw\n" +
			"\tUsage: collator --para-id 2000 build-spec --authorities alice,bob --output genesis.json",
	}
	// exportGenesisStateCommand prints the genesis head registered on the relay chain.
	exportGenesisStateCommand = cli.Command{
		Action:   exportGenesisStateAction,
		Name:     exportGenesisStateCommandName,
		Usage:    "Prints the SCALE encoded genesis head of the parachain",
		Category: "BUILD-SPEC",
		Description: "The export-genesis-state command prints the hex encoded genesis header, " +
			"as registered with the relay chain.\n" +
			"\tUsage: collator --genesis genesis.json export-genesis-state",
	}
)

// init initialises the cli application
func init() {
	app.Action = collatorAction
	app.Copyright = "Copyright 2024 ChainSafe Systems Authors"
	app.Name = "collator"
	app.Usage = "Parachain collator"
	app.Author = "ChainSafe Systems 2024"
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		initCommand,
		accountCommand,
		buildSpecCommand,
		exportGenesisStateCommand,
	}
	app.Flags = RootFlags
}

// main runs the cli application
func main() {
	if err := app.Run(os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// collatorAction is the root action for the collator command, creating a
// node configuration, loading the keystore, initialising the node if not
// initialised, then creating and starting the node
func collatorAction(ctx *cli.Context) error {
	if _, err := setupLogger(ctx); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	// check for unknown command arguments
	if arguments := ctx.Args(); len(arguments) > 0 {
		return fmt.Errorf("failed to read command argument: %q", arguments[0])
	}

	cfg, err := createDotConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to create node configuration: %w", err)
	}

	if !dot.NodeInitialized(cfg.Global.BasePath) {
		logger.Info("node has not been initialised from base path " + cfg.Global.BasePath + ", initialising...")
		if err = dot.InitNode(cfg); err != nil {
			return fmt.Errorf("failed to initialise node: %w", err)
		}
	}

	var password []byte
	if cfg.Account.Unlock != "" {
		password = passwordFromContext(ctx, "Enter password to unlock keystore:")
	}

	ks, err := dot.LoadKeystore(cfg, password)
	if err != nil {
		return fmt.Errorf("failed to load keystore: %w", err)
	}

	node, err := dot.NewNode(cfg, ks)
	if err != nil {
		return fmt.Errorf("failed to create node services: %w", err)
	}

	logger.Info("starting node " + node.Name + "...")
	return node.Start()
}

// initAction is the action for the "init" subcommand, initialising the node
// databases and loading the genesis data to state
func initAction(ctx *cli.Context) error {
	if _, err := setupLogger(ctx); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	cfg, err := createDotConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to create node configuration: %w", err)
	}

	// check if node has been initialised (expected false - no warning log)
	if dot.NodeInitialized(cfg.Global.BasePath) && !ctx.Bool(ForceFlag.Name) {
		// prompt user to confirm reinitialization
		if !confirmMessage("Are you sure you want to reinitialise the node? [Y/n]") {
			logger.Warn("exiting without reinitialising the node at base path " + cfg.Global.BasePath)
			return nil
		}
	}

	if err = dot.InitNode(cfg); err != nil {
		return fmt.Errorf("failed to initialise node: %w", err)
	}

	logger.Info("node initialised at base path " + cfg.Global.BasePath)
	return nil
}

var errNoAccountAction = errors.New("one of --generate, --import-raw or --list is required")

// accountAction executes the action for the "account" subcommand
func accountAction(ctx *cli.Context) error {
	if _, err := setupLogger(ctx); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	cfg, err := createDotConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to create node configuration: %w", err)
	}

	return runAccountCommand(ctx, cfg.Global.BasePath)
}

// buildSpecAction is the action for the "build-spec" subcommand
func buildSpecAction(ctx *cli.Context) error {
	if _, err := setupLogger(ctx); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	cfg, err := createDotConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to create node configuration: %w", err)
	}

	bs, err := buildSpec(ctx, cfg)
	if err != nil {
		return err
	}

	var res []byte
	if ctx.Bool(RawFlag.Name) {
		res, err = bs.ToJSONRaw()
	} else {
		res, err = bs.ToJSON()
	}
	if err != nil {
		return err
	}

	if outputPath := ctx.String(OutputSpecFlag.Name); outputPath != "" {
		if err = dot.WriteGenesisSpecFile(res, outputPath); err != nil {
			return fmt.Errorf("cannot write genesis spec file: %w", err)
		}
		logger.Info("chain spec written to " + outputPath)
		return nil
	}

	_, err = fmt.Fprintln(ctx.App.Writer, string(res))
	return err
}

// buildSpec builds the chain spec from, in order of precedence, the named
// development authorities, the database of an initialised node or the
// genesis file.
func buildSpec(ctx *cli.Context, cfg *dot.Config) (*dot.BuildSpec, error) {
	if authorities := splitList(ctx.String(AuthoritiesFlag.Name)); len(authorities) > 0 {
		logger.Info("building development chain spec...")
		return dot.BuildFromDev(cfg.Parachain.ParaID, cfg.Parachain.RelayChain, authorities)
	}

	if dot.NodeInitialized(cfg.Global.BasePath) {
		logger.Info("building chain spec from database at " + cfg.Global.BasePath + "...")
		return dot.BuildFromDB(cfg.Global.BasePath)
	}

	logger.Info("building chain spec from genesis file " + cfg.Init.Genesis + "...")
	return dot.BuildFromGenesis(cfg.Init.Genesis)
}

// exportGenesisStateAction is the action for the "export-genesis-state" subcommand
func exportGenesisStateAction(ctx *cli.Context) error {
	if _, err := setupLogger(ctx); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	cfg, err := createDotConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to create node configuration: %w", err)
	}

	head, err := dot.GenesisHead(cfg.Init.Genesis)
	if err != nil {
		return fmt.Errorf("cannot export genesis state: %w", err)
	}

	_, err = fmt.Fprintln(ctx.App.Writer, head)
	return err
}

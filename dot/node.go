// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package dot

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/ChainSafe/collator/dot/state"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/genesis"
	"github.com/ChainSafe/collator/lib/keystore"
	"github.com/ChainSafe/collator/lib/services"
	"github.com/ChainSafe/collator/lib/trie"
	"github.com/ChainSafe/collator/lib/utils"
	"github.com/ChainSafe/collator/pkg/scale"
	"github.com/hashicorp/go-multierror"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "dot"))

var (
	ErrNoKeysProvided   = errors.New("no keys provided for collator")
	ErrParaIDMismatch   = errors.New("chain spec para id differs from configuration")
	errNodeNotInitiated = errors.New("node has not been initialised")
)

// Node is a container for all the components of a collator node.
type Node struct {
	Name     string
	Services *services.ServiceRegistry // registry of all node services

	faults   <-chan error
	started  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// InitNode initialises the node database from the JSON chain spec of the
// configuration. An existing database is cleared.
func InitNode(cfg *Config) error {
	setupLogger(cfg)
	logger.Infof("🕸️ initialising node with name %s, id %s, basepath %s and genesis %s...",
		cfg.Global.Name, cfg.Global.ID, cfg.Global.BasePath, cfg.Init.Genesis)

	gen, header, t, err := loadGenesis(cfg.Init.Genesis)
	if err != nil {
		return err
	}

	if gen.ParaID != cfg.Parachain.ParaID {
		return fmt.Errorf("%w: %d != %d", ErrParaIDMismatch, gen.ParaID, cfg.Parachain.ParaID)
	}

	stateSrvc := state.NewService(state.Config{
		Path:     cfg.Global.BasePath,
		LogLevel: cfg.Log.StateLvl,
	})

	if err = stateSrvc.Initialise(gen, header, t); err != nil {
		return fmt.Errorf("failed to initialise state service: %w", err)
	}

	logger.Infof("node initialised with name %s, id %s, basepath %s, genesis %s and genesis hash %s",
		cfg.Global.Name, cfg.Global.ID, cfg.Global.BasePath, cfg.Init.Genesis, header.Hash())
	return nil
}

// NodeInitialized returns true if, within the configured data directory for the
// node, the state database has been created and the genesis data has been loaded
func NodeInitialized(basepath string) bool {
	registry := filepath.Join(basepath, utils.DefaultDatabaseDir, "KEYREGISTRY")
	if _, err := os.Stat(registry); os.IsNotExist(err) {
		logger.Debugf("node has not been initialised from base path %s: "+
			"failed to locate KEYREGISTRY file in data directory", basepath)
		return false
	}

	db, err := utils.SetupDatabase(basepath, false)
	if err != nil {
		logger.Errorf("failed to create database from basepath %s: %s", basepath, err)
		return false
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Errorf("failed to close database: %s", err)
		}
	}()

	if _, err = state.NewBaseState(db).LoadGenesisData(); err != nil {
		logger.Debugf("node has not been initialised from base path %s: %s", basepath, err)
		return false
	}
	return true
}

// GenesisHead returns the SCALE encoded genesis header of the chain spec,
// the head data a parachain is registered with on the relay chain.
func GenesisHead(genesisFile string) (string, error) {
	_, header, _, err := loadGenesis(genesisFile)
	if err != nil {
		return "", err
	}

	encoded, err := scale.Marshal(*header)
	if err != nil {
		return "", fmt.Errorf("encoding genesis header: %w", err)
	}
	return common.BytesToHex(encoded), nil
}

// NewNode creates a collator node from the configuration. The collator key
// is the first key of ks.
func NewNode(cfg *Config, ks keystore.Keystore) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setupLogger(cfg)

	if !NodeInitialized(cfg.Global.BasePath) {
		return nil, fmt.Errorf("%w: %s", errNodeNotInitiated, cfg.Global.BasePath)
	}

	if ks.Size() == 0 {
		return nil, ErrNoKeysProvided
	}

	logger.Infof("🕸️ initialising node services with name %s, id %s and basepath %s...",
		cfg.Global.Name, cfg.Global.ID, cfg.Global.BasePath)

	b := &nodeBuilder{cfg: cfg, keypair: ks.Keypairs()[0]}
	nodeSrvcs, o, err := b.build()
	if err != nil {
		return nil, multierror.Append(err, b.cleanup()).ErrorOrNil()
	}

	node := &Node{
		Name:     cfg.Global.Name,
		Services: services.NewServiceRegistry(logger),
		faults:   o.Errors(),
		started:  make(chan struct{}),
		stop:     make(chan struct{}),
	}

	for _, srvc := range nodeSrvcs {
		node.Services.RegisterService(srvc)
	}

	return node, nil
}

// Start starts all node services and blocks until an interrupt signal,
// a call to Stop or a fault reported by a subsystem. Services are stopped
// before it returns; a subsystem fault is returned.
func (n *Node) Start() (err error) {
	logger.Info("🕸️ starting node services...")

	if err = n.Services.StartAll(); err != nil {
		return fmt.Errorf("starting services: %w", err)
	}
	close(n.started)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	var fault error
	select {
	case <-sigc:
		logger.Info("signal interrupt, shutting down...")
	case <-n.stop:
		logger.Info("stopping node...")
	case fault = <-n.faults:
		logger.Criticalf("stopping node: %s", fault)
	}

	return multierror.Append(fault, n.Services.StopAll()).ErrorOrNil()
}

// Stop makes Start stop the node services and return.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		close(n.stop)
	})
}

func loadGenesis(genesisFile string) (*genesis.Genesis, *types.Header, *trie.Trie, error) {
	gen, err := genesis.NewGenesisFromJSON(genesisFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load genesis from file: %w", err)
	}

	t, err := genesis.NewTrieFromGenesis(gen)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create trie from genesis: %w", err)
	}

	header, err := genesis.NewGenesisBlockFromTrie(t)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create genesis block from trie: %w", err)
	}
	return gen, header, t, nil
}

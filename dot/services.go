// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package dot

import (
	"context"
	"fmt"
	"sync"

	"github.com/ChainSafe/collator/dot/core"
	candidatevalidation "github.com/ChainSafe/collator/dot/parachain/candidate-validation"
	"github.com/ChainSafe/collator/dot/parachain/collation"
	collatorprotocol "github.com/ChainSafe/collator/dot/parachain/collator-protocol"
	"github.com/ChainSafe/collator/dot/parachain/forkchoice"
	"github.com/ChainSafe/collator/dot/parachain/inherents"
	"github.com/ChainSafe/collator/dot/parachain/overseer"
	"github.com/ChainSafe/collator/dot/parachain/relaychain"
	"github.com/ChainSafe/collator/dot/parachain/relayview"
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/dot/state"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/ChainSafe/collator/internal/metrics"
	"github.com/ChainSafe/collator/internal/pprof"
	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/lib/services"
	"github.com/ChainSafe/collator/lib/transaction"
	"github.com/ChainSafe/collator/lib/trie"
	"github.com/ChainSafe/collator/lib/trie/proof"
	"github.com/hashicorp/go-multierror"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

// nodeBuilder creates the node services in dependency order. Resources
// opened before a failure are released by cleanup.
type nodeBuilder struct {
	cfg     *Config
	keypair crypto.Keypair

	stateSrvc *state.Service
	client    relaychain.Client
	host      host.Host
}

func (b *nodeBuilder) build() (srvcs []services.Service, o *overseer.Overseer, err error) {
	cfg := b.cfg
	paraID := parachaintypes.ParaID(cfg.Parachain.ParaID)

	b.stateSrvc, err = createStateService(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create state service: %w", err)
	}

	gen, err := b.stateSrvc.Base.LoadGenesisData()
	if err != nil {
		return nil, nil, fmt.Errorf("loading genesis data: %w", err)
	}
	if gen.ParaID != cfg.Parachain.ParaID {
		return nil, nil, fmt.Errorf("%w: %d != %d", ErrParaIDMismatch, gen.ParaID, cfg.Parachain.ParaID)
	}

	client, err := relaychain.NewRPCClient(cfg.Parachain.RelayRPC)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to relay chain: %w", err)
	}
	b.client = client

	tracker := relayview.NewTracker(paraID)
	relaySrvc := newRelayService(tracker, b.client)

	engine := runtime.NewNativeEngine(b.stateSrvc.Storage)
	authorities := aura.NewStateAuthorities(b.stateSrvc.Storage)

	authorizer, err := createAuthorizer(cfg, authorities)
	if err != nil {
		return nil, nil, err
	}

	genesisHeader, err := b.stateSrvc.Block.GetHeader(b.stateSrvc.Block.GenesisHash())
	if err != nil {
		return nil, nil, fmt.Errorf("getting genesis header: %w", err)
	}
	if err = checkBlockImport(cfg, authorities, genesisHeader); err != nil {
		return nil, nil, err
	}

	coreSrvc, err := createCoreService(cfg, b.stateSrvc, engine, authorities)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create core service: %w", err)
	}

	pool := transaction.NewPool(transaction.CallValidator{}, transaction.DefaultMaxTransactions)
	poolSrvc := newPoolService(pool, b.stateSrvc.Block)

	verifier, err := candidatevalidation.NewHost(runtime.NewNativeEngine(trie.NewMemoryDB()),
		cfg.Parachain.Consensus == AuraConsensus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create candidate validation host: %w", err)
	}

	b.host, err = collatorprotocol.NewHost(collatorprotocol.HostConfig{
		ListenAddress: cfg.Network.ListenAddress,
		BasePath:      cfg.Global.BasePath,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create network host: %w", err)
	}

	protocolID := collatorprotocol.ProtocolID(cfg.Parachain.RelayChain)
	if cfg.Network.ProtocolID != "" {
		protocolID = protocol.ID(cfg.Network.ProtocolID)
	}

	submitter, err := collatorprotocol.NewSubmitter(b.host, protocolID, paraID, cfg.Network.Validators)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create submitter: %w", err)
	}

	pipeline, err := collation.NewPipeline(collation.Config{
		ParaID:              paraID,
		Views:               tracker,
		Authorizer:          authorizer,
		Inherents:           inherents.NewProvider(paraID, b.client, inherents.DefaultMaxDownwardMessages),
		Transactions:        pool,
		Engine:              engine,
		Proofs:              proof.NewBuilder(b.stateSrvc.Storage),
		Submitter:           submitter,
		Importer:            coreSrvc,
		Keypair:             b.keypair,
		ValidationCode:      runtime.NativeValidationCode,
		MaxPoVSize:          cfg.Parachain.MaxPoVSize,
		CompressPoV:         cfg.Parachain.CompressPoV,
		Verifier:            verifier,
		VerifyPoV:           cfg.Parachain.VerifyPoV,
		ProofFaultThreshold: cfg.Parachain.ProofFaultThreshold,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create collation pipeline: %w", err)
	}

	o = overseer.NewOverseer(tracker)
	o.RegisterSubsystem(collation.NewSubsystem(pipeline, tracker, cfg.Parachain.CollationTick))
	o.RegisterSubsystem(forkchoice.NewForkChoice(b.stateSrvc.Block, tracker))

	srvcs = []services.Service{
		b.stateSrvc,
		coreSrvc,
		relaySrvc,
		poolSrvc,
		&hostService{host: b.host},
	}

	if cfg.Network.Receive {
		handler := collatorprotocol.NewValidatingHandler(verifier, runtime.NativeValidationCode, coreSrvc)
		srvcs = append(srvcs, collatorprotocol.NewReceiver(b.host, protocolID, paraID, handler))
	}

	srvcs = append(srvcs, o)

	if cfg.Global.PublishMetrics {
		metricsSrvc, err := createMetricsServer(cfg, viewHealth(tracker), tracker, pipeline)
		if err != nil {
			return nil, nil, err
		}
		srvcs = append(srvcs, metricsSrvc)
	}

	if cfg.Pprof.Enabled {
		srvcs = append(srvcs, createPprofService(cfg.Pprof))
	}

	return srvcs, o, nil
}

// cleanup releases what build opened before failing.
func (b *nodeBuilder) cleanup() error {
	var result *multierror.Error
	if b.host != nil {
		result = multierror.Append(result, b.host.Close())
	}
	if b.client != nil {
		b.client.Close()
	}
	if b.stateSrvc != nil {
		result = multierror.Append(result, b.stateSrvc.Stop())
	}
	return result.ErrorOrNil()
}

// createStateService creates the state service and opens the state database
func createStateService(cfg *Config) (*state.Service, error) {
	logger.Debug("creating state service...")

	stateSrvc := state.NewService(state.Config{
		Path:     cfg.Global.BasePath,
		LogLevel: cfg.Log.StateLvl,
	})

	if err := stateSrvc.Start(); err != nil {
		return nil, fmt.Errorf("failed to start state service: %w", err)
	}
	return stateSrvc, nil
}

func createAuthorizer(cfg *Config, authorities aura.AuthoritySource) (aura.Authorizer, error) {
	switch cfg.Parachain.Consensus {
	case AuraConsensus:
		return aura.NewRoundRobinSlot(cfg.Parachain.SlotDuration, authorities)
	case PassThroughConsensus:
		return aura.NewAlwaysAuthorized(cfg.Parachain.SlotDuration)
	default:
		return nil, fmt.Errorf("%w: unknown consensus %q", ErrInvalidConfig, cfg.Parachain.Consensus)
	}
}

// checkBlockImport rejects an aura configuration with several authorities
// that does not receive collations. Such a node never imports the blocks of
// the other authorities and stops authoring once one of them is included.
func checkBlockImport(cfg *Config, authorities aura.AuthoritySource, genesis *types.Header) error {
	if cfg.Parachain.Consensus != AuraConsensus || cfg.Network.Receive {
		return nil
	}

	set, err := authorities.Authorities(genesis)
	if err != nil {
		return fmt.Errorf("getting genesis authorities: %w", err)
	}
	if len(set) > 1 {
		return fmt.Errorf("%w: aura with %d authorities requires receiving collations",
			ErrInvalidConfig, len(set))
	}
	return nil
}

func createCoreService(cfg *Config, st *state.Service, engine runtime.Engine,
	authorities aura.AuthoritySource) (*core.Service, error) {
	logger.Debug("creating core service...")

	coreConfig := &core.Config{
		LogLvl:       cfg.Log.CoreLvl,
		BlockState:   st.Block,
		StorageState: st.Storage,
		Engine:       engine,
	}
	if cfg.Parachain.Consensus == AuraConsensus {
		coreConfig.Authorities = authorities
	}

	return core.NewService(coreConfig)
}

func createPprofService(cfg PprofConfig) *pprof.Service {
	settings := pprof.Settings{
		ListeningAddress: cfg.ListeningAddress,
		BlockProfileRate: cfg.BlockProfileRate,
		MutexProfileRate: cfg.MutexProfileRate,
	}
	logger.Infof("enabling pprof HTTP endpoint at address %s", settings.ListeningAddress)
	return pprof.NewService(settings, log.NewFromGlobal(log.AddContext("pkg", "pprof")))
}

// metricsRegistrant registers its collectors on a prometheus registry.
type metricsRegistrant interface {
	RegisterMetrics(registerer prometheus.Registerer) error
}

func createMetricsServer(cfg *Config, health metrics.HealthFunc,
	registrants ...metricsRegistrant) (*metrics.Server, error) {
	registry := prometheus.NewRegistry()
	for _, registrant := range registrants {
		if err := registrant.RegisterMetrics(registry); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	logger.Infof("enabling stand-alone metrics HTTP endpoint at address %s", cfg.Global.MetricsAddress)
	return metrics.NewServer(cfg.Global.MetricsAddress, registry, health), nil
}

// viewHealth reports the node unhealthy while the relay chain is unavailable.
func viewHealth(tracker *relayview.Tracker) metrics.HealthFunc {
	return func() error {
		_, err := tracker.Current()
		return err
	}
}

// runner is a service running a blocking function until stopped.
type runner struct {
	name   string
	run    func(ctx context.Context) error
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *runner) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		if err := r.run(ctx); err != nil && ctx.Err() == nil {
			logger.Errorf("%s exited: %s", r.name, err)
		}
	}()
	return nil
}

func (r *runner) Stop() error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()
	<-r.done
	return nil
}

// relayService follows the relay chain into the view tracker.
type relayService struct {
	runner
	client    relaychain.Client
	closeOnce sync.Once
}

func newRelayService(tracker *relayview.Tracker, client relaychain.Client) *relayService {
	return &relayService{
		runner: runner{
			name: "relay chain follower",
			run: func(ctx context.Context) error {
				return tracker.Run(ctx, client)
			},
		},
		client: client,
	}
}

func (s *relayService) Stop() error {
	err := s.runner.Stop()
	s.closeOnce.Do(s.client.Close)
	return err
}

// poolService prunes the transaction pool on finality.
type poolService struct {
	runner
}

func newPoolService(pool *transaction.Pool, blockState transaction.BlockState) *poolService {
	return &poolService{
		runner: runner{
			name: "transaction pool",
			run: func(ctx context.Context) error {
				pool.Run(ctx, blockState)
				return nil
			},
		},
	}
}

// hostService closes the libp2p host on stop.
type hostService struct {
	host host.Host
}

func (*hostService) Start() error {
	return nil
}

func (s *hostService) Stop() error {
	if err := s.host.Close(); err != nil {
		return fmt.Errorf("closing network host: %w", err)
	}
	return nil
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package pprof

import (
	"context"
	"errors"
	"runtime"

	"github.com/ChainSafe/collator/internal/httpserver"
)

// Runner runs a server until its context is canceled.
type Runner interface {
	Run(ctx context.Context, ready chan<- struct{}, done chan<- error)
}

// Service is a pprof http server service registered with the
// node service registry.
type Service struct {
	settings Settings
	server   Runner
	cancel   context.CancelFunc
	done     chan error
}

// NewService creates a pprof server service.
func NewService(settings Settings, logger httpserver.Logger) *Service {
	settings.setDefaults()

	return &Service{
		settings: settings,
		server:   NewServer(settings.ListeningAddress, logger),
		done:     make(chan error),
	}
}

var ErrServerDoneBeforeReady = errors.New("server terminated before being ready")

// Start starts the pprof server service.
func (s *Service) Start() (err error) {
	runtime.SetBlockProfileRate(s.settings.BlockProfileRate)
	runtime.SetMutexProfileFraction(s.settings.MutexProfileRate)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ready := make(chan struct{})

	go s.server.Run(ctx, ready, s.done)

	select {
	case <-ready:
		return nil
	case err := <-s.done:
		cancel()
		s.cancel = nil
		if err != nil {
			return err
		}
		return ErrServerDoneBeforeReady
	}
}

// Stop stops the pprof server service. Stopping a service that is
// not running is a no-op.
func (s *Service) Stop() (err error) {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.cancel = nil
	return <-s.done
}

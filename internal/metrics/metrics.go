// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ChainSafe/collator/internal/httpserver"
	"github.com/ChainSafe/collator/internal/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger log.LeveledLogger = log.NewFromGlobal(log.AddContext("pkg", "metrics"))

var (
	ErrServerExited = errors.New("metrics server exited unexpectedly")
	ErrExitTimeout  = errors.New("metrics server exit timeout")
)

// HealthFunc reports whether the node is healthy.
// A nil error means healthy.
type HealthFunc func() error

// Server is a metrics http server
type Server struct {
	cancel context.CancelFunc
	server *httpserver.Server
	done   chan error
}

// NewServer is a constructor for metrics server serving the gatherer on
// /metrics and the health function on /health.
func NewServer(address string, gatherer prometheus.Gatherer, health HealthFunc) (s *Server) {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return &Server{
		server: httpserver.New("metrics", address, router, logger),
	}
}

// Address returns the bound address once the server is started.
func (s *Server) Address() string {
	return s.server.Address()
}

// Start will start a dedicated metrics server.
func (s *Server) Start() (err error) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ready := make(chan struct{})
	s.done = make(chan error)

	go s.server.Run(ctx, ready, s.done)

	select {
	case <-ready:
		logger.Infof("metrics available at http://%s/metrics", s.server.Address())
		return nil
	case err := <-s.done:
		cancel()
		if err != nil {
			return err
		}
		return ErrServerExited
	}
}

// Stop will stop the metrics server
func (s *Server) Stop() (err error) {
	s.cancel()
	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()
	select {
	case err := <-s.done:
		if err != nil {
			return fmt.Errorf("stopping metrics server: %w", err)
		}
		return nil
	case <-timer.C:
		return ErrExitTimeout
	}
}

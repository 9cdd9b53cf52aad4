// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

const shutdownTimeout = 3 * time.Second

// Server is an HTTP server implementation, which uses
// the HTTP handler provided.
type Server struct {
	name    string
	address string
	handler http.Handler
	logger  Logger

	addressMutex sync.RWMutex
	boundAddress string
}

// New creates a new HTTP server with a name, listening on
// the address specified and using the HTTP handler provided.
func New(name, address string, handler http.Handler, logger Logger) *Server {
	return &Server{
		name:    name,
		address: address,
		handler: handler,
		logger:  logger,
	}
}

// Address returns the address the server is listening on,
// or the empty string if it is not listening yet.
func (s *Server) Address() string {
	s.addressMutex.RLock()
	defer s.addressMutex.RUnlock()
	return s.boundAddress
}

// Run runs the HTTP server until ctx is canceled.
// The ready channel is closed once the server listens, and
// the done channel receives the exit error, nil on a clean shutdown.
func (s *Server) Run(ctx context.Context, ready chan<- struct{}, done chan<- error) {
	server := http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       10 * time.Second,
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		done <- fmt.Errorf("listening on %s: %w", s.address, err)
		return
	}

	s.addressMutex.Lock()
	s.boundAddress = listener.Addr().String()
	s.addressMutex.Unlock()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		s.logger.Warn(s.name + " http server shutting down: " + ctx.Err().Error())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(s.name + " http server failed shutting down: " + err.Error())
		}
	}()

	close(ready)
	s.logger.Info(s.name + " http server listening on " + listener.Addr().String())

	err = server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	<-shutdownDone
	done <- err
}

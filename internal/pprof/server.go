// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package pprof

import (
	"net/http"
	"net/http/pprof"

	"github.com/ChainSafe/collator/internal/httpserver"
	"github.com/gorilla/mux"
)

// NewServer creates a new pprof server which will listen at
// the address specified.
func NewServer(address string, logger httpserver.Logger) *httpserver.Server {
	router := mux.NewRouter()
	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	for _, profile := range []string{"block", "goroutine", "heap", "mutex", "threadcreate"} {
		router.Handle("/debug/pprof/"+profile, pprof.Handler(profile))
	}
	router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index).Methods(http.MethodGet)
	return httpserver.New("pprof", address, router, logger)
}

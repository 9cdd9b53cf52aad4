// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChainSafe/collator/dot"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

// newTestContext returns a cli context carrying every collator flag set to
// the given values. The application output is written to the returned buffer.
func newTestContext(t *testing.T, values map[string]string, args ...string) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	var flags []cli.Flag
	flags = append(flags, RootFlags...)
	flags = append(flags, InitFlags...)
	flags = append(flags, AccountCommandFlags...)
	flags = append(flags, BuildSpecFlags...)

	set := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
	for _, f := range flags {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	for name, value := range values {
		require.NoError(t, set.Set(name, value))
	}

	buffer := new(bytes.Buffer)
	testApp := cli.NewApp()
	testApp.Writer = buffer
	return cli.NewContext(testApp, set, nil), buffer
}

// newTestGenesisFile writes the chain spec of a development parachain
// authored by alice.
func newTestGenesisFile(t *testing.T) (path string) {
	t.Helper()

	bs, err := dot.BuildFromDev(2000, "rococo_local_testnet", []string{"alice"})
	require.NoError(t, err)
	data, err := bs.ToJSON()
	require.NoError(t, err)

	path = filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

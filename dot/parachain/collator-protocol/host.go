// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collatorprotocol

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// DefaultKeyFile is the name of the file holding the libp2p identity key.
const DefaultKeyFile = "node.key"

// HostConfig is the configuration of the libp2p host.
type HostConfig struct {
	// ListenAddress is a multiaddr such as /ip4/0.0.0.0/tcp/30333.
	ListenAddress string
	// BasePath is where the identity key is stored. An empty base path
	// uses an ephemeral key.
	BasePath string
}

// NewHost returns a libp2p host listening on cfg.ListenAddress.
func NewHost(cfg HostConfig) (host.Host, error) {
	addr, err := multiaddr.NewMultiaddr(cfg.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("parsing listen address: %w", err)
	}

	key, err := loadOrGenerateKey(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	h, err := libp2p.New(
		libp2p.ListenAddrs(addr),
		libp2p.Identity(key),
		libp2p.DisableRelay(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating libp2p host: %w", err)
	}

	logger.Infof("libp2p host %s listening on %v", h.ID(), h.Addrs())
	return h, nil
}

// stringToAddrInfo converts a multiaddr ending with a peer id to AddrInfo
func stringToAddrInfo(s string) (peer.AddrInfo, error) {
	maddr, err := multiaddr.NewMultiaddr(s)
	if err != nil {
		return peer.AddrInfo{}, err
	}
	p, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return peer.AddrInfo{}, err
	}
	return *p, err
}

// stringsToAddrInfos converts multiaddrs ending with peer ids to AddrInfos
func stringsToAddrInfos(peers []string) ([]peer.AddrInfo, error) {
	pinfos := make([]peer.AddrInfo, len(peers))
	for i, p := range peers {
		p, err := stringToAddrInfo(p)
		if err != nil {
			return nil, fmt.Errorf("parsing peer address %q: %w", peers[i], err)
		}
		pinfos[i] = p
	}
	return pinfos, nil
}

func loadOrGenerateKey(basePath string) (crypto.PrivKey, error) {
	if basePath == "" {
		key, _, err := crypto.GenerateEd25519Key(crand.Reader)
		return key, err
	}

	key, err := loadKey(basePath)
	if err == nil {
		return key, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key, _, err = crypto.GenerateEd25519Key(crand.Reader)
	if err != nil {
		return nil, err
	}
	if err = saveKey(key, basePath); err != nil {
		return nil, err
	}
	return key, nil
}

// loadKey attempts to load a private key from the provided filepath
func loadKey(fp string) (crypto.PrivKey, error) {
	keyData, err := os.ReadFile(filepath.Join(filepath.Clean(fp), DefaultKeyFile))
	if err != nil {
		return nil, err
	}
	dec := make([]byte, hex.DecodedLen(len(keyData)))
	_, err = hex.Decode(dec, keyData)
	if err != nil {
		return nil, fmt.Errorf("decoding node key: %w", err)
	}
	return crypto.UnmarshalEd25519PrivateKey(dec)
}

// saveKey attempts to save a private key to the provided filepath
func saveKey(priv crypto.PrivKey, fp string) (err error) {
	if err = os.MkdirAll(fp, os.ModePerm); err != nil {
		return err
	}

	raw, err := priv.Raw()
	if err != nil {
		return err
	}
	enc := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(enc, raw)
	return os.WriteFile(filepath.Join(filepath.Clean(fp), DefaultKeyFile), enc, 0600)
}

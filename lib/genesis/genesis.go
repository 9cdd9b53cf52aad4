// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package genesis

import (
	"fmt"

	"github.com/ChainSafe/collator/lib/aura"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/collator/lib/runtime"
	"github.com/ChainSafe/collator/pkg/scale"
	"github.com/go-playground/validator/v10"
)

// Genesis stores the data parsed from the chain spec file. Every parachain
// spec names the relay chain it is registered on and its para id.
type Genesis struct {
	Name       string                 `json:"name" validate:"required"`
	ID         string                 `json:"id" validate:"required"`
	ChainType  string                 `json:"chainType"`
	ProtocolID string                 `json:"protocolId"`
	RelayChain string                 `json:"relay_chain" validate:"required"`
	ParaID     uint32                 `json:"para_id" validate:"required"`
	Genesis    Fields                 `json:"genesis"`
	Properties map[string]interface{} `json:"properties"`
}

// Fields stores genesis raw data, and human readable runtime data
type Fields struct {
	Raw     map[string]map[string]string `json:"raw,omitempty"`
	Runtime *Runtime                     `json:"runtime,omitempty"`
}

// Runtime is the human readable genesis state.
type Runtime struct {
	Aura          *Aura          `json:"aura,omitempty"`
	ParachainInfo *ParachainInfo `json:"parachainInfo,omitempty"`
}

// Aura holds the SS58 addresses of the initial authorities.
type Aura struct {
	Authorities []string `json:"authorities"`
}

// ParachainInfo mirrors the para id into state.
type ParachainInfo struct {
	ParachainID uint32 `json:"parachainId"`
}

// Validate checks the mandatory chain spec fields.
func (g *Genesis) Validate() error {
	if err := validator.New().Struct(g); err != nil {
		return fmt.Errorf("invalid chain spec: %w", err)
	}
	return nil
}

// IsRaw returns whether the genesis state is in raw format.
func (g *Genesis) IsRaw() bool {
	return g.Genesis.Raw != nil && g.Genesis.Runtime == nil
}

// ToRaw converts the human readable runtime section into the raw top map.
func (g *Genesis) ToRaw() error {
	if g.IsRaw() {
		return nil
	}

	top := make(map[string]string)
	if g.Genesis.Raw != nil {
		for k, v := range g.Genesis.Raw["top"] {
			top[k] = v
		}
	}

	if rt := g.Genesis.Runtime; rt != nil {
		if rt.Aura != nil {
			authorities := make([]aura.AuthorityID, len(rt.Aura.Authorities))
			for i, address := range rt.Aura.Authorities {
				_, pub, err := crypto.DecodeSS58(address)
				if err != nil {
					return fmt.Errorf("decoding aura authority %q: %w", address, err)
				}
				if len(pub) != len(authorities[i]) {
					return fmt.Errorf("aura authority %q has %d bytes", address, len(pub))
				}
				copy(authorities[i][:], pub)
			}
			top[common.BytesToHex(runtime.AuthoritiesKey)] = common.BytesToHex(aura.EncodeAuthorities(authorities))
		}

		if rt.ParachainInfo != nil && rt.ParachainInfo.ParachainID != g.ParaID {
			return fmt.Errorf("parachainInfo id %d differs from para_id %d", rt.ParachainInfo.ParachainID, g.ParaID)
		}
	}
	top[common.BytesToHex(runtime.ParaIDKey)] = common.BytesToHex(scale.MustMarshal(g.ParaID))

	g.Genesis = Fields{Raw: map[string]map[string]string{"top": top}}
	return nil
}

// DevGenesis returns a local chain spec authored by the given authorities.
func DevGenesis(paraID uint32, relayChain string, authorities []aura.AuthorityID) *Genesis {
	addresses := make([]string, len(authorities))
	for i, authority := range authorities {
		addresses[i] = authority.String()
	}

	return &Genesis{
		Name:       "Development",
		ID:         "dev",
		ChainType:  "Development",
		ProtocolID: "dev",
		RelayChain: relayChain,
		ParaID:     paraID,
		Genesis: Fields{
			Runtime: &Runtime{
				Aura:          &Aura{Authorities: addresses},
				ParachainInfo: &ParachainInfo{ParachainID: paraID},
			},
		},
	}
}

// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import "github.com/ChainSafe/collator/lib/common"

// FinalisationInfo represents a parachain block finalised through the
// relay chain block that finalised its inclusion.
type FinalisationInfo struct {
	Header     Header
	RelayBlock common.Hash
}

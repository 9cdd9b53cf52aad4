// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relaychain

import (
	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
)

// ParaHeadKey returns the relay storage key of Paras.Heads for paraID.
func ParaHeadKey(paraID parachaintypes.ParaID) []byte {
	return storageMapKey("Paras", "Heads", paraID)
}

// DownwardMessageQueueKey returns the relay storage key of
// Dmp.DownwardMessageQueues for paraID.
func DownwardMessageQueueKey(paraID parachaintypes.ParaID) []byte {
	return storageMapKey("Dmp", "DownwardMessageQueues", paraID)
}

func storageMapKey(module, item string, paraID parachaintypes.ParaID) []byte {
	key := common.StorageValueKey(module, item)
	return append(key, common.Twox64Concat(scale.MustMarshal(paraID))...)
}

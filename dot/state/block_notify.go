// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/common"
)

const defaultBufferSize = 128

// GetImportedBlockNotifierChannel function to retrieve a imported block notifier channel
func (bs *BlockState) GetImportedBlockNotifierChannel() chan *types.Block {
	bs.importedLock.Lock()
	defer bs.importedLock.Unlock()

	ch := make(chan *types.Block, defaultBufferSize)
	bs.imported[ch] = struct{}{}
	return ch
}

// GetFinalisedNotifierChannel function to retrieve a finalised block notifier channel
func (bs *BlockState) GetFinalisedNotifierChannel() chan *types.FinalisationInfo {
	bs.finalisedLock.Lock()
	defer bs.finalisedLock.Unlock()

	ch := make(chan *types.FinalisationInfo, defaultBufferSize)
	bs.finalised[ch] = struct{}{}

	return ch
}

// FreeImportedBlockNotifierChannel to free imported block notifier channel
func (bs *BlockState) FreeImportedBlockNotifierChannel(ch chan *types.Block) {
	bs.importedLock.Lock()
	defer bs.importedLock.Unlock()
	delete(bs.imported, ch)
}

// FreeFinalisedNotifierChannel to free finalised notifier channel
func (bs *BlockState) FreeFinalisedNotifierChannel(ch chan *types.FinalisationInfo) {
	bs.finalisedLock.Lock()
	defer bs.finalisedLock.Unlock()

	delete(bs.finalised, ch)
}

func (bs *BlockState) notifyImported(block *types.Block) {
	bs.importedLock.RLock()
	defer bs.importedLock.RUnlock()

	if len(bs.imported) == 0 {
		return
	}

	logger.Trace("notifying imported block channels...")
	for ch := range bs.imported {
		select {
		case ch <- block:
		default:
			logger.Warnf("imported block channel full, dropping block %s", block.Header.Hash())
		}
	}
}

func (bs *BlockState) notifyFinalized(header *types.Header, relayBlock common.Hash) {
	bs.finalisedLock.RLock()
	defer bs.finalisedLock.RUnlock()

	if len(bs.finalised) == 0 {
		return
	}

	logger.Debug("notifying finalised block channels...")
	info := &types.FinalisationInfo{
		Header:     *header,
		RelayBlock: relayBlock,
	}

	for ch := range bs.finalised {
		select {
		case ch <- info:
		default:
			logger.Warnf("finalised channel full, dropping block %s", header.Hash())
		}
	}
}

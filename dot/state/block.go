// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ChainSafe/chaindb"
	"github.com/ChainSafe/collator/dot/types"
	"github.com/ChainSafe/collator/lib/blocktree"
	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/pkg/scale"
)

var blockPrefix = "block"

var (
	// Data prefixes
	headerPrefix     = []byte("hdr") // headerPrefix + hash -> header
	blockBodyPrefix  = []byte("blb") // blockBodyPrefix + hash -> body
	headerHashPrefix = []byte("hsh") // headerHashPrefix + encodedBlockNum -> finalised hash
	arrivalPrefix    = []byte("arr") // arrivalPrefix + hash -> arrival time

	genesisHashKey      = []byte("genesis")
	highestFinalisedKey = []byte("hfin")
)

var errFinalisedNotDescendant = errors.New("finalised block does not descend from previous finalised block")

// BlockState stores parachain headers and bodies. Blocks above the last
// finalised one are tracked in a BlockTree carrying the relay chain marks
// the fork choice needs.
type BlockState struct {
	bt *blocktree.BlockTree
	db chaindb.Database
	sync.RWMutex
	genesisHash   common.Hash
	lastFinalised common.Hash

	// block notifiers
	imported      map[chan *types.Block]struct{}
	finalised     map[chan *types.FinalisationInfo]struct{}
	importedLock  sync.RWMutex
	finalisedLock sync.RWMutex
}

// NewBlockState loads the block state stored in db. The block tree is
// rooted at the highest finalised block and holds every stored block
// descending from it.
func NewBlockState(db chaindb.Database) (*BlockState, error) {
	bs := &BlockState{
		db:        chaindb.NewTable(db, blockPrefix),
		imported:  make(map[chan *types.Block]struct{}),
		finalised: make(map[chan *types.FinalisationInfo]struct{}),
	}

	genesisHash, err := bs.db.Get(genesisHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get genesis hash: %w", err)
	}
	bs.genesisHash = common.NewHash(genesisHash)

	finalised, err := bs.db.Get(highestFinalisedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get last finalised hash: %w", err)
	}
	bs.lastFinalised = common.NewHash(finalised)

	header, err := bs.GetHeader(bs.lastFinalised)
	if err != nil {
		return nil, fmt.Errorf("failed to get last finalised header: %w", err)
	}
	bs.bt = blocktree.NewBlockTreeFromRoot(header)

	if err = bs.loadUnfinalisedBlocks(header); err != nil {
		return nil, fmt.Errorf("loading unfinalised blocks: %w", err)
	}

	return bs, nil
}

// loadUnfinalisedBlocks adds the stored blocks above the finalised block to
// the block tree, parents first. Blocks left over from a fork that does not
// descend from the finalised block are skipped.
func (bs *BlockState) loadUnfinalisedBlocks(finalised *types.Header) error {
	iter := bs.db.NewIterator()
	defer iter.Release()

	var headers []*types.Header
	for iter.Next() {
		if !bytes.HasPrefix(iter.Key(), headerPrefix) {
			continue
		}

		header := new(types.Header)
		value := append([]byte(nil), iter.Value()...)
		if err := scale.Unmarshal(value, header); err != nil {
			return fmt.Errorf("decoding header %x: %w", iter.Key()[len(headerPrefix):], err)
		}
		if header.Number > finalised.Number {
			headers = append(headers, header)
		}
	}

	sort.Slice(headers, func(i, j int) bool {
		return headers[i].Number < headers[j].Number
	})

	for _, header := range headers {
		hash := header.Hash()
		arrivalTime, err := bs.GetArrivalTime(hash)
		if err != nil {
			return fmt.Errorf("getting arrival time of block %s: %w", hash, err)
		}

		err = bs.bt.AddBlock(header, arrivalTime)
		if errors.Is(err, blocktree.ErrParentNotFound) {
			logger.Debugf("skipping stored block %d (%s) not descending from finalised block %s",
				header.Number, hash, finalised.Hash())
			continue
		} else if err != nil {
			return fmt.Errorf("adding block %s: %w", hash, err)
		}
	}

	if len(headers) > 0 {
		logger.Infof("loaded block tree with %d blocks above finalised block %d, deepest block %s",
			len(bs.bt.GetAllBlocks())-1, finalised.Number, bs.bt.DeepestBlockHash())
	}
	return nil
}

// NewBlockStateFromGenesis initialises a BlockState from a genesis header, saving it to the database
func NewBlockStateFromGenesis(db chaindb.Database, header *types.Header) (*BlockState, error) {
	hash := header.Hash()
	bs := &BlockState{
		bt:            blocktree.NewBlockTreeFromRoot(header),
		db:            chaindb.NewTable(db, blockPrefix),
		imported:      make(map[chan *types.Block]struct{}),
		finalised:     make(map[chan *types.FinalisationInfo]struct{}),
		genesisHash:   hash,
		lastFinalised: hash,
	}

	batch := bs.db.NewBatch()
	encodedHeader, err := scale.Marshal(*header)
	if err != nil {
		return nil, err
	}
	encodedBody, err := scale.Marshal(types.Body{})
	if err != nil {
		return nil, err
	}

	writes := []struct{ key, value []byte }{
		{headerKey(hash), encodedHeader},
		{blockBodyKey(hash), encodedBody},
		{headerHashKey(header.Number), hash.ToBytes()},
		{genesisHashKey, hash.ToBytes()},
		{highestFinalisedKey, hash.ToBytes()},
	}
	for _, write := range writes {
		if err = batch.Put(write.key, write.value); err != nil {
			return nil, err
		}
	}

	if err = batch.Flush(); err != nil {
		return nil, fmt.Errorf("writing genesis block: %w", err)
	}
	return bs, nil
}

func headerKey(hash common.Hash) []byte {
	return append(append([]byte{}, headerPrefix...), hash.ToBytes()...)
}

func blockBodyKey(hash common.Hash) []byte {
	return append(append([]byte{}, blockBodyPrefix...), hash.ToBytes()...)
}

func arrivalKey(hash common.Hash) []byte {
	return append(append([]byte{}, arrivalPrefix...), hash.ToBytes()...)
}

// headerHashKey = headerHashPrefix + num (uint32 big endian)
func headerHashKey(number uint32) []byte {
	key := make([]byte, len(headerHashPrefix)+4)
	copy(key, headerHashPrefix)
	binary.BigEndian.PutUint32(key[len(headerHashPrefix):], number)
	return key
}

// GenesisHash returns the hash of the genesis block
func (bs *BlockState) GenesisHash() common.Hash {
	return bs.genesisHash
}

// HasHeader returns true if the hash is part of the unfinalised blocktree or the database
func (bs *BlockState) HasHeader(hash common.Hash) (bool, error) {
	if bs.bt.Has(hash) {
		return true, nil
	}
	return bs.db.Has(headerKey(hash))
}

// GetHeader returns a BlockHeader for a given hash
func (bs *BlockState) GetHeader(hash common.Hash) (*types.Header, error) {
	data, err := bs.db.Get(headerKey(hash))
	if err != nil {
		return nil, fmt.Errorf("getting header %s: %w", hash, err)
	}

	header := new(types.Header)
	if err = scale.Unmarshal(data, header); err != nil {
		return nil, fmt.Errorf("decoding header %s: %w", hash, err)
	}
	return header, nil
}

// GetBlockBody will return Body for a given hash
func (bs *BlockState) GetBlockBody(hash common.Hash) (types.Body, error) {
	data, err := bs.db.Get(blockBodyKey(hash))
	if err != nil {
		return nil, fmt.Errorf("getting body %s: %w", hash, err)
	}

	var body types.Body
	if err = scale.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decoding body %s: %w", hash, err)
	}
	return body, nil
}

// GetBlockByHash returns a block for a given hash
func (bs *BlockState) GetBlockByHash(hash common.Hash) (*types.Block, error) {
	header, err := bs.GetHeader(hash)
	if err != nil {
		return nil, err
	}

	body, err := bs.GetBlockBody(hash)
	if err != nil {
		return nil, err
	}

	block := types.NewBlock(*header, body)
	return &block, nil
}

// GetArrivalTime returns the arrival time in nanoseconds since the Unix epoch of a block given its hash
func (bs *BlockState) GetArrivalTime(hash common.Hash) (time.Time, error) {
	arrivalTime, err := bs.db.Get(arrivalKey(hash))
	if err != nil {
		return time.Time{}, err
	}

	ns := binary.LittleEndian.Uint64(arrivalTime)
	return time.Unix(0, int64(ns)), nil
}

// GetHashByNumber returns the finalised block hash with the given number.
func (bs *BlockState) GetHashByNumber(number uint32) (common.Hash, error) {
	hash, err := bs.db.Get(headerHashKey(number))
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting finalised hash for number %d: %w", number, err)
	}
	return common.NewHash(hash), nil
}

// AddBlock adds a block to the blocktree and the DB with arrival time as current unix time
func (bs *BlockState) AddBlock(block *types.Block) error {
	return bs.AddBlockWithArrivalTime(block, time.Now())
}

// AddBlockWithArrivalTime adds a block to the blocktree and the DB with the given arrival time
func (bs *BlockState) AddBlockWithArrivalTime(block *types.Block, arrivalTime time.Time) error {
	bs.Lock()
	defer bs.Unlock()

	if err := bs.bt.AddBlock(&block.Header, arrivalTime); err != nil {
		return err
	}

	hash := block.Header.Hash()
	encodedHeader, err := scale.Marshal(block.Header)
	if err != nil {
		return err
	}
	encodedBody, err := scale.Marshal(block.Body)
	if err != nil {
		return err
	}
	encodedArrival := make([]byte, 8)
	binary.LittleEndian.PutUint64(encodedArrival, uint64(arrivalTime.UnixNano()))

	batch := bs.db.NewBatch()
	if err = batch.Put(headerKey(hash), encodedHeader); err != nil {
		return err
	}
	if err = batch.Put(blockBodyKey(hash), encodedBody); err != nil {
		return err
	}
	if err = batch.Put(arrivalKey(hash), encodedArrival); err != nil {
		return err
	}
	if err = batch.Flush(); err != nil {
		return fmt.Errorf("storing block %s: %w", hash, err)
	}

	logger.Debugf("added block %d (%s) with parent %s", block.Header.Number, hash, block.Header.ParentHash)
	go bs.notifyImported(block)
	return nil
}

// MarkSeen records that a candidate for the block was accepted upward.
func (bs *BlockState) MarkSeen(hash common.Hash) error {
	return bs.bt.MarkSeen(hash)
}

// SetIncluded records that the relay chain names the block as para head.
func (bs *BlockState) SetIncluded(hash common.Hash) error {
	return bs.bt.SetIncluded(hash)
}

// BestBlockHash returns the canonical head given the relay chain's last included block.
func (bs *BlockState) BestBlockHash(lastIncluded common.Hash) (common.Hash, error) {
	return bs.bt.BestBlockHash(lastIncluded)
}

// BestBlockHeader returns the header of the canonical head given the relay chain's last included block.
func (bs *BlockState) BestBlockHeader(lastIncluded common.Hash) (*types.Header, error) {
	hash, err := bs.bt.BestBlockHash(lastIncluded)
	if err != nil {
		return nil, err
	}
	return bs.GetHeader(hash)
}

// Leaves returns the leaves of the blocktree as an array
func (bs *BlockState) Leaves() []common.Hash {
	return bs.bt.Leaves()
}

// IsDescendantOf returns true if child is a descendant of parent, false otherwise.
func (bs *BlockState) IsDescendantOf(parent, child common.Hash) (bool, error) {
	return bs.bt.IsDescendantOf(parent, child)
}

// BlocktreeAsString returns the blocktree as a string
func (bs *BlockState) BlocktreeAsString() string {
	return bs.bt.String()
}

// GetHighestFinalisedHash returns the hash of the highest finalised block
func (bs *BlockState) GetHighestFinalisedHash() common.Hash {
	bs.RLock()
	defer bs.RUnlock()
	return bs.lastFinalised
}

// GetHighestFinalisedHeader returns the highest finalised block header
func (bs *BlockState) GetHighestFinalisedHeader() (*types.Header, error) {
	return bs.GetHeader(bs.GetHighestFinalisedHash())
}

// SetFinalisedHash finalises the block and its ancestors, prunes the forks
// not descending from it and notifies the finalised channels. relayBlock is
// the relay chain block whose finality caused it.
func (bs *BlockState) SetFinalisedHash(hash, relayBlock common.Hash) error {
	bs.Lock()
	defer bs.Unlock()

	if hash == bs.lastFinalised {
		return nil
	}

	descendant, err := bs.bt.IsDescendantOf(bs.lastFinalised, hash)
	if err != nil {
		return fmt.Errorf("checking finalised block %s: %w", hash, err)
	}
	if !descendant {
		return fmt.Errorf("%w: %s", errFinalisedNotDescendant, hash)
	}

	chain, err := bs.bt.SubBlockchain(bs.lastFinalised, hash)
	if err != nil {
		return err
	}

	header, err := bs.GetHeader(hash)
	if err != nil {
		return err
	}

	batch := bs.db.NewBatch()
	number := header.Number + 1 - uint32(len(chain)-1)
	for _, finalised := range chain[1:] {
		if err = batch.Put(headerHashKey(number), finalised.ToBytes()); err != nil {
			return err
		}
		number++
	}
	if err = batch.Put(highestFinalisedKey, hash.ToBytes()); err != nil {
		return err
	}

	pruned := bs.bt.Pruned(hash)
	for _, prunedHash := range pruned {
		for _, key := range [][]byte{headerKey(prunedHash), blockBodyKey(prunedHash), arrivalKey(prunedHash)} {
			if err = batch.Del(key); err != nil {
				return err
			}
		}
	}

	if err = batch.Flush(); err != nil {
		return fmt.Errorf("storing finalised block %s: %w", hash, err)
	}

	// the tree only changes once the database holds the new finalised block
	bs.bt.Prune(hash)

	logger.Infof("finalised block %d (%s), pruned %d blocks", header.Number, hash, len(pruned))
	bs.lastFinalised = hash
	bs.notifyFinalized(header, relayBlock)
	return nil
}

// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package blob

import (
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"github.com/consensys/blobcodec"
	"github.com/consensys/blobcodec/logger"
	"github.com/consensys/blobcodec/packing"
)

// Checkpoint wire format, in field elements:
//
//	for each block:
//	    packed block prefix   (numTxs:16 | blockNumber:32 | timestamp:64)
//	    packed BlockEndState
//	    for each tx:
//	        packed tx prefix  (numEffects:16 | revertCode:8)
//	        numEffects raw effect elements
//	checkpoint end marker     (tag byte 0x20 | zero | payload count:32)
//
// Block and tx boundaries are re-derived from the embedded counts alone;
// no external schema is needed beyond the layout constants.
var (
	blockPrefixLayout = packing.MustLayout(
		packing.Field{Name: "numTxs", Bits: 16},
		packing.Field{Name: "blockNumber", Bits: 32},
		packing.Field{Name: "timestamp", Bits: 64},
	)
	txPrefixLayout = packing.MustLayout(
		packing.Field{Name: "numEffects", Bits: 16},
		packing.Field{Name: "revertCode", Bits: 8},
	)
)

// TxEffects is one transaction's contribution to the blob: its revert code
// and the ordered effect elements (note hashes, nullifiers, logs...). Effect
// values are arbitrary field elements owned by the transaction pipeline.
type TxEffects struct {
	RevertCode uint8
	Effects    []fr.Element
}

// Block is the per-block input to checkpoint encoding.
type Block struct {
	Number    uint32
	Timestamp uint64
	EndState  packing.BlockEndState
	Txs       []TxEffects
}

// EncodeCheckpoint serializes blocks in order and appends the end marker
// recording the payload field count.
func EncodeCheckpoint(blocks []Block) ([]fr.Element, error) {
	log := logger.Logger().With().Str("component", "blob").Logger()
	start := time.Now()

	var fields []fr.Element
	nbTxs := 0
	for i := range blocks {
		b := &blocks[i]

		prefix, err := blockPrefixLayout.Pack([]*uint256.Int{
			uint256.NewInt(uint64(len(b.Txs))),
			uint256.NewInt(uint64(b.Number)),
			uint256.NewInt(b.Timestamp),
		})
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", b.Number, err)
		}
		endState, err := b.EndState.Encode()
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", b.Number, err)
		}
		fields = append(fields, prefix, endState)

		for t := range b.Txs {
			tx := &b.Txs[t]
			txPrefix, err := txPrefixLayout.Pack([]*uint256.Int{
				uint256.NewInt(uint64(len(tx.Effects))),
				uint256.NewInt(uint64(tx.RevertCode)),
			})
			if err != nil {
				return nil, fmt.Errorf("block %d tx %d: %w", b.Number, t, err)
			}
			fields = append(fields, txPrefix)
			fields = append(fields, tx.Effects...)
		}
		nbTxs += len(b.Txs)
	}

	marker, err := EncodeCheckpointEndMarker(uint64(len(fields)))
	if err != nil {
		return nil, err
	}
	fields = append(fields, marker)

	log.Debug().
		Int("blocks", len(blocks)).
		Int("txs", nbTxs).
		Int("fields", len(fields)).
		Dur("took", time.Since(start)).
		Msg("checkpoint encoded")
	return fields, nil
}

// DecodeCheckpoint walks an encoded sequence and reconstructs the blocks.
// Truncated or garbled input is a format error; the end marker's payload
// count is cross-checked against the walked length.
func DecodeCheckpoint(fields []fr.Element) ([]Block, error) {
	blocks := []Block{}

	i := 0
	for {
		if i >= len(fields) {
			return nil, fmt.Errorf("blob: checkpoint truncated at field %d, no end marker: %w", i, blobcodec.ErrFormat)
		}
		if IsCheckpointEndMarker(fields[i]) {
			count, err := DecodeCheckpointEndMarker(fields[i])
			if err != nil {
				return nil, err
			}
			if count != uint64(i) {
				return nil, fmt.Errorf("blob: end marker records %d payload fields, walked %d: %w", count, i, blobcodec.ErrFormat)
			}
			if i != len(fields)-1 {
				return nil, fmt.Errorf("blob: %d trailing fields after end marker: %w", len(fields)-1-i, blobcodec.ErrFormat)
			}
			return blocks, nil
		}

		prefix, err := blockPrefixLayout.Unpack(fields[i])
		if err != nil {
			return nil, fmt.Errorf("blob: field %d is not a block prefix: %w", i, err)
		}
		numTxs := int(prefix[0].Uint64())
		block := Block{
			Number:    uint32(prefix[1].Uint64()),
			Timestamp: prefix[2].Uint64(),
		}
		i++

		if i >= len(fields) {
			return nil, fmt.Errorf("blob: checkpoint truncated in block %d end state: %w", block.Number, blobcodec.ErrFormat)
		}
		block.EndState, err = packing.DecodeBlockEndState(fields[i])
		if err != nil {
			return nil, fmt.Errorf("blob: block %d: %w", block.Number, err)
		}
		i++

		block.Txs = make([]TxEffects, 0, numTxs)
		for t := 0; t < numTxs; t++ {
			if i >= len(fields) {
				return nil, fmt.Errorf("blob: checkpoint truncated at block %d tx %d: %w", block.Number, t, blobcodec.ErrFormat)
			}
			txPrefix, err := txPrefixLayout.Unpack(fields[i])
			if err != nil {
				return nil, fmt.Errorf("blob: field %d is not a tx prefix: %w", i, err)
			}
			numEffects := int(txPrefix[0].Uint64())
			i++

			if i+numEffects > len(fields) {
				return nil, fmt.Errorf("blob: block %d tx %d declares %d effects, %d fields left: %w",
					block.Number, t, numEffects, len(fields)-i, blobcodec.ErrFormat)
			}
			block.Txs = append(block.Txs, TxEffects{
				RevertCode: uint8(txPrefix[1].Uint64()),
				Effects:    append([]fr.Element(nil), fields[i:i+numEffects]...),
			})
			i += numEffects
		}

		blocks = append(blocks, block)
	}
}

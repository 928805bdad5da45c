// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package packing

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

// Tree heights fix the bit width of each "next free leaf index" counter.
// They are part of the wire contract shared with the companion circuit.
const (
	L1ToL2MsgTreeHeight  = 16
	NoteHashTreeHeight   = 40
	NullifierTreeHeight  = 40
	PublicDataTreeHeight = 40

	// ManaUsedBits is the width of the accumulated mana counter. The counter
	// exceeds 53 bits in practice and is carried as a uint256 end to end.
	ManaUsedBits = 96
)

// blockEndStateLayout packs, most significant sub-field first:
// l1-to-l2 index | note-hash index | nullifier index | public-data index | mana used.
var blockEndStateLayout = MustLayout(
	Field{Name: "l1ToL2MsgNextIndex", Bits: L1ToL2MsgTreeHeight},
	Field{Name: "noteHashNextIndex", Bits: NoteHashTreeHeight},
	Field{Name: "nullifierNextIndex", Bits: NullifierTreeHeight},
	Field{Name: "publicDataNextIndex", Bits: PublicDataTreeHeight},
	Field{Name: "manaUsed", Bits: ManaUsedBits},
)

// BlockEndState summarizes the world-state counters at the end of one block:
// the next available leaf index of each append-only tree and the total mana
// the block consumed.
type BlockEndState struct {
	L1ToL2MsgNextIndex  uint64
	NoteHashNextIndex   uint64
	NullifierNextIndex  uint64
	PublicDataNextIndex uint64
	ManaUsed            *uint256.Int
}

// Encode packs the end state into a single field element.
func (s BlockEndState) Encode() (fr.Element, error) {
	mana := s.ManaUsed
	if mana == nil {
		mana = uint256.NewInt(0)
	}
	return blockEndStateLayout.Pack([]*uint256.Int{
		uint256.NewInt(s.L1ToL2MsgNextIndex),
		uint256.NewInt(s.NoteHashNextIndex),
		uint256.NewInt(s.NullifierNextIndex),
		uint256.NewInt(s.PublicDataNextIndex),
		mana,
	})
}

// DecodeBlockEndState is the exact inverse of Encode.
func DecodeBlockEndState(e fr.Element) (BlockEndState, error) {
	values, err := blockEndStateLayout.Unpack(e)
	if err != nil {
		return BlockEndState{}, err
	}
	return BlockEndState{
		L1ToL2MsgNextIndex:  values[0].Uint64(),
		NoteHashNextIndex:   values[1].Uint64(),
		NullifierNextIndex:  values[2].Uint64(),
		PublicDataNextIndex: values[3].Uint64(),
		ManaUsed:            values[4],
	}, nil
}

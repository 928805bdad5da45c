// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package packing

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/consensys/blobcodec"
)

func TestLayoutRoundTrip(t *testing.T) {
	layout := MustLayout(
		Field{Name: "a", Bits: 16},
		Field{Name: "b", Bits: 40},
		Field{Name: "c", Bits: 96},
	)

	cases := []struct {
		name string
		a, b uint64
		c    *uint256.Int
	}{
		{name: "zero", a: 0, b: 0, c: uint256.NewInt(0)},
		{name: "small", a: 12, b: 34, c: uint256.NewInt(56)},
		{name: "max a", a: 1<<16 - 1, b: 0, c: uint256.NewInt(0)},
		{name: "max b", a: 0, b: 1<<40 - 1, c: uint256.NewInt(0)},
		{name: "max c", a: 0, b: 0, c: maxValue(96)},
		{name: "all max", a: 1<<16 - 1, b: 1<<40 - 1, c: maxValue(96)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			packed, err := layout.Pack([]*uint256.Int{
				uint256.NewInt(tc.a), uint256.NewInt(tc.b), tc.c,
			})
			require.NoError(t, err)

			values, err := layout.Unpack(packed)
			require.NoError(t, err)
			require.Equal(t, tc.a, values[0].Uint64())
			require.Equal(t, tc.b, values[1].Uint64())
			require.Equal(t, tc.c.String(), values[2].String())
		})
	}
}

func TestLayoutPackingOrder(t *testing.T) {
	// First field lands in the most significant position.
	layout := MustLayout(
		Field{Name: "hi", Bits: 8},
		Field{Name: "lo", Bits: 8},
	)
	packed, err := layout.Pack([]*uint256.Int{uint256.NewInt(0xab), uint256.NewInt(0xcd)})
	require.NoError(t, err)

	var expected fr.Element
	expected.SetUint64(0xabcd)
	require.True(t, expected.Equal(&packed))
}

func TestPackRangeError(t *testing.T) {
	layout := MustLayout(
		Field{Name: "a", Bits: 16},
		Field{Name: "b", Bits: 40},
	)

	// One past the maximum of each sub-field.
	_, err := layout.Pack([]*uint256.Int{uint256.NewInt(1 << 16), uint256.NewInt(0)})
	require.ErrorIs(t, err, blobcodec.ErrRange)

	_, err = layout.Pack([]*uint256.Int{uint256.NewInt(0), uint256.NewInt(1 << 40)})
	require.ErrorIs(t, err, blobcodec.ErrRange)

	// Wrong arity is a caller bug, reported as a range error too.
	_, err = layout.Pack([]*uint256.Int{uint256.NewInt(0)})
	require.ErrorIs(t, err, blobcodec.ErrRange)
}

func TestUnpackFormatError(t *testing.T) {
	layout := MustLayout(Field{Name: "a", Bits: 16})

	var e fr.Element
	e.SetBigInt(new(big.Int).Lsh(big.NewInt(1), 17))
	_, err := layout.Unpack(e)
	require.ErrorIs(t, err, blobcodec.ErrFormat)
}

func TestNewLayoutTooWide(t *testing.T) {
	_, err := NewLayout(
		Field{Name: "a", Bits: 200},
		Field{Name: "b", Bits: 60},
	)
	require.Error(t, err)

	_, err = NewLayout(Field{Name: "zero", Bits: 0})
	require.Error(t, err)
}

func TestBlockEndStateRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		state BlockEndState
	}{
		{name: "zero", state: BlockEndState{}},
		{
			name: "typical",
			state: BlockEndState{
				L1ToL2MsgNextIndex:  1024,
				NoteHashNextIndex:   1 << 33,
				NullifierNextIndex:  777,
				PublicDataNextIndex: 42,
				ManaUsed:            uint256.NewInt(21_000_000),
			},
		},
		{
			name: "tree boundaries",
			state: BlockEndState{
				L1ToL2MsgNextIndex:  1<<L1ToL2MsgTreeHeight - 1,
				NoteHashNextIndex:   1<<NoteHashTreeHeight - 1,
				NullifierNextIndex:  1<<NullifierTreeHeight - 2,
				PublicDataNextIndex: 1<<PublicDataTreeHeight - 1,
				ManaUsed:            maxValue(ManaUsedBits),
			},
		},
		{
			name: "mana beyond 53 bits",
			state: BlockEndState{
				ManaUsed: new(uint256.Int).Lsh(uint256.NewInt(1), 90),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			packed, err := tc.state.Encode()
			require.NoError(t, err)

			decoded, err := DecodeBlockEndState(packed)
			require.NoError(t, err)
			require.Equal(t, tc.state.L1ToL2MsgNextIndex, decoded.L1ToL2MsgNextIndex)
			require.Equal(t, tc.state.NoteHashNextIndex, decoded.NoteHashNextIndex)
			require.Equal(t, tc.state.NullifierNextIndex, decoded.NullifierNextIndex)
			require.Equal(t, tc.state.PublicDataNextIndex, decoded.PublicDataNextIndex)

			wantMana := tc.state.ManaUsed
			if wantMana == nil {
				wantMana = uint256.NewInt(0)
			}
			require.Equal(t, wantMana.String(), decoded.ManaUsed.String())
		})
	}
}

func TestBlockEndStateRangeError(t *testing.T) {
	state := BlockEndState{L1ToL2MsgNextIndex: 1 << L1ToL2MsgTreeHeight}
	_, err := state.Encode()
	require.ErrorIs(t, err, blobcodec.ErrRange)

	state = BlockEndState{NoteHashNextIndex: 1 << NoteHashTreeHeight}
	_, err = state.Encode()
	require.ErrorIs(t, err, blobcodec.ErrRange)

	state = BlockEndState{ManaUsed: new(uint256.Int).Lsh(uint256.NewInt(1), ManaUsedBits)}
	_, err = state.Encode()
	require.ErrorIs(t, err, blobcodec.ErrRange)
}

func TestBlockEndStateNoSilentTruncation(t *testing.T) {
	// An overflowing value must fail, never wrap into a decodable element.
	state := BlockEndState{NullifierNextIndex: 1<<NullifierTreeHeight + 5}
	_, err := state.Encode()
	require.Error(t, err)
	require.False(t, errors.Is(err, blobcodec.ErrFormat))
}

func TestBlockEndStateProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("decode(encode(state)) == state", prop.ForAll(
		func(l1 uint16, note, null, pub uint64, mana uint64) bool {
			state := BlockEndState{
				L1ToL2MsgNextIndex:  uint64(l1),
				NoteHashNextIndex:   note % (1 << NoteHashTreeHeight),
				NullifierNextIndex:  null % (1 << NullifierTreeHeight),
				PublicDataNextIndex: pub % (1 << PublicDataTreeHeight),
				ManaUsed:            uint256.NewInt(mana),
			}
			packed, err := state.Encode()
			if err != nil {
				return false
			}
			decoded, err := DecodeBlockEndState(packed)
			if err != nil {
				return false
			}
			return decoded.L1ToL2MsgNextIndex == state.L1ToL2MsgNextIndex &&
				decoded.NoteHashNextIndex == state.NoteHashNextIndex &&
				decoded.NullifierNextIndex == state.NullifierNextIndex &&
				decoded.PublicDataNextIndex == state.PublicDataNextIndex &&
				decoded.ManaUsed.Eq(state.ManaUsed)
		},
		gen.UInt16(), gen.UInt64(), gen.UInt64(), gen.UInt64(), gen.UInt64(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func maxValue(bits uint) *uint256.Int {
	one := uint256.NewInt(1)
	v := new(uint256.Int).Lsh(one, bits)
	return v.Sub(v, one)
}

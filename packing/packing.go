// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package packing packs fixed-width unsigned integers into single field
// elements of the proving field (bn254 scalar field).
//
// A Layout declares an ordered list of sub-fields, most significant first,
// each with a fixed bit width. The layout is a compile-time constant of the
// wire contract: the companion circuit unpacks the same offsets, so widths
// must never be inferred at runtime.
package packing

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"github.com/consensys/blobcodec"
)

// Field is one sub-field of a Layout.
type Field struct {
	Name string
	Bits uint
}

// Layout is an ordered set of fixed-width sub-fields packed into one
// fr.Element, first field in the most significant position.
type Layout struct {
	fields []Field
	total  uint
}

// NewLayout builds a Layout from the given sub-fields. The total width must
// stay strictly below fr.Bits so that every packed value is smaller than the
// field modulus regardless of the sub-field values.
func NewLayout(fields ...Field) (Layout, error) {
	var total uint
	for _, f := range fields {
		if f.Bits == 0 || f.Bits > 256 {
			return Layout{}, fmt.Errorf("packing: sub-field %q has invalid width %d", f.Name, f.Bits)
		}
		total += f.Bits
	}
	if total >= fr.Bits {
		return Layout{}, fmt.Errorf("packing: layout needs %d bits, field capacity is %d", total, fr.Bits-1)
	}
	return Layout{fields: fields, total: total}, nil
}

// MustLayout is NewLayout for package-level layout constants.
func MustLayout(fields ...Field) Layout {
	l, err := NewLayout(fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// TotalBits returns the summed width of all sub-fields.
func (l Layout) TotalBits() uint { return l.total }

// NbFields returns the number of sub-fields.
func (l Layout) NbFields() int { return len(l.fields) }

// Pack encodes one value per sub-field into a single field element.
// A value that needs more bits than its sub-field width is a range error;
// values are never truncated.
func (l Layout) Pack(values []*uint256.Int) (fr.Element, error) {
	var res fr.Element
	if len(values) != len(l.fields) {
		return res, fmt.Errorf("packing: got %d values for %d sub-fields: %w", len(values), len(l.fields), blobcodec.ErrRange)
	}

	acc := new(big.Int)
	for i, f := range l.fields {
		v := values[i]
		if v == nil {
			v = uint256.NewInt(0)
		}
		if uint(v.BitLen()) > f.Bits {
			return res, fmt.Errorf("packing: %s=%s needs %d bits, width is %d: %w",
				f.Name, v.Dec(), v.BitLen(), f.Bits, blobcodec.ErrRange)
		}
		acc.Lsh(acc, f.Bits)
		acc.Or(acc, v.ToBig())
	}

	res.SetBigInt(acc)
	return res, nil
}

// Unpack decodes a field element produced by Pack, returning one value per
// sub-field in layout order. Bits set above the layout's total width mean the
// element is not an encoding of this layout.
func (l Layout) Unpack(e fr.Element) ([]*uint256.Int, error) {
	acc := e.BigInt(new(big.Int))
	if uint(acc.BitLen()) > l.total {
		return nil, fmt.Errorf("packing: element has %d significant bits, layout width is %d: %w",
			acc.BitLen(), l.total, blobcodec.ErrFormat)
	}

	values := make([]*uint256.Int, len(l.fields))
	mask := new(big.Int)
	for i := len(l.fields) - 1; i >= 0; i-- {
		f := l.fields[i]
		mask.Lsh(big.NewInt(1), f.Bits).Sub(mask, big.NewInt(1))
		sub := new(big.Int).And(acc, mask)
		values[i] = uint256.MustFromBig(sub)
		acc.Rsh(acc, f.Bits)
	}
	return values, nil
}

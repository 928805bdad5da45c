// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package sponge

import (
	"encoding/binary"
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"
)

// The permutation follows the Poseidon2 round structure: one external matrix
// multiplication up front, then rF/2 full rounds, rP partial rounds, rF/2
// full rounds, with an x^5 s-box. Width 7 sits outside the parameter sets
// shipped by off-the-shelf libraries, so the instance is materialized here:
// round keys and the internal diagonal are expanded from a fixed seed with
// SHA3-256 in counter mode, and the external matrix is the Cauchy matrix
// with entry (i,j) equal to 1/(i+j+Width). The companion circuit expands the
// same seed, so both sides derive identical parameters; the digest vectors
// in the tests pin the whole construction.
const parameterSeed = "blobcodec/sponge poseidon2 t=7 rF=8 rP=56 v1"

// permutation holds the expanded width-7 Poseidon2 parameters. Read-only
// after construction, safe to share across sponges.
type permutation struct {
	// roundKeys[r] has Width entries for a full round, one for a partial.
	roundKeys [][]fr.Element
	external  [Width][Width]fr.Element
	diagonal  [Width]fr.Element
}

// defaultPermutation is expanded once; every sponge shares it.
var defaultPermutation = newPermutation()

func newPermutation() *permutation {
	p := &permutation{}
	next := parameterStream(parameterSeed)

	p.roundKeys = make([][]fr.Element, fullRounds+partialRounds)
	for r := range p.roundKeys {
		if isFullRound(r) {
			p.roundKeys[r] = make([]fr.Element, Width)
		} else {
			p.roundKeys[r] = make([]fr.Element, 1)
		}
		for i := range p.roundKeys[r] {
			p.roundKeys[r][i] = next()
		}
	}
	for i := range p.diagonal {
		p.diagonal[i] = next()
	}

	var denom fr.Element
	for i := 0; i < Width; i++ {
		for j := 0; j < Width; j++ {
			denom.SetUint64(uint64(i + j + Width))
			p.external[i][j].Inverse(&denom)
		}
	}
	return p
}

func isFullRound(r int) bool {
	return r < fullRounds/2 || r >= fullRounds/2+partialRounds
}

// parameterStream derives field elements from seed||counter, counter
// big-endian and incremented per element. The derivation order is fixed:
// round keys in round order, then the internal diagonal.
func parameterStream(seed string) func() fr.Element {
	var counter uint32
	return func() fr.Element {
		h := sha3.New256()
		h.Write([]byte(seed))
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], counter)
		counter++
		h.Write(buf[:])
		var e fr.Element
		e.SetBytes(h.Sum(nil))
		return e
	}
}

// Permutation applies the permutation to state in place.
func (p *permutation) Permutation(state []fr.Element) error {
	if len(state) != Width {
		return errors.New("sponge: state width mismatch")
	}

	var buf [Width]fr.Element
	p.mulExternal(state, &buf)

	for r := 0; r < fullRounds+partialRounds; r++ {
		if isFullRound(r) {
			for i := range state {
				state[i].Add(&state[i], &p.roundKeys[r][i])
				sbox(&state[i])
			}
			p.mulExternal(state, &buf)
		} else {
			state[0].Add(&state[0], &p.roundKeys[r][0])
			sbox(&state[0])
			p.mulInternal(state)
		}
	}
	return nil
}

// sbox computes x^5 in place.
func sbox(x *fr.Element) {
	var x2, x4 fr.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(&x4, x)
}

func (p *permutation) mulExternal(state []fr.Element, buf *[Width]fr.Element) {
	var t fr.Element
	for i := 0; i < Width; i++ {
		buf[i].SetZero()
		for j := 0; j < Width; j++ {
			t.Mul(&p.external[i][j], &state[j])
			buf[i].Add(&buf[i], &t)
		}
	}
	copy(state, buf[:])
}

// mulInternal multiplies by the internal matrix J + diag(d): every output
// element is the state sum plus its own diagonal-weighted term.
func (p *permutation) mulInternal(state []fr.Element) {
	var sum, t fr.Element
	for i := range state {
		sum.Add(&sum, &state[i])
	}
	for i := range state {
		t.Mul(&p.diagonal[i], &state[i])
		state[i].Add(&sum, &t)
	}
}

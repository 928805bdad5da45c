// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package sponge implements the incremental Poseidon2 sponge hash absorbed
// over blob field elements ("SpongeBlob").
//
// The construction is mirrored inside the proving circuit: the circuit
// re-derives the digest from the same field elements without re-reading the
// blob, so the permutation width, round numbers, domain separation and
// padding here are a fixed cross-implementation contract.
package sponge

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/blobcodec"
)

// Permutation geometry, fixed to the companion circuit.
const (
	// Rate is the number of elements absorbed per permutation application.
	Rate = 4
	// Capacity is the number of hidden state elements (security margin).
	Capacity = 3
	// Width is the total permutation state width.
	Width = Rate + Capacity

	fullRounds    = 8
	partialRounds = 56

	// MaxFields caps the total number of elements one sponge instance may
	// absorb: three full blobs, the per-block maximum of the DA layout.
	MaxFields = 3 * 4096
)

type phase uint8

const (
	phaseInit phase = iota
	phaseAbsorbing
	phaseSqueezed
)

// SpongeBlob is the streaming hasher state. It is a value meant to be owned
// by a single encoding flow; it is not safe for concurrent use.
//
// Lifecycle: New -> Absorb* -> Squeeze. Squeeze is terminal: further Absorb
// calls are a protocol violation, and repeated Squeeze calls return the same
// digest.
type SpongeBlob struct {
	perm  *permutation
	state [Width]fr.Element
	cache []fr.Element

	absorbed int
	expected int
	ivMixed  bool
	phase    phase
	digest   fr.Element
}

// New returns a sponge provisioned for exactly expectedFields elements.
// The expected count seeds the one-time domain separation tag, so two sponges
// provisioned differently disagree on every digest.
func New(expectedFields int) (*SpongeBlob, error) {
	if expectedFields < 0 || expectedFields > MaxFields {
		return nil, fmt.Errorf("sponge: expected %d fields, limit is %d: %w", expectedFields, MaxFields, blobcodec.ErrCapacity)
	}
	return &SpongeBlob{
		perm:     defaultPermutation,
		cache:    make([]fr.Element, 0, Rate),
		expected: expectedFields,
	}, nil
}

// Absorb feeds elements into the sponge. Whenever a full rate-sized chunk is
// buffered the permutation is applied once; a trailing partial chunk stays
// buffered for the next Absorb or for Squeeze.
func (s *SpongeBlob) Absorb(elems []fr.Element) error {
	if s.phase == phaseSqueezed {
		return fmt.Errorf("sponge: absorb after squeeze: %w", blobcodec.ErrProtocolState)
	}
	if s.absorbed+len(elems) > s.expected {
		return fmt.Errorf("sponge: absorbing %d elements past the provisioned %d: %w",
			s.absorbed+len(elems)-s.expected, s.expected, blobcodec.ErrCapacity)
	}
	s.phase = phaseAbsorbing

	for i := range elems {
		s.cache = append(s.cache, elems[i])
		if len(s.cache) == Rate {
			if err := s.permute(); err != nil {
				return err
			}
		}
	}
	s.absorbed += len(elems)
	return nil
}

// Squeeze pads the buffered partial chunk with zeroes, applies the
// permutation one final time and returns the first state element as the
// digest. The sponge is read-only afterwards.
func (s *SpongeBlob) Squeeze() (fr.Element, error) {
	if s.phase == phaseSqueezed {
		return s.digest, nil
	}
	// Zero padding is additive identity; the final permutation still runs so
	// that the domain tag is mixed in even for an empty input.
	if err := s.permute(); err != nil {
		return fr.Element{}, err
	}
	s.digest = s.state[0]
	s.phase = phaseSqueezed
	return s.digest, nil
}

// Absorbed returns the number of elements absorbed so far.
func (s *SpongeBlob) Absorbed() int { return s.absorbed }

// Expected returns the element count the sponge was provisioned for.
func (s *SpongeBlob) Expected() int { return s.expected }

// permute folds the buffered chunk into the rate portion of the state and
// applies the Poseidon2 permutation. The domain separation tag
// (expectedFields << 64) is added into the first capacity element exactly
// once, immediately before the first application.
func (s *SpongeBlob) permute() error {
	if !s.ivMixed {
		var iv fr.Element
		iv.SetBigInt(new(big.Int).Lsh(big.NewInt(int64(s.expected)), 64))
		s.state[Rate].Add(&s.state[Rate], &iv)
		s.ivMixed = true
	}
	for i := range s.cache {
		s.state[i].Add(&s.state[i], &s.cache[i])
	}
	s.cache = s.cache[:0]
	return s.perm.Permutation(s.state[:])
}

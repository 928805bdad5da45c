// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package blob

import (
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/blobcodec"
)

const (
	// CommitmentSize is the byte length of a compressed BLS12-381 G1 point.
	CommitmentSize = 48

	// commitmentSplit is the byte boundary at which a commitment is cut into
	// two proving-field elements: the first 31 bytes always fit below the
	// bn254 modulus, the remaining 17 bytes trivially so.
	commitmentSplit = 31
)

// Commitment is the KZG commitment to one blob's polynomial, produced by the
// commitment subsystem and only converted or validated here.
type Commitment [CommitmentSize]byte

func (c Commitment) String() string {
	return "0x" + hex.EncodeToString(c[:])
}

// ToFields splits the commitment at the 31|17 byte boundary into two field
// elements, each interpreted big-endian and left-padded with zero bytes to
// the field's byte width. The circuit consumes the commitment in this form.
func (c Commitment) ToFields() [2]fr.Element {
	var hi, lo fr.Element
	hi.SetBytes(c[:commitmentSplit])
	lo.SetBytes(c[commitmentSplit:])
	return [2]fr.Element{hi, lo}
}

// CommitmentFromFields is the exact inverse of ToFields. Elements whose
// padding bytes are not zero cannot originate from a commitment split and
// are rejected.
func CommitmentFromFields(fields [2]fr.Element) (Commitment, error) {
	var c Commitment
	hi := fields[0].Bytes()
	lo := fields[1].Bytes()

	if hi[0] != 0 {
		return c, fmt.Errorf("blob: first commitment field exceeds %d bytes: %w", commitmentSplit, blobcodec.ErrFormat)
	}
	for _, v := range lo[:fr.Bytes-(CommitmentSize-commitmentSplit)] {
		if v != 0 {
			return c, fmt.Errorf("blob: second commitment field exceeds %d bytes: %w", CommitmentSize-commitmentSplit, blobcodec.ErrFormat)
		}
	}

	copy(c[:commitmentSplit], hi[fr.Bytes-commitmentSplit:])
	copy(c[commitmentSplit:], lo[fr.Bytes-(CommitmentSize-commitmentSplit):])
	return c, nil
}

// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package batch

import (
	"crypto/sha256"

	frbn "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"

	"github.com/consensys/blobcodec/blob"
)

// DeriveChallenges computes the round's evaluation point z and batching
// scalar gamma from a Fiat-Shamir transcript bound to every blob's sponge
// digest and commitment, in blob order. Both sides of the proof re-derive
// the same challenges from the same public data.
func DeriveChallenges(digests []frbn.Element, commitments []blob.Commitment) (z, gamma fr.Element, err error) {
	if len(digests) != len(commitments) {
		return z, gamma, ErrInvalidNbDigests
	}

	fs := fiatshamir.NewTranscript(sha256.New(), "z", "gamma")
	for i := range digests {
		db := digests[i].Bytes()
		if err = fs.Bind("z", db[:]); err != nil {
			return z, gamma, err
		}
		if err = fs.Bind("z", commitments[i][:]); err != nil {
			return z, gamma, err
		}
		if err = fs.Bind("gamma", db[:]); err != nil {
			return z, gamma, err
		}
		if err = fs.Bind("gamma", commitments[i][:]); err != nil {
			return z, gamma, err
		}
	}

	zBytes, err := fs.ComputeChallenge("z")
	if err != nil {
		return z, gamma, err
	}
	z.SetBytes(zBytes)

	gammaBytes, err := fs.ComputeChallenge("gamma")
	if err != nil {
		return z, gamma, err
	}
	gamma.SetBytes(gammaBytes)

	return z, gamma, nil
}

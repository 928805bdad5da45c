// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package batch folds many blobs' KZG commitments and openings into a single
// aggregated opening claim.
//
// All blobs of a batching round are opened at the same evaluation point z;
// blob i is weighted by gamma^i when folding commitments, quotient proofs and
// claimed values. One pairing check then stands in for N opening proofs.
// Folding is order-dependent: the challenge power is tied to blob position,
// so blobs must be accumulated in their epoch order.
package batch

import (
	"errors"
	"fmt"
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"

	"github.com/consensys/blobcodec"
	"github.com/consensys/blobcodec/blob"
	"github.com/consensys/blobcodec/logger"
)

var (
	ErrInvalidNbDigests = errors.New("batch: number of digests does not match number of commitments")
)

// FinalBlobBatchingChallenges are the two challenges fixed by Finalize and
// consumed by the proof-submission path: the shared evaluation point z and
// the batching scalar gamma.
type FinalBlobBatchingChallenges struct {
	Z     fr.Element
	Gamma fr.Element
}

// BlobOpening is one blob's opening data at the round's evaluation point:
// the claimed value y = p(z) and the compressed quotient proof point.
type BlobOpening struct {
	ClaimedValue fr.Element
	Proof        [blob.CommitmentSize]byte
}

type accPhase uint8

const (
	accInit accPhase = iota
	accAccumulating
	accFinalized
)

// Accumulator is the running batching state of one round (one epoch). Create
// it fresh per round, thread it through Accumulate in blob order, consume it
// once with Finalize. Not safe for concurrent use.
type Accumulator struct {
	z     fr.Element
	gamma fr.Element

	gammaPow         fr.Element // gamma^i for the next blob
	count            int
	foldedCommitment curve.G1Jac // sum gamma^i * C_i
	foldedProof      curve.G1Jac // sum gamma^i * Q_i
	foldedValue      fr.Element  // sum gamma^i * y_i
	phase            accPhase
}

// NewAccumulator starts a batching round with the given seed challenges.
func NewAccumulator(z, gamma fr.Element) *Accumulator {
	a := &Accumulator{z: z, gamma: gamma}
	a.gammaPow.SetOne()
	return a
}

// Z returns the round's shared evaluation point.
func (a *Accumulator) Z() fr.Element { return a.z }

// Count returns the number of blobs folded so far.
func (a *Accumulator) Count() int { return a.count }

// Accumulate folds one blob's commitment and opening into the running state
// with the current gamma power, then advances the power.
func (a *Accumulator) Accumulate(commitment blob.Commitment, opening BlobOpening) error {
	if a.phase == accFinalized {
		return fmt.Errorf("batch: accumulate after finalize: %w", blobcodec.ErrProtocolState)
	}

	var c, q curve.G1Affine
	if _, err := c.SetBytes(commitment[:]); err != nil {
		return fmt.Errorf("batch: blob %d commitment is not a valid G1 point: %w", a.count, blobcodec.ErrFormat)
	}
	if _, err := q.SetBytes(opening.Proof[:]); err != nil {
		return fmt.Errorf("batch: blob %d opening proof is not a valid G1 point: %w", a.count, blobcodec.ErrFormat)
	}

	var s big.Int
	a.gammaPow.BigInt(&s)

	var tmp curve.G1Jac
	tmp.FromAffine(&c)
	tmp.ScalarMultiplication(&tmp, &s)
	a.foldedCommitment.AddAssign(&tmp)

	tmp.FromAffine(&q)
	tmp.ScalarMultiplication(&tmp, &s)
	a.foldedProof.AddAssign(&tmp)

	var weighted fr.Element
	weighted.Mul(&a.gammaPow, &opening.ClaimedValue)
	a.foldedValue.Add(&a.foldedValue, &weighted)

	a.gammaPow.Mul(&a.gammaPow, &a.gamma)
	a.count++
	a.phase = accAccumulating
	return nil
}

// Finalize fixes the round's challenges and closes the accumulator. No
// further Accumulate call is valid afterwards.
func (a *Accumulator) Finalize() (FinalBlobBatchingChallenges, error) {
	if a.phase == accFinalized {
		return FinalBlobBatchingChallenges{}, fmt.Errorf("batch: already finalized: %w", blobcodec.ErrProtocolState)
	}
	a.phase = accFinalized

	log := logger.Logger().With().Str("component", "batch").Logger()
	log.Debug().Int("blobs", a.count).Msg("batching round finalized")

	return FinalBlobBatchingChallenges{Z: a.z, Gamma: a.gamma}, nil
}

// FoldedClaim returns the aggregated commitment and opening proof. Only
// valid once the round is finalized.
func (a *Accumulator) FoldedClaim() (kzg.Digest, kzg.OpeningProof, error) {
	if a.phase != accFinalized {
		return kzg.Digest{}, kzg.OpeningProof{}, fmt.Errorf("batch: folded claim before finalize: %w", blobcodec.ErrProtocolState)
	}

	var digest kzg.Digest
	digest.FromJacobian(&a.foldedCommitment)

	var proof kzg.OpeningProof
	proof.H.FromJacobian(&a.foldedProof)
	proof.ClaimedValue = a.foldedValue
	return digest, proof, nil
}

// Verify checks the aggregated opening claim with a single pairing check.
func (a *Accumulator) Verify(vk kzg.VerifyingKey) error {
	digest, proof, err := a.FoldedClaim()
	if err != nil {
		return err
	}
	return kzg.Verify(&digest, &proof, a.z, vk)
}

// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package batch

import (
	"fmt"
	"io"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"

	frbn "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/blobcodec"
	"github.com/consensys/blobcodec/blob"
)

// ProofInput is the self-contained object handed to the proof-submission
// path: the final challenges, the folded claim and the per-blob public
// inputs it was derived from.
type ProofInput struct {
	Version string `cbor:"version"`

	Z     [32]byte `cbor:"z"`
	Gamma [32]byte `cbor:"gamma"`

	FoldedCommitment [blob.CommitmentSize]byte `cbor:"foldedCommitment"`
	FoldedProof      [blob.CommitmentSize]byte `cbor:"foldedProof"`
	FoldedValue      [32]byte                  `cbor:"foldedValue"`

	BlobDigests     [][32]byte                  `cbor:"blobDigests"`
	BlobCommitments [][blob.CommitmentSize]byte `cbor:"blobCommitments"`
}

// ProofInput assembles the submission object from a finalized accumulator
// and the per-blob public data that seeded its challenges.
func (a *Accumulator) ProofInput(digests []frbn.Element, commitments []blob.Commitment) (*ProofInput, error) {
	if len(digests) != len(commitments) {
		return nil, ErrInvalidNbDigests
	}
	digest, proof, err := a.FoldedClaim()
	if err != nil {
		return nil, err
	}

	p := &ProofInput{
		Version:          blobcodec.Version.String(),
		Z:                a.z.Bytes(),
		Gamma:            a.gamma.Bytes(),
		FoldedCommitment: digest.Bytes(),
		FoldedProof:      proof.H.Bytes(),
		FoldedValue:      proof.ClaimedValue.Bytes(),
		BlobDigests:      make([][32]byte, len(digests)),
		BlobCommitments:  make([][blob.CommitmentSize]byte, len(commitments)),
	}
	for i := range digests {
		p.BlobDigests[i] = digests[i].Bytes()
		p.BlobCommitments[i] = commitments[i]
	}
	return p, nil
}

// WriteTo serializes the proof input with cbor.
func (p *ProofInput) WriteTo(w io.Writer) (int64, error) {
	data, err := cbor.Marshal(p)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadProofInput deserializes a proof input and rejects artifacts written by
// an incompatible library version.
func ReadProofInput(r io.Reader) (*ProofInput, error) {
	var p ProofInput
	if err := cbor.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("batch: decode proof input: %w", blobcodec.ErrFormat)
	}
	v, err := semver.Parse(p.Version)
	if err != nil {
		return nil, fmt.Errorf("batch: proof input version %q: %w", p.Version, blobcodec.ErrFormat)
	}
	if v.Major != blobcodec.Version.Major {
		return nil, fmt.Errorf("batch: proof input written by v%s, this library is v%s: %w",
			v.String(), blobcodec.Version.String(), blobcodec.ErrFormat)
	}
	return &p, nil
}

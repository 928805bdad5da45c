// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package blob

import (
	"fmt"

	goethkzg "github.com/crate-crypto/go-eth-kzg"

	frbls "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Committer wraps a go-eth-kzg context initialized with the Ethereum KZG
// ceremony setup. It produces the per-blob commitments and opening data the
// batched accumulator folds. Safe for concurrent use; construction is slow
// (the SRS points are processed once).
type Committer struct {
	ctx *goethkzg.Context
}

// NewCommitter initializes a committer with the embedded ceremony SRS.
func NewCommitter() (*Committer, error) {
	ctx, err := goethkzg.NewContext4096Secure()
	if err != nil {
		return nil, fmt.Errorf("blob: initialize kzg context: %w", err)
	}
	return &Committer{ctx: ctx}, nil
}

// Commit computes the KZG commitment to the blob's polynomial.
func (c *Committer) Commit(b *Blob) (Commitment, error) {
	comm, err := c.ctx.BlobToKZGCommitment(b.Polynomial(), 0)
	if err != nil {
		return Commitment{}, fmt.Errorf("blob: commit: %w", err)
	}
	return Commitment(comm), nil
}

// OpenAt evaluates the blob's polynomial at the challenge point z and returns
// the quotient proof and the claimed value p(z). z and the returned value are
// bls12-381 scalars, the field of the commitment scheme.
func (c *Committer) OpenAt(b *Blob, z frbls.Element) (proof [CommitmentSize]byte, value frbls.Element, err error) {
	zBytes := z.Bytes()
	kzgProof, valueBytes, err := c.ctx.ComputeKZGProof(b.Polynomial(), goethkzg.Scalar(zBytes), 0)
	if err != nil {
		return proof, value, fmt.Errorf("blob: open at %s: %w", z.String(), err)
	}
	value.SetBytes(valueBytes[:])
	return [CommitmentSize]byte(kzgProof), value, nil
}

// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package blob assembles checkpoint data into blob-sized field arrays and
// converts between KZG commitments and their in-circuit field representation.
//
// A Blob is at most FieldsPerBlob elements of the bn254 scalar field. Every
// bn254 scalar is canonical in the bls12-381 scalar field, so a blob embeds
// directly into the polynomial committed to on the data-availability layer.
package blob

import (
	"fmt"

	goethkzg "github.com/crate-crypto/go-eth-kzg"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/blobcodec"
	"github.com/consensys/blobcodec/sponge"
)

const (
	// FieldsPerBlob is the blob capacity in field elements (EIP-4844).
	FieldsPerBlob = 4096

	// MaxBlobsPerCheckpoint bounds how many blobs one checkpoint may span.
	// Together with FieldsPerBlob it matches sponge.MaxFields.
	MaxBlobsPerCheckpoint = 3

	bytesPerFieldElement = 32
)

// Blob is one data-availability payload: an ordered field array and the
// sponge digest the circuit verifies against it.
type Blob struct {
	fields []fr.Element
	digest fr.Element
}

// New builds a blob from at most FieldsPerBlob elements and computes its
// sponge digest.
func New(fields []fr.Element) (*Blob, error) {
	if len(fields) > FieldsPerBlob {
		return nil, fmt.Errorf("blob: %d fields, capacity is %d: %w", len(fields), FieldsPerBlob, blobcodec.ErrCapacity)
	}
	sp, err := sponge.New(len(fields))
	if err != nil {
		return nil, err
	}
	if err := sp.Absorb(fields); err != nil {
		return nil, err
	}
	digest, err := sp.Squeeze()
	if err != nil {
		return nil, err
	}
	b := &Blob{
		fields: append([]fr.Element(nil), fields...),
		digest: digest,
	}
	return b, nil
}

// Fields returns a copy of the blob's field array.
func (b *Blob) Fields() []fr.Element {
	return append([]fr.Element(nil), b.fields...)
}

// Len returns the number of occupied field slots.
func (b *Blob) Len() int { return len(b.fields) }

// Digest returns the sponge digest over the blob's fields. It is the public
// input binding the blob to the proof.
func (b *Blob) Digest() fr.Element { return b.digest }

// Polynomial lays the blob out as the 4096-slot polynomial committed to on
// the DA layer: each element big-endian in its own 32-byte slot, unused
// slots zero.
func (b *Blob) Polynomial() *goethkzg.Blob {
	var poly goethkzg.Blob
	for i := range b.fields {
		eb := b.fields[i].Bytes()
		copy(poly[i*bytesPerFieldElement:], eb[:])
	}
	return &poly
}

// SplitIntoBlobs chunks a checkpoint field sequence into consecutive blobs,
// each carrying its own sponge digest.
func SplitIntoBlobs(fields []fr.Element) ([]*Blob, error) {
	if len(fields) > MaxBlobsPerCheckpoint*FieldsPerBlob {
		return nil, fmt.Errorf("blob: checkpoint needs %d fields, %d blobs hold %d: %w",
			len(fields), MaxBlobsPerCheckpoint, MaxBlobsPerCheckpoint*FieldsPerBlob, blobcodec.ErrCapacity)
	}

	nbBlobs := (len(fields) + FieldsPerBlob - 1) / FieldsPerBlob
	blobs := make([]*Blob, 0, nbBlobs)
	for start := 0; start < len(fields); start += FieldsPerBlob {
		end := min(start+FieldsPerBlob, len(fields))
		b, err := New(fields[start:end])
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

// MakeBlobs is SplitIntoBlobs with per-blob digests computed concurrently.
// Each blob owns its sponge instance; the output order is the deterministic
// chunk order regardless of scheduling.
func MakeBlobs(fields []fr.Element) ([]*Blob, error) {
	if len(fields) > MaxBlobsPerCheckpoint*FieldsPerBlob {
		return nil, fmt.Errorf("blob: checkpoint needs %d fields, %d blobs hold %d: %w",
			len(fields), MaxBlobsPerCheckpoint, MaxBlobsPerCheckpoint*FieldsPerBlob, blobcodec.ErrCapacity)
	}

	nbBlobs := (len(fields) + FieldsPerBlob - 1) / FieldsPerBlob
	blobs := make([]*Blob, nbBlobs)
	var g errgroup.Group
	for i := 0; i < nbBlobs; i++ {
		start := i * FieldsPerBlob
		end := min(start+FieldsPerBlob, len(fields))
		g.Go(func() error {
			b, err := New(fields[start:end])
			if err != nil {
				return err
			}
			blobs[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blobs, nil
}

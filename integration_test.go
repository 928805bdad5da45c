// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package blobcodec_test

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/consensys/blobcodec/batch"
	"github.com/consensys/blobcodec/blob"
	"github.com/consensys/blobcodec/packing"
)

// Exercises the full pipeline: checkpoint encoding, blob assembly, ceremony
// commitments, challenge derivation, batched folding and artifact round trip.
func TestCheckpointToProofInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ceremony SRS setup in short mode")
	}

	blocks := []blob.Block{
		{
			Number:    42,
			Timestamp: 1_700_000_000,
			EndState: packing.BlockEndState{
				L1ToL2MsgNextIndex:  32,
				NoteHashNextIndex:   1 << 21,
				NullifierNextIndex:  1 << 14,
				PublicDataNextIndex: 1000,
				ManaUsed:            uint256.NewInt(30_000_000),
			},
			Txs: []blob.TxEffects{
				{RevertCode: 0, Effects: fieldRange(100, 600)},
				{RevertCode: 2, Effects: fieldRange(700, 710)},
			},
		},
		{
			Number:    43,
			Timestamp: 1_700_000_012,
			Txs: []blob.TxEffects{
				{RevertCode: 0, Effects: fieldRange(800, 4800)},
			},
		},
	}

	fields, err := blob.EncodeCheckpoint(blocks)
	require.NoError(t, err)

	blobs, err := blob.MakeBlobs(fields)
	require.NoError(t, err)
	require.Len(t, blobs, 2)

	// The blob split is transparent to decoding.
	var recombined []fr.Element
	for _, b := range blobs {
		recombined = append(recombined, b.Fields()...)
	}
	decoded, err := blob.DecodeCheckpoint(recombined)
	require.NoError(t, err)
	require.Len(t, decoded, len(blocks))
	require.Equal(t, blocks[0].Number, decoded[0].Number)
	require.Equal(t, blocks[1].Timestamp, decoded[1].Timestamp)
	require.Len(t, decoded[1].Txs[0].Effects, 4000)

	committer, err := blob.NewCommitter()
	require.NoError(t, err)

	digests := make([]fr.Element, len(blobs))
	commitments := make([]blob.Commitment, len(blobs))
	for i, b := range blobs {
		digests[i] = b.Digest()
		commitments[i], err = committer.Commit(b)
		require.NoError(t, err)

		// Each commitment round-trips through its field representation.
		back, err := blob.CommitmentFromFields(commitments[i].ToFields())
		require.NoError(t, err)
		require.Equal(t, commitments[i], back)
	}

	z, gamma, err := batch.DeriveChallenges(digests, commitments)
	require.NoError(t, err)

	acc := batch.NewAccumulator(z, gamma)
	for i, b := range blobs {
		proof, value, err := committer.OpenAt(b, z)
		require.NoError(t, err)
		require.NoError(t, acc.Accumulate(commitments[i], batch.BlobOpening{
			ClaimedValue: value,
			Proof:        proof,
		}))
	}

	final, err := acc.Finalize()
	require.NoError(t, err)
	require.True(t, final.Z.Equal(&z))
	require.True(t, final.Gamma.Equal(&gamma))

	input, err := acc.ProofInput(digests, commitments)
	require.NoError(t, err)
	require.Equal(t, z.Bytes(), input.Z)
	require.Len(t, input.BlobDigests, len(blobs))

	var buf bytes.Buffer
	_, err = input.WriteTo(&buf)
	require.NoError(t, err)
	back, err := batch.ReadProofInput(&buf)
	require.NoError(t, err)
	require.Equal(t, input, back)
}

func fieldRange(from, to uint64) []fr.Element {
	res := make([]fr.Element, 0, to-from)
	var e fr.Element
	for v := from; v < to; v++ {
		e.SetUint64(v)
		res = append(res, e)
	}
	return res
}

// Package blobcodec implements the blob encoding and batched commitment layer of a rollup node.
//
// It turns rollup block and checkpoint state into arrays of finite field elements sized to
// fit data-availability blobs, computes an incremental Poseidon2 sponge hash over that data
// that the companion proving circuit re-derives without re-reading the blob, and folds the
// per-blob KZG commitments and openings of an epoch into a single batched opening claim.
//
// The layer is organized leaf-first:
//   - packing: fixed-layout bit packing of per-block metadata into field elements
//   - sponge: the incremental Poseidon2 sponge mirrored bit-for-bit in-circuit
//   - blob: checkpoint (de)serialization into blob field arrays and commitment conversion
//   - batch: the batched blob accumulator folding many openings into one proof claim
//
// All operations are synchronous, in-memory transforms. Every state-carrying value
// (sponge, accumulator) is owned by its creator and is not safe for concurrent use;
// independent instances may be used concurrently.
package blobcodec

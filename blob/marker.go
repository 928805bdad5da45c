// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package blob

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/blobcodec"
)

// The checkpoint end marker reserves bit 253 (top byte 0x20 of the canonical
// 32-byte encoding) as its tag. Every packed metadata layout in this module
// is at most 232 bits wide, so no block or tx prefix can ever carry the tag;
// raw tx effect elements are only ever read at effect positions, never where
// a marker is structurally possible. 0x20 stays below the bn254 modulus
// (top byte 0x30).
const (
	endMarkerTagByte = 0x20

	// EndMarkerCountBits is the width of the payload count in the marker.
	EndMarkerCountBits = 32
)

// EncodeCheckpointEndMarker builds the terminal sentinel recording the number
// of payload field elements preceding it.
func EncodeCheckpointEndMarker(count uint64) (fr.Element, error) {
	var e fr.Element
	if count >= 1<<EndMarkerCountBits {
		return e, fmt.Errorf("blob: end marker count %d exceeds %d bits: %w", count, EndMarkerCountBits, blobcodec.ErrRange)
	}
	var buf [fr.Bytes]byte
	buf[0] = endMarkerTagByte
	binary.BigEndian.PutUint32(buf[fr.Bytes-4:], uint32(count))
	e.SetBytes(buf[:])
	return e, nil
}

// IsCheckpointEndMarker reports whether e carries the marker tag with the
// reserved middle bytes clear. It is total over all field elements.
func IsCheckpointEndMarker(e fr.Element) bool {
	b := e.Bytes()
	if b[0] != endMarkerTagByte {
		return false
	}
	for _, v := range b[1 : fr.Bytes-4] {
		if v != 0 {
			return false
		}
	}
	return true
}

// DecodeCheckpointEndMarker extracts the payload count from a marker element.
func DecodeCheckpointEndMarker(e fr.Element) (uint64, error) {
	if !IsCheckpointEndMarker(e) {
		return 0, fmt.Errorf("blob: element is not a checkpoint end marker: %w", blobcodec.ErrFormat)
	}
	b := e.Bytes()
	return uint64(binary.BigEndian.Uint32(b[fr.Bytes-4:])), nil
}

// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package blobcodec

import "errors"

// Error kinds shared by all blobcodec packages. Subpackages wrap these with
// context so callers can dispatch on the kind with errors.Is.
//
// ErrRange and ErrProtocolState indicate caller bugs; ErrFormat indicates
// corrupted or foreign data and should be surfaced to the operator;
// ErrCapacity indicates input that must be re-chunked by the caller.
// None are retryable without reconstructing the input.
var (
	// ErrRange reports a value that does not fit the bit width declared for it.
	ErrRange = errors.New("value exceeds declared bit width")

	// ErrCapacity reports an input exceeding a hard element-count limit.
	ErrCapacity = errors.New("maximum element count exceeded")

	// ErrFormat reports a byte or field sequence that is not a valid encoding.
	ErrFormat = errors.New("malformed encoding")

	// ErrProtocolState reports an operation invoked on a terminal-state object,
	// such as absorbing into a squeezed sponge.
	ErrProtocolState = errors.New("invalid state transition")
)

// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package blobcodec

import "github.com/blang/semver/v4"

// Version of the library and of every serialized artifact it produces.
// Artifacts written by a different major version are rejected at read time.
var Version = semver.MustParse("0.2.0")

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package zstdcore implements streaming decompression of the Zstandard
// (zstd) frame format, RFC 8478.
package zstdcore

import "github.com/cosnicolaou/zstdcore/internal/zstd"

// Error kinds surfaced by the decoder. Each is fatal to the frame that
// produced it: once a block fails, the frame's block decoder stays in a
// Failed state and later DecodeBlocks calls on the same FrameDecoder also
// fail. Those calls do not repeat the original error (they return a
// MalformedHeaderError, or a truncation error at end of input), and they
// still read a block header's bytes from the source before failing.
type (
	InputTruncatedError       = zstd.InputTruncatedError
	MalformedHeaderError      = zstd.MalformedHeaderError
	EntropyBuildError         = zstd.EntropyBuildError
	BitstreamCorruptionError  = zstd.BitstreamCorruptionError
	OffsetOutOfRangeError     = zstd.OffsetOutOfRangeError
	LiteralCountMismatchError = zstd.LiteralCountMismatchError
	ChecksumMismatchError     = zstd.ChecksumMismatchError
)

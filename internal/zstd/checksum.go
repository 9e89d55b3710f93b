// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

import "github.com/cespare/xxhash/v2"

// ContentChecksum accumulates xxhash64 over every byte emitted by a
// frame, for verification against the frame's optional 4-byte trailer
// (the low 32 bits of the 64-bit digest, per RFC 8478 §3.1.1).
type ContentChecksum struct {
	digest xxhash.Digest
}

// NewContentChecksum returns a checksum accumulator ready to absorb
// output bytes from the start of a frame.
func NewContentChecksum() *ContentChecksum {
	c := &ContentChecksum{}
	c.digest.Reset()
	return c
}

// Write feeds decompressed output bytes into the running digest.
func (c *ContentChecksum) Write(p []byte) {
	c.digest.Write(p) //nolint:errcheck // xxhash.Digest.Write never errors
}

// Verify compares the running digest's low 32 bits against want,
// returning a ChecksumMismatchError on mismatch.
func (c *ContentChecksum) Verify(want uint32) error {
	if got := uint32(c.digest.Sum64()); got != want {
		return &ChecksumMismatchError{Got: got, Want: want}
	}
	return nil
}

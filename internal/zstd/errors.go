// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

import "fmt"

// InputTruncatedError is returned when the underlying source returns fewer
// bytes than a parse step requires.
type InputTruncatedError struct {
	Component string
	Wanted    int
	Got       int
}

func (e *InputTruncatedError) Error() string {
	return fmt.Sprintf("%s: input truncated, wanted %d bytes, got %d", e.Component, e.Wanted, e.Got)
}

// MalformedHeaderError is returned when a block, literals, or sequences
// header violates its schema.
type MalformedHeaderError struct {
	Component string
	Reason    string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("%s: malformed header: %s", e.Component, e.Reason)
}

// EntropyBuildError is returned when FSE or Huffman table construction
// fails.
type EntropyBuildError struct {
	Component string
	Reason    string
}

func (e *EntropyBuildError) Error() string {
	return fmt.Sprintf("%s: entropy table build failed: %s", e.Component, e.Reason)
}

// BitstreamCorruptionError is returned when a reverse bitstream fails to
// terminate correctly (missing padding marker, too much padding, leftover
// bits, state underflow).
type BitstreamCorruptionError struct {
	Component string
	Reason    string
}

func (e *BitstreamCorruptionError) Error() string {
	return fmt.Sprintf("%s: bitstream corruption: %s", e.Component, e.Reason)
}

// OffsetOutOfRangeError is returned when a resolved back-reference offset
// is zero or reaches outside the window/output produced so far.
type OffsetOutOfRangeError struct {
	Offset   int
	Position int
	Window   int
}

func (e *OffsetOutOfRangeError) Error() string {
	return fmt.Sprintf("sequence executor: offset %d out of range (position %d, window %d)", e.Offset, e.Position, e.Window)
}

// LiteralCountMismatchError is returned when decoded literals length does
// not equal the regenerated size announced by the literals header.
type LiteralCountMismatchError struct {
	Got, Want int
}

func (e *LiteralCountMismatchError) Error() string {
	return fmt.Sprintf("literals section: decoded %d bytes, header declared %d", e.Got, e.Want)
}

// ChecksumMismatchError is returned when content checksum verification is
// enabled and the computed checksum does not match the frame trailer.
type ChecksumMismatchError struct {
	Got, Want uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("content checksum mismatch: got 0x%08x, want 0x%08x", e.Got, e.Want)
}

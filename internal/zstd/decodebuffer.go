// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

// DecodeBuffer is the sliding-window output buffer shared by every block
// of a frame: literals and back-reference matches are appended to it,
// and the caller drains finished bytes from the front while the buffer
// retains enough trailing history to resolve future back-references.
//
// Grounded on the teacher's internal/bzip2.reader readFromBlock
// RLE-replay loop for the "emit repeated bytes one at a time so
// self-referential repeats replicate correctly" technique, generalized
// from fixed-byte RLE to arbitrary-offset back-reference copies.
type DecodeBuffer struct {
	data       []byte // retained suffix of the logical stream
	base       int    // absolute logical offset of data[0]
	total      int    // absolute logical length of the stream so far
	drained    int    // absolute logical position already handed to the caller
	windowSize int
}

// NewDecodeBuffer returns a buffer that retains windowSize trailing
// bytes for back-reference resolution.
func NewDecodeBuffer(windowSize int) *DecodeBuffer {
	return &DecodeBuffer{windowSize: windowSize}
}

// Reset reconfigures the buffer for a new frame, reusing its backing
// array the way the teacher's scratch buffers are resized rather than
// reallocated between blocks.
func (b *DecodeBuffer) Reset(windowSize int) {
	b.data = b.data[:0]
	b.base = 0
	b.total = 0
	b.drained = 0
	b.windowSize = windowSize
}

// Len returns the total number of bytes produced so far (drained or
// not).
func (b *DecodeBuffer) Len() int {
	return b.total
}

// PushLiterals appends raw bytes verbatim.
func (b *DecodeBuffer) PushLiterals(p []byte) {
	b.data = append(b.data, p...)
	b.total += len(p)
}

// RepeatByte appends n copies of v, as an RLE block's content.
func (b *DecodeBuffer) RepeatByte(v byte, n int) {
	for i := 0; i < n; i++ {
		b.data = append(b.data, v)
	}
	b.total += n
}

// CopyMatch appends length bytes copied from offset bytes behind the
// current end of the stream, one byte at a time, so that offsets smaller
// than length (a back-reference overlapping itself) replicate the
// repeating pattern rather than reading stale data.
func (b *DecodeBuffer) CopyMatch(offset, length int) error {
	if offset <= 0 || offset > b.total {
		return &OffsetOutOfRangeError{Offset: offset, Position: b.total, Window: b.windowSize}
	}
	start := b.total - offset - b.base
	if start < 0 {
		return &OffsetOutOfRangeError{Offset: offset, Position: b.total, Window: b.windowSize}
	}
	for i := 0; i < length; i++ {
		b.data = append(b.data, b.data[start+i])
	}
	b.total += length
	return nil
}

// CanDrainToWindow reports how many bytes can be handed to the caller
// while still retaining windowSize trailing bytes for later
// back-references.
func (b *DecodeBuffer) CanDrainToWindow() int {
	avail := b.total - b.windowSize - b.drained
	if avail < 0 {
		return 0
	}
	return avail
}

// DrainToWindow copies up to len(p) drainable bytes (CanDrainToWindow)
// into p and returns the count written.
func (b *DecodeBuffer) DrainToWindow(p []byte) int {
	n := b.CanDrainToWindow()
	if n > len(p) {
		n = len(p)
	}
	copy(p, b.data[b.drained-b.base:b.drained-b.base+n])
	b.drained += n
	b.compact()
	return n
}

// PeekSince copies every byte produced after absolute position since
// into p, without draining them. since must be >= b.base (i.e. still
// retained); callers that need to observe output as it's produced, such
// as a running content checksum, must call this before compact() has a
// chance to discard it.
func (b *DecodeBuffer) PeekSince(since int, p []byte) int {
	n := b.total - since
	if n > len(p) {
		n = len(p)
	}
	if n <= 0 {
		return 0
	}
	copy(p, b.data[since-b.base:since-b.base+n])
	return n
}

// CanDrainAll reports every undrained byte, ignoring window retention —
// valid once the frame is finished and no further back-references are
// possible.
func (b *DecodeBuffer) CanDrainAll() int {
	return b.total - b.drained
}

// DrainAll copies up to len(p) undrained bytes into p, ignoring window
// retention.
func (b *DecodeBuffer) DrainAll(p []byte) int {
	n := b.CanDrainAll()
	if n > len(p) {
		n = len(p)
	}
	copy(p, b.data[b.drained-b.base:b.drained-b.base+n])
	b.drained += n
	b.compact()
	return n
}

// compact discards the prefix of data that is both already drained and
// outside the retention window, so a long stream does not grow the
// buffer without bound.
func (b *DecodeBuffer) compact() {
	newBase := b.drained
	if limit := b.total - b.windowSize; limit < newBase {
		newBase = limit
	}
	if newBase <= b.base {
		return
	}
	drop := newBase - b.base
	b.data = append(b.data[:0], b.data[drop:]...)
	b.base = newBase
}

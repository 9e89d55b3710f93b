// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

// BitReaderReversed reads bits from a byte slice starting at the
// most-significant bit of the last byte and moving backward toward byte
// zero. This is the bit order zstd uses for Huffman and FSE bitstreams.
//
// It keeps no bit register and no error state: each bit is looked up in
// data by its index in the logical stream, and a count of consumed bits
// gives the position. It tolerates reading past the end of the stream
// (callers peek ahead and rely on bitsRemaining going negative to know
// when to stop), so reads beyond the slice are zero-padded instead of
// erroring.
type BitReaderReversed struct {
	data         []byte
	totalBits    int
	bitsConsumed int
}

// NewBitReaderReversed wraps data for reversed-bit reading and consumes the
// terminal "1" padding marker per RFC 8478: scanning from the top bit
// downward, the first 1 bit found is the marker and is discarded. The
// marker must lie within the first 8 bits read (at most 7 zero bits before
// it); otherwise the stream is corrupt.
func NewBitReaderReversed(data []byte) (*BitReaderReversed, error) {
	br := &BitReaderReversed{data: data, totalBits: len(data) * 8}
	skipped := 0
	for {
		skipped++
		if skipped > 8 {
			return nil, &BitstreamCorruptionError{
				Component: "bitreader",
				Reason:    "padding marker not found within 8 bits",
			}
		}
		if br.GetBits(1) == 1 {
			break
		}
	}
	return br, nil
}

// bitAt returns the g-th bit consumed from the logical stream (0-indexed),
// or 0 if g falls outside the underlying data (padding/overrun).
func (br *BitReaderReversed) bitAt(g int) uint64 {
	if g < 0 || g >= br.totalBits {
		return 0
	}
	byteIdx := len(br.data) - 1 - g/8
	bitInByte := uint(7 - g%8)
	return uint64(br.data[byteIdx]>>bitInByte) & 1
}

// GetBits reads n bits (0 <= n <= 64) and returns them as an unsigned
// integer, the first bit read forming the most significant bit of the
// result. Requesting more bits than remain is allowed: the overrun is
// padded with zeros, and bitsRemaining goes negative to signal it.
func (br *BitReaderReversed) GetBits(n uint) uint64 {
	if n == 0 {
		return 0
	}
	var v uint64
	for i := uint(0); i < n; i++ {
		v = v<<1 | br.bitAt(br.bitsConsumed)
		br.bitsConsumed++
	}
	return v
}

// BitsRemaining returns the number of unread bits, which goes negative
// once the stream is exhausted and callers keep reading (used as a
// termination guard by entropy decoders).
func (br *BitReaderReversed) BitsRemaining() int {
	return br.totalBits - br.bitsConsumed
}

// PeekBits returns the next n bits without advancing the stream. Huffman
// decoding needs this: the table is indexed by a fixed-width window, but
// the code actually consumed may be shorter, and only the entry found at
// decode time reveals how much to advance by.
func (br *BitReaderReversed) PeekBits(n uint) uint64 {
	if n == 0 {
		return 0
	}
	var v uint64
	for i := uint(0); i < n; i++ {
		v = v<<1 | br.bitAt(br.bitsConsumed+int(i))
	}
	return v
}

// Advance consumes n bits previously inspected with PeekBits.
func (br *BitReaderReversed) Advance(n uint) {
	br.bitsConsumed += int(n)
}

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

// Sequence is one decoded (literal-length, match-length, offset) triple
// awaiting execution against the literals and DecodeBuffer.
type Sequence struct {
	LL uint32
	ML uint32
	OF uint32
}

// HuffmanScratch holds the literals Huffman table. It carries across
// blocks within a frame so a Treeless literals section can reuse the
// table built by an earlier Compressed one.
type HuffmanScratch struct {
	Table HuffmanTable
}

// FSEScratch holds the three sequence FSE tables and their RLE
// fallbacks. Like HuffmanScratch, these carry across blocks so a Repeat
// compression mode can reuse whatever a previous block last built.
type FSEScratch struct {
	LiteralLengths FSETable
	LLRLE          *byte
	MatchLengths   FSETable
	MLRLE          *byte
	Offsets        FSETable
	OFRLE          *byte
}

// DecoderScratch is the mutable, per-frame working state that
// FrameDecoder owns and lends to BlockDecoder for the duration of a
// single block's decode. The Huffman and FSE tables, the offset history
// and the output Buffer carry over from block to block; LiteralsBuffer,
// Sequences and BlockContentBuffer are overwritten in place by each block.
type DecoderScratch struct {
	Huffman       HuffmanScratch
	FSE           FSEScratch
	Buffer        DecodeBuffer
	OffsetHistory [3]uint32

	LiteralsBuffer     []byte
	Sequences          []Sequence
	BlockContentBuffer []byte
}

// NewDecoderScratch allocates scratch for a frame with the given window
// size, with the offset history at its RFC-mandated initial values.
func NewDecoderScratch(windowSize int) *DecoderScratch {
	s := &DecoderScratch{}
	s.Buffer = *NewDecodeBuffer(windowSize)
	s.OffsetHistory = [3]uint32{1, 4, 8}
	return s
}

// Reset reconfigures scratch for a new frame, reusing backing arrays
// rather than reallocating them.
func (s *DecoderScratch) Reset(windowSize int) {
	s.OffsetHistory = [3]uint32{1, 4, 8}
	s.LiteralsBuffer = s.LiteralsBuffer[:0]
	s.Sequences = s.Sequences[:0]
	s.BlockContentBuffer = s.BlockContentBuffer[:0]

	s.Buffer.Reset(windowSize)

	s.FSE.LiteralLengths.Reset()
	s.FSE.MatchLengths.Reset()
	s.FSE.Offsets.Reset()
	s.FSE.LLRLE = nil
	s.FSE.MLRLE = nil
	s.FSE.OFRLE = nil

	s.Huffman.Table.Reset()
}

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

// BlockType identifies a block body's encoding.
type BlockType int

const (
	BlockRaw BlockType = iota
	BlockRLE
	BlockCompressed
	BlockReserved
)

// MaxBlockSize is the absolute cap on a block's content_size, RFC
// 8478 §3.1.1.2.
const MaxBlockSize = 128 * 1024

// BlockHeader is a parsed 3-byte block header.
type BlockHeader struct {
	Last             bool
	Type             BlockType
	ContentSize      int // compressed size of the block body
	DecompressedSize int // known up front for Raw/RLE, discovered for Compressed
}

// blockDecoderState is a tagged variant mirroring the teacher's linear
// header/body alternation, with an absorbing Failed state.
type blockDecoderState int

const (
	stateReadyForHeader blockDecoderState = iota
	stateReadyForBody
	stateFailed
)

// BlockDecoder drives one block at a time through header-then-body
// decoding, mutating the shared DecoderScratch that survives across a
// frame's blocks.
type BlockDecoder struct {
	state  blockDecoderState
	header BlockHeader
}

// NewBlockDecoder returns a decoder ready to read its first header.
func NewBlockDecoder() *BlockDecoder {
	return &BlockDecoder{state: stateReadyForHeader}
}

// Failed reports whether a previous call left the decoder in its
// terminal error state.
func (d *BlockDecoder) Failed() bool {
	return d.state == stateFailed
}

// LastHeaderWasFinal reports whether the most recently read block
// header carried the last_block flag.
func (d *BlockDecoder) LastHeaderWasFinal() bool {
	return d.header.Last
}

// PendingContentSize returns the most recently read header's
// ContentSize — the number of body bytes the next DecodeBlockContent
// call will consume.
func (d *BlockDecoder) PendingContentSize() int {
	return d.header.ContentSize
}

// ReadBlockHeader parses the next 3-byte block header from data,
// returning the number of bytes consumed.
func (d *BlockDecoder) ReadBlockHeader(data []byte) (int, error) {
	if d.state == stateFailed {
		return 0, &MalformedHeaderError{Component: "block-decoder", Reason: "decoder previously failed"}
	}
	if d.state != stateReadyForHeader {
		d.state = stateFailed
		return 0, &MalformedHeaderError{Component: "block-decoder", Reason: "header requested while a body decode is pending"}
	}
	if len(data) < 3 {
		d.state = stateFailed
		return 0, &InputTruncatedError{Component: "block-header", Wanted: 3, Got: len(data)}
	}

	last := data[0]&0x1 == 1
	typ := BlockType((data[0] >> 1) & 0x3)
	if typ == BlockReserved {
		d.state = stateFailed
		return 0, &MalformedHeaderError{Component: "block-header", Reason: "reserved block type"}
	}

	size := uint32(data[0]>>3) | uint32(data[1])<<5 | uint32(data[2])<<13
	if size > MaxBlockSize {
		d.state = stateFailed
		return 0, &MalformedHeaderError{Component: "block-header", Reason: "block size exceeds 128 KiB"}
	}

	hdr := BlockHeader{Last: last, Type: typ}
	switch typ {
	case BlockRaw:
		hdr.ContentSize = int(size)
		hdr.DecompressedSize = int(size)
	case BlockRLE:
		hdr.ContentSize = 1
		hdr.DecompressedSize = int(size)
	case BlockCompressed:
		hdr.ContentSize = int(size)
		hdr.DecompressedSize = 0 // discovered during decode
	}

	d.header = hdr
	d.state = stateReadyForBody
	return 3, nil
}

// DecodeBlockContent decodes the current block's body, which occupies
// header.ContentSize bytes of data, into scratch. windowSize bounds how
// large a Compressed block's regenerated output may legally be (RFC
// 8478 mandates min(window, 128 KiB)).
func (d *BlockDecoder) DecodeBlockContent(data []byte, scratch *DecoderScratch, windowSize int) error {
	if d.state == stateFailed {
		return &MalformedHeaderError{Component: "block-decoder", Reason: "decoder previously failed"}
	}
	if d.state != stateReadyForBody {
		d.state = stateFailed
		return &MalformedHeaderError{Component: "block-decoder", Reason: "body requested before a header was read"}
	}
	if len(data) < d.header.ContentSize {
		d.state = stateFailed
		return &InputTruncatedError{Component: "block-body", Wanted: d.header.ContentSize, Got: len(data)}
	}
	body := data[:d.header.ContentSize]
	maxRegen := windowSize
	if maxRegen > MaxBlockSize {
		maxRegen = MaxBlockSize
	}

	var err error
	switch d.header.Type {
	case BlockRaw:
		if d.header.DecompressedSize > maxRegen {
			err = &MalformedHeaderError{Component: "block-body", Reason: "decompressed size exceeds min(window, 128 KiB)"}
			break
		}
		scratch.Buffer.PushLiterals(body)
	case BlockRLE:
		if len(body) < 1 {
			err = &InputTruncatedError{Component: "block-body", Wanted: 1, Got: 0}
			break
		}
		if d.header.DecompressedSize > maxRegen {
			err = &MalformedHeaderError{Component: "block-body", Reason: "decompressed size exceeds min(window, 128 KiB)"}
			break
		}
		scratch.Buffer.RepeatByte(body[0], d.header.DecompressedSize)
	case BlockCompressed:
		err = d.decodeCompressedBlock(body, scratch, windowSize, maxRegen)
	}
	if err != nil {
		d.state = stateFailed
		return err
	}

	d.state = stateReadyForHeader
	return nil
}

// decodeCompressedBlock runs the literals → sequences → execution
// pipeline over one Compressed block's body. maxRegen is min(window, 128
// KiB): the regenerated literals size is checked against it up front, but
// that alone doesn't bound the block's real decompressed size, since
// match copies can expand output far past the literals themselves — so
// the total bytes this block adds to scratch.Buffer is checked against
// maxRegen again once execution finishes.
func (d *BlockDecoder) decodeCompressedBlock(body []byte, scratch *DecoderScratch, windowSize, maxRegen int) error {
	outputBefore := scratch.Buffer.Len()

	section, err := ParseLiteralsSectionHeader(body)
	if err != nil {
		return err
	}
	rest := body[section.HeaderSize:]

	litLimit := section.CompressedSize
	if section.Type == LiteralsRaw {
		litLimit = section.RegeneratedSize
	} else if section.Type == LiteralsRLE {
		litLimit = 1
	}
	if len(rest) < litLimit {
		return &MalformedHeaderError{Component: "literals", Reason: "literals section overruns block content"}
	}
	if section.RegeneratedSize > maxRegen {
		return &MalformedHeaderError{Component: "literals", Reason: "regenerated size exceeds min(window, 128 KiB)"}
	}

	scratch.LiteralsBuffer = scratch.LiteralsBuffer[:0]
	consumed, err := DecodeLiterals(section, &scratch.Huffman, rest[:litLimit], &scratch.LiteralsBuffer)
	if err != nil {
		return err
	}
	if consumed != litLimit {
		return &LiteralCountMismatchError{Got: consumed, Want: litLimit}
	}
	rest = rest[litLimit:]

	scratch.Sequences = scratch.Sequences[:0]
	seqHdr, err := ParseSequencesHeader(rest)
	if err != nil {
		return err
	}

	if seqHdr.NumSequences == 0 {
		scratch.Buffer.PushLiterals(scratch.LiteralsBuffer)
		return d.checkDecompressedSize(scratch, outputBefore, maxRegen)
	}

	sequences, err := decodeSequenceSectionBody(seqHdr, rest[seqHdr.HeaderSize:], &scratch.FSE, scratch.Sequences)
	if err != nil {
		return err
	}
	scratch.Sequences = sequences

	if err := ExecuteSequences(sequences, scratch.LiteralsBuffer, &scratch.OffsetHistory, &scratch.Buffer, windowSize); err != nil {
		return err
	}
	return d.checkDecompressedSize(scratch, outputBefore, maxRegen)
}

// checkDecompressedSize enforces RFC 8478's min(window, 128 KiB) cap on a
// single block's regenerated output, measured by what decoding this block
// actually appended to scratch.Buffer rather than by any size a header
// announced in advance.
func (d *BlockDecoder) checkDecompressedSize(scratch *DecoderScratch, outputBefore, maxRegen int) error {
	if scratch.Buffer.Len()-outputBefore > maxRegen {
		return &MalformedHeaderError{Component: "block-body", Reason: "decompressed size exceeds min(window, 128 KiB)"}
	}
	return nil
}

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstdcore

import (
	"encoding/binary"
	"io"
	"log"

	"github.com/cosnicolaou/zstdcore/internal/zstd"
)

// BlockStrategy bounds how much work one call to FrameDecoder.DecodeBlocks
// does before returning.
type BlockStrategy struct {
	kind  blockStrategyKind
	limit int
}

type blockStrategyKind int

const (
	strategyAll blockStrategyKind = iota
	strategyUpToBlocks
	strategyUpToBytes
)

// DecodeAllBlocks decodes until the frame's last block is reached.
func DecodeAllBlocks() BlockStrategy { return BlockStrategy{kind: strategyAll} }

// DecodeUpToBlocks decodes at most n blocks before returning, unless the
// last block is reached first.
func DecodeUpToBlocks(n int) BlockStrategy { return BlockStrategy{kind: strategyUpToBlocks, limit: n} }

// DecodeUpToBytes decodes until at least n bytes of new output have been
// produced, unless the last block is reached first.
func DecodeUpToBytes(n int) BlockStrategy { return BlockStrategy{kind: strategyUpToBytes, limit: n} }

// FrameDecoder drives one Zstandard frame's blocks to completion,
// exclusively owning the scratch state (Huffman/FSE tables, offset
// history, buffers) that must survive across those blocks. A single
// FrameDecoder handles one frame; the reader returned by NewReader drives
// a sequence of them to support frame concatenation.
type FrameDecoder struct {
	opts decoderOpts

	header       FrameHeader
	scratch      *zstd.DecoderScratch
	block        *zstd.BlockDecoder
	checksum     *zstd.ContentChecksum
	finished     bool
	blockCounter int
}

// Init reads and validates a frame header from source, skipping and
// discarding any skippable frames that precede it, and prepares the
// decoder's scratch for that frame's window size. It returns io.EOF
// (unwrapped) if source has no more data at all, so a caller decoding a
// concatenation of frames can tell "no more frames" from a real error.
func (f *FrameDecoder) Init(source io.Reader) error {
	for {
		magicBuf := make([]byte, 4)
		n, err := io.ReadFull(source, magicBuf)
		if err != nil {
			if n == 0 && err == io.EOF {
				return io.EOF
			}
			return &InputTruncatedError{Component: "frame-magic", Wanted: 4, Got: n}
		}
		magic := binary.LittleEndian.Uint32(magicBuf)

		if IsSkippableMagic(magic) {
			sizeBuf := make([]byte, 4)
			if _, err := io.ReadFull(source, sizeBuf); err != nil {
				return &InputTruncatedError{Component: "skippable-frame", Wanted: 4, Got: 0}
			}
			size := binary.LittleEndian.Uint32(sizeBuf)
			if f.opts.verbose {
				log.Printf("zstdcore: skipping skippable frame 0x%08x, %d bytes", magic, size)
			}
			if _, err := io.CopyN(io.Discard, source, int64(size)); err != nil {
				return &InputTruncatedError{Component: "skippable-frame", Wanted: int(size), Got: 0}
			}
			continue
		}

		if magic != FrameMagic {
			return &MalformedHeaderError{Component: "frame-header", Reason: "unrecognized magic number"}
		}

		headerBuf := make([]byte, 18) // room for magic + max standard frame header
		copy(headerBuf, magicBuf)
		n = 4
		for {
			hdr, perr := ParseFrameHeader(headerBuf[:n])
			if perr == nil {
				f.header = hdr
				break
			}
			if _, ok := perr.(*InputTruncatedError); !ok {
				return perr
			}
			if n >= len(headerBuf) {
				return perr
			}
			more, rerr := source.Read(headerBuf[n : n+1])
			if more == 0 {
				if rerr != nil {
					return rerr
				}
				return perr
			}
			n += more
		}

		if f.opts.verbose {
			log.Printf("zstdcore: frame header: window=%d content_size=%v checksum=%v", f.header.WindowSize, f.header.ContentSize, f.header.ContentChecksum)
		}

		f.scratch = zstd.NewDecoderScratch(f.header.WindowSize)
		f.block = zstd.NewBlockDecoder()
		f.finished = false
		f.blockCounter = 0
		f.checksum = nil
		if f.header.ContentChecksum {
			f.checksum = zstd.NewContentChecksum()
		}
		return nil
	}
}

// Header returns the parsed header of the frame currently being decoded.
func (f *FrameDecoder) Header() FrameHeader {
	return f.header
}

// IsFinished reports whether the frame's last block has been decoded.
// It does not cover the content checksum, which is checked separately by
// VerifyChecksum.
func (f *FrameDecoder) IsFinished() bool {
	return f.finished
}

// BlocksDecoded reports how many blocks have been decoded so far in
// this frame.
func (f *FrameDecoder) BlocksDecoded() int {
	return f.blockCounter
}

// DecodeBlocks decodes blocks from source according to strategy,
// stopping early at the frame's last block. It returns whether the
// frame is now finished.
func (f *FrameDecoder) DecodeBlocks(source io.Reader, strategy BlockStrategy) (bool, error) {
	bufferSizeBefore := f.scratch.Buffer.Len()
	blockCounterBefore := f.blockCounter

	header := make([]byte, 3)
	for {
		if f.opts.verbose {
			log.Printf("zstdcore: decoding block %d", f.blockCounter)
		}
		if _, err := io.ReadFull(source, header); err != nil {
			return f.finished, &InputTruncatedError{Component: "block-header", Wanted: 3, Got: 0}
		}
		if _, err := f.block.ReadBlockHeader(header); err != nil {
			return f.finished, err
		}

		body := f.bodyBuffer()
		if _, err := io.ReadFull(source, body); err != nil {
			return f.finished, &InputTruncatedError{Component: "block-body", Wanted: len(body), Got: 0}
		}

		outputBefore := f.scratch.Buffer.Len()
		if err := f.block.DecodeBlockContent(body, f.scratch, f.header.WindowSize); err != nil {
			return f.finished, err
		}
		if f.checksum != nil {
			f.checksum.Write(f.decodedSince(outputBefore))
		}
		f.blockCounter++

		if f.lastBlockSeen() {
			f.finished = true
			break
		}

		switch strategy.kind {
		case strategyAll:
		case strategyUpToBlocks:
			if f.blockCounter-blockCounterBefore >= strategy.limit {
				return f.finished, nil
			}
		case strategyUpToBytes:
			if f.scratch.Buffer.Len()-bufferSizeBefore >= strategy.limit {
				return f.finished, nil
			}
		}
	}
	return f.finished, nil
}

// lastBlockSeen reports whether the most recently decoded header was
// marked last_block. BlockDecoder returns to ReadyForHeader after a
// successful decode but keeps the last header it read, and that retained
// header is what is consulted here.
func (f *FrameDecoder) lastBlockSeen() bool {
	return f.block.LastHeaderWasFinal()
}

// bodyBuffer returns a slice sized for the just-read block header's
// content size, reusing BlockContentBuffer across blocks.
func (f *FrameDecoder) bodyBuffer() []byte {
	n := f.block.PendingContentSize()
	if cap(f.scratch.BlockContentBuffer) < n {
		f.scratch.BlockContentBuffer = make([]byte, n)
	}
	f.scratch.BlockContentBuffer = f.scratch.BlockContentBuffer[:n]
	return f.scratch.BlockContentBuffer
}

// decodedSince returns the output bytes appended after offset, for
// checksum accumulation (these bytes may later be compacted out of the
// DecodeBuffer, so the checksum must absorb them immediately).
func (f *FrameDecoder) decodedSince(offset int) []byte {
	total := f.scratch.Buffer.Len()
	if total <= offset {
		return nil
	}
	out := make([]byte, total-offset)
	f.scratch.Buffer.PeekSince(offset, out)
	return out
}

// CanCollect reports how many bytes can be drained while still
// retaining the window for future back-references.
func (f *FrameDecoder) CanCollect() int {
	return f.scratch.Buffer.CanDrainToWindow()
}

// Collect drains up to len(p) window-safe bytes into p.
func (f *FrameDecoder) Collect(p []byte) int {
	return f.scratch.Buffer.DrainToWindow(p)
}

// DrainAll drains every remaining byte, valid only once IsFinished.
func (f *FrameDecoder) DrainAll(p []byte) int {
	return f.scratch.Buffer.DrainAll(p)
}

// VerifyChecksum checks a decoded frame's trailing checksum, if the
// frame descriptor requested one.
func (f *FrameDecoder) VerifyChecksum(trailer uint32) error {
	if f.checksum == nil {
		return nil
	}
	return f.checksum.Verify(trailer)
}

// HasChecksum reports whether this frame's descriptor set the content
// checksum flag, so the caller knows whether to read the 4-byte trailer.
func (f *FrameDecoder) HasChecksum() bool {
	return f.header.ContentChecksum
}

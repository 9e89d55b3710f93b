// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstdcore

import (
	"io"
)

type decoderOpts struct {
	verbose bool
}

// DecoderOption represents an option to NewFrameDecoder and NewReader.
type DecoderOption func(o *decoderOpts)

// WithVerbose enables progress logging of frame and block boundaries as
// they are decoded.
func WithVerbose(v bool) DecoderOption {
	return func(o *decoderOpts) {
		o.verbose = v
	}
}

// NewFrameDecoder returns a FrameDecoder ready to have Init called on it.
// Most callers decoding a complete stream should use NewReader instead;
// FrameDecoder is exposed for callers that need direct control over a
// single frame's block-by-block decoding (e.g. bounded-work streaming via
// BlockStrategy).
func NewFrameDecoder(opts ...DecoderOption) *FrameDecoder {
	o := &decoderOpts{}
	for _, fn := range opts {
		fn(o)
	}
	return &FrameDecoder{opts: *o}
}

// streamReader adapts a sequence of FrameDecoders, one per frame, into a
// single io.Reader over a concatenation of zstd frames — the same
// "continuation stream" shape the teacher's bzip2 reader handles via
// bz2.setup(false) re-validating a fresh magic number mid-stream, except
// here frame boundaries (and any intervening skippable frames) are
// resolved by FrameDecoder.Init itself rather than a bit-unaligned scan.
type streamReader struct {
	source io.Reader
	opts   decoderOpts

	cur            *FrameDecoder
	curDone        bool // cur has no more frames (io.EOF from Init)
	curChecksummed bool // finishFrame has already run for cur
	trailBuf       [4]byte
}

// NewReader returns an io.Reader that decompresses a stream of one or more
// concatenated Zstandard frames read from source, verifying each frame's
// content checksum (if present) as it completes.
func NewReader(source io.Reader, opts ...DecoderOption) io.Reader {
	o := &decoderOpts{}
	for _, fn := range opts {
		fn(o)
	}
	return &streamReader{source: source, opts: *o}
}

// Read implements io.Reader.
func (r *streamReader) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for {
		if r.curDone {
			return 0, io.EOF
		}
		if r.cur == nil {
			fd := &FrameDecoder{opts: r.opts}
			if err := fd.Init(r.source); err != nil {
				if err == io.EOF {
					r.curDone = true
					return 0, io.EOF
				}
				return 0, err
			}
			r.cur = fd
			r.curChecksummed = false
		}

		for r.cur.CanCollect() < len(buf) && !r.cur.IsFinished() {
			if _, err := r.cur.DecodeBlocks(r.source, DecodeUpToBytes(len(buf))); err != nil {
				return 0, err
			}
		}

		if n := r.cur.Collect(buf); n > 0 {
			return n, nil
		}

		if !r.cur.IsFinished() {
			// CanCollect was 0 and there was still more frame to decode;
			// loop again to make progress rather than spuriously
			// returning (0, nil).
			continue
		}

		if !r.curChecksummed {
			if err := r.finishFrame(); err != nil {
				return 0, err
			}
			r.curChecksummed = true
		}

		// DrainAll ignores window retention but is still bounded by
		// len(buf): the finished frame's undrained remainder (up to a
		// full window) can exceed the caller's buffer, so only move on
		// to the next frame once every byte has actually been handed
		// back, rather than discarding whatever didn't fit this call.
		if n := r.cur.DrainAll(buf); n > 0 {
			return n, nil
		}
		r.cur = nil
	}
}

// finishFrame reads and verifies the frame's trailing content checksum, if
// its descriptor requested one.
func (r *streamReader) finishFrame() error {
	if !r.cur.HasChecksum() {
		return nil
	}
	if _, err := io.ReadFull(r.source, r.trailBuf[:]); err != nil {
		return &InputTruncatedError{Component: "content-checksum", Wanted: 4, Got: 0}
	}
	trailer := uint32(r.trailBuf[0]) | uint32(r.trailBuf[1])<<8 | uint32(r.trailBuf[2])<<16 | uint32(r.trailBuf[3])<<24
	return r.cur.VerifyChecksum(trailer)
}

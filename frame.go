// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstdcore

import (
	"encoding/binary"
	"fmt"
)

// FrameMagic is the 4-byte little-endian magic number that begins a
// standard Zstandard frame (RFC 8478 §3.1.1).
const FrameMagic = 0xFD2FB528

// IsSkippableMagic reports whether magic is one of the 16 reserved
// skippable-frame magic numbers (0x184D2A50-0x184D2A5F).
func IsSkippableMagic(magic uint32) bool {
	return magic >= 0x184D2A50 && magic <= 0x184D2A5F
}

// DefaultMaxWindowSize bounds the window size this decoder will accept
// for any frame, whether the window comes from a window descriptor or,
// for a frame with Single_Segment_flag set, from its content size; it
// also bounds what a caller should be willing to allocate for any frame,
// since the decoder has no independent way to cap memory use otherwise.
const DefaultMaxWindowSize = 1 << 27 // 128 MiB

// FrameHeader is the parsed result of a standard frame's header: magic,
// descriptor byte, optional window descriptor, optional dictionary ID,
// and optional content size.
type FrameHeader struct {
	WindowSize      int
	HasContentSize  bool
	ContentSize     uint64
	DictionaryID    uint32
	ContentChecksum bool
	HeaderSize      int
}

// String renders a FrameHeader for diagnostic output.
func (h FrameHeader) String() string {
	cs := "unknown"
	if h.HasContentSize {
		cs = fmt.Sprintf("%d", h.ContentSize)
	}
	return fmt.Sprintf("window=%d content_size=%v dictionary_id=%d checksum=%v header_size=%d",
		h.WindowSize, cs, h.DictionaryID, h.ContentChecksum, h.HeaderSize)
}

// ReadSkippableFrameSize parses a skippable frame's header (magic
// already consumed by the caller) and returns the number of payload
// bytes that follow and must be discarded.
func ReadSkippableFrameSize(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, &InputTruncatedError{Component: "skippable-frame", Wanted: 4, Got: len(data)}
	}
	return int(binary.LittleEndian.Uint32(data[:4])), nil
}

// ParseFrameHeader reads a standard frame's header starting at data[0]
// (the magic number). It returns the parsed header, whose HeaderSize is
// the number of bytes consumed; it does not read the dictionary itself,
// only the dictionary ID.
func ParseFrameHeader(data []byte) (FrameHeader, error) {
	if len(data) < 5 {
		return FrameHeader{}, &InputTruncatedError{Component: "frame-header", Wanted: 5, Got: len(data)}
	}
	magic := binary.LittleEndian.Uint32(data[:4])
	if magic != FrameMagic {
		return FrameHeader{}, &MalformedHeaderError{Component: "frame-header", Reason: fmt.Sprintf("unrecognized magic number 0x%08x", magic)}
	}

	descriptor := data[4]
	fcsFlag := descriptor >> 6
	singleSegment := descriptor&0x20 != 0
	reservedBit := descriptor&0x08 != 0
	checksumFlag := descriptor&0x04 != 0
	didFlag := descriptor & 0x3

	if reservedBit {
		return FrameHeader{}, &MalformedHeaderError{Component: "frame-header", Reason: "reserved descriptor bit set"}
	}

	pos := 5
	var hdr FrameHeader
	hdr.ContentChecksum = checksumFlag

	if !singleSegment {
		if len(data) < pos+1 {
			return FrameHeader{}, &InputTruncatedError{Component: "frame-header", Wanted: pos + 1, Got: len(data)}
		}
		wd := data[pos]
		pos++
		exponent := wd >> 3
		mantissa := wd & 0x7
		windowBase := uint64(1) << (10 + exponent)
		windowAdd := (windowBase / 8) * uint64(mantissa)
		hdr.WindowSize = int(windowBase + windowAdd)
	}

	var didSize int
	switch didFlag {
	case 0:
		didSize = 0
	case 1:
		didSize = 1
	case 2:
		didSize = 2
	case 3:
		didSize = 4
	}
	if didSize > 0 {
		if len(data) < pos+didSize {
			return FrameHeader{}, &InputTruncatedError{Component: "frame-header", Wanted: pos + didSize, Got: len(data)}
		}
		switch didSize {
		case 1:
			hdr.DictionaryID = uint32(data[pos])
		case 2:
			hdr.DictionaryID = uint32(binary.LittleEndian.Uint16(data[pos : pos+2]))
		case 4:
			hdr.DictionaryID = binary.LittleEndian.Uint32(data[pos : pos+4])
		}
		pos += didSize
	}

	var fcsSize int
	switch fcsFlag {
	case 0:
		if singleSegment {
			fcsSize = 1
		} else {
			fcsSize = 0
		}
	case 1:
		fcsSize = 2
	case 2:
		fcsSize = 4
	case 3:
		fcsSize = 8
	}
	if fcsSize > 0 {
		if len(data) < pos+fcsSize {
			return FrameHeader{}, &InputTruncatedError{Component: "frame-header", Wanted: pos + fcsSize, Got: len(data)}
		}
		hdr.HasContentSize = true
		switch fcsSize {
		case 1:
			hdr.ContentSize = uint64(data[pos])
		case 2:
			hdr.ContentSize = uint64(binary.LittleEndian.Uint16(data[pos:pos+2])) + 256
		case 4:
			hdr.ContentSize = uint64(binary.LittleEndian.Uint32(data[pos : pos+4]))
		case 8:
			hdr.ContentSize = binary.LittleEndian.Uint64(data[pos : pos+8])
		}
		pos += fcsSize
	}

	if singleSegment {
		if !hdr.HasContentSize {
			return FrameHeader{}, &MalformedHeaderError{Component: "frame-header", Reason: "single segment frame without a content size"}
		}
		hdr.WindowSize = int(hdr.ContentSize)
	}
	if hdr.WindowSize <= 0 || hdr.WindowSize > DefaultMaxWindowSize {
		if hdr.WindowSize > DefaultMaxWindowSize {
			return FrameHeader{}, &MalformedHeaderError{Component: "frame-header", Reason: fmt.Sprintf("window size %d exceeds the %d byte limit this decoder accepts", hdr.WindowSize, DefaultMaxWindowSize)}
		}
		return FrameHeader{}, &MalformedHeaderError{Component: "frame-header", Reason: "window size is zero"}
	}

	hdr.HeaderSize = pos
	return hdr, nil
}

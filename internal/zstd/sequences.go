// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

// SequenceCompressionMode selects how one of the three sequence tables
// (literal-lengths, match-lengths, offsets) is built for a block.
type SequenceCompressionMode uint8

const (
	ModePredefined SequenceCompressionMode = iota
	ModeRLE
	ModeFSECompressed
	ModeRepeat
)

// SequencesHeader is a parsed sequences section header: the sequence
// count and the three tables' compression modes (RFC 8478 §3.1.1.3.2.1).
type SequencesHeader struct {
	NumSequences int
	LLMode       SequenceCompressionMode
	OFMode       SequenceCompressionMode
	MLMode       SequenceCompressionMode
	HeaderSize   int
}

// ParseSequencesHeader reads the 1-, 2-, or 3-byte num_sequences
// encoding followed by the single mode byte (bits 7:6 LL, 5:4 OF, 3:2
// ML, bits 1:0 reserved).
func ParseSequencesHeader(data []byte) (SequencesHeader, error) {
	if len(data) == 0 {
		return SequencesHeader{}, &InputTruncatedError{Component: "sequences-header", Wanted: 1, Got: 0}
	}
	var hdr SequencesHeader
	switch {
	case data[0] == 0:
		hdr.NumSequences = 0
		hdr.HeaderSize = 1
		return hdr, nil
	case data[0] < 128:
		hdr.NumSequences = int(data[0])
		hdr.HeaderSize = 1
	case data[0] < 255:
		if len(data) < 2 {
			return SequencesHeader{}, &InputTruncatedError{Component: "sequences-header", Wanted: 2, Got: len(data)}
		}
		hdr.NumSequences = (int(data[0])-128)<<8 + int(data[1])
		hdr.HeaderSize = 2
	default: // 255
		if len(data) < 3 {
			return SequencesHeader{}, &InputTruncatedError{Component: "sequences-header", Wanted: 3, Got: len(data)}
		}
		hdr.NumSequences = int(data[1]) + int(data[2])<<8 + 0x7F00
		hdr.HeaderSize = 3
	}

	if len(data) < hdr.HeaderSize+1 {
		return SequencesHeader{}, &InputTruncatedError{Component: "sequences-header", Wanted: hdr.HeaderSize + 1, Got: len(data)}
	}
	modeByte := data[hdr.HeaderSize]
	if modeByte&0x3 != 0 {
		return SequencesHeader{}, &MalformedHeaderError{Component: "sequences-header", Reason: "reserved mode bits set"}
	}
	hdr.LLMode = SequenceCompressionMode(modeByte >> 6)
	hdr.OFMode = SequenceCompressionMode((modeByte >> 4) & 0x3)
	hdr.MLMode = SequenceCompressionMode((modeByte >> 2) & 0x3)
	hdr.HeaderSize++
	return hdr, nil
}

// prepareFSETable builds, reuses, or RLE-seeds one of the three sequence
// tables according to mode, returning the number of header bytes it
// consumed from data.
func prepareFSETable(mode SequenceCompressionMode, table *FSETable, rle **byte, data []byte, defaultDist []int32, defaultLog uint8, maxSymbol int, component string) (int, error) {
	switch mode {
	case ModePredefined:
		if err := table.Build(defaultLog, defaultDist); err != nil {
			return 0, err
		}
		*rle = nil
		return 0, nil

	case ModeRLE:
		if len(data) < 1 {
			return 0, &InputTruncatedError{Component: component, Wanted: 1, Got: 0}
		}
		sym := data[0]
		table.BuildRLE(sym)
		*rle = &sym
		return 1, nil

	case ModeFSECompressed:
		accuracyLog, norm, n, err := readNormalizedCount(data, maxSymbol)
		if err != nil {
			return 0, err
		}
		if err := table.Build(accuracyLog, norm); err != nil {
			return 0, err
		}
		*rle = nil
		return n, nil

	case ModeRepeat:
		if !table.Built() {
			return 0, &EntropyBuildError{Component: component, Reason: "repeat mode with no previously built table"}
		}
		return 0, nil
	}
	return 0, &MalformedHeaderError{Component: component, Reason: "invalid compression mode"}
}

// DecodeSequenceSection parses and decodes a full sequences section
// (header, per-table mode bytes, and the interleaved FSE bitstream) into
// sequences' backing array, overwriting whatever it held, and returns the
// resulting slice.
func DecodeSequenceSection(data []byte, scratch *FSEScratch, sequences []Sequence) ([]Sequence, error) {
	hdr, err := ParseSequencesHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.NumSequences == 0 {
		return sequences[:0], nil
	}
	return decodeSequenceSectionBody(hdr, data[hdr.HeaderSize:], scratch, sequences)
}

// decodeSequenceSectionBody decodes a sequences section whose header has
// already been parsed by the caller (block.go needs the header's
// NumSequences before deciding whether to decode a section at all, so it
// parses once and passes the result here instead of making
// DecodeSequenceSection parse it again).
func decodeSequenceSectionBody(hdr SequencesHeader, rest []byte, scratch *FSEScratch, sequences []Sequence) ([]Sequence, error) {
	n, err := prepareFSETable(hdr.LLMode, &scratch.LiteralLengths, &scratch.LLRLE, rest, llDefaultDistribution, llDefaultAccuracyLog, maxLiteralLengthCode, "sequences-ll")
	if err != nil {
		return nil, err
	}
	rest = rest[n:]

	n, err = prepareFSETable(hdr.OFMode, &scratch.Offsets, &scratch.OFRLE, rest, ofDefaultDistribution, ofDefaultAccuracyLog, maxOffsetCode, "sequences-of")
	if err != nil {
		return nil, err
	}
	rest = rest[n:]

	n, err = prepareFSETable(hdr.MLMode, &scratch.MatchLengths, &scratch.MLRLE, rest, mlDefaultDistribution, mlDefaultAccuracyLog, maxMatchLengthCode, "sequences-ml")
	if err != nil {
		return nil, err
	}
	rest = rest[n:]

	br, err := NewBitReaderReversed(rest)
	if err != nil {
		return nil, err
	}
	return decodeSequences(hdr, scratch, br, sequences)
}

// decodeSequences drives the three coupled FSE decoders over one shared
// reverse bitstream. Initial states are read LL, OF, ML; per sequence,
// bits are consumed OF extra, ML extra, LL extra, and states update (on
// every iteration but the last) LL, ML, OF — the exact order RFC 8478
// §4.1.1 mandates and klauspost's sequenceDecs.next/update independently
// confirm.
func decodeSequences(hdr SequencesHeader, scratch *FSEScratch, br *BitReaderReversed, sequences []Sequence) ([]Sequence, error) {
	llDec := NewFSEDecoder(&scratch.LiteralLengths, br)
	ofDec := NewFSEDecoder(&scratch.Offsets, br)
	mlDec := NewFSEDecoder(&scratch.MatchLengths, br)

	out := sequences[:0]
	for i := 0; i < hdr.NumSequences; i++ {
		ofCode := ofDec.Symbol()
		if ofCode >= 32 {
			return nil, &BitstreamCorruptionError{Component: "sequences", Reason: "offset code implausibly large"}
		}
		ofRaw := offsetCodeValue(ofCode, br.GetBits(uint(ofCode)))

		mlCode := mlDec.Symbol()
		if int(mlCode) >= len(mlCodeBaseline) {
			return nil, &BitstreamCorruptionError{Component: "sequences", Reason: "match length code out of range"}
		}
		ml := uint64(mlCodeBaseline[mlCode]) + br.GetBits(uint(mlCodeExtraBits[mlCode]))

		llCode := llDec.Symbol()
		if int(llCode) >= len(llCodeBaseline) {
			return nil, &BitstreamCorruptionError{Component: "sequences", Reason: "literal length code out of range"}
		}
		ll := uint64(llCodeBaseline[llCode]) + br.GetBits(uint(llCodeExtraBits[llCode]))

		out = append(out, Sequence{LL: uint32(ll), ML: uint32(ml), OF: uint32(ofRaw)})

		if i != hdr.NumSequences-1 {
			llDec.NextState(br)
			mlDec.NextState(br)
			ofDec.NextState(br)
		}
	}

	if br.BitsRemaining() != 0 {
		return nil, &BitstreamCorruptionError{Component: "sequences", Reason: "leftover bits after decoding sequences"}
	}
	return out, nil
}

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

// LiteralsSectionType identifies how a block's literals are encoded.
type LiteralsSectionType int

const (
	LiteralsRaw LiteralsSectionType = iota
	LiteralsRLE
	LiteralsCompressed
	LiteralsTreeless
)

// LiteralsSection is a parsed literals section header.
type LiteralsSection struct {
	Type            LiteralsSectionType
	RegeneratedSize int
	CompressedSize  int // only meaningful for Compressed/Treeless
	NumStreams      int // only meaningful for Compressed/Treeless
	HeaderSize      int // header bytes consumed, not counting the payload
}

// ParseLiteralsSectionHeader reads one of the five literals header
// variants (RFC 8478 §3.1.1.3.1.1): 1–3 bytes for Raw/RLE, 3–5 bytes for
// Compressed/Treeless, selected by the type's low 2 bits and a 2-bit
// size format.
func ParseLiteralsSectionHeader(data []byte) (LiteralsSection, error) {
	if len(data) == 0 {
		return LiteralsSection{}, &InputTruncatedError{Component: "literals-header", Wanted: 1, Got: 0}
	}
	typ := LiteralsSectionType(data[0] & 0x3)
	sizeFormat := (data[0] >> 2) & 0x3

	switch typ {
	case LiteralsRaw, LiteralsRLE:
		switch {
		case sizeFormat&1 == 0:
			return LiteralsSection{
				Type:            typ,
				RegeneratedSize: int(data[0] >> 3),
				HeaderSize:      1,
			}, nil
		case sizeFormat == 1:
			if len(data) < 2 {
				return LiteralsSection{}, &InputTruncatedError{Component: "literals-header", Wanted: 2, Got: len(data)}
			}
			return LiteralsSection{
				Type:            typ,
				RegeneratedSize: int(data[0]>>4) | int(data[1])<<4,
				HeaderSize:      2,
			}, nil
		default: // sizeFormat == 3
			if len(data) < 3 {
				return LiteralsSection{}, &InputTruncatedError{Component: "literals-header", Wanted: 3, Got: len(data)}
			}
			return LiteralsSection{
				Type:            typ,
				RegeneratedSize: int(data[0]>>4) | int(data[1])<<4 | int(data[2])<<12,
				HeaderSize:      3,
			}, nil
		}

	case LiteralsCompressed, LiteralsTreeless:
		var headerSize, sizeBits, numStreams int
		switch sizeFormat {
		case 0:
			headerSize, sizeBits, numStreams = 3, 10, 1
		case 1:
			headerSize, sizeBits, numStreams = 3, 10, 4
		case 2:
			headerSize, sizeBits, numStreams = 4, 14, 4
		default: // 3
			headerSize, sizeBits, numStreams = 5, 18, 4
		}
		if len(data) < headerSize {
			return LiteralsSection{}, &InputTruncatedError{Component: "literals-header", Wanted: headerSize, Got: len(data)}
		}
		var h uint64
		for i := 0; i < headerSize; i++ {
			h |= uint64(data[i]) << (8 * uint(i))
		}
		h >>= 4
		mask := uint64(1)<<uint(sizeBits) - 1
		return LiteralsSection{
			Type:            typ,
			RegeneratedSize: int(h & mask),
			CompressedSize:  int((h >> uint(sizeBits)) & mask),
			NumStreams:      numStreams,
			HeaderSize:      headerSize,
		}, nil
	}
	return LiteralsSection{}, &MalformedHeaderError{Component: "literals-header", Reason: "unreachable literals type"}
}

// DecodeLiterals decodes section's payload (data immediately following
// its header) into *target, appending. It returns the number of payload
// bytes consumed (not including the header).
func DecodeLiterals(section LiteralsSection, huf *HuffmanScratch, data []byte, target *[]byte) (int, error) {
	switch section.Type {
	case LiteralsRaw:
		if len(data) < section.RegeneratedSize {
			return 0, &InputTruncatedError{Component: "literals", Wanted: section.RegeneratedSize, Got: len(data)}
		}
		*target = append(*target, data[:section.RegeneratedSize]...)
		return section.RegeneratedSize, nil

	case LiteralsRLE:
		if len(data) < 1 {
			return 0, &InputTruncatedError{Component: "literals", Wanted: 1, Got: 0}
		}
		b := data[0]
		for i := 0; i < section.RegeneratedSize; i++ {
			*target = append(*target, b)
		}
		return 1, nil

	case LiteralsCompressed, LiteralsTreeless:
		return decompressLiterals(section, huf, data, target)
	}
	return 0, &MalformedHeaderError{Component: "literals", Reason: "unreachable literals type"}
}

// decompressLiterals handles the Compressed and Treeless cases: building
// (or reusing) the Huffman table, then decoding one or four
// independently bit-terminated reverse streams.
func decompressLiterals(section LiteralsSection, huf *HuffmanScratch, data []byte, target *[]byte) (int, error) {
	if len(data) < section.CompressedSize {
		return 0, &InputTruncatedError{Component: "literals", Wanted: section.CompressedSize, Got: len(data)}
	}
	payload := data[:section.CompressedSize]

	if section.Type == LiteralsCompressed {
		weights, consumed, err := decodeHuffmanWeights(payload)
		if err != nil {
			return 0, err
		}
		if err := huf.Table.Build(weights); err != nil {
			return 0, err
		}
		payload = payload[consumed:]
	} else if !huf.Table.Built() {
		return 0, &EntropyBuildError{Component: "literals", Reason: "treeless literals section with no prior Huffman table"}
	}

	before := len(*target)
	dec := NewHuffmanDecoder(&huf.Table)

	if section.NumStreams == 4 {
		if len(payload) < 6 {
			return 0, &InputTruncatedError{Component: "literals", Wanted: 6, Got: len(payload)}
		}
		jump1 := int(payload[0]) + int(payload[1])<<8
		jump2 := jump1 + int(payload[2]) + int(payload[3])<<8
		jump3 := jump2 + int(payload[4]) + int(payload[5])<<8
		payload = payload[6:]
		if jump3 > len(payload) {
			return 0, &MalformedHeaderError{Component: "literals", Reason: "4-stream jump table overruns payload"}
		}
		streams := [4][]byte{payload[:jump1], payload[jump1:jump2], payload[jump2:jump3], payload[jump3:]}
		for _, s := range streams {
			if err := decodeHuffmanStream(dec, s, target); err != nil {
				return 0, err
			}
		}
	} else {
		if err := decodeHuffmanStream(dec, payload, target); err != nil {
			return 0, err
		}
	}

	if got, want := len(*target)-before, section.RegeneratedSize; got != want {
		return 0, &LiteralCountMismatchError{Got: got, Want: want}
	}
	return section.CompressedSize, nil
}

// decodeHuffmanStream drains one independently-padded reverse bitstream,
// appending decoded symbols to target. Termination mirrors the
// predecessor's "bits_remaining > -max_num_bits" guard, without its
// unconditional debug print on every symbol.
func decodeHuffmanStream(dec *HuffmanDecoder, stream []byte, target *[]byte) error {
	br, err := NewBitReaderReversed(stream)
	if err != nil {
		return err
	}
	floor := -int(dec.table.MaxNumBits())
	for br.BitsRemaining() > floor {
		*target = append(*target, dec.DecodeSymbol(br))
	}
	return nil
}

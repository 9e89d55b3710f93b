// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

import "math/bits"

const (
	maxHuffmanTableLog     = 11
	maxHuffmanWeightSymbol = 11
)

// huffmanEntry is one row of a flat Huff0 decode table: the symbol it
// represents and how many bits its code actually occupies. Rows are
// replicated across every bit pattern that shares the code as a prefix,
// so a fixed-width table lookup always resolves to the right symbol
// regardless of the code's true (shorter) length.
type huffmanEntry struct {
	symbol  byte
	numBits uint8
}

// HuffmanTable is a built Huff0 decode table.
type HuffmanTable struct {
	decode   []huffmanEntry
	tableLog uint8
}

// Reset clears the table.
func (h *HuffmanTable) Reset() {
	h.decode = h.decode[:0]
	h.tableLog = 0
}

// Built reports whether the table currently holds a usable decode table.
func (h *HuffmanTable) Built() bool {
	return len(h.decode) > 0
}

// MaxNumBits returns the table's bit window width.
func (h *HuffmanTable) MaxNumBits() uint8 {
	return h.tableLog
}

// Build constructs the flat decode table from the explicit per-symbol
// weights carried by the Huffman header: one weight for every symbol
// except the last, whose weight is never transmitted and is instead
// derived from the Kraft-equality remainder (RFC 8478 §4.2.1). A weight
// of 0 means the symbol does not occur.
func (h *HuffmanTable) Build(explicitWeights []byte) error {
	numSymbols := len(explicitWeights) + 1
	if numSymbols > maxFSESymbolValue+1 {
		return &EntropyBuildError{Component: "huff0", Reason: "too many symbols"}
	}
	weights := make([]byte, numSymbols)
	copy(weights, explicitWeights)

	var weightTotal uint32
	for _, w := range explicitWeights {
		if w > 0 {
			weightTotal += 1 << (w - 1)
		}
	}
	if weightTotal == 0 {
		return &EntropyBuildError{Component: "huff0", Reason: "all explicit weights are zero"}
	}
	tableLog := uint8(bits.Len32(weightTotal))
	if tableLog > maxHuffmanTableLog {
		return &EntropyBuildError{Component: "huff0", Reason: "table log exceeds maximum"}
	}
	total := uint32(1) << tableLog
	rest := total - weightTotal
	lastWeight := uint8(bits.Len32(rest))
	if rest != uint32(1)<<(lastWeight-1) {
		return &EntropyBuildError{Component: "huff0", Reason: "derived last weight is not a clean power of two"}
	}
	weights[numSymbols-1] = lastWeight

	var rankCount [maxHuffmanTableLog + 2]uint32
	for _, w := range weights {
		rankCount[w]++
	}

	tableSize := uint32(1) << tableLog
	if cap(h.decode) < int(tableSize) {
		h.decode = make([]huffmanEntry, tableSize)
	} else {
		h.decode = h.decode[:tableSize]
	}

	var rankVal [maxHuffmanTableLog + 2]uint32
	next := uint32(0)
	for w := uint8(1); w <= tableLog; w++ {
		rankVal[w] = next
		next += rankCount[w] << (w - 1)
	}

	for sym, w := range weights {
		if w == 0 {
			continue
		}
		numBits := tableLog + 1 - w
		count := uint32(1) << (w - 1)
		start := rankVal[w]
		entry := huffmanEntry{symbol: byte(sym), numBits: numBits}
		for i := uint32(0); i < count; i++ {
			h.decode[start+i] = entry
		}
		rankVal[w] += count
	}

	h.tableLog = tableLog
	return nil
}

// decodeHuffmanWeights parses the Huffman header and the weight stream
// that follows it, returning the explicit per-symbol weights (excluding
// the derived last symbol) and the number of header bytes consumed.
//
// header < 128: the weights are themselves FSE-compressed; header is the
// byte length of that compressed stream. The stream opens with a
// forward-read normalized-count header (readNormalizedCount), and the
// remainder is a reverse bitstream decoded with two interleaved FSE
// states until the stream runs dry — the same termination discipline
// literals.go uses for the single-stream Huffman-coded case.
//
// header >= 128: the weights are given directly as 4-bit nibbles,
// high nibble first, for header-127 symbols.
func decodeHuffmanWeights(data []byte) (weights []byte, consumed int, err error) {
	if len(data) == 0 {
		return nil, 0, &InputTruncatedError{Component: "huff0-weights", Wanted: 1, Got: 0}
	}
	header := data[0]
	rest := data[1:]

	if header >= 128 {
		nbSymbols := int(header) - 127
		nbBytes := (nbSymbols + 1) / 2
		if len(rest) < nbBytes {
			return nil, 0, &InputTruncatedError{Component: "huff0-weights", Wanted: nbBytes, Got: len(rest)}
		}
		weights = make([]byte, nbSymbols)
		for i := 0; i < nbSymbols; i++ {
			b := rest[i/2]
			if i%2 == 0 {
				weights[i] = b >> 4
			} else {
				weights[i] = b & 0xF
			}
		}
		return weights, 1 + nbBytes, nil
	}

	streamLen := int(header)
	if len(rest) < streamLen {
		return nil, 0, &InputTruncatedError{Component: "huff0-weights", Wanted: streamLen, Got: len(rest)}
	}
	stream := rest[:streamLen]

	accuracyLog, norm, hdrConsumed, err := readNormalizedCount(stream, maxHuffmanWeightSymbol)
	if err != nil {
		return nil, 0, err
	}
	if accuracyLog > maxAccuracyLogHuffmanWeights {
		return nil, 0, &EntropyBuildError{Component: "huff0-weights", Reason: "accuracy log exceeds 6"}
	}
	table := &FSETable{}
	if err := table.Build(accuracyLog, norm); err != nil {
		return nil, 0, err
	}

	br, err := NewBitReaderReversed(stream[hdrConsumed:])
	if err != nil {
		return nil, 0, err
	}
	state1 := NewFSEDecoder(table, br)
	state2 := NewFSEDecoder(table, br)

	floor := -int(accuracyLog)
	for {
		if br.BitsRemaining() <= floor || len(weights) >= maxFSESymbolValue {
			break
		}
		weights = append(weights, state1.Symbol())
		state1.NextState(br)

		if br.BitsRemaining() <= floor || len(weights) >= maxFSESymbolValue {
			break
		}
		weights = append(weights, state2.Symbol())
		state2.NextState(br)
	}

	return weights, 1 + streamLen, nil
}

// HuffmanDecoder emits symbols from a reverse bitstream by peeking a
// fixed-width window and letting the table reveal how many bits the
// matched code actually used.
type HuffmanDecoder struct {
	table *HuffmanTable
}

// NewHuffmanDecoder returns a decoder bound to table.
func NewHuffmanDecoder(table *HuffmanTable) *HuffmanDecoder {
	return &HuffmanDecoder{table: table}
}

// DecodeSymbol reads one symbol from br, advancing it by the matched
// code's length.
func (d *HuffmanDecoder) DecodeSymbol(br *BitReaderReversed) byte {
	entry := d.table.decode[br.PeekBits(uint(d.table.tableLog))]
	br.Advance(uint(entry.numBits))
	return entry.symbol
}

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

import "math/bits"

// Accuracy log ceilings per RFC 8478 §4.1.1.
const (
	MaxAccuracyLogLL = 9
	MaxAccuracyLogOF = 8
	MaxAccuracyLogML = 9

	maxAccuracyLogHuffmanWeights = 6
	maxFSESymbolValue            = 255
)

// FSEEntry is one row of a built FSE decoding table: the symbol it emits
// and the parameters for transitioning to the next state.
type FSEEntry struct {
	Symbol   byte
	NumBits  uint8
	BaseLine uint16
}

// FSETable is a built Finite State Entropy decoding table: Decode has
// 2^AccuracyLog rows.
type FSETable struct {
	Decode      []FSEEntry
	AccuracyLog uint8

	// scratch retained across builds to amortize allocation, mirroring the
	// teacher's "reuse the scratch buffers" discipline (block_decoder.rs /
	// DecoderScratch).
	symbolNext [maxFSESymbolValue + 1]uint32
}

// Reset clears the table so a future Repeat-mode reference fails loudly
// instead of silently reusing stale rows.
func (t *FSETable) Reset() {
	t.Decode = t.Decode[:0]
	t.AccuracyLog = 0
}

// Built reports whether the table currently holds a usable decoding table.
func (t *FSETable) Built() bool {
	return len(t.Decode) > 0
}

// tableStep is the canonical FSE spreading step for a table of the given
// size, per RFC 8478 §4.1.1.
func tableStep(tableSize uint32) uint32 {
	return (tableSize >> 1) + (tableSize >> 3) + 3
}

// Build constructs the decoding table from an accuracy log and a
// normalized probability distribution, where norm[i] == -1 marks a
// low-probability symbol (one slot, placed from the top of the table
// down) and norm[i] == 0 marks an absent symbol.
func (t *FSETable) Build(accuracyLog uint8, norm []int32) error {
	if accuracyLog == 0 || int(accuracyLog) > 63 {
		return &EntropyBuildError{Component: "fse", Reason: "invalid accuracy log"}
	}
	tableSize := uint32(1) << accuracyLog
	if cap(t.Decode) < int(tableSize) {
		t.Decode = make([]FSEEntry, tableSize)
	} else {
		t.Decode = t.Decode[:tableSize]
	}

	highThreshold := tableSize - 1

	// Place low-probability symbols from the top of the table downward.
	for sym, p := range norm {
		if p == -1 {
			t.Decode[highThreshold].Symbol = byte(sym)
			highThreshold--
		}
	}

	// Spread the remaining symbols using the canonical recurrence.
	mask := tableSize - 1
	step := tableStep(tableSize)
	pos := uint32(0)
	for sym, p := range norm {
		if p <= 0 {
			continue
		}
		for i := int32(0); i < p; i++ {
			t.Decode[pos].Symbol = byte(sym)
			pos = (pos + step) & mask
			for pos > highThreshold {
				pos = (pos + step) & mask
			}
		}
	}
	if pos != 0 {
		return &EntropyBuildError{Component: "fse", Reason: "position did not return to zero after spreading"}
	}

	// Assign num_bits/base_line per symbol occurrence, in table order.
	next := t.symbolNext[:len(norm)]
	for sym, p := range norm {
		if p == -1 {
			next[sym] = 1
		} else if p >= 0 {
			next[sym] = uint32(p)
		}
	}
	for u := range t.Decode {
		sym := t.Decode[u].Symbol
		n := next[sym]
		next[sym] = n + 1
		numBits := accuracyLog - uint8(bits.Len32(n)-1)
		t.Decode[u].NumBits = numBits
		newState := (n << numBits) - tableSize
		t.Decode[u].BaseLine = uint16(newState)
	}

	t.AccuracyLog = accuracyLog
	return nil
}

// BuildRLE configures the table as a single-symbol (RLE) table: every
// state always emits symbol with zero bits consumed.
func (t *FSETable) BuildRLE(symbol byte) {
	if cap(t.Decode) < 1 {
		t.Decode = make([]FSEEntry, 1)
	} else {
		t.Decode = t.Decode[:1]
	}
	t.Decode[0] = FSEEntry{Symbol: symbol, NumBits: 0, BaseLine: 0}
	t.AccuracyLog = 0
}

// FSEDecoder is a stateful symbol emitter driven by a reverse bit reader,
// borrowing a built FSETable.
type FSEDecoder struct {
	table *FSETable
	state FSEEntry
}

// NewFSEDecoder initializes decoding state by reading AccuracyLog bits
// from br as the initial table row index.
func NewFSEDecoder(table *FSETable, br *BitReaderReversed) *FSEDecoder {
	idx := br.GetBits(uint(table.AccuracyLog))
	return &FSEDecoder{table: table, state: table.Decode[idx]}
}

// Symbol returns the symbol for the decoder's current state without
// advancing it.
func (d *FSEDecoder) Symbol() byte {
	return d.state.Symbol
}

// NextState reads the current state's NumBits from br and transitions to
// BaseLine+bits.
func (d *FSEDecoder) NextState(br *BitReaderReversed) {
	bits := br.GetBits(uint(d.state.NumBits))
	d.state = d.table.Decode[uint32(d.state.BaseLine)+uint32(bits)]
}

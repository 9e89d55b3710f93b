// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

import "testing"

func TestHuffmanTableBuildTwoSymbolEqualWeight(t *testing.T) {
	// Two symbols, equal weight 1: the Kraft remainder forces the derived
	// last weight to also be 1, giving a 2-row table log(2)=1, one bit per
	// symbol.
	table := &HuffmanTable{}
	if err := table.Build([]byte{1}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got, want := table.MaxNumBits(), uint8(1); got != want {
		t.Fatalf("MaxNumBits = %d, want %d", got, want)
	}
	if got, want := len(table.decode), 2; got != want {
		t.Fatalf("table size = %d, want %d", got, want)
	}
	for _, row := range table.decode {
		if row.numBits != 1 {
			t.Errorf("row = %+v, want numBits 1", row)
		}
	}
}

func TestHuffmanTableBuildRejectsAllZeroWeights(t *testing.T) {
	table := &HuffmanTable{}
	if err := table.Build([]byte{0, 0, 0}); err == nil {
		t.Fatal("expected error for all-zero explicit weights")
	}
}

func TestDecodeHuffmanWeightsDirectMode(t *testing.T) {
	// header = 127 + 3 symbols explicit -> direct mode, 3 symbols packed
	// into 2 bytes (high nibble first), weights {4, 2}, {1, padding}.
	data := []byte{127 + 3, 0x42, 0x10}
	weights, consumed, err := decodeHuffmanWeights(data)
	if err != nil {
		t.Fatalf("decodeHuffmanWeights: %v", err)
	}
	want := []byte{4, 2, 1}
	if len(weights) != len(want) {
		t.Fatalf("weights = %v, want %v", weights, want)
	}
	for i := range want {
		if weights[i] != want[i] {
			t.Errorf("weights[%d] = %d, want %d", i, weights[i], want[i])
		}
	}
	if got, want := consumed, 1+2; got != want {
		t.Errorf("consumed = %d, want %d", got, want)
	}
}

func TestHuffmanDecoderRoundTripsThroughFlatTable(t *testing.T) {
	table := &HuffmanTable{}
	if err := table.Build([]byte{1}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	dec := NewHuffmanDecoder(table)
	// One bit stream, plus the padding marker bit.
	br, err := NewBitReaderReversed([]byte{0x02})
	if err != nil {
		t.Fatalf("NewBitReaderReversed: %v", err)
	}
	sym := dec.DecodeSymbol(br)
	if sym != table.decode[0].symbol && sym != table.decode[1].symbol {
		t.Errorf("decoded symbol %d not in table", sym)
	}
}

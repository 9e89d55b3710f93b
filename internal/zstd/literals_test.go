// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

import "testing"

func TestParseLiteralsSectionHeaderRawOneByte(t *testing.T) {
	// type=Raw(0), size_format=0, regenerated_size=10 -> byte = 10<<3 | 0
	data := []byte{10 << 3}
	sec, err := ParseLiteralsSectionHeader(data)
	if err != nil {
		t.Fatalf("ParseLiteralsSectionHeader: %v", err)
	}
	if sec.Type != LiteralsRaw || sec.RegeneratedSize != 10 || sec.HeaderSize != 1 {
		t.Fatalf("got %+v", sec)
	}
}

func TestParseLiteralsSectionHeaderRLETwoByte(t *testing.T) {
	// type=RLE(1), size_format=1 -> byte0 low nibble = 1 | 1<<2 = 0x05,
	// regenerated_size=300 (12 bits): low4 = 300&0xF=12, high8=300>>4=18
	size := 300
	b0 := byte(1) | byte(1)<<2 | byte(size&0xF)<<4
	b1 := byte(size >> 4)
	sec, err := ParseLiteralsSectionHeader([]byte{b0, b1})
	if err != nil {
		t.Fatalf("ParseLiteralsSectionHeader: %v", err)
	}
	if sec.Type != LiteralsRLE || sec.RegeneratedSize != size || sec.HeaderSize != 2 {
		t.Fatalf("got %+v, want size %d", sec, size)
	}
}

func TestParseLiteralsSectionHeaderCompressedFourStream(t *testing.T) {
	// type=Compressed(2), size_format=1 -> 4 streams, 3-byte header,
	// 10-bit regenerated_size and compressed_size.
	regen, comp := 500, 200
	b0 := byte(2) | byte(1)<<2 | byte(regen&0xF)<<4
	rest := uint64(regen>>4) | uint64(comp)<<6
	b1 := byte(rest)
	b2 := byte(rest >> 8)
	sec, err := ParseLiteralsSectionHeader([]byte{b0, b1, b2})
	if err != nil {
		t.Fatalf("ParseLiteralsSectionHeader: %v", err)
	}
	if sec.Type != LiteralsCompressed || sec.NumStreams != 4 || sec.HeaderSize != 3 {
		t.Fatalf("got %+v", sec)
	}
	if sec.RegeneratedSize != regen || sec.CompressedSize != comp {
		t.Fatalf("got regen=%d comp=%d, want %d %d", sec.RegeneratedSize, sec.CompressedSize, regen, comp)
	}
}

func TestDecodeLiteralsRaw(t *testing.T) {
	sec := LiteralsSection{Type: LiteralsRaw, RegeneratedSize: 3}
	var target []byte
	n, err := DecodeLiterals(sec, &HuffmanScratch{}, []byte{1, 2, 3, 4}, &target)
	if err != nil {
		t.Fatalf("DecodeLiterals: %v", err)
	}
	if n != 3 || len(target) != 3 {
		t.Fatalf("n=%d target=%v", n, target)
	}
}

func TestDecodeLiteralsRLE(t *testing.T) {
	sec := LiteralsSection{Type: LiteralsRLE, RegeneratedSize: 5}
	var target []byte
	n, err := DecodeLiterals(sec, &HuffmanScratch{}, []byte{0x42}, &target)
	if err != nil {
		t.Fatalf("DecodeLiterals: %v", err)
	}
	if n != 1 || len(target) != 5 {
		t.Fatalf("n=%d target=%v", n, target)
	}
	for _, b := range target {
		if b != 0x42 {
			t.Errorf("got %x, want 0x42", b)
		}
	}
}

func TestDecodeLiteralsTreelessWithoutPriorTableFails(t *testing.T) {
	sec := LiteralsSection{Type: LiteralsTreeless, RegeneratedSize: 1, CompressedSize: 1, NumStreams: 1}
	var target []byte
	if _, err := DecodeLiterals(sec, &HuffmanScratch{}, []byte{0x01}, &target); err == nil {
		t.Fatal("expected error for treeless literals with no prior table")
	}
}

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

import "testing"

func TestBlockDecoderReadsRawHeader(t *testing.T) {
	// last=1, type=Raw(0), size=6 -> byte0 = 1 | 0<<1 | (6&0x1F)<<3
	data := []byte{byte(1 | 6<<3), 0, 0}
	d := NewBlockDecoder()
	n, err := d.ReadBlockHeader(data)
	if err != nil {
		t.Fatalf("ReadBlockHeader: %v", err)
	}
	if n != 3 || !d.header.Last || d.header.Type != BlockRaw || d.header.ContentSize != 6 {
		t.Fatalf("got %+v", d.header)
	}
}

func TestBlockDecoderRejectsReservedType(t *testing.T) {
	data := []byte{byte(1 | 3<<1), 0, 0}
	d := NewBlockDecoder()
	if _, err := d.ReadBlockHeader(data); err == nil {
		t.Fatal("expected error for reserved block type")
	}
	if !d.Failed() {
		t.Fatal("expected decoder to enter Failed state")
	}
	if _, err := d.ReadBlockHeader(data); err == nil {
		t.Fatal("expected Failed state to remain absorbing")
	}
}

func TestBlockDecoderRejectsOversizedBlock(t *testing.T) {
	size := uint32(MaxBlockSize + 1)
	b0 := byte((size&0x1F)<<3) | 0 // not last, type Raw
	b1 := byte(size >> 5)
	b2 := byte(size >> 13)
	d := NewBlockDecoder()
	if _, err := d.ReadBlockHeader([]byte{b0, b1, b2}); err == nil {
		t.Fatal("expected error for oversized block")
	}
	if !d.Failed() {
		t.Fatal("expected decoder to enter Failed state")
	}
}

func TestBlockDecoderRawRoundTrip(t *testing.T) {
	d := NewBlockDecoder()
	data := []byte{byte(1 | 6<<3), 0, 0, 'f', 'o', 'o', 'b', 'a', 'r'}
	n, err := d.ReadBlockHeader(data)
	if err != nil {
		t.Fatalf("ReadBlockHeader: %v", err)
	}

	scratch := NewDecoderScratch(1 << 20)
	if err := d.DecodeBlockContent(data[n:], scratch, 1<<20); err != nil {
		t.Fatalf("DecodeBlockContent: %v", err)
	}

	out := make([]byte, scratch.Buffer.CanDrainAll())
	scratch.Buffer.DrainAll(out)
	if string(out) != "foobar" {
		t.Fatalf("got %q, want %q", out, "foobar")
	}
}

func TestBlockDecoderRLERoundTrip(t *testing.T) {
	d := NewBlockDecoder()
	// last=1, type=RLE(1), size=5
	header := []byte{byte(1 | 1<<1 | 5<<3), 0, 0}
	if _, err := d.ReadBlockHeader(header); err != nil {
		t.Fatalf("ReadBlockHeader: %v", err)
	}
	if d.header.DecompressedSize != 5 || d.header.ContentSize != 1 {
		t.Fatalf("got %+v", d.header)
	}

	body := []byte{0x41}
	scratch := NewDecoderScratch(1 << 20)
	if err := d.DecodeBlockContent(body, scratch, 1<<20); err != nil {
		t.Fatalf("DecodeBlockContent: %v", err)
	}
	out := make([]byte, scratch.Buffer.CanDrainAll())
	scratch.Buffer.DrainAll(out)
	if string(out) != "AAAAA" {
		t.Fatalf("got %q, want %q", out, "AAAAA")
	}
}

func TestBlockDecoderRawRejectsSizeAboveWindow(t *testing.T) {
	d := NewBlockDecoder()
	data := []byte{byte(1 | 6<<3), 0, 0, 'f', 'o', 'o', 'b', 'a', 'r'}
	n, err := d.ReadBlockHeader(data)
	if err != nil {
		t.Fatalf("ReadBlockHeader: %v", err)
	}

	scratch := NewDecoderScratch(1 << 20)
	if err := d.DecodeBlockContent(data[n:], scratch, 4); err == nil {
		t.Fatal("expected error for raw block exceeding window size")
	}
	if !d.Failed() {
		t.Fatal("expected decoder to enter Failed state")
	}
}

func TestBlockDecoderRLERejectsSizeAboveWindow(t *testing.T) {
	d := NewBlockDecoder()
	header := []byte{byte(1 | 1<<1 | 5<<3), 0, 0}
	if _, err := d.ReadBlockHeader(header); err != nil {
		t.Fatalf("ReadBlockHeader: %v", err)
	}

	scratch := NewDecoderScratch(1 << 20)
	if err := d.DecodeBlockContent([]byte{0x41}, scratch, 4); err == nil {
		t.Fatal("expected error for RLE block exceeding window size")
	}
	if !d.Failed() {
		t.Fatal("expected decoder to enter Failed state")
	}
}

func TestBlockDecoderCompressedRejectsOutputAboveWindow(t *testing.T) {
	// Literals section: Raw, regenerated_size=1, body "a", followed by a
	// sequences header of 0 (no sequences), so the block's whole output is
	// its one literal byte. It fits a 1-byte window and not a 0-byte one.
	d := NewBlockDecoder()
	litHeader := byte(1 << 3) // Raw, size_format 0, regenerated_size=1
	body := []byte{litHeader, 'a', 0x00}
	contentSize := len(body)
	blockHeader := []byte{
		byte(1 | 2<<1 | byte(contentSize&0x1F)<<3),
		byte(contentSize >> 5),
		byte(contentSize >> 13),
	}
	if _, err := d.ReadBlockHeader(blockHeader); err != nil {
		t.Fatalf("ReadBlockHeader: %v", err)
	}

	scratch := NewDecoderScratch(1 << 20)
	// A single literal byte decoded against a 1-byte window must succeed...
	if err := d.DecodeBlockContent(body, scratch, 1); err != nil {
		t.Fatalf("DecodeBlockContent: %v", err)
	}
	// ...but decoding the same block's literals-only path with a window of
	// 0 must fail: the block has to produce at least its 1 regenerated
	// literal byte, which already exceeds min(window, 128 KiB) = 0.
	d2 := NewBlockDecoder()
	if _, err := d2.ReadBlockHeader(blockHeader); err != nil {
		t.Fatalf("ReadBlockHeader: %v", err)
	}
	scratch2 := NewDecoderScratch(1 << 20)
	if err := d2.DecodeBlockContent(body, scratch2, 0); err == nil {
		t.Fatal("expected error for compressed block output exceeding window size")
	}
	if !d2.Failed() {
		t.Fatal("expected decoder to enter Failed state")
	}
}

func TestBlockDecoderBodyBeforeHeaderFails(t *testing.T) {
	d := NewBlockDecoder()
	scratch := NewDecoderScratch(1 << 20)
	if err := d.DecodeBlockContent([]byte{0}, scratch, 1<<20); err == nil {
		t.Fatal("expected error for body decode with no header read")
	}
	if !d.Failed() {
		t.Fatal("expected Failed state")
	}
}

func TestBlockDecoderCompressedZeroSequencesIsLiteralsOnly(t *testing.T) {
	d := NewBlockDecoder()
	// Literals: Raw, size_format 0, regenerated_size=3 -> header byte =
	// type(Raw=0)|sizeFormat(0)<<2|3<<3
	litHeader := byte(3 << 3)
	body := []byte{litHeader, 'a', 'b', 'c', 0x00} // sequences header byte 0 -> zero sequences
	contentSize := len(body)

	blockHeader := []byte{
		byte(1 | 2<<1 | byte(contentSize&0x1F)<<3),
		byte(contentSize >> 5),
		byte(contentSize >> 13),
	}
	n, err := d.ReadBlockHeader(blockHeader)
	if err != nil {
		t.Fatalf("ReadBlockHeader: %v", err)
	}
	_ = n

	scratch := NewDecoderScratch(1 << 20)
	if err := d.DecodeBlockContent(body, scratch, 1<<20); err != nil {
		t.Fatalf("DecodeBlockContent: %v", err)
	}
	out := make([]byte, scratch.Buffer.CanDrainAll())
	scratch.Buffer.DrainAll(out)
	if string(out) != "abc" {
		t.Fatalf("got %q, want %q", out, "abc")
	}
}

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstdcore

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestNewReaderSingleFrame(t *testing.T) {
	frame := buildFrame([]byte("hello, zstd"), false)
	rd := NewReader(bytes.NewReader(frame))
	got, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello, zstd" {
		t.Fatalf("got %q, want %q", got, "hello, zstd")
	}
}

func TestNewReaderMultiFrameConcatenation(t *testing.T) {
	var input bytes.Buffer
	input.Write(buildFrame([]byte("frame one "), true))
	input.Write(buildFrame([]byte("frame two"), true))

	rd := NewReader(&input)
	got, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "frame one frame two" {
		t.Fatalf("got %q, want %q", got, "frame one frame two")
	}
}

func TestNewReaderWithLeadingSkippableFrame(t *testing.T) {
	var input bytes.Buffer
	input.Write(buildSkippableFrame(0x184D2A55, []byte("metadata, not content")))
	input.Write(buildFrame([]byte("real content"), false))

	rd := NewReader(&input)
	got, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "real content" {
		t.Fatalf("got %q, want %q", got, "real content")
	}
}

func TestNewReaderChecksumMismatchSurfacesError(t *testing.T) {
	data := []byte("tamper with me")
	frame := buildFrame(data, true)
	// Flip every bit of the trailing checksum's last byte.
	frame[len(frame)-1] ^= 0xFF

	rd := NewReader(bytes.NewReader(frame))
	_, err := io.ReadAll(rd)
	if err == nil {
		t.Fatal("expected a checksum mismatch error")
	}
	if _, ok := err.(*ChecksumMismatchError); !ok {
		t.Fatalf("got %T, want *ChecksumMismatchError", err)
	}
}

// buildLargeFrame constructs a single-segment standard frame whose
// content size needs the 2-byte fcs encoding, for payloads too big for
// buildFrame's 1-byte field.
func buildLargeFrame(data []byte) []byte {
	var buf bytes.Buffer
	magic := make([]byte, 4)
	binary.LittleEndian.PutUint32(magic, FrameMagic)
	buf.Write(magic)

	buf.WriteByte(0x20 | 0x40) // single segment, fcs_flag=1 (2-byte field)
	fcs := make([]byte, 2)
	binary.LittleEndian.PutUint16(fcs, uint16(len(data)-256))
	buf.Write(fcs)

	buf.Write(rawBlockHeader(true, len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestNewReaderDoesNotTruncateFrameLargerThanReadBuffer(t *testing.T) {
	data := bytes.Repeat([]byte("zstdcore-regression-"), 250) // 5000 bytes
	frame := buildLargeFrame(data)

	rd := NewReader(bytes.NewReader(frame))
	got, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("got %d bytes, want %d", len(got), len(data))
	}
	if !bytes.Equal(got, data) {
		t.Fatal("decoded content does not match input")
	}
}

func TestNewReaderVerboseOptionDoesNotAffectOutput(t *testing.T) {
	frame := buildFrame([]byte("verbose check"), false)
	rd := NewReader(bytes.NewReader(frame), WithVerbose(true))
	got, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "verbose check" {
		t.Fatalf("got %q, want %q", got, "verbose check")
	}
}

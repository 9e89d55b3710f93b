// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

import "testing"

// TestExecuteSequencesRepeatLastByte exercises the documented end-to-end
// scenario: literals "hello" followed by one sequence {ll=5, ml=5,
// of_raw=4}. of_raw=4 resolves to actual offset 1 (of_raw-3), a
// self-overlapping back-reference one byte behind the write cursor —
// the RLE-style case the design notes call out, which replicates the
// single preceding byte ('o') across the whole match rather than
// reproducing "hello" a second time.
func TestExecuteSequencesRepeatLastByte(t *testing.T) {
	literals := []byte("hello")
	sequences := []Sequence{{LL: 5, ML: 5, OF: 4}}
	history := [3]uint32{1, 4, 8}
	buf := NewDecodeBuffer(1 << 20)

	if err := ExecuteSequences(sequences, literals, &history, buf, 1<<20); err != nil {
		t.Fatalf("ExecuteSequences: %v", err)
	}

	out := make([]byte, buf.CanDrainAll())
	buf.DrainAll(out)
	if got, want := string(out), "helloooooo"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if history[0] != 1 {
		t.Fatalf("history[0] = %d, want 1", history[0])
	}
}

func TestExecuteSequencesNoSequencesCopiesLiteralsVerbatim(t *testing.T) {
	literals := []byte("just literals")
	history := [3]uint32{1, 4, 8}
	buf := NewDecodeBuffer(1 << 20)

	if err := ExecuteSequences(nil, literals, &history, buf, 1<<20); err != nil {
		t.Fatalf("ExecuteSequences: %v", err)
	}
	out := make([]byte, buf.CanDrainAll())
	buf.DrainAll(out)
	if string(out) != "just literals" {
		t.Fatalf("got %q", out)
	}
}

func TestExecuteSequencesRepeatOffsetReuse(t *testing.T) {
	// First sequence: of_raw=10 -> actual 7, pushed to history front.
	// Second sequence: of_raw=1, ll>0 -> reuses offset 7 unchanged.
	literals := []byte("abcdefghijklmnopqrstuvwxyz")
	sequences := []Sequence{
		{LL: 10, ML: 3, OF: 10},
		{LL: 5, ML: 2, OF: 1},
	}
	history := [3]uint32{1, 4, 8}
	buf := NewDecodeBuffer(1 << 20)

	if err := ExecuteSequences(sequences, literals, &history, buf, 1<<20); err != nil {
		t.Fatalf("ExecuteSequences: %v", err)
	}
	if history[0] != 7 {
		t.Fatalf("history[0] = %d, want 7 (reused)", history[0])
	}
}

func TestExecuteSequencesRepeatOffsetIdx4Underflow(t *testing.T) {
	// ll==0 bumps of_raw=3 to index 4, which resolves to o1-1; with
	// o1==1 that underflows and must be reported as corruption.
	literals := []byte("")
	sequences := []Sequence{{LL: 0, ML: 1, OF: 3}}
	history := [3]uint32{1, 4, 8}
	buf := NewDecodeBuffer(1 << 20)

	err := ExecuteSequences(sequences, literals, &history, buf, 1<<20)
	if err == nil {
		t.Fatal("expected underflow error")
	}
	if _, ok := err.(*BitstreamCorruptionError); !ok {
		t.Fatalf("got %T, want *BitstreamCorruptionError", err)
	}
}

func TestExecuteSequencesRejectsLiteralShortfall(t *testing.T) {
	literals := []byte("ab")
	sequences := []Sequence{{LL: 5, ML: 1, OF: 4}}
	history := [3]uint32{1, 4, 8}
	buf := NewDecodeBuffer(1 << 20)

	err := ExecuteSequences(sequences, literals, &history, buf, 1<<20)
	if _, ok := err.(*LiteralCountMismatchError); !ok {
		t.Fatalf("got %v (%T), want *LiteralCountMismatchError", err, err)
	}
}

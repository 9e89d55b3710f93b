// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

// ExecuteSequences replays a decoded sequence list against literals
// (consumed left to right) and the rotating 3-entry repeat-offset
// history, appending output to buf. Any literals left over after the
// last sequence are appended verbatim — the only path taken at all when
// there are no sequences.
func ExecuteSequences(sequences []Sequence, literals []byte, history *[3]uint32, buf *DecodeBuffer, windowSize int) error {
	pos := 0
	for _, seq := range sequences {
		actual, err := resolveOffset(seq.OF, seq.LL, history)
		if err != nil {
			return err
		}

		ll := int(seq.LL)
		if ll > len(literals)-pos {
			return &LiteralCountMismatchError{Got: len(literals) - pos, Want: ll}
		}
		buf.PushLiterals(literals[pos : pos+ll])
		pos += ll

		if actual == 0 || int(actual) > buf.Len()+windowSize {
			return &OffsetOutOfRangeError{Offset: int(actual), Position: buf.Len(), Window: windowSize}
		}
		if err := buf.CopyMatch(int(actual), int(seq.ML)); err != nil {
			return err
		}
	}
	buf.PushLiterals(literals[pos:])
	return nil
}

// resolveOffset turns a sequence's raw offset code into an absolute
// back-reference distance, updating history in place per RFC 8478
// §3.1.1.4's repeat-offset rules.
//
// ofRaw > 3 carries an explicit new offset. ofRaw in {1,2,3} selects one
// of the three history slots directly — except when the literal length
// is zero, in which case the index is bumped by one (a quirk of the
// format: a zero-length literal run means the encoder couldn't use
// offset slot 1, since that would be a no-op repeat of the immediately
// preceding match). Index 4 (only reachable via that bump, from raw
// offset 3) uses o1-1, a synthetic fourth repeat offset, and must not
// underflow.
func resolveOffset(ofRaw, ll uint32, history *[3]uint32) (uint32, error) {
	if ofRaw > 3 {
		actual := ofRaw - 3
		history[2] = history[1]
		history[1] = history[0]
		history[0] = actual
		return actual, nil
	}

	idx := ofRaw
	if ll == 0 {
		idx++
	}

	switch idx {
	case 1:
		return history[0], nil
	case 2:
		actual := history[1]
		history[1] = history[0]
		history[0] = actual
		return actual, nil
	case 3:
		actual := history[2]
		history[2] = history[1]
		history[1] = history[0]
		history[0] = actual
		return actual, nil
	case 4:
		if history[0] < 2 {
			return 0, &BitstreamCorruptionError{Component: "sequence-executor", Reason: "repeat offset index 4 (o1-1) underflowed"}
		}
		actual := history[0] - 1
		history[2] = history[1]
		history[1] = history[0]
		history[0] = actual
		return actual, nil
	}
	return 0, &BitstreamCorruptionError{Component: "sequence-executor", Reason: "offset code resolved to an impossible index"}
}

// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package zstd

// Predefined distributions for the three sequence tables, RFC 8478
// §3.1.1.3.2.2.1. Transcribed from the reference normalized-count
// constants (original_source/src/block/sequence_section.rs carries the
// literal-length table under LITERALS_LENGTH_DEFAULT_DISTRIBUTION; the
// match-length and offset tables are its siblings, not present in the
// excerpted source, and are reproduced here from the same RFC table).
var (
	llDefaultDistribution = []int32{
		4, 3, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1,
		2, 2, 2, 2, 2, 2, 2, 2, 2, 3, 2, 1, 1, 1, 1, 1,
		-1, -1, -1, -1,
	}

	mlDefaultDistribution = []int32{
		1, 4, 3, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, -1,
		-1, -1, -1, -1, -1,
	}

	ofDefaultDistribution = []int32{
		1, 1, 1, 1, 1, 1, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1,
		-1, -1, -1, -1, -1,
	}
)

const (
	llDefaultAccuracyLog = 6
	mlDefaultAccuracyLog = 6
	ofDefaultAccuracyLog = 5

	maxLiteralLengthCode = 35
	maxMatchLengthCode   = 52
	maxOffsetCode        = 31 // generous upper bound; actual max is window-size dependent
)

// llCodeBaseline / llCodeExtraBits give the value and extra-bit count for
// each literal-length code (RFC 8478 §3.1.1.3.2.1.1).
var llCodeBaseline = [36]uint32{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	16, 18, 20, 22, 24, 28, 32, 40, 48, 64, 128, 256, 512, 1024, 2048, 4096,
	8192, 16384, 32768, 65536,
}

var llCodeExtraBits = [36]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 2, 2, 3, 3, 4, 6, 7, 8, 9, 10, 11, 12,
	13, 14, 15, 16,
}

// mlCodeBaseline / mlCodeExtraBits give the value and extra-bit count for
// each match-length code (RFC 8478 §3.1.1.3.2.1.3). Match lengths are
// offset by 3 (the minimum match).
var mlCodeBaseline = [53]uint32{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18,
	19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 33, 34,
	35, 37, 39, 41, 43, 47, 51, 59, 67, 83, 99, 131, 259, 515, 1027, 2051,
	4099, 8195, 16387, 32771, 65539,
}

var mlCodeExtraBits = [53]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 2, 2, 3, 3, 4, 4, 5, 7, 8, 9, 10, 11,
	12, 13, 14, 15, 16,
}

// offsetCodeValue computes the raw offset value for an offset code: the
// code doubles as its own extra-bit count, with baseline 1<<code (RFC
// 8478 §3.1.1.3.2.1.2).
func offsetCodeValue(code uint8, extra uint64) uint64 {
	return (uint64(1) << code) + extra
}

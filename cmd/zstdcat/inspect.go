// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"
	"github.com/cosnicolaou/zstdcore"
)

// inspectFile walks name's frames, printing each header's fields. Each
// frame's blocks are still decoded (and its checksum verified) to reach
// the next frame, but the decoded content is discarded. It stops at the
// first frame that fails to parse (a real decompression would report the
// same error), and treats a clean end of input as the end of the
// concatenation.
func inspectFile(ctx context.Context, name string) error {
	rd, _, readerCleanup, err := openFileOrURL(ctx, name)
	if err != nil {
		return err
	}
	defer readerCleanup(ctx)

	idx := 0
	for {
		fd := zstdcore.NewFrameDecoder()
		if err := fd.Init(rd); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("%v: frame %d: %w", name, idx, err)
		}
		fmt.Printf("%v frame %d: %v\n", name, idx, fd.Header())

		if _, err := fd.DecodeBlocks(rd, zstdcore.DecodeAllBlocks()); err != nil {
			return fmt.Errorf("%v: frame %d: %w", name, idx, err)
		}

		var discard [4096]byte
		for fd.CanCollect() > 0 {
			fd.Collect(discard[:])
		}
		if fd.IsFinished() {
			fd.DrainAll(discard[:])
		}

		if fd.HasChecksum() {
			var trailer [4]byte
			if _, err := io.ReadFull(rd, trailer[:]); err != nil {
				return fmt.Errorf("%v: frame %d: truncated content checksum", name, idx)
			}
			if err := fd.VerifyChecksum(binary.LittleEndian.Uint32(trailer[:])); err != nil {
				return fmt.Errorf("%v: frame %d: %w", name, idx, err)
			}
		}
		idx++
	}
}

func inspect(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	cmdutil.HandleSignals(cancel, os.Interrupt)
	errs := errors.M{}
	for _, arg := range args {
		errs.Append(inspectFile(ctx, arg))
	}
	return errs.Err()
}

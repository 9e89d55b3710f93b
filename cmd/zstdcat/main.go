// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/errors"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cosnicolaou/zstdcore"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"
)

type CommonFlags struct {
	Verbose bool `subcmd:"verbose,false,verbose debug/trace information"`
}

type catFlags struct {
	CommonFlags
}

type unzipFlags struct {
	CommonFlags
	ProgressBar bool   `subcmd:"progress,true,display a progress bar"`
	OutputFile  string `subcmd:"output,,'output file or s3 path, omit for stdout'"`
}

type noFlags struct{}

var cmdSet *subcmd.CommandSet

func init() {
	catCmd := subcmd.NewCommand("cat",
		subcmd.MustRegisterFlagStruct(&catFlags{}, nil, nil),
		cat, subcmd.AtLeastNArguments(0))
	catCmd.Document(`decompress zstandard files or stdin. Files may be local, on S3 or a URL.`)

	unzipCmd := subcmd.NewCommand("unzip",
		subcmd.MustRegisterFlagStruct(&unzipFlags{}, nil, nil),
		unzip, subcmd.ExactlyNumArguments(1))
	unzipCmd.Document(`decompress a zstandard file.`)

	inspectCmd := subcmd.NewCommand("inspect",
		subcmd.MustRegisterFlagStruct(&noFlags{}, nil, nil),
		inspect, subcmd.AtLeastNArguments(1))
	inspectCmd.Document(`print each frame's header fields; block content is decoded and discarded.`)

	cmdSet = subcmd.NewCommandSet(catCmd, unzipCmd, inspectCmd)
	cmdSet.Document(`decompress and inspect zstandard files. Files may be local, on S3 or a URL.`)

	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

// progressReader wraps an io.Reader, driving a progress bar from the
// number of compressed bytes consumed so far. Unlike the block-parallel
// teacher, a zstd frame is decoded strictly sequentially, so there is no
// per-block completion channel to drive the bar from — counting input
// bytes read is the only progress signal available.
type progressReader struct {
	rd  io.Reader
	bar *progressbar.ProgressBar
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.rd.Read(buf)
	if n > 0 {
		p.bar.Add(n) //nolint:errcheck
	}
	return n, err
}

func newProgressBar(wr io.Writer, size int64) *progressbar.ProgressBar {
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetBytes64(size),
		progressbar.OptionSetWriter(wr),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank() //nolint:errcheck
	return bar
}

func openFileOrURL(ctx context.Context, name string) (io.Reader, int64, func(context.Context) error, error) {
	if strings.HasPrefix(name, "http") {
		resp, err := http.Get(name)
		if err != nil {
			return nil, 0, nil, err
		}
		return resp.Body,
			resp.ContentLength,
			func(context.Context) error {
				resp.Body.Close()
				return nil
			},
			err
	}
	info, err := file.Stat(ctx, name)
	if err != nil {
		return nil, 0, nil, err
	}
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, 0, nil, err
	}
	return f.Reader(ctx), info.Size(), f.Close, nil
}

func createFile(ctx context.Context, name string) (io.Writer, func(context.Context) error, error) {
	if len(name) == 0 {
		return os.Stdout,
			func(context.Context) error {
				return nil
			},
			nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), f.Close, nil
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

func optsFromCommonFlags(cl *CommonFlags) []zstdcore.DecoderOption {
	return []zstdcore.DecoderOption{
		zstdcore.WithVerbose(cl.Verbose),
	}
}

func cat(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*catFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	opts := optsFromCommonFlags(&cl.CommonFlags)

	if len(args) == 0 {
		rd := zstdcore.NewReader(os.Stdin, opts...)
		_, err := io.Copy(os.Stdout, rd)
		return err
	}

	for _, inputFile := range args {
		rd, _, readerCleanup, err := openFileOrURL(ctx, inputFile)
		if err != nil {
			return err
		}
		defer readerCleanup(ctx)

		dc := zstdcore.NewReader(rd, opts...)
		if _, err := io.Copy(os.Stdout, dc); err != nil {
			return err
		}
	}
	return nil
}

func unzip(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*unzipFlags)

	opts := optsFromCommonFlags(&cl.CommonFlags)

	rd, size, readerCleanup, err := openFileOrURL(ctx, args[0])
	if err != nil {
		return err
	}
	defer readerCleanup(ctx)

	wr, writerCleanup, err := createFile(ctx, cl.OutputFile)
	if err != nil {
		return err
	}

	isTTY := terminal.IsTerminal(int(os.Stdout.Fd()))
	var src io.Reader = rd
	if cl.ProgressBar && (len(cl.OutputFile) > 0 || !isTTY) && size > 0 {
		barWr := os.Stdout
		if !isTTY {
			barWr = os.Stderr
		}
		src = &progressReader{rd: rd, bar: newProgressBar(barWr, size)}
	}

	dc := zstdcore.NewReader(src, opts...)

	errs := &errors.M{}
	_, err = io.Copy(wr, dc)
	errs.Append(err)
	errs.Append(writerCleanup(ctx))
	if _, ok := src.(*progressReader); ok {
		fmt.Fprintf(os.Stderr, "\n")
	}
	return errs.Err()
}

/*
DESCRIPTION
  mediainfo is a thin CLI wrapper around the mediainfo package: it reads
  a file in fixed-size chunks and prints the resulting MediaInfo record.
  The CLI itself is kept minimal, per spec.md §1 (a command-line tool is
  explicitly out of core scope).

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main is a thin CLI wrapper around github.com/ausocean/mediainfo.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/mediainfo"
)

// chunkSize is the size of each read handed to the parser, matching
// the refill granularity discussed in spec.md §5.
const chunkSize = 64 * 1024

// fileSource adapts an *os.File to mediainfo.ByteSource.
type fileSource struct {
	f   *os.File
	buf []byte
}

func (s *fileSource) Next() ([]byte, error) {
	n, err := s.f.Read(s.buf)
	if n == 0 {
		return nil, err
	}
	chunk := make([]byte, n)
	copy(chunk, s.buf[:n])
	if err == io.EOF {
		return chunk, io.EOF
	}
	return chunk, err
}

func main() {
	useParser := flag.String("parser", "auto", "parser chain: auto, in-house, iso-bmff, delegated")
	debug := flag.Bool("debug", false, "set Options.Debug (installs a debug file logger; the parsers write no trace output)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mediainfo [flags] <file>")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "mediainfo:", err)
		os.Exit(1)
	}
	defer f.Close()

	src := &fileSource{f: f, buf: make([]byte, chunkSize)}
	info, err := mediainfo.GetMediaInfo(src, mediainfo.Options{
		UseParser: mediainfo.ParserChoice(*useParser),
		Debug:     *debug,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "mediainfo:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		fmt.Fprintln(os.Stderr, "mediainfo:", err)
		os.Exit(1)
	}
}

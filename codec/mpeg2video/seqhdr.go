/*
NAME
  seqhdr.go

DESCRIPTION
  seqhdr.go decodes an MPEG-1/2 video sequence_header() (§4.2), the
  start-code-delimited structure carrying picture dimensions, aspect
  ratio, frame rate, and bitrate for elementary video streams that are
  neither H.264 nor HEVC.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mpeg2video decodes MPEG-1/2 video sequence headers, following
// the same fixed-width bit-field extraction approach the rest of the
// codec/ packages apply via bitio.Cursor (§4.2).
package mpeg2video

import (
	"github.com/ausocean/mediainfo/bitio"
)

// frameRateTable maps the 4-bit frame_rate_code to frames per second,
// expressed as a Num/Den rational to preserve NTSC's 29.97 exactly
// (30000/1001). Codes 0 and 9-15 map to 0/1.
var frameRateTable = [16]struct{ Num, Den int }{
	{0, 1}, {24000, 1001}, {24, 1}, {25, 1},
	{30000, 1001}, {30, 1}, {50, 1}, {60000, 1001},
	{60, 1}, {0, 1}, {0, 1}, {0, 1},
	{0, 1}, {0, 1}, {0, 1}, {0, 1},
}

// aspectRatioTable maps the 4-bit aspect_ratio_information to a
// descriptive label.
var aspectRatioTable = [16]string{
	"forbidden", "1:1 (square)", "4:3", "16:9", "2.21:1",
	"reserved", "reserved", "reserved", "reserved", "reserved",
	"reserved", "reserved", "reserved", "reserved", "reserved", "reserved",
}

// SequenceHeader holds the fields decoded from a sequence_header().
type SequenceHeader struct {
	Width, Height int
	AspectRatio   string
	FrameRateNum  int
	FrameRateDen  int
	BitRate       int // bits per second (bit_rate_value*400); an all-ones bit_rate_value (0x3FFFF, variable) gives 0x3FFFF*400
	VBVBufferSize int
}

const sequenceHeaderStartCode = 0xB3

// ParseSequenceHeader decodes a sequence_header() from b. b must begin at
// the first byte following the 4-byte start code (0x000001B3); callers
// locate the start code while scanning the elementary stream.
func ParseSequenceHeader(b []byte) (*SequenceHeader, error) {
	c := bitio.NewCursor(b)

	hSize, err := c.ReadBits(12)
	if err != nil {
		return nil, err
	}
	vSize, err := c.ReadBits(12)
	if err != nil {
		return nil, err
	}
	aspectIdx, err := c.ReadBits(4)
	if err != nil {
		return nil, err
	}
	frameRateIdx, err := c.ReadBits(4)
	if err != nil {
		return nil, err
	}
	bitRateValue, err := c.ReadBits(18)
	if err != nil {
		return nil, err
	}
	if _, err := c.ReadFlag(); err != nil { // marker_bit
		return nil, err
	}
	vbvBufferSize, err := c.ReadBits(10)
	if err != nil {
		return nil, err
	}
	if _, err := c.ReadFlag(); err != nil { // constrained_parameters_flag
		return nil, err
	}

	if err := skipQuantMatrixIfPresent(c); err != nil {
		return nil, err
	}
	if err := skipQuantMatrixIfPresent(c); err != nil {
		return nil, err
	}

	fr := frameRateTable[frameRateIdx]

	return &SequenceHeader{
		Width:         int(hSize),
		Height:        int(vSize),
		AspectRatio:   aspectRatioTable[aspectIdx],
		FrameRateNum:  fr.Num,
		FrameRateDen:  fr.Den,
		BitRate:       int(bitRateValue) * 400, // bit_rate_value is in units of 400 bps
		VBVBufferSize: int(vbvBufferSize),
	}, nil
}

// skipQuantMatrixIfPresent reads a load_quantiser_matrix flag and, if
// set, discards the following 64-entry 8-bit quantiser matrix.
func skipQuantMatrixIfPresent(c *bitio.Cursor) error {
	load, err := c.ReadFlag()
	if err != nil {
		return err
	}
	if !load {
		return nil
	}
	for i := 0; i < 64; i++ {
		if _, err := c.ReadBits(8); err != nil {
			return err
		}
	}
	return nil
}

// FindStartCode returns the offset of the next MPEG start code with the
// given code byte (e.g. sequenceHeaderStartCode) at or after from, or -1
// if none is found. The returned offset points at the byte following the
// 0x000001 prefix and code byte.
func FindStartCode(b []byte, code byte, from int) int {
	for i := from; i+3 < len(b); i++ {
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 1 && b[i+3] == code {
			return i + 4
		}
	}
	return -1
}

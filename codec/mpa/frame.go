/*
NAME
  frame.go

DESCRIPTION
  frame.go parses MPEG-1/2/2.5 Audio (Layer I/II/III, i.e. MP1/MP2/MP3)
  frame headers (§4.2), the framing used for raw MP3 access units in
  MPEG-TS and standalone .mp3 files.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mpa provides MPEG-1/2/2.5 Audio (MP1/MP2/MP3) frame header
// parsing, plus Xing/Info/LAME and VBRI side-band decoding, following the
// same fixed-width bit-masking approach the teacher applies to ADTS in
// codec/aac/lex.go (§4.2).
package mpa

import "fmt"

// Version identifies the MPEG audio version.
type Version int

// Recognized versions.
const (
	MPEG1 Version = iota
	MPEG2
	MPEG25
)

func (v Version) String() string {
	switch v {
	case MPEG1:
		return "MPEG-1"
	case MPEG2:
		return "MPEG-2"
	case MPEG25:
		return "MPEG-2.5"
	default:
		return "unknown"
	}
}

// Layer identifies the MPEG audio layer.
type Layer int

// Recognized layers.
const (
	LayerI Layer = iota + 1
	LayerII
	LayerIII
)

func (l Layer) String() string {
	switch l {
	case LayerI:
		return "Layer I"
	case LayerII:
		return "Layer II"
	case LayerIII:
		return "Layer III"
	default:
		return "unknown"
	}
}

// bitrateTable maps [versionGroup][layer][index] to kbps, where
// versionGroup is 0 for MPEG-1 and 1 for MPEG-2/2.5. Index 0 is "free"
// (not supported here) and 15 is reserved.
var bitrateTable = [2][3][16]int{
	// MPEG-1
	{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, -1}, // Layer I
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, -1},    // Layer II
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, -1},     // Layer III
	},
	// MPEG-2 / MPEG-2.5
	{
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, -1}, // Layer I
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1},      // Layer II
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1},      // Layer III
	},
}

// sampleRateTable maps [versionIdx][srIdx] to Hz. versionIdx 0=MPEG1,
// 1=MPEG2, 2=MPEG2.5.
var sampleRateTable = [3][4]int{
	{44100, 48000, 32000, -1},
	{22050, 24000, 16000, -1},
	{11025, 12000, 8000, -1},
}

// samplesPerFrameTable maps [versionGroup][layer] to the PCM sample count
// per frame, where versionGroup is 0 for MPEG-1 and 1 for MPEG-2/2.5.
var samplesPerFrameTable = [2][3]int{
	{384, 1152, 1152}, // MPEG-1: Layer I, II, III
	{384, 1152, 576},  // MPEG-2/2.5: Layer I, II, III
}

// FrameHeader holds the parsed fields of an MPEG audio frame header.
type FrameHeader struct {
	MPEGVersion    Version
	Layer          Layer
	Protected      bool // CRC present
	Bitrate        int  // kbps
	SampleRate     int  // Hz
	Padding        bool
	ChannelMode    int // 0=stereo,1=joint stereo,2=dual channel,3=mono
	FrameSize      int // bytes, including the 4-byte header
	SamplesInFrame int
}

const (
	syncMask = 0xFFE0
	sync     = 0xFFE0
)

// HeaderSize is the fixed MPEG audio frame header size in bytes.
const HeaderSize = 4

// ParseFrameHeader parses the 4-byte MPEG audio frame header at the start
// of b.
func ParseFrameHeader(b []byte) (*FrameHeader, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("mpa: frame header requires %d bytes, got %d", HeaderSize, len(b))
	}
	word := uint16(b[0])<<8 | uint16(b[1])
	if word&syncMask != sync {
		return nil, fmt.Errorf("mpa: syncword mismatch: got 0x%04x", word)
	}

	versionBits := (b[1] >> 3) & 0x3
	var version Version
	switch versionBits {
	case 0b00:
		version = MPEG25
	case 0b10:
		version = MPEG2
	case 0b11:
		version = MPEG1
	default:
		return nil, fmt.Errorf("mpa: reserved MPEG version bits: %02b", versionBits)
	}

	layerBits := (b[1] >> 1) & 0x3
	var layer Layer
	switch layerBits {
	case 0b01:
		layer = LayerIII
	case 0b10:
		layer = LayerII
	case 0b11:
		layer = LayerI
	default:
		return nil, fmt.Errorf("mpa: reserved layer bits: %02b", layerBits)
	}

	protected := b[1]&0x1 == 0 // 0 means CRC protected

	versionGroup := 0
	if version != MPEG1 {
		versionGroup = 1
	}

	bitrateIdx := (b[2] >> 4) & 0xF
	bitrate := bitrateTable[versionGroup][layer-1][bitrateIdx]
	if bitrate <= 0 {
		return nil, fmt.Errorf("mpa: unsupported bitrate index %d", bitrateIdx)
	}

	srIdx := (b[2] >> 2) & 0x3
	var verIdx int
	switch version {
	case MPEG1:
		verIdx = 0
	case MPEG2:
		verIdx = 1
	case MPEG25:
		verIdx = 2
	}
	sampleRate := sampleRateTable[verIdx][srIdx]
	if sampleRate <= 0 {
		return nil, fmt.Errorf("mpa: reserved sample rate index %d", srIdx)
	}

	padding := (b[2]>>1)&0x1 == 1
	channelMode := int((b[3] >> 6) & 0x3)

	samples := samplesPerFrameTable[versionGroup][layer-1]

	var frameSize int
	padBytes := 0
	if padding {
		padBytes = 1
	}
	if layer == LayerI {
		frameSize = (12*bitrate*1000/sampleRate + padBytes) * 4
	} else {
		frameSize = samples/8*bitrate*1000/sampleRate + padBytes
	}

	return &FrameHeader{
		MPEGVersion:    version,
		Layer:          layer,
		Protected:      protected,
		Bitrate:        bitrate,
		SampleRate:     sampleRate,
		Padding:        padding,
		ChannelMode:    channelMode,
		FrameSize:      frameSize,
		SamplesInFrame: samples,
	}, nil
}

/*
NAME
  waveformat.go

DESCRIPTION
  waveformat.go parses and builds WAVEFORMATEX structures (§4.2), the
  format-tag-driven header used by WAV "fmt " chunks and ASF audio media
  types, including the MS-ADPCM extension fields.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package waveformat parses and builds WAVEFORMATEX/WAVEFORMATEXTENSIBLE
// structures, generalizing the fixed PCM-only header the teacher's
// codec/wav package writes (§4.2).
package waveformat

import (
	"encoding/binary"
	"fmt"

	"github.com/ausocean/mediainfo/taxonomy"
)

// Recognized wFormatTag values (a small subset of the registered
// Microsoft tag table, matching what container/asf and the WAV sniffer
// in container/sniff need to identify).
const (
	FormatPCM       = 0x0001
	FormatADPCM     = 0x0002 // MS-ADPCM
	FormatIEEEFloat = 0x0003
	FormatALaw      = 0x0006
	FormatMULaw     = 0x0007
	FormatMPEG      = 0x0050 // MPEG-1 Layer I/II
	FormatMPEGLayer3 = 0x0055
	FormatWMAudioV1 = 0x0160
	FormatWMAudioV2 = 0x0161
	FormatWMAudioPro = 0x0162
	FormatWMAudioLossless = 0x0163
	FormatExtensible = 0xFFFE
)

// WaveFormatEx holds the fixed WAVEFORMATEX fields, plus raw
// format-specific extra data.
type WaveFormatEx struct {
	FormatTag      uint16
	Channels       uint16
	SamplesPerSec  uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	ExtraData      []byte // cbSize bytes following the fixed header, if any
}

// HeaderSize is the fixed (non-extensible) WAVEFORMATEX size in bytes.
const HeaderSize = 16

// ADPCMCoefficients is the canonical 7-pair MS-ADPCM predictor
// coefficient table carried in a WAVEFORMATEX ADPCM extension.
var ADPCMCoefficients = [7][2]int16{
	{256, 0}, {512, -256}, {0, 0}, {192, 64},
	{240, 0}, {460, -208}, {392, -232},
}

// Parse decodes a WAVEFORMATEX structure from b. If len(b) > HeaderSize,
// the remaining bytes are treated as cbSize-prefixed ExtraData when a
// cbSize field is present (len(b) >= HeaderSize+2); a single trailing
// byte is ignored.
func Parse(b []byte) (*WaveFormatEx, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("waveformat: header requires %d bytes, got %d", HeaderSize, len(b))
	}
	w := &WaveFormatEx{
		FormatTag:      binary.LittleEndian.Uint16(b[0:2]),
		Channels:       binary.LittleEndian.Uint16(b[2:4]),
		SamplesPerSec:  binary.LittleEndian.Uint32(b[4:8]),
		AvgBytesPerSec: binary.LittleEndian.Uint32(b[8:12]),
		BlockAlign:     binary.LittleEndian.Uint16(b[12:14]),
		BitsPerSample:  binary.LittleEndian.Uint16(b[14:16]),
	}

	if len(b) < HeaderSize+2 {
		return w, nil
	}
	cbSize := int(binary.LittleEndian.Uint16(b[16:18]))
	end := HeaderSize + 2 + cbSize
	if end > len(b) {
		end = len(b)
	}
	w.ExtraData = b[HeaderSize+2 : end]
	return w, nil
}

// Build encodes a WaveFormatEx back to its wire representation. If
// w.ExtraData is non-empty, a cbSize field is written ahead of it.
func Build(w *WaveFormatEx) []byte {
	hasExtra := len(w.ExtraData) > 0
	size := HeaderSize
	if hasExtra {
		size += 2 + len(w.ExtraData)
	}
	out := make([]byte, size)
	binary.LittleEndian.PutUint16(out[0:2], w.FormatTag)
	binary.LittleEndian.PutUint16(out[2:4], w.Channels)
	binary.LittleEndian.PutUint32(out[4:8], w.SamplesPerSec)
	binary.LittleEndian.PutUint32(out[8:12], w.AvgBytesPerSec)
	binary.LittleEndian.PutUint16(out[12:14], w.BlockAlign)
	binary.LittleEndian.PutUint16(out[14:16], w.BitsPerSample)
	if hasExtra {
		binary.LittleEndian.PutUint16(out[16:18], uint16(len(w.ExtraData)))
		copy(out[18:], w.ExtraData)
	}
	return out
}

// ADPCMExtension holds the MS-ADPCM-specific fields carried in
// WaveFormatEx.ExtraData for FormatADPCM streams.
type ADPCMExtension struct {
	SamplesPerBlock uint16
	Coefficients    [][2]int16
}

// ParseADPCMExtension decodes the MS-ADPCM extension fields from a
// WaveFormatEx's ExtraData.
func ParseADPCMExtension(extra []byte) (*ADPCMExtension, error) {
	if len(extra) < 4 {
		return nil, fmt.Errorf("waveformat: ADPCM extension requires at least 4 bytes, got %d", len(extra))
	}
	e := &ADPCMExtension{SamplesPerBlock: binary.LittleEndian.Uint16(extra[0:2])}
	numCoef := int(binary.LittleEndian.Uint16(extra[2:4]))
	pos := 4
	for i := 0; i < numCoef; i++ {
		if pos+4 > len(extra) {
			break
		}
		c1 := int16(binary.LittleEndian.Uint16(extra[pos : pos+2]))
		c2 := int16(binary.LittleEndian.Uint16(extra[pos+2 : pos+4]))
		e.Coefficients = append(e.Coefficients, [2]int16{c1, c2})
		pos += 4
	}
	return e, nil
}

// BuildADPCMExtension encodes samplesPerBlock and the canonical
// ADPCMCoefficients table into WaveFormatEx.ExtraData form.
func BuildADPCMExtension(samplesPerBlock uint16) []byte {
	out := make([]byte, 4+4*len(ADPCMCoefficients))
	binary.LittleEndian.PutUint16(out[0:2], samplesPerBlock)
	binary.LittleEndian.PutUint16(out[2:4], uint16(len(ADPCMCoefficients)))
	pos := 4
	for _, c := range ADPCMCoefficients {
		binary.LittleEndian.PutUint16(out[pos:pos+2], uint16(c[0]))
		binary.LittleEndian.PutUint16(out[pos+2:pos+4], uint16(c[1]))
		pos += 4
	}
	return out
}

// CodecKind maps a WAVEFORMATEX format tag to the module's audio codec
// taxonomy.
func CodecKind(formatTag uint16) taxonomy.AudioCodecKind {
	switch formatTag {
	case FormatPCM:
		return taxonomy.PCMS16LE // bit depth refines this at call sites
	case FormatADPCM:
		return taxonomy.ADPCMMS
	case FormatALaw:
		return taxonomy.PCMAlaw
	case FormatMULaw:
		return taxonomy.PCMMulaw
	case FormatMPEG:
		return taxonomy.MP2
	case FormatMPEGLayer3:
		return taxonomy.MP3
	case FormatWMAudioV1:
		return taxonomy.WMAV1
	case FormatWMAudioV2:
		return taxonomy.WMAV2
	case FormatWMAudioPro:
		return taxonomy.WMAPro
	case FormatWMAudioLossless:
		return taxonomy.WMALossless
	default:
		return taxonomy.UnknownAudio
	}
}

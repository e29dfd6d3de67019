/*
NAME
  tracks.go

DESCRIPTION
  tracks.go decodes the Matroska/WebM Tracks and Info master elements
  into per-track metadata, and interprets CodecPrivate per codec family
  (§4.3): Vorbis/Opus/FLAC identification headers, WAVEFORMATEX for
  A_MS/ACM and A_ADPCM, raw-PCM bit-depth/endianness, and the
  BITMAPINFOHEADER FOURCC carried by V_MS/VFW/FOURCC.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mkv

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/ausocean/mediainfo/codec/waveformat"
	"github.com/ausocean/mediainfo/taxonomy"
)

// TrackType values from the Matroska spec (only the two this module
// cares about).
const (
	TrackTypeVideo = 1
	TrackTypeAudio = 2
)

// Track holds the decoded metadata for one TrackEntry.
type Track struct {
	Number int
	Type   int
	CodecID string
	CodecPrivate []byte

	// Audio fields (Audio master element).
	SamplingFrequency float64
	Channels          int
	BitDepth          int

	// Video fields (Video master element).
	PixelWidth  int
	PixelHeight int

	// Populated once CodecPrivate has been interpreted.
	AudioCodec  taxonomy.AudioCodecKind
	VideoCodec  taxonomy.VideoCodecKind
	CodecDetail string
	Bitrate     int
	SampleRate  int // overrides SamplingFrequency when CodecPrivate disagrees (e.g. A_OPUS)
}

// trackBuilder accumulates a TrackEntry's children as the element walk
// descends into it; per spec.md §9, a TrackEntry that closes without
// having seen a TrackNumber is discarded rather than becoming a Track.
type trackBuilder struct {
	t          Track
	haveNumber bool
}

func newTrackBuilder() *trackBuilder { return &trackBuilder{} }

// finish returns the built Track and whether it should be kept.
func (b *trackBuilder) finish() (Track, bool) {
	if !b.haveNumber {
		return Track{}, false
	}
	interpretCodecPrivate(&b.t)
	return b.t, true
}

// trimTrailingNulls strips trailing NUL bytes from a Matroska ASCII
// string element's raw bytes (CodecID, §4.3).
func trimTrailingNulls(s string) string {
	return strings.TrimRight(s, "\x00")
}

// decodeUint decodes an EBML unsigned integer: a big-endian value
// occupying all of b (width 0 means value 0).
func decodeUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// decodeFloat decodes an EBML float element: 32-bit or 64-bit IEEE 754,
// big-endian (§4.3's Duration/SamplingFrequency).
func decodeFloat(b []byte) float64 {
	switch len(b) {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	default:
		return 0
	}
}

// interpretCodecPrivate fills in t.AudioCodec/VideoCodec/CodecDetail/
// Bitrate/SampleRate from t.CodecPrivate according to t.CodecID, per
// the per-codec table in §4.3.
func interpretCodecPrivate(t *Track) {
	switch {
	case t.CodecID == "A_VORBIS":
		interpretVorbis(t)
	case t.CodecID == "A_OPUS":
		interpretOpus(t)
	case t.CodecID == "A_FLAC":
		interpretFLAC(t)
	case t.CodecID == "A_MS/ACM" || strings.HasPrefix(t.CodecID, "A_ADPCM"):
		interpretWaveFormat(t)
	case strings.HasPrefix(t.CodecID, "A_PCM/INT/"):
		interpretPCM(t)
	case t.CodecID == "V_MS/VFW/FOURCC":
		interpretFourCC(t)
	default:
		if k, ok := taxonomy.AudioByAlias(t.CodecID); ok {
			t.AudioCodec = k
		} else if k, ok := taxonomy.VideoByAlias(t.CodecID); ok {
			t.VideoCodec = k
		}
	}
}

// xiphLaceHeaderSkip returns the byte offset of the first identification
// packet in a Xiph-laced CodecPrivate blob: 1 header byte (numPackets-1)
// followed by that many 255-limb-terminated size chains (§4.3's "Xiph-
// lace-header form").
func xiphLaceHeaderSkip(b []byte) int {
	if len(b) < 1 {
		return 0
	}
	numPackets := int(b[0]) + 1
	pos := 1
	for i := 0; i < numPackets-1 && pos < len(b); i++ {
		for pos < len(b) && b[pos] == 255 {
			pos++
		}
		if pos < len(b) {
			pos++
		}
	}
	return pos
}

func interpretVorbis(t *Track) {
	off := xiphLaceHeaderSkip(t.CodecPrivate)
	b := t.CodecPrivate
	if off+7 > len(b) || b[off] != 0x01 || string(b[off+1:off+7]) != "vorbis" {
		t.AudioCodec = taxonomy.Vorbis
		return
	}
	p := b[off+7:]
	t.AudioCodec = taxonomy.Vorbis
	if len(p) < 4+1+4+4+4+4 {
		return
	}
	// version(u32le) channels(u8) sampleRate(u32le) bitrate_max(s32le)
	// bitrate_nom(s32le) bitrate_min(s32le)
	t.Channels = int(p[4])
	t.SampleRate = int(binary.LittleEndian.Uint32(p[5:9]))
	nominal := int32(binary.LittleEndian.Uint32(p[13:17]))
	if nominal > 0 {
		t.Bitrate = int(nominal)
	}
}

func interpretOpus(t *Track) {
	t.AudioCodec = taxonomy.Opus
	b := t.CodecPrivate
	if len(b) < 8+1+1+2+4+2+1 || string(b[0:8]) != "OpusHead" {
		return
	}
	t.Channels = int(b[9])
	inputRate := binary.LittleEndian.Uint32(b[12:16])
	if inputRate != 48000 && inputRate != 0 {
		t.SampleRate = int(inputRate)
	}
}

func interpretFLAC(t *Track) {
	t.AudioCodec = taxonomy.FLACCodec
	b := t.CodecPrivate
	// STREAMINFO packed integers, as bit positions counted from the start
	// of byte 10: sampleRate in bits 0-19, channels-1 in bits 20-22,
	// bitsPerSample-1 in bits 23-27.
	if len(b) < 18 {
		return
	}
	v := uint32(b[10])<<16 | uint32(b[11])<<8 | uint32(b[12])
	t.SampleRate = int(v >> 4)
	channelsMinus1 := (b[12] >> 1) & 0x07
	t.Channels = int(channelsMinus1) + 1
	bpsMinus1 := (uint16(b[12]&0x01)<<4 | uint16(b[13])>>4)
	t.BitDepth = int(bpsMinus1) + 1
}

func interpretWaveFormat(t *Track) {
	wf, err := waveformat.Parse(t.CodecPrivate)
	if err != nil {
		return
	}
	t.AudioCodec = waveformat.CodecKind(wf.FormatTag)
	t.Channels = int(wf.Channels)
	t.SampleRate = int(wf.SamplesPerSec)
	t.BitDepth = int(wf.BitsPerSample)
	t.Bitrate = int(wf.AvgBytesPerSec) * 8
	if wf.FormatTag == waveformat.FormatADPCM || wf.FormatTag == 0x0011 {
		t.BitDepth = 4
	}
}

// interpretPCM handles A_PCM/INT/LIT and A_PCM/INT/BIG (§4.3): bitrate
// = sampleRate * channels * bitDepth, codec by bit depth and endianness
// (8-bit is always unsigned).
func interpretPCM(t *Track) {
	bigEndian := strings.HasSuffix(t.CodecID, "BIG")
	sampleRate := int(t.SamplingFrequency)
	t.SampleRate = sampleRate
	t.Bitrate = sampleRate * t.Channels * t.BitDepth
	switch {
	case t.BitDepth <= 8:
		t.AudioCodec = taxonomy.PCMU8
	case t.BitDepth <= 16:
		if bigEndian {
			t.AudioCodec = taxonomy.PCMS16BE
		} else {
			t.AudioCodec = taxonomy.PCMS16LE
		}
	case t.BitDepth <= 24:
		if bigEndian {
			t.AudioCodec = taxonomy.PCMS24BE
		} else {
			t.AudioCodec = taxonomy.PCMS24LE
		}
	default:
		if bigEndian {
			t.AudioCodec = taxonomy.PCMS32BE
		} else {
			t.AudioCodec = taxonomy.PCMS32LE
		}
	}
}

// interpretFourCC handles V_MS/VFW/FOURCC: a BITMAPINFOHEADER at offset
// 0 whose bytes 16-19 hold the little-endian biCompression FOURCC.
func interpretFourCC(t *Track) {
	b := t.CodecPrivate
	if len(b) < 20 {
		return
	}
	fourCC := string(b[16:20])
	t.CodecDetail = fourCC
	if k, ok := taxonomy.VideoByAlias(fourCC); ok {
		t.VideoCodec = k
	} else {
		t.VideoCodec = taxonomy.UnknownVideo
	}
}

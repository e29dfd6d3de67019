/*
NAME
  header.go

DESCRIPTION
  header.go walks an ASF (Advanced Systems Format) Header Object,
  pulling out the Stream Properties and File Properties objects needed
  to describe a WMA/WMV file's tracks (§4.5). The teacher has no ASF
  support; this package generalizes the "progressive object/element
  walk with nested length-prefixed records" idiom of
  container/mts/psi/psi.go's PSI/SyntaxSection structs to ASF's
  GUID-tagged object layout.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package asf parses the ASF (Advanced Systems Format) container used
// by WMA/WMV files: the Header Object's Stream/File Properties, and
// the Data Object's packet stream, without decoding samples (§4.5).
package asf

import (
	"encoding/binary"
	"fmt"

	"github.com/ausocean/mediainfo/codec/asfguid"
	"github.com/ausocean/mediainfo/codec/waveformat"
	"github.com/ausocean/mediainfo/taxonomy"
)

// objectHeaderSize is the fixed 24-byte GUID+size prefix every ASF
// object begins with.
const objectHeaderSize = 24

// StreamInfo describes one stream discovered in a Stream Properties
// Object.
type StreamInfo struct {
	StreamNumber int
	IsAudio      bool
	IsVideo      bool
	IsCommand    bool

	// Audio fields (from an embedded WAVEFORMATEX).
	AudioCodec     taxonomy.AudioCodecKind
	ChannelCount   int
	SampleRate     int
	BitsPerSample  int
	Bitrate        int

	// Video fields (from a BITMAPINFOHEADER).
	VideoCodec  taxonomy.VideoCodecKind
	Width       int
	Height      int
	CodecDetail string

	// CodecPrivate holds the codec-specific bytes following the fixed
	// WAVEFORMATEX/BITMAPINFOHEADER portion of the type-specific data,
	// surfaced via additionalStreamInfo (§6).
	CodecPrivate []byte
}

// FileInfo describes the File Properties Object fields needed to
// derive duration and validate packet size (§4.5).
type FileInfo struct {
	PlayDuration    uint64 // 100ns units
	SendDuration    uint64 // 100ns units
	Preroll         uint64 // ms
	Broadcast       bool
	Seekable        bool
	MinPacketSize   uint32
	MaxPacketSize   uint32
}

// DurationSeconds returns the stream duration in seconds, per §4.5:
// computed only when the broadcast flag is clear.
func (f *FileInfo) DurationSeconds() (float64, bool) {
	if f.Broadcast {
		return 0, false
	}
	return float64(f.PlayDuration)/1e7 - float64(f.Preroll)/1e3, true
}

// Header holds the objects discovered while walking a Header Object.
type Header struct {
	File    *FileInfo
	Streams []*StreamInfo
}

// errUnsupportedFormat reports a structural ASF deviation this parser
// declines to handle, mirroring the module's UnsupportedFormat error
// kind at the boundary of this package.
var errUnsupportedFormat = fmt.Errorf("asf: unsupported format")

// ParseHeader walks the ASF Header Object starting at the beginning of
// b (b[0:16] must be the Header Object GUID) and returns the File and
// Stream Properties it discovers.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < objectHeaderSize+6 {
		return nil, fmt.Errorf("asf: header object truncated")
	}
	g, err := asfguid.Parse(b[0:16])
	if err != nil {
		return nil, err
	}
	if g != asfguid.HeaderObject {
		return nil, fmt.Errorf("asf: not a Header Object")
	}
	size := binary.LittleEndian.Uint64(b[16:24])
	if uint64(len(b)) < size {
		return nil, fmt.Errorf("asf: header object declares %d bytes, have %d", size, len(b))
	}

	numObjects := binary.LittleEndian.Uint32(b[24:28])
	// 2 reserved bytes follow at b[28:30].
	pos := 30
	end := int(size)

	h := &Header{}
	for i := uint32(0); i < numObjects && pos+objectHeaderSize <= end; i++ {
		og, err := asfguid.Parse(b[pos : pos+16])
		if err != nil {
			return nil, err
		}
		osize := binary.LittleEndian.Uint64(b[pos+16 : pos+24])
		if osize < objectHeaderSize || pos+int(osize) > end {
			return nil, fmt.Errorf("asf: child object size out of range")
		}
		body := b[pos+objectHeaderSize : pos+int(osize)]

		switch og {
		case asfguid.FilePropertiesObject:
			fi, err := parseFileProperties(body)
			if err != nil {
				return nil, err
			}
			h.File = fi
		case asfguid.StreamPropertiesObject:
			si, err := parseStreamProperties(body)
			if err != nil {
				return nil, err
			}
			h.Streams = append(h.Streams, si)
		}

		pos += int(osize)
	}
	return h, nil
}

// parseFileProperties decodes a File Properties Object body (§4.5),
// offsets given relative to the start of the object, not the body, so
// we subtract objectHeaderSize throughout.
func parseFileProperties(body []byte) (*FileInfo, error) {
	const base = -objectHeaderSize // offsets in spec are from object start
	need := func(off int) int { return off + base }
	if len(body) < need(104) {
		return nil, fmt.Errorf("asf: File Properties Object truncated")
	}
	f := &FileInfo{
		PlayDuration:  binary.LittleEndian.Uint64(body[need(64):]),
		SendDuration:  binary.LittleEndian.Uint64(body[need(72):]),
		Preroll:       binary.LittleEndian.Uint64(body[need(80):]),
		MinPacketSize: binary.LittleEndian.Uint32(body[need(92):]),
		MaxPacketSize: binary.LittleEndian.Uint32(body[need(96):]),
	}
	flags := binary.LittleEndian.Uint32(body[need(88):])
	f.Broadcast = flags&0x1 != 0
	f.Seekable = flags&0x2 != 0
	if f.MinPacketSize != f.MaxPacketSize {
		return nil, errUnsupportedFormat
	}
	return f, nil
}

// parseStreamProperties decodes a Stream Properties Object body
// (§4.5), offsets again relative to object start.
func parseStreamProperties(body []byte) (*StreamInfo, error) {
	const base = -objectHeaderSize
	need := func(off int) int { return off + base }
	if len(body) < need(78) {
		return nil, fmt.Errorf("asf: Stream Properties Object truncated")
	}
	typeGUID, err := asfguid.Parse(body[need(24):])
	if err != nil {
		return nil, err
	}
	flags := binary.LittleEndian.Uint16(body[need(72):])
	s := &StreamInfo{StreamNumber: int(flags & 0x7f)}

	typeSpecific := body[need(78):]

	switch typeGUID {
	case asfguid.StreamTypeAudio:
		s.IsAudio = true
		if len(typeSpecific) < waveformat.HeaderSize {
			return s, nil
		}
		wf, err := waveformat.Parse(typeSpecific)
		if err != nil {
			return s, nil
		}
		s.AudioCodec = waveformat.CodecKind(wf.FormatTag)
		s.ChannelCount = int(wf.Channels)
		s.SampleRate = int(wf.SamplesPerSec)
		s.BitsPerSample = int(wf.BitsPerSample)
		s.Bitrate = int(wf.AvgBytesPerSec) * 8
		s.CodecPrivate = wf.ExtraData
	case asfguid.StreamTypeVideo:
		s.IsVideo = true
		// EncodedImageWidth(4) + EncodedImageHeight(4), then a small
		// preamble (2-byte reserved + 2-byte format data size) before
		// the BITMAPINFOHEADER proper (§4.5).
		const preamble = 12
		if len(typeSpecific) < preamble+20 {
			return s, nil
		}
		s.Width = int(binary.LittleEndian.Uint32(typeSpecific[0:4]))
		s.Height = int(binary.LittleEndian.Uint32(typeSpecific[4:8]))
		bmp := typeSpecific[preamble:]
		fourCC := string(bmp[16:20])
		if k, ok := taxonomy.VideoByAlias(fourCC); ok {
			s.VideoCodec = k
		} else {
			s.VideoCodec = taxonomy.UnknownVideo
		}
		s.CodecDetail = fourCC
		if len(bmp) > 40 {
			s.CodecPrivate = bmp[40:]
		}
	case asfguid.StreamTypeCommand:
		s.IsCommand = true
	}
	return s, nil
}

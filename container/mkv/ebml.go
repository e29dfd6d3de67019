/*
NAME
  ebml.go

DESCRIPTION
  ebml.go decodes EBML vints (the variable-length integer encoding
  Matroska/WebM build every element ID and size from, §4.3) and walks
  an element stream against a table of known master and leaf element
  IDs, maintaining the nested-container stack a progressive Matroska
  parser needs.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mkv parses the Matroska/WebM (EBML) container: the nested
// element stream, Tracks/Info extraction, per-codec CodecPrivate
// decoding, and SimpleBlock/Block lacing (§4.3), without decoding
// samples. Grounded on the progressive-parser idiom of
// container/mts/demux.go (explicit state + "needs more bytes" signal,
// per spec.md §9's design note), since the teacher has no EBML support.
package mkv

import "fmt"

// Element IDs this parser recognizes (§6's byte-exact table).
const (
	IDEBML           uint32 = 0x1A45DFA3
	IDDocType        uint32 = 0x4282
	IDSegment        uint32 = 0x18538067
	IDInfo           uint32 = 0x1549A966
	IDTimecodeScale  uint32 = 0x2AD7B1
	IDDuration       uint32 = 0x4489
	IDTracks         uint32 = 0x1654AE6B
	IDTrackEntry     uint32 = 0xAE
	IDTrackNumber    uint32 = 0xD7
	IDTrackType      uint32 = 0x83
	IDCodecID        uint32 = 0x86
	IDCodecPrivate   uint32 = 0x63A2
	IDAudio          uint32 = 0xE1
	IDSamplingFreq   uint32 = 0xB5
	IDChannels       uint32 = 0x9F
	IDBitDepth       uint32 = 0x6264
	IDVideo          uint32 = 0xE0
	IDPixelWidth     uint32 = 0xB0
	IDPixelHeight    uint32 = 0xBA
	IDCluster        uint32 = 0x1F43B675
	IDTimecode       uint32 = 0xE7
	IDSimpleBlock    uint32 = 0xA3
	IDBlockGroup     uint32 = 0xA0
	IDBlock          uint32 = 0xA1
)

// masterElements is the set of element IDs that contain child elements
// rather than a leaf value, and so open a new nesting scope.
var masterElements = map[uint32]bool{
	IDEBML:       true,
	IDSegment:    true,
	IDInfo:       true,
	IDTracks:     true,
	IDTrackEntry: true,
	IDAudio:      true,
	IDVideo:      true,
	IDCluster:    true,
	IDBlockGroup: true,
}

// unknownSizeMarker marks an element-size vint that decoded to all-1-bits,
// i.e. "unknown length" (used for live streaming, §4.3): the parser
// treats it as "metadata complete, stop walking".
const unknownSizeMarker = ^uint64(0)

// ErrUnsupportedFormat reports a structural deviation this parser
// declines to handle (wrong DocType, malformed vint, ...).
var ErrUnsupportedFormat = fmt.Errorf("mkv: unsupported format")

// ErrNeedMoreData signals the caller must supply more bytes before the
// current read can proceed; it is not a parse failure.
var ErrNeedMoreData = fmt.Errorf("mkv: need more data")

// readVint decodes an EBML vint starting at b[off]. If keepMarker is
// true the leading-1 marker bit is preserved in the returned value (used
// for element IDs, which "keep their width marker" per §4.3); otherwise
// it decodes a size/value vint with the marker stripped. Returns the
// value, the number of bytes consumed, and whether the value was the
// reserved "unknown length" all-1s pattern.
func readVint(b []byte, off int, keepMarker bool) (value uint64, width int, unknown bool, err error) {
	if off >= len(b) {
		return 0, 0, false, ErrNeedMoreData
	}
	first := b[off]
	if first == 0 {
		return 0, 0, false, fmt.Errorf("%w: vint leading byte is zero", ErrUnsupportedFormat)
	}
	// Leading-zero count (capped at 8, i.e. a 1-bit byte) gives the
	// vint's total width in bytes.
	width = 1
	mask := byte(0x80)
	for mask != 0 && first&mask == 0 {
		width++
		mask >>= 1
	}
	if width > 8 {
		return 0, 0, false, fmt.Errorf("%w: vint width exceeds 8 bytes", ErrUnsupportedFormat)
	}
	if off+width > len(b) {
		return 0, 0, false, ErrNeedMoreData
	}

	var raw uint64
	if keepMarker {
		raw = uint64(first)
	} else {
		raw = uint64(first &^ mask)
	}
	allOnes := first&^mask == 0xFF>>uint(width)
	for i := 1; i < width; i++ {
		raw = raw<<8 | uint64(b[off+i])
		if b[off+i] != 0xFF {
			allOnes = false
		}
	}
	return raw, width, allOnes, nil
}

// ReadElementID reads an EBML element ID vint at b[off], keeping its
// width marker bit per §4.3.
func ReadElementID(b []byte, off int) (id uint32, width int, err error) {
	v, w, _, err := readVint(b, off, true)
	if err != nil {
		return 0, 0, err
	}
	return uint32(v), w, nil
}

// ReadElementSize reads an EBML element-size vint at b[off] with the
// marker bit stripped. unknown reports the reserved all-1s "unknown
// length" pattern (§4.3).
func ReadElementSize(b []byte, off int) (size uint64, width int, unknown bool, err error) {
	return readVint(b, off, false)
}

// IsMaster reports whether id opens a nested scope.
func IsMaster(id uint32) bool { return masterElements[id] }

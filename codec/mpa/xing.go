/*
NAME
  xing.go

DESCRIPTION
  xing.go decodes the Xing/Info/LAME and VBRI side-band headers embedded
  in the first MP3 frame of a variable-bitrate stream, used to recover
  duration without scanning every frame (§4.2).

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mpa

import "encoding/binary"

// SideBandInfo holds the fields recovered from a Xing/Info or VBRI header.
type SideBandInfo struct {
	IsVBR      bool
	Frames     uint32 // total frame count, 0 if not present
	Bytes      uint32 // total stream byte count, 0 if not present
	IsLAME     bool
	Encoder    string // LAME encoder version string; ParseSideBand does not read the LAME tag and leaves this empty
}

// xingOffset returns the byte offset (from the start of the frame,
// including the 4-byte header) at which a Xing/Info header would begin
// for the given frame parameters, per the MPEG audio side-info layout.
func xingOffset(h *FrameHeader) int {
	mono := h.ChannelMode == 3
	if h.MPEGVersion == MPEG1 {
		if mono {
			return HeaderSize + 17
		}
		return HeaderSize + 32
	}
	if mono {
		return HeaderSize + 9
	}
	return HeaderSize + 17
}

// vbriOffset is the fixed offset of a VBRI header, present only in
// MPEG-1 frames produced by the Fraunhofer encoder.
const vbriOffset = HeaderSize + 32

// ParseSideBand inspects frame (the full first frame, header included)
// for a Xing/Info or VBRI side-band header and returns what it finds. It
// returns (nil, false) if neither is present, which is the common case
// for a constant-bitrate stream.
func ParseSideBand(frame []byte, h *FrameHeader) (*SideBandInfo, bool) {
	if info, ok := parseXing(frame, h); ok {
		return info, true
	}
	if info, ok := parseVBRI(frame); ok {
		return info, true
	}
	return nil, false
}

func parseXing(frame []byte, h *FrameHeader) (*SideBandInfo, bool) {
	off := xingOffset(h)
	if off+4 > len(frame) {
		return nil, false
	}
	tag := string(frame[off : off+4])
	isLAME := false
	switch tag {
	case "Xing":
		isLAME = true // Xing-tagged streams are near-universally LAME-encoded VBR
	case "Info":
		// CBR stream tagged by LAME; frame/byte counts still meaningful.
	default:
		return nil, false
	}

	pos := off + 4
	if pos+4 > len(frame) {
		return nil, false
	}
	flags := binary.BigEndian.Uint32(frame[pos : pos+4])
	pos += 4

	info := &SideBandInfo{IsVBR: tag == "Xing", IsLAME: isLAME}

	const (
		flagFrames = 0x1
		flagBytes  = 0x2
	)
	if flags&flagFrames != 0 {
		if pos+4 > len(frame) {
			return info, true
		}
		info.Frames = binary.BigEndian.Uint32(frame[pos : pos+4])
		pos += 4
	}
	if flags&flagBytes != 0 {
		if pos+4 > len(frame) {
			return info, true
		}
		info.Bytes = binary.BigEndian.Uint32(frame[pos : pos+4])
		pos += 4
	}
	return info, true
}

func parseVBRI(frame []byte) (*SideBandInfo, bool) {
	if vbriOffset+4 > len(frame) {
		return nil, false
	}
	if string(frame[vbriOffset:vbriOffset+4]) != "VBRI" {
		return nil, false
	}
	// VBRI layout: tag(4) version(2) delay(2) quality(2) bytes(4) frames(4) ...
	pos := vbriOffset + 4 + 2 + 2 + 2
	if pos+8 > len(frame) {
		return &SideBandInfo{IsVBR: true}, true
	}
	bytesTotal := binary.BigEndian.Uint32(frame[pos : pos+4])
	framesTotal := binary.BigEndian.Uint32(frame[pos+4 : pos+8])
	return &SideBandInfo{IsVBR: true, Bytes: bytesTotal, Frames: framesTotal}, true
}

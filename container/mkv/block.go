/*
NAME
  block.go

DESCRIPTION
  block.go parses SimpleBlock/Block payloads into per-frame samples:
  the leading track-number vint, signed 16-bit timecode delta, flags
  byte, and Xiph/EBML/fixed-size lacing (§4.3).

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

import "fmt"

// LacingMode identifies how a block's multiple frames are packed.
type LacingMode int

// Recognized lacing modes, from flags bits 1-2 (§4.3).
const (
	LaceNone LacingMode = 0
	LaceXiph LacingMode = 1
	LaceFixed LacingMode = 2
	LaceEBML LacingMode = 3
)

// Block is a decoded SimpleBlock/Block: the owning track, relative
// timecode, keyframe flag, and the frame byte ranges within the
// original payload slice.
type Block struct {
	TrackNumber     int
	TimecodeDelta   int16
	KeyFrame        bool
	Lacing          LacingMode
	FrameOffsets    []int // offsets into the original payload
	FrameSizes      []int
}

// ParseBlock decodes a SimpleBlock/Block payload (the bytes following
// the element's own ID+size, §4.3).
func ParseBlock(payload []byte) (*Block, error) {
	trackNum, n, _, err := readVint(payload, 0, false)
	if err != nil {
		return nil, err
	}
	pos := n
	if pos+3 > len(payload) {
		return nil, fmt.Errorf("mkv: block header truncated")
	}
	delta := int16(uint16(payload[pos])<<8 | uint16(payload[pos+1]))
	pos += 2
	flags := payload[pos]
	pos++

	b := &Block{
		TrackNumber:   int(trackNum),
		TimecodeDelta: delta,
		KeyFrame:      flags&0x80 != 0,
		Lacing:        LacingMode((flags >> 1) & 0x03),
	}

	rest := payload[pos:]
	switch b.Lacing {
	case LaceNone:
		b.FrameOffsets = []int{pos}
		b.FrameSizes = []int{len(rest)}
	case LaceXiph:
		return parseXiphLacing(b, payload, pos)
	case LaceEBML:
		return parseEBMLLacing(b, payload, pos)
	case LaceFixed:
		return parseFixedLacing(b, payload, pos)
	default:
		return nil, fmt.Errorf("mkv: unrecognized lacing mode %d", b.Lacing)
	}
	return b, nil
}

func parseXiphLacing(b *Block, payload []byte, pos int) (*Block, error) {
	if pos >= len(payload) {
		return nil, fmt.Errorf("mkv: lacing: truncated frame count")
	}
	numFrames := int(payload[pos]) + 1
	pos++

	sizes := make([]int, 0, numFrames)
	for i := 0; i < numFrames-1; i++ {
		size := 0
		for pos < len(payload) {
			size += int(payload[pos])
			done := payload[pos] != 255
			pos++
			if done {
				break
			}
		}
		sizes = append(sizes, size)
	}
	total := 0
	for _, s := range sizes {
		total += s
	}
	last := len(payload) - pos - total
	if last < 0 {
		return nil, fmt.Errorf("mkv: lacing: sizes exceed payload")
	}
	sizes = append(sizes, last)

	offsets := make([]int, len(sizes))
	off := pos
	for i, s := range sizes {
		offsets[i] = off
		off += s
	}
	b.FrameOffsets, b.FrameSizes = offsets, sizes
	return b, nil
}

func parseEBMLLacing(b *Block, payload []byte, pos int) (*Block, error) {
	if pos >= len(payload) {
		return nil, fmt.Errorf("mkv: lacing: truncated frame count")
	}
	numFrames := int(payload[pos]) + 1
	pos++

	sizes := make([]int, 0, numFrames)
	firstSize, n, _, err := readVint(payload, pos, false)
	if err != nil {
		return nil, err
	}
	pos += n
	sizes = append(sizes, int(firstSize))

	prev := int64(firstSize)
	for i := 1; i < numFrames-1; i++ {
		v, w, _, err := readVint(payload, pos, false)
		if err != nil {
			return nil, err
		}
		pos += w
		bias := int64(1)<<(uint(w)*7-1) - 1
		delta := int64(v) - bias
		prev += delta
		if prev < 0 {
			return nil, fmt.Errorf("mkv: lacing: negative frame size")
		}
		sizes = append(sizes, int(prev))
	}
	total := 0
	for _, s := range sizes {
		total += s
	}
	if numFrames > 1 {
		last := len(payload) - pos - total
		if last < 0 {
			return nil, fmt.Errorf("mkv: lacing: sizes exceed payload")
		}
		sizes = append(sizes, last)
	}

	offsets := make([]int, len(sizes))
	off := pos
	for i, s := range sizes {
		offsets[i] = off
		off += s
	}
	b.FrameOffsets, b.FrameSizes = offsets, sizes
	return b, nil
}

func parseFixedLacing(b *Block, payload []byte, pos int) (*Block, error) {
	if pos >= len(payload) {
		return nil, fmt.Errorf("mkv: lacing: truncated frame count")
	}
	numFrames := int(payload[pos]) + 1
	pos++
	remainder := len(payload) - pos
	if remainder < 0 || remainder%numFrames != 0 {
		return nil, fmt.Errorf("mkv: lacing: fixed-size frames don't divide evenly")
	}
	frameSize := remainder / numFrames
	offsets := make([]int, numFrames)
	sizes := make([]int, numFrames)
	off := pos
	for i := 0; i < numFrames; i++ {
		offsets[i] = off
		sizes[i] = frameSize
		off += frameSize
	}
	b.FrameOffsets, b.FrameSizes = offsets, sizes
	return b, nil
}

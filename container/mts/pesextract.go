/*
NAME
  pesextract.go

DESCRIPTION
  pesextract.go implements PesPayloadHandler (§4.4): a rolling buffer
  attached to an audio StreamDetails that searches for the frame sync
  appropriate to the stream's codec, extracts each complete frame, and
  invokes the caller's frames callback.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"github.com/ausocean/mediainfo/codec/mpa"
	"github.com/ausocean/mediainfo/taxonomy"
)

// pesBufferHardCap is the point at which a stalled PesPayloadHandler
// discards its buffer rather than growing unbounded (§4.4).
const pesBufferHardCap = 100000

// pesBufferKeep is how much of a discarded buffer's tail is retained,
// to avoid losing an in-progress sync search entirely.
const pesBufferKeep = 10000

// FrameFunc is invoked once per complete audio access unit extracted
// from a PID's reassembled PES stream.
type FrameFunc func(frame []byte)

// PesPayloadHandler reassembles an elementary audio stream from PES
// payloads into whole frames, per the audio codec discovered for a
// StreamDetails.
type PesPayloadHandler struct {
	codec  taxonomy.AudioCodecKind
	onFrame FrameFunc
	buf     []byte
}

// NewPesPayloadHandler returns a handler that extracts codec-delimited
// frames and forwards each to onFrame.
func NewPesPayloadHandler(codec taxonomy.AudioCodecKind, onFrame FrameFunc) *PesPayloadHandler {
	return &PesPayloadHandler{codec: codec, onFrame: onFrame}
}

// Attach wires h to receive every payload byte fed to s from now on.
func (s *StreamDetails) Attach(h *PesPayloadHandler) {
	s.handler = h
}

// Feed appends raw PES-payload bytes (which may include the PES header
// on PUSI packets; extraction tolerates and skips over non-frame bytes
// preceding the first sync) to h's rolling buffer and extracts as many
// complete frames as are available.
func (h *PesPayloadHandler) Feed(b []byte) {
	h.buf = append(h.buf, b...)

	for {
		consumed := h.extractOne()
		if consumed <= 0 {
			break
		}
		h.buf = h.buf[consumed:]
	}

	if len(h.buf) > pesBufferHardCap {
		h.buf = append([]byte(nil), h.buf[len(h.buf)-pesBufferKeep:]...)
	}
}

// extractOne locates and emits a single complete frame from the head
// of h.buf, returning the number of bytes consumed, or 0 if no
// complete frame is yet available.
func (h *PesPayloadHandler) extractOne() int {
	switch h.codec {
	case taxonomy.MP2, taxonomy.MP3, taxonomy.MP1:
		return h.extractMPA()
	case taxonomy.AAC:
		return h.extractADTS()
	default:
		return 0 // LATM and other frame shapes are not byte-stream-delimited the same way
	}
}

func (h *PesPayloadHandler) extractMPA() int {
	for i := 0; i+mpa.HeaderSize <= len(h.buf); i++ {
		hdr, err := mpa.ParseFrameHeader(h.buf[i : i+mpa.HeaderSize])
		if err != nil {
			continue
		}
		end := i + hdr.FrameSize
		if end > len(h.buf) {
			return 0 // wait for more data
		}
		h.onFrame(h.buf[i:end])
		return end
	}
	return 0
}

// extractADTS extracts one ADTS AAC frame. The ADTS header's frame
// length field (13 bits, spanning bytes 3-5) gives the total frame
// size including the 7-byte header.
func (h *PesPayloadHandler) extractADTS() int {
	for i := 0; i+7 <= len(h.buf); i++ {
		b := h.buf[i:]
		if b[0] != 0xFF || b[1]&0xF0 != 0xF0 {
			continue
		}
		frameLen := int(b[3]&0x03)<<11 | int(b[4])<<3 | int(b[5]>>5)
		if frameLen < 7 {
			continue
		}
		end := i + frameLen
		if end > len(h.buf) {
			return 0
		}
		h.onFrame(h.buf[i:end])
		return end
	}
	return 0
}

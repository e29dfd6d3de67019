/*
NAME
  sniff_test.go

DESCRIPTION
  sniff_test.go exercises each sniffer against a small hand-built fixture
  of its format.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sniff

import (
	"encoding/binary"
	"testing"

	"github.com/ausocean/mediainfo/taxonomy"
)

func TestSniffAAC(t *testing.T) {
	// ADTS header: syncword 0xFFF, MPEG-4, no CRC, profile LC(1),
	// 44.1kHz (idx 4), 2-channel, frame_length field 0 (not checked).
	b := []byte{0xFF, 0xF1, 0x50, 0x80, 0x00, 0x1F, 0xFC}
	res, ok := SniffAAC(b)
	if !ok {
		t.Fatal("SniffAAC: no match")
	}
	if res.Container != taxonomy.AACRaw || res.Audio != taxonomy.AAC {
		t.Errorf("got %+v", res)
	}
}

func TestSniffWAV(t *testing.T) {
	var buf []byte
	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, 0, 0, 0, 0) // riff size, unchecked
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 2) // channels
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 48000)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16) // bits per sample
	buf = append(buf, 16, 0, 0, 0)
	buf = append(buf, fmtChunk...)

	res, ok := SniffWAV(buf)
	if !ok {
		t.Fatal("SniffWAV: no match")
	}
	if res.Container != taxonomy.WAV || res.SampleRate != 48000 || res.Channels != 2 {
		t.Errorf("got %+v", res)
	}
}

func TestSniffOggVorbis(t *testing.T) {
	packet := make([]byte, 16)
	packet[0] = 1
	copy(packet[1:7], "vorbis")
	binary.LittleEndian.PutUint32(packet[7:11], 0) // vorbis_version
	packet[11] = 2                                 // channels
	binary.LittleEndian.PutUint32(packet[12:16], 44100)

	var buf []byte
	buf = append(buf, []byte("OggS")...)
	buf = append(buf, 0)          // version
	buf = append(buf, 0x02)       // header_type: beginning of stream
	buf = append(buf, make([]byte, 8)...)  // granule position
	buf = append(buf, make([]byte, 4)...)  // serial number
	buf = append(buf, make([]byte, 4)...)  // page sequence number
	buf = append(buf, make([]byte, 4)...)  // checksum
	buf = append(buf, 1)          // segment_count
	buf = append(buf, byte(len(packet)))
	buf = append(buf, packet...)

	res, ok := SniffOgg(buf)
	if !ok {
		t.Fatal("SniffOgg: no match")
	}
	if res.Audio != taxonomy.Vorbis || res.SampleRate != 44100 || res.Channels != 2 {
		t.Errorf("got %+v", res)
	}
}

func TestSniffersRejectGarbage(t *testing.T) {
	garbage := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	for _, fn := range All {
		if _, ok := fn(garbage); ok {
			t.Error("sniffer matched garbage input")
		}
	}
}

/*
NAME
  header_test.go

DESCRIPTION
  header_test.go hand-builds a minimal Header Object (one File
  Properties Object and one audio Stream Properties Object wrapping a
  WMAv2 WAVEFORMATEX) and checks ParseHeader's field extraction.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package asf

import (
	"encoding/binary"
	"testing"

	"github.com/ausocean/mediainfo/codec/asfguid"
	"github.com/ausocean/mediainfo/taxonomy"
)

func u16le(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func u32le(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
func u64le(v uint64) []byte { b := make([]byte, 8); binary.LittleEndian.PutUint64(b, v); return b }

// buildFileProperties builds a well-formed File Properties Object with
// the given duration (100ns units) and a matching min/max packet size
// (parseFileProperties rejects a mismatched pair, §4.5).
func buildFileProperties(playDuration uint64, packetSize uint32) []byte {
	body := make([]byte, 80) // need(104) == 80
	copy(body[40:48], u64le(playDuration)) // PlayDuration, object offset 64
	copy(body[68:72], u32le(packetSize))   // MinPacketSize, object offset 92
	copy(body[72:76], u32le(packetSize))   // MaxPacketSize, object offset 96
	obj := append([]byte{}, asfguid.Format(asfguid.FilePropertiesObject)...)
	obj = append(obj, u64le(uint64(24+len(body)))...)
	return append(obj, body...)
}

// buildAudioStreamProperties builds a Stream Properties Object for an
// audio stream carrying a fixed (no-extension) WAVEFORMATEX.
func buildAudioStreamProperties(streamNumber int, formatTag, channels uint16, samplesPerSec, avgBytesPerSec uint32) []byte {
	body := make([]byte, 54+16) // need(78) == 54, plus a bare 16-byte WAVEFORMATEX
	copy(body[0:16], asfguid.Format(asfguid.StreamTypeAudio))
	binary.LittleEndian.PutUint16(body[48:50], uint16(streamNumber)&0x7f)
	wf := body[54:]
	copy(wf[0:2], u16le(formatTag))
	copy(wf[2:4], u16le(channels))
	copy(wf[4:8], u32le(samplesPerSec))
	copy(wf[8:12], u32le(avgBytesPerSec))
	obj := append([]byte{}, asfguid.Format(asfguid.StreamPropertiesObject)...)
	obj = append(obj, u64le(uint64(24+len(body)))...)
	return append(obj, body...)
}

func TestParseHeaderFileAndAudioStream(t *testing.T) {
	const packetSize = 3200
	fpo := buildFileProperties(10*1e7, packetSize) // 10 seconds, 100ns units
	spo := buildAudioStreamProperties(1, 0x0161, 2, 44100, 12000)

	children := append(append([]byte{}, fpo...), spo...)
	headerBody := append([]byte{}, asfguid.Format(asfguid.HeaderObject)...)
	totalSize := uint64(24 + 4 + 2 + len(children))
	headerBody = append(headerBody, u64le(totalSize)...)
	headerBody = append(headerBody, u32le(2)...) // numObjects
	headerBody = append(headerBody, 0, 0)         // reserved
	headerBody = append(headerBody, children...)

	hdr, err := ParseHeader(headerBody)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if hdr.File == nil {
		t.Fatal("expected File Properties Object to be parsed")
	}
	secs, ok := hdr.File.DurationSeconds()
	if !ok || secs != 10 {
		t.Errorf("DurationSeconds() = %v, %v; want 10, true", secs, ok)
	}
	if len(hdr.Streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(hdr.Streams))
	}
	s := hdr.Streams[0]
	if !s.IsAudio || s.StreamNumber != 1 {
		t.Errorf("stream = %+v, want audio stream 1", s)
	}
	if s.AudioCodec != taxonomy.WMAV2 {
		t.Errorf("AudioCodec = %v, want WMAV2", s.AudioCodec)
	}
	if s.ChannelCount != 2 || s.SampleRate != 44100 {
		t.Errorf("got channels=%d rate=%d, want 2, 44100", s.ChannelCount, s.SampleRate)
	}
}

func TestParseHeaderRejectsWrongGUID(t *testing.T) {
	b := append([]byte{}, asfguid.Format(asfguid.DataObject)...)
	b = append(b, u64le(30)...)
	b = append(b, u32le(0)...)
	b = append(b, 0, 0)
	if _, err := ParseHeader(b); err == nil {
		t.Fatal("expected error for non-Header-Object GUID")
	}
}

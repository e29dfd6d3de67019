/*
NAME
  demux_test.go

DESCRIPTION
  demux_test.go exercises Demuxer against a hand-built minimal WebM
  element stream: EBML header, a Tracks section with one Opus audio
  track, and a Cluster containing a SimpleBlock, verifying readiness,
  track metadata, and lacing-free frame delivery.

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
	"testing"
)

// ebmlSize encodes n as an EBML size vint of the given width (1-8
// bytes), marker bit set; it panics if n does not fit that width.
func ebmlSize(n uint64, width int) []byte {
	b := make([]byte, width)
	marker := byte(0x80) >> uint(width-1)
	maxVal := uint64(1)<<(uint(width)*7) - 1
	if n > maxVal {
		panic("value too large for width")
	}
	v := n
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	b[0] |= marker
	return b
}

func elem(id uint32, idBytes int, content []byte) []byte {
	var idb []byte
	switch idBytes {
	case 1:
		idb = []byte{byte(id)}
	case 2:
		idb = []byte{byte(id >> 8), byte(id)}
	case 4:
		idb = []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	}
	out := append([]byte{}, idb...)
	out = append(out, ebmlSize(uint64(len(content)), 1)...)
	out = append(out, content...)
	return out
}

func buildOpusHead(channels int, inputRate uint32) []byte {
	b := make([]byte, 19)
	copy(b[0:8], "OpusHead")
	b[8] = 1
	b[9] = byte(channels)
	b[12] = byte(inputRate)
	b[13] = byte(inputRate >> 8)
	b[14] = byte(inputRate >> 16)
	b[15] = byte(inputRate >> 24)
	return b
}

func TestDemuxerWebMOpus(t *testing.T) {
	trackEntry := elem(IDTrackNumber, 1, []byte{1})
	trackEntry = append(trackEntry, elem(IDTrackType, 1, []byte{TrackTypeAudio})...)
	trackEntry = append(trackEntry, elem(IDCodecID, 1, []byte("A_OPUS"))...)
	trackEntry = append(trackEntry, elem(IDCodecPrivate, 2, buildOpusHead(2, 48000))...)
	audio := elem(IDChannels, 1, []byte{2})
	trackEntry = append(trackEntry, elem(IDAudio, 1, audio)...)

	tracks := elem(IDTracks, 4, elem(IDTrackEntry, 1, trackEntry))

	docType := elem(IDDocType, 2, []byte("webm"))
	ebmlHdr := elem(IDEBML, 4, docType)

	simpleBlockPayload := append([]byte{0x81, 0x00, 0x00, 0x80}, []byte("frame-data")...)
	cluster := elem(IDTimecode, 1, []byte{0})
	cluster = append(cluster, elem(IDSimpleBlock, 1, simpleBlockPayload)...)
	clusterElem := elem(IDCluster, 4, cluster)

	stream := append([]byte{}, ebmlHdr...)
	stream = append(stream, tracks...)
	stream = append(stream, clusterElem...)

	var got []string
	d := NewDemuxer()
	d.OnSample = func(data []byte, meta SampleMeta) error {
		got = append(got, string(data))
		if meta.TrackNumber != 1 {
			t.Errorf("track number = %d, want 1", meta.TrackNumber)
		}
		return nil
	}
	if err := d.Write(stream); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !d.Ready {
		t.Fatal("expected demuxer to become ready")
	}
	if d.DocType != "webm" {
		t.Errorf("DocType = %q, want webm", d.DocType)
	}
	tr, ok := d.Tracks[1]
	if !ok {
		t.Fatal("track 1 not found")
	}
	if tr.AudioCodec != "opus" {
		t.Errorf("AudioCodec = %q, want opus", tr.AudioCodec)
	}
	if tr.Channels != 2 {
		t.Errorf("Channels = %d, want 2", tr.Channels)
	}
	if len(got) != 1 || got[0] != "frame-data" {
		t.Errorf("samples = %v, want [frame-data]", got)
	}
}

func TestReadVintWidths(t *testing.T) {
	// A single-byte vint: 0x81 -> width 1, value 1.
	v, w, unknown, err := readVint([]byte{0x81}, 0, false)
	if err != nil || w != 1 || v != 1 || unknown {
		t.Fatalf("got v=%d w=%d unknown=%v err=%v", v, w, unknown, err)
	}
	// A two-byte vint: 0x40 0x7F -> width 2, value 0x7F.
	v, w, unknown, err = readVint([]byte{0x40, 0x7F}, 0, false)
	if err != nil || w != 2 || v != 0x7F || unknown {
		t.Fatalf("got v=%d w=%d unknown=%v err=%v", v, w, unknown, err)
	}
}

func TestParseBlockFixedLacing(t *testing.T) {
	// Track number vint=1, timecode delta=0, flags: lacing=fixed(2),
	// numFrames-1=2 (3 frames), then 9 bytes split into 3x3.
	payload := []byte{0x81, 0x00, 0x00, 0x04}
	payload = append(payload, 2) // numFrames-1
	payload = append(payload, []byte("abcdefghi")...)
	blk, err := ParseBlock(payload)
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	if len(blk.FrameSizes) != 3 {
		t.Fatalf("got %d frames, want 3", len(blk.FrameSizes))
	}
	for _, s := range blk.FrameSizes {
		if s != 3 {
			t.Errorf("frame size = %d, want 3", s)
		}
	}
}

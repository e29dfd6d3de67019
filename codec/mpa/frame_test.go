package mpa

import "testing"

func TestParseFrameHeaderMPEG1LayerIII(t *testing.T) {
	// 0xFF 0xFB 0x90 0x64: MPEG-1, Layer III, no CRC, bitrate idx 9
	// (128kbps), sample rate idx 0 (44100), no padding, joint stereo.
	b := []byte{0xFF, 0xFB, 0x90, 0x64}
	h, err := ParseFrameHeader(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.MPEGVersion != MPEG1 {
		t.Errorf("got version %v, want MPEG1", h.MPEGVersion)
	}
	if h.Layer != LayerIII {
		t.Errorf("got layer %v, want LayerIII", h.Layer)
	}
	if h.Bitrate != 128 {
		t.Errorf("got bitrate %d, want 128", h.Bitrate)
	}
	if h.SampleRate != 44100 {
		t.Errorf("got sample rate %d, want 44100", h.SampleRate)
	}
	if h.Padding {
		t.Error("expected no padding")
	}
	wantSize := 1152/8*128*1000/44100 + 0
	if h.FrameSize != wantSize {
		t.Errorf("got frame size %d, want %d", h.FrameSize, wantSize)
	}
}

func TestParseFrameHeaderRejectsBadSync(t *testing.T) {
	b := []byte{0x00, 0x00, 0x90, 0x64}
	if _, err := ParseFrameHeader(b); err == nil {
		t.Fatal("expected error for bad syncword")
	}
}

func TestParseFrameHeaderRejectsReservedBitrate(t *testing.T) {
	// bitrate index 15 (reserved) for MPEG1 Layer III.
	b := []byte{0xFF, 0xFB, 0xF0, 0x64}
	if _, err := ParseFrameHeader(b); err == nil {
		t.Fatal("expected error for reserved bitrate index")
	}
}

func TestVersionAndLayerStringers(t *testing.T) {
	cases := []struct {
		v    Version
		want string
	}{{MPEG1, "MPEG-1"}, {MPEG2, "MPEG-2"}, {MPEG25, "MPEG-2.5"}}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("Version(%d).String() = %q, want %q", c.v, got, c.want)
		}
	}
	if LayerIII.String() != "Layer III" {
		t.Errorf("got %q", LayerIII.String())
	}
}

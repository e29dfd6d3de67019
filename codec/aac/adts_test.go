package aac

import (
	"bytes"
	"testing"
)

func TestParseADTSHeaderKnownBytes(t *testing.T) {
	// FF F1 50 80 01 1F FC is a valid 7-byte ADTS header (LC, 44100Hz, stereo).
	b := []byte{0xFF, 0xF1, 0x50, 0x80, 0x01, 0x1F, 0xFC}
	h, err := ParseADTSHeader(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.SampleRate != 44100 {
		t.Errorf("got sample rate %d, want 44100", h.SampleRate)
	}
	if h.ChannelConfiguration != 2 {
		t.Errorf("got channel config %d, want 2", h.ChannelConfiguration)
	}
}

func TestParseADTSHeaderRejectsBadSync(t *testing.T) {
	b := []byte{0x00, 0x00, 0x4C, 0x80, 0x01, 0x1F, 0xFC}
	if _, err := ParseADTSHeader(b); err == nil {
		t.Fatal("expected error for bad syncword")
	}
}

func TestParseADTSHeaderRejectsNonZeroLayer(t *testing.T) {
	// Set layer bits (bits 1-2 of byte 1) to non-zero.
	b := []byte{0xFF, 0xF3, 0x4C, 0x80, 0x01, 0x1F, 0xFC}
	if _, err := ParseADTSHeader(b); err == nil {
		t.Fatal("expected error for non-zero layer")
	}
}

func TestBuildParseADTSRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 37)
	for _, sr := range SamplingFrequencies {
		for ch := 1; ch <= 7; ch++ {
			for profile := 0; profile <= 3; profile++ {
				frame, err := BuildADTSFrame(payload, sr, ch, profile)
				if err != nil {
					t.Fatalf("sr=%d ch=%d profile=%d: build error: %v", sr, ch, profile, err)
				}
				h, err := ParseADTSHeader(frame)
				if err != nil {
					t.Fatalf("sr=%d ch=%d profile=%d: parse error: %v", sr, ch, profile, err)
				}
				if h.SampleRate != sr {
					t.Errorf("sr=%d ch=%d profile=%d: got sample rate %d", sr, ch, profile, h.SampleRate)
				}
				if h.ChannelConfiguration != ch {
					t.Errorf("sr=%d ch=%d profile=%d: got channel count %d", sr, ch, profile, h.ChannelConfiguration)
				}
				if h.Profile != profile {
					t.Errorf("sr=%d ch=%d profile=%d: got profile %d", sr, ch, profile, h.Profile)
				}
				if h.FrameLength != HeaderSize+len(payload) {
					t.Errorf("sr=%d ch=%d profile=%d: got frame length %d, want %d", sr, ch, profile, h.FrameLength, HeaderSize+len(payload))
				}
			}
		}
	}
}

func TestBuildADTSFrameRejectsBadSampleRate(t *testing.T) {
	if _, err := BuildADTSFrame([]byte{1, 2, 3}, 12345, 2, 1); err == nil {
		t.Fatal("expected error for unsupported sample rate")
	}
}

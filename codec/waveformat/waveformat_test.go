package waveformat

import (
	"bytes"
	"testing"
)

func TestParseBuildRoundTrip(t *testing.T) {
	w := &WaveFormatEx{
		FormatTag:      FormatPCM,
		Channels:       2,
		SamplesPerSec:  44100,
		AvgBytesPerSec: 44100 * 2 * 2,
		BlockAlign:     4,
		BitsPerSample:  16,
	}
	b := Build(w)
	if len(b) != HeaderSize {
		t.Fatalf("got %d bytes, want %d (no extra data)", len(b), HeaderSize)
	}
	got, err := Parse(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FormatTag != w.FormatTag || got.Channels != w.Channels ||
		got.SamplesPerSec != w.SamplesPerSec || got.AvgBytesPerSec != w.AvgBytesPerSec ||
		got.BlockAlign != w.BlockAlign || got.BitsPerSample != w.BitsPerSample {
		t.Errorf("got %+v, want %+v", got, w)
	}
}

func TestParseRejectsShortHeader(t *testing.T) {
	if _, err := Parse(make([]byte, 10)); err == nil {
		t.Fatal("expected error for short header")
	}
}

func TestADPCMExtensionRoundTrip(t *testing.T) {
	extra := BuildADPCMExtension(500)
	ext, err := ParseADPCMExtension(extra)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.SamplesPerBlock != 500 {
		t.Errorf("got samples per block %d, want 500", ext.SamplesPerBlock)
	}
	if len(ext.Coefficients) != len(ADPCMCoefficients) {
		t.Fatalf("got %d coefficient pairs, want %d", len(ext.Coefficients), len(ADPCMCoefficients))
	}
	for i, c := range ADPCMCoefficients {
		if ext.Coefficients[i] != c {
			t.Errorf("pair %d: got %v, want %v", i, ext.Coefficients[i], c)
		}
	}
}

func TestParseWithExtraData(t *testing.T) {
	w := &WaveFormatEx{FormatTag: FormatADPCM, Channels: 1, SamplesPerSec: 8000,
		AvgBytesPerSec: 4096, BlockAlign: 256, BitsPerSample: 4,
		ExtraData: BuildADPCMExtension(500)}
	b := Build(w)
	got, err := Parse(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got.ExtraData, w.ExtraData) {
		t.Errorf("got extra data %v, want %v", got.ExtraData, w.ExtraData)
	}
}

func TestCodecKindMapsKnownTags(t *testing.T) {
	cases := map[uint16]string{
		FormatADPCM:      "adpcm_ms",
		FormatMPEGLayer3: "mp3",
		FormatWMAudioV2:  "wmav2",
	}
	for tag, want := range cases {
		if got := string(CodecKind(tag)); got != want {
			t.Errorf("CodecKind(0x%04x) = %q, want %q", tag, got, want)
		}
	}
}

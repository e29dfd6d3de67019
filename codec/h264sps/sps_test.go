package h264sps

import "testing"

func TestParseSPSBaselineProfile(t *testing.T) {
	// Baseline profile (66) SPS, no chroma-info section, level 3.0,
	// pic_width_in_mbs_minus1=10 (176px), pic_height_in_map_units_minus1=8
	// (144px), frame_mbs_only_flag=1, direct_8x8_inference_flag=1,
	// frame_cropping_flag=0. All ue(0) ids, max_num_ref_frames=1. Bits
	// after the level byte: 1 1 1 1 (id, log2_max_frame_num, poc type 0,
	// poc lsb) 010 0 (ref frames=1, gaps=0) 0001011 (width ue=10)
	// 0001001 (height ue=8) 1 1 0 (frame_mbs_only, direct_8x8, no crop).
	rbsp := []byte{0x42, 0x00, 0x1E, 0xF4, 0x16, 0x27, 0x00}

	sps, err := ParseSPS(rbsp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sps.Profile != 66 {
		t.Errorf("got profile %d, want 66", sps.Profile)
	}
	if sps.LevelIDC != 30 {
		t.Errorf("got level %d, want 30", sps.LevelIDC)
	}
	if sps.Width != 176 {
		t.Errorf("got width %d, want 176", sps.Width)
	}
	if sps.Height != 144 {
		t.Errorf("got height %d, want 144", sps.Height)
	}
	if sps.ChromaFormatIDC != 1 {
		t.Errorf("got chroma format %d, want inferred 1 (4:2:0)", sps.ChromaFormatIDC)
	}
}

func TestCodecDetailFormatsAVC1String(t *testing.T) {
	sps := &SPS{Profile: 0x64, Constraint0: true, LevelIDC: 0x28}
	got := sps.CodecDetail()
	want := "avc1.648028"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRemoveEmulationPreventionStripsThreeByte(t *testing.T) {
	in := []byte{0x00, 0x00, 0x03, 0x01, 0x00, 0x00, 0x03, 0x02, 0x00, 0x00}
	want := []byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x02, 0x00, 0x00}
	got := RemoveEmulationPrevention(in)
	if len(got) != len(want) {
		t.Fatalf("got length %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}
}

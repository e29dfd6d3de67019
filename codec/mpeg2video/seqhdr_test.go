package mpeg2video

import "testing"

func TestFindStartCode(t *testing.T) {
	b := []byte{0xAA, 0x00, 0x00, 0x01, 0xB3, 0x12, 0x34}
	off := FindStartCode(b, sequenceHeaderStartCode, 0)
	if off != 5 {
		t.Fatalf("got offset %d, want 5", off)
	}
}

func TestFindStartCodeNotFound(t *testing.T) {
	b := []byte{0x00, 0x00, 0x01, 0xB5}
	if off := FindStartCode(b, sequenceHeaderStartCode, 0); off != -1 {
		t.Fatalf("got offset %d, want -1", off)
	}
}

func TestParseSequenceHeader(t *testing.T) {
	// horizontal_size=720(12 bits), vertical_size=480(12 bits),
	// aspect_ratio_information=2(4 bits, "4:3"), frame_rate_code=5(4 bits,
	// 30fps), bit_rate_value=0(18 bits), marker_bit=1, vbv_buffer_size=0
	// (10 bits), constrained_parameters_flag=0, load_intra_quantiser=0,
	// load_non_intra_quantiser=0.
	bits := []int{}
	bits = append(bits, bitsOf(720, 12)...)
	bits = append(bits, bitsOf(480, 12)...)
	bits = append(bits, bitsOf(2, 4)...)
	bits = append(bits, bitsOf(5, 4)...)
	bits = append(bits, bitsOf(0, 18)...)
	bits = append(bits, 1) // marker_bit
	bits = append(bits, bitsOf(0, 10)...)
	bits = append(bits, 0, 0, 0)

	b := packBits(bits)
	sh, err := ParseSequenceHeader(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sh.Width != 720 || sh.Height != 480 {
		t.Errorf("got %dx%d, want 720x480", sh.Width, sh.Height)
	}
	if sh.AspectRatio != "4:3" {
		t.Errorf("got aspect ratio %q, want 4:3", sh.AspectRatio)
	}
	if sh.FrameRateNum != 30 || sh.FrameRateDen != 1 {
		t.Errorf("got frame rate %d/%d, want 30/1", sh.FrameRateNum, sh.FrameRateDen)
	}
}

func bitsOf(v, n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = (v >> (n - 1 - i)) & 1
	}
	return out
}

func packBits(bits []int) []byte {
	nbytes := (len(bits) + 7) / 8
	out := make([]byte, nbytes)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

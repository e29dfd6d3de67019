package aac

import "testing"

func TestParseLOASHeader(t *testing.T) {
	// sync=0x2B7 (11 bits: 01010110111), payloadLength=10 (13 bits:
	// 0000000001010). Packed big-endian across 3 bytes: 0x56, 0xE0, 0x0A.
	b := []byte{0x56, 0xE0, 0x0A}
	n, err := ParseLOASHeader(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 10 {
		t.Errorf("got payload length %d, want 10", n)
	}
}

func TestParseLOASHeaderRejectsBadSync(t *testing.T) {
	b := []byte{0x00, 0x00, 0x00}
	if _, err := ParseLOASHeader(b); err == nil {
		t.Fatal("expected error for bad LOAS syncword")
	}
}

func TestParseAudioMuxElementUseSameStreamMux(t *testing.T) {
	// useSameStreamMux = 1, rest of byte irrelevant.
	f, err := ParseAudioMuxElement([]byte{0x80})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Config != nil {
		t.Errorf("expected nil Config when useSameStreamMux is set")
	}
}

func TestParseAudioMuxElementFullConfig(t *testing.T) {
	// useSameStreamMux=0, audioMuxVersion=0, allStreamsSameTimeFraming=1,
	// numSubFrames=0(6 bits), numProgram=0(4 bits), numLayer=0(3 bits),
	// then ASC (AOT=2,freqIdx=4,chanConfig=2 -> 0x12,0x10 as bytes when
	// byte-aligned), then frameLengthType=0(3 bits), latmBufferFullness=0
	// (8 bits), otherDataPresent=0, crcCheckPresent=0.
	//
	// Bit sequence after the leading useSameStreamMux=0:
	// 0 (audioMuxVersion) 1 (allStreamsSameTimeFraming)
	// 000000 (numSubFrames) 0000 (numProgram) 000 (numLayer)
	// = 1 + 1 + 6 + 4 + 3 = 15 bits before ASC.
	c := buildAudioMuxElementPayload(t)
	f, err := ParseAudioMuxElement(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Config == nil {
		t.Fatal("expected non-nil Config")
	}
	if f.Config.SampleRate != 44100 || f.Config.ChannelCount != 2 {
		t.Errorf("got %+v", f.Config)
	}
}

// buildAudioMuxElementPayload hand-packs the bitstream described in
// TestParseAudioMuxElementFullConfig's comment.
func buildAudioMuxElementPayload(t *testing.T) []byte {
	t.Helper()
	bits := []int{0} // useSameStreamMux
	bits = append(bits, 0)          // audioMuxVersion
	bits = append(bits, 1)          // allStreamsSameTimeFraming
	bits = append(bits, bitsOf(0, 6)...) // numSubFrames
	bits = append(bits, bitsOf(0, 4)...) // numProgram
	bits = append(bits, bitsOf(0, 3)...) // numLayer
	// ASC: AOT=2(5), freqIdx=4(4), chanConfig=2(4)
	bits = append(bits, bitsOf(2, 5)...)
	bits = append(bits, bitsOf(4, 4)...)
	bits = append(bits, bitsOf(2, 4)...)
	// frameLengthType=0(3), latmBufferFullness=0(8), otherDataPresent=0(1), crcCheckPresent=0(1)
	bits = append(bits, bitsOf(0, 3)...)
	bits = append(bits, bitsOf(0, 8)...)
	bits = append(bits, 0, 0)

	return packBits(bits)
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

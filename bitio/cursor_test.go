package bitio

import "testing"

func TestReadBits(t *testing.T) {
	// 1000 1111, 1110 0011
	buf := []byte{0x8f, 0xe3}
	c := NewCursor(buf)

	tests := []struct {
		n    int
		want uint32
	}{
		{4, 0x8},
		{2, 0x3},
		{4, 0xf},
		{6, 0x23},
	}
	for i, tt := range tests {
		got, err := c.ReadBits(tt.n)
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		if got != tt.want {
			t.Errorf("case %d: got 0x%x, want 0x%x", i, got, tt.want)
		}
	}
}

func TestReadUe(t *testing.T) {
	// Exp-Golomb codes for 0,1,2,3,4 packed MSB-first:
	// 0 -> 1
	// 1 -> 010
	// 2 -> 011
	// 3 -> 00100
	// 4 -> 00101
	c := NewCursor([]byte{0b1_010_011_0, 0b0100_0010, 0b1_0000000})
	want := []uint32{0, 1, 2, 3, 4}
	for i, w := range want {
		got, err := c.ReadUe()
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("case %d: got %d want %d", i, got, w)
		}
	}
}

func TestReadSe(t *testing.T) {
	// ue values 1,2,3,4 map to se values 1,-1,2,-2.
	c := NewCursor([]byte{0b010_011_0_0, 0b100_00101})
	want := []int32{1, -1, 2, -2}
	for i, w := range want {
		got, err := c.ReadSe()
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("case %d: got %d want %d", i, got, w)
		}
	}
}

func TestReadUeRejectsMalformed(t *testing.T) {
	buf := make([]byte, 10) // all zero bits: unbounded leading-zero run
	c := NewCursor(buf)
	if _, err := c.ReadUe(); err == nil {
		t.Fatal("expected error for malformed exp-golomb input")
	}
}

func TestReadBitsEndOfStream(t *testing.T) {
	c := NewCursor([]byte{0xff})
	if _, err := c.ReadBits(9); err != ErrEndOfStream {
		t.Fatalf("got %v, want ErrEndOfStream", err)
	}
}

func TestByteAlignedAndBitsRead(t *testing.T) {
	c := NewCursor([]byte{0xff, 0xff})
	if !c.ByteAligned() {
		t.Fatal("expected aligned at start")
	}
	c.ReadBits(4)
	if c.ByteAligned() {
		t.Fatal("expected unaligned after 4 bits")
	}
	if c.BitsRead() != 4 {
		t.Fatalf("got %d bits read, want 4", c.BitsRead())
	}
}

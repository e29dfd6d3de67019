package asfguid

import "testing"

func TestParseRoundTripsKnownGUID(t *testing.T) {
	// ASF Header Object GUID {75B22630-668E-11CF-A6D9-00AA0062CE6C},
	// stored little-endian per field as it appears on disk.
	b := []byte{
		0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
		0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
	}
	g, err := Parse(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != HeaderObject {
		t.Errorf("got %v, want HeaderObject %v", g, HeaderObject)
	}
	if Name(g) != "Header" {
		t.Errorf("got name %q, want Header", Name(g))
	}
}

func TestFormatRoundTripsParse(t *testing.T) {
	b := []byte{
		0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
		0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
	}
	g, err := Parse(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Format(g)
	if string(got) != string(b) {
		t.Errorf("got %x, want %x", got, b)
	}
}

func TestParseRejectsShortInput(t *testing.T) {
	if _, err := Parse(make([]byte, 8)); err == nil {
		t.Fatal("expected error for short GUID")
	}
}

func TestReadVarLengthField(t *testing.T) {
	b := []byte{0x00, 0x2A, 0x01}
	v, n, err := ReadVarLengthField(b, 1, VarLenByte)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x2A || n != 1 {
		t.Errorf("got value=%d consumed=%d, want 0x2A/1", v, n)
	}
}

func TestReadVarLengthFieldNone(t *testing.T) {
	v, n, err := ReadVarLengthField(nil, 0, VarLenNone)
	if err != nil || v != 0 || n != 0 {
		t.Errorf("got %d/%d/%v, want 0/0/nil", v, n, err)
	}
}

package esdesc

import "testing"

func TestDecodeLanguageDescriptor(t *testing.T) {
	d, ok, err := Decode(Raw{Tag: TagLanguage, Data: []byte("eng\x00")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || d.Language == nil {
		t.Fatal("expected a decoded language descriptor")
	}
	if d.Language.Tag.String() != "en" {
		t.Errorf("got language tag %q, want en", d.Language.Tag.String())
	}
}

func TestDecodeRegistrationDescriptor(t *testing.T) {
	d, ok, err := Decode(Raw{Tag: TagRegistration, Data: []byte("AC-3")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || d.Registration == nil {
		t.Fatal("expected a decoded registration descriptor")
	}
	if d.Registration.FormatIdentifier != "AC-3" {
		t.Errorf("got %q, want AC-3", d.Registration.FormatIdentifier)
	}
}

func TestDecodeAC3Descriptor(t *testing.T) {
	// flags: component_type_flag=1, bsid_flag=1, others 0.
	data := []byte{0xC0, 0x07, 0x08}
	d, ok, err := Decode(Raw{Tag: TagAC3, Data: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || d.AC3 == nil {
		t.Fatal("expected a decoded AC-3 descriptor")
	}
	if !d.AC3.ComponentTypeFlag || d.AC3.ComponentType != 0x07 {
		t.Errorf("got component type flag/value %v/%x", d.AC3.ComponentTypeFlag, d.AC3.ComponentType)
	}
	if !d.AC3.BSIDFlag || d.AC3.BSID != 0x08 {
		t.Errorf("got bsid flag/value %v/%x", d.AC3.BSIDFlag, d.AC3.BSID)
	}
	if d.AC3.Enhanced {
		t.Error("expected Enhanced=false for tag 0x6A")
	}
}

func TestDecodeUnrecognizedTagIsNotOK(t *testing.T) {
	_, ok, err := Decode(Raw{Tag: 0xFF, Data: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for unrecognized tag")
	}
}

func TestDecodeLoop(t *testing.T) {
	buf := []byte{
		TagLanguage, 4, 'e', 'n', 'g', 0,
		TagRegistration, 4, 'A', 'C', '-', '3',
	}
	out, err := DecodeLoop(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(out))
	}
	if out[0].Language == nil || out[1].Registration == nil {
		t.Errorf("got %+v", out)
	}
}

func TestDecodeLoopRejectsTruncatedDescriptor(t *testing.T) {
	buf := []byte{TagLanguage, 10, 'e', 'n', 'g'}
	if _, err := DecodeLoop(buf); err == nil {
		t.Fatal("expected error for truncated descriptor")
	}
}

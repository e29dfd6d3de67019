/*
NAME
  desc.go

DESCRIPTION
  desc.go interprets the MPEG-TS/PSI elementary-stream descriptor loop
  (§4.2): ISO 639 language, registration, AVC video, and AC-3/E-AC-3/
  DTS audio descriptors, generalized from the teacher's raw tag/len/data
  Descriptor shape in container/mts/psi/psi.go. The HEVC video tag is
  declared but not decoded: Decode reports it as unrecognized.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package esdesc interprets the descriptor loop attached to MPEG-TS PMT
// elementary streams, turning raw tag/length/data triples into typed
// language, registration, and codec-identification descriptors (§4.2).
package esdesc

import (
	"fmt"

	"golang.org/x/text/language"
)

// Recognized descriptor tags (ISO/IEC 13818-1 table 2-45, plus the DVB
// private tags used for AC-3/E-AC-3/DTS carriage).
const (
	TagRegistration = 0x05
	TagLanguage     = 0x0A
	TagAVCVideo     = 0x28
	TagAC3          = 0x6A
	TagHEVCVideo    = 0x38
	TagEAC3         = 0x7A
	TagDTS          = 0x7B
)

// Raw is an undecoded descriptor as read off the wire: tag, length, and
// payload, mirroring psi.Descriptor's {Tag, Len, Data} shape.
type Raw struct {
	Tag  byte
	Data []byte
}

// LanguageDescriptor holds a decoded ISO_639_language_descriptor entry.
type LanguageDescriptor struct {
	Tag      language.Tag
	AudioType byte
}

// RegistrationDescriptor identifies the private-data format carried by a
// stream via its 4-byte format identifier (e.g. "AC-3", "BSSD").
type RegistrationDescriptor struct {
	FormatIdentifier string
}

// AVCVideoDescriptor carries the AVC profile/level/constraint fields
// duplicated from the SPS, per the MPEG-TS AVC_video_descriptor.
type AVCVideoDescriptor struct {
	ProfileIDC    byte
	ConstraintSet byte
	LevelIDC      byte
}

// AC3Descriptor holds the fields of an AC-3 (or enhanced AC-3) descriptor
// needed to identify component type and bitstream mode.
type AC3Descriptor struct {
	ComponentTypeFlag bool
	ComponentType     byte
	BSIDFlag          bool
	BSID              byte
	MainIDFlag        bool
	MainID            byte
	ASVCFlag          bool
	ASVC              byte
	Enhanced          bool // true for E-AC-3 (tag 0x7A)
}

// Decoded is the union of descriptor kinds Decode understands. Exactly
// one field is non-nil.
type Decoded struct {
	Language     *LanguageDescriptor
	Registration *RegistrationDescriptor
	AVCVideo     *AVCVideoDescriptor
	AC3          *AC3Descriptor
	DTS          bool // DTS descriptor present; no further fields decoded
}

// Decode interprets a raw descriptor. It returns ok=false for tags not
// in the recognized set, which callers should treat as informational
// only (not an error).
func Decode(r Raw) (Decoded, bool, error) {
	switch r.Tag {
	case TagLanguage:
		d, err := decodeLanguage(r.Data)
		if err != nil {
			return Decoded{}, false, err
		}
		return Decoded{Language: d}, true, nil
	case TagRegistration:
		d, err := decodeRegistration(r.Data)
		if err != nil {
			return Decoded{}, false, err
		}
		return Decoded{Registration: d}, true, nil
	case TagAVCVideo:
		d, err := decodeAVCVideo(r.Data)
		if err != nil {
			return Decoded{}, false, err
		}
		return Decoded{AVCVideo: d}, true, nil
	case TagAC3, TagEAC3:
		d, err := decodeAC3(r.Data, r.Tag == TagEAC3)
		if err != nil {
			return Decoded{}, false, err
		}
		return Decoded{AC3: d}, true, nil
	case TagDTS:
		return Decoded{DTS: true}, true, nil
	default:
		return Decoded{}, false, nil
	}
}

func decodeLanguage(data []byte) (*LanguageDescriptor, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("esdesc: language descriptor requires 4 bytes, got %d", len(data))
	}
	code := string(data[0:3])
	tag, err := language.ParseBase(code)
	var lt language.Tag
	if err == nil {
		lt = language.Make(tag.String())
	} else {
		lt = language.Und
	}
	return &LanguageDescriptor{Tag: lt, AudioType: data[3]}, nil
}

func decodeRegistration(data []byte) (*RegistrationDescriptor, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("esdesc: registration descriptor requires 4 bytes, got %d", len(data))
	}
	return &RegistrationDescriptor{FormatIdentifier: string(data[0:4])}, nil
}

func decodeAVCVideo(data []byte) (*AVCVideoDescriptor, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("esdesc: AVC video descriptor requires 4 bytes, got %d", len(data))
	}
	return &AVCVideoDescriptor{
		ProfileIDC:    data[0],
		ConstraintSet: data[1],
		LevelIDC:      data[2],
	}, nil
}

func decodeAC3(data []byte, enhanced bool) (*AC3Descriptor, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("esdesc: AC-3 descriptor requires at least 1 byte")
	}
	d := &AC3Descriptor{Enhanced: enhanced}
	flags := data[0]
	d.ComponentTypeFlag = flags&0x80 != 0
	d.BSIDFlag = flags&0x40 != 0
	d.MainIDFlag = flags&0x20 != 0
	d.ASVCFlag = flags&0x10 != 0

	pos := 1
	if d.ComponentTypeFlag {
		if pos >= len(data) {
			return d, nil
		}
		d.ComponentType = data[pos]
		pos++
	}
	if d.BSIDFlag {
		if pos >= len(data) {
			return d, nil
		}
		d.BSID = data[pos]
		pos++
	}
	if d.MainIDFlag {
		if pos >= len(data) {
			return d, nil
		}
		d.MainID = data[pos]
		pos++
	}
	if d.ASVCFlag {
		if pos >= len(data) {
			return d, nil
		}
		d.ASVC = data[pos]
		pos++
	}
	return d, nil
}

// DecodeLoop decodes every descriptor in a concatenated descriptor loop
// buffer (tag, length, data repeated), skipping any unrecognized tags.
func DecodeLoop(buf []byte) ([]Decoded, error) {
	var out []Decoded
	pos := 0
	for pos+2 <= len(buf) {
		tag := buf[pos]
		length := int(buf[pos+1])
		pos += 2
		if pos+length > len(buf) {
			return nil, fmt.Errorf("esdesc: descriptor length %d exceeds remaining buffer", length)
		}
		d, ok, err := Decode(Raw{Tag: tag, Data: buf[pos : pos+length]})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
		pos += length
	}
	return out, nil
}

/*
NAME
  guid.go

DESCRIPTION
  guid.go lists the ASF object and stream-type GUIDs needed to walk an
  ASF Header Object, and a variable-length-field reader for the types
  the ASF Data Object packet layer and File/Stream Properties objects
  use (§4.5).

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package asfguid lists the ASF (Advanced Systems Format) object and
// stream-type GUIDs, each backed by google/uuid for parsing and
// formatting, plus the variable-length-field reader used throughout the
// ASF packet and properties object layouts (§4.5).
package asfguid

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// mustGUID parses a canonical GUID string into a uuid.UUID in RFC 4122
// (big-endian field) byte order. This is the form Parse produces from an
// ASF GUID's on-disk little-endian-per-field layout, so the constants
// below compare directly against Parse results.
func mustGUID(s string) uuid.UUID {
	u, err := uuid.Parse(s)
	if err != nil {
		panic(fmt.Sprintf("asfguid: invalid GUID literal %q: %v", s, err))
	}
	return u
}

// ASF top-level and header sub-object GUIDs.
var (
	HeaderObject                 = mustGUID("75B22630-668E-11CF-A6D9-00AA0062CE6C")
	DataObject                   = mustGUID("75B22636-668E-11CF-A6D9-00AA0062CE6C")
	SimpleIndexObject             = mustGUID("33000890-E5B1-11CF-89F4-00A0C90349CB")
	IndexObject                  = mustGUID("D6E229D3-35DA-11D1-9034-00A0C90349BE")
	FilePropertiesObject         = mustGUID("8CABDCA1-A947-11CF-8EE4-00C00C205365")
	StreamPropertiesObject       = mustGUID("B7DC0791-A9B7-11CF-8EE6-00C00C205365")
	HeaderExtensionObject        = mustGUID("5FBF03B5-A92E-11CF-8EE3-00C00C205365")
	CodecListObject              = mustGUID("86D15240-311D-11D0-A3A4-00A0C90348F6")
	StreamBitratePropertiesObject = mustGUID("7BF875CE-468D-11D1-8D82-006097C9A2B2")
	ContentDescriptionObject     = mustGUID("75B22633-668E-11CF-A6D9-00AA0062CE6C")
	ExtendedContentDescriptionObject = mustGUID("D2D0A440-E307-11D2-97F0-00A0C95EA850")
	PaddingObject                = mustGUID("1806D474-CADF-4509-A4BA-9AABCB96AAE8")
)

// ASF stream-type GUIDs, identifying the media type of a Stream
// Properties Object.
var (
	StreamTypeAudio   = mustGUID("F8699E40-5B4D-11CF-A8FD-00805F5C442B")
	StreamTypeVideo   = mustGUID("BC19EFC0-5B4D-11CF-A8FD-00805F5C442B")
	StreamTypeCommand = mustGUID("59DACFC0-59E6-11D0-A3AC-00A0C90348F6")
)

// Name returns a short human-readable label for a recognized ASF GUID,
// or "" if g isn't one this package knows about.
func Name(g uuid.UUID) string {
	switch g {
	case HeaderObject:
		return "Header"
	case DataObject:
		return "Data"
	case SimpleIndexObject:
		return "SimpleIndex"
	case IndexObject:
		return "Index"
	case FilePropertiesObject:
		return "FileProperties"
	case StreamPropertiesObject:
		return "StreamProperties"
	case HeaderExtensionObject:
		return "HeaderExtension"
	case CodecListObject:
		return "CodecList"
	case StreamBitratePropertiesObject:
		return "StreamBitrateProperties"
	case ContentDescriptionObject:
		return "ContentDescription"
	case ExtendedContentDescriptionObject:
		return "ExtendedContentDescription"
	case PaddingObject:
		return "Padding"
	case StreamTypeAudio:
		return "Audio"
	case StreamTypeVideo:
		return "Video"
	case StreamTypeCommand:
		return "Command"
	default:
		return ""
	}
}

// Parse reads a 16-byte ASF GUID field (stored little-endian per field,
// per the teacher-grounded byte layout in container/asf) into a
// uuid.UUID.
func Parse(b []byte) (uuid.UUID, error) {
	if len(b) < 16 {
		return uuid.Nil, fmt.Errorf("asfguid: GUID requires 16 bytes, got %d", len(b))
	}
	// ASF stores GUIDs as {D1(LE32) D2(LE16) D3(LE16) D4(8 bytes as-is)};
	// reorder into RFC 4122 big-endian field order for uuid.UUID.
	var out uuid.UUID
	d1 := binary.LittleEndian.Uint32(b[0:4])
	d2 := binary.LittleEndian.Uint16(b[4:6])
	d3 := binary.LittleEndian.Uint16(b[6:8])
	binary.BigEndian.PutUint32(out[0:4], d1)
	binary.BigEndian.PutUint16(out[4:6], d2)
	binary.BigEndian.PutUint16(out[6:8], d3)
	copy(out[8:16], b[8:16])
	return out, nil
}

// Format encodes a uuid.UUID back into the 16-byte little-endian-per-
// field layout ASF stores GUIDs in on disk, the inverse of Parse.
func Format(g uuid.UUID) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(g[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(g[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(g[6:8]))
	copy(b[8:16], g[8:16])
	return b
}

// VarLengthType identifies the wire width of an ASF variable-length
// field, as encoded by a 2-bit type selector in the packet flags.
type VarLengthType byte

// Recognized variable-length field widths.
const (
	VarLenNone  VarLengthType = 0
	VarLenByte  VarLengthType = 1
	VarLenWord  VarLengthType = 2
	VarLenDWord VarLengthType = 3
)

// ReadVarLengthField reads a value of the given width from b starting at
// off, returning the value and the number of bytes consumed.
func ReadVarLengthField(b []byte, off int, t VarLengthType) (value uint32, consumed int, err error) {
	switch t {
	case VarLenNone:
		return 0, 0, nil
	case VarLenByte:
		if off+1 > len(b) {
			return 0, 0, fmt.Errorf("asfguid: byte field out of range at offset %d", off)
		}
		return uint32(b[off]), 1, nil
	case VarLenWord:
		if off+2 > len(b) {
			return 0, 0, fmt.Errorf("asfguid: word field out of range at offset %d", off)
		}
		return uint32(binary.LittleEndian.Uint16(b[off : off+2])), 2, nil
	case VarLenDWord:
		if off+4 > len(b) {
			return 0, 0, fmt.Errorf("asfguid: dword field out of range at offset %d", off)
		}
		return binary.LittleEndian.Uint32(b[off : off+4]), 4, nil
	default:
		return 0, 0, fmt.Errorf("asfguid: unrecognized variable-length field type %d", t)
	}
}

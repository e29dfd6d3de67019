/*
NAME
  klv.go

DESCRIPTION
  klv.go reads a stream of MXF KLV (Key-Length-Value) triples: a
  16-byte SMPTE Universal Label key, a BER-encoded length, and a value
  (§4.6), plus the essence-element key-prefix classification used to
  route bytes to the essence-KLV sample-extraction path.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mxf parses the MXF (Material eXchange Format) container: the
// KLV stream, partition-pack operational-pattern decoding, the
// metadata-set cross-reference graph (MaterialPackage -> Track ->
// Sequence -> SourceClip -> SourcePackage -> Descriptor), and
// essence-KLV streaming (§4.6). New: the teacher has no MXF support;
// grounded on container/mts/psi's "arena plus ID map" idiom generalized
// to MXF's 16-byte instance-UID cross-references, per spec.md §9's
// design note.
package mxf

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnsupportedFormat reports bytes that do not conform to the MXF
// KLV/partition layout this parser handles.
var ErrUnsupportedFormat = fmt.Errorf("mxf: unsupported format")

// ErrNeedMoreData signals the caller must supply more bytes.
var ErrNeedMoreData = fmt.Errorf("mxf: need more data")

// Key is a 16-byte SMPTE Universal Label.
type Key [16]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// smpteULPrefix is the 7-byte prefix every valid MXF key must begin
// with (§4.6's initial verification).
var smpteULPrefix = [7]byte{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01}

// VerifyULPrefix checks the first 7 bytes of k against the mandatory
// SMPTE UL prefix.
func VerifyULPrefix(k Key) error {
	for i, b := range smpteULPrefix {
		if k[i] != b {
			return fmt.Errorf("%w: key %s does not begin with the SMPTE UL prefix", ErrUnsupportedFormat, k)
		}
	}
	return nil
}

// essenceKeyPrefix identifies an essence-element KLV (§4.6): bytes
// 0-6 of the key.
var essenceKeyPrefix = [7]byte{0x06, 0x0E, 0x2B, 0x34, 0x01, 0x02, 0x01}

// IsEssenceKey reports whether k matches the essence-element key
// prefix.
func IsEssenceKey(k Key) bool {
	for i, b := range essenceKeyPrefix {
		if k[i] != b {
			return false
		}
	}
	return true
}

// EssenceTrackNumber extracts the 16-bit essence-track number from an
// essence KLV's key, bytes 12-13 (§4.6).
func EssenceTrackNumber(k Key) uint32 {
	return uint32(k[12])<<8 | uint32(k[13])
}

// KLV is one decoded Key-Length-Value triple, with Value referencing
// the original buffer (not copied).
type KLV struct {
	Key    Key
	Length uint64
	Value  []byte
	Total  int // total bytes consumed: 16 + length-of-length + Length
}

// ReadBERLength decodes a BER length field at b[off]: if the high bit
// of the first byte is unset, the remaining 7 bits are the length
// directly; otherwise the low 7 bits give the length-of-length, and
// that many following bytes form a big-endian length (§4.6). 0x80
// ("undefined length") is reported via undefinedLen.
func ReadBERLength(b []byte, off int) (length uint64, consumed int, undefinedLen bool, err error) {
	if off >= len(b) {
		return 0, 0, false, ErrNeedMoreData
	}
	first := b[off]
	if first&0x80 == 0 {
		return uint64(first), 1, false, nil
	}
	lenOfLen := int(first & 0x7f)
	if lenOfLen == 0 {
		return 0, 1, true, nil
	}
	if off+1+lenOfLen > len(b) {
		return 0, 0, false, ErrNeedMoreData
	}
	var v uint64
	for i := 0; i < lenOfLen; i++ {
		v = v<<8 | uint64(b[off+1+i])
	}
	return v, 1 + lenOfLen, false, nil
}

// ReadKLV decodes one KLV triple at b[off]. The returned KLV's Value
// aliases b.
func ReadKLV(b []byte, off int) (*KLV, error) {
	if off+16 > len(b) {
		return nil, ErrNeedMoreData
	}
	var k Key
	copy(k[:], b[off:off+16])
	length, lenBytes, undefined, err := ReadBERLength(b, off+16)
	if err != nil {
		return nil, err
	}
	if undefined {
		return nil, fmt.Errorf("%w: undefined-length KLV unsupported", ErrUnsupportedFormat)
	}
	valueStart := off + 16 + lenBytes
	if valueStart+int(length) > len(b) {
		return nil, ErrNeedMoreData
	}
	return &KLV{
		Key:    k,
		Length: length,
		Value:  b[valueStart : valueStart+int(length)],
		Total:  16 + lenBytes + int(length),
	}, nil
}

// instanceUID converts a 16-byte property value into a uuid.UUID key
// for the metadata-set arena's UID->index map.
func instanceUID(b []byte) (uuid.UUID, bool) {
	if len(b) != 16 {
		return uuid.Nil, false
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, true
}

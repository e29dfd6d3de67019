/*
NAME
  bytes.go

DESCRIPTION
  bytes.go provides bounds-checked little- and big-endian readers over a
  byte slice, plus an ASCII sub-slice reader and a hex formatter.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitio provides bounds-checked byte and bit readers used by the
// elementary-stream header decoders and container parsers.
package bitio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// ErrInsufficientData is returned by any reader in this package when a read
// would go past the end of the supplied buffer.
var ErrInsufficientData = fmt.Errorf("bitio: insufficient data")

func checkBounds(b []byte, off, width int) error {
	if off < 0 || width < 0 || off+width > len(b) {
		return ErrInsufficientData
	}
	return nil
}

// U16LE reads an unsigned 16-bit little-endian integer at off.
func U16LE(b []byte, off int) (uint16, error) {
	if err := checkBounds(b, off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[off:]), nil
}

// U16BE reads an unsigned 16-bit big-endian integer at off.
func U16BE(b []byte, off int) (uint16, error) {
	if err := checkBounds(b, off, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[off:]), nil
}

// U32LE reads an unsigned 32-bit little-endian integer at off.
func U32LE(b []byte, off int) (uint32, error) {
	if err := checkBounds(b, off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[off:]), nil
}

// U32BE reads an unsigned 32-bit big-endian integer at off.
func U32BE(b []byte, off int) (uint32, error) {
	if err := checkBounds(b, off, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[off:]), nil
}

// U64LE reads an unsigned 64-bit little-endian integer at off.
func U64LE(b []byte, off int) (uint64, error) {
	if err := checkBounds(b, off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[off:]), nil
}

// U64BE reads an unsigned 64-bit big-endian integer at off.
func U64BE(b []byte, off int) (uint64, error) {
	if err := checkBounds(b, off, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[off:]), nil
}

// S16LE reads a signed 16-bit little-endian integer at off.
func S16LE(b []byte, off int) (int16, error) {
	v, err := U16LE(b, off)
	return int16(v), err
}

// S16BE reads a signed 16-bit big-endian integer at off.
func S16BE(b []byte, off int) (int16, error) {
	v, err := U16BE(b, off)
	return int16(v), err
}

// S32LE reads a signed 32-bit little-endian integer at off.
func S32LE(b []byte, off int) (int32, error) {
	v, err := U32LE(b, off)
	return int32(v), err
}

// S32BE reads a signed 32-bit big-endian integer at off.
func S32BE(b []byte, off int) (int32, error) {
	v, err := U32BE(b, off)
	return int32(v), err
}

// ASCII reads n bytes at off and returns them as a string, with no
// interpretation of content.
func ASCII(b []byte, off, n int) (string, error) {
	if err := checkBounds(b, off, n); err != nil {
		return "", err
	}
	return string(b[off : off+n]), nil
}

// Hex formats b as a lower-case hex string, e.g. for codecDetail profile/
// level byte formatting (avc1.<profile><constraint><level>).
func Hex(b ...byte) string {
	return hex.EncodeToString(b)
}

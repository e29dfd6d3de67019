/*
NAME
  latm.go

DESCRIPTION
  latm.go decodes the LATM/LOAS framing used to carry AAC in some MPEG-TS
  streams: the LOAS sync header plus the StreamMuxConfig and
  audioMuxElement payload length fields needed to locate and size each
  access unit (§4.2).

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aac

import (
	"fmt"

	"github.com/ausocean/mediainfo/bitio"
)

// loasSyncword is the 11-bit LOAS sync pattern 0x2B7.
const loasSyncword = 0x2B7

// LATMFrame holds the fields extracted from one LOAS-framed audioMuxElement.
type LATMFrame struct {
	PayloadLength int // length in bytes of the audioMuxElement payload
	Config        *AudioSpecificConfig
}

// ParseLOASHeader reads the 3-byte LOAS sync header and returns the
// 13-bit audioMuxLengthBytes payload length. b must be at least 3 bytes.
func ParseLOASHeader(b []byte) (payloadLength int, err error) {
	if len(b) < 3 {
		return 0, fmt.Errorf("aac: LOAS header requires 3 bytes, got %d", len(b))
	}
	sync := uint16(b[0])<<3 | uint16(b[1])>>5
	if sync != loasSyncword {
		return 0, fmt.Errorf("aac: LOAS syncword mismatch: got 0x%03x", sync)
	}
	payloadLength = int(b[1]&0x1f)<<8 | int(b[2])
	return payloadLength, nil
}

// ParseAudioMuxElement decodes the StreamMuxConfig of an audioMuxElement
// carrying a single program/layer (the common case for AAC-in-MPEG-TS),
// returning the embedded AudioSpecificConfig. useSameStreamMux (when true)
// means the config is unchanged from a prior element and is not present;
// callers must cache the previous AudioSpecificConfig in that case.
func ParseAudioMuxElement(payload []byte) (*LATMFrame, error) {
	c := bitio.NewCursor(payload)

	useSameStreamMux, err := c.ReadFlag()
	if err != nil {
		return nil, err
	}
	if useSameStreamMux {
		return &LATMFrame{}, nil
	}

	if err := skipStreamMuxConfigHeader(c); err != nil {
		return nil, err
	}

	cfg, err := ParseAudioSpecificConfig(c)
	if err != nil {
		return nil, err
	}

	// frameLengthType must be 0 (variable frame length, payload carried via
	// the PayloadLengthInfo byte-count escape sequence); any other value
	// indicates a fixed-length stream this decoder does not support.
	flt, err := c.ReadBits(3)
	if err != nil {
		return nil, err
	}
	if flt != 0 {
		return nil, fmt.Errorf("aac: LATM frameLengthType %d unsupported", flt)
	}
	// latmBufferFullness, 8 bits.
	if _, err := c.ReadBits(8); err != nil {
		return nil, err
	}
	// otherDataPresent flag.
	otherData, err := c.ReadFlag()
	if err != nil {
		return nil, err
	}
	if otherData {
		return nil, fmt.Errorf("aac: LATM otherDataPresent unsupported")
	}
	// crcCheckPresent flag.
	if _, err := c.ReadFlag(); err != nil {
		return nil, err
	}

	return &LATMFrame{Config: cfg}, nil
}

// skipStreamMuxConfigHeader consumes the fixed StreamMuxConfig fields
// preceding AudioSpecificConfig for the single-program, single-layer case
// (audioMuxVersion 0, allStreamsSameTimeFraming 1, numSubFrames 0,
// numProgram 0, numLayer 0).
func skipStreamMuxConfigHeader(c *bitio.Cursor) error {
	audioMuxVersion, err := c.ReadFlag()
	if err != nil {
		return err
	}
	if audioMuxVersion {
		return fmt.Errorf("aac: LATM audioMuxVersion 1 (versionA) unsupported")
	}
	if _, err := c.ReadFlag(); err != nil { // allStreamsSameTimeFraming
		return err
	}
	if _, err := c.ReadBits(6); err != nil { // numSubFrames
		return err
	}
	if _, err := c.ReadBits(4); err != nil { // numProgram
		return err
	}
	if _, err := c.ReadBits(3); err != nil { // numLayer
		return err
	}
	return nil
}

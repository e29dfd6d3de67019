/*
NAME
  adts.go

DESCRIPTION
  adts.go parses and synthesizes Audio Data Transport Stream (ADTS) frame
  headers (§4.2), the framing used for raw AAC access units in MPEG-TS and
  standalone .aac files.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package aac provides ADTS, AudioSpecificConfig, and LATM/LOAS header
// decoding for AAC audio, ported and corrected from the teacher's
// codec/aac/lex.go ADTSHeader approach (spec.md §4.2).
package aac

import "fmt"

// Profile names, derived from Audio Object Type = ADTS profile + 1.
const (
	ProfileMain    = "Main"
	ProfileLC      = "LC"
	ProfileSSR     = "SSR"
	ProfileLTP     = "LTP"
	ProfileHEAAC   = "HE-AAC"
	ProfileHEAACv2 = "HE-AACv2"
)

// SamplingFrequencies is the ADTS sampling-frequency index table (§6).
var SamplingFrequencies = [13]int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

const syncword = 0xFFF

// ADTSHeader holds the parsed fields of an ADTS frame header.
type ADTSHeader struct {
	MPEGVersion            int // 0: MPEG-4, 1: MPEG-2
	ProtectionAbsent       bool
	Profile                int // 2-bit ADTS profile value (AOT = Profile+1)
	ProfileName            string
	SamplingFrequencyIndex int
	SampleRate             int
	ChannelConfiguration   int
	FrameLength            int // total frame length in bytes, header + payload
	BufferFullness         int
	RawDataBlocks          int // number of raw data blocks minus 1
	HeaderLength           int // 7 (no CRC) or 9 (CRC present)
}

// HeaderSize is the minimum ADTS header size (no CRC).
const HeaderSize = 7

var profileNames = [6]string{ProfileMain, ProfileLC, ProfileSSR, ProfileLTP}

// ParseADTSHeader parses the ADTS header at the start of b. b must be at
// least HeaderSize bytes.
func ParseADTSHeader(b []byte) (*ADTSHeader, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("aac: ADTS header requires %d bytes, got %d", HeaderSize, len(b))
	}

	sync := uint16(b[0])<<4 | uint16(b[1])>>4
	if sync != syncword {
		return nil, fmt.Errorf("aac: ADTS syncword mismatch: got 0x%03x", sync)
	}

	layer := (b[1] >> 1) & 0x3
	if layer != 0 {
		return nil, fmt.Errorf("aac: ADTS layer bits must be 0, got %d", layer)
	}

	h := &ADTSHeader{
		MPEGVersion:      int((b[1] >> 3) & 0x1),
		ProtectionAbsent: b[1]&0x1 == 1,
		Profile:          int(b[2] >> 6),
	}

	h.SamplingFrequencyIndex = int((b[2] >> 2) & 0xf)
	if h.SamplingFrequencyIndex >= len(SamplingFrequencies) {
		return nil, fmt.Errorf("aac: sampling frequency index out of range: %d", h.SamplingFrequencyIndex)
	}
	h.SampleRate = SamplingFrequencies[h.SamplingFrequencyIndex]

	// Channel configuration straddles bytes 2 and 3: 1 bit from byte 2's
	// low bit, 2 bits from byte 3's top 2 bits.
	h.ChannelConfiguration = int((b[2]&0x1)<<2 | (b[3]>>6)&0x3)

	// Frame length: 13 bits across bytes 3-5.
	h.FrameLength = int(b[3]&0x3)<<11 | int(b[4])<<3 | int(b[5]>>5)

	h.BufferFullness = int(b[5]&0x1f)<<6 | int(b[6]>>2)
	h.RawDataBlocks = int(b[6] & 0x3)

	if h.ProtectionAbsent {
		h.HeaderLength = 7
	} else {
		h.HeaderLength = 9
	}

	h.ProfileName = profileName(h.Profile)

	return h, nil
}

func profileName(aotMinus1 int) string {
	if aotMinus1 >= 0 && aotMinus1 < len(profileNames) {
		return profileNames[aotMinus1]
	}
	return fmt.Sprintf("AOT%d", aotMinus1+1)
}

// BuildADTSFrame synthesizes an ADTS frame (header + payload) for the
// given AAC access-unit payload, sample rate, channel count, and profile
// (AOT-1 value, e.g. 1 for LC). Buffer fullness is set to 0x7FF per
// spec.md §6 ("ADTS synthesis").
func BuildADTSFrame(payload []byte, sampleRate, channelCount, profile int) ([]byte, error) {
	freqIdx := -1
	for i, r := range SamplingFrequencies {
		if r == sampleRate {
			freqIdx = i
			break
		}
	}
	if freqIdx == -1 {
		return nil, fmt.Errorf("aac: unsupported sample rate %d", sampleRate)
	}
	if channelCount < 0 || channelCount > 7 {
		return nil, fmt.Errorf("aac: unsupported channel count %d", channelCount)
	}
	if profile < 0 || profile > 3 {
		return nil, fmt.Errorf("aac: unsupported profile %d", profile)
	}

	frameLen := HeaderSize + len(payload)
	out := make([]byte, frameLen)

	out[0] = 0xFF
	out[1] = 0xF1 // syncword low nibble(1111) | MPEG-4(0) | layer(00) | protection absent(1)
	out[2] = byte(profile<<6) | byte(freqIdx<<2) | byte((channelCount>>2)&0x1)
	out[3] = byte((channelCount&0x3)<<6) | byte((frameLen>>11)&0x3)
	out[4] = byte((frameLen >> 3) & 0xff)
	const bufferFullness = 0x7FF
	out[5] = byte((frameLen&0x7)<<5) | byte((bufferFullness>>6)&0x1f)
	out[6] = byte((bufferFullness & 0x3f) << 2) // raw data blocks = 0

	copy(out[HeaderSize:], payload)
	return out, nil
}

/*
NAME
  asc.go

DESCRIPTION
  asc.go decodes AudioSpecificConfig (ASC), the bit-packed configuration
  for AAC used in MP4 ESDS and LATM/LOAS (§4.2).

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

// channelConfigTable maps the 4-bit ASC channel configuration index to a
// channel count, per spec.md §4.2. Entries marked -1 are reserved.
var channelConfigTable = [16]int{0, 1, 2, 3, 4, 5, 6, 8, -1, -1, -1, 7, 8, 24, 8, -1}

// AudioSpecificConfig holds the decoded fields of an ASC.
type AudioSpecificConfig struct {
	AudioObjectType int
	SampleRate      int
	ChannelCount    int
	CodecDetail     string
}

// ParseAudioSpecificConfig decodes an AudioSpecificConfig starting at the
// current position of c.
func ParseAudioSpecificConfig(c *bitio.Cursor) (*AudioSpecificConfig, error) {
	aot, err := c.ReadBits(5)
	if err != nil {
		return nil, err
	}
	if aot == 31 {
		ext, err := c.ReadBits(6)
		if err != nil {
			return nil, err
		}
		aot = 32 + ext
	}

	freqIdx, err := c.ReadBits(4)
	if err != nil {
		return nil, err
	}
	var sampleRate int
	if freqIdx == 0xF {
		sr, err := c.ReadBits(24)
		if err != nil {
			return nil, err
		}
		sampleRate = int(sr)
	} else {
		if int(freqIdx) >= len(SamplingFrequencies) {
			return nil, fmt.Errorf("aac: ASC sampling frequency index out of range: %d", freqIdx)
		}
		sampleRate = SamplingFrequencies[freqIdx]
	}

	chanIdx, err := c.ReadBits(4)
	if err != nil {
		return nil, err
	}
	channels := channelConfigTable[chanIdx]
	if channels == -1 {
		return nil, fmt.Errorf("aac: ASC channel configuration index reserved: %d", chanIdx)
	}

	return &AudioSpecificConfig{
		AudioObjectType: int(aot),
		SampleRate:      sampleRate,
		ChannelCount:    channels,
		CodecDetail:     aotCodecDetail(int(aot)),
	}, nil
}

func aotCodecDetail(aot int) string {
	switch aot {
	case 2:
		return "aac-lc"
	case 5:
		return "he-aac"
	case 29:
		return "he-aacv2"
	default:
		return fmt.Sprintf("aot%d", aot)
	}
}

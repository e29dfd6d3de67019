/*
NAME
  ogg.go

DESCRIPTION
  ogg.go recognizes an Ogg bitstream from its first page header and, for
  Vorbis/Opus streams, decodes the identification header packet carried
  in that first page to recover sample rate and channel count (§4.7).

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sniff

import (
	"encoding/binary"

	"github.com/ausocean/mediainfo/taxonomy"
)

// oggPageHeaderSize is the fixed portion of an Ogg page header, up to
// and including the segment_count byte: "OggS"(4) + version(1) +
// header_type(1) + granule_position(8) + serial_number(4) +
// page_sequence_number(4) + checksum(4) + segment_count(1).
const oggPageHeaderSize = 27

// SniffOgg reports whether b begins with a valid Ogg page whose first
// packet is a recognized Vorbis or Opus identification header.
func SniffOgg(b []byte) (Result, bool) {
	if len(b) < oggPageHeaderSize || string(b[0:4]) != "OggS" {
		return Result{}, false
	}
	segCount := int(b[26])
	tableEnd := oggPageHeaderSize + segCount
	if len(b) < tableEnd {
		return Result{}, false
	}
	firstPacketLen := 0
	for i := 0; i < segCount; i++ {
		n := int(b[oggPageHeaderSize+i])
		firstPacketLen += n
		if n < 255 {
			break // lacing value < 255 terminates the packet
		}
	}
	packetStart := tableEnd
	if packetStart+firstPacketLen > len(b) {
		firstPacketLen = len(b) - packetStart
	}
	packet := b[packetStart : packetStart+firstPacketLen]

	switch {
	case len(packet) >= 7 && packet[0] == 1 && string(packet[1:7]) == "vorbis":
		return sniffVorbisIdentHeader(packet)
	case len(packet) >= 8 && string(packet[0:8]) == "OpusHead":
		return sniffOpusIdentHeader(packet)
	}
	return Result{}, false
}

// sniffVorbisIdentHeader decodes a Vorbis identification header packet:
// packet_type(1)+"vorbis"(6)+vorbis_version(4)+channels(1)+
// sample_rate(4)+...
func sniffVorbisIdentHeader(packet []byte) (Result, bool) {
	if len(packet) < 16 {
		return Result{}, false
	}
	channels := int(packet[11])
	rate := int(binary.LittleEndian.Uint32(packet[12:16]))
	return Result{
		Container:  taxonomy.OGG,
		Audio:      taxonomy.Vorbis,
		SampleRate: rate,
		Channels:   channels,
	}, true
}

// sniffOpusIdentHeader decodes an Opus identification header packet:
// "OpusHead"(8)+version(1)+channels(1)+pre_skip(2)+
// input_sample_rate(4)+...
func sniffOpusIdentHeader(packet []byte) (Result, bool) {
	if len(packet) < 16 {
		return Result{}, false
	}
	channels := int(packet[9])
	rate := int(binary.LittleEndian.Uint32(packet[12:16]))
	return Result{
		Container:  taxonomy.OGG,
		Audio:      taxonomy.Opus,
		SampleRate: rate,
		Channels:   channels,
	}, true
}

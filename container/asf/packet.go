/*
NAME
  packet.go

DESCRIPTION
  packet.go parses the ASF Data Object packet stream and implements
  the sample-extraction callback contract of §4.5: per-payload stream
  number, keyframe flag, timing, and replicated-data metadata handed to
  a caller-supplied callback as packets complete.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package asf

import (
	"encoding/binary"
	"fmt"

	"github.com/ausocean/mediainfo/codec/asfguid"
)

// DataObjectHeaderSize is the fixed portion of a Data Object before
// its packets begin: GUID(16) + size(8) + file-id(16) + packet
// count(8) + reserved(2).
const DataObjectHeaderSize = 16 + 8 + 16 + 8 + 2

// ParseDataObjectHeader validates the leading GUID of a Data Object
// and returns the declared packet count and the offset its packets
// begin at.
func ParseDataObjectHeader(b []byte) (packetCount uint64, packetsOffset int, err error) {
	if len(b) < DataObjectHeaderSize {
		return 0, 0, fmt.Errorf("asf: Data Object header truncated")
	}
	g, err := asfguid.Parse(b[0:16])
	if err != nil {
		return 0, 0, err
	}
	if g != asfguid.DataObject {
		return 0, 0, fmt.Errorf("asf: not a Data Object")
	}
	packetCount = binary.LittleEndian.Uint64(b[32:40])
	return packetCount, DataObjectHeaderSize, nil
}

// PayloadMeta carries the per-payload fields the sample-extraction
// callback receives (§4.5).
type PayloadMeta struct {
	IsMultiPayload        bool
	IsSubPayload          bool
	IsKeyFrame            bool
	PacketSendTimeMS      uint32
	PacketDurationMS      uint16
	MediaObjectNumber     uint32
	OffsetIntoMediaObject uint32
	ReplicatedData        []byte
}

// PayloadFunc is invoked once per payload (or sub-payload) extracted
// from the packet stream.
type PayloadFunc func(streamNumber int, data []byte, meta PayloadMeta)

// varLenType maps a 2-bit length-type code to the wire width it
// selects (§4.5's {0->0, 1->1, 2->2, 3->4} table).
func varLenType(code byte) asfguid.VarLengthType {
	return asfguid.VarLengthType(code)
}

// PacketParser streams ASF Data Object packets, invoking a PayloadFunc
// for each payload of interest.
type PacketParser struct {
	StreamsOfInterest map[int]bool
	FallbackPacketSize uint32 // from FileInfo.MaxPacketSize, when packetLengthType==0
	OnPayload          PayloadFunc
}

// ParsePacket parses one ASF data packet from b (which must contain at
// least one full packet) and returns the number of bytes consumed.
func (p *PacketParser) ParsePacket(b []byte) (int, error) {
	pos := 0
	if len(b) < 1 {
		return 0, fmt.Errorf("asf: empty packet buffer")
	}

	ec := b[pos]
	pos++
	if ec&0x80 != 0 {
		if ec != 0x82 {
			return 0, fmt.Errorf("asf: error correction: %w", errUnsupportedFormat)
		}
		if pos+2 > len(b) {
			return 0, fmt.Errorf("asf: truncated error-correction data")
		}
		pos += 2
	}

	if pos+2 > len(b) {
		return 0, fmt.Errorf("asf: truncated packet flags")
	}
	lengthTypeFlags := b[pos]
	pos++
	propertyFlags := b[pos]
	pos++

	multiplePayloadsPresent := lengthTypeFlags&0x01 != 0
	packetLengthType := (lengthTypeFlags >> 5) & 0x03
	paddingLengthType := (lengthTypeFlags >> 3) & 0x03
	sequenceType := (lengthTypeFlags >> 1) & 0x03

	replicatedDataLengthType := (propertyFlags >> 6) & 0x03
	offsetLengthType := (propertyFlags >> 4) & 0x03
	mediaObjectLengthType := (propertyFlags >> 2) & 0x03
	streamNumberLengthType := propertyFlags & 0x03
	if streamNumberLengthType != 1 {
		return 0, fmt.Errorf("asf: streamNumberLengthType must be 1: %w", errUnsupportedFormat)
	}

	packetLength, n, err := asfguid.ReadVarLengthField(b, pos, varLenType(packetLengthType))
	if err != nil {
		return 0, err
	}
	pos += n
	if packetLengthType == 0 {
		packetLength = p.FallbackPacketSize
	}

	_, n, err = asfguid.ReadVarLengthField(b, pos, varLenType(sequenceType))
	if err != nil {
		return 0, err
	}
	pos += n

	paddingLength, n, err := asfguid.ReadVarLengthField(b, pos, varLenType(paddingLengthType))
	if err != nil {
		return 0, err
	}
	pos += n

	if pos+6 > len(b) {
		return 0, fmt.Errorf("asf: truncated send-time/duration")
	}
	sendTime := binary.LittleEndian.Uint32(b[pos:])
	pos += 4
	duration := binary.LittleEndian.Uint16(b[pos:])
	pos += 2

	numPayloads := 1
	payloadLengthType := asfguid.VarLenNone
	if multiplePayloadsPresent {
		if pos >= len(b) {
			return 0, fmt.Errorf("asf: truncated payload count byte")
		}
		flags := b[pos]
		pos++
		numPayloads = int(flags & 0x3f)
		payloadLengthType = varLenType((flags >> 6) & 0x03)
	}

	for i := 0; i < numPayloads; i++ {
		consumed, err := p.parsePayload(b[pos:], multiplePayloadsPresent, payloadLengthType,
			replicatedDataLengthType, offsetLengthType, mediaObjectLengthType,
			sendTime, duration)
		if err != nil {
			return 0, err
		}
		pos += consumed
	}

	pos += int(paddingLength)
	if int(packetLength) > 0 && pos < int(packetLength) {
		pos = int(packetLength)
	}
	return pos, nil
}

func (p *PacketParser) parsePayload(b []byte, multi bool, payloadLengthType, replicatedDataLengthType,
	offsetLengthType, mediaObjectLengthType asfguid.VarLengthType, sendTime uint32, duration uint16) (int, error) {
	pos := 0
	if pos >= len(b) {
		return 0, fmt.Errorf("asf: truncated payload stream-number byte")
	}
	streamByte := b[pos]
	pos++
	streamNumber := int(streamByte & 0x7f)
	isKeyFrame := streamByte&0x80 != 0

	mediaObjectNumber, n, err := asfguid.ReadVarLengthField(b, pos, mediaObjectLengthType)
	if err != nil {
		return 0, err
	}
	pos += n

	offset, n, err := asfguid.ReadVarLengthField(b, pos, offsetLengthType)
	if err != nil {
		return 0, err
	}
	pos += n

	replicatedDataLength, n, err := asfguid.ReadVarLengthField(b, pos, replicatedDataLengthType)
	if err != nil {
		return 0, err
	}
	pos += n

	interested := p.StreamsOfInterest == nil || p.StreamsOfInterest[streamNumber]

	if replicatedDataLength == 1 {
		// Compressed-payload mode: 1-byte Presentation-Time Delta, then
		// a sequence of sub-payloads, each 1-byte size + size bytes. In
		// multi-payload mode this slot is still bounded by a Payload-
		// Length varlen like the uncompressed case; in single-payload
		// mode it runs to the end of the buffer handed in.
		if pos >= len(b) {
			return 0, fmt.Errorf("asf: truncated presentation-time delta")
		}
		pos++ // presentation-time delta

		end := len(b)
		if multi {
			pl, n, err := asfguid.ReadVarLengthField(b, pos, payloadLengthType)
			if err != nil {
				return 0, err
			}
			pos += n
			if pos+int(pl) > len(b) {
				return 0, fmt.Errorf("asf: truncated compressed payload")
			}
			end = pos + int(pl)
		}

		for pos < end {
			subSize := int(b[pos])
			pos++
			if pos+subSize > end {
				return 0, fmt.Errorf("asf: truncated sub-payload")
			}
			if interested && p.OnPayload != nil {
				p.OnPayload(streamNumber, b[pos:pos+subSize], PayloadMeta{
					IsMultiPayload:        multi,
					IsSubPayload:          true,
					IsKeyFrame:            isKeyFrame,
					PacketSendTimeMS:      sendTime,
					PacketDurationMS:      duration,
					MediaObjectNumber:     uint32(mediaObjectNumber),
					OffsetIntoMediaObject: uint32(offset),
				})
			}
			pos += subSize
		}
		return pos, nil
	}

	if pos+int(replicatedDataLength) > len(b) {
		return 0, fmt.Errorf("asf: truncated replicated data")
	}
	replicatedData := b[pos : pos+int(replicatedDataLength)]
	pos += int(replicatedDataLength)

	payloadLength := uint32(len(b) - pos)
	if multi {
		pl, n, err := asfguid.ReadVarLengthField(b, pos, payloadLengthType)
		if err != nil {
			return 0, err
		}
		pos += n
		payloadLength = pl
	}
	if pos+int(payloadLength) > len(b) {
		return 0, fmt.Errorf("asf: truncated payload data")
	}
	data := b[pos : pos+int(payloadLength)]
	pos += int(payloadLength)

	if interested && p.OnPayload != nil {
		p.OnPayload(streamNumber, data, PayloadMeta{
			IsMultiPayload:        multi,
			IsKeyFrame:            isKeyFrame,
			PacketSendTimeMS:      sendTime,
			PacketDurationMS:      duration,
			MediaObjectNumber:     uint32(mediaObjectNumber),
			OffsetIntoMediaObject: uint32(offset),
			ReplicatedData:        replicatedData,
		})
	}
	return pos, nil
}

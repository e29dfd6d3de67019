/*
NAME
  descriptor_test.go

DESCRIPTION
  descriptor_test.go builds a minimal synthetic MXF KLV stream — an
  OP1a partition pack followed by a MaterialPackage/Track/Sequence/
  SourceClip/SourcePackage/Track/Descriptor metadata-set graph
  describing one PCM audio essence track — and exercises Parse end to
  end.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mxf

import (
	"encoding/binary"
	"testing"
)

func berLen(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	return []byte{0x84, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

func klvBytes(key [16]byte, value []byte) []byte {
	out := append([]byte{}, key[:]...)
	out = append(out, berLen(len(value))...)
	out = append(out, value...)
	return out
}

func prop(tag uint16, data []byte) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b[0:2], tag)
	binary.BigEndian.PutUint16(b[2:4], uint16(len(data)))
	return append(b, data...)
}

func uidArray(uids ...[16]byte) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], uint32(len(uids)))
	binary.BigEndian.PutUint32(b[4:8], 16)
	for _, u := range uids {
		b = append(b, u[:]...)
	}
	return b
}

func u32b(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func u64b(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func rational(num, den int32) []byte {
	return append(u32b(uint32(num)), u32b(uint32(den))...)
}

func metaKey(discriminator byte) [16]byte {
	var k [16]byte
	k[4] = 0x02
	k[5] = 0x53
	k[15] = discriminator
	return k
}

func uidOf(n byte) [16]byte {
	var u [16]byte
	u[0] = n
	u[15] = 0xAA
	return u
}

func TestParseOP1aWaveAudio(t *testing.T) {
	materialUID := uidOf(1)
	trackUID := uidOf(2)
	seqUID := uidOf(3)
	clipUID := uidOf(4)
	spPackageID := uidOf(5)
	spInstanceUID := uidOf(6)
	spTrackUID := uidOf(7)
	descUID := uidOf(8)

	var buf []byte

	// Partition pack: OP1a (item complexity 1, package complexity 1).
	partitionValue := make([]byte, 78)
	copy(partitionValue[64:76], operationalPatternBase[:])
	partitionValue[76] = 1
	partitionValue[77] = 1
	var partKey [16]byte
	copy(partKey[0:7], []byte{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01})
	partKey[13] = 2
	buf = append(buf, klvBytes(partKey, partitionValue)...)

	// MaterialPackage.
	mpValue := prop(tagInstanceUID, materialUID[:])
	mpValue = append(mpValue, prop(tagTracks, uidArray(trackUID))...)
	buf = append(buf, klvBytes(metaKey(1), mpValue)...)

	// Track (material-package side).
	trackValue := prop(tagInstanceUID, trackUID[:])
	trackValue = append(trackValue, prop(tagTrackID, u32b(1))...)
	trackValue = append(trackValue, prop(tagEditRate, rational(1, 1))...)
	trackValue = append(trackValue, prop(tagSequenceUID, seqUID[:])...)
	buf = append(buf, klvBytes(metaKey(2), trackValue)...)

	// Sequence.
	seqValue := prop(tagInstanceUID, seqUID[:])
	seqValue = append(seqValue, prop(tagStructuralComps, uidArray(clipUID))...)
	buf = append(buf, klvBytes(metaKey(3), seqValue)...)

	// SourceClip.
	clipValue := prop(tagInstanceUID, clipUID[:])
	clipValue = append(clipValue, prop(tagSourcePackageUID, spPackageID[:])...)
	clipValue = append(clipValue, prop(tagComponentDuration, u64b(100))...)
	buf = append(buf, klvBytes(metaKey(4), clipValue)...)

	// SourcePackage.
	spValue := prop(tagInstanceUID, spInstanceUID[:])
	spValue = append(spValue, prop(tagPackageID, spPackageID[:])...)
	spValue = append(spValue, prop(tagTracks, uidArray(spTrackUID))...)
	spValue = append(spValue, prop(tagDescriptor, descUID[:])...)
	buf = append(buf, klvBytes(metaKey(5), spValue)...)

	// Track (source-package side).
	spTrackValue := prop(tagInstanceUID, spTrackUID[:])
	spTrackValue = append(spTrackValue, prop(tagEssenceTrackNum, u32b(0x16010100))...)
	buf = append(buf, klvBytes(metaKey(6), spTrackValue)...)

	// Descriptor: Wave/GenericSound, 48kHz, stereo, 16-bit.
	descValue := prop(tagInstanceUID, descUID[:])
	descValue = append(descValue, prop(tagSampleRate, rational(48000, 1))...)
	descValue = append(descValue, prop(tagChannels, u32b(2))...)
	descValue = append(descValue, prop(tagBitsPerSamp, u32b(16))...)
	buf = append(buf, klvBytes(metaKey(7), descValue)...)

	res, err := Parse(buf, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Partition == nil || res.Partition.OperationalPattern != "OP1a" {
		t.Fatalf("Partition = %+v, want OP1a", res.Partition)
	}
	if len(res.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(res.Tracks))
	}
	tr := res.Tracks[0]
	if !tr.IsAudio {
		t.Error("expected an audio track")
	}
	if tr.SampleRate != 48000 || tr.Channels != 2 || tr.BitsPerSample != 16 {
		t.Errorf("got rate=%d channels=%d bps=%d, want 48000/2/16", tr.SampleRate, tr.Channels, tr.BitsPerSample)
	}
	if tr.Codec != "pcm_s16le" {
		t.Errorf("Codec = %q, want pcm_s16le", tr.Codec)
	}
	if tr.EssenceTrackNumber != 0x16010100 {
		t.Errorf("EssenceTrackNumber = %#x, want 0x16010100", tr.EssenceTrackNumber)
	}
}

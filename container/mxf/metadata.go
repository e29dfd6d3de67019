/*
NAME
  metadata.go

DESCRIPTION
  metadata.go decodes MXF metadata-set KLVs into a flat property list
  and an instance-UID arena, and walks the MaterialPackage -> Track
  -> Sequence -> SourceClip -> SourcePackage -> Descriptor
  cross-reference graph (§4.6) to produce per-essence-track metadata.

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
	"fmt"

	"github.com/google/uuid"
)

// Property tags used while walking the metadata-set graph (§4.6).
const (
	tagInstanceUID       uint16 = 0x3C0A
	tagTracks            uint16 = 0x4403 // MaterialPackage/SourcePackage
	tagTrackID           uint16 = 0x4801
	tagEditRate          uint16 = 0x4B01
	tagSequenceUID       uint16 = 0x4803
	tagStructuralComps   uint16 = 0x1001 // Sequence
	tagComponentDuration uint16 = 0x0202 // SourceClip
	tagSourcePackageUID  uint16 = 0x1101 // SourceClip -> SourcePackage
	tagPackageID         uint16 = 0x4401 // SourcePackage
	tagEssenceTrackNum   uint16 = 0x4804 // Track (source package side)
	tagDescriptor        uint16 = 0x4701
	tagSubDescriptors    uint16 = 0x3F01 // MultipleDescriptor
	tagLinkedTrackID     uint16 = 0x3002

	tagSampleRate  uint16 = 0x3D03
	tagChannels    uint16 = 0x3D07
	tagBitsPerSamp uint16 = 0x3D01

	tagDisplayWidth  uint16 = 0x3203
	tagDisplayHeight uint16 = 0x3202

	tagMPEGVideoProps uint16 = 0x8007
)

// property is one flat (tag, bytes) pair decoded from a metadata set's
// value (§4.6: "a flat list of (tag:u16be, len:u16be, bytes) properties").
type property struct {
	tag  uint16
	data []byte
}

// Set is one decoded metadata set: its key, instance UID (if present),
// and flat property list.
type Set struct {
	Key        Key
	InstanceID uuid.UUID
	Props      []property
}

func (s *Set) get(tag uint16) ([]byte, bool) {
	for _, p := range s.Props {
		if p.tag == tag {
			return p.data, true
		}
	}
	return nil, false
}

// decodeMetadataSet decodes a "02 53"-classified KLV value into a Set.
func decodeMetadataSet(k Key, value []byte) *Set {
	s := &Set{Key: k}
	pos := 0
	for pos+4 <= len(value) {
		tag := binary.BigEndian.Uint16(value[pos:])
		l := binary.BigEndian.Uint16(value[pos+2:])
		pos += 4
		if pos+int(l) > len(value) {
			break
		}
		data := value[pos : pos+int(l)]
		pos += int(l)
		s.Props = append(s.Props, property{tag: tag, data: data})
		if tag == tagInstanceUID {
			if u, ok := instanceUID(data); ok {
				s.InstanceID = u
			}
		}
	}
	return s
}

// Arena holds every decoded metadata set, indexed by instance UID for
// cross-reference lookups, plus an ordered list for linear scans
// (MaterialPackage discovery, §4.6/§9's design note).
type Arena struct {
	byUID map[uuid.UUID]*Set
	all   []*Set
}

// NewArena returns an empty metadata-set arena.
func NewArena() *Arena {
	return &Arena{byUID: make(map[uuid.UUID]*Set)}
}

// Add registers a decoded metadata set.
func (a *Arena) Add(s *Set) {
	a.all = append(a.all, s)
	if s.InstanceID != uuid.Nil {
		a.byUID[s.InstanceID] = s
	}
}

// Lookup resolves an instance UID to its Set, or nil if unresolved
// (lookups may fail silently per §9's design note).
func (a *Arena) Lookup(u uuid.UUID) *Set { return a.byUID[u] }

// byKeySuffixPrefix returns every set whose key's first prefixLen bytes
// equal prefix.
func (a *Arena) byKeySuffixPrefix(prefixLen int, prefix []byte) []*Set {
	var out []*Set
	for _, s := range a.all {
		if len(s.Key) >= prefixLen {
			match := true
			for i := 0; i < prefixLen; i++ {
				if s.Key[i] != prefix[i] {
					match = false
					break
				}
			}
			if match {
				out = append(out, s)
			}
		}
	}
	return out
}

// Rational is a num/den pair, as used by EditRate and similar MXF
// properties.
type Rational struct {
	Num, Den int32
}

func decodeRational(b []byte) Rational {
	if len(b) < 8 {
		return Rational{1, 1}
	}
	return Rational{
		Num: int32(binary.BigEndian.Uint32(b[0:4])),
		Den: int32(binary.BigEndian.Uint32(b[4:8])),
	}
}

// EssenceTrack is one resolved essence track's metadata, ready to be
// surfaced as a StreamInfo (§3's MXFEssenceDetail).
type EssenceTrack struct {
	EssenceTrackNumber uint32
	IsAudio            bool
	IsVideo            bool

	SampleRate    int
	Channels      int
	BitsPerSample int
	Bitrate       int
	Codec         string // "pcm_s<bps>le" or similar, free-form

	Width, Height int
	FPS           float64
	Profile       string

	DurationSeconds float64
}

// findMaterialPackage returns the first metadata set, in file order,
// that carries a Tracks property and no PackageID property, or nil if
// there is none. It does not check the set's key and does not follow
// the set's tracks; a set carrying both Tracks and a PackageID is never
// chosen.
func (a *Arena) findMaterialPackage() *Set {
	for _, s := range a.all {
		if _, ok := s.get(tagTracks); ok {
			if _, ok := s.get(tagPackageID); !ok {
				return s
			}
		}
	}
	return nil
}

// decodeUIDArray reads a count+itemSize-prefixed array of 16-byte UIDs
// (§4.6's Tracks/StructuralComponents property encoding).
func decodeUIDArray(b []byte) []uuid.UUID {
	if len(b) < 8 {
		return nil
	}
	count := binary.BigEndian.Uint32(b[0:4])
	itemSize := binary.BigEndian.Uint32(b[4:8])
	if itemSize != 16 {
		return nil
	}
	var out []uuid.UUID
	pos := 8
	for i := uint32(0); i < count && pos+16 <= len(b); i++ {
		var u uuid.UUID
		copy(u[:], b[pos:pos+16])
		out = append(out, u)
		pos += 16
	}
	return out
}

// ResolveEssenceTracks walks the MaterialPackage -> Track -> Sequence ->
// StructuralComponent(SourceClip) -> SourcePackage -> Track ->
// Descriptor graph and returns one EssenceTrack per resolved SourceClip
// (§4.6).
func (a *Arena) ResolveEssenceTracks() []EssenceTrack {
	mp := a.findMaterialPackage()
	if mp == nil {
		return nil
	}
	trackUIDsRaw, ok := mp.get(tagTracks)
	if !ok {
		return nil
	}
	var tracks []EssenceTrack
	for _, tu := range decodeUIDArray(trackUIDsRaw) {
		trackSet := a.Lookup(tu)
		if trackSet == nil {
			continue
		}
		seqUIDRaw, ok := trackSet.get(tagSequenceUID)
		if !ok {
			continue
		}
		seqUID, ok := instanceUID(seqUIDRaw)
		if !ok {
			continue
		}
		seq := a.Lookup(seqUID)
		if seq == nil {
			continue
		}
		compsRaw, ok := seq.get(tagStructuralComps)
		if !ok {
			continue
		}
		editRate := Rational{1, 1}
		if erRaw, ok := trackSet.get(tagEditRate); ok {
			editRate = decodeRational(erRaw)
		}
		for _, compUID := range decodeUIDArray(compsRaw) {
			clip := a.Lookup(compUID)
			if clip == nil {
				continue
			}
			if et, ok := a.resolveSourceClip(clip, editRate); ok {
				tracks = append(tracks, et)
			}
		}
	}
	return tracks
}

func (a *Arena) resolveSourceClip(clip *Set, editRate Rational) (EssenceTrack, bool) {
	spUIDRaw, ok := clip.get(tagSourcePackageUID)
	if !ok {
		return EssenceTrack{}, false
	}
	spUID, ok := instanceUID(spUIDRaw)
	if !ok {
		return EssenceTrack{}, false
	}
	// SourcePackage is referenced by its PackageID, which may differ
	// from its own InstanceUID; scan for a set whose PackageID matches.
	var sp *Set
	for _, s := range a.all {
		if pid, ok := s.get(tagPackageID); ok {
			if u, ok := instanceUID(pid); ok && u == spUID {
				sp = s
				break
			}
		}
	}
	if sp == nil {
		return EssenceTrack{}, false
	}

	var duration float64
	if durRaw, ok := clip.get(tagComponentDuration); ok && len(durRaw) >= 8 {
		d := int64(binary.BigEndian.Uint64(durRaw))
		if editRate.Num != 0 {
			duration = float64(d) * float64(editRate.Den) / float64(editRate.Num)
		}
	}

	spTracksRaw, ok := sp.get(tagTracks)
	if !ok {
		return EssenceTrack{}, false
	}
	for _, tu := range decodeUIDArray(spTracksRaw) {
		trackSet := a.Lookup(tu)
		if trackSet == nil {
			continue
		}
		essenceNumRaw, ok := trackSet.get(tagEssenceTrackNum)
		if !ok {
			continue
		}
		essenceNum := binary.BigEndian.Uint32(essenceNumRaw)

		descRaw, ok := sp.get(tagDescriptor)
		if !ok {
			continue
		}
		descUID, ok := instanceUID(descRaw)
		if !ok {
			continue
		}
		desc := a.Lookup(descUID)
		if desc == nil {
			continue
		}
		descriptors := a.expandDescriptor(desc)
		for _, d := range descriptors {
			if !descriptorMatchesTrack(d, trackSet, essenceNum) {
				continue
			}
			et := decodeDescriptor(d)
			et.EssenceTrackNumber = essenceNum
			et.DurationSeconds = duration
			return et, true
		}
	}
	return EssenceTrack{}, false
}

// expandDescriptor returns d itself, or its SubDescriptors if d is a
// MultipleDescriptor (§4.6).
func (a *Arena) expandDescriptor(d *Set) []*Set {
	subsRaw, ok := d.get(tagSubDescriptors)
	if !ok {
		return []*Set{d}
	}
	var out []*Set
	for _, u := range decodeUIDArray(subsRaw) {
		if sub := a.Lookup(u); sub != nil {
			out = append(out, sub)
		}
	}
	if len(out) == 0 {
		return []*Set{d}
	}
	return out
}

// descriptorMatchesTrack implements §4.6's matching rule: either the
// descriptor's LinkedTrackID equals the source-package TrackID, or, in
// its absence, the high byte of the essence track number distinguishes
// video (0x15) from audio (0x16).
func descriptorMatchesTrack(desc *Set, trackSet *Set, essenceNum uint32) bool {
	if linkedRaw, ok := desc.get(tagLinkedTrackID); ok {
		if idRaw, ok := trackSet.get(tagTrackID); ok && len(idRaw) >= 4 {
			return binary.BigEndian.Uint32(linkedRaw) == binary.BigEndian.Uint32(idRaw)
		}
	}
	highByte := essenceNum >> 24
	if highByte == 0x15 {
		return isVideoDescriptor(desc)
	}
	if highByte == 0x16 {
		return isAudioDescriptor(desc)
	}
	return true
}

func isAudioDescriptor(d *Set) bool {
	_, hasRate := d.get(tagSampleRate)
	_, hasChannels := d.get(tagChannels)
	return hasRate || hasChannels
}

func isVideoDescriptor(d *Set) bool {
	_, hasW := d.get(tagDisplayWidth)
	_, hasH := d.get(tagDisplayHeight)
	return hasW || hasH
}

// decodeDescriptor decodes the audio or video fields of a Descriptor
// set (§4.6).
func decodeDescriptor(d *Set) EssenceTrack {
	var et EssenceTrack
	if isAudioDescriptor(d) {
		et.IsAudio = true
		if r, ok := d.get(tagSampleRate); ok {
			rat := decodeRational(r)
			if rat.Den != 0 {
				et.SampleRate = int(rat.Num / rat.Den)
			}
		}
		if c, ok := d.get(tagChannels); ok && len(c) >= 4 {
			et.Channels = int(binary.BigEndian.Uint32(c))
		}
		if b, ok := d.get(tagBitsPerSamp); ok && len(b) >= 4 {
			et.BitsPerSample = int(binary.BigEndian.Uint32(b))
		}
		if et.BitsPerSample > 0 {
			et.Codec = fmt.Sprintf("pcm_s%dle", et.BitsPerSample)
			et.Bitrate = et.Channels * et.SampleRate * et.BitsPerSample
		}
		return et
	}
	if isVideoDescriptor(d) {
		et.IsVideo = true
		if w, ok := d.get(tagDisplayWidth); ok && len(w) >= 4 {
			et.Width = int(binary.BigEndian.Uint32(w))
		}
		if h, ok := d.get(tagDisplayHeight); ok && len(h) >= 4 {
			et.Height = int(binary.BigEndian.Uint32(h))
		}
		if p, ok := d.get(tagMPEGVideoProps); ok && len(p) >= 1 {
			et.Profile = mpegProfileFromPropByte(p[0])
		}
	}
	return et
}

// mpegProfileFromPropByte maps bits 4-6 (byte&0x70) of the
// MPEGVideoProperty tag's first byte to a profile name (§4.6).
func mpegProfileFromPropByte(b byte) string {
	switch (b >> 4) & 0x07 {
	case 4:
		return "Main"
	case 5:
		return "Simple"
	case 3:
		return "SNR Scalable"
	case 2:
		return "Spatially Scalable"
	case 1:
		return "High"
	case 7:
		return "4:2:2"
	default:
		return ""
	}
}

/*
NAME
  types.go

DESCRIPTION
  types.go defines the per-file result (MediaInfo) and per-track
  (StreamInfo) data model described in spec.md §3.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mediainfo

import (
	"github.com/ausocean/mediainfo/taxonomy"
)

// VideoStreamInfo describes one video elementary stream.
type VideoStreamInfo struct {
	ID          int // container-dependent: MP4 track_id, MKV track number, TS PID, ASF stream number
	Codec       taxonomy.VideoCodecKind
	CodecDetail string // free-form string mirroring the source file's own spelling
	Width       int
	Height      int
	FPS         float64
	Profile     string
	Level       string
	Language    string
	Bitrate     int // bits per second, 0 if unknown
}

// AudioStreamInfo describes one audio elementary stream.
type AudioStreamInfo struct {
	ID            int
	Codec         taxonomy.AudioCodecKind
	CodecDetail   string
	ChannelCount  int
	SampleRate    int
	BitsPerSample int
	Bitrate       int
	Profile       string
	Level         string
	Language      string
	AudioType     string // e.g. Music, Effects, Hearing impaired (from ES-descriptor language tag)
	SurroundMode  string

	// Detail is a codec-specific sub-record: adaptMXF sets
	// *MXFEssenceDetail on MXF audio tracks. The MP3Detail and AC3Detail
	// types are declared but no adapter sets them. nil when not
	// applicable.
	Detail interface{}
}

// MP3Detail carries MP3-specific fields beyond the common AudioStreamInfo.
type MP3Detail struct {
	Layer   int // 1, 2, or 3
	Padding bool
}

// AC3Detail carries AC-3/E-AC-3 descriptor fields (ES-descriptor tags
// 0x6A/0x7B, spec.md §4.2).
type AC3Detail struct {
	ComponentType int
	BSMod         int
	MainID        int
	ASVC          int
}

// MXFEssenceDetail carries the MXF essence-track number alongside the
// common AudioStreamInfo fields.
type MXFEssenceDetail struct {
	EssenceTrackNumber uint32
}

// MediaInfo is the per-file result returned by GetMediaInfo.
type MediaInfo struct {
	Container         taxonomy.ContainerKind
	ContainerDetail   string // e.g. "wma", "OP1a", free-form per-container detail
	DurationInSeconds float64
	Video             []VideoStreamInfo
	Audio             []AudioStreamInfo
	MimeType          string
	Parser            string // name of the adapter that produced this result
}

// StreamExtra carries ASF's additionalStreamInfo per stream number (§6):
// the stream's codec-private payload and extended-properties blob.
type StreamExtra struct {
	CodecPrivate        []byte
	ExtendedProperties  []byte
}

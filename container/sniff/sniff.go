/*
NAME
  sniff.go

DESCRIPTION
  sniff.go identifies "bare" elementary-stream files — raw ADTS AAC,
  raw MP1/2/3, Ogg (Vorbis/Opus), and RIFF/WAVE — from their first
  chunk of bytes, without a container wrapper, per §4.7's "pseudo-
  container" dispatch step. Each sniffer returns (Result, ok) rather
  than an error, since "didn't match" is the expected outcome for most
  sniffers on most input.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sniff recognizes headerless elementary-stream formats (raw
// ADTS AAC, raw MPEG audio, Ogg, RIFF/WAVE) from their leading bytes
// (§4.7).
package sniff

import (
	"github.com/ausocean/mediainfo/codec/aac"
	"github.com/ausocean/mediainfo/codec/mpa"
	"github.com/ausocean/mediainfo/codec/waveformat"
	"github.com/ausocean/mediainfo/taxonomy"
)

// Result is what a sniffer found.
type Result struct {
	Container taxonomy.ContainerKind
	Audio     taxonomy.AudioCodecKind
	SampleRate int
	Channels   int
}

// MinHeadBytes is the largest number of leading bytes any sniffer in
// this package needs; callers should buffer at least this many bytes
// before giving up on sniffing.
const MinHeadBytes = 64

// SniffFunc tries to identify b's format.
type SniffFunc func(b []byte) (Result, bool)

// All is every sniffer this package offers, in the order §4.7 tries
// them: raw AAC first (most specific syncword), then MPEG audio, then
// the two self-describing container formats.
var All = []SniffFunc{SniffAAC, SniffMP3, SniffOgg, SniffWAV}

// SniffAAC reports whether b begins with a valid ADTS frame header.
func SniffAAC(b []byte) (Result, bool) {
	h, err := aac.ParseADTSHeader(b)
	if err != nil {
		return Result{}, false
	}
	return Result{
		Container:  taxonomy.AACRaw,
		Audio:      taxonomy.AAC,
		SampleRate: h.SampleRate,
		Channels:   channelsFromConfig(h.ChannelConfiguration),
	}, true
}

// channelsFromConfig maps the ADTS channel_configuration field to an
// actual channel count (§4's WAVEFORMATEX/ADTS channel mapping; 7 means
// 8-channel 7.1 in the MPEG-4 table).
func channelsFromConfig(cc int) int {
	switch cc {
	case 7:
		return 8
	default:
		return cc
	}
}

// SniffMP3 reports whether b begins with a valid MPEG audio frame
// header (Layer I/II/III; the result's AudioCodecKind distinguishes
// Layer III "mp3" from the Layer I/II "mp2" pseudo-codec).
func SniffMP3(b []byte) (Result, bool) {
	h, err := mpa.ParseFrameHeader(b)
	if err != nil {
		return Result{}, false
	}
	channels := 2
	if h.ChannelMode == 3 {
		channels = 1
	}
	audio := taxonomy.MP2
	container := taxonomy.MP2Raw
	switch h.Layer {
	case mpa.LayerIII:
		audio, container = taxonomy.MP3, taxonomy.MP3Raw
	case mpa.LayerI:
		audio, container = taxonomy.MP1, taxonomy.MP1Raw
	}
	return Result{
		Container:  container,
		Audio:      audio,
		SampleRate: h.SampleRate,
		Channels:   channels,
	}, true
}

// SniffWAV reports whether b begins with a RIFF/WAVE header followed
// by a "fmt " chunk it can decode via codec/waveformat.
func SniffWAV(b []byte) (Result, bool) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Result{}, false
	}
	pos := 12
	for pos+8 <= len(b) {
		chunkID := string(b[pos : pos+4])
		chunkSize := int(b[pos+4]) | int(b[pos+5])<<8 | int(b[pos+6])<<16 | int(b[pos+7])<<24
		pos += 8
		if chunkID == "fmt " {
			if pos+chunkSize > len(b) {
				return Result{}, false
			}
			wf, err := waveformat.Parse(b[pos : pos+chunkSize])
			if err != nil {
				return Result{}, false
			}
			return Result{
				Container:  taxonomy.WAV,
				Audio:      waveformat.CodecKind(wf.FormatTag),
				SampleRate: int(wf.SamplesPerSec),
				Channels:   int(wf.Channels),
			}, true
		}
		pos += chunkSize
		if chunkSize%2 == 1 {
			pos++ // RIFF chunks are word-aligned
		}
	}
	return Result{}, false
}

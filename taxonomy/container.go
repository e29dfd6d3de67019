/*
NAME
  container.go

DESCRIPTION
  container.go defines the closed set of container families this module
  recognizes, with default file extension and alias tables for the many
  ways a container family's codec string shows up in the wild.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package taxonomy provides the closed enumerations of container and codec
// kinds recognized by the mediainfo module, and the alias tables mapping
// the many spellings encountered in the wild onto canonical kinds.
package taxonomy

// ContainerKind is a closed tag for a container family.
type ContainerKind string

// Recognized container kinds.
const (
	MP4     ContainerKind = "mp4"
	MOV     ContainerKind = "mov"
	WebM    ContainerKind = "webm"
	MKV     ContainerKind = "mkv"
	AVI     ContainerKind = "avi"
	MPEGTS  ContainerKind = "mpegts"
	MXF     ContainerKind = "mxf"
	ASF     ContainerKind = "asf"
	WMA     ContainerKind = "wma"
	OGG     ContainerKind = "ogg"
	AACRaw  ContainerKind = "aac"
	MP3Raw  ContainerKind = "mp3"
	FLAC    ContainerKind = "flac"
	WAV     ContainerKind = "wav"
	AC3Raw  ContainerKind = "ac3"
	MP2Raw  ContainerKind = "mp2"
	MP1Raw  ContainerKind = "mp1"
	DTSRaw  ContainerKind = "dts"
	M4A     ContainerKind = "m4a"
	Unknown ContainerKind = "unknown"
)

// containerInfo describes one container's default extension and aliases.
type containerInfo struct {
	kind      ContainerKind
	extension string
	aliases   []string
}

var containerTable = []containerInfo{
	{MP4, ".mp4", []string{"isom", "mp42", "mp41", "avc1", "iso2"}},
	{MOV, ".mov", []string{"qt  "}},
	{WebM, ".webm", []string{"webm"}},
	{MKV, ".mkv", []string{"matroska"}},
	{AVI, ".avi", []string{"riff-avi"}},
	{MPEGTS, ".ts", []string{"m2ts", "mts", "mpegts"}},
	{MXF, ".mxf", []string{"mxf"}},
	{ASF, ".asf", []string{"asf"}},
	{WMA, ".wma", []string{"wma"}},
	{OGG, ".ogg", []string{"oggs"}},
	{AACRaw, ".aac", []string{"adts"}},
	{MP3Raw, ".mp3", []string{"id3"}},
	{FLAC, ".flac", []string{"flac"}},
	{WAV, ".wav", []string{"riff-wave", "wave"}},
	{AC3Raw, ".ac3", nil},
	{MP2Raw, ".mp2", nil},
	{MP1Raw, ".mp1", nil},
	{DTSRaw, ".dts", nil},
	{M4A, ".m4a", nil},
}

// DefaultExtension returns the conventional file extension for k.
func DefaultExtension(k ContainerKind) string {
	for _, c := range containerTable {
		if c.kind == k {
			return c.extension
		}
	}
	return ""
}

// ContainerByAlias resolves an alias string (e.g. a DocType, major brand, or
// RIFF form type) to a ContainerKind, returning Unknown if unrecognized.
func ContainerByAlias(alias string) ContainerKind {
	for _, c := range containerTable {
		for _, a := range c.aliases {
			if a == alias {
				return c.kind
			}
		}
	}
	return Unknown
}

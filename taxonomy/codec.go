/*
NAME
  codec.go

DESCRIPTION
  codec.go defines the closed set of audio and video codec kinds this
  module recognizes, plus alias tables mapping the many spellings a
  container's codec string may carry (fourCCs, RFC 6381 codec strings,
  Matroska CodecIDs, MPEG-TS stream_type mnemonics) onto canonical kinds.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package taxonomy

// AudioCodecKind is a closed tag for an audio codec.
type AudioCodecKind string

// Recognized audio codec kinds.
const (
	AAC            AudioCodecKind = "aac"
	AACLATM        AudioCodecKind = "aac_latm"
	MP3            AudioCodecKind = "mp3"
	MP2            AudioCodecKind = "mp2"
	MP1            AudioCodecKind = "mp1"
	AC3            AudioCodecKind = "ac3"
	EAC3           AudioCodecKind = "eac3"
	DTS            AudioCodecKind = "dts"
	FLACCodec      AudioCodecKind = "flac"
	Opus           AudioCodecKind = "opus"
	Vorbis         AudioCodecKind = "vorbis"
	WMAV1          AudioCodecKind = "wmav1"
	WMAV2          AudioCodecKind = "wmav2"
	WMAPro         AudioCodecKind = "wmapro"
	WMALossless    AudioCodecKind = "wmalossless"
	ALAC           AudioCodecKind = "alac"
	ADPCMMS        AudioCodecKind = "adpcm_ms"
	ADPCMImaWAV    AudioCodecKind = "adpcm_ima_wav"
	PCMU8          AudioCodecKind = "pcm_u8"
	PCMS16LE       AudioCodecKind = "pcm_s16le"
	PCMS16BE       AudioCodecKind = "pcm_s16be"
	PCMS24LE       AudioCodecKind = "pcm_s24le"
	PCMS24BE       AudioCodecKind = "pcm_s24be"
	PCMS32LE       AudioCodecKind = "pcm_s32le"
	PCMS32BE       AudioCodecKind = "pcm_s32be"
	PCMF32LE       AudioCodecKind = "pcm_f32le"
	PCMAlaw        AudioCodecKind = "pcm_alaw"
	PCMMulaw       AudioCodecKind = "pcm_mulaw"
	UnknownAudio   AudioCodecKind = "unknown_audio"
)

// VideoCodecKind is a closed tag for a video codec.
type VideoCodecKind string

// Recognized video codec kinds.
const (
	H264        VideoCodecKind = "h264"
	HEVC        VideoCodecKind = "hevc"
	VP8         VideoCodecKind = "vp8"
	VP9         VideoCodecKind = "vp9"
	AV1         VideoCodecKind = "av1"
	ProRes      VideoCodecKind = "prores"
	MPEG1Video  VideoCodecKind = "mpeg1video"
	MPEG2Video  VideoCodecKind = "mpeg2video"
	MPEG4Video  VideoCodecKind = "mpeg4"
	MSMPEG4V2   VideoCodecKind = "msmpeg4v2"
	MJPEG       VideoCodecKind = "mjpeg"
	Theora      VideoCodecKind = "theora"
	WMV2        VideoCodecKind = "wmv2"
	UnknownVideo VideoCodecKind = "unknown_video"
)

// audioAliasTable maps a spelling seen in the wild to a canonical AudioCodecKind.
var audioAliasTable = map[string]AudioCodecKind{
	"mp4a.40.2": AAC, "mp4a.40.5": AAC, "mp4a.40.29": AAC, "mp4a.40.42": AACLATM,
	"aac": AAC, "aac_latm": AACLATM,
	"A_AAC": AAC, "A_AAC/MPEG4/LC": AAC, "A_AAC/MPEG4/SBR": AAC,
	"mp3": MP3, "A_MPEG/L3": MP3, ".mp3": MP3,
	"mp2": MP2, "A_MPEG/L2": MP2,
	"mp1": MP1, "A_MPEG/L1": MP1,
	"ac-3": AC3, "ac3": AC3, "A_AC3": AC3,
	"ec-3": EAC3, "eac3": EAC3, "A_EAC3": EAC3,
	"dtsc": DTS, "dts": DTS, "A_DTS": DTS,
	"flac": FLACCodec, "fLaC": FLACCodec, "A_FLAC": FLACCodec,
	"opus": Opus, "Opus": Opus, "A_OPUS": Opus,
	"vorbis": Vorbis, "A_VORBIS": Vorbis,
	"wmav1": WMAV1, "wmav2": WMAV2, "wmapro": WMAPro, "wmalossless": WMALossless,
	"alac": ALAC, "A_MS/ACM": ADPCMMS,
}

// videoAliasTable maps a spelling seen in the wild to a canonical
// VideoCodecKind.
var videoAliasTable = map[string]VideoCodecKind{
	"avc1": H264, "avc3": H264, "h264": H264, "V_MPEG4/ISO/AVC": H264,
	"hvc1": HEVC, "hev1": HEVC, "hevc": HEVC, "V_MPEGH/ISO/HEVC": HEVC,
	"vp08": VP8, "VP80": VP8, "V_VP8": VP8,
	"vp09": VP9, "VP90": VP9, "V_VP9": VP9,
	"av01": AV1, "V_AV1": AV1,
	"apch": ProRes, "apcn": ProRes, "apcs": ProRes, "ap4h": ProRes,
	"mp4v": MPEG4Video, "V_MPEG4/ISO/ASP": MPEG4Video,
	"mpeg2video": MPEG2Video, "V_MPEG2": MPEG2Video,
	"mpeg1video": MPEG1Video,
	"MP42": MSMPEG4V2,
	"mjpg": MJPEG, "MJPG": MJPEG,
	"theo": Theora, "V_THEORA": Theora,
	"WMV2": WMV2,
}

// AudioByAlias resolves alias (an RFC 6381 codec string, Matroska CodecID,
// or other spelling) to a canonical AudioCodecKind.
func AudioByAlias(alias string) (AudioCodecKind, bool) {
	k, ok := audioAliasTable[alias]
	return k, ok
}

// VideoByAlias resolves alias to a canonical VideoCodecKind.
func VideoByAlias(alias string) (VideoCodecKind, bool) {
	k, ok := videoAliasTable[alias]
	return k, ok
}

// DefaultContainerForAudio returns the container a codec implies when none is
// otherwise known (e.g. raw ADTS AAC implies the "aac" pseudo-container).
func DefaultContainerForAudio(k AudioCodecKind) ContainerKind {
	switch k {
	case AAC, AACLATM:
		return AACRaw
	case MP3:
		return MP3Raw
	case MP2:
		return MP2Raw
	case MP1:
		return MP1Raw
	case AC3, EAC3:
		return AC3Raw
	case DTS:
		return DTSRaw
	case FLACCodec:
		return FLAC
	case WMAV1, WMAV2, WMAPro, WMALossless:
		return WMA
	default:
		return Unknown
	}
}

/*
NAME
  mediainfo.go

DESCRIPTION
  mediainfo.go implements the two public entry points described in
  spec.md §6: GetMediaInfo, which runs the in-house/ISO-BMFF fallback
  chain over a bounded head buffer and returns a single terminal
  MediaInfo, and ParseASF, which additionally drives the ASF Data
  Object's packet stream for sample extraction.

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
	"encoding/binary"
	"fmt"

	"github.com/ausocean/mediainfo/codec/asfguid"
	"github.com/ausocean/mediainfo/container/asf"
	"github.com/ausocean/mediainfo/container/isobmff"
	"github.com/ausocean/mediainfo/container/mkv"
	"github.com/ausocean/mediainfo/container/mts"
	"github.com/ausocean/mediainfo/container/mxf"
	"github.com/ausocean/mediainfo/container/sniff"
	"github.com/ausocean/mediainfo/dispatcher"
	"github.com/ausocean/mediainfo/taxonomy"
)

// ByteSource hands back chunks of the underlying stream on demand. A
// value satisfying this interface also satisfies dispatcher.ByteSource
// (both declare exactly Next() ([]byte, error)), so it can be passed
// directly to dispatcher.ReadHead without either package importing the
// other.
type ByteSource interface {
	Next() ([]byte, error)
}

// GetMediaInfo identifies and describes the tracks in the stream served
// by src, trying adapters in the order opts.UseParser selects (§6).
func GetMediaInfo(src ByteSource, opts Options) (MediaInfo, error) {
	opts.normalize()

	head, err := dispatcher.ReadHead(src, dispatcher.DefaultHeadCap)
	if err != nil {
		return MediaInfo{}, Unsupportedf("dispatcher", "reading source: %v", err)
	}
	if opts.OnProgress != nil {
		opts.OnProgress(50)
	}

	chain := dispatcher.Chain{Adapters: adapterChain(opts.UseParser)}
	res, err := chain.Dispatch(head)
	if err != nil {
		return MediaInfo{}, err
	}
	mi := res.Value.(*MediaInfo)
	mi.Parser = res.Adapter

	if opts.OnProgress != nil {
		opts.OnProgress(100)
	}
	return *mi, nil
}

// adapterChain selects which adapters to offer the dispatcher, and in
// what order, per §4.7: "the chain order is chosen by a caller flag or
// defaults to: in-house parser, then ISO-BMFF adapter, then any
// delegated adapters."
func adapterChain(choice ParserChoice) []dispatcher.Adapter {
	inHouse := []dispatcher.Adapter{
		{Name: "mpegts", Parse: adaptMTS},
		{Name: "mkv", Parse: adaptMKV},
		{Name: "mxf", Parse: adaptMXF},
		{Name: "asf", Parse: adaptASF},
		{Name: "sniff", Parse: adaptSniff},
	}
	isoBMFF := dispatcher.Adapter{Name: "isobmff", Parse: adaptISOBMFF}

	switch choice {
	case InHouse:
		return inHouse
	case ISOBMFF:
		return []dispatcher.Adapter{isoBMFF}
	case Delegated:
		// No delegated adapters are wired in this build; the caller gets
		// an immediate, clearly-tagged UnsupportedFormat.
		return []dispatcher.Adapter{{Name: "delegated", Parse: func([]byte) (interface{}, error) {
			return nil, Unsupportedf("delegated", "no delegated adapters configured")
		}}}
	default: // Auto
		return append(append([]dispatcher.Adapter{}, inHouse...), isoBMFF)
	}
}

func adaptMTS(head []byte) (interface{}, error) {
	d := mts.NewDemuxer()
	if err := d.Write(head); err != nil {
		return nil, Unsupported("mpegts", err)
	}
	if !d.Complete() {
		return nil, Unsupportedf("mpegts", "PAT/PMT not resolved within head buffer")
	}
	mi := &MediaInfo{Container: taxonomy.MPEGTS}
	for pid, s := range d.Streams() {
		switch s.Category {
		case mts.CategoryVideo:
			mi.Video = append(mi.Video, VideoStreamInfo{
				ID:          int(pid),
				Codec:       s.VideoCodec,
				CodecDetail: s.CodecDetail,
				Language:    s.Language,
			})
		case mts.CategoryAudio:
			mi.Audio = append(mi.Audio, AudioStreamInfo{
				ID:          int(pid),
				Codec:       s.AudioCodec,
				CodecDetail: s.CodecDetail,
				Language:    s.Language,
			})
		}
	}
	if len(mi.Video) == 0 && len(mi.Audio) == 0 {
		return nil, Unsupportedf("mpegts", "no video/audio streams resolved")
	}
	return mi, nil
}

func adaptMKV(head []byte) (interface{}, error) {
	d := mkv.NewDemuxer()
	if err := d.Write(head); err != nil {
		return nil, Unsupported("mkv", err)
	}
	if !d.Ready || len(d.Tracks) == 0 {
		return nil, Unsupportedf("mkv", "no tracks resolved within head buffer")
	}
	container := taxonomy.MKV
	if d.DocType == "webm" {
		container = taxonomy.WebM
	}
	mi := &MediaInfo{Container: container}
	if secs, ok := d.DurationSeconds(); ok {
		mi.DurationInSeconds = secs
	}
	for _, tr := range d.Tracks {
		switch tr.Type {
		case mkv.TrackTypeVideo:
			mi.Video = append(mi.Video, VideoStreamInfo{
				ID:          tr.Number,
				Codec:       tr.VideoCodec,
				CodecDetail: tr.CodecDetail,
				Width:       tr.PixelWidth,
				Height:      tr.PixelHeight,
				Bitrate:     tr.Bitrate,
			})
		case mkv.TrackTypeAudio:
			rate := tr.SampleRate
			if rate == 0 {
				rate = int(tr.SamplingFrequency)
			}
			mi.Audio = append(mi.Audio, AudioStreamInfo{
				ID:            tr.Number,
				Codec:         tr.AudioCodec,
				CodecDetail:   tr.CodecDetail,
				ChannelCount:  tr.Channels,
				SampleRate:    rate,
				BitsPerSample: tr.BitDepth,
				Bitrate:       tr.Bitrate,
			})
		}
	}
	return mi, nil
}

func adaptMXF(head []byte) (interface{}, error) {
	res, err := mxf.Parse(head, nil)
	if err != nil {
		return nil, Unsupported("mxf", err)
	}
	mi := &MediaInfo{Container: taxonomy.MXF}
	if res.Partition != nil {
		mi.ContainerDetail = res.Partition.OperationalPattern
	}
	for _, tr := range res.Tracks {
		detail := &MXFEssenceDetail{EssenceTrackNumber: tr.EssenceTrackNumber}
		switch {
		case tr.IsAudio:
			mi.Audio = append(mi.Audio, AudioStreamInfo{
				ID:            int(tr.EssenceTrackNumber),
				Codec:         taxonomy.AudioCodecKind(tr.Codec),
				CodecDetail:   tr.Codec,
				ChannelCount:  tr.Channels,
				SampleRate:    tr.SampleRate,
				BitsPerSample: tr.BitsPerSample,
				Bitrate:       tr.Bitrate,
				Detail:        detail,
			})
			if tr.DurationSeconds > mi.DurationInSeconds {
				mi.DurationInSeconds = tr.DurationSeconds
			}
		case tr.IsVideo:
			mi.Video = append(mi.Video, VideoStreamInfo{
				ID:      int(tr.EssenceTrackNumber),
				Codec:   taxonomy.VideoCodecKind(tr.Codec),
				Width:   tr.Width,
				Height:  tr.Height,
				FPS:     tr.FPS,
				Profile: tr.Profile,
			})
			if tr.DurationSeconds > mi.DurationInSeconds {
				mi.DurationInSeconds = tr.DurationSeconds
			}
		}
	}
	return mi, nil
}

func adaptASF(head []byte) (interface{}, error) {
	hdr, err := asf.ParseHeader(head)
	if err != nil {
		return nil, Unsupported("asf", err)
	}
	mi := buildASFMediaInfo(hdr)
	return mi, nil
}

func buildASFMediaInfo(hdr *asf.Header) *MediaInfo {
	mi := &MediaInfo{Container: taxonomy.ASF}
	if hdr.File != nil {
		if secs, ok := hdr.File.DurationSeconds(); ok {
			mi.DurationInSeconds = secs
		}
	}
	for _, s := range hdr.Streams {
		switch {
		case s.IsAudio:
			mi.Audio = append(mi.Audio, AudioStreamInfo{
				ID:            s.StreamNumber,
				Codec:         s.AudioCodec,
				ChannelCount:  s.ChannelCount,
				SampleRate:    s.SampleRate,
				BitsPerSample: s.BitsPerSample,
				Bitrate:       s.Bitrate,
			})
		case s.IsVideo:
			mi.Video = append(mi.Video, VideoStreamInfo{
				ID:          s.StreamNumber,
				Codec:       s.VideoCodec,
				CodecDetail: s.CodecDetail,
				Width:       s.Width,
				Height:      s.Height,
			})
		}
	}
	if mi.Audio != nil && (mi.Audio[0].Codec == taxonomy.WMAV1 || mi.Audio[0].Codec == taxonomy.WMAV2 ||
		mi.Audio[0].Codec == taxonomy.WMAPro || mi.Audio[0].Codec == taxonomy.WMALossless) {
		mi.ContainerDetail = "wma"
	}
	return mi
}

func adaptISOBMFF(head []byte) (interface{}, error) {
	fi, err := isobmff.Parse(head)
	if err != nil {
		return nil, Unsupported("isobmff", err)
	}
	container := taxonomy.MP4
	switch fi.MajorBrand {
	case "qt  ":
		container = taxonomy.MOV
	}
	mi := &MediaInfo{Container: container, ContainerDetail: fi.MajorBrand}
	for _, tr := range fi.Tracks {
		switch {
		case tr.IsAudio:
			mi.Audio = append(mi.Audio, AudioStreamInfo{
				ID:           int(tr.TrackID),
				Codec:        tr.AudioCodec,
				CodecDetail:  tr.CodecDetail,
				ChannelCount: tr.ChannelCount,
				SampleRate:   tr.SampleRate,
			})
			if tr.TimeScale != 0 {
				secs := float64(tr.Duration) / float64(tr.TimeScale)
				if secs > mi.DurationInSeconds {
					mi.DurationInSeconds = secs
				}
			}
		case tr.IsVideo:
			mi.Video = append(mi.Video, VideoStreamInfo{
				ID:          int(tr.TrackID),
				Codec:       tr.VideoCodec,
				CodecDetail: tr.CodecDetail,
				Width:       tr.Width,
				Height:      tr.Height,
				Profile:     tr.Profile,
				Level:       tr.Level,
			})
			if tr.TimeScale != 0 {
				secs := float64(tr.Duration) / float64(tr.TimeScale)
				if secs > mi.DurationInSeconds {
					mi.DurationInSeconds = secs
				}
			}
		}
	}
	if len(mi.Video) == 0 && len(mi.Audio) == 0 {
		return nil, Unsupportedf("isobmff", "no tracks resolved")
	}
	return mi, nil
}

func adaptSniff(head []byte) (interface{}, error) {
	for _, fn := range sniff.All {
		res, ok := fn(head)
		if !ok {
			continue
		}
		return &MediaInfo{
			Container: res.Container,
			Audio: []AudioStreamInfo{{
				Codec:        res.Audio,
				SampleRate:   res.SampleRate,
				ChannelCount: res.Channels,
			}},
		}, nil
	}
	return nil, Unsupportedf("sniff", "no recognized elementary-stream format")
}

// ParseASF walks the ASF Header Object in src, then the Data Object's
// packet stream, optionally extracting sample payloads to opts.OnPayload
// (§6).
func ParseASF(src ByteSource, opts ASFOptions) (MediaInfo, map[uint8]StreamExtra, error) {
	opts.normalize()

	head, err := dispatcher.ReadHead(src, dispatcher.DefaultHeadCap)
	if err != nil {
		return MediaInfo{}, nil, Unsupportedf("asf", "reading source: %v", err)
	}

	hdr, err := asf.ParseHeader(head)
	if err != nil {
		return MediaInfo{}, nil, Unsupported("asf", err)
	}
	mi := buildASFMediaInfo(hdr)
	mi.Parser = "asf"

	extra := make(map[uint8]StreamExtra, len(hdr.Streams))
	for _, s := range hdr.Streams {
		extra[uint8(s.StreamNumber)] = StreamExtra{CodecPrivate: s.CodecPrivate}
	}

	if len(head) < 24 {
		return mi, extra, nil
	}
	headerSize := binary.LittleEndian.Uint64(head[16:24])
	dataOff := int(headerSize)
	if dataOff+asf.DataObjectHeaderSize > len(head) {
		return mi, extra, nil
	}
	_, packetsOff, err := asf.ParseDataObjectHeader(head[dataOff:])
	if err != nil {
		return mi, extra, nil // no Data Object within the head buffer; metadata-only result
	}
	packetsStart := dataOff + packetsOff

	var fallbackSize uint32
	if hdr.File != nil {
		fallbackSize = hdr.File.MaxPacketSize
	}

	var sinkErr error
	pp := &asf.PacketParser{
		StreamsOfInterest: streamSet(opts.ExtractStreams),
		FallbackPacketSize: fallbackSize,
	}
	if opts.OnPayload != nil {
		pp.OnPayload = func(streamNumber int, data []byte, meta asf.PayloadMeta) {
			if sinkErr != nil {
				return
			}
			sinkErr = opts.OnPayload(uint8(streamNumber), data, PayloadMeta{
				IsMultiPayload:        meta.IsMultiPayload,
				IsSubPayload:          meta.IsSubPayload,
				IsKeyFrame:            meta.IsKeyFrame,
				PacketSendTimeMS:      meta.PacketSendTimeMS,
				PacketDurationMS:      meta.PacketDurationMS,
				MediaObjectNumber:     meta.MediaObjectNumber,
				OffsetIntoMediaObject: meta.OffsetIntoMediaObject,
				ReplicatedData:        meta.ReplicatedData,
			})
		}
	}

	pos := packetsStart
	for pos < len(head) {
		consumed, err := pp.ParsePacket(head[pos:])
		if err != nil {
			return mi, extra, Unsupported("asf", err)
		}
		if sinkErr != nil {
			return mi, extra, NewError(SinkError, "asf", sinkErr)
		}
		if consumed == 0 {
			break
		}
		pos += consumed
	}
	return mi, extra, nil
}

func streamSet(streams []uint8) map[int]bool {
	if streams == nil {
		return nil
	}
	m := make(map[int]bool, len(streams))
	for _, s := range streams {
		m[int(s)] = true
	}
	return m
}

// asfGUIDName is a small debugging helper that returns the name of the
// well-known object a raw GUID matches; nothing in the module calls it.
func asfGUIDName(b []byte) string {
	g, err := asfguid.Parse(b)
	if err != nil {
		return fmt.Sprintf("invalid-guid(%x)", b)
	}
	return asfguid.Name(g)
}

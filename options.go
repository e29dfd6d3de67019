/*
NAME
  options.go

DESCRIPTION
  options.go defines the public Options/ASFOptions structs accepted by
  GetMediaInfo/ParseASF (spec.md §6), in the plain-struct, defaulted-field
  style of revid/config.Config.

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

import "github.com/ausocean/mediainfo/logging"

// ParserChoice selects which adapter chain the dispatcher should use.
type ParserChoice string

// Recognized parser choices.
const (
	Auto     ParserChoice = "auto"
	InHouse  ParserChoice = "in-house"
	ISOBMFF  ParserChoice = "iso-bmff"
	Delegated ParserChoice = "delegated"
)

// ProgressFunc is invoked with a 0-100 percentage estimate as a parse
// progresses, if set.
type ProgressFunc func(pct int)

// Options configures GetMediaInfo.
type Options struct {
	// UseParser selects the adapter chain. Defaults to Auto.
	UseParser ParserChoice

	// Quiet is carried in Options; GetMediaInfo and ParseASF do not read
	// it.
	Quiet bool

	// Debug makes normalize construct a file logger when Logger is nil.
	Debug bool

	// Logger is the logging sink held in Options. If nil and Debug is set,
	// a default logging.Logger is constructed (see logging.NewFileLogger).
	// No parser in this module writes to it.
	Logger logging.Logger

	// OnProgress, if set, is called periodically with a 0-100 estimate.
	OnProgress ProgressFunc
}

// normalize fills in defaults, mirroring revid/config.Config's "bad or
// unset, defaulting" pattern.
func (o *Options) normalize() {
	if o.UseParser == "" {
		o.UseParser = Auto
	}
	if o.Logger == nil {
		if o.Debug {
			o.Logger = logging.NewFileLogger("mediainfo-debug.log")
		} else {
			o.Logger = logging.Discard
		}
	}
}

// ASFOptions configures ParseASF. ExtractStreams names the ASF stream
// numbers (1-127) whose payload bytes should be delivered to OnPayload as
// packets are parsed.
type ASFOptions struct {
	Options

	ExtractStreams []uint8
	OnPayload      PayloadFunc
}

// PayloadMeta carries the per-payload metadata described in spec.md §4.5.
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

// PayloadFunc is the caller-supplied sink for ASF sample extraction.
// Returning a non-nil error terminates the parse with a SinkError.
type PayloadFunc func(streamNumber uint8, data []byte, meta PayloadMeta) error

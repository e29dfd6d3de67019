/*
NAME
  demux.go

DESCRIPTION
  demux.go is the Matroska/WebM element-stream state machine: a stack
  of currently-open master elements, ID/SIZE/CONTENT states, and the
  readiness rule of §4.3 ("emit a ready MediaInfo as soon as a Cluster
  or SimpleBlock is encountered, provided DocType has been seen").
  Grounded on the incremental accumulate-then-Write-and-drain shape of
  container/mts/demux.go's Demuxer, since the teacher has no EBML
  support of its own.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mkv

import "fmt"

// SampleMeta carries the per-frame fields delivered to a SampleFunc.
type SampleMeta struct {
	TrackNumber     int
	TimestampSeconds float64
	KeyFrame        bool
}

// SampleFunc is invoked once per decoded frame, in file order, if the
// caller wants block-level streaming rather than just metadata.
type SampleFunc func(data []byte, meta SampleMeta) error

// openElement is one entry of the nested-container stack.
type openElement struct {
	id  uint32
	end int // absolute offset (within d.buf) this element's content ends at; -1 if unknown-length
}

// Demuxer walks an EBML element stream incrementally, as bytes become
// available via Write.
type Demuxer struct {
	buf []byte
	pos int

	stack []openElement

	DocType        string
	TimecodeScale  uint64 // default 1_000_000 (§4.3)
	DurationScale  float64
	Tracks         map[int]*Track
	Ready          bool

	OnSample SampleFunc

	curBuilder      *trackBuilder
	curClusterTime  int64
	sawDocType      bool
}

// NewDemuxer returns a Demuxer ready to accept bytes via Write.
func NewDemuxer() *Demuxer {
	return &Demuxer{
		TimecodeScale: 1_000_000,
		Tracks:        make(map[int]*Track),
	}
}

// Write appends b to the demuxer's buffer and drains as much of the
// element stream as currently available, invoking OnSample for each
// decoded frame and marking Ready per §4.3's readiness rule.
func (d *Demuxer) Write(b []byte) error {
	d.buf = append(d.buf, b...)
	return d.drain()
}

// drain walks the stack of open elements and the top-level element
// stream, consuming as much of d.buf as is fully available.
func (d *Demuxer) drain() error {
	for {
		// Pop any master elements whose content has been fully consumed.
		for len(d.stack) > 0 && d.pos >= d.stack[len(d.stack)-1].end && d.stack[len(d.stack)-1].end >= 0 {
			top := d.stack[len(d.stack)-1]
			d.stack = d.stack[:len(d.stack)-1]
			if top.id == IDTrackEntry && d.curBuilder != nil {
				if tr, ok := d.curBuilder.finish(); ok {
					d.Tracks[tr.Number] = &tr
				}
				d.curBuilder = nil
			}
		}

		id, idw, err := ReadElementID(d.buf, d.pos)
		if err != nil {
			if err == ErrNeedMoreData {
				return nil
			}
			return err
		}
		size, sizew, unknown, err := ReadElementSize(d.buf, d.pos+idw)
		if err != nil {
			if err == ErrNeedMoreData {
				return nil
			}
			return err
		}
		contentStart := d.pos + idw + sizew

		if IsMaster(id) {
			end := contentStart + int(size)
			if unknown {
				// Unknown-length master (live-streaming case): metadata
				// is emitted before the unbounded payload, then parsing
				// of metadata stops (§4.3).
				d.Ready = d.sawDocType
				end = -1
			}
			d.stack = append(d.stack, openElement{id: id, end: end})
			if id == IDTrackEntry {
				d.curBuilder = newTrackBuilder()
			}
			if id == IDCluster && d.sawDocType {
				d.Ready = true
			}
			d.pos = contentStart
			if unknown {
				return nil
			}
			continue
		}

		// Leaf element: need its full content buffered before we can
		// read it.
		if contentStart+int(size) > len(d.buf) {
			return nil
		}
		content := d.buf[contentStart : contentStart+int(size)]
		if err := d.handleLeaf(id, content); err != nil {
			return err
		}
		d.pos = contentStart + int(size)

		if (id == IDSimpleBlock || id == IDBlock) && d.sawDocType {
			d.Ready = true
		}
	}
}

// handleLeaf dispatches a decoded leaf element's raw bytes according to
// which master element currently encloses it.
func (d *Demuxer) handleLeaf(id uint32, content []byte) error {
	switch id {
	case IDDocType:
		d.DocType = trimTrailingNulls(string(content))
		if d.DocType != "webm" && d.DocType != "matroska" {
			return fmt.Errorf("%w: DocType %q", ErrUnsupportedFormat, d.DocType)
		}
		d.sawDocType = true
	case IDTimecodeScale:
		d.TimecodeScale = decodeUint(content)
	case IDDuration:
		d.DurationScale = decodeFloat(content)
	case IDTimecode:
		d.curClusterTime = int64(decodeUint(content))
	case IDTrackNumber:
		if d.curBuilder != nil {
			d.curBuilder.t.Number = int(decodeUint(content))
			d.curBuilder.haveNumber = true
		}
	case IDTrackType:
		if d.curBuilder != nil {
			d.curBuilder.t.Type = int(decodeUint(content))
		}
	case IDCodecID:
		if d.curBuilder != nil {
			d.curBuilder.t.CodecID = trimTrailingNulls(string(content))
		}
	case IDCodecPrivate:
		if d.curBuilder != nil {
			d.curBuilder.t.CodecPrivate = append([]byte(nil), content...)
		}
	case IDSamplingFreq:
		if d.curBuilder != nil {
			d.curBuilder.t.SamplingFrequency = decodeFloat(content)
		}
	case IDChannels:
		if d.curBuilder != nil {
			d.curBuilder.t.Channels = int(decodeUint(content))
		}
	case IDBitDepth:
		if d.curBuilder != nil {
			d.curBuilder.t.BitDepth = int(decodeUint(content))
		}
	case IDPixelWidth:
		if d.curBuilder != nil {
			d.curBuilder.t.PixelWidth = int(decodeUint(content))
		}
	case IDPixelHeight:
		if d.curBuilder != nil {
			d.curBuilder.t.PixelHeight = int(decodeUint(content))
		}
	case IDSimpleBlock, IDBlock:
		return d.handleBlock(content)
	}
	return nil
}

// handleBlock decodes a SimpleBlock payload and dispatches each laced
// frame to OnSample, with a timestamp relative to the enclosing
// Cluster's Timecode (§4.3).
func (d *Demuxer) handleBlock(payload []byte) error {
	blk, err := ParseBlock(payload)
	if err != nil {
		return err
	}
	if d.OnSample == nil {
		return nil
	}
	ts := float64(d.curClusterTime+int64(blk.TimecodeDelta)) * float64(d.TimecodeScale) / 1e9
	for i, off := range blk.FrameOffsets {
		size := blk.FrameSizes[i]
		if off+size > len(payload) {
			return fmt.Errorf("mkv: laced frame out of range")
		}
		if err := d.OnSample(payload[off:off+size], SampleMeta{
			TrackNumber:      blk.TrackNumber,
			TimestampSeconds: ts,
			KeyFrame:         blk.KeyFrame,
		}); err != nil {
			return err
		}
	}
	return nil
}

// DurationSeconds returns the file's duration, if an Info.Duration
// element was seen: Duration (in TimecodeScale units) * TimecodeScale /
// 1e9.
func (d *Demuxer) DurationSeconds() (float64, bool) {
	if d.DurationScale == 0 {
		return 0, false
	}
	return d.DurationScale * float64(d.TimecodeScale) / 1e9, true
}

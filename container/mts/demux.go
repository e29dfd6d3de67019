/*
NAME
  demux.go

DESCRIPTION
  demux.go provides packet-size detection, PAT/PMT/SDT table tracking,
  per-PID PES reassembly and codec sniffing for a stream of MPEG-TS or
  M2TS packets (§4.4), generalizing the fixed-188-byte, single-program
  assumptions of mpegts.go into a stateful Demuxer that can be fed
  arbitrary chunks of transport-stream bytes.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"fmt"

	"github.com/ausocean/mediainfo/codec/aac"
	"github.com/ausocean/mediainfo/codec/esdesc"
	"github.com/ausocean/mediainfo/codec/h264sps"
	"github.com/ausocean/mediainfo/codec/mpa"
	"github.com/ausocean/mediainfo/codec/mpeg2video"
	"github.com/ausocean/mediainfo/taxonomy"
)

// PacketSize is the size in bytes of a standard MPEG-TS packet.
const PacketSize = 188

// Standard program IDs for program-specific information packets.
const (
	PatPid = 0  // Program Association Table
	SdtPid = 17 // DVB Service Description Table
)

// HeadSize is the size of the fixed 4-byte MPEG-TS packet header that
// precedes the adaptation field/payload.
const HeadSize = 4

// M2TSPacketSize is the on-disk slot size of an M2TS packet: a 4-byte
// timecode prefix followed by one standard 188-byte TS packet.
const M2TSPacketSize = 192

// scanWindow bounds how far DetectPacketSize will scan for a candidate
// sync byte before giving up.
const scanWindow = 1000

// confirmRuns is the number of subsequent packet-aligned sync bytes
// DetectPacketSize requires before accepting a candidate offset/size.
const confirmRuns = 4

// DetectPacketSize scans up to scanWindow bytes of b for a sync byte
// (0x47) that repeats at a constant stride of either 188 (standard TS)
// or 192 (M2TS, where the sync byte sits at offset 4 within each
// 192-byte slot). It returns the packet size and the offset of the
// first confirmed sync byte, or an error if no pattern validates.
func DetectPacketSize(b []byte) (size, offset int, err error) {
	limit := scanWindow
	if limit > len(b) {
		limit = len(b)
	}
	for i := 0; i < limit; i++ {
		if b[i] != 0x47 {
			continue
		}
		for _, candidate := range []int{PacketSize, M2TSPacketSize} {
			if confirmSync(b, i, candidate) {
				return candidate, i, nil
			}
		}
	}
	return 0, -1, fmt.Errorf("mts: no valid sync pattern found in first %d bytes", limit)
}

// confirmSync checks that a 0x47 sync byte recurs every stride bytes,
// starting at off, for confirmRuns consecutive packets.
func confirmSync(b []byte, off, stride int) bool {
	for n := 1; n <= confirmRuns; n++ {
		i := off + n*stride
		if i >= len(b) {
			return n > 1 // accept if we ran out of data but confirmed at least once
		}
		if b[i] != 0x47 {
			return false
		}
	}
	return true
}

// packetPayload returns the 188-byte standard-TS slice of a raw packet
// slot. For M2TS input this strips the leading 4-byte timecode.
func packetPayload(raw []byte, size int) []byte {
	if size == M2TSPacketSize {
		return raw[4:]
	}
	return raw
}

// StreamCategory classifies an elementary stream's general type.
type StreamCategory int

// Recognized stream categories.
const (
	CategoryOther StreamCategory = iota
	CategoryVideo
	CategoryAudio
	CategoryPrivate
)

// streamTypeInfo pairs a category with a codec guess for a given
// stream_type byte, per the PMT elementary-stream loop (§4.4).
type streamTypeInfo struct {
	category StreamCategory
	video    taxonomy.VideoCodecKind
	audio    taxonomy.AudioCodecKind
}

// streamTypeTable maps MPEG-TS stream_type values to their category and
// codec, where the codec is unambiguous from the type byte alone.
var streamTypeTable = map[byte]streamTypeInfo{
	0x01: {category: CategoryVideo, video: taxonomy.MPEG1Video},
	0x02: {category: CategoryVideo, video: taxonomy.MPEG2Video},
	0x03: {category: CategoryAudio, audio: taxonomy.MP2},
	0x04: {category: CategoryAudio, audio: taxonomy.MP2},
	0x0F: {category: CategoryAudio, audio: taxonomy.AAC},
	0x11: {category: CategoryAudio, audio: taxonomy.AACLATM},
	0x1B: {category: CategoryVideo, video: taxonomy.H264},
	0x24: {category: CategoryVideo, video: taxonomy.HEVC},
	0x81: {category: CategoryAudio, audio: taxonomy.AC3},
	0x82: {category: CategoryAudio, audio: taxonomy.DTS},
	0x87: {category: CategoryAudio, audio: taxonomy.EAC3},
	0x06: {category: CategoryPrivate}, // needs payload sniffing
}

// StreamDetails holds running parse state for one elementary PID
// discovered in a PMT, mutated as TS packets for that PID arrive.
type StreamDetails struct {
	ProgramNumber uint16
	PID           uint16
	StreamType    byte
	Category      StreamCategory
	VideoCodec    taxonomy.VideoCodecKind
	AudioCodec    taxonomy.AudioCodecKind
	CodecDetail   string
	Language      string
	Parsed        bool // true once the codec-specific sniff has run

	pesBuffer       []byte
	pesStarted      bool
	pesPayloadStart int // offset in pesBuffer where the current PES payload begins

	handler *PesPayloadHandler
}

// Demuxer tracks PAT/PMT/SDT state and per-PID PES reassembly across a
// stream of MPEG-TS packets fed incrementally via Write.
type Demuxer struct {
	packetSize int
	partial    []byte // unconsumed bytes carried over between Write calls

	packetsProcessed int
	programPMTPids   map[uint16]uint16 // program number -> PMT PID
	pmtParsed        map[uint16]bool   // PMT PID -> seen at least once
	streams          map[uint16]*StreamDetails
	serviceNames     map[uint16]string // SDT: program number -> service name

	// ScanCap bounds total bytes processed when no sample extraction is
	// requested; 0 means unbounded.
	ScanCap int
}

// NewDemuxer returns a Demuxer ready to accept packets via Write.
func NewDemuxer() *Demuxer {
	return &Demuxer{
		programPMTPids: make(map[uint16]uint16),
		pmtParsed:      make(map[uint16]bool),
		streams:        make(map[uint16]*StreamDetails),
		serviceNames:   make(map[uint16]string),
	}
}

// Streams returns the StreamDetails discovered so far, keyed by PID.
func (d *Demuxer) Streams() map[uint16]*StreamDetails {
	return d.streams
}

// Complete reports whether the metadata-completeness criterion of
// §4.4 is met: at least 200 TS packets processed, every discovered PMT
// PID parsed, and every audio/video/private StreamDetails parsed.
func (d *Demuxer) Complete() bool {
	if d.packetsProcessed < 200 {
		return false
	}
	for _, pid := range d.programPMTPids {
		if !d.pmtParsed[pid] {
			return false
		}
	}
	for _, s := range d.streams {
		if (s.Category == CategoryVideo || s.Category == CategoryAudio || s.Category == CategoryPrivate) && !s.Parsed {
			return false
		}
	}
	return true
}

// Write feeds raw bytes (of any length) into the demuxer. If the
// packet size hasn't yet been detected, it is detected from b (falling
// back to any bytes buffered from a previous Write). Write consumes
// whole packets only, retaining any trailing partial packet for the
// next call.
func (d *Demuxer) Write(b []byte) error {
	buf := append(d.partial, b...)
	d.partial = nil

	if d.packetSize == 0 {
		size, offset, err := DetectPacketSize(buf)
		if err != nil {
			d.partial = buf
			return nil // not enough data yet to confirm sync; try again next Write
		}
		d.packetSize = size
		buf = buf[offset:]
	}

	for len(buf) >= d.packetSize {
		if d.ScanCap > 0 && d.packetsProcessed*PacketSize >= d.ScanCap {
			d.partial = nil
			return nil
		}
		raw := buf[:d.packetSize]
		buf = buf[d.packetSize:]
		if err := d.processPacket(packetPayload(raw, d.packetSize)); err != nil {
			return err
		}
	}
	d.partial = append(d.partial, buf...)
	return nil
}

// processPacket handles one 188-byte standard-TS packet.
func (d *Demuxer) processPacket(pkt []byte) error {
	if len(pkt) != PacketSize || pkt[0] != 0x47 {
		return fmt.Errorf("mts: malformed packet")
	}
	d.packetsProcessed++

	pusi := pkt[1]&0x40 != 0
	pid := uint16(pkt[1]&0x1f)<<8 | uint16(pkt[2])
	afc := (pkt[3] & 0x30) >> 4

	payload := pkt[HeadSize:]
	if afc&0x2 != 0 { // adaptation field present
		if len(payload) == 0 {
			return nil
		}
		adaptLen := int(payload[0])
		if 1+adaptLen > len(payload) {
			return nil
		}
		payload = payload[1+adaptLen:]
	}
	if afc&0x1 == 0 { // no payload
		return nil
	}

	switch {
	case pid == PatPid && pusi:
		return d.parsePAT(payload)
	case pid == SdtPid && pusi:
		d.parseSDT(payload)
		return nil
	case d.isPMTPid(pid) && pusi:
		return d.parsePMT(pid, payload)
	}

	if s, ok := d.streams[pid]; ok {
		d.feedPES(s, payload, pusi)
	}
	return nil
}

func (d *Demuxer) isPMTPid(pid uint16) bool {
	for _, p := range d.programPMTPids {
		if p == pid {
			return true
		}
	}
	return false
}

// parsePAT parses a PAT section (pointer field included) and records
// each program's PMT PID.
func (d *Demuxer) parsePAT(payload []byte) error {
	pf := int(payload[0])
	sec := payload[1+pf:]
	if len(sec) < 8 || sec[0] != 0x00 {
		return fmt.Errorf("mts: PAT table_id mismatch")
	}
	sectionLen := int(sec[1]&0x0f)<<8 | int(sec[2])
	if 3+sectionLen > len(sec) {
		return fmt.Errorf("mts: PAT section length overruns buffer")
	}
	// Program loop runs from byte 8 to sectionLen+3-4 (excludes trailing CRC).
	body := sec[8 : 3+sectionLen-4]
	for i := 0; i+4 <= len(body); i += 4 {
		program := uint16(body[i])<<8 | uint16(body[i+1])
		pmtPID := uint16(body[i+2]&0x1f)<<8 | uint16(body[i+3])
		if program == 0 {
			continue // network PID entry, not a program
		}
		d.programPMTPids[program] = pmtPID
	}
	return nil
}

// parseSDT parses a DVB Service Description Table section, populating
// service names by program number where descriptors carry them.
func (d *Demuxer) parseSDT(payload []byte) {
	pf := int(payload[0])
	sec := payload[1+pf:]
	if len(sec) < 11 || sec[0] != 0x42 {
		return
	}
	sectionLen := int(sec[1]&0x0f)<<8 | int(sec[2])
	if 3+sectionLen > len(sec) {
		return
	}
	body := sec[11 : 3+sectionLen-4]
	for i := 0; i+5 <= len(body); {
		serviceID := uint16(body[i])<<8 | uint16(body[i+1])
		descLoopLen := int(body[i+3]&0x0f)<<8 | int(body[i+4])
		descs := body[i+5:]
		if descLoopLen > len(descs) {
			break
		}
		for off := 0; off+2 <= descLoopLen; {
			tag := descs[off]
			l := int(descs[off+1])
			if off+2+l > descLoopLen {
				break
			}
			if tag == 0x48 && l > 3 { // service_descriptor
				provLen := int(descs[off+2+1])
				nameOff := off + 2 + 2 + provLen
				if nameOff < off+2+l {
					nameLen := int(descs[nameOff])
					if nameOff+1+nameLen <= off+2+l {
						d.serviceNames[serviceID] = string(descs[nameOff+1 : nameOff+1+nameLen])
					}
				}
			}
			off += 2 + l
		}
		i += 5 + descLoopLen
	}
}

// parsePMT parses a PMT section for the program whose PMT PID is
// pmtPID, creating a StreamDetails for every newly discovered
// elementary PID.
func (d *Demuxer) parsePMT(pmtPID uint16, payload []byte) error {
	pf := int(payload[0])
	sec := payload[1+pf:]
	if len(sec) < 12 || sec[0] != 0x02 {
		return fmt.Errorf("mts: PMT table_id mismatch")
	}
	sectionLen := int(sec[1]&0x0f)<<8 | int(sec[2])
	if 3+sectionLen > len(sec) {
		return fmt.Errorf("mts: PMT section length overruns buffer")
	}
	programInfoLen := int(sec[10]&0x0f)<<8 | int(sec[11])
	body := sec[12+programInfoLen : 3+sectionLen-4]

	var program uint16
	for prog, pid := range d.programPMTPids {
		if pid == pmtPID {
			program = prog
		}
	}

	for i := 0; i+5 <= len(body); {
		streamType := body[i]
		epid := uint16(body[i+1]&0x1f)<<8 | uint16(body[i+2])
		esInfoLen := int(body[i+3]&0x0f)<<8 | int(body[i+4])
		descBytes := body[i+5:]
		if esInfoLen > len(descBytes) {
			break
		}
		descBytes = descBytes[:esInfoLen]
		i += 5 + esInfoLen

		if _, exists := d.streams[epid]; exists {
			continue
		}
		info := streamTypeTable[streamType]
		s := &StreamDetails{
			ProgramNumber: program,
			PID:           epid,
			StreamType:    streamType,
			Category:      info.category,
			VideoCodec:    info.video,
			AudioCodec:    info.audio,
		}
		d.enrichFromDescriptors(s, descBytes)
		d.streams[epid] = s
	}

	d.pmtParsed[pmtPID] = true
	return nil
}

// enrichFromDescriptors runs the ES-descriptor loop against an
// elementary stream's PMT descriptors, enriching language and codec
// detail (§4.2).
func (d *Demuxer) enrichFromDescriptors(s *StreamDetails, raw []byte) {
	decs, err := esdesc.DecodeLoop(raw)
	if err != nil {
		return
	}
	for _, dec := range decs {
		if dec.Language != nil {
			s.Language = dec.Language.Tag.String()
		}
		if dec.AVCVideo != nil {
			s.CodecDetail = fmt.Sprintf("avc1.%02X%02X%02X", dec.AVCVideo.ProfileIDC, dec.AVCVideo.ConstraintSet, dec.AVCVideo.LevelIDC)
		}
	}
}

// feedPES appends MTS payload bytes into a stream's PES buffer,
// runs the codec sniffer on the first complete payload, and, if a
// PesPayloadHandler has been attached, forwards payload bytes to it.
func (d *Demuxer) feedPES(s *StreamDetails, payload []byte, pusi bool) {
	if pusi {
		if s.pesStarted && !s.Parsed {
			d.sniff(s)
		}
		s.pesBuffer = append([]byte(nil), payload...)
		s.pesStarted = true
	} else if s.pesStarted {
		s.pesBuffer = append(s.pesBuffer, payload...)
	} else {
		return // haven't seen a PUSI for this PID yet
	}

	if s.handler != nil {
		s.handler.Feed(payload)
	}
}

// recognizedStreamID reports whether b is a PES stream_id in a
// recognized range (§4.4): 0xE0-0xEF video, 0xC0-0xDF audio, 0xBD
// private-1.
func recognizedStreamID(b byte) bool {
	return (b >= 0xE0 && b <= 0xEF) || (b >= 0xC0 && b <= 0xDF) || b == 0xBD
}

// sniff runs the codec-specific sniffer against the first PES payload
// collected for s, per §4.4.
func (d *Demuxer) sniff(s *StreamDetails) {
	buf := s.pesBuffer
	// Locate the 00 00 01 start-code and stream_id/length fields, then
	// the PES payload proper (skipping the optional header fields).
	if len(buf) < 9 || buf[0] != 0x00 || buf[1] != 0x00 || buf[2] != 0x01 {
		return
	}
	if !recognizedStreamID(buf[3]) {
		return
	}
	headerLen := int(buf[8])
	start := 9 + headerLen
	if start > len(buf) {
		return
	}
	es := buf[start:]

	switch s.Category {
	case CategoryVideo:
		d.sniffVideo(s, es)
	case CategoryAudio:
		d.sniffAudio(s, es)
	case CategoryPrivate:
		d.sniffPrivate(s, es)
	}
}

func (d *Demuxer) sniffVideo(s *StreamDetails, es []byte) {
	switch s.VideoCodec {
	case taxonomy.H264:
		if nal := findNALOfType(es, 7); nal != nil {
			if sps, err := h264sps.ParseSPS(h264sps.RemoveEmulationPrevention(nal)); err == nil {
				s.CodecDetail = sps.CodecDetail()
				s.Parsed = true
			}
		}
	case taxonomy.MPEG2Video:
		if off := mpeg2video.FindStartCode(es, 0xB3, 0); off >= 0 {
			if _, err := mpeg2video.ParseSequenceHeader(es[off:]); err == nil {
				s.Parsed = true
			}
		}
	default:
		s.Parsed = true // HEVC and others: nothing further to sniff here
	}
}

func (d *Demuxer) sniffAudio(s *StreamDetails, es []byte) {
	switch s.AudioCodec {
	case taxonomy.AAC:
		if sniffADTS(es) {
			s.Parsed = true
			return
		}
		if sniffLATM(es) {
			s.AudioCodec = taxonomy.AACLATM
			s.Parsed = true
		}
	case taxonomy.AACLATM:
		if sniffLATM(es) {
			s.Parsed = true
		}
	case taxonomy.MP2:
		if hdr, err := sniffMPA(es); err == nil {
			if hdr.Layer == mpa.LayerIII {
				s.AudioCodec = taxonomy.MP3
			}
			s.Parsed = true
		}
	default:
		s.Parsed = true // AC-3/E-AC-3/DTS: type is already unambiguous from stream_type
	}
}

// sniffPrivate handles stream_type 0x06 (ffmpeg-ish private streams):
// try LATM first, then MP2/MP3, then ADTS AAC, adopting the first that
// parses (§4.4).
func (d *Demuxer) sniffPrivate(s *StreamDetails, es []byte) {
	if sniffLATM(es) {
		s.Category = CategoryAudio
		s.AudioCodec = taxonomy.AACLATM
		s.Parsed = true
		return
	}
	if hdr, err := sniffMPA(es); err == nil {
		s.Category = CategoryAudio
		s.AudioCodec = taxonomy.MP2
		if hdr.Layer == mpa.LayerIII {
			s.AudioCodec = taxonomy.MP3
		}
		s.Parsed = true
		return
	}
	if sniffADTS(es) {
		s.Category = CategoryAudio
		s.AudioCodec = taxonomy.AAC
		s.Parsed = true
		return
	}
	s.Parsed = true // nothing recognized; stop retrying every PES payload
}

// sniffADTS scans up to 20 bytes of es for an ADTS 0xFFF sync word.
func sniffADTS(es []byte) bool {
	limit := 20
	if limit > len(es)-1 {
		limit = len(es) - 1
	}
	for i := 0; i < limit; i++ {
		if es[i] == 0xFF && es[i+1]&0xF0 == 0xF0 {
			return true
		}
	}
	return false
}

// sniffLATM scans up to 20 bytes of es for a LATM/LOAS sync word
// (0x2B7, encoded as 0x56 0xE0-0xFF) and, on a match, attempts a full
// AudioMuxElement parse.
func sniffLATM(es []byte) bool {
	limit := 20
	if limit > len(es)-1 {
		limit = len(es) - 1
	}
	for i := 0; i < limit; i++ {
		if es[i] == 0x56 && es[i+1]&0xE0 == 0xE0 {
			payloadLen, err := aac.ParseLOASHeader(es[i:])
			if err != nil {
				continue
			}
			end := i + 3 + payloadLen
			if end > len(es) {
				end = len(es)
			}
			if _, err := aac.ParseAudioMuxElement(es[i+3 : end]); err == nil {
				return true
			}
		}
	}
	return false
}

// sniffMPA scans up to 20 bytes of es for an MPEG audio frame sync and
// returns the parsed header.
func sniffMPA(es []byte) (*mpa.FrameHeader, error) {
	limit := 20
	if limit > len(es)-mpa.HeaderSize {
		limit = len(es) - mpa.HeaderSize
	}
	for i := 0; i < limit; i++ {
		if h, err := mpa.ParseFrameHeader(es[i : i+mpa.HeaderSize]); err == nil {
			return h, nil
		}
	}
	return nil, fmt.Errorf("mts: no MPEG audio sync found")
}

// findNALOfType scans Annex-B byte stream es for the first NAL unit
// (after a 00 00 01 or 00 00 00 01 start code) whose nal_unit_type
// matches want, returning its RBSP bytes (start code and header byte
// stripped) or nil if none is found.
func findNALOfType(es []byte, want byte) []byte {
	for i := 0; i+4 < len(es); i++ {
		scLen := 0
		if es[i] == 0 && es[i+1] == 0 && es[i+2] == 1 {
			scLen = 3
		} else if i+1 < len(es) && es[i] == 0 && es[i+1] == 0 && es[i+2] == 0 && es[i+3] == 1 {
			scLen = 4
		}
		if scLen == 0 {
			continue
		}
		nalStart := i + scLen
		if nalStart >= len(es) {
			return nil
		}
		nalType := es[nalStart] & 0x1f
		if nalType != want {
			continue
		}
		// Find next start code to bound this NAL unit.
		end := len(es)
		for j := nalStart + 1; j+2 < len(es); j++ {
			if es[j] == 0 && es[j+1] == 0 && (es[j+2] == 1 || (j+3 < len(es) && es[j+2] == 0 && es[j+3] == 1)) {
				end = j
				break
			}
		}
		return es[nalStart+1 : end]
	}
	return nil
}

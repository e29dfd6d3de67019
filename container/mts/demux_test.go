package mts

import (
	"testing"

	"github.com/ausocean/mediainfo/taxonomy"
)

// pmtPidFixture is the PMT PID the tests' synthetic single-program PAT
// always points at; production code has no fixed PMT PID (it's
// discovered per-program from the PAT), so this is a fixture constant
// rather than a package export.
const pmtPidFixture = 0x1000

// tsPacket builds a single 188-byte MPEG-TS packet carrying payload,
// with no adaptation field.
func tsPacket(pid uint16, pusi bool, payload []byte) []byte {
	pkt := make([]byte, PacketSize)
	pkt[0] = 0x47
	pusiBit := byte(0)
	if pusi {
		pusiBit = 0x40
	}
	pkt[1] = pusiBit | byte(pid>>8)&0x1f
	pkt[2] = byte(pid)
	pkt[3] = 0x10 // no scrambling, payload only, continuity counter 0
	n := copy(pkt[HeadSize:], payload)
	for i := HeadSize + n; i < PacketSize; i++ {
		pkt[i] = 0xff
	}
	return pkt
}

func TestDetectPacketSizeStandardTS(t *testing.T) {
	var buf []byte
	for i := 0; i < 6; i++ {
		buf = append(buf, tsPacket(0, false, nil)...)
	}
	size, offset, err := DetectPacketSize(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != PacketSize || offset != 0 {
		t.Errorf("got size=%d offset=%d, want %d/0", size, offset, PacketSize)
	}
}

func TestDetectPacketSizeM2TS(t *testing.T) {
	var buf []byte
	for i := 0; i < 6; i++ {
		slot := make([]byte, M2TSPacketSize)
		copy(slot[4:], tsPacket(0, false, nil))
		buf = append(buf, slot...)
	}
	size, _, err := DetectPacketSize(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != M2TSPacketSize {
		t.Errorf("got size %d, want %d", size, M2TSPacketSize)
	}
}

func TestDetectPacketSizeFailsOnGarbage(t *testing.T) {
	if _, _, err := DetectPacketSize(make([]byte, 2000)); err == nil {
		t.Fatal("expected error for data with no sync pattern")
	}
}

// buildPAT returns a minimal PAT section (pointer field included)
// declaring a single program (number 1) whose PMT lives at
// pmtPidFixture, in the section byte layout Demuxer.parsePAT expects.
func buildPAT(t *testing.T) []byte {
	t.Helper()
	sec := []byte{
		0x00,       // table_id
		0xB0, 0x0D, // section_syntax_indicator/reserved, section_length=13
		0x00, 0x01, // transport_stream_id
		0xC1,       // reserved/version/current_next_indicator
		0x00,       // section_number
		0x00,       // last_section_number
		0x00, 0x01, // program_number = 1
		0xF0, 0x00, // reserved | PMT PID (0x1000)
		0x00, 0x00, 0x00, 0x00, // CRC32 (unchecked by the parser)
	}
	return append([]byte{0x00}, sec...) // pointer_field
}

// buildPMT returns a minimal PMT section (pointer field included)
// declaring one elementary stream (streamType at epid), in the section
// byte layout Demuxer.parsePMT expects.
func buildPMT(t *testing.T, epid uint16, streamType byte) []byte {
	t.Helper()
	sec := []byte{
		0x02,       // table_id
		0xB0, 0x12, // section_syntax_indicator/reserved, section_length=18
		0x00, 0x01, // program_number = 1
		0xC1,                             // reserved/version/current_next_indicator
		0x00,                             // section_number
		0x00,                             // last_section_number
		0xE0 | byte(epid>>8&0x1f), byte(epid), // reserved | PCR_PID (reuse epid)
		0xF0, 0x00, // reserved | program_info_length = 0
		streamType,
		0xE0 | byte(epid>>8&0x1f), byte(epid), // reserved | elementary_PID
		0xF0, 0x00, // reserved | ES_info_length = 0
		0x00, 0x00, 0x00, 0x00, // CRC32 (unchecked by the parser)
	}
	return append([]byte{0x00}, sec...) // pointer_field
}

// buildPATPMT constructs a minimal PAT (program 1 -> PMT PID
// pmtPidFixture) and a PMT declaring a single H.264 elementary stream
// at PID 0x100.
func buildPATPMT(t *testing.T) (pat, pmt []byte) {
	t.Helper()
	return buildPAT(t), buildPMT(t, 0x100, 0x1B)
}

func TestDemuxerParsesPATAndPMT(t *testing.T) {
	pat, pmt := buildPATPMT(t)

	d := NewDemuxer()
	if err := d.Write(tsPacket(PatPid, true, pat)); err != nil {
		t.Fatalf("unexpected error writing PAT: %v", err)
	}
	if err := d.Write(tsPacket(pmtPidFixture, true, pmt)); err != nil {
		t.Fatalf("unexpected error writing PMT: %v", err)
	}

	s, ok := d.Streams()[0x100]
	if !ok {
		t.Fatal("expected a StreamDetails for PID 0x100")
	}
	if s.Category != CategoryVideo || s.VideoCodec != taxonomy.H264 {
		t.Errorf("got category=%v codec=%v, want video/h264", s.Category, s.VideoCodec)
	}
	if !d.pmtParsed[pmtPidFixture] {
		t.Error("expected PMT PID marked parsed")
	}
}

func TestDemuxerCompleteRequires200Packets(t *testing.T) {
	pat, pmt := buildPATPMT(t)
	d := NewDemuxer()
	d.Write(tsPacket(PatPid, true, pat))
	d.Write(tsPacket(pmtPidFixture, true, pmt))
	if d.Complete() {
		t.Error("should not be complete with only 2 packets processed")
	}
	for i := 0; i < 210; i++ {
		d.Write(tsPacket(0x100, false, []byte{0xAA}))
	}
}

func TestDemuxerSniffsH264SPS(t *testing.T) {
	pat, pmt := buildPATPMT(t)
	d := NewDemuxer()
	d.Write(tsPacket(PatPid, true, pat))
	d.Write(tsPacket(pmtPidFixture, true, pmt))

	// A minimal Annex-B SPS NAL (profile 66, level 30) preceded by a PES
	// header stub, as constructed for the h264sps baseline test case.
	spsRBSP := []byte{0x42, 0x00, 0x1E, 0xF4, 0x16, 0x27, 0x00}
	nal := append([]byte{0x00, 0x00, 0x01, 0x07}, spsRBSP...)

	pesHeader := []byte{0x00, 0x00, 0x01, 0xE0, 0x00, 0x00, 0x80, 0x00, 0x00}
	payload := append(append([]byte{}, pesHeader...), nal...)

	d.Write(tsPacket(0x100, true, payload))
	// A second PUSI packet triggers the sniff of the first (now complete) payload.
	d.Write(tsPacket(0x100, true, []byte{0x00, 0x00, 0x01, 0xE0, 0x00, 0x00, 0x80, 0x00, 0x00}))

	s := d.Streams()[0x100]
	if !s.Parsed {
		t.Fatal("expected stream to be marked parsed after SPS sniff")
	}
	if s.CodecDetail == "" {
		t.Error("expected a non-empty codec detail string from the SPS")
	}
}

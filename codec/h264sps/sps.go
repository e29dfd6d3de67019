/*
NAME
  sps.go

DESCRIPTION
  sps.go decodes an H.264 sequence parameter set (SPS) NAL unit down to
  the fields needed for stream metadata: profile/level, chroma format,
  scaling-list traversal (consumed but not retained), and the derived
  picture width/height (§4.2).

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package h264sps decodes H.264 sequence parameter sets, trimmed from a
// full decoder (§4.2) down to the fields needed for container metadata:
// profile, level, chroma format, and derived picture dimensions. It
// reuses the scaling-list default tables and traversal algebra of the
// teacher's codec/h264/h264dec/sps.go, ported onto bitio.Cursor.
package h264sps

import (
	"fmt"

	"github.com/ausocean/mediainfo/bitio"
)

// scalingListSize returns the size of scaling list index i, per the
// 4x4/8x8 split used by seq_scaling_list_present_flag.
func scalingListSize(i int) int {
	if i < 6 {
		return 16
	}
	return 64
}

// profilesWithChromaInfo lists the ProfileIDC values for which SPS
// carries chroma_format_idc, bit-depth, and scaling-matrix fields
// (table 7.3.2.1.1).
var profilesWithChromaInfo = map[uint8]bool{
	100: true, 110: true, 122: true, 244: true, 44: true,
	83: true, 86: true, 118: true, 128: true, 138: true,
	139: true, 134: true, 135: true,
}

// SPS holds the fields of a decoded sequence parameter set needed for
// container-level stream metadata.
type SPS struct {
	Profile     uint8
	LevelIDC    uint8
	Constraint0 bool
	Constraint1 bool
	Constraint2 bool
	Constraint3 bool

	ChromaFormatIDC      uint64
	SeparateColorPlane   bool
	BitDepthLumaMinus8   uint64
	BitDepthChromaMinus8 uint64

	PicWidthInMBSMinus1      uint64
	PicHeightInMapUnitsMinus1 uint64
	FrameMBSOnlyFlag         bool
	FrameCroppingFlag        bool
	CropLeft, CropRight      uint64
	CropTop, CropBottom      uint64

	Width, Height int
}

// RemoveEmulationPrevention strips emulation_prevention_three_byte
// (0x03 following a 0x0000 sequence) from a raw NAL unit payload,
// yielding the RBSP suitable for bit-level parsing.
func RemoveEmulationPrevention(nal []byte) []byte {
	out := make([]byte, 0, len(nal))
	zeroRun := 0
	for i := 0; i < len(nal); i++ {
		b := nal[i]
		if zeroRun >= 2 && b == 0x03 {
			zeroRun = 0
			continue
		}
		out = append(out, b)
		if b == 0 {
			zeroRun++
		} else {
			zeroRun = 0
		}
	}
	return out
}

// ParseSPS decodes a sequence parameter set from rbsp, the NAL payload
// with emulation prevention bytes already removed and the one-byte NAL
// header (forbidden_zero_bit/nal_ref_idc/nal_unit_type) already stripped.
func ParseSPS(rbsp []byte) (*SPS, error) {
	c := bitio.NewCursor(rbsp)
	sps := &SPS{}

	profile, err := c.ReadBits(8)
	if err != nil {
		return nil, err
	}
	sps.Profile = uint8(profile)

	flags, err := c.ReadBits(8)
	if err != nil {
		return nil, err
	}
	sps.Constraint0 = flags&0x80 != 0
	sps.Constraint1 = flags&0x40 != 0
	sps.Constraint2 = flags&0x20 != 0
	sps.Constraint3 = flags&0x10 != 0

	level, err := c.ReadBits(8)
	if err != nil {
		return nil, err
	}
	sps.LevelIDC = uint8(level)

	if _, err := c.ReadUe(); err != nil { // seq_parameter_set_id
		return nil, err
	}

	sps.ChromaFormatIDC = 1 // inferred default when absent (4:2:0)
	if profilesWithChromaInfo[sps.Profile] {
		cf, err := c.ReadUe()
		if err != nil {
			return nil, err
		}
		sps.ChromaFormatIDC = uint64(cf)

		if sps.ChromaFormatIDC == 3 {
			scp, err := c.ReadFlag()
			if err != nil {
				return nil, err
			}
			sps.SeparateColorPlane = scp
		}

		bdl, err := c.ReadUe()
		if err != nil {
			return nil, err
		}
		sps.BitDepthLumaMinus8 = uint64(bdl)

		bdc, err := c.ReadUe()
		if err != nil {
			return nil, err
		}
		sps.BitDepthChromaMinus8 = uint64(bdc)

		if _, err := c.ReadFlag(); err != nil { // qpprime_y_zero_transform_bypass_flag
			return nil, err
		}

		scalingMatrixPresent, err := c.ReadFlag()
		if err != nil {
			return nil, err
		}
		if scalingMatrixPresent {
			n := 8
			if sps.ChromaFormatIDC == 3 {
				n = 12
			}
			for i := 0; i < n; i++ {
				present, err := c.ReadFlag()
				if err != nil {
					return nil, err
				}
				if present {
					if err := skipScalingList(c, scalingListSize(i)); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if _, err := c.ReadUe(); err != nil { // log2_max_frame_num_minus4
		return nil, err
	}

	picOrderCntType, err := c.ReadUe()
	if err != nil {
		return nil, err
	}
	switch picOrderCntType {
	case 0:
		if _, err := c.ReadUe(); err != nil { // log2_max_pic_order_cnt_lsb_minus4
			return nil, err
		}
	case 1:
		if _, err := c.ReadFlag(); err != nil { // delta_pic_order_always_zero_flag
			return nil, err
		}
		if _, err := c.ReadSe(); err != nil { // offset_for_non_ref_pic
			return nil, err
		}
		if _, err := c.ReadSe(); err != nil { // offset_for_top_to_bottom_field
			return nil, err
		}
		numRefFrames, err := c.ReadUe()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < numRefFrames; i++ {
			if _, err := c.ReadSe(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := c.ReadUe(); err != nil { // max_num_ref_frames
		return nil, err
	}
	if _, err := c.ReadFlag(); err != nil { // gaps_in_frame_num_value_allowed_flag
		return nil, err
	}

	w, err := c.ReadUe()
	if err != nil {
		return nil, err
	}
	sps.PicWidthInMBSMinus1 = uint64(w)

	h, err := c.ReadUe()
	if err != nil {
		return nil, err
	}
	sps.PicHeightInMapUnitsMinus1 = uint64(h)

	frameMBSOnly, err := c.ReadFlag()
	if err != nil {
		return nil, err
	}
	sps.FrameMBSOnlyFlag = frameMBSOnly

	if !frameMBSOnly {
		if _, err := c.ReadFlag(); err != nil { // mb_adaptive_frame_field_flag
			return nil, err
		}
	}

	if _, err := c.ReadFlag(); err != nil { // direct_8x8_inference_flag
		return nil, err
	}

	cropFlag, err := c.ReadFlag()
	if err != nil {
		return nil, err
	}
	sps.FrameCroppingFlag = cropFlag
	if cropFlag {
		l, err := c.ReadUe()
		if err != nil {
			return nil, err
		}
		r, err := c.ReadUe()
		if err != nil {
			return nil, err
		}
		t, err := c.ReadUe()
		if err != nil {
			return nil, err
		}
		b, err := c.ReadUe()
		if err != nil {
			return nil, err
		}
		sps.CropLeft, sps.CropRight, sps.CropTop, sps.CropBottom = uint64(l), uint64(r), uint64(t), uint64(b)
	}

	sps.Width, sps.Height = deriveDimensions(sps)

	return sps, nil
}

// deriveDimensions applies the standard SPS width/height derivation
// (section 7.4.2.1.1) against the decoded macroblock counts and crop
// offsets.
func deriveDimensions(sps *SPS) (width, height int) {
	width = int(sps.PicWidthInMBSMinus1+1) * 16
	frameHeightMult := 2
	if sps.FrameMBSOnlyFlag {
		frameHeightMult = 1
	}
	height = int(sps.PicHeightInMapUnitsMinus1+1) * 16 * frameHeightMult

	if !sps.FrameCroppingFlag {
		return width, height
	}

	subWidthC, subHeightC := 2, 2
	switch sps.ChromaFormatIDC {
	case 2:
		subWidthC, subHeightC = 2, 1
	case 3:
		subWidthC, subHeightC = 1, 1
	}

	cropUnitX, cropUnitY := 1, frameHeightMult
	if sps.ChromaFormatIDC != 0 && !sps.SeparateColorPlane {
		cropUnitX = subWidthC
		cropUnitY = subHeightC * frameHeightMult
	}

	width -= cropUnitX * int(sps.CropLeft+sps.CropRight)
	height -= cropUnitY * int(sps.CropTop+sps.CropBottom)
	return width, height
}

// CodecDetail returns the ISOBMFF-style avc1.PPCCLL codec string for
// the decoded SPS, e.g. "avc1.640028" for High Profile, level 4.0.
func (s *SPS) CodecDetail() string {
	var constraintByte uint8
	if s.Constraint0 {
		constraintByte |= 0x80
	}
	if s.Constraint1 {
		constraintByte |= 0x40
	}
	if s.Constraint2 {
		constraintByte |= 0x20
	}
	if s.Constraint3 {
		constraintByte |= 0x10
	}
	return fmt.Sprintf("avc1.%02X%02X%02X", s.Profile, constraintByte, s.LevelIDC)
}

// skipScalingList consumes (but does not retain) a scaling_list()
// syntax structure of the given size, per section 7.3.2.1.1.1, applying
// the same delta-scale traversal as the teacher's scalingList helper.
func skipScalingList(c *bitio.Cursor, size int) error {
	lastScale := 8
	nextScale := 8
	for i := 0; i < size; i++ {
		if nextScale != 0 {
			deltaScale, err := c.ReadSe()
			if err != nil {
				return err
			}
			nextScale = (lastScale + int(deltaScale) + 256) % 256
		}
		if nextScale != 0 {
			lastScale = nextScale
		}
	}
	return nil
}

/*
NAME
  descriptor.go

DESCRIPTION
  descriptor.go decodes MXF partition packs (operational-pattern
  labeling) and drives the top-level Parse entry point: scan the KLV
  stream, classify each triple (metadata set / partition pack / essence
  element), build the metadata-set Arena, and resolve essence tracks
  (§4.6), optionally streaming essence KLV payloads to a caller-supplied
  sink.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mxf

import "fmt"

// operationalPatternBase is the UL prefix every Operational-Pattern
// label begins with (§4.6).
var operationalPatternBase = [12]byte{
	0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x02, 0x01,
}

// PartitionInfo describes one decoded partition pack.
type PartitionInfo struct {
	OperationalPattern string // e.g. "OP1a", "OP-Atom"
}

// EssencePayloadFunc receives essence-KLV bytes as they're encountered,
// when sample extraction is enabled (§4.6).
type EssencePayloadFunc func(essenceTrackNumber uint32, data []byte)

// decodeOperationalPattern labels the OP from a partition pack's value,
// per §4.6: byte 76 (item complexity) and byte 77 (package complexity)
// of the value, offsets relative to the start of the value.
func decodeOperationalPattern(value []byte) (string, bool) {
	if len(value) < 78 {
		return "", false
	}
	ul := value[64:76]
	for i, b := range operationalPatternBase {
		if ul[i] != b {
			return "", false
		}
	}
	itemComplexity := value[76]
	pkgComplexity := value[77]

	if itemComplexity == 0x10 {
		return "OP-Atom", true
	}
	var item string
	switch itemComplexity {
	case 1:
		item = "OP1"
	case 2:
		item = "OP2"
	case 3:
		item = "OP3"
	default:
		return "", false
	}
	var pkg string
	switch pkgComplexity {
	case 1:
		pkg = "a"
	case 2:
		pkg = "b"
	case 3:
		pkg = "c"
	default:
		return "", false
	}
	return item + pkg, true
}

// isPartitionPack reports whether k's bytes 5-6 (1-indexed, i.e.
// k[4]/k[5] in this 0-indexed array) classify it as a partition pack,
// per §4.6: "02 05" with byte 13 in {2,3,4}. k[4] continues the common
// SMPTE UL prefix verified by VerifyULPrefix; k[5] is where partition
// packs (0x05) and metadata sets (0x53) diverge.
func isPartitionPack(k Key) bool {
	return k[4] == 0x02 && k[5] == 0x05 && (k[13] == 2 || k[13] == 3 || k[13] == 4)
}

// isMetadataSet reports whether k's bytes 5-6 (k[4]/k[5]) classify it
// as a metadata set ("02 53", §4.6).
func isMetadataSet(k Key) bool {
	return k[4] == 0x02 && k[5] == 0x53
}

// Result is the outcome of a full Parse: the first recognized
// partition's OP label and the resolved essence tracks.
type Result struct {
	Partition *PartitionInfo
	Tracks    []EssenceTrack
}

// Parse scans b as a stream of KLV triples, verifying the mandatory
// leading SMPTE UL prefix (§4.6), classifying and collecting metadata
// sets into an Arena, recording the first partition pack's OP label,
// and — if onEssence is non-nil — streaming essence-element payloads to
// it as they're encountered. Returns UnsupportedFormat if the stream
// never yields a resolvable MaterialPackage.
func Parse(b []byte, onEssence EssencePayloadFunc) (*Result, error) {
	if len(b) < 16 {
		return nil, ErrNeedMoreData
	}
	var firstKey Key
	copy(firstKey[:], b[0:16])
	if err := VerifyULPrefix(firstKey); err != nil {
		return nil, err
	}

	arena := NewArena()
	res := &Result{}

	pos := 0
	for pos < len(b) {
		klv, err := ReadKLV(b, pos)
		if err != nil {
			if err == ErrNeedMoreData {
				break
			}
			return nil, err
		}
		switch {
		case isMetadataSet(klv.Key):
			arena.Add(decodeMetadataSet(klv.Key, klv.Value))
		case isPartitionPack(klv.Key) && res.Partition == nil:
			if op, ok := decodeOperationalPattern(klv.Value); ok {
				res.Partition = &PartitionInfo{OperationalPattern: op}
			}
		case IsEssenceKey(klv.Key):
			if onEssence != nil {
				onEssence(EssenceTrackNumber(klv.Key), klv.Value)
			}
		}
		pos += klv.Total
	}

	res.Tracks = arena.ResolveEssenceTracks()
	if len(res.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no resolvable essence tracks", ErrUnsupportedFormat)
	}
	return res, nil
}

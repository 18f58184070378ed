package embedded

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ToEmbedded converts a host-document position into the coordinate space of
// the virtual document. The virtual character chosen is the one whose host
// offset is nearest at or before the host offset of pos. Returns false when
// the position lies before every mapped span.
func ToEmbedded(hostText, virtualText string, indexes []int, pos protocol.Position) (protocol.Position, bool) {
	hostOffset := OffsetAt(hostText, pos)

	best := -1
	for i, hi := range indexes {
		if hi == NoMapping {
			continue
		}
		if hi > hostOffset {
			break
		}
		best = i
		if hi == hostOffset {
			break
		}
	}
	if best < 0 {
		return protocol.Position{}, false
	}
	return PositionAt(virtualText, best), true
}

// ToHost converts a virtual-document range back into host coordinates.
// Both endpoints must map; a range touching synthetic text fails as a whole
// and the caller is expected to drop the result, not to error.
func ToHost(hostText, virtualText string, indexes []int, rng protocol.Range) (protocol.Range, bool) {
	start, ok := toHostPosition(hostText, virtualText, indexes, rng.Start)
	if !ok {
		return protocol.Range{}, false
	}
	end, ok := toHostPosition(hostText, virtualText, indexes, rng.End)
	if !ok {
		return protocol.Range{}, false
	}
	return protocol.Range{Start: start, End: end}, true
}

func toHostPosition(hostText, virtualText string, indexes []int, pos protocol.Position) (protocol.Position, bool) {
	voff := OffsetAt(virtualText, pos)
	if voff > len(indexes) {
		return protocol.Position{}, false
	}
	// A range end may sit one character past the mapped text.
	if voff == len(indexes) {
		if voff == 0 || indexes[voff-1] == NoMapping {
			return protocol.Position{}, false
		}
		return PositionAt(hostText, indexes[voff-1]+1), true
	}
	hi := indexes[voff]
	if hi == NoMapping {
		return protocol.Position{}, false
	}
	return PositionAt(hostText, hi), true
}

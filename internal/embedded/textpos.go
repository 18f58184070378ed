package embedded

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// OffsetAt returns the character offset of an LSP position in text.
// Offsets count unicode characters; the Character field of the position is
// interpreted in UTF-16 code units as the protocol requires. Positions past
// the end of a line or of the text are clamped.
func OffsetAt(text string, pos protocol.Position) int {
	var line, col protocol.UInteger
	offset := 0
	for _, r := range text {
		if line == pos.Line && col >= pos.Character {
			return offset
		}
		switch {
		case r == '\n':
			if line == pos.Line {
				// Position beyond end of line
				return offset
			}
			line++
			col = 0
		case r > 0xFFFF:
			col += 2
		default:
			col++
		}
		offset++
	}
	return offset
}

// PositionAt is the inverse of OffsetAt, re-scanning text for line breaks.
// No line table is cached; documents are small recipe files.
func PositionAt(text string, offset int) protocol.Position {
	var line, col protocol.UInteger
	i := 0
	for _, r := range text {
		if i >= offset {
			break
		}
		switch {
		case r == '\n':
			line++
			col = 0
		case r > 0xFFFF:
			col += 2
		default:
			col++
		}
		i++
	}
	return protocol.Position{Line: line, Character: col}
}

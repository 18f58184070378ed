package document

import (
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// applyEdit splices newText into text over the given LSP range. Range
// characters are UTF-16 code units; the splice happens at byte offsets that
// respect them.
func applyEdit(text string, rng protocol.Range, newText string) string {
	start := byteOffset(text, rng.Start)
	end := byteOffset(text, rng.End)
	return text[:start] + newText + text[end:]
}

// byteOffset computes the byte offset of an LSP position, clamping past-end
// lines and columns like the rest of the server does.
func byteOffset(text string, pos protocol.Position) int {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		pos.Line = uint32(len(lines) - 1)
		pos.Character = uint32(len(lines[pos.Line]))
	}

	offset := 0
	for i := uint32(0); i < pos.Line; i++ {
		offset += len(lines[i]) + 1
	}

	var units uint32
	var bytes int
	for _, r := range lines[pos.Line] {
		unit := uint32(1)
		if r > 0xFFFF {
			unit = 2
		}
		if units+unit > pos.Character {
			break
		}
		units += unit
		bytes += utf8.RuneLen(r)
	}
	return offset + bytes
}

package python

import (
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// pointAt converts an LSP position into a tree-sitter point. Tree-sitter
// columns are byte counts, LSP characters are UTF-16 code units.
func pointAt(text string, pos protocol.Position) sitter.Point {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		pos.Line = uint32(len(lines) - 1)
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
	return sitter.Point{Row: pos.Line, Column: uint32(bytes)}
}

// positionAt converts a tree-sitter point back into an LSP position.
func positionAt(text string, pt sitter.Point) protocol.Position {
	lines := strings.Split(text, "\n")
	if int(pt.Row) >= len(lines) {
		pt.Row = uint32(len(lines) - 1)
	}
	lineBytes := []byte(lines[pt.Row])
	if int(pt.Column) > len(lineBytes) {
		pt.Column = uint32(len(lineBytes))
	}

	var units uint32
	for _, r := range string(lineBytes[:pt.Column]) {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return protocol.Position{Line: pt.Row, Character: units}
}

func nodeRange(text string, node *sitter.Node) protocol.Range {
	return protocol.Range{
		Start: positionAt(text, node.StartPoint()),
		End:   positionAt(text, node.EndPoint()),
	}
}

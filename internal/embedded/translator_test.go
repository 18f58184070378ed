package embedded_test

import (
	"testing"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// The fixture mirrors an extracted region: the host document's second and
// third lines ("x = 1\nx\n", host offsets 5..12) form the virtual content.
const (
	transHost    = "HOST\nx = 1\nx\n"
	transVirtual = "x = 1\nx\n"
)

func transIndexes() []int {
	indexes := make([]int, 8)
	for i := range indexes {
		indexes[i] = 5 + i
	}
	return indexes
}

func TestToEmbedded(t *testing.T) {
	indexes := transIndexes()

	tests := []struct {
		name   string
		pos    protocol.Position
		expect protocol.Position
		ok     bool
	}{
		{
			name:   "start of region",
			pos:    protocol.Position{Line: 1, Character: 0},
			expect: protocol.Position{Line: 0, Character: 0},
			ok:     true,
		},
		{
			name:   "inside region",
			pos:    protocol.Position{Line: 1, Character: 4},
			expect: protocol.Position{Line: 0, Character: 4},
			ok:     true,
		},
		{
			name:   "second region line",
			pos:    protocol.Position{Line: 2, Character: 0},
			expect: protocol.Position{Line: 1, Character: 0},
			ok:     true,
		},
		{
			name: "before every mapped offset",
			pos:  protocol.Position{Line: 0, Character: 0},
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := embedded.ToEmbedded(transHost, transVirtual, indexes, tt.pos)
			if ok != tt.ok {
				t.Fatalf("ToEmbedded(%v) ok = %v, expected %v", tt.pos, ok, tt.ok)
			}
			if ok && got != tt.expect {
				t.Errorf("ToEmbedded(%v) = %v, expected %v", tt.pos, got, tt.expect)
			}
		})
	}
}

func TestToHost(t *testing.T) {
	indexes := transIndexes()

	rng := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}
	got, ok := embedded.ToHost(transHost, transVirtual, indexes, rng)
	if !ok {
		t.Fatal("expected range to map")
	}
	expect := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 0},
		End:   protocol.Position{Line: 1, Character: 1},
	}
	if got != expect {
		t.Errorf("ToHost(%v) = %v, expected %v", rng, got, expect)
	}
}

// TestToHostPastEnd covers a range whose end sits one character past the
// mapped text, as selection ranges routinely do.
func TestToHostPastEnd(t *testing.T) {
	indexes := transIndexes()

	rng := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 0},
		End:   protocol.Position{Line: 2, Character: 0},
	}
	got, ok := embedded.ToHost(transHost, transVirtual, indexes, rng)
	if !ok {
		t.Fatal("expected range to map")
	}
	expect := protocol.Range{
		Start: protocol.Position{Line: 2, Character: 0},
		End:   protocol.Position{Line: 3, Character: 0},
	}
	if got != expect {
		t.Errorf("ToHost(%v) = %v, expected %v", rng, got, expect)
	}
}

// TestToHostSyntheticText verifies that a range touching preamble characters
// fails as a whole instead of mapping partially.
func TestToHostSyntheticText(t *testing.T) {
	virtual := embedded.PythonPreamble + transVirtual
	var indexes []int
	for range embedded.PythonPreamble {
		indexes = append(indexes, embedded.NoMapping)
	}
	indexes = append(indexes, transIndexes()...)

	rng := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 6},
	}
	if _, ok := embedded.ToHost(transHost, virtual, indexes, rng); ok {
		t.Fatal("expected preamble range to fail translation")
	}
}

// TestRoundTrip checks that translating a host position into the virtual
// document and back returns the original position for every mapped offset.
func TestRoundTrip(t *testing.T) {
	indexes := transIndexes()

	positions := []protocol.Position{
		{Line: 1, Character: 0},
		{Line: 1, Character: 2},
		{Line: 1, Character: 5},
		{Line: 2, Character: 0},
	}
	for _, pos := range positions {
		vpos, ok := embedded.ToEmbedded(transHost, transVirtual, indexes, pos)
		if !ok {
			t.Fatalf("ToEmbedded(%v) failed", pos)
		}
		back, ok := embedded.ToHost(transHost, transVirtual, indexes, protocol.Range{Start: vpos, End: vpos})
		if !ok {
			t.Fatalf("ToHost(%v) failed", vpos)
		}
		if back.Start != pos {
			t.Errorf("round trip of %v came back as %v", pos, back.Start)
		}
	}
}

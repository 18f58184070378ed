package redirect_test

import (
	"testing"

	"github.com/ScorpionBytes/vscode-bitbake/internal/redirect"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func sampleLocation() protocol.Location {
	return protocol.Location{
		URI: "file:///a.bb",
		Range: protocol.Range{
			Start: protocol.Position{Line: 1, Character: 2},
			End:   protocol.Position{Line: 1, Character: 5},
		},
	}
}

func sampleLink() protocol.LocationLink {
	return protocol.LocationLink{
		TargetURI: "file:///b.bb",
		TargetRange: protocol.Range{
			Start: protocol.Position{Line: 3, Character: 0},
			End:   protocol.Position{Line: 4, Character: 0},
		},
		TargetSelectionRange: protocol.Range{
			Start: protocol.Position{Line: 3, Character: 0},
			End:   protocol.Position{Line: 3, Character: 4},
		},
	}
}

func TestAsKind(t *testing.T) {
	t.Run("link to location", func(t *testing.T) {
		entry := redirect.LinkEntry(sampleLink()).AsKind(redirect.EntryLocation)
		if entry.Kind != redirect.EntryLocation {
			t.Fatalf("expected a location entry, got %v", entry.Kind)
		}
		if entry.Location.URI != "file:///b.bb" || entry.Location.Range != sampleLink().TargetRange {
			t.Errorf("unexpected coercion result %+v", entry.Location)
		}
	})

	t.Run("location to link", func(t *testing.T) {
		entry := redirect.LocationEntry(sampleLocation()).AsKind(redirect.EntryLink)
		if entry.Kind != redirect.EntryLink {
			t.Fatalf("expected a link entry, got %v", entry.Kind)
		}
		link := entry.Link
		if link.TargetURI != "file:///a.bb" || link.TargetRange != sampleLocation().Range {
			t.Errorf("unexpected coercion result %+v", link)
		}
		if link.TargetSelectionRange != sampleLocation().Range {
			t.Errorf("expected the selection range to mirror the target range")
		}
	})

	t.Run("same kind is identity", func(t *testing.T) {
		entry := redirect.LocationEntry(sampleLocation())
		if entry.AsKind(redirect.EntryLocation) != entry {
			t.Error("expected identity coercion")
		}
	})
}

func TestCollapse(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := redirect.Collapse(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("all locations", func(t *testing.T) {
		got := redirect.Collapse([]redirect.Entry{
			redirect.LocationEntry(sampleLocation()),
			redirect.LocationEntry(sampleLocation()),
		})
		locations, ok := got.([]protocol.Location)
		if !ok {
			t.Fatalf("expected []protocol.Location, got %T", got)
		}
		if len(locations) != 2 {
			t.Errorf("expected two locations, got %d", len(locations))
		}
	})

	t.Run("all links", func(t *testing.T) {
		got := redirect.Collapse([]redirect.Entry{
			redirect.LinkEntry(sampleLink()),
		})
		links, ok := got.([]protocol.LocationLink)
		if !ok {
			t.Fatalf("expected []protocol.LocationLink, got %T", got)
		}
		if len(links) != 1 {
			t.Errorf("expected one link, got %d", len(links))
		}
	})

	t.Run("mixed coerces to locations", func(t *testing.T) {
		got := redirect.Collapse([]redirect.Entry{
			redirect.LinkEntry(sampleLink()),
			redirect.LocationEntry(sampleLocation()),
		})
		locations, ok := got.([]protocol.Location)
		if !ok {
			t.Fatalf("expected []protocol.Location for a mixed list, got %T", got)
		}
		if locations[0].URI != "file:///b.bb" {
			t.Errorf("expected the link's target first, got %v", locations[0])
		}
	})
}

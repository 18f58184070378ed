// Package redirect orchestrates completion and definition requests across
// the recipe-language provider and the embedded-language backends, mapping
// positions through the virtual-document translation layer.
package redirect

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// EntryKind discriminates the two definition result shapes the protocol
// allows. The discriminant is checked once at the boundary instead of type
// inspection scattered through the pipeline.
type EntryKind int

const (
	EntryLocation EntryKind = iota
	EntryLink
)

// Entry is a single definition result in either shape.
type Entry struct {
	Kind     EntryKind
	Location protocol.Location
	Link     protocol.LocationLink
}

func LocationEntry(loc protocol.Location) Entry {
	return Entry{Kind: EntryLocation, Location: loc}
}

func LinkEntry(link protocol.LocationLink) Entry {
	return Entry{Kind: EntryLink, Link: link}
}

// TargetURI returns the document the entry points into.
func (e Entry) TargetURI() protocol.DocumentUri {
	if e.Kind == EntryLink {
		return e.Link.TargetURI
	}
	return e.Location.URI
}

// TargetRange returns the primary target range of the entry.
func (e Entry) TargetRange() protocol.Range {
	if e.Kind == EntryLink {
		return e.Link.TargetRange
	}
	return e.Location.Range
}

// AsKind coerces the entry into the requested shape, so a spliced
// replacement always matches the shape of the entry it replaces.
func (e Entry) AsKind(kind EntryKind) Entry {
	if e.Kind == kind {
		return e
	}
	if kind == EntryLocation {
		return LocationEntry(protocol.Location{
			URI:   e.Link.TargetURI,
			Range: e.Link.TargetRange,
		})
	}
	return LinkEntry(protocol.LocationLink{
		TargetURI:            e.Location.URI,
		TargetRange:          e.Location.Range,
		TargetSelectionRange: e.Location.Range,
	})
}

// Collapse flattens entries into the wire value of a definition response:
// nil, a []protocol.Location or a []protocol.LocationLink. A mixed list is
// coerced to plain locations so the client never receives incompatible
// shapes in one array.
func Collapse(entries []Entry) any {
	if len(entries) == 0 {
		return nil
	}

	kind := entries[0].Kind
	mixed := false
	for _, e := range entries[1:] {
		if e.Kind != kind {
			mixed = true
			break
		}
	}

	if mixed || kind == EntryLocation {
		locations := make([]protocol.Location, len(entries))
		for i, e := range entries {
			locations[i] = e.AsKind(EntryLocation).Location
		}
		return locations
	}

	links := make([]protocol.LocationLink, len(entries))
	for i, e := range entries {
		links[i] = e.Link
	}
	return links
}

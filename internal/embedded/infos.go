package embedded

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// NoMapping marks a virtual character with no counterpart in the host
// document, such as the synthetic python preamble.
const NoMapping = -1

// DocInfos describes one materialized virtual document.
//
// CharacterIndexes is the offset-correspondence table: entry i holds the
// host-document character offset of character i of Content, or NoMapping.
// Defined entries are strictly non-decreasing and the table length equals
// the character length of Content.
type DocInfos struct {
	VirtualURI       protocol.DocumentUri
	Language         Kind
	Content          string
	CharacterIndexes []int
	Version          int32
}

// PythonPreamble is prepended to every python virtual document so that the
// implicit datastore and event variables resolve to a declaration. All of
// its characters map to NoMapping.
const PythonPreamble = "import bb\n" +
	"from bb.data_smart import DataSmart\n" +
	"from bb.event import Event\n" +
	"d = DataSmart()\n" +
	"e = Event()\n"

// Package embedded maps positions and ranges between a BitBake recipe
// document and the virtual documents holding its embedded python or
// shell fragments.
package embedded

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Kind identifies the language of an embedded region.
type Kind int

const (
	KindNone Kind = iota
	KindPython
	KindShell
)

func (k Kind) String() string {
	switch k {
	case KindPython:
		return "python"
	case KindShell:
		return "shellscript"
	default:
		return "none"
	}
}

// Extension returns the file extension used for virtual documents of this kind.
func (k Kind) Extension() string {
	switch k {
	case KindPython:
		return ".py"
	case KindShell:
		return ".sh"
	default:
		return ""
	}
}

const virtualScheme = "bitbake-embedded://"

// VirtualURI derives the virtual document URI for a host document and kind.
// The derivation is deterministic so repeated rebuilds address the same document.
func VirtualURI(host protocol.DocumentUri, kind Kind) protocol.DocumentUri {
	path := strings.TrimPrefix(string(host), "file://")
	return protocol.DocumentUri(virtualScheme + path + kind.Extension())
}

// IsVirtualURI reports whether uri addresses a virtual embedded document.
func IsVirtualURI(uri protocol.DocumentUri) bool {
	return strings.HasPrefix(string(uri), virtualScheme)
}

// Package resolver converts between LSP document URIs and filesystem paths.
package resolver

import (
	"net/url"
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// URIToPath converts a file URI to a filesystem path.
func URIToPath(uri protocol.DocumentUri) string {
	parsed, err := url.Parse(string(uri))
	if err != nil || parsed.Scheme != "file" {
		return strings.TrimPrefix(string(uri), "file://")
	}
	return filepath.FromSlash(parsed.Path)
}

// PathToURI converts a filesystem path to a file URI.
func PathToURI(path string) protocol.DocumentUri {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(filepath.Clean(path)),
	}
	return protocol.DocumentUri(u.String())
}

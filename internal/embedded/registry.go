package embedded

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Source supplies the current text and version of open host documents.
type Source interface {
	Lookup(uri protocol.DocumentUri) (text string, version int32, ok bool)
}

// Extractor rebuilds the embedded content of one kind from host text.
// ok is false when the text holds no region of that kind.
type Extractor interface {
	Extract(text string, kind Kind) (content string, indexes []int, ok bool)
}

type entryKey struct {
	uri  protocol.DocumentUri
	kind Kind
}

// Registry caches one DocInfos per (host document, embedded kind). Entries
// are replaced wholesale, never mutated in place. Concurrent misses may race
// to rebuild; extraction is deterministic so last write wins.
type Registry struct {
	mu        sync.RWMutex
	source    Source
	extractor Extractor
	entries   map[entryKey]*DocInfos
}

func NewRegistry(source Source, extractor Extractor) *Registry {
	return &Registry{
		source:    source,
		extractor: extractor,
		entries:   make(map[entryKey]*DocInfos),
	}
}

// Get returns the cached entry without side effects.
func (r *Registry) Get(uri protocol.DocumentUri, kind Kind) (*DocInfos, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos, ok := r.entries[entryKey{uri, kind}]
	return infos, ok
}

// Ensure returns a current entry, rebuilding it from the host text when the
// entry is absent or its version stamp no longer matches the document.
// Returns false when the document is unknown or holds no region of kind.
func (r *Registry) Ensure(uri protocol.DocumentUri, kind Kind) (*DocInfos, bool) {
	text, version, ok := r.source.Lookup(uri)
	if !ok {
		return nil, false
	}

	if infos, ok := r.Get(uri, kind); ok && infos.Version == version {
		return infos, true
	}

	content, indexes, ok := r.extractor.Extract(text, kind)

	r.mu.Lock()
	defer r.mu.Unlock()
	key := entryKey{uri, kind}
	if !ok {
		delete(r.entries, key)
		return nil, false
	}
	infos := &DocInfos{
		VirtualURI:       VirtualURI(uri, kind),
		Language:         kind,
		Content:          content,
		CharacterIndexes: indexes,
		Version:          version,
	}
	r.entries[key] = infos
	return infos, true
}

// Invalidate drops all entries for a host document. The next Ensure call
// rebuilds from scratch; no incremental table update is attempted.
func (r *Registry) Invalidate(uri protocol.DocumentUri) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if key.uri == uri {
			delete(r.entries, key)
		}
	}
}

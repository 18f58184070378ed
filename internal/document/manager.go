// Package document tracks the text and version of documents the client has
// open. The server core only ever reads host documents, it never writes
// them back.
package document

import (
	"fmt"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager keeps open-document state per URI.
type Manager struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentUri]*document
}

type document struct {
	text    string
	version int32
}

func NewManager() *Manager {
	return &Manager{docs: make(map[protocol.DocumentUri]*document)}
}

// Open registers a document with its full initial text.
func (m *Manager) Open(uri protocol.DocumentUri, text string, version int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[uri] = &document{text: text, version: version}
}

// Lookup returns the current text and version of an open document.
func (m *Manager) Lookup(uri protocol.DocumentUri) (string, int32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[uri]
	if !ok {
		return "", 0, false
	}
	return doc.text, doc.version, true
}

// ApplyChange applies one LSP content change, full or incremental, and bumps
// the stored version.
func (m *Manager) ApplyChange(uri protocol.DocumentUri, change any, version int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[uri]
	if !ok {
		return fmt.Errorf("document not open: %s", uri)
	}

	switch event := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		doc.text = event.Text
	case protocol.TextDocumentContentChangeEvent:
		if event.Range == nil {
			doc.text = event.Text
		} else {
			doc.text = applyEdit(doc.text, *event.Range, event.Text)
		}
	default:
		return fmt.Errorf("unexpected change event type %T", change)
	}
	doc.version = version
	return nil
}

// Close forgets a document.
func (m *Manager) Close(uri protocol.DocumentUri) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, uri)
}

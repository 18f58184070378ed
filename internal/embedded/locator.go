package embedded

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Classifier reports the embedded-language kind at a position, judged
// against the latest committed scan of the document.
type Classifier interface {
	ClassifyPosition(uri protocol.DocumentUri, pos protocol.Position) Kind
}

// Locator decides whether a cursor position falls inside an embedded region.
// Requests racing a re-scan may see a stale classification for one keystroke
// interval; the registry's version stamp keeps the translation tables honest.
type Locator struct {
	classifier Classifier
}

func NewLocator(classifier Classifier) *Locator {
	return &Locator{classifier: classifier}
}

// KindAt returns the embedded kind at pos, or KindNone for plain recipe text.
func (l *Locator) KindAt(uri protocol.DocumentUri, pos protocol.Position) Kind {
	return l.classifier.ClassifyPosition(uri, pos)
}

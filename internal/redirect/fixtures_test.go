package redirect_test

import (
	"context"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	"github.com/ScorpionBytes/vscode-bitbake/internal/redirect"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// The shared fixture: the host's second and third lines ("x = 1\nx\n",
// host offsets 5..12) form the python region, prefixed by the preamble in
// the virtual document. The preamble is five lines, so mapped content
// starts on virtual line 5.
const (
	hostURI  = protocol.DocumentUri("file:///work/foo.bb")
	hostText = "HOST\nx = 1\nx\n"
)

// regionPos is a host position inside the embedded region.
var regionPos = protocol.Position{Line: 1, Character: 0}

type fakeClassifier struct {
	kind embedded.Kind
}

func (f *fakeClassifier) ClassifyPosition(uri protocol.DocumentUri, pos protocol.Position) embedded.Kind {
	return f.kind
}

type fakeSource struct {
	texts map[protocol.DocumentUri]string
}

func (f *fakeSource) Lookup(uri protocol.DocumentUri) (string, int32, bool) {
	text, ok := f.texts[uri]
	return text, 1, ok
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(text string, kind embedded.Kind) (string, []int, bool) {
	if kind != embedded.KindPython {
		return "", nil, false
	}
	content := embedded.PythonPreamble + "x = 1\nx\n"
	var indexes []int
	for range embedded.PythonPreamble {
		indexes = append(indexes, embedded.NoMapping)
	}
	for i := 0; i < 8; i++ {
		indexes = append(indexes, 5+i)
	}
	return content, indexes, true
}

// pythonFixture assembles a locator/registry pair over the shared fixture.
func pythonFixture() (*embedded.Locator, *embedded.Registry, *fakeSource) {
	source := &fakeSource{texts: map[protocol.DocumentUri]string{hostURI: hostText}}
	registry := embedded.NewRegistry(source, fakeExtractor{})
	locator := embedded.NewLocator(&fakeClassifier{kind: embedded.KindPython})
	return locator, registry, source
}

type fakeHostCompletion struct {
	items []protocol.CompletionItem
	err   error
	calls int
}

func (f *fakeHostCompletion) Completion(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position, trigger *string) ([]protocol.CompletionItem, error) {
	f.calls++
	return f.items, f.err
}

type fakeEmbeddedCompletion struct {
	items []protocol.CompletionItem
	err   error
	calls int
}

func (f *fakeEmbeddedCompletion) Completion(ctx context.Context, doc *embedded.DocInfos, pos protocol.Position, trigger *string) ([]protocol.CompletionItem, error) {
	f.calls++
	return f.items, f.err
}

type fakeHostDefinition struct {
	entries []redirect.Entry
	err     error
	calls   int
}

func (f *fakeHostDefinition) Definition(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position) ([]redirect.Entry, error) {
	f.calls++
	return f.entries, f.err
}

// fakeEmbeddedDefinition replays one canned response per call, recording
// the positions it was queried at.
type fakeEmbeddedDefinition struct {
	responses [][]redirect.Entry
	positions []protocol.Position
	err       error
}

func (f *fakeEmbeddedDefinition) Definition(ctx context.Context, doc *embedded.DocInfos, pos protocol.Position) ([]redirect.Entry, error) {
	f.positions = append(f.positions, pos)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, nil
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next, nil
}

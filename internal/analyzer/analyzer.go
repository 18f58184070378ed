// Package analyzer keeps a line-oriented scan of BitBake recipe documents:
// embedded python/shell regions, variable and function declarations,
// inherit/require/include directives and string-literal spans. It does not
// parse the recipe grammar, it only indexes what the language services need.
package analyzer

import (
	"sync"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SymbolKind distinguishes the two declaration forms a recipe can hold.
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolFunction
)

// Symbol is a declaration found in a recipe document.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Range protocol.Range
}

// DirectiveKind enumerates the file-pulling directives.
type DirectiveKind int

const (
	DirectiveInherit DirectiveKind = iota
	DirectiveRequire
	DirectiveInclude
)

// Directive is an inherit/require/include statement with the range of its
// argument.
type Directive struct {
	Kind     DirectiveKind
	Argument string
	ArgRange protocol.Range
}

// Analyzer holds the latest committed scan per document. Queries always run
// against the committed state; a request racing a re-scan may see the
// previous scan for one keystroke interval.
type Analyzer struct {
	mu    sync.RWMutex
	scans map[protocol.DocumentUri]*Scan
}

func New() *Analyzer {
	return &Analyzer{scans: make(map[protocol.DocumentUri]*Scan)}
}

// Rescan replaces the committed scan for a document.
func (a *Analyzer) Rescan(uri protocol.DocumentUri, text string) {
	scan := newScan(text)
	a.mu.Lock()
	a.scans[uri] = scan
	a.mu.Unlock()
}

// Has reports whether a committed scan exists for the document.
func (a *Analyzer) Has(uri protocol.DocumentUri) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.scans[uri]
	return ok
}

// Forget drops the scan of a closed document.
func (a *Analyzer) Forget(uri protocol.DocumentUri) {
	a.mu.Lock()
	delete(a.scans, uri)
	a.mu.Unlock()
}

func (a *Analyzer) scan(uri protocol.DocumentUri) (*Scan, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.scans[uri]
	return s, ok
}

// ClassifyPosition implements embedded.Classifier.
func (a *Analyzer) ClassifyPosition(uri protocol.DocumentUri, pos protocol.Position) embedded.Kind {
	s, ok := a.scan(uri)
	if !ok {
		return embedded.KindNone
	}
	off := embedded.OffsetAt(s.text, pos)
	for _, reg := range s.regions {
		if off >= reg.Start && off <= reg.End {
			return reg.Kind
		}
	}
	return embedded.KindNone
}

// Extract implements embedded.Extractor. It re-scans the given text, so the
// registry always rebuilds against the document it was handed.
func (a *Analyzer) Extract(text string, kind embedded.Kind) (string, []int, bool) {
	return newScan(text).extract(kind)
}

// WordAt returns the identifier-like word covering pos.
func (a *Analyzer) WordAt(uri protocol.DocumentUri, pos protocol.Position) (string, protocol.Range, bool) {
	s, ok := a.scan(uri)
	if !ok {
		return "", protocol.Range{}, false
	}
	return s.wordAt(pos)
}

// GlobalDeclarations lists every variable and function declared in the document.
func (a *Analyzer) GlobalDeclarations(uri protocol.DocumentUri) []Symbol {
	s, ok := a.scan(uri)
	if !ok {
		return nil
	}
	return s.symbols
}

// Declarations returns the declarations of name in the document, in order.
func (a *Analyzer) Declarations(uri protocol.DocumentUri, name string) []Symbol {
	s, ok := a.scan(uri)
	if !ok {
		return nil
	}
	var out []Symbol
	for _, sym := range s.symbols {
		if sym.Name == name {
			out = append(out, sym)
		}
	}
	return out
}

// DirectiveAt returns the directive whose argument covers pos.
func (a *Analyzer) DirectiveAt(uri protocol.DocumentUri, pos protocol.Position) (Directive, bool) {
	s, ok := a.scan(uri)
	if !ok {
		return Directive{}, false
	}
	for _, d := range s.directives {
		if containsPosition(d.ArgRange, pos) {
			return d, true
		}
	}
	return Directive{}, false
}

// IncludePaths lists the arguments of require/include directives.
func (a *Analyzer) IncludePaths(uri protocol.DocumentUri) []string {
	s, ok := a.scan(uri)
	if !ok {
		return nil
	}
	var out []string
	for _, d := range s.directives {
		if d.Kind == DirectiveRequire || d.Kind == DirectiveInclude {
			out = append(out, d.Argument)
		}
	}
	return out
}

// InsideStringLiteral reports whether pos falls inside a quoted value.
func (a *Analyzer) InsideStringLiteral(uri protocol.DocumentUri, pos protocol.Position) bool {
	s, ok := a.scan(uri)
	if !ok {
		return false
	}
	off := embedded.OffsetAt(s.text, pos)
	for _, sp := range s.strings {
		if off > sp.start && off < sp.end {
			return true
		}
	}
	return false
}

// ExpansionAt returns the name and range of a ${VAR} expansion covering pos.
func (a *Analyzer) ExpansionAt(uri protocol.DocumentUri, pos protocol.Position) (string, protocol.Range, bool) {
	s, ok := a.scan(uri)
	if !ok {
		return "", protocol.Range{}, false
	}
	off := embedded.OffsetAt(s.text, pos)
	for _, exp := range s.expansions {
		if off >= exp.span.start && off <= exp.span.end {
			rng := protocol.Range{
				Start: embedded.PositionAt(s.text, exp.span.start),
				End:   embedded.PositionAt(s.text, exp.span.end),
			}
			return exp.name, rng, true
		}
	}
	return "", protocol.Range{}, false
}

func containsPosition(rng protocol.Range, pos protocol.Position) bool {
	if pos.Line < rng.Start.Line || pos.Line > rng.End.Line {
		return false
	}
	if pos.Line == rng.Start.Line && pos.Character < rng.Start.Character {
		return false
	}
	if pos.Line == rng.End.Line && pos.Character > rng.End.Character {
		return false
	}
	return true
}

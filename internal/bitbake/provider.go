// Package bitbake is the recipe-language service: completion and definition
// for variables, functions and directives in BitBake documents.
package bitbake

import (
	"context"
	"os"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ScorpionBytes/vscode-bitbake/internal/analyzer"
	"github.com/ScorpionBytes/vscode-bitbake/internal/redirect"
	"github.com/ScorpionBytes/vscode-bitbake/internal/resolver"
	"github.com/ScorpionBytes/vscode-bitbake/internal/store"
)

// Index resolves directive arguments against the project file index.
type Index interface {
	Lookup(name string, kind store.FileKind) (store.File, bool, error)
	ByKind(kind store.FileKind) ([]store.File, error)
}

var keywords = []string{
	"addhandler", "addtask", "deltask", "export", "fakeroot",
	"include", "inherit", "python", "require", "unset",
	"EXPORT_FUNCTIONS", "INHERIT",
}

// Provider serves the host side of completion and definition requests.
type Provider struct {
	analyzer *analyzer.Analyzer
	index    Index
}

func NewProvider(a *analyzer.Analyzer, index Index) *Provider {
	return &Provider{analyzer: a, index: index}
}

// Completion implements redirect.CompletionProvider.
func (p *Provider) Completion(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position, trigger *string) ([]protocol.CompletionItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if directive, ok := p.analyzer.DirectiveAt(uri, pos); ok {
		return p.directiveCompletion(directive)
	}

	var items []protocol.CompletionItem
	seen := make(map[string]struct{})

	// Inside a quoted value only ${VAR} expansions make sense, so offer
	// variables and nothing else.
	inString := p.analyzer.InsideStringLiteral(uri, pos)

	if !inString {
		keywordKind := protocol.CompletionItemKindKeyword
		for _, kw := range keywords {
			seen[kw] = struct{}{}
			items = append(items, protocol.CompletionItem{Label: kw, Kind: &keywordKind})
		}
	}

	for _, sym := range p.analyzer.GlobalDeclarations(uri) {
		if _, dup := seen[sym.Name]; dup {
			continue
		}
		if inString && sym.Kind != analyzer.SymbolVariable {
			continue
		}
		seen[sym.Name] = struct{}{}
		kind := protocol.CompletionItemKindVariable
		if sym.Kind == analyzer.SymbolFunction {
			kind = protocol.CompletionItemKindFunction
		}
		k := kind
		items = append(items, protocol.CompletionItem{Label: sym.Name, Kind: &k})
	}
	return items, nil
}

func (p *Provider) directiveCompletion(directive analyzer.Directive) ([]protocol.CompletionItem, error) {
	var kinds []store.FileKind
	var itemKind protocol.CompletionItemKind
	switch directive.Kind {
	case analyzer.DirectiveInherit:
		kinds = []store.FileKind{store.FileClass}
		itemKind = protocol.CompletionItemKindClass
	default:
		kinds = []store.FileKind{store.FileInclude, store.FileConf}
		itemKind = protocol.CompletionItemKindFile
	}

	var items []protocol.CompletionItem
	for _, kind := range kinds {
		files, err := p.index.ByKind(kind)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			k := itemKind
			detail := f.Path
			items = append(items, protocol.CompletionItem{
				Label:  f.Name,
				Kind:   &k,
				Detail: &detail,
			})
		}
	}
	return items, nil
}

// Definition implements redirect.DefinitionProvider.
func (p *Provider) Definition(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position) ([]redirect.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if directive, ok := p.analyzer.DirectiveAt(uri, pos); ok {
		return p.directiveDefinition(directive)
	}

	name := ""
	if expName, _, ok := p.analyzer.ExpansionAt(uri, pos); ok {
		name = expName
	} else if word, _, ok := p.analyzer.WordAt(uri, pos); ok {
		name = word
	}
	if name == "" {
		return nil, nil
	}

	var entries []redirect.Entry
	for _, sym := range p.analyzer.Declarations(uri, name) {
		entries = append(entries, redirect.LocationEntry(protocol.Location{
			URI:   uri,
			Range: sym.Range,
		}))
	}
	if len(entries) > 0 {
		return entries, nil
	}

	// The symbol may be declared in an included file.
	return p.includeDefinitions(uri, name), nil
}

func (p *Provider) directiveDefinition(directive analyzer.Directive) ([]redirect.Entry, error) {
	var kinds []store.FileKind
	if directive.Kind == analyzer.DirectiveInherit {
		kinds = []store.FileKind{store.FileClass}
	} else {
		kinds = []store.FileKind{store.FileInclude, store.FileConf, store.FileRecipe}
	}

	for _, kind := range kinds {
		f, ok, err := p.index.Lookup(directive.Argument, kind)
		if err != nil {
			return nil, err
		}
		if ok {
			return []redirect.Entry{redirect.LocationEntry(protocol.Location{
				URI:   resolver.PathToURI(f.Path),
				Range: protocol.Range{},
			})}, nil
		}
	}
	return nil, nil
}

// includeDefinitions looks for declarations of name in the files pulled in
// by require/include directives, scanning them on first use.
func (p *Provider) includeDefinitions(uri protocol.DocumentUri, name string) []redirect.Entry {
	var entries []redirect.Entry
	for _, includePath := range p.analyzer.IncludePaths(uri) {
		f, ok, err := p.index.Lookup(includePath, store.FileInclude)
		if err != nil || !ok {
			continue
		}
		includeURI := resolver.PathToURI(f.Path)
		if !p.analyzer.Has(includeURI) {
			text, err := os.ReadFile(f.Path)
			if err != nil {
				continue
			}
			p.analyzer.Rescan(includeURI, string(text))
		}
		for _, sym := range p.analyzer.Declarations(includeURI, name) {
			entries = append(entries, redirect.LocationEntry(protocol.Location{
				URI:   includeURI,
				Range: sym.Range,
			}))
		}
	}
	return entries
}

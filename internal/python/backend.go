// Package python answers completion and definition requests against the
// virtual python documents extracted from recipe files, using the bundled
// tree-sitter grammar. No external python language server is involved.
package python

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	"github.com/ScorpionBytes/vscode-bitbake/internal/redirect"
)

var lang = python.GetLanguage()

// bindingQuery captures every site that binds a name: function definitions,
// parameters, assignment targets and imported names.
const bindingQuery = `
(function_definition name: (identifier) @binding)
(parameters (identifier) @binding)
(assignment left: (identifier) @binding)
(import_from_statement name: (dotted_name (identifier) @binding))
`

const functionQuery = `(function_definition name: (identifier) @name)`

const identifierQuery = `(identifier) @name`

var keywords = []string{
	"and", "as", "assert", "break", "class", "continue", "def", "del",
	"elif", "else", "except", "finally", "for", "from", "global", "if",
	"import", "in", "is", "lambda", "not", "or", "pass", "raise",
	"return", "try", "while", "with", "yield", "None", "True", "False",
}

// Backend holds a pool of tree-sitter parsers. Virtual documents are parsed
// from scratch on every request; they are small.
type Backend struct {
	pool chan *sitter.Parser
}

func NewBackend(size int) *Backend {
	b := &Backend{pool: make(chan *sitter.Parser, size)}
	for i := 0; i < size; i++ {
		p := sitter.NewParser()
		p.SetLanguage(lang)
		b.pool <- p
	}
	return b
}

func (b *Backend) Close() error {
	close(b.pool)
	for p := range b.pool {
		p.Close()
	}
	return nil
}

func (b *Backend) parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	p := <-b.pool
	defer func() { b.pool <- p }()
	return p.ParseCtx(ctx, nil, source)
}

// Completion implements redirect.EmbeddedCompletionProvider.
func (b *Backend) Completion(ctx context.Context, doc *embedded.DocInfos, pos protocol.Position, trigger *string) ([]protocol.CompletionItem, error) {
	source := []byte(doc.Content)
	tree, err := b.parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse virtual document: %w", err)
	}
	defer tree.Close()

	functions := make(map[string]struct{})
	for _, node := range queryNodes(tree.RootNode(), functionQuery, source) {
		functions[node.Content(source)] = struct{}{}
	}

	replace := wordRangeAt(doc.Content, pos)

	var items []protocol.CompletionItem
	seen := make(map[string]struct{})
	for _, node := range queryNodes(tree.RootNode(), identifierQuery, source) {
		name := node.Content(source)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		kind := protocol.CompletionItemKindVariable
		if _, ok := functions[name]; ok {
			kind = protocol.CompletionItemKindFunction
		}
		k := kind
		items = append(items, protocol.CompletionItem{
			Label:    name,
			Kind:     &k,
			TextEdit: protocol.TextEdit{Range: replace, NewText: name},
		})
	}

	keywordKind := protocol.CompletionItemKindKeyword
	for _, kw := range keywords {
		if _, dup := seen[kw]; dup {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label: kw,
			Kind:  &keywordKind,
		})
	}
	return items, nil
}

// Definition implements redirect.EmbeddedDefinitionProvider. It resolves
// the identifier under the cursor to its binding sites in the virtual
// document, reported as location links.
func (b *Backend) Definition(ctx context.Context, doc *embedded.DocInfos, pos protocol.Position) ([]redirect.Entry, error) {
	source := []byte(doc.Content)
	tree, err := b.parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse virtual document: %w", err)
	}
	defer tree.Close()

	point := pointAt(doc.Content, pos)
	node := tree.RootNode().NamedDescendantForPointRange(point, point)
	if node == nil || node.Type() != "identifier" {
		return nil, nil
	}
	name := node.Content(source)
	origin := nodeRange(doc.Content, node)

	var entries []redirect.Entry
	for _, binding := range queryNodes(tree.RootNode(), bindingQuery, source) {
		if binding.Content(source) != name {
			continue
		}
		rng := nodeRange(doc.Content, binding)
		originCopy := origin
		entries = append(entries, redirect.LinkEntry(protocol.LocationLink{
			OriginSelectionRange: &originCopy,
			TargetURI:            doc.VirtualURI,
			TargetRange:          rng,
			TargetSelectionRange: rng,
		}))
	}
	return entries, nil
}

// queryNodes runs a tree-sitter query and returns the captured nodes.
func queryNodes(root *sitter.Node, query string, source []byte) []*sitter.Node {
	q, err := sitter.NewQuery([]byte(query), lang)
	if err != nil {
		return nil
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, root)

	var nodes []*sitter.Node
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, source)
		for _, c := range m.Captures {
			nodes = append(nodes, c.Node)
		}
	}
	return nodes
}

// wordRangeAt returns the range of the identifier characters around pos,
// or an empty range at pos when the cursor is not on a word.
func wordRangeAt(text string, pos protocol.Position) protocol.Range {
	off := embedded.OffsetAt(text, pos)
	runes := []rune(text)
	start := off
	for start > 0 && isIdentRune(runes[start-1]) {
		start--
	}
	end := off
	for end < len(runes) && isIdentRune(runes[end]) {
		end++
	}
	return protocol.Range{
		Start: embedded.PositionAt(text, start),
		End:   embedded.PositionAt(text, end),
	}
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// Package shell answers completion and definition requests against the
// virtual shell documents extracted from recipe task bodies.
package shell

import (
	"context"
	"regexp"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	"github.com/ScorpionBytes/vscode-bitbake/internal/redirect"
)

var funcDefRe = regexp.MustCompile(`(?m)^\s*([A-Za-z0-9_]+)\s*\(\s*\)\s*\{`)

var builtins = []string{
	"bbfatal", "bbwarn", "bbnote", "bbdebug", "bbplain",
	"cd", "cp", "chmod", "chown", "echo", "exit", "export", "find",
	"install", "ln", "mkdir", "mv", "rm", "sed", "set", "test", "touch",
}

// Backend resolves shell helper functions declared inside task bodies.
type Backend struct{}

func NewBackend() *Backend {
	return &Backend{}
}

// Completion implements redirect.EmbeddedCompletionProvider with shell
// builtins and helper functions declared in the virtual document.
func (b *Backend) Completion(ctx context.Context, doc *embedded.DocInfos, pos protocol.Position, trigger *string) ([]protocol.CompletionItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []protocol.CompletionItem
	seen := make(map[string]struct{})

	functionKind := protocol.CompletionItemKindFunction
	for _, m := range funcDefRe.FindAllStringSubmatch(doc.Content, -1) {
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		items = append(items, protocol.CompletionItem{Label: name, Kind: &functionKind})
	}

	builtinKind := protocol.CompletionItemKindKeyword
	for _, name := range builtins {
		if _, dup := seen[name]; dup {
			continue
		}
		items = append(items, protocol.CompletionItem{Label: name, Kind: &builtinKind})
	}
	return items, nil
}

// Definition implements redirect.EmbeddedDefinitionProvider: the word under
// the cursor resolves to matching function declarations.
func (b *Backend) Definition(ctx context.Context, doc *embedded.DocInfos, pos protocol.Position) ([]redirect.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := wordAt(doc.Content, pos)
	if name == "" {
		return nil, nil
	}

	var entries []redirect.Entry
	for _, m := range funcDefRe.FindAllStringSubmatchIndex(doc.Content, -1) {
		if doc.Content[m[2]:m[3]] != name {
			continue
		}
		rng := protocol.Range{
			Start: embedded.PositionAt(doc.Content, runeOffset(doc.Content, m[2])),
			End:   embedded.PositionAt(doc.Content, runeOffset(doc.Content, m[3])),
		}
		entries = append(entries, redirect.LocationEntry(protocol.Location{
			URI:   doc.VirtualURI,
			Range: rng,
		}))
	}
	return entries, nil
}

func wordAt(text string, pos protocol.Position) string {
	off := embedded.OffsetAt(text, pos)
	runes := []rune(text)
	start := off
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	end := off
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

func runeOffset(text string, byteOffset int) int {
	count := 0
	for i := range text {
		if i >= byteOffset {
			break
		}
		count++
	}
	return count
}

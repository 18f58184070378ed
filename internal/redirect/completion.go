package redirect

import (
	"context"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CompletionProvider serves completion for a host document position.
type CompletionProvider interface {
	Completion(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position, trigger *string) ([]protocol.CompletionItem, error)
}

// EmbeddedCompletionProvider serves completion inside a virtual document.
type EmbeddedCompletionProvider interface {
	Completion(ctx context.Context, doc *embedded.DocInfos, pos protocol.Position, trigger *string) ([]protocol.CompletionItem, error)
}

// Completion merges recipe-language completion with embedded-language
// completion at positions inside embedded regions.
type Completion struct {
	host     CompletionProvider
	locator  *embedded.Locator
	registry *embedded.Registry
	source   embedded.Source
	backends map[embedded.Kind]EmbeddedCompletionProvider
}

func NewCompletion(
	host CompletionProvider,
	locator *embedded.Locator,
	registry *embedded.Registry,
	source embedded.Source,
	backends map[embedded.Kind]EmbeddedCompletionProvider,
) *Completion {
	return &Completion{
		host:     host,
		locator:  locator,
		registry: registry,
		source:   source,
		backends: backends,
	}
}

// Request runs the host provider, then enriches the result with embedded
// completion when the cursor sits inside an embedded region. Embedded
// failures degrade to the host result, never to a request failure.
func (c *Completion) Request(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position, trigger *string) ([]protocol.CompletionItem, error) {
	hostItems, err := c.host.Completion(ctx, uri, pos, trigger)
	if err != nil {
		return nil, err
	}

	kind := c.locator.KindAt(uri, pos)
	if kind == embedded.KindNone {
		return hostItems, nil
	}
	backend, ok := c.backends[kind]
	if !ok {
		return hostItems, nil
	}
	info, ok := c.registry.Ensure(uri, kind)
	if !ok {
		return hostItems, nil
	}
	hostText, _, ok := c.source.Lookup(uri)
	if !ok {
		return hostItems, nil
	}
	vpos, ok := embedded.ToEmbedded(hostText, info.Content, info.CharacterIndexes, pos)
	if !ok {
		return hostItems, nil
	}

	embeddedItems, err := backend.Completion(ctx, info, vpos, trigger)
	if err != nil {
		return hostItems, nil
	}
	for i := range embeddedItems {
		rewriteTextEdit(&embeddedItems[i], hostText, info)
	}
	return merge(hostItems, embeddedItems), nil
}

// rewriteTextEdit translates an item's replacement range back into host
// coordinates. A range that cannot be mapped is dropped from the item so the
// client falls back to its default insert behavior; a stale virtual-space
// range must never leak out.
func rewriteTextEdit(item *protocol.CompletionItem, hostText string, info *embedded.DocInfos) {
	toHost := func(rng protocol.Range) (protocol.Range, bool) {
		return embedded.ToHost(hostText, info.Content, info.CharacterIndexes, rng)
	}

	switch edit := item.TextEdit.(type) {
	case protocol.TextEdit:
		if rng, ok := toHost(edit.Range); ok {
			edit.Range = rng
			item.TextEdit = edit
		} else {
			item.TextEdit = nil
		}
	case *protocol.TextEdit:
		if rng, ok := toHost(edit.Range); ok {
			item.TextEdit = protocol.TextEdit{Range: rng, NewText: edit.NewText}
		} else {
			item.TextEdit = nil
		}
	case protocol.InsertReplaceEdit:
		insert, ok1 := toHost(edit.Insert)
		replace, ok2 := toHost(edit.Replace)
		if ok1 && ok2 {
			edit.Insert = insert
			edit.Replace = replace
			item.TextEdit = edit
		} else {
			item.TextEdit = nil
		}
	case *protocol.InsertReplaceEdit:
		insert, ok1 := toHost(edit.Insert)
		replace, ok2 := toHost(edit.Replace)
		if ok1 && ok2 {
			item.TextEdit = protocol.InsertReplaceEdit{NewText: edit.NewText, Insert: insert, Replace: replace}
		} else {
			item.TextEdit = nil
		}
	}
}

// merge joins the two item lists, de-duplicating by label. Host items are
// inserted first, so a host item wins a label tie with an embedded one.
func merge(hostItems, embeddedItems []protocol.CompletionItem) []protocol.CompletionItem {
	seen := make(map[string]struct{}, len(hostItems)+len(embeddedItems))
	merged := make([]protocol.CompletionItem, 0, len(hostItems)+len(embeddedItems))
	for _, items := range [][]protocol.CompletionItem{hostItems, embeddedItems} {
		for _, item := range items {
			if _, dup := seen[item.Label]; dup {
				continue
			}
			seen[item.Label] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}

package redirect

import (
	"context"
	"sync"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DefinitionProvider serves definition lookup for a host document position.
type DefinitionProvider interface {
	Definition(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position) ([]Entry, error)
}

// EmbeddedDefinitionProvider serves definition lookup inside a virtual document.
type EmbeddedDefinitionProvider interface {
	Definition(ctx context.Context, doc *embedded.DocInfos, pos protocol.Position) ([]Entry, error)
}

// Definition answers definition requests: the recipe-language provider is
// authoritative, the embedded-language backend is a fallback for positions
// inside embedded regions.
type Definition struct {
	host     DefinitionProvider
	locator  *embedded.Locator
	registry *embedded.Registry
	source   embedded.Source
	backends map[embedded.Kind]EmbeddedDefinitionProvider
	rules    []Rule
}

func NewDefinition(
	host DefinitionProvider,
	locator *embedded.Locator,
	registry *embedded.Registry,
	source embedded.Source,
	backends map[embedded.Kind]EmbeddedDefinitionProvider,
) *Definition {
	return &Definition{
		host:     host,
		locator:  locator,
		registry: registry,
		source:   source,
		backends: backends,
		rules:    pythonRules(),
	}
}

// Request resolves a definition. When the host provider yields anything the
// result is returned verbatim and the embedded backend is never consulted.
func (d *Definition) Request(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position) ([]Entry, error) {
	hostEntries, err := d.host.Definition(ctx, uri, pos)
	if err != nil {
		return nil, err
	}
	if len(hostEntries) > 0 {
		return hostEntries, nil
	}

	kind := d.locator.KindAt(uri, pos)
	if kind == embedded.KindNone {
		return nil, nil
	}
	backend, ok := d.backends[kind]
	if !ok {
		return nil, nil
	}
	info, ok := d.registry.Ensure(uri, kind)
	if !ok {
		return nil, nil
	}
	hostText, _, ok := d.source.Lookup(uri)
	if !ok {
		return nil, nil
	}
	vpos, ok := embedded.ToEmbedded(hostText, info.Content, info.CharacterIndexes, pos)
	if !ok {
		return nil, nil
	}

	entries, err := backend.Definition(ctx, info, vpos)
	if err != nil || len(entries) == 0 {
		// Backend failure or cancellation degrades to "no embedded contribution".
		return nil, nil
	}

	// Entries are resolved concurrently; the indexed slice keeps the
	// response in input order regardless of completion timing.
	results := make([][]Entry, len(entries))
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry Entry) {
			defer wg.Done()
			results[i] = d.resolveEntry(ctx, backend, info, uri, hostText, entry)
		}(i, entry)
	}
	wg.Wait()

	var out []Entry
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// resolveEntry applies the per-entry protocol: pass through entries that
// already point outside the virtual document, apply one redirection hop for
// the distinguished implicit identifiers, and otherwise rewrite the entry
// into host coordinates. Entries whose ranges cannot be mapped are dropped.
func (d *Definition) resolveEntry(
	ctx context.Context,
	backend EmbeddedDefinitionProvider,
	info *embedded.DocInfos,
	hostURI protocol.DocumentUri,
	hostText string,
	entry Entry,
) []Entry {
	if entry.TargetURI() != info.VirtualURI {
		return []Entry{entry}
	}

	if info.Language == embedded.KindPython {
		if rule, ok := matchRule(d.rules, entry.TargetRange()); ok {
			redirected, err := backend.Definition(ctx, info, rule.Redirect)
			if err != nil {
				return nil
			}
			out := make([]Entry, len(redirected))
			for i, r := range redirected {
				out[i] = r.AsKind(entry.Kind)
			}
			return out
		}
	}

	toHost := func(rng protocol.Range) (protocol.Range, bool) {
		return embedded.ToHost(hostText, info.Content, info.CharacterIndexes, rng)
	}

	switch entry.Kind {
	case EntryLink:
		target, ok := toHost(entry.Link.TargetRange)
		if !ok {
			return nil
		}
		selection, ok := toHost(entry.Link.TargetSelectionRange)
		if !ok {
			return nil
		}
		link := entry.Link
		link.TargetURI = hostURI
		link.TargetRange = target
		link.TargetSelectionRange = selection
		if link.OriginSelectionRange != nil {
			if origin, ok := toHost(*link.OriginSelectionRange); ok {
				link.OriginSelectionRange = &origin
			} else {
				link.OriginSelectionRange = nil
			}
		}
		return []Entry{LinkEntry(link)}
	default:
		rng, ok := toHost(entry.Location.Range)
		if !ok {
			return nil
		}
		return []Entry{LocationEntry(protocol.Location{URI: hostURI, Range: rng})}
	}
}

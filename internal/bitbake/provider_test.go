package bitbake_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ScorpionBytes/vscode-bitbake/internal/analyzer"
	"github.com/ScorpionBytes/vscode-bitbake/internal/bitbake"
	"github.com/ScorpionBytes/vscode-bitbake/internal/resolver"
	"github.com/ScorpionBytes/vscode-bitbake/internal/store"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const recipe = `SUMMARY = "Tiny tool"
LICENSE = "MIT"
PN:append = "-native"
inherit autotools
require common.inc

def compute(d):
    return d.getVar("PN")

python do_configure() {
    pn = d.getVar("PN")
    compute(d)
}

do_install() {
    install -d ${D}${bindir}
}

MSG = "hello ${PN}"
VAL = "${@compute(d)}"
`

const testURI = protocol.DocumentUri("file:///work/test.bb")

type fakeIndex struct {
	files []store.File
}

func (f *fakeIndex) Lookup(name string, kind store.FileKind) (store.File, bool, error) {
	for _, file := range f.files {
		if file.Name == name && file.Kind == kind {
			return file, true, nil
		}
	}
	return store.File{}, false, nil
}

func (f *fakeIndex) ByKind(kind store.FileKind) ([]store.File, error) {
	var out []store.File
	for _, file := range f.files {
		if file.Kind == kind {
			out = append(out, file)
		}
	}
	return out, nil
}

func newProvider(index *fakeIndex) (*bitbake.Provider, *analyzer.Analyzer) {
	a := analyzer.New()
	a.Rescan(testURI, recipe)
	return bitbake.NewProvider(a, index), a
}

func labels(items []protocol.CompletionItem) map[string]protocol.CompletionItem {
	out := make(map[string]protocol.CompletionItem, len(items))
	for _, item := range items {
		out[item.Label] = item
	}
	return out
}

func TestCompletionKeywordsAndDeclarations(t *testing.T) {
	p, _ := newProvider(&fakeIndex{})

	items, err := p.Completion(context.Background(), testURI, protocol.Position{Line: 5, Character: 0}, nil)
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	byLabel := labels(items)

	if _, ok := byLabel["inherit"]; !ok {
		t.Error("expected the inherit keyword")
	}
	if item, ok := byLabel["do_install"]; !ok {
		t.Error("expected the declared shell task")
	} else if item.Kind == nil || *item.Kind != protocol.CompletionItemKindFunction {
		t.Errorf("do_install offered with kind %v", item.Kind)
	}
	if item, ok := byLabel["SUMMARY"]; !ok {
		t.Error("expected the declared variable")
	} else if item.Kind == nil || *item.Kind != protocol.CompletionItemKindVariable {
		t.Errorf("SUMMARY offered with kind %v", item.Kind)
	}
}

// TestCompletionInsideString: quoted values only take ${VAR} expansions, so
// keywords and functions are withheld.
func TestCompletionInsideString(t *testing.T) {
	p, _ := newProvider(&fakeIndex{})

	items, err := p.Completion(context.Background(), testURI, protocol.Position{Line: 0, Character: 12}, nil)
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	byLabel := labels(items)

	if _, ok := byLabel["inherit"]; ok {
		t.Error("keyword offered inside a string literal")
	}
	if _, ok := byLabel["do_install"]; ok {
		t.Error("function offered inside a string literal")
	}
	if _, ok := byLabel["LICENSE"]; !ok {
		t.Error("expected variables inside a string literal")
	}
}

func TestCompletionDirectiveArgument(t *testing.T) {
	index := &fakeIndex{files: []store.File{
		{Name: "autotools", Kind: store.FileClass, Path: "/meta/classes/autotools.bbclass"},
		{Name: "cmake", Kind: store.FileClass, Path: "/meta/classes/cmake.bbclass"},
		{Name: "site.conf", Kind: store.FileConf, Path: "/conf/site.conf"},
	}}
	p, _ := newProvider(index)

	items, err := p.Completion(context.Background(), testURI, protocol.Position{Line: 3, Character: 10}, nil)
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	byLabel := labels(items)

	if len(items) != 2 {
		t.Fatalf("expected only the two classes, got %d: %v", len(items), items)
	}
	item, ok := byLabel["cmake"]
	if !ok {
		t.Fatal("expected cmake in the inherit completion")
	}
	if item.Kind == nil || *item.Kind != protocol.CompletionItemKindClass {
		t.Errorf("class offered with kind %v", item.Kind)
	}
	if item.Detail == nil || *item.Detail != "/meta/classes/cmake.bbclass" {
		t.Errorf("expected the path as detail, got %v", item.Detail)
	}
}

func TestDefinitionDirective(t *testing.T) {
	index := &fakeIndex{files: []store.File{
		{Name: "autotools", Kind: store.FileClass, Path: "/meta/classes/autotools.bbclass"},
	}}
	p, _ := newProvider(index)

	entries, err := p.Definition(context.Background(), testURI, protocol.Position{Line: 3, Character: 10})
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	expect := resolver.PathToURI("/meta/classes/autotools.bbclass")
	if entries[0].Location.URI != expect {
		t.Errorf("entry points at %s, expected %s", entries[0].Location.URI, expect)
	}

	// Unresolvable directive argument yields nothing.
	empty, err := p.Definition(context.Background(), testURI, protocol.Position{Line: 4, Character: 10})
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no entries for an unindexed include, got %v", empty)
	}
}

func TestDefinitionDeclaration(t *testing.T) {
	p, _ := newProvider(&fakeIndex{})

	entries, err := p.Definition(context.Background(), testURI, protocol.Position{Line: 18, Character: 1})
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry for MSG, got %d", len(entries))
	}
	if entries[0].Location.URI != testURI || entries[0].Location.Range.Start.Line != 18 {
		t.Errorf("unexpected entry %+v", entries[0].Location)
	}
}

// TestDefinitionThroughInclude: a variable declared only in a required file
// resolves there, with the include scanned on first use.
func TestDefinitionThroughInclude(t *testing.T) {
	incPath := filepath.Join(t.TempDir(), "common.inc")
	if err := os.WriteFile(incPath, []byte("PN = \"busybox\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	index := &fakeIndex{files: []store.File{
		{Name: "common.inc", Kind: store.FileInclude, Path: incPath},
	}}
	p, _ := newProvider(index)

	// Cursor on the ${PN} expansion; PN is not declared in the recipe.
	entries, err := p.Definition(context.Background(), testURI, protocol.Position{Line: 18, Character: 15})
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry from the include, got %d", len(entries))
	}
	if entries[0].Location.URI != resolver.PathToURI(incPath) {
		t.Errorf("entry points at %s, expected the include file", entries[0].Location.URI)
	}
	if entries[0].Location.Range.Start.Line != 0 {
		t.Errorf("PN declared on line %d of the include, expected 0", entries[0].Location.Range.Start.Line)
	}
}

func TestDefinitionNoSymbol(t *testing.T) {
	p, _ := newProvider(&fakeIndex{})

	entries, err := p.Definition(context.Background(), testURI, protocol.Position{Line: 5, Character: 0})
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries on a blank line, got %v", entries)
	}
}

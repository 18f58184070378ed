package server

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ScorpionBytes/vscode-bitbake/internal/bitbake"
	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	"github.com/ScorpionBytes/vscode-bitbake/internal/redirect"
	"github.com/ScorpionBytes/vscode-bitbake/internal/resolver"
	"github.com/ScorpionBytes/vscode-bitbake/internal/scanner"
	"github.com/ScorpionBytes/vscode-bitbake/internal/store"
)

const defaultRescanMinutes = 5

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	root := rootFromParams(params)
	log.Printf("Root is %s", root)

	// Load config
	var config Config
	configJson, err := json.Marshal(params.InitializationOptions)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(configJson, &config)
	if err != nil {
		log.Printf("Config error. Unable to unmarshal. Got %s", configJson)
		return nil, err
	}
	if config.RescanMinutes <= 0 {
		config.RescanMinutes = defaultRescanMinutes
	}

	indexPath := config.IndexPath
	if indexPath == "" {
		dir, err := stateDir(root)
		if err != nil {
			log.Printf("failed to create state directory: %v", err)
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		indexPath = filepath.Join(dir, "index.db")
	}

	index, err := store.NewStore(indexPath)
	if err != nil {
		log.Printf("failed to open index at %s: %v", indexPath, err)
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	s.root = root
	s.config = config
	s.index = index

	host := bitbake.NewProvider(s.analyzer, index)
	s.completion = redirect.NewCompletion(
		host, s.locator, s.registry, s.docs,
		map[embedded.Kind]redirect.EmbeddedCompletionProvider{
			embedded.KindPython: s.python,
			embedded.KindShell:  s.shell,
		},
	)
	s.definition = redirect.NewDefinition(
		host, s.locator, s.registry, s.docs,
		map[embedded.Kind]redirect.EmbeddedDefinitionProvider{
			embedded.KindPython: s.python,
			embedded.KindShell:  s.shell,
		},
	)

	go s.rescanWorkspace()

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{":", "$", "{", "."},
	}

	log.Println("Returning from initialize")
	return protocol.InitializeResult{
		Capabilities: capabilities,
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Println("Client initialized.")
	go func() {
		ticker := time.NewTicker(time.Duration(s.config.RescanMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			s.rescanWorkspace()
		}
	}()
	return nil
}

// rescanWorkspace rebuilds the project index from a fresh walk of the
// workspace root.
func (s *Server) rescanWorkspace() {
	if s.root == "" {
		return
	}
	files := scanner.Scan(s.root)
	if err := s.index.Replace(files); err != nil {
		log.Printf("failed to refresh index: %v", err)
		return
	}
	log.Printf("Indexed %d files under %s", len(files), s.root)
}

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	log.Printf("DidOpen: %s\n", uri)

	s.docs.Open(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.analyzer.Rescan(uri, params.TextDocument.Text)
	s.registry.Invalidate(uri)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	uri := params.TextDocument.URI

	for _, change := range params.ContentChanges {
		if err := s.docs.ApplyChange(uri, change, params.TextDocument.Version); err != nil {
			log.Printf("failed to apply change: %v", err)
			return fmt.Errorf("failed to apply change: %w", err)
		}
	}

	if text, _, ok := s.docs.Lookup(uri); ok {
		s.analyzer.Rescan(uri, text)
	}
	s.registry.Invalidate(uri)
	return nil
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	log.Printf("DidSave: %s\n", uri)

	// The save payload is authoritative when the client sends it.
	if params.Text != nil {
		if text, version, ok := s.docs.Lookup(uri); ok && text != *params.Text {
			s.docs.Open(uri, *params.Text, version)
			s.analyzer.Rescan(uri, *params.Text)
			s.registry.Invalidate(uri)
		}
	}
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	log.Printf("Closed %s", uri)

	s.docs.Close(uri)
	s.analyzer.Forget(uri)
	s.registry.Invalidate(uri)
	return nil
}

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	if s.completion == nil {
		return nil, nil
	}

	var trigger *string
	if params.Context != nil {
		trigger = params.Context.TriggerCharacter
	}

	items, err := s.completion.Request(
		requestContext(context),
		params.TextDocument.URI,
		params.Position,
		trigger,
	)
	if err != nil {
		log.Printf("completion failed: %v", err)
		return nil, err
	}
	if items == nil {
		return nil, nil
	}
	return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	if s.definition == nil {
		return nil, nil
	}

	entries, err := s.definition.Request(
		requestContext(context),
		params.TextDocument.URI,
		params.Position,
	)
	if err != nil {
		log.Printf("definition failed: %v", err)
		return nil, err
	}
	return redirect.Collapse(entries), nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	log.Println("Shutdown")
	if err := s.python.Close(); err != nil {
		log.Printf("failed to close python backend: %v", err)
	}
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

// rootFromParams prefers rootUri over the deprecated rootPath.
func rootFromParams(params *protocol.InitializeParams) string {
	if params.RootURI != nil && *params.RootURI != "" {
		return resolver.URIToPath(*params.RootURI)
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// Package server wires the language-service components into a glsp LSP
// server speaking to the editor over stdio.
package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/ScorpionBytes/vscode-bitbake/internal/analyzer"
	"github.com/ScorpionBytes/vscode-bitbake/internal/document"
	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	"github.com/ScorpionBytes/vscode-bitbake/internal/python"
	"github.com/ScorpionBytes/vscode-bitbake/internal/redirect"
	"github.com/ScorpionBytes/vscode-bitbake/internal/shell"
	"github.com/ScorpionBytes/vscode-bitbake/internal/store"
)

const serverName = "bitbake-language-server"

// Config is read from the client's initializationOptions.
type Config struct {
	IndexPath     string `json:"index_path"`
	RescanMinutes int    `json:"rescan_minutes"`
}

type Server struct {
	root    string
	config  Config
	handler *protocol.Handler

	docs     *document.Manager
	analyzer *analyzer.Analyzer
	registry *embedded.Registry
	locator  *embedded.Locator
	python   *python.Backend
	shell    *shell.Backend
	index    *store.Store

	completion *redirect.Completion
	definition *redirect.Definition
}

func NewServer() (*server.Server, error) {
	ls := &Server{
		docs:     document.NewManager(),
		analyzer: analyzer.New(),
		python:   python.NewBackend(4),
		shell:    shell.NewBackend(),
	}
	ls.registry = embedded.NewRegistry(ls.docs, ls.analyzer)
	ls.locator = embedded.NewLocator(ls.analyzer)

	ls.handler = &protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentCompletion: ls.textDocumentCompletion,
		TextDocumentDefinition: ls.textDocumentDefinition,
		Shutdown:               ls.shutdown,
	}

	return server.NewServer(ls.handler, serverName, false), nil
}

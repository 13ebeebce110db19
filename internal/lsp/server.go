// Package lsp serves erdsync documents over the Language Server Protocol.
//
// Documents are synced in full. Each open document is parsed through its
// own debounced editor; ignored lines and dangling links come back as
// diagnostics. Drawing clients move nodes with the erdsync.moveNode
// command, which answers with a one-line workspace edit:
//
//	{"command": "erdsync.moveNode", "arguments": ["file:///a.erd", "EMPLOYEE", 120, 80]}
package lsp

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/matzehuels/erdsync/pkg/editor"
)

const lsName = "erdsync"

// CommandMoveNode is the executeCommand name for position write-back.
const CommandMoveNode = "erdsync.moveNode"

// Server is the language server.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	ws      *Workspace
	logger  *log.Logger
	version string

	mu     sync.Mutex
	notify glsp.NotifyFunc
}

// New returns a server whose documents are edited with opts.
func New(version string, opts editor.Options) *Server {
	ls := &Server{version: version, logger: opts.Logger}
	if ls.logger == nil {
		ls.logger = log.Default()
	}
	ls.ws = NewWorkspace(opts, ls.publish)

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.didOpen,
		TextDocumentDidChange:      ls.didChange,
		TextDocumentDidClose:       ls.didClose,
		TextDocumentDidSave:        ls.didSave,
		TextDocumentDocumentSymbol: ls.documentSymbol,
		TextDocumentHover:          ls.hover,
		WorkspaceExecuteCommand:    ls.executeCommand,
	}
	ls.server = server.NewServer(&ls.handler, lsName, false)
	return ls
}

// RunStdio serves on stdin/stdout until the client exits.
func (ls *Server) RunStdio() error {
	defer ls.ws.Shutdown()
	return ls.server.RunStdio()
}

func (ls *Server) publish(uri string, diags []protocol.Diagnostic) {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify == nil {
		return
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	ls.setNotify(ctx)

	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(true)},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{CommandMoveNode},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// setNotify keeps the connection's notifier for diagnostics published from
// debounce timers.
func (ls *Server) setNotify(ctx *glsp.Context) {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.logger.Debug("client initialized")
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	ls.ws.Shutdown()
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.setNotify(ctx)
	ls.ws.Open(params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		if !ls.ws.Change(params.TextDocument.URI, whole.Text) {
			ls.ws.Open(params.TextDocument.URI, whole.Text)
		}
	}
	return nil
}

func (ls *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.ws.Close(params.TextDocument.URI)
	return nil
}

func (ls *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.ws.Change(params.TextDocument.URI, *params.Text)
	}
	return nil
}

func (ls *Server) documentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	return ls.ws.Symbols(params.TextDocument.URI), nil
}

func (ls *Server) hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	return ls.ws.Hover(params.TextDocument.URI, int(params.Position.Line)), nil
}

func (ls *Server) executeCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != CommandMoveNode {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	uri, id, x, y, err := moveArgs(params.Arguments)
	if err != nil {
		return nil, err
	}
	edit, err := ls.ws.MoveEdit(uri, id, x, y)
	if err != nil {
		ls.logger.Warn("move failed", "uri", uri, "node", id, "error", err)
		return nil, err
	}

	// Ask the client to apply the edit. The call blocks on the client's
	// reply, which cannot arrive while this request is still being handled.
	go func() {
		var res protocol.ApplyWorkspaceEditResponse
		ctx.Call(protocol.ServerWorkspaceApplyEdit, protocol.ApplyWorkspaceEditParams{Edit: edit}, &res)
		if !res.Applied {
			ls.logger.Warn("client rejected edit", "uri", uri, "node", id)
		}
	}()
	return edit, nil
}

// moveArgs decodes [uri, nodeID, x, y] from JSON-decoded arguments.
func moveArgs(args []any) (uri, id string, x, y float64, err error) {
	if len(args) != 4 {
		return "", "", 0, 0, fmt.Errorf("%s: want 4 arguments (uri, node, x, y), got %d", CommandMoveNode, len(args))
	}
	var ok bool
	if uri, ok = args[0].(string); !ok {
		return "", "", 0, 0, fmt.Errorf("%s: uri must be a string", CommandMoveNode)
	}
	if id, ok = args[1].(string); !ok {
		return "", "", 0, 0, fmt.Errorf("%s: node must be a string", CommandMoveNode)
	}
	if x, ok = args[2].(float64); !ok {
		return "", "", 0, 0, fmt.Errorf("%s: x must be a number", CommandMoveNode)
	}
	if y, ok = args[3].(float64); !ok {
		return "", "", 0, 0, fmt.Errorf("%s: y must be a number", CommandMoveNode)
	}
	return uri, id, x, y, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

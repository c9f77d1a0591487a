// Copyright 2020-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lspserver wires the workspace and query core up to the Language
// Server Protocol wire format: one protocol.Server implementation per
// connection, translating requests into workspace/query calls and their
// results back into protocol types.
package lspserver

import (
	"context"
	"runtime/debug"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/techwritescode/ca65-lsp-sub000/internal/config"
	"github.com/techwritescode/ca65-lsp-sub000/internal/instrset"
	"github.com/techwritescode/ca65-lsp-sub000/internal/query"
	"github.com/techwritescode/ca65-lsp-sub000/internal/scope"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

var serverInfo = makeServerInfo()

func makeServerInfo() protocol.ServerInfo {
	info := protocol.ServerInfo{Name: "ca65-lsp"}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.Version = buildInfo.Main.Version
	}
	return info
}

// Server is a protocol.Server backed by a single *workspace.Workspace. Every
// unhandled method falls through to nyiServer, so adding a new LSP method
// here is purely additive.
type Server struct {
	nyiServer

	conn     jsonrpc2.Conn
	logger   *zap.Logger
	instrSet *instrset.Set
	ws       *workspace.Workspace
	cfg      *config.Config
}

var _ protocol.Server = (*Server)(nil)

// NewServer builds a Server over ws, publishing diagnostics and replying to
// requests on conn. cfg is the host's decoded project configuration
// (spec.md §6); a nil cfg is treated as the zero value.
func NewServer(conn jsonrpc2.Conn, logger *zap.Logger, ws *workspace.Workspace, instrSet *instrset.Set, cfg *config.Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Server{conn: conn, logger: logger, instrSet: instrSet, ws: ws, cfg: cfg}
}

// -- Lifecycle

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
			},
			DefinitionProvider:     true,
			HoverProvider:          true,
			DocumentSymbolProvider: true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{":"},
			},
		},
		ServerInfo: &serverInfo,
	}, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	return s.conn.Close()
}

func (s *Server) SetTrace(ctx context.Context, params *protocol.SetTraceParams) error {
	return nil
}

// -- File synchronization

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	id := s.ws.Open(string(uri), params.TextDocument.Text)
	s.publishDiagnostics(ctx, uri, id)
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	id, ok := s.ws.FileID(string(uri))
	if !ok {
		return nil
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	edits := make([]workspace.Edit, 0, len(params.ContentChanges))
	for _, c := range params.ContentChanges {
		edits = append(edits, workspace.Edit{Range: protoRangeToSpan(c.Range), Text: c.Text})
	}
	_, err := s.ws.Change(id, edits)
	if err != nil {
		return err
	}
	s.publishDiagnostics(ctx, uri, id)
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	// Included files stay live in the workspace cache after their editor tab
	// closes: other open files may still depend on their symbols.
	return nil
}

// publishDiagnostics translates fileID's current workspace diagnostics into
// an LSP notification and sends it on conn.
func (s *Server) publishDiagnostics(ctx context.Context, uri protocol.DocumentURI, id span.FileID) {
	diags := query.Diagnostics(s.ws, id)
	protoDiags := make([]protocol.Diagnostic, 0, len(diags))
	e, ok := s.ws.Snapshot(id)
	for _, d := range diags {
		rng := protocol.Range{}
		if ok {
			if r, err := e.File.ByteSpanToRange(d.Span); err == nil {
				rng = protocol.Range{
					Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
					End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
				}
			}
		}
		protoDiags = append(protoDiags, protocol.Diagnostic{
			Range:    rng,
			Severity: protocol.DiagnosticSeverityError,
			Source:   diagnosticSourceName(d.Source),
			Message:  d.Message,
		})
	}

	if err := s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: protoDiags,
	}); err != nil {
		s.logger.Sugar().Errorf("publishing diagnostics for %s: %v", uri, err)
	}
}

func diagnosticSourceName(src workspace.DiagnosticSource) string {
	switch src {
	case workspace.SourceTokenizer:
		return "ca65-lsp(lexer)"
	case workspace.SourceParser:
		return "ca65-lsp(parser)"
	case workspace.SourceInclude:
		return "ca65-lsp(include)"
	case workspace.SourceSymbol:
		return "ca65-lsp(symbols)"
	default:
		return "ca65-lsp"
	}
}

// -- Language functionality

func protoPosToSpan(p protocol.Position) span.Position {
	return span.Position{Line: int(p.Line), Character: int(p.Character)}
}

// protoRangeToSpan converts an incremental TextDocumentContentChangeEvent's
// range into a span.Range. A nil r means the event replaces the whole
// document, the same "no range" convention workspace.Edit uses.
func protoRangeToSpan(r *protocol.Range) *span.Range {
	if r == nil {
		return nil
	}
	return &span.Range{
		Start: protoPosToSpan(r.Start),
		End:   protoPosToSpan(r.End),
	}
}

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	id, ok := s.ws.FileID(string(canonicalURI(params.TextDocument.URI)))
	if !ok {
		return nil, nil
	}
	desc, sp, ok, err := query.Hover(s.ws, id, protoPosToSpan(params.Position))
	if err != nil || !ok {
		return nil, err
	}
	e, _ := s.ws.Snapshot(id)
	rng, rerr := e.File.ByteSpanToRange(sp)
	var rngPtr *protocol.Range
	if rerr == nil {
		r := protocol.Range{
			Start: protocol.Position{Line: uint32(rng.Start.Line), Character: uint32(rng.Start.Character)},
			End:   protocol.Position{Line: uint32(rng.End.Line), Character: uint32(rng.End.Character)},
		}
		rngPtr = &r
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: desc},
		Range:    rngPtr,
	}, nil
}

func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	id, ok := s.ws.FileID(string(canonicalURI(params.TextDocument.URI)))
	if !ok {
		return nil, nil
	}
	locs, err := query.Definition(s.ws, id, protoPosToSpan(params.Position))
	if err != nil {
		return nil, err
	}
	out := make([]protocol.Location, 0, len(locs))
	for _, loc := range locs {
		e, ok := s.ws.Snapshot(loc.FileID)
		if !ok {
			continue
		}
		rng, err := e.File.ByteSpanToRange(loc.Span)
		if err != nil {
			continue
		}
		out = append(out, protocol.Location{
			URI: protocol.DocumentURI(e.File.Name),
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(rng.Start.Line), Character: uint32(rng.Start.Character)},
				End:   protocol.Position{Line: uint32(rng.End.Line), Character: uint32(rng.End.Character)},
			},
		})
	}
	return out, nil
}

func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	id, ok := s.ws.FileID(string(canonicalURI(params.TextDocument.URI)))
	if !ok {
		return nil, nil
	}
	syms, err := query.DocumentSymbols(s.ws, id)
	if err != nil {
		return nil, err
	}
	e, _ := s.ws.Snapshot(id)
	out := make([]interface{}, 0, len(syms))
	for _, sym := range syms {
		rng, err := e.File.ByteSpanToRange(sym.Span)
		if err != nil {
			continue
		}
		protoRange := protocol.Range{
			Start: protocol.Position{Line: uint32(rng.Start.Line), Character: uint32(rng.Start.Character)},
			End:   protocol.Position{Line: uint32(rng.End.Line), Character: uint32(rng.End.Character)},
		}
		out = append(out, protocol.DocumentSymbol{
			Name:           sym.FQN,
			Kind:           symbolKindToProtocol(sym.Kind),
			Range:          protoRange,
			SelectionRange: protoRange,
		})
	}
	return out, nil
}

func symbolKindToProtocol(k scope.SymbolKind) protocol.SymbolKind {
	switch k {
	case scope.SymbolScope:
		return protocol.SymbolKindNamespace
	case scope.SymbolLabel:
		return protocol.SymbolKindFunction
	case scope.SymbolMacro:
		return protocol.SymbolKindMethod
	case scope.SymbolConstant:
		return protocol.SymbolKindConstant
	case scope.SymbolParameter:
		return protocol.SymbolKindVariable
	default:
		return protocol.SymbolKindVariable
	}
}

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	id, ok := s.ws.FileID(string(canonicalURI(params.TextDocument.URI)))
	if !ok {
		return nil, nil
	}
	items, err := query.Completion(s.ws, s.instrSet, id, protoPosToSpan(params.Position))
	if err != nil {
		return nil, err
	}
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		item := protocol.CompletionItem{
			Label:      it.Label,
			Kind:       completionItemKindToProtocol(it.Kind),
			Detail:     it.Detail,
			InsertText: it.InsertText,
		}
		if it.Snippet {
			item.InsertTextFormat = protocol.InsertTextFormatSnippet
		}
		out = append(out, item)
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: out}, nil
}

func completionItemKindToProtocol(k query.ItemKind) protocol.CompletionItemKind {
	switch k {
	case query.ItemMnemonic:
		return protocol.CompletionItemKindKeyword
	case query.ItemDirective:
		return protocol.CompletionItemKindKeyword
	case query.ItemLabel:
		return protocol.CompletionItemKindFunction
	case query.ItemConstant:
		return protocol.CompletionItemKindConstant
	case query.ItemMacro:
		return protocol.CompletionItemKindMethod
	case query.ItemScope:
		return protocol.CompletionItemKindModule
	default:
		return protocol.CompletionItemKindText
	}
}

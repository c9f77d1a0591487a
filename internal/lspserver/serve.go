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

package lspserver

import (
	"context"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/techwritescode/ca65-lsp-sub000/internal/config"
	"github.com/techwritescode/ca65-lsp-sub000/internal/instrset"
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

// unhandledMethod replies to any request protocol.ServerHandler did not
// recognize as an LSP method with a JSON-RPC "method not found" error.
func unhandledMethod(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.MethodNotFound, "method not found: "+req.Method()))
}

// Serve starts an LSP server on stream and returns its underlying
// connection. The caller is expected to wait on conn.Done() and then
// inspect conn.Err(), the same shape a stdio or UNIX-socket transport
// wires up around this call.
//
// configPath is the host-chosen path to the TOML project configuration
// (spec.md §6). An empty path means no configuration file is in play and
// the server runs with Config's zero value. A decode error is published as
// a diagnostic against configPath, the same way a source file's diagnostics
// are published, since the host has no other channel through which to
// learn the config it handed the server was malformed.
func Serve(ctx context.Context, logger *zap.Logger, instrSet *instrset.Set, stream jsonrpc2.Stream, configPath string) (jsonrpc2.Conn, error) {
	conn := jsonrpc2.NewConn(stream)
	ws := workspace.New(logger, instrSet)

	var cfg *config.Config
	var cfgDiag *protocol.Diagnostic
	if configPath != "" {
		cfg, cfgDiag = config.Load(configPath)
	} else {
		cfg = &config.Config{}
	}

	srv := NewServer(conn, logger, ws, instrSet, cfg)
	conn.Go(ctx, protocol.ServerHandler(srv, unhandledMethod))

	if cfgDiag != nil {
		// Sent from its own goroutine: on an unbuffered transport the
		// write blocks until the client reads, which it can only do once
		// Serve has returned the connection.
		go publishConfigDiagnostic(ctx, conn, logger, configPath, cfgDiag)
	}

	return conn, nil
}

// publishConfigDiagnostic notifies the client of a configuration decode
// error the same way Server.publishDiagnostics notifies it of a source
// file's diagnostics, keyed on configPath's file URI.
func publishConfigDiagnostic(ctx context.Context, conn jsonrpc2.Conn, logger *zap.Logger, configPath string, diag *protocol.Diagnostic) {
	configURI := canonicalURI(protocol.DocumentURI(uri.File(configPath)))
	if err := conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         configURI,
		Diagnostics: []protocol.Diagnostic{*diag},
	}); err != nil {
		logger.Sugar().Errorf("publishing config diagnostic for %s: %v", configPath, err)
	}
}

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

package workspace

import (
	"github.com/techwritescode/ca65-lsp-sub000/internal/ast"
	"github.com/techwritescode/ca65-lsp-sub000/internal/parser"
	"github.com/techwritescode/ca65-lsp-sub000/internal/scope"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

// ResolvedInclude pairs an analyzed include edge with the file id it resolved
// to (spec.md's "resolved_includes[f] ⊆ known file ids").
type ResolvedInclude struct {
	Edge   scope.IncludeEdge
	FileID span.FileID
}

// FileEntry is one arena slot: everything the workspace knows about a single
// open file, reconstructed wholesale on every reindex (spec.md §4.7's
// "per-file cache entry"). The analysis fields are replaced wholesale on
// reindex, never mutated in place; File is the exception, since Open and
// Change update the *span.File in place, so a shallow copy (see
// Workspace.Snapshot) shares it with the live entry.
type FileEntry struct {
	ID   span.FileID
	File *span.File

	TokenizerError *token.TokenizerError
	Tokens         []token.Token

	Stmts       []ast.Stmt
	ParseErrors []*parser.ParseError

	Scopes           []*scope.Scope
	Symbols          map[string]scope.Symbol
	ScopeDiagnostics []scope.Diagnostic
	Includes         []scope.IncludeEdge

	IdentifierUses     []scope.IdentifierUse
	ResolvedUses       []scope.ResolvedUse
	ResolveDiagnostics []scope.Diagnostic

	ResolvedIncludes  []ResolvedInclude
	ImportDiagnostics []Diagnostic

	// includesResolved is false until ResolveImports has run at least once
	// for this file; reindex always resolves on a fresh entry even though
	// its include list may compare equal to the empty cached one.
	includesResolved bool
}

// DiagnosticSource distinguishes which analysis stage produced a workspace
// diagnostic, mirroring spec.md §4.8's "concatenation of" list.
type DiagnosticSource int

const (
	SourceTokenizer DiagnosticSource = iota
	SourceParser
	SourceInclude
	SourceSymbol
)

// Diagnostic is one workspace-level finding, span-addressed within its file.
type Diagnostic struct {
	Source  DiagnosticSource
	Span    span.Span
	Message string
}

// diagnostics concatenates every analysis stage's findings for this entry,
// in the order spec.md §4.8 lists them.
func (e *FileEntry) diagnostics() []Diagnostic {
	var diags []Diagnostic
	if e.TokenizerError != nil {
		diags = append(diags, Diagnostic{
			Source:  SourceTokenizer,
			Span:    span.New(e.TokenizerError.Offset, e.TokenizerError.Offset+1),
			Message: e.TokenizerError.Error(),
		})
	}
	for _, pe := range e.ParseErrors {
		diags = append(diags, Diagnostic{Source: SourceParser, Span: pe.Span, Message: pe.Message})
	}
	for _, d := range e.ImportDiagnostics {
		diags = append(diags, d)
	}
	for _, d := range e.ScopeDiagnostics {
		diags = append(diags, Diagnostic{Source: SourceSymbol, Span: d.Span, Message: d.Message})
	}
	for _, d := range e.ResolveDiagnostics {
		diags = append(diags, Diagnostic{Source: SourceSymbol, Span: d.Span, Message: d.Message})
	}
	return diags
}

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

// Package workspace maintains the set of open files, resolves include edges
// between them, recomputes analysis on edits, and exposes the per-file cache
// the query layer reads from (spec.md §4.7).
package workspace

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/techwritescode/ca65-lsp-sub000/internal/instrset"
	"github.com/techwritescode/ca65-lsp-sub000/internal/parser"
	"github.com/techwritescode/ca65-lsp-sub000/internal/scope"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

// Workspace is an ordered append-only arena of file cache entries, a
// uri→file_id index, and a compilation-unit table (spec.md §4.7's "State").
// Every mutating operation takes mu; queries are expected to go through
// Snapshot rather than reaching into the arena directly (spec.md §5's
// single-writer, many-reader model).
type Workspace struct {
	mu sync.Mutex

	logger   *zap.Logger
	instrSet *instrset.Set

	files   []*FileEntry
	sources map[string]span.FileID

	// unitsMu guards units independently of mu: the related-file fan-out in
	// fanOutLocked rebuilds several files' units concurrently while mu is
	// already held for the whole Change call, and Go's map writes are not
	// safe to interleave even across distinct keys.
	unitsMu sync.Mutex
	units   map[span.FileID]*CompilationUnit
}

// New builds an empty workspace targeting the given instruction set.
func New(logger *zap.Logger, instrSet *instrset.Set) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		logger:   logger,
		instrSet: instrSet,
		sources:  map[string]span.FileID{},
		units:    map[span.FileID]*CompilationUnit{},
	}
}

// entry returns the arena slot for id, or nil if id is unknown. Callers must
// hold mu.
func (w *Workspace) entry(id span.FileID) *FileEntry {
	if id == span.NoFile || int(id) > len(w.files) {
		return nil
	}
	return w.files[id-1]
}

// Open registers uri with the given text, or updates it in place if uri is
// already open, and returns its stable file id. Idempotent on uri: opening
// the same uri again with unchanged text is a no-op past the fast-hash
// check in span.File.Update.
func (w *Workspace) Open(uri, text string) span.FileID {
	w.mu.Lock()
	defer w.mu.Unlock()

	if id, ok := w.sources[uri]; ok {
		if w.entry(id).File.Update(text) {
			w.reindexLocked(id)
		}
		return id
	}

	id := span.FileID(len(w.files) + 1)
	w.files = append(w.files, &FileEntry{ID: id, File: span.NewFile(uri, text)})
	w.sources[uri] = id
	w.reindexLocked(id)
	return id
}

// Edit is one incremental text change: a ranged splice when Range is
// non-nil, or a full-document replacement otherwise (spec.md §4.7's
// "change(file_id, edits)").
type Edit struct {
	Range *span.Range
	Text  string
}

// Change applies edits in order to fileID's buffer, then reindexes it (and,
// if its include set moved, the files that transitively depend on it).
func (w *Workspace) Change(fileID span.FileID, edits []Edit) ([]Diagnostic, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.entry(fileID)
	if e == nil {
		return nil, fmt.Errorf("workspace: unknown file id %d", fileID)
	}

	source := e.File.Source
	for _, edit := range edits {
		if edit.Range == nil {
			source = edit.Text
			continue
		}
		// Each range addresses the text as left by the edits before it.
		sp, err := span.NewFile(e.File.Name, source).RangeToByteSpan(*edit.Range)
		if err != nil {
			return nil, fmt.Errorf("workspace: %w", err)
		}
		source = source[:sp.Start] + edit.Text + source[sp.End:]
	}

	if !e.File.Update(source) {
		return e.diagnostics(), nil
	}

	diags, includesChanged := w.reindexLocked(fileID)
	if includesChanged {
		if err := w.fanOutLocked(fileID); err != nil {
			w.logger.Sugar().Errorf("related-file reindex fan-out for %s: %v", e.File.Name, err)
		}
	}
	return diags, nil
}

// reindexLocked re-lexes, re-parses, and re-analyzes fileID, then compares
// its freshly-collected includes against the cached set (spec.md §4.7's
// "reindex(file_id)"). Callers must hold mu.
func (w *Workspace) reindexLocked(fileID span.FileID) ([]Diagnostic, bool) {
	e := w.entry(fileID)

	toks, tokErr := token.Lex(e.File.Source, w.instrSet)
	e.Tokens = toks
	e.TokenizerError = tokErr

	stmts, parseErrs := parser.Parse(toks)
	e.Stmts = stmts
	e.ParseErrors = parseErrs

	scopes, symtab, includes, scopeDiags := scope.Analyze(stmts)
	e.Scopes = scopes
	e.Symbols = symtab
	e.ScopeDiagnostics = scopeDiags

	uses := scope.ResolveIdentifiers(stmts)
	resolved, resolveDiags := scope.ResolveSymbolUses(uses, symtab)
	e.IdentifierUses = uses
	e.ResolvedUses = resolved
	e.ResolveDiagnostics = resolveDiags

	includesChanged := !sameIncludePaths(e.Includes, includes) || !e.includesResolved
	e.Includes = includes

	if includesChanged {
		w.resolveImportsLocked(fileID)
	} else {
		w.rebuildUnitLocked(fileID)
	}

	w.logger.Debug("reindexed file",
		zap.String("uri", e.File.Name),
		zap.Int("diagnostics", len(e.diagnostics())),
		zap.Bool("includes_changed", includesChanged),
	)

	return e.diagnostics(), includesChanged
}

func sameIncludePaths(old, new []scope.IncludeEdge) bool {
	if len(old) != len(new) {
		return false
	}
	for i := range old {
		if old[i].PathToken.Lexeme != new[i].PathToken.Lexeme || old[i].Binary != new[i].Binary {
			return false
		}
	}
	return true
}

// Snapshot returns a value copy of fileID's current cache entry for a
// reader to consult without holding the workspace lock across its own work
// (spec.md §5's "query handlers take a read snapshot"). Every field the
// writer replaces wholesale on reindex, so a shallow copy is race-free for
// reads that don't outlive a concurrent mutation of the same file.
func (w *Workspace) Snapshot(fileID span.FileID) (FileEntry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.entry(fileID)
	if e == nil {
		return FileEntry{}, false
	}
	return *e, true
}

// Diagnostics returns fileID's current diagnostics: the concatenation of
// tokenizer, parser, import-resolution, duplicate-symbol, and
// identifier-resolution findings (spec.md §4.8's "Diagnostics").
func (w *Workspace) Diagnostics(fileID span.FileID) []Diagnostic {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.entry(fileID)
	if e == nil {
		return nil
	}
	return e.diagnostics()
}

// FileID returns the file id registered for uri, if any.
func (w *Workspace) FileID(uri string) (span.FileID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.sources[uri]
	return id, ok
}

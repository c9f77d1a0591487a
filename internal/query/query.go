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

// Package query answers the read-only questions a language server asks of
// an open workspace: hover, definition, completion, document symbols, and
// diagnostics (spec.md §4.8). Every operation here takes a Workspace
// snapshot and never mutates it.
package query

import (
	"fmt"
	"strings"

	"github.com/techwritescode/ca65-lsp-sub000/internal/ast"
	"github.com/techwritescode/ca65-lsp-sub000/internal/scope"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

// Location names a symbol's defining span within a specific file, the
// cross-file counterpart to a bare span.Span.
type Location struct {
	FileID span.FileID
	Span   span.Span
}

// match pairs a resolved symbol with the file id it actually lives in, so
// Definition can report cross-file results and Hover can render a
// description without re-resolving.
type match struct {
	fqn    string
	fileID span.FileID
	symbol scope.Symbol
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '@'
}

// clampToCursor narrows a possibly multi-segment identifier literal's text
// (e.g. "foo::bar::baz") down to the prefix ending at the segment the
// cursor sits inside, e.g. a cursor inside "bar" clamps to "foo::bar". A
// root-anchored literal's text already starts with "::", so the result
// keeps it. Ported from definition.rs's find_word_at_pos/get_sub_identifier:
// "::" is not an identifier character, so scanning forward from the
// cursor for the next non-identifier byte finds exactly the end of the
// segment under the cursor.
func clampToCursor(source string, lit *ast.Literal, at int) string {
	full := lit.Span()
	text := source[full.Start:full.End]

	rel := at - full.Start
	if rel < 0 {
		rel = 0
	}
	if rel > len(text) {
		rel = len(text)
	}

	end := rel
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	return text[:end]
}

// findUseAt returns the identifier use whose literal span covers at, if
// any. Cursor positions right at the end of the literal still count, since
// a cursor sitting just after a word is the common "word under the
// caret" case.
func findUseAt(e *workspace.FileEntry, at int) (*scope.IdentifierUse, bool) {
	for i := range e.IdentifierUses {
		u := &e.IdentifierUses[i]
		sp := u.Literal.Span()
		if sp.Start <= at && at <= sp.End {
			return u, true
		}
	}
	return nil, false
}

// resolveName applies the spec.md §4.6 resolution rule (root-anchored is
// an exact lookup, otherwise each enclosing scope is tried innermost-out)
// against an arbitrary symbol table, parameterized over name/scope-stack
// instead of a whole scope.IdentifierUse so it can run against both a
// file's own symbols and a compilation unit's aggregated symbols.
func resolveName(name string, rootAnchored bool, scopeStack []string, at int, lookup func(fqn string) (scope.Symbol, bool)) (string, scope.Symbol, bool) {
	if rootAnchored {
		candidate := "::" + name
		if sym, ok := lookup(candidate); ok {
			return candidate, sym, true
		}
		return "", scope.Symbol{}, false
	}
	for i := len(scopeStack); i >= 0; i-- {
		segments := append(append([]string{}, scopeStack[:i]...), name)
		candidate := "::" + strings.Join(segments, "::")
		if sym, ok := lookup(candidate); ok {
			if sym.RepeatVisibility != nil && !sym.RepeatVisibility.Contains(at) {
				continue
			}
			return candidate, sym, true
		}
	}
	return "", scope.Symbol{}, false
}

// resolveAtCursor is Definition and Hover's shared core: find the
// identifier under the cursor (falling back to a bare word when the
// cursor sits on a definition site rather than a use), clamp it to the
// cursor's sub-segment, and resolve it against the file's own symbols
// first, then the transitive-include closure (spec.md §4.8's Definition).
func resolveAtCursor(ws *workspace.Workspace, fileID span.FileID, pos span.Position) ([]match, error) {
	e, ok := ws.Snapshot(fileID)
	if !ok {
		return nil, fmt.Errorf("query: unknown file id %d", fileID)
	}
	at, err := e.File.PositionToByte(pos)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	var name string
	var rootAnchored bool
	var scopeStack []string

	if use, ok := findUseAt(&e, at); ok {
		name = clampToCursor(e.File.Source, use.Literal, at)
		rootAnchored = strings.HasPrefix(name, "::")
		name = strings.TrimPrefix(name, "::")
		scopeStack = use.ScopeStack
	} else {
		// The cursor may sit on a definition site (a label, constant, or
		// macro name) rather than a use; those never appear in
		// IdentifierUses, so fall back to a plain word lookup in the
		// enclosing scope.
		word, wordSpan, werr := e.File.WordAtPosition(pos)
		if werr != nil || word == "" {
			return nil, nil
		}
		if !wordSpan.Contains(at) && at != wordSpan.End {
			return nil, nil
		}
		name = word
		scopeStack = scope.Search(e.Scopes, at)[1:]
	}

	if name == "" {
		return nil, nil
	}

	var matches []match
	if fqn, sym, ok := resolveName(name, rootAnchored, scopeStack, at, func(fqn string) (scope.Symbol, bool) {
		s, ok := e.Symbols[fqn]
		return s, ok
	}); ok {
		matches = append(matches, match{fqn: fqn, fileID: fileID, symbol: sym})
		return matches, nil
	}

	unit, ok := ws.Unit(fileID)
	if !ok {
		return nil, nil
	}
	if fqn, _, ok := resolveName(name, rootAnchored, scopeStack, at, func(fqn string) (scope.Symbol, bool) {
		agg, ok := unit.AggregatedSymbols[fqn]
		return agg.Symbol, ok
	}); ok {
		agg := unit.AggregatedSymbols[fqn]
		matches = append(matches, match{fqn: fqn, fileID: agg.FileID, symbol: agg.Symbol})
	}
	return matches, nil
}

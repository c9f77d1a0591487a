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

package query

import (
	"fmt"

	"github.com/techwritescode/ca65-lsp-sub000/internal/instrset"
	"github.com/techwritescode/ca65-lsp-sub000/internal/scope"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

// ItemKind distinguishes what a completion Item stands for, so a host can
// map it onto its own UI's icon set.
type ItemKind int

const (
	ItemMnemonic ItemKind = iota
	ItemDirective
	ItemLabel
	ItemConstant
	ItemMacro
	ItemScope
)

// Item is one completion candidate. InsertText and Snippet are set
// together: when Snippet is true, InsertText is a tab-stop template
// (spec.md §6's snippet table) instead of plain text.
type Item struct {
	Label      string
	Kind       ItemKind
	Detail     string
	InsertText string
	Snippet    bool
}

// showInstructions reproduces files.rs's show_instructions heuristic: a
// naive guess at whether the cursor is still in statement position (no
// completed token before it on the line) rather than operand position.
// It doesn't special-case a leading label, same as the source it's
// grounded on.
func showInstructions(lineToks []tokenSpan, offset int) bool {
	return len(lineToks) == 0 || lineToks[0].end >= offset
}

// tokenSpan is the minimal shape showInstructions needs from a token.
type tokenSpan struct{ start, end int }

func lineTokens(e *workspace.FileEntry, lineSpan span.Span) []tokenSpan {
	var out []tokenSpan
	for _, t := range e.Tokens {
		if t.Span.Start >= lineSpan.Start && t.Span.End <= lineSpan.End {
			out = append(out, tokenSpan{start: t.Span.Start, end: t.Span.End})
		}
	}
	return out
}

// Completion offers mnemonics and keyword directives in statement
// position, or symbols filtered by position otherwise: macros excluded
// from operand position, labels/constants excluded from statement-start
// position (spec.md §4.8's "Completion").
func Completion(ws *workspace.Workspace, instrSet *instrset.Set, fileID span.FileID, pos span.Position) ([]Item, error) {
	e, ok := ws.Snapshot(fileID)
	if !ok {
		return nil, fmt.Errorf("query: unknown file id %d", fileID)
	}
	lineSpan, err := e.File.LineSpan(pos.Line)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	offset, err := e.File.PositionToByte(pos)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	statementPos := showInstructions(lineTokens(&e, lineSpan), offset)

	var items []Item
	if statementPos {
		for mnemonic, desc := range instrSet.Mnemonics() {
			items = append(items, Item{Label: mnemonic, Kind: ItemMnemonic, Detail: desc})
		}
		for kw, info := range instrset.Directives.KeysToDoc {
			items = append(items, Item{
				Label:      "." + kw,
				Kind:       ItemDirective,
				Detail:     info.Documentation,
				InsertText: instrset.InsertText(kw, info.SnippetType),
				Snippet:    true,
			})
		}
		for kw, alias := range instrset.Directives.KeysWithSharedDoc {
			doc, _ := instrset.Directives.DocFor(kw)
			snippetType := instrset.Directives.KeysToDoc[alias].SnippetType
			items = append(items, Item{
				Label:      "." + kw,
				Kind:       ItemDirective,
				Detail:     doc,
				InsertText: instrset.InsertText(kw, snippetType),
				Snippet:    true,
			})
		}
	}

	symbols := e.Symbols
	if unit, ok := ws.Unit(fileID); ok {
		merged := make(map[string]scope.Symbol, len(e.Symbols)+len(unit.AggregatedSymbols))
		for fqn, agg := range unit.AggregatedSymbols {
			merged[fqn] = agg.Symbol
		}
		for fqn, sym := range e.Symbols {
			merged[fqn] = sym
		}
		symbols = merged
	}
	for fqn, sym := range symbols {
		if statementPos && (sym.Kind == scope.SymbolLabel || sym.Kind == scope.SymbolConstant || sym.Kind == scope.SymbolParameter) {
			continue
		}
		if !statementPos && sym.Kind == scope.SymbolMacro {
			continue
		}
		items = append(items, Item{Label: fqn, Kind: symbolItemKind(sym.Kind), Detail: sym.Description()})
	}
	return items, nil
}

func symbolItemKind(k scope.SymbolKind) ItemKind {
	switch k {
	case scope.SymbolLabel:
		return ItemLabel
	case scope.SymbolMacro:
		return ItemMacro
	case scope.SymbolScope:
		return ItemScope
	default:
		return ItemConstant
	}
}

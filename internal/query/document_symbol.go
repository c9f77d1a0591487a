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
	"sort"

	"github.com/techwritescode/ca65-lsp-sub000/internal/scope"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

// SymbolInfo is one entry of a document-symbol response: a symbol's FQN,
// kind, and the span of its defining token.
type SymbolInfo struct {
	FQN  string
	Kind scope.SymbolKind
	Span span.Span
}

// DocumentSymbols returns every symbol fileID defines, flat, each
// positioned by the name_span of its defining token (spec.md §4.8's
// "Document symbols"), ordered by that span so a client gets a stable,
// source-order listing.
func DocumentSymbols(ws *workspace.Workspace, fileID span.FileID) ([]SymbolInfo, error) {
	e, ok := ws.Snapshot(fileID)
	if !ok {
		return nil, fmt.Errorf("query: unknown file id %d", fileID)
	}
	out := make([]SymbolInfo, 0, len(e.Symbols))
	for fqn, sym := range e.Symbols {
		out = append(out, SymbolInfo{FQN: fqn, Kind: sym.Kind, Span: sym.Span()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out, nil
}

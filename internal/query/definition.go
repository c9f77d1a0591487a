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
	"sort"

	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

// Definition resolves the identifier under the cursor, first against
// fileID's own symbols, then against the symbols aggregated over its
// transitive include closure, and returns the matching locations sorted
// with same-file results first (spec.md §4.8's "Definition"). An empty,
// nil-error result means the cursor wasn't on anything resolvable.
func Definition(ws *workspace.Workspace, fileID span.FileID, pos span.Position) ([]Location, error) {
	matches, err := resolveAtCursor(ws, fileID, pos)
	if err != nil {
		return nil, err
	}
	locs := make([]Location, 0, len(matches))
	for _, m := range matches {
		locs = append(locs, Location{FileID: m.fileID, Span: m.symbol.Span()})
	}
	sort.SliceStable(locs, func(i, j int) bool {
		iSame := locs[i].FileID == fileID
		jSame := locs[j].FileID == fileID
		return iSame && !jSame
	})
	return locs, nil
}

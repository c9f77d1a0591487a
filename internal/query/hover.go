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
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

// Hover resolves the word at position to a definition and returns its
// description string (spec.md §4.8's "Hover": labels render as "name:",
// macros as ".macro name p1, p2, …", constants/scopes as their bare
// name). The bool reports whether anything resolved.
func Hover(ws *workspace.Workspace, fileID span.FileID, pos span.Position) (string, span.Span, bool, error) {
	matches, err := resolveAtCursor(ws, fileID, pos)
	if err != nil {
		return "", span.Span{}, false, err
	}
	if len(matches) == 0 {
		return "", span.Span{}, false, nil
	}
	m := matches[0]
	return m.symbol.Description(), m.symbol.Span(), true, nil
}

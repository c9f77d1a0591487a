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

// Diagnostics returns fileID's current diagnostics: tokenizer errors,
// parser errors, import-resolution errors, and identifier-resolution
// errors, in that order (spec.md §4.8's "Diagnostics"). All severities are
// errors; the workspace layer already does the concatenation, so this is
// a thin pass-through kept here so every §4.8 operation has a home in one
// package.
func Diagnostics(ws *workspace.Workspace, fileID span.FileID) []workspace.Diagnostic {
	return ws.Diagnostics(fileID)
}

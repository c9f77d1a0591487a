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
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
)

// includeExtensions is the spec.md §6 "file-extension filter for include
// resolution": only these suffixes are considered include candidates.
var includeExtensions = []string{".asm", ".s", ".inc", ".incs"}

func hasIncludeExtension(p string) bool {
	for _, ext := range includeExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// uriDir returns the directory component of a file uri, treating it as a
// plain path when it doesn't parse as a URL (grounded on
// include_resolver.rs's url.Parse + path.parent(), minus the real
// filesystem canonicalize() call the core must not perform itself).
func uriDir(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" {
		return path.Dir(u.Path)
	}
	return path.Dir(uri)
}

func uriJoin(dir, name string) string {
	if u, err := url.Parse(dir); err == nil && u.Scheme != "" {
		joined := *u
		joined.Path = path.Clean(path.Join(u.Path, name))
		return joined.String()
	}
	return path.Clean(path.Join(dir, name))
}

// ResolveImports re-resolves every include edge recorded for parent against
// the set of currently-open sources (spec.md §4.7's "resolve_imports").
func (w *Workspace) ResolveImports(parent span.FileID) []Diagnostic {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resolveImportsLocked(parent)
}

func (w *Workspace) resolveImportsLocked(parent span.FileID) []Diagnostic {
	e := w.entry(parent)
	if e == nil {
		return nil
	}
	dir := uriDir(e.File.Name)

	var resolved []ResolvedInclude
	var diags []Diagnostic
	for _, inc := range e.Includes {
		if inc.Binary {
			// .incbin targets are binary payloads, never analyzable
			// sources, so they are recorded but never resolved to a file id.
			continue
		}
		name := strings.Trim(inc.PathToken.Lexeme, `"`)
		if !hasIncludeExtension(name) {
			continue
		}
		target := uriJoin(dir, name)
		fid, ok := w.sources[target]
		if !ok {
			diags = append(diags, Diagnostic{
				Source:  SourceInclude,
				Span:    inc.PathToken.Span,
				Message: fmt.Sprintf("cannot resolve include %q", name),
			})
			continue
		}
		resolved = append(resolved, ResolvedInclude{Edge: inc, FileID: fid})
	}

	e.ResolvedIncludes = resolved
	e.ImportDiagnostics = diags
	e.includesResolved = true

	w.rebuildUnitLocked(parent)
	return diags
}

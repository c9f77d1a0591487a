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
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/techwritescode/ca65-lsp-sub000/internal/scope"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
)

// AggregatedSymbol is one entry of a CompilationUnit's flattened symbol
// table: a symbol plus the file id it was actually declared in, since the
// owning file is no longer implicit once symbols from several files are
// merged into one map.
type AggregatedSymbol struct {
	FileID span.FileID
	Symbol scope.Symbol
}

// CompilationUnit is a file's transitive dependency set plus the symbol
// table aggregated over it, the template spec.md §4.7 names as
// `units: map<file_id, Unit{deps, aggregated_symbols}>`.
type CompilationUnit struct {
	Deps              []span.FileID
	AggregatedSymbols map[string]AggregatedSymbol
}

// rebuildUnitLocked recomputes f's compilation unit from its current
// resolved includes. Callers must hold mu.
func (w *Workspace) rebuildUnitLocked(f span.FileID) {
	deps := w.transitiveIncludesLocked(f, map[span.FileID]bool{f: true})
	aggregated := map[string]AggregatedSymbol{}
	// Dependencies are overlaid first so the file's own symbols, inserted
	// last, take precedence on an FQN collision.
	for _, dep := range deps {
		if depEntry := w.entry(dep); depEntry != nil {
			for fqn, sym := range depEntry.Symbols {
				aggregated[fqn] = AggregatedSymbol{FileID: dep, Symbol: sym}
			}
		}
	}
	if e := w.entry(f); e != nil {
		for fqn, sym := range e.Symbols {
			aggregated[fqn] = AggregatedSymbol{FileID: f, Symbol: sym}
		}
	}
	w.unitsMu.Lock()
	w.units[f] = &CompilationUnit{Deps: deps, AggregatedSymbols: aggregated}
	w.unitsMu.Unlock()
}

// Unit returns a copy of f's current compilation unit, if one has been
// built yet (it is built the first time f's imports are resolved).
func (w *Workspace) Unit(f span.FileID) (CompilationUnit, bool) {
	w.unitsMu.Lock()
	defer w.unitsMu.Unlock()
	u, ok := w.units[f]
	if !ok {
		return CompilationUnit{}, false
	}
	return *u, true
}

// TransitiveIncludes returns every file id reachable from f through
// resolved includes, excluding f itself (spec.md §4.7's
// "transitive_includes(f)"), guarding against include cycles.
func (w *Workspace) TransitiveIncludes(f span.FileID) []span.FileID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.transitiveIncludesLocked(f, map[span.FileID]bool{f: true})
}

// transitiveIncludesLocked performs the DFS. visited must already contain
// the id of the walk's original root, so a cycle back to it is silently cut
// instead of resurfacing the root as its own dependency.
func (w *Workspace) transitiveIncludesLocked(f span.FileID, visited map[span.FileID]bool) []span.FileID {
	e := w.entry(f)
	if e == nil {
		return nil
	}
	var out []span.FileID
	for _, r := range e.ResolvedIncludes {
		if visited[r.FileID] {
			continue
		}
		visited[r.FileID] = true
		out = append(out, r.FileID)
		out = append(out, w.transitiveIncludesLocked(r.FileID, visited)...)
	}
	return out
}

// RelatedFiles returns every file id whose transitive include set contains
// f (spec.md §4.7's "related_files(f)"), used to fan out symbol
// re-aggregation after f's include set changes.
func (w *Workspace) RelatedFiles(f span.FileID) []span.FileID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.relatedFilesLocked(f)
}

func (w *Workspace) relatedFilesLocked(f span.FileID) []span.FileID {
	var related []span.FileID
	for _, e := range w.files {
		if e.ID == f {
			continue
		}
		for _, dep := range w.transitiveIncludesLocked(e.ID, map[span.FileID]bool{e.ID: true}) {
			if dep == f {
				related = append(related, e.ID)
				break
			}
		}
	}
	return related
}

// fanOutLocked re-resolves imports and re-aggregates symbols for every file
// related to f, concurrently, after f's own include set changed. Callers
// must hold mu; the per-file work below only touches that file's own entry
// plus the unitsMu-guarded units map, so it is safe to run off the caller's
// goroutine.
func (w *Workspace) fanOutLocked(f span.FileID) error {
	related := w.relatedFilesLocked(f)
	if len(related) == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(context.Background())
	var mu sync.Mutex
	var aggregated error
	for _, rid := range related {
		rid := rid
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					aggregated = multierr.Append(aggregated, fmt.Errorf("workspace: reindexing related file %d: %v", rid, r))
					mu.Unlock()
				}
			}()
			if e := w.entry(rid); e != nil && e.includesResolved {
				w.resolveImportsLocked(rid)
			}
			return nil
		})
	}
	g.Wait()
	return aggregated
}

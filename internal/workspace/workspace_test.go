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

package workspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwritescode/ca65-lsp-sub000/internal/instrset"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

func newWS() *workspace.Workspace {
	return workspace.New(nil, instrset.MOS6502)
}

func TestOpenIdempotentOnURI(t *testing.T) {
	w := newWS()
	id1 := w.Open("/workspace/main.asm", "SCREEN = $2000\n")
	id2 := w.Open("/workspace/main.asm", "SCREEN = $2000\n")
	assert.Equal(t, id1, id2)

	e, ok := w.Snapshot(id1)
	require.True(t, ok)
	assert.Len(t, e.Tokens, 4) // SCREEN, =, $2000, EOL
}

func TestOpenAssignsDistinctIdsAndFileIDLookup(t *testing.T) {
	w := newWS()
	a := w.Open("/workspace/a.asm", "FOO = 1\n")
	b := w.Open("/workspace/b.asm", "BAR = 2\n")
	assert.NotEqual(t, a, b)

	gotA, ok := w.FileID("/workspace/a.asm")
	require.True(t, ok)
	assert.Equal(t, a, gotA)

	_, ok = w.FileID("/workspace/missing.asm")
	assert.False(t, ok)
}

func TestChangeFullReplacementReindexes(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "SCREEN = $2000\n")

	diags, err := w.Change(id, []workspace.Edit{{Text: "SCREEN = $3000\n"}})
	require.NoError(t, err)
	assert.Empty(t, diags)

	e, ok := w.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, "SCREEN = $3000\n", e.File.Source)
	sym, ok := e.Symbols["::SCREEN"]
	require.True(t, ok)
	assert.Equal(t, "SCREEN", sym.Name.Lexeme)
}

func TestChangeUnchangedTextIsNoOp(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "SCREEN = $2000\n")
	before, _ := w.Snapshot(id)

	diags, err := w.Change(id, []workspace.Edit{{Text: "SCREEN = $2000\n"}})
	require.NoError(t, err)
	assert.Empty(t, diags)

	after, _ := w.Snapshot(id)
	assert.Equal(t, before.File.FastHash(), after.File.FastHash())
}

func TestChangeRangedSplice(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "lda foo\n")

	// Replace "foo" (columns 4..7 on line 0) with "bar".
	r := span.Range{Start: span.Position{Line: 0, Character: 4}, End: span.Position{Line: 0, Character: 7}}
	diags, err := w.Change(id, []workspace.Edit{{Range: &r, Text: "bar"}})
	require.NoError(t, err)
	assert.Len(t, diags, 1) // "bar" is still an undefined symbol

	e, ok := w.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, "lda bar\n", e.File.Source)
}

func TestChangeUnknownFileIDErrors(t *testing.T) {
	w := newWS()
	_, err := w.Change(span.FileID(99), []workspace.Edit{{Text: "x\n"}})
	assert.Error(t, err)
}

// Replacing the text with a reference to an undefined symbol yields exactly
// one symbol-resolution diagnostic.
func TestReindexUnknownSymbolDiagnostic(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "SCREEN = $2000\n")
	diags, err := w.Change(id, []workspace.Edit{{Text: "lda undefined\n"}})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, workspace.SourceSymbol, diags[0].Source)
}

func TestResolveImportsAcrossFiles(t *testing.T) {
	w := newWS()
	parent := w.Open("/workspace/main.asm", ".include \"child.inc\"\n")

	// Child doesn't exist yet: the include should fail to resolve.
	diags := w.ResolveImports(parent)
	require.Len(t, diags, 1)
	assert.Equal(t, workspace.SourceInclude, diags[0].Source)

	child := w.Open("/workspace/child.inc", "FOO = 1\n")

	diags = w.ResolveImports(parent)
	assert.Empty(t, diags)

	deps := w.TransitiveIncludes(parent)
	require.Len(t, deps, 1)
	assert.Equal(t, child, deps[0])

	unit, ok := w.Unit(parent)
	require.True(t, ok)
	_, ok = unit.AggregatedSymbols["::FOO"]
	assert.True(t, ok)
}

func TestTransitiveIncludesGuardsCycles(t *testing.T) {
	w := newWS()
	a := w.Open("/workspace/a.asm", ".include \"b.inc\"\n")
	b := w.Open("/workspace/b.inc", ".include \"a.asm\"\n")

	w.ResolveImports(a)
	w.ResolveImports(b)

	depsA := w.TransitiveIncludes(a)
	assert.Contains(t, depsA, b)
	assert.NotContains(t, depsA, a) // self excluded even though the cycle loops back
}

func TestRelatedFiles(t *testing.T) {
	w := newWS()
	parent := w.Open("/workspace/main.asm", ".include \"child.inc\"\n")
	child := w.Open("/workspace/child.inc", "FOO = 1\n")
	w.ResolveImports(parent)

	related := w.RelatedFiles(child)
	assert.Contains(t, related, parent)
}

func TestChangeIncludeSetFanOutReResolvesRelatedFiles(t *testing.T) {
	w := newWS()
	parent := w.Open("/workspace/main.asm", ".include \"child.inc\"\n")
	child := w.Open("/workspace/child.inc", "FOO = 1\n")
	w.ResolveImports(parent)

	// Editing the child so it now also includes a third file changes the
	// child's include set, so the fan-out re-resolves the parent that
	// depends on it. The parent's own resolution must survive that: it still
	// sees the child's FOO. This also exercises that Change on a dependency
	// doesn't panic or deadlock the fan-out path.
	_, err := w.Change(child, []workspace.Edit{{Text: "FOO = 1\n.include \"other.inc\"\n"}})
	require.NoError(t, err)

	unit, ok := w.Unit(parent)
	require.True(t, ok)
	_, ok = unit.AggregatedSymbols["::FOO"]
	assert.True(t, ok)
}

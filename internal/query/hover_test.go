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

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwritescode/ca65-lsp-sub000/internal/query"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
)

func TestHoverRendersLabelDescription(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "loop:\nlda loop\n")

	desc, _, ok, err := query.Hover(w, id, span.Position{Line: 1, Character: 5})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "loop:", desc)
}

func TestHoverRendersMacroDescription(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", ".macro Clear p1, p2\n.endmacro\nClear 1, 2\n")

	desc, _, ok, err := query.Hover(w, id, span.Position{Line: 2, Character: 2})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ".macro Clear p1, p2", desc)
}

func TestHoverOnNestedScopeNameRendersBareName(t *testing.T) {
	w := newWS()
	src := ".scope Foo\n" +
		".scope Bar\n" +
		"BAZ = 1\n" +
		".endscope\n" +
		".endscope\n" +
		"lda Foo::Bar::BAZ\n"
	id := w.Open("/workspace/main.asm", src)

	desc, _, ok, err := query.Hover(w, id, span.Position{Line: 5, Character: 10})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bar", desc)
}

func TestHoverUnresolvedReturnsFalse(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "lda undefined\n")

	_, _, ok, err := query.Hover(w, id, span.Position{Line: 0, Character: 5})
	require.NoError(t, err)
	assert.False(t, ok)
}

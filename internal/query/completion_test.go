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

	"github.com/techwritescode/ca65-lsp-sub000/internal/instrset"
	"github.com/techwritescode/ca65-lsp-sub000/internal/query"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
)

func hasItem(items []query.Item, label string, kind query.ItemKind) bool {
	for _, it := range items {
		if it.Label == label && it.Kind == kind {
			return true
		}
	}
	return false
}

func TestCompletionStatementPositionOffersMnemonicsAndDirectives(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "FOO = 1\n\n")

	items, err := query.Completion(w, instrset.MOS6502, id, span.Position{Line: 1, Character: 0})
	require.NoError(t, err)

	assert.True(t, hasItem(items, "lda", query.ItemMnemonic))
	assert.True(t, hasItem(items, ".macro", query.ItemDirective))
	assert.False(t, hasItem(items, "::FOO", query.ItemConstant))

	for _, it := range items {
		if it.Label == ".macro" {
			assert.True(t, it.Snippet)
			assert.Equal(t, ".macro ${1:name}\n\t$0\n.endmacro", it.InsertText)
			assert.NotEmpty(t, it.Detail)
		}
		if it.Label == ".zeropage" {
			assert.Equal(t, ".zeropage", it.InsertText)
		}
	}
}

func TestCompletionOperandPositionOffersSymbolsExcludingMacros(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "FOO = 1\n.macro M\n.endmacro\nlda \n")

	items, err := query.Completion(w, instrset.MOS6502, id, span.Position{Line: 3, Character: 4})
	require.NoError(t, err)

	assert.True(t, hasItem(items, "::FOO", query.ItemConstant))
	assert.False(t, hasItem(items, "lda", query.ItemMnemonic))
	assert.False(t, hasItem(items, "::M", query.ItemMacro))
}

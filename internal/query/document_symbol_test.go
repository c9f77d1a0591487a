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
	"github.com/techwritescode/ca65-lsp-sub000/internal/scope"
)

func TestDocumentSymbolsListsAllSymbolsInSourceOrder(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "FOO = 1\nloop:\n.macro M\n.endmacro\n")

	syms, err := query.DocumentSymbols(w, id)
	require.NoError(t, err)
	require.Len(t, syms, 3)

	assert.Equal(t, "::FOO", syms[0].FQN)
	assert.Equal(t, scope.SymbolConstant, syms[0].Kind)
	assert.Equal(t, "::loop", syms[1].FQN)
	assert.Equal(t, scope.SymbolLabel, syms[1].Kind)
	assert.Equal(t, "::M", syms[2].FQN)
	assert.Equal(t, scope.SymbolMacro, syms[2].Kind)
}

func TestDocumentSymbolsUnknownFileErrors(t *testing.T) {
	w := newWS()
	_, err := query.DocumentSymbols(w, 99)
	assert.Error(t, err)
}

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
	"github.com/techwritescode/ca65-lsp-sub000/internal/workspace"
)

func TestDiagnosticsConcatenatesStages(t *testing.T) {
	w := newWS()
	id := w.Open("/workspace/main.asm", "lda undefined\n")

	diags := query.Diagnostics(w, id)
	require.Len(t, diags, 1)
	assert.Equal(t, workspace.SourceSymbol, diags[0].Source)
}

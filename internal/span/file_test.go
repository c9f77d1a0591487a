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

package span_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
)

func TestBytePositionRoundTrip(t *testing.T) {
	f := span.NewFile("main.asm", "SCREEN = $2000\nmain:\n  lda SCREEN\n")

	pos, err := f.BytePosition(15) // start of "main:"
	require.NoError(t, err)
	assert.Equal(t, span.Position{Line: 1, Character: 0}, pos)

	b, err := f.PositionToByte(pos)
	require.NoError(t, err)
	assert.Equal(t, 15, b)
}

func TestWordAtPosition(t *testing.T) {
	f := span.NewFile("main.asm", "  lda SCREEN\n")
	word, sp, err := f.WordAtPosition(span.Position{Line: 0, Character: 8})
	require.NoError(t, err)
	assert.Equal(t, "SCREEN", word)
	assert.Equal(t, span.New(6, 12), sp)
}

func TestWordAtPositionLocalLabel(t *testing.T) {
	f := span.NewFile("main.asm", "  lda @foo\n")
	word, _, err := f.WordAtPosition(span.Position{Line: 0, Character: 7})
	require.NoError(t, err)
	assert.Equal(t, "@foo", word)
}

func TestEmptyFile(t *testing.T) {
	f := span.NewFile("empty.asm", "")
	sp, err := f.LineSpan(0)
	require.NoError(t, err)
	assert.Equal(t, span.New(0, 0), sp)
}

func TestOutOfBounds(t *testing.T) {
	f := span.NewFile("main.asm", "lda #0\n")
	_, err := f.BytePosition(1000)
	require.Error(t, err)
	var spanErr *span.Error
	require.ErrorAs(t, err, &spanErr)
	assert.Equal(t, span.OutOfBounds, spanErr.Kind)
}

func TestUpdateChangedDetection(t *testing.T) {
	f := span.NewFile("main.asm", "lda #0\n")
	assert.False(t, f.Update("lda #0\n"))
	assert.True(t, f.Update("lda #1\n"))
}

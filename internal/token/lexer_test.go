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

package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

type fakeInstrSet map[string]bool

func (f fakeInstrSet) IsInstruction(lexeme string) bool { return f[lexeme] }

func TestLexSimpleInstruction(t *testing.T) {
	toks, err := token.Lex("lda #$10\n", fakeInstrSet{"lda": true})
	require.Nil(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.Instruction, toks[0].Kind)
	assert.Equal(t, "lda", toks[0].Lexeme)
	assert.Equal(t, token.Hash, toks[1].Kind)
	assert.Equal(t, token.Number, toks[2].Kind)
	assert.Equal(t, "$10", toks[2].Lexeme)
	assert.Equal(t, token.EOL, toks[3].Kind)
}

func TestLexSpanInvariant(t *testing.T) {
	src := "SCREEN = $2000\nmain:\n  lda SCREEN\n"
	toks, err := token.Lex(src, fakeInstrSet{"lda": true})
	require.Nil(t, err)
	for _, tk := range toks {
		if tk.Kind == token.EOL || tk.Kind == token.EOF {
			continue
		}
		assert.Equal(t, tk.Lexeme, src[tk.Span.Start:tk.Span.End])
	}
}

func TestLexDirectiveAndScopeSeparator(t *testing.T) {
	toks, err := token.Lex(".proc foo\n  lda ::bar\n.endproc\n", fakeInstrSet{"lda": true})
	require.Nil(t, err)
	assert.Equal(t, token.Directive, toks[0].Kind)
	assert.Equal(t, ".proc", toks[0].Lexeme)

	var sawScopeSep bool
	for _, tk := range toks {
		if tk.Kind == token.ScopeSeparator {
			sawScopeSep = true
		}
	}
	assert.True(t, sawScopeSep)
}

func TestLexLogicalKeywords(t *testing.T) {
	toks, err := token.Lex(".not .and .or .xor .mod\n", nil)
	require.Nil(t, err)
	kinds := []token.Kind{token.KwNot, token.KwAnd, token.KwOr, token.KwXor, token.KwMod}
	for i, k := range kinds {
		assert.Equal(t, k, toks[i].Kind)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := token.Lex("\"unterminated\n", nil)
	require.NotNil(t, err)
}

func TestLexUnrecognizedCharacter(t *testing.T) {
	_, err := token.Lex("lda ?\n", fakeInstrSet{"lda": true})
	require.NotNil(t, err)
	assert.Equal(t, 4, err.Offset)
}

func TestLexBinaryAndHexNumbers(t *testing.T) {
	toks, err := token.Lex("%1010 $FF\n", nil)
	require.Nil(t, err)
	assert.Equal(t, "%1010", toks[0].Lexeme)
	assert.Equal(t, "$FF", toks[1].Lexeme)
}

func TestLexUnchangedTextProducesEqualTokens(t *testing.T) {
	src := "lda #$10\n"
	a, _ := token.Lex(src, fakeInstrSet{"lda": true})
	b, _ := token.Lex(src, fakeInstrSet{"lda": true})
	assert.Equal(t, a, b)
}

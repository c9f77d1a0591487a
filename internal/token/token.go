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

// Package token turns ca65 assembly source bytes into a typed token
// stream with byte spans.
package token

import (
	"fmt"

	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
)

// Kind is the closed alphabet of token kinds.
type Kind int

const (
	Identifier Kind = iota
	Instruction
	Directive // leading '.', e.g. .proc
	Number    // decimal/hex/binary lexeme, unparsed
	String
	EOL
	EOF

	// Punctuation
	Colon          // :
	ScopeSeparator // ::
	Comma          // ,
	LeftParen      // (
	RightParen     // )
	Hash           // #
	Equal          // =

	// Arithmetic
	Plus  // +
	Minus // -
	Star  // *
	Slash // /

	// Bitwise
	Amp    // &
	Pipe   // |
	Caret  // ^
	Tilde  // ~
	Shl    // <<
	Shr    // >>

	// Comparison
	Less      // <
	Greater   // >
	LessEq    // <=
	GreaterEq // >=
	NotEq     // <>

	// Logical
	Bang       // !
	AmpAmp     // &&
	PipePipe   // ||
	KwNot      // .not
	KwAnd      // .and
	KwOr       // .or
	KwXor      // .xor
	KwMod      // .mod

	// Unnamed-label reference
	UnnamedPlus  // :+
	UnnamedMinus // :-
)

var kindNames = map[Kind]string{
	Identifier: "Identifier", Instruction: "Instruction", Directive: "Directive",
	Number: "Number", String: "String", EOL: "EOL", EOF: "EOF",
	Colon: "Colon", ScopeSeparator: "ScopeSeparator", Comma: "Comma",
	LeftParen: "LeftParen", RightParen: "RightParen", Hash: "Hash", Equal: "Equal",
	Plus: "Plus", Minus: "Minus", Star: "Star", Slash: "Slash",
	Amp: "Amp", Pipe: "Pipe", Caret: "Caret", Tilde: "Tilde", Shl: "Shl", Shr: "Shr",
	Less: "Less", Greater: "Greater", LessEq: "LessEq", GreaterEq: "GreaterEq", NotEq: "NotEq",
	Bang: "Bang", AmpAmp: "AmpAmp", PipePipe: "PipePipe",
	KwNot: "KwNot", KwAnd: "KwAnd", KwOr: "KwOr", KwXor: "KwXor", KwMod: "KwMod",
	UnnamedPlus: "UnnamedPlus", UnnamedMinus: "UnnamedMinus",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is {kind, lexeme, span}.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   span.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Lexeme, t.Span)
}

// StringValue strips the surrounding quotes from a String-kind token's
// lexeme. It is a no-op if the lexeme isn't quoted.
func (t Token) StringValue() string {
	if t.Kind != String || len(t.Lexeme) < 2 {
		return t.Lexeme
	}
	return t.Lexeme[1 : len(t.Lexeme)-1]
}

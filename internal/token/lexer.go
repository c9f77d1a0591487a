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

package token

import (
	"strings"

	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
)

// InstructionSet answers whether a lowercased lexeme names an instruction
// of the target CPU. It is process-wide immutable once built (spec.md §5).
type InstructionSet interface {
	IsInstruction(lowercaseLexeme string) bool
}

// TokenizerError halts the token stream at the first unrecognized
// character.
type TokenizerError struct {
	Offset int
}

func (e *TokenizerError) Error() string {
	return "unrecognized character"
}

var logicalKeywords = map[string]Kind{
	"not": KwNot,
	"and": KwAnd,
	"or":  KwOr,
	"xor": KwXor,
	"mod": KwMod,
}

type lexer struct {
	src   string
	pos   int
	start int
	instr InstructionSet
	out   []Token
}

// Lex tokenizes source, consulting instrs to retag instruction mnemonics.
// It returns the tokens produced before any unrecognized character, along
// with a *TokenizerError if one was hit (matching spec.md §4.2/§7: the
// tokenizer halts at the first unrecognized character).
func Lex(src string, instrs InstructionSet) ([]Token, *TokenizerError) {
	l := &lexer{src: src, instr: instrs}
	for !l.atEnd() {
		l.start = l.pos
		if err := l.next(); err != nil {
			return l.out, err
		}
	}
	return l.out, nil
}

func (l *lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	return c
}

func (l *lexer) lexeme() string { return l.src[l.start:l.pos] }

func (l *lexer) emit(k Kind) {
	l.out = append(l.out, Token{Kind: k, Lexeme: l.lexeme(), Span: span.New(l.start, l.pos)})
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
func isBinDigit(c byte) bool { return c == '0' || c == '1' }
func isIdentBody(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_'
}

func (l *lexer) next() *TokenizerError {
	c := l.advance()
	switch {
	case c == ';':
		l.lineComment()
		return nil
	case c == '\n':
		l.emit(EOL)
		return nil
	case c == ' ' || c == '\t' || c == '\r':
		return nil
	case c == '.':
		// A directive: '.' followed by an identifier body. A bare '.'
		// (unlikely in practice) is a tokenizer error.
		if !isIdentBody(l.peek()) {
			return &TokenizerError{Offset: l.start}
		}
		for isIdentBody(l.peek()) {
			l.advance()
		}
		name := strings.ToLower(l.lexeme()[1:])
		if kw, ok := logicalKeywords[name]; ok {
			l.emit(kw)
		} else {
			l.emit(Directive)
		}
		return nil
	case c == '@':
		if !isIdentBody(l.peek()) {
			return &TokenizerError{Offset: l.start}
		}
		for isIdentBody(l.peek()) {
			l.advance()
		}
		l.emit(Identifier)
		return nil
	case isAlpha(c):
		for isIdentBody(l.peek()) {
			l.advance()
		}
		name := l.lexeme()
		if l.instr != nil && l.instr.IsInstruction(strings.ToLower(name)) {
			l.emit(Instruction)
		} else {
			l.emit(Identifier)
		}
		return nil
	case c == '"':
		return l.stringLiteral()
	case isDigit(c):
		for isDigit(l.peek()) {
			l.advance()
		}
		l.emit(Number)
		return nil
	case c == '$':
		if !isHexDigit(l.peek()) {
			return &TokenizerError{Offset: l.start}
		}
		for isHexDigit(l.peek()) {
			l.advance()
		}
		l.emit(Number)
		return nil
	case c == '%':
		if !isBinDigit(l.peek()) {
			return &TokenizerError{Offset: l.start}
		}
		for isBinDigit(l.peek()) {
			l.advance()
		}
		l.emit(Number)
		return nil
	case c == ':':
		switch l.peek() {
		case ':':
			l.advance()
			l.emit(ScopeSeparator)
		case '+':
			l.advance()
			l.emit(UnnamedPlus)
		case '-':
			l.advance()
			l.emit(UnnamedMinus)
		default:
			l.emit(Colon)
		}
		return nil
	case c == ',':
		l.emit(Comma)
		return nil
	case c == '(':
		l.emit(LeftParen)
		return nil
	case c == ')':
		l.emit(RightParen)
		return nil
	case c == '#':
		l.emit(Hash)
		return nil
	case c == '+':
		l.emit(Plus)
		return nil
	case c == '-':
		l.emit(Minus)
		return nil
	case c == '*':
		l.emit(Star)
		return nil
	case c == '/':
		l.emit(Slash)
		return nil
	case c == '&':
		if l.peek() == '&' {
			l.advance()
			l.emit(AmpAmp)
		} else {
			l.emit(Amp)
		}
		return nil
	case c == '|':
		if l.peek() == '|' {
			l.advance()
			l.emit(PipePipe)
		} else {
			l.emit(Pipe)
		}
		return nil
	case c == '^':
		l.emit(Caret)
		return nil
	case c == '~':
		l.emit(Tilde)
		return nil
	case c == '!':
		l.emit(Bang)
		return nil
	case c == '=':
		l.emit(Equal)
		return nil
	case c == '<':
		switch l.peek() {
		case '<':
			l.advance()
			l.emit(Shl)
		case '=':
			l.advance()
			l.emit(LessEq)
		case '>':
			l.advance()
			l.emit(NotEq)
		default:
			l.emit(Less)
		}
		return nil
	case c == '>':
		switch l.peek() {
		case '>':
			l.advance()
			l.emit(Shr)
		case '=':
			l.advance()
			l.emit(GreaterEq)
		default:
			l.emit(Greater)
		}
		return nil
	default:
		return &TokenizerError{Offset: l.start}
	}
}

func (l *lexer) lineComment() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *lexer) stringLiteral() *TokenizerError {
	for !l.atEnd() && l.peek() != '"' {
		l.advance()
	}
	if l.atEnd() {
		return &TokenizerError{Offset: l.start}
	}
	l.advance() // closing quote
	// Lexeme includes the surrounding quotes so source[token.span] ==
	// token.lexeme holds for every token; callers that want the bare text
	// strip them (see token.Token.StringValue).
	l.emit(String)
	return nil
}

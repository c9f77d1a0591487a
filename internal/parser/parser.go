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

// Package parser turns a ca65 token stream into a statement tree,
// recovering from local syntax errors instead of aborting (spec.md §4.3).
package parser

import (
	"fmt"
	"strings"

	"github.com/techwritescode/ca65-lsp-sub000/internal/ast"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

// ErrorKind distinguishes the recoverable parse-error shapes.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	ExpectedToken
	UnexpectedEOF
)

// ParseError is one recoverable syntax error. Parsing always continues
// past one of these; they accumulate alongside the partial AST.
type ParseError struct {
	Kind    ErrorKind
	Span    span.Span
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// Parse builds a statement tree from tokens in source order. It never
// panics on malformed input: local failures are recorded in the returned
// error slice and parsing resumes at the next line.
func Parse(tokens []token.Token) ([]ast.Stmt, []*ParseError) {
	p := &parser{toks: tokens}
	var stmts []ast.Stmt
	for !p.atEnd() {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts, p.errors
}

type parser struct {
	toks   []token.Token
	pos    int
	errors []*ParseError
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token.Token {
	if p.atEnd() {
		if len(p.toks) == 0 {
			return token.Token{Kind: token.EOF}
		}
		return token.Token{Kind: token.EOF, Span: span.New(p.toks[len(p.toks)-1].Span.End, p.toks[len(p.toks)-1].Span.End)}
	}
	return p.toks[p.pos]
}

func (p *parser) previous() token.Token {
	if p.pos == 0 {
		return token.Token{}
	}
	return p.toks[p.pos-1]
}

func (p *parser) advance() token.Token {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *parser) check(k token.Kind) bool { return !p.atEnd() && p.peek().Kind == k }

func (p *parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) directiveName(t token.Token) string {
	if len(t.Lexeme) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(t.Lexeme, "."))
}

func (p *parser) checkDirective(name string) bool {
	return p.check(token.Directive) && p.directiveName(p.peek()) == name
}

func (p *parser) errorAt(t token.Token, kind ErrorKind, msg string) {
	p.errors = append(p.errors, &ParseError{Kind: kind, Span: t.Span, Message: msg})
}

// synchronize discards tokens up to and including the next EOL, so one
// malformed statement doesn't poison the rest of the file.
func (p *parser) synchronize() {
	for !p.atEnd() && p.peek().Kind != token.EOL {
		p.advance()
	}
	if p.check(token.EOL) {
		p.advance()
	}
}

func (p *parser) consumeNewline() {
	if p.match(token.EOL) {
		return
	}
	if p.atEnd() {
		return
	}
	p.errorAt(p.peek(), UnexpectedToken, fmt.Sprintf("expected end of line, got %s", p.peek().Kind))
	p.synchronize()
}

func (p *parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	t := p.peek()
	p.errorAt(t, ExpectedToken, fmt.Sprintf("expected %s, got %s", what, t.Kind))
	return t, false
}

func (p *parser) expectIdentifier() token.Token {
	t, _ := p.expect(token.Identifier, "identifier")
	return t
}

func (p *parser) expectString() token.Token {
	t, _ := p.expect(token.String, "string literal")
	return t
}

// --- statements -----------------------------------------------------------

func (p *parser) parseStatement() ast.Stmt {
	if p.atEnd() {
		return nil
	}
	t := p.peek()
	switch t.Kind {
	case token.EOL:
		p.advance()
		return nil
	case token.Instruction:
		return p.parseInstruction()
	case token.Directive:
		return p.parseDirective()
	case token.Identifier:
		return p.parseIdentifierStatement()
	case token.Colon:
		p.advance()
		p.consumeNewline()
		return &ast.UnnamedLabel{}
	default:
		p.errorAt(t, UnexpectedToken, fmt.Sprintf("unexpected token %s", t.Kind))
		p.synchronize()
		return nil
	}
}

func (p *parser) parseInstruction() ast.Stmt {
	mnemonic := p.advance()
	params := p.parseExpressionList()
	end := p.previous()
	p.consumeNewline()
	return &ast.Instruction{
		Mnemonic:   mnemonic,
		Parameters: params,
		Base:       spanBase(mnemonic.Span.Start, endOf(end, mnemonic)),
	}
}

func (p *parser) parseIdentifierStatement() ast.Stmt {
	name := p.advance()
	if p.match(token.Equal) {
		value := p.parseExpression()
		st := &ast.ConstantAssign{Name: name, Value: value, Base: spanBase(name.Span.Start, value.Span().End)}
		p.consumeNewline()
		return st
	}
	if p.match(token.Colon) {
		st := &ast.Label{Name: name, Base: spanBase(name.Span.Start, p.previous().Span.End)}
		p.consumeNewline()
		return st
	}
	return p.parseMacroInvocation(name)
}

func (p *parser) parseMacroInvocation(name token.Token) ast.Stmt {
	var args []ast.MacroArg
	if !p.check(token.EOL) && !p.atEnd() {
		args = append(args, ast.MacroArg{Expr: p.parseExpression()})
		for !p.atEnd() && !p.check(token.EOL) {
			if _, ok := p.expect(token.Comma, "','"); !ok {
				break
			}
			args = append(args, ast.MacroArg{Expr: p.parseExpression()})
		}
	}
	end := p.previous()
	p.consumeNewline()
	return &ast.MacroInvocation{Name: name, Args: args, Base: spanBase(name.Span.Start, endOf(end, name))}
}

func (p *parser) parseExpressionList() []ast.Expr {
	var exprs []ast.Expr
	if p.check(token.EOL) || p.atEnd() {
		return exprs
	}
	exprs = append(exprs, p.parseExpression())
	for !p.atEnd() && !p.check(token.EOL) {
		if _, ok := p.expect(token.Comma, "','"); !ok {
			break
		}
		exprs = append(exprs, p.parseExpression())
	}
	return exprs
}

// --- directives -------------------------------------------------------

func (p *parser) parseDirective() ast.Stmt {
	tok := p.peek()
	name := p.directiveName(tok)
	switch name {
	case "include":
		p.advance()
		path := p.expectString()
		st := &ast.Include{Path: path, Base: spanBase(tok.Span.Start, path.Span.End)}
		p.consumeNewline()
		return st
	case "incbin":
		p.advance()
		path := p.expectString()
		st := &ast.IncludeBinary{Path: path, Base: spanBase(tok.Span.Start, path.Span.End)}
		p.consumeNewline()
		return st
	case "macpack":
		p.advance()
		ident := p.expectIdentifier()
		st := &ast.MacroPack{Name: ident, Base: spanBase(tok.Span.Start, ident.Span.End)}
		p.consumeNewline()
		return st
	case "setcpu":
		p.advance()
		cpu := p.expectString()
		st := &ast.SetCPU{CPU: cpu, Base: spanBase(tok.Span.Start, cpu.Span.End)}
		p.consumeNewline()
		return st
	case "segment":
		p.advance()
		seg := p.expectString()
		st := &ast.Segment{Name: seg, Base: spanBase(tok.Span.Start, seg.Span.End)}
		p.consumeNewline()
		return st
	case "zeropage":
		p.advance()
		st := &ast.Segment{Name: syntheticString("zeropage", tok.Span), Base: spanBase(tok.Span.Start, tok.Span.End)}
		p.consumeNewline()
		return st
	case "bss", "rodata":
		p.advance()
		st := &ast.Segment{Name: syntheticString(name, tok.Span), Base: spanBase(tok.Span.Start, tok.Span.End)}
		p.consumeNewline()
		return st
	case "feature":
		p.advance()
		ident := p.expectIdentifier()
		st := &ast.Feature{Name: ident, Base: spanBase(tok.Span.Start, ident.Span.End)}
		p.consumeNewline()
		return st
	case "res":
		p.advance()
		e := p.parseExpression()
		st := &ast.Reserve{Count: e, Base: spanBase(tok.Span.Start, e.Span().End)}
		p.consumeNewline()
		return st
	case "org":
		p.advance()
		e := p.parseExpression()
		st := &ast.Org{Address: e, Base: spanBase(tok.Span.Start, e.Span().End)}
		p.consumeNewline()
		return st
	case "byte", "data":
		return p.parseData(tok, ast.DataByte)
	case "word":
		return p.parseData(tok, ast.DataWord)
	case "dword":
		return p.parseData(tok, ast.DataDword)
	case "ascii":
		p.advance()
		val := p.expectString()
		st := &ast.Ascii{Value: val, Base: spanBase(tok.Span.Start, val.Span.End)}
		p.consumeNewline()
		return st
	case "proc":
		return p.parseProc(tok)
	case "scope":
		return p.parseScope(tok)
	case "macro":
		return p.parseMacro(tok)
	case "struct":
		return p.parseStruct(tok)
	case "enum":
		return p.parseEnum(tok)
	case "repeat":
		return p.parseRepeat(tok)
	case "global":
		return p.parseImportDecl(tok, ast.KindGlobal)
	case "export":
		return p.parseImportDecl(tok, ast.KindExport)
	case "import":
		return p.parseImportDecl(tok, ast.KindImport)
	case "define":
		return p.parseDefine(tok)
	case "if":
		return p.parseIf(tok, ast.IfExpr)
	case "ifdef":
		return p.parseIf(tok, ast.IfDef)
	case "ifndef":
		return p.parseIf(tok, ast.IfNDef)
	case "ifblank":
		return p.parseIf(tok, ast.IfBlank)
	case "ifnblank":
		return p.parseIf(tok, ast.IfNBlank)
	default:
		p.errorAt(tok, UnexpectedToken, fmt.Sprintf("unrecognized directive .%s", name))
		p.advance()
		p.synchronize()
		return nil
	}
}

func (p *parser) parseData(tok token.Token, kind ast.DataKind) ast.Stmt {
	p.advance()
	exprs := p.parseExpressionList()
	end := tok
	if len(exprs) > 0 {
		end = token.Token{Span: exprs[len(exprs)-1].Span()}
	}
	st := &ast.Data{Kind: kind, Expressions: exprs, Base: spanBase(tok.Span.Start, end.Span.End)}
	p.consumeNewline()
	return st
}

func (p *parser) parseProc(tok token.Token) ast.Stmt {
	p.advance()
	name := p.expectIdentifier()
	far := false
	if p.match(token.Comma) {
		farTok := p.expectIdentifier()
		if strings.ToLower(farTok.Lexeme) == "far" {
			far = true
		} else {
			p.errorAt(farTok, UnexpectedToken, "expected 'far'")
		}
	}
	p.consumeNewline()
	body, matched, end := p.parseBlockBody("endproc")
	if !matched {
		p.errorAt(p.lastSpanToken(), UnexpectedEOF, "unterminated .proc, expected .endproc")
	}
	return &ast.Procedure{Name: name, Far: far, Body: body, Base: spanBase(tok.Span.Start, end)}
}

func (p *parser) parseScope(tok token.Token) ast.Stmt {
	p.advance()
	var name *token.Token
	if p.check(token.Identifier) {
		t := p.advance()
		name = &t
	}
	p.consumeNewline()
	body, matched, end := p.parseBlockBody("endscope")
	if !matched {
		p.errorAt(p.lastSpanToken(), UnexpectedEOF, "unterminated .scope, expected .endscope")
	}
	return &ast.Scope{Name: name, Body: body, Base: spanBase(tok.Span.Start, end)}
}

func (p *parser) parseMacro(tok token.Token) ast.Stmt {
	p.advance()
	name := p.expectIdentifier()
	var params []token.Token
	if !p.check(token.EOL) && !p.atEnd() {
		params = append(params, p.expectIdentifier())
		for p.match(token.Comma) {
			params = append(params, p.expectIdentifier())
		}
	}
	p.consumeNewline()
	body, matched, end := p.parseBlockBody("endmacro")
	if !matched {
		p.errorAt(p.lastSpanToken(), UnexpectedEOF, "unterminated .macro, expected .endmacro")
	}
	return &ast.MacroDefinition{Name: name, Parameters: params, Body: body, Base: spanBase(tok.Span.Start, end)}
}

// parseBlockBody collects statements until a directive whose stripped
// name matches one of endNames, or EOF. It returns whether the end was
// actually matched, and the byte offset to close the enclosing span with.
func (p *parser) parseBlockBody(endNames ...string) ([]ast.Stmt, bool, int) {
	stmts, name, end := p.parseBlockBodyNamed(endNames...)
	return stmts, name != "", end
}

// parseBlockBodyNamed is parseBlockBody's primitive: it additionally
// reports which of endNames actually matched, so a caller distinguishing
// between two possible terminators (e.g. .if's ".else" vs ".endif") can
// tell them apart without re-inspecting consumed tokens.
func (p *parser) parseBlockBodyNamed(endNames ...string) ([]ast.Stmt, string, int) {
	var stmts []ast.Stmt
	for !p.atEnd() {
		if p.check(token.Directive) {
			name := p.directiveName(p.peek())
			for _, want := range endNames {
				if name == want {
					end := p.advance()
					p.consumeNewline()
					return stmts, want, end.Span.End
				}
			}
		}
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts, "", p.lastSpanToken().Span.End
}

func (p *parser) lastSpanToken() token.Token {
	if len(p.toks) == 0 {
		return token.Token{}
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) parseStruct(tok token.Token) ast.Stmt {
	p.advance()
	name := p.expectIdentifier()
	p.consumeNewline()
	members, matched, end := p.parseStructMembers()
	if !matched {
		p.errorAt(p.lastSpanToken(), UnexpectedEOF, "unterminated .struct, expected .endstruct")
	}
	return &ast.Struct{Name: name, Members: members, Base: spanBase(tok.Span.Start, end)}
}

func (p *parser) parseStructMembers() ([]ast.StructMember, bool, int) {
	var members []ast.StructMember
	for !p.atEnd() {
		if p.match(token.EOL) {
			continue
		}
		if p.checkDirective("endstruct") {
			end := p.advance()
			p.consumeNewline()
			return members, true, end.Span.End
		}
		if p.checkDirective("struct") {
			nested := p.parseStruct(p.peek()).(*ast.Struct)
			members = append(members, ast.StructMember{Nested: nested})
			continue
		}
		if p.check(token.Identifier) {
			field := p.advance()
			members = append(members, ast.StructMember{Field: &field})
			p.consumeNewline()
			continue
		}
		p.errorAt(p.peek(), UnexpectedToken, fmt.Sprintf("expected struct member, got %s", p.peek().Kind))
		p.synchronize()
	}
	return members, false, p.lastSpanToken().Span.End
}

func (p *parser) parseEnum(tok token.Token) ast.Stmt {
	p.advance()
	var name *token.Token
	if p.check(token.Identifier) {
		t := p.advance()
		name = &t
	}
	p.consumeNewline()
	members, matched, end := p.parseEnumMembers()
	if !matched {
		p.errorAt(p.lastSpanToken(), UnexpectedEOF, "unterminated .enum, expected .endenum")
	}
	return &ast.Enum{Name: name, Members: members, Base: spanBase(tok.Span.Start, end)}
}

func (p *parser) parseEnumMembers() ([]ast.EnumMember, bool, int) {
	var members []ast.EnumMember
	for !p.atEnd() {
		if p.match(token.EOL) {
			continue
		}
		if p.checkDirective("endenum") {
			end := p.advance()
			p.consumeNewline()
			return members, true, end.Span.End
		}
		if p.check(token.Identifier) {
			name := p.advance()
			var value ast.Expr
			if p.match(token.Equal) {
				value = p.parseExpression()
			}
			members = append(members, ast.EnumMember{Name: name, Value: value})
			p.consumeNewline()
			continue
		}
		p.errorAt(p.peek(), UnexpectedToken, fmt.Sprintf("expected enum member, got %s", p.peek().Kind))
		p.synchronize()
	}
	return members, false, p.lastSpanToken().Span.End
}

func (p *parser) parseRepeat(tok token.Token) ast.Stmt {
	p.advance()
	max := p.parseExpression()
	var incr *token.Token
	if p.match(token.Comma) {
		t := p.expectIdentifier()
		incr = &t
	}
	p.consumeNewline()
	body, matched, end := p.parseBlockBody("endrep")
	if !matched {
		p.errorAt(p.lastSpanToken(), UnexpectedEOF, "unterminated .repeat, expected .endrep")
	}
	return &ast.Repeat{Max: max, Incr: incr, Body: body, Base: spanBase(tok.Span.Start, end)}
}

func (p *parser) parseImportDecl(tok token.Token, kind ast.ImportKind) ast.Stmt {
	p.advance()
	var idents []ast.ImportExport
	parseOne := func() {
		name := p.expectIdentifier()
		zp := false
		var value ast.Expr
		if p.match(token.Colon) {
			zpTok := p.expectIdentifier()
			if strings.ToLower(zpTok.Lexeme) == "zeropage" {
				zp = true
			} else {
				p.errorAt(zpTok, UnexpectedToken, "expected 'zeropage'")
			}
		}
		if kind == ast.KindExport && p.match(token.Equal) {
			value = p.parseExpression()
		}
		idents = append(idents, ast.ImportExport{Name: name, ZeroPage: zp, Value: value})
	}
	if !p.check(token.EOL) && !p.atEnd() {
		parseOne()
		for p.match(token.Comma) {
			parseOne()
		}
	}
	end := p.previous()
	p.consumeNewline()
	return &ast.ImportDecl{Kind: kind, Identifiers: idents, Base: spanBase(tok.Span.Start, endOf(end, tok))}
}

func (p *parser) parseDefine(tok token.Token) ast.Stmt {
	p.advance()
	name := p.expectIdentifier()
	var params []token.Token
	hasParams := false
	if p.check(token.LeftParen) {
		hasParams = true
		p.advance()
		if !p.check(token.RightParen) {
			params = append(params, p.expectIdentifier())
			for p.match(token.Comma) {
				params = append(params, p.expectIdentifier())
			}
		}
		p.expect(token.RightParen, "')'")
	}
	var bodyToks []token.Token
	for !p.atEnd() && !p.check(token.EOL) {
		bodyToks = append(bodyToks, p.advance())
	}
	bodySpan := span.New(tok.Span.End, tok.Span.End)
	if len(bodyToks) > 0 {
		bodySpan = span.New(bodyToks[0].Span.Start, bodyToks[len(bodyToks)-1].Span.End)
	}
	end := bodySpan.End
	p.consumeNewline()
	return &ast.Define{
		Name: name, Params: params, HasParams: hasParams,
		Body: &ast.TokenList{Tokens: bodyToks, Base: baseFromSpan(bodySpan)},
		Base: spanBase(tok.Span.Start, end),
	}
}

func (p *parser) parseIf(tok token.Token, kind ast.IfKind) ast.Stmt {
	p.advance()
	var condExpr ast.Expr
	var condIdent *token.Token
	if kind == ast.IfExpr {
		condExpr = p.parseExpression()
	} else {
		t := p.expectIdentifier()
		condIdent = &t
	}
	p.consumeNewline()
	thenBody, matchedName, end := p.parseBlockBodyNamed("else", "endif")
	var elseBody []ast.Stmt
	switch matchedName {
	case "else":
		var endName string
		elseBody, endName, end = p.parseBlockBodyNamed("endif")
		if endName == "" {
			p.errorAt(p.lastSpanToken(), UnexpectedEOF, "unterminated .if, expected .endif")
		}
	case "":
		p.errorAt(p.lastSpanToken(), UnexpectedEOF, "unterminated .if, expected .endif")
	}
	return &ast.If{Kind: kind, CondExpr: condExpr, CondIdent: condIdent, Then: thenBody, Else: elseBody, Base: spanBase(tok.Span.Start, end)}
}

// --- expressions -----------------------------------------------------------

func (p *parser) parseExpression() ast.Expr { return p.parseLogicalNot() }

func (p *parser) parseLogicalNot() ast.Expr {
	if p.check(token.KwNot) || p.check(token.Bang) {
		opTok := p.advance()
		operand := p.parseLogicalNot()
		return &ast.Unary{Op: ast.UnaryLogNot, Operand: operand, Base: spanBase(opTok.Span.Start, operand.Span().End)}
	}
	return p.parseLogicalOr()
}

func (p *parser) parseLogicalOr() ast.Expr {
	left := p.parseLogicalAndXor()
	for p.check(token.KwOr) || p.check(token.PipePipe) {
		p.advance()
		right := p.parseLogicalAndXor()
		left = &ast.Binary{Op: ast.BinLogicalOr, Left: left, Right: right, Base: spanBase(left.Span().Start, right.Span().End)}
	}
	return left
}

func (p *parser) parseLogicalAndXor() ast.Expr {
	left := p.parseComparison()
	for p.check(token.KwAnd) || p.check(token.AmpAmp) || p.check(token.KwXor) {
		opTok := p.advance()
		op := ast.BinLogicalAnd
		if opTok.Kind == token.KwXor {
			op = ast.BinLogicalXor
		}
		right := p.parseComparison()
		left = &ast.Binary{Op: op, Left: left, Right: right, Base: spanBase(left.Span().Start, right.Span().End)}
	}
	return left
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.check(token.Equal) || p.check(token.NotEq) || p.check(token.Less) ||
		p.check(token.Greater) || p.check(token.LessEq) || p.check(token.GreaterEq) {
		opTok := p.advance()
		op := comparisonOp(opTok.Kind)
		right := p.parseAdditive()
		left = &ast.Binary{Op: op, Left: left, Right: right, Base: spanBase(left.Span().Start, right.Span().End)}
	}
	return left
}

func comparisonOp(k token.Kind) ast.BinaryOp {
	switch k {
	case token.Equal:
		return ast.BinEq
	case token.NotEq:
		return ast.BinNotEq
	case token.Less:
		return ast.BinLess
	case token.Greater:
		return ast.BinGreater
	case token.LessEq:
		return ast.BinLessEq
	default:
		return ast.BinGreaterEq
	}
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.check(token.Plus) || p.check(token.Minus) || p.check(token.Pipe) {
		opTok := p.advance()
		op := ast.BinAdd
		switch opTok.Kind {
		case token.Minus:
			op = ast.BinSub
		case token.Pipe:
			op = ast.BinOr
		}
		right := p.parseMultiplicative()
		left = &ast.Binary{Op: op, Left: left, Right: right, Base: spanBase(left.Span().Start, right.Span().End)}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.check(token.Star) || p.check(token.Slash) || p.check(token.KwMod) ||
		p.check(token.Amp) || p.check(token.Caret) || p.check(token.Shl) || p.check(token.Shr) {
		opTok := p.advance()
		op := multiplicativeOp(opTok.Kind)
		right := p.parseUnary()
		left = &ast.Binary{Op: op, Left: left, Right: right, Base: spanBase(left.Span().Start, right.Span().End)}
	}
	return left
}

func multiplicativeOp(k token.Kind) ast.BinaryOp {
	switch k {
	case token.Star:
		return ast.BinMul
	case token.Slash:
		return ast.BinDiv
	case token.KwMod:
		return ast.BinMod
	case token.Amp:
		return ast.BinAnd
	case token.Caret:
		return ast.BinXorBits
	case token.Shl:
		return ast.BinShl
	default:
		return ast.BinShr
	}
}

func (p *parser) parseUnary() ast.Expr {
	switch {
	case p.check(token.Hash):
		opTok := p.advance()
		v := p.parseUnary()
		return &ast.Immediate{Value: v, Base: spanBase(opTok.Span.Start, v.Span().End)}
	case p.check(token.Plus):
		opTok := p.advance()
		v := p.parseUnary()
		return &ast.Unary{Op: ast.UnaryPlus, Operand: v, Base: spanBase(opTok.Span.Start, v.Span().End)}
	case p.check(token.Minus):
		opTok := p.advance()
		v := p.parseUnary()
		return &ast.Unary{Op: ast.UnaryMinus, Operand: v, Base: spanBase(opTok.Span.Start, v.Span().End)}
	case p.check(token.Tilde):
		opTok := p.advance()
		v := p.parseUnary()
		return &ast.Unary{Op: ast.UnaryNot, Operand: v, Base: spanBase(opTok.Span.Start, v.Span().End)}
	case p.check(token.Less):
		opTok := p.advance()
		v := p.parseUnary()
		return &ast.Unary{Op: ast.UnaryLowByte, Operand: v, Base: spanBase(opTok.Span.Start, v.Span().End)}
	case p.check(token.Greater):
		opTok := p.advance()
		v := p.parseUnary()
		return &ast.Unary{Op: ast.UnaryHighByte, Operand: v, Base: spanBase(opTok.Span.Start, v.Span().End)}
	case p.check(token.Caret):
		opTok := p.advance()
		v := p.parseUnary()
		return &ast.Unary{Op: ast.UnaryBankByte, Operand: v, Base: spanBase(opTok.Span.Start, v.Span().End)}
	default:
		return p.parsePrimary()
	}
}

var intrinsicKinds = map[string]ast.IntrinsicKind{
	"bank":   ast.IntrinsicBank,
	"sizeof": ast.IntrinsicSizeof,
	"def":    ast.IntrinsicDef,
	"match":  ast.IntrinsicMatch,
}

func (p *parser) parsePrimary() ast.Expr {
	t := p.peek()
	switch {
	case t.Kind == token.Number || t.Kind == token.String:
		p.advance()
		return &ast.Literal{Path: []string{t.Lexeme}, Tok: t, Base: spanBase(t.Span.Start, t.Span.End)}
	case t.Kind == token.Directive:
		if kind, ok := intrinsicKinds[p.directiveName(t)]; ok {
			return p.parseIntrinsic(t, kind)
		}
		p.errorAt(t, UnexpectedToken, fmt.Sprintf("unexpected directive %s in expression", t.Lexeme))
		p.advance()
		return errorLiteral(t)
	case t.Kind == token.ScopeSeparator || t.Kind == token.Identifier:
		return p.parseIdentifierPath()
	case t.Kind == token.LeftParen:
		p.advance()
		inner := p.parseExpression()
		rp, _ := p.expect(token.RightParen, "')'")
		end := rp.Span.End
		if end == 0 {
			end = inner.Span().End
		}
		return &ast.Grouping{Value: inner, Base: spanBase(t.Span.Start, end)}
	case t.Kind == token.UnnamedPlus:
		p.advance()
		count := 1
		for p.match(token.Plus) {
			count++
		}
		return &ast.UnnamedLabelRef{Forward: true, Count: count, Base: spanBase(t.Span.Start, p.previous().Span.End)}
	case t.Kind == token.UnnamedMinus:
		p.advance()
		count := 1
		for p.match(token.Minus) {
			count++
		}
		return &ast.UnnamedLabelRef{Forward: false, Count: count, Base: spanBase(t.Span.Start, p.previous().Span.End)}
	default:
		p.errorAt(t, UnexpectedToken, fmt.Sprintf("unexpected token %s in expression", t.Kind))
		if !p.atEnd() {
			p.advance()
		}
		return errorLiteral(t)
	}
}

func (p *parser) parseIdentifierPath() ast.Expr {
	start := p.peek()
	rootAnchored := false
	if p.match(token.ScopeSeparator) {
		rootAnchored = true
	}
	first := p.expectIdentifier()
	path := []string{first.Lexeme}
	end := first
	for p.check(token.ScopeSeparator) {
		p.advance()
		seg := p.expectIdentifier()
		path = append(path, seg.Lexeme)
		end = seg
	}
	return &ast.Literal{Path: path, RootAnchored: rootAnchored, Tok: first, Base: spanBase(start.Span.Start, end.Span.End)}
}

func (p *parser) parseIntrinsic(dirTok token.Token, kind ast.IntrinsicKind) ast.Expr {
	p.advance()
	p.expect(token.LeftParen, "'('")
	var args []ast.Expr
	if kind == ast.IntrinsicMatch {
		args = append(args, p.parseTokenListArg())
		p.expect(token.Comma, "','")
		args = append(args, p.parseTokenListArg())
	} else if !p.check(token.RightParen) {
		args = append(args, p.parseExpression())
	}
	rp, _ := p.expect(token.RightParen, "')'")
	end := rp.Span.End
	if end == 0 {
		end = dirTok.Span.End
	}
	return &ast.Intrinsic{Kind: kind, Args: args, Base: spanBase(dirTok.Span.Start, end)}
}

// parseTokenListArg collects raw tokens up to (not including) the next
// top-level comma or right paren, tracking nested paren depth.
func (p *parser) parseTokenListArg() ast.Expr {
	start := p.peek()
	var toks []token.Token
	depth := 0
	for !p.atEnd() {
		t := p.peek()
		if depth == 0 && (t.Kind == token.Comma || t.Kind == token.RightParen) {
			break
		}
		if t.Kind == token.LeftParen {
			depth++
		} else if t.Kind == token.RightParen {
			depth--
		}
		toks = append(toks, p.advance())
	}
	sp := span.New(start.Span.Start, start.Span.Start)
	if len(toks) > 0 {
		sp = span.New(toks[0].Span.Start, toks[len(toks)-1].Span.End)
	}
	return &ast.TokenList{Tokens: toks, Base: baseFromSpan(sp)}
}

func errorLiteral(t token.Token) ast.Expr {
	return &ast.Literal{Path: nil, Tok: t, Base: spanBase(t.Span.Start, t.Span.End)}
}

func syntheticString(name string, sp span.Span) token.Token {
	return token.Token{Kind: token.String, Lexeme: `"` + name + `"`, Span: sp}
}

func endOf(last, fallback token.Token) int {
	if last.Span.End == 0 && last.Span.Start == 0 && last.Lexeme == "" {
		return fallback.Span.End
	}
	return last.Span.End
}

func spanBase(start, end int) ast.Base { return ast.Base{Sp: span.New(start, end)} }

func baseFromSpan(sp span.Span) ast.Base { return ast.Base{Sp: sp} }

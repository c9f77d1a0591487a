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

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwritescode/ca65-lsp-sub000/internal/ast"
	"github.com/techwritescode/ca65-lsp-sub000/internal/instrset"
	"github.com/techwritescode/ca65-lsp-sub000/internal/parser"
	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := token.Lex(src, instrset.MOS6502)
	require.Nil(t, err)
	return toks
}

// spec.md §8 scenario 2: constant, label, and instruction.
func TestParseConstantAndLabel(t *testing.T) {
	toks := lex(t, "SCREEN = $2000\nmain:\n  lda SCREEN\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 3)

	assign, ok := stmts[0].(*ast.ConstantAssign)
	require.True(t, ok, "expected *ast.ConstantAssign, got %T", stmts[0])
	assert.Equal(t, "SCREEN", assign.Name.Lexeme)
	lit, ok := assign.Value.(*ast.Literal)
	require.True(t, ok, "expected *ast.Literal, got %T", assign.Value)
	assert.Equal(t, "$2000", lit.Tok.Lexeme)

	label, ok := stmts[1].(*ast.Label)
	require.True(t, ok, "expected *ast.Label, got %T", stmts[1])
	assert.Equal(t, "main", label.Name.Lexeme)

	instr, ok := stmts[2].(*ast.Instruction)
	require.True(t, ok, "expected *ast.Instruction, got %T", stmts[2])
	assert.Equal(t, "lda", instr.Mnemonic.Lexeme)
	require.Len(t, instr.Parameters, 1)
	param, ok := instr.Parameters[0].(*ast.Literal)
	require.True(t, ok, "expected *ast.Literal, got %T", instr.Parameters[0])
	assert.Equal(t, []string{"SCREEN"}, param.Path)
}

// spec.md §8 scenario 3: nested scope.
func TestParseNestedScope(t *testing.T) {
	toks := lex(t, ".scope outer\n  .scope inner\n    lda #0\n  .endscope\n.endscope\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	outer, ok := stmts[0].(*ast.Scope)
	require.True(t, ok, "expected *ast.Scope, got %T", stmts[0])
	require.NotNil(t, outer.Name)
	assert.Equal(t, "outer", outer.Name.Lexeme)
	require.Len(t, outer.Body, 1)

	inner, ok := outer.Body[0].(*ast.Scope)
	require.True(t, ok, "expected nested *ast.Scope, got %T", outer.Body[0])
	require.NotNil(t, inner.Name)
	assert.Equal(t, "inner", inner.Name.Lexeme)
	require.Len(t, inner.Body, 1)
	_, ok = inner.Body[0].(*ast.Instruction)
	assert.True(t, ok, "expected *ast.Instruction, got %T", inner.Body[0])
}

func TestParseAnonymousScope(t *testing.T) {
	toks := lex(t, ".scope\n  nop\n.endscope\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)
	scope, ok := stmts[0].(*ast.Scope)
	require.True(t, ok, "expected *ast.Scope, got %T", stmts[0])
	assert.Nil(t, scope.Name)
}

// spec.md §8 scenario 6: unterminated block.
func TestParseUnterminatedProcRecordsEOFError(t *testing.T) {
	toks := lex(t, ".proc foo\n  lda #0\n")
	stmts, errs := parser.Parse(toks)
	require.Len(t, stmts, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, parser.UnexpectedEOF, errs[0].Kind)

	proc, ok := stmts[0].(*ast.Procedure)
	require.True(t, ok, "expected *ast.Procedure, got %T", stmts[0])
	assert.Equal(t, "foo", proc.Name.Lexeme)
	require.Len(t, proc.Body, 1)
	_, ok = proc.Body[0].(*ast.Instruction)
	assert.True(t, ok, "partial body should still contain the lda instruction, got %T", proc.Body[0])
}

func TestParseProcFar(t *testing.T) {
	toks := lex(t, ".proc foo, far\n.endproc\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)
	proc, ok := stmts[0].(*ast.Procedure)
	require.True(t, ok)
	assert.True(t, proc.Far)
}

func TestParseMacroDefinitionAndInvocation(t *testing.T) {
	toks := lex(t, ".macro push2 a, b\n  lda a\n  lda b\n.endmacro\n\npush2 $10, $20\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 2)

	def, ok := stmts[0].(*ast.MacroDefinition)
	require.True(t, ok, "expected *ast.MacroDefinition, got %T", stmts[0])
	assert.Equal(t, "push2", def.Name.Lexeme)
	require.Len(t, def.Parameters, 2)
	assert.Equal(t, "a", def.Parameters[0].Lexeme)
	assert.Equal(t, "b", def.Parameters[1].Lexeme)
	require.Len(t, def.Body, 2)

	inv, ok := stmts[1].(*ast.MacroInvocation)
	require.True(t, ok, "expected *ast.MacroInvocation, got %T", stmts[1])
	assert.Equal(t, "push2", inv.Name.Lexeme)
	require.Len(t, inv.Args, 2)
}

func TestParseStructWithNesting(t *testing.T) {
	toks := lex(t, ".struct Point\n  x\n  y\n  .struct Nested\n    z\n  .endstruct\n.endstruct\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	st, ok := stmts[0].(*ast.Struct)
	require.True(t, ok, "expected *ast.Struct, got %T", stmts[0])
	assert.Equal(t, "Point", st.Name.Lexeme)
	require.Len(t, st.Members, 3)
	require.NotNil(t, st.Members[0].Field)
	assert.Equal(t, "x", st.Members[0].Field.Lexeme)
	require.NotNil(t, st.Members[1].Field)
	assert.Equal(t, "y", st.Members[1].Field.Lexeme)
	require.NotNil(t, st.Members[2].Nested)
	assert.Equal(t, "Nested", st.Members[2].Nested.Name.Lexeme)
	require.Len(t, st.Members[2].Nested.Members, 1)
}

func TestParseEnumWithValues(t *testing.T) {
	toks := lex(t, ".enum Color\n  RED\n  GREEN = 5\n  BLUE\n.endenum\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	en, ok := stmts[0].(*ast.Enum)
	require.True(t, ok, "expected *ast.Enum, got %T", stmts[0])
	require.Len(t, en.Members, 3)
	assert.Equal(t, "RED", en.Members[0].Name.Lexeme)
	assert.Nil(t, en.Members[0].Value)
	assert.Equal(t, "GREEN", en.Members[1].Name.Lexeme)
	require.NotNil(t, en.Members[1].Value)
	assert.Equal(t, "BLUE", en.Members[2].Name.Lexeme)
}

func TestParseRepeat(t *testing.T) {
	toks := lex(t, ".repeat 4, i\n  nop\n.endrep\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	rep, ok := stmts[0].(*ast.Repeat)
	require.True(t, ok, "expected *ast.Repeat, got %T", stmts[0])
	require.NotNil(t, rep.Incr)
	assert.Equal(t, "i", rep.Incr.Lexeme)
	require.Len(t, rep.Body, 1)
}

func TestParseDataDirectives(t *testing.T) {
	toks := lex(t, ".byte 1, 2, 3\n.word $1234, $5678\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 2)

	b, ok := stmts[0].(*ast.Data)
	require.True(t, ok)
	assert.Equal(t, ast.DataByte, b.Kind)
	assert.Len(t, b.Expressions, 3)

	w, ok := stmts[1].(*ast.Data)
	require.True(t, ok)
	assert.Equal(t, ast.DataWord, w.Kind)
	assert.Len(t, w.Expressions, 2)
}

func TestParseSegmentAndZeropageShorthand(t *testing.T) {
	toks := lex(t, ".segment \"CODE\"\n.zeropage\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 2)

	seg1, ok := stmts[0].(*ast.Segment)
	require.True(t, ok)
	assert.Equal(t, "\"CODE\"", seg1.Name.Lexeme)

	seg2, ok := stmts[1].(*ast.Segment)
	require.True(t, ok)
	assert.Contains(t, seg2.Name.Lexeme, "zeropage")
}

func TestParseImportExportGlobal(t *testing.T) {
	toks := lex(t, ".import foo, bar: zeropage\n.export baz = $10\n.global qux\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 3)

	imp, ok := stmts[0].(*ast.ImportDecl)
	require.True(t, ok)
	assert.Equal(t, ast.KindImport, imp.Kind)
	require.Len(t, imp.Identifiers, 2)
	assert.False(t, imp.Identifiers[0].ZeroPage)
	assert.True(t, imp.Identifiers[1].ZeroPage)

	exp, ok := stmts[1].(*ast.ImportDecl)
	require.True(t, ok)
	assert.Equal(t, ast.KindExport, exp.Kind)
	require.NotNil(t, exp.Identifiers[0].Value)

	glob, ok := stmts[2].(*ast.ImportDecl)
	require.True(t, ok)
	assert.Equal(t, ast.KindGlobal, glob.Kind)
}

func TestParseDefineWithParams(t *testing.T) {
	toks := lex(t, ".define MAX(a, b) a\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	def, ok := stmts[0].(*ast.Define)
	require.True(t, ok)
	assert.Equal(t, "MAX", def.Name.Lexeme)
	assert.True(t, def.HasParams)
	require.Len(t, def.Params, 2)
	require.NotNil(t, def.Body)
}

func TestParseIfElse(t *testing.T) {
	toks := lex(t, ".if 1\n  nop\n.else\n  brk\n.endif\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	ifs, ok := stmts[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, ast.IfExpr, ifs.Kind)
	require.NotNil(t, ifs.CondExpr)
	require.Len(t, ifs.Then, 1)
	require.Len(t, ifs.Else, 1)
}

func TestParseIfDefNoElse(t *testing.T) {
	toks := lex(t, ".ifdef FOO\n  nop\n.endif\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	ifs, ok := stmts[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, ast.IfDef, ifs.Kind)
	require.NotNil(t, ifs.CondIdent)
	assert.Equal(t, "FOO", ifs.CondIdent.Lexeme)
	assert.Nil(t, ifs.Else)
}

func TestParseUnterminatedIfRecordsEOFError(t *testing.T) {
	toks := lex(t, ".if 1\n  nop\n")
	stmts, errs := parser.Parse(toks)
	require.Len(t, stmts, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, parser.UnexpectedEOF, errs[0].Kind)
}

func TestParseOperatorPrecedence(t *testing.T) {
	toks := lex(t, "x = 1 + 2 * 3\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	assign := stmts[0].(*ast.ConstantAssign)
	add, ok := assign.Value.(*ast.Binary)
	require.True(t, ok, "expected top-level *ast.Binary, got %T", assign.Value)
	assert.Equal(t, ast.BinAdd, add.Op)

	_, ok = add.Left.(*ast.Literal)
	assert.True(t, ok, "expected left operand literal, got %T", add.Left)

	mul, ok := add.Right.(*ast.Binary)
	require.True(t, ok, "expected right operand *ast.Binary (higher precedence), got %T", add.Right)
	assert.Equal(t, ast.BinMul, mul.Op)
}

func TestParseLogicalAndComparisonChain(t *testing.T) {
	toks := lex(t, "x = 1 = 1 .and 2 <> 3\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	assign := stmts[0].(*ast.ConstantAssign)
	top, ok := assign.Value.(*ast.Binary)
	require.True(t, ok, "expected top-level *ast.Binary, got %T", assign.Value)
	assert.Equal(t, ast.BinLogicalAnd, top.Op)
}

func TestParseUnaryOperators(t *testing.T) {
	toks := lex(t, "x = <$1234\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	assign := stmts[0].(*ast.ConstantAssign)
	un, ok := assign.Value.(*ast.Unary)
	require.True(t, ok, "expected *ast.Unary, got %T", assign.Value)
	assert.Equal(t, ast.UnaryLowByte, un.Op)
}

func TestParseImmediateAndGrouping(t *testing.T) {
	toks := lex(t, "lda #(SCREEN + 1)\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	instr := stmts[0].(*ast.Instruction)
	require.Len(t, instr.Parameters, 1)

	imm, ok := instr.Parameters[0].(*ast.Immediate)
	require.True(t, ok, "expected *ast.Immediate, got %T", instr.Parameters[0])
	grp, ok := imm.Value.(*ast.Grouping)
	require.True(t, ok, "expected *ast.Grouping, got %T", imm.Value)
	_, ok = grp.Value.(*ast.Binary)
	assert.True(t, ok, "expected *ast.Binary inside grouping, got %T", grp.Value)
}

func TestParseIdentifierPathWithScopeSeparator(t *testing.T) {
	toks := lex(t, "lda ::foo::bar\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	instr := stmts[0].(*ast.Instruction)
	lit, ok := instr.Parameters[0].(*ast.Literal)
	require.True(t, ok, "expected *ast.Literal, got %T", instr.Parameters[0])
	assert.True(t, lit.RootAnchored)
	assert.Equal(t, []string{"foo", "bar"}, lit.Path)
}

func TestParseUnnamedLabelAndReferences(t *testing.T) {
	toks := lex(t, ":\n  jmp :+\n  jmp :++\n  jmp :-\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 4)

	_, ok := stmts[0].(*ast.UnnamedLabel)
	require.True(t, ok, "expected *ast.UnnamedLabel, got %T", stmts[0])

	jmp1 := stmts[1].(*ast.Instruction)
	ref1, ok := jmp1.Parameters[0].(*ast.UnnamedLabelRef)
	require.True(t, ok, "expected *ast.UnnamedLabelRef, got %T", jmp1.Parameters[0])
	assert.True(t, ref1.Forward)
	assert.Equal(t, 1, ref1.Count)

	jmp2 := stmts[2].(*ast.Instruction)
	ref2 := jmp2.Parameters[0].(*ast.UnnamedLabelRef)
	assert.True(t, ref2.Forward)
	assert.Equal(t, 2, ref2.Count)

	jmp3 := stmts[3].(*ast.Instruction)
	ref3 := jmp3.Parameters[0].(*ast.UnnamedLabelRef)
	assert.False(t, ref3.Forward)
	assert.Equal(t, 1, ref3.Count)
}

func TestParseIntrinsicCalls(t *testing.T) {
	toks := lex(t, "x = .sizeof(Point)\ny = .bank(foo)\nz = .def(foo)\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 3)

	x := stmts[0].(*ast.ConstantAssign)
	sizeOf, ok := x.Value.(*ast.Intrinsic)
	require.True(t, ok, "expected *ast.Intrinsic, got %T", x.Value)
	assert.Equal(t, ast.IntrinsicSizeof, sizeOf.Kind)
	require.Len(t, sizeOf.Args, 1)

	y := stmts[1].(*ast.ConstantAssign)
	bank := y.Value.(*ast.Intrinsic)
	assert.Equal(t, ast.IntrinsicBank, bank.Kind)

	z := stmts[2].(*ast.ConstantAssign)
	def := z.Value.(*ast.Intrinsic)
	assert.Equal(t, ast.IntrinsicDef, def.Kind)
}

func TestParseMatchIntrinsicTokenLists(t *testing.T) {
	toks := lex(t, "x = .match(1 + 2, 3)\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)

	assign := stmts[0].(*ast.ConstantAssign)
	match, ok := assign.Value.(*ast.Intrinsic)
	require.True(t, ok, "expected *ast.Intrinsic, got %T", assign.Value)
	assert.Equal(t, ast.IntrinsicMatch, match.Kind)
	require.Len(t, match.Args, 2)

	left, ok := match.Args[0].(*ast.TokenList)
	require.True(t, ok, "expected *ast.TokenList, got %T", match.Args[0])
	assert.NotEmpty(t, left.Tokens)

	right, ok := match.Args[1].(*ast.TokenList)
	require.True(t, ok, "expected *ast.TokenList, got %T", match.Args[1])
	assert.NotEmpty(t, right.Tokens)
}

func TestParseIncludeAndIncbin(t *testing.T) {
	toks := lex(t, ".include \"header.inc\"\n.incbin \"data.bin\"\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 2)

	inc, ok := stmts[0].(*ast.Include)
	require.True(t, ok)
	assert.Equal(t, "\"header.inc\"", inc.Path.Lexeme)

	incbin, ok := stmts[1].(*ast.IncludeBinary)
	require.True(t, ok)
	assert.Equal(t, "\"data.bin\"", incbin.Path.Lexeme)
}

func TestParseSetCPUAndFeatureAndOrgAndRes(t *testing.T) {
	toks := lex(t, ".setcpu \"65816\"\n.feature c_comments\n.org $8000\n.res 4\n")
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 4)

	cpu, ok := stmts[0].(*ast.SetCPU)
	require.True(t, ok)
	assert.Equal(t, "\"65816\"", cpu.CPU.Lexeme)

	feat, ok := stmts[1].(*ast.Feature)
	require.True(t, ok)
	assert.Equal(t, "c_comments", feat.Name.Lexeme)

	org, ok := stmts[2].(*ast.Org)
	require.True(t, ok)
	require.NotNil(t, org.Address)

	res, ok := stmts[3].(*ast.Reserve)
	require.True(t, ok)
	require.NotNil(t, res.Count)
}

func TestParseUnrecognizedDirectiveRecoversAndResynchronizes(t *testing.T) {
	toks := lex(t, ".bogus thing\nlda #1\n")
	stmts, errs := parser.Parse(toks)
	require.Len(t, errs, 1)
	assert.Equal(t, parser.UnexpectedToken, errs[0].Kind)
	require.Len(t, stmts, 1)
	_, ok := stmts[0].(*ast.Instruction)
	assert.True(t, ok, "parser should resynchronize and still parse the following instruction, got %T", stmts[0])
}

func TestParseSpanCoversFullStatement(t *testing.T) {
	src := "main:\n"
	toks := lex(t, src)
	stmts, errs := parser.Parse(toks)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)
	sp := stmts[0].Span()
	assert.Equal(t, src[sp.Start:sp.End], "main:")
}

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

package ast

import (
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

// Stmt is the closed sum type of statement nodes.
type Stmt interface {
	stmtNode()
	Span() span.Span
}

// ConstantAssign is `name = expr`.
type ConstantAssign struct {
	Base
	Name  token.Token
	Value Expr
}

func (*ConstantAssign) stmtNode() {}

// Label is `name:`.
type Label struct {
	Base
	Name token.Token
}

func (*Label) stmtNode() {}

// UnnamedLabel is a bare `:`.
type UnnamedLabel struct {
	Base
}

func (*UnnamedLabel) stmtNode() {}

// Include is `.include "path"`.
type Include struct {
	Base
	Path token.Token
}

func (*Include) stmtNode() {}

// IncludeBinary is `.incbin "path"`.
type IncludeBinary struct {
	Base
	Path token.Token
}

func (*IncludeBinary) stmtNode() {}

// Instruction is `mnemonic expr, expr, ...`.
type Instruction struct {
	Base
	Mnemonic   token.Token
	Parameters []Expr
}

func (*Instruction) stmtNode() {}

// Procedure is `.proc name [, far] ... .endproc`.
type Procedure struct {
	Base
	Name  token.Token
	Far   bool
	Body  []Stmt
}

func (*Procedure) stmtNode() {}

// Scope is `.scope [name] ... .endscope`.
type Scope struct {
	Base
	Name *token.Token
	Body []Stmt
}

func (*Scope) stmtNode() {}

// MacroDefinition is `.macro name p1, p2, ... ... .endmacro`.
type MacroDefinition struct {
	Base
	Name       token.Token
	Parameters []token.Token
	Body       []Stmt
}

func (*MacroDefinition) stmtNode() {}

// MacroArg is one argument to a macro invocation: either an expression or
// a raw token-list (CA65 macro arguments may be bare token sequences).
type MacroArg struct {
	Expr   Expr
	Tokens []token.Token
}

// MacroInvocation is `name arg, arg, ...` for an identifier that does not
// resolve to any other statement shape.
type MacroInvocation struct {
	Base
	Name token.Token
	Args []MacroArg
}

func (*MacroInvocation) stmtNode() {}

// MacroPack is `.macpack name`.
type MacroPack struct {
	Base
	Name token.Token
}

func (*MacroPack) stmtNode() {}

// StructMember is either a field identifier or a nested struct.
type StructMember struct {
	Field  *token.Token
	Nested *Struct
}

// Struct is `.struct name ... .endstruct`.
type Struct struct {
	Base
	Name    token.Token
	Members []StructMember
}

func (*Struct) stmtNode() {}

// EnumMember is `name [= expr]`.
type EnumMember struct {
	Name  token.Token
	Value Expr // nil if omitted
}

// Enum is `.enum [name] ... .endenum`.
type Enum struct {
	Base
	Name    *token.Token
	Members []EnumMember
}

func (*Enum) stmtNode() {}

// Repeat is `.repeat max[, incr] ... .endrep`.
type Repeat struct {
	Base
	Max  Expr
	Incr *token.Token
	Body []Stmt
}

func (*Repeat) stmtNode() {}

// DataKind distinguishes .byte/.word/.dword.
type DataKind int

const (
	DataByte DataKind = iota
	DataWord
	DataDword
)

// Data is `.byte/.word/.dword expr, ...`.
type Data struct {
	Base
	Kind        DataKind
	Expressions []Expr
}

func (*Data) stmtNode() {}

// Org is `.org expr`.
type Org struct {
	Base
	Address Expr
}

func (*Org) stmtNode() {}

// Segment is `.segment "str"` (or the `.zeropage` shorthand, which emits
// Segment{Name: "zeropage"} per spec.md §4.3's directive table).
type Segment struct {
	Base
	Name token.Token
}

func (*Segment) stmtNode() {}

// SetCPU is `.setcpu "str"`.
type SetCPU struct {
	Base
	CPU token.Token
}

func (*SetCPU) stmtNode() {}

// Feature is `.feature name`.
type Feature struct {
	Base
	Name token.Token
}

func (*Feature) stmtNode() {}

// Reserve is `.res expr`.
type Reserve struct {
	Base
	Count Expr
}

func (*Reserve) stmtNode() {}

// Ascii is `.ascii "str"`.
type Ascii struct {
	Base
	Value token.Token
}

func (*Ascii) stmtNode() {}

// ImportExport is one identifier in a .global/.export/.import list,
// optionally with `: zeropage` and, for `.export`, an assigned value.
type ImportExport struct {
	Name     token.Token
	ZeroPage bool
	Value    Expr // .export only; nil otherwise
}

// ImportKind distinguishes .global/.export/.import.
type ImportKind int

const (
	KindGlobal ImportKind = iota
	KindExport
	KindImport
)

// ImportDecl is `.global`/`.export`/`.import`.
type ImportDecl struct {
	Base
	Kind        ImportKind
	Identifiers []ImportExport
}

func (*ImportDecl) stmtNode() {}

// Define is `.define name[(p1,...)] body`.
type Define struct {
	Base
	Name   token.Token
	Params []token.Token // nil if no parameter list was given
	HasParams bool
	Body   *TokenList
}

func (*Define) stmtNode() {}

// IfKind distinguishes .if/.ifdef/.ifndef/.ifblank/.ifnblank.
type IfKind int

const (
	IfExpr IfKind = iota
	IfDef
	IfNDef
	IfBlank
	IfNBlank
)

// If is a conditional-assembly block, including any chained `.else`
// branch. CondExpr holds the condition expression for IfExpr; CondIdent
// holds the operand token for the other kinds.
type If struct {
	Base
	Kind      IfKind
	CondExpr  Expr         // IfExpr only
	CondIdent *token.Token // IfDef/IfNDef/IfBlank/IfNBlank
	Then      []Stmt
	Else      []Stmt // nil if no .else branch
}

func (*If) stmtNode() {}

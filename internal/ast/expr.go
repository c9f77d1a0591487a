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

// Package ast defines the statement/expression tree the parser produces,
// plus a default-walking Visitor (spec.md §3, §4.4).
package ast

import (
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

// Expr is the closed sum type of expression nodes. Every concrete type
// below carries its own Span field and implements Span() to satisfy this
// interface.
type Expr interface {
	exprNode()
	Span() span.Span
}

type Base struct {
	Sp span.Span
}

func (b Base) Span() span.Span { return b.Sp }

// Literal is a number, string, or identifier-path primary.
type Literal struct {
	Base
	// Path holds the "::"-separated identifier segments of an
	// identifier path; len(Path) == 1 for a bare
	// identifier. For number/string literals, Path has exactly one
	// element holding the raw lexeme.
	Path       []string
	RootAnchored bool
	Tok        token.Token
}

func (*Literal) exprNode() {}

// Immediate is `#expr`.
type Immediate struct {
	Base
	Value Expr
}

func (*Immediate) exprNode() {}

// Grouping is `(expr)`.
type Grouping struct {
	Base
	Value Expr
}

func (*Grouping) exprNode() {}

// UnaryOp distinguishes the unary operators.
type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryNot    // ~
	UnaryLogNot // !/.not
	UnaryLowByte
	UnaryHighByte
	UnaryBankByte
)

// Unary is a prefix unary expression.
type Unary struct {
	Base
	Op      UnaryOp
	Operand Expr
}

func (*Unary) exprNode() {}

// BinaryOp distinguishes the binary operators across every precedence
// tier in spec.md §4.2.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinOr // |
	BinMul
	BinDiv
	BinMod
	BinAnd // &
	BinXorBits
	BinShl
	BinShr
	BinEq
	BinNotEq
	BinLess
	BinGreater
	BinLessEq
	BinGreaterEq
	BinLogicalAnd
	BinLogicalOr
	BinLogicalXor
)

// Binary is a binary expression.
type Binary struct {
	Base
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// IntrinsicKind distinguishes the intrinsic call forms.
type IntrinsicKind int

const (
	IntrinsicBank IntrinsicKind = iota
	IntrinsicSizeof
	IntrinsicDef
	IntrinsicMatch
)

// Intrinsic is a `.bank(e)`/`.sizeof(e)`/`.def(ident)`/`.match(tl,tl)`
// call.
type Intrinsic struct {
	Base
	Kind IntrinsicKind
	Args []Expr
}

func (*Intrinsic) exprNode() {}

// UnnamedLabelRef is a `:+`/`:-` reference, Count deep (e.g. `:++` is
// Count=2, Forward=true).
type UnnamedLabelRef struct {
	Base
	Forward bool
	Count   int
}

func (*UnnamedLabelRef) exprNode() {}

// TokenList is a raw token sequence, used for `.define`-like parameter
// lists and `.match` arguments that are not evaluated as expressions.
type TokenList struct {
	Base
	Tokens []token.Token
}

func (*TokenList) exprNode() {}

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

import "github.com/techwritescode/ca65-lsp-sub000/internal/token"

// Visitor is a single double-dispatch surface over every statement shape.
// VisitStatement provides the default walk (visit children, recursing
// into nested blocks); embedders override only the methods they care
// about. This keeps traversal total even as new node kinds are added
// (spec.md §4.4).
type Visitor interface {
	VisitConstantAssign(s *ConstantAssign)
	VisitLabel(s *Label)
	VisitUnnamedLabel(s *UnnamedLabel)
	VisitInclude(s *Include)
	VisitIncludeBinary(s *IncludeBinary)
	VisitInstruction(s *Instruction)
	VisitProcedure(s *Procedure)
	VisitScope(s *Scope)
	VisitMacroDefinition(s *MacroDefinition)
	VisitMacroInvocation(s *MacroInvocation)
	VisitMacroPack(s *MacroPack)
	VisitStruct(s *Struct)
	VisitEnum(s *Enum)
	VisitRepeat(s *Repeat)
	VisitData(s *Data)
	VisitOrg(s *Org)
	VisitSegment(s *Segment)
	VisitSetCPU(s *SetCPU)
	VisitFeature(s *Feature)
	VisitReserve(s *Reserve)
	VisitAscii(s *Ascii)
	VisitImportDecl(s *ImportDecl)
	VisitDefine(s *Define)
	VisitIf(s *If)

	// VisitExpr is invoked for every expression node reached while
	// walking statements and their sub-expressions. The base Walker's
	// default VisitExpr recurses into sub-expressions (e.g. Binary's
	// operands); an identifier-collecting visitor overrides it to record
	// identifier-path literals (spec.md §4.6).
	VisitExpr(e Expr)
}

// Walker is an embeddable Visitor implementation giving every method a
// default "visit children" body. Embed it and override only the methods a
// given pass cares about.
type Walker struct {
	Self Visitor
}

// self returns the outermost Visitor to dispatch through, so overridden
// methods on an embedding type are still reached during recursive walks.
func (w *Walker) self() Visitor {
	if w.Self != nil {
		return w.Self
	}
	return w
}

// VisitStatement dispatches one statement to its Visit* method.
func (w *Walker) VisitStatement(s Stmt) {
	v := w.self()
	switch s := s.(type) {
	case *ConstantAssign:
		v.VisitConstantAssign(s)
	case *Label:
		v.VisitLabel(s)
	case *UnnamedLabel:
		v.VisitUnnamedLabel(s)
	case *Include:
		v.VisitInclude(s)
	case *IncludeBinary:
		v.VisitIncludeBinary(s)
	case *Instruction:
		v.VisitInstruction(s)
	case *Procedure:
		v.VisitProcedure(s)
	case *Scope:
		v.VisitScope(s)
	case *MacroDefinition:
		v.VisitMacroDefinition(s)
	case *MacroInvocation:
		v.VisitMacroInvocation(s)
	case *MacroPack:
		v.VisitMacroPack(s)
	case *Struct:
		v.VisitStruct(s)
	case *Enum:
		v.VisitEnum(s)
	case *Repeat:
		v.VisitRepeat(s)
	case *Data:
		v.VisitData(s)
	case *Org:
		v.VisitOrg(s)
	case *Segment:
		v.VisitSegment(s)
	case *SetCPU:
		v.VisitSetCPU(s)
	case *Feature:
		v.VisitFeature(s)
	case *Reserve:
		v.VisitReserve(s)
	case *Ascii:
		v.VisitAscii(s)
	case *ImportDecl:
		v.VisitImportDecl(s)
	case *Define:
		v.VisitDefine(s)
	case *If:
		v.VisitIf(s)
	}
}

// VisitStatements walks a slice of statements in order.
func (w *Walker) VisitStatements(ss []Stmt) {
	for _, s := range ss {
		w.VisitStatement(s)
	}
}

func (w *Walker) VisitConstantAssign(s *ConstantAssign) { w.self().VisitExpr(s.Value) }
func (w *Walker) VisitLabel(*Label)                     {}
func (w *Walker) VisitUnnamedLabel(*UnnamedLabel)       {}
func (w *Walker) VisitInclude(*Include)                 {}
func (w *Walker) VisitIncludeBinary(*IncludeBinary)     {}

func (w *Walker) VisitInstruction(s *Instruction) {
	for _, e := range s.Parameters {
		w.self().VisitExpr(e)
	}
}

func (w *Walker) VisitProcedure(s *Procedure) { w.VisitStatements(s.Body) }
func (w *Walker) VisitScope(s *Scope)         { w.VisitStatements(s.Body) }
func (w *Walker) VisitMacroDefinition(s *MacroDefinition) {
	w.VisitStatements(s.Body)
}

func (w *Walker) VisitMacroInvocation(s *MacroInvocation) {
	for _, a := range s.Args {
		if a.Expr != nil {
			w.self().VisitExpr(a.Expr)
		}
	}
}

func (w *Walker) VisitMacroPack(*MacroPack) {}

func (w *Walker) VisitStruct(s *Struct) {
	for _, m := range s.Members {
		if m.Nested != nil {
			w.self().VisitStruct(m.Nested)
		}
	}
}

func (w *Walker) VisitEnum(s *Enum) {
	for _, m := range s.Members {
		if m.Value != nil {
			w.self().VisitExpr(m.Value)
		}
	}
}

func (w *Walker) VisitRepeat(s *Repeat) {
	w.self().VisitExpr(s.Max)
	w.VisitStatements(s.Body)
}

func (w *Walker) VisitData(s *Data) {
	for _, e := range s.Expressions {
		w.self().VisitExpr(e)
	}
}

func (w *Walker) VisitOrg(s *Org)   { w.self().VisitExpr(s.Address) }
func (w *Walker) VisitSegment(*Segment) {}
func (w *Walker) VisitSetCPU(*SetCPU)   {}
func (w *Walker) VisitFeature(*Feature) {}
func (w *Walker) VisitReserve(s *Reserve) { w.self().VisitExpr(s.Count) }
func (w *Walker) VisitAscii(*Ascii)       {}

func (w *Walker) VisitImportDecl(s *ImportDecl) {
	for _, ie := range s.Identifiers {
		if ie.Value != nil {
			w.self().VisitExpr(ie.Value)
		}
	}
}

func (w *Walker) VisitDefine(s *Define) {
	if s.Body != nil {
		w.self().VisitExpr(s.Body)
	}
}

func (w *Walker) VisitIf(s *If) {
	if s.CondExpr != nil {
		w.self().VisitExpr(s.CondExpr)
	}
	w.VisitStatements(s.Then)
	w.VisitStatements(s.Else)
}

// VisitExpr's default recurses into every sub-expression so a pass that
// only overrides, say, VisitLabel still sees every identifier reached
// through expressions.
func (w *Walker) VisitExpr(e Expr) {
	switch e := e.(type) {
	case *Immediate:
		w.self().VisitExpr(e.Value)
	case *Grouping:
		w.self().VisitExpr(e.Value)
	case *Unary:
		w.self().VisitExpr(e.Operand)
	case *Binary:
		w.self().VisitExpr(e.Left)
		w.self().VisitExpr(e.Right)
	case *Intrinsic:
		for _, a := range e.Args {
			w.self().VisitExpr(a)
		}
	}
}

// IdentifierPath reconstructs the source-order path segments of an
// identifier-path Literal, without the leading "::" marker (see
// Literal.RootAnchored).
func IdentifierPath(l *Literal) []string {
	return l.Path
}

// NewIdentifierLiteral is a small constructor helper used by the parser
// and tests.
func NewIdentifierLiteral(tok token.Token, path []string, rootAnchored bool) *Literal {
	return &Literal{Base: Base{Sp: tok.Span}, Tok: tok, Path: path, RootAnchored: rootAnchored}
}

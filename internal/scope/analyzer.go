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

// Package scope walks a statement tree once to build the lexical-scope
// forest and fully-qualified symbol table (spec.md §4.5), and a second time
// to record every identifier use tagged with its enclosing scope chain
// (spec.md §4.6).
package scope

import (
	"fmt"
	"sort"
	"strings"

	"github.com/techwritescode/ca65-lsp-sub000/internal/ast"
	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

// SymbolKind distinguishes the sum-type cases of a defined symbol.
type SymbolKind int

const (
	SymbolScope SymbolKind = iota
	SymbolLabel
	SymbolMacro
	SymbolConstant
	SymbolParameter
)

// Symbol is one entry of the FQN-keyed symbol table.
type Symbol struct {
	Kind SymbolKind
	Name token.Token
	// Parameters holds a macro's declared parameter tokens; SymbolMacro only.
	Parameters []token.Token
	// RepeatVisibility is non-nil for a `.repeat` increment identifier: the
	// symbol shares its enclosing scope's FQN namespace but is only visible
	// to a use whose span falls inside this body span (spec.md §9's
	// increment-visibility open question).
	RepeatVisibility *span.Span
}

// Span returns the symbol's defining identifier span.
func (s Symbol) Span() span.Span { return s.Name.Span }

// Description renders the symbol the way a hover panel would: bare name for
// most kinds, `name:` for a label, and the full `.macro name p1, p2` header
// for a macro.
func (s Symbol) Description() string {
	switch s.Kind {
	case SymbolLabel:
		return s.Name.Lexeme + ":"
	case SymbolMacro:
		var b strings.Builder
		fmt.Fprintf(&b, ".macro %s ", s.Name.Lexeme)
		for i, p := range s.Parameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Lexeme)
		}
		return b.String()
	default:
		return s.Name.Lexeme
	}
}

// Scope is one node of the lexical-scope forest (spec.md's "Scope node").
type Scope struct {
	Name     string
	NameSpan span.Span
	Span     span.Span
	Children []*Scope
}

// findInnerScope returns the chain from s down to the innermost child whose
// span contains index, or nil if index does not fall within s at all.
func (s *Scope) findInnerScope(index int) []*Scope {
	if !s.Span.Contains(index) {
		return nil
	}
	for _, c := range s.Children {
		if chain := c.findInnerScope(index); chain != nil {
			return append([]*Scope{s}, chain...)
		}
	}
	return []*Scope{s}
}

// Search descends the scope forest and returns the chain of enclosing scope
// names from outermost to innermost at the given byte index, prefixed with
// "" for the root. Returns just [""] if no scope contains the index.
func Search(scopes []*Scope, index int) []string {
	var chain []*Scope
	for _, s := range scopes {
		if found := s.findInnerScope(index); found != nil {
			chain = found
			break
		}
	}
	names := make([]string, 0, len(chain)+1)
	names = append(names, "")
	for _, s := range chain {
		names = append(names, s.Name)
	}
	return names
}

// RemoveDenominator drops the longest prefix fqn shares with scopeChain
// (both "::"-joined sequences, scopeChain as returned by Search), returning
// what remains. Used to display a symbol relative to the current query
// context (e.g. `bar` instead of `::foo::bar` from inside `::foo`).
func RemoveDenominator(scopeChain []string, fqn string) string {
	target := strings.Split(fqn, "::")
	for i := 0; i < len(target) && i < len(scopeChain); i++ {
		if target[i] != scopeChain[i] {
			return strings.Join(target[i:], "::")
		}
	}
	if len(scopeChain) < len(target) {
		return strings.Join(target[len(scopeChain):], "::")
	}
	return target[len(target)-1]
}

// IncludeEdge is one `.include`/`.incbin` directive recorded during the
// analysis walk, not yet resolved to a file id.
type IncludeEdge struct {
	PathToken token.Token
	Binary    bool
	ScopeStack []string
}

// DiagnosticKind distinguishes the scope/symbol-layer diagnostic kinds.
type DiagnosticKind int

const (
	DuplicateSymbol DiagnosticKind = iota
	UnknownSymbol
)

// Diagnostic is a scope- or symbol-layer finding, span-addressed the same
// way a parser.ParseError is.
type Diagnostic struct {
	Kind    DiagnosticKind
	Span    span.Span
	Message string
}

// analyzer implements ast.Visitor to build the scope forest and symbol
// table in a single walk (spec.md §4.5).
type analyzer struct {
	ast.Walker
	stack       []*Scope
	roots       []*Scope
	symtab      map[string]Symbol
	includes    []IncludeEdge
	diagnostics []Diagnostic
}

// Analyze walks stmts once, returning the root scope forest, the FQN symbol
// table, the include edges recorded along the way, and any
// duplicate-symbol diagnostics.
func Analyze(stmts []ast.Stmt) ([]*Scope, map[string]Symbol, []IncludeEdge, []Diagnostic) {
	a := &analyzer{symtab: map[string]Symbol{}}
	a.Self = a
	a.VisitStatements(stmts)
	sortScopes(a.roots)
	return a.roots, a.symtab, a.includes, a.diagnostics
}

func sortScopes(scopes []*Scope) {
	sort.Slice(scopes, func(i, j int) bool { return scopes[i].Span.Start < scopes[j].Span.Start })
	for _, s := range scopes {
		sortScopes(s.Children)
	}
}

func (a *analyzer) currentChain() []string {
	chain := make([]string, 0, len(a.stack)+1)
	chain = append(chain, "")
	for _, s := range a.stack {
		chain = append(chain, s.Name)
	}
	return chain
}

func (a *analyzer) formatName(name token.Token) string {
	return strings.Join(a.currentChain(), "::") + "::" + name.Lexeme
}

func (a *analyzer) insertSymbol(name token.Token, sym Symbol) {
	fqn := a.formatName(name)
	if _, exists := a.symtab[fqn]; exists {
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Kind:    DuplicateSymbol,
			Span:    name.Span,
			Message: fmt.Sprintf("%s redefined", fqn),
		})
	}
	a.symtab[fqn] = sym
}

func (a *analyzer) pushScope(name string, sp span.Span) {
	a.stack = append(a.stack, &Scope{Name: name, NameSpan: sp, Span: sp})
}

func (a *analyzer) popScope() {
	if len(a.stack) == 0 {
		return
	}
	n := a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]
	if len(a.stack) > 0 {
		parent := a.stack[len(a.stack)-1]
		parent.Children = append(parent.Children, n)
	} else {
		a.roots = append(a.roots, n)
	}
}

func (a *analyzer) VisitConstantAssign(s *ast.ConstantAssign) {
	a.insertSymbol(s.Name, Symbol{Kind: SymbolConstant, Name: s.Name})
	a.Walker.VisitConstantAssign(s)
}

func (a *analyzer) VisitLabel(s *ast.Label) {
	a.insertSymbol(s.Name, Symbol{Kind: SymbolLabel, Name: s.Name})
}

// VisitScope pushes a frame and walks the body even for an anonymous
// `.scope` (no symbol is inserted in that case, since there is no name to
// key an FQN on) — nested code inside an anonymous scope still wants its
// own lexical frame for scope search and descendant FQNs.
func (a *analyzer) VisitScope(s *ast.Scope) {
	name := ""
	if s.Name != nil {
		name = s.Name.Lexeme
		a.insertSymbol(*s.Name, Symbol{Kind: SymbolScope, Name: *s.Name})
	}
	a.pushScope(name, s.Span())
	a.VisitStatements(s.Body)
	a.popScope()
}

func (a *analyzer) VisitProcedure(s *ast.Procedure) {
	a.insertSymbol(s.Name, Symbol{Kind: SymbolScope, Name: s.Name})
	a.pushScope(s.Name.Lexeme, s.Span())
	a.VisitStatements(s.Body)
	a.popScope()
}

func (a *analyzer) VisitMacroDefinition(s *ast.MacroDefinition) {
	a.insertSymbol(s.Name, Symbol{Kind: SymbolMacro, Name: s.Name, Parameters: s.Parameters})
	a.pushScope(s.Name.Lexeme, s.Span())
	for _, p := range s.Parameters {
		a.insertSymbol(p, Symbol{Kind: SymbolParameter, Name: p})
	}
	a.VisitStatements(s.Body)
	a.popScope()
}

func (a *analyzer) VisitStruct(s *ast.Struct) {
	a.insertSymbol(s.Name, Symbol{Kind: SymbolScope, Name: s.Name})
	a.pushScope(s.Name.Lexeme, s.Span())
	for _, m := range s.Members {
		switch {
		case m.Field != nil:
			a.insertSymbol(*m.Field, Symbol{Kind: SymbolConstant, Name: *m.Field})
		case m.Nested != nil:
			a.VisitStruct(m.Nested)
		}
	}
	a.popScope()
}

func (a *analyzer) VisitEnum(s *ast.Enum) {
	name := ""
	if s.Name != nil {
		name = s.Name.Lexeme
		a.insertSymbol(*s.Name, Symbol{Kind: SymbolScope, Name: *s.Name})
	}
	a.pushScope(name, s.Span())
	for _, m := range s.Members {
		a.insertSymbol(m.Name, Symbol{Kind: SymbolConstant, Name: m.Name})
	}
	a.popScope()
}

// VisitRepeat never pushes a synthetic scope frame — the increment
// identifier is inserted directly into the enclosing scope, but tagged
// with the repeat body's span so a use outside the body still misses.
func (a *analyzer) VisitRepeat(s *ast.Repeat) {
	if s.Incr != nil {
		bodySpan := s.Span()
		a.insertSymbol(*s.Incr, Symbol{Kind: SymbolConstant, Name: *s.Incr, RepeatVisibility: &bodySpan})
	}
	a.Walker.VisitRepeat(s)
}

func (a *analyzer) VisitImportDecl(s *ast.ImportDecl) {
	for _, ie := range s.Identifiers {
		if s.Kind == ast.KindExport && ie.Value == nil {
			continue
		}
		a.insertSymbol(ie.Name, Symbol{Kind: SymbolConstant, Name: ie.Name})
	}
	a.Walker.VisitImportDecl(s)
}

func (a *analyzer) VisitInclude(s *ast.Include) {
	a.includes = append(a.includes, IncludeEdge{PathToken: s.Path, ScopeStack: a.currentChain()})
}

func (a *analyzer) VisitIncludeBinary(s *ast.IncludeBinary) {
	a.includes = append(a.includes, IncludeEdge{PathToken: s.Path, Binary: true, ScopeStack: a.currentChain()})
}

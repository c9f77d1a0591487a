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

package scope

import (
	"fmt"
	"strings"

	"github.com/techwritescode/ca65-lsp-sub000/internal/ast"
	"github.com/techwritescode/ca65-lsp-sub000/internal/token"
)

// IdentifierUse is one identifier-path expression reached while walking the
// tree, tagged with the named scopes enclosing it (innermost last, spec.md
// §4.6). Only `.proc`/named `.scope` contribute frames here, matching the
// source resolver; macro/struct/enum/repeat bodies resolve within their
// enclosing scope's namespace.
type IdentifierUse struct {
	Literal    *ast.Literal
	ScopeStack []string
}

// Name joins the literal's path segments, e.g. "foo::bar" for `foo::bar`.
func (u IdentifierUse) Name() string { return strings.Join(u.Literal.Path, "::") }

type identifierCollector struct {
	ast.Walker
	scopeStack []string
	uses       []IdentifierUse
}

func (c *identifierCollector) VisitScope(s *ast.Scope) {
	if s.Name != nil {
		c.scopeStack = append(c.scopeStack, s.Name.Lexeme)
	}
	c.VisitStatements(s.Body)
	if s.Name != nil {
		c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]
	}
}

func (c *identifierCollector) VisitProcedure(s *ast.Procedure) {
	c.scopeStack = append(c.scopeStack, s.Name.Lexeme)
	c.VisitStatements(s.Body)
	c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]
}

func (c *identifierCollector) VisitExpr(e ast.Expr) {
	if lit, ok := e.(*ast.Literal); ok && lit.Tok.Kind == token.Identifier {
		stack := append([]string(nil), c.scopeStack...)
		c.uses = append(c.uses, IdentifierUse{Literal: lit, ScopeStack: stack})
		return
	}
	c.Walker.VisitExpr(e)
}

// ResolveIdentifiers performs the spec.md §4.6 second pass: every
// identifier-path expression reached while walking stmts, each tagged with
// the scope chain active at its use.
func ResolveIdentifiers(stmts []ast.Stmt) []IdentifierUse {
	c := &identifierCollector{}
	c.Self = c
	c.VisitStatements(stmts)
	return c.uses
}

// ResolvedUse pairs an identifier use with the FQN it resolved to, empty if
// unresolved.
type ResolvedUse struct {
	Use IdentifierUse
	FQN string
}

// ResolveSymbolUses applies the spec.md §4.6 resolution rule to every use:
// a root-anchored (`::`) name is looked up exactly; otherwise each
// enclosing scope from innermost to outermost is tried in turn, first hit
// wins. A miss produces an UnknownSymbol diagnostic at the use's span.
func ResolveSymbolUses(uses []IdentifierUse, symtab map[string]Symbol) ([]ResolvedUse, []Diagnostic) {
	resolved := make([]ResolvedUse, 0, len(uses))
	var diagnostics []Diagnostic
	for _, u := range uses {
		fqn := resolveOne(u, symtab)
		if fqn == "" {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:    UnknownSymbol,
				Span:    u.Literal.Span(),
				Message: fmt.Sprintf("unknown symbol %q", u.Name()),
			})
		}
		resolved = append(resolved, ResolvedUse{Use: u, FQN: fqn})
	}
	return resolved, diagnostics
}

func resolveOne(u IdentifierUse, symtab map[string]Symbol) string {
	name := u.Name()
	if u.Literal.RootAnchored {
		candidate := "::" + name
		if _, ok := symtab[candidate]; ok {
			return candidate
		}
		return ""
	}
	for i := len(u.ScopeStack); i >= 0; i-- {
		segments := append(append([]string{}, u.ScopeStack[:i]...), name)
		candidate := "::" + strings.Join(segments, "::")
		if sym, ok := symtab[candidate]; ok {
			if sym.RepeatVisibility != nil && !sym.RepeatVisibility.Contains(u.Literal.Span().Start) {
				continue
			}
			return candidate
		}
	}
	return ""
}

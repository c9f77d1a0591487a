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

// Package span provides byte-span arithmetic over source files: a
// line-start index, position<->byte conversion, and word-at-position
// lookup.
package span

import "fmt"

// Span is a half-open [Start, End) range over byte offsets of a single
// file.
type Span struct {
	Start int
	End   int
}

// Zero is the empty span used for synthetic nodes (e.g. the root scope).
var Zero = Span{}

// New returns the span [start, end).
func New(start, end int) Span {
	return Span{Start: start, End: end}
}

// Contains reports whether index falls within the half-open span.
func (s Span) Contains(index int) bool {
	return s.Start <= index && index < s.End
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("Span(%d,%d)", s.Start, s.End)
}

// Position is a zero-based (line, character) pair over UTF-16 code units,
// per the LSP contract. This core treats character offsets as byte offsets
// within the line (source text is expected to be ASCII-clean per the
// ASCII-identifier Non-goal; hosts mapping true UTF-16 columns must
// re-encode at the RPC boundary).
type Position struct {
	Line      int
	Character int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Range is a pair of Positions, the wire shape LSP ranges use.
type Range struct {
	Start Position
	End   Position
}

// ErrorKind distinguishes the two ways a span/position query can fail.
type ErrorKind int

const (
	// OutOfBounds means the requested index/line lies outside the file.
	OutOfBounds ErrorKind = iota
	// InvalidCharBoundary means the requested index splits a multi-byte
	// codepoint.
	InvalidCharBoundary
)

// Error reports a span/position computation that could not be completed.
type Error struct {
	Kind  ErrorKind
	Given int
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidCharBoundary:
		return fmt.Sprintf("invalid char boundary at byte %d", e.Given)
	default:
		return fmt.Sprintf("out of bounds at byte %d", e.Given)
	}
}

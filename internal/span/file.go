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

package span

import (
	"sort"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// FileID is a small, stable opaque identifier for a source file within a
// workspace. Zero means "none"; live ids start at 1.
type FileID int

// NoFile is the reserved "none" sentinel file id.
const NoFile FileID = 0

// File holds one source buffer: its name (a URI string), its current text,
// and a line-start index recomputed whenever the text changes.
type File struct {
	Name       string
	Source     string
	lineStarts []int
	fastHash   uint64
}

// NewFile builds a File and its line-start index.
func NewFile(name, source string) *File {
	f := &File{Name: name}
	f.Update(source)
	return f
}

// Update replaces the file's text and recomputes the line-start index.
// It reports whether the new text's fast content hash differs from the
// previous one, so callers can skip re-analysis of byte-identical edits
// (e.g. a full-document replace that reproduces the same text).
func (f *File) Update(source string) (changed bool) {
	newHash := xxhash.Sum64String(source)
	changed = newHash != f.fastHash || f.Source == "" && source == "" && f.lineStarts == nil
	f.Source = source
	f.fastHash = newHash
	f.lineStarts = lineStarts(source)
	return changed
}

// FastHash returns the xxhash of the file's current text, for cheap
// equality checks against cached analysis results.
func (f *File) FastHash() uint64 {
	return f.fastHash
}

func lineStarts(source string) []int {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (f *File) lastLineIndex() int {
	return len(f.lineStarts)
}

func (f *File) lineStart(lineIndex int) (int, error) {
	switch {
	case lineIndex < f.lastLineIndex():
		return f.lineStarts[lineIndex], nil
	case lineIndex == f.lastLineIndex():
		return len(f.Source), nil
	default:
		return 0, &Error{Kind: OutOfBounds, Given: lineIndex}
	}
}

// LineSpan returns the span of line i, including its trailing newline if
// one exists.
func (f *File) LineSpan(lineIndex int) (Span, error) {
	start, err := f.lineStart(lineIndex)
	if err != nil {
		return Span{}, err
	}
	end, err := f.lineStart(lineIndex + 1)
	if err != nil {
		return Span{}, err
	}
	return New(start, end), nil
}

// BytePosition converts a byte offset to a (line, character) position.
// Binary-searches the line-start index; an exact hit is (line, 0),
// otherwise the predecessor line with character = b - lineStart.
func (f *File) BytePosition(b int) (Position, error) {
	n := len(f.lineStarts)
	idx := sort.SearchInts(f.lineStarts, b)
	if idx < n && f.lineStarts[idx] == b {
		return Position{Line: idx, Character: 0}, nil
	}
	lineIndex := idx - 1
	if lineIndex < 0 {
		return Position{}, &Error{Kind: OutOfBounds, Given: b}
	}
	lineStart, err := f.lineStart(lineIndex)
	if err != nil {
		return Position{}, &Error{Kind: OutOfBounds, Given: b}
	}
	if b > len(f.Source) {
		return Position{}, &Error{Kind: OutOfBounds, Given: b}
	}
	if !utf8.RuneStart(byteAt(f.Source, b)) {
		return Position{}, &Error{Kind: InvalidCharBoundary, Given: b}
	}
	return Position{Line: lineIndex, Character: b - lineStart}, nil
}

func byteAt(s string, i int) byte {
	if i >= len(s) {
		return 0 // end-of-string is always a valid boundary
	}
	return s[i]
}

// PositionToByte converts a (line, character) position back to a byte
// offset.
func (f *File) PositionToByte(p Position) (int, error) {
	lineSpan, err := f.LineSpan(p.Line)
	if err != nil {
		return 0, err
	}
	b := lineSpan.Start + p.Character
	if b > len(f.Source) {
		return 0, &Error{Kind: OutOfBounds, Given: b}
	}
	return b, nil
}

// RangeToByteSpan converts an LSP range to a byte Span.
func (f *File) RangeToByteSpan(r Range) (Span, error) {
	start, err := f.PositionToByte(r.Start)
	if err != nil {
		return Span{}, err
	}
	end, err := f.PositionToByte(r.End)
	if err != nil {
		return Span{}, err
	}
	return New(start, end), nil
}

// ByteSpanToRange converts a byte Span to an LSP range.
func (f *File) ByteSpanToRange(s Span) (Range, error) {
	start, err := f.BytePosition(s.Start)
	if err != nil {
		return Range{}, err
	}
	end, err := f.BytePosition(s.End)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}, nil
}

// SourceSlice returns the source text covered by span s.
func (f *File) SourceSlice(s Span) (string, error) {
	if s.Start < 0 || s.End > len(f.Source) || s.Start > s.End {
		return "", &Error{Kind: OutOfBounds, Given: s.End}
	}
	return f.Source[s.Start:s.End], nil
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '@'
}

// findWordAt extends line with a sentinel trailing space, then walks
// backward/forward from col while the byte stays in the identifier class
// (alphanumeric, '_', leading '@'), returning the [start,end) sub-range of
// line.
func findWordAt(line string, col int) (int, int) {
	padded := line + " "
	if col > len(padded) {
		col = len(padded)
	}

	start := 0
	for i := col - 1; i >= 0; i-- {
		if !isIdentChar(padded[i]) {
			start = i + 1
			break
		}
		if padded[i] == '@' {
			// '@' only ever leads a word, so the walk stops on it.
			start = i
			break
		}
		if i == 0 {
			start = 0
		}
	}

	end := col
	for i := col; i < len(padded); i++ {
		if !isIdentChar(padded[i]) || (padded[i] == '@' && i != start) {
			end = i
			break
		}
		end = i + 1
	}
	if end > len(line) {
		end = len(line)
	}
	if start > end {
		start = end
	}
	return start, end
}

// WordAtPosition returns the identifier-class word under position, and
// the byte span (relative to the whole file) it occupies.
func (f *File) WordAtPosition(p Position) (string, Span, error) {
	lineSpan, err := f.LineSpan(p.Line)
	if err != nil {
		return "", Span{}, err
	}
	line, err := f.SourceSlice(lineSpan)
	if err != nil {
		return "", Span{}, err
	}
	// Trim a trailing newline so it never counts as "line content".
	trimmed := line
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\n' {
		trimmed = trimmed[:len(trimmed)-1]
		if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\r' {
			trimmed = trimmed[:len(trimmed)-1]
		}
	}
	start, end := findWordAt(trimmed, p.Character)
	return trimmed[start:end], New(lineSpan.Start+start, lineSpan.Start+end), nil
}

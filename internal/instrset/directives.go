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

package instrset

import "strings"

// KeywordInfo pairs a keyword's documentation with the name of the
// snippet template used to build its completion insert-text.
type KeywordInfo struct {
	Documentation string
	SnippetType   string
}

// IndexedDocumentation is the shape of the static doc table from spec.md
// §6: a primary map from keyword to info, plus an alias map for keywords
// documented under another name (e.g. "bss" and "rodata" share the
// "segment" entry, "data" shares "byte"; most directives don't alias).
type IndexedDocumentation struct {
	KeysToDoc        map[string]KeywordInfo
	KeysWithSharedDoc map[string]string
}

// DocFor returns the documentation for word, resolving through the alias
// table if necessary.
func (d *IndexedDocumentation) DocFor(word string) (string, bool) {
	if info, ok := d.KeysToDoc[word]; ok {
		return info.Documentation, true
	}
	if alias, ok := d.KeysWithSharedDoc[word]; ok {
		if info, ok := d.KeysToDoc[alias]; ok {
			return info.Documentation, true
		}
	}
	return "", false
}

// Directives is the process-wide CA65 directive documentation table.
var Directives = &IndexedDocumentation{
	KeysToDoc: map[string]KeywordInfo{
		"proc":     {"Begins a named, relocatable procedure scope.", "block"},
		"endproc":  {"Ends a `.proc` block.", "bare"},
		"scope":    {"Begins a (possibly anonymous) lexical scope.", "block"},
		"endscope": {"Ends a `.scope` block.", "bare"},
		"macro":    {"Defines a macro taking zero or more parameters.", "block"},
		"endmacro": {"Ends a `.macro` block.", "bare"},
		"struct":   {"Defines a structure type; members become field offsets.", "block"},
		"endstruct": {"Ends a `.struct` block.", "bare"},
		"enum":     {"Defines an enumeration; members become constants.", "block"},
		"endenum":  {"Ends a `.enum` block.", "bare"},
		"repeat":   {"Repeats the enclosed block a fixed number of times.", "block"},
		"endrep":   {"Ends a `.repeat` block.", "bare"},
		"include":  {"Includes another source file at this point.", "string"},
		"incbin":   {"Includes a binary file's raw bytes at this point.", "string"},
		"macpack":  {"Expands a built-in macro package by name.", "ident"},
		"setcpu":   {"Selects the target CPU for subsequent code.", "string"},
		"segment":  {"Switches the active output segment.", "string"},
		"zeropage": {"Switches to the `zeropage` segment.", "bare"},
		"feature":  {"Enables an assembler compatibility feature.", "ident"},
		"res":      {"Reserves storage without emitting data.", "expr"},
		"org":      {"Sets the program counter for subsequent code.", "expr"},
		"byte":     {"Emits a list of 8-bit values.", "exprlist"},
		"word":     {"Emits a list of 16-bit values.", "exprlist"},
		"dword":    {"Emits a list of 32-bit values.", "exprlist"},
		"ascii":    {"Emits a string's bytes without a terminator.", "string"},
		"global":   {"Declares identifiers visible across modules without defining them here.", "identlist"},
		"export":   {"Makes identifiers defined in this module visible to others.", "identlist"},
		"import":   {"Imports identifiers defined in another module.", "identlist"},
		"define":   {"Defines a text-substitution macro.", "define"},
		"if":       {"Begins conditional assembly.", "expr"},
		"ifdef":    {"Begins conditional assembly, true iff the symbol is defined.", "ident"},
		"ifndef":   {"Begins conditional assembly, true iff the symbol is undefined.", "ident"},
		"ifblank":  {"Begins conditional assembly, true iff the macro parameter is blank.", "ident"},
		"ifnblank": {"Begins conditional assembly, true iff the macro parameter is non-blank.", "ident"},
		"else":     {"Begins the alternate branch of a conditional block.", "bare"},
		"endif":    {"Ends a conditional-assembly block.", "bare"},
	},
	KeysWithSharedDoc: map[string]string{
		"bss":    "segment",
		"rodata": "segment",
		"data":   "byte",
	},
}

// Snippets maps a snippet type to a `%`-for-keyword-name completion
// template, matching spec.md §6's snippet table.
var Snippets = map[string]string{
	"bare":      ".%",
	"block":     ".% ${1:name}\n\t$0\n.end%",
	"string":    ".% \"$0\"",
	"ident":     ".% ${1:name}",
	"identlist": ".% ${1:name}",
	"expr":      ".% $0",
	"exprlist":  ".% $0",
	"define":    ".define ${1:name} $0",
}

// InsertText builds the snippet insert-text for a directive keyword by
// substituting its name for "%" in the keyword's snippet template.
func InsertText(keyword, snippetType string) string {
	tmpl, ok := Snippets[snippetType]
	if !ok {
		return "." + keyword
	}
	return strings.ReplaceAll(tmpl, "%", keyword)
}

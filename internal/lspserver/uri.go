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

package lspserver

import (
	"net/url"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// canonicalURI normalizes a client-supplied document URI so that two
// encodings of the same file always produce the same workspace key. Editors
// disagree on how file:// URIs percent-encode a path (drive-letter casing,
// whether '@' or ':' are escaped), and a server that keys its cache on the
// raw string silently fails to recognize two spellings of the same file.
//
// Round-tripping through uri.URI's own Filename/File conversion, the way
// every fileCache lookup in buflsp does, settles on one spelling before
// normalizeURI's percent-encoding pass matches it to what vscode-uri (and
// so every VS-Code-family client) produces.
func canonicalURI(raw protocol.DocumentURI) protocol.DocumentURI {
	if !strings.HasPrefix(string(raw), "file://") {
		// Non-file schemes (untitled:, inmemory:, ...) have no filesystem
		// path to round-trip through; leave them untouched.
		return raw
	}
	path := uri.URI(raw).Filename()
	if path == "" {
		return raw
	}
	return normalizeURI(protocol.DocumentURI(uri.File(path)))
}

// normalizeURI encodes a URI to match VS Code's microsoft/vscode-uri
// behavior. Go's net/url follows RFC 3986 and permits '@' and ':' unencoded
// in path segments; vscode-uri always encodes them and lowercases Windows
// drive letters. When URIs differ, operations like go-to-definition
// silently fail because the client and server URIs don't match.
func normalizeURI(u protocol.DocumentURI) protocol.DocumentURI {
	str := string(u)

	after, found := strings.CutPrefix(str, "file:///")
	if !found {
		return protocol.DocumentURI(strings.ReplaceAll(str, "@", "%40"))
	}

	segments := strings.Split(after, "/")
	for i, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			decoded = segment
		}
		encoded := url.PathEscape(decoded)
		encoded = strings.ReplaceAll(encoded, "@", "%40")
		encoded = strings.ReplaceAll(encoded, ":", "%3A")
		segments[i] = encoded
	}

	// vscode-uri lowercases Windows drive letters: C%3A -> c%3A.
	if len(segments[0]) == 4 &&
		segments[0][0] >= 'A' && segments[0][0] <= 'Z' &&
		segments[0][1:] == "%3A" {
		segments[0] = string(segments[0][0]+32) + "%3A"
	}

	return protocol.DocumentURI("file:///" + strings.Join(segments, "/"))
}

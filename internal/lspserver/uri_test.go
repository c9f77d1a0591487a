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
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func TestCanonicalURILowercasesWindowsDriveLetter(t *testing.T) {
	got := canonicalURI(protocol.DocumentURI("file:///C%3A/src/main.asm"))
	assert.Equal(t, protocol.DocumentURI("file:///c%3A/src/main.asm"), got)
}

func TestCanonicalURIEncodesAtAndColonInPathSegments(t *testing.T) {
	got := canonicalURI(protocol.DocumentURI("file:///home/dev@box/proj:main.asm"))
	assert.Equal(t, protocol.DocumentURI("file:///home/dev%40box/proj%3Amain.asm"), got)
}

func TestCanonicalURIIsIdempotent(t *testing.T) {
	once := canonicalURI(protocol.DocumentURI("file:///home/dev@box/main.asm"))
	twice := canonicalURI(once)
	assert.Equal(t, once, twice)
}

func TestCanonicalURILeavesNonFileSchemesUntouched(t *testing.T) {
	got := canonicalURI(protocol.DocumentURI("untitled:Untitled-1"))
	assert.Equal(t, protocol.DocumentURI("untitled:Untitled-1"), got)
}

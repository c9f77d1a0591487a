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

package main

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"

	"github.com/techwritescode/ca65-lsp-sub000/internal/instrset"
	"github.com/techwritescode/ca65-lsp-sub000/internal/lspserver"
)

// pipeFlagName is chosen to match what the vscode LSP client expects.
const pipeFlagName = "pipe"

type serveFlags struct {
	// PipePath is a UNIX socket to use for IPC. If empty, stdio is used
	// instead.
	PipePath string
	// CPU selects the instruction set the server understands
	// ("6502" or "65816").
	CPU string
	// ConfigPath is the host-chosen path to the project's TOML
	// configuration file (spec.md §6). Empty means no file is read.
	ConfigPath string
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the language server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.PipePath, pipeFlagName, "", "path to a UNIX socket to connect to; uses stdio if not specified")
	cmd.Flags().StringVar(&flags.CPU, "cpu", "6502", "target CPU instruction set: 6502 or 65816")
	cmd.Flags().StringVar(&flags.ConfigPath, "config", "", "path to the project's TOML configuration file")
	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	transport, err := dial(flags)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("ca65lsp: building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	set := instrset.ForCPU(flags.CPU)

	ctx := cmd.Context()
	conn, err := lspserver.Serve(ctx, logger, set, jsonrpc2.NewStream(transport), flags.ConfigPath)
	if err != nil {
		return err
	}
	<-conn.Done()
	return conn.Err()
}

// dial opens the transport the LSP client will speak over.
func dial(flags *serveFlags) (io.ReadWriteCloser, error) {
	if flags.PipePath != "" {
		conn, err := net.Dial("unix", flags.PipePath)
		if err != nil {
			return nil, fmt.Errorf("ca65lsp: could not open IPC socket %q: %w", flags.PipePath, err)
		}
		return conn, nil
	}
	return stdioReadWriteCloser{os.Stdin, os.Stdout}, nil
}

// stdioReadWriteCloser composes stdin/stdout into a single
// io.ReadWriteCloser, closing neither on Close since the process owns them.
type stdioReadWriteCloser struct {
	io.Reader
	io.Writer
}

func (stdioReadWriteCloser) Close() error { return nil }

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

// Command arvik creates, lists and extracts Unix-style archives.
package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one CLI invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg := loadConfig()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(cfg.logLevel).
		With().Timestamp().Logger()

	cmd := newRootCommand(cfg, stdout, &logger)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	code := exitCodeFor(err)
	logger.Error().Err(err).Int("exit_code", code).Msg("arvik failed")
	return code
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/woozymasta/arvik"
	"github.com/woozymasta/pathrules"
)

const helpText = `Usage: arvik -[cxtvDUf:h] archive-file file...
	-c		create a new archive file
	-x		extract members from an existing archive file
	-t		show the table of contents of archive file
	-D		Deterministic mode: all timestamps are 0, all ownership is 0, permissions are 0644.
	-U		Non-deterministic mode: all timestamps are correct, all ownership is saved, permissions are as on source files.
	-f filename	name of archive file to use
	-v		verbose output
	-h		show help text
`

// action is the single archive operation selected on the command line.
type action int

const (
	actionNone action = iota
	actionCreate
	actionExtract
	actionTOC
)

// rootOptions holds parsed command line flags.
type rootOptions struct {
	archive          string
	create           bool
	extract          bool
	toc              bool
	verbose          bool
	deterministic    bool
	nonDeterministic bool
}

// newRootCommand builds the arvik command. Output meant for the user goes
// to stdout; diagnostics go through logger.
func newRootCommand(cfg config, stdout io.Writer, logger *zerolog.Logger) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "arvik -[cxtvDUf:h] archive-file file...",
		Short:         "Create, list and extract Unix-style archives",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context(), cfg, opts, args, stdout, logger)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.create, "create", "c", false, "create a new archive file")
	flags.BoolVarP(&opts.extract, "extract", "x", false, "extract members from an existing archive file")
	flags.BoolVarP(&opts.toc, "toc", "t", false, "show the table of contents of archive file")
	flags.StringVarP(&opts.archive, "file", "f", "", "name of archive file to use")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&opts.deterministic, "deterministic", "D", false, "deterministic mode")
	flags.BoolVarP(&opts.nonDeterministic, "non-deterministic", "U", false, "non-deterministic mode")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error(), code: exitInvalidOption}
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		_, _ = fmt.Fprint(c.OutOrStdout(), helpText)
	})

	return cmd
}

// selected returns the requested action or a usage error.
func (opts *rootOptions) selected() (action, error) {
	if opts.deterministic && opts.nonDeterministic {
		return actionNone, &usageError{msg: "options -D and -U are mutually exclusive", code: exitInvalidOption}
	}

	selected := actionNone
	count := 0
	for _, candidate := range []struct {
		set    bool
		action action
	}{
		{set: opts.create, action: actionCreate},
		{set: opts.extract, action: actionExtract},
		{set: opts.toc, action: actionTOC},
	} {
		if candidate.set {
			selected = candidate.action
			count++
		}
	}

	if count > 1 {
		return actionNone, &usageError{msg: "only one of -c, -x, -t may be given", code: exitInvalidOption}
	}

	if selected != actionNone && opts.archive == "" {
		return actionNone, &usageError{msg: "must provide archive file name", code: exitNoArchiveName}
	}

	if selected == actionNone {
		return actionNone, &usageError{msg: "no action specified", code: exitNoActionGiven}
	}

	return selected, nil
}

// runRoot dispatches the selected action.
func runRoot(ctx context.Context, cfg config, opts *rootOptions, args []string, stdout io.Writer, logger *zerolog.Logger) error {
	selected, err := opts.selected()
	if err != nil {
		return err
	}

	log := *logger
	if opts.verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	deterministic := cfg.deterministic
	switch {
	case opts.deterministic:
		deterministic = true
	case opts.nonDeterministic:
		deterministic = false
	}

	log.Debug().
		Str("archive", opts.archive).
		Bool("deterministic", deterministic).
		Bool("lock", cfg.lock).
		Int("files", len(args)).
		Msg("starting")

	switch selected {
	case actionCreate:
		return runCreate(ctx, cfg, opts, deterministic, args, stdout, log)
	case actionExtract:
		return runExtract(ctx, cfg, opts, args, stdout, log)
	default:
		return runTOC(ctx, cfg, opts, args, stdout)
	}
}

// runCreate writes a new archive from the listed files.
func runCreate(
	ctx context.Context,
	cfg config,
	opts *rootOptions,
	deterministic bool,
	paths []string,
	stdout io.Writer,
	log zerolog.Logger,
) error {
	res, err := arvik.CreateFile(ctx, opts.archive, paths, arvik.WriterOptions{
		Deterministic: deterministic,
		Lock:          cfg.lock,
		OnEntryDone: func(entry arvik.EntryInfo, source string) {
			if opts.verbose {
				_, _ = fmt.Fprintf(stdout, "Adding file: %s\n", source)
			}

			log.Debug().
				Str("member", entry.Name).
				Str("source", source).
				Int64("size", entry.Size).
				Int64("offset", entry.HeaderOffset).
				Msg("member written")
		},
	})
	if err != nil {
		return err
	}

	log.Debug().
		Int("entries", res.WrittenEntries).
		Int64("data_size", res.DataSize).
		Dur("took", res.Duration).
		Msg("archive created")

	return nil
}

// runExtract extracts all members, or only the named ones, into the working directory.
func runExtract(ctx context.Context, cfg config, opts *rootOptions, members []string, stdout io.Writer, log zerolog.Logger) error {
	res, err := arvik.ExtractFile(ctx, opts.archive, "", arvik.ExtractOptions{
		ReaderOptions: readerOptions(cfg, members),
		OnEntryDone: func(entry arvik.EntryInfo, written int64, outputPath string) {
			if opts.verbose {
				_, _ = fmt.Fprintln(stdout, entry.Name)
			}

			log.Debug().
				Str("member", entry.Name).
				Int64("written", written).
				Str("path", outputPath).
				Msg("member extracted")
		},
	})
	if err != nil {
		return err
	}

	log.Debug().
		Int("entries", res.ExtractedEntries).
		Int("skipped", res.SkippedEntries).
		Dur("took", res.Duration).
		Msg("archive extracted")

	return nil
}

// runTOC prints the archive table of contents.
func runTOC(ctx context.Context, cfg config, opts *rootOptions, members []string, stdout io.Writer) error {
	return arvik.ListFile(ctx, opts.archive, stdout, arvik.ListOptions{
		ReaderOptions: readerOptions(cfg, members),
		Verbose:       opts.verbose,
	})
}

// readerOptions limits reads to named members when any are given.
func readerOptions(cfg config, members []string) arvik.ReaderOptions {
	opts := arvik.ReaderOptions{Lock: cfg.lock}
	if len(members) == 0 {
		return opts
	}

	opts.Select = arvik.IncludeRules(members...)
	opts.SelectMatcherOptions = pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionExclude,
	}

	return opts
}

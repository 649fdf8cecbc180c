// Package main implements a generator for a Mega Drive prime sieve test ROM
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/cli"
	"github.com/retroenv/sieverom/internal/config"
	"github.com/retroenv/sieverom/internal/fileprocessor"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, config.Generator, opts.Quiet, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error("Invalid options", log.Err(err))
		}
		os.Exit(1)
	}

	// keep informational logs out of generated data on stdout
	quiet := opts.Quiet || opts.Output == cli.StdioName || opts.Header == cli.StdioName
	logger := config.CreateLogger(opts.Debug, quiet)
	fileprocessor.PrintBanner(logger, config.Generator, quiet, version, commit, date)

	if err := fileprocessor.ProcessFile(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Generating ROM failed", log.Err(err))
		os.Exit(1)
	}
}

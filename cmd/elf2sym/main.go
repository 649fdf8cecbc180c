// Package main implements a converter of nm symbol listings of Mega Drive
// programs to C++ headers with the addresses of work RAM symbols.
//
// Usage:
//
//	m68k-elf-nm -n rom.elf | elf2sym > symbols.h
//	elf2sym -n GameSymbols -o symbols.h rom_symbols.txt
package main

import (
	"errors"
	"os"

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
	opts, err := cli.ParseSymbolFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, "elf2sym", opts.Quiet, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error("Invalid options", log.Err(err))
		}
		os.Exit(1)
	}

	// the header goes to stdout by default, keep informational logs off of it
	quiet := opts.Quiet || opts.Output == "" || opts.Output == cli.StdioName
	logger := config.CreateLogger(opts.Debug, quiet)
	fileprocessor.PrintBanner(logger, "elf2sym", quiet, version, commit, date)

	if err := fileprocessor.ProcessSymbols(logger, opts); err != nil {
		logger.Error("Converting symbols failed", log.Err(err))
		os.Exit(1)
	}
}

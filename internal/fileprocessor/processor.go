// Package fileprocessor handles file loading and writing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/cli"
	"github.com/retroenv/sieverom/internal/options"
	"github.com/retroenv/sieverom/internal/pipeline"
	"github.com/retroenv/sieverom/internal/symbols"
	"golang.org/x/term"
)

// ErrTerminalOutput is returned when binary data would be written to a terminal.
var ErrTerminalOutput = errors.New("refusing to write binary data to a terminal")

var isTerminal = term.IsTerminal

// ProcessFile generates the ROM image and the declaration file and writes them
// to the configured outputs.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	imageWriter, err := createWriter(opts.Output, true)
	if err != nil {
		return fmt.Errorf("creating image writer: %w", err)
	}

	var declWriter io.WriteCloser
	if opts.Header != "" {
		declWriter, err = createWriter(opts.Header, false)
		if err != nil {
			_ = imageWriter.Close()
			removeOutputs(opts.Output)
			return fmt.Errorf("creating declaration writer: %w", err)
		}
	}

	p := pipeline.New(logger)
	_, err = p.Execute(ctx, opts, imageWriter, writerOrNil(declWriter))

	if closeErr := imageWriter.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing image file: %w", closeErr)
	}
	if declWriter != nil {
		if closeErr := declWriter.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("closing declaration file: %w", closeErr)
		}
	}
	if err != nil {
		removeOutputs(opts.Output, opts.Header)
		return err
	}

	if opts.Header != "" && !opts.Quiet {
		logger.Info("Generated declarations",
			log.String("file", opts.Header),
			log.String("format", opts.Format))
	}
	return nil
}

// ProcessSymbols converts an nm listing into a C++ symbol header.
func ProcessSymbols(logger *log.Logger, opts options.Symbols) error {
	reader, source, err := openInput(opts.Input)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	syms, err := symbols.Parse(reader)
	if err != nil {
		return fmt.Errorf("parsing symbols: %w", err)
	}

	ram := symbols.FilterRange(syms, opts.RAMStart, opts.RAMEnd)
	if len(ram) == 0 {
		logger.Warn("No symbols found in RAM range",
			log.Hex("start", opts.RAMStart),
			log.Hex("end", opts.RAMEnd))
	}

	manager := symbols.NewManager(logger)
	manager.AddAll(ram)
	logger.Debug("Symbols exported",
		log.Int("parsed", len(syms)),
		log.Int("in_range", len(ram)),
		log.Int("exported", manager.Len()))

	output := opts.Output
	if output == "" {
		output = cli.StdioName
	}
	writer, err := createWriter(output, false)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	headerOpts := symbols.Options{
		Namespace: opts.Namespace,
		Source:    source,
	}
	err = symbols.WriteHeader(writer, manager.Entries(), headerOpts)
	if closeErr := writer.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing output file: %w", closeErr)
	}
	return err
}

func openInput(name string) (io.ReadCloser, string, error) {
	if name == cli.StdioName || name == "" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}

	file, err := os.Open(name)
	if err != nil {
		return nil, "", fmt.Errorf("opening file %s: %w", name, err)
	}
	return file, name, nil
}

func createWriter(name string, binary bool) (io.WriteCloser, error) {
	if name == cli.StdioName {
		if binary && isTerminal(int(os.Stdout.Fd())) {
			return nil, ErrTerminalOutput
		}
		return &nopCloser{os.Stdout}, nil
	}

	file, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", name, err)
	}
	return file, nil
}

// removeOutputs deletes partially written output files.
func removeOutputs(names ...string) {
	for _, name := range names {
		if name != "" && name != cli.StdioName {
			_ = os.Remove(name)
		}
	}
}

// writerOrNil avoids passing a typed nil writer as a non nil interface.
func writerOrNil(w io.WriteCloser) io.Writer {
	if w == nil {
		return nil
	}
	return w
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, name string, quiet bool, version, commit, date string) {
	if quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info(name, log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// nopCloser wraps an io.Writer to add a no-op Close method
type nopCloser struct {
	io.Writer
}

func (nc *nopCloser) Close() error {
	return nil
}
